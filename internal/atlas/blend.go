package atlas

import (
	"image/color"
	"math"
)

// over composites src onto dst. Opaque sources overwrite and force full
// alpha.
func over(dst, src color.NRGBA, opaque bool) color.NRGBA {
	if opaque {
		return color.NRGBA{R: src.R, G: src.G, B: src.B, A: 255}
	}
	switch src.A {
	case 0:
		return dst
	case 255:
		return src
	}

	fa := float64(src.A) / 255
	ba := float64(dst.A) / 255 * (1 - fa)
	coverage := fa + ba
	if coverage <= 0 {
		return color.NRGBA{}
	}

	mix := func(s, d uint8) uint8 {
		return toByte((float64(s)*fa + float64(d)*ba) / coverage)
	}
	return color.NRGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: toByte(coverage * 255),
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
