package atlas

import (
	"image"

	"golang.org/x/image/draw"
)

// Preview upscales img by an integer factor without smoothing, for eyeballing
// the atlas.
func Preview(img image.Image, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
