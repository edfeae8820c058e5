package atlas

import "image"

// WeightMatrix weights each pixel of a cell in the color average.
type WeightMatrix [CellSize][CellSize]float64

// UniformWeights weights every pixel equally.
func UniformWeights() *WeightMatrix {
	var w WeightMatrix
	for y := range w {
		for x := range w[y] {
			w[y][x] = 1
		}
	}
	return &w
}

// Extract summarizes every cell: the weighted mean of its visible pixels
// (alpha > 0, all four channels, truncated) and how many of them there are,
// minus one. A nil weights uses UniformWeights.
func Extract(a *Atlas, weights *WeightMatrix) (colors *image.NRGBA, counts *image.Gray) {
	if weights == nil {
		weights = UniformWeights()
	}
	colors = image.NewNRGBA(image.Rect(0, 0, a.across, a.rows))
	counts = image.NewGray(image.Rect(0, 0, a.across, a.rows))

	for cy := 0; cy < a.rows; cy++ {
		for cx := 0; cx < a.across; cx++ {
			var (
				sum   [4]float64
				total float64
				n     int
			)
			for y := 0; y < CellSize; y++ {
				row := a.img.PixOffset(cx*CellSize, cy*CellSize+y)
				for x := 0; x < CellSize; x++ {
					p := a.img.Pix[row+4*x : row+4*x+4]
					if p[3] == 0 {
						continue
					}
					w := weights[y][x]
					for c := range sum {
						sum[c] += float64(p[c]) * w
					}
					total += w
					n++
				}
			}

			if n > 0 && total > 0 {
				o := colors.PixOffset(cx, cy)
				for c := range sum {
					colors.Pix[o+c] = uint8(sum[c] / total)
				}
			}
			if n > 1 {
				counts.Pix[counts.PixOffset(cx, cy)] = uint8(min(n-1, 255))
			}
		}
	}
	return colors, counts
}
