package atlas

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"testing"

	"github.com/disintegration/imaging"

	"mcbake/internal/assets"
	"mcbake/pkg/blockmodel"
)

type texMap map[blockmodel.Location]*assets.Texture

func (m texMap) Texture(loc blockmodel.Location) (*assets.Texture, error) {
	t, ok := m[loc]
	if !ok {
		return nil, &assets.MissingAssetError{Kind: "texture", Location: loc}
	}
	return t, nil
}

func mc(path string) blockmodel.Location {
	return blockmodel.Location{Namespace: "minecraft", Path: path}
}

func gradient() *assets.Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), A: 255})
		}
	}
	return &assets.Texture{Image: img, Opaque: true}
}

func flat(c color.NRGBA) *assets.Texture {
	return &assets.Texture{Image: imaging.New(16, 16, c), Opaque: c.A == 255}
}

func topFaces(from, to [3]float32, tex string, am blockmodel.AppliedModel) []blockmodel.OrientedFace {
	m := &blockmodel.Model{Elements: []blockmodel.Element{{
		From:  from,
		To:    to,
		Faces: map[string]blockmodel.Face{"up": {UV: blockmodel.DefaultUV, Texture: tex}},
	}}}
	am.Model = "test"
	return blockmodel.Orient(m, am, blockmodel.Up)
}

var (
	origin = [3]float32{0, 0, 0}
	full   = [3]float32{16, 16, 16}
)

func TestGridSize(t *testing.T) {
	a := New(5, 2, texMap{})
	if a.CellsAcross() != 2 || a.Rows() != 3 || a.Capacity() != 6 {
		t.Errorf("Expected 2x3 cells, got %dx%d", a.CellsAcross(), a.Rows())
	}
	if b := a.Image().Bounds(); b.Dx() != 32 || b.Dy() != 48 {
		t.Errorf("Unexpected atlas size %v", b)
	}
	if b := a.HeightMap().Bounds(); b.Dx() != 2 || b.Dy() != 3 {
		t.Errorf("Unexpected heightmap size %v", b)
	}
}

func TestTwoVariantsPlacement(t *testing.T) {
	textures := texMap{mc("block/furnace_top"): gradient()}
	// ids 0, 1 and 2
	a := New(3, 2, textures)

	north := topFaces(origin, full, "block/furnace_top", blockmodel.AppliedModel{})
	south := topFaces(origin, full, "block/furnace_top", blockmodel.AppliedModel{Y: 180})

	for id, faces := range map[int][]blockmodel.OrientedFace{1: north, 2: south} {
		placed, err := a.Draw(id, "minecraft", faces)
		if err != nil || !placed {
			t.Fatalf("Draw(%d) = %v, %v", id, placed, err)
		}
	}

	if x, y := a.CellPos(1); x != 1 || y != 0 {
		t.Errorf("Variant 1 at (%d,%d), want (1,0)", x, y)
	}
	if x, y := a.CellPos(2); x != 0 || y != 1 {
		t.Errorf("Variant 2 at (%d,%d), want (0,1)", x, y)
	}

	img := a.Image()
	tex := gradient().Image
	c1, c2 := a.Cell(1), a.Cell(2)
	for y := 0; y < CellSize; y++ {
		for x := 0; x < CellSize; x++ {
			if got, want := img.NRGBAAt(c1.Min.X+x, c1.Min.Y+y), tex.NRGBAAt(x, y); got != want {
				t.Fatalf("cell 1 (%d,%d) = %v, want %v", x, y, got, want)
			}
			// the south variant is the same texture turned half way round
			if got, want := img.NRGBAAt(c2.Min.X+x, c2.Min.Y+y), tex.NRGBAAt(15-x, 15-y); got != want {
				t.Fatalf("cell 2 (%d,%d) = %v, want %v", x, y, got, want)
			}
			if got := img.NRGBAAt(x, y); got.A != 0 {
				t.Fatalf("reserved cell 0 was painted at (%d,%d)", x, y)
			}
		}
	}
}

func TestQuarterTurnRotatesClockwise(t *testing.T) {
	a := New(2, 2, texMap{mc("block/t"): gradient()})
	faces := topFaces(origin, full, "block/t", blockmodel.AppliedModel{Y: 90})
	if _, err := a.Draw(1, "minecraft", faces); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	tex := gradient().Image
	cell := a.Cell(1)
	// clockwise: the texture's top-left texel ends up top-right
	if got, want := a.Image().NRGBAAt(cell.Max.X-1, cell.Min.Y), tex.NRGBAAt(0, 0); got != want {
		t.Errorf("top-right = %v, want %v", got, want)
	}
	if got, want := a.Image().NRGBAAt(cell.Min.X, cell.Min.Y), tex.NRGBAAt(0, 15); got != want {
		t.Errorf("top-left = %v, want %v", got, want)
	}
}

func TestHeightOrdering(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	a := New(2, 2, texMap{mc("block/red"): flat(red), mc("block/blue"): flat(blue)})

	high := topFaces(origin, [3]float32{16, 8, 16}, "block/blue", blockmodel.AppliedModel{})
	low := topFaces(origin, [3]float32{16, 0, 16}, "block/red", blockmodel.AppliedModel{})

	// listed top first; drawing must still go bottom up
	placed, err := a.Draw(1, "minecraft", append(high, low...))
	if err != nil || !placed {
		t.Fatalf("Draw = %v, %v", placed, err)
	}

	cell := a.Cell(1)
	for y := cell.Min.Y; y < cell.Max.Y; y++ {
		for x := cell.Min.X; x < cell.Max.X; x++ {
			if got := a.Image().NRGBAAt(x, y); got != blue {
				t.Fatalf("(%d,%d) = %v, want the higher element's blue", x, y, got)
			}
		}
	}
	if h := a.HeightMap().GrayAt(1, 0).Y; h != 64 {
		t.Errorf("Expected height 8*8=64, got %d", h)
	}
}

func TestPartialFootprint(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	a := New(2, 2, texMap{mc("block/red"): flat(red)})
	faces := topFaces(origin, [3]float32{8, 2, 8}, "block/red", blockmodel.AppliedModel{})
	if _, err := a.Draw(1, "minecraft", faces); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	cell := a.Cell(1)
	for y := 0; y < CellSize; y++ {
		for x := 0; x < CellSize; x++ {
			got := a.Image().NRGBAAt(cell.Min.X+x, cell.Min.Y+y)
			inside := x < 8 && y < 8
			if inside && got != red {
				t.Fatalf("(%d,%d) = %v, want red", x, y, got)
			}
			if !inside && got.A != 0 {
				t.Fatalf("(%d,%d) = %v, want untouched", x, y, got)
			}
		}
	}
	if h := a.HeightMap().GrayAt(1, 0).Y; h != 16 {
		t.Errorf("Expected height 16, got %d", h)
	}
}

func TestOversizedElementIsClipped(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	a := New(4, 2, texMap{mc("block/red"): flat(red)})
	faces := topFaces([3]float32{-8, 0, 0}, [3]float32{24, 40, 16}, "block/red", blockmodel.AppliedModel{})
	if _, err := a.Draw(1, "minecraft", faces); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	// neighbours stay clean
	for _, id := range []int{0, 2} {
		c := a.Cell(id)
		if got := a.Image().NRGBAAt(c.Min.X+8, c.Min.Y+8); got.A != 0 {
			t.Errorf("cell %d was painted: %v", id, got)
		}
	}
	if h := a.HeightMap().GrayAt(1, 0).Y; h != 255 {
		t.Errorf("Expected height clamped to 255, got %d", h)
	}
}

func TestDrawErrors(t *testing.T) {
	a := New(3, 2, texMap{mc("block/red"): flat(color.NRGBA{R: 255, A: 255})})
	faces := topFaces(origin, full, "block/red", blockmodel.AppliedModel{})

	for _, id := range []int{0, 4, 99} {
		placed, err := a.Draw(id, "minecraft", faces)
		var ce *CapacityError
		if placed || !errors.As(err, &ce) {
			t.Errorf("Draw(%d) = %v, %v; want CapacityError", id, placed, err)
		}
	}

	if placed, err := a.Draw(1, "minecraft", nil); placed || err != nil {
		t.Errorf("Draw with no faces = %v, %v", placed, err)
	}

	missing := topFaces(origin, full, "block/nope", blockmodel.AppliedModel{})
	placed, err := a.Draw(2, "minecraft", missing)
	var re *RenderError
	if placed || !errors.As(err, &re) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Draw with a missing texture = %v, %v", placed, err)
	}

	alias := topFaces(origin, full, "#side", blockmodel.AppliedModel{})
	if placed, err := a.Draw(2, "minecraft", append(faces, alias...)); !placed || !errors.As(err, &re) {
		t.Errorf("Draw with one bad face = %v, %v; want placed with a RenderError", placed, err)
	}

	flatQuad := topFaces(origin, [3]float32{0, 16, 16}, "block/red", blockmodel.AppliedModel{})
	if placed, err := a.Draw(3, "minecraft", flatQuad); placed || !errors.As(err, &re) {
		t.Errorf("Draw with a degenerate quad = %v, %v", placed, err)
	}
}

func TestNamespacedTexture(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	a := New(2, 2, texMap{{Namespace: "amod", Path: "block/ore"}: flat(red)})
	faces := topFaces(origin, full, "block/ore", blockmodel.AppliedModel{})
	if placed, err := a.Draw(1, "amod", faces); !placed || err != nil {
		t.Fatalf("Draw = %v, %v", placed, err)
	}
	if got := a.Image().NRGBAAt(20, 4); got != red {
		t.Errorf("Expected the mod texture, got %v", got)
	}
}

func TestTranslucentOverOpaque(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	clear := color.NRGBA{R: 9, G: 9, B: 9, A: 0}
	glass := color.NRGBA{B: 255, A: 128}
	a := New(2, 2, texMap{mc("block/red"): flat(red), mc("block/clear"): flat(clear), mc("block/glass"): flat(glass)})

	faces := topFaces(origin, [3]float32{16, 1, 16}, "block/red", blockmodel.AppliedModel{})
	faces = append(faces, topFaces(origin, [3]float32{16, 2, 16}, "block/clear", blockmodel.AppliedModel{})...)
	if _, err := a.Draw(1, "minecraft", faces); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if got := a.Image().NRGBAAt(20, 4); got != red {
		t.Errorf("A fully transparent face changed the cell: %v", got)
	}

	faces = append(faces, topFaces(origin, [3]float32{16, 3, 16}, "block/glass", blockmodel.AppliedModel{})...)
	if _, err := a.Draw(1, "minecraft", faces); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	got := a.Image().NRGBAAt(20, 4)
	if got.A != 255 || got.R != 127 || got.B != 128 {
		t.Errorf("Unexpected blend %v", got)
	}
}
