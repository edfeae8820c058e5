// Package atlas paints the top view of every block variant into a grid of
// 16x16 cells and derives per-cell lookup tables from it.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"

	"mcbake/internal/assets"
	"mcbake/pkg/blockmodel"
)

// CellSize is the edge of one cell in pixels, one pixel per model unit.
const CellSize = 16

// DefaultHeightScale maps a height in model units to a heightmap byte.
const DefaultHeightScale = 8

type TextureSource interface {
	Texture(loc blockmodel.Location) (*assets.Texture, error)
}

type textureEntry struct {
	tex *assets.Texture
	err error
}

// Atlas is safe for concurrent Draw calls on distinct ids.
type Atlas struct {
	across, rows int
	heightScale  float32

	img     *image.NRGBA
	heights *image.Gray

	textures TextureSource
	mu       sync.Mutex
	cache    map[blockmodel.Location]textureEntry
}

type Option func(*Atlas)

// WithHeightScale overrides DefaultHeightScale.
func WithHeightScale(scale float32) Option {
	return func(a *Atlas) {
		a.heightScale = scale
	}
}

// New sizes the atlas for total variants, id 0 included.
func New(total, cellsAcross int, textures TextureSource, opts ...Option) *Atlas {
	if cellsAcross < 1 {
		cellsAcross = 1
	}
	rows := (total + cellsAcross - 1) / cellsAcross
	if rows < 1 {
		rows = 1
	}

	a := &Atlas{
		across:      cellsAcross,
		rows:        rows,
		heightScale: DefaultHeightScale,
		img:         image.NewNRGBA(image.Rect(0, 0, cellsAcross*CellSize, rows*CellSize)),
		heights:     image.NewGray(image.Rect(0, 0, cellsAcross, rows)),
		textures:    textures,
		cache:       make(map[blockmodel.Location]textureEntry),
	}
	for _, opt := range opts {
		opt(a)
	}

	log.WithFields(log.Fields{
		"cells":  a.Capacity(),
		"width":  a.img.Bounds().Dx(),
		"height": a.img.Bounds().Dy(),
	}).Debug("atlas allocated")
	return a
}

func (a *Atlas) CellsAcross() int { return a.across }
func (a *Atlas) Rows() int        { return a.rows }
func (a *Atlas) Capacity() int    { return a.across * a.rows }

// Image is the atlas itself.
func (a *Atlas) Image() *image.NRGBA { return a.img }

// HeightMap holds one byte per cell.
func (a *Atlas) HeightMap() *image.Gray { return a.heights }

// CellPos is the grid position of variant id.
func (a *Atlas) CellPos(id int) (x, y int) {
	return id % a.across, id / a.across
}

// Cell is the pixel rectangle of variant id.
func (a *Atlas) Cell(id int) image.Rectangle {
	x, y := a.CellPos(id)
	return image.Rect(x*CellSize, y*CellSize, (x+1)*CellSize, (y+1)*CellSize)
}

// Draw paints the faces of variant id into its cell, lowest first. placed
// reports whether any face made it into the cell; per-face failures are
// returned together as a *RenderError.
func (a *Atlas) Draw(id int, namespace string, faces []blockmodel.OrientedFace) (bool, error) {
	if id < 1 || id >= a.Capacity() {
		return false, &CapacityError{ID: id, Capacity: a.Capacity()}
	}
	if len(faces) == 0 {
		return false, nil
	}

	rects := make([]rectified, len(faces))
	for i, f := range faces {
		rects[i] = rectify(f)
	}
	sort.SliceStable(rects, func(i, j int) bool {
		return rects[i].height < rects[j].height
	})

	cell := a.Cell(id)
	var (
		errs   []error
		placed bool
		height float32
	)
	for _, r := range rects {
		if err := a.paint(cell, namespace, r); err != nil {
			errs = append(errs, err)
			continue
		}
		placed = true
		height = r.height
	}

	if placed {
		x, y := a.CellPos(id)
		a.heights.Pix[a.heights.PixOffset(x, y)] = a.scaleHeight(height)
	}
	if len(errs) > 0 {
		return placed, &RenderError{ID: id, Err: errors.Join(errs...)}
	}
	return placed, nil
}

func (a *Atlas) scaleHeight(h float32) uint8 {
	v := int(h * a.heightScale)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (a *Atlas) paint(cell image.Rectangle, namespace string, r rectified) error {
	if blockmodel.IsAlias(r.texture) {
		return fmt.Errorf("unresolved texture %s", r.texture)
	}
	tex, err := a.texture(blockmodel.ParseLocation(r.texture, namespace))
	if err != nil {
		return err
	}

	w, h := tex.Size()
	u0, v0, u1, v1 := r.uv.pixels(float32(w)/CellSize, float32(h)/CellSize)
	piece := imaging.Crop(tex.Image, image.Rect(u0, v0, u1, v1))
	if piece.Bounds().Empty() {
		return fmt.Errorf("texture %s: empty uv %v", r.texture, r.uv)
	}
	piece = rotateClockwise(piece, r.rotation)

	x0, z0, x1, z1 := r.quad.pixels(1, 1)
	dst := image.Rect(x0, z0, x1, z1)
	if dst.Empty() {
		return fmt.Errorf("texture %s: degenerate quad %v", r.texture, r.quad)
	}
	piece = imaging.Resize(piece, dst.Dx(), dst.Dy(), imaging.NearestNeighbor)

	dst = dst.Add(cell.Min)
	clip := dst.Intersect(cell)
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			src := piece.NRGBAAt(x-dst.Min.X, y-dst.Min.Y)
			a.img.SetNRGBA(x, y, over(a.img.NRGBAAt(x, y), src, tex.Opaque))
		}
	}
	return nil
}

func rotateClockwise(img *image.NRGBA, deg int) *image.NRGBA {
	switch (deg / 90) % 4 {
	case 1:
		return imaging.Rotate270(img)
	case 2:
		return imaging.Rotate180(img)
	case 3:
		return imaging.Rotate90(img)
	}
	return img
}

func (a *Atlas) texture(loc blockmodel.Location) (*assets.Texture, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.cache[loc]; ok {
		return e.tex, e.err
	}
	tex, err := a.textures.Texture(loc)
	a.cache[loc] = textureEntry{tex: tex, err: err}
	return tex, err
}
