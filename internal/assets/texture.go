package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"

	"github.com/disintegration/imaging"

	"mcbake/pkg/blockmodel"
)

// Texture is a decoded block texture.
type Texture struct {
	Image *image.NRGBA
	// Opaque is set when the source had no transparency at all.
	Opaque bool
}

func (t *Texture) Size() (int, int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Texture decodes a texture. Animated textures (those with a .png.mcmeta
// next to them) are cropped to their first, top square frame.
func (s *Source) Texture(loc blockmodel.Location) (*Texture, error) {
	name := assetPath(loc, "textures", ".png")
	data, err := s.read(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingAssetError{Kind: "texture", Location: loc}
	}
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", loc, err)
	}

	opaque := false
	if o, ok := img.(interface{ Opaque() bool }); ok {
		opaque = o.Opaque()
	}

	nrgba := imaging.Clone(img)
	if s.exists(name + ".mcmeta") {
		w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
		if h > w {
			nrgba = imaging.Crop(nrgba, image.Rect(0, 0, w, w))
		}
	}

	return &Texture{Image: nrgba, Opaque: opaque}, nil
}
