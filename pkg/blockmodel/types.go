package blockmodel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Model is a block model definition. Elements is nil when the definition
// does not declare any and has to inherit them; an explicit empty list is
// kept as a defined, empty geometry.
type Model struct {
	Parent           string            `json:"parent,omitempty"`
	AmbientOcclusion *bool             `json:"ambientocclusion,omitempty"`
	Textures         map[string]string `json:"textures,omitempty"`
	Elements         []Element         `json:"elements"`
}

type Element struct {
	From     [3]float32      `json:"from"`
	To       [3]float32      `json:"to"`
	Rotation *Rotation       `json:"rotation,omitempty"`
	Shade    *bool           `json:"shade,omitempty"`
	Faces    map[string]Face `json:"faces"`
}

// Rotation is the per-element tilt. The top-down bake ignores it.
type Rotation struct {
	Origin  [3]float32 `json:"origin"`
	Angle   float32    `json:"angle"`
	Axis    string     `json:"axis"`
	Rescale bool       `json:"rescale"`
}

type Face struct {
	UV        [4]float32 `json:"uv"`
	Texture   string     `json:"texture"`
	CullFace  string     `json:"cullface,omitempty"`
	Rotation  int        `json:"rotation,omitempty"`
	TintIndex *int       `json:"tintindex,omitempty"`
}

// DefaultUV covers the whole texture.
var DefaultUV = [4]float32{0, 0, 16, 16}

// UnmarshalJSON fills in the default UV and brings the texture rotation into
// [0, 360). Rotations that are not quarter turns are rejected.
func (f *Face) UnmarshalJSON(data []byte) error {
	type rawFace Face
	raw := rawFace{UV: DefaultUV}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rot, err := ParseRotation(raw.Rotation)
	if err != nil {
		return fmt.Errorf("face texture %q: %w", raw.Texture, err)
	}
	raw.Rotation = rot
	*f = Face(raw)
	return nil
}

func (f Face) clone() Face {
	if f.TintIndex != nil {
		t := *f.TintIndex
		f.TintIndex = &t
	}
	return f
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{Parent: m.Parent}
	if m.AmbientOcclusion != nil {
		ao := *m.AmbientOcclusion
		c.AmbientOcclusion = &ao
	}
	if m.Textures != nil {
		c.Textures = make(map[string]string, len(m.Textures))
		for k, v := range m.Textures {
			c.Textures[k] = v
		}
	}
	c.Elements = cloneElements(m.Elements)
	return c
}

func cloneElements(src []Element) []Element {
	if src == nil {
		return nil
	}
	dst := make([]Element, len(src))
	for i, e := range src {
		dst[i] = e
		if e.Rotation != nil {
			r := *e.Rotation
			dst[i].Rotation = &r
		}
		if e.Shade != nil {
			s := *e.Shade
			dst[i].Shade = &s
		}
		if e.Faces != nil {
			dst[i].Faces = make(map[string]Face, len(e.Faces))
			for name, f := range e.Faces {
				dst[i].Faces[name] = f.clone()
			}
		}
	}
	return dst
}

// AppliedModel is the model reference attached to one block variant: which
// model, how it is rotated and whether its textures stay world-aligned.
type AppliedModel struct {
	Model  string `json:"model"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	UVLock bool   `json:"uvlock,omitempty"`
	Weight *int   `json:"weight,omitempty"`
}

func (a AppliedModel) weight() int {
	if a.Weight == nil {
		return 1
	}
	return *a.Weight
}

// Validate checks the rotations and normalizes them into [0,360).
func (a *AppliedModel) Validate() error {
	if a.Model == "" {
		return errors.New("applied model has no model reference")
	}
	x, err := ParseRotation(a.X)
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	y, err := ParseRotation(a.Y)
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}
	a.X, a.Y = x, y
	return nil
}

// AppliedModels handles the fact that an "apply" or variant value can
// contain either a single object or an array of weighted objects.
type AppliedModels []AppliedModel

func (v *AppliedModels) UnmarshalJSON(data []byte) error {
	// First, try to unmarshal as an array
	var models []AppliedModel
	if err := json.Unmarshal(data, &models); err == nil {
		*v = models
		return nil
	}

	// If that fails, try to unmarshal as a single object
	var single AppliedModel
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}

	*v = []AppliedModel{single}
	return nil
}

// Pick keeps the alternative with the highest weight. Equal weights resolve
// to the one listed last.
func (v AppliedModels) Pick() (AppliedModel, error) {
	if len(v) == 0 {
		return AppliedModel{}, errors.New("empty model list")
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i].weight() >= v[best].weight() {
			best = i
		}
	}
	picked := v[best]
	if err := picked.Validate(); err != nil {
		return AppliedModel{}, err
	}
	return picked, nil
}
