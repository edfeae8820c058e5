package blockmodel

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ModelSource supplies raw model JSON by location.
type ModelSource interface {
	Model(loc Location) ([]byte, error)
}

// Graph resolves models against their parent chains. Parsed definitions are
// kept in an arena and never mutated; resolved models are memoized and
// shared, so callers that need to modify one use ResolvePrivate.
type Graph struct {
	src      ModelSource
	defs     map[Location]*Model
	resolved map[Location]*Model
	failed   map[Location]error
}

func NewGraph(src ModelSource) *Graph {
	return &Graph{
		src:      src,
		defs:     make(map[Location]*Model),
		resolved: make(map[Location]*Model),
		failed:   make(map[Location]error),
	}
}

// Resolve returns the fully resolved model for loc. The result is shared
// with every other caller and must be treated as read-only.
func (g *Graph) Resolve(loc Location) (*Model, error) {
	if model, ok := g.resolved[loc]; ok {
		return model, nil
	}
	if err, ok := g.failed[loc]; ok {
		return nil, err
	}

	chain, err := g.chain(loc)
	if err != nil {
		g.failed[loc] = err
		return nil, err
	}

	model := merge(chain)
	g.resolved[loc] = model
	return model, nil
}

// ResolvePrivate returns an independent deep copy of the resolved model.
func (g *Graph) ResolvePrivate(loc Location) (*Model, error) {
	model, err := g.Resolve(loc)
	if err != nil {
		return nil, err
	}
	return model.Clone(), nil
}

// Len reports how many models have been resolved.
func (g *Graph) Len() int {
	return len(g.resolved)
}

func (g *Graph) definition(loc Location) (*Model, error) {
	if model, ok := g.defs[loc]; ok {
		return model, nil
	}

	data, err := g.src.Model(loc)
	if err != nil {
		return nil, err
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("could not unmarshal model json: %w", err)
	}

	g.defs[loc] = &model
	return &model, nil
}

// chain returns the definitions from loc up to the root of its parent
// chain, leaf first.
func (g *Graph) chain(loc Location) ([]*Model, error) {
	var (
		chain []*Model
		names []Location
		seen  = make(map[Location]bool)
	)
	for cur := loc; ; {
		names = append(names, cur)
		if seen[cur] {
			return nil, &MissingModelError{Model: loc, Missing: cur, Chain: names, Cycle: true}
		}
		seen[cur] = true

		def, err := g.definition(cur)
		if err != nil {
			return nil, &MissingModelError{Model: loc, Missing: cur, Chain: names, Err: err}
		}
		chain = append(chain, def)

		if def.Parent == "" {
			return chain, nil
		}
		parent := ModelLocation(def.Parent, cur.Namespace)
		if parent.IsBuiltin() {
			return chain, nil
		}
		cur = parent
	}
}

// merge folds a leaf-first chain from the root downward. Children override
// inherited textures and ambient occlusion; elements come from the nearest
// definition that declares them. The inherited elements are copied before
// their texture aliases are resolved so the arena stays untouched.
func merge(chain []*Model) *Model {
	root := chain[len(chain)-1]
	ao := root.AmbientOcclusion
	textures := make(map[string]string, len(root.Textures))
	for k, v := range root.Textures {
		textures[k] = v
	}
	elements := root.Elements

	for i := len(chain) - 2; i >= 0; i-- {
		child := chain[i]
		if child.AmbientOcclusion != nil {
			ao = child.AmbientOcclusion
		}
		for k, v := range child.Textures {
			textures[k] = v
		}
		if child.Elements != nil {
			elements = child.Elements
		}
	}

	occlusion := ao == nil || *ao
	model := &Model{
		AmbientOcclusion: &occlusion,
		Textures:         textures,
		Elements:         cloneElements(elements),
	}
	if model.Elements == nil {
		model.Elements = []Element{}
	}
	for i := range model.Elements {
		for name, face := range model.Elements[i].Faces {
			face.Texture = ResolveTexture(face.Texture, textures)
			model.Elements[i].Faces[name] = face
		}
	}
	return model
}

// ResolveTexture follows "#name" aliases through textures until it reaches a
// literal. A missing key or an alias loop stops the walk and the last alias
// is returned unresolved.
func ResolveTexture(ref string, textures map[string]string) string {
	for i := 0; i <= len(textures) && strings.HasPrefix(ref, "#"); i++ {
		next, ok := textures[strings.TrimPrefix(ref, "#")]
		if !ok || next == ref {
			break
		}
		ref = next
	}
	return ref
}

// IsAlias reports whether a texture reference is still an unresolved alias.
func IsAlias(ref string) bool {
	return strings.HasPrefix(ref, "#")
}
