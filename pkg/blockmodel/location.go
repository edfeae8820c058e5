package blockmodel

import "strings"

// DefaultNamespace is the namespace of the base game assets.
const DefaultNamespace = "minecraft"

// Location names a namespaced asset such as "minecraft:block/stone".
type Location struct {
	Namespace string
	Path      string
}

// ParseLocation splits a "namespace:path" reference. A reference without a
// namespace inherits ns.
func ParseLocation(ref, ns string) Location {
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		return Location{Namespace: ref[:i], Path: ref[i+1:]}
	}
	return Location{Namespace: ns, Path: ref}
}

// ModelLocation parses a model reference. Bare names from old packs
// ("stone") live under block/.
func ModelLocation(ref, ns string) Location {
	loc := ParseLocation(ref, ns)
	if !strings.Contains(loc.Path, "/") {
		loc.Path = "block/" + loc.Path
	}
	return loc
}

func (l Location) String() string {
	return l.Namespace + ":" + l.Path
}

// IsBuiltin reports whether the location names a hardcoded engine model
// ("builtin/generated", "builtin/entity") that has no JSON definition.
func (l Location) IsBuiltin() bool {
	return strings.HasPrefix(l.Path, "builtin/")
}
