package blockstate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mcbake/pkg/blockmodel"
)

// IDAllocator hands out variant ids for the entries of one blockstate.
type IDAllocator interface {
	Allocate(entry int, model blockmodel.AppliedModel) int
}

// IndexValue is one compiled entry and the variant id it resolved to.
type IndexValue struct {
	Masks []Mask
	ID    int
}

// IndexEntry is the serialized form of a blockstate in the bake index.
type IndexEntry struct {
	Kind   Kind
	ID     int
	Keys   []Key
	Values []IndexValue
}

// Serialize allocates ids in entry order and builds the index entry. A
// single blockstate only allocates its first entry.
func (b *Blockstate) Serialize(alloc IDAllocator) IndexEntry {
	out := IndexEntry{Kind: b.kind}
	if b.kind == Single {
		out.ID = alloc.Allocate(0, b.entries[0].Model)
		return out
	}

	out.Keys = b.Keys()
	for i, e := range b.entries {
		out.Values = append(out.Values, IndexValue{
			Masks: e.Masks,
			ID:    alloc.Allocate(i, e.Model),
		})
	}
	return out
}

type multipartValue struct {
	When  []Mask `json:"when"`
	Apply int    `json:"apply"`
}

func (e IndexEntry) MarshalJSON() ([]byte, error) {
	if e.Kind == Single {
		return json.Marshal(orderedMap[int]{{Key: "single", Value: e.ID}})
	}

	keys := make(orderedMap[Mask], len(e.Keys))
	for i, k := range e.Keys {
		keys[i] = pair[Mask]{Key: k.String(), Value: k.Bit}
	}

	var values any
	if e.Kind == Variants {
		vs := make(orderedMap[int], len(e.Values))
		for i, v := range e.Values {
			vs[i] = pair[int]{Key: strconv.FormatUint(uint64(v.Masks[0]), 10), Value: v.ID}
		}
		values = vs
	} else {
		vs := make([]multipartValue, len(e.Values))
		for i, v := range e.Values {
			vs[i] = multipartValue{When: v.Masks, Apply: v.ID}
		}
		values = vs
	}

	body := orderedMap[any]{{Key: "keys", Value: keys}, {Key: "values", Value: values}}
	return json.Marshal(orderedMap[any]{{Key: e.Kind.String(), Value: body}})
}

// UnmarshalJSON reads an entry written by MarshalJSON back, keeping the key
// and value order.
func (e *IndexEntry) UnmarshalJSON(data []byte) error {
	var outer orderedObject
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	if len(outer) != 1 {
		return fmt.Errorf("index entry must have exactly one kind, got %d", len(outer))
	}

	*e = IndexEntry{}
	switch outer[0].Key {
	case "single":
		e.Kind = Single
		return json.Unmarshal(outer[0].Value, &e.ID)
	case "variants":
		e.Kind = Variants
	case "multipart":
		e.Kind = Multipart
	default:
		return fmt.Errorf("unknown index entry kind %q", outer[0].Key)
	}

	var body struct {
		Keys   orderedObject   `json:"keys"`
		Values json.RawMessage `json:"values"`
	}
	if err := json.Unmarshal(outer[0].Value, &body); err != nil {
		return err
	}
	for _, m := range body.Keys {
		prop, value, _ := strings.Cut(m.Key, "=")
		var bit Mask
		if err := json.Unmarshal(m.Value, &bit); err != nil {
			return fmt.Errorf("key %s: %w", m.Key, err)
		}
		e.Keys = append(e.Keys, Key{Property: prop, Value: value, Bit: bit})
	}

	if e.Kind == Multipart {
		var vs []multipartValue
		if err := json.Unmarshal(body.Values, &vs); err != nil {
			return err
		}
		for _, v := range vs {
			e.Values = append(e.Values, IndexValue{Masks: v.When, ID: v.Apply})
		}
		return nil
	}

	var vs orderedObject
	if err := json.Unmarshal(body.Values, &vs); err != nil {
		return err
	}
	for _, m := range vs {
		mask, err := strconv.ParseUint(m.Key, 10, 32)
		if err != nil {
			return fmt.Errorf("value key %q: %w", m.Key, err)
		}
		var id int
		if err := json.Unmarshal(m.Value, &id); err != nil {
			return err
		}
		e.Values = append(e.Values, IndexValue{Masks: []Mask{Mask(mask)}, ID: id})
	}
	return nil
}
