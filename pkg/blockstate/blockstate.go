// Package blockstate compiles blockstate definitions into bitmask-keyed
// variant tables.
//
// Every distinct property value gets its own bit. A "variants" selector such
// as "facing=north,half=top" compiles to the OR of its value bits; a
// "multipart" rule compiles to a list of alternative masks.
package blockstate

import (
	"encoding/json"
	"fmt"
	"strings"

	"mcbake/pkg/blockmodel"
)

// Mask is a set of property value bits.
type Mask uint32

// MaxBits is the number of property values a blockstate may use.
const MaxBits = 31

type Kind int

const (
	Single Kind = iota
	Variants
	Multipart
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Variants:
		return "variants"
	case Multipart:
		return "multipart"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Key is one property value and the bit assigned to it.
type Key struct {
	Property string
	Value    string
	Bit      Mask
}

func (k Key) String() string {
	return k.Property + "=" + k.Value
}

// Entry is one variant of the block. Variants entries carry exactly one
// mask; multipart entries apply when any of their masks matches.
type Entry struct {
	Selector string
	Masks    []Mask
	Model    blockmodel.AppliedModel
}

type Blockstate struct {
	kind    Kind
	props   []property
	entries []Entry
}

type property struct {
	name   string
	values []Key
}

func (b *Blockstate) Kind() Kind {
	return b.kind
}

// Keys lists every property value in bit order.
func (b *Blockstate) Keys() []Key {
	var keys []Key
	for _, p := range b.props {
		keys = append(keys, p.values...)
	}
	return keys
}

func (b *Blockstate) Entries() []Entry {
	return b.entries
}

func (b *Blockstate) addValue(prop, value string) {
	for i := range b.props {
		if b.props[i].name != prop {
			continue
		}
		for _, k := range b.props[i].values {
			if k.Value == value {
				return
			}
		}
		b.props[i].values = append(b.props[i].values, Key{Property: prop, Value: value})
		return
	}
	b.props = append(b.props, property{name: prop, values: []Key{{Property: prop, Value: value}}})
}

// assignBits numbers the values property by property, in discovery order.
func (b *Blockstate) assignBits() error {
	n := 0
	for _, p := range b.props {
		n += len(p.values)
	}
	if n > MaxBits {
		return fmt.Errorf("%w: %d values", ErrMaskOverflow, n)
	}

	bit := Mask(1)
	for i := range b.props {
		for j := range b.props[i].values {
			b.props[i].values[j].Bit = bit
			bit <<= 1
		}
	}
	return nil
}

func (b *Blockstate) bit(prop, value string) Mask {
	for _, p := range b.props {
		if p.name != prop {
			continue
		}
		for _, k := range p.values {
			if k.Value == value {
				return k.Bit
			}
		}
	}
	return 0
}

type document struct {
	Variants  *orderedObject `json:"variants"`
	Multipart []struct {
		When  *orderedObject           `json:"when"`
		Apply blockmodel.AppliedModels `json:"apply"`
	} `json:"multipart"`
}

// Parse validates and compiles a blockstate definition. Definitions with
// both forms use "variants".
func Parse(data []byte) (*Blockstate, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, malformed(err, "decode")
	}

	var (
		b   = &Blockstate{}
		err error
	)
	if doc.Variants != nil {
		err = b.parseVariants(*doc.Variants)
		b.kind = Variants
	} else {
		rules := make([]rule, len(doc.Multipart))
		for i, r := range doc.Multipart {
			rules[i].apply = r.Apply
			if r.When != nil {
				if rules[i].when, err = parseCondition(*r.When); err != nil {
					return nil, malformed(err, "multipart[%d].when", i)
				}
			}
		}
		err = b.parseMultipart(rules)
		b.kind = Multipart
	}
	if err != nil {
		return nil, err
	}
	if len(b.entries) == 0 {
		return nil, malformed(nil, "no variants")
	}

	if len(b.props) == 0 {
		b.kind = Single
	}
	return b, nil
}

func isDefaultSelector(sel string) bool {
	return sel == "" || sel == "normal"
}

func splitSelector(sel string) ([][2]string, error) {
	var out [][2]string
	for _, part := range strings.Split(sel, ",") {
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("selector %q: %q is not name=value", sel, part)
		}
		out = append(out, [2]string{name, value})
	}
	return out, nil
}

func (b *Blockstate) parseVariants(variants orderedObject) error {
	selectors := make([][][2]string, len(variants))
	for i, m := range variants {
		if isDefaultSelector(m.Key) {
			continue
		}
		pairs, err := splitSelector(m.Key)
		if err != nil {
			return malformed(err, "variants")
		}
		for _, p := range pairs {
			b.addValue(p[0], p[1])
		}
		selectors[i] = pairs
	}

	if err := b.assignBits(); err != nil {
		return err
	}

	for i, m := range variants {
		var mask Mask
		for _, p := range selectors[i] {
			mask |= b.bit(p[0], p[1])
		}

		var alts blockmodel.AppliedModels
		if err := json.Unmarshal(m.Value, &alts); err != nil {
			return malformed(err, "variant %q", m.Key)
		}
		am, err := alts.Pick()
		if err != nil {
			return malformed(err, "variant %q", m.Key)
		}
		b.entries = append(b.entries, Entry{Selector: m.Key, Masks: []Mask{mask}, Model: am})
	}
	return nil
}

type rule struct {
	when  *condition
	apply blockmodel.AppliedModels
}

func (b *Blockstate) parseMultipart(rules []rule) error {
	for _, r := range rules {
		if r.when != nil {
			r.when.collect(b)
		}
	}

	if err := b.assignBits(); err != nil {
		return err
	}

	for i, r := range rules {
		var masks []Mask
		if r.when != nil {
			masks = r.when.masks(b)
		}
		if len(masks) == 0 {
			masks = []Mask{0}
		}

		am, err := r.apply.Pick()
		if err != nil {
			return malformed(err, "multipart[%d].apply", i)
		}
		b.entries = append(b.entries, Entry{Selector: fmt.Sprintf("multipart[%d]", i), Masks: masks, Model: am})
	}
	return nil
}
