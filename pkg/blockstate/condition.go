package blockstate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// condition is a multipart "when". Every one of its parts must hold.
type condition struct {
	parts []part
}

type part interface {
	// collect registers the property values the part mentions.
	collect(b *Blockstate)
	// apply narrows the partial masks to the ones satisfying the part.
	apply(b *Blockstate, masks []Mask) []Mask
}

// clause is a "property": "a|b" entry.
type clause struct {
	property string
	values   []string
}

// anyOf is "OR": at least one branch holds.
type anyOf []*condition

// allOf is "AND": every branch holds.
type allOf []*condition

func parseCondition(obj orderedObject) (*condition, error) {
	c := &condition{}
	for _, m := range obj {
		switch m.Key {
		case "OR", "AND":
			var branches []orderedObject
			if err := json.Unmarshal(m.Value, &branches); err != nil {
				return nil, fmt.Errorf("%s: %w", m.Key, err)
			}
			subs := make([]*condition, len(branches))
			for i, br := range branches {
				sub, err := parseCondition(br)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", m.Key, i, err)
				}
				subs[i] = sub
			}
			if m.Key == "OR" {
				c.parts = append(c.parts, anyOf(subs))
			} else {
				c.parts = append(c.parts, allOf(subs))
			}
		default:
			value, err := scalarString(m.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.Key, err)
			}
			c.parts = append(c.parts, clause{property: m.Key, values: strings.Split(value, "|")})
		}
	}
	return c, nil
}

func (c *condition) collect(b *Blockstate) {
	for _, p := range c.parts {
		p.collect(b)
	}
}

// masks expands the condition into the alternative masks that satisfy it.
func (c *condition) masks(b *Blockstate) []Mask {
	masks := []Mask{0}
	for _, p := range c.parts {
		masks = p.apply(b, masks)
	}
	return masks
}

func (cl clause) collect(b *Blockstate) {
	for _, v := range cl.values {
		b.addValue(cl.property, v)
	}
}

// apply ORs the clause into every partial mask. With several "|" values
// each partial mask forks once per value.
func (cl clause) apply(b *Blockstate, masks []Mask) []Mask {
	out := make([]Mask, 0, len(masks)*len(cl.values))
	for _, v := range cl.values {
		bit := b.bit(cl.property, v)
		for _, m := range masks {
			out = append(out, m|bit)
		}
	}
	return out
}

func (a anyOf) collect(b *Blockstate) {
	for _, sub := range a {
		sub.collect(b)
	}
}

func (a anyOf) apply(b *Blockstate, masks []Mask) []Mask {
	var alts []Mask
	for _, sub := range a {
		alts = append(alts, sub.masks(b)...)
	}
	return product(masks, alts)
}

func (a allOf) collect(b *Blockstate) {
	for _, sub := range a {
		sub.collect(b)
	}
}

func (a allOf) apply(b *Blockstate, masks []Mask) []Mask {
	for _, sub := range a {
		masks = product(masks, sub.masks(b))
	}
	return masks
}

func product(left, right []Mask) []Mask {
	out := make([]Mask, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, l|r)
		}
	}
	return out
}
