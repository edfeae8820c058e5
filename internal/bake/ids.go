package bake

import (
	"mcbake/pkg/blockmodel"
	"mcbake/pkg/blockstate"
)

// VariantRef identifies the blockstate entry a variant id was issued for.
type VariantRef struct {
	Block    blockmodel.Location
	Entry    int
	Selector string
	Model    blockmodel.AppliedModel
}

// Allocator issues dense variant ids starting at 1. Id 0 is reserved for
// "no variant".
type Allocator struct {
	refs []VariantRef
}

func NewAllocator() *Allocator {
	return &Allocator{refs: make([]VariantRef, 1)}
}

func (a *Allocator) Allocate(ref VariantRef) int {
	a.refs = append(a.refs, ref)
	return len(a.refs) - 1
}

// Total counts the issued ids plus the reserved one.
func (a *Allocator) Total() int {
	return len(a.refs)
}

func (a *Allocator) Variant(id int) (VariantRef, bool) {
	if id < 1 || id >= len(a.refs) {
		return VariantRef{}, false
	}
	return a.refs[id], true
}

// blockAllocator adapts the Allocator to one blockstate.
type blockAllocator struct {
	alloc *Allocator
	block blockmodel.Location
	state *blockstate.Blockstate
}

func (b blockAllocator) Allocate(entry int, model blockmodel.AppliedModel) int {
	return b.alloc.Allocate(VariantRef{
		Block:    b.block,
		Entry:    entry,
		Selector: b.state.Entries()[entry].Selector,
		Model:    model,
	})
}
