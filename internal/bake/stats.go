package bake

import (
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Stats counts what happened to blocks and variants during a run. Only the
// goroutine draining render results writes the counters; callers may read
// them while a run is in progress.
type Stats struct {
	Blocks         atomic.Int64
	SkippedBlocks  atomic.Int64
	Variants       atomic.Int64
	Placed         atomic.Int64
	Empty          atomic.Int64
	MissingModels  atomic.Int64
	RenderFailures atomic.Int64
}

func (s *Stats) Fields() log.Fields {
	return log.Fields{
		"blocks":          s.Blocks.Load(),
		"skipped_blocks":  s.SkippedBlocks.Load(),
		"variants":        s.Variants.Load(),
		"placed":          s.Placed.Load(),
		"empty":           s.Empty.Load(),
		"missing_models":  s.MissingModels.Load(),
		"render_failures": s.RenderFailures.Load(),
	}
}
