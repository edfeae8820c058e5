// Package bake runs the whole pipeline: index the blockstates, link the
// models they use, render every variant into the atlas and write the
// results out.
package bake

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"mcbake/internal/assets"
	"mcbake/internal/atlas"
	"mcbake/internal/config"
	"mcbake/internal/profiling"
	"mcbake/pkg/blockmodel"
	"mcbake/pkg/blockstate"
)

// ErrCountMismatch means the index and the allocator disagree on how many
// variants exist.
var ErrCountMismatch = errors.New("variant count mismatch")

// progressEvery is how many pooled results pass between progress lines.
const progressEvery = 512

// Source is everything the pipeline reads from resource packs.
type Source interface {
	BlockTypes() ([]blockmodel.Location, error)
	Blockstate(loc blockmodel.Location) ([]byte, error)
	Model(loc blockmodel.Location) ([]byte, error)
	Texture(loc blockmodel.Location) (*assets.Texture, error)
}

type VariantStatus int

const (
	StatusPending VariantStatus = iota
	StatusPlaced
	StatusEmpty
	StatusMissingModel
	StatusRenderError
)

func (s VariantStatus) String() string {
	switch s {
	case StatusPlaced:
		return "placed"
	case StatusEmpty:
		return "empty"
	case StatusMissingModel:
		return "missing_model"
	case StatusRenderError:
		return "render_error"
	}
	return "pending"
}

// Index is the lookup table written next to the atlas.
type Index struct {
	Data   map[string]blockstate.IndexEntry `json:"data"`
	Config IndexConfig                      `json:"config"`
}

type IndexConfig struct {
	LineWidth int `json:"linewidth"`
}

// Result holds everything a bake produced in memory.
type Result struct {
	RunID    string
	Started  time.Time
	Total    int
	Index    *Index
	Variants *Allocator
	Atlas    *atlas.Atlas
	Colors   *image.NRGBA
	Weights  *image.Gray

	// Status and Errors are indexed by variant id.
	Status []VariantStatus
	Errors []string
}

type Baker struct {
	cfg   config.Config
	src   Source
	log   *log.Entry
	prof  *profiling.Profile
	runID string

	Stats Stats
}

func New(cfg config.Config, src Source, logger *log.Logger) *Baker {
	if logger == nil {
		logger = log.StandardLogger()
	}
	runID := uuid.New().String()
	return &Baker{
		cfg:   cfg,
		src:   src,
		log:   logger.WithField("run", runID),
		prof:  profiling.New(),
		runID: runID,
	}
}

func (b *Baker) RunID() string {
	return b.runID
}

func (b *Baker) Profile() *profiling.Profile {
	return b.prof
}

// Run bakes and writes every output.
func (b *Baker) Run(ctx context.Context) (*Result, error) {
	res, err := b.Bake(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.Write(ctx, res); err != nil {
		return nil, err
	}
	b.log.WithFields(b.Stats.Fields()).WithField("phases", b.prof.TopN(5)).Info("bake finished")
	return res, nil
}

// Bake runs every phase up to color extraction without touching the disk.
func (b *Baker) Bake(ctx context.Context) (*Result, error) {
	res := &Result{RunID: b.runID, Started: time.Now()}

	idx, alloc, err := b.index(ctx)
	if err != nil {
		return nil, err
	}
	res.Index = idx
	res.Variants = alloc
	res.Total = alloc.Total()
	res.Status = make([]VariantStatus, res.Total)
	res.Errors = make([]string, res.Total)
	b.log.WithFields(log.Fields{"blocks": len(idx.Data), "variants": res.Total - 1}).Info("blockstates indexed")

	models, err := b.link(ctx, res)
	if err != nil {
		return nil, err
	}

	if err := b.render(ctx, res, models); err != nil {
		return nil, err
	}
	b.log.WithFields(log.Fields{
		"placed": b.Stats.Placed.Load(),
		"empty":  b.Stats.Empty.Load(),
		"failed": b.Stats.RenderFailures.Load(),
	}).Info("variants rendered")

	stop := b.prof.Track("extract")
	res.Colors, res.Weights = atlas.Extract(res.Atlas, nil)
	stop()

	return res, nil
}

func blockLog(l *log.Entry, loc blockmodel.Location) *log.Entry {
	return l.WithFields(log.Fields{"namespace": loc.Namespace, "block": loc.Path})
}

func (b *Baker) variantLog(res *Result, id int) *log.Entry {
	ref, _ := res.Variants.Variant(id)
	return blockLog(b.log, ref.Block).WithField("variant", id)
}

func (b *Baker) index(ctx context.Context) (*Index, *Allocator, error) {
	defer b.prof.Track("index")()

	blocks, err := b.src.BlockTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("listing blocks: %w", err)
	}

	alloc := NewAllocator()
	idx := &Index{
		Data:   make(map[string]blockstate.IndexEntry, len(blocks)),
		Config: IndexConfig{LineWidth: b.cfg.LineWidth},
	}

	issued := 0
	for _, loc := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		b.Stats.Blocks.Inc()
		l := blockLog(b.log, loc)

		raw, err := b.src.Blockstate(loc)
		if err != nil {
			l.WithError(err).Warn("skipping block")
			b.Stats.SkippedBlocks.Inc()
			continue
		}
		state, err := blockstate.Parse(raw)
		if errors.Is(err, blockstate.ErrMaskOverflow) {
			return nil, nil, fmt.Errorf("%s: %w", loc, err)
		}
		if err != nil {
			l.WithError(err).Warn("skipping block")
			b.Stats.SkippedBlocks.Inc()
			continue
		}

		entry := state.Serialize(blockAllocator{alloc: alloc, block: loc, state: state})
		idx.Data[loc.String()] = entry
		if entry.Kind == blockstate.Single {
			issued++
		} else {
			issued += len(entry.Values)
		}
		l.WithFields(log.Fields{"kind": entry.Kind, "keys": len(entry.Keys)}).Debug("blockstate compiled")
	}

	if issued != alloc.Total()-1 {
		return nil, nil, fmt.Errorf("%w: index lists %d, allocator issued %d", ErrCountMismatch, issued, alloc.Total()-1)
	}
	b.Stats.Variants.Store(int64(issued))
	return idx, alloc, nil
}

// link resolves the model of every variant. The returned slice is indexed by
// variant id and holds nil where the model could not be resolved.
func (b *Baker) link(ctx context.Context, res *Result) ([]*blockmodel.Model, error) {
	defer b.prof.Track("link")()

	graph := blockmodel.NewGraph(b.src)
	models := make([]*blockmodel.Model, res.Total)
	for id := 1; id < res.Total; id++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ref, _ := res.Variants.Variant(id)
		m, err := graph.Resolve(blockmodel.ModelLocation(ref.Model.Model, ref.Block.Namespace))
		if err != nil {
			b.variantLog(res, id).WithError(err).Warn("missing model")
			b.Stats.MissingModels.Inc()
			res.Status[id] = StatusMissingModel
			res.Errors[id] = err.Error()
			continue
		}
		models[id] = m
	}

	b.log.WithField("models", graph.Len()).Debug("models linked")
	return models, nil
}

func (b *Baker) render(ctx context.Context, res *Result, models []*blockmodel.Model) error {
	defer b.prof.Track("render")()

	res.Atlas = atlas.New(res.Total, b.cfg.LineWidth, b.src, atlas.WithHeightScale(b.cfg.HeightScale))

	draw := func(id int) (bool, error) {
		ref, _ := res.Variants.Variant(id)
		faces := blockmodel.Orient(models[id], ref.Model, blockmodel.Up)
		return res.Atlas.Draw(id, ref.Block.Namespace, faces)
	}

	if b.cfg.Workers <= 1 {
		for id := 1; id < res.Total; id++ {
			if models[id] == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			placed, err := draw(id)
			if err := b.record(res, id, placed, err); err != nil {
				return err
			}
		}
		return nil
	}

	pool := NewWorkerPool(ctx, b.cfg.Workers, 4*b.cfg.Workers, draw)
	go func() {
		defer pool.Close()
		for id := 1; id < res.Total; id++ {
			if models[id] == nil {
				continue
			}
			if !pool.SubmitJobBlocking(RenderJob{ID: id}) {
				return
			}
		}
	}()

	var fatal error
	drained := 0
	for r := range pool.Results() {
		if fatal != nil {
			continue
		}
		drained++
		if drained%progressEvery == 0 {
			b.log.WithFields(log.Fields{
				"rendered": drained,
				"queue":    pool.QueueLength(),
			}).Debug("render progress")
		}
		if err := b.record(res, r.ID, r.Placed, r.Err); err != nil {
			fatal = err
			pool.Shutdown()
		}
	}
	if fatal != nil {
		return fatal
	}
	return ctx.Err()
}

// record books the outcome of one draw. Only a capacity error is returned:
// it means the atlas was sized from a wrong total.
func (b *Baker) record(res *Result, id int, placed bool, err error) error {
	var ce *atlas.CapacityError
	if errors.As(err, &ce) {
		return fmt.Errorf("%w: %v", ErrCountMismatch, err)
	}

	l := b.variantLog(res, id)
	switch {
	case placed:
		b.Stats.Placed.Inc()
		res.Status[id] = StatusPlaced
	case err == nil:
		b.Stats.Empty.Inc()
		res.Status[id] = StatusEmpty
		l.Debug("empty variant")
	default:
		res.Status[id] = StatusRenderError
	}
	if err != nil {
		b.Stats.RenderFailures.Inc()
		res.Errors[id] = err.Error()
		l.WithError(err).Warn("render failed")
	}
	return nil
}
