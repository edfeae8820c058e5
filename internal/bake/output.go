package bake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"

	"mcbake/internal/atlas"
	"mcbake/internal/manifest"
	"mcbake/pkg/blockmodel"
)

// Output file names, relative to the output directory.
const (
	IndexFile     = "index.json"
	AtlasFile     = "baked.png"
	HeightMapFile = "heightmap.png"
	ColorMapFile  = "colormap.png"
	WeightMapFile = "weightmap.png"
	PreviewFile   = "preview.png"
)

// tintMaps are the biome colormaps copied next to the atlas.
var tintMaps = []string{"grass", "foliage"}

// Write stores every output of res in the configured output directory.
func (b *Baker) Write(ctx context.Context, res *Result) error {
	defer b.prof.Track("write")()

	dir := b.cfg.Output
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := writeIndex(filepath.Join(dir, IndexFile), res.Index, b.cfg.CompressIndex); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	saves := map[string]func() error{
		AtlasFile:     func() error { return imaging.Save(res.Atlas.Image(), filepath.Join(dir, AtlasFile)) },
		HeightMapFile: func() error { return imaging.Save(res.Atlas.HeightMap(), filepath.Join(dir, HeightMapFile)) },
		ColorMapFile:  func() error { return imaging.Save(res.Colors, filepath.Join(dir, ColorMapFile)) },
		WeightMapFile: func() error { return imaging.Save(res.Weights, filepath.Join(dir, WeightMapFile)) },
	}
	for _, name := range []string{AtlasFile, HeightMapFile, ColorMapFile, WeightMapFile} {
		if err := saves[name](); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	for _, name := range tintMaps {
		loc := blockmodel.Location{Namespace: "minecraft", Path: "colormap/" + name}
		tex, err := b.src.Texture(loc)
		if err != nil {
			b.log.WithError(err).WithField("colormap", name).Warn("colormap not copied")
			continue
		}
		if err := imaging.Save(tex.Image, filepath.Join(dir, name+".png")); err != nil {
			return fmt.Errorf("writing %s colormap: %w", name, err)
		}
	}

	if b.cfg.PreviewScale > 0 {
		preview := atlas.Preview(res.Atlas.Image(), b.cfg.PreviewScale)
		if err := imaging.Save(preview, filepath.Join(dir, PreviewFile)); err != nil {
			return fmt.Errorf("writing preview: %w", err)
		}
	}

	if b.cfg.Manifest != "" {
		if err := b.writeManifest(ctx, res); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
	}

	b.log.WithField("dir", dir).Info("outputs written")
	return nil
}

func writeIndex(path string, idx *Index, compress bool) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	if !compress {
		return nil
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	log.WithFields(log.Fields{"raw": len(data), "compressed": buf.Len()}).Debug("index compressed")
	return os.WriteFile(path+".zst", buf.Bytes(), 0o644)
}

// ReadIndex loads an index written by Write, plain or zstd compressed.
func ReadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = readCompressed(path + ".zst")
	}
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &idx, nil
}

func readCompressed(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(raw, nil)
}

func (b *Baker) writeManifest(ctx context.Context, res *Result) error {
	m, err := manifest.Open(ctx, b.cfg.Manifest)
	if err != nil {
		return err
	}
	defer m.Close()

	run := manifest.Run{
		ID:        res.RunID,
		Started:   res.Started,
		Duration:  time.Since(res.Started),
		Packs:     b.cfg.Packs,
		LineWidth: res.Atlas.CellsAcross(),
		Total:     res.Total,
	}

	variants := make([]manifest.Variant, 0, res.Total-1)
	for id := 1; id < res.Total; id++ {
		ref, _ := res.Variants.Variant(id)
		x, y := res.Atlas.CellPos(id)
		variants = append(variants, manifest.Variant{
			ID:        id,
			Namespace: ref.Block.Namespace,
			Block:     ref.Block.Path,
			Selector:  ref.Selector,
			Model:     ref.Model.Model,
			X:         ref.Model.X,
			Y:         ref.Model.Y,
			UVLock:    ref.Model.UVLock,
			Status:    res.Status[id].String(),
			Color:     res.Colors.NRGBAAt(x, y),
			Weight:    res.Weights.GrayAt(x, y).Y,
			Error:     res.Errors[id],
		})
	}
	return m.Record(ctx, run, variants)
}
