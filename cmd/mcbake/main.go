package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/xlab/closer"

	"mcbake/internal/assets"
	"mcbake/internal/bake"
	"mcbake/internal/profiling"
	"mcbake/pkg/blockstate"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: mcbake [flags] pack [pack...]\n\nPacks are zip archives or directories, later ones override earlier ones.\n\n")
		flag.PrintDefaults()
	}
	o, packs, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if o.check != "" {
		if err := printIndexSummary(o.check); err != nil {
			closer.Fatalln(err)
		}
		return
	}

	cfg, err := loadConfig(o, packs)
	if err != nil {
		color.Red("mcbake: %v", err)
		flag.Usage()
		os.Exit(2)
	}

	logger, logFile, err := setupLogger(cfg)
	if err != nil {
		closer.Fatalln(err)
	}

	src, err := assets.Open(cfg.Packs...)
	if err != nil {
		closer.Fatalln(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(func() {
		cancel()
		if err := src.Close(); err != nil {
			logger.WithError(err).Warn("closing packs")
		}
		if logFile != nil {
			logFile.Close()
		}
	})
	defer closer.Close()

	packs = src.Packs()
	color.Cyan("mcbake: baking %d pack(s) into %s", len(packs), cfg.Output)
	for i, p := range packs {
		fmt.Printf("  %d %s\n", i, p)
	}

	start := time.Now()
	baker := bake.New(cfg, src, logger)
	res, err := baker.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("bake failed")
		closer.Fatalln(color.RedString("mcbake: %v", err))
	}

	placed := baker.Stats.Placed.Load()
	color.Green("mcbake: %d variants baked, %d placed, in %s", res.Total-1, placed, profiling.FormatMs(time.Since(start)))
	if failed := baker.Stats.MissingModels.Load() + baker.Stats.RenderFailures.Load(); failed > 0 {
		color.Yellow("mcbake: %d variants had problems, see the log", failed)
	}
	if avg, ok := averageColor(res.Colors); ok {
		fmt.Printf("mcbake: average color %s\n", avg.Hex())
	}
	for _, p := range baker.Profile().Phases() {
		fmt.Printf("  %-8s %s\n", p.Name, profiling.FormatMs(p.Duration))
	}
}

// averageColor blends every painted cell in linear RGB.
func averageColor(img *image.NRGBA) (colorful.Color, bool) {
	var r, g, b float64
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] == 0 {
			continue
		}
		lr, lg, lb := colorful.Color{
			R: float64(img.Pix[i]) / 255,
			G: float64(img.Pix[i+1]) / 255,
			B: float64(img.Pix[i+2]) / 255,
		}.LinearRgb()
		r, g, b = r+lr, g+lg, b+lb
		n++
	}
	if n == 0 {
		return colorful.Color{}, false
	}
	return colorful.LinearRgb(r/float64(n), g/float64(n), b/float64(n)).Clamped(), true
}

func printIndexSummary(path string) error {
	idx, err := bake.ReadIndex(path)
	if err != nil {
		return err
	}

	kinds := map[blockstate.Kind]int{}
	variants := 0
	for _, e := range idx.Data {
		kinds[e.Kind]++
		if e.Kind == blockstate.Single {
			variants++
		} else {
			variants += len(e.Values)
		}
	}

	color.Cyan("%s: %d blocks, %d variants, linewidth %d", path, len(idx.Data), variants, idx.Config.LineWidth)
	for _, k := range []blockstate.Kind{blockstate.Single, blockstate.Variants, blockstate.Multipart} {
		fmt.Printf("  %-9s %d\n", k, kinds[k])
	}
	return nil
}
