package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"mcbake/internal/config"
)

type options struct {
	configPath string
	output     string
	lineWidth  int
	workers    int
	logTarget  string
	compress   bool
	preview    int
	manifest   string
	verbose    bool
	check      string
}

func parseFlags(fs *flag.FlagSet, args []string) (options, []string, error) {
	var o options
	fs.StringVar(&o.configPath, "c", "", "YAML config file")
	fs.StringVar(&o.output, "o", "", "output directory")
	fs.IntVar(&o.lineWidth, "w", 0, "atlas cells per row")
	fs.IntVar(&o.workers, "j", -1, "render workers, 0 for one per CPU")
	fs.StringVar(&o.logTarget, "l", "", "log to STDOUT or a file")
	fs.BoolVar(&o.compress, "zstd", false, "also write a zstd compressed index")
	fs.IntVar(&o.preview, "preview", -1, "write an upscaled preview, 0 disables it")
	fs.StringVar(&o.manifest, "manifest", "", "record the run in this SQLite database")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	fs.StringVar(&o.check, "check", "", "print a summary of an existing index and exit")
	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	return o, fs.Args(), nil
}

// loadConfig layers the flags over the config file over the defaults.
func loadConfig(o options, packs []string) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}

	if len(packs) > 0 {
		cfg.Packs = packs
	}
	if o.output != "" {
		cfg.Output = o.output
	}
	if o.lineWidth > 0 {
		cfg.SetLineWidth(o.lineWidth)
	}
	if o.workers >= 0 {
		cfg.SetWorkers(o.workers)
	}
	if o.logTarget != "" {
		cfg.Log = o.logTarget
	}
	if o.compress {
		cfg.CompressIndex = true
	}
	if o.preview >= 0 {
		cfg.PreviewScale = o.preview
	}
	if o.manifest != "" {
		cfg.Manifest = o.manifest
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// setupLogger builds the run logger. The returned closer is nil unless the
// log goes to a file.
func setupLogger(cfg config.Config) (*log.Logger, io.Closer, error) {
	logger := log.New()
	logger.Formatter = &log.TextFormatter{FullTimestamp: true}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	logger.Level = level

	if cfg.Log == "" || strings.EqualFold(cfg.Log, "STDOUT") {
		logger.Out = os.Stdout
		logger.Formatter = &log.TextFormatter{ForceColors: true, FullTimestamp: true}
		return logger, nil, nil
	}

	f, err := os.OpenFile(cfg.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger.Out = f
	return logger, f, nil
}
