package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLineWidth = 32
	maxLineWidth     = 1024
)

// Config holds bake configuration
type Config struct {
	// Packs are resource packs (zip archives or directories), lowest
	// priority first.
	Packs  []string `yaml:"packs"`
	Output string   `yaml:"output"`

	LineWidth   int     `yaml:"linewidth"`
	Workers     int     `yaml:"workers"`
	HeightScale float32 `yaml:"height_scale"`

	CompressIndex bool   `yaml:"compress_index"`
	PreviewScale  int    `yaml:"preview_scale"` // 0 disables the preview
	Manifest      string `yaml:"manifest"`      // empty disables the manifest

	Log      string `yaml:"log"` // "STDOUT" or a file path
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Output:      ".",
		LineWidth:   DefaultLineWidth,
		Workers:     1,
		HeightScale: 8,
		Log:         "STDOUT",
		LogLevel:    "info",
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	c.SetLineWidth(c.LineWidth)
	c.SetWorkers(c.Workers)
	return c, nil
}

// SetLineWidth sets the number of atlas cells per row
func (c *Config) SetLineWidth(w int) {
	// Clamp to reasonable values
	if w < 1 {
		w = 1
	}
	if w > maxLineWidth {
		w = maxLineWidth
	}
	c.LineWidth = w
}

// SetWorkers sets the render worker count. Zero means one per CPU.
func (c *Config) SetWorkers(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > 4*runtime.NumCPU() {
		n = 4 * runtime.NumCPU()
	}
	c.Workers = n
}

func (c Config) Validate() error {
	if len(c.Packs) == 0 {
		return errors.New("no resource packs given")
	}
	if c.Output == "" {
		return errors.New("no output directory given")
	}
	if c.HeightScale <= 0 {
		return fmt.Errorf("height scale must be positive, got %v", c.HeightScale)
	}
	if c.PreviewScale < 0 {
		return fmt.Errorf("preview scale must not be negative, got %d", c.PreviewScale)
	}
	return nil
}
