// Package assets reads blockstates, models and textures out of resource
// packs. A pack is either a zip archive or an unpacked directory.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/muhammadmuzzammil1998/jsonc"
	log "github.com/sirupsen/logrus"

	"mcbake/pkg/blockmodel"
)

type layer struct {
	name   string
	fsys   fs.FS
	closer io.Closer
}

// Source layers several packs. Later layers override earlier ones.
type Source struct {
	layers []layer
}

// Open opens every pack in order. Directories are read in place; anything
// else is treated as a zip archive.
func Open(paths ...string) (*Source, error) {
	s := &Source{}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("resource pack %s: %w", p, err)
		}

		if info.IsDir() {
			s.layers = append(s.layers, layer{name: p, fsys: os.DirFS(p)})
		} else {
			rc, err := zip.OpenReader(p)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("resource pack %s: %w", p, err)
			}
			s.layers = append(s.layers, layer{name: p, fsys: rc, closer: rc})
		}
		log.WithField("pack", p).Debug("opened resource pack")
	}
	log.WithField("packs", s.Packs()).Debug("resource packs ready, lowest priority first")
	return s, nil
}

// New builds a source from already opened file systems.
func New(layers ...fs.FS) *Source {
	s := &Source{}
	for i, fsys := range layers {
		s.layers = append(s.layers, layer{name: fmt.Sprintf("layer%d", i), fsys: fsys})
	}
	return s
}

func (s *Source) Close() error {
	var errs []error
	for _, l := range s.layers {
		if l.closer != nil {
			errs = append(errs, l.closer.Close())
		}
	}
	return errors.Join(errs...)
}

// Packs lists the layer names, lowest priority first.
func (s *Source) Packs() []string {
	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.name
	}
	return names
}

// read returns the file from the highest layer that has it.
func (s *Source) read(name string) ([]byte, error) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		data, err := fs.ReadFile(s.layers[i].fsys, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.layers[i].name, err)
		}
	}
	return nil, fs.ErrNotExist
}

func (s *Source) exists(name string) bool {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if _, err := fs.Stat(s.layers[i].fsys, name); err == nil {
			return true
		}
	}
	return false
}

var blockstatePattern = regexp.MustCompile(`^assets/([^/]+)/blockstates/(\S+)\.json$`)

// BlockTypes lists every block that has a blockstate in any layer, sorted by
// namespace and then name.
func (s *Source) BlockTypes() ([]blockmodel.Location, error) {
	seen := make(map[blockmodel.Location]bool)
	for _, l := range s.layers {
		err := fs.WalkDir(l.fsys, "assets", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && p == "assets" {
					return fs.SkipAll
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			if m := blockstatePattern.FindStringSubmatch(p); m != nil {
				seen[blockmodel.Location{Namespace: m[1], Path: m[2]}] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.name, err)
		}
	}

	blocks := make([]blockmodel.Location, 0, len(seen))
	for loc := range seen {
		blocks = append(blocks, loc)
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Namespace != blocks[j].Namespace {
			return blocks[i].Namespace < blocks[j].Namespace
		}
		return blocks[i].Path < blocks[j].Path
	})
	return blocks, nil
}

func assetPath(loc blockmodel.Location, kind, ext string) string {
	return path.Join("assets", loc.Namespace, kind, loc.Path+ext)
}

func (s *Source) readJSON(kind string, loc blockmodel.Location, dir string) ([]byte, error) {
	data, err := s.read(assetPath(loc, dir, ".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingAssetError{Kind: kind, Location: loc}
	}
	if err != nil {
		return nil, err
	}
	return jsonc.ToJSON(data), nil
}

// Blockstate returns the blockstate definition with comments stripped.
func (s *Source) Blockstate(loc blockmodel.Location) ([]byte, error) {
	return s.readJSON("blockstate", loc, "blockstates")
}

// Model returns the model definition with comments stripped.
func (s *Source) Model(loc blockmodel.Location) ([]byte, error) {
	return s.readJSON("model", loc, "models")
}
