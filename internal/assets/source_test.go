package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"

	"mcbake/pkg/blockmodel"
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func solid(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

func writeZip(t *testing.T, files map[string][]byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pack.zip")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return p
}

func mc(path string) blockmodel.Location {
	return blockmodel.Location{Namespace: "minecraft", Path: path}
}

func TestBlockTypesSorted(t *testing.T) {
	base := fstest.MapFS{
		"assets/minecraft/blockstates/stone.json":      {Data: []byte(`{}`)},
		"assets/minecraft/blockstates/acacia_log.json": {Data: []byte(`{}`)},
		"assets/minecraft/models/block/stone.json":     {Data: []byte(`{}`)},
	}
	mod := fstest.MapFS{
		"assets/amod/blockstates/ore.json":        {Data: []byte(`{}`)},
		"assets/minecraft/blockstates/stone.json": {Data: []byte(`{}`)},
		"pack.mcmeta":                             {Data: []byte(`{}`)},
	}
	empty := fstest.MapFS{"readme.txt": {Data: []byte("hi")}}

	src := New(base, mod, empty)
	if diff := cmp.Diff([]string{"layer0", "layer1", "layer2"}, src.Packs()); diff != "" {
		t.Errorf("Packs() mismatch (-want +got):\n%s", diff)
	}
	got, err := src.BlockTypes()
	if err != nil {
		t.Fatalf("BlockTypes failed: %v", err)
	}
	want := []blockmodel.Location{
		{Namespace: "amod", Path: "ore"},
		mc("acacia_log"),
		mc("stone"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BlockTypes mismatch (-want +got):\n%s", diff)
	}
}

func TestLaterLayerOverrides(t *testing.T) {
	base := fstest.MapFS{
		"assets/minecraft/models/block/stone.json": {Data: []byte(`{"textures": {"all": "block/stone"}}`)},
		"assets/minecraft/models/block/dirt.json":  {Data: []byte(`{"textures": {"all": "block/dirt"}}`)},
	}
	pack := fstest.MapFS{
		"assets/minecraft/models/block/stone.json": {Data: []byte(`{"textures": {"all": "block/fancy_stone"}}`)},
	}
	s := New(base, pack)

	data, err := s.Model(mc("block/stone"))
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if !bytes.Contains(data, []byte("fancy_stone")) {
		t.Errorf("Expected the pack's stone model, got %s", data)
	}

	data, err = s.Model(mc("block/dirt"))
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if !bytes.Contains(data, []byte("block/dirt")) {
		t.Errorf("Expected the base dirt model, got %s", data)
	}
}

func TestMissingAsset(t *testing.T) {
	s := New(fstest.MapFS{})

	_, err := s.Blockstate(mc("stone"))
	var missing *MissingAssetError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected MissingAssetError, got %v", err)
	}
	if missing.Kind != "blockstate" || missing.Location != mc("stone") {
		t.Errorf("Unexpected error fields: %+v", missing)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected error to match fs.ErrNotExist")
	}

	if _, err := s.Texture(mc("block/stone")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected missing texture, got %v", err)
	}
}

func TestCommentsAreStripped(t *testing.T) {
	s := New(fstest.MapFS{
		"assets/minecraft/blockstates/stone.json": {Data: []byte(`{
			// the only variant
			"variants": { "": { "model": "block/stone" } }
		}`)},
	})
	data, err := s.Blockstate(mc("stone"))
	if err != nil {
		t.Fatalf("Blockstate failed: %v", err)
	}
	if bytes.Contains(data, []byte("//")) {
		t.Errorf("Comment survived: %s", data)
	}
}

func TestTexture(t *testing.T) {
	translucent := solid(16, 16, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	opaque := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range opaque.Pix {
		opaque.Pix[i] = 200
		if i%4 == 3 {
			opaque.Pix[i] = 255
		}
	}
	strip := solid(16, 64, color.NRGBA{R: 255, A: 255})
	strip.Set(0, 20, color.NRGBA{G: 255, A: 255})

	s := New(fstest.MapFS{
		"assets/minecraft/textures/block/glass.png":        {Data: pngBytes(t, translucent)},
		"assets/minecraft/textures/block/stone.png":        {Data: pngBytes(t, opaque)},
		"assets/minecraft/textures/block/water.png":        {Data: pngBytes(t, strip)},
		"assets/minecraft/textures/block/water.png.mcmeta": {Data: []byte(`{"animation": {}}`)},
	})

	glass, err := s.Texture(mc("block/glass"))
	if err != nil {
		t.Fatalf("Texture failed: %v", err)
	}
	if glass.Opaque {
		t.Errorf("Translucent texture reported opaque")
	}
	if got := glass.Image.NRGBAAt(3, 3); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 128}) {
		t.Errorf("Unexpected pixel %v", got)
	}

	stone, err := s.Texture(mc("block/stone"))
	if err != nil {
		t.Fatalf("Texture failed: %v", err)
	}
	if !stone.Opaque {
		t.Errorf("Opaque texture reported translucent")
	}

	water, err := s.Texture(mc("block/water"))
	if err != nil {
		t.Fatalf("Texture failed: %v", err)
	}
	if w, h := water.Size(); w != 16 || h != 16 {
		t.Errorf("Expected the animation to be cropped to 16x16, got %dx%d", w, h)
	}
}

func TestOpenZipAndDirectory(t *testing.T) {
	zipPath := writeZip(t, map[string][]byte{
		"assets/minecraft/blockstates/stone.json":  []byte(`{"variants": {"": {"model": "block/stone"}}}`),
		"assets/minecraft/models/block/stone.json": []byte(`{"parent": "block/cube_all"}`),
	})

	dir := t.TempDir()
	modelDir := filepath.Join(dir, "assets", "minecraft", "models", "block")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "stone.json"), []byte(`{"parent": "block/cube_mirrored_all"}`), 0o644); err != nil {
		t.Fatalf("Failed to write model: %v", err)
	}

	s, err := Open(zipPath, dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if diff := cmp.Diff([]string{zipPath, dir}, s.Packs()); diff != "" {
		t.Errorf("Packs() mismatch (-want +got):\n%s", diff)
	}

	blocks, err := s.BlockTypes()
	if err != nil {
		t.Fatalf("BlockTypes failed: %v", err)
	}
	if len(blocks) != 1 || blocks[0] != mc("stone") {
		t.Errorf("Unexpected blocks %v", blocks)
	}

	data, err := s.Model(mc("block/stone"))
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if !bytes.Contains(data, []byte("cube_mirrored_all")) {
		t.Errorf("Expected the directory to override the zip, got %s", data)
	}

	if _, err := Open(filepath.Join(dir, "nope.zip")); err == nil {
		t.Errorf("Expected an error for a missing pack")
	}
}
