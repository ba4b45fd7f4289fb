package converter

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"io/fs"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"
)

func TestPresetFor(t *testing.T) {
	tests := []struct {
		label string
		want  Preset
	}{
		{"high", Preset{DPI: 300, JPEGQuality: 95, Optimize: true}},
		{"medium", Preset{DPI: 200, JPEGQuality: 85, Optimize: true}},
		{"low", Preset{DPI: 150, JPEGQuality: 75, Optimize: true}},
		{"", Preset{DPI: 300, JPEGQuality: 95, Optimize: true}}, // defaults to high
	}
	for _, tt := range tests {
		got, err := PresetFor(tt.label)
		if err != nil {
			t.Errorf("PresetFor(%q) returned error: %v", tt.label, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PresetFor(%q) = %+v, want %+v", tt.label, got, tt.want)
		}
	}
}

func TestPresetForRejectsUnknownLabel(t *testing.T) {
	for _, label := range []string{"ultra", "HIGH", "0", "maximum"} {
		if _, err := PresetFor(label); err == nil {
			t.Errorf("PresetFor(%q) succeeded, want error", label)
		}
	}
}

func TestNewRejectsUnknownQuality(t *testing.T) {
	if _, err := New("best", nil); err == nil {
		t.Fatal("New(\"best\") succeeded, want error")
	}
}

func TestRequireFilesNamesCause(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.pdf")
	err := requireFiles([]string{missing})
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Kind != KindInputNotFound {
		t.Fatalf("error = %v, want input_not_found OpError", err)
	}
	if opErr.Path != missing {
		t.Errorf("error names %q, want %q", opErr.Path, missing)
	}
	if !errors.Is(opErr.Err, fs.ErrNotExist) {
		t.Errorf("cause = %v, want wrapped fs.ErrNotExist", opErr.Err)
	}

	err = requireFiles([]string{dir})
	if !errors.As(err, &opErr) || opErr.Kind != KindInputNotFound {
		t.Fatalf("error for directory = %v, want input_not_found OpError", err)
	}
	if !strings.Contains(err.Error(), "directory") {
		t.Errorf("directory input reported as %q, want the cause named", err.Error())
	}
}

// Test helpers shared by the operation tests.

// newTestConverter returns a converter with silenced logging and captured
// stdout/stderr.
func newTestConverter(t *testing.T, quality string) *Converter {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	c, err := New(quality, log)
	if err != nil {
		t.Fatalf("New(%q): %v", quality, err)
	}
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c
}

// noiseImage returns a deterministic pseudo-random RGB image. Noise keeps
// the encoded JPEG well above the recompression threshold.
func noiseImage(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.White)
	seed := uint32(2463534242)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(seed),
				G: uint8(seed >> 8),
				B: uint8(seed >> 16),
				A: 255,
			})
		}
	}
	return img
}

// saveImage writes img to dir/name, with the format chosen from the
// extension.
func saveImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("saving %s: %v", name, err)
	}
	return path
}

// pageCount returns the number of pages in the PDF at path.
func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := api.PageCountFile(path)
	if err != nil {
		t.Fatalf("page count of %s: %v", path, err)
	}
	return n
}

// pageDims returns the page dimensions of the PDF at path.
func pageDims(t *testing.T, path string) []types.Dim {
	t.Helper()
	dims, err := api.PageDimsFile(path)
	if err != nil {
		t.Fatalf("page dims of %s: %v", path, err)
	}
	return dims
}

// dimsEqual reports whether two page dimension sequences match within half
// a point.
func dimsEqual(a, b []types.Dim) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i].Width-b[i].Width) > 0.5 || math.Abs(a[i].Height-b[i].Height) > 0.5 {
			return false
		}
	}
	return true
}

// embeddedImages decodes every DCT-encoded image XObject in the PDF at path.
func embeddedImages(t *testing.T, path string) []image.Image {
	t.Helper()
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	var imgs []image.Image
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok || !isImageStream(sd) {
			continue
		}
		img, err := imaging.Decode(bytes.NewReader(sd.Raw))
		if err != nil {
			continue // non-DCT image stream
		}
		imgs = append(imgs, img)
	}
	return imgs
}
