// Package converter implements the PDF operations behind the CLI:
// merging PDFs, converting images to PDF pages, re-compressing embedded
// images in existing PDFs, and a batch pipeline chaining the three.
//
// All heavy lifting is delegated to pdfcpu (PDF object graph), gofpdf
// (page layout) and imaging (image decode/encode); this package only
// sequences their calls and normalizes their errors.
package converter

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Preset bundles the compression parameters selected by a quality label.
type Preset struct {
	DPI         int  // target resolution for converted pages
	JPEGQuality int  // JPEG quality, 1-100
	Optimize    bool // prefer optimized entropy coding where the encoder supports it
}

// presets maps the three supported quality labels to their fixed settings.
var presets = map[string]Preset{
	"high":   {DPI: 300, JPEGQuality: 95, Optimize: true},
	"medium": {DPI: 200, JPEGQuality: 85, Optimize: true},
	"low":    {DPI: 150, JPEGQuality: 75, Optimize: true},
}

// DefaultQuality is the quality label used when none is given.
const DefaultQuality = "high"

// PresetFor returns the preset for the given quality label.
// An empty label selects DefaultQuality; unknown labels are rejected.
func PresetFor(quality string) (Preset, error) {
	if quality == "" {
		quality = DefaultQuality
	}
	p, ok := presets[quality]
	if !ok {
		return Preset{}, fmt.Errorf("unknown quality level: %q (valid: high, medium, low)", quality)
	}
	return p, nil
}

// FailureKind classifies operation failures for callers that need more
// than a boolean outcome.
type FailureKind string

const (
	KindInputNotFound FailureKind = "input_not_found"
	KindDecode        FailureKind = "decode_failure"
	KindLibrary       FailureKind = "library_failure"
	KindWrite         FailureKind = "write_failure"
	KindUsage         FailureKind = "usage"
)

// OpError is the failure result of a converter operation. It always names
// the offending path (or operation, for usage errors) so messages stay
// actionable.
type OpError struct {
	Kind FailureKind
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Converter performs PDF operations with a fixed quality preset.
// A Converter is built once per CLI invocation and holds no state
// beyond its configuration.
type Converter struct {
	preset Preset
	log    *logrus.Logger

	// Stdout receives progress lines that are part of the CLI contract;
	// Stderr receives warnings. Both are overridable for tests.
	Stdout io.Writer
	Stderr io.Writer

	// TempRoot is the parent directory for the batch pipeline's temporary
	// directory. Empty means the system default.
	TempRoot string
}

// New returns a Converter bound to the preset for the given quality label.
func New(quality string, log *logrus.Logger) (*Converter, error) {
	p, err := PresetFor(quality)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(os.Stderr)
	}
	return &Converter{
		preset: p,
		log:    log,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// Preset returns the active quality preset.
func (c *Converter) Preset() Preset { return c.preset }

// requireFiles verifies that every path exists as a regular file, in order,
// and returns an input-not-found error for the first one that is not,
// carrying the underlying cause (missing, permission denied, directory).
func requireFiles(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return &OpError{Kind: KindInputNotFound, Path: p, Err: err}
		}
		if info.IsDir() {
			return &OpError{Kind: KindInputNotFound, Path: p, Err: fmt.Errorf("is a directory, not a file")}
		}
	}
	return nil
}
