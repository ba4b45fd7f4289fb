package converter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeSinglePagePDF builds a one-page PDF from a noise image of the given
// pixel dimensions.
func makeSinglePagePDF(t *testing.T, c *Converter, dir, name string, w, h int) string {
	t.Helper()
	img := saveImage(t, dir, name+".png", noiseImage(w, h))
	out := filepath.Join(dir, name+".pdf")
	if err := c.ImageToPDF([]string{img}, out); err != nil {
		t.Fatalf("building fixture %s: %v", name, err)
	}
	return out
}

func TestMergeConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()
	c := newTestConverter(t, "low")

	a := makeSinglePagePDF(t, c, dir, "a", 100, 160)
	b := makeSinglePagePDF(t, c, dir, "b", 200, 80)
	out := filepath.Join(dir, "merged.pdf")

	if err := c.Merge([]string{a, b}, out); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if got := pageCount(t, out); got != 2 {
		t.Fatalf("page count = %d, want 2", got)
	}

	want := append(pageDims(t, a), pageDims(t, b)...)
	if got := pageDims(t, out); !dimsEqual(got, want) {
		t.Errorf("merged page dims = %v, want %v", got, want)
	}
}

func TestMergeAssociative(t *testing.T) {
	dir := t.TempDir()
	c := newTestConverter(t, "low")

	a := makeSinglePagePDF(t, c, dir, "a", 100, 160)
	b := makeSinglePagePDF(t, c, dir, "b", 200, 80)
	cc := makeSinglePagePDF(t, c, dir, "c", 120, 120)

	ab := filepath.Join(dir, "ab.pdf")
	if err := c.Merge([]string{a, b}, ab); err != nil {
		t.Fatalf("Merge [a b]: %v", err)
	}
	abThenC := filepath.Join(dir, "ab_c.pdf")
	if err := c.Merge([]string{ab, cc}, abThenC); err != nil {
		t.Fatalf("Merge [ab c]: %v", err)
	}

	abc := filepath.Join(dir, "abc.pdf")
	if err := c.Merge([]string{a, b, cc}, abc); err != nil {
		t.Fatalf("Merge [a b c]: %v", err)
	}

	if got, want := pageDims(t, abThenC), pageDims(t, abc); !dimsEqual(got, want) {
		t.Errorf("merge not associative: %v vs %v", got, want)
	}
}

func TestMergeMissingInput(t *testing.T) {
	dir := t.TempDir()
	c := newTestConverter(t, "high")

	a := makeSinglePagePDF(t, c, dir, "a", 100, 100)
	missing := filepath.Join(dir, "missing.pdf")
	out := filepath.Join(dir, "merged.pdf")

	err := c.Merge([]string{a, missing}, out)
	if err == nil {
		t.Fatal("Merge with missing input succeeded")
	}
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Kind != KindInputNotFound {
		t.Fatalf("error = %v, want input_not_found OpError", err)
	}
	if opErr.Path != missing {
		t.Errorf("error names %q, want %q", opErr.Path, missing)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("output file was created despite missing input")
	}
}

func TestMergeNoInputs(t *testing.T) {
	c := newTestConverter(t, "high")
	if err := c.Merge(nil, filepath.Join(t.TempDir(), "out.pdf")); err == nil {
		t.Fatal("Merge with no inputs succeeded")
	}
}
