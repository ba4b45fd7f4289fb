package converter

import (
	"fmt"
	"os"
	"path/filepath"
)

// Batch runs the full pipeline: convert imageFiles to a temporary PDF,
// merge it with pdfFiles (converted images first, then PDFs in argument
// order), and optimize the merged result into outputFile. At least one
// image or one PDF is required.
//
// All intermediate files live in a temporary directory that is removed on
// every exit path. Cleanup failures are logged and ignored; escalating
// them would turn a successful run into a failure over a leftover file.
func (c *Converter) Batch(imageFiles, pdfFiles []string, outputFile string) error {
	if len(imageFiles) == 0 && len(pdfFiles) == 0 {
		return &OpError{Kind: KindUsage, Path: "batch",
			Err: fmt.Errorf("at least one image file or PDF file must be provided")}
	}

	tempDir, err := os.MkdirTemp(c.TempRoot, "pdf-converter-")
	if err != nil {
		return &OpError{Kind: KindWrite, Path: c.TempRoot, Err: err}
	}

	var tempFiles []string
	defer func() {
		for _, f := range tempFiles {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				c.log.WithField("file", f).WithError(err).Debug("temp file cleanup failed")
			}
		}
		if err := os.RemoveAll(tempDir); err != nil {
			c.log.WithField("dir", tempDir).WithError(err).Debug("temp dir cleanup failed")
		}
	}()

	mergeList := make([]string, 0, len(pdfFiles)+1)

	if len(imageFiles) > 0 {
		imagesPDF := filepath.Join(tempDir, "images.pdf")
		if err := c.ImageToPDF(imageFiles, imagesPDF); err != nil {
			return err
		}
		tempFiles = append(tempFiles, imagesPDF)
		mergeList = append(mergeList, imagesPDF)
	}
	mergeList = append(mergeList, pdfFiles...)

	mergedPDF := filepath.Join(tempDir, "merged.pdf")
	if err := c.Merge(mergeList, mergedPDF); err != nil {
		return err
	}
	tempFiles = append(tempFiles, mergedPDF)

	if _, err := c.Optimize(mergedPDF, outputFile); err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout, "\nBatch processing complete: %s\n", outputFile)
	return nil
}
