package converter

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfConfig returns the pdfcpu configuration shared by all operations.
// Relaxed validation keeps slightly out-of-spec documents (common in
// scanned legal paperwork) processable.
func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Merge concatenates the given PDF files, in order, into a single PDF at
// outputFile. Each source keeps its internal page order. The first missing
// input aborts the merge before anything is written.
func (c *Converter) Merge(inputFiles []string, outputFile string) error {
	if len(inputFiles) == 0 {
		return &OpError{Kind: KindUsage, Path: "merge", Err: fmt.Errorf("no input files provided")}
	}
	if err := requireFiles(inputFiles); err != nil {
		return err
	}

	for _, f := range inputFiles {
		fmt.Fprintf(c.Stdout, "Adding: %s\n", f)
	}

	if err := api.MergeCreateFile(inputFiles, outputFile, false, pdfConfig()); err != nil {
		c.log.WithField("output", outputFile).WithError(err).Error("merge failed")
		return &OpError{Kind: KindLibrary, Path: outputFile, Err: err}
	}

	fmt.Fprintf(c.Stdout, "Successfully merged %d PDFs into %s\n", len(inputFiles), outputFile)
	return nil
}
