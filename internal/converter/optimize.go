package converter

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// minRecompressSize is the raw stream size below which embedded images are
// not worth recompressing.
const minRecompressSize = 1024

// OptimizeResult summarizes a completed Optimize run.
type OptimizeResult struct {
	OriginalSize  int64
	OptimizedSize int64
	// Reduction is (original - optimized) / original * 100. Negative when
	// re-encoding grew the file; that is reported, not prevented.
	Reduction float64

	ImagesScanned      int
	ImagesRecompressed int
	ImagesSkipped      int
}

// Optimize rewrites the PDF at inputFile to outputFile with oversized
// embedded images re-encoded as JPEG at the preset quality. Page count and
// non-image content are left untouched. Images that fail to decode or
// re-encode are skipped with a warning; only whole-document errors abort.
func (c *Converter) Optimize(inputFile, outputFile string) (*OptimizeResult, error) {
	if err := requireFiles([]string{inputFile}); err != nil {
		return nil, err
	}

	fmt.Fprintf(c.Stdout, "Optimizing: %s\n", inputFile)

	ctx, err := api.ReadContextFile(inputFile)
	if err != nil {
		c.log.WithField("file", inputFile).WithError(err).Error("reading PDF failed")
		return nil, &OpError{Kind: KindLibrary, Path: inputFile, Err: err}
	}

	res := &OptimizeResult{}

	// Walk the xref table rather than each page's XObject dictionary:
	// shared images get recompressed exactly once.
	objNrs := make([]int, 0, len(ctx.Table))
	for nr := range ctx.Table {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	for _, nr := range objNrs {
		entry := ctx.Table[nr]
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok || !isImageStream(sd) {
			continue
		}
		res.ImagesScanned++

		if len(sd.Raw) <= minRecompressSize {
			res.ImagesSkipped++
			continue
		}

		if err := c.recompressImageStream(&sd); err != nil {
			fmt.Fprintf(c.Stderr, "Warning: could not optimize image object %d: %v\n", nr, err)
			c.log.WithField("object", nr).WithError(err).Warn("skipping image")
			res.ImagesSkipped++
			continue
		}
		entry.Object = sd
		res.ImagesRecompressed++
	}

	// Object and xref streams plus stream compression on save.
	ctx.Configuration.WriteObjectStream = true
	ctx.Configuration.WriteXRefStream = true

	if err := api.WriteContextFile(ctx, outputFile); err != nil {
		c.log.WithField("output", outputFile).WithError(err).Error("writing PDF failed")
		return nil, &OpError{Kind: KindWrite, Path: outputFile, Err: err}
	}

	origInfo, err := os.Stat(inputFile)
	if err != nil {
		return nil, &OpError{Kind: KindLibrary, Path: inputFile, Err: err}
	}
	optInfo, err := os.Stat(outputFile)
	if err != nil {
		return nil, &OpError{Kind: KindLibrary, Path: outputFile, Err: err}
	}

	res.OriginalSize = origInfo.Size()
	res.OptimizedSize = optInfo.Size()
	res.Reduction = float64(res.OriginalSize-res.OptimizedSize) / float64(res.OriginalSize) * 100

	fmt.Fprintf(c.Stdout, "Successfully optimized PDF:\n")
	fmt.Fprintf(c.Stdout, "  Original size: %.2f KB\n", float64(res.OriginalSize)/1024)
	fmt.Fprintf(c.Stdout, "  Optimized size: %.2f KB\n", float64(res.OptimizedSize)/1024)
	fmt.Fprintf(c.Stdout, "  Reduction: %.2f%%\n", res.Reduction)

	return res, nil
}

// isImageStream reports whether sd is an image XObject.
func isImageStream(sd types.StreamDict) bool {
	subtype := sd.Dict.Subtype()
	return subtype != nil && *subtype == "Image"
}

// recompressImageStream decodes the stream's raw bytes, flattens to RGB on
// white, re-encodes as JPEG at the preset quality and swaps the stream
// content and filter in place. Streams whose raw bytes are not a decodable
// image (e.g. Flate-compressed raw samples) fail here and are skipped by
// the caller.
func (c *Converter) recompressImageStream(sd *types.StreamDict) error {
	img, err := imaging.Decode(bytes.NewReader(sd.Raw))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	encoded, err := c.encodeJPEG(img)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	length := int64(len(encoded))

	sd.Raw = encoded
	sd.Content = nil
	sd.StreamLength = &length
	sd.StreamLengthObjNr = nil // Length is inlined below
	sd.FilterPipeline = []types.PDFFilter{{Name: "DCTDecode"}}

	sd.Dict["Length"] = types.Integer(len(encoded))
	sd.Dict["Filter"] = types.Name("DCTDecode")
	sd.Dict["Width"] = types.Integer(bounds.Dx())
	sd.Dict["Height"] = types.Integer(bounds.Dy())
	sd.Dict["ColorSpace"] = types.Name("DeviceRGB")
	sd.Dict["BitsPerComponent"] = types.Integer(8)
	// The flattened JPEG already bakes in any transparency.
	delete(sd.Dict, "DecodeParms")
	delete(sd.Dict, "SMask")

	return nil
}
