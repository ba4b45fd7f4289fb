package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

// pointsPerInch is the PDF user-space unit density.
const pointsPerInch = 72.0

// ImageToPDF converts the given image files into a single PDF at outputFile,
// one page per image, in input order. Each image is flattened to RGB,
// re-encoded as JPEG at the preset quality, and placed on a page sized to
// exactly contain it at the preset DPI, with portrait or landscape
// orientation chosen per image.
//
// Supported inputs are whatever imaging decodes: JPEG, PNG, TIFF, BMP, GIF.
func (c *Converter) ImageToPDF(imageFiles []string, outputFile string) error {
	if len(imageFiles) == 0 {
		return &OpError{Kind: KindUsage, Path: "convert", Err: fmt.Errorf("no input files provided")}
	}
	if err := requireFiles(imageFiles); err != nil {
		return err
	}

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: 595.28, Ht: 841.89},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	dpi := float64(c.preset.DPI)

	for i, imgFile := range imageFiles {
		fmt.Fprintf(c.Stdout, "Processing: %s\n", imgFile)

		img, err := imaging.Open(imgFile, imaging.AutoOrientation(true))
		if err != nil {
			return &OpError{Kind: KindDecode, Path: imgFile, Err: err}
		}

		encoded, err := c.encodeJPEG(img)
		if err != nil {
			return &OpError{Kind: KindDecode, Path: imgFile, Err: err}
		}

		bounds := img.Bounds()
		pageW := float64(bounds.Dx()) * pointsPerInch / dpi
		pageH := float64(bounds.Dy()) * pointsPerInch / dpi

		// gofpdf takes page sizes in portrait terms and swaps for landscape.
		orientation := "P"
		size := gofpdf.SizeType{Wd: pageW, Ht: pageH}
		if pageW > pageH {
			orientation = "L"
			size = gofpdf.SizeType{Wd: pageH, Ht: pageW}
		}
		doc.AddPageFormat(orientation, size)

		name := fmt.Sprintf("img-%d", i+1)
		opts := gofpdf.ImageOptions{ImageType: "JPEG"}
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(encoded))
		doc.ImageOptions(name, 0, 0, pageW, pageH, false, opts, 0, "")

		if doc.Err() {
			return &OpError{Kind: KindLibrary, Path: imgFile, Err: doc.Error()}
		}
	}

	if err := doc.OutputFileAndClose(outputFile); err != nil {
		c.log.WithField("output", outputFile).WithError(err).Error("writing PDF failed")
		return &OpError{Kind: KindWrite, Path: outputFile, Err: err}
	}

	fmt.Fprintf(c.Stdout, "Successfully converted %d images to %s\n", len(imageFiles), outputFile)
	return nil
}

// encodeJPEG flattens img onto a white background and encodes it as JPEG
// at the preset quality, tagging the result with the preset DPI.
func (c *Converter) encodeJPEG(img image.Image) ([]byte, error) {
	flat := flattenToWhite(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(c.preset.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return withJFIFDensity(buf.Bytes(), c.preset.DPI), nil
}

// flattenToWhite composites img onto an opaque white background, turning
// alpha and palette sources into plain RGB. Opaque images come back
// visually unchanged. JPEG has no alpha channel, and legal documents are
// expected to render identically on any viewer.
func flattenToWhite(img image.Image) image.Image {
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// withJFIFDensity inserts a JFIF APP0 segment carrying the given
// dots-per-inch density right after the SOI marker. The stdlib encoder
// emits no APP0, so the segment is always added, never replaced.
func withJFIFDensity(jpg []byte, dpi int) []byte {
	if len(jpg) < 2 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
		return jpg
	}
	app0 := []byte{
		0xFF, 0xE0, // APP0
		0x00, 0x10, // segment length (16, excluding the marker)
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x02, // JFIF version 1.02
		0x01, // density unit: dots per inch
		byte(dpi >> 8), byte(dpi),
		byte(dpi >> 8), byte(dpi),
		0x00, 0x00, // no thumbnail
	}
	out := make([]byte, 0, len(jpg)+len(app0))
	out = append(out, jpg[:2]...)
	out = append(out, app0...)
	out = append(out, jpg[2:]...)
	return out
}
