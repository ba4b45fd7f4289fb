package main

import (
	"fmt"
	"os"

	"pdf-converter-go/internal/config"
	"pdf-converter-go/internal/converter"
	"pdf-converter-go/internal/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	quiet   bool

	outputFile string
	quality    string
	batchPDFs  []string

	version = "1.0.0"
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:     "pdf-converter",
	Version: version,
	Short:   "Merge, convert and optimize PDF documents",
	Long: `Legal Document PDF Converter

A command-line tool for merging PDFs, converting images to PDFs,
and optimizing PDFs with high-quality compression suitable for legal documents.

Features:
- Merges PDF files in argument order
- Converts images (JPEG, PNG, TIFF, BMP, GIF) to one PDF page each
- Re-compresses embedded images to reduce file size
- Batch pipeline chaining convert, merge and optimize
- Three quality presets: high (300 dpi), medium (200 dpi), low (150 dpi)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// mergeCmd merges multiple PDF files into one.
var mergeCmd = &cobra.Command{
	Use:   "merge <pdf>...",
	Short: "Merge multiple PDF files into a single PDF",
	Long: `Merge multiple PDF files into a single PDF.

Pages are concatenated in argument order, preserving each source's
internal page order.

Example:
  pdf-converter merge file1.pdf file2.pdf file3.pdf -o merged.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConverter()
		if err != nil {
			return err
		}
		return c.Merge(args, outputFile)
	},
}

// convertCmd converts image files to a PDF document.
var convertCmd = &cobra.Command{
	Use:   "convert <image>...",
	Short: "Convert image files to a PDF document",
	Long: `Convert image files to a PDF document, one page per image.

Supports: JPEG, PNG, TIFF, BMP, GIF

Example:
  pdf-converter convert image1.jpg image2.png -o document.pdf -q high`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConverter()
		if err != nil {
			return err
		}
		return c.ImageToPDF(args, outputFile)
	},
}

// optimizeCmd re-compresses embedded images in a PDF.
var optimizeCmd = &cobra.Command{
	Use:   "optimize <input_pdf>",
	Short: "Optimize a PDF file by compressing embedded images",
	Long: `Optimize a PDF file by compressing embedded images while
maintaining quality suitable for legal documents.

Example:
  pdf-converter optimize input.pdf -o optimized.pdf -q high`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConverter()
		if err != nil {
			return err
		}
		_, err = c.Optimize(args[0], outputFile)
		return err
	},
}

// batchCmd chains convert, merge and optimize.
var batchCmd = &cobra.Command{
	Use:   "batch [<image>...]",
	Short: "Convert images, merge with PDFs, and optimize in one step",
	Long: `Batch process: convert images to PDF, then merge with existing PDFs,
and optimize the result. Requires at least one image or one --pdf.

Example:
  pdf-converter batch img1.jpg img2.png --pdf file1.pdf --pdf file2.pdf -o final.pdf -q high`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newConverter()
		if err != nil {
			return err
		}
		return c.Batch(args, batchPDFs, outputFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")

	for _, cmd := range []*cobra.Command{mergeCmd, convertCmd, optimizeCmd, batchCmd} {
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output PDF file path")
		_ = cmd.MarkFlagRequired("output")
	}
	for _, cmd := range []*cobra.Command{convertCmd, optimizeCmd, batchCmd} {
		cmd.Flags().StringVarP(&quality, "quality", "q", "",
			"compression quality level: high, medium, low (default from config, else high)")
	}
	batchCmd.Flags().StringArrayVar(&batchPDFs, "pdf", nil, "PDF files to merge (repeatable)")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(batchCmd)
}

// newConverter loads configuration, resolves the quality label and builds
// the converter for this invocation. Unknown quality labels are rejected
// here, before any input is touched.
func newConverter() (*converter.Converter, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	q := quality
	if q == "" {
		q = cfg.DefaultQuality
	}
	if _, err := converter.PresetFor(q); err != nil {
		return nil, err
	}

	return converter.New(q, setupLogger(cfg))
}

// setupLogger configures and returns a logger.
func setupLogger(cfg *config.Config) *logrus.Logger {
	loggerCfg := logger.LoggerConfig{
		Level:      cfg.Logging.Level,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Console:    !quiet,
	}

	if verbose {
		loggerCfg.Level = "debug"
	}
	if quiet {
		loggerCfg.Level = "error"
	}

	log, err := logger.NewLogger(loggerCfg)
	if err != nil {
		log = logrus.New()
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
