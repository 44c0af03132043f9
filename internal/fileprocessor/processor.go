// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/dosgodisasm/internal/disasm"
	"github.com/retroenv/dosgodisasm/internal/options"
	"github.com/retroenv/dosgodisasm/internal/verification"
	"github.com/retroenv/dosgodisasm/internal/x86"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// maxImageSize is the largest .COM image that fits into the 64 KB program
// segment after the load address.
const maxImageSize = 0x10000 - x86.LoadAddress

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program,
	disasmOptions options.Disassembler) error {

	image, err := loadImage(logger, opts.Input)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}

	writer, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	dis := disasm.New(logger, filepath.Base(opts.Input), image, disasmOptions)
	app, err := dis.Process(ctx, writer)
	if err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}

	if opts.Verify {
		if err := verification.VerifyOutput(logger, image, app); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Verification successful")
	}

	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".asm"
}

// loadImage reads the raw .COM image. .COM files have no header or magic
// bytes, any file content is treated as bytecode, files without the usual
// extension only trigger a warning.
func loadImage(logger *log.Logger, fileName string) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".com") {
		logger.Warn("Input file does not have a .com extension, the content is treated as raw bytecode")
	}

	image, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", fileName, err)
	}

	if len(image) > maxImageSize {
		return nil, fmt.Errorf("file size %d exceeds the maximum .com size of %d bytes",
			len(image), maxImageSize)
	}
	return image, nil
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("dosgodisasm", log.String("version", buildinfo.Version(version, commit, date)))
}
