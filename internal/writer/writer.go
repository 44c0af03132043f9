// Package writer implements assembly file writing functionality.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/dosgodisasm/internal/program"
)

// codeColumnWidth aligns the comment column for instruction lines.
const codeColumnWidth = 30

// Writer writes a disassembled program as an assembly file.
type Writer struct {
	app     *program.Program
	options Options
	writer  io.Writer

	indent string
}

// Options of the writer.
type Options struct {
	IndentWidth    int  // indentation of instruction lines, label lines start at column 0
	OffsetComments bool // add the offset address to comments that are missing it
}

// New creates a new writer.
func New(app *program.Program, writer io.Writer, options Options) *Writer {
	return &Writer{
		app:     app,
		options: options,
		writer:  writer,
		indent:  strings.Repeat(" ", options.IndentWidth),
	}
}

// Write writes the whole program, all offsets with their labels and comments.
// An empty program produces no output at all, not even the comment header.
func (w *Writer) Write() error {
	if len(w.app.Offsets) == 0 {
		return nil
	}

	if err := w.writeCommentHeader(); err != nil {
		return err
	}

	for i, offset := range w.app.Offsets {
		if err := w.writeLabel(i, offset); err != nil {
			return err
		}

		for _, comment := range offset.PreComments {
			if _, err := fmt.Fprintf(w.writer, "%s; %s\n", w.indent, comment); err != nil {
				return fmt.Errorf("writing comment: %w", err)
			}
		}

		if err := w.writeCodeLine(offset); err != nil {
			return err
		}
	}
	return nil
}

// writeCommentHeader writes the program name, CRC32 checksum and load
// address as comments to the output.
func (w *Writer) writeCommentHeader() error {
	if w.app.Name != "" {
		if _, err := fmt.Fprintf(w.writer, "; %s\n", w.app.Name); err != nil {
			return fmt.Errorf("writing name: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w.writer, "; CRC32 checksum: %08x\n", w.app.Checksum); err != nil {
		return fmt.Errorf("writing checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Load address: 0x%04x\n\n", w.app.LoadAddress); err != nil {
		return fmt.Errorf("writing load address: %w", err)
	}
	return nil
}

func (w *Writer) writeLabel(index int, offset program.Offset) error {
	if offset.Label == "" {
		return nil
	}

	if index > 0 {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}

	if _, err := fmt.Fprintf(w.writer, "%s:\n", offset.Label); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (w *Writer) writeCodeLine(offset program.Offset) error {
	if w.options.OffsetComments && !offset.HasAddressComment {
		comment := fmt.Sprintf("0x%04x", offset.Address)
		if offset.Comment == "" {
			offset.Comment = comment
		} else {
			offset.Comment = comment + "  " + offset.Comment
		}
	}

	if offset.Comment == "" {
		if _, err := fmt.Fprintf(w.writer, "%s%s\n", w.indent, offset.Code); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w.writer, "%s%-*s ; %s\n",
		w.indent, codeColumnWidth, offset.Code, offset.Comment); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}
