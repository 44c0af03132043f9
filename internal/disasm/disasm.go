// Package disasm implements a DOS .COM disassembler.
package disasm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/dosgodisasm/internal/options"
	"github.com/retroenv/dosgodisasm/internal/program"
	"github.com/retroenv/dosgodisasm/internal/symbols"
	"github.com/retroenv/dosgodisasm/internal/writer"
	"github.com/retroenv/dosgodisasm/internal/x86"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler

	name  string
	image []byte

	instructions []x86.Instruction
	undecodable  set.Set[uint16] // offsets emitted as raw data bytes
	symbols      *symbols.Manager

	annotations map[uint16]string   // inline comments per offset
	preComments map[uint16][]string // comment lines printed before an offset
	constants   []stringConstant
}

// New creates a new disassembler for the given .COM image.
func New(logger *log.Logger, name string, image []byte, opts options.Disassembler) *Disasm {
	return &Disasm{
		logger:  logger,
		options: opts,
		name:    name,
		image:   image,

		undecodable: set.New[uint16](),
		symbols:     symbols.New(),
		annotations: map[uint16]string{},
		preComments: map[uint16][]string{},
	}
}

// Process disassembles the image and writes the assembly output.
func (dis *Disasm) Process(ctx context.Context, mainWriter io.Writer) (*program.Program, error) {
	if err := dis.decode(ctx); err != nil {
		return nil, err
	}

	dis.symbols.Resolve(dis.instructions, x86.LoadAddress)
	dis.annotateInterrupts()

	app := dis.convertToProgram()

	fileWriter := writer.New(app, mainWriter, writer.Options{
		IndentWidth:    dis.options.IndentWidth,
		OffsetComments: dis.options.OffsetComments,
	})
	if err := fileWriter.Write(); err != nil {
		return nil, fmt.Errorf("writing app to file: %w", err)
	}
	return app, nil
}

// Disassemble disassembles the image and returns the assembly output
// as lines. It is a convenience wrapper around the Process pipeline.
func Disassemble(image []byte, opts options.Disassembler) ([]string, error) {
	cfg := log.DefaultConfig()
	cfg.Level = log.ErrorLevel
	logger := log.NewWithConfig(cfg)

	dis := New(logger, "", image, opts)
	buf := &bytes.Buffer{}
	if _, err := dis.Process(context.Background(), buf); err != nil {
		return nil, err
	}

	output := strings.TrimRight(buf.String(), "\n")
	if output == "" {
		return nil, nil
	}
	return strings.Split(output, "\n"), nil
}

// converts the internal disassembly representation to a program type that
// will be used by the writer to generate the asm file.
func (dis *Disasm) convertToProgram() *program.Program {
	app := program.New(dis.name, dis.image)
	app.LoadAddress = x86.LoadAddress
	app.Offsets = make([]program.Offset, 0, len(dis.instructions))

	for _, ins := range dis.instructions {
		offset := program.Offset{
			Address: ins.Address,
			Data:    ins.Data,
			Code:    dis.renderInstruction(ins),
		}

		if dis.undecodable.Contains(ins.Address) {
			offset.SetType(program.DataOffset)
		} else {
			offset.SetType(program.CodeOffset)
		}
		if dis.insideStringConstant(ins.Address) {
			offset.SetType(program.StringOffset)
		}

		if dis.options.Labels {
			if label, ok := dis.symbols.Lookup(ins.Address); ok {
				offset.Label = label.Name
			}
		}

		offset.PreComments = dis.preComments[ins.Address]
		dis.setComment(&offset, dis.annotations[ins.Address])

		app.Offsets = append(app.Offsets, offset)
	}

	return app
}

// renderInstruction returns the assembly output of an instruction,
// branch targets are replaced by their label name if one was resolved.
func (dis *Disasm) renderInstruction(ins x86.Instruction) string {
	if !dis.options.Labels {
		return ins.String()
	}
	target, ok := ins.BranchTarget()
	if !ok {
		return ins.String()
	}

	address := uint16(uint32(target) & 0xffff)
	label, ok := dis.symbols.Lookup(address)
	if !ok { // target inside an instruction, keep the raw offset
		return ins.String()
	}
	return fmt.Sprintf("%s %s", ins.Name, label.Name)
}

// setComment generates and sets the comment for a program offset based on
// the disassembler options. It can add offset addresses, hex code and the
// DOS service annotation.
func (dis *Disasm) setComment(offset *program.Offset, annotation string) {
	var comments []string

	if dis.options.OffsetComments {
		offset.HasAddressComment = true
		comments = []string{fmt.Sprintf("0x%04x", offset.Address)}
	}

	if dis.options.HexComments {
		comments = append(comments, offset.HexCodeComment())
	}

	if annotation != "" {
		comments = append(comments, annotation)
	}
	offset.Comment = strings.Join(comments, "  ")
}
