package disasm

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/dosgodisasm/internal/dos"
	"github.com/retroenv/dosgodisasm/internal/tracker"
	"github.com/retroenv/dosgodisasm/internal/x86"
	"github.com/retroenv/retrogolib/log"
)

// decode linearly decodes the whole image into the instruction stream.
// Undecodable bytes do not abort the run, they are emitted as single db
// data bytes and decoding resumes at the following offset.
func (dis *Disasm) decode(ctx context.Context) error {
	for index := 0; index < len(dis.image); {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("decoding aborted: %w", err)
		}

		ins, err := x86.Decode(dis.image, index)
		if err != nil {
			var unknownErr x86.UnknownOpcodeError
			var truncatedErr x86.TruncatedError
			if !errors.As(err, &unknownErr) && !errors.As(err, &truncatedErr) {
				return fmt.Errorf("decoding offset %04x: %w", index, err)
			}

			ins = dis.dataByte(index)
			dis.undecodable.Add(ins.Address)
			dis.logger.Debug("Undecodable byte",
				log.Hex("address", ins.Address),
				log.Err(err))
		}

		dis.instructions = append(dis.instructions, ins)
		index += ins.Len()
	}
	return nil
}

// dataByte creates a db pseudo instruction for a single undecodable byte.
func (dis *Disasm) dataByte(index int) x86.Instruction {
	value := dis.image[index]
	return x86.Instruction{
		Address: uint16((x86.LoadAddress + index) & 0xffff),
		Data:    []byte{value},
		Name:    "db",
		Operands: []x86.Operand{
			{Kind: x86.ImmediateOperand, Value: int32(value), Width: 8},
		},
	}
}

// annotateInterrupts replays the instruction stream through the register
// tracker and annotates DOS service interrupts with the selected function.
// A display string service with a known dx pointer additionally records
// the referenced string constant.
func (dis *Disasm) annotateInterrupts() {
	if !dis.options.SyscallComments {
		return
	}

	tr := tracker.New()
	for _, ins := range dis.instructions {
		if vector, ok := ins.IsInterrupt(); ok {
			ah, ahKnown := tr.Value(x86.AH)
			if message, ok := dos.Annotate(vector, ah, ahKnown); ok {
				dis.annotations[ins.Address] = message
			}

			if vector == dos.VectorFunction && ahKnown && ah == 0x09 && dis.options.StringComments {
				if dx, ok := tr.Value(x86.DX); ok {
					dis.markStringConstant(dx)
				}
			}
		}

		tr.Apply(ins)
	}
}
