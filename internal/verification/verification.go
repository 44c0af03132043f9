// Package verification cross checks the decoded instruction stream
// against a reference decoder.
package verification

import (
	"fmt"

	"github.com/retroenv/dosgodisasm/internal/program"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/arch/x86/x86asm"
)

// decodeMode is the x86 processor mode of the reference decoder.
const decodeMode = 16

// VerifyOutput verifies that all code offsets of the disassembled program
// have the same instruction boundaries as the reference decoder. Offsets
// that were emitted as data bytes are skipped, the reference decoder
// accepts later instruction set extensions that are undefined on the 8086.
func VerifyOutput(logger *log.Logger, image []byte, app *program.Program) error {
	mismatches := 0

	for _, offset := range app.Offsets {
		if !offset.IsType(program.CodeOffset) {
			continue
		}

		index := int(offset.Address) - int(app.LoadAddress)
		if index < 0 || index >= len(image) {
			return fmt.Errorf("offset %04x outside of image", offset.Address)
		}

		reference, err := x86asm.Decode(image[index:], decodeMode)
		if err != nil {
			logger.Debug("Reference decoder error",
				log.Hex("address", offset.Address),
				log.Err(err))
			continue
		}

		if reference.Len != len(offset.Data) {
			mismatches++
			logger.Error("Instruction length mismatch",
				log.Hex("address", offset.Address),
				log.String("code", offset.Code),
				log.Int("length", len(offset.Data)),
				log.Int("reference_length", reference.Len))
		}
	}

	if mismatches > 0 {
		return fmt.Errorf("verification found %d instruction boundary mismatches", mismatches)
	}
	return nil
}
