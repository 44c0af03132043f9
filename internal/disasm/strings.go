package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/dosgodisasm/internal/x86"
	"github.com/retroenv/retrogolib/log"
)

// stringConstant is a $ terminated string in the image that is referenced
// as the argument of a display string DOS service call.
type stringConstant struct {
	start uint16 // offset of the first byte
	end   uint16 // offset after the last byte
	data  []byte
}

// markStringConstant scans the image at the believed dx value for a $
// terminated string and records it. The scan stops at an unterminated
// zero byte or at the image end.
func (dis *Disasm) markStringConstant(address uint16) {
	index := int(address) - x86.LoadAddress
	if index < 0 || index >= len(dis.image) {
		return
	}
	for _, constant := range dis.constants {
		if constant.start == address {
			return
		}
	}

	var data []byte
	for i := index; i < len(dis.image); i++ {
		value := dis.image[i]
		if value == 0x00 {
			break
		}
		data = append(data, value)
		if value == '$' {
			break
		}
	}
	if len(data) == 0 {
		return
	}

	constant := stringConstant{
		start: address,
		end:   address + uint16(len(data)),
		data:  data,
	}
	dis.constants = append(dis.constants, constant)
	dis.preComments[address] = append(dis.preComments[address],
		"start of string data", dbStatement(data))

	dis.logger.Debug("String constant",
		log.Hex("address", address),
		log.Int("length", len(data)))
}

// insideStringConstant returns whether the offset is part of a recorded
// string constant.
func (dis *Disasm) insideStringConstant(address uint16) bool {
	for _, constant := range dis.constants {
		if address >= constant.start && address < constant.end {
			return true
		}
	}
	return false
}

// dbStatement renders the string bytes as an assembly db statement.
// Printable runs are quoted, other bytes are emitted as hex values.
func dbStatement(data []byte) string {
	sb := &strings.Builder{}
	sb.WriteString("db ")
	inQuotes := false

	writeSeparator := func() {
		if sb.Len() > len("db ") {
			sb.WriteString(", ")
		}
	}

	for _, value := range data {
		printable := value >= 0x20 && value <= 0x7e

		if printable {
			if !inQuotes {
				writeSeparator()
				sb.WriteByte('"')
				inQuotes = true
			}
			if value == '"' {
				sb.WriteString(`\"`)
			} else {
				sb.WriteByte(value)
			}
			continue
		}

		if inQuotes {
			sb.WriteByte('"')
			inQuotes = false
		}
		writeSeparator()
		fmt.Fprintf(sb, "0x%02X", value)
	}

	if inQuotes {
		sb.WriteByte('"')
	}
	return sb.String()
}
