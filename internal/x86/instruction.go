// Package x86 implements the 16 bit x86 instruction decoder used for
// DOS .COM programs. The decoder is a pure function over the loaded
// byte image, driven by a static opcode table.
package x86

import (
	"fmt"
	"strings"
)

// LoadAddress is the memory address where DOS .COM programs begin execution.
// .COM files have no header, the whole file is loaded at offset 0x100 of the
// program segment and execution starts there.
const LoadAddress = 0x100

// MaxInstructionLen is the longest encoding of the supported instruction
// subset: prefixes + opcode + modrm + 16 bit displacement + 16 bit immediate.
const MaxInstructionLen = 8

// OperandKind describes the variant of an operand.
type OperandKind uint8

// Operand kinds.
const (
	RegisterOperand OperandKind = iota + 1
	ImmediateOperand
	MemoryOperand
	RelativeOperand
)

// Memory describes a 16 bit addressing mode memory reference.
type Memory struct {
	Base    Register // bx or bp, RegNone for direct addressing
	Index   Register // si or di, RegNone if unused
	Segment Register // segment override, RegNone for the default segment
	Disp    int32    // signed displacement
	HasDisp bool
}

// Operand is a tagged union over the operand variants of an instruction.
type Operand struct {
	Kind OperandKind

	Reg    Register // RegisterOperand
	Value  int32    // ImmediateOperand
	Mem    Memory   // MemoryOperand
	Target int32    // RelativeOperand, absolute resolved offset

	// Width is the operand size in bits (8 or 16). For memory operands it
	// is only set when the size cannot be inferred from another operand and
	// a size keyword has to be emitted.
	Width uint8
}

// Instruction is one decoded instruction. It is immutable once produced
// by the decoder.
type Instruction struct {
	Address  uint16 // memory address of the first instruction byte
	Data     []byte // all encoded bytes of the instruction
	Name     string // mnemonic, including any repeat prefix
	Operands []Operand
}

// Len returns the encoded length of the instruction in bytes.
func (in Instruction) Len() int {
	return len(in.Data)
}

// IsJump returns whether the instruction is an unconditional or
// conditional jump or a loop instruction with a relative target.
func (in Instruction) IsJump() bool {
	if in.Name == "jmp" || strings.HasPrefix(in.Name, "loop") || in.Name == "jcxz" {
		return true
	}
	_, ok := conditionalJumps[in.Name]
	return ok
}

// IsCall returns whether the instruction is a call.
func (in Instruction) IsCall() bool {
	return in.Name == "call"
}

// IsReturn returns whether the instruction returns from a function or interrupt.
func (in Instruction) IsReturn() bool {
	return in.Name == "ret" || in.Name == "iret"
}

// IsInterrupt returns the interrupt vector if the instruction is a
// software interrupt.
func (in Instruction) IsInterrupt() (byte, bool) {
	switch in.Name {
	case "int":
		return byte(in.Operands[0].Value), true
	case "int3":
		return 3, true
	default:
		return 0, false
	}
}

// BranchTarget returns the absolute target offset if the instruction
// has a resolved relative branch or call operand.
func (in Instruction) BranchTarget() (int32, bool) {
	for _, op := range in.Operands {
		if op.Kind == RelativeOperand {
			return op.Target, true
		}
	}
	return 0, false
}

// String returns the canonical assembler rendering of the instruction.
// Branch targets render as raw hexadecimal offsets, label substitution
// happens in the output layer.
func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Name
	}
	parts := make([]string, 0, len(in.Operands))
	for _, op := range in.Operands {
		parts = append(parts, op.String())
	}
	return in.Name + " " + strings.Join(parts, ", ")
}

// conditionalJumps contains all conditional jump mnemonics of the subset.
var conditionalJumps = map[string]struct{}{
	"jo": {}, "jno": {}, "jb": {}, "jnb": {}, "je": {}, "jne": {},
	"jbe": {}, "jnbe": {}, "js": {}, "jns": {}, "jp": {}, "jnp": {},
	"jl": {}, "jnl": {}, "jle": {}, "jnle": {},
}

// String returns the canonical assembler rendering of the operand.
// Relative operands render as a raw hexadecimal offset, callers that
// resolved a label for the target render the label name instead.
func (o Operand) String() string {
	switch o.Kind {
	case RegisterOperand:
		return o.Reg.String()

	case ImmediateOperand:
		return fmt.Sprintf("0x%x", uint32(o.Value)&0xffff)

	case RelativeOperand:
		return fmt.Sprintf("0x%04x", uint32(o.Target)&0xffff)

	case MemoryOperand:
		return o.Mem.string(o.Width)

	default:
		return ""
	}
}

func (m Memory) string(width uint8) string {
	buf := &strings.Builder{}
	switch width {
	case 8:
		buf.WriteString("byte ")
	case 16:
		buf.WriteString("word ")
	}
	if m.Segment != RegNone {
		buf.WriteString(m.Segment.String())
		buf.WriteByte(':')
	}
	buf.WriteByte('[')

	hasBase := m.Base != RegNone
	if hasBase {
		buf.WriteString(m.Base.String())
	}
	if m.Index != RegNone {
		if hasBase {
			buf.WriteByte('+')
		}
		buf.WriteString(m.Index.String())
		hasBase = true
	}

	switch {
	case !hasBase:
		fmt.Fprintf(buf, "0x%x", uint32(m.Disp)&0xffff)
	case m.HasDisp && m.Disp < 0:
		fmt.Fprintf(buf, "-0x%x", -m.Disp)
	case m.HasDisp && m.Disp > 0:
		fmt.Fprintf(buf, "+0x%x", m.Disp)
	}

	buf.WriteByte(']')
	return buf.String()
}
