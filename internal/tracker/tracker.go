// Package tracker maintains symbolic knowledge about register contents
// while replaying the decoded instruction stream in offset order.
// The belief lattice is intentionally minimal: a register value is either
// unknown or a known immediate. It is advisory only, the DOS service
// annotator needs exact immediate matches and nothing more.
package tracker

import (
	"github.com/retroenv/dosgodisasm/internal/x86"
)

// Tracker tracks register beliefs as a fold over the instruction stream.
type Tracker struct {
	known map[x86.Register]uint16
}

// New creates a new register tracker with all registers unknown.
func New() *Tracker {
	return &Tracker{
		known: map[x86.Register]uint16{},
	}
}

// Value returns the believed immediate value of a register.
func (t *Tracker) Value(reg x86.Register) (uint16, bool) {
	value, ok := t.known[reg]
	return value, ok
}

// Apply updates the belief state with the effect of one instruction.
// It never fails, anything that cannot be determined statically results
// in the affected registers becoming unknown.
func (t *Tracker) Apply(ins x86.Instruction) {
	// a call leaves the effects on registers unknowable locally,
	// same for transfers through a register or memory operand
	if ins.IsCall() || isIndirectTransfer(ins) {
		t.invalidateAll()
		return
	}

	switch ins.Name {
	case "mov":
		t.applyMov(ins)
		return

	case "xchg":
		t.applyXchg(ins)
		return
	}

	for _, reg := range writtenRegisters(ins) {
		t.invalidate(reg)
	}
}

func (t *Tracker) applyMov(ins x86.Instruction) {
	dst := ins.Operands[0]
	src := ins.Operands[1]
	if dst.Kind != x86.RegisterOperand {
		return
	}

	switch src.Kind {
	case x86.ImmediateOperand:
		t.set(dst.Reg, uint16(uint32(src.Value)&0xffff))

	case x86.RegisterOperand:
		if value, ok := t.known[src.Reg]; ok {
			t.set(dst.Reg, value)
		} else {
			t.invalidate(dst.Reg)
		}

	default: // loaded from memory
		t.invalidate(dst.Reg)
	}
}

func (t *Tracker) applyXchg(ins x86.Instruction) {
	dst := ins.Operands[0]
	src := ins.Operands[1]
	if dst.Kind != x86.RegisterOperand || src.Kind != x86.RegisterOperand {
		if dst.Kind == x86.RegisterOperand {
			t.invalidate(dst.Reg)
		}
		if src.Kind == x86.RegisterOperand {
			t.invalidate(src.Reg)
		}
		return
	}

	left, leftKnown := t.known[dst.Reg]
	right, rightKnown := t.known[src.Reg]
	t.invalidate(dst.Reg)
	t.invalidate(src.Reg)
	if rightKnown {
		t.set(dst.Reg, right)
	}
	if leftKnown {
		t.set(src.Reg, left)
	}
}

// set records a known immediate for a register. Beliefs about registers
// sharing storage are dropped first, writing AH invalidates AX and AL.
func (t *Tracker) set(reg x86.Register, value uint16) {
	t.invalidate(reg)
	t.known[reg] = value
}

func (t *Tracker) invalidate(reg x86.Register) {
	for tracked := range t.known {
		if tracked.Overlaps(reg) {
			delete(t.known, tracked)
		}
	}
}

func (t *Tracker) invalidateAll() {
	clear(t.known)
}

// destructiveNames contains mnemonics whose first register operand is
// written with a value that cannot be determined statically.
var destructiveNames = map[string]struct{}{
	"add": {}, "or": {}, "adc": {}, "sbb": {}, "and": {}, "sub": {},
	"xor": {}, "inc": {}, "dec": {}, "pop": {}, "neg": {}, "not": {},
	"rol": {}, "ror": {}, "rcl": {}, "rcr": {}, "shl": {}, "shr": {},
	"sar": {}, "lea": {}, "in": {},
}

// implicitWrites contains registers written by instructions without an
// explicit destination operand.
var implicitWrites = map[string][]x86.Register{
	"mul":    {x86.AX, x86.DX},
	"imul":   {x86.AX, x86.DX},
	"div":    {x86.AX, x86.DX},
	"idiv":   {x86.AX, x86.DX},
	"cbw":    {x86.AX},
	"cwd":    {x86.DX},
	"daa":    {x86.AL},
	"das":    {x86.AL},
	"aaa":    {x86.AL, x86.AH},
	"aas":    {x86.AL, x86.AH},
	"lodsb":  {x86.AL, x86.SI},
	"lodsw":  {x86.AX, x86.SI},
	"movsb":  {x86.SI, x86.DI},
	"movsw":  {x86.SI, x86.DI},
	"cmpsb":  {x86.SI, x86.DI},
	"cmpsw":  {x86.SI, x86.DI},
	"stosb":  {x86.DI},
	"stosw":  {x86.DI},
	"scasb":  {x86.DI},
	"scasw":  {x86.DI},
	"xlat":   {x86.AL},
	"lahf":   {x86.AH},
	"popf":   {},
	"loop":   {x86.CX},
	"loopz":  {x86.CX},
	"loopnz": {x86.CX},
}

func writtenRegisters(ins x86.Instruction) []x86.Register {
	name := baseName(ins.Name)

	if regs, ok := implicitWrites[name]; ok {
		// repeated string operations also consume cx
		if name != ins.Name {
			regs = append(regs, x86.CX)
		}
		return regs
	}

	if _, ok := destructiveNames[name]; !ok {
		return nil
	}
	if len(ins.Operands) == 0 || ins.Operands[0].Kind != x86.RegisterOperand {
		return nil
	}
	return []x86.Register{ins.Operands[0].Reg}
}

// baseName strips a repeat prefix from the mnemonic.
func baseName(name string) string {
	for i := range len(name) {
		if name[i] == ' ' {
			return name[i+1:]
		}
	}
	return name
}

func isIndirectTransfer(ins x86.Instruction) bool {
	if ins.Name != "jmp" && ins.Name != "call" {
		return false
	}
	_, resolved := ins.BranchTarget()
	return !resolved
}
