package x86

// encoding describes the operand encoding shape of an opcode.
type encoding uint8

const (
	encNone     encoding = iota + 1 // no encoded operands, fixed operands only
	encModRM                        // modrm byte, width from bit 0, direction from bit 1
	encLea                          // modrm byte, r16 and memory operand
	encModRMSeg                     // modrm byte, segment register in reg field
	encAccImm                       // accumulator and immediate, width from bit 0
	encRegImm                       // register from low 3 bits, width from bit 3
	encReg16                        // 16 bit register from low 3 bits
	encRel8                         // 8 bit relative branch offset
	encRel16                        // 16 bit relative branch offset
	encImm8                         // 8 bit immediate
	encImm16                        // 16 bit immediate
	encGroupImm                     // modrm byte, group mnemonic, immediate
	encGroup                        // modrm byte, group mnemonic, no immediate
	encMoffs                        // accumulator and direct memory offset
	encPortImm                      // in/out with 8 bit port immediate
	encPrefix                       // prefix byte, modifies the following instruction
)

// Opcode describes one entry of the opcode table.
type Opcode struct {
	Name  string
	Enc   encoding
	Group *[8]string // mnemonic by modrm reg field for group encodings
	Fixed []Operand  // fixed operands emitted before any encoded operands
}

var (
	group1 = [8]string{"add", "or", "adc", "sbb", "and", "sub", "xor", "cmp"}
	group2 = [8]string{"rol", "ror", "rcl", "rcr", "shl", "shr", "", "sar"}
	group3 = [8]string{"test", "", "not", "neg", "mul", "imul", "div", "idiv"}
	group4 = [8]string{"inc", "dec", "", "", "", "", "", ""}
	group5 = [8]string{"inc", "dec", "call", "", "jmp", "", "push", ""}
)

func regOp(r Register) Operand {
	return Operand{Kind: RegisterOperand, Reg: r}
}

// Opcodes maps the first instruction byte to its description. Entries with
// an empty name are not part of the supported subset and are reported as
// unknown opcodes by the decoder.
var Opcodes = [256]Opcode{
	// ALU block: op r/m,r | op r,r/m | op acc,imm per family
	0x00: {Name: "add", Enc: encModRM},
	0x01: {Name: "add", Enc: encModRM},
	0x02: {Name: "add", Enc: encModRM},
	0x03: {Name: "add", Enc: encModRM},
	0x04: {Name: "add", Enc: encAccImm},
	0x05: {Name: "add", Enc: encAccImm},
	0x06: {Name: "push", Enc: encNone, Fixed: []Operand{regOp(ES)}},
	0x07: {Name: "pop", Enc: encNone, Fixed: []Operand{regOp(ES)}},
	0x08: {Name: "or", Enc: encModRM},
	0x09: {Name: "or", Enc: encModRM},
	0x0A: {Name: "or", Enc: encModRM},
	0x0B: {Name: "or", Enc: encModRM},
	0x0C: {Name: "or", Enc: encAccImm},
	0x0D: {Name: "or", Enc: encAccImm},
	0x0E: {Name: "push", Enc: encNone, Fixed: []Operand{regOp(CS)}},
	0x10: {Name: "adc", Enc: encModRM},
	0x11: {Name: "adc", Enc: encModRM},
	0x12: {Name: "adc", Enc: encModRM},
	0x13: {Name: "adc", Enc: encModRM},
	0x14: {Name: "adc", Enc: encAccImm},
	0x15: {Name: "adc", Enc: encAccImm},
	0x16: {Name: "push", Enc: encNone, Fixed: []Operand{regOp(SS)}},
	0x17: {Name: "pop", Enc: encNone, Fixed: []Operand{regOp(SS)}},
	0x18: {Name: "sbb", Enc: encModRM},
	0x19: {Name: "sbb", Enc: encModRM},
	0x1A: {Name: "sbb", Enc: encModRM},
	0x1B: {Name: "sbb", Enc: encModRM},
	0x1C: {Name: "sbb", Enc: encAccImm},
	0x1D: {Name: "sbb", Enc: encAccImm},
	0x1E: {Name: "push", Enc: encNone, Fixed: []Operand{regOp(DS)}},
	0x1F: {Name: "pop", Enc: encNone, Fixed: []Operand{regOp(DS)}},
	0x20: {Name: "and", Enc: encModRM},
	0x21: {Name: "and", Enc: encModRM},
	0x22: {Name: "and", Enc: encModRM},
	0x23: {Name: "and", Enc: encModRM},
	0x24: {Name: "and", Enc: encAccImm},
	0x25: {Name: "and", Enc: encAccImm},
	0x26: {Name: "es", Enc: encPrefix},
	0x27: {Name: "daa", Enc: encNone},
	0x28: {Name: "sub", Enc: encModRM},
	0x29: {Name: "sub", Enc: encModRM},
	0x2A: {Name: "sub", Enc: encModRM},
	0x2B: {Name: "sub", Enc: encModRM},
	0x2C: {Name: "sub", Enc: encAccImm},
	0x2D: {Name: "sub", Enc: encAccImm},
	0x2E: {Name: "cs", Enc: encPrefix},
	0x2F: {Name: "das", Enc: encNone},
	0x30: {Name: "xor", Enc: encModRM},
	0x31: {Name: "xor", Enc: encModRM},
	0x32: {Name: "xor", Enc: encModRM},
	0x33: {Name: "xor", Enc: encModRM},
	0x34: {Name: "xor", Enc: encAccImm},
	0x35: {Name: "xor", Enc: encAccImm},
	0x36: {Name: "ss", Enc: encPrefix},
	0x37: {Name: "aaa", Enc: encNone},
	0x38: {Name: "cmp", Enc: encModRM},
	0x39: {Name: "cmp", Enc: encModRM},
	0x3A: {Name: "cmp", Enc: encModRM},
	0x3B: {Name: "cmp", Enc: encModRM},
	0x3C: {Name: "cmp", Enc: encAccImm},
	0x3D: {Name: "cmp", Enc: encAccImm},
	0x3E: {Name: "ds", Enc: encPrefix},
	0x3F: {Name: "aas", Enc: encNone},

	// inc/dec/push/pop r16
	0x40: {Name: "inc", Enc: encReg16},
	0x41: {Name: "inc", Enc: encReg16},
	0x42: {Name: "inc", Enc: encReg16},
	0x43: {Name: "inc", Enc: encReg16},
	0x44: {Name: "inc", Enc: encReg16},
	0x45: {Name: "inc", Enc: encReg16},
	0x46: {Name: "inc", Enc: encReg16},
	0x47: {Name: "inc", Enc: encReg16},
	0x48: {Name: "dec", Enc: encReg16},
	0x49: {Name: "dec", Enc: encReg16},
	0x4A: {Name: "dec", Enc: encReg16},
	0x4B: {Name: "dec", Enc: encReg16},
	0x4C: {Name: "dec", Enc: encReg16},
	0x4D: {Name: "dec", Enc: encReg16},
	0x4E: {Name: "dec", Enc: encReg16},
	0x4F: {Name: "dec", Enc: encReg16},
	0x50: {Name: "push", Enc: encReg16},
	0x51: {Name: "push", Enc: encReg16},
	0x52: {Name: "push", Enc: encReg16},
	0x53: {Name: "push", Enc: encReg16},
	0x54: {Name: "push", Enc: encReg16},
	0x55: {Name: "push", Enc: encReg16},
	0x56: {Name: "push", Enc: encReg16},
	0x57: {Name: "push", Enc: encReg16},
	0x58: {Name: "pop", Enc: encReg16},
	0x59: {Name: "pop", Enc: encReg16},
	0x5A: {Name: "pop", Enc: encReg16},
	0x5B: {Name: "pop", Enc: encReg16},
	0x5C: {Name: "pop", Enc: encReg16},
	0x5D: {Name: "pop", Enc: encReg16},
	0x5E: {Name: "pop", Enc: encReg16},
	0x5F: {Name: "pop", Enc: encReg16},

	// conditional jumps
	0x70: {Name: "jo", Enc: encRel8},
	0x71: {Name: "jno", Enc: encRel8},
	0x72: {Name: "jb", Enc: encRel8},
	0x73: {Name: "jnb", Enc: encRel8},
	0x74: {Name: "je", Enc: encRel8},
	0x75: {Name: "jne", Enc: encRel8},
	0x76: {Name: "jbe", Enc: encRel8},
	0x77: {Name: "jnbe", Enc: encRel8},
	0x78: {Name: "js", Enc: encRel8},
	0x79: {Name: "jns", Enc: encRel8},
	0x7A: {Name: "jp", Enc: encRel8},
	0x7B: {Name: "jnp", Enc: encRel8},
	0x7C: {Name: "jl", Enc: encRel8},
	0x7D: {Name: "jnl", Enc: encRel8},
	0x7E: {Name: "jle", Enc: encRel8},
	0x7F: {Name: "jnle", Enc: encRel8},

	// immediate group 1 and modrm forms
	0x80: {Enc: encGroupImm, Group: &group1},
	0x81: {Enc: encGroupImm, Group: &group1},
	0x83: {Enc: encGroupImm, Group: &group1},
	0x84: {Name: "test", Enc: encModRM},
	0x85: {Name: "test", Enc: encModRM},
	0x86: {Name: "xchg", Enc: encModRM},
	0x87: {Name: "xchg", Enc: encModRM},
	0x88: {Name: "mov", Enc: encModRM},
	0x89: {Name: "mov", Enc: encModRM},
	0x8A: {Name: "mov", Enc: encModRM},
	0x8B: {Name: "mov", Enc: encModRM},
	0x8C: {Name: "mov", Enc: encModRMSeg},
	0x8D: {Name: "lea", Enc: encLea},
	0x8E: {Name: "mov", Enc: encModRMSeg},

	0x90: {Name: "nop", Enc: encNone},
	0x91: {Name: "xchg", Enc: encReg16, Fixed: []Operand{regOp(AX)}},
	0x92: {Name: "xchg", Enc: encReg16, Fixed: []Operand{regOp(AX)}},
	0x93: {Name: "xchg", Enc: encReg16, Fixed: []Operand{regOp(AX)}},
	0x94: {Name: "xchg", Enc: encReg16, Fixed: []Operand{regOp(AX)}},
	0x95: {Name: "xchg", Enc: encReg16, Fixed: []Operand{regOp(AX)}},
	0x96: {Name: "xchg", Enc: encReg16, Fixed: []Operand{regOp(AX)}},
	0x97: {Name: "xchg", Enc: encReg16, Fixed: []Operand{regOp(AX)}},
	0x98: {Name: "cbw", Enc: encNone},
	0x99: {Name: "cwd", Enc: encNone},
	0x9C: {Name: "pushf", Enc: encNone},
	0x9D: {Name: "popf", Enc: encNone},
	0x9E: {Name: "sahf", Enc: encNone},
	0x9F: {Name: "lahf", Enc: encNone},

	// accumulator moves and string operations
	0xA0: {Name: "mov", Enc: encMoffs},
	0xA1: {Name: "mov", Enc: encMoffs},
	0xA2: {Name: "mov", Enc: encMoffs},
	0xA3: {Name: "mov", Enc: encMoffs},
	0xA4: {Name: "movsb", Enc: encNone},
	0xA5: {Name: "movsw", Enc: encNone},
	0xA6: {Name: "cmpsb", Enc: encNone},
	0xA7: {Name: "cmpsw", Enc: encNone},
	0xA8: {Name: "test", Enc: encAccImm},
	0xA9: {Name: "test", Enc: encAccImm},
	0xAA: {Name: "stosb", Enc: encNone},
	0xAB: {Name: "stosw", Enc: encNone},
	0xAC: {Name: "lodsb", Enc: encNone},
	0xAD: {Name: "lodsw", Enc: encNone},
	0xAE: {Name: "scasb", Enc: encNone},
	0xAF: {Name: "scasw", Enc: encNone},

	// mov reg, imm
	0xB0: {Name: "mov", Enc: encRegImm},
	0xB1: {Name: "mov", Enc: encRegImm},
	0xB2: {Name: "mov", Enc: encRegImm},
	0xB3: {Name: "mov", Enc: encRegImm},
	0xB4: {Name: "mov", Enc: encRegImm},
	0xB5: {Name: "mov", Enc: encRegImm},
	0xB6: {Name: "mov", Enc: encRegImm},
	0xB7: {Name: "mov", Enc: encRegImm},
	0xB8: {Name: "mov", Enc: encRegImm},
	0xB9: {Name: "mov", Enc: encRegImm},
	0xBA: {Name: "mov", Enc: encRegImm},
	0xBB: {Name: "mov", Enc: encRegImm},
	0xBC: {Name: "mov", Enc: encRegImm},
	0xBD: {Name: "mov", Enc: encRegImm},
	0xBE: {Name: "mov", Enc: encRegImm},
	0xBF: {Name: "mov", Enc: encRegImm},

	0xC2: {Name: "ret", Enc: encImm16},
	0xC3: {Name: "ret", Enc: encNone},
	0xC6: {Name: "mov", Enc: encGroupImm},
	0xC7: {Name: "mov", Enc: encGroupImm},
	0xCC: {Name: "int3", Enc: encNone},
	0xCD: {Name: "int", Enc: encImm8},
	0xCE: {Name: "into", Enc: encNone},
	0xCF: {Name: "iret", Enc: encNone},

	// shift group 2
	0xD0: {Enc: encGroup, Group: &group2},
	0xD1: {Enc: encGroup, Group: &group2},
	0xD2: {Enc: encGroup, Group: &group2},
	0xD3: {Enc: encGroup, Group: &group2},
	0xD7: {Name: "xlat", Enc: encNone},

	// loops, port I/O and relative branches
	0xE0: {Name: "loopnz", Enc: encRel8},
	0xE1: {Name: "loopz", Enc: encRel8},
	0xE2: {Name: "loop", Enc: encRel8},
	0xE3: {Name: "jcxz", Enc: encRel8},
	0xE4: {Name: "in", Enc: encPortImm},
	0xE5: {Name: "in", Enc: encPortImm},
	0xE6: {Name: "out", Enc: encPortImm},
	0xE7: {Name: "out", Enc: encPortImm},
	0xE8: {Name: "call", Enc: encRel16},
	0xE9: {Name: "jmp", Enc: encRel16},
	0xEB: {Name: "jmp", Enc: encRel8},
	0xEC: {Name: "in", Enc: encNone, Fixed: []Operand{regOp(AL), regOp(DX)}},
	0xED: {Name: "in", Enc: encNone, Fixed: []Operand{regOp(AX), regOp(DX)}},
	0xEE: {Name: "out", Enc: encNone, Fixed: []Operand{regOp(DX), regOp(AL)}},
	0xEF: {Name: "out", Enc: encNone, Fixed: []Operand{regOp(DX), regOp(AX)}},

	0xF2: {Name: "repne", Enc: encPrefix},
	0xF3: {Name: "rep", Enc: encPrefix},
	0xF4: {Name: "hlt", Enc: encNone},
	0xF5: {Name: "cmc", Enc: encNone},
	0xF6: {Enc: encGroup, Group: &group3},
	0xF7: {Enc: encGroup, Group: &group3},
	0xF8: {Name: "clc", Enc: encNone},
	0xF9: {Name: "stc", Enc: encNone},
	0xFA: {Name: "cli", Enc: encNone},
	0xFB: {Name: "sti", Enc: encNone},
	0xFC: {Name: "cld", Enc: encNone},
	0xFD: {Name: "std", Enc: encNone},
	0xFE: {Enc: encGroup, Group: &group4},
	0xFF: {Enc: encGroup, Group: &group5},
}
