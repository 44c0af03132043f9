package x86

// Register identifies an 8086 register.
type Register uint8

// Register values. The 8-bit and 16-bit blocks are ordered to match
// the 3 bit register field of the instruction encodings.
const (
	RegNone Register = iota

	AL
	CL
	DL
	BL
	AH
	CH
	DH
	BH

	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI

	ES
	CS
	SS
	DS
)

var registerNames = map[Register]string{
	AL: "al", CL: "cl", DL: "dl", BL: "bl",
	AH: "ah", CH: "ch", DH: "dh", BH: "bh",
	AX: "ax", CX: "cx", DX: "dx", BX: "bx",
	SP: "sp", BP: "bp", SI: "si", DI: "di",
	ES: "es", CS: "cs", SS: "ss", DS: "ds",
}

// String returns the assembler name of the register.
func (r Register) String() string {
	return registerNames[r]
}

// Is8Bit returns whether the register is one of the 8 bit registers.
func (r Register) Is8Bit() bool {
	return r >= AL && r <= BH
}

// Is16Bit returns whether the register is one of the 16 bit general purpose registers.
func (r Register) Is16Bit() bool {
	return r >= AX && r <= DI
}

// Parent returns the 16 bit register that contains an 8 bit register,
// for example AH and AL are both part of AX. For 16 bit registers the
// register itself is returned.
func (r Register) Parent() Register {
	switch r {
	case AL, AH:
		return AX
	case CL, CH:
		return CX
	case DL, DH:
		return DX
	case BL, BH:
		return BX
	default:
		return r
	}
}

// Overlaps returns whether two registers share storage, for example
// AX overlaps AL and AH.
func (r Register) Overlaps(other Register) bool {
	if r == RegNone || other == RegNone {
		return false
	}
	return r.Parent() == other.Parent()
}

// reg8 returns the 8 bit register for a 3 bit register field value.
func reg8(value byte) Register {
	return AL + Register(value&0b111)
}

// reg16 returns the 16 bit register for a 3 bit register field value.
func reg16(value byte) Register {
	return AX + Register(value&0b111)
}

// segReg returns the segment register for a 2 bit segment field value.
func segReg(value byte) Register {
	return ES + Register(value&0b11)
}
