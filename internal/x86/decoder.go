package x86

import "fmt"

// UnknownOpcodeError is returned when the leading byte matches no entry
// of the opcode table, or when a group encoding selects an undefined
// group member. It is recoverable, the caller emits the byte as data
// and resumes decoding at the next offset.
type UnknownOpcodeError struct {
	Address uint16
	Byte    byte
}

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02x at offset 0x%04x", e.Byte, e.Address)
}

// TruncatedError is returned when the matched encoding requires more
// bytes than remain in the image. It is recoverable in the same way as
// an unknown opcode.
type TruncatedError struct {
	Address uint16
}

func (e TruncatedError) Error() string {
	return fmt.Sprintf("truncated instruction at offset 0x%04x", e.Address)
}

// rmModes maps the 3 bit r/m field to base and index register of the
// 16 bit addressing modes.
var rmModes = [8][2]Register{
	{BX, SI}, {BX, DI}, {BP, SI}, {BP, DI},
	{RegNone, SI}, {RegNone, DI}, {BP, RegNone}, {BX, RegNone},
}

// Decode decodes exactly one instruction beginning at the given image index.
// It is a pure function of the image content and the index, the image is
// never modified. All offset arithmetic uses 32 bit integers, values are
// masked to 16 bits at display time only.
func Decode(image []byte, index int) (Instruction, error) {
	c := cursor{image: image, start: index, pos: index}
	address := displayAddress(index)

	var (
		repPrefix string
		segPrefix Register
		opByte    byte
		entry     Opcode
	)

	for {
		b, err := c.byte()
		if err != nil {
			return Instruction{}, err
		}
		entry = Opcodes[b]
		if entry.Enc != encPrefix {
			opByte = b
			break
		}

		switch b {
		case 0xF2, 0xF3:
			if repPrefix != "" {
				return Instruction{}, UnknownOpcodeError{Address: address, Byte: b}
			}
			repPrefix = entry.Name
		default:
			if segPrefix != RegNone {
				return Instruction{}, UnknownOpcodeError{Address: address, Byte: b}
			}
			segPrefix = prefixSegment(b)
		}
	}

	if entry.Enc == 0 {
		return Instruction{}, UnknownOpcodeError{Address: address, Byte: opByte}
	}

	name := entry.Name
	operands := append([]Operand(nil), entry.Fixed...)

	switch entry.Enc {
	case encNone:

	case encModRM:
		w := opByte & 1
		rmOp, regField, err := c.modRM(segPrefix, w)
		if err != nil {
			return Instruction{}, err
		}
		regOperand := regOp(register(regField, w))
		if opByte&2 != 0 {
			operands = append(operands, regOperand, rmOp)
		} else {
			operands = append(operands, rmOp, regOperand)
		}

	case encLea:
		rmOp, regField, err := c.modRM(segPrefix, 1)
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, regOp(reg16(regField)), rmOp)

	case encModRMSeg:
		rmOp, regField, err := c.modRM(segPrefix, 1)
		if err != nil {
			return Instruction{}, err
		}
		if regField > 3 {
			return Instruction{}, UnknownOpcodeError{Address: address, Byte: opByte}
		}
		segOperand := regOp(segReg(regField))
		if opByte&2 != 0 {
			operands = append(operands, segOperand, rmOp)
		} else {
			operands = append(operands, rmOp, segOperand)
		}

	case encAccImm:
		w := opByte & 1
		imm, err := c.immediate(w)
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, regOp(register(0, w)), imm)

	case encRegImm:
		w := (opByte >> 3) & 1
		imm, err := c.immediate(w)
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, regOp(register(opByte&7, w)), imm)

	case encReg16:
		operands = append(operands, regOp(reg16(opByte&7)))

	case encRel8:
		delta, err := c.byte()
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, Operand{
			Kind:   RelativeOperand,
			Target: int32(LoadAddress) + int32(c.pos) + int32(int8(delta)),
		})

	case encRel16:
		delta, err := c.word()
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, Operand{
			Kind:   RelativeOperand,
			Target: int32(LoadAddress) + int32(c.pos) + int32(int16(delta)),
		})

	case encImm8:
		b, err := c.byte()
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, Operand{Kind: ImmediateOperand, Value: int32(b), Width: 8})

	case encImm16:
		v, err := c.word()
		if err != nil {
			return Instruction{}, err
		}
		operands = append(operands, Operand{Kind: ImmediateOperand, Value: int32(v), Width: 16})

	case encGroupImm:
		var err error
		name, operands, err = c.decodeGroupImm(opByte, entry, segPrefix, operands)
		if err != nil {
			return Instruction{}, err
		}

	case encGroup:
		var err error
		name, operands, err = c.decodeGroup(opByte, entry, segPrefix, operands)
		if err != nil {
			return Instruction{}, err
		}

	case encMoffs:
		w := opByte & 1
		addr, err := c.word()
		if err != nil {
			return Instruction{}, err
		}
		memOperand := Operand{Kind: MemoryOperand, Mem: Memory{
			Segment: segPrefix,
			Disp:    int32(addr),
			HasDisp: true,
		}}
		accOperand := regOp(register(0, w))
		if opByte&2 == 0 {
			operands = append(operands, accOperand, memOperand)
		} else {
			operands = append(operands, memOperand, accOperand)
		}

	case encPortImm:
		port, err := c.byte()
		if err != nil {
			return Instruction{}, err
		}
		portOperand := Operand{Kind: ImmediateOperand, Value: int32(port), Width: 8}
		accOperand := regOp(register(0, opByte&1))
		if opByte&2 == 0 {
			operands = append(operands, accOperand, portOperand)
		} else {
			operands = append(operands, portOperand, accOperand)
		}
	}

	if repPrefix != "" {
		name = repPrefix + " " + name
	}

	return Instruction{
		Address:  address,
		Data:     image[index:c.pos],
		Name:     name,
		Operands: operands,
	}, nil
}

// decodeGroupImm decodes the immediate group encodings 80/81/83 and C6/C7.
func (c *cursor) decodeGroupImm(opByte byte, entry Opcode, seg Register,
	operands []Operand) (string, []Operand, error) {

	w := opByte & 1
	rmOp, regField, err := c.modRM(seg, w)
	if err != nil {
		return "", nil, err
	}

	name := entry.Name
	if entry.Group != nil {
		name = entry.Group[regField]
	} else if regField != 0 { // C6/C7 only define the mov member
		return "", nil, UnknownOpcodeError{Address: c.address(), Byte: opByte}
	}

	var imm Operand
	if opByte == 0x83 {
		// imm8 sign-extended to the 16 bit operand
		b, err := c.byte()
		if err != nil {
			return "", nil, err
		}
		imm = Operand{Kind: ImmediateOperand, Value: int32(int8(b)), Width: 16}
	} else {
		imm, err = c.immediate(w)
		if err != nil {
			return "", nil, err
		}
	}

	rmOp = sizeHinted(rmOp, w)
	return name, append(operands, rmOp, imm), nil
}

// decodeGroup decodes the modrm group encodings D0-D3, F6/F7, FE and FF
// where the reg field selects the mnemonic.
func (c *cursor) decodeGroup(opByte byte, entry Opcode, seg Register,
	operands []Operand) (string, []Operand, error) {

	w := opByte & 1
	if opByte == 0xFE {
		w = 0
	}
	if opByte == 0xFF {
		w = 1
	}

	rmOp, regField, err := c.modRM(seg, w)
	if err != nil {
		return "", nil, err
	}
	name := entry.Group[regField]
	if name == "" {
		return "", nil, UnknownOpcodeError{Address: c.address(), Byte: opByte}
	}
	rmOp = sizeHinted(rmOp, w)
	operands = append(operands, rmOp)

	switch {
	case opByte >= 0xD0 && opByte <= 0xD3:
		if opByte&2 == 0 {
			operands = append(operands, Operand{Kind: ImmediateOperand, Value: 1, Width: 8})
		} else {
			operands = append(operands, regOp(CL))
		}

	case (opByte == 0xF6 || opByte == 0xF7) && regField == 0: // test r/m, imm
		imm, err := c.immediate(w)
		if err != nil {
			return "", nil, err
		}
		operands = append(operands, imm)
	}

	return name, operands, nil
}

// cursor is a bounds checked reader over the byte image.
type cursor struct {
	image []byte
	start int
	pos   int
}

func (c *cursor) address() uint16 {
	return displayAddress(c.start)
}

func (c *cursor) byte() (byte, error) {
	if c.pos >= len(c.image) {
		return 0, TruncatedError{Address: c.address()}
	}
	b := c.image[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) word() (uint16, error) {
	low, err := c.byte()
	if err != nil {
		return 0, err
	}
	high, err := c.byte()
	if err != nil {
		return 0, err
	}
	return uint16(high)<<8 | uint16(low), nil
}

// immediate reads an 8 or 16 bit immediate operand depending on the width bit.
func (c *cursor) immediate(w byte) (Operand, error) {
	if w == 0 {
		b, err := c.byte()
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: ImmediateOperand, Value: int32(b), Width: 8}, nil
	}
	v, err := c.word()
	if err != nil {
		return Operand{}, err
	}
	return Operand{Kind: ImmediateOperand, Value: int32(v), Width: 16}, nil
}

// modRM reads the addressing mode byte and any displacement and returns
// the r/m operand and the reg field value.
func (c *cursor) modRM(seg Register, w byte) (Operand, byte, error) {
	b, err := c.byte()
	if err != nil {
		return Operand{}, 0, err
	}
	mod := b >> 6
	regField := (b >> 3) & 7
	rm := b & 7

	if mod == 3 {
		return regOp(register(rm, w)), regField, nil
	}

	mem := Memory{Segment: seg}

	switch mod {
	case 0:
		if rm == 6 { // direct addressing
			disp, err := c.word()
			if err != nil {
				return Operand{}, 0, err
			}
			mem.Disp = int32(disp)
			mem.HasDisp = true
		} else {
			mem.Base = rmModes[rm][0]
			mem.Index = rmModes[rm][1]
		}

	case 1:
		disp, err := c.byte()
		if err != nil {
			return Operand{}, 0, err
		}
		mem.Base = rmModes[rm][0]
		mem.Index = rmModes[rm][1]
		mem.Disp = int32(int8(disp))
		mem.HasDisp = true

	case 2:
		disp, err := c.word()
		if err != nil {
			return Operand{}, 0, err
		}
		mem.Base = rmModes[rm][0]
		mem.Index = rmModes[rm][1]
		mem.Disp = int32(int16(disp))
		mem.HasDisp = true
	}

	return Operand{Kind: MemoryOperand, Mem: mem}, regField, nil
}

// register returns the register for a 3 bit field value and width bit.
func register(value, w byte) Register {
	if w == 0 {
		return reg8(value)
	}
	return reg16(value)
}

// sizeHinted adds a size keyword to memory operands whose operand size
// cannot be inferred from another register operand.
func sizeHinted(op Operand, w byte) Operand {
	if op.Kind != MemoryOperand {
		return op
	}
	if w == 0 {
		op.Width = 8
	} else {
		op.Width = 16
	}
	return op
}

func prefixSegment(b byte) Register {
	switch b {
	case 0x26:
		return ES
	case 0x2E:
		return CS
	case 0x36:
		return SS
	default:
		return DS
	}
}

// displayAddress converts an image index to the 16 bit memory address,
// masking only at this final step.
func displayAddress(index int) uint16 {
	return uint16((int32(LoadAddress) + int32(index)) & 0xffff)
}
