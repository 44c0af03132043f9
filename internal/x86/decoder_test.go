package x86

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecodeSingleInstructions(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
		length   int
	}{
		{"mov reg8 imm", []byte{0xB4, 0x09}, "mov ah, 0x9", 2},
		{"mov reg16 imm", []byte{0xB8, 0x34, 0x12}, "mov ax, 0x1234", 3},
		{"mov reg reg", []byte{0x89, 0xD8}, "mov ax, bx", 2},
		{"mov reg from mem", []byte{0x8B, 0x1E, 0x34, 0x12}, "mov bx, [0x1234]", 4},
		{"mov mem from reg", []byte{0x88, 0x47, 0x05}, "mov [bx+0x5], al", 3},
		{"mov mem negative disp", []byte{0x8A, 0x46, 0xFE}, "mov al, [bp-0x2]", 3},
		{"mov base index", []byte{0x89, 0x00}, "mov [bx+si], ax", 2},
		{"mov mem imm", []byte{0xC6, 0x06, 0x34, 0x12, 0x41}, "mov byte [0x1234], 0x41", 5},
		{"mov seg reg", []byte{0x8E, 0xD8}, "mov ds, ax", 2},
		{"lea", []byte{0x8D, 0x57, 0x10}, "lea dx, [bx+0x10]", 3},
		{"add acc imm", []byte{0x04, 0x01}, "add al, 0x1", 2},
		{"add sign extended imm", []byte{0x83, 0xC3, 0x05}, "add bx, 0x5", 3},
		{"sub imm16", []byte{0x81, 0xEB, 0x34, 0x12}, "sub bx, 0x1234", 4},
		{"cmp mem imm", []byte{0x80, 0x3E, 0x00, 0x02, 0x24}, "cmp byte [0x200], 0x24", 5},
		{"inc reg16", []byte{0x43}, "inc bx", 1},
		{"push reg16", []byte{0x53}, "push bx", 1},
		{"push segment", []byte{0x1E}, "push ds", 1},
		{"xchg ax reg", []byte{0x93}, "xchg ax, bx", 1},
		{"shift by one", []byte{0xD1, 0xE0}, "shl ax, 0x1", 2},
		{"shift by cl", []byte{0xD2, 0xC8}, "ror al, cl", 2},
		{"mul", []byte{0xF7, 0xE3}, "mul bx", 2},
		{"test group imm", []byte{0xF6, 0xC3, 0x01}, "test bl, 0x1", 3},
		{"inc mem", []byte{0xFE, 0x07}, "inc byte [bx]", 2},
		{"jmp indirect", []byte{0xFF, 0xE0}, "jmp ax", 2},
		{"push mem", []byte{0xFF, 0x36, 0x00, 0x02}, "push word [0x200]", 4},
		{"mov moffs to acc", []byte{0xA1, 0x00, 0x02}, "mov ax, [0x200]", 3},
		{"mov acc to moffs", []byte{0xA2, 0x00, 0x02}, "mov [0x200], al", 3},
		{"int", []byte{0xCD, 0x21}, "int 0x21", 2},
		{"ret", []byte{0xC3}, "ret", 1},
		{"ret imm", []byte{0xC2, 0x02, 0x00}, "ret 0x2", 3},
		{"in port", []byte{0xE4, 0x60}, "in al, 0x60", 2},
		{"out port", []byte{0xE6, 0x43}, "out 0x43, al", 2},
		{"out dx", []byte{0xEE}, "out dx, al", 1},
		{"rep prefix", []byte{0xF3, 0xA4}, "rep movsb", 2},
		{"repne prefix", []byte{0xF2, 0xAE}, "repne scasb", 2},
		{"segment override", []byte{0x2E, 0x8B, 0x1E, 0x34, 0x12}, "mov bx, cs:[0x1234]", 5},
		{"nop", []byte{0x90}, "nop", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.data, 0)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, ins.String())
			assert.Equal(t, tt.length, ins.Len())
			assert.Equal(t, tt.length, len(ins.Data))
			assert.Equal(t, uint16(LoadAddress), ins.Address)
		})
	}
}

func TestDecodeRelativeTargets(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		index  int
		target int32
	}{
		{"jmp rel16 zero displacement", []byte{0xE9, 0x00, 0x00}, 0, 0x103},
		{"jmp short to self", []byte{0xEB, 0xFE}, 0, 0x100},
		{"jmp short forward", []byte{0xEB, 0x04, 0x90, 0x90, 0x90, 0x90, 0xC3}, 0, 0x106},
		{"conditional jump backward", []byte{0x90, 0x90, 0x75, 0xFC}, 2, 0x100},
		{"call rel16", []byte{0xE8, 0x10, 0x00}, 0, 0x113},
		{"call backward", []byte{0x90, 0x90, 0x90, 0xE8, 0xFA, 0xFF}, 3, 0x100},
		{"loop", []byte{0x90, 0xE2, 0xFD}, 1, 0x100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.data, tt.index)
			assert.NoError(t, err)

			target, ok := ins.BranchTarget()
			assert.True(t, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("unknown opcode", func(t *testing.T) {
		_, err := Decode([]byte{0x0F, 0x00}, 0)
		var unknownErr UnknownOpcodeError
		assert.True(t, errors.As(err, &unknownErr))
		assert.Equal(t, byte(0x0F), unknownErr.Byte)
		assert.Equal(t, uint16(0x100), unknownErr.Address)
	})

	t.Run("undefined group member", func(t *testing.T) {
		// group 3 reg field 001 is not defined
		_, err := Decode([]byte{0xF6, 0xC8, 0x01}, 0)
		var unknownErr UnknownOpcodeError
		assert.True(t, errors.As(err, &unknownErr))
	})

	t.Run("truncated immediate", func(t *testing.T) {
		_, err := Decode([]byte{0xB8, 0x34}, 0)
		var truncatedErr TruncatedError
		assert.True(t, errors.As(err, &truncatedErr))
	})

	t.Run("truncated modrm", func(t *testing.T) {
		_, err := Decode([]byte{0x8B}, 0)
		var truncatedErr TruncatedError
		assert.True(t, errors.As(err, &truncatedErr))
	})

	t.Run("index out of bounds", func(t *testing.T) {
		_, err := Decode([]byte{0x90}, 1)
		var truncatedErr TruncatedError
		assert.True(t, errors.As(err, &truncatedErr))
	})

	t.Run("prefix without instruction", func(t *testing.T) {
		_, err := Decode([]byte{0xF3}, 0)
		var truncatedErr TruncatedError
		assert.True(t, errors.As(err, &truncatedErr))
	})

	t.Run("doubled repeat prefix", func(t *testing.T) {
		_, err := Decode([]byte{0xF3, 0xF3, 0xA4}, 0)
		var unknownErr UnknownOpcodeError
		assert.True(t, errors.As(err, &unknownErr))
	})
}

// Decoding from offset+length of a decoded instruction must yield a fresh
// independent instruction, instruction boundaries depend only on the bytes.
func TestDecodeSequential(t *testing.T) {
	image := []byte{
		0xB4, 0x09, // mov ah, 0x9
		0xBA, 0x0B, 0x01, // mov dx, 0x10b
		0xCD, 0x21, // int 0x21
		0xC3, // ret
	}

	expected := []struct {
		address uint16
		length  int
		text    string
	}{
		{0x100, 2, "mov ah, 0x9"},
		{0x102, 3, "mov dx, 0x10b"},
		{0x105, 2, "int 0x21"},
		{0x107, 1, "ret"},
	}

	index := 0
	for _, exp := range expected {
		ins, err := Decode(image, index)
		assert.NoError(t, err)
		assert.Equal(t, exp.address, ins.Address)
		assert.Equal(t, exp.length, ins.Len())
		assert.Equal(t, exp.text, ins.String())
		index += ins.Len()
	}
	assert.Equal(t, len(image), index)
}

func TestInstructionClassification(t *testing.T) {
	jmp, err := Decode([]byte{0xEB, 0xFE}, 0)
	assert.NoError(t, err)
	assert.True(t, jmp.IsJump())
	assert.False(t, jmp.IsCall())

	call, err := Decode([]byte{0xE8, 0x00, 0x00}, 0)
	assert.NoError(t, err)
	assert.True(t, call.IsCall())
	assert.False(t, call.IsJump())

	ret, err := Decode([]byte{0xC3}, 0)
	assert.NoError(t, err)
	assert.True(t, ret.IsReturn())

	intIns, err := Decode([]byte{0xCD, 0x21}, 0)
	assert.NoError(t, err)
	vector, ok := intIns.IsInterrupt()
	assert.True(t, ok)
	assert.Equal(t, byte(0x21), vector)

	// indirect jump has no resolved branch target
	indirect, err := Decode([]byte{0xFF, 0xE0}, 0)
	assert.NoError(t, err)
	_, ok = indirect.BranchTarget()
	assert.False(t, ok)
}

func TestRegisterRelations(t *testing.T) {
	assert.Equal(t, AX, AH.Parent())
	assert.Equal(t, AX, AL.Parent())
	assert.Equal(t, BX, BX.Parent())

	assert.True(t, AX.Overlaps(AH))
	assert.True(t, AL.Overlaps(AH))
	assert.False(t, AX.Overlaps(BX))
	assert.False(t, RegNone.Overlaps(AX))

	assert.True(t, AH.Is8Bit())
	assert.False(t, AH.Is16Bit())
	assert.True(t, DI.Is16Bit())
	assert.Equal(t, "ah", AH.String())
	assert.Equal(t, "di", DI.String())
}
