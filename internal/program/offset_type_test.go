package program

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOffset_IsType(t *testing.T) {
	offset := &Offset{}

	offset.SetType(CodeOffset)
	assert.True(t, offset.IsType(CodeOffset))
	assert.False(t, offset.IsType(DataOffset))

	offset.SetType(DataOffset)
	assert.True(t, offset.IsType(CodeOffset))
	assert.True(t, offset.IsType(DataOffset))
}

func TestOffset_ClearType(t *testing.T) {
	offset := &Offset{}
	offset.SetType(CodeOffset)
	offset.SetType(DataOffset)

	offset.ClearType(CodeOffset)
	assert.False(t, offset.IsType(CodeOffset))
	assert.True(t, offset.IsType(DataOffset))
}

func TestOffset_HexCodeComment(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "single byte",
			data:     []byte{0xB4},
			expected: "B4",
		},
		{
			name:     "two bytes",
			data:     []byte{0xB4, 0x09},
			expected: "B4 09",
		},
		{
			name:     "three bytes",
			data:     []byte{0xBA, 0x0B, 0x01},
			expected: "BA 0B 01",
		},
		{
			name:     "empty data",
			data:     []byte{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset := &Offset{
				Data: tt.data,
			}
			assert.Equal(t, tt.expected, offset.HexCodeComment())
		})
	}
}
