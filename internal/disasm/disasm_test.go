package disasm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/retroenv/dosgodisasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// helloWorld is the classic hello world .COM program:
//
//	0100  mov ah, 0x9
//	0102  mov dx, 0x108
//	0105  int 0x21
//	0107  ret
//	0108  "Hello$"
var helloWorld = []byte{
	0xB4, 0x09,
	0xBA, 0x08, 0x01,
	0xCD, 0x21,
	0xC3,
	'H', 'e', 'l', 'l', 'o', '$',
}

func TestDisassembleHelloWorld(t *testing.T) {
	lines, err := Disassemble(helloWorld, options.NewDisassembler())
	assert.NoError(t, err)

	output := strings.Join(lines, "\n")
	assert.Contains(t, output, "start:")
	assert.Contains(t, output, "mov ah, 0x9")
	assert.Contains(t, output, "mov dx, 0x108")
	assert.Contains(t, output, "display string 0x09")
	assert.Contains(t, output, "start of string data")
	assert.Contains(t, output, `db "Hello$"`)
}

func TestDisassembleJumpWithZeroDisplacement(t *testing.T) {
	// the jump resolves to the offset after the image end,
	// no label can be placed there
	lines, err := Disassemble([]byte{0xE9, 0x00, 0x00}, options.NewDisassembler())
	assert.NoError(t, err)

	output := strings.Join(lines, "\n")
	assert.Contains(t, output, "jmp 0x0103")
	assert.False(t, strings.Contains(output, "label_"))
}

func TestDisassembleUndecodableByte(t *testing.T) {
	// 0x0f matches no opcode table entry, decoding resumes at the nop
	lines, err := Disassemble([]byte{0x0F, 0x90}, options.NewDisassembler())
	assert.NoError(t, err)

	output := strings.Join(lines, "\n")
	assert.Contains(t, output, "db 0xf")
	assert.Contains(t, output, "nop")
}

func TestDisassembleBranchToEntry(t *testing.T) {
	lines, err := Disassemble([]byte{
		0x90,       // nop
		0xEB, 0xFD, // jmp 0x100
	}, options.NewDisassembler())
	assert.NoError(t, err)

	output := strings.Join(lines, "\n")
	assert.Contains(t, output, "jmp start")

	startLabels := 0
	for _, line := range lines {
		if line == "start:" {
			startLabels++
		}
	}
	assert.Equal(t, 1, startLabels)
}

func TestDisassembleLabelSubstitution(t *testing.T) {
	lines, err := Disassemble([]byte{
		0xE8, 0x01, 0x00, // call 0x104
		0xC3, // ret
		0xC3, // ret at 0x104
	}, options.NewDisassembler())
	assert.NoError(t, err)

	output := strings.Join(lines, "\n")
	assert.Contains(t, output, "call func_0104")
	assert.Contains(t, output, "func_0104:")
}

func TestDisassembleMisalignedTarget(t *testing.T) {
	// the jump lands inside the mov instruction, the raw offset is kept
	lines, err := Disassemble([]byte{
		0xEB, 0x01, // jmp 0x103
		0xB8, 0x34, 0x12, // mov ax, 0x1234
	}, options.NewDisassembler())
	assert.NoError(t, err)

	output := strings.Join(lines, "\n")
	assert.Contains(t, output, "jmp 0x0103")
}

func TestDisassembleDeterministic(t *testing.T) {
	first, err := Disassemble(helloWorld, options.NewDisassembler())
	assert.NoError(t, err)
	second, err := Disassemble(helloWorld, options.NewDisassembler())
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDisassembleEmptyImage(t *testing.T) {
	lines, err := Disassemble(nil, options.NewDisassembler())
	assert.NoError(t, err)

	// an empty image produces no output lines, not even the comment header
	assert.Len(t, lines, 0)
}

func TestDisassembleAdjustClobbersFunctionSelector(t *testing.T) {
	// aaa overwrites ah, the service selected before it must not be reported
	lines, err := Disassemble([]byte{
		0xB4, 0x09, // mov ah, 0x9
		0x37,       // aaa
		0xCD, 0x21, // int 0x21
		0xC3, // ret
	}, options.NewDisassembler())
	assert.NoError(t, err)

	output := strings.Join(lines, "\n")
	assert.Contains(t, output, "DOS service (function undetermined)")
	assert.False(t, strings.Contains(output, "display string"))
}

func TestProcessCoversEveryByte(t *testing.T) {
	// mixes decodable instructions, an unknown opcode and truncated
	// instructions at the image end
	image := []byte{0xB4, 0x09, 0x0F, 0xBA, 0x0B}

	dis := New(log.NewTestLogger(t), "test.com", image, options.NewDisassembler())
	app, err := dis.Process(context.Background(), &bytes.Buffer{})
	assert.NoError(t, err)

	total := 0
	address := uint16(0x100)
	for _, offset := range app.Offsets {
		assert.Equal(t, address, offset.Address)
		assert.NotEmpty(t, offset.Data)
		total += len(offset.Data)
		address += uint16(len(offset.Data))
	}
	assert.Equal(t, len(image), total)
}

func TestProcessOptionToggles(t *testing.T) {
	opts := options.NewDisassembler()
	opts.Labels = false
	opts.OffsetComments = false
	opts.HexComments = false
	opts.SyscallComments = false

	lines, err := Disassemble(helloWorld, opts)
	assert.NoError(t, err)

	output := strings.Join(lines, "\n")
	assert.False(t, strings.Contains(output, "start:"))
	assert.False(t, strings.Contains(output, "display string"))
	assert.False(t, strings.Contains(output, "; 0x0100"))
}

func TestProcessContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dis := New(log.NewTestLogger(t), "test.com", helloWorld, options.NewDisassembler())
	_, err := dis.Process(ctx, &bytes.Buffer{})
	assert.Error(t, err)
}
