// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input  string // input .com file
	Output string // output .asm file, stdout if empty
	Batch  string // batch process files matching pattern
}

// Flags contains behavior options.
type Flags struct {
	Verify bool // verify decoded instruction boundaries with a reference decoder
	Debug  bool // enable debug logging
	Quiet  bool // quiet mode
}

// Program options of the disassembler.
type Program struct {
	Parameters
	Flags
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	Labels      bool // output labels for branch and call targets
	IndentWidth int  // indentation of instructions after a label column, 0 disables

	OffsetComments  bool // output instruction offsets in comments
	HexComments     bool // output raw instruction bytes as hex values in comments
	SyscallComments bool // annotate DOS service interrupts
	StringComments  bool // mark recognized string constant data
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		Labels:      true,
		IndentWidth: 2,

		OffsetComments:  true,
		HexComments:     true,
		SyscallComments: true,
		StringComments:  true,
	}
}
