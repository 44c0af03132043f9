// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/dosgodisasm/internal/options"
)

// ParseFlags parses command line flags and returns program and disassembler options
func ParseFlags() (options.Program, options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	disasmOptions := options.NewDisassembler()
	var inverse inverseFlags
	readDisasmOptionFlags(flags, &disasmOptions, &inverse)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "" && opts.Batch == "") {
		return opts, options.Disassembler{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Disassembler{}, err
	}

	if err := validateOptions(disasmOptions); err != nil {
		return opts, options.Disassembler{}, err
	}

	if opts.Input == "" && opts.Batch == "" {
		opts.Input = args[0]
	}

	inverse.apply(&disasmOptions)

	return opts, disasmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: dosgodisasm [options] <file to disassemble>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to disassemble, please pass the file to disassemble as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions validates option values
func validateOptions(opts options.Disassembler) error {
	if opts.IndentWidth < 0 {
		return fmt.Errorf("invalid indent width %d", opts.IndentWidth)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input .com file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .asm file naming, for example *.com")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the decoded instruction boundaries using a reference decoder")
}

// inverseFlags collects the no* flags, they disable options that
// default to enabled.
type inverseFlags struct {
	noLabels      bool
	noHexComments bool
	noOffsets     bool
	noSyscalls    bool
	noStrings     bool
}

func (i inverseFlags) apply(opts *options.Disassembler) {
	opts.Labels = !i.noLabels
	opts.HexComments = !i.noHexComments
	opts.OffsetComments = !i.noOffsets
	opts.SyscallComments = !i.noSyscalls
	opts.StringComments = !i.noStrings
}

func readDisasmOptionFlags(flags *flag.FlagSet, opts *options.Disassembler, inverse *inverseFlags) {
	flags.BoolVar(&inverse.noLabels, "nolabels", false, "do not output labels for branch and call targets")
	flags.BoolVar(&inverse.noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&inverse.noOffsets, "nooffsets", false, "do not output offsets in comments")
	flags.BoolVar(&inverse.noSyscalls, "nosyscalls", false, "do not annotate DOS service interrupts")
	flags.BoolVar(&inverse.noStrings, "nostrings", false, "do not mark recognized string constants")
	flags.IntVar(&opts.IndentWidth, "indent", 2, "indentation width of instructions after the label column")
}
