// Package dos maps software interrupt instructions to human readable
// DOS service descriptions. The invoked service of the int 21h dispatcher
// is selected by the ah register, its value is taken from the register
// tracker belief at the interrupt site.
package dos

import "fmt"

// Interrupt vectors that belong to DOS services.
const (
	VectorTerminate    = 0x20 // int 20h, program terminate
	VectorFunction     = 0x21 // int 21h, function dispatcher
	VectorTerminateTSR = 0x27 // int 27h, terminate and stay resident
)

// functions maps the ah function selector of int 21h to a service description.
// Covers the DOS 1.x to 5.x function range 0x00 to 0x6C.
var functions = map[uint16]string{
	0x00: "program terminate",
	0x01: "character input",
	0x02: "character output",
	0x03: "auxiliary input",
	0x04: "auxiliary output",
	0x05: "printer output",
	0x06: "direct console I/O",
	0x07: "direct console input without echo",
	0x08: "console input without echo",
	0x09: "display string",
	0x0A: "buffered keyboard input",
	0x0B: "get input status",
	0x0C: "flush input buffer and input",
	0x0D: "disk reset",
	0x0E: "set default drive",
	0x0F: "open file",
	0x10: "close file",
	0x11: "find first file",
	0x12: "find next file",
	0x13: "delete file",
	0x14: "sequential read",
	0x15: "sequential write",
	0x16: "create or truncate file",
	0x17: "rename file",
	0x18: "reserved",
	0x19: "get default drive",
	0x1A: "set disk transfer address",
	0x1B: "get allocation info for default drive",
	0x1C: "get allocation info for specified drive",
	0x1D: "reserved",
	0x1E: "reserved",
	0x1F: "get disk parameter block for default drive",
	0x20: "reserved",
	0x21: "random read",
	0x22: "random write",
	0x23: "get file size in records",
	0x24: "set random record number",
	0x25: "set interrupt vector",
	0x26: "create PSP",
	0x27: "random block read",
	0x28: "random block write",
	0x29: "parse filename",
	0x2A: "get date",
	0x2B: "set date",
	0x2C: "get time",
	0x2D: "set time",
	0x2E: "set verify flag",
	0x2F: "get disk transfer address",
	0x30: "get DOS version",
	0x31: "terminate and stay resident",
	0x32: "get disk parameter block for specified drive",
	0x33: "get or set Ctrl-Break",
	0x34: "get InDOS flag pointer",
	0x35: "get interrupt vector",
	0x36: "get free disk space",
	0x37: "get or set switch character",
	0x38: "get or set country info",
	0x39: "create subdirectory",
	0x3A: "remove subdirectory",
	0x3B: "change current directory",
	0x3C: "create or truncate file",
	0x3D: "open file",
	0x3E: "close file",
	0x3F: "read file or device",
	0x40: "write file or device",
	0x41: "delete file",
	0x42: "move file pointer",
	0x43: "get or set file attributes",
	0x44: "I/O control for devices",
	0x45: "duplicate handle",
	0x46: "redirect handle",
	0x47: "get current directory",
	0x48: "allocate memory",
	0x49: "release memory",
	0x4A: "reallocate memory",
	0x4B: "execute program",
	0x4C: "terminate with return code",
	0x4D: "get program return code",
	0x4E: "find first file",
	0x4F: "find next file",
	0x50: "set current PSP",
	0x51: "get current PSP",
	0x52: "get DOS internal pointers",
	0x53: "create disk parameter block",
	0x54: "get verify flag",
	0x55: "create program PSP",
	0x56: "rename file",
	0x57: "get or set file date and time",
	0x58: "get or set allocation strategy",
	0x59: "get extended error info",
	0x5A: "create unique file",
	0x5B: "create new file",
	0x5C: "lock or unlock file",
	0x5D: "file sharing functions",
	0x5E: "network functions",
	0x5F: "network redirection functions",
	0x60: "qualify filename",
	0x61: "reserved",
	0x62: "get current PSP (alt)",
	0x63: "get DBCS lead byte table pointer",
	0x64: "set wait for external event flag",
	0x65: "get extended country info",
	0x66: "get or set code page",
	0x67: "set handle count",
	0x68: "commit file",
	0x69: "get or set media id",
	0x6A: "commit file (alt)",
	0x6B: "reserved",
	0x6C: "extended open/create file",
}

// Function returns the service description for an int 21h ah value.
func Function(ah uint16) (string, bool) {
	name, ok := functions[ah]
	return name, ok
}

// Annotate returns a human readable description for a software interrupt.
// ah is the believed value of the function selector register, ahKnown
// whether the tracker could determine it. Vectors that are no DOS
// services return ok=false and are left unannotated, mapped vectors
// always produce a message.
func Annotate(vector byte, ah uint16, ahKnown bool) (string, bool) {
	switch vector {
	case VectorTerminate:
		return "program terminate", true

	case VectorTerminateTSR:
		return "terminate and stay resident", true

	case VectorFunction:
		if !ahKnown {
			return "DOS service (function undetermined)", true
		}
		name, ok := functions[ah]
		if !ok {
			return fmt.Sprintf("unrecognized DOS service 0x%02x", ah), true
		}
		return fmt.Sprintf("%s 0x%02x", name, ah), true

	default:
		return "", false
	}
}
