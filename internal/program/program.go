// Package program represents a disassembled DOS program.
package program

import (
	"hash/crc32"
)

// Offset defines the content of an offset in a program that can represent data or code.
type Offset struct {
	Address uint16
	Data    []byte // data byte or all opcode bytes that are part of the instruction

	Type OffsetType

	Label string // name of label or function if identified as a branch destination
	Code  string // asm output of this instruction

	Comment           string   // inline comment after the instruction
	PreComments       []string // comment lines printed before the instruction
	HasAddressComment bool
}

// Program defines a disassembled program that contains code or data.
type Program struct {
	Name        string
	LoadAddress uint16
	Checksum    uint32 // CRC32 checksum of the input image

	Offsets []Offset
}

// New creates a new program for the given input image.
func New(name string, image []byte) *Program {
	return &Program{
		Name:     name,
		Checksum: crc32.ChecksumIEEE(image),
	}
}
