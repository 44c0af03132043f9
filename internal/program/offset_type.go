package program

import "strings"

// OffsetType defines the type of a program offset.
type OffsetType uint8

// offset content types.
const (
	UnknownOffset OffsetType = 0
	CodeOffset    OffsetType = 1 << iota
	DataOffset                // undecodable byte emitted as a db statement
	StringOffset              // part of a recognized string constant
)

// IsType returns whether the offset is of given type.
func (o *Offset) IsType(typ OffsetType) bool {
	ret := o.Type&typ != 0
	return ret
}

// SetType sets the type of the offset.
func (o *Offset) SetType(typ OffsetType) {
	o.Type |= typ
}

// ClearType unsets the type of the offset.
func (o *Offset) ClearType(typ OffsetType) {
	mask := ^(typ)
	o.Type &= mask
}

const hexDigits = "0123456789ABCDEF"

// HexCodeComment returns the offset data bytes as a hex byte string
// for usage as an instruction comment.
func (o *Offset) HexCodeComment() string {
	var sb strings.Builder
	for i, b := range o.Data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0x0f])
	}
	return sb.String()
}
