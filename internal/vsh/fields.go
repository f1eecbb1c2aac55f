package vsh

// TokenWords is the number of 32-bit words in one microcode instruction.
const TokenWords = 4

// Token is one legacy vertex program instruction.
type Token [TokenWords]uint32

// Field names a bit range inside a Token.
type Field uint8

// Microcode fields, in encoding order.
const (
	FieldILU Field = iota
	FieldMAC
	FieldConst
	FieldV

	FieldANeg
	FieldASwzX
	FieldASwzY
	FieldASwzZ
	FieldASwzW
	FieldAR
	FieldAMux

	FieldBNeg
	FieldBSwzX
	FieldBSwzY
	FieldBSwzZ
	FieldBSwzW
	FieldBR
	FieldBMux

	FieldCNeg
	FieldCSwzX
	FieldCSwzY
	FieldCSwzZ
	FieldCSwzW
	FieldCRHigh
	FieldCRLow
	FieldCMux

	FieldOutMACMask
	FieldOutR
	FieldOutILUMask
	FieldOutOMask
	FieldOutORB
	FieldOutAddress
	FieldOutMux

	FieldA0X
	FieldFinal

	fieldCount
)

type fieldLayout struct {
	word  uint8
	start uint8
	bits  uint8
}

var fieldTable = [fieldCount]fieldLayout{
	FieldILU:   {1, 25, 3},
	FieldMAC:   {1, 21, 4},
	FieldConst: {1, 13, 8},
	FieldV:     {1, 9, 4},

	FieldANeg:  {1, 8, 1},
	FieldASwzX: {1, 6, 2},
	FieldASwzY: {1, 4, 2},
	FieldASwzZ: {1, 2, 2},
	FieldASwzW: {1, 0, 2},
	FieldAR:    {2, 28, 4},
	FieldAMux:  {2, 26, 2},

	FieldBNeg:  {2, 25, 1},
	FieldBSwzX: {2, 23, 2},
	FieldBSwzY: {2, 21, 2},
	FieldBSwzZ: {2, 19, 2},
	FieldBSwzW: {2, 17, 2},
	FieldBR:    {2, 13, 4},
	FieldBMux:  {2, 11, 2},

	FieldCNeg:   {2, 10, 1},
	FieldCSwzX:  {2, 8, 2},
	FieldCSwzY:  {2, 6, 2},
	FieldCSwzZ:  {2, 4, 2},
	FieldCSwzW:  {2, 2, 2},
	FieldCRHigh: {2, 0, 2},
	FieldCRLow:  {3, 30, 2},
	FieldCMux:   {3, 28, 2},

	FieldOutMACMask: {3, 24, 4},
	FieldOutR:       {3, 20, 4},
	FieldOutILUMask: {3, 16, 4},
	FieldOutOMask:   {3, 12, 4},
	FieldOutORB:     {3, 11, 1},
	FieldOutAddress: {3, 3, 8},
	FieldOutMux:     {3, 2, 1},

	FieldA0X:   {3, 1, 1},
	FieldFinal: {3, 0, 1},
}

// Bits extracts length bits of t[word] starting at start.
func (t *Token) Bits(word, start, length uint8) uint32 {
	return (t[word] >> start) & ^(uint32(0xFFFFFFFF) << length)
}

// Get returns the value of field f.
func (t *Token) Get(f Field) uint8 {
	l := fieldTable[f]
	return uint8(t.Bits(l.word, l.start, l.bits))
}

// Set stores v in field f. Bits of v beyond the field width are dropped.
func (t *Token) Set(f Field, v uint32) {
	l := fieldTable[f]
	mask := ^(uint32(0xFFFFFFFF) << l.bits)
	t[l.word] = t[l.word]&^(mask<<l.start) | (v&mask)<<l.start
}

// ConvertCRegister maps a packed 8-bit constant address to the signed
// constant index used in disassembly, -96..159.
func ConvertCRegister(c uint8) int16 {
	return (((int16(c)>>5)&7)-3)*32 + int16(c&31)
}
