package vsh

import "fmt"

// MAC is a multiply-accumulate unit opcode.
type MAC uint8

// MAC opcodes.
const (
	MACNop MAC = iota
	MACMov
	MACMul
	MACAdd
	MACMad
	MACDp3
	MACDph
	MACDp4
	MACDst
	MACMin
	MACMax
	MACSlt
	MACSge
	MACArl
)

var macNames = [...]string{"nop", "mov", "mul", "add", "mad", "dp3", "dph", "dp4", "dst", "min", "max", "slt", "sge", "arl"}

func (m MAC) String() string {
	if int(m) < len(macNames) {
		return macNames[m]
	}
	return fmt.Sprintf("mac%d", uint8(m))
}

// ILU is an inverse/lighting unit opcode.
type ILU uint8

// ILU opcodes.
const (
	ILUNop ILU = iota
	ILUMov
	ILURcp
	ILURcc
	ILURsq
	ILUExp
	ILULog
	ILULit
)

var iluNames = [...]string{"nop", "mov", "rcp", "rcc", "rsq", "expp", "logp", "lit"}

func (i ILU) String() string {
	if int(i) < len(iluNames) {
		return iluNames[i]
	}
	return fmt.Sprintf("ilu%d", uint8(i))
}

// ParamType is the register file an operand reads from.
type ParamType uint8

// Operand register files. ParamUnknown is an invalid mux encoding.
const (
	ParamUnknown ParamType = iota
	ParamR
	ParamV
	ParamC
)

// OutputType is the register file an instruction writes to.
type OutputType uint8

// Output register files.
const (
	OutputC OutputType = iota
	OutputR
	OutputO
	OutputA0X
)

// Swizzle selects one source component.
type Swizzle uint8

// Component selectors.
const (
	SwizzleX Swizzle = iota
	SwizzleY
	SwizzleZ
	SwizzleW
)

// Write mask bits. X is the most significant of the four.
const (
	MaskW uint8 = 1 << iota
	MaskZ
	MaskY
	MaskX

	MaskXYZW = MaskX | MaskY | MaskZ | MaskW
)

// Output register addresses in the O file.
const (
	OutPos  = 0
	OutD0   = 3
	OutD1   = 4
	OutFog  = 5
	OutPts  = 6
	OutB0   = 7
	OutB1   = 8
	OutTex0 = 9
	OutTex1 = 10
	OutTex2 = 11
	OutTex3 = 12
)

// Register file sizes.
const (
	NumTemps     = 13 // r12 aliases oPos for reads
	NumInputs    = 16
	NumConstants = 192
	ConstantBias = 96
)
