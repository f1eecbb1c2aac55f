package decl

import (
	"fmt"

	"github.com/gogpu/nv2a/host"
)

// DataType is a legacy vertex attribute data type code. The high nibble is
// the component count, the low nibble the encoding.
type DataType uint8

// Legacy data types.
const (
	TypeUnset       DataType = 0x00
	TypeNone        DataType = 0x02
	TypeNormShort1  DataType = 0x11
	TypeFloat1      DataType = 0x12
	TypePByte1      DataType = 0x14
	TypeShort1      DataType = 0x15
	TypeNormPacked3 DataType = 0x16
	TypeNormShort2  DataType = 0x21
	TypeFloat2      DataType = 0x22
	TypePByte2      DataType = 0x24
	TypeShort2      DataType = 0x25
	TypeNormShort3  DataType = 0x31
	TypeFloat3      DataType = 0x32
	TypePByte3      DataType = 0x34
	TypeShort3      DataType = 0x35
	TypeD3DColor    DataType = 0x40
	TypeNormShort4  DataType = 0x41
	TypeFloat4      DataType = 0x42
	TypePByte4      DataType = 0x44
	TypeShort4      DataType = 0x45
	TypeFloat2H     DataType = 0x72
)

var dataTypeNames = map[DataType]string{
	TypeUnset:       "UNSET",
	TypeNone:        "NONE",
	TypeNormShort1:  "NORMSHORT1",
	TypeFloat1:      "FLOAT1",
	TypePByte1:      "PBYTE1",
	TypeShort1:      "SHORT1",
	TypeNormPacked3: "NORMPACKED3",
	TypeNormShort2:  "NORMSHORT2",
	TypeFloat2:      "FLOAT2",
	TypePByte2:      "PBYTE2",
	TypeShort2:      "SHORT2",
	TypeNormShort3:  "NORMSHORT3",
	TypeFloat3:      "FLOAT3",
	TypePByte3:      "PBYTE3",
	TypeShort3:      "SHORT3",
	TypeD3DColor:    "D3DCOLOR",
	TypeNormShort4:  "NORMSHORT4",
	TypeFloat4:      "FLOAT4",
	TypePByte4:      "PBYTE4",
	TypeShort4:      "SHORT4",
	TypeFloat2H:     "FLOAT2H",
}

func (t DataType) String() string {
	if s, ok := dataTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("DataType(%#02x)", uint8(t))
}

// Caps lists the optional host element types the recompiler may target.
// Without one, the matching legacy types are expanded to floats.
type Caps struct {
	Short2N bool
	Short4N bool
	UByte4N bool
}

// DefaultCaps matches WebGPU, which has snorm16x2, snorm16x4 and unorm8x4.
var DefaultCaps = Caps{Short2N: true, Short4N: true, UByte4N: true}

// Conversion describes how one legacy element is presented to the host.
type Conversion struct {
	Host       host.DeclType
	HostSize   int
	LegacySize int
	// Patch is set when the element bytes must be rewritten per vertex.
	Patch bool
}

func same(t host.DeclType) Conversion {
	n := t.Size()
	return Conversion{Host: t, HostSize: n, LegacySize: n}
}

func patched(t host.DeclType, legacySize int) Conversion {
	return Conversion{Host: t, HostSize: t.Size(), LegacySize: legacySize, Patch: true}
}

// Convert returns the host conversion of t under caps. The second result
// is false for TypeNone and unknown codes.
func Convert(t DataType, caps Caps) (Conversion, bool) {
	switch t {
	case TypeFloat1:
		return same(host.DeclFloat1), true
	case TypeFloat2:
		return same(host.DeclFloat2), true
	case TypeFloat3:
		return same(host.DeclFloat3), true
	case TypeFloat4:
		return same(host.DeclFloat4), true
	case TypeD3DColor:
		return same(host.DeclD3DColor), true
	case TypeShort2:
		return same(host.DeclShort2), true
	case TypeShort4:
		return same(host.DeclShort4), true

	case TypeNormShort1:
		if caps.Short2N {
			return patched(host.DeclShort2N, 2), true
		}
		return patched(host.DeclFloat1, 2), true
	case TypeNormShort2:
		if caps.Short2N {
			return same(host.DeclShort2N), true
		}
		return patched(host.DeclFloat2, 4), true
	case TypeNormShort3:
		if caps.Short4N {
			return patched(host.DeclShort4N, 6), true
		}
		return patched(host.DeclFloat3, 6), true
	case TypeNormShort4:
		if caps.Short4N {
			return same(host.DeclShort4N), true
		}
		return patched(host.DeclFloat4, 8), true

	case TypeNormPacked3:
		return patched(host.DeclFloat3, 4), true
	case TypeShort1:
		return patched(host.DeclShort2, 2), true
	case TypeShort3:
		return patched(host.DeclShort4, 6), true

	case TypePByte1:
		if caps.UByte4N {
			return patched(host.DeclUByte4N, 1), true
		}
		return patched(host.DeclFloat1, 1), true
	case TypePByte2:
		if caps.UByte4N {
			return patched(host.DeclUByte4N, 2), true
		}
		return patched(host.DeclFloat2, 2), true
	case TypePByte3:
		if caps.UByte4N {
			return patched(host.DeclUByte4N, 3), true
		}
		return patched(host.DeclFloat3, 3), true
	case TypePByte4:
		if caps.UByte4N {
			return same(host.DeclUByte4N), true
		}
		return patched(host.DeclFloat4, 4), true

	case TypeFloat2H:
		return patched(host.DeclFloat4, 12), true
	}
	return Conversion{}, false
}

// Tessellation is the derived-attribute kind of a slot without stream data.
type Tessellation uint8

// Tessellation kinds.
const (
	TessNone Tessellation = iota
	TessAutoNormal
	TessAutoTexCoord
)

// NumRegisters is the number of legacy vertex input registers.
const NumRegisters = 16

// Legacy vertex input registers used by fixed-function formats.
const (
	RegPosition = iota
	RegBlendWeight
	RegNormal
	RegDiffuse
	RegSpecular
	RegFog
	RegPointSize
	RegBackDiffuse
	RegBackSpecular
	RegTexCoord0
	RegTexCoord1
	RegTexCoord2
	RegTexCoord3
)

// Slot is the format of one legacy input register.
type Slot struct {
	Format DataType
	Stream uint16
	// Offset is the byte offset of the element inside a legacy vertex.
	Offset uint16

	Tessellation Tessellation
	// TessSource is the register an auto-normal is derived from.
	TessSource uint8
}

// AttributeFormat is a legacy vertex attribute format.
type AttributeFormat struct {
	Slots [NumRegisters]Slot
	// FixedFunction is set for formats built from an FVF.
	FixedFunction bool
}
