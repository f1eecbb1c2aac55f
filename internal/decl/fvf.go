package decl

// FVF bits.
const (
	FVFReserved0     = 0x001
	FVFPositionMask  = 0x00E
	FVFXYZ           = 0x002
	FVFXYZRHW        = 0x004
	FVFXYZB1         = 0x006
	FVFXYZB2         = 0x008
	FVFXYZB3         = 0x00A
	FVFXYZB4         = 0x00C
	FVFNormal        = 0x010
	FVFReserved1     = 0x020
	FVFDiffuse       = 0x040
	FVFSpecular      = 0x080
	FVFTexCountMask  = 0xF00
	FVFTexCountShift = 8

	fvfInvalid = FVFReserved0 | FVFReserved1 | 0x0000F000 | 0xFF000000
)

// Per-set texture coordinate counts, two bits per set from bit 16.
const (
	FVFTextureFormat2 = 0
	FVFTextureFormat3 = 1
	FVFTextureFormat4 = 2
	FVFTextureFormat1 = 3
)

// FVFTexCoordSize returns the bits selecting format for texture set i.
func FVFTexCoordSize(format uint32, i int) uint32 {
	return format << (16 + 2*uint(i))
}

var floatTypes = [...]DataType{0, TypeFloat1, TypeFloat2, TypeFloat3, TypeFloat4}

// IsFVF reports whether a vertex shader handle is an FVF bitmask rather
// than a shader object address. Object addresses always have bit 0 set.
func IsFVF(handle uint32) bool { return handle&1 == 0 }

// FromFVF converts an FVF bitmask into a fixed-function attribute format
// reading every element from stream zero. Invalid bits are logged and
// ignored.
func FromFVF(fvf uint32) AttributeFormat {
	var f AttributeFormat
	f.FixedFunction = true

	if fvf&fvfInvalid != 0 {
		slogger().Warn("decl: invalid FVF bits", "fvf", fvf, "bits", fvf&fvfInvalid)
	}

	positionFloats, blendWeights := 3, 0
	position := fvf & FVFPositionMask
	switch position {
	case 0:
		positionFloats = 0
		slogger().Warn("decl: FVF without position", "fvf", fvf)
	case FVFXYZ:
	case FVFXYZRHW:
		positionFloats = 4
	case FVFXYZB1, FVFXYZB2, FVFXYZB3, FVFXYZB4:
		blendWeights = int(position-FVFXYZRHW) / 2
	default:
		slogger().Warn("decl: FVF with five blend weights", "fvf", fvf)
	}

	offset := 0
	put := func(reg int, t DataType, size int) {
		f.Slots[reg] = Slot{Format: t, Offset: uint16(offset)}
		offset += size
	}

	if positionFloats > 0 {
		put(RegPosition, floatTypes[positionFloats], 4*positionFloats)
		if blendWeights > 0 {
			put(RegBlendWeight, floatTypes[blendWeights], 4*blendWeights)
		}
	}
	if fvf&FVFNormal != 0 {
		if position == FVFXYZRHW {
			slogger().Warn("decl: FVF normal with pre-transformed position", "fvf", fvf)
		}
		put(RegNormal, TypeFloat3, 12)
	}
	if fvf&FVFDiffuse != 0 {
		put(RegDiffuse, TypeD3DColor, 4)
	}
	if fvf&FVFSpecular != 0 {
		put(RegSpecular, TypeD3DColor, 4)
	}

	sets := int(fvf&FVFTexCountMask) >> FVFTexCountShift
	if sets > 4 {
		slogger().Warn("decl: FVF texture count out of range", "count", sets)
		sets = 4
	}
	for i := 0; i < sets; i++ {
		var n int
		switch (fvf >> (16 + 2*uint(i))) & 3 {
		case FVFTextureFormat1:
			n = 1
		case FVFTextureFormat2:
			n = 2
		case FVFTextureFormat3:
			n = 3
		case FVFTextureFormat4:
			n = 4
		}
		put(RegTexCoord0+i, floatTypes[n], 4*n)
	}

	for i := range f.Slots {
		if f.Slots[i].Format == TypeUnset {
			f.Slots[i].Format = TypeNone
		}
	}
	return f
}

// Stride returns the legacy vertex size of an FVF.
func Stride(fvf uint32) int {
	f := FromFVF(fvf)
	n := 0
	for _, s := range f.Slots {
		if c, ok := Convert(s.Format, Caps{}); ok {
			n = max(n, int(s.Offset)+c.LegacySize)
		}
	}
	return n
}

// TexCoordCount returns the number of components of texture set i in a
// fixed-function format, zero when the set is absent or not float.
func (f *AttributeFormat) TexCoordCount(i int) int {
	if i < 0 || i > 3 {
		return 0
	}
	t := f.Slots[RegTexCoord0+i].Format
	for n, ft := range floatTypes {
		if n > 0 && ft == t {
			return n
		}
	}
	return 0
}
