package renderstate

import (
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/nv2a/host"
)

// Legacy enumeration values.
const (
	legacyFillPoint     = 0x1B00
	legacyFillWireframe = 0x1B01
	legacyFillSolid     = 0x1B02

	legacyShadeFlat    = 0x1D00
	legacyShadeGouraud = 0x1D01

	legacyCullNone = 0
	legacyCullCW   = 0x900
	legacyCullCCW  = 0x901

	legacyCmpNever  = 0x200
	legacyCmpAlways = 0x207
)

var compareFunctions = [...]gputypes.CompareFunction{
	gputypes.CompareFunctionNever,
	gputypes.CompareFunctionLess,
	gputypes.CompareFunctionEqual,
	gputypes.CompareFunctionLessEqual,
	gputypes.CompareFunctionGreater,
	gputypes.CompareFunctionNotEqual,
	gputypes.CompareFunctionGreaterEqual,
	gputypes.CompareFunctionAlways,
}

func convertCompare(v uint32) (uint32, bool) {
	if v < legacyCmpNever || v > legacyCmpAlways {
		return 0, false
	}
	return uint32(compareFunctions[v-legacyCmpNever]), true
}

var blendFactors = map[uint32]gputypes.BlendFactor{
	0:      gputypes.BlendFactorZero,
	1:      gputypes.BlendFactorOne,
	0x300:  gputypes.BlendFactorSrc,
	0x301:  gputypes.BlendFactorOneMinusSrc,
	0x302:  gputypes.BlendFactorSrcAlpha,
	0x303:  gputypes.BlendFactorOneMinusSrcAlpha,
	0x304:  gputypes.BlendFactorDstAlpha,
	0x305:  gputypes.BlendFactorOneMinusDstAlpha,
	0x306:  gputypes.BlendFactorDst,
	0x307:  gputypes.BlendFactorOneMinusDst,
	0x308:  gputypes.BlendFactorSrcAlphaSaturated,
	0x8001: gputypes.BlendFactorConstant,
	0x8002: gputypes.BlendFactorOneMinusConstant,
	// The host blend constant has a single color, so the alpha variants
	// read the same value.
	0x8003: gputypes.BlendFactorConstant,
	0x8004: gputypes.BlendFactorOneMinusConstant,
}

func convertBlendFactor(v uint32) (uint32, bool) {
	f, ok := blendFactors[v]
	return uint32(f), ok
}

var blendOps = map[uint32]gputypes.BlendOperation{
	0x8006: gputypes.BlendOperationAdd,
	0x8007: gputypes.BlendOperationMin,
	0x8008: gputypes.BlendOperationMax,
	0x800A: gputypes.BlendOperationSubtract,
	0x800B: gputypes.BlendOperationReverseSubtract,
	// Signed variants have no host equivalent.
	0xF006: gputypes.BlendOperationAdd,
	0xF005: gputypes.BlendOperationReverseSubtract,
}

func convertBlendOp(v uint32) (uint32, bool) {
	op, ok := blendOps[v]
	if ok && v >= 0xF000 {
		slogger().Warn("renderstate: signed blend op approximated", "value", v)
	}
	return uint32(op), ok
}

var stencilOps = map[uint32]gputypes.StencilOperation{
	0x1E00: gputypes.StencilOperationKeep,
	0:      gputypes.StencilOperationZero,
	0x1E01: gputypes.StencilOperationReplace,
	0x1E02: gputypes.StencilOperationIncrementClamp,
	0x1E03: gputypes.StencilOperationDecrementClamp,
	0x150A: gputypes.StencilOperationInvert,
	0x8507: gputypes.StencilOperationIncrementWrap,
	0x8508: gputypes.StencilOperationDecrementWrap,
}

func convertStencilOp(v uint32) (uint32, bool) {
	op, ok := stencilOps[v]
	return uint32(op), ok
}

func convertShadeMode(v uint32) (uint32, bool) {
	switch v {
	case legacyShadeFlat:
		return host.ShadeFlat, true
	case legacyShadeGouraud:
		return host.ShadeGouraud, true
	}
	return 0, false
}

func convertFillMode(v uint32) (uint32, bool) {
	switch v {
	case legacyFillPoint:
		return host.FillPoint, true
	case legacyFillWireframe:
		return host.FillWireframe, true
	case legacyFillSolid:
		return host.FillSolid, true
	}
	return 0, false
}

// convertCullMode maps the legacy winding to cull to a host face, assuming
// clockwise front faces.
func convertCullMode(v uint32) (uint32, bool) {
	switch v {
	case legacyCullNone:
		return uint32(gputypes.CullModeNone), true
	case legacyCullCW:
		return uint32(gputypes.CullModeFront), true
	case legacyCullCCW:
		return uint32(gputypes.CullModeBack), true
	}
	return 0, false
}

func convertVertexBlend(v uint32) (uint32, bool) {
	switch v {
	case 0, 1:
		return v, true
	case 3:
		return host.VertexBlend2Weights, true
	case 5:
		return host.VertexBlend3Weights, true
	}
	return 0, false
}

// convertColorWriteMask reorders the per-channel byte flags of the legacy
// mask (A in bit 24, R in 16, G in 8, B in 0).
func convertColorWriteMask(v uint32) uint32 {
	var m gputypes.ColorWriteMask
	if v&(1<<16) != 0 {
		m |= gputypes.ColorWriteMaskRed
	}
	if v&(1<<8) != 0 {
		m |= gputypes.ColorWriteMaskGreen
	}
	if v&1 != 0 {
		m |= gputypes.ColorWriteMaskBlue
	}
	if v&(1<<24) != 0 {
		m |= gputypes.ColorWriteMaskAlpha
	}
	return uint32(m)
}

func convertWrap(v uint32) uint32 {
	var w uint32
	if v&0x10 != 0 {
		w |= host.WrapCoord0
	}
	if v&0x1000 != 0 {
		w |= host.WrapCoord1
	}
	if v&0x100000 != 0 {
		w |= host.WrapCoord2
	}
	if v&0x1000000 != 0 {
		w |= host.WrapCoord3
	}
	return w
}

// depthBias scales the integer legacy bias into the host's float units.
func depthBias(v uint32) uint32 {
	return math.Float32bits(float32(v) * -0.000005)
}

// absFloat clears the sign of a float state.
func absFloat(v uint32) (uint32, bool) {
	f := math.Float32frombits(v)
	if f >= 0 || math.IsNaN(float64(f)) {
		return v, false
	}
	return math.Float32bits(-f), true
}
