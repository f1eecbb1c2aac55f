package host

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// DeclType is the data type of a host vertex element.
type DeclType uint8

// Host vertex element types.
const (
	DeclFloat1 DeclType = iota
	DeclFloat2
	DeclFloat3
	DeclFloat4
	DeclD3DColor // 4 x uint8 normalized, stored B,G,R,A
	DeclUByte4
	DeclShort2
	DeclShort4
	DeclUByte4N
	DeclShort2N
	DeclShort4N
	DeclUShort2N
	DeclUShort4N
	DeclFloat16x2
	DeclFloat16x4
	DeclUnused
)

var declTypeNames = [...]string{
	DeclFloat1:    "FLOAT1",
	DeclFloat2:    "FLOAT2",
	DeclFloat3:    "FLOAT3",
	DeclFloat4:    "FLOAT4",
	DeclD3DColor:  "D3DCOLOR",
	DeclUByte4:    "UBYTE4",
	DeclShort2:    "SHORT2",
	DeclShort4:    "SHORT4",
	DeclUByte4N:   "UBYTE4N",
	DeclShort2N:   "SHORT2N",
	DeclShort4N:   "SHORT4N",
	DeclUShort2N:  "USHORT2N",
	DeclUShort4N:  "USHORT4N",
	DeclFloat16x2: "FLOAT16_2",
	DeclFloat16x4: "FLOAT16_4",
	DeclUnused:    "UNUSED",
}

func (t DeclType) String() string {
	if int(t) < len(declTypeNames) {
		return declTypeNames[t]
	}
	return fmt.Sprintf("DeclType(%d)", uint8(t))
}

// Format returns the WebGPU vertex format with the same memory layout.
// DeclD3DColor maps to Unorm8x4; shaders must swizzle it from BGRA.
// DeclUnused has no format.
func (t DeclType) Format() gputypes.VertexFormat {
	switch t {
	case DeclFloat1:
		return gputypes.VertexFormatFloat32
	case DeclFloat2:
		return gputypes.VertexFormatFloat32x2
	case DeclFloat3:
		return gputypes.VertexFormatFloat32x3
	case DeclFloat4:
		return gputypes.VertexFormatFloat32x4
	case DeclD3DColor, DeclUByte4N:
		return gputypes.VertexFormatUnorm8x4
	case DeclUByte4:
		return gputypes.VertexFormatUint8x4
	case DeclShort2:
		return gputypes.VertexFormatSint16x2
	case DeclShort4:
		return gputypes.VertexFormatSint16x4
	case DeclShort2N:
		return gputypes.VertexFormatSnorm16x2
	case DeclShort4N:
		return gputypes.VertexFormatSnorm16x4
	case DeclUShort2N:
		return gputypes.VertexFormatUnorm16x2
	case DeclUShort4N:
		return gputypes.VertexFormatUnorm16x4
	case DeclFloat16x2:
		return gputypes.VertexFormatFloat16x2
	case DeclFloat16x4:
		return gputypes.VertexFormatFloat16x4
	default:
		return gputypes.VertexFormatUndefined
	}
}

// Size returns the element size in bytes.
func (t DeclType) Size() int {
	return int(t.Format().Size())
}

// Components returns the number of shader-visible components.
func (t DeclType) Components() int {
	switch t {
	case DeclFloat1:
		return 1
	case DeclFloat2, DeclShort2, DeclShort2N, DeclUShort2N, DeclFloat16x2:
		return 2
	case DeclFloat3:
		return 3
	case DeclUnused:
		return 0
	default:
		return 4
	}
}

// DeclMethod is the tessellator processing method of an element.
type DeclMethod uint8

// Tessellator methods.
const (
	MethodDefault DeclMethod = iota
	MethodPartialU
	MethodPartialV
	MethodCrossUV
	MethodUV
	MethodLookup
	MethodLookupPresampled
)

// DeclUsage is the semantic of a vertex element.
type DeclUsage uint8

// Element usages.
const (
	UsagePosition DeclUsage = iota
	UsageBlendWeight
	UsageBlendIndices
	UsageNormal
	UsagePSize
	UsageTexCoord
	UsageTangent
	UsageBinormal
	UsageTessFactor
	UsagePositionT
	UsageColor
	UsageFog
	UsageDepth
	UsageSample
)

var usageNames = [...]string{
	UsagePosition:     "POSITION",
	UsageBlendWeight:  "BLENDWEIGHT",
	UsageBlendIndices: "BLENDINDICES",
	UsageNormal:       "NORMAL",
	UsagePSize:        "PSIZE",
	UsageTexCoord:     "TEXCOORD",
	UsageTangent:      "TANGENT",
	UsageBinormal:     "BINORMAL",
	UsageTessFactor:   "TESSFACTOR",
	UsagePositionT:    "POSITIONT",
	UsageColor:        "COLOR",
	UsageFog:          "FOG",
	UsageDepth:        "DEPTH",
	UsageSample:       "SAMPLE",
}

func (u DeclUsage) String() string {
	if int(u) < len(usageNames) {
		return usageNames[u]
	}
	return fmt.Sprintf("DeclUsage(%d)", uint8(u))
}

// VertexElement is one entry of a host vertex declaration.
type VertexElement struct {
	Stream     uint16
	Offset     uint16
	Type       DeclType
	Method     DeclMethod
	Usage      DeclUsage
	UsageIndex uint8
}

func (e VertexElement) String() string {
	return fmt.Sprintf("stream %d +%d %s %s%d", e.Stream, e.Offset, e.Type, e.Usage, e.UsageIndex)
}

// PrimitiveType is a host primitive topology.
type PrimitiveType uint8

// Host primitive types.
const (
	PrimitiveUnknown PrimitiveType = iota
	PrimitivePointList
	PrimitiveLineList
	PrimitiveLineStrip
	PrimitiveTriangleList
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
)

// Topology returns the WebGPU topology for p. Triangle fans have none and
// must be expanded by the submitter.
func (p PrimitiveType) Topology() (gputypes.PrimitiveTopology, bool) {
	switch p {
	case PrimitivePointList:
		return gputypes.PrimitiveTopologyPointList, true
	case PrimitiveLineList:
		return gputypes.PrimitiveTopologyLineList, true
	case PrimitiveLineStrip:
		return gputypes.PrimitiveTopologyLineStrip, true
	case PrimitiveTriangleList:
		return gputypes.PrimitiveTopologyTriangleList, true
	case PrimitiveTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	default:
		return 0, false
	}
}

var colorLocations = [...]int{3, 4, 7, 8}

// Location returns the legacy input register an element feeds, which is
// also its shader input location. Programmable declarations index
// TEXCOORD usages by register; fixed-function usages map through the
// fixed register assignment. Tessellator-generated elements and unknown
// usages return -1.
func (e VertexElement) Location(fixedFunction bool) int {
	if e.Method != MethodDefault {
		return -1
	}
	switch e.Usage {
	case UsagePosition, UsagePositionT:
		return 0
	case UsageBlendWeight:
		return 1
	case UsageNormal:
		return 2
	case UsageColor:
		if int(e.UsageIndex) < len(colorLocations) {
			return colorLocations[e.UsageIndex]
		}
	case UsageFog:
		return 5
	case UsagePSize:
		return 6
	case UsageTexCoord:
		if fixedFunction && e.UsageIndex < 4 {
			return 9 + int(e.UsageIndex)
		}
		if !fixedFunction && e.UsageIndex < 16 {
			return int(e.UsageIndex)
		}
	}
	return -1
}
