package host

import "fmt"

// RenderState identifies a host render state.
//
// Value conventions for SetRenderState:
//   - booleans are 0 or 1
//   - float states carry the raw IEEE 754 bits
//   - colors are packed 0xAARRGGBB
//   - ZFunc, AlphaFunc, StencilFunc: gputypes.CompareFunction
//   - SrcBlend, DestBlend: gputypes.BlendFactor
//   - BlendOp: gputypes.BlendOperation
//   - StencilFail, StencilZFail, StencilPass: gputypes.StencilOperation
//   - CullMode: gputypes.CullMode, with clockwise front faces
//   - ColorWriteEnable: gputypes.ColorWriteMask
//   - FillMode, ShadeMode, VertexBlend: the enums in this file
//   - Wrap0..Wrap3: WrapCoord bits
type RenderState uint16

// Host render states.
const (
	RenderStateNone RenderState = iota
	ZEnable
	FillMode
	ShadeMode
	ZWriteEnable
	AlphaTestEnable
	SrcBlend
	DestBlend
	CullMode
	ZFunc
	AlphaRef
	AlphaFunc
	DitherEnable
	AlphaBlendEnable
	FogEnable
	SpecularEnable
	FogColor
	FogTableMode
	FogStart
	FogEnd
	FogDensity
	RangeFogEnable
	StencilEnable
	StencilFail
	StencilZFail
	StencilPass
	StencilFunc
	StencilRef
	StencilMask
	StencilWriteMask
	TextureFactor
	Wrap0
	Wrap1
	Wrap2
	Wrap3
	Lighting
	Ambient
	ColorVertex
	LocalViewer
	NormalizeNormals
	DiffuseMaterialSource
	SpecularMaterialSource
	AmbientMaterialSource
	EmissiveMaterialSource
	VertexBlend
	PointSize
	PointSizeMin
	PointSpriteEnable
	PointScaleEnable
	PointScaleA
	PointScaleB
	PointScaleC
	MultisampleAntialias
	MultisampleMask
	PatchEdgeStyle
	PointSizeMax
	ColorWriteEnable
	BlendOp
	DepthBias
	AntialiasedLineEnable
	BlendFactor

	renderStateCount
)

var renderStateNames = [...]string{
	RenderStateNone:        "NONE",
	ZEnable:                "ZENABLE",
	FillMode:               "FILLMODE",
	ShadeMode:              "SHADEMODE",
	ZWriteEnable:           "ZWRITEENABLE",
	AlphaTestEnable:        "ALPHATESTENABLE",
	SrcBlend:               "SRCBLEND",
	DestBlend:              "DESTBLEND",
	CullMode:               "CULLMODE",
	ZFunc:                  "ZFUNC",
	AlphaRef:               "ALPHAREF",
	AlphaFunc:              "ALPHAFUNC",
	DitherEnable:           "DITHERENABLE",
	AlphaBlendEnable:       "ALPHABLENDENABLE",
	FogEnable:              "FOGENABLE",
	SpecularEnable:         "SPECULARENABLE",
	FogColor:               "FOGCOLOR",
	FogTableMode:           "FOGTABLEMODE",
	FogStart:               "FOGSTART",
	FogEnd:                 "FOGEND",
	FogDensity:             "FOGDENSITY",
	RangeFogEnable:         "RANGEFOGENABLE",
	StencilEnable:          "STENCILENABLE",
	StencilFail:            "STENCILFAIL",
	StencilZFail:           "STENCILZFAIL",
	StencilPass:            "STENCILPASS",
	StencilFunc:            "STENCILFUNC",
	StencilRef:             "STENCILREF",
	StencilMask:            "STENCILMASK",
	StencilWriteMask:       "STENCILWRITEMASK",
	TextureFactor:          "TEXTUREFACTOR",
	Wrap0:                  "WRAP0",
	Wrap1:                  "WRAP1",
	Wrap2:                  "WRAP2",
	Wrap3:                  "WRAP3",
	Lighting:               "LIGHTING",
	Ambient:                "AMBIENT",
	ColorVertex:            "COLORVERTEX",
	LocalViewer:            "LOCALVIEWER",
	NormalizeNormals:       "NORMALIZENORMALS",
	DiffuseMaterialSource:  "DIFFUSEMATERIALSOURCE",
	SpecularMaterialSource: "SPECULARMATERIALSOURCE",
	AmbientMaterialSource:  "AMBIENTMATERIALSOURCE",
	EmissiveMaterialSource: "EMISSIVEMATERIALSOURCE",
	VertexBlend:            "VERTEXBLEND",
	PointSize:              "POINTSIZE",
	PointSizeMin:           "POINTSIZE_MIN",
	PointSpriteEnable:      "POINTSPRITEENABLE",
	PointScaleEnable:       "POINTSCALEENABLE",
	PointScaleA:            "POINTSCALE_A",
	PointScaleB:            "POINTSCALE_B",
	PointScaleC:            "POINTSCALE_C",
	MultisampleAntialias:   "MULTISAMPLEANTIALIAS",
	MultisampleMask:        "MULTISAMPLEMASK",
	PatchEdgeStyle:         "PATCHEDGESTYLE",
	PointSizeMax:           "POINTSIZE_MAX",
	ColorWriteEnable:       "COLORWRITEENABLE",
	BlendOp:                "BLENDOP",
	DepthBias:              "DEPTHBIAS",
	AntialiasedLineEnable:  "ANTIALIASEDLINEENABLE",
	BlendFactor:            "BLENDFACTOR",
}

func (s RenderState) String() string {
	if s < renderStateCount {
		return renderStateNames[s]
	}
	return fmt.Sprintf("RenderState(%d)", uint16(s))
}

// RenderStateCount is the number of host render states, including
// RenderStateNone.
const RenderStateCount = int(renderStateCount)

// FillMode values.
const (
	FillPoint     uint32 = 1
	FillWireframe uint32 = 2
	FillSolid     uint32 = 3
)

// ShadeMode values.
const (
	ShadeFlat    uint32 = 1
	ShadeGouraud uint32 = 2
)

// VertexBlend values.
const (
	VertexBlendDisable  uint32 = 0
	VertexBlend1Weights uint32 = 1
	VertexBlend2Weights uint32 = 2
	VertexBlend3Weights uint32 = 3
)

// WrapCoord bits for the Wrap0..Wrap3 states.
const (
	WrapCoord0 uint32 = 1 << iota
	WrapCoord1
	WrapCoord2
	WrapCoord3
)
