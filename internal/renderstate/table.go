package renderstate

import (
	"fmt"

	"github.com/gogpu/nv2a/host"
)

// State is a legacy render-state id.
//
// Ids enumerate every state known to any runtime version. A given version
// stores only the states whose minimum version it meets, packed without
// gaps, so the storage offset of an id depends on the active version.
type State uint16

// Pixel shader states, applied elsewhere.
const (
	PSAlphaInputs0 State = iota
	PSAlphaInputs1
	PSAlphaInputs2
	PSAlphaInputs3
	PSAlphaInputs4
	PSAlphaInputs5
	PSAlphaInputs6
	PSAlphaInputs7
	PSFinalCombinerInputsABCD
	PSFinalCombinerInputsEFG
	PSConstant0_0
	PSConstant0_1
	PSConstant0_2
	PSConstant0_3
	PSConstant0_4
	PSConstant0_5
	PSConstant0_6
	PSConstant0_7
	PSConstant1_0
	PSConstant1_1
	PSConstant1_2
	PSConstant1_3
	PSConstant1_4
	PSConstant1_5
	PSConstant1_6
	PSConstant1_7
	PSAlphaOutputs0
	PSAlphaOutputs1
	PSAlphaOutputs2
	PSAlphaOutputs3
	PSAlphaOutputs4
	PSAlphaOutputs5
	PSAlphaOutputs6
	PSAlphaOutputs7
	PSRGBInputs0
	PSRGBInputs1
	PSRGBInputs2
	PSRGBInputs3
	PSRGBInputs4
	PSRGBInputs5
	PSRGBInputs6
	PSRGBInputs7
	PSCompareMode
	PSFinalCombinerConstant0
	PSFinalCombinerConstant1
	PSRGBOutputs0
	PSRGBOutputs1
	PSRGBOutputs2
	PSRGBOutputs3
	PSRGBOutputs4
	PSRGBOutputs5
	PSRGBOutputs6
	PSRGBOutputs7
	PSCombinerCount
	PSReserved
	PSDotMapping
	PSInputTexture

	// Simple states.
	ZFunc
	AlphaFunc
	AlphaBlendEnable
	AlphaTestEnable
	AlphaRef
	SrcBlend
	DestBlend
	ZWriteEnable
	DitherEnable
	ShadeMode
	ColorWriteEnable
	StencilZFail
	StencilPass
	StencilFunc
	StencilRef
	StencilMask
	StencilWriteMask
	BlendOp
	BlendColor
	SwathWidth
	PolygonOffsetZSlopeScale
	PolygonOffsetZOffset
	PointOffsetEnable
	WireframeOffsetEnable
	SolidOffsetEnable
	DepthClipControl
	StippleEnable
	SimpleUnused8
	SimpleUnused7
	SimpleUnused6
	SimpleUnused5
	SimpleUnused4
	SimpleUnused3
	SimpleUnused2
	SimpleUnused1

	// Deferred states.
	FogEnable
	FogTableMode
	FogStart
	FogEnd
	FogDensity
	RangeFogEnable
	Wrap0
	Wrap1
	Wrap2
	Wrap3
	Lighting
	SpecularEnable
	LocalViewer
	ColorVertex
	BackSpecularMaterialSource
	BackDiffuseMaterialSource
	BackAmbientMaterialSource
	BackEmissiveMaterialSource
	SpecularMaterialSource
	DiffuseMaterialSource
	AmbientMaterialSource
	EmissiveMaterialSource
	BackAmbient
	Ambient
	PointSize
	PointSizeMin
	PointSpriteEnable
	PointScaleEnable
	PointScaleA
	PointScaleB
	PointScaleC
	PointSizeMax
	PatchEdgeStyle
	PatchSegments
	SwapFilter
	PresentationInterval
	DeferredUnused8
	DeferredUnused7
	DeferredUnused6
	DeferredUnused5
	DeferredUnused4
	DeferredUnused3
	DeferredUnused2
	DeferredUnused1

	// Complex states.
	PSTextureModes
	VertexBlend
	FogColor
	FillMode
	BackFillMode
	TwoSidedLighting
	NormalizeNormals
	ZEnable
	StencilEnable
	StencilFail
	FrontFace
	CullMode
	TextureFactor
	ZBias
	LogicOp
	EdgeAntialias
	MultisampleAntialias
	MultisampleMask
	MultisampleMode
	MultisampleRenderTargetMode
	ShadowFunc
	LineWidth
	SampleAlpha
	DXT1NoiseEnable
	YUVEnable
	OcclusionCullEnable
	StencilCullEnable
	RopZCmpAlwaysRead
	RopZRead
	DoNotCullUncompressed

	stateCount
)

// Tier boundaries.
const (
	PSFirst       = PSAlphaInputs0
	PSLast        = PSInputTexture
	SimpleFirst   = ZFunc
	SimpleLast    = SimpleUnused1
	DeferredFirst = FogEnable
	DeferredLast  = DeferredUnused1
	ComplexFirst  = PSTextureModes
	ComplexLast   = DoNotCullUncompressed
	Last          = ComplexLast

	// StateCount is the number of legacy render-state ids.
	StateCount = int(stateCount)
)

// baseVersion is the oldest supported runtime. Every state without a later
// minimum version exists from it on.
const baseVersion = 3424

type info struct {
	name       string
	minVersion uint32
	host       host.RenderState
}

var table = buildTable()

func buildTable() [stateCount]info {
	var t [stateCount]info
	set := func(s State, name string, hs host.RenderState) {
		t[s] = info{name: name, minVersion: baseVersion, host: hs}
	}
	since := func(v uint32, states ...State) {
		for _, s := range states {
			t[s].minVersion = v
		}
	}

	for i := range 8 {
		set(PSAlphaInputs0+State(i), fmt.Sprintf("PSALPHAINPUTS%d", i), host.RenderStateNone)
		set(PSAlphaOutputs0+State(i), fmt.Sprintf("PSALPHAOUTPUTS%d", i), host.RenderStateNone)
		set(PSRGBInputs0+State(i), fmt.Sprintf("PSRGBINPUTS%d", i), host.RenderStateNone)
		set(PSRGBOutputs0+State(i), fmt.Sprintf("PSRGBOUTPUTS%d", i), host.RenderStateNone)
		set(PSConstant0_0+State(i), fmt.Sprintf("PSCONSTANT0_%d", i), host.RenderStateNone)
		set(PSConstant1_0+State(i), fmt.Sprintf("PSCONSTANT1_%d", i), host.RenderStateNone)
		set(SimpleUnused8+State(i), fmt.Sprintf("SIMPLE_UNUSED%d", 8-i), host.RenderStateNone)
		set(DeferredUnused8+State(i), fmt.Sprintf("DEFERRED_UNUSED%d", 8-i), host.RenderStateNone)
	}
	set(PSFinalCombinerInputsABCD, "PSFINALCOMBINERINPUTSABCD", host.RenderStateNone)
	set(PSFinalCombinerInputsEFG, "PSFINALCOMBINERINPUTSEFG", host.RenderStateNone)
	set(PSCompareMode, "PSCOMPAREMODE", host.RenderStateNone)
	set(PSFinalCombinerConstant0, "PSFINALCOMBINERCONSTANT0", host.RenderStateNone)
	set(PSFinalCombinerConstant1, "PSFINALCOMBINERCONSTANT1", host.RenderStateNone)
	set(PSCombinerCount, "PSCOMBINERCOUNT", host.RenderStateNone)
	set(PSReserved, "PS_RESERVED", host.RenderStateNone)
	set(PSDotMapping, "PSDOTMAPPING", host.RenderStateNone)
	set(PSInputTexture, "PSINPUTTEXTURE", host.RenderStateNone)

	set(ZFunc, "ZFUNC", host.ZFunc)
	set(AlphaFunc, "ALPHAFUNC", host.AlphaFunc)
	set(AlphaBlendEnable, "ALPHABLENDENABLE", host.AlphaBlendEnable)
	set(AlphaTestEnable, "ALPHATESTENABLE", host.AlphaTestEnable)
	set(AlphaRef, "ALPHAREF", host.AlphaRef)
	set(SrcBlend, "SRCBLEND", host.SrcBlend)
	set(DestBlend, "DESTBLEND", host.DestBlend)
	set(ZWriteEnable, "ZWRITEENABLE", host.ZWriteEnable)
	set(DitherEnable, "DITHERENABLE", host.DitherEnable)
	set(ShadeMode, "SHADEMODE", host.ShadeMode)
	set(ColorWriteEnable, "COLORWRITEENABLE", host.ColorWriteEnable)
	set(StencilZFail, "STENCILZFAIL", host.StencilZFail)
	set(StencilPass, "STENCILPASS", host.StencilPass)
	set(StencilFunc, "STENCILFUNC", host.StencilFunc)
	set(StencilRef, "STENCILREF", host.StencilRef)
	set(StencilMask, "STENCILMASK", host.StencilMask)
	set(StencilWriteMask, "STENCILWRITEMASK", host.StencilWriteMask)
	set(BlendOp, "BLENDOP", host.BlendOp)
	set(BlendColor, "BLENDCOLOR", host.BlendFactor)
	set(SwathWidth, "SWATHWIDTH", host.RenderStateNone)
	set(PolygonOffsetZSlopeScale, "POLYGONOFFSETZSLOPESCALE", host.RenderStateNone)
	set(PolygonOffsetZOffset, "POLYGONOFFSETZOFFSET", host.RenderStateNone)
	set(PointOffsetEnable, "POINTOFFSETENABLE", host.RenderStateNone)
	set(WireframeOffsetEnable, "WIREFRAMEOFFSETENABLE", host.RenderStateNone)
	set(SolidOffsetEnable, "SOLIDOFFSETENABLE", host.RenderStateNone)
	set(DepthClipControl, "DEPTHCLIPCONTROL", host.RenderStateNone)
	set(StippleEnable, "STIPPLEENABLE", host.RenderStateNone)

	set(FogEnable, "FOGENABLE", host.FogEnable)
	set(FogTableMode, "FOGTABLEMODE", host.FogTableMode)
	set(FogStart, "FOGSTART", host.FogStart)
	set(FogEnd, "FOGEND", host.FogEnd)
	set(FogDensity, "FOGDENSITY", host.FogDensity)
	set(RangeFogEnable, "RANGEFOGENABLE", host.RangeFogEnable)
	set(Wrap0, "WRAP0", host.Wrap0)
	set(Wrap1, "WRAP1", host.Wrap1)
	set(Wrap2, "WRAP2", host.Wrap2)
	set(Wrap3, "WRAP3", host.Wrap3)
	set(Lighting, "LIGHTING", host.Lighting)
	set(SpecularEnable, "SPECULARENABLE", host.SpecularEnable)
	set(LocalViewer, "LOCALVIEWER", host.LocalViewer)
	set(ColorVertex, "COLORVERTEX", host.ColorVertex)
	set(BackSpecularMaterialSource, "BACKSPECULARMATERIALSOURCE", host.RenderStateNone)
	set(BackDiffuseMaterialSource, "BACKDIFFUSEMATERIALSOURCE", host.RenderStateNone)
	set(BackAmbientMaterialSource, "BACKAMBIENTMATERIALSOURCE", host.RenderStateNone)
	set(BackEmissiveMaterialSource, "BACKEMISSIVEMATERIALSOURCE", host.RenderStateNone)
	set(SpecularMaterialSource, "SPECULARMATERIALSOURCE", host.SpecularMaterialSource)
	set(DiffuseMaterialSource, "DIFFUSEMATERIALSOURCE", host.DiffuseMaterialSource)
	set(AmbientMaterialSource, "AMBIENTMATERIALSOURCE", host.AmbientMaterialSource)
	set(EmissiveMaterialSource, "EMISSIVEMATERIALSOURCE", host.EmissiveMaterialSource)
	set(BackAmbient, "BACKAMBIENT", host.RenderStateNone)
	set(Ambient, "AMBIENT", host.Ambient)
	set(PointSize, "POINTSIZE", host.PointSize)
	set(PointSizeMin, "POINTSIZE_MIN", host.PointSizeMin)
	set(PointSpriteEnable, "POINTSPRITEENABLE", host.PointSpriteEnable)
	set(PointScaleEnable, "POINTSCALEENABLE", host.PointScaleEnable)
	set(PointScaleA, "POINTSCALE_A", host.PointScaleA)
	set(PointScaleB, "POINTSCALE_B", host.PointScaleB)
	set(PointScaleC, "POINTSCALE_C", host.PointScaleC)
	set(PointSizeMax, "POINTSIZE_MAX", host.PointSizeMax)
	set(PatchEdgeStyle, "PATCHEDGESTYLE", host.PatchEdgeStyle)
	set(PatchSegments, "PATCHSEGMENTS", host.RenderStateNone)
	set(SwapFilter, "SWAPFILTER", host.RenderStateNone)
	set(PresentationInterval, "PRESENTATIONINTERVAL", host.RenderStateNone)

	set(PSTextureModes, "PSTEXTUREMODES", host.RenderStateNone)
	set(VertexBlend, "VERTEXBLEND", host.VertexBlend)
	set(FogColor, "FOGCOLOR", host.FogColor)
	set(FillMode, "FILLMODE", host.FillMode)
	set(BackFillMode, "BACKFILLMODE", host.RenderStateNone)
	set(TwoSidedLighting, "TWOSIDEDLIGHTING", host.RenderStateNone)
	set(NormalizeNormals, "NORMALIZENORMALS", host.NormalizeNormals)
	set(ZEnable, "ZENABLE", host.ZEnable)
	set(StencilEnable, "STENCILENABLE", host.StencilEnable)
	set(StencilFail, "STENCILFAIL", host.StencilFail)
	set(FrontFace, "FRONTFACE", host.RenderStateNone)
	set(CullMode, "CULLMODE", host.CullMode)
	set(TextureFactor, "TEXTUREFACTOR", host.TextureFactor)
	set(ZBias, "ZBIAS", host.DepthBias)
	set(LogicOp, "LOGICOP", host.RenderStateNone)
	set(EdgeAntialias, "EDGEANTIALIAS", host.AntialiasedLineEnable)
	set(MultisampleAntialias, "MULTISAMPLEANTIALIAS", host.MultisampleAntialias)
	set(MultisampleMask, "MULTISAMPLEMASK", host.MultisampleMask)
	set(MultisampleMode, "MULTISAMPLEMODE", host.RenderStateNone)
	set(MultisampleRenderTargetMode, "MULTISAMPLERENDERTARGETMODE", host.RenderStateNone)
	set(ShadowFunc, "SHADOWFUNC", host.RenderStateNone)
	set(LineWidth, "LINEWIDTH", host.RenderStateNone)
	set(SampleAlpha, "SAMPLEALPHA", host.RenderStateNone)
	set(DXT1NoiseEnable, "DXT1NOISEENABLE", host.RenderStateNone)
	set(YUVEnable, "YUVENABLE", host.RenderStateNone)
	set(OcclusionCullEnable, "OCCLUSIONCULLENABLE", host.RenderStateNone)
	set(StencilCullEnable, "STENCILCULLENABLE", host.RenderStateNone)
	set(RopZCmpAlwaysRead, "ROPZCMPALWAYSREAD", host.RenderStateNone)
	set(RopZRead, "ROPZREAD", host.RenderStateNone)
	set(DoNotCullUncompressed, "DONOTCULLUNCOMPRESSED", host.RenderStateNone)

	since(3911, YUVEnable, OcclusionCullEnable, StencilCullEnable,
		RopZCmpAlwaysRead, RopZRead, DoNotCullUncompressed)
	since(4039, SwapFilter)
	since(4361, MultisampleMode, MultisampleRenderTargetMode)
	since(4627, PresentationInterval, SampleAlpha,
		SimpleUnused8, SimpleUnused7, SimpleUnused6, SimpleUnused5,
		SimpleUnused4, SimpleUnused3, SimpleUnused2, SimpleUnused1,
		DeferredUnused8, DeferredUnused7, DeferredUnused6, DeferredUnused5,
		DeferredUnused4, DeferredUnused3, DeferredUnused2, DeferredUnused1)
	return t
}

func (s State) String() string {
	if s < stateCount {
		return table[s].name
	}
	return fmt.Sprintf("State(%d)", uint16(s))
}

// MinVersion returns the first runtime version that stores s.
func (s State) MinVersion() uint32 {
	if s >= stateCount {
		return ^uint32(0)
	}
	return table[s].minVersion
}

// Host returns the host counterpart of s, or host.RenderStateNone.
func (s State) Host() host.RenderState {
	if s >= stateCount {
		return host.RenderStateNone
	}
	return table[s].host
}

// count returns how many states in [from, to) exist in version.
func count(from, to State, version uint32) int {
	n := 0
	for s := from; s < to; s++ {
		if table[s].minVersion <= version {
			n++
		}
	}
	return n
}
