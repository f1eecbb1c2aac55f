package halhost

import (
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/nv2a/host"
)

// StreamBinding is a vertex buffer bound to a stream.
type StreamBinding struct {
	Buffer hal.Buffer
	Offset uint64
	Stride uint64
}

// PipelineState is the pipeline-relevant state accumulated from binding
// and render-state calls.
type PipelineState struct {
	Streams [MaxStreams]StreamBinding
	Layouts []StreamLayout
	// Shader is nil when the fixed-function path is selected.
	Shader hal.ShaderModule

	Primitive    gputypes.PrimitiveState
	DepthStencil gputypes.DepthStencilState
	DepthTest    bool
	StencilTest  bool

	// Blend is nil when blending is disabled.
	Blend     *gputypes.BlendState
	WriteMask gputypes.ColorWriteMask

	BlendConstant    uint32
	StencilReference uint32
	FillMode         uint32

	// States holds the last value set for every host render state.
	States [host.RenderStateCount]uint32
}

func (s *PipelineState) reset() {
	*s = PipelineState{}
	s.Primitive.FrontFace = gputypes.FrontFaceCW
	s.DepthStencil = gputypes.DefaultDepthStencilState(gputypes.TextureFormatDepth24PlusStencil8)
	s.DepthTest = true
	s.WriteMask = gputypes.ColorWriteMaskAll
	s.FillMode = host.FillSolid

	s.States[host.ZEnable] = 1
	s.States[host.ZWriteEnable] = 1
	s.States[host.ZFunc] = uint32(gputypes.CompareFunctionLess)
	s.States[host.SrcBlend] = uint32(gputypes.BlendFactorOne)
	s.States[host.DestBlend] = uint32(gputypes.BlendFactorZero)
	s.States[host.BlendOp] = uint32(gputypes.BlendOperationAdd)
	s.States[host.ColorWriteEnable] = uint32(gputypes.ColorWriteMaskAll)
	s.States[host.FillMode] = host.FillSolid
	s.States[host.StencilMask] = 0xFFFFFFFF
	s.States[host.StencilWriteMask] = 0xFFFFFFFF
}

// blend rebuilds the blend state from the recorded factors.
func (s *PipelineState) blend() {
	if s.States[host.AlphaBlendEnable] == 0 {
		s.Blend = nil
		return
	}
	c := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactor(s.States[host.SrcBlend]),
		DstFactor: gputypes.BlendFactor(s.States[host.DestBlend]),
		Operation: gputypes.BlendOperation(s.States[host.BlendOp]),
	}
	s.Blend = &gputypes.BlendState{Color: c, Alpha: c}
}

func (d *Device) SetRenderState(state host.RenderState, value uint32) error {
	if state == host.RenderStateNone || int(state) >= host.RenderStateCount {
		slogger().Warn("halhost: unknown render state", "state", state)
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &d.state
	s.States[state] = value

	ds := &s.DepthStencil
	switch state {
	case host.ZEnable:
		s.DepthTest = value != 0
	case host.ZWriteEnable:
		ds.DepthWriteEnabled = value != 0
	case host.ZFunc:
		ds.DepthCompare = gputypes.CompareFunction(value)
	case host.StencilEnable:
		s.StencilTest = value != 0
	case host.StencilFunc:
		ds.StencilFront.Compare = gputypes.CompareFunction(value)
		ds.StencilBack.Compare = ds.StencilFront.Compare
	case host.StencilFail:
		ds.StencilFront.FailOp = gputypes.StencilOperation(value)
		ds.StencilBack.FailOp = ds.StencilFront.FailOp
	case host.StencilZFail:
		ds.StencilFront.DepthFailOp = gputypes.StencilOperation(value)
		ds.StencilBack.DepthFailOp = ds.StencilFront.DepthFailOp
	case host.StencilPass:
		ds.StencilFront.PassOp = gputypes.StencilOperation(value)
		ds.StencilBack.PassOp = ds.StencilFront.PassOp
	case host.StencilMask:
		ds.StencilReadMask = value
	case host.StencilWriteMask:
		ds.StencilWriteMask = value
	case host.StencilRef:
		s.StencilReference = value
	case host.DepthBias:
		// Host bias is in units of the smallest 24-bit depth step.
		ds.DepthBias = int32(floatState(value) * (1 << 24))
	case host.CullMode:
		s.Primitive.CullMode = gputypes.CullMode(value)
	case host.AlphaBlendEnable, host.SrcBlend, host.DestBlend, host.BlendOp:
		s.blend()
	case host.ColorWriteEnable:
		s.WriteMask = gputypes.ColorWriteMask(value)
	case host.BlendFactor:
		s.BlendConstant = value
	case host.FillMode:
		s.FillMode = value
	}
	return nil
}

// Snapshot returns the current pipeline state. Disabled depth and stencil
// tests are folded into the returned DepthStencil.
func (d *Device) Snapshot() PipelineState {
	d.mu.Lock()
	s := d.state
	d.mu.Unlock()

	s.Layouts = slices.Clone(s.Layouts)
	for i := range s.Layouts {
		l := &s.Layouts[i]
		if b := s.Streams[l.Stream]; b.Buffer != nil && b.Stride > 0 {
			l.ArrayStride = b.Stride
		}
	}
	if s.Blend != nil {
		b := *s.Blend
		s.Blend = &b
	}
	if !s.DepthTest {
		s.DepthStencil.DepthCompare = gputypes.CompareFunctionAlways
		s.DepthStencil.DepthWriteEnabled = false
	}
	if !s.StencilTest {
		s.DepthStencil.StencilFront = gputypes.DefaultStencilFaceState()
		s.DepthStencil.StencilBack = gputypes.DefaultStencilFaceState()
	}
	return s
}

// ColorTarget returns the color target state for format under the current
// blend and write mask.
func (d *Device) ColorTarget(format gputypes.TextureFormat) gputypes.ColorTargetState {
	s := d.Snapshot()
	return gputypes.ColorTargetState{Format: format, Blend: s.Blend, WriteMask: s.WriteMask}
}
