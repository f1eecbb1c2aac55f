package renderstate

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/host/hosttest"
)

const testBase = 0x80010000

// newTestConverter lays out a zeroed render-state block at testBase for
// version and returns a converter over it.
func newTestConverter(t *testing.T, version uint32) (*Converter, *Block) {
	t.Helper()
	mem := NewBlock(testBase, StateCount)
	deferred := testBase + 4*uint32(count(PSFirst, DeferredFirst, version))
	cull := deferred + 4*uint32(count(DeferredFirst, CullMode, version))
	c, err := New(version, SymbolTable{
		SymbolDeferredRenderState: deferred,
		SymbolCullMode:            cull,
	}, mem)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, mem
}

func TestTableComplete(t *testing.T) {
	for s := State(0); s < stateCount; s++ {
		if table[s].name == "" {
			t.Errorf("state %d has no entry", s)
		}
		if table[s].minVersion < baseVersion {
			t.Errorf("%v: min version %d", s, table[s].minVersion)
		}
	}
	if !(PSLast < SimpleFirst && SimpleLast < DeferredFirst && DeferredLast < ComplexFirst) {
		t.Error("tier ranges overlap")
	}
}

func TestOffsetsPackPresentStates(t *testing.T) {
	tests := []struct {
		version uint32
		absent  []State
	}{
		{3925, []State{SwapFilter, PresentationInterval, MultisampleMode, SimpleUnused1}},
		{4361, []State{PresentationInterval, SampleAlpha, DeferredUnused8}},
		{5849, nil},
	}
	for _, tt := range tests {
		c, _ := newTestConverter(t, tt.version)
		next := 0
		for s := PSFirst; s <= Last; s++ {
			off, ok := c.Offset(s)
			if slices.Contains(tt.absent, s) {
				if ok {
					t.Errorf("%d: %v present", tt.version, s)
				}
				continue
			}
			if !ok {
				if s.MinVersion() <= tt.version {
					t.Errorf("%d: %v missing", tt.version, s)
				}
				continue
			}
			if off != next {
				t.Errorf("%d: %v offset %d, want %d", tt.version, s, off, next)
			}
			next++
		}
		if c.Base() != testBase || c.PixelShaderAddress() != testBase {
			t.Errorf("%d: base %#x, pixel shader address %#x", tt.version, c.Base(), c.PixelShaderAddress())
		}
	}
}

func TestNewCorrectsDeferredAddress(t *testing.T) {
	const version = 5849
	deferred := testBase + 4*uint32(count(PSFirst, DeferredFirst, version))
	cull := deferred + 4*uint32(count(DeferredFirst, CullMode, version))

	c, err := New(version, SymbolTable{
		SymbolDeferredRenderState: deferred + 8,
		SymbolCullMode:            cull,
	}, NewBlock(testBase, StateCount))
	if err != nil {
		t.Fatal(err)
	}
	if c.Base() != testBase {
		t.Errorf("base = %#x, want %#x", c.Base(), testBase)
	}

	// Without CULLMODE the address is taken as is.
	c, err = New(version, SymbolTable{SymbolDeferredRenderState: deferred + 8}, NewBlock(testBase, StateCount))
	if err != nil {
		t.Fatal(err)
	}
	if c.Base() != testBase+8 {
		t.Errorf("unverified base = %#x, want %#x", c.Base(), testBase+8)
	}

	if _, err := New(version, SymbolTable{}, NewBlock(0, 1)); !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("err = %v, want ErrSymbolNotFound", err)
	}
}

func TestGetSet(t *testing.T) {
	c, mem := newTestConverter(t, 3925)
	if !c.Set(ZFunc, 0x203) {
		t.Fatal("Set(ZFUNC) failed")
	}
	off, _ := c.Offset(ZFunc)
	if mem.Words[off] != 0x203 {
		t.Errorf("word %d = %#x", off, mem.Words[off])
	}
	if v, ok := c.Get(ZFunc); !ok || v != 0x203 {
		t.Errorf("Get = %#x, %v", v, ok)
	}
	if c.Set(PresentationInterval, 1) {
		t.Error("Set succeeded for an absent state")
	}
	if _, ok := c.Get(PresentationInterval); ok {
		t.Error("Get succeeded for an absent state")
	}
}

func TestApplyOnlyChangedStates(t *testing.T) {
	c, _ := newTestConverter(t, 5849)
	dev := hosttest.New()

	for _, v := range []uint32{0x203, 0x203, 0x207} {
		c.Set(ZFunc, v)
		c.Apply(dev)
	}
	got := dev.CallsFor(host.ZFunc)
	want := []uint32{uint32(gputypes.CompareFunctionLessEqual), uint32(gputypes.CompareFunctionAlways)}
	if !slices.Equal(got, want) {
		t.Errorf("ZFUNC calls = %v, want %v", got, want)
	}
	if len(dev.StateCalls) != 2 {
		t.Errorf("%d host calls, want 2", len(dev.StateCalls))
	}

	c.SetDirty()
	c.Apply(dev)
	if n := len(dev.CallsFor(host.ZFunc)); n != 3 {
		t.Errorf("after SetDirty: %d ZFUNC calls, want 3", n)
	}
}

func TestApplyConversions(t *testing.T) {
	bias := uint32(10)
	tests := []struct {
		state State
		value uint32
		host  host.RenderState
		want  uint32
	}{
		{ColorWriteEnable, 0x01010101, host.ColorWriteEnable, uint32(gputypes.ColorWriteMaskAll)},
		{ColorWriteEnable, 0x00010000, host.ColorWriteEnable, uint32(gputypes.ColorWriteMaskRed)},
		{ShadeMode, 0x1D00, host.ShadeMode, host.ShadeFlat},
		{SrcBlend, 0x302, host.SrcBlend, uint32(gputypes.BlendFactorSrcAlpha)},
		{DestBlend, 0x303, host.DestBlend, uint32(gputypes.BlendFactorOneMinusSrcAlpha)},
		{BlendOp, 0x800B, host.BlendOp, uint32(gputypes.BlendOperationReverseSubtract)},
		{StencilPass, 0x1E02, host.StencilPass, uint32(gputypes.StencilOperationIncrementClamp)},
		{StencilFail, 0x150A, host.StencilFail, uint32(gputypes.StencilOperationInvert)},
		{AlphaRef, 0x80, host.AlphaRef, 0x80},
		{BlendColor, 0xFF102030, host.BlendFactor, 0xFF102030},
		{FogStart, math.Float32bits(-2), host.FogStart, math.Float32bits(2)},
		{FogEnd, math.Float32bits(100), host.FogEnd, math.Float32bits(100)},
		{Wrap1, 0x1010, host.Wrap1, host.WrapCoord0 | host.WrapCoord1},
		{Wrap2, 0x01100000, host.Wrap2, host.WrapCoord2 | host.WrapCoord3},
		{VertexBlend, 3, host.VertexBlend, host.VertexBlend2Weights},
		{VertexBlend, 5, host.VertexBlend, host.VertexBlend3Weights},
		{FillMode, 0x1B01, host.FillMode, host.FillWireframe},
		{CullMode, 0x900, host.CullMode, uint32(gputypes.CullModeFront)},
		{CullMode, 0x901, host.CullMode, uint32(gputypes.CullModeBack)},
		{ZBias, bias, host.DepthBias, math.Float32bits(float32(bias) * -0.000005)},
		{EdgeAntialias, 1, host.AntialiasedLineEnable, 1},
		{FogEnable, 1, host.FogEnable, 1},
		{AlphaTestEnable, 1, host.AlphaTestEnable, 1},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			c, _ := newTestConverter(t, 5849)
			dev := hosttest.New()
			c.Set(tt.state, tt.value)
			c.Apply(dev)
			got := dev.CallsFor(tt.host)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("%v(%#x): host calls %#x, want [%#x]", tt.state, tt.value, got, tt.want)
			}
		})
	}
}

func TestApplySkipsUnsupported(t *testing.T) {
	tests := []struct {
		state State
		value uint32
	}{
		{VertexBlend, 2},
		{CullMode, 7},
		{ZFunc, 0x42},
		{ShadeMode, 3},
		{BackAmbient, 0xFFFFFFFF},
		{SwapFilter, 1},
		{PSTextureModes, 0x12345},
		{PSAlphaInputs0, 7},
		{LineWidth, 8},
	}
	for _, tt := range tests {
		c, _ := newTestConverter(t, 5849)
		dev := hosttest.New()
		c.Set(tt.state, tt.value)
		c.Apply(dev)
		if len(dev.StateCalls) != 0 {
			t.Errorf("%v(%#x): host calls %v", tt.state, tt.value, dev.StateCalls)
		}
	}
}

func TestApplyVersionHacks(t *testing.T) {
	c, _ := newTestConverter(t, 3925)
	dev := hosttest.New()
	c.Set(FogEnable, 1)
	c.Set(AlphaTestEnable, 1)
	c.Apply(dev)
	if got := dev.CallsFor(host.FogEnable); !slices.Equal(got, []uint32{0}) {
		t.Errorf("FOGENABLE = %v, want [0]", got)
	}
	if got := dev.CallsFor(host.AlphaTestEnable); !slices.Equal(got, []uint32{0}) {
		t.Errorf("ALPHATESTENABLE = %v, want [0]", got)
	}
}

func TestPresentationInterval(t *testing.T) {
	c, _ := newTestConverter(t, 5849)
	dev := hosttest.New()
	c.Set(PresentationInterval, 2)
	c.Apply(dev)
	if got := c.PresentationInterval(); got != 2 {
		t.Errorf("PresentationInterval = %d, want 2", got)
	}
	if len(dev.StateCalls) != 0 {
		t.Errorf("interval forwarded to the host: %v", dev.StateCalls)
	}
}

func TestWireFrameMode(t *testing.T) {
	c, _ := newTestConverter(t, 5849)
	dev := hosttest.New()
	c.Set(FillMode, 0x1B02)
	c.Apply(dev)

	c.SetWireFrameMode(WireFrameLines)
	c.Apply(dev)
	c.SetWireFrameMode(WireFramePoint)
	c.Apply(dev)
	c.SetWireFrameMode(WireFrameOff)
	c.Apply(dev)

	want := []uint32{host.FillSolid, host.FillWireframe, host.FillPoint, host.FillSolid}
	if got := dev.CallsFor(host.FillMode); !slices.Equal(got, want) {
		t.Errorf("FILLMODE calls = %v, want %v", got, want)
	}
}

func TestApplyHostFailureUpdatesBaseline(t *testing.T) {
	c, _ := newTestConverter(t, 5849)
	dev := hosttest.New()
	dev.FailStates = true
	c.Set(ZWriteEnable, 1)
	c.Apply(dev)

	dev.FailStates = false
	c.Apply(dev)
	if len(dev.StateCalls) != 0 {
		t.Errorf("failed state resent: %v", dev.StateCalls)
	}
}
