package halhost

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/shadergen"
)

func createNoopDevice(t *testing.T) (hal.Device, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	return openDev.Device, func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
}

func TestVertexBufferLockRoundTrip(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()
	d := New(dev)

	vb, err := d.CreateVertexBuffer(16)
	if err != nil {
		t.Fatal(err)
	}
	if vb.Size() != 16 || Buffer(vb) == nil {
		t.Fatalf("size %d, hal buffer %v", vb.Size(), Buffer(vb))
	}
	data, err := d.Lock(vb)
	if err != nil {
		t.Fatal(err)
	}
	for i := range data {
		data[i] = byte(i)
	}
	if err := d.Unlock(vb); err != nil {
		t.Fatal(err)
	}
	if err := d.Unlock(vb); err == nil {
		t.Error("second Unlock succeeded")
	}

	data, err = d.Lock(vb)
	if err != nil {
		t.Fatal(err)
	}
	if data[15] != 15 {
		t.Errorf("data[15] = %d after remap, want 15", data[15])
	}
	if err := d.Unlock(vb); err != nil {
		t.Fatal(err)
	}
	if err := d.SetStreamSource(2, vb, 0, 4); err != nil {
		t.Fatal(err)
	}
	d.DestroyVertexBuffer(vb)
	if b := d.Snapshot().Streams[2]; b.Buffer != nil {
		t.Errorf("stream 2 still bound to a destroyed buffer: %+v", b)
	}
	if _, err := d.Lock(vb); err == nil {
		t.Error("Lock of destroyed buffer succeeded")
	}
	if _, err := d.CreateVertexBuffer(0); err == nil {
		t.Error("zero sized buffer created")
	}
}

func TestVertexDeclarationLayouts(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()
	d := New(dev)

	t.Run("fixed function", func(t *testing.T) {
		vd, err := d.CreateVertexDeclaration([]host.VertexElement{
			{Stream: 1, Offset: 0, Type: host.DeclFloat2, Usage: host.UsageTexCoord},
			{Stream: 0, Offset: 12, Type: host.DeclD3DColor, Usage: host.UsageColor},
			{Stream: 0, Offset: 0, Type: host.DeclFloat3, Usage: host.UsagePosition},
		})
		if err != nil {
			t.Fatal(err)
		}
		ls := Layouts(vd)
		if len(ls) != 2 || ls[0].Stream != 0 || ls[1].Stream != 1 {
			t.Fatalf("layouts = %+v", ls)
		}
		a := ls[0].Attributes
		if len(a) != 2 || a[0].ShaderLocation != 0 || a[1].ShaderLocation != 3 {
			t.Errorf("stream 0 attributes = %+v", a)
		}
		if a[1].Format != gputypes.VertexFormatUnorm8x4 {
			t.Errorf("color format = %v", a[1].Format)
		}
		if ls[0].ArrayStride != 16 {
			t.Errorf("stream 0 stride = %d, want 16", ls[0].ArrayStride)
		}
		if loc := ls[1].Attributes[0].ShaderLocation; loc != 9 {
			t.Errorf("texcoord0 location = %d, want 9", loc)
		}
	})

	t.Run("programmable", func(t *testing.T) {
		vd, err := d.CreateVertexDeclaration([]host.VertexElement{
			{Stream: 0, Offset: 0, Type: host.DeclFloat4, Usage: host.UsageTexCoord, UsageIndex: 0},
			{Stream: 0, Offset: 16, Type: host.DeclShort2, Usage: host.UsageTexCoord, UsageIndex: 9},
			{Type: host.DeclUnused, Method: host.MethodUV, Usage: host.UsageTexCoord, UsageIndex: 10},
		})
		if err != nil {
			t.Fatal(err)
		}
		a := Layouts(vd)[0].Attributes
		if len(a) != 2 || a[0].ShaderLocation != 0 || a[1].ShaderLocation != 9 {
			t.Errorf("attributes = %+v", a)
		}
		if len(vd.Elements()) != 3 {
			t.Errorf("Elements() lost entries: %v", vd.Elements())
		}
	})

	t.Run("bound stride wins", func(t *testing.T) {
		vd, _ := d.CreateVertexDeclaration([]host.VertexElement{
			{Stream: 0, Type: host.DeclFloat3, Usage: host.UsagePosition},
		})
		vb, _ := d.CreateVertexBuffer(64)
		_ = d.SetVertexDeclaration(vd)
		_ = d.SetStreamSource(0, vb, 0, 32)
		s := d.Snapshot()
		if s.Layouts[0].ArrayStride != 32 {
			t.Errorf("stride = %d, want 32", s.Layouts[0].ArrayStride)
		}
		if Layouts(vd)[0].ArrayStride != 12 {
			t.Error("Snapshot modified the declaration")
		}
	})
}

func TestRenderStateSnapshot(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()
	d := New(dev)

	s := d.Snapshot()
	if s.Blend != nil || s.WriteMask != gputypes.ColorWriteMaskAll || s.DepthStencil.DepthCompare != gputypes.CompareFunctionLess {
		t.Fatalf("unexpected defaults: %+v", s)
	}

	set := func(st host.RenderState, v uint32) {
		t.Helper()
		if err := d.SetRenderState(st, v); err != nil {
			t.Fatal(err)
		}
	}
	set(host.ZFunc, uint32(gputypes.CompareFunctionLessEqual))
	set(host.CullMode, uint32(gputypes.CullModeBack))
	set(host.AlphaBlendEnable, 1)
	set(host.SrcBlend, uint32(gputypes.BlendFactorSrcAlpha))
	set(host.DestBlend, uint32(gputypes.BlendFactorOneMinusSrcAlpha))
	set(host.ColorWriteEnable, uint32(gputypes.ColorWriteMaskRed|gputypes.ColorWriteMaskAlpha))
	set(host.StencilEnable, 1)
	set(host.StencilPass, uint32(gputypes.StencilOperationReplace))
	set(host.DepthBias, math.Float32bits(-0.5))
	d.SetPrimitiveType(host.PrimitiveLineStrip)

	s = d.Snapshot()
	if s.DepthStencil.DepthCompare != gputypes.CompareFunctionLessEqual {
		t.Errorf("depth compare = %v", s.DepthStencil.DepthCompare)
	}
	if s.Primitive.CullMode != gputypes.CullModeBack || s.Primitive.FrontFace != gputypes.FrontFaceCW {
		t.Errorf("primitive = %+v", s.Primitive)
	}
	if s.Primitive.Topology != gputypes.PrimitiveTopologyLineStrip {
		t.Errorf("topology = %v", s.Primitive.Topology)
	}
	if s.Blend == nil || s.Blend.Color.SrcFactor != gputypes.BlendFactorSrcAlpha || s.Blend.Alpha.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha {
		t.Errorf("blend = %+v", s.Blend)
	}
	if s.DepthStencil.StencilFront.PassOp != gputypes.StencilOperationReplace {
		t.Errorf("stencil pass = %v", s.DepthStencil.StencilFront.PassOp)
	}
	if s.DepthStencil.DepthBias != -(1 << 23) {
		t.Errorf("depth bias = %d", s.DepthStencil.DepthBias)
	}
	if ct := d.ColorTarget(gputypes.TextureFormatBGRA8Unorm); ct.WriteMask != gputypes.ColorWriteMaskRed|gputypes.ColorWriteMaskAlpha {
		t.Errorf("write mask = %v", ct.WriteMask)
	}

	set(host.ZEnable, 0)
	set(host.StencilEnable, 0)
	s = d.Snapshot()
	if s.DepthStencil.DepthCompare != gputypes.CompareFunctionAlways || s.DepthStencil.DepthWriteEnabled {
		t.Errorf("disabled depth test still compares: %+v", s.DepthStencil)
	}
	if s.DepthStencil.StencilFront != gputypes.DefaultStencilFaceState() {
		t.Errorf("disabled stencil test kept ops: %+v", s.DepthStencil.StencilFront)
	}
	if s.States[host.ZFunc] != uint32(gputypes.CompareFunctionLessEqual) {
		t.Error("raw state lost")
	}
}

func TestShadersAndConstants(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()
	d := New(dev)

	if _, err := d.CreateVertexShader(&host.ShaderCode{Label: "empty"}); err == nil {
		t.Error("empty shader accepted")
	}
	vs, err := d.CreateVertexShader(&host.ShaderCode{Label: "vs", SPIRV: []uint32{0x07230203}})
	if err != nil {
		t.Fatal(err)
	}
	if vs.Label() != "vs" {
		t.Errorf("label = %q", vs.Label())
	}
	_ = d.SetVertexShader(vs)
	if d.Snapshot().Shader == nil {
		t.Error("shader not bound")
	}
	d.DestroyVertexShader(vs)
	if d.Snapshot().Shader != nil {
		t.Error("destroyed shader still bound")
	}

	var regs [shadergen.RegisterCount]f32.Vec4
	if d.Constants(&regs) {
		t.Error("constants dirty before any upload")
	}
	if err := d.SetVertexShaderConstantF(216, []f32.Vec4{{1, 2, 3, 4}, {5, 6, 7, 8}}); err != nil {
		t.Fatal(err)
	}
	if !d.Constants(&regs) || regs[217] != (f32.Vec4{5, 6, 7, 8}) {
		t.Errorf("register 217 = %v", regs[217])
	}
	err = d.SetVertexShaderConstantF(217, make([]f32.Vec4, 2))
	if !errors.Is(err, ErrConstantRange) {
		t.Errorf("err = %v, want ErrConstantRange", err)
	}
}

type provider struct {
	dev hal.Device
}

func (p provider) Device() gpucontext.Device { return nil }
func (p provider) Queue() gpucontext.Queue { return nil }
func (p provider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (p provider) Adapter() gpucontext.Adapter { return nil }
func (p provider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{Name: "noop"} }

type halProvider struct{ provider }

func (p halProvider) HalDevice() any { return p.dev }

func TestFromProvider(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	d, err := FromProvider(halProvider{provider{dev: dev}})
	if err != nil {
		t.Fatal(err)
	}
	if d.HAL() != dev {
		t.Error("wrapped the wrong device")
	}
	if _, err := FromProvider(provider{dev: dev}); err == nil {
		t.Error("provider without HAL access accepted")
	}
	if _, err := FromProvider(halProvider{}); err == nil {
		t.Error("nil HAL device accepted")
	}
}
