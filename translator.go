package nv2a

import (
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/ffstate"
	"github.com/gogpu/nv2a/internal/renderstate"
	"github.com/gogpu/nv2a/internal/shadercache"
	"github.com/gogpu/nv2a/internal/shadergen"
	"github.com/gogpu/nv2a/internal/stream"
	"github.com/gogpu/nv2a/internal/vsh"
)

// Translator converts legacy vertex pipeline state into host state.
//
// Translator is not safe for concurrent use. It is driven from the draw
// thread; only Stats may be called from other goroutines.
type Translator struct {
	opts   options
	device host.Device

	shaders *shadercache.Cache
	streams *stream.Converter
	states  *renderstate.Converter
	lights  *ffstate.Lights

	slots   vsh.Slots
	program program

	handles map[Handle]*vertexShader
	next    Handle
	active  *vertexShader

	// input is the legacy stream and texture state read by the next draw.
	input stream.State

	constants     [shadergen.RegisterCount]f32.Vec4
	flagsUploaded bool
}

// New creates a translator.
//
// Render states are converted only when both WithSymbols and WithMemory are
// given. Locating the render-state block fails when the symbols do not
// resolve it.
func New(opts ...Option) (*Translator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	compile := o.compile
	if compile == nil {
		compile = shadergen.NewCompiler(o.target).CompileShader
	}

	t := &Translator{
		opts:    o,
		device:  o.device,
		shaders: shadercache.New(compile, o.concurrency),
		streams: stream.NewConverter(o.device, o.cacheSize, o.elasticity),
		lights:  ffstate.NewLights(),
		handles: make(map[Handle]*vertexShader),
		next:    1,
	}
	t.shaders.ResetDevice(o.device)

	switch {
	case o.symbols != nil && o.memory != nil:
		rs, err := renderstate.New(o.version, o.symbols, o.memory)
		if err != nil {
			return nil, fmt.Errorf("nv2a: render states: %w", err)
		}
		t.states = rs
	case o.symbols != nil || o.memory != nil:
		Logger().Warn("nv2a: render states need both symbols and memory, conversion disabled")
	}
	return t, nil
}

// Device returns the bound host device.
func (t *Translator) Device() host.Device { return t.device }

// LibVersion returns the legacy runtime build the translator targets.
func (t *Translator) LibVersion() uint32 { return t.opts.version }

// ResetDevice binds a new host device, for example after the previous one
// was lost. Declarations and patched streams created on the old device are
// released, every render state is marked dirty and the constant registers
// are uploaded again.
func (t *Translator) ResetDevice(d host.Device) {
	old := t.device
	for _, vs := range t.handles {
		vs.releaseDeclaration(old)
	}
	t.device = d
	t.shaders.ResetDevice(d)
	t.streams.ResetDevice(d)
	if t.states != nil {
		t.states.SetDirty()
	}
	t.flagsUploaded = false
	if d != nil {
		if err := d.SetVertexShaderConstantF(0, t.constants[:]); err != nil {
			Logger().Warn("nv2a: restoring constants failed", "err", err)
		}
	}
}

// Close releases every host object the translator created.
func (t *Translator) Close() {
	for h, vs := range t.handles {
		vs.releaseDeclaration(t.device)
		delete(t.handles, h)
	}
	t.active = nil
	t.program = program{}
	t.shaders.Purge()
	t.streams.Purge()
}

// SetStreamSource binds legacy vertex data to stream. A nil data unbinds
// the stream.
func (t *Translator) SetStreamSource(stream int, data []byte, stride int) {
	if stream < 0 || stream >= len(t.input.Sources) {
		Logger().Warn("nv2a: stream index out of range", "stream", stream)
		return
	}
	t.input.Sources[stream].Data = data
	t.input.Sources[stream].Stride = stride
}

// SetTexture describes the texture bound to stage.
func (t *Translator) SetTexture(stage int, tex Texture) {
	if stage < 0 || stage >= len(t.input.Textures) {
		Logger().Warn("nv2a: texture stage out of range", "stage", stage)
		return
	}
	t.input.Textures[stage] = tex
}

// PrepareDraw binds everything the draw described by ctx reads: converted
// vertex streams, the vertex declaration and shader of the active vertex
// shader, and the input flag registers. On return ctx holds the host
// primitive type and count and, for client memory draws, the host vertex
// data.
//
// Missing devices, declaration failures and stream conversion failures are
// returned. A shader that cannot be bound leaves the fixed-function path
// selected and is only logged.
func (t *Translator) PrepareDraw(ctx *DrawContext) error {
	if t.device == nil {
		return ErrNoDevice
	}
	vs := t.active
	if vs == nil {
		return ErrNoVertexShader
	}

	d := vs.declaration(t.opts.caps)
	hd, err := vs.hostDeclaration(t.device)
	if err != nil {
		return err
	}
	shader := t.shader(vs)

	t.input.Declaration = d
	t.input.Format = &vs.format
	if err := t.streams.Apply(ctx, &t.input); err != nil {
		return fmt.Errorf("nv2a: prepare draw: %w", err)
	}
	if ps, ok := t.device.(host.PrimitiveSetter); ok {
		ps.SetPrimitiveType(ctx.HostPrimitiveType)
	}

	if err := t.device.SetVertexDeclaration(hd); err != nil {
		return fmt.Errorf("%w: bind: %v", ErrDeclaration, err)
	}
	if err := t.device.SetVertexShader(shader); err != nil {
		Logger().Warn("nv2a: bind vertex shader failed", "handle", vs.handle, "err", err)
	}
	t.uploadFlags(vs)
	return nil
}

// ApplyRenderStates pushes the legacy render states that changed since the
// last call to the host. It does nothing when render-state conversion is
// disabled.
func (t *Translator) ApplyRenderStates() {
	if t.states == nil {
		return
	}
	t.states.Apply(t.device)
}

// RenderState returns the current value of a legacy render state.
func (t *Translator) RenderState(s RenderState) (uint32, bool) {
	if t.states == nil {
		return 0, false
	}
	return t.states.Get(s)
}

// SetRenderState writes a legacy render state. The host sees it on the next
// ApplyRenderStates.
func (t *Translator) SetRenderState(s RenderState, v uint32) bool {
	if t.states == nil {
		return false
	}
	return t.states.Set(s, v)
}

// PixelShaderRenderStateAddress returns the emulated address of the pixel
// shader render states, which pixel shader translation reads directly.
func (t *Translator) PixelShaderRenderStateAddress() (uint32, bool) {
	if t.states == nil {
		return 0, false
	}
	return t.states.PixelShaderAddress(), true
}

// SetRenderStatesDirty makes the next ApplyRenderStates send every render
// state to the host.
func (t *Translator) SetRenderStatesDirty() {
	if t.states == nil {
		return
	}
	t.states.SetDirty()
}

// SetWireFrameMode overrides the fill mode. See WireFrameOff.
func (t *Translator) SetWireFrameMode(mode int) {
	if t.states == nil {
		return
	}
	t.states.SetWireFrameMode(mode)
}

// PresentationInterval returns the last presentation interval applied.
func (t *Translator) PresentationInterval() uint32 {
	if t.states == nil {
		return 0
	}
	return t.states.PresentationInterval()
}

// SetLight stores the parameters of light index.
func (t *Translator) SetLight(index int, l Light) error { return t.lights.Set(index, l) }

// GetLight returns the parameters of light index.
func (t *Translator) GetLight(index int) (Light, error) { return t.lights.Get(index) }

// LightEnable enables or disables light index.
func (t *Translator) LightEnable(index int, enable bool) error {
	return t.lights.Enable(index, enable)
}

// EnabledLights returns the enabled light indices, least recently enabled
// first, padded with -1.
func (t *Translator) EnabledLights() [ffstate.MaxEnabled]int { return t.lights.Enabled() }

// Stats describes the translator caches.
type Stats struct {
	Shaders      int
	Compiling    int
	CompileTasks uint64

	PatchHits      uint64
	PatchMisses    uint64
	PatchEvictions uint64
	PatchedStreams int
}

// Stats returns a snapshot of cache statistics.
func (t *Translator) Stats() Stats {
	sc := t.shaders.Stats()
	st := t.streams.Stats()
	return Stats{
		Shaders:        sc.Entries,
		Compiling:      sc.Pending,
		CompileTasks:   sc.CompileTasks,
		PatchHits:      st.Hits,
		PatchMisses:    st.Misses,
		PatchEvictions: st.Evictions,
		PatchedStreams: st.Len,
	}
}
