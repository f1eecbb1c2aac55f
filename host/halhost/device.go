// Package halhost implements host.Device on top of a wgpu HAL device.
//
// Buffers and shader modules are real HAL resources. Binding calls and
// render states do not touch the device; they are folded into a
// PipelineState that the submission layer reads through Snapshot when it
// builds pipelines and encodes the draw.
package halhost

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/shadergen"
)

// MaxStreams is the number of vertex streams a declaration may use.
const MaxStreams = 16

// ErrConstantRange is returned for constant uploads outside the register file.
var ErrConstantRange = errors.New("halhost: constant register out of range")

var (
	_ host.Device          = (*Device)(nil)
	_ host.PrimitiveSetter = (*Device)(nil)
)

// Device adapts a hal.Device to host.Device. It is safe for concurrent use.
type Device struct {
	dev hal.Device

	mu        sync.Mutex
	state     PipelineState
	constants [shadergen.RegisterCount]f32.Vec4
	dirty     bool
}

// New wraps dev.
func New(dev hal.Device) *Device {
	d := &Device{dev: dev}
	d.state.reset()
	return d
}

// FromProvider wraps the HAL device of an application device provider.
// The provider must implement HalDevice() any returning a hal.Device.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("halhost: provider does not expose HAL types")
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("halhost: provider HalDevice is not hal.Device")
	}
	info := provider.AdapterInfo()
	slogger().Info("halhost: using provider device", "adapter", info.Name, "type", info.Type)
	return New(dev), nil
}

// HAL returns the wrapped device.
func (d *Device) HAL() hal.Device { return d.dev }

type buffer struct {
	buf    hal.Buffer
	size   int
	mapped bool
}

func (b *buffer) Size() int { return b.size }

// Buffer returns the HAL buffer behind a vertex buffer created by d.
func Buffer(vb host.VertexBuffer) hal.Buffer {
	if b, ok := vb.(*buffer); ok {
		return b.buf
	}
	return nil
}

func (d *Device) CreateVertexBuffer(size int) (host.VertexBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("halhost: invalid vertex buffer size %d", size)
	}
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "nv2a vertex stream",
		Size:  uint64(size),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageMapWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("halhost: create vertex buffer: %w", err)
	}
	return &buffer{buf: buf, size: size}, nil
}

func (d *Device) DestroyVertexBuffer(vb host.VertexBuffer) {
	b, ok := vb.(*buffer)
	if !ok || b.buf == nil {
		return
	}
	if b.mapped {
		_ = d.dev.UnmapBuffer(b.buf)
	}
	d.mu.Lock()
	for i := range d.state.Streams {
		if d.state.Streams[i].Buffer == b.buf {
			d.state.Streams[i] = StreamBinding{}
		}
	}
	d.mu.Unlock()
	d.dev.DestroyBuffer(b.buf)
	b.buf = nil
}

func (d *Device) Lock(vb host.VertexBuffer) ([]byte, error) {
	b, ok := vb.(*buffer)
	if !ok || b.buf == nil {
		return nil, fmt.Errorf("halhost: lock of foreign or destroyed buffer")
	}
	m, err := d.dev.MapBuffer(b.buf, 0, uint64(b.size))
	if err != nil {
		return nil, fmt.Errorf("halhost: map vertex buffer: %w", err)
	}
	b.mapped = true
	return unsafe.Slice((*byte)(m.Ptr), b.size), nil
}

func (d *Device) Unlock(vb host.VertexBuffer) error {
	b, ok := vb.(*buffer)
	if !ok || !b.mapped {
		return fmt.Errorf("halhost: unlock of unmapped buffer")
	}
	b.mapped = false
	return d.dev.UnmapBuffer(b.buf)
}

type shader struct {
	label  string
	module hal.ShaderModule
}

func (s *shader) Label() string { return s.label }

// ShaderModule returns the HAL module behind a vertex shader created by d.
func ShaderModule(vs host.VertexShader) hal.ShaderModule {
	if s, ok := vs.(*shader); ok {
		return s.module
	}
	return nil
}

func (d *Device) CreateVertexShader(code *host.ShaderCode) (host.VertexShader, error) {
	if code.Empty() {
		return nil, fmt.Errorf("halhost: empty shader code")
	}
	m, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  code.Label,
		Source: hal.ShaderSource{WGSL: code.WGSL, SPIRV: code.SPIRV},
	})
	if err != nil {
		return nil, fmt.Errorf("halhost: create shader module %s: %w", code.Label, err)
	}
	return &shader{label: code.Label, module: m}, nil
}

func (d *Device) DestroyVertexShader(vs host.VertexShader) {
	s, ok := vs.(*shader)
	if !ok || s.module == nil {
		return
	}
	d.mu.Lock()
	if d.state.Shader == s.module {
		d.state.Shader = nil
	}
	d.mu.Unlock()
	d.dev.DestroyShaderModule(s.module)
	s.module = nil
}

func (d *Device) SetStreamSource(stream int, vb host.VertexBuffer, offset, stride int) error {
	if stream < 0 || stream >= MaxStreams {
		return fmt.Errorf("halhost: stream %d out of range", stream)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if vb == nil {
		d.state.Streams[stream] = StreamBinding{}
		return nil
	}
	b, ok := vb.(*buffer)
	if !ok {
		return fmt.Errorf("halhost: foreign vertex buffer on stream %d", stream)
	}
	d.state.Streams[stream] = StreamBinding{Buffer: b.buf, Offset: uint64(offset), Stride: uint64(stride)}
	return nil
}

func (d *Device) SetVertexDeclaration(vd host.VertexDeclaration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if vd == nil {
		d.state.Layouts = nil
		return nil
	}
	v, ok := vd.(*declaration)
	if !ok {
		return fmt.Errorf("halhost: foreign vertex declaration")
	}
	d.state.Layouts = v.layouts
	return nil
}

func (d *Device) SetVertexShader(vs host.VertexShader) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Shader = ShaderModule(vs)
	return nil
}

func (d *Device) SetVertexShaderConstantF(register int, data []f32.Vec4) error {
	if register < 0 || register+len(data) > len(d.constants) {
		return fmt.Errorf("%w: %d+%d", ErrConstantRange, register, len(data))
	}
	d.mu.Lock()
	copy(d.constants[register:], data)
	d.dirty = true
	d.mu.Unlock()
	return nil
}

// Constants copies the constant register file into dst and reports whether
// it changed since the previous call.
func (d *Device) Constants(dst *[shadergen.RegisterCount]f32.Vec4) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	*dst = d.constants
	changed := d.dirty
	d.dirty = false
	return changed
}

func (d *Device) SetPrimitiveType(p host.PrimitiveType) {
	t, ok := p.Topology()
	if !ok {
		slogger().Warn("halhost: primitive type has no topology", "type", p)
		return
	}
	d.mu.Lock()
	d.state.Primitive.Topology = t
	d.mu.Unlock()
}

// floatState reads a float render state value.
func floatState(v uint32) float32 { return math.Float32frombits(v) }
