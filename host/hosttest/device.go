// Package hosttest provides an in-memory host.Device that records every call.
package hosttest

import (
	"errors"
	"sync"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/nv2a/host"
)

// ErrInjected is returned by calls configured to fail.
var ErrInjected = errors.New("hosttest: injected failure")

// Buffer is a CPU-backed vertex buffer.
type Buffer struct {
	Data      []byte
	Locked    bool
	Destroyed bool
}

func (b *Buffer) Size() int { return len(b.Data) }

// Declaration records the elements it was created with.
type Declaration struct {
	elements  []host.VertexElement
	Destroyed bool
}

func (d *Declaration) Elements() []host.VertexElement { return d.elements }

// Shader records the artifact it was created from.
type Shader struct {
	Code      *host.ShaderCode
	Destroyed bool
}

func (s *Shader) Label() string { return s.Code.Label }

// Stream is a bound stream source.
type Stream struct {
	Buffer host.VertexBuffer
	Offset int
	Stride int
}

// StateCall is one SetRenderState call.
type StateCall struct {
	State host.RenderState
	Value uint32
}

// Device is a recording host.Device. The Fail fields make the matching
// calls return ErrInjected.
type Device struct {
	mu sync.Mutex

	FailBuffers   bool
	FailConstants bool
	FailStates    bool
	FailShaders   bool

	Buffers      []*Buffer
	Declarations []*Declaration
	Shaders      []*Shader

	Streams     map[int]Stream
	Declaration host.VertexDeclaration
	Shader      host.VertexShader
	Constants   map[int]f32.Vec4
	StateCalls  []StateCall
}

var _ host.Device = (*Device)(nil)

// New returns an empty recording device.
func New() *Device {
	return &Device{
		Streams:   make(map[int]Stream),
		Constants: make(map[int]f32.Vec4),
	}
}

func (d *Device) CreateVertexBuffer(size int) (host.VertexBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailBuffers {
		return nil, ErrInjected
	}
	b := &Buffer{Data: make([]byte, size)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) DestroyVertexBuffer(buf host.VertexBuffer) {
	if b, ok := buf.(*Buffer); ok {
		b.Destroyed = true
	}
}

func (d *Device) Lock(buf host.VertexBuffer) ([]byte, error) {
	b, ok := buf.(*Buffer)
	if !ok || b.Destroyed {
		return nil, ErrInjected
	}
	b.Locked = true
	return b.Data, nil
}

func (d *Device) Unlock(buf host.VertexBuffer) error {
	b, ok := buf.(*Buffer)
	if !ok || !b.Locked {
		return ErrInjected
	}
	b.Locked = false
	return nil
}

func (d *Device) CreateVertexDeclaration(elements []host.VertexElement) (host.VertexDeclaration, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	decl := &Declaration{elements: append([]host.VertexElement(nil), elements...)}
	d.Declarations = append(d.Declarations, decl)
	return decl, nil
}

func (d *Device) DestroyVertexDeclaration(decl host.VertexDeclaration) {
	if v, ok := decl.(*Declaration); ok {
		v.Destroyed = true
	}
}

func (d *Device) CreateVertexShader(code *host.ShaderCode) (host.VertexShader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailShaders {
		return nil, ErrInjected
	}
	s := &Shader{Code: code}
	d.Shaders = append(d.Shaders, s)
	return s, nil
}

func (d *Device) DestroyVertexShader(vs host.VertexShader) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := vs.(*Shader); ok {
		s.Destroyed = true
	}
}

func (d *Device) SetStreamSource(stream int, buf host.VertexBuffer, offset, stride int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if buf == nil {
		delete(d.Streams, stream)
		return nil
	}
	d.Streams[stream] = Stream{Buffer: buf, Offset: offset, Stride: stride}
	return nil
}

func (d *Device) SetVertexDeclaration(decl host.VertexDeclaration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Declaration = decl
	return nil
}

func (d *Device) SetVertexShader(vs host.VertexShader) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Shader = vs
	return nil
}

func (d *Device) SetVertexShaderConstantF(register int, data []f32.Vec4) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailConstants {
		return ErrInjected
	}
	for i, v := range data {
		d.Constants[register+i] = v
	}
	return nil
}

func (d *Device) SetRenderState(state host.RenderState, value uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailStates {
		return ErrInjected
	}
	d.StateCalls = append(d.StateCalls, StateCall{State: state, Value: value})
	return nil
}

// CallsFor returns the values set for state, in call order.
func (d *Device) CallsFor(state host.RenderState) []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []uint32
	for _, c := range d.StateCalls {
		if c.State == state {
			out = append(out, c.Value)
		}
	}
	return out
}

// LiveShaders returns the number of created and not destroyed shaders.
func (d *Device) LiveShaders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.Shaders {
		if !s.Destroyed {
			n++
		}
	}
	return n
}
