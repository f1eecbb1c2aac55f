package host

import (
	"errors"

	"golang.org/x/image/math/f32"
)

// ErrDeviceLost is returned by devices that can no longer create resources.
var ErrDeviceLost = errors.New("host: device lost")

// VertexBuffer is a host vertex buffer that can be locked for CPU writes.
type VertexBuffer interface {
	// Size returns the buffer size in bytes.
	Size() int
}

// VertexDeclaration is a host input-layout object.
type VertexDeclaration interface {
	// Elements returns the element list the declaration was created from.
	Elements() []VertexElement
}

// VertexShader is an instantiated host vertex shader object.
type VertexShader interface {
	// Label returns the debug label given at creation.
	Label() string
}

// ShaderCode is a compiled host shader artifact.
// Exactly one of WGSL or SPIRV is set.
type ShaderCode struct {
	Label string
	WGSL  string
	SPIRV []uint32
}

// Empty reports whether the artifact carries no code.
func (c *ShaderCode) Empty() bool {
	return c == nil || (c.WGSL == "" && len(c.SPIRV) == 0)
}

// Compiler turns generated WGSL source into a host shader artifact.
type Compiler interface {
	Compile(label, wgsl string) (*ShaderCode, error)
}

// Device is the subset of a host rendering device used by the translator.
//
// Creation failures for buffers and declarations are fatal to the draw that
// needed them. Failures of SetVertexShaderConstantF and SetRenderState are
// logged by the caller and otherwise ignored.
type Device interface {
	CreateVertexBuffer(size int) (VertexBuffer, error)
	DestroyVertexBuffer(buf VertexBuffer)

	// Lock maps the whole buffer for writing. The returned slice is valid
	// until Unlock.
	Lock(buf VertexBuffer) ([]byte, error)
	Unlock(buf VertexBuffer) error

	CreateVertexDeclaration(elements []VertexElement) (VertexDeclaration, error)
	DestroyVertexDeclaration(decl VertexDeclaration)

	CreateVertexShader(code *ShaderCode) (VertexShader, error)
	DestroyVertexShader(vs VertexShader)

	// SetStreamSource binds buf to the given stream. A nil buf unbinds it.
	SetStreamSource(stream int, buf VertexBuffer, offset, stride int) error
	SetVertexDeclaration(decl VertexDeclaration) error

	// SetVertexShader binds vs. A nil vs selects the fixed-function path.
	SetVertexShader(vs VertexShader) error

	// SetVertexShaderConstantF uploads consecutive vec4 registers starting
	// at register.
	SetVertexShaderConstantF(register int, data []f32.Vec4) error

	SetRenderState(state RenderState, value uint32) error
}

// PrimitiveSetter is implemented by devices that track the topology of the
// next draw.
type PrimitiveSetter interface {
	SetPrimitiveType(p PrimitiveType)
}
