package nv2a

import (
	"fmt"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/decl"
	"github.com/gogpu/nv2a/internal/shadercache"
)

// Handle is a legacy vertex shader handle. Even values are FVF bitmasks,
// odd values name shaders created with CreateVertexShader.
type Handle uint32

// IsFVF reports whether h is an FVF bitmask.
func (h Handle) IsFVF() bool { return decl.IsFVF(uint32(h)) }

// vertexShader is the per-handle state: the attribute format, the
// recompiled declaration and its host object, and the key of the function
// given at creation.
type vertexShader struct {
	handle Handle
	format decl.AttributeFormat

	key    shadercache.Key
	hasKey bool

	decl     *decl.Declaration
	hostDecl host.VertexDeclaration
}

func (vs *vertexShader) declaration(caps decl.Caps) *decl.Declaration {
	if vs.decl == nil {
		vs.decl = decl.Recompile(&vs.format, caps)
	}
	return vs.decl
}

func (vs *vertexShader) hostDeclaration(d host.Device) (host.VertexDeclaration, error) {
	if vs.hostDecl != nil {
		return vs.hostDecl, nil
	}
	hd, err := d.CreateVertexDeclaration(vs.decl.Elements)
	if err != nil {
		return nil, fmt.Errorf("%w: handle %#x: %v", ErrDeclaration, uint32(vs.handle), err)
	}
	Logger().Info("nv2a: created vertex declaration", "handle", vs.handle,
		"elements", len(vs.decl.Elements), "patched", vs.decl.NeedsPatch())
	vs.hostDecl = hd
	return hd, nil
}

func (vs *vertexShader) releaseDeclaration(d host.Device) {
	if vs.hostDecl != nil && d != nil {
		d.DestroyVertexDeclaration(vs.hostDecl)
	}
	vs.hostDecl = nil
}

// program is the vertex program selected from program memory.
type program struct {
	selected bool
	address  int
	// dirty is set when program memory or the start address changed.
	dirty bool
	key   shadercache.Key
	valid bool
}

// CreateVertexShader creates a vertex shader handle reading vertices in
// format. A non-empty function is decoded and compiled in the background;
// an empty one leaves the handle on the fixed-function path.
func (t *Translator) CreateVertexShader(format AttributeFormat, function []uint32) (Handle, error) {
	vs := &vertexShader{format: format}
	if len(function) > 0 {
		key, _, err := t.shaders.CreateShader(function)
		if err != nil {
			return 0, fmt.Errorf("nv2a: create vertex shader: %w", err)
		}
		vs.key, vs.hasKey = key, true
	}

	vs.handle = t.next
	t.next += 2
	t.handles[vs.handle] = vs
	return vs.handle, nil
}

// DeleteVertexShader releases h, its host declaration and its shader.
func (t *Translator) DeleteVertexShader(h Handle) {
	if h.IsFVF() {
		Logger().Warn("nv2a: delete of an FVF handle", "fvf", uint32(h))
		return
	}
	vs, ok := t.handles[h]
	if !ok {
		Logger().Warn("nv2a: delete of unknown vertex shader", "handle", uint32(h))
		return
	}
	delete(t.handles, h)
	vs.releaseDeclaration(t.device)
	if vs.hasKey {
		t.shaders.ReleaseShader(vs.key)
	}
	if t.active == vs {
		t.active = nil
	}
}

func (t *Translator) lookup(h Handle) (*vertexShader, error) {
	if vs, ok := t.handles[h]; ok {
		return vs, nil
	}
	if !h.IsFVF() {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownHandle, uint32(h))
	}
	vs := &vertexShader{handle: h, format: decl.FromFVF(uint32(h))}
	t.handles[h] = vs
	return vs, nil
}

// SetVertexShader selects h for later draws. FVF handles select the
// fixed-function path; created handles run the function they were created
// with.
func (t *Translator) SetVertexShader(h Handle) error {
	vs, err := t.lookup(h)
	if err != nil {
		return err
	}
	t.active = vs
	t.program.selected = false
	return nil
}

// SelectVertexShader runs the program in program memory starting at
// address, reading vertices in the format of h. A zero h keeps the current
// format.
func (t *Translator) SelectVertexShader(h Handle, address int) error {
	if h != 0 {
		vs, err := t.lookup(h)
		if err != nil {
			return err
		}
		t.active = vs
	}
	t.program.selected = true
	t.program.address = address
	t.program.dirty = true
	return nil
}

// LoadVertexShaderProgram writes a header-prefixed function into program
// memory at address.
func (t *Translator) LoadVertexShaderProgram(function []uint32, address int) {
	if t.slots.LoadProgram(function, address) {
		t.program.dirty = true
	}
}

// LoadVertexShader executes a push-buffer program upload: instructions are
// written to program memory from address onward and uploaded constants go
// to the constant registers.
func (t *Translator) LoadVertexShader(pushBuffer []uint32, address int) {
	t.slots.LoadPushBuffer(pushBuffer, address, t.uploadWords)
	t.program.dirty = true
}

// shader returns the host shader the next draw runs, nil for the
// fixed-function path.
func (t *Translator) shader(vs *vertexShader) host.VertexShader {
	if t.program.selected {
		if t.program.dirty {
			t.compileProgram()
		}
		if !t.program.valid {
			return nil
		}
		return t.shaders.GetShader(t.program.key)
	}
	if vs.hasKey {
		return t.shaders.GetShader(vs.key)
	}
	return nil
}

// compileProgram registers the program at the selected address with the
// shader cache. The new reference is taken before the old one is dropped,
// so an unchanged program keeps its host shader.
func (t *Translator) compileProgram() {
	t.program.dirty = false
	prev, hadPrev := t.program.key, t.program.valid
	t.program.valid = false

	words := t.slots.From(t.program.address)
	if words != nil {
		key, _, err := t.shaders.CreateShader(words)
		if err != nil {
			Logger().Warn("nv2a: vertex program rejected", "address", t.program.address, "err", err)
		} else {
			t.program.key, t.program.valid = key, true
			Logger().Debug("nv2a: vertex program selected", "address", t.program.address, "key", key)
		}
	}
	if hadPrev {
		t.shaders.ReleaseShader(prev)
	}
}

// ShaderKey returns the shader cache key of h, false when h runs no
// function.
func (t *Translator) ShaderKey(h Handle) (uint64, bool) {
	vs, ok := t.handles[h]
	if !ok || !vs.hasKey {
		return 0, false
	}
	return uint64(vs.key), true
}

// ProgramSlots returns program memory from address onward.
func (t *Translator) ProgramSlots(address int) []uint32 {
	return t.slots.From(address)
}
