package nv2a

import (
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/nv2a/internal/decl"
	"github.com/gogpu/nv2a/internal/shadergen"
)

// Legacy constant registers c[-96]..c[95] live at host registers 0..191.
const (
	ConstantBias  = 96
	ConstantCount = 192
)

const flagRegisters = shadergen.RegisterViewportScale - shadergen.RegisterAbsent

// upload stores data at host register reg and sends it to the device.
// Host failures are logged and otherwise ignored.
func (t *Translator) upload(reg int, data []f32.Vec4) {
	copy(t.constants[reg:], data)
	if t.device == nil {
		return
	}
	if err := t.device.SetVertexShaderConstantF(reg, data); err != nil {
		Logger().Warn("nv2a: constant upload failed", "register", reg, "count", len(data), "err", err)
	}
}

// clampRange trims data to the host registers [lo, hi).
func clampRange(reg int, data []f32.Vec4, lo, hi int) (int, []f32.Vec4) {
	if reg < lo || reg+len(data) > hi {
		Logger().Warn("nv2a: constant registers out of range",
			"register", reg-ConstantBias, "count", len(data))
	}
	if reg < lo {
		skip := min(lo-reg, len(data))
		data = data[skip:]
		reg = lo
	}
	if reg+len(data) > hi {
		data = data[:max(hi-reg, 0)]
	}
	return reg, data
}

// SetVertexShaderConstant sets legacy constants starting at register, which
// ranges over -96..95. Registers outside that range are logged and dropped.
func (t *Translator) SetVertexShaderConstant(register int, data []f32.Vec4) {
	reg, data := clampRange(register+ConstantBias, data, 0, ConstantCount)
	if len(data) == 0 {
		return
	}
	t.upload(reg, data)
}

// VertexShaderConstant returns legacy constant register.
func (t *Translator) VertexShaderConstant(register int) (f32.Vec4, bool) {
	reg := register + ConstantBias
	if reg < 0 || reg >= ConstantCount {
		return f32.Vec4{}, false
	}
	return t.constants[reg], true
}

// uploadWords receives constants uploaded through the push buffer. reg is
// already a host register.
func (t *Translator) uploadWords(reg int, words []uint32) {
	data := make([]f32.Vec4, len(words)/4)
	for i := range data {
		for k := range 4 {
			data[i][k] = math.Float32frombits(words[4*i+k])
		}
	}
	reg, data = clampRange(reg, data, 0, ConstantCount)
	if len(data) > 0 {
		t.upload(reg, data)
	}
}

// SetVertexData4f sets the value input register reads while no stream
// feeds it.
func (t *Translator) SetVertexData4f(register int, v f32.Vec4) {
	if register < 0 || register >= decl.NumRegisters {
		Logger().Warn("nv2a: vertex data register out of range", "register", register)
		return
	}
	t.upload(shadergen.RegisterDefaults+register, []f32.Vec4{v})
}

// SetViewport sets the transform generated shaders use to map the legacy
// screen space position back to clip space: clip = (pos - offset) / scale.
func (t *Translator) SetViewport(scale, offset f32.Vec4) {
	t.upload(shadergen.RegisterViewportScale, []f32.Vec4{scale, offset})
}

// inputFlags computes the absent and swizzle flag registers for vs.
func inputFlags(vs *vertexShader) [flagRegisters]f32.Vec4 {
	var flags [flagRegisters]f32.Vec4
	for i := 0; i < decl.NumRegisters; i++ {
		if !vs.decl.Present[i] {
			r, c := shadergen.FlagRegister(0, i)
			flags[r][c] = 1
			continue
		}
		if vs.format.Slots[i].Format == decl.TypeD3DColor {
			r, c := shadergen.FlagRegister(shadergen.RegisterSwizzle-shadergen.RegisterAbsent, i)
			flags[r][c] = 1
		}
	}
	return flags
}

// uploadFlags sends the flag registers of vs when they differ from the
// registers last uploaded.
func (t *Translator) uploadFlags(vs *vertexShader) {
	flags := inputFlags(vs)
	cur := t.constants[shadergen.RegisterAbsent : shadergen.RegisterAbsent+flagRegisters]
	if t.flagsUploaded && [flagRegisters]f32.Vec4(cur) == flags {
		return
	}
	t.flagsUploaded = true
	t.upload(shadergen.RegisterAbsent, flags[:])
}
