// Package shadergen translates decoded legacy vertex programs into host
// shaders.
//
// Generate emits a WGSL vertex entry point that runs the intermediate
// instructions one by one on vec4 registers. Compiler hands that source to
// naga and returns SPIR-V words (or the WGSL itself) for the host device.
// Translate exposes the remaining naga back ends (HLSL, GLSL, MSL) for
// offline tooling.
//
// Constant registers follow the layout in layout.go. The caller owns the
// uniform buffer and fills the default, flag and viewport registers.
package shadergen
