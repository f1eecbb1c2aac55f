package shadergen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/vsh"
)

// Target is a host shading language.
type Target uint8

// Shader targets.
const (
	TargetSPIRV Target = iota
	TargetWGSL
	TargetHLSL
	TargetGLSL
	TargetMSL
)

var targetNames = [...]string{"spirv", "wgsl", "hlsl", "glsl", "msl"}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", uint8(t))
}

// ParseTarget parses a target name as printed by Target.String.
func ParseTarget(s string) (Target, error) {
	for i, n := range targetNames {
		if strings.EqualFold(s, n) {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("shadergen: unknown target %q", s)
}

// ErrHostTarget is returned when a text-only target is used to build a host
// shader artifact.
var ErrHostTarget = errors.New("shadergen: target cannot be consumed by the host device")

// Compiler builds host shader artifacts from generated WGSL.
// It implements host.Compiler.
type Compiler struct {
	target Target
	opts   naga.CompileOptions
}

var _ host.Compiler = (*Compiler)(nil)

// NewCompiler returns a compiler for target, which must be TargetSPIRV or
// TargetWGSL.
func NewCompiler(target Target) *Compiler {
	return &Compiler{target: target, opts: naga.DefaultOptions()}
}

// Target returns the compiler target.
func (c *Compiler) Target() Target { return c.target }

// Compile validates source and converts it into a host artifact.
func (c *Compiler) Compile(label, source string) (*host.ShaderCode, error) {
	switch c.target {
	case TargetSPIRV:
		spirv, err := naga.CompileWithOptions(source, c.opts)
		if err != nil {
			return nil, fmt.Errorf("shadergen: compile %s: %w", label, err)
		}
		return &host.ShaderCode{Label: label, SPIRV: spirvWords(spirv)}, nil
	case TargetWGSL:
		if _, err := lower(source); err != nil {
			return nil, fmt.Errorf("shadergen: compile %s: %w", label, err)
		}
		return &host.ShaderCode{Label: label, WGSL: source}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrHostTarget, c.target)
}

// CompileShader generates and compiles s.
func (c *Compiler) CompileShader(label string, s *vsh.Shader) (*host.ShaderCode, error) {
	source, err := Generate(s)
	if err != nil {
		return nil, err
	}
	return c.Compile(label, source)
}

// Translate converts WGSL source into target. SPIR-V is returned as
// little-endian words, every other target as source text.
func Translate(source string, target Target) ([]byte, error) {
	switch target {
	case TargetWGSL:
		if _, err := lower(source); err != nil {
			return nil, err
		}
		return []byte(source), nil
	case TargetSPIRV:
		return naga.Compile(source)
	}

	module, err := lower(source)
	if err != nil {
		return nil, err
	}
	var out string
	switch target {
	case TargetHLSL:
		out, _, err = hlsl.Compile(module, hlsl.DefaultOptions())
	case TargetGLSL:
		out, _, err = glsl.Compile(module, glsl.DefaultOptions())
	case TargetMSL:
		out, _, err = msl.Compile(module, msl.DefaultOptions())
	default:
		return nil, fmt.Errorf("shadergen: unknown target %s", target)
	}
	if err != nil {
		return nil, fmt.Errorf("shadergen: %s backend: %w", target, err)
	}
	return []byte(out), nil
}

// lower parses, lowers and validates WGSL source.
func lower(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", &verrs[0])
	}
	return module, nil
}

// spirvWords converts SPIR-V bytes into little-endian 32-bit words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
