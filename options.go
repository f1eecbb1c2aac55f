package nv2a

import (
	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/decl"
	"github.com/gogpu/nv2a/internal/renderstate"
	"github.com/gogpu/nv2a/internal/shadercache"
	"github.com/gogpu/nv2a/internal/shadergen"
)

// Default configuration values.
const (
	DefaultLibVersion           = 5849
	DefaultPatchCacheSize       = 2000
	DefaultPatchCacheElasticity = 200
)

// Option configures a Translator during creation.
// Use functional options to customize Translator behavior.
//
// Example:
//
//	// Translator bound to a host device, reading render state from
//	// emulated memory:
//	t, err := nv2a.New(
//	    nv2a.WithDevice(dev),
//	    nv2a.WithSymbols(syms),
//	    nv2a.WithMemory(mem),
//	)
type Option func(*options)

// options holds optional configuration for Translator creation.
type options struct {
	device      host.Device
	version     uint32
	symbols     Symbols
	memory      Memory
	cacheSize   int
	elasticity  int
	caps        Caps
	target      ShaderTarget
	concurrency int
	compile     CompileFunc
}

// defaultOptions returns the default translator options.
func defaultOptions() options {
	return options{
		version:    DefaultLibVersion,
		cacheSize:  DefaultPatchCacheSize,
		elasticity: DefaultPatchCacheElasticity,
		caps:       decl.DefaultCaps,
		target:     shadergen.TargetSPIRV,
	}
}

// WithDevice sets the initial host device. Without one, PrepareDraw fails
// until ResetDevice binds a device.
func WithDevice(d host.Device) Option {
	return func(o *options) {
		o.device = d
	}
}

// WithLibVersion sets the build number of the legacy runtime library. It
// selects which render states exist and where they are stored.
func WithLibVersion(v uint32) Option {
	return func(o *options) {
		o.version = v
	}
}

// WithSymbols sets the symbol table the render-state block is located with.
// Render states are only converted when both symbols and memory are set.
func WithSymbols(s Symbols) Option {
	return func(o *options) {
		o.symbols = s
	}
}

// WithMemory sets the emulated memory the render-state block is read from.
func WithMemory(m Memory) Option {
	return func(o *options) {
		o.memory = m
	}
}

// WithPatchCacheSize bounds the patched stream cache. The cache holds up to
// maxSize streams and is pruned back to maxSize once it grows past
// maxSize+elasticity.
func WithPatchCacheSize(maxSize, elasticity int) Option {
	return func(o *options) {
		o.cacheSize = maxSize
		o.elasticity = elasticity
	}
}

// WithHostCaps declares which packed vertex formats the host reads natively.
// Elements in unsupported formats are patched to floats.
func WithHostCaps(c Caps) Option {
	return func(o *options) {
		o.caps = c
	}
}

// WithShaderTarget selects the artifact generated vertex programs are
// compiled to. The host device must consume SPIR-V (the default) or WGSL.
func WithShaderTarget(t ShaderTarget) Option {
	return func(o *options) {
		o.target = t
	}
}

// WithCompileConcurrency bounds the number of shader compiles running at
// once. Non-positive values select GOMAXPROCS.
func WithCompileConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithCompiler replaces the shader compile function. It takes precedence
// over WithShaderTarget.
func WithCompiler(f CompileFunc) Option {
	return func(o *options) {
		o.compile = f
	}
}

// Aliases for configuration types declared by internal packages.
type (
	// Symbols resolves kernel symbols to addresses.
	Symbols = renderstate.Symbols
	// Memory is emulated memory holding the legacy render-state block.
	Memory = renderstate.Memory
	// SymbolTable is a Symbols backed by a map.
	SymbolTable = renderstate.SymbolTable
	// Caps lists host vertex format support.
	Caps = decl.Caps
	// ShaderTarget is the output of shader compilation.
	ShaderTarget = shadergen.Target
	// CompileFunc compiles a decoded vertex program.
	CompileFunc = shadercache.CompileFunc
)

// Shader compile targets.
const (
	TargetSPIRV = shadergen.TargetSPIRV
	TargetWGSL  = shadergen.TargetWGSL
)
