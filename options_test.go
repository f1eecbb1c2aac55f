package nv2a

import (
	"testing"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/host/hosttest"
	"github.com/gogpu/nv2a/internal/decl"
	"github.com/gogpu/nv2a/internal/shadergen"
	"github.com/gogpu/nv2a/internal/vsh"
)

// TestDefaultOptions tests the configuration used without options.
func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.version != DefaultLibVersion {
		t.Errorf("version = %d, want %d", o.version, DefaultLibVersion)
	}
	if o.cacheSize != DefaultPatchCacheSize || o.elasticity != DefaultPatchCacheElasticity {
		t.Errorf("patch cache = %d+%d, want %d+%d",
			o.cacheSize, o.elasticity, DefaultPatchCacheSize, DefaultPatchCacheElasticity)
	}
	if o.caps != decl.DefaultCaps {
		t.Errorf("caps = %+v, want %+v", o.caps, decl.DefaultCaps)
	}
	if o.target != shadergen.TargetSPIRV {
		t.Errorf("target = %v, want spirv", o.target)
	}
	if o.device != nil || o.compile != nil || o.symbols != nil || o.memory != nil {
		t.Error("default options carry collaborators")
	}
}

// TestOptionsApply tests that every option reaches the options struct.
func TestOptionsApply(t *testing.T) {
	dev := hosttest.New()
	syms := SymbolTable{}
	called := false
	compile := func(string, *vsh.Shader) (*host.ShaderCode, error) {
		called = true
		return nil, nil
	}

	o := defaultOptions()
	for _, opt := range []Option{
		WithDevice(dev),
		WithLibVersion(4627),
		WithSymbols(syms),
		WithPatchCacheSize(16, 4),
		WithHostCaps(Caps{}),
		WithShaderTarget(TargetWGSL),
		WithCompileConcurrency(3),
		WithCompiler(compile),
	} {
		opt(&o)
	}

	if o.device != dev {
		t.Error("WithDevice not applied")
	}
	if o.version != 4627 {
		t.Errorf("version = %d, want 4627", o.version)
	}
	if o.symbols == nil {
		t.Error("WithSymbols not applied")
	}
	if o.cacheSize != 16 || o.elasticity != 4 {
		t.Errorf("patch cache = %d+%d, want 16+4", o.cacheSize, o.elasticity)
	}
	if o.caps != (Caps{}) {
		t.Errorf("caps = %+v, want none", o.caps)
	}
	if o.target != TargetWGSL || o.concurrency != 3 {
		t.Errorf("target %v concurrency %d", o.target, o.concurrency)
	}
	if o.compile == nil {
		t.Fatal("WithCompiler not applied")
	}
	_, _ = o.compile("", nil)
	if !called {
		t.Error("WithCompiler stored a different function")
	}
}

// TestNewWithHostCaps tests that host caps decide which elements are
// patched.
func TestNewWithHostCaps(t *testing.T) {
	var f AttributeFormat
	f.Slots[0] = Slot{Format: decl.TypeNormShort3}

	for _, tt := range []struct {
		name   string
		caps   Caps
		stride int
	}{
		{"native short4n", decl.DefaultCaps, 8},
		{"float fallback", Caps{}, 12},
	} {
		t.Run(tt.name, func(t *testing.T) {
			tr, dev, _ := newTestTranslator(t, WithHostCaps(tt.caps))
			h, err := tr.CreateVertexShader(f, nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := tr.SetVertexShader(h); err != nil {
				t.Fatal(err)
			}
			tr.SetStreamSource(0, make([]byte, 6), 6)
			if err := tr.PrepareDraw(&DrawContext{PrimitiveType: PointList, VertexCount: 1}); err != nil {
				t.Fatalf("PrepareDraw: %v", err)
			}
			if got := dev.Streams[0].Stride; got != tt.stride {
				t.Errorf("host stride = %d, want %d", got, tt.stride)
			}
		})
	}
}
