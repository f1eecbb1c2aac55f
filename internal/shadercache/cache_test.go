package shadercache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/host/hosttest"
	"github.com/gogpu/nv2a/internal/vsh"
)

// function returns a header-prefixed program of n "mov r<i>, v0" tokens.
func function(n int) []uint32 {
	words := []uint32{vsh.Header{Type: 'x', Version: vsh.VersionXVS, NumInst: uint8(n)}.Word()}
	for i := 0; i < n; i++ {
		var t vsh.Token
		t.Set(vsh.FieldMAC, uint32(vsh.MACMov))
		t.Set(vsh.FieldOutR, uint32(i))
		t.Set(vsh.FieldOutMACMask, uint32(vsh.MaskXYZW))
		t.Set(vsh.FieldOutMux, 1)
		t.Set(vsh.FieldAMux, uint32(vsh.ParamV))
		if i == n-1 {
			t.Set(vsh.FieldFinal, 1)
		}
		words = append(words, t[:]...)
	}
	return words
}

type fakeCompiler struct {
	calls atomic.Int32
	gate  chan struct{}
	err   error
}

func (f *fakeCompiler) compile(label string, s *vsh.Shader) (*host.ShaderCode, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return &host.ShaderCode{Label: label, WGSL: "// " + label}, nil
}

func TestCreateShaderIsIdempotent(t *testing.T) {
	fc := &fakeCompiler{gate: make(chan struct{})}
	c := New(fc.compile, 2)
	fn := function(3)

	k1, size, err := c.CreateShader(fn)
	if err != nil {
		t.Fatalf("CreateShader: %v", err)
	}
	if want := 4 + 3*16; size != want {
		t.Errorf("size = %d, want %d", size, want)
	}
	// Trailing words beyond the function do not change the key.
	k2, _, err := c.CreateShader(append(append([]uint32(nil), fn...), 0xDEAD, 0xBEEF))
	if err != nil {
		t.Fatalf("CreateShader: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("keys differ: %v, %v", k1, k2)
	}
	if got := c.Refs(k1); got != 2 {
		t.Errorf("Refs = %d, want 2", got)
	}
	close(fc.gate)
	c.GetShader(k1)
	if got := c.Stats().CompileTasks; got != 1 {
		t.Errorf("CompileTasks = %d, want 1", got)
	}
	if got := fc.calls.Load(); got != 1 {
		t.Errorf("compile calls = %d, want 1", got)
	}
}

func TestDistinctFunctionsGetDistinctKeys(t *testing.T) {
	c := New((&fakeCompiler{}).compile, 1)
	k1, _, _ := c.CreateShader(function(1))
	k2, _, _ := c.CreateShader(function(2))
	if k1 == k2 {
		t.Fatal("different functions share a key")
	}
	if got := c.Stats().Entries; got != 2 {
		t.Errorf("Entries = %d, want 2", got)
	}
}

func TestGetShaderInstantiatesOnce(t *testing.T) {
	dev := hosttest.New()
	c := New((&fakeCompiler{}).compile, 1)
	c.ResetDevice(dev)

	key, _, err := c.CreateShader(function(2))
	if err != nil {
		t.Fatalf("CreateShader: %v", err)
	}
	vs := c.GetShader(key)
	if vs == nil {
		t.Fatal("GetShader returned nil")
	}
	if again := c.GetShader(key); again != vs {
		t.Error("second GetShader returned a different object")
	}
	if len(dev.Shaders) != 1 {
		t.Errorf("created %d host shaders, want 1", len(dev.Shaders))
	}
	if vs.Label() != key.String() {
		t.Errorf("label = %q, want %q", vs.Label(), key.String())
	}
}

func TestGetShaderConcurrentWaiters(t *testing.T) {
	dev := hosttest.New()
	fc := &fakeCompiler{gate: make(chan struct{})}
	c := New(fc.compile, 1)
	c.ResetDevice(dev)
	key, _, _ := c.CreateShader(function(1))

	var wg sync.WaitGroup
	got := make([]host.VertexShader, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.GetShader(key)
		}(i)
	}
	close(fc.gate)
	wg.Wait()

	for i := range got {
		if got[i] == nil || got[i] != got[0] {
			t.Fatalf("waiter %d got %v, want the shared shader", i, got[i])
		}
	}
	if dev.LiveShaders() != 1 {
		t.Errorf("live shaders = %d, want 1", dev.LiveShaders())
	}
}

func TestGetShaderWithoutDevice(t *testing.T) {
	c := New((&fakeCompiler{}).compile, 1)
	key, _, _ := c.CreateShader(function(1))
	if vs := c.GetShader(key); vs != nil {
		t.Errorf("GetShader without device = %v, want nil", vs)
	}
}

func TestGetShaderCompileFailure(t *testing.T) {
	dev := hosttest.New()
	c := New((&fakeCompiler{err: errors.New("boom")}).compile, 1)
	c.ResetDevice(dev)
	key, _, _ := c.CreateShader(function(1))
	if vs := c.GetShader(key); vs != nil {
		t.Errorf("GetShader after failed compile = %v, want nil", vs)
	}
	if len(dev.Shaders) != 0 {
		t.Error("host shader created for a failed compile")
	}
}

func TestUnsupportedShaderIsReadyAndNil(t *testing.T) {
	fc := &fakeCompiler{}
	c := New(fc.compile, 1)
	c.ResetDevice(hosttest.New())

	fn := function(1)
	h := vsh.ParseHeader(fn[0])
	h.Version = vsh.VersionXVSW
	fn[0] = h.Word()

	key, _, err := c.CreateShader(fn)
	if err != nil {
		t.Fatalf("CreateShader: %v", err)
	}
	if vs := c.GetShader(key); vs != nil {
		t.Errorf("GetShader = %v, want nil", vs)
	}
	if fc.calls.Load() != 0 {
		t.Error("unsupported shader was compiled")
	}
}

func TestReleaseShader(t *testing.T) {
	dev := hosttest.New()
	c := New((&fakeCompiler{}).compile, 1)
	c.ResetDevice(dev)

	fn := function(2)
	key, _, _ := c.CreateShader(fn)
	c.CreateShader(fn)
	c.GetShader(key)

	c.ReleaseShader(key)
	if dev.LiveShaders() != 1 || c.Refs(key) != 1 {
		t.Fatalf("first release destroyed the shader (live %d, refs %d)", dev.LiveShaders(), c.Refs(key))
	}
	c.ReleaseShader(key)
	if dev.LiveShaders() != 0 {
		t.Error("last release left the host shader alive")
	}
	if c.Stats().Entries != 0 {
		t.Error("entry survived its last release")
	}

	// Unknown keys are a logged no-op.
	c.ReleaseShader(key)
}

func TestReleaseWaitsForPendingCompile(t *testing.T) {
	fc := &fakeCompiler{gate: make(chan struct{})}
	c := New(fc.compile, 1)
	key, _, _ := c.CreateShader(function(1))

	done := make(chan struct{})
	go func() {
		c.ReleaseShader(key)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("release returned before the compile finished")
	default:
	}
	close(fc.gate)
	<-done
	if fc.calls.Load() != 1 {
		t.Errorf("compile calls = %d, want 1", fc.calls.Load())
	}
}

func TestResetDeviceKeepsEntries(t *testing.T) {
	first, second := hosttest.New(), hosttest.New()
	c := New((&fakeCompiler{}).compile, 1)
	c.ResetDevice(first)
	k1, _, _ := c.CreateShader(function(1))
	c.GetShader(k1)

	c.ResetDevice(second)
	k2, _, _ := c.CreateShader(function(2))
	c.GetShader(k2)

	if len(first.Shaders) != 1 || len(second.Shaders) != 1 {
		t.Fatalf("shaders per device = %d, %d; want 1, 1", len(first.Shaders), len(second.Shaders))
	}
	if c.GetShader(k1) == nil {
		t.Error("entry lost after device reset")
	}

	c.ReleaseShader(k1)
	if first.LiveShaders() != 0 {
		t.Error("shader not destroyed on the device that created it")
	}
}

func TestCreateShaderEmpty(t *testing.T) {
	c := New((&fakeCompiler{}).compile, 1)
	if _, _, err := c.CreateShader(nil); !errors.Is(err, ErrEmptyFunction) {
		t.Errorf("err = %v, want ErrEmptyFunction", err)
	}
}
