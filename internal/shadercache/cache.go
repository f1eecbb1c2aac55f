// Package shadercache owns host vertex shaders created from legacy vertex
// program functions.
package shadercache

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/shadergen"
	"github.com/gogpu/nv2a/internal/vsh"
)

// Key identifies a legacy function by content.
type Key uint64

func (k Key) String() string { return fmt.Sprintf("vs-%016x", uint64(k)) }

// CompileFunc turns a decoded program into a host shader artifact.
// It runs on a background goroutine.
type CompileFunc func(label string, s *vsh.Shader) (*host.ShaderCode, error)

// ErrEmptyFunction is returned by CreateShader for an empty function.
var ErrEmptyFunction = errors.New("shadercache: empty vertex shader function")

type state uint8

const (
	statePending state = iota
	stateReady
	stateReleased
)

// entry is one cached shader. refs is guarded by Cache.mu, everything else
// by entry.mu.
type entry struct {
	refs int

	mu     sync.Mutex
	state  state
	size   int
	typ    vsh.ShaderType
	result <-chan singleflight.Result
	shader host.VertexShader
	device host.Device
}

// Cache maps legacy function content to lazily created host shaders.
//
// CreateShader decodes and classifies a function and starts compiling it in
// the background. GetShader waits for that compile the first time a shader
// is needed and instantiates the host object on the current device.
// Identical functions share one entry and one compile.
//
// Thread Safety:
// Cache is safe for concurrent use. The map and reference counts share one
// mutex; waiting on a compile or creating a host object only holds the
// entry's own mutex.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	device  host.Device

	group   singleflight.Group
	sem     *semaphore.Weighted
	compile CompileFunc

	tasks atomic.Uint64
}

// New creates a cache that compiles with compile, running at most
// concurrency compiles at once. A nil compile selects the SPIR-V compiler,
// a non-positive concurrency selects GOMAXPROCS.
func New(compile CompileFunc, concurrency int) *Cache {
	if compile == nil {
		compile = shadergen.NewCompiler(shadergen.TargetSPIRV).CompileShader
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Cache{
		entries: make(map[Key]*entry),
		sem:     semaphore.NewWeighted(int64(concurrency)),
		compile: compile,
	}
}

// KeyOf returns the key of function bytes. The byte length seeds the hash,
// so functions of different sizes never share a key.
func KeyOf(function []byte) Key {
	return Key(xxh3.HashSeed(function, uint64(len(function))))
}

// CreateShader registers the function in words and returns its key and its
// size in bytes. Creating a function that is already cached adds a
// reference to the existing entry.
func (c *Cache) CreateShader(words []uint32) (Key, int, error) {
	if len(words) == 0 {
		return 0, 0, ErrEmptyFunction
	}
	s, size, err := vsh.Parse(words)
	if err != nil {
		return 0, 0, fmt.Errorf("shadercache: decode: %w", err)
	}
	n := min(size/4, len(words))
	key := KeyOf(vsh.WordsToBytes(words[:n]))

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.refs++
		slogger().Debug("shadercache: reusing shader", "key", key, "refs", e.refs)
		return key, size, nil
	}

	e := &entry{refs: 1, size: size, typ: vsh.Classify(s)}
	if e.typ == vsh.ShaderCompilable {
		e.state = statePending
		e.result = c.launch(key, s)
	} else {
		slogger().Warn("shadercache: shader will not be compiled", "key", key, "type", e.typ)
		e.state = stateReady
	}
	c.entries[key] = e
	return key, size, nil
}

func (c *Cache) launch(key Key, s *vsh.Shader) <-chan singleflight.Result {
	label := key.String()
	return c.group.DoChan(label, func() (any, error) {
		c.tasks.Add(1)
		// Background is never cancelled, Acquire only fails on cancellation.
		_ = c.sem.Acquire(context.Background(), 1)
		defer c.sem.Release(1)
		return c.compile(label, s)
	})
}

// GetShader returns the host shader for key, waiting for its compile the
// first time. It returns nil for unknown keys, shaders that were not
// compiled, failed compiles and when no device is bound.
func (c *Cache) GetShader(key Key) host.VertexShader {
	c.mu.Lock()
	e, ok := c.entries[key]
	device := c.device
	c.mu.Unlock()
	if !ok {
		slogger().Warn("shadercache: unknown shader key", "key", key)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != statePending {
		return e.shader
	}

	res := <-e.result
	e.result = nil
	e.state = stateReady
	if res.Err != nil {
		slogger().Error("shadercache: compile failed", "key", key, "err", res.Err)
		return nil
	}
	code, _ := res.Val.(*host.ShaderCode)
	if code.Empty() {
		slogger().Error("shadercache: compile produced no code", "key", key)
		return nil
	}
	if device == nil {
		slogger().Warn("shadercache: no device bound, shader abandoned", "key", key)
		return nil
	}
	vs, err := device.CreateVertexShader(code)
	if err != nil {
		slogger().Error("shadercache: create vertex shader failed", "key", key, "err", err)
		return nil
	}
	e.shader = vs
	e.device = device
	return vs
}

// ReleaseShader drops one reference to key. The last reference destroys
// the host shader, waiting for a compile still in flight.
func (c *Cache) ReleaseShader(key Key) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		slogger().Warn("shadercache: release of unknown shader key", "key", key)
		return
	}
	e.refs--
	if e.refs > 0 {
		c.mu.Unlock()
		return
	}
	delete(c.entries, key)
	c.mu.Unlock()

	e.release()
}

func (e *entry) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == statePending {
		<-e.result
		e.result = nil
	}
	if e.shader != nil && e.device != nil {
		e.device.DestroyVertexShader(e.shader)
	}
	e.shader = nil
	e.state = stateReleased
}

// ResetDevice binds the device used by later GetShader calls. Shaders
// already instantiated stay bound to the device that created them.
func (c *Cache) ResetDevice(d host.Device) {
	c.mu.Lock()
	c.device = d
	c.mu.Unlock()
}

// Purge releases every entry regardless of references.
func (c *Cache) Purge() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[Key]*entry)
	c.mu.Unlock()

	for _, e := range entries {
		e.release()
	}
}

// Refs returns the reference count of key, zero when absent.
func (c *Cache) Refs(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Stats describes the cache.
type Stats struct {
	Entries int
	Pending int
	// CompileTasks counts compiles started since creation.
	CompileTasks uint64
}

// Stats returns a snapshot of cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	s := Stats{Entries: len(entries), CompileTasks: c.tasks.Load()}
	for _, e := range entries {
		if e.mu.TryLock() {
			if e.state == statePending {
				s.Pending++
			}
			e.mu.Unlock()
		} else {
			// Held by a waiter, so still compiling or instantiating.
			s.Pending++
		}
	}
	return s
}
