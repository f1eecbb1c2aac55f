package stream

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/zeebo/xxh3"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/cache"
	"github.com/gogpu/nv2a/internal/decl"
)

// Stream and texture stage limits of the legacy pipeline.
const (
	MaxStreams    = 16
	TextureStages = 4
)

// Source is a legacy vertex buffer bound to a stream.
type Source struct {
	Data   []byte
	Stride int
}

// Texture describes the texture bound to a stage, as far as coordinate
// normalization needs it.
type Texture struct {
	// Linear textures are addressed in texels rather than 0..1.
	Linear bool
	Width  int
	Height int
	Depth  int
}

// LinearTexture returns a linear texture from a packed legacy size word:
// width-1 in bits 0-11, height-1 in bits 12-23.
func LinearTexture(size uint32) Texture {
	return Texture{
		Linear: true,
		Width:  int(size&0xFFF) + 1,
		Height: int(size>>12&0xFFF) + 1,
		Depth:  1,
	}
}

// State is the legacy pipeline state a draw reads its vertices through.
type State struct {
	// Declaration is the recompiled active format, nil when unknown.
	Declaration *decl.Declaration
	// Format is the active legacy format. Texture coordinates are only
	// normalized for fixed-function formats.
	Format   *decl.AttributeFormat
	Sources  [MaxStreams]Source
	Textures [TextureStages]Texture
}

// patched is one patch cache entry.
type patched struct {
	primitive    PrimitiveType
	dataHash     uint64
	formatHash   uint64
	legacySize   int
	legacyStride int
	hostStride   int
	streamZero   bool

	data   []byte
	buffer host.VertexBuffer
	device host.Device
}

func (p *patched) matches(formatHash uint64, legacySize, legacyStride, hostStride int, streamZero bool) bool {
	return p.formatHash == formatHash &&
		p.hostStride == hostStride &&
		p.legacyStride == legacyStride &&
		p.legacySize == legacySize &&
		p.streamZero == streamZero
}

func (p *patched) activate(ctx *DrawContext, stream int) error {
	if p.streamZero {
		ctx.HostStreamZeroData = p.data
		ctx.HostStreamZeroStride = p.hostStride
		return nil
	}
	if err := p.device.SetStreamSource(stream, p.buffer, 0, p.hostStride); err != nil {
		return fmt.Errorf("%w: stream %d: %v", ErrStreamSource, stream, err)
	}
	return nil
}

func (p *patched) release() {
	if p.buffer != nil && p.device != nil {
		p.device.DestroyVertexBuffer(p.buffer)
	}
	p.buffer = nil
	p.data = nil
}

// Converter materializes legacy vertex streams as host streams.
//
// Streams that need element conversion or texture coordinate normalization,
// and every stream read from a bound legacy buffer, are converted into
// host memory once and cached by the hash of their legacy bytes. A cached
// stream is reused only when the conversion, strides and size also match.
//
// Host buffers of replaced or evicted streams may still be bound for the
// draw being prepared. They are destroyed at the start of the next Apply.
//
// Apply runs on the draw thread. Stats may be called from any goroutine.
type Converter struct {
	device  host.Device
	cache   *cache.Elastic[uint64, *patched]
	hash    func([]byte) uint64
	retired []*patched

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewConverter creates a converter whose patch cache holds maxSize streams
// and prunes once it exceeds maxSize+elasticity.
func NewConverter(device host.Device, maxSize, elasticity int) *Converter {
	c := &Converter{device: device, hash: xxh3.Hash}
	c.cache = cache.NewElastic[uint64, *patched](maxSize, elasticity, func(_ uint64, p *patched) {
		c.retired = append(c.retired, p)
	})
	return c
}

// ResetDevice binds a new host device. Cached host buffers belong to the
// previous device and are released.
func (c *Converter) ResetDevice(device host.Device) {
	c.Purge()
	c.device = device
}

// Purge releases every cached stream.
func (c *Converter) Purge() {
	c.cache.Purge()
	c.releaseRetired()
}

func (c *Converter) releaseRetired() {
	for i, p := range c.retired {
		p.release()
		c.retired[i] = nil
	}
	c.retired = c.retired[:0]
}

// Apply converts and binds every stream the draw reads, then fills the
// host outputs of ctx.
func (c *Converter) Apply(ctx *DrawContext, st *State) error {
	if !ctx.PrimitiveType.Valid() {
		return fmt.Errorf("%w: %#x", ErrUnknownPrimitive, uint8(ctx.PrimitiveType))
	}
	c.releaseRetired()
	ctx.countVertices()

	n := c.streamCount(ctx, st)
	for i := 0; i < n; i++ {
		if err := c.convertStream(ctx, st, i); err != nil {
			return err
		}
	}

	ctx.HostPrimitiveType = ctx.PrimitiveType.Host()
	ctx.HostPrimitiveCount = PrimitiveCount(ctx.PrimitiveType, ctx.VertexCount)
	if ctx.PrimitiveType == Polygon {
		slogger().Warn("stream: polygon drawn as triangle fan")
	}
	return nil
}

func (c *Converter) streamCount(ctx *DrawContext, st *State) int {
	if ctx.IsStreamZero() {
		return 1
	}
	n := 0
	if d := st.Declaration; d != nil && d.NeedsPatch() {
		for _, s := range d.Streams {
			n = max(n, s.Index+1)
		}
	} else {
		for i, s := range st.Sources {
			if s.Data != nil {
				n = i + 1
			}
		}
	}
	if n > MaxStreams {
		slogger().Warn("stream: stream count exceeds maximum", "count", n)
		n = MaxStreams
	}
	return n
}

func (c *Converter) convertStream(ctx *DrawContext, st *State, index int) error {
	var info *decl.Stream
	if st.Declaration != nil {
		info = st.Declaration.Stream(index)
	}
	needPatch := info != nil && info.NeedPatch

	var (
		src          []byte
		legacyStride int
		streamZero   = ctx.IsStreamZero()
		needCopy     = needPatch
	)
	if streamZero {
		if index != 0 {
			return ErrStreamZeroPatched
		}
		src, legacyStride = ctx.StreamZeroData, ctx.StreamZeroStride
	} else {
		s := st.Sources[index]
		if s.Data == nil {
			if c.device != nil {
				if err := c.device.SetStreamSource(index, nil, 0, 0); err != nil {
					slogger().Warn("stream: unbind stream failed", "stream", index, "err", err)
				}
			}
			return nil
		}
		src, legacyStride = s.Data, s.Stride
		// Legacy memory is not host visible, so it is always copied.
		needCopy = true
	}

	count := ctx.VerticesInBuffer
	if legacyStride > 0 && count*legacyStride > len(src) {
		slogger().Warn("stream: vertex data shorter than draw", "stream", index,
			"vertices", count, "available", len(src)/legacyStride)
		count = len(src) / legacyStride
	}
	hostStride := legacyStride
	if needPatch {
		hostStride = info.HostStride
	}
	scales := fitScales(normalization(st, info), hostStride, index)
	if len(scales) > 0 {
		needCopy = true
	}

	if streamZero && !needCopy {
		ctx.HostStreamZeroData = src
		ctx.HostStreamZeroStride = hostStride
		return nil
	}

	legacySize := count * legacyStride
	data := src[:legacySize]
	dataHash := c.hash(data)
	formatHash := conversionHash(info, scales)

	old, ok := c.cache.Get(dataHash)
	if ok && old.matches(formatHash, legacySize, legacyStride, hostStride, streamZero) {
		c.hits.Add(1)
		slogger().Debug("stream: patch cache hit", "stream", index, "hash", dataHash)
		return old.activate(ctx, index)
	}
	c.misses.Add(1)

	p := &patched{
		primitive:    ctx.PrimitiveType,
		dataHash:     dataHash,
		formatHash:   formatHash,
		legacySize:   legacySize,
		legacyStride: legacyStride,
		hostStride:   hostStride,
		streamZero:   streamZero,
	}
	hostSize := count * hostStride

	var out []byte
	if streamZero {
		out = make([]byte, hostSize)
		p.data = out
	} else {
		if c.device == nil {
			return fmt.Errorf("%w: no device", ErrBufferAllocation)
		}
		buf, err := c.device.CreateVertexBuffer(max(hostSize, 4))
		if err != nil {
			return fmt.Errorf("%w: %d bytes: %v", ErrBufferAllocation, hostSize, err)
		}
		out, err = c.device.Lock(buf)
		if err != nil {
			c.device.DestroyVertexBuffer(buf)
			return fmt.Errorf("%w: lock: %v", ErrBufferAllocation, err)
		}
		p.buffer, p.device = buf, c.device
	}

	if needPatch {
		patchVertices(out, data, legacyStride, info, count)
	} else {
		copy(out, data)
	}
	normalize(out, hostStride, count, scales)

	if p.buffer != nil {
		if err := c.device.Unlock(p.buffer); err != nil {
			p.release()
			return fmt.Errorf("%w: unlock: %v", ErrBufferAllocation, err)
		}
	}

	if ok {
		// The old copy may be bound to an earlier stream of this draw.
		c.cache.Remove(dataHash)
		c.retired = append(c.retired, old)
	}
	c.cache.Add(dataHash, p)
	return p.activate(ctx, index)
}

// texScale divides the n float coordinates at offset by div.
type texScale struct {
	offset int
	n      int
	div    [3]float32
}

func normalization(st *State, info *decl.Stream) []texScale {
	if st.Format == nil || !st.Format.FixedFunction || info == nil {
		return nil
	}
	var scales []texScale
	for stage, tex := range st.Textures {
		if !tex.Linear {
			continue
		}
		n := st.Format.TexCoordCount(stage)
		if n == 0 {
			continue
		}
		if n > 3 {
			slogger().Warn("stream: cannot normalize 4D texture coordinates", "stage", stage)
			continue
		}
		el := findElement(info, decl.RegTexCoord0+stage)
		if el == nil || el.HostType > host.DeclFloat4 {
			continue
		}
		sc := texScale{offset: el.HostOffset, n: n, div: [3]float32{
			divisor(tex.Width), divisor(tex.Height), divisor(tex.Depth),
		}}
		scales = append(scales, sc)
	}
	return scales
}

// fitScales drops scales that reach past the end of a vertex. A zero stride
// shares one vertex between all draws and is never normalized.
func fitScales(scales []texScale, stride, stream int) []texScale {
	if len(scales) == 0 {
		return nil
	}
	if stride == 0 {
		slogger().Warn("stream: texture coordinates of a zero stride stream not normalized", "stream", stream)
		return nil
	}
	fit := scales[:0]
	for _, sc := range scales {
		if sc.offset+4*sc.n > stride {
			slogger().Warn("stream: texture coordinates outside vertex not normalized",
				"stream", stream, "offset", sc.offset, "stride", stride)
			continue
		}
		fit = append(fit, sc)
	}
	return fit
}

func findElement(s *decl.Stream, register int) *decl.Element {
	for i := range s.Elements {
		if s.Elements[i].Register == register {
			return &s.Elements[i]
		}
	}
	return nil
}

func divisor(n int) float32 {
	if n <= 0 {
		return 1
	}
	return float32(n)
}

func normalize(out []byte, stride, count int, scales []texScale) {
	for v := 0; v < count; v++ {
		vertex := out[v*stride:]
		for _, sc := range scales {
			for k := 0; k < sc.n; k++ {
				b := vertex[sc.offset+4*k:]
				f := math.Float32frombits(le.Uint32(b)) / sc.div[k]
				le.PutUint32(b, math.Float32bits(f))
			}
		}
	}
}

// conversionHash identifies the conversion of a stream, including the
// texture sizes its coordinates are normalized by.
func conversionHash(info *decl.Stream, scales []texScale) uint64 {
	var format uint64
	if info != nil {
		format = info.FormatHash
	}
	if len(scales) == 0 {
		return format
	}
	h := xxh3.New()
	var buf [20]byte
	le.PutUint64(buf[:], format)
	_, _ = h.Write(buf[:8])
	for _, sc := range scales {
		le.PutUint32(buf[0:], uint32(sc.offset))
		le.PutUint32(buf[4:], uint32(sc.n))
		for k, d := range sc.div {
			le.PutUint32(buf[8+4*k:], math.Float32bits(d))
		}
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Stats describes the patch cache.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
}

// Stats returns patch cache statistics.
func (c *Converter) Stats() Stats {
	cs := c.cache.Stats()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: cs.Evictions,
		Len:       cs.Len,
	}
}
