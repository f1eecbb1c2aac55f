package stream

import (
	"testing"

	"github.com/gogpu/nv2a/host/hosttest"
	"github.com/gogpu/nv2a/internal/decl"
)

func benchState(vertices int) *State {
	var f decl.AttributeFormat
	f.Slots[0] = decl.Slot{Format: decl.TypeFloat3}
	f.Slots[2] = decl.Slot{Format: decl.TypeNormPacked3, Offset: 12}
	f.Slots[9] = decl.Slot{Format: decl.TypeNormShort2, Offset: 16}
	st := &State{Declaration: decl.Recompile(&f, decl.Caps{})}
	data := make([]byte, vertices*20)
	for i := range data {
		data[i] = byte(i * 31)
	}
	st.Sources[0] = Source{Data: data, Stride: 20}
	return st
}

func BenchmarkPatchVertices(b *testing.B) {
	st := benchState(1024)
	info := st.Declaration.Stream(0)
	out := make([]byte, 1024*info.HostStride)

	b.SetBytes(int64(len(st.Sources[0].Data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		patchVertices(out, st.Sources[0].Data, 20, info, 1024)
	}
}

func BenchmarkApplyCacheHit(b *testing.B) {
	st := benchState(1024)
	c := NewConverter(hosttest.New(), 16, 4)
	ctx := &DrawContext{PrimitiveType: TriangleList, VertexCount: 1023}
	if err := c.Apply(ctx, st); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Apply(ctx, st)
	}
}
