package halhost

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/nv2a/host"
)

// StreamLayout is the vertex buffer layout of one stream.
type StreamLayout struct {
	Stream int
	gputypes.VertexBufferLayout
}

type declaration struct {
	elements []host.VertexElement
	layouts  []StreamLayout
}

func (d *declaration) Elements() []host.VertexElement { return d.elements }

// Layouts returns the per-stream layouts of a declaration created by a
// Device.
func Layouts(vd host.VertexDeclaration) []StreamLayout {
	if d, ok := vd.(*declaration); ok {
		return d.layouts
	}
	return nil
}

// fixedFunction reports whether elements use fixed-function usages.
// Programmable declarations only carry TEXCOORD usages indexed by input
// register.
func fixedFunction(elements []host.VertexElement) bool {
	return slices.ContainsFunc(elements, func(e host.VertexElement) bool {
		return e.Method == host.MethodDefault && e.Usage != host.UsageTexCoord
	})
}

func (d *Device) CreateVertexDeclaration(elements []host.VertexElement) (host.VertexDeclaration, error) {
	ff := fixedFunction(elements)
	byStream := make(map[int]*StreamLayout)
	for _, e := range elements {
		loc := e.Location(ff)
		if loc < 0 {
			// Tessellator generated.
			continue
		}
		if int(e.Stream) >= MaxStreams {
			return nil, fmt.Errorf("halhost: element %v: stream out of range", e)
		}
		format := e.Type.Format()
		if format == gputypes.VertexFormatUndefined {
			return nil, fmt.Errorf("halhost: element %v: no vertex format", e)
		}
		l, ok := byStream[int(e.Stream)]
		if !ok {
			l = &StreamLayout{Stream: int(e.Stream)}
			l.StepMode = gputypes.VertexStepModeVertex
			byStream[int(e.Stream)] = l
		}
		l.Attributes = append(l.Attributes, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(e.Offset),
			ShaderLocation: uint32(loc),
		})
		l.ArrayStride = max(l.ArrayStride, uint64(e.Offset)+format.Size())
	}

	layouts := make([]StreamLayout, 0, len(byStream))
	for _, l := range byStream {
		slices.SortFunc(l.Attributes, func(a, b gputypes.VertexAttribute) int {
			return cmp.Compare(a.Offset, b.Offset)
		})
		layouts = append(layouts, *l)
	}
	slices.SortFunc(layouts, func(a, b StreamLayout) int { return cmp.Compare(a.Stream, b.Stream) })

	slogger().Debug("halhost: vertex declaration", "elements", len(elements), "streams", len(layouts), "fixedFunction", ff)
	return &declaration{elements: slices.Clone(elements), layouts: layouts}, nil
}

func (d *Device) DestroyVertexDeclaration(vd host.VertexDeclaration) {
	v, ok := vd.(*declaration)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.state.Layouts) > 0 && len(v.layouts) > 0 && &d.state.Layouts[0] == &v.layouts[0] {
		d.state.Layouts = nil
	}
}
