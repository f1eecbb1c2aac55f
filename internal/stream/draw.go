package stream

import (
	"errors"
	"fmt"

	"github.com/gogpu/nv2a/host"
)

// Errors returned by Converter.Apply. They end the draw.
var (
	ErrUnknownPrimitive  = errors.New("stream: unknown primitive type")
	ErrBufferAllocation  = errors.New("stream: vertex buffer allocation failed")
	ErrStreamSource      = errors.New("stream: set stream source failed")
	ErrStreamZeroPatched = errors.New("stream: stream-zero draw with more than one stream")
)

// PrimitiveType is a legacy primitive type.
type PrimitiveType uint8

// Legacy primitive types.
const (
	PrimitiveNone PrimitiveType = iota
	PointList
	LineList
	LineLoop
	LineStrip
	TriangleList
	TriangleStrip
	TriangleFan
	QuadList
	QuadStrip
	Polygon
)

var primitiveNames = [...]string{
	PrimitiveNone: "NONE",
	PointList:     "POINTLIST",
	LineList:      "LINELIST",
	LineLoop:      "LINELOOP",
	LineStrip:     "LINESTRIP",
	TriangleList:  "TRIANGLELIST",
	TriangleStrip: "TRIANGLESTRIP",
	TriangleFan:   "TRIANGLEFAN",
	QuadList:      "QUADLIST",
	QuadStrip:     "QUADSTRIP",
	Polygon:       "POLYGON",
}

func (p PrimitiveType) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("PrimitiveType(%d)", uint8(p))
}

// Valid reports whether p is a drawable primitive type.
func (p PrimitiveType) Valid() bool { return p >= PointList && p <= Polygon }

// Host returns the host primitive type p is drawn as. Line loops are drawn
// as strips, quad strips as triangle strips, polygons as fans and quad
// lists as triangle lists over expanded indices.
func (p PrimitiveType) Host() host.PrimitiveType {
	switch p {
	case PointList:
		return host.PrimitivePointList
	case LineList:
		return host.PrimitiveLineList
	case LineLoop, LineStrip:
		return host.PrimitiveLineStrip
	case TriangleList, QuadList:
		return host.PrimitiveTriangleList
	case TriangleStrip, QuadStrip:
		return host.PrimitiveTriangleStrip
	case TriangleFan, Polygon:
		return host.PrimitiveTriangleFan
	}
	return host.PrimitiveUnknown
}

// primitiveInfo holds the vertex divisor and leading vertex count of each
// primitive type. Quad strips and polygons are counted as the host
// primitive they are drawn as.
var primitiveInfo = [...]struct{ divisor, offset int }{
	PrimitiveNone: {0, 0},
	PointList:     {1, 0},
	LineList:      {2, 0},
	LineLoop:      {1, 1},
	LineStrip:     {1, 1},
	TriangleList:  {3, 0},
	TriangleStrip: {1, 2},
	TriangleFan:   {1, 2},
	QuadList:      {4, 0},
	QuadStrip:     {1, 2},
	Polygon:       {1, 2},
}

// PrimitiveCount returns the number of host primitives drawn for
// vertexCount legacy vertices. Each quad becomes two triangles.
func PrimitiveCount(p PrimitiveType, vertexCount int) int {
	if !p.Valid() {
		return 0
	}
	info := primitiveInfo[p]
	n := (vertexCount - info.offset) / info.divisor
	if n < 0 {
		return 0
	}
	if p == QuadList {
		n *= 2
	}
	return n
}

// DrawContext carries one draw call through the converter.
type DrawContext struct {
	PrimitiveType PrimitiveType
	VertexCount   int
	// StartVertex is the first vertex of a non-indexed draw.
	StartVertex int

	// Indexed draws.
	IndexData       []uint16
	BaseVertexIndex int
	LowIndex        uint16
	// HighIndex is the highest index used, zero when unknown.
	HighIndex uint16

	// StreamZeroData is set for draws from client memory.
	StreamZeroData   []byte
	StreamZeroStride int

	// Outputs.
	VerticesInBuffer     int
	HostStreamZeroData   []byte
	HostStreamZeroStride int
	HostPrimitiveType    host.PrimitiveType
	HostPrimitiveCount   int
}

// IsStreamZero reports whether the draw reads client memory.
func (d *DrawContext) IsStreamZero() bool { return d.StreamZeroData != nil }

// countVertices sets VerticesInBuffer, the number of vertices a draw can
// reach in its buffers.
func (d *DrawContext) countVertices() {
	d.VerticesInBuffer = d.StartVertex + d.VertexCount
	if d.IndexData == nil {
		return
	}
	if d.HighIndex == 0 {
		slogger().Warn("stream: indexed draw without high index, walking indices")
		d.LowIndex, d.HighIndex = WalkIndices(d.IndexData, d.VertexCount)
	}
	d.VerticesInBuffer = max(d.VerticesInBuffer, d.BaseVertexIndex+int(d.HighIndex)+1)
}

// WalkIndices returns the lowest and highest of the first count indices.
func WalkIndices(indices []uint16, count int) (low, high uint16) {
	count = min(count, len(indices))
	if count == 0 {
		return 0, 0
	}
	low, high = indices[0], indices[0]
	for _, i := range indices[1:count] {
		low = min(low, i)
		high = max(high, i)
	}
	return low, high
}
