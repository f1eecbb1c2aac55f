package nv2a

import (
	"github.com/gogpu/nv2a/internal/decl"
	"github.com/gogpu/nv2a/internal/ffstate"
	"github.com/gogpu/nv2a/internal/renderstate"
	"github.com/gogpu/nv2a/internal/stream"
)

// Draw and vertex format types.
type (
	// DrawContext describes one legacy draw and receives its host form.
	DrawContext = stream.DrawContext
	// PrimitiveType is a legacy primitive type.
	PrimitiveType = stream.PrimitiveType
	// Texture describes a bound texture for coordinate normalization.
	Texture = stream.Texture
	// AttributeFormat is a legacy vertex attribute format.
	AttributeFormat = decl.AttributeFormat
	// Slot is the format of one legacy input register.
	Slot = decl.Slot
	// DataType is a legacy vertex element type.
	DataType = decl.DataType
	// Light is a fixed-function light.
	Light = ffstate.Light
	// RenderState is a legacy render state.
	RenderState = renderstate.State
)

// Legacy primitive types.
const (
	PointList     = stream.PointList
	LineList      = stream.LineList
	LineLoop      = stream.LineLoop
	LineStrip     = stream.LineStrip
	TriangleList  = stream.TriangleList
	TriangleStrip = stream.TriangleStrip
	TriangleFan   = stream.TriangleFan
	QuadList      = stream.QuadList
	QuadStrip     = stream.QuadStrip
	Polygon       = stream.Polygon
)

// Wireframe modes.
const (
	WireFrameOff   = renderstate.WireFrameOff
	WireFrameLines = renderstate.WireFrameLines
	WireFramePoint = renderstate.WireFramePoint
)

// LinearTexture returns a linear texture from a packed legacy size word.
func LinearTexture(size uint32) Texture { return stream.LinearTexture(size) }

// FromFVF converts an FVF bitmask into a fixed-function attribute format.
func FromFVF(fvf uint32) AttributeFormat { return decl.FromFVF(fvf) }
