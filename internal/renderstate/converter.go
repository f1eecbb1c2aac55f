package renderstate

import (
	"errors"
	"sync/atomic"

	"github.com/gogpu/nv2a/host"
)

// ErrSymbolNotFound is returned by New when the deferred render-state
// block cannot be located.
var ErrSymbolNotFound = errors.New("renderstate: deferred render state symbol not found")

// Wireframe override modes for SetWireFrameMode.
const (
	WireFrameOff   = 0
	WireFrameLines = 1
	WireFramePoint = 2
)

// sentinel marks a baseline entry that matches no stored value.
const sentinel = -1

// Converter mirrors the legacy render-state block into host render states.
//
// The legacy runtime keeps its states in one packed array of words whose
// layout depends on the runtime version. Apply reads the block, converts
// the states that changed since the previous Apply and sets them on the
// host device.
//
// A Converter is driven from the draw thread. PresentationInterval may be
// read from any goroutine.
type Converter struct {
	version uint32
	mem     Memory
	base    uint32

	offsets  [stateCount]int
	previous [stateCount]int64

	wireframe            int
	presentationInterval atomic.Uint32
}

// New locates the render-state block of a runtime of the given version
// and snapshots its current values.
func New(version uint32, syms Symbols, mem Memory) (*Converter, error) {
	deferred, ok := syms.Lookup(SymbolDeferredRenderState)
	if !ok {
		return nil, ErrSymbolNotFound
	}
	c := &Converter{version: version, mem: mem}

	deferred = c.verifyDeferred(deferred, syms)
	c.base = deferred - 4*uint32(count(PSFirst, DeferredFirst, version))
	c.buildOffsets()
	c.storeInitialValues()
	return c, nil
}

// verifyDeferred checks the deferred address against the CULLMODE symbol
// and returns the corrected address.
func (c *Converter) verifyDeferred(deferred uint32, syms Symbols) uint32 {
	cull, ok := syms.Lookup(SymbolCullMode)
	if !ok {
		slogger().Warn("renderstate: CULLMODE symbol not found, deferred address unverified")
		return deferred
	}
	idx := uint32(count(DeferredFirst, CullMode, c.version))
	if deferred+4*idx == cull {
		return deferred
	}
	fixed := cull - 4*idx
	slogger().Warn("renderstate: deferred render state address incorrect",
		"symbol", deferred, "corrected", fixed)
	return fixed
}

func (c *Converter) buildOffsets() {
	n := 0
	for s := PSFirst; s <= Last; s++ {
		if table[s].minVersion <= c.version {
			c.offsets[s] = n
			slogger().Debug("renderstate: mapped", "state", s, "offset", n)
			n++
			continue
		}
		c.offsets[s] = -1
		slogger().Debug("renderstate: not present", "state", s)
	}
	slogger().Info("renderstate: table built", "version", c.version, "states", n, "base", c.base)
}

func (c *Converter) storeInitialValues() {
	for s := PSFirst; s <= Last; s++ {
		if c.offsets[s] >= 0 {
			c.previous[s] = int64(c.read(s))
		} else {
			c.previous[s] = sentinel
		}
	}
}

// Version returns the runtime version the table was built for.
func (c *Converter) Version() uint32 { return c.version }

// Base returns the address of the first stored state.
func (c *Converter) Base() uint32 { return c.base }

// Present reports whether s is stored by the active runtime version.
func (c *Converter) Present(s State) bool {
	return s < stateCount && c.offsets[s] >= 0
}

// Offset returns the word index of s within the block.
func (c *Converter) Offset(s State) (int, bool) {
	if !c.Present(s) {
		return 0, false
	}
	return c.offsets[s], true
}

func (c *Converter) addr(s State) uint32 { return c.base + 4*uint32(c.offsets[s]) }
func (c *Converter) read(s State) uint32 { return c.mem.ReadUint32(c.addr(s)) }

// Get returns the stored value of s.
func (c *Converter) Get(s State) (uint32, bool) {
	if !c.Present(s) {
		slogger().Warn("renderstate: read of state absent in this version", "state", s, "version", c.version)
		return 0, false
	}
	return c.read(s), true
}

// Set stores v as the value of s. It reports false, and stores nothing,
// when s is absent in this version.
func (c *Converter) Set(s State, v uint32) bool {
	if !c.Present(s) {
		slogger().Warn("renderstate: write of state absent in this version", "state", s, "version", c.version)
		return false
	}
	c.mem.WriteUint32(c.addr(s), v)
	return true
}

// PixelShaderAddress returns the address of the pixel shader states.
func (c *Converter) PixelShaderAddress() uint32 {
	return c.base + 4*uint32(c.offsets[PSFirst])
}

// SetDirty forces every state to be applied again.
func (c *Converter) SetDirty() {
	for i := range c.previous {
		c.previous[i] = sentinel
	}
}

// SetWireFrameMode overrides the fill mode with one of the WireFrame
// modes. WireFrameOff restores the legacy fill mode.
func (c *Converter) SetWireFrameMode(mode int) {
	c.wireframe = mode
	c.previous[FillMode] = sentinel
}

// PresentationInterval returns the last presentation interval override
// written by the guest. Zero means no override.
func (c *Converter) PresentationInterval() uint32 {
	return c.presentationInterval.Load()
}

// Apply converts every changed state and sets it on dev.
func (c *Converter) Apply(dev host.Device) {
	if dev == nil {
		slogger().Warn("renderstate: apply without a host device")
		return
	}
	for s := SimpleFirst; s <= Last; s++ {
		if c.offsets[s] < 0 || s == PSTextureModes {
			continue
		}
		v := c.read(s)
		if int64(v) == c.previous[s] {
			continue
		}
		slogger().Debug("renderstate: apply", "state", s, "value", v)

		var (
			hv uint32
			ok bool
		)
		switch {
		case s <= SimpleLast:
			hv, ok = c.simple(s, v)
		case s <= DeferredLast:
			hv, ok = c.deferred(s, v)
		case s <= ComplexLast:
			hv, ok = c.complex(s, v)
		}
		if hs := s.Host(); ok && hs != host.RenderStateNone {
			if err := dev.SetRenderState(hs, hv); err != nil {
				slogger().Warn("renderstate: host set failed", "state", hs, "value", hv, "err", err)
			}
		}
		c.previous[s] = int64(v)
	}
}

func unsupported(s State, v uint32) (uint32, bool) {
	slogger().Warn("renderstate: unsupported value", "state", s, "value", v)
	return 0, false
}

func unimplemented(s State, v uint32) (uint32, bool) {
	if s.Host() != host.RenderStateNone {
		slogger().Warn("renderstate: conversion unimplemented", "state", s, "value", v)
	}
	return 0, false
}

// orUnsupported reports v unsupported for s when ok is false.
func orUnsupported(s State, v, hv uint32, ok bool) (uint32, bool) {
	if !ok {
		return unsupported(s, v)
	}
	return hv, true
}

func (c *Converter) simple(s State, v uint32) (uint32, bool) {
	switch s {
	case ColorWriteEnable:
		return convertColorWriteMask(v), true
	case ShadeMode:
		hv, ok := convertShadeMode(v)
		return orUnsupported(s, v, hv, ok)
	case BlendOp:
		hv, ok := convertBlendOp(v)
		return orUnsupported(s, v, hv, ok)
	case SrcBlend, DestBlend:
		hv, ok := convertBlendFactor(v)
		return orUnsupported(s, v, hv, ok)
	case ZFunc, AlphaFunc, StencilFunc:
		hv, ok := convertCompare(v)
		return orUnsupported(s, v, hv, ok)
	case StencilZFail, StencilPass:
		hv, ok := convertStencilOp(v)
		return orUnsupported(s, v, hv, ok)
	case AlphaTestEnable:
		if c.version == 3925 && v != 0 {
			slogger().Warn("renderstate: forcing alpha test off for runtime 3925")
			return 0, true
		}
		return v, true
	case AlphaBlendEnable, BlendColor, AlphaRef, ZWriteEnable,
		DitherEnable, StencilRef, StencilMask, StencilWriteMask:
		return v, true
	}
	return unimplemented(s, v)
}

func (c *Converter) deferred(s State, v uint32) (uint32, bool) {
	switch s {
	case FogStart, FogEnd:
		if hv, flipped := absFloat(v); flipped {
			slogger().Warn("renderstate: negative fog distance made positive", "state", s)
			return hv, true
		}
		return v, true
	case FogEnable:
		if c.version == 3925 && v != 0 {
			slogger().Warn("renderstate: forcing fog off for runtime 3925")
			return 0, true
		}
		return v, true
	case FogTableMode, FogDensity, RangeFogEnable, Lighting, SpecularEnable,
		LocalViewer, ColorVertex, SpecularMaterialSource, DiffuseMaterialSource,
		AmbientMaterialSource, EmissiveMaterialSource, Ambient, PointSize,
		PointSizeMin, PointSpriteEnable, PointScaleEnable, PointScaleA,
		PointScaleB, PointScaleC, PointSizeMax, PatchEdgeStyle, PatchSegments:
		return v, true
	case BackSpecularMaterialSource, BackDiffuseMaterialSource,
		BackAmbientMaterialSource, BackEmissiveMaterialSource, BackAmbient,
		SwapFilter:
		return 0, false
	case PresentationInterval:
		c.presentationInterval.Store(v)
		return 0, false
	case Wrap0, Wrap1, Wrap2, Wrap3:
		return convertWrap(v), true
	}
	return unimplemented(s, v)
}

func (c *Converter) complex(s State, v uint32) (uint32, bool) {
	switch s {
	case VertexBlend:
		hv, ok := convertVertexBlend(v)
		return orUnsupported(s, v, hv, ok)
	case FillMode:
		hv, ok := convertFillMode(v)
		switch c.wireframe {
		case WireFrameOff:
		case WireFrameLines:
			hv, ok = host.FillWireframe, true
		default:
			hv, ok = host.FillPoint, true
		}
		return orUnsupported(s, v, hv, ok)
	case CullMode:
		hv, ok := convertCullMode(v)
		return orUnsupported(s, v, hv, ok)
	case ZBias:
		return depthBias(v), true
	case StencilFail:
		hv, ok := convertStencilOp(v)
		return orUnsupported(s, v, hv, ok)
	case FogColor, NormalizeNormals, ZEnable, StencilEnable, TextureFactor,
		EdgeAntialias, MultisampleAntialias, MultisampleMask:
		return v, true
	}
	return unimplemented(s, v)
}
