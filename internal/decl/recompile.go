package decl

import (
	"cmp"
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"

	"github.com/gogpu/nv2a/host"
)

// Element is the per-vertex conversion record of one stream element.
type Element struct {
	Register     int
	LegacyType   DataType
	LegacyOffset int
	LegacySize   int
	HostType     host.DeclType
	HostOffset   int
	HostSize     int
	Patch        bool
}

// Stream describes the elements read from one vertex stream.
type Stream struct {
	Index      int
	NeedPatch  bool
	HostStride int
	Elements   []Element
	// FormatHash identifies the conversion of this stream. Two streams with
	// equal hashes rewrite identical legacy bytes to identical host bytes.
	FormatHash uint64
}

// Declaration is a recompiled attribute format.
type Declaration struct {
	// Elements is sorted by stream, method and offset.
	Elements []host.VertexElement
	// Streams is sorted by stream index.
	Streams []Stream
	// Present reports which input registers the declaration feeds.
	Present       [NumRegisters]bool
	FixedFunction bool
}

// Stream returns the descriptor of stream index, nil when unused.
func (d *Declaration) Stream(index int) *Stream {
	for i := range d.Streams {
		if d.Streams[i].Index == index {
			return &d.Streams[i]
		}
	}
	return nil
}

// NeedsPatch reports whether any stream requires per-vertex conversion.
func (d *Declaration) NeedsPatch() bool {
	for i := range d.Streams {
		if d.Streams[i].NeedPatch {
			return true
		}
	}
	return false
}

var fixedFunctionUsage = [...]struct {
	usage host.DeclUsage
	index uint8
}{
	RegPosition:     {host.UsagePosition, 0},
	RegBlendWeight:  {host.UsageBlendWeight, 0},
	RegNormal:       {host.UsageNormal, 0},
	RegDiffuse:      {host.UsageColor, 0},
	RegSpecular:     {host.UsageColor, 1},
	RegFog:          {host.UsageFog, 0},
	RegPointSize:    {host.UsagePSize, 0},
	RegBackDiffuse:  {host.UsageColor, 2},
	RegBackSpecular: {host.UsageColor, 3},
	RegTexCoord0:    {host.UsageTexCoord, 0},
	RegTexCoord1:    {host.UsageTexCoord, 1},
	RegTexCoord2:    {host.UsageTexCoord, 2},
	RegTexCoord3:    {host.UsageTexCoord, 3},
}

// Recompile converts a legacy attribute format into a host declaration.
//
// Elements of a stream are laid out in register order. Streams that need
// no patching keep the legacy offsets, so the legacy vertex bytes can be
// bound unchanged. Slots with an unknown data type, and fixed-function
// slots beyond the last texture coordinate, are dropped with a warning.
func Recompile(format *AttributeFormat, caps Caps) *Declaration {
	d := &Declaration{FixedFunction: format.FixedFunction}

	var (
		streams    = make(map[int]*Stream)
		byRegister [NumRegisters]int
	)
	for i := range byRegister {
		byRegister[i] = -1
	}

	for reg := range format.Slots {
		slot := &format.Slots[reg]
		if slot.Format == TypeUnset {
			continue
		}

		if slot.Format == TypeNone {
			el, ok := tessellated(slot)
			if !ok {
				continue
			}
			byRegister[reg] = len(d.Elements)
			d.Elements = append(d.Elements, el)
			d.Present[reg] = true
			continue
		}

		conv, ok := Convert(slot.Format, caps)
		if !ok {
			slogger().Warn("decl: unknown data type, slot dropped", "register", reg, "type", slot.Format)
			continue
		}
		usage, index, ok := usageOf(reg, conv.Host, format.FixedFunction)
		if !ok {
			slogger().Warn("decl: no fixed-function usage for register, slot dropped", "register", reg)
			continue
		}

		s := streams[int(slot.Stream)]
		if s == nil {
			s = &Stream{Index: int(slot.Stream)}
			streams[s.Index] = s
		}
		s.Elements = append(s.Elements, Element{
			Register:     reg,
			LegacyType:   slot.Format,
			LegacyOffset: int(slot.Offset),
			LegacySize:   conv.LegacySize,
			HostType:     conv.Host,
			HostOffset:   s.HostStride,
			HostSize:     conv.HostSize,
			Patch:        conv.Patch,
		})
		s.NeedPatch = s.NeedPatch || conv.Patch
		s.HostStride += conv.HostSize

		byRegister[reg] = len(d.Elements)
		d.Elements = append(d.Elements, host.VertexElement{
			Stream:     slot.Stream,
			Type:       conv.Host,
			Method:     host.MethodDefault,
			Usage:      usage,
			UsageIndex: index,
		})
		d.Present[reg] = true
	}

	for _, s := range streams {
		if !s.NeedPatch {
			s.HostStride = 0
			for i := range s.Elements {
				el := &s.Elements[i]
				el.HostOffset = el.LegacyOffset
				s.HostStride = max(s.HostStride, el.HostOffset+el.HostSize)
			}
		}
		for _, el := range s.Elements {
			d.Elements[byRegister[el.Register]].Offset = uint16(el.HostOffset)
		}
		s.FormatHash = s.hash()
		d.Streams = append(d.Streams, *s)
	}
	slices.SortFunc(d.Streams, func(a, b Stream) int { return cmp.Compare(a.Index, b.Index) })

	// Auto-normals read the host element of their source register.
	for reg := range format.Slots {
		i := byRegister[reg]
		if i < 0 || d.Elements[i].Method != host.MethodCrossUV {
			continue
		}
		src := int(format.Slots[reg].TessSource)
		if src >= NumRegisters || byRegister[src] < 0 {
			slogger().Warn("decl: auto-normal source not declared", "register", reg, "source", src)
			continue
		}
		s := d.Elements[byRegister[src]]
		d.Elements[i].Stream = s.Stream
		d.Elements[i].Offset = s.Offset
		d.Elements[i].Type = s.Type
	}

	slices.SortStableFunc(d.Elements, compareElements)
	return d
}

func compareElements(a, b host.VertexElement) int {
	return cmp.Or(
		cmp.Compare(a.Stream, b.Stream),
		cmp.Compare(a.Method, b.Method),
		cmp.Compare(a.Offset, b.Offset),
	)
}

func tessellated(slot *Slot) (host.VertexElement, bool) {
	switch slot.Tessellation {
	case TessNone:
		return host.VertexElement{}, false
	case TessAutoNormal:
		return host.VertexElement{Method: host.MethodCrossUV, Usage: host.UsageNormal, UsageIndex: 1}, true
	case TessAutoTexCoord:
		return host.VertexElement{Type: host.DeclUnused, Method: host.MethodUV, Usage: host.UsageNormal, UsageIndex: 1}, true
	default:
		slogger().Warn("decl: invalid tessellation type", "type", slot.Tessellation)
		return host.VertexElement{}, false
	}
}

func usageOf(reg int, t host.DeclType, fixedFunction bool) (host.DeclUsage, uint8, bool) {
	if !fixedFunction {
		// Programmable inputs carry no semantics; the register is the index.
		return host.UsageTexCoord, uint8(reg), true
	}
	if reg >= len(fixedFunctionUsage) {
		return 0, 0, false
	}
	if reg == RegPosition && t == host.DeclFloat4 {
		return host.UsagePositionT, 0, true
	}
	u := fixedFunctionUsage[reg]
	return u.usage, u.index, true
}

func (s *Stream) hash() uint64 {
	h := xxh3.New()
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(s.HostStride))
	if s.NeedPatch {
		buf[4] = 1
	}
	_, _ = h.Write(buf[:5])
	for _, el := range s.Elements {
		buf[0] = uint8(el.Register)
		buf[1] = uint8(el.LegacyType)
		buf[2] = uint8(el.HostType)
		buf[3] = 0
		if el.Patch {
			buf[3] = 1
		}
		binary.LittleEndian.PutUint32(buf[4:], uint32(el.LegacyOffset))
		binary.LittleEndian.PutUint32(buf[8:], uint32(el.HostOffset))
		binary.LittleEndian.PutUint32(buf[12:], uint32(el.HostSize))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
