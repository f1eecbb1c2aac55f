package stream

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/nv2a/host"
	"github.com/gogpu/nv2a/internal/decl"
)

var le = binary.LittleEndian

func packedToFloat(v int32, pos, neg float32) float32 {
	if v >= 0 {
		return float32(v) / pos
	}
	return float32(v) / neg
}

// NormShortToFloat converts a normalized short, dividing positive values
// by 32767 and negative values by 32768.
func NormShortToFloat(v int16) float32 { return packedToFloat(int32(v), 32767, 32768) }

// ByteToFloat converts an unsigned normalized byte.
func ByteToFloat(v uint8) float32 { return float32(v) / 255 }

// signExtend returns the low bits of v as a two's complement value.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// UnpackNormPacked3 splits a packed normal into its signed 11 bit x
// (bits 0-10), 11 bit y (bits 11-21) and 10 bit z (bits 22-31) fields and
// normalizes them.
func UnpackNormPacked3(v uint32) (x, y, z float32) {
	x = packedToFloat(signExtend(v, 11), 1023, 1024)
	y = packedToFloat(signExtend(v>>11, 11), 1023, 1024)
	z = packedToFloat(signExtend(v>>22, 10), 511, 512)
	return x, y, z
}

func putFloat(dst []byte, i int, f float32) { le.PutUint32(dst[4*i:], math.Float32bits(f)) }
func getShort(src []byte, i int) int16      { return int16(le.Uint16(src[2*i:])) }
func putShort(dst []byte, i int, v int16)   { le.PutUint16(dst[2*i:], uint16(v)) }

// convertElement rewrites one legacy element into its host layout. src
// holds at least LegacySize bytes, dst at least HostSize bytes. Elements
// without a rule are copied.
func convertElement(dst, src []byte, el *decl.Element) {
	switch el.LegacyType {
	case decl.TypeNormShort1, decl.TypeNormShort2, decl.TypeNormShort3, decl.TypeNormShort4:
		n := el.LegacySize / 2
		switch el.HostType {
		case host.DeclShort2N, host.DeclShort4N:
			for i := 0; i < n; i++ {
				putShort(dst, i, getShort(src, i))
			}
			switch {
			case n == 1:
				putShort(dst, 1, 0)
			case n == 3:
				putShort(dst, 3, math.MaxInt16)
			}
		default:
			for i := 0; i < n; i++ {
				putFloat(dst, i, NormShortToFloat(getShort(src, i)))
			}
		}

	case decl.TypeNormPacked3:
		x, y, z := UnpackNormPacked3(le.Uint32(src))
		putFloat(dst, 0, x)
		putFloat(dst, 1, y)
		putFloat(dst, 2, z)

	case decl.TypeShort1:
		putShort(dst, 0, getShort(src, 0))
		putShort(dst, 1, 0)

	case decl.TypeShort3:
		for i := 0; i < 3; i++ {
			putShort(dst, i, getShort(src, i))
		}
		putShort(dst, 3, 1)

	case decl.TypePByte1, decl.TypePByte2, decl.TypePByte3, decl.TypePByte4:
		n := el.LegacySize
		if el.HostType == host.DeclUByte4N {
			copy(dst[:n], src[:n])
			for i := n; i < 3; i++ {
				dst[i] = 0
			}
			if n < 4 {
				dst[3] = 255
			}
			return
		}
		for i := 0; i < n; i++ {
			putFloat(dst, i, ByteToFloat(src[i]))
		}

	case decl.TypeFloat2H:
		copy(dst[0:8], src[0:8])
		putFloat(dst, 2, 0)
		copy(dst[12:16], src[8:12])

	default:
		copy(dst[:el.HostSize], src[:min(el.LegacySize, el.HostSize)])
	}
}

// patchVertices converts count vertices of s from src to dst.
func patchVertices(dst, src []byte, legacyStride int, s *decl.Stream, count int) {
	for v := 0; v < count; v++ {
		in := src[v*legacyStride:]
		out := dst[v*s.HostStride : (v+1)*s.HostStride]
		for i := range s.Elements {
			el := &s.Elements[i]
			if el.LegacyOffset+el.LegacySize > len(in) {
				clear(out[el.HostOffset : el.HostOffset+el.HostSize])
				continue
			}
			convertElement(out[el.HostOffset:], in[el.LegacyOffset:], el)
		}
	}
}
