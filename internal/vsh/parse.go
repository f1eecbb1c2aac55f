package vsh

import (
	"encoding/binary"
	"fmt"
)

// ShaderType classifies a decoded shader for compilation.
type ShaderType uint8

// Shader classes.
const (
	ShaderEmpty ShaderType = iota
	ShaderCompilable
	ShaderUnsupported
)

func (t ShaderType) String() string {
	switch t {
	case ShaderEmpty:
		return "empty"
	case ShaderCompilable:
		return "compilable"
	case ShaderUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("ShaderType(%d)", uint8(t))
}

// ParseHeader unpacks a function header word.
func ParseHeader(w uint32) Header {
	return Header{
		Type:     uint8(w),
		Version:  uint8(w >> 8),
		NumInst:  uint8(w >> 16),
		Reserved: uint8(w >> 24),
	}
}

// Word packs h back into its encoded form.
func (h Header) Word() uint32 {
	return uint32(h.Type) | uint32(h.Version)<<8 | uint32(h.NumInst)<<16 | uint32(h.Reserved)<<24
}

func tokenAt(words []uint32, i int) (Token, bool) {
	off := i * TokenWords
	if off+TokenWords > len(words) {
		return Token{}, false
	}
	var t Token
	copy(t[:], words[off:off+TokenWords])
	return t, true
}

// Parse decodes a legacy vertex shader function.
//
// When the first word is zero, words are raw program slots and decoding runs
// until a token flagged final. Otherwise the first word is a Header and
// exactly Header.NumInst tokens follow.
//
// Parse returns the function size in bytes: the header, every decoded token
// and one more token.
func Parse(words []uint32) (*Shader, int, error) {
	if len(words) == 0 {
		return &Shader{Header: Header{Type: 'x', Version: VersionXVS}}, 0, nil
	}

	s := &Shader{}
	headerless := words[0] == 0
	body := words
	headerWords := 0
	decoded := 0

	if headerless {
		s.Header = Header{Type: 'x', Version: VersionXVS}
		for {
			t, ok := tokenAt(body, decoded)
			if !ok {
				slogger().Warn("vsh: program slots end without a final instruction", "tokens", decoded)
				break
			}
			more, err := s.Decode(&t)
			if err != nil {
				return nil, 0, err
			}
			if !more {
				break
			}
			decoded++
		}
	} else {
		s.Header = ParseHeader(words[0])
		headerWords = 1
		body = words[1:]
		n := int(s.Header.NumInst)
		for i := 0; i < n; i++ {
			t, ok := tokenAt(body, i)
			if !ok {
				slogger().Warn("vsh: function shorter than its header", "want", n, "have", i)
				break
			}
			more, err := s.Decode(&t)
			if err != nil {
				return nil, 0, err
			}
			if !more {
				if i < n-1 {
					slogger().Warn("vsh: shader instructions after final instruction", "final", i, "count", n)
				}
				break
			}
			decoded++
		}
	}

	size := (headerWords + (decoded+1)*TokenWords) * 4
	return s, size, nil
}

// ParseBytes is Parse over little-endian encoded words.
func ParseBytes(b []byte) (*Shader, int, error) {
	return Parse(BytesToWords(b))
}

// BytesToWords converts little-endian bytes to words. Trailing bytes that do
// not fill a word are ignored.
func BytesToWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}

// WordsToBytes converts words to little-endian bytes.
func WordsToBytes(words []uint32) []byte {
	b := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

// Classify reports whether s can be compiled to a host shader.
func Classify(s *Shader) ShaderType {
	if len(s.Instructions) == 0 {
		return ShaderEmpty
	}
	switch s.Header.Version {
	case VersionXVS:
	case VersionXVSS:
		slogger().Warn("vsh: vertex state shader may not translate correctly")
	case VersionXVSW:
		slogger().Warn("vsh: vertex read/write shaders are not supported")
		return ShaderUnsupported
	default:
		return ShaderUnsupported
	}
	return ShaderCompilable
}

// Disassemble renders s one instruction per line.
func Disassemble(s *Shader) string {
	out := fmt.Sprintf("; version 0x%02x, %d instructions\n", s.Header.Version, len(s.Instructions))
	for i := range s.Instructions {
		out += s.Instructions[i].String() + "\n"
	}
	return out
}
