package vsh

// MaxSlots is the number of instruction slots in vertex program memory.
const MaxSlots = 136

// NV2A push-buffer methods used to upload vertex programs.
const (
	MethodUploadInst    = 0x0B00
	MethodUploadConst   = 0x0B80
	MethodUploadConstID = 0x1EA4
)

// DecodePushCommand splits a push-buffer method header.
func DecodePushCommand(w uint32) (method, subchannel, count uint32) {
	return w & 0x1FFC, (w >> 13) & 7, (w >> 18) & 0x7FF
}

// EncodePushCommand builds a push-buffer method header.
func EncodePushCommand(method, subchannel, count uint32) uint32 {
	return method&0x1FFC | (subchannel&7)<<13 | (count&0x7FF)<<18
}

// Slots is vertex program memory.
type Slots struct {
	words [MaxSlots * TokenWords]uint32
}

// Store copies count instructions from tokens into memory at address.
// Programs that do not fit are rejected and reported.
func (s *Slots) Store(tokens []uint32, address, count int) bool {
	if address < 0 || address >= MaxSlots {
		slogger().Warn("vsh: slot address out of range", "address", address)
		return false
	}
	if address+count > MaxSlots {
		slogger().Warn("vsh: shader does not fit in vertex shader slots", "address", address, "count", count)
		return false
	}
	if len(tokens) < count*TokenWords {
		slogger().Warn("vsh: short program upload", "count", count, "words", len(tokens))
		count = len(tokens) / TokenWords
	}
	copy(s.words[address*TokenWords:], tokens[:count*TokenWords])
	return true
}

// From returns program memory from address to the end, or nil when address
// is out of range.
func (s *Slots) From(address int) []uint32 {
	if address < 0 || address >= MaxSlots {
		slogger().Warn("vsh: slot address out of range", "address", address)
		return nil
	}
	return s.words[address*TokenWords:]
}

// LoadProgram stores a header-prefixed function at address.
func (s *Slots) LoadProgram(function []uint32, address int) bool {
	if len(function) == 0 {
		return false
	}
	h := ParseHeader(function[0])
	if h.Version != VersionXVS {
		slogger().Warn("vsh: non-regular (state or read/write) shader loaded into slots", "version", h.Version)
	}
	return s.Store(function[1:], address, int(h.NumInst))
}

// ConstantSink receives vec4 constants uploaded through the push buffer.
// register is the host constant register, values holds four words per
// register.
type ConstantSink func(register int, values []uint32)

// LoadPushBuffer executes the program-upload methods in words, writing
// instructions from address onward and passing uploaded constants to sink.
// The walk stops at the first method that is not part of a program upload.
func (s *Slots) LoadPushBuffer(words []uint32, address int, sink ConstantSink) {
	constAddr := 0
	for i := 0; i < len(words); {
		method, _, n := DecodePushCommand(words[i])
		i++
		if n == 0 {
			slogger().Warn("vsh: zero-length NV2A method", "method", method)
			return
		}
		end := i + int(n)
		if end > len(words) {
			slogger().Warn("vsh: NV2A method overruns push buffer", "method", method, "count", n)
			end = len(words)
		}
		args := words[i:end]
		if len(args) == 0 {
			return
		}

		switch method {
		case MethodUploadInst:
			if n&3 != 0 {
				slogger().Warn("vsh: NV2A_VP_UPLOAD_INST arguments should be a multiple of 4", "count", n)
			}
			nrSlots := len(args) / TokenWords
			s.Store(args, address, nrSlots)
			address += nrSlots
		case MethodUploadConstID:
			if n != 1 {
				slogger().Warn("vsh: NV2A_VP_UPLOAD_CONST_ID should have one argument", "count", n)
			}
			constAddr = int(args[0])
		case MethodUploadConst:
			if n&3 != 0 {
				slogger().Warn("vsh: NV2A_VP_UPLOAD_CONST arguments should be a multiple of 4", "count", n)
			}
			nrConst := len(args) / 4
			if sink != nil && nrConst > 0 {
				sink(constAddr, args[:nrConst*4])
			}
			constAddr += nrConst
		default:
			return
		}
		i = end
	}
}
