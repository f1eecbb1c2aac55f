package vsh

import (
	"errors"
	"fmt"
)

// MaxIntermediateInstructions bounds the decoded instruction list.
const MaxIntermediateInstructions = 1024

// pairedRegister is the temp that a co-issued ILU result always lands in.
const pairedRegister = 1

// ErrTooManyInstructions is returned when a shader decodes into more
// intermediate instructions than MaxIntermediateInstructions.
var ErrTooManyInstructions = errors.New("vsh: shader exceeds intermediate instruction buffer")

// Param is one decoded instruction operand.
type Param struct {
	Type    ParamType
	Address int16
	Neg     bool
	Swizzle [4]Swizzle
}

// Output is the destination of an instruction.
type Output struct {
	Type    OutputType
	Address int16
	Mask    uint8
}

// Instruction is one intermediate instruction. Exactly one of MAC and ILU
// is not a nop.
type Instruction struct {
	MAC    MAC
	ILU    ILU
	Output Output
	Params [3]Param
	// ParamCount is the number of valid entries in Params.
	ParamCount int
	// IndexesWithA0X marks constant reads relative to a0.x.
	IndexesWithA0X bool
}

// Operands returns the used operands.
func (in *Instruction) Operands() []Param {
	return in.Params[:in.ParamCount]
}

// Header is the one-word legacy function header.
type Header struct {
	Type     uint8
	Version  uint8
	NumInst  uint8
	Reserved uint8
}

// Header versions.
const (
	VersionXVS  = 0x20 // regular program
	VersionXVSS = 0x73 // state shader
	VersionXVSW = 0x77 // read/write shader
)

// Shader is a decoded vertex program.
type Shader struct {
	Header       Header
	Instructions []Instruction
}

// decodeParam reads the operand selected by mux/neg fields. The swizzle
// fields of each operand directly follow its neg field.
func decodeParam(t *Token, mux, neg Field, r, v uint8, c int16) Param {
	p := Param{Type: ParamType(t.Get(mux))}
	switch p.Type {
	case ParamR:
		p.Address = int16(r)
	case ParamV:
		p.Address = int16(v)
	case ParamC:
		p.Address = c
	default:
		slogger().Warn("vsh: operand register type unknown", "mux", p.Type)
	}
	p.Neg = t.Get(neg) > 0
	for i := range p.Swizzle {
		p.Swizzle[i] = Swizzle(t.Get(neg + 1 + Field(i)))
	}
	return p
}

// addInstruction appends one intermediate instruction for t. Instructions
// with an empty write mask are dropped.
func (s *Shader) addInstruction(t *Token, mac MAC, ilu ILU, typ OutputType, addr int16, mask uint8) error {
	if mask == 0 {
		return nil
	}
	if len(s.Instructions) >= MaxIntermediateInstructions {
		return ErrTooManyInstructions
	}

	in := Instruction{
		MAC:            mac,
		ILU:            ilu,
		Output:         Output{Type: typ, Address: addr, Mask: mask},
		IndexesWithA0X: t.Get(FieldA0X) > 0,
	}

	v := t.Get(FieldV)
	c := ConvertCRegister(t.Get(FieldConst))
	if mac >= MACMov {
		in.Params[in.ParamCount] = decodeParam(t, FieldAMux, FieldANeg, t.Get(FieldAR), v, c)
		in.ParamCount++
	}
	if mac == MACMul || (mac >= MACMad && mac <= MACSge) {
		in.Params[in.ParamCount] = decodeParam(t, FieldBMux, FieldBNeg, t.Get(FieldBR), v, c)
		in.ParamCount++
	}
	if ilu >= ILUMov || mac == MACAdd || mac == MACMad {
		r := t.Get(FieldCRHigh)<<2 | t.Get(FieldCRLow)
		in.Params[in.ParamCount] = decodeParam(t, FieldCMux, FieldCNeg, r, v, c)
		in.ParamCount++
	}

	s.Instructions = append(s.Instructions, in)
	return nil
}

// Decode converts one token into intermediate instructions appended to s.
// It reports whether decoding should continue, that is whether the token
// was not flagged final.
func (s *Shader) Decode(t *Token) (bool, error) {
	ilu := ILU(t.Get(FieldILU))
	mac := MAC(t.Get(FieldMAC))
	if mac > MACArl {
		slogger().Warn("vsh: unknown MAC opcode", "mac", uint8(mac))
	}

	outType := OutputO
	outAddr := int16(t.Get(FieldOutAddress))
	if t.Get(FieldOutORB) == 0 {
		outType = OutputC
		outAddr = ConvertCRegister(uint8(outAddr))
	} else {
		outAddr &= 0xF
	}
	muxILU := t.Get(FieldOutMux) != 0
	rAddr := int16(t.Get(FieldOutR))
	paired := mac != MACNop && ilu != ILUNop

	if mac > MACNop && mac <= MACArl {
		switch {
		case paired && rAddr == pairedRegister:
			// The ILU owns r1 when co-issued.
		case mac == MACArl:
			if err := s.addInstruction(t, mac, ILUNop, OutputA0X, 0, MaskX); err != nil {
				return false, err
			}
		default:
			if err := s.addInstruction(t, mac, ILUNop, OutputR, rAddr, t.Get(FieldOutMACMask)); err != nil {
				return false, err
			}
		}
		if !muxILU {
			if err := s.addInstruction(t, mac, ILUNop, outType, outAddr, t.Get(FieldOutOMask)); err != nil {
				return false, err
			}
		}
	}

	if ilu != ILUNop {
		r := rAddr
		if paired {
			r = pairedRegister
		}
		if err := s.addInstruction(t, MACNop, ilu, OutputR, r, t.Get(FieldOutILUMask)); err != nil {
			return false, err
		}
		if muxILU {
			if err := s.addInstruction(t, MACNop, ilu, outType, outAddr, t.Get(FieldOutOMask)); err != nil {
				return false, err
			}
		}
	}

	return t.Get(FieldFinal) == 0, nil
}

func (o Output) String() string {
	var reg string
	switch o.Type {
	case OutputC:
		reg = fmt.Sprintf("c[%d]", o.Address)
	case OutputR:
		reg = fmt.Sprintf("r%d", o.Address)
	case OutputA0X:
		return "a0.x"
	default:
		reg = outputName(o.Address)
	}
	if o.Mask == MaskXYZW {
		return reg
	}
	return reg + "." + maskString(o.Mask)
}

func outputName(addr int16) string {
	switch addr {
	case OutPos:
		return "oPos"
	case OutD0:
		return "oD0"
	case OutD1:
		return "oD1"
	case OutFog:
		return "oFog"
	case OutPts:
		return "oPts"
	case OutB0:
		return "oB0"
	case OutB1:
		return "oB1"
	case OutTex0, OutTex1, OutTex2, OutTex3:
		return fmt.Sprintf("oT%d", addr-OutTex0)
	}
	return fmt.Sprintf("o%d", addr)
}

func maskString(m uint8) string {
	var b []byte
	for i, ch := range "xyzw" {
		if m&(MaskX>>i) != 0 {
			b = append(b, byte(ch))
		}
	}
	return string(b)
}

func (p Param) format(a0x bool) string {
	var s string
	switch p.Type {
	case ParamR:
		s = fmt.Sprintf("r%d", p.Address)
	case ParamV:
		s = fmt.Sprintf("v%d", p.Address)
	case ParamC:
		if a0x {
			s = fmt.Sprintf("c[a0.x%+d]", p.Address)
		} else {
			s = fmt.Sprintf("c[%d]", p.Address)
		}
	default:
		s = "?"
	}
	if p.Neg {
		s = "-" + s
	}
	if p.Swizzle != [4]Swizzle{SwizzleX, SwizzleY, SwizzleZ, SwizzleW} {
		var b [4]byte
		for i, sw := range p.Swizzle {
			b[i] = "xyzw"[sw]
		}
		sw := string(b[:])
		// Collapse replicated selectors, .xxxx prints as .x
		if b[0] == b[1] && b[1] == b[2] && b[2] == b[3] {
			sw = sw[:1]
		}
		s += "." + sw
	}
	return s
}

// String renders the instruction in assembler syntax.
func (in *Instruction) String() string {
	op := in.MAC.String()
	if in.MAC == MACNop {
		op = in.ILU.String()
	}
	s := op + " " + in.Output.String()
	for _, p := range in.Operands() {
		s += ", " + p.format(in.IndexesWithA0X)
	}
	return s
}
