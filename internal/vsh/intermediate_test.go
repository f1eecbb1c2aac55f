package vsh

import (
	"errors"
	"testing"
)

// build encodes field values into a token.
func build(fields map[Field]uint32) Token {
	var t Token
	for f, v := range fields {
		t.Set(f, v)
	}
	return t
}

// identity swizzles for all three operands.
func withIdentitySwizzles(m map[Field]uint32) map[Field]uint32 {
	for _, base := range []Field{FieldASwzX, FieldBSwzX, FieldCSwzX} {
		for i := Field(0); i < 4; i++ {
			m[base+i] = uint32(i)
		}
	}
	return m
}

func TestTokenGetRoundTrip(t *testing.T) {
	for f := Field(0); f < fieldCount; f++ {
		l := fieldTable[f]
		max := uint32(1)<<l.bits - 1
		tok := build(map[Field]uint32{f: max})
		if got := tok.Get(f); uint32(got) != max {
			t.Errorf("field %d: Get = %d, want %d", f, got, max)
		}
		// No other field may observe the bits, except the ones that share them.
		for g := Field(0); g < fieldCount; g++ {
			if g == f {
				continue
			}
			gl := fieldTable[g]
			overlap := gl.word == l.word && gl.start < l.start+l.bits && l.start < gl.start+gl.bits
			if !overlap && tok.Get(g) != 0 {
				t.Errorf("field %d leaks into field %d", f, g)
			}
		}
	}
}

func TestConvertCRegister(t *testing.T) {
	tests := []struct {
		in   uint8
		want int16
	}{
		{0x00, -96},
		{0x1F, -65},
		{0x3F, -33},
		{0x60, 0},
		{0x7F, 31},
		{0x80, 32},
		{0xBF, 95},
		{0xFF, 159},
	}
	for _, tt := range tests {
		if got := ConvertCRegister(tt.in); got != tt.want {
			t.Errorf("ConvertCRegister(%#x) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDecodePairedSuppressesMACWriteToR1(t *testing.T) {
	tok := build(withIdentitySwizzles(map[Field]uint32{
		FieldMAC:        uint32(MACMul),
		FieldILU:        uint32(ILURcp),
		FieldOutR:       1,
		FieldOutMACMask: uint32(MaskXYZW),
		FieldOutILUMask: uint32(MaskX),
		FieldOutMux:     0,
		FieldOutOMask:   0,
		FieldAMux:       uint32(ParamV),
		FieldBMux:       uint32(ParamC),
		FieldCMux:       uint32(ParamR),
		FieldFinal:      1,
	}))

	var s Shader
	more, err := s.Decode(&tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if more {
		t.Error("Decode reported more tokens after a final token")
	}
	if len(s.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(s.Instructions))
	}
	in := s.Instructions[0]
	if in.ILU != ILURcp || in.MAC != MACNop {
		t.Errorf("got %s, want the ILU rcp", in.String())
	}
	if in.Output != (Output{Type: OutputR, Address: 1, Mask: MaskX}) {
		t.Errorf("output = %+v, want r1.x", in.Output)
	}
}

func TestDecodePairedWritesBothRegisters(t *testing.T) {
	tok := build(withIdentitySwizzles(map[Field]uint32{
		FieldMAC:        uint32(MACMul),
		FieldILU:        uint32(ILURsq),
		FieldOutR:       4,
		FieldOutMACMask: uint32(MaskXYZW),
		FieldOutILUMask: uint32(MaskW),
		FieldAMux:       uint32(ParamR),
		FieldBMux:       uint32(ParamR),
		FieldCMux:       uint32(ParamR),
	}))

	var s Shader
	more, err := s.Decode(&tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !more {
		t.Error("Decode stopped on a non-final token")
	}
	if len(s.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(s.Instructions))
	}
	if got := s.Instructions[0].Output; got.Address != 4 || got.Type != OutputR {
		t.Errorf("MAC output = %+v, want r4", got)
	}
	if got := s.Instructions[1].Output; got.Address != 1 || got.Mask != MaskW {
		t.Errorf("ILU output = %+v, want r1.w", got)
	}
}

func TestDecodeMuxedOutput(t *testing.T) {
	tok := build(withIdentitySwizzles(map[Field]uint32{
		FieldMAC:        uint32(MACMov),
		FieldOutR:       0,
		FieldOutMACMask: uint32(MaskXYZW),
		FieldOutMux:     0,
		FieldOutORB:     1,
		FieldOutAddress: OutD0,
		FieldOutOMask:   uint32(MaskXYZW),
		FieldAMux:       uint32(ParamV),
		FieldV:          3,
	}))

	var s Shader
	if _, err := s.Decode(&tok); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(s.Instructions))
	}
	r, o := s.Instructions[0], s.Instructions[1]
	if r.Output.Type != OutputR || o.Output.Type != OutputO || o.Output.Address != OutD0 {
		t.Errorf("outputs = %v, %v; want r0 then oD0", r.Output, o.Output)
	}
	if r.Params != o.Params || r.ParamCount != o.ParamCount {
		t.Error("muxed copy must keep the operands")
	}
	if got := o.String(); got != "mov oD0, v3" {
		t.Errorf("String() = %q, want %q", got, "mov oD0, v3")
	}
}

func TestDecodeConstantOutput(t *testing.T) {
	tok := build(withIdentitySwizzles(map[Field]uint32{
		FieldILU:        uint32(ILUMov),
		FieldOutR:       2,
		FieldOutILUMask: 0,
		FieldOutMux:     1,
		FieldOutORB:     0,
		FieldOutAddress: 0x61,
		FieldOutOMask:   uint32(MaskX | MaskY),
		FieldCMux:       uint32(ParamR),
	}))

	var s Shader
	if _, err := s.Decode(&tok); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1 (ILU r-write is masked off)", len(s.Instructions))
	}
	if got := s.Instructions[0].Output; got != (Output{Type: OutputC, Address: 1, Mask: MaskX | MaskY}) {
		t.Errorf("output = %+v, want c[1].xy", got)
	}
}

func TestDecodeOperandCount(t *testing.T) {
	tests := []struct {
		mac  MAC
		ilu  ILU
		want int
	}{
		{MACMov, ILUNop, 1},
		{MACMul, ILUNop, 2},
		{MACAdd, ILUNop, 2},
		{MACMad, ILUNop, 3},
		{MACDp3, ILUNop, 2},
		{MACDph, ILUNop, 2},
		{MACDp4, ILUNop, 2},
		{MACDst, ILUNop, 2},
		{MACMin, ILUNop, 2},
		{MACMax, ILUNop, 2},
		{MACSlt, ILUNop, 2},
		{MACSge, ILUNop, 2},
		{MACArl, ILUNop, 1},
		{MACNop, ILURcp, 1},
		{MACNop, ILULit, 1},
	}
	for _, tt := range tests {
		tok := build(map[Field]uint32{
			FieldMAC:        uint32(tt.mac),
			FieldILU:        uint32(tt.ilu),
			FieldOutR:       3,
			FieldOutMACMask: uint32(MaskXYZW),
			FieldOutILUMask: uint32(MaskXYZW),
			FieldOutMux:     1,
			FieldAMux:       uint32(ParamR),
			FieldBMux:       uint32(ParamR),
			FieldCMux:       uint32(ParamR),
		})
		var s Shader
		if _, err := s.Decode(&tok); err != nil {
			t.Fatalf("%s/%s: Decode: %v", tt.mac, tt.ilu, err)
		}
		if len(s.Instructions) == 0 {
			t.Fatalf("%s/%s: no instruction decoded", tt.mac, tt.ilu)
		}
		if got := s.Instructions[0].ParamCount; got != tt.want {
			t.Errorf("%s/%s: ParamCount = %d, want %d", tt.mac, tt.ilu, got, tt.want)
		}
	}
}

func TestDecodeARLWritesA0X(t *testing.T) {
	tok := build(withIdentitySwizzles(map[Field]uint32{
		FieldMAC:        uint32(MACArl),
		FieldOutMACMask: 0,
		FieldOutMux:     1,
		FieldAMux:       uint32(ParamC),
		FieldConst:      0x65,
		FieldA0X:        1,
	}))
	var s Shader
	if _, err := s.Decode(&tok); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(s.Instructions))
	}
	in := s.Instructions[0]
	if in.Output.Type != OutputA0X || in.Output.Mask != MaskX {
		t.Errorf("output = %+v, want a0.x", in.Output)
	}
	if p := in.Params[0]; p.Type != ParamC || p.Address != 5 || !in.IndexesWithA0X {
		t.Errorf("param = %+v (a0x %v), want c[a0.x+5]", p, in.IndexesWithA0X)
	}
}

func TestDecodeNegateAndSwizzle(t *testing.T) {
	tok := build(map[Field]uint32{
		FieldMAC:        uint32(MACMov),
		FieldOutR:       0,
		FieldOutMACMask: uint32(MaskXYZW),
		FieldOutMux:     1,
		FieldAMux:       uint32(ParamR),
		FieldAR:         7,
		FieldANeg:       1,
		FieldASwzX:      uint32(SwizzleW),
		FieldASwzY:      uint32(SwizzleZ),
		FieldASwzZ:      uint32(SwizzleY),
		FieldASwzW:      uint32(SwizzleX),
	})
	var s Shader
	if _, err := s.Decode(&tok); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := s.Instructions[0].Params[0]
	if !p.Neg || p.Address != 7 || p.Swizzle != [4]Swizzle{SwizzleW, SwizzleZ, SwizzleY, SwizzleX} {
		t.Errorf("param = %+v, want -r7.wzyx", p)
	}
	if got := s.Instructions[0].String(); got != "mov r0, -r7.wzyx" {
		t.Errorf("String() = %q", got)
	}
}

func TestDecodeOverflowIsFatal(t *testing.T) {
	tok := build(withIdentitySwizzles(map[Field]uint32{
		FieldMAC:        uint32(MACMov),
		FieldOutMACMask: uint32(MaskXYZW),
		FieldOutMux:     1,
		FieldAMux:       uint32(ParamR),
	}))
	var s Shader
	var err error
	for i := 0; i <= MaxIntermediateInstructions && err == nil; i++ {
		_, err = s.Decode(&tok)
	}
	if !errors.Is(err, ErrTooManyInstructions) {
		t.Fatalf("err = %v, want ErrTooManyInstructions", err)
	}
	if len(s.Instructions) != MaxIntermediateInstructions {
		t.Errorf("len = %d, want %d", len(s.Instructions), MaxIntermediateInstructions)
	}
}
