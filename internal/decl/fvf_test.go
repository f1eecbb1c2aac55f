package decl

import "testing"

func TestFromFVF(t *testing.T) {
	fvf := uint32(FVFXYZB2 | FVFNormal | FVFDiffuse | 2<<FVFTexCountShift)
	fvf |= FVFTexCoordSize(FVFTextureFormat3, 1)

	f := FromFVF(fvf)
	if !f.FixedFunction {
		t.Error("FixedFunction = false")
	}
	want := map[int]Slot{
		RegPosition:    {Format: TypeFloat3, Offset: 0},
		RegBlendWeight: {Format: TypeFloat2, Offset: 12},
		RegNormal:      {Format: TypeFloat3, Offset: 20},
		RegDiffuse:     {Format: TypeD3DColor, Offset: 32},
		RegTexCoord0:   {Format: TypeFloat2, Offset: 36},
		RegTexCoord1:   {Format: TypeFloat3, Offset: 44},
	}
	for reg := range f.Slots {
		w, ok := want[reg]
		if !ok {
			w = Slot{Format: TypeNone}
		}
		if f.Slots[reg] != w {
			t.Errorf("slot %d = %+v, want %+v", reg, f.Slots[reg], w)
		}
	}
	if got := Stride(fvf); got != 56 {
		t.Errorf("Stride = %d, want 56", got)
	}
	if got := f.TexCoordCount(1); got != 3 {
		t.Errorf("TexCoordCount(1) = %d, want 3", got)
	}
	if got := f.TexCoordCount(2); got != 0 {
		t.Errorf("TexCoordCount(2) = %d, want 0", got)
	}
}

func TestFromFVFPositions(t *testing.T) {
	tests := []struct {
		fvf     uint32
		pos     DataType
		weights DataType
	}{
		{FVFXYZ, TypeFloat3, TypeNone},
		{FVFXYZRHW, TypeFloat4, TypeNone},
		{FVFXYZB1, TypeFloat3, TypeFloat1},
		{FVFXYZB3, TypeFloat3, TypeFloat3},
		{FVFXYZB4, TypeFloat3, TypeFloat4},
		{0, TypeNone, TypeNone},
	}
	for _, tt := range tests {
		f := FromFVF(tt.fvf)
		if f.Slots[RegPosition].Format != tt.pos || f.Slots[RegBlendWeight].Format != tt.weights {
			t.Errorf("FVF %#x: position %v weights %v, want %v %v", tt.fvf,
				f.Slots[RegPosition].Format, f.Slots[RegBlendWeight].Format, tt.pos, tt.weights)
		}
	}
}

func TestIsFVF(t *testing.T) {
	if !IsFVF(FVFXYZ | FVFDiffuse) {
		t.Error("FVF not recognised")
	}
	if IsFVF(0x80012341) {
		t.Error("shader handle recognised as FVF")
	}
}
