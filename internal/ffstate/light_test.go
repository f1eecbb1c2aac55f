package ffstate

import "testing"

func slots(v ...int) [MaxEnabled]int {
	var s [MaxEnabled]int
	for i := range s {
		s[i] = -1
	}
	copy(s[:], v)
	return s
}

func TestEnable(t *testing.T) {
	type op struct {
		index  int
		enable bool
	}
	tests := []struct {
		name string
		ops  []op
		want [MaxEnabled]int
	}{
		{"empty", nil, slots()},
		{"append", []op{{3, true}, {1, true}}, slots(3, 1)},
		{"reenable moves to end", []op{{3, true}, {1, true}, {7, true}, {3, true}}, slots(1, 7, 3)},
		{"reenable most recent", []op{{3, true}, {1, true}, {1, true}}, slots(3, 1)},
		{"disable compacts", []op{{3, true}, {1, true}, {7, true}, {1, false}}, slots(3, 7)},
		{"disable unknown", []op{{3, true}, {9, false}}, slots(3)},
		{"disable last", []op{{3, true}, {3, false}}, slots()},
		{
			"ninth replaces oldest",
			[]op{{0, true}, {1, true}, {2, true}, {3, true}, {4, true}, {5, true}, {6, true}, {7, true}, {8, true}},
			slots(1, 2, 3, 4, 5, 6, 7, 8),
		},
		{
			"reenable when full",
			[]op{{0, true}, {1, true}, {2, true}, {3, true}, {4, true}, {5, true}, {6, true}, {7, true}, {0, true}},
			slots(1, 2, 3, 4, 5, 6, 7, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLights()
			for _, o := range tt.ops {
				if err := l.Enable(o.index, o.enable); err != nil {
					t.Fatal(err)
				}
			}
			if got := l.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLights(t *testing.T) {
	l := NewLights()
	got, err := l.Get(12)
	if err != nil || got != DefaultLight {
		t.Fatalf("Get(12) = %+v, %v; want the default light", got, err)
	}

	spot := Light{Type: LightSpot, Range: 10, Phi: 1}
	if err := l.Set(12, spot); err != nil {
		t.Fatal(err)
	}
	if got, _ := l.Get(12); got != spot {
		t.Errorf("Get(12) = %+v, want %+v", got, spot)
	}

	if err := l.Set(MaxLights, spot); err == nil {
		t.Error("Set accepted an out of range index")
	}
	if err := l.Enable(-1, true); err == nil {
		t.Error("Enable accepted a negative index")
	}

	_ = l.Enable(4, true)
	if !l.IsEnabled(4) || l.IsEnabled(12) {
		t.Error("IsEnabled disagrees with Enable")
	}
}
