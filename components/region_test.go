package components

import (
	"math"
	"testing"
)

func TestRegionHistoryFraction(t *testing.T) {
	h := NewRegionHistory(4)

	if got := h.Fraction(RegionLeg); got != 0 {
		t.Errorf("empty fraction = %v, want 0", got)
	}

	h.Push(RegionLeg)
	h.Push(RegionLeg)
	h.Push(RegionBody)
	if got := h.Fraction(RegionLeg); math.Abs(got-2.0/3.0) > 1e-9 {
		t.Errorf("leg fraction = %v, want 2/3", got)
	}

	// Fill and overwrite the oldest entries
	h.Push(RegionBody)
	h.Push(RegionBody)
	h.Push(RegionBody)
	if h.Count != 4 {
		t.Errorf("count = %d, want 4", h.Count)
	}
	if got := h.Fraction(RegionBody); got != 1 {
		t.Errorf("body fraction after wrap = %v, want 1", got)
	}
}

func TestRegionHistorySizeBounds(t *testing.T) {
	tests := []struct {
		name string
		size int
		want uint8
	}{
		{"zero", 0, 1},
		{"negative", -3, 1},
		{"normal", 10, 10},
		{"too large", 100, MaxRegionHistory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRegionHistory(tt.size).Size; got != tt.want {
				t.Errorf("Size = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	if ModeFree.String() != "free" || ModeDischarging.String() != "discharging" {
		t.Errorf("unexpected mode names: %s %s", ModeFree, ModeDischarging)
	}
	if RegionArm.String() != "arm" {
		t.Errorf("RegionArm = %s", RegionArm)
	}
}
