package types

import "testing"

func TestCategoryColor(t *testing.T) {
	want := map[Category]string{
		CategoryUnderweight: "blue",
		CategoryNormal:      "green",
		CategoryOverweight:  "orange",
		CategoryObese:       "red",
		Category("unknown"): "gray",
	}
	for c, color := range want {
		if got := c.Color(); got != color {
			t.Errorf("%q.Color() = %q, want %q", c, got, color)
		}
	}

	if len(Categories) != 4 || Categories[0] != CategoryUnderweight || Categories[3] != CategoryObese {
		t.Errorf("Categories = %v, want ascending order", Categories)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{22.857142, 22.86},
		{34.602076, 34.6},
		{0.125, 0.13},
		{-0.125, -0.13},
		{19.53125, 19.53},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestHeightCm verifies that centimeters typed by the user survive the
// conversion to meters and back without float noise or rounding.
func TestHeightCm(t *testing.T) {
	for _, cm := range []float64{175, 170, 162.5, 7, 175.555, 170.0001, 181.33333} {
		meters := cm / 100
		m := Measurement{HeightM: meters}
		if got := m.HeightCm(); got != cm {
			t.Errorf("HeightCm(%v m) = %v, want %v", meters, got, cm)
		}
		if back := m.HeightCm() / 100; back != meters {
			t.Errorf("HeightCm(%v m)/100 = %v, want %v", meters, back, meters)
		}
	}
}
