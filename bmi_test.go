package main

import "testing"

func TestComputeBMI(t *testing.T) {
	cases := []struct {
		heightCM, weightKG float64
		value              float64
		category           string
	}{
		{175, 70, 22.9, "Normal"},
		{180, 55, 17.0, "Underweight"},
		{170, 80, 27.7, "Overweight"},
		{160, 90, 35.2, "Obese"},
	}
	for _, tc := range cases {
		got, err := computeBMI(tc.heightCM, tc.weightKG)
		if err != nil {
			t.Fatalf("computeBMI(%v, %v): %v", tc.heightCM, tc.weightKG, err)
		}
		if got.Value != tc.value || got.Category != tc.category {
			t.Errorf("computeBMI(%v, %v) = %+v, want %v %s", tc.heightCM, tc.weightKG, got, tc.value, tc.category)
		}
	}

	if _, err := computeBMI(0, 70); err == nil {
		t.Error("expected error for zero height")
	}
}
