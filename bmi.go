package main

import (
	"errors"
	"math"
)

// bmiInfo is shown on the profile page next to the body metrics.
type bmiInfo struct {
	Value    float64 `json:"value"`
	Category string  `json:"category"`
}

// computeBMI expects height in centimeters and weight in kilograms.
func computeBMI(heightCM, weightKG float64) (bmiInfo, error) {
	if heightCM <= 0 || weightKG <= 0 {
		return bmiInfo{}, errors.New("height and weight must be positive")
	}
	h := heightCM / 100
	bmi := weightKG / (h * h)
	return bmiInfo{Value: math.Round(bmi*10) / 10, Category: bmiCategory(bmi)}, nil
}

func bmiCategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}
