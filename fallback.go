package main

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed fallback_foods.yaml
var fallbackFoodsYAML []byte

var (
	fallbackOnce  sync.Once
	fallbackFoods []food
	fallbackErr   error
)

// parseFallbackFoods decodes and checks a fallback catalog document.
func parseFallbackFoods(data []byte) ([]food, error) {
	var foods []food
	if err := yaml.Unmarshal(data, &foods); err != nil {
		return nil, fmt.Errorf("parse fallback foods: %w", err)
	}
	seen := make(map[string]bool, len(foods))
	for _, f := range foods {
		if f.ID == "" || f.Name == "" {
			return nil, fmt.Errorf("fallback food missing id or name: %+v", f)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("duplicate fallback food id %q", f.ID)
		}
		if !validUnits[f.Unit] {
			return nil, fmt.Errorf("fallback food %q has invalid unit %q", f.ID, f.Unit)
		}
		seen[f.ID] = true
	}
	return foods, nil
}

// builtinFoods returns the embedded fallback catalog, decoded once.
func builtinFoods() ([]food, error) {
	fallbackOnce.Do(func() {
		fallbackFoods, fallbackErr = parseFallbackFoods(fallbackFoodsYAML)
	})
	return fallbackFoods, fallbackErr
}

// fallbackFoodByID looks up a built-in food.
func fallbackFoodByID(id string) (food, bool) {
	foods, err := builtinFoods()
	if err != nil {
		return food{}, false
	}
	for _, f := range foods {
		if f.ID == id {
			return f, true
		}
	}
	return food{}, false
}

// searchFoods filters foods by a case-insensitive name substring. An empty
// query matches everything.
func searchFoods(foods []food, q string) []food {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return foods
	}
	out := []food{}
	for _, f := range foods {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}
