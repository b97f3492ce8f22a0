package main

import "testing"

func TestDescriptionFromFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2026-10-01-001-create-migrations-and-users.sql", "create migrations and users"},
		{"2026-10-01-005-create-water-logs.sql", "create water logs"},
		{"seed-foods.sql", "seed foods"},
	}
	for _, tt := range tests {
		if got := descriptionFromFilename(tt.in); got != tt.want {
			t.Errorf("descriptionFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
