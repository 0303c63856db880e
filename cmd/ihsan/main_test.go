package main

import "testing"

func TestSkipsLoad(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"init", true},
		{"keyring set <connection-string>", true},
		{"keyring status", true},
		{"habit add <title>", false},
		{"tui", false},
		{"doctor", false},
	}
	for _, tt := range tests {
		if got := skipsLoad(tt.command); got != tt.want {
			t.Errorf("skipsLoad(%q) = %v, want %v", tt.command, got, tt.want)
		}
	}
}
