package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Simple Name ", "Simple Name"},
		{"Suite: Part 1/2", "Suite- Part 1-2"},
		{`Back\slash*star`, "Back-slash-star"},
		{`What? "Quoted" <tag> | pipe`, "What Quoted tag  pipe"},
		{"Tab\tand\x00nul", "Tabandnul"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unknown"},
		{"  ", "unknown"},
		{"!!!", "unknown"},
		{"Bb Clarinet", "bb_clarinet"},
		{"Horn-in_F", "horn-in_f"},
		{"Élan Vital", "élan_vital"},
		{"--Trumpet--", "trumpet"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
