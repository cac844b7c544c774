package naming

import "testing"

func TestParseFormatRequiresPlaceholders(t *testing.T) {
	bad := []string{"{title}", "{section}", "{title} {title} {section}", "{title}-{section}-{section}"}
	for _, pattern := range bad {
		if _, err := ParseFormat(pattern); err == nil {
			t.Fatalf("expected error for %q", pattern)
		}
	}
	f, err := ParseFormat("")
	if err != nil {
		t.Fatalf("empty pattern: %v", err)
	}
	if f.Pattern() != DefaultPattern {
		t.Fatalf("expected default pattern, got %q", f.Pattern())
	}
}

func TestComposeDefault(t *testing.T) {
	got := DefaultFormat().Compose("Solo Bb MyPiece.pdf", "Clarinet")
	if got != "Solo Bb MyPiece.pdf - Clarinet" {
		t.Fatalf("unexpected composed name %q", got)
	}
}

func TestComposeDoesNotExpandPlaceholdersInTitle(t *testing.T) {
	got := DefaultFormat().Compose("The {section} Song", "Horn")
	if got != "The {section} Song - Horn" {
		t.Fatalf("unexpected composed name %q", got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	formats := []string{DefaultPattern, "{section} - {title}", "[{section}] {title}"}
	for _, pattern := range formats {
		f, err := ParseFormat(pattern)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", pattern, err)
		}
		name := f.Compose("Horn Call Overture", "Horn")
		title, ok := f.Parse(name, "Horn")
		if !ok || title != "Horn Call Overture" {
			t.Fatalf("%q: Parse(%q) = %q, %v", pattern, name, title, ok)
		}
	}
}

func TestParseRejectsNonCanonicalNames(t *testing.T) {
	f := DefaultFormat()
	cases := []struct {
		name    string
		section string
	}{
		{"Fanfare - Horn", "Trumpet"},
		{" - Horn", "Horn"},
		{"Fanfare_Horn", "Horn"},
		{"Fan__fare - Horn", "Horn"},
		{"Horn", "Horn"},
	}
	for _, tc := range cases {
		if title, ok := f.Parse(tc.name, tc.section); ok {
			t.Fatalf("Parse(%q, %q) unexpectedly succeeded with %q", tc.name, tc.section, title)
		}
	}
}
