package naming

import "testing"

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		alias string
		want  string
	}{
		{"underscored clarinet part", "Solo_Bb_Clarinet_MyPiece.pdf", "Clarinet", "Solo Bb MyPiece.pdf"},
		{"trailing alias with hyphen", "Fanfare - Horn", "Horn", "Fanfare"},
		{"leading alias", "French Horn - Overture.pdf", "French Horn", "Overture.pdf"},
		{"only first occurrence removed", "Horn Call Horn.pdf", "Horn", "Call Horn.pdf"},
		{"exact alias", "Horn", "Horn", ""},
		{"alias plus separators", "  _Horn - ", "Horn", ""},
		{"alias plus extension", "Horn.pdf", "Horn", ""},
		{"unsafe characters", "Suite: Part 1/2 Trumpet", "Trumpet", "Suite- Part 1-2"},
		{"alias absent", "Fanfare.pdf", "Horn", "Fanfare.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractTitle(tc.raw, tc.alias); got != tc.want {
				t.Fatalf("ExtractTitle(%q, %q) = %q, want %q", tc.raw, tc.alias, got, tc.want)
			}
		})
	}
}

func TestNormalizeTitleIsIdempotent(t *testing.T) {
	inputs := []string{
		"Solo_Bb__MyPiece.pdf",
		" -- Fanfare   for  the Common Man__ ",
		"Suite: No. 3 <final>",
		"Jean-Luc's March",
	}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		if twice := NormalizeTitle(once); twice != once {
			t.Fatalf("NormalizeTitle not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeTitleKeepsInteriorHyphens(t *testing.T) {
	if got := NormalizeTitle("Jean-Luc's March - "); got != "Jean-Luc's March" {
		t.Fatalf("unexpected title %q", got)
	}
}
