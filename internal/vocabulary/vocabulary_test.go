package vocabulary

import (
	"errors"
	"testing"
)

func TestNewRejectsInvalidRegistries(t *testing.T) {
	cases := []struct {
		name     string
		sections []Section
	}{
		{"empty", nil},
		{"missing name", []Section{{Name: " ", Aliases: []string{"Horn"}}}},
		{"missing aliases", []Section{{Name: "Horn"}}},
		{"blank alias", []Section{{Name: "Horn", Aliases: []string{"Horn", "  "}}}},
		{"duplicate", []Section{{Name: "Horn", Aliases: []string{"Horn"}}, {Name: "Horn", Aliases: []string{"F Horn"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.sections); !errors.Is(err, ErrInvalidVocabulary) {
				t.Fatalf("expected ErrInvalidVocabulary, got %v", err)
			}
		})
	}
}

func TestLookupUnknownSection(t *testing.T) {
	v := MustNew([]Section{{Name: "Horn", Aliases: []string{"Horn"}, FolderID: "f1"}})

	sec, err := v.Lookup("Horn")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if sec.FolderID != "f1" {
		t.Fatalf("unexpected folder id %q", sec.FolderID)
	}

	_, err = v.Lookup("Tuba")
	if !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
}

func TestSectionsPreserveRegistrationOrderAndAreCopies(t *testing.T) {
	v := MustNew([]Section{
		{Name: "Trumpet", Aliases: []string{"Trumpet"}},
		{Name: "Horn", Aliases: []string{"French Horn", "Horn"}},
		{Name: "Clarinet", Aliases: []string{"Clarinet"}},
	})

	names := v.Names()
	want := []string{"Trumpet", "Horn", "Clarinet"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	sections := v.Sections()
	sections[1].Aliases[0] = "mutated"
	again, _ := v.Lookup("Horn")
	if again.Aliases[0] != "French Horn" {
		t.Fatalf("vocabulary mutated through returned slice: %v", again.Aliases)
	}
}

func TestDefaultVocabularyMatchesItsOwnCanonicalNames(t *testing.T) {
	v := Default()
	m := NewMatcher(v)
	for _, name := range v.Names() {
		res := m.Match("Fanfare - " + name)
		if !res.Matched || res.Section != name {
			t.Errorf("canonical name %q matched %+v", name, res)
		}
	}
}

func TestDefaultAliasesSelectTheirOwnSection(t *testing.T) {
	m := NewMatcher(Default())
	for _, sec := range DefaultSections() {
		for _, alias := range sec.Aliases {
			res := m.Match(alias + " - Funk.pdf")
			if !res.Matched || res.Section != sec.Name || res.Alias != alias {
				t.Errorf("alias %q of %s matched %+v", alias, sec.Name, res)
			}
		}
	}
}
