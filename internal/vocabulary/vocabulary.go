package vocabulary

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnknownSection reports a lookup of a section name that was never registered.
	ErrUnknownSection = errors.New("unknown section")
	// ErrInvalidVocabulary reports a registry that violates construction rules.
	ErrInvalidVocabulary = errors.New("invalid vocabulary")
)

// Section is one canonical instrument-section and the aliases that denote it.
type Section struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases"`
	FolderID string   `json:"folder_id"`
}

// Vocabulary is an immutable, ordered registry of sections.
type Vocabulary struct {
	sections []Section
	index    map[string]int
}

// New validates and freezes the supplied sections. Names and aliases are
// NFC-normalized so that matching is insensitive to Unicode composition
// differences in file names.
func New(sections []Section) (*Vocabulary, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections registered", ErrInvalidVocabulary)
	}
	v := &Vocabulary{
		sections: make([]Section, 0, len(sections)),
		index:    make(map[string]int, len(sections)),
	}
	for i, sec := range sections {
		name := norm.NFC.String(strings.TrimSpace(sec.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: section %d has no name", ErrInvalidVocabulary, i+1)
		}
		if _, dup := v.index[name]; dup {
			return nil, fmt.Errorf("%w: section %q registered twice", ErrInvalidVocabulary, name)
		}
		if len(sec.Aliases) == 0 {
			return nil, fmt.Errorf("%w: section %q has no aliases", ErrInvalidVocabulary, name)
		}
		aliases := make([]string, 0, len(sec.Aliases))
		for _, alias := range sec.Aliases {
			alias = norm.NFC.String(alias)
			if strings.TrimSpace(alias) == "" {
				return nil, fmt.Errorf("%w: section %q has an empty alias", ErrInvalidVocabulary, name)
			}
			aliases = append(aliases, alias)
		}
		v.index[name] = len(v.sections)
		v.sections = append(v.sections, Section{
			Name:     name,
			Aliases:  aliases,
			FolderID: strings.TrimSpace(sec.FolderID),
		})
	}
	return v, nil
}

// MustNew is New for static registries known to be valid.
func MustNew(sections []Section) *Vocabulary {
	v, err := New(sections)
	if err != nil {
		panic(err)
	}
	return v
}

// Lookup returns the section registered under name.
func (v *Vocabulary) Lookup(name string) (Section, error) {
	i, ok := v.index[norm.NFC.String(name)]
	if !ok {
		return Section{}, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return cloneSection(v.sections[i]), nil
}

// Has reports whether name is a registered section.
func (v *Vocabulary) Has(name string) bool {
	_, ok := v.index[norm.NFC.String(name)]
	return ok
}

// Sections returns every section in registration order. The result is a copy.
func (v *Vocabulary) Sections() []Section {
	out := make([]Section, len(v.sections))
	for i, sec := range v.sections {
		out[i] = cloneSection(sec)
	}
	return out
}

// Names returns the canonical section names in registration order.
func (v *Vocabulary) Names() []string {
	out := make([]string, len(v.sections))
	for i, sec := range v.sections {
		out[i] = sec.Name
	}
	return out
}

// Len returns the number of registered sections.
func (v *Vocabulary) Len() int {
	return len(v.sections)
}

func cloneSection(sec Section) Section {
	aliases := make([]string, len(sec.Aliases))
	copy(aliases, sec.Aliases)
	sec.Aliases = aliases
	return sec
}
