package vocabulary

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MatchResult is the classification of one raw file name. Section and Alias
// are empty when Matched is false.
type MatchResult struct {
	Matched bool
	Section string
	Alias   string
}

// Matcher finds the first registered alias contained in a file name.
type Matcher struct {
	vocab *Vocabulary
}

// NewMatcher binds a matcher to a frozen vocabulary.
func NewMatcher(vocab *Vocabulary) *Matcher {
	return &Matcher{vocab: vocab}
}

// Match walks sections in registration order and aliases in declared order;
// the first alias found as a literal, case-sensitive substring of rawName wins.
func (m *Matcher) Match(rawName string) MatchResult {
	if m == nil || m.vocab == nil {
		return MatchResult{}
	}
	name := norm.NFC.String(rawName)
	for _, sec := range m.vocab.sections {
		for _, alias := range sec.Aliases {
			if strings.Contains(name, alias) {
				return MatchResult{Matched: true, Section: sec.Name, Alias: alias}
			}
		}
	}
	return MatchResult{}
}
