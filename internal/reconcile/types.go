package reconcile

import "fmt"

// FileEntry is one drive file at listing time.
type FileEntry struct {
	ID      string `json:"id"`
	RawName string `json:"name"`
}

// Listing maps a canonical section name to the files found in its folder, in
// listing order. A Listing is a single point-in-time snapshot.
type Listing map[string][]FileEntry

// FileCount returns the number of files across all sections.
func (l Listing) FileCount() int {
	total := 0
	for _, files := range l {
		total += len(files)
	}
	return total
}

// Outcome classifies a Decision.
type Outcome string

const (
	OutcomeConforming Outcome = "conforming"
	OutcomeRenamed    Outcome = "renamed"
	OutcomeUnresolved Outcome = "unresolved"
)

// Reason codes explain how a Decision was reached.
const (
	ReasonNoAliasMatch     = "no_alias_match"
	ReasonEmptyTitle       = "empty_title"
	ReasonConforming       = "conforming"
	ReasonNonCanonicalName = "non_canonical_name"
	ReasonMisplaced        = "misplaced"
)

// Decision is the reconciliation verdict for one file. NewName is set only
// when Outcome is OutcomeRenamed. Section is the section the file belongs to
// after the decision is applied; ListedSection is where it was found.
type Decision struct {
	FileID        string  `json:"file_id"`
	OldName       string  `json:"old_name"`
	NewName       string  `json:"new_name,omitempty"`
	Section       string  `json:"section"`
	ListedSection string  `json:"listed_section"`
	Alias         string  `json:"alias,omitempty"`
	Title         string  `json:"title,omitempty"`
	Outcome       Outcome `json:"outcome"`
	Reason        string  `json:"reason"`
}

// Moves reports whether applying the decision changes the file's folder.
func (d Decision) Moves() bool {
	return d.Outcome == OutcomeRenamed && d.Section != d.ListedSection
}

// Renames reports whether applying the decision changes the file's name.
func (d Decision) Renames() bool {
	return d.Outcome == OutcomeRenamed && d.NewName != d.OldName
}

func (d Decision) String() string {
	switch d.Outcome {
	case OutcomeRenamed:
		return fmt.Sprintf("%s: %q -> %q [%s]", d.Outcome, d.OldName, d.NewName, d.Section)
	default:
		return fmt.Sprintf("%s: %q [%s] (%s)", d.Outcome, d.OldName, d.ListedSection, d.Reason)
	}
}

// Summary tallies decisions by outcome.
type Summary struct {
	Total      int `json:"total"`
	Conforming int `json:"conforming"`
	Renamed    int `json:"renamed"`
	Moved      int `json:"moved"`
	Unresolved int `json:"unresolved"`
}

// Summarize counts decisions by outcome.
func Summarize(decisions []Decision) Summary {
	s := Summary{Total: len(decisions)}
	for _, d := range decisions {
		switch d.Outcome {
		case OutcomeConforming:
			s.Conforming++
		case OutcomeRenamed:
			s.Renamed++
			if d.Moves() {
				s.Moved++
			}
		case OutcomeUnresolved:
			s.Unresolved++
		}
	}
	return s
}
