package reconcile

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"scorelib/internal/logging"
	"scorelib/internal/naming"
	"scorelib/internal/vocabulary"
)

// Options tunes a Reconciler.
type Options struct {
	// Format is the rename convention; the zero value means naming.DefaultFormat.
	Format naming.Format
	// RequireFolderMatch makes a correctly named file in the wrong section
	// folder a move instead of conforming.
	RequireFolderMatch bool
	// Workers > 1 reconciles sections concurrently. Output order is unaffected.
	Workers int
	Logger  *slog.Logger
}

// Reconciler turns a Listing into an ordered Decision plan.
type Reconciler struct {
	vocab         *vocabulary.Vocabulary
	matcher       *vocabulary.Matcher
	format        naming.Format
	requireFolder bool
	workers       int
	logger        *slog.Logger
}

// New constructs a Reconciler over a frozen vocabulary.
func New(vocab *vocabulary.Vocabulary, opts Options) *Reconciler {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Reconciler{
		vocab:         vocab,
		matcher:       vocabulary.NewMatcher(vocab),
		format:        opts.Format,
		requireFolder: opts.RequireFolderMatch,
		workers:       workers,
		logger:        logging.NewComponentLogger(opts.Logger, "reconcile"),
	}
}

// Reconcile returns one Decision per file, ordered by section registration
// order and then listing order. A listing key that is not a registered section
// is a configuration error; the pass halts with vocabulary.ErrUnknownSection
// and no decisions.
func (r *Reconciler) Reconcile(listing Listing) ([]Decision, error) {
	if err := r.checkSections(listing); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(listing))
	for _, name := range r.vocab.Names() {
		if _, ok := listing[name]; ok {
			names = append(names, name)
		}
	}

	perSection := make([][]Decision, len(names))
	if r.workers == 1 || len(names) < 2 {
		for i, name := range names {
			perSection[i] = r.reconcileSection(name, listing[name])
		}
	} else {
		var wg sync.WaitGroup
		slots := make(chan struct{}, r.workers)
		for i, name := range names {
			i, name := i, name
			slots <- struct{}{}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-slots }()
				perSection[i] = r.reconcileSection(name, listing[name])
			}()
		}
		wg.Wait()
	}

	decisions := make([]Decision, 0, listing.FileCount())
	for _, batch := range perSection {
		decisions = append(decisions, batch...)
	}
	return decisions, nil
}

func (r *Reconciler) checkSections(listing Listing) error {
	var unknown []string
	for name := range listing {
		if !r.vocab.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("reconcile listing: %w: %s", vocabulary.ErrUnknownSection, strings.Join(unknown, ", "))
}

func (r *Reconciler) reconcileSection(section string, files []FileEntry) []Decision {
	out := make([]Decision, 0, len(files))
	for _, entry := range files {
		d := r.Decide(section, entry)
		r.logger.Debug("file reconciled",
			logging.Args(append(logging.DecisionAttrs("rename", string(d.Outcome), d.Reason),
				logging.String(logging.FieldSection, section),
				logging.String(logging.FieldFileID, d.FileID),
				logging.String("old_name", d.OldName),
				logging.String("new_name", d.NewName),
			)...)...)
		out = append(out, d)
	}
	return out
}

// Decide classifies a single file found in the listed section.
func (r *Reconciler) Decide(listed string, entry FileEntry) Decision {
	d := Decision{
		FileID:        entry.ID,
		OldName:       entry.RawName,
		Section:       listed,
		ListedSection: listed,
	}

	// A composed name carries the canonical section name, which need not be
	// one of the section's aliases, so the convention check runs first.
	res := r.matcher.Match(entry.RawName)
	matched := res.Section
	if !res.Matched {
		matched = listed
	}
	d.Alias = res.Alias

	if declared, title, ok := r.canonicalSection(entry.RawName, matched, listed); ok {
		d.Title = title
		if !r.requireFolder || declared == listed {
			d.Outcome = OutcomeConforming
			d.Reason = ReasonConforming
			return d
		}
		d.Outcome = OutcomeRenamed
		d.Reason = ReasonMisplaced
		d.NewName = entry.RawName
		d.Section = declared
		return d
	}
	if !res.Matched {
		d.Outcome = OutcomeUnresolved
		d.Reason = ReasonNoAliasMatch
		return d
	}

	title := naming.ExtractTitle(entry.RawName, res.Alias)
	if title == "" {
		d.Outcome = OutcomeUnresolved
		d.Reason = ReasonEmptyTitle
		return d
	}

	d.Title = title
	d.Outcome = OutcomeRenamed
	d.Reason = ReasonNonCanonicalName
	d.NewName = r.format.Compose(title, res.Section)
	if r.requireFolder {
		d.Section = res.Section
	}
	return d
}

// canonicalSection reports the section whose naming convention rawName
// already satisfies. The matched and listed sections are tried first, then the
// rest in registration order, so a title that happens to contain an earlier
// section's alias still reads as canonical for the section it was named for.
func (r *Reconciler) canonicalSection(rawName, matched, listed string) (string, string, bool) {
	candidates := make([]string, 0, r.vocab.Len()+2)
	candidates = append(candidates, matched)
	if listed != matched {
		candidates = append(candidates, listed)
	}
	for _, name := range r.vocab.Names() {
		if name != matched && name != listed {
			candidates = append(candidates, name)
		}
	}
	for _, section := range candidates {
		if title, ok := r.format.Parse(rawName, section); ok {
			return section, title, true
		}
	}
	return "", "", false
}
