package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"scorelib/internal/logging"
	"scorelib/internal/reconcile"
	"scorelib/internal/vocabulary"
)

// FileUpdater applies metadata changes to Drive files.
type FileUpdater interface {
	UpdateFile(ctx context.Context, fileID string, update FileUpdate) (File, error)
}

// ApplyOptions tunes Apply.
type ApplyOptions struct {
	DryRun bool
	Logger *slog.Logger
}

// ApplyResult records what happened to one renamed decision.
type ApplyResult struct {
	Decision reconcile.Decision
	Applied  bool
	Err      error
}

// Apply performs the renames and moves described by decisions. Conforming and
// unresolved decisions are ignored. A decision whose target name is already
// present in its destination section, or is claimed by an earlier decision in
// the same pass, fails with RenameConflictError without calling Drive.
// Per-file failures are recorded in the results; Apply itself only fails when
// ctx is cancelled or the inputs are inconsistent.
func Apply(ctx context.Context, updater FileUpdater, vocab *vocabulary.Vocabulary, listing reconcile.Listing, decisions []reconcile.Decision, opts ApplyOptions) ([]ApplyResult, error) {
	if vocab == nil {
		return nil, errors.New("apply: vocabulary is nil")
	}
	if updater == nil && !opts.DryRun {
		return nil, errors.New("apply: updater is nil")
	}
	logger := logging.NewComponentLogger(opts.Logger, "apply")

	names := newNameIndex(listing)
	var results []ApplyResult
	for _, decision := range decisions {
		if decision.Outcome != reconcile.OutcomeRenamed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		update, err := planUpdate(vocab, decision)
		if err != nil {
			return results, err
		}

		result := ApplyResult{Decision: decision}
		if owner, taken := names.owner(decision.Section, decision.NewName); taken && owner != decision.FileID {
			result.Err = &RenameConflictError{FileID: decision.FileID, Name: decision.NewName, Section: decision.Section}
			logging.WarnWithContext(logger, "rename skipped", "rename_conflict",
				logging.String(logging.FieldFileID, decision.FileID),
				logging.String(logging.FieldSection, decision.Section),
				logging.String("new_name", decision.NewName),
				logging.String("conflicting_file_id", owner),
				logging.String(logging.FieldErrorHint, "rename or remove the existing file, then re-run apply"),
				logging.String(logging.FieldImpact, "file keeps its current name"))
			results = append(results, result)
			continue
		}

		if opts.DryRun {
			names.move(decision)
			results = append(results, result)
			continue
		}

		if _, err := updater.UpdateFile(ctx, decision.FileID, update); err != nil {
			var conflict *RenameConflictError
			if errors.As(err, &conflict) {
				conflict.Section = decision.Section
			}
			result.Err = err
			logging.WarnWithContext(logger, "rename failed", "rename_failed",
				logging.String(logging.FieldFileID, decision.FileID),
				logging.String(logging.FieldSection, decision.Section),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check drive access and re-run apply"),
				logging.String(logging.FieldImpact, "file keeps its current name"))
			results = append(results, result)
			continue
		}

		names.move(decision)
		result.Applied = true
		logger.Info("renamed file",
			logging.String(logging.FieldFileID, decision.FileID),
			logging.String(logging.FieldSection, decision.Section),
			logging.String("old_name", decision.OldName),
			logging.String("new_name", decision.NewName),
			logging.Bool("moved", decision.Moves()))
		results = append(results, result)
	}
	return results, nil
}

func planUpdate(vocab *vocabulary.Vocabulary, decision reconcile.Decision) (FileUpdate, error) {
	var update FileUpdate
	if decision.Renames() {
		update.Name = decision.NewName
	}
	if decision.Moves() {
		target, err := vocab.Lookup(decision.Section)
		if err != nil {
			return FileUpdate{}, fmt.Errorf("apply %s: %w", decision.FileID, err)
		}
		source, err := vocab.Lookup(decision.ListedSection)
		if err != nil {
			return FileUpdate{}, fmt.Errorf("apply %s: %w", decision.FileID, err)
		}
		if target.FolderID == "" || source.FolderID == "" {
			return FileUpdate{}, fmt.Errorf("apply %s: move from %s to %s needs folder ids for both sections", decision.FileID, decision.ListedSection, decision.Section)
		}
		update.AddParents = target.FolderID
		update.RemoveParents = source.FolderID
	}
	return update, nil
}

// nameIndex tracks which file holds each name per section as the pass advances.
type nameIndex map[string]map[string]string

func newNameIndex(listing reconcile.Listing) nameIndex {
	idx := make(nameIndex, len(listing))
	for section, files := range listing {
		for _, file := range files {
			idx.set(section, file.RawName, file.ID)
		}
	}
	return idx
}

func (idx nameIndex) owner(section, name string) (string, bool) {
	id, ok := idx[section][name]
	return id, ok
}

func (idx nameIndex) set(section, name, id string) {
	if idx[section] == nil {
		idx[section] = make(map[string]string)
	}
	idx[section][name] = id
}

func (idx nameIndex) move(decision reconcile.Decision) {
	if owner, ok := idx.owner(decision.ListedSection, decision.OldName); ok && owner == decision.FileID {
		delete(idx[decision.ListedSection], decision.OldName)
	}
	idx.set(decision.Section, decision.NewName, decision.FileID)
}
