package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scorelib/internal/catalog"
	"scorelib/internal/drive"
	"scorelib/internal/logging"
	"scorelib/internal/reconcile"
)

// PlanRequest selects the listing a plan is built from.
type PlanRequest struct {
	Refresh bool
	// Section limits the plan to one listed section when set.
	Section string
	// Record stores the plan as a run in the catalog when one is open.
	Record bool
}

// Plan is the outcome of one reconciliation pass.
type Plan struct {
	RunID     string               `json:"run_id,omitempty"`
	Source    string               `json:"source"`
	FetchedAt time.Time            `json:"fetched_at,omitzero"`
	Decisions []reconcile.Decision `json:"decisions"`
	Summary   reconcile.Summary    `json:"summary"`
	Listing   reconcile.Listing    `json:"-"`

	// full is the unfiltered snapshot the plan was taken from.
	full reconcile.Listing
}

// Plan reconciles the current listing without changing anything on Drive.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	plan, err := s.plan(ctx, req.Refresh, req.Section)
	if err != nil {
		return nil, err
	}
	if req.Record {
		if run := s.recordRun(ctx, catalog.RunModePlan, plan); run != nil {
			plan.RunID = run.ID
		}
	}
	return plan, nil
}

func (s *Service) plan(ctx context.Context, refresh bool, section string) (*Plan, error) {
	full, source, fetchedAt, err := s.listing(ctx, refresh)
	if err != nil {
		return nil, err
	}

	listing := full
	if section = strings.TrimSpace(section); section != "" {
		if _, err := s.vocab.Lookup(section); err != nil {
			return nil, fmt.Errorf("plan: %w", err)
		}
		listing = reconcile.Listing{section: listing[section]}
	}

	decisions, err := s.reconciler.Reconcile(listing)
	if err != nil {
		return nil, err
	}
	summary := reconcile.Summarize(decisions)
	s.logger.Info("reconciled listing",
		logging.String("source", source),
		logging.Int("files", summary.Total),
		logging.Int("conforming", summary.Conforming),
		logging.Int("renamed", summary.Renamed),
		logging.Int("moved", summary.Moved),
		logging.Int("unresolved", summary.Unresolved))

	return &Plan{Source: source, FetchedAt: fetchedAt, Decisions: decisions, Summary: summary, Listing: listing, full: full}, nil
}

func (s *Service) recordRun(ctx context.Context, mode catalog.RunMode, plan *Plan) *catalog.Run {
	if s.store == nil {
		return nil
	}
	run, err := s.store.RecordRun(ctx, mode, plan.Source, plan.Decisions)
	if err != nil {
		logging.WarnWithContext(s.logger, "run history write failed", "run_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the catalog database path"),
			logging.String(logging.FieldImpact, "this pass will not appear in run history"))
		return nil
	}
	s.logger.Debug("recorded run", logging.String(logging.FieldRunID, run.ID), logging.String("mode", string(mode)))
	return run
}

// ApplyRequest controls Apply.
type ApplyRequest struct {
	Refresh bool
	DryRun  bool
	Section string
}

// ApplyReport describes what Apply did.
type ApplyReport struct {
	Plan      *Plan               `json:"plan"`
	Results   []drive.ApplyResult `json:"-"`
	Applied   int                 `json:"applied"`
	Failed    int                 `json:"failed"`
	Conflicts int                 `json:"conflicts"`
	DryRun    bool                `json:"dry_run"`
}

// Apply plans and then renames or moves every Renamed file on Drive. The
// listing cache is updated to reflect successful changes so the next plan
// sees them without a refresh; the snapshot keeps its original fetch time.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyReport, error) {
	if s.drive == nil && !req.DryRun {
		return nil, ErrDriveUnavailable
	}
	plan, err := s.plan(ctx, req.Refresh, req.Section)
	if err != nil {
		return nil, err
	}

	mode := catalog.RunModeApply
	if req.DryRun {
		mode = catalog.RunModeDryRun
	}
	run := s.recordRun(ctx, mode, plan)
	if run != nil {
		plan.RunID = run.ID
	}

	var updater drive.FileUpdater
	if s.drive != nil {
		updater = s.drive
	}
	results, err := drive.Apply(ctx, updater, s.vocab, plan.full, plan.Decisions, drive.ApplyOptions{
		DryRun: req.DryRun,
		Logger: s.baseLogger,
	})
	report := &ApplyReport{Plan: plan, Results: results, DryRun: req.DryRun}
	for _, result := range results {
		switch {
		case result.Applied:
			report.Applied++
		case drive.IsConflict(result.Err):
			report.Conflicts++
		case result.Err != nil:
			report.Failed++
		}
		if run != nil && !req.DryRun {
			s.markDecision(ctx, run.ID, result)
		}
	}
	if report.Applied > 0 {
		s.storeListing(updateListing(plan.full, results), plan.FetchedAt)
	}
	if err != nil {
		return report, fmt.Errorf("apply: %w", err)
	}
	return report, nil
}

func (s *Service) markDecision(ctx context.Context, runID string, result drive.ApplyResult) {
	status := catalog.DecisionApplied
	switch {
	case drive.IsConflict(result.Err):
		status = catalog.DecisionConflict
	case result.Err != nil:
		status = catalog.DecisionFailed
	}
	if err := s.store.MarkDecision(ctx, runID, result.Decision.FileID, status, result.Err); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(s.logger, "decision status write failed", "run_record_failed",
			logging.String(logging.FieldRunID, runID),
			logging.String(logging.FieldFileID, result.Decision.FileID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history shows the decision as pending"))
	}
}

// updateListing returns a copy of listing with applied renames and moves.
func updateListing(listing reconcile.Listing, results []drive.ApplyResult) reconcile.Listing {
	out := make(reconcile.Listing, len(listing))
	for section, files := range listing {
		out[section] = append([]reconcile.FileEntry(nil), files...)
	}
	for _, result := range results {
		if !result.Applied {
			continue
		}
		d := result.Decision
		files := out[d.ListedSection]
		for i, file := range files {
			if file.ID != d.FileID {
				continue
			}
			if d.Moves() {
				out[d.ListedSection] = append(files[:i:i], files[i+1:]...)
				out[d.Section] = append(out[d.Section], reconcile.FileEntry{ID: d.FileID, RawName: d.NewName})
			} else {
				files[i].RawName = d.NewName
			}
			break
		}
	}
	for section, files := range out {
		if files == nil {
			out[section] = []reconcile.FileEntry{}
		}
	}
	return out
}
