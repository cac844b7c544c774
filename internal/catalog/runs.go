package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"scorelib/internal/reconcile"
)

const decisionColumns = "run_id, seq, file_id, old_name, new_name, section, listed_section, alias, title, outcome, reason, status, error_message, updated_at"

// RecordRun stores a reconciliation pass and its decisions under a new run ID.
// Renamed decisions start pending; the rest need no action.
func (s *Store) RecordRun(ctx context.Context, mode RunMode, source string, decisions []reconcile.Decision) (*Run, error) {
	summary := reconcile.Summarize(decisions)
	run := &Run{
		ID:         uuid.NewString(),
		Mode:       mode,
		Source:     strings.TrimSpace(source),
		Total:      summary.Total,
		Conforming: summary.Conforming,
		Renamed:    summary.Renamed,
		Moved:      summary.Moved,
		Unresolved: summary.Unresolved,
	}
	now := s.timestamp()
	run.CreatedAt = parseTimestamp(sql.NullString{String: now, Valid: true})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO runs (id, mode, source, total, conforming, renamed, moved, unresolved, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Mode), run.Source, run.Total, run.Conforming, run.Renamed, run.Moved, run.Unresolved, now,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO decisions (
            run_id, seq, file_id, old_name, new_name, section, listed_section,
            alias, title, outcome, reason, status, error_message, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for seq, d := range decisions {
		status := DecisionNoAction
		if d.Outcome == reconcile.OutcomeRenamed {
			status = DecisionPending
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, seq, d.FileID, d.OldName, nullableString(d.NewName), d.Section, d.ListedSection,
			nullableString(d.Alias), nullableString(d.Title), string(d.Outcome), d.Reason, string(status), now,
		); err != nil {
			return nil, fmt.Errorf("insert decision %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// MarkDecision updates the status of the decision for fileID in runID.
func (s *Store) MarkDecision(ctx context.Context, runID, fileID string, status DecisionStatus, cause error) error {
	var message any
	if cause != nil {
		message = cause.Error()
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE decisions SET status = ?, error_message = ?, updated_at = ? WHERE run_id = ? AND file_id = ?",
		string(status), message, s.timestamp(), runID, fileID)
	if err != nil {
		return fmt.Errorf("mark decision: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("decision %s/%s: %w", runID, fileID, ErrNotFound)
	}
	return nil
}

// GetRun fetches a run by its full ID or a unique ID prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("get run: id is required")
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, mode, source, total, conforming, renamed, moved, unresolved, created_at FROM runs WHERE id = ? OR id LIKE ? ORDER BY created_at DESC LIMIT 2",
		id, stripWildcards(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == id {
			return run, nil
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("run prefix %q is ambiguous", id)
	}
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT id, mode, source, total, conforming, renamed, moved, unresolved, created_at FROM runs ORDER BY created_at DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// RunDecisions returns the decisions of runID in pass order.
func (s *Store) RunDecisions(ctx context.Context, runID string) ([]DecisionRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+decisionColumns+" FROM decisions WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var (
			rec        DecisionRecord
			newName    sql.NullString
			alias      sql.NullString
			title      sql.NullString
			status     string
			errMessage sql.NullString
			updatedRaw sql.NullString
		)
		if err := rows.Scan(
			&rec.RunID, &rec.Seq, &rec.FileID, &rec.OldName, &newName, &rec.Section, &rec.ListedSection,
			&alias, &title, &rec.Outcome, &rec.Reason, &status, &errMessage, &updatedRaw,
		); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.NewName = newName.String
		rec.Alias = alias.String
		rec.Title = title.String
		rec.Status = DecisionStatus(status)
		rec.ErrorMessage = errMessage.String
		rec.UpdatedAt = parseTimestamp(updatedRaw)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		mode       string
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&run.ID, &mode, &run.Source, &run.Total, &run.Conforming, &run.Renamed, &run.Moved, &run.Unresolved, &createdRaw); err != nil {
		return nil, err
	}
	run.Mode = RunMode(mode)
	run.CreatedAt = parseTimestamp(createdRaw)
	return &run, nil
}

func stripWildcards(value string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(value)
}
