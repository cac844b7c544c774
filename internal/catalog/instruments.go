package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"scorelib/internal/vocabulary"
)

// SyncInstruments mirrors vocab into the instruments table: one row per
// section in registration order, variants equal to the aliases. Rows for
// sections no longer registered are removed. It returns the number of rows
// written.
func (s *Store) SyncInstruments(ctx context.Context, vocab *vocabulary.Vocabulary) (int, error) {
	if vocab == nil {
		return 0, errors.New("sync instruments: vocabulary is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin instrument sync: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	sections := vocab.Sections()
	keep := make([]any, 0, len(sections))
	for position, section := range sections {
		variants, err := json.Marshal(section.Aliases)
		if err != nil {
			return 0, fmt.Errorf("marshal variants for %s: %w", section.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO instruments (name, position, folder_id, variants_json)
            VALUES (?, ?, ?, ?)
            ON CONFLICT(name) DO UPDATE SET
                position = excluded.position,
                folder_id = excluded.folder_id,
                variants_json = excluded.variants_json`,
			section.Name, position, nullableString(section.FolderID), string(variants),
		); err != nil {
			return 0, fmt.Errorf("upsert instrument %s: %w", section.Name, err)
		}
		keep = append(keep, section.Name)
	}

	placeholders := make([]byte, 0, len(keep)*2)
	for i := range keep {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM instruments WHERE name NOT IN ("+string(placeholders)+")", keep...); err != nil {
		return 0, fmt.Errorf("prune instruments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit instrument sync: %w", err)
	}
	return len(sections), nil
}

// ListInstruments returns the instruments in registration order.
func (s *Store) ListInstruments(ctx context.Context) ([]Instrument, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, position, folder_id, variants_json FROM instruments ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	var instruments []Instrument
	for rows.Next() {
		var (
			inst     Instrument
			folderID sql.NullString
			variants string
		)
		if err := rows.Scan(&inst.ID, &inst.Name, &inst.Position, &folderID, &variants); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		inst.FolderID = folderID.String
		if err := json.Unmarshal([]byte(variants), &inst.Variants); err != nil {
			return nil, fmt.Errorf("decode variants for %s: %w", inst.Name, err)
		}
		instruments = append(instruments, inst)
	}
	return instruments, rows.Err()
}
