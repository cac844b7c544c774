package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const pieceColumns = "id, name, drive_folder_id, composer, arranger, is_current_repertoire, source_file, source_data IS NOT NULL, created_at, updated_at"

// UpsertPiece inserts a piece or updates the one with the same name.
func (s *Store) UpsertPiece(ctx context.Context, input PieceInput) (*Piece, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("upsert piece: name is required")
	}
	now := s.timestamp()

	var current any
	if input.CurrentRepertoire != nil {
		current = boolToInt(*input.CurrentRepertoire)
	}
	var data any
	if len(input.SourceData) > 0 {
		data = input.SourceData
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO pieces (
            name, drive_folder_id, composer, arranger, is_current_repertoire,
            source_file, source_data, created_at, updated_at
        ) VALUES (?, ?, ?, ?, COALESCE(?, 0), ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            drive_folder_id = COALESCE(excluded.drive_folder_id, pieces.drive_folder_id),
            composer = COALESCE(excluded.composer, pieces.composer),
            arranger = COALESCE(excluded.arranger, pieces.arranger),
            is_current_repertoire = COALESCE(?, pieces.is_current_repertoire),
            source_file = COALESCE(excluded.source_file, pieces.source_file),
            source_data = COALESCE(excluded.source_data, pieces.source_data),
            updated_at = excluded.updated_at`,
		name,
		nullableString(input.DriveFolderID),
		nullableString(strings.TrimSpace(input.Composer)),
		nullableString(strings.TrimSpace(input.Arranger)),
		current,
		nullableString(input.SourceFile),
		data,
		now,
		now,
		current,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert piece: %w", err)
	}
	return s.GetPieceByName(ctx, name)
}

// GetPiece fetches a piece by identifier.
func (s *Store) GetPiece(ctx context.Context, id int64) (*Piece, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+pieceColumns+" FROM pieces WHERE id = ?", id)
	piece, err := scanPiece(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("piece %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get piece: %w", err)
	}
	return piece, nil
}

// GetPieceByName fetches a piece by its unique name.
func (s *Store) GetPieceByName(ctx context.Context, name string) (*Piece, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+pieceColumns+" FROM pieces WHERE name = ?", strings.TrimSpace(name))
	piece, err := scanPiece(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("piece %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get piece: %w", err)
	}
	return piece, nil
}

// ListPieces returns pieces ordered by name, optionally only the current repertoire.
func (s *Store) ListPieces(ctx context.Context, currentOnly bool) ([]Piece, error) {
	query := "SELECT " + pieceColumns + " FROM pieces"
	if currentOnly {
		query += " WHERE is_current_repertoire = 1"
	}
	query += " ORDER BY name COLLATE NOCASE, id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pieces: %w", err)
	}
	defer rows.Close()

	var pieces []Piece
	for rows.Next() {
		piece, err := scanPiece(rows)
		if err != nil {
			return nil, fmt.Errorf("scan piece: %w", err)
		}
		pieces = append(pieces, *piece)
	}
	return pieces, rows.Err()
}

// SetCurrentRepertoire flags or unflags a piece.
func (s *Store) SetCurrentRepertoire(ctx context.Context, id int64, current bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE pieces SET is_current_repertoire = ?, updated_at = ? WHERE id = ?",
		boolToInt(current), s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("update piece: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("piece %d: %w", id, ErrNotFound)
	}
	return nil
}

// PieceSource returns the stored source archive bytes, if any.
func (s *Store) PieceSource(ctx context.Context, id int64) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT source_data FROM pieces WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("piece %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read piece source: %w", err)
	}
	return data, nil
}

func scanPiece(scanner interface{ Scan(dest ...any) error }) (*Piece, error) {
	var (
		piece      Piece
		folderID   sql.NullString
		composer   sql.NullString
		arranger   sql.NullString
		current    int
		sourceFile sql.NullString
		hasData    bool
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(
		&piece.ID,
		&piece.Name,
		&folderID,
		&composer,
		&arranger,
		&current,
		&sourceFile,
		&hasData,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	piece.DriveFolderID = folderID.String
	piece.Composer = composer.String
	piece.Arranger = arranger.String
	piece.IsCurrentRepertoire = current != 0
	piece.SourceFile = sourceFile.String
	piece.HasSourceData = hasData
	piece.CreatedAt = parseTimestamp(createdRaw)
	piece.UpdatedAt = parseTimestamp(updatedRaw)
	return &piece, nil
}
