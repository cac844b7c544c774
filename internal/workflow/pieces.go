package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"scorelib/internal/catalog"
	"scorelib/internal/logging"
	"scorelib/internal/scoreinfo"
	"scorelib/internal/textutil"
)

// ImportRequest describes a Dorico project to add to the catalog.
type ImportRequest struct {
	Path string
	// Name overrides the title read from the project.
	Name          string
	DriveFolderID string
	Arranger      string
	// Current sets the current-repertoire flag; nil leaves it unchanged.
	Current *bool
	// KeepSource stores the archive bytes alongside the piece.
	KeepSource bool
	// SourceFile is recorded as the piece's origin; defaults to Path.
	SourceFile string
}

// ImportResult is the stored piece and the metadata it came from.
type ImportResult struct {
	Piece    *catalog.Piece     `json:"piece"`
	Metadata scoreinfo.Metadata `json:"metadata"`
	// Warnings lists metadata problems that did not stop the import.
	Warnings []string `json:"warnings,omitempty"`
}

// ImportPiece reads a Dorico project and upserts it into the catalog by name.
// A project without a title falls back to a title derived from its file name;
// a missing composer is reported as a warning.
func (s *Service) ImportPiece(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if s.store == nil {
		return nil, ErrCatalogUnavailable
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return nil, errors.New("import piece: path is required")
	}

	result := &ImportResult{}
	meta, err := scoreinfo.Extract(path)
	if err != nil {
		var missing *scoreinfo.MissingFieldError
		if !errors.As(err, &missing) {
			return nil, fmt.Errorf("import piece: %w", err)
		}
	}
	result.Metadata = meta
	if meta.Title == "" {
		result.Warnings = append(result.Warnings, "project has no title")
	}
	if meta.Composer == "" {
		result.Warnings = append(result.Warnings, "project has no composer")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = meta.Title
	}
	if name == "" && strings.TrimSpace(req.SourceFile) == "" {
		name = scoreinfo.TitleFromFileName(path)
	}
	if name == "" {
		return nil, fmt.Errorf("import piece: %s has no usable title; pass a name", path)
	}

	input := catalog.PieceInput{
		Name:              name,
		DriveFolderID:     req.DriveFolderID,
		Composer:          meta.Composer,
		Arranger:          req.Arranger,
		CurrentRepertoire: req.Current,
		SourceFile:        req.SourceFileOr(path),
	}
	if req.KeepSource {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("import piece: read source: %w", err)
		}
		input.SourceData = data
	}

	piece, err := s.store.UpsertPiece(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("import piece: %w", err)
	}
	result.Piece = piece

	for _, warning := range result.Warnings {
		logging.WarnWithContext(s.logger, "piece metadata incomplete", "piece_metadata_incomplete",
			logging.Int64(logging.FieldPieceID, piece.ID),
			logging.String("detail", warning),
			logging.String(logging.FieldErrorHint, "fill in the project info in Dorico and re-import"),
			logging.String(logging.FieldImpact, "catalog entry is missing fields"))
	}
	s.logger.Info("imported piece",
		logging.Int64(logging.FieldPieceID, piece.ID),
		logging.String("name", piece.Name),
		logging.String("composer", piece.Composer))
	return result, nil
}

// SourceFileOr returns the explicit source file or fallback.
func (r ImportRequest) SourceFileOr(fallback string) string {
	if v := strings.TrimSpace(r.SourceFile); v != "" {
		return v
	}
	return fallback
}

// FetchPiece downloads a Drive file to a temporary location, imports it, and
// removes the temporary copy.
func (s *Service) FetchPiece(ctx context.Context, fileID string, req ImportRequest) (*ImportResult, error) {
	if s.drive == nil {
		return nil, ErrDriveUnavailable
	}
	if s.store == nil {
		return nil, ErrCatalogUnavailable
	}
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, errors.New("fetch piece: file id is required")
	}

	tmp, err := os.CreateTemp("", "scorelib-"+textutil.SanitizeToken(fileID)+"-*.dorico")
	if err != nil {
		return nil, fmt.Errorf("fetch piece: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("temp file cleanup failed", logging.String("path", tmpPath), logging.Error(err))
		}
	}()

	n, err := s.drive.Download(ctx, fileID, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("fetch piece %s: %w", fileID, err)
	}
	s.logger.Debug("downloaded piece", logging.String(logging.FieldFileID, fileID), logging.Int64("bytes", n))

	req.Path = tmpPath
	if strings.TrimSpace(req.SourceFile) == "" {
		req.SourceFile = "drive:" + fileID
	}
	return s.ImportPiece(ctx, req)
}

// SyncInstruments mirrors the section registry into the catalog.
func (s *Service) SyncInstruments(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, ErrCatalogUnavailable
	}
	n, err := s.store.SyncInstruments(ctx, s.vocab)
	if err != nil {
		return 0, err
	}
	s.logger.Info("synced instruments", logging.Int("instruments", n))
	return n, nil
}
