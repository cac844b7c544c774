package catalog

import (
	"errors"
	"time"
)

// ErrNotFound reports a lookup that matched no row.
var ErrNotFound = errors.New("catalog: not found")

// Piece is one work in the band's library.
type Piece struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	DriveFolderID       string    `json:"drive_folder_id,omitempty"`
	Composer            string    `json:"composer,omitempty"`
	Arranger            string    `json:"arranger,omitempty"`
	IsCurrentRepertoire bool      `json:"is_current_repertoire"`
	SourceFile          string    `json:"source_file,omitempty"`
	HasSourceData       bool      `json:"has_source_data"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// PieceInput carries the fields written by UpsertPiece. Empty strings leave
// the stored value untouched on update; CurrentRepertoire is nil to keep the
// current flag.
type PieceInput struct {
	Name              string
	DriveFolderID     string
	Composer          string
	Arranger          string
	CurrentRepertoire *bool
	SourceFile        string
	SourceData        []byte
}

// Instrument mirrors one vocabulary section.
type Instrument struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Position int      `json:"position"`
	FolderID string   `json:"folder_id,omitempty"`
	Variants []string `json:"variants"`
}

// RunMode records what a reconciliation run was for.
type RunMode string

const (
	RunModePlan   RunMode = "plan"
	RunModeApply  RunMode = "apply"
	RunModeDryRun RunMode = "dry-run"
)

// Run is one recorded reconciliation pass.
type Run struct {
	ID         string    `json:"id"`
	Mode       RunMode   `json:"mode"`
	Source     string    `json:"source"`
	Total      int       `json:"total"`
	Conforming int       `json:"conforming"`
	Renamed    int       `json:"renamed"`
	Moved      int       `json:"moved"`
	Unresolved int       `json:"unresolved"`
	CreatedAt  time.Time `json:"created_at"`
}

// DecisionStatus tracks whether a recorded decision reached Drive.
type DecisionStatus string

const (
	DecisionPending  DecisionStatus = "pending"
	DecisionApplied  DecisionStatus = "applied"
	DecisionFailed   DecisionStatus = "failed"
	DecisionConflict DecisionStatus = "conflict"
	DecisionNoAction DecisionStatus = "no_action"
)

// DecisionRecord is a stored reconcile decision.
type DecisionRecord struct {
	RunID         string         `json:"run_id"`
	Seq           int            `json:"seq"`
	FileID        string         `json:"file_id"`
	OldName       string         `json:"old_name"`
	NewName       string         `json:"new_name,omitempty"`
	Section       string         `json:"section"`
	ListedSection string         `json:"listed_section"`
	Alias         string         `json:"alias,omitempty"`
	Title         string         `json:"title,omitempty"`
	Outcome       string         `json:"outcome"`
	Reason        string         `json:"reason"`
	Status        DecisionStatus `json:"status"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
