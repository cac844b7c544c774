package drive

import (
	"errors"
	"fmt"
	"net/http"
)

// TransientFetchError reports a Drive call that failed for a reason outside
// the request itself: the network, credentials, quota, or the service.
type TransientFetchError struct {
	Op         string
	FolderID   string
	StatusCode int
	Err        error
}

func (e *TransientFetchError) Error() string {
	target := ""
	if e.FolderID != "" {
		target = fmt.Sprintf(" folder %s", e.FolderID)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("drive: %s%s: status %d: %v", e.Op, target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("drive: %s%s: %v", e.Op, target, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// Temporary reports that the failure may clear on its own.
func (e *TransientFetchError) Temporary() bool { return true }

// RenameConflictError reports that a target name is already taken in the
// destination section.
type RenameConflictError struct {
	FileID  string
	Name    string
	Section string
}

func (e *RenameConflictError) Error() string {
	return fmt.Sprintf("drive: rename %s: %q already exists in section %s", e.FileID, e.Name, e.Section)
}

// APIError is a non-transient error response from Drive.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("drive: %s failed (%d %s): %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// IsTransient reports whether err wraps a TransientFetchError.
func IsTransient(err error) bool {
	var transient *TransientFetchError
	return errors.As(err, &transient)
}

// IsConflict reports whether err wraps a RenameConflictError.
func IsConflict(err error) bool {
	var conflict *RenameConflictError
	return errors.As(err, &conflict)
}

func transientStatus(code int) bool {
	switch {
	case code == http.StatusUnauthorized,
		code == http.StatusForbidden,
		code == http.StatusRequestTimeout,
		code == http.StatusTooManyRequests,
		code >= 500:
		return true
	default:
		return false
	}
}
