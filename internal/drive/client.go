package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"scorelib/internal/logging"
)

const (
	defaultBaseURL     = "https://www.googleapis.com/drive/v3"
	defaultMimeType    = "application/pdf"
	defaultPageSize    = 100
	defaultHTTPTimeout = 30 * time.Second
	listFields         = "nextPageToken, files(id, name, parents)"
	fileFields         = "id, name, parents"
)

// Config describes the Drive client configuration.
type Config struct {
	BaseURL     string
	AccessToken string
	DriveID     string
	MimeType    string
	PageSize    int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Client wraps the subset of the Drive v3 API scorelib needs.
type Client struct {
	token    string
	driveID  string
	mimeType string
	pageSize int
	baseURL  *url.URL
	http     *http.Client
	logger   *slog.Logger
}

// File is a Drive file as returned by list and update calls.
type File struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Parents []string `json:"parents,omitempty"`
}

// FileUpdate describes a metadata change. Empty fields are left alone.
type FileUpdate struct {
	Name          string
	AddParents    string
	RemoveParents string
}

// DriveInfo identifies a shared drive.
type DriveInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Files         []File `json:"files"`
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errors.New("drive: access token is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("drive: parse base url: %w", err)
	}
	mimeType := strings.TrimSpace(cfg.MimeType)
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		token:    token,
		driveID:  strings.TrimSpace(cfg.DriveID),
		mimeType: mimeType,
		pageSize: pageSize,
		baseURL:  baseURL,
		http:     client,
		logger:   logging.NewComponentLogger(cfg.Logger, "drive"),
	}, nil
}

// ListFolder returns every matching file directly inside folderID, following
// page tokens until the listing is exhausted. Files come back ordered by name.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]File, error) {
	if c == nil {
		return nil, errors.New("drive: client is nil")
	}
	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return nil, errors.New("drive: folder id is required")
	}

	var (
		files     []File
		pageToken string
		pages     int
	)
	for {
		endpoint := c.baseURL.JoinPath("files")
		params := url.Values{}
		params.Set("q", fmt.Sprintf("mimeType='%s' and '%s' in parents and trashed=false", escapeQuery(c.mimeType), escapeQuery(folderID)))
		params.Set("fields", listFields)
		params.Set("orderBy", "name")
		params.Set("pageSize", strconv.Itoa(c.pageSize))
		params.Set("supportsAllDrives", "true")
		params.Set("includeItemsFromAllDrives", "true")
		if c.driveID != "" {
			params.Set("corpora", "drive")
			params.Set("driveId", c.driveID)
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		endpoint.RawQuery = params.Encode()

		var page listResponse
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &page, "list files", folderID); err != nil {
			return nil, err
		}
		files = append(files, page.Files...)
		pages++
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.Debug("listed drive folder",
		logging.String(logging.FieldFolderID, folderID),
		logging.Int("files", len(files)),
		logging.Int("pages", pages))
	return files, nil
}

// UpdateFile applies a metadata change and returns the updated file.
func (c *Client) UpdateFile(ctx context.Context, fileID string, update FileUpdate) (File, error) {
	if c == nil {
		return File{}, errors.New("drive: client is nil")
	}
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return File{}, errors.New("drive: file id is required")
	}

	endpoint := c.baseURL.JoinPath("files", fileID)
	params := url.Values{}
	params.Set("supportsAllDrives", "true")
	params.Set("fields", fileFields)
	if update.AddParents != "" {
		params.Set("addParents", update.AddParents)
	}
	if update.RemoveParents != "" {
		params.Set("removeParents", update.RemoveParents)
	}
	endpoint.RawQuery = params.Encode()

	body := map[string]string{}
	if update.Name != "" {
		body["name"] = update.Name
	}

	var updated File
	if err := c.doJSON(ctx, http.MethodPatch, endpoint, body, &updated, "update file", ""); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return File{}, &RenameConflictError{FileID: fileID, Name: update.Name}
		}
		return File{}, err
	}
	return updated, nil
}

// Download streams the content of fileID into w and returns the bytes written.
func (c *Client) Download(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	if c == nil {
		return 0, errors.New("drive: client is nil")
	}
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return 0, errors.New("drive: file id is required")
	}

	endpoint := c.baseURL.JoinPath("files", fileID)
	params := url.Values{}
	params.Set("alt", "media")
	params.Set("supportsAllDrives", "true")
	endpoint.RawQuery = params.Encode()

	resp, err := c.do(ctx, http.MethodGet, endpoint, nil, "download file", "")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &TransientFetchError{Op: "download file", Err: err}
	}
	return n, nil
}

// SharedDrive looks up the configured shared drive. It doubles as a
// credential check.
func (c *Client) SharedDrive(ctx context.Context) (DriveInfo, error) {
	if c == nil {
		return DriveInfo{}, errors.New("drive: client is nil")
	}
	if c.driveID == "" {
		return DriveInfo{}, errors.New("drive: drive id is not configured")
	}
	endpoint := c.baseURL.JoinPath("drives", c.driveID)
	params := url.Values{}
	params.Set("fields", "id, name")
	endpoint.RawQuery = params.Encode()

	var info DriveInfo
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &info, "get shared drive", ""); err != nil {
		return DriveInfo{}, err
	}
	return info, nil
}

func (c *Client) doJSON(ctx context.Context, method string, endpoint *url.URL, body any, out any, op, folderID string) error {
	resp, err := c.do(ctx, method, endpoint, body, op, folderID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("drive: decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, endpoint *url.URL, body any, op, folderID string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("drive: encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("drive: build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("drive: %s: %w", op, ctxErr)
		}
		return nil, &TransientFetchError{Op: op, FolderID: folderID, Err: err}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		message := strings.TrimSpace(string(payload))
		if transientStatus(resp.StatusCode) {
			return nil, &TransientFetchError{Op: op, FolderID: folderID, StatusCode: resp.StatusCode, Err: errors.New(message)}
		}
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: message}
	}
	return resp, nil
}

// escapeQuery escapes a literal for use inside a single-quoted Drive query term.
func escapeQuery(value string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
}
