package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{
		BaseURL:     server.URL,
		AccessToken: "token-123",
		DriveID:     "shared-drive",
		PageSize:    2,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Config{AccessToken: "  "}); err == nil {
		t.Fatal("expected error for missing access token")
	}
}

func TestListFolderFollowsPagesAndBuildsQuery(t *testing.T) {
	var requests []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("unexpected authorization header %q", got)
		}
		query := r.URL.Query()
		requests = append(requests, query.Get("pageToken"))
		if want := "mimeType='application/pdf' and 'folder-horn' in parents and trashed=false"; query.Get("q") != want {
			t.Errorf("unexpected q: %q", query.Get("q"))
		}
		for key, want := range map[string]string{
			"corpora":                   "drive",
			"driveId":                   "shared-drive",
			"includeItemsFromAllDrives": "true",
			"supportsAllDrives":         "true",
			"orderBy":                   "name",
			"pageSize":                  "2",
			"fields":                    "nextPageToken, files(id, name, parents)",
		} {
			if got := query.Get(key); got != want {
				t.Errorf("param %s = %q, want %q", key, got, want)
			}
		}

		var resp listResponse
		switch query.Get("pageToken") {
		case "":
			resp = listResponse{NextPageToken: "p2", Files: []File{{ID: "1", Name: "A - Horn"}, {ID: "2", Name: "B - Horn"}}}
		case "p2":
			resp = listResponse{Files: []File{{ID: "3", Name: "C - Horn"}}}
		default:
			t.Errorf("unexpected page token %q", query.Get("pageToken"))
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	files, err := newTestClient(t, handler).ListFolder(context.Background(), "folder-horn")
	if err != nil {
		t.Fatalf("ListFolder returned error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected files from both pages, got %d", len(files))
	}
	if files[0].ID != "1" || files[2].Name != "C - Horn" {
		t.Fatalf("unexpected files: %+v", files)
	}
	if len(requests) != 2 || requests[0] != "" || requests[1] != "p2" {
		t.Fatalf("unexpected page sequence: %v", requests)
	}
}

func TestListFolderEscapesQuotes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := `mimeType='application/pdf' and 'it\'s' in parents and trashed=false`; r.URL.Query().Get("q") != want {
			t.Errorf("unexpected q: %q", r.URL.Query().Get("q"))
		}
		_, _ = io.WriteString(w, `{"files": []}`)
	})
	files, err := newTestClient(t, handler).ListFolder(context.Background(), "it's")
	if err != nil {
		t.Fatalf("ListFolder returned error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}

func TestListFolderClassifiesFailures(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusNotFound, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})
			_, err := newTestClient(t, handler).ListFolder(context.Background(), "folder")
			if err == nil {
				t.Fatal("expected error")
			}
			if IsTransient(err) != tt.transient {
				t.Fatalf("IsTransient = %v, want %v (%v)", IsTransient(err), tt.transient, err)
			}
			var transient *TransientFetchError
			if errors.As(err, &transient) {
				if !transient.Temporary() || transient.StatusCode != tt.status || transient.FolderID != "folder" {
					t.Fatalf("unexpected transient error: %+v", transient)
				}
			} else {
				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
					t.Fatalf("expected APIError, got %v", err)
				}
			}
		})
	}
}

func TestListFolderNetworkFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := New(Config{BaseURL: server.URL, AccessToken: "t"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	server.Close()

	_, err = client.ListFolder(context.Background(), "folder")
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestUpdateFileSendsPatch(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/files/file-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("addParents") != "new-folder" || query.Get("removeParents") != "old-folder" {
			t.Errorf("unexpected parents: %v", query)
		}
		if query.Get("supportsAllDrives") != "true" {
			t.Errorf("expected supportsAllDrives")
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(File{ID: "file-1", Name: body["name"], Parents: []string{"new-folder"}})
	})

	updated, err := newTestClient(t, handler).UpdateFile(context.Background(), "file-1", FileUpdate{
		Name:          "Fanfare - Horn",
		AddParents:    "new-folder",
		RemoveParents: "old-folder",
	})
	if err != nil {
		t.Fatalf("UpdateFile returned error: %v", err)
	}
	if updated.Name != "Fanfare - Horn" || len(updated.Parents) != 1 {
		t.Fatalf("unexpected updated file: %+v", updated)
	}
}

func TestUpdateFileConflict(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "exists", http.StatusConflict)
	})
	_, err := newTestClient(t, handler).UpdateFile(context.Background(), "file-1", FileUpdate{Name: "Taken"})
	if !IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestDownloadStreamsContent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/file-9" || r.URL.Query().Get("alt") != "media" {
			t.Errorf("unexpected download request %s", r.URL.String())
		}
		_, _ = io.WriteString(w, "archive-bytes")
	})
	var buf bytes.Buffer
	n, err := newTestClient(t, handler).Download(context.Background(), "file-9", &buf)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if n != int64(len("archive-bytes")) || buf.String() != "archive-bytes" {
		t.Fatalf("unexpected download: %d %q", n, buf.String())
	}
}

func TestSharedDrive(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drives/shared-drive" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"id": "shared-drive", "name": "Band Library"}`)
	})
	info, err := newTestClient(t, handler).SharedDrive(context.Background())
	if err != nil {
		t.Fatalf("SharedDrive returned error: %v", err)
	}
	if info.Name != "Band Library" {
		t.Fatalf("unexpected drive info: %+v", info)
	}
}

func TestErrorMessages(t *testing.T) {
	conflict := &RenameConflictError{FileID: "f1", Name: "X - Horn", Section: "Horn"}
	if !strings.Contains(conflict.Error(), `"X - Horn"`) {
		t.Fatalf("unexpected conflict message: %s", conflict)
	}
	transient := &TransientFetchError{Op: "list files", FolderID: "abc", StatusCode: 503, Err: errors.New("down")}
	if !strings.Contains(transient.Error(), "folder abc") || !strings.Contains(transient.Error(), "503") {
		t.Fatalf("unexpected transient message: %s", transient)
	}
}
