package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"scorelib/internal/config"
	"scorelib/internal/drive"
	"scorelib/internal/testsupport"
)

var parentsPattern = regexp.MustCompile(`'([^']+)' in parents`)

// fakeDrive serves the subset of the Drive v3 API the CLI uses.
type fakeDrive struct {
	mu      sync.Mutex
	folders map[string][]drive.File
	content map[string][]byte
	patches []string
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		folders: map[string][]drive.File{
			"folder-horn": {
				{ID: "h1", Name: "Fanfare - Horn"},
				{ID: "h2", Name: "French Horn March.pdf"},
				{ID: "h3", Name: "Fanfare.pdf"},
			},
			"folder-clarinet": {
				{ID: "c1", Name: "Solo_Bb_Clarinet_MyPiece.pdf"},
				{ID: "c2", Name: "Waltz - Trumpet"},
			},
		},
		content: map[string][]byte{},
	}
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-token" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "files" && r.Method == http.MethodGet:
		match := parentsPattern.FindStringSubmatch(r.URL.Query().Get("q"))
		if match == nil {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		files := f.folders[match[1]]
		if files == nil {
			files = []drive.File{}
		}
		writeTestJSON(w, map[string]any{"files": files})
	case len(parts) == 2 && parts[0] == "files" && r.Method == http.MethodGet:
		data, ok := f.content[parts[1]]
		if !ok || r.URL.Query().Get("alt") != "media" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	case len(parts) == 2 && parts[0] == "files" && r.Method == http.MethodPatch:
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.patches = append(f.patches, parts[1])
		updated, ok := f.update(parts[1], body.Name, r.URL.Query().Get("addParents"), r.URL.Query().Get("removeParents"))
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeTestJSON(w, updated)
	case len(parts) == 2 && parts[0] == "drives":
		writeTestJSON(w, map[string]string{"id": parts[1], "name": "Band Library"})
	default:
		http.Error(w, "unexpected request", http.StatusBadRequest)
	}
}

func (f *fakeDrive) update(fileID, name, addParent, removeParent string) (drive.File, bool) {
	for folder, files := range f.folders {
		for i, file := range files {
			if file.ID != fileID {
				continue
			}
			if name != "" {
				file.Name = name
			}
			if addParent != "" && removeParent == folder {
				f.folders[folder] = append(files[:i:i], files[i+1:]...)
				f.folders[addParent] = append(f.folders[addParent], file)
			} else {
				files[i] = file
			}
			return file, true
		}
	}
	return drive.File{}, false
}

func (f *fakeDrive) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type cliTestEnv struct {
	cfg        *config.Config
	drive      *fakeDrive
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	fake := newFakeDrive()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithSections(testsupport.BandSections()...),
		testsupport.WithDriveURL(srv.URL),
	)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"SCORELIB_DRIVE_ACCESS_TOKEN", "SCORELIB_DRIVE_ID", "SCORELIB_CATALOG_PATH", "SCORELIB_LOG_LEVEL", "SCORELIB_LOG_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, drive: fake, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	cfg.Logging.Level = "error"
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
