package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"scorelib/internal/naming"
	"scorelib/internal/vocabulary"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Drive contains Google Drive API settings.
type Drive struct {
	BaseURL          string `toml:"base_url"`
	DriveID          string `toml:"drive_id"`
	AccessToken      string `toml:"access_token"`
	MimeType         string `toml:"mime_type"`
	PageSize         int    `toml:"page_size"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	FetchConcurrency int    `toml:"fetch_concurrency"`
}

// ListingCache contains configuration for the on-disk listing snapshot.
type ListingCache struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	MaxAgeHours int    `toml:"max_age_hours"` // 0 keeps the snapshot until refreshed
}

// Catalog contains configuration for the local piece catalog database.
type Catalog struct {
	Path string `toml:"path"`
}

// Naming contains the canonical file name convention and reconcile policy.
type Naming struct {
	Format             string `toml:"format"`
	RequireFolderMatch bool   `toml:"require_folder_match"`
	Workers            int    `toml:"workers"`
}

// Section declares one instrument section of the registry.
type Section struct {
	Name     string   `toml:"name"`
	FolderID string   `toml:"folder_id"`
	Aliases  []string `toml:"aliases"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scorelib.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Drive: shared drive access for listing, renaming, and downloads
//   - ListingCache: local snapshot of the last fetched listing
//   - Catalog: SQLite catalog of pieces, instruments, and runs
//   - Naming: canonical name format and reconcile policy
//   - Sections: ordered instrument registry (built-in when empty)
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Drive        Drive        `toml:"drive"`
	ListingCache ListingCache `toml:"listing_cache"`
	Catalog      Catalog      `toml:"catalog"`
	Naming       Naming       `toml:"naming"`
	Sections     []Section    `toml:"sections"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has environment overrides applied and all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, filepath.Dir(c.Catalog.Path)}
	if c.ListingCache.Enabled {
		dirs = append(dirs, filepath.Dir(c.ListingCache.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Vocabulary builds the section registry. An empty [[sections]] list selects
// the built-in registry.
func (c *Config) Vocabulary() (*vocabulary.Vocabulary, error) {
	if len(c.Sections) == 0 {
		return vocabulary.Default(), nil
	}
	sections := make([]vocabulary.Section, 0, len(c.Sections))
	for _, sec := range c.Sections {
		sections = append(sections, vocabulary.Section{
			Name:     sec.Name,
			FolderID: sec.FolderID,
			Aliases:  append([]string(nil), sec.Aliases...),
		})
	}
	return vocabulary.New(sections)
}

// NamingFormat returns the parsed canonical name format.
func (c *Config) NamingFormat() (naming.Format, error) {
	format, err := naming.ParseFormat(c.Naming.Format)
	if err != nil {
		return naming.Format{}, fmt.Errorf("naming.format: %w", err)
	}
	return format, nil
}

// DriveTimeout returns the per-request Drive timeout.
func (c *Config) DriveTimeout() time.Duration {
	return time.Duration(c.Drive.TimeoutSeconds) * time.Second
}

// ListingCacheMaxAge returns how long a cached listing stays usable; zero
// means it never expires.
func (c *Config) ListingCacheMaxAge() time.Duration {
	return time.Duration(c.ListingCache.MaxAgeHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
