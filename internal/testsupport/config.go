package testsupport

import (
	"path/filepath"
	"testing"

	"scorelib/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.ListingCache.Path = filepath.Join(base, "data", "listing_cache.json")
	cfgVal.Catalog.Path = filepath.Join(base, "data", "catalog.db")
	cfgVal.Drive.AccessToken = "test-token"
	cfgVal.Drive.DriveID = "test-drive"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSections replaces the built-in registry with sections.
func WithSections(sections ...config.Section) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sections = append([]config.Section(nil), sections...)
	}
}

// WithDriveURL points the Drive client at a test server.
func WithDriveURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Drive.BaseURL = baseURL
	}
}

// WithListingCache toggles the listing cache.
func WithListingCache(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ListingCache.Enabled = enabled
	}
}

// WithFolderMatch sets the naming.require_folder_match policy.
func WithFolderMatch(required bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Naming.RequireFolderMatch = required
	}
}

// BandSections is a small registry used across tests.
func BandSections() []config.Section {
	return []config.Section{
		{Name: "Horn", FolderID: "folder-horn", Aliases: []string{"French Horn", "Horn in F", "Horn"}},
		{Name: "Clarinet", FolderID: "folder-clarinet", Aliases: []string{"Bb Clarinet", "Clarinet"}},
		{Name: "Trumpet", FolderID: "folder-trumpet", Aliases: []string{"Trumpet"}},
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
