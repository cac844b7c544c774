package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the SCORELIB_* variables that take precedence over the
// file. Unset variables leave the decoded values untouched.
type envOverrides struct {
	DriveAccessToken *string `envconfig:"DRIVE_ACCESS_TOKEN"`
	DriveID          *string `envconfig:"DRIVE_ID"`
	CatalogPath      *string `envconfig:"CATALOG_PATH"`
	LogLevel         *string `envconfig:"LOG_LEVEL"`
	LogFormat        *string `envconfig:"LOG_FORMAT"`
}

const envPrefix = "SCORELIB"

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	override := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	override(&c.Drive.AccessToken, env.DriveAccessToken)
	override(&c.Drive.DriveID, env.DriveID)
	override(&c.Catalog.Path, env.CatalogPath)
	override(&c.Logging.Level, env.LogLevel)
	override(&c.Logging.Format, env.LogFormat)
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDrive()
	c.normalizeNaming()
	c.normalizeSections()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.ListingCache.Path) == "" {
		c.ListingCache.Path = filepath.Join(c.Paths.DataDir, defaultListingCacheName)
	}
	if c.ListingCache.Path, err = expandPath(strings.TrimSpace(c.ListingCache.Path)); err != nil {
		return fmt.Errorf("listing_cache.path: %w", err)
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = filepath.Join(c.Paths.DataDir, defaultCatalogName)
	}
	if c.Catalog.Path, err = expandPath(strings.TrimSpace(c.Catalog.Path)); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeDrive() {
	c.Drive.BaseURL = strings.TrimRight(strings.TrimSpace(c.Drive.BaseURL), "/")
	if c.Drive.BaseURL == "" {
		c.Drive.BaseURL = defaultDriveBaseURL
	}
	c.Drive.DriveID = strings.TrimSpace(c.Drive.DriveID)
	c.Drive.AccessToken = strings.TrimSpace(c.Drive.AccessToken)
	c.Drive.MimeType = strings.TrimSpace(c.Drive.MimeType)
	if c.Drive.MimeType == "" {
		c.Drive.MimeType = defaultDriveMimeType
	}
	if c.Drive.PageSize == 0 {
		c.Drive.PageSize = defaultDrivePageSize
	}
	if c.Drive.TimeoutSeconds == 0 {
		c.Drive.TimeoutSeconds = defaultDriveTimeoutSeconds
	}
	if c.Drive.FetchConcurrency == 0 {
		c.Drive.FetchConcurrency = defaultDriveFetchConcurrency
	}
}

func (c *Config) normalizeNaming() {
	if strings.TrimSpace(c.Naming.Format) == "" {
		c.Naming.Format = defaultNamingFormat
	}
	if c.Naming.Workers == 0 {
		c.Naming.Workers = defaultNamingWorkers
	}
}

func (c *Config) normalizeSections() {
	for i := range c.Sections {
		c.Sections[i].Name = strings.TrimSpace(c.Sections[i].Name)
		c.Sections[i].FolderID = strings.TrimSpace(c.Sections[i].FolderID)
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
