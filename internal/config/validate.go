package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateListingCache(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateSections(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDrive() error {
	parsed, err := url.Parse(c.Drive.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("drive.base_url must be an absolute URL, got %q", c.Drive.BaseURL)
	}
	if c.Drive.PageSize < 1 || c.Drive.PageSize > maxDrivePageSize {
		return fmt.Errorf("drive.page_size must be between 1 and %d", maxDrivePageSize)
	}
	if c.Drive.TimeoutSeconds < 0 {
		return errors.New("drive.timeout_seconds must be positive")
	}
	if c.Drive.FetchConcurrency < 1 {
		return errors.New("drive.fetch_concurrency must be positive")
	}
	return nil
}

func (c *Config) validateListingCache() error {
	if c.ListingCache.MaxAgeHours < 0 {
		return errors.New("listing_cache.max_age_hours must be zero or positive")
	}
	return nil
}

func (c *Config) validateNaming() error {
	if _, err := c.NamingFormat(); err != nil {
		return err
	}
	if c.Naming.Workers < 1 || c.Naming.Workers > maxNamingWorkers {
		return fmt.Errorf("naming.workers must be between 1 and %d", maxNamingWorkers)
	}
	return nil
}

func (c *Config) validateSections() error {
	if len(c.Sections) == 0 {
		return nil
	}
	if _, err := c.Vocabulary(); err != nil {
		return fmt.Errorf("sections: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
