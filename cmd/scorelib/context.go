package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"scorelib/internal/catalog"
	"scorelib/internal/config"
	"scorelib/internal/drive"
	"scorelib/internal/listingcache"
	"scorelib/internal/logging"
	"scorelib/internal/vocabulary"
	"scorelib/internal/workflow"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	store *catalog.Store
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// baseLogger writes to stderr and the log file. A logger that cannot be built
// degrades to a no-op so commands still run.
func (c *commandContext) baseLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) vocabulary() (*vocabulary.Vocabulary, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Vocabulary()
}

func (c *commandContext) listingCache() (*listingcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return listingcache.New(cfg.ListingCache.Path, cfg.ListingCacheMaxAge(), c.baseLogger()), nil
}

func (c *commandContext) catalog() (*catalog.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

// driveClient returns nil without an error when no access token is
// configured; operations that need Drive report workflow.ErrDriveUnavailable.
func (c *commandContext) driveClient() (*drive.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Drive.AccessToken) == "" {
		return nil, nil
	}
	return drive.New(drive.Config{
		BaseURL:     cfg.Drive.BaseURL,
		AccessToken: cfg.Drive.AccessToken,
		DriveID:     cfg.Drive.DriveID,
		MimeType:    cfg.Drive.MimeType,
		PageSize:    cfg.Drive.PageSize,
		Timeout:     cfg.DriveTimeout(),
		Logger:      c.baseLogger(),
	})
}

func (c *commandContext) service() (*workflow.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	vocab, err := cfg.Vocabulary()
	if err != nil {
		return nil, err
	}
	cache, err := c.listingCache()
	if err != nil {
		return nil, err
	}
	store, err := c.catalog()
	if err != nil {
		return nil, err
	}
	client, err := c.driveClient()
	if err != nil {
		return nil, err
	}
	opts := workflow.Options{
		Config:     cfg,
		Vocabulary: vocab,
		Cache:      cache,
		Catalog:    store,
		Logger:     c.baseLogger(),
	}
	if client != nil {
		opts.Drive = client
	}
	return workflow.New(opts)
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	if err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
