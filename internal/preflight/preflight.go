package preflight

import (
	"context"
	"strings"

	"scorelib/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Options selects optional checks.
type Options struct {
	// Offline skips checks that talk to Drive.
	Offline bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckSections(cfg),
		CheckCatalog(ctx, cfg),
	}
	if cfg.ListingCache.Enabled {
		results = append(results, CheckListingCache(cfg))
	}
	if !opts.Offline {
		results = append(results, CheckDrive(ctx, cfg))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

func missingToken(cfg *config.Config) bool {
	return strings.TrimSpace(cfg.Drive.AccessToken) == ""
}
