package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"scorelib/internal/catalog"
	"scorelib/internal/config"
	"scorelib/internal/drive"
	"scorelib/internal/listingcache"
)

const driveCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSections builds the section registry and reports sections that cannot
// be listed because they have no folder id.
func CheckSections(cfg *config.Config) Result {
	const name = "Sections"

	vocab, err := cfg.Vocabulary()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	var missing []string
	for _, sec := range vocab.Sections() {
		if strings.TrimSpace(sec.FolderID) == "" {
			missing = append(missing, sec.Name)
		}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%d sections, no folder id for: %s", vocab.Len(), strings.Join(missing, ", "))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d sections", vocab.Len())}
}

// CheckCatalog opens the catalog database, applying pending migrations.
func CheckCatalog(ctx context.Context, cfg *config.Config) Result {
	const name = "Catalog"

	store, err := catalog.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", store.Path(), err)}
	}
	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", store.Path(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema %s)", store.Path(), version)}
}

// CheckListingCache reports whether the listing snapshot is usable.
// An absent cache passes; a corrupt one does not.
func CheckListingCache(cfg *config.Config) Result {
	const name = "Listing cache"

	cache := listingcache.New(cfg.ListingCache.Path, cfg.ListingCacheMaxAge(), nil)
	info, err := cache.Info()
	switch {
	case err != nil:
		return Result{Name: name, Detail: err.Error()}
	case !info.Exists:
		return Result{Name: name, Passed: true, Detail: "empty"}
	case !info.Valid:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: unreadable, run 'scorelib cache clear')", info.Path)}
	case info.Expired:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("expired, %d files", info.Files)}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d files in %d sections", info.Files, info.Sections)}
	}
}

// CheckDrive verifies Drive credentials. With a shared drive configured it
// looks up the drive; otherwise it lists the first section folder.
func CheckDrive(ctx context.Context, cfg *config.Config) Result {
	const name = "Drive"

	if missingToken(cfg) {
		return Result{Name: name, Detail: "access token missing"}
	}
	client, err := drive.New(drive.Config{
		BaseURL:     cfg.Drive.BaseURL,
		AccessToken: cfg.Drive.AccessToken,
		DriveID:     cfg.Drive.DriveID,
		MimeType:    cfg.Drive.MimeType,
		PageSize:    1,
		Timeout:     driveCheckTimeout,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, driveCheckTimeout)
	defer cancel()

	if strings.TrimSpace(cfg.Drive.DriveID) != "" {
		info, err := client.SharedDrive(checkCtx)
		if err != nil {
			return Result{Name: name, Detail: summarizeDriveError(err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("shared drive %q reachable", info.Name)}
	}

	vocab, err := cfg.Vocabulary()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	for _, sec := range vocab.Sections() {
		if sec.FolderID == "" {
			continue
		}
		if _, err := client.ListFolder(checkCtx, sec.FolderID); err != nil {
			return Result{Name: name, Detail: summarizeDriveError(err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("folder for %s reachable", sec.Name)}
	}
	return Result{Name: name, Detail: "no section has a folder id"}
}

func summarizeDriveError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (Drive API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (Drive API unreachable)"
	}
	var transient *drive.TransientFetchError
	if errors.As(err, &transient) {
		switch transient.StatusCode {
		case 401:
			return "auth failed (invalid or expired access token)"
		case 403:
			return "access denied (check token scope and folder sharing)"
		}
	}
	return err.Error()
}
