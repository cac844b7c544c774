package listingcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"scorelib/internal/fileutil"
	"scorelib/internal/logging"
	"scorelib/internal/reconcile"
)

// formatVersion is bumped whenever the on-disk layout changes.
const formatVersion = 1

type fileSection struct {
	Name  string                `json:"name"`
	Files []reconcile.FileEntry `json:"files"`
}

type fileFormat struct {
	Version   int           `json:"version"`
	FetchedAt time.Time     `json:"fetched_at"`
	Sections  []fileSection `json:"sections"`
}

// Info describes the stored snapshot without handing out the listing.
type Info struct {
	Path      string    `json:"path"`
	Exists    bool      `json:"exists"`
	Valid     bool      `json:"valid"`
	Expired   bool      `json:"expired"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
	Sections  int       `json:"sections"`
	Files     int       `json:"files"`
	SizeBytes int64     `json:"size_bytes"`
}

// Cache reads and writes a listing snapshot at a fixed path. A Cache with an
// empty path is disabled: Load reports absent and Save does nothing.
type Cache struct {
	path   string
	maxAge time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// New returns a cache rooted at path. maxAge of zero keeps snapshots until
// they are replaced or cleared.
func New(path string, maxAge time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		path:   strings.TrimSpace(path),
		maxAge: maxAge,
		logger: logging.NewComponentLogger(logger, "listingcache"),
		now:    time.Now,
	}
}

// Path returns the snapshot location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Load returns the stored listing, or false when no usable snapshot exists.
func (c *Cache) Load() (reconcile.Listing, bool) {
	listing, _, ok := c.LoadSnapshot()
	return listing, ok
}

// LoadSnapshot is Load that also reports when the listing was fetched.
func (c *Cache) LoadSnapshot() (reconcile.Listing, time.Time, bool) {
	if c == nil || c.path == "" {
		return nil, time.Time{}, false
	}
	if _, err := os.Stat(c.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.warn("listing cache unreadable", "listing_cache_corrupt", err)
		}
		return nil, time.Time{}, false
	}

	lock := c.lock()
	if err := lock.RLock(); err != nil {
		c.warn("listing cache lock failed", "listing_cache_lock_failed", err)
		return nil, time.Time{}, false
	}
	defer lock.Unlock()

	snapshot, err := c.read()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.warn("listing cache unreadable", "listing_cache_corrupt", err)
		}
		return nil, time.Time{}, false
	}
	if c.expired(snapshot.FetchedAt) {
		c.logger.Info("listing cache expired",
			logging.String(logging.FieldEventType, "listing_cache_expired"),
			logging.String("fetched_at", snapshot.FetchedAt.UTC().Format(time.RFC3339)),
			logging.Duration("max_age", c.maxAge))
		return nil, time.Time{}, false
	}

	listing := make(reconcile.Listing, len(snapshot.Sections))
	for _, sec := range snapshot.Sections {
		files := sec.Files
		if files == nil {
			files = []reconcile.FileEntry{}
		}
		listing[sec.Name] = files
	}

	c.logger.Debug("loaded listing cache",
		logging.Int("sections", len(listing)),
		logging.Int("files", listing.FileCount()),
		logging.String("path", c.path))
	return listing, snapshot.FetchedAt, true
}

// Save replaces the stored snapshot with listing, stamped as fetched now.
func (c *Cache) Save(listing reconcile.Listing) error {
	if c == nil || c.path == "" {
		return nil
	}
	return c.SaveAt(listing, c.now())
}

// SaveAt is Save with an explicit fetch time. Max age is measured from
// fetchedAt; a zero value means now.
func (c *Cache) SaveAt(listing reconcile.Listing, fetchedAt time.Time) error {
	if c == nil || c.path == "" {
		return nil
	}
	if fetchedAt.IsZero() {
		fetchedAt = c.now()
	}
	if listing == nil {
		return errors.New("listing cannot be nil")
	}

	snapshot := fileFormat{
		Version:   formatVersion,
		FetchedAt: fetchedAt.UTC(),
		Sections:  make([]fileSection, 0, len(listing)),
	}
	names := make([]string, 0, len(listing))
	for name := range listing {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		files := listing[name]
		if files == nil {
			files = []reconcile.FileEntry{}
		}
		snapshot.Sections = append(snapshot.Sections, fileSection{Name: name, Files: files})
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal listing cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	lock := c.lock()
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock listing cache: %w", err)
	}
	defer lock.Unlock()

	if err := fileutil.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write listing cache: %w", err)
	}

	c.logger.Debug("stored listing cache",
		logging.Int("sections", len(listing)),
		logging.Int("files", listing.FileCount()),
		logging.String("path", c.path))
	return nil
}

// Clear removes the stored snapshot. Clearing an absent snapshot is not an error.
func (c *Cache) Clear() error {
	if c == nil || c.path == "" {
		return nil
	}
	if _, err := os.Stat(filepath.Dir(c.path)); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	lock := c.lock()
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock listing cache: %w", err)
	}
	defer lock.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove listing cache: %w", err)
	}
	c.logger.Debug("cleared listing cache", logging.String("path", c.path))
	return nil
}

// Info inspects the stored snapshot.
func (c *Cache) Info() (Info, error) {
	info := Info{Path: c.Path()}
	if info.Path == "" {
		return info, nil
	}

	stat, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return info, nil
		}
		return info, fmt.Errorf("stat listing cache: %w", err)
	}
	info.Exists = true
	info.SizeBytes = stat.Size()

	lock := c.lock()
	if err := lock.RLock(); err != nil {
		return info, fmt.Errorf("lock listing cache: %w", err)
	}
	defer lock.Unlock()

	snapshot, err := c.read()
	if err != nil {
		return info, nil
	}
	info.Valid = true
	info.FetchedAt = snapshot.FetchedAt
	info.Expired = c.expired(snapshot.FetchedAt)
	info.Sections = len(snapshot.Sections)
	for _, sec := range snapshot.Sections {
		info.Files += len(sec.Files)
	}
	return info, nil
}

func (c *Cache) read() (fileFormat, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fileFormat{}, err
	}
	var snapshot fileFormat
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fileFormat{}, fmt.Errorf("parse listing cache: %w", err)
	}
	if snapshot.Version != formatVersion {
		return fileFormat{}, fmt.Errorf("listing cache version %d, want %d", snapshot.Version, formatVersion)
	}
	seen := make(map[string]struct{}, len(snapshot.Sections))
	for _, sec := range snapshot.Sections {
		if strings.TrimSpace(sec.Name) == "" {
			return fileFormat{}, errors.New("listing cache has a section without a name")
		}
		if _, dup := seen[sec.Name]; dup {
			return fileFormat{}, fmt.Errorf("listing cache lists section %q twice", sec.Name)
		}
		seen[sec.Name] = struct{}{}
	}
	return snapshot, nil
}

func (c *Cache) expired(fetchedAt time.Time) bool {
	if c.maxAge <= 0 {
		return false
	}
	return c.now().Sub(fetchedAt) > c.maxAge
}

func (c *Cache) lock() *flock.Flock {
	return flock.New(c.path + ".lock")
}

func (c *Cache) warn(msg, eventType string, err error) {
	logging.WarnWithContext(c.logger, msg, eventType,
		logging.String("path", c.path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "run scorelib listing --refresh or scorelib cache clear"),
		logging.String(logging.FieldImpact, "listing will be fetched from Drive"))
}
