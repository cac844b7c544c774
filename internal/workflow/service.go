package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"scorelib/internal/catalog"
	"scorelib/internal/config"
	"scorelib/internal/drive"
	"scorelib/internal/listingcache"
	"scorelib/internal/logging"
	"scorelib/internal/reconcile"
	"scorelib/internal/vocabulary"
)

var (
	// ErrDriveUnavailable reports an operation that needs Drive on a Service
	// built without a Drive client.
	ErrDriveUnavailable = errors.New("drive access is not configured (set drive.access_token or SCORELIB_DRIVE_ACCESS_TOKEN)")
	// ErrCatalogUnavailable reports an operation that needs the catalog on a
	// Service built without one.
	ErrCatalogUnavailable = errors.New("catalog is not open")
)

// Listing sources reported by Service.Listing.
const (
	SourceCache = "cache"
	SourceDrive = "drive"
)

// Drive is the subset of the Drive client the workflow uses.
type Drive interface {
	FetchListing(ctx context.Context, vocab *vocabulary.Vocabulary, concurrency int) (reconcile.Listing, error)
	UpdateFile(ctx context.Context, fileID string, update drive.FileUpdate) (drive.File, error)
	Download(ctx context.Context, fileID string, w io.Writer) (int64, error)
}

// Options carries the Service dependencies. Config and Vocabulary are required.
type Options struct {
	Config     *config.Config
	Vocabulary *vocabulary.Vocabulary
	Cache      *listingcache.Cache
	Catalog    *catalog.Store
	Drive      Drive
	Logger     *slog.Logger
}

// Service coordinates listing, planning, applying, and catalog imports.
type Service struct {
	cfg        *config.Config
	vocab      *vocabulary.Vocabulary
	reconciler *reconcile.Reconciler
	cache      *listingcache.Cache
	store      *catalog.Store
	drive      Drive
	logger     *slog.Logger
	baseLogger *slog.Logger
}

// New validates opts and builds a Service.
func New(opts Options) (*Service, error) {
	if opts.Config == nil {
		return nil, errors.New("workflow: config is required")
	}
	if opts.Vocabulary == nil {
		return nil, errors.New("workflow: vocabulary is required")
	}
	format, err := opts.Config.NamingFormat()
	if err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}
	base := opts.Logger
	if base == nil {
		base = logging.NewNop()
	}
	return &Service{
		cfg:   opts.Config,
		vocab: opts.Vocabulary,
		reconciler: reconcile.New(opts.Vocabulary, reconcile.Options{
			Format:             format,
			RequireFolderMatch: opts.Config.Naming.RequireFolderMatch,
			Workers:            opts.Config.Naming.Workers,
			Logger:             base,
		}),
		cache:      opts.Cache,
		store:      opts.Catalog,
		drive:      opts.Drive,
		logger:     logging.NewComponentLogger(base, "workflow"),
		baseLogger: base,
	}, nil
}

// Vocabulary returns the section registry the Service reconciles against.
func (s *Service) Vocabulary() *vocabulary.Vocabulary {
	return s.vocab
}

// Listing returns the cached listing unless refresh is set or the cache is
// empty, in which case it fetches from Drive and refreshes the cache. The
// second return value names the source.
func (s *Service) Listing(ctx context.Context, refresh bool) (reconcile.Listing, string, error) {
	listing, source, _, err := s.listing(ctx, refresh)
	return listing, source, err
}

// listing is Listing that also reports when the snapshot was taken from Drive.
func (s *Service) listing(ctx context.Context, refresh bool) (reconcile.Listing, string, time.Time, error) {
	if !refresh && s.cacheEnabled() {
		if listing, fetchedAt, ok := s.cache.LoadSnapshot(); ok {
			s.logger.Debug("using cached listing", logging.Int("files", listing.FileCount()))
			return listing, SourceCache, fetchedAt, nil
		}
	}
	if s.drive == nil {
		return nil, "", time.Time{}, ErrDriveUnavailable
	}

	fetchedAt := time.Now().UTC()
	listing, err := s.drive.FetchListing(ctx, s.vocab, s.cfg.Drive.FetchConcurrency)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("fetch listing: %w", err)
	}
	s.storeListing(listing, fetchedAt)
	return listing, SourceDrive, fetchedAt, nil
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.cfg.ListingCache.Enabled
}

func (s *Service) storeListing(listing reconcile.Listing, fetchedAt time.Time) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.SaveAt(listing, fetchedAt); err != nil {
		logging.WarnWithContext(s.logger, "listing cache write failed", "listing_cache_write_failed",
			logging.Error(err),
			logging.String("path", s.cache.Path()),
			logging.String(logging.FieldErrorHint, "check permissions on the listing cache path"),
			logging.String(logging.FieldImpact, "next run fetches from Drive again"))
	}
}
