package drive

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"scorelib/internal/logging"
	"scorelib/internal/reconcile"
	"scorelib/internal/vocabulary"
)

// FolderLister lists the files of one Drive folder.
type FolderLister interface {
	ListFolder(ctx context.Context, folderID string) ([]File, error)
}

// FetchListing lists every section folder of vocab with at most concurrency
// requests in flight and returns the combined snapshot. Sections without a
// folder ID are skipped. The first failure cancels the remaining fetches.
func (c *Client) FetchListing(ctx context.Context, vocab *vocabulary.Vocabulary, concurrency int) (reconcile.Listing, error) {
	return FetchListing(ctx, c, vocab, concurrency)
}

// FetchListing builds a Listing using any FolderLister.
func FetchListing(ctx context.Context, lister FolderLister, vocab *vocabulary.Vocabulary, concurrency int) (reconcile.Listing, error) {
	if vocab == nil {
		return nil, errors.New("fetch listing: vocabulary is nil")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	logger := logging.NewNop()
	if client, ok := lister.(*Client); ok && client != nil {
		logger = client.logger
	}

	var (
		mu      sync.Mutex
		listing = make(reconcile.Listing, vocab.Len())
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for _, section := range vocab.Sections() {
		if section.FolderID == "" {
			logging.WarnWithContext(logger, "section has no drive folder", "section_folder_missing",
				logging.String(logging.FieldSection, section.Name),
				logging.String(logging.FieldErrorHint, "set folder_id for this section in the config"),
				logging.String(logging.FieldImpact, "section is left out of the listing"))
			continue
		}
		section := section
		group.Go(func() error {
			files, err := lister.ListFolder(gctx, section.FolderID)
			if err != nil {
				return fmt.Errorf("fetch section %s: %w", section.Name, err)
			}
			entries := make([]reconcile.FileEntry, 0, len(files))
			for _, file := range files {
				entries = append(entries, reconcile.FileEntry{ID: file.ID, RawName: file.Name})
			}
			mu.Lock()
			listing[section.Name] = entries
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	logger.Info("fetched drive listing",
		logging.Int("sections", len(listing)),
		logging.Int("files", listing.FileCount()))
	return listing, nil
}
