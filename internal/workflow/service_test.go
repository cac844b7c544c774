package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"scorelib/internal/catalog"
	"scorelib/internal/config"
	"scorelib/internal/drive"
	"scorelib/internal/listingcache"
	"scorelib/internal/reconcile"
	"scorelib/internal/testsupport"
	"scorelib/internal/vocabulary"
	"scorelib/internal/workflow"
)

type fakeDrive struct {
	mu        sync.Mutex
	folders   map[string][]drive.File // by section name
	fetches   int
	updates   []string
	downloads map[string][]byte
	fetchErr  error
	failIDs   map[string]error
}

func (f *fakeDrive) FetchListing(_ context.Context, vocab *vocabulary.Vocabulary, _ int) (reconcile.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	listing := reconcile.Listing{}
	for _, name := range vocab.Names() {
		entries := []reconcile.FileEntry{}
		for _, file := range f.folders[name] {
			entries = append(entries, reconcile.FileEntry{ID: file.ID, RawName: file.Name})
		}
		listing[name] = entries
	}
	return listing, nil
}

func (f *fakeDrive) UpdateFile(_ context.Context, fileID string, update drive.FileUpdate) (drive.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fileID)
	if err := f.failIDs[fileID]; err != nil {
		return drive.File{}, err
	}
	for section, files := range f.folders {
		for i, file := range files {
			if file.ID != fileID {
				continue
			}
			if update.Name != "" {
				file.Name = update.Name
			}
			if update.AddParents != "" {
				target := strings.TrimPrefix(update.AddParents, "folder-")
				target = strings.ToUpper(target[:1]) + target[1:]
				f.folders[section] = append(files[:i:i], files[i+1:]...)
				f.folders[target] = append(f.folders[target], file)
			} else {
				files[i] = file
			}
			return file, nil
		}
	}
	return drive.File{}, errors.New("file not found")
}

func (f *fakeDrive) Download(_ context.Context, fileID string, w io.Writer) (int64, error) {
	data, ok := f.downloads[fileID]
	if !ok {
		return 0, &drive.APIError{Op: "download file", StatusCode: 404, Body: "not found"}
	}
	n, err := io.Copy(w, bytes.NewReader(data))
	return n, err
}

type harness struct {
	cfg     *config.Config
	drive   *fakeDrive
	store   *catalog.Store
	cache   *listingcache.Cache
	service *workflow.Service
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithSections(testsupport.BandSections()...)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	vocab, err := cfg.Vocabulary()
	if err != nil {
		t.Fatalf("Vocabulary: %v", err)
	}
	fd := &fakeDrive{
		folders: map[string][]drive.File{
			"Horn": {
				{ID: "h1", Name: "Fanfare - Horn"},
				{ID: "h2", Name: "French Horn March.pdf"},
				{ID: "h3", Name: "Fanfare.pdf"},
			},
			"Clarinet": {
				{ID: "c1", Name: "Solo_Bb_Clarinet_MyPiece.pdf"},
				{ID: "c2", Name: "Waltz - Trumpet"},
			},
		},
		downloads: map[string][]byte{},
	}
	store := testsupport.MustOpenCatalog(t, cfg)
	cache := listingcache.New(cfg.ListingCache.Path, 0, nil)
	service, err := workflow.New(workflow.Options{
		Config:     cfg,
		Vocabulary: vocab,
		Cache:      cache,
		Catalog:    store,
		Drive:      fd,
	})
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	return &harness{cfg: cfg, drive: fd, store: store, cache: cache, service: service}
}

func TestNewRequiresConfigAndVocabulary(t *testing.T) {
	if _, err := workflow.New(workflow.Options{}); err == nil {
		t.Fatal("expected error without config")
	}
	cfg := testsupport.NewConfig(t)
	if _, err := workflow.New(workflow.Options{Config: cfg}); err == nil {
		t.Fatal("expected error without vocabulary")
	}
}

func TestListingPrefersCacheUntilRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	listing, source, err := h.service.Listing(ctx, false)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if source != workflow.SourceDrive || h.drive.fetches != 1 {
		t.Fatalf("expected first listing from drive, got %s (%d fetches)", source, h.drive.fetches)
	}
	if listing.FileCount() != 5 {
		t.Fatalf("unexpected file count %d", listing.FileCount())
	}

	_, source, err = h.service.Listing(ctx, false)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if source != workflow.SourceCache || h.drive.fetches != 1 {
		t.Fatalf("expected cached listing, got %s (%d fetches)", source, h.drive.fetches)
	}

	_, source, err = h.service.Listing(ctx, true)
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if source != workflow.SourceDrive || h.drive.fetches != 2 {
		t.Fatalf("expected refresh to hit drive, got %s (%d fetches)", source, h.drive.fetches)
	}
}

func TestListingSkipsDisabledCache(t *testing.T) {
	h := newHarness(t, testsupport.WithListingCache(false))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, _, err := h.service.Listing(ctx, false); err != nil {
			t.Fatalf("Listing: %v", err)
		}
	}
	if h.drive.fetches != 2 {
		t.Fatalf("expected every call to fetch, got %d", h.drive.fetches)
	}
	if _, err := os.Stat(h.cfg.ListingCache.Path); !os.IsNotExist(err) {
		t.Fatalf("expected no cache file, stat err = %v", err)
	}
}

func TestListingWithoutDrive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	service, err := workflow.New(workflow.Options{Config: cfg, Vocabulary: vocabulary.Default()})
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	if _, _, err := service.Listing(context.Background(), false); !errors.Is(err, workflow.ErrDriveUnavailable) {
		t.Fatalf("expected ErrDriveUnavailable, got %v", err)
	}
}

func TestListingFetchFailure(t *testing.T) {
	h := newHarness(t)
	h.drive.fetchErr = &drive.TransientFetchError{Op: "list files", StatusCode: 503, Err: errors.New("down")}
	_, _, err := h.service.Listing(context.Background(), true)
	if !drive.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestPlanClassifiesAndRecords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	plan, err := h.service.Plan(ctx, workflow.PlanRequest{Record: true})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.RunID == "" {
		t.Fatal("expected run id")
	}
	byID := map[string]reconcile.Decision{}
	for _, d := range plan.Decisions {
		byID[d.FileID] = d
	}
	if d := byID["h1"]; d.Outcome != reconcile.OutcomeConforming {
		t.Fatalf("expected h1 conforming, got %+v", d)
	}
	if d := byID["h2"]; d.Outcome != reconcile.OutcomeRenamed || d.NewName != "March.pdf - Horn" {
		t.Fatalf("unexpected h2 decision: %+v", d)
	}
	if d := byID["h3"]; d.Outcome != reconcile.OutcomeUnresolved {
		t.Fatalf("expected h3 unresolved, got %+v", d)
	}
	if d := byID["c1"]; d.NewName != "Solo Bb MyPiece.pdf - Clarinet" {
		t.Fatalf("unexpected c1 decision: %+v", d)
	}
	if d := byID["c2"]; !d.Moves() || d.Section != "Trumpet" {
		t.Fatalf("expected c2 to move to trumpet, got %+v", d)
	}

	// Order follows section registration then listing order.
	var ids []string
	for _, d := range plan.Decisions {
		ids = append(ids, d.FileID)
	}
	if got := strings.Join(ids, ","); got != "h1,h2,h3,c1,c2" {
		t.Fatalf("unexpected decision order %s", got)
	}

	runs, err := h.store.ListRuns(ctx, 0)
	if err != nil || len(runs) != 1 || runs[0].Mode != catalog.RunModePlan {
		t.Fatalf("expected one plan run, got %+v (%v)", runs, err)
	}
}

func TestPlanSingleSection(t *testing.T) {
	h := newHarness(t)
	plan, err := h.service.Plan(context.Background(), workflow.PlanRequest{Section: "Clarinet"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Summary.Total != 2 {
		t.Fatalf("expected clarinet files only, got %+v", plan.Summary)
	}
	if _, err := h.service.Plan(context.Background(), workflow.PlanRequest{Section: "Kazoo"}); !errors.Is(err, vocabulary.ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
}

func TestApplyRenamesAndSettlesOnNextPlan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	report, err := h.service.Apply(ctx, workflow.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if report.Applied != 3 || report.Failed != 0 || report.Conflicts != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	records, err := h.store.RunDecisions(ctx, report.Plan.RunID)
	if err != nil {
		t.Fatalf("RunDecisions: %v", err)
	}
	statuses := map[string]catalog.DecisionStatus{}
	for _, rec := range records {
		statuses[rec.FileID] = rec.Status
	}
	if statuses["h2"] != catalog.DecisionApplied || statuses["c2"] != catalog.DecisionApplied || statuses["h3"] != catalog.DecisionNoAction {
		t.Fatalf("unexpected statuses: %v", statuses)
	}

	// The cache reflects the applied changes, so a plan without refresh settles.
	cached, err := h.service.Plan(ctx, workflow.PlanRequest{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if cached.Source != workflow.SourceCache {
		t.Fatalf("expected cached plan, got %s", cached.Source)
	}
	if cached.Summary.Renamed != 0 || cached.Summary.Conforming != 4 || cached.Summary.Unresolved != 1 {
		t.Fatalf("expected settled cached plan, got %+v", cached.Summary)
	}

	fresh, err := h.service.Plan(ctx, workflow.PlanRequest{Refresh: true})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if fresh.Summary.Renamed != 0 || fresh.Summary.Conforming != 4 {
		t.Fatalf("expected settled drive plan, got %+v", fresh.Summary)
	}
}

func TestApplyDryRunLeavesDriveAlone(t *testing.T) {
	h := newHarness(t)
	report, err := h.service.Apply(context.Background(), workflow.ApplyRequest{DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(h.drive.updates) != 0 || report.Applied != 0 || !report.DryRun {
		t.Fatalf("expected no updates, got %v / %+v", h.drive.updates, report)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 planned renames, got %d", len(report.Results))
	}
	runs, _ := h.store.ListRuns(context.Background(), 1)
	if len(runs) != 1 || runs[0].Mode != catalog.RunModeDryRun {
		t.Fatalf("expected dry-run run, got %+v", runs)
	}
}

func TestApplyRecordsFailures(t *testing.T) {
	h := newHarness(t)
	h.drive.failIDs = map[string]error{"c1": &drive.TransientFetchError{Op: "update file", StatusCode: 500, Err: errors.New("boom")}}

	report, err := h.service.Apply(context.Background(), workflow.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if report.Applied != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	records, _ := h.store.RunDecisions(context.Background(), report.Plan.RunID)
	for _, rec := range records {
		if rec.FileID == "c1" && (rec.Status != catalog.DecisionFailed || !strings.Contains(rec.ErrorMessage, "boom")) {
			t.Fatalf("unexpected c1 record: %+v", rec)
		}
	}
}

func TestApplyWithoutDrive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	service, err := workflow.New(workflow.Options{Config: cfg, Vocabulary: vocabulary.Default()})
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	if _, err := service.Apply(context.Background(), workflow.ApplyRequest{}); !errors.Is(err, workflow.ErrDriveUnavailable) {
		t.Fatalf("expected ErrDriveUnavailable, got %v", err)
	}
}

func TestImportPieceFromLocalArchive(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "playstation.dorico")
	testsupport.WriteDoricoArchive(t, path, "Playstation", "Tohru Okada")

	current := true
	result, err := h.service.ImportPiece(context.Background(), workflow.ImportRequest{Path: path, Current: &current, KeepSource: true})
	if err != nil {
		t.Fatalf("ImportPiece: %v", err)
	}
	if result.Piece.Name != "Playstation" || result.Piece.Composer != "Tohru Okada" || !result.Piece.IsCurrentRepertoire {
		t.Fatalf("unexpected piece: %+v", result.Piece)
	}
	if !result.Piece.HasSourceData || result.Piece.SourceFile != path {
		t.Fatalf("expected source stored, got %+v", result.Piece)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
}

func TestImportPieceFallsBackToFileName(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "holiday_medley.dorico")
	testsupport.WriteDoricoArchive(t, path, "", "")

	result, err := h.service.ImportPiece(context.Background(), workflow.ImportRequest{Path: path})
	if err != nil {
		t.Fatalf("ImportPiece: %v", err)
	}
	if result.Piece.Name != "Holiday Medley" {
		t.Fatalf("unexpected fallback name %q", result.Piece.Name)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected title and composer warnings, got %v", result.Warnings)
	}
}

func TestImportPieceRejectsMalformedArchive(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "broken.dorico")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := h.service.ImportPiece(context.Background(), workflow.ImportRequest{Path: path}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetchPieceDownloadsImportsAndCleansUp(t *testing.T) {
	h := newHarness(t)
	archive := filepath.Join(t.TempDir(), "remote.dorico")
	testsupport.WriteDoricoArchive(t, archive, "Remote Piece", "Composer X")
	data, err := os.ReadFile(archive)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	h.drive.downloads["drive-file-1"] = data

	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	result, err := h.service.FetchPiece(context.Background(), "drive-file-1", workflow.ImportRequest{})
	if err != nil {
		t.Fatalf("FetchPiece: %v", err)
	}
	if result.Piece.Name != "Remote Piece" || result.Piece.SourceFile != "drive:drive-file-1" {
		t.Fatalf("unexpected piece: %+v", result.Piece)
	}
	leftovers, _ := filepath.Glob(filepath.Join(tmpDir, "scorelib-*"))
	if len(leftovers) != 0 {
		t.Fatalf("expected temp file removed, found %v", leftovers)
	}

	if _, err := h.service.FetchPiece(context.Background(), "missing", workflow.ImportRequest{}); err == nil {
		t.Fatal("expected download error")
	}
	leftovers, _ = filepath.Glob(filepath.Join(tmpDir, "scorelib-*"))
	if len(leftovers) != 0 {
		t.Fatalf("expected temp file removed after failure, found %v", leftovers)
	}
}

func TestSyncInstruments(t *testing.T) {
	h := newHarness(t)
	n, err := h.service.SyncInstruments(context.Background())
	if err != nil {
		t.Fatalf("SyncInstruments: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 instruments, got %d", n)
	}
	instruments, err := h.store.ListInstruments(context.Background())
	if err != nil || len(instruments) != 3 || instruments[0].Name != "Horn" {
		t.Fatalf("unexpected instruments: %+v (%v)", instruments, err)
	}
}

func TestApplyKeepsCachedFetchTime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	listing, err := h.drive.FetchListing(ctx, h.service.Vocabulary(), 1)
	if err != nil {
		t.Fatalf("FetchListing: %v", err)
	}
	fetchedAt := time.Now().Add(-3 * time.Hour).UTC()
	if err := h.cache.SaveAt(listing, fetchedAt); err != nil {
		t.Fatalf("SaveAt: %v", err)
	}

	report, err := h.service.Apply(ctx, workflow.ApplyRequest{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if report.Plan.Source != workflow.SourceCache || report.Applied == 0 {
		t.Fatalf("expected applied changes from cached listing, got %+v", report)
	}
	if !report.Plan.FetchedAt.Equal(fetchedAt) {
		t.Fatalf("plan fetch time = %s, want %s", report.Plan.FetchedAt, fetchedAt)
	}

	updated, stamp, ok := h.cache.LoadSnapshot()
	if !ok {
		t.Fatal("expected cached listing after apply")
	}
	if !stamp.Equal(fetchedAt) {
		t.Fatalf("cache fetch time = %s, want %s", stamp, fetchedAt)
	}
	if files := updated["Trumpet"]; len(files) != 1 || files[0].ID != "c2" {
		t.Fatalf("expected applied move in cached listing, got %+v", updated)
	}
}
