package image

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/herbadex/internal/domain"
	"github.com/kailas-cloud/herbadex/internal/domain/analysis"
)

// --- Create ---

func TestCreate_WritesAllFields(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	rec := testRecord(t)

	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey = key
		gotFields = fields
		return nil
	}

	if err := repo.Create(ctx, &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "herbadex:images:img-1" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if gotFields["analysis"] != analysis.PendingMarker {
		t.Errorf("expected pending marker, got %q", gotFields["analysis"])
	}
	if gotFields["revision"] != "1" {
		t.Errorf("expected revision 1, got %q", gotFields["revision"])
	}
	if gotFields["name"] != "leaf.jpg" || gotFields["size"] != "2048" {
		t.Errorf("unexpected fields: %v", gotFields)
	}
}

func TestCreate_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	rec := testRecord(t)

	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error {
		return errors.New("OOM")
	}

	if err := repo.Create(context.Background(), &rec); err == nil {
		t.Fatal("expected error on HSET failure")
	}
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "herbadex:images:img-1" {
			t.Errorf("unexpected key: %s", key)
		}
		return map[string]string{
			"name":        "leaf.jpg",
			"contentType": "image/jpeg",
			"size":        "2048",
			"url":         "https://blobs.example/scans/leaf.jpg",
			"analysis":    analysis.PendingMarker,
			"revision":    "1",
			"createdAt":   "1772366400000",
		}, nil
	}

	rec, err := repo.Get(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name() != "leaf.jpg" || rec.Size() != 2048 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.State() != analysis.Pending {
		t.Errorf("expected Pending, got %v", rec.State())
	}
	if rec.Revision() != 1 {
		t.Errorf("expected revision 1, got %d", rec.Revision())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

// --- List ---

func TestList_NewestFirst(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "herbadex:images:*" {
			t.Errorf("unexpected pattern: %s", pattern)
		}
		return []string{"herbadex:images:old", "herbadex:images:new"}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		return []map[string]string{
			{"name": "old.jpg", "createdAt": "1000", "revision": "1", "analysis": analysis.PendingMarker},
			{"name": "new.jpg", "createdAt": "2000", "revision": "1", "analysis": analysis.PendingMarker},
		}, nil
	}

	records, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name() != "new.jpg" {
		t.Errorf("expected newest first, got %s", records[0].Name())
	}
}

func TestList_SkipsVanishedKeys(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		return []string{"herbadex:images:a", "herbadex:images:b"}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		return []map[string]string{
			{},
			{"name": "b.jpg", "createdAt": "1", "revision": "1", "analysis": analysis.PendingMarker},
		}, nil
	}

	records, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestList_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)

	records, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

// --- SetAnalysis ---

func TestSetAnalysis_UnconditionalReplace(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, _ string, fields map[string]string) error {
		gotFields = fields
		return nil
	}

	if err := repo.SetAnalysis(context.Background(), "img-1", "free text override"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFields["analysis"] != "free text override" {
		t.Errorf("unexpected analysis write: %v", gotFields)
	}
	if len(gotFields) != 1 {
		t.Errorf("expected only the analysis field written, got %v", gotFields)
	}
}

func TestSetAnalysis_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }

	err := repo.SetAnalysis(context.Background(), "missing", "x")
	if !errors.Is(err, domain.ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

// --- CompareAndSetAnalysis ---

func TestCompareAndSetAnalysis_Success(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotKeys, gotArgs []string
	ms.evalFn = func(_ context.Context, _ string, keys, args []string) (int64, error) {
		gotKeys = keys
		gotArgs = args
		return 1, nil
	}

	err := repo.CompareAndSetAnalysis(context.Background(), "img-1", `{"family":null}`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotKeys) != 1 || gotKeys[0] != "herbadex:images:img-1" {
		t.Errorf("unexpected keys: %v", gotKeys)
	}
	if len(gotArgs) != 2 || gotArgs[1] != "1" {
		t.Errorf("unexpected args: %v", gotArgs)
	}
}

func TestCompareAndSetAnalysis_RevisionConflict(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.evalFn = func(_ context.Context, _ string, _, _ []string) (int64, error) {
		return 0, nil
	}
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{"revision": "3", "analysis": "x"}, nil
	}

	err := repo.CompareAndSetAnalysis(context.Background(), "img-1", "y", 1)
	if !errors.Is(err, domain.ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict, got %v", err)
	}

	var conflict *domain.RevisionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *RevisionConflictError, got %T", err)
	}
	if conflict.CurrentRevision != 3 {
		t.Errorf("expected current revision 3, got %d", conflict.CurrentRevision)
	}
}

func TestCompareAndSetAnalysis_RecordGone(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.evalFn = func(_ context.Context, _ string, _, _ []string) (int64, error) {
		return -1, nil
	}

	err := repo.CompareAndSetAnalysis(context.Background(), "img-1", "y", 1)
	if !errors.Is(err, domain.ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}
