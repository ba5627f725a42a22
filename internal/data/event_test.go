package data

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func enqueueAt(t *testing.T, repo *eventRepo, pageID string, createdAt time.Time) int64 {
	t.Helper()
	id, err := repo.Enqueue(context.Background(), &domain.WebhookEvent{
		PageID:    pageID,
		EventKind: domain.EventKindMessage,
		RawData:   []byte(`{}`),
		CreatedAt: createdAt,
	}, false)
	if err != nil {
		t.Fatalf("Failed to enqueue event: %v", err)
	}
	return id
}

func TestClaimBatchOldestFirst(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)
	ctx := context.Background()

	now := time.Now()
	newer := enqueueAt(t, repo, "pg1", now)
	older := enqueueAt(t, repo, "pg1", now.Add(-time.Hour))

	claimed, err := repo.ClaimBatch(ctx, 10, 3, now.Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("Expected 2 claimed events, got %d", len(claimed))
	}
	if claimed[0].ID != older || claimed[1].ID != newer {
		t.Errorf("Expected oldest-first order, got %d then %d", claimed[0].ID, claimed[1].ID)
	}
}

func TestClaimBatchSkipsClaimedRows(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)
	ctx := context.Background()

	if _, err := repo.Enqueue(ctx, &domain.WebhookEvent{
		PageID: "pg1", EventKind: domain.EventKindMessage, RawData: []byte(`{}`),
	}, true); err != nil {
		t.Fatalf("Failed to enqueue claimed event: %v", err)
	}

	staleBefore := time.Now().Add(-5 * time.Minute)
	claimed, err := repo.ClaimBatch(ctx, 10, 3, staleBefore)
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(claimed) != 0 {
		t.Errorf("Freshly claimed row must not be reclaimed, got %d", len(claimed))
	}
}

func TestClaimBatchReclaimsStaleClaims(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, &domain.WebhookEvent{
		PageID: "pg1", EventKind: domain.EventKindMessage, RawData: []byte(`{}`),
	}, true)
	if err != nil {
		t.Fatalf("Failed to enqueue event: %v", err)
	}

	// A claim stamped before staleBefore counts as abandoned
	claimed, err := repo.ClaimBatch(ctx, 10, 3, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != id {
		t.Errorf("Expected stale claim reclaimed, got %v", claimed)
	}
}

func TestClaimBatchHonorsRetryCeiling(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)
	ctx := context.Background()

	id := enqueueAt(t, repo, "pg1", time.Now())
	for i := 0; i < 3; i++ {
		if err := repo.RecordFailure(ctx, id, "boom"); err != nil {
			t.Fatalf("RecordFailure failed: %v", err)
		}
	}

	claimed, err := repo.ClaimBatch(ctx, 10, 3, time.Now().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(claimed) != 0 {
		t.Errorf("Event at the retry ceiling must not be claimed, got %d", len(claimed))
	}

	ev, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ev.RetryCount != 3 {
		t.Errorf("Expected retry count 3, got %d", ev.RetryCount)
	}
	if ev.LastError != "boom" {
		t.Errorf("Expected last error recorded, got %q", ev.LastError)
	}
}

func TestRecordFailureReleasesClaim(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)
	ctx := context.Background()

	id, err := repo.Enqueue(ctx, &domain.WebhookEvent{
		PageID: "pg1", EventKind: domain.EventKindMessage, RawData: []byte(`{}`),
	}, true)
	if err != nil {
		t.Fatalf("Failed to enqueue event: %v", err)
	}
	if err := repo.RecordFailure(ctx, id, "transient"); err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}

	claimed, err := repo.ClaimBatch(ctx, 10, 3, time.Now().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(claimed) != 1 {
		t.Errorf("Released event must be claimable again, got %d", len(claimed))
	}
}

func TestMarkProcessed(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)
	ctx := context.Background()

	id := enqueueAt(t, repo, "pg1", time.Now())
	if err := repo.MarkProcessed(ctx, id); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}

	ev, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ev.Processed {
		t.Error("Expected event marked processed")
	}
	if ev.ProcessedAt == nil {
		t.Error("Expected processed_at stamped")
	}

	claimed, err := repo.ClaimBatch(ctx, 10, 3, time.Now().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(claimed) != 0 {
		t.Errorf("Processed event must not be claimed, got %d", len(claimed))
	}
}

func TestClaimBatchLimit(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)

	now := time.Now()
	for i := 0; i < 15; i++ {
		enqueueAt(t, repo, "pg1", now.Add(time.Duration(i)*time.Second))
	}

	claimed, err := repo.ClaimBatch(context.Background(), 10, 3, now.Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ClaimBatch failed: %v", err)
	}
	if len(claimed) != 10 {
		t.Errorf("Expected batch capped at 10, got %d", len(claimed))
	}
}

func TestPurgeProcessedBefore(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)
	ctx := context.Background()

	old := enqueueAt(t, repo, "pg1", time.Now().Add(-10*24*time.Hour))
	recent := enqueueAt(t, repo, "pg1", time.Now())
	repo.MarkProcessed(ctx, old)
	repo.MarkProcessed(ctx, recent)

	// Unprocessed old events must survive the purge
	pending := enqueueAt(t, repo, "pg1", time.Now().Add(-10*24*time.Hour))

	removed, err := repo.PurgeProcessedBefore(ctx, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeProcessedBefore failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 purged event, got %d", removed)
	}

	if ev, _ := repo.Get(ctx, old); ev != nil {
		t.Error("Old processed event should be gone")
	}
	if ev, _ := repo.Get(ctx, recent); ev == nil {
		t.Error("Recent processed event should survive")
	}
	if ev, _ := repo.Get(ctx, pending); ev == nil {
		t.Error("Unprocessed event should survive regardless of age")
	}
}

func TestGetMissingEvent(t *testing.T) {
	repo := NewEventRepo(openTestDB(t)).(*eventRepo)

	ev, err := repo.Get(context.Background(), 999)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ev != nil {
		t.Error("Expected nil for missing event")
	}
}
