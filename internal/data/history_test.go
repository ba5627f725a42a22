package data

import (
	"context"
	"testing"
	"time"

	"github.com/pagereply/pagereply/internal/biz/domain"
)

func appendRecord(t *testing.T, repo *historyRepo, source domain.Source, processedAt time.Time) {
	t.Helper()
	err := repo.Append(context.Background(), &domain.HistoryRecord{
		OwnerID:      1,
		PageID:       "pg1",
		MessageID:    "mid",
		SenderID:     "u1",
		MessageText:  "hello",
		ResponseType: source,
		ProcessedAt:  processedAt,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
}

func TestHistoryListNewestFirst(t *testing.T) {
	repo := NewHistoryRepo(openTestDB(t)).(*historyRepo)
	ctx := context.Background()

	now := time.Now()
	appendRecord(t, repo, domain.SourcePredefined, now.Add(-time.Hour))
	appendRecord(t, repo, domain.SourceAI, now)

	records, err := repo.List(ctx, 1, "pg1", 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ResponseType != domain.SourceAI {
		t.Errorf("Expected newest record first, got %s", records[0].ResponseType)
	}
}

func TestHistoryListPageFilter(t *testing.T) {
	repo := NewHistoryRepo(openTestDB(t)).(*historyRepo)
	ctx := context.Background()

	appendRecord(t, repo, domain.SourcePredefined, time.Now())
	repo.Append(ctx, &domain.HistoryRecord{
		OwnerID: 1, PageID: "pg2", MessageID: "m2", SenderID: "u1",
		ResponseType: domain.SourceNone, ProcessedAt: time.Now(),
	})

	records, err := repo.List(ctx, 1, "pg1", 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 || records[0].PageID != "pg1" {
		t.Errorf("Expected only pg1 records, got %d", len(records))
	}

	// Empty page id spans all pages
	records, err = repo.List(ctx, 1, "", 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records across pages, got %d", len(records))
	}
}

func TestHistoryLimitAndOffset(t *testing.T) {
	repo := NewHistoryRepo(openTestDB(t)).(*historyRepo)

	now := time.Now()
	for i := 0; i < 5; i++ {
		appendRecord(t, repo, domain.SourcePredefined, now.Add(time.Duration(i)*time.Second))
	}

	records, err := repo.List(context.Background(), 1, "pg1", 2, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records with limit 2, got %d", len(records))
	}
}

func TestHistoryCountSince(t *testing.T) {
	repo := NewHistoryRepo(openTestDB(t)).(*historyRepo)

	now := time.Now()
	appendRecord(t, repo, domain.SourcePredefined, now.Add(-48*time.Hour))
	appendRecord(t, repo, domain.SourceAI, now)

	count, err := repo.CountSince(context.Background(), 1, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recent record, got %d", count)
	}
}

func TestHistorySourceCountsSince(t *testing.T) {
	repo := NewHistoryRepo(openTestDB(t)).(*historyRepo)

	now := time.Now()
	appendRecord(t, repo, domain.SourcePredefined, now)
	appendRecord(t, repo, domain.SourcePredefined, now)
	appendRecord(t, repo, domain.SourceAI, now)
	appendRecord(t, repo, domain.SourceError, now.Add(-30*24*time.Hour))

	counts, err := repo.SourceCountsSince(context.Background(), 1, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("SourceCountsSince failed: %v", err)
	}
	if counts[domain.SourcePredefined] != 2 {
		t.Errorf("Expected 2 predefined, got %d", counts[domain.SourcePredefined])
	}
	if counts[domain.SourceAI] != 1 {
		t.Errorf("Expected 1 ai, got %d", counts[domain.SourceAI])
	}
	if _, ok := counts[domain.SourceError]; ok {
		t.Error("Old error record must fall outside the window")
	}
}

func TestHistoryPurgeBefore(t *testing.T) {
	repo := NewHistoryRepo(openTestDB(t)).(*historyRepo)
	ctx := context.Background()

	now := time.Now()
	appendRecord(t, repo, domain.SourcePredefined, now.Add(-100*24*time.Hour))
	appendRecord(t, repo, domain.SourceAI, now)

	removed, err := repo.PurgeBefore(ctx, now.Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeBefore failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 purged record, got %d", removed)
	}

	records, _ := repo.List(ctx, 1, "pg1", 10, 0)
	if len(records) != 1 || records[0].ResponseType != domain.SourceAI {
		t.Error("Expected only the recent record to survive")
	}
}

func TestAIConfigUpsertReplaces(t *testing.T) {
	repo := NewAIConfigRepo(openTestDB(t)).(*aiConfigRepo)
	ctx := context.Background()

	cfg := &domain.AIConfig{
		OwnerID: 1, PageID: "pg1", Provider: "openai", Model: "gpt-3.5-turbo",
		APIKey: "sk-1", Temperature: 0.7, MaxTokens: 500, Active: true,
	}
	if err := repo.Upsert(ctx, cfg); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	cfg.Provider = "mistral"
	cfg.Model = "mistral-small"
	if err := repo.Upsert(ctx, cfg); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, err := repo.GetActive(ctx, 1, "pg1")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a config")
	}
	if got.Provider != "mistral" || got.Model != "mistral-small" {
		t.Errorf("Expected replaced config, got %s/%s", got.Provider, got.Model)
	}

	count, _ := repo.CountActive(ctx, 1)
	if count != 1 {
		t.Errorf("Upsert must not duplicate rows, got %d", count)
	}
}

func TestAIConfigGetActiveIgnoresInactive(t *testing.T) {
	repo := NewAIConfigRepo(openTestDB(t)).(*aiConfigRepo)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &domain.AIConfig{
		OwnerID: 1, PageID: "pg1", Provider: "openai", Model: "gpt-4", APIKey: "sk-1",
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.GetActive(ctx, 1, "pg1")
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if got != nil {
		t.Error("Inactive config must not be returned by GetActive")
	}

	got, err = repo.Get(ctx, 1, "pg1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Error("Get must return the config regardless of active flag")
	}
}

func TestPageUpsertAndLookup(t *testing.T) {
	repo := NewPageRepo(openTestDB(t)).(*pageRepo)
	ctx := context.Background()

	page := &domain.Page{
		OwnerID: 1, PageID: "pg1", PageName: "Ma Boutique", AccessToken: "tok1", Active: true,
	}
	if err := repo.Upsert(ctx, page); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.GetByPageID(ctx, "pg1")
	if err != nil {
		t.Fatalf("GetByPageID failed: %v", err)
	}
	if got == nil || got.PageName != "Ma Boutique" {
		t.Fatalf("Expected stored page, got %+v", got)
	}

	// Token rotation goes through the same upsert
	page.AccessToken = "tok2"
	if err := repo.Upsert(ctx, page); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	got, _ = repo.GetByPageID(ctx, "pg1")
	if got.AccessToken != "tok2" {
		t.Errorf("Expected rotated token, got %q", got.AccessToken)
	}

	if missing, _ := repo.GetByPageID(ctx, "nope"); missing != nil {
		t.Error("Expected nil for unknown page id")
	}
}
