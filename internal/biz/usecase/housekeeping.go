package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pagereply/pagereply/internal/biz/repo"
)

// Retention windows for the cleanup pass
type RetentionConfig struct {
	HistoryAge time.Duration // message history
	LogAge     time.Duration // system logs
	EventAge   time.Duration // processed webhook events
}

// DefaultRetentionConfig mirrors the retention the system has always used
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		HistoryAge: 90 * 24 * time.Hour,
		LogAge:     30 * 24 * time.Hour,
		EventAge:   7 * 24 * time.Hour,
	}
}

// HousekeepingUsecase purges aged history, logs and processed events
type HousekeepingUsecase struct {
	history repo.HistoryRepo
	syslog  repo.SystemLogRepo
	events  repo.EventRepo
	cfg     RetentionConfig
}

// NewHousekeepingUsecase creates a housekeeping usecase
func NewHousekeepingUsecase(history repo.HistoryRepo, syslog repo.SystemLogRepo, events repo.EventRepo, cfg RetentionConfig) *HousekeepingUsecase {
	return &HousekeepingUsecase{
		history: history,
		syslog:  syslog,
		events:  events,
		cfg:     cfg,
	}
}

// Run executes one cleanup pass and returns the total rows removed
func (uc *HousekeepingUsecase) Run(ctx context.Context) (int64, error) {
	now := time.Now()
	var total int64

	n, err := uc.history.PurgeBefore(ctx, now.Add(-uc.cfg.HistoryAge))
	if err != nil {
		return total, fmt.Errorf("failed to purge history: %w", err)
	}
	total += n

	n, err = uc.syslog.PurgeBefore(ctx, now.Add(-uc.cfg.LogAge))
	if err != nil {
		return total, fmt.Errorf("failed to purge system logs: %w", err)
	}
	total += n

	n, err = uc.events.PurgeProcessedBefore(ctx, now.Add(-uc.cfg.EventAge))
	if err != nil {
		return total, fmt.Errorf("failed to purge webhook events: %w", err)
	}
	total += n

	return total, nil
}
