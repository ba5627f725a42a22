package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pagereply/pagereply/internal/biz/usecase"
)

// Sweeper periodically replays failed webhook events and purges old data
type Sweeper struct {
	queueUC        *usecase.QueueUsecase
	housekeepingUC *usecase.HousekeepingUsecase

	sweepInterval   time.Duration
	cleanupInterval time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

// NewSweeper creates a new sweeper
func NewSweeper(
	queueUC *usecase.QueueUsecase,
	housekeepingUC *usecase.HousekeepingUsecase,
	sweepInterval time.Duration,
	cleanupInterval time.Duration,
) *Sweeper {
	return &Sweeper{
		queueUC:         queueUC,
		housekeepingUC:  housekeepingUC,
		sweepInterval:   sweepInterval,
		cleanupInterval: cleanupInterval,
	}
}

// Start starts the sweeper loops
func (s *Sweeper) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.sweepLoop()
	go s.cleanupLoop()

	fmt.Printf("[Sweeper] Started with sweep interval %v, cleanup interval %v\n",
		s.sweepInterval, s.cleanupInterval)
}

// Stop stops the sweeper and waits for in-flight work
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	fmt.Println("[Sweeper] Stopped")
}

// sweepLoop replays pending events on every tick
func (s *Sweeper) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// cleanupLoop purges expired history, logs and processed events
func (s *Sweeper) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Sweeper) sweep() {
	processed, failed, err := s.queueUC.Sweep(s.ctx)
	if err != nil {
		fmt.Printf("[Sweeper] Sweep failed: %v\n", err)
		return
	}
	if processed > 0 || failed > 0 {
		fmt.Printf("[Sweeper] Replayed %d events, %d failed\n", processed, failed)
	}
}

func (s *Sweeper) cleanup() {
	removed, err := s.housekeepingUC.Run(s.ctx)
	if err != nil {
		fmt.Printf("[Sweeper] Cleanup failed: %v\n", err)
		return
	}
	if removed > 0 {
		fmt.Printf("[Sweeper] Cleanup removed %d rows\n", removed)
	}
}
