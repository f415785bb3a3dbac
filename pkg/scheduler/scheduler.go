// Package scheduler runs the periodic aggregation and cleanup loops.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/postscope/postscope/pkg/domain"
)

// Fetcher pulls content from all sources and stores it
type Fetcher interface {
	FetchAll(ctx context.Context, daysBack int) map[domain.Source]int
}

// Cleaner removes stale unused items
type Cleaner interface {
	DeleteOldItems(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Config holds scheduler configuration
type Config struct {
	FetchInterval   time.Duration
	CleanupInterval time.Duration
	DaysBack        int
	RetentionDays   int
}

// Scheduler manages periodic content fetching and database cleanup
type Scheduler struct {
	fetcher         Fetcher
	cleaner         Cleaner
	fetchInterval   time.Duration
	cleanupInterval time.Duration
	daysBack        int
	retentionDays   int
	wg              sync.WaitGroup
	cancel          context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(fetcher Fetcher, cleaner Cleaner, cfg Config) *Scheduler {
	if cfg.FetchInterval == 0 {
		cfg.FetchInterval = 6 * time.Hour
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 24 * time.Hour
	}
	if cfg.DaysBack == 0 {
		cfg.DaysBack = 7
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 30
	}

	return &Scheduler{
		fetcher:         fetcher,
		cleaner:         cleaner,
		fetchInterval:   cfg.FetchInterval,
		cleanupInterval: cfg.CleanupInterval,
		daysBack:        cfg.DaysBack,
		retentionDays:   cfg.RetentionDays,
	}
}

// Start begins the scheduler loops
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.fetchWorker(ctx)

	if s.cleaner != nil {
		s.wg.Add(1)
		go s.cleanupWorker(ctx)
	}

	lgr.Printf("[INFO] scheduler started with fetch interval %v, cleanup interval %v",
		s.fetchInterval, s.cleanupInterval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// FetchNow triggers an immediate fetch cycle
func (s *Scheduler) FetchNow(ctx context.Context) map[domain.Source]int {
	return s.runFetch(ctx)
}

// fetchWorker periodically fetches content from all sources
func (s *Scheduler) fetchWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.fetchInterval)
	defer ticker.Stop()

	// run immediately on start
	s.runFetch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runFetch(ctx)
		}
	}
}

func (s *Scheduler) runFetch(ctx context.Context) map[domain.Source]int {
	counts := s.fetcher.FetchAll(ctx, s.daysBack)

	total := 0
	for _, n := range counts {
		total += n
	}
	lgr.Printf("[INFO] fetch cycle completed, %d new items", total)
	return counts
}

// cleanupWorker periodically removes stale unused items
func (s *Scheduler) cleanupWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.cleaner.DeleteOldItems(ctx, time.Duration(s.retentionDays)*24*time.Hour)
			if err != nil {
				lgr.Printf("[ERROR] cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				lgr.Printf("[INFO] cleanup removed %d stale items", deleted)
			}
		}
	}
}
