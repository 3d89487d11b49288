package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher re-runs the full aggregation on a schedule so the result cache
// stays warm and browse pages keep serving hits between visitor requests.
type Refresher struct {
	mu         sync.Mutex
	aggregator *Aggregator
	schedule   string
	cron       *cron.Cron
	entryID    cron.EntryID
	logger     *slog.Logger
}

// NewRefresher creates a refresher running aggregator.All on the given cron
// schedule, e.g. "@every 10m".
func NewRefresher(aggregator *Aggregator, schedule string, logger *slog.Logger) (*Refresher, error) {
	if aggregator == nil {
		return nil, ErrAggregatorRequired
	}
	if logger == nil {
		logger = slog.Default().With("component", "cache-refresher")
	}
	return &Refresher{
		aggregator: aggregator,
		schedule:   schedule,
		logger:     logger,
	}, nil
}

// Start schedules the refresh job and runs one warm-up pass immediately.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		return ErrRefresherRunning
	}

	r.cron = cron.New()
	entryID, err := r.cron.AddFunc(r.schedule, func() {
		r.refresh(ctx)
	})
	if err != nil {
		r.cron = nil
		return err
	}
	r.entryID = entryID
	r.cron.Start()

	go r.refresh(ctx)
	return nil
}

// Stop halts the schedule. A refresh already in flight finishes on its own.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron == nil {
		return
	}
	r.cron.Stop()
	r.cron = nil
}

func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()
	items := r.aggregator.All(ctx)

	total := 0
	for _, item := range items {
		total += item.Count
	}
	r.logger.Info("cache refresh completed",
		"categories", len(items), "records", total, "duration", time.Since(start))
}
