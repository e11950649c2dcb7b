package tree

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval is how often the Refresher reloads the tree.
const DefaultInterval = 10 * time.Second

// Refreshable is reloaded on every tick.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Refresher reloads a tree periodically. Failures are logged and the next
// tick tries again.
type Refresher struct {
	target   Refreshable
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewRefresher creates a stopped Refresher.
func NewRefresher(target Refreshable, interval time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{target: target, interval: interval, logger: logger}
}

// Start schedules the refresh. Calling Start twice is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(cron.Every(r.interval), cron.FuncJob(func() { r.tick(ctx) }))
	c.Start()

	r.cron, r.cancel = c, cancel
	r.logger.Debug("tree refresher started", zap.Duration("interval", r.interval))
}

// Stop cancels the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	c, cancel := r.cron, r.cancel
	r.cron, r.cancel = nil, nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	r.logger.Debug("tree refresher stopped")
}

func (r *Refresher) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tree refresh panic", zap.Any("panic", rec), zap.Stack("stack"))
		}
	}()
	if ctx.Err() != nil {
		return
	}
	if err := r.target.Refresh(ctx); err != nil {
		r.logger.Warn("periodic tree refresh failed", zap.Error(err))
	}
}
