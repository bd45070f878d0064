package appointments

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSweepInterval is the nominal time between sweep passes.
const DefaultSweepInterval = 24 * time.Hour

// ErrSweeperRunning is returned by Start on a running Sweeper.
var ErrSweeperRunning = errors.New("sweeper already running")

// Sweeper runs Refresh once on Start and again every interval until Stop.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a stopped Sweeper.
func NewSweeper(engine *Engine, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{engine: engine, interval: interval, logger: logger}
}

// Start launches the background loop. It returns once the loop is
// scheduled; the first pass runs asynchronously.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrSweeperRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	s.logger.Info("Auto-cancellation sweeper started", zap.Duration("interval", s.interval))
	return nil
}

// Stop cancels the loop and waits for it to exit. Safe to call on a
// stopped Sweeper.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("Auto-cancellation sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.pass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

// pass reloads so that a long-lived process sweeps current data, then
// sweeps. Errors are logged only.
func (s *Sweeper) pass(ctx context.Context) {
	if _, err := s.engine.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("Sweep pass failed", zap.Error(err))
	}
}
