package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/store"
)

// HousekeepingService periodically removes keystore rows left idle longer
// than the refresh TTL. Such sessions cannot rotate anymore (their refresh
// token has expired), so the rows are dead weight.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// MaxIdle is how long a session may go without a rotation before the
	// sweep collects it. Should match (or exceed) the refresh token TTL.
	MaxIdle time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService builds a sweep worker. A non-positive interval
// defaults to 1 hour; a non-positive maxIdle defaults to 7 days.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, maxIdle time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if maxIdle <= 0 {
		maxIdle = 7 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		MaxIdle:  maxIdle,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut the
// worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval, "max_idle", s.MaxIdle)
}

// Stop shuts the worker down, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// First sweep right away
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-s.MaxIdle)

	n, err := s.Store.Keystores().DeleteIdleSince(ctx, cutoff)
	if err != nil {
		s.Logger.Error("keystore sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.Logger.Info("keystore sweep completed", "deleted", n)
	}
}
