package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/store"
)

// Pruner is anything holding per-key state that can be trimmed.
type Pruner interface {
	Prune() int
}

// HousekeepingService drops OTP challenges nobody can use any more and trims
// idle in-memory attempt counters.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	Pruners []Pruner
}

// CleanupReport counts what a single pass removed.
type CleanupReport struct {
	OTPCleared int64
	Pruned     int
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
	}
}

// Run cleans up once straight away and then every Interval, returning when
// ctx is cancelled.
func (s *HousekeepingService) Run(ctx context.Context) {
	s.Logger.Info("housekeeping started", "interval", s.Interval)
	defer s.Logger.Info("housekeeping stopped")

	tick := time.NewTicker(s.Interval)
	defer tick.Stop()

	for {
		s.Cleanup(ctx)
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

// Cleanup runs one pass. Store failures are logged and the pass carries on.
func (s *HousekeepingService) Cleanup(ctx context.Context) CleanupReport {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var r CleanupReport
	n, err := s.Store.Accounts().ClearExpiredOTPChallenges(ctx, now())
	if err != nil && ctx.Err() == nil {
		s.Logger.Error("failed to clear expired otp challenges", "error", err)
	}
	r.OTPCleared = n

	for _, p := range s.Pruners {
		r.Pruned += p.Prune()
	}

	if r.OTPCleared > 0 || r.Pruned > 0 {
		s.Logger.Info("housekeeping pass", "otp_cleared", r.OTPCleared, "limiter_pruned", r.Pruned)
	}
	return r
}
