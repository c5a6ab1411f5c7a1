package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/ebay-seller-connect/internal/metrics"
)

const (
	defaultSweepWindow      = 15 * time.Minute
	defaultSweepConcurrency = 4
	defaultSweepBatch       = 200
)

// SweepResult summarizes one sweep.
type SweepResult struct {
	Candidates int
	Refreshed  int
	Reauth     int
	Failed     int
}

// Sweeper refreshes tokens that will expire soon so request paths rarely pay
// for a refresh. It goes through Engine.EnsureValidToken and therefore shares
// the per-account single flight with request traffic.
type Sweeper struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger

	window      time.Duration
	concurrency int
	batch       int
}

// SweeperOption configures the Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepWindow sets how far ahead of expiry accounts are picked up. It is
// widened to the engine's refresh margin when smaller.
func WithSweepWindow(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		s.window = d
	}
}

// WithSweepConcurrency bounds concurrent refreshes within a sweep.
func WithSweepConcurrency(n int) SweeperOption {
	return func(s *Sweeper) {
		s.concurrency = n
	}
}

// WithSweepBatch caps the accounts considered per sweep.
func WithSweepBatch(n int) SweeperOption {
	return func(s *Sweeper) {
		s.batch = n
	}
}

// WithSweepLogger sets a custom logger.
func WithSweepLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		s.log = l
	}
}

// NewSweeper creates a Sweeper that runs every interval once started.
func NewSweeper(eng *Engine, interval time.Duration, opts ...SweeperOption) (*Sweeper, error) {
	s := &Sweeper{
		cron:        cron.New(),
		engine:      eng,
		log:         eng.log,
		window:      defaultSweepWindow,
		concurrency: defaultSweepConcurrency,
		batch:       defaultSweepBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.window < eng.refreshMargin {
		s.window = eng.refreshMargin
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}

	if _, err := s.cron.AddFunc("@every "+interval.String(), s.runScheduled); err != nil {
		return nil, fmt.Errorf("scheduling token sweep: %w", err)
	}
	return s, nil
}

// Start begins running scheduled sweeps.
func (s *Sweeper) Start() {
	s.log.Info("token sweeper started", "window", s.window, "concurrency", s.concurrency)
	s.cron.Start()
}

// Stop stops the schedule; the returned context is done once a running
// sweep finishes.
func (s *Sweeper) Stop() context.Context {
	s.log.Info("token sweeper stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Sweeper) Entries() []cron.Entry {
	return s.cron.Entries()
}

// RunOnce refreshes every active account expiring within the sweep window.
// Per-account failures are counted, not returned; the error is non-nil only
// when the candidates could not be listed.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	before := s.engine.nowFunc().Add(s.window)
	accounts, err := s.engine.store.ListExpiringAccounts(ctx, before, s.batch)
	if err != nil {
		return SweepResult{}, fmt.Errorf("listing expiring accounts: %w", err)
	}

	var refreshed, reauth, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range accounts {
		id := accounts[i].ID
		g.Go(func() error {
			_, err := s.engine.EnsureValidToken(ctx, id)
			switch {
			case err == nil:
				refreshed.Add(1)
				metrics.SweepAccountsTotal.WithLabelValues("refreshed").Inc()
			case IsReauthRequired(err):
				reauth.Add(1)
				metrics.SweepAccountsTotal.WithLabelValues("reauth_required").Inc()
			case errors.Is(err, context.Canceled):
				failed.Add(1)
			default:
				failed.Add(1)
				metrics.SweepAccountsTotal.WithLabelValues("failed").Inc()
				s.log.Warn("sweep refresh failed", "account_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return SweepResult{
		Candidates: len(accounts),
		Refreshed:  int(refreshed.Load()),
		Reauth:     int(reauth.Load()),
		Failed:     int(failed.Load()),
	}, nil
}

func (s *Sweeper) runScheduled() {
	ctx := context.Background()
	res, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("token sweep failed", "error", err)
		return
	}
	if res.Candidates > 0 {
		s.log.Info("token sweep complete",
			"candidates", res.Candidates,
			"refreshed", res.Refreshed,
			"reauth_required", res.Reauth,
			"failed", res.Failed,
		)
	}
}
