package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSweepSchedule runs the sweep every 15 minutes
const DefaultSweepSchedule = "0 */15 * * * *"

// ExpiredCodeStore clears mobile codes older than a cutoff
type ExpiredCodeStore interface {
	ClearExpiredMobileCodes(ctx context.Context, cutoff time.Time) (int64, error)
}

// CodeSweeper periodically removes mobile verification codes that can no
// longer be confirmed.
type CodeSweeper struct {
	store    ExpiredCodeStore
	ttl      time.Duration
	schedule string
	logger   *logrus.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewCodeSweeper creates a sweeper for codes living ttl. schedule accepts
// five or six cron fields; empty means DefaultSweepSchedule.
func NewCodeSweeper(store ExpiredCodeStore, ttl time.Duration, schedule string, logger *logrus.Logger) *CodeSweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if len(strings.Fields(schedule)) == 5 {
		schedule = "0 " + schedule
	}
	return &CodeSweeper{
		store:    store,
		ttl:      ttl,
		schedule: schedule,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep
func (s *CodeSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		s.logger.WithError(err).Error("Failed to schedule mobile code sweep")
		return err
	}
	s.cron.Start()
	s.running = true

	s.logger.WithField("schedule", s.schedule).Info("Mobile code sweeper started")
	return nil
}

// Stop waits for a running sweep to finish
func (s *CodeSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("Mobile code sweeper stopped")
}

func (s *CodeSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.WithError(err).Error("Mobile code sweep failed")
	}
}

// Sweep clears every code sent at least ttl ago
func (s *CodeSweeper) Sweep(ctx context.Context) (int64, error) {
	cleared, err := s.store.ClearExpiredMobileCodes(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		s.logger.WithField("cleared", cleared).Info("Cleared expired mobile codes")
	}
	return cleared, nil
}
