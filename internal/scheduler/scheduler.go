package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher recalculates every tracked stock projection.
type Refresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// Scheduler runs the nightly projection refresh so projected end dates
// move forward on days without doses.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	timeout   time.Duration
	logger    zerolog.Logger
}

func New(refresher Refresher, spec string, loc *time.Location, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		refresher: refresher,
		spec:      spec,
		timeout:   10 * time.Minute,
		logger:    logger,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return fmt.Errorf("schedule stock refresh %q: %w", s.spec, err)
	}
	s.logger.Info().Str("spec", s.spec).Msg("starting scheduler")
	s.cron.Start()
	return nil
}

// Stop waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int("refreshed", n).Msg("stock refresh finished with errors")
		return
	}
	s.logger.Info().Int("refreshed", n).Dur("took", time.Since(start)).Msg("stock refresh complete")
}
