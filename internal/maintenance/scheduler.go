package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// sweepTimeout bounds a single cleanup run.
const sweepTimeout = 30 * time.Second

// SessionPruner deletes sessions whose expiry has passed.
type SessionPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// Scheduler runs periodic housekeeping jobs.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionPruner
}

// NewScheduler creates a scheduler that sweeps expired sessions on spec,
// a standard five-field cron expression or descriptor such as "@hourly".
func NewScheduler(spec string, sessions SessionPruner) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		sessions: sessions,
	}
	if _, err := s.cron.AddFunc(spec, s.SweepSessions); err != nil {
		return nil, fmt.Errorf("invalid session cleanup schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start sweeps once immediately, then hands the jobs to cron.
func (s *Scheduler) Start() {
	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Starting maintenance scheduler...")
	s.SweepSessions()
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped maintenance scheduler.")
}

// SweepSessions prunes expired sessions.
func (s *Scheduler) SweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sessions.PruneExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune expired sessions")
		return
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("Pruned expired sessions")
	}
}
