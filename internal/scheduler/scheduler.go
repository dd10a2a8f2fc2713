// Package scheduler moves notifications through their lifecycle on a cron
// schedule: scheduled ones go live when their start date arrives, live ones
// complete when their end date passes.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Store is the storage slice the scheduler drives.
type Store interface {
	PromoteScheduledNotifications(ctx context.Context, now time.Time) (int64, error)
	ExpireEndedNotifications(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	store Store
	cron  *cron.Cron
	spec  string
	now   func() time.Time
}

func New(store Store, spec string) *Scheduler {
	return &Scheduler{
		store: store,
		cron:  cron.New(),
		spec:  spec,
		now:   time.Now,
	}
}

// Start registers the sweep and starts the cron loop. One immediate sweep
// runs first so a restart does not delay overdue transitions by a full tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}
	s.sweep()
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := s.now()
	promoted, err := s.store.PromoteScheduledNotifications(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("promote scheduled notifications")
	}
	expired, err := s.store.ExpireEndedNotifications(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("expire ended notifications")
	}
	if promoted > 0 || expired > 0 {
		log.Info().Int64("promoted", promoted).Int64("expired", expired).Msg("notification sweep")
	}
}
