package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const sweepTimeout = 30 * time.Second

// Sweeper periodically removes expired records from a Store.
type Sweeper struct {
	store Store
	cron  *cron.Cron
	now   func() time.Time
}

// NewSweeper schedules a sweep using a cron spec such as "@every 15m" or "*/10 * * * *".
func NewSweeper(store Store, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		store: store,
		cron:  cron.New(),
		now:   time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep deletes every record that has expired by now.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx, s.now())
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	deleted, err := s.Sweep(ctx)
	if err != nil {
		log.Err(err).Msg("Session sweep failed")
		return
	}
	if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("Expired sessions removed")
	}
}
