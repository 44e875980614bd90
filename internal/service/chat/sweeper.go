package chat

import (
	"github.com/robfig/cron/v3"

	"github.com/dkarpushin/tubechat/internal/logger"
)

// Sweeper runs Reap on a cron schedule as an alternative to the inline
// probabilistic reaping. Observable session semantics are identical;
// only the trigger differs.
type Sweeper struct {
	cron *cron.Cron
	svc  *Service
}

// NewSweeper schedules a background sweep using a standard cron
// expression, e.g. "*/10 * * * *".
func NewSweeper(svc *Service, schedule string) (*Sweeper, error) {
	s := &Sweeper{cron: cron.New(), svc: svc}
	_, err := s.cron.AddFunc(schedule, func() {
		if removed := svc.Reap(svc.MaxAge()); removed > 0 {
			logger.Log.Infof("[sweeper] reaped %d expired sessions", removed)
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the schedule in its own goroutine.
func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts the schedule; a running sweep finishes first.
func (s *Sweeper) Stop() { <-s.cron.Stop().Done() }
