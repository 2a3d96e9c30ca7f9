// Package reminder runs periodic jobs on a cron schedule.
package reminder

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Service drives jobs on standard cron expressions.
type Service struct {
	cron *cron.Cron
}

func New() *Service {
	return &Service{cron: cron.New()}
}

// Add registers job under the given cron schedule, e.g. "0 9 * * *".
func (s *Service) Add(ctx context.Context, schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := job(ctx); err != nil {
			lgr.Printf("WARN scheduled job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("could not schedule job: %w", err)
	}
	return nil
}

// Start launches the scheduler and stops it when ctx is done. Jobs already
// running are left to finish.
func (s *Service) Start(ctx context.Context) {
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
}
