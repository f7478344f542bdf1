package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/go-co-op/gocron"
)

type SchedulableService interface {
	RunBatchJob(ctx context.Context) error
}

type Scheduler struct {
	Cron *gocron.Scheduler
	WG   *sync.WaitGroup
}

func New() (*Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		Cron: s,
		WG:   &sync.WaitGroup{},
	}, nil
}

// StartJob runs every service each interval, the first run one interval
// from now. A run still in progress when the next one is due is not overlapped.
func (s *Scheduler) StartJob(ctx context.Context, interval time.Duration, services []SchedulableService) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}

	_, err := s.Cron.Every(interval).WaitForSchedule().Do(func() {
		s.runAllJobs(ctx, services)
	})
	if err != nil {
		logger.Error("Failed to schedule job: %v", err)
		return err
	}

	s.Cron.StartAsync()
	logger.Info("Scheduled refresh every %s", interval)
	return nil
}

func (s *Scheduler) runAllJobs(ctx context.Context, services []SchedulableService) {
	s.WG.Add(1)
	defer s.WG.Done()

	logger.Info("--- Scheduled Refresh Started ---")
	defer logger.Info("--- Scheduled Refresh Finished ---")

	for _, service := range services {
		if ctx.Err() != nil {
			logger.Warn("Skipping remaining jobs: %v", ctx.Err())
			return
		}
		if err := service.RunBatchJob(ctx); err != nil {
			logger.Error("Error running batch job for service: %v", err)
		}
	}
}

func (s *Scheduler) RunImmediateJob(ctx context.Context, services []SchedulableService) {
	logger.Info("--- Immediate Refresh Job Started ---")
	defer logger.Info("--- Immediate Refresh Job Finished ---")

	s.runAllJobs(ctx, services)
}

// Stop halts the schedule and waits for a run in progress.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.WG.Wait()
}
