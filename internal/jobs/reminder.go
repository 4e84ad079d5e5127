package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"traderelay/internal/service"
	"traderelay/utils"
)

// ReminderJob periodically nudges users about proposals that have sat
// undecided for too long. It never changes proposal state.
type ReminderJob struct {
	cron    *cron.Cron
	service *service.Service
	logger  *utils.Logger

	interval time.Duration
	after    time.Duration
}

func NewReminderJob(svc *service.Service, logger *utils.Logger, interval, after time.Duration) *ReminderJob {
	return &ReminderJob{
		cron:     cron.New(),
		service:  svc,
		logger:   logger,
		interval: interval,
		after:    after,
	}
}

func (j *ReminderJob) Start() error {
	if j.interval <= 0 {
		return fmt.Errorf("reminder interval must be positive")
	}

	spec := fmt.Sprintf("@every %ds", int(j.interval.Seconds()))
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	j.cron.Start()
	j.logger.Infof("Reminder job scheduled every %s (pending > %s)", j.interval, j.after)
	return nil
}

func (j *ReminderJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *ReminderJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := j.service.RemindStalePending(ctx, j.after); err != nil {
		j.logger.Errorf("Reminder run failed: %v", err)
	}
}
