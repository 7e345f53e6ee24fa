package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"taskflow/internal/logger"
)

// SchedulerService wraps cron-based jobs. A job still running when its next
// tick fires is skipped, and a panicking job is logged instead of crashing.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	log := cronLogger{}
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// ScheduleReminders dispatches due reminders on every tick.
func (s *SchedulerService) ScheduleReminders(ctx context.Context, interval time.Duration, reminders *ReminderService) (cron.EntryID, error) {
	return s.ScheduleInterval(interval, func() {
		sent, err := reminders.Dispatch(ctx, time.Now())
		if err != nil {
			logger.ErrorContext(ctx, "Reminder dispatch failed", "sent", sent, "error", err)
			return
		}
		if sent > 0 {
			logger.InfoContext(ctx, "Reminders sent", "count", sent)
		}
	})
}

// ScheduleSummary renders the daily agenda at timeStr and hands it to send.
func (s *SchedulerService) ScheduleSummary(ctx context.Context, timeStr string, reminders *ReminderService, send func(context.Context, string) error) (cron.EntryID, error) {
	return s.ScheduleDaily(timeStr, func() {
		text, err := reminders.DailySummary(ctx, time.Now())
		if err != nil {
			logger.ErrorContext(ctx, "Daily summary failed", "error", err)
			return
		}
		if err := send(ctx, text); err != nil {
			logger.ErrorContext(ctx, "Daily summary delivery failed", "error", err)
		}
	})
}

// Entries reports how many jobs are registered.
func (s *SchedulerService) Entries() int {
	return len(s.cron.Entries())
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

// cronLogger routes cron's own messages to the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
