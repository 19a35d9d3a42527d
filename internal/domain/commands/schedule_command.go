package commands

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitvault/internal/domain/entities"
)

const (
	// defaultWaitSlice caps how long the scheduler sleeps at once, so cancellation
	// and live cron changes are noticed within a second.
	defaultWaitSlice = time.Second

	// nextRunOffset keeps a run that starts exactly on its scheduled second
	// from immediately rescheduling itself for the same moment.
	nextRunOffset = time.Millisecond
)

type waitOutcome int

const (
	waitReached waitOutcome = iota
	waitRescheduled
	waitCancelled
)

// Schedule is the interface for the long-running scheduler loop.
type Schedule interface {
	Run(ctx context.Context) error
}

// ScheduleCommand drives the repository job family: it evaluates the live
// cron expression, waits for the next occurrence, runs a sync pass, and runs
// retention afterwards. Everything is evaluated in UTC.
type ScheduleCommand struct {
	store     *entities.SettingsStore
	sync      Sync
	retention Retention

	retentionMutex sync.Mutex
	clock          func() time.Time
	waitSlice      time.Duration
	warnedCron     map[string]struct{}
}

// NewScheduleCommand creates a ScheduleCommand over the live settings store.
func NewScheduleCommand(
	store *entities.SettingsStore,
	syncCommand Sync,
	retentionCommand Retention,
) *ScheduleCommand {
	return &ScheduleCommand{
		store:      store,
		sync:       syncCommand,
		retention:  retentionCommand,
		clock:      time.Now,
		waitSlice:  defaultWaitSlice,
		warnedCron: make(map[string]struct{}),
	}
}

// Run loops until the context is cancelled. Cancellation mid-wait or mid-sync
// exits without starting retention.
func (it *ScheduleCommand) Run(ctx context.Context) error {
	for {
		schedule, cronValue, ok := it.evaluateCron(ctx)
		if !ok {
			return ctx.Err()
		}

		now := it.clock().UTC()
		next := schedule.Next(now.Add(nextRunOffset))
		if next.IsZero() {
			logger.Errorf("Cron expression %q never fires again, stopping the scheduler", cronValue)
			return nil
		}
		logger.Infof("Next repository run at %s", next.Format(time.RFC3339))

		switch it.wait(ctx, next, cronValue) {
		case waitCancelled:
			return ctx.Err()
		case waitRescheduled:
			logger.Info("Schedule changed, re-evaluating")
			continue
		case waitReached:
		}

		settings := it.store.Current()
		it.runSync(ctx, settings)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		it.runRetention(ctx, settings)
	}
}

// evaluateCron blocks until the live cron expression parses or the context is
// cancelled. Each distinct broken value is logged once.
func (it *ScheduleCommand) evaluateCron(
	ctx context.Context,
) (entities.CronSchedule, string, bool) {
	for {
		value := it.store.Current().Schedule.Repositories.Cron

		schedule, err := entities.ParseCronExpression(value)
		if err == nil {
			return schedule, value, true
		}

		if _, warned := it.warnedCron[value]; !warned {
			logger.Errorf("Cron expression %q is invalid: %v", value, err)
			it.warnedCron[value] = struct{}{}
		}

		select {
		case <-ctx.Done():
			return nil, "", false
		case <-time.After(it.waitSlice):
		}
	}
}

// wait sleeps towards the target in short slices. It wakes early when the
// context is cancelled or the live cron expression no longer matches the one
// this target was computed from.
func (it *ScheduleCommand) wait(
	ctx context.Context,
	target time.Time,
	scheduledFor string,
) waitOutcome {
	for {
		now := it.clock().UTC()
		if !now.Before(target) {
			return waitReached
		}
		if it.store.Current().Schedule.Repositories.Cron != scheduledFor {
			return waitRescheduled
		}

		slice := min(it.waitSlice, target.Sub(now))
		select {
		case <-ctx.Done():
			return waitCancelled
		case <-time.After(slice):
		}
	}
}

// runSync executes one sync pass, recovering panics so a misbehaving provider
// SDK cannot kill the scheduler.
func (it *ScheduleCommand) runSync(ctx context.Context, settings *entities.Settings) {
	start := it.clock()
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Errorf("Sync run panicked after %s: %v", it.clock().Sub(start), recovered)
		}
	}()

	if err := it.sync.Execute(ctx, settings); err != nil {
		logger.Errorf("Sync run failed after %s: %v", it.clock().Sub(start), err)
		return
	}
	logger.Infof("Sync run finished in %s", it.clock().Sub(start))
}

// runRetention executes one retention pass under the retention mutex, so at
// most one pass is ever in flight.
func (it *ScheduleCommand) runRetention(ctx context.Context, settings *entities.Settings) {
	it.retentionMutex.Lock()
	defer it.retentionMutex.Unlock()

	if err := it.retention.Execute(ctx, settings); err != nil {
		logger.Errorf("Retention run failed: %v", err)
	}
}
