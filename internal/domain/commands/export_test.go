package commands

import "time"

// SetClock exports the clock override for testing.
func (it *SyncCommand) SetClock(clock func() time.Time) { it.clock = clock }

// SetClock exports the clock override for testing.
func (it *RetentionCommand) SetClock(clock func() time.Time) { it.clock = clock }

// SetClock exports the clock override for testing.
func (it *ScheduleCommand) SetClock(clock func() time.Time) { it.clock = clock }

// SetWaitSlice exports the wait slice override for testing.
func (it *ScheduleCommand) SetWaitSlice(slice time.Duration) { it.waitSlice = slice }
