package entities

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// CronSchedule computes cron occurrence times.
type CronSchedule = cron.Schedule

// fiveFieldParser accepts the classic minute-resolution cron format.
var fiveFieldParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// sixFieldParser accepts the extended format with a leading seconds field.
var sixFieldParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ParseCronExpression parses a 5-field expression first and falls back to the
// 6-field form with seconds. Evaluation of the returned schedule is always
// done against UTC instants by the caller.
func ParseCronExpression(expression string) (cron.Schedule, error) {
	schedule, err := fiveFieldParser.Parse(expression)
	if err == nil {
		return schedule, nil
	}

	schedule, sixFieldErr := sixFieldParser.Parse(expression)
	if sixFieldErr == nil {
		return schedule, nil
	}

	return nil, fmt.Errorf("invalid cron expression %q: %w", expression, err)
}
