package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts five-field specs and descriptors such as
// "@every 5m" or "@hourly".
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCronSchedule reports whether schedule parses.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// GetEnvSchedule reads a cron schedule from key, falling back to
// defaultValue when it does not parse.
func GetEnvSchedule(key, defaultValue string) string {
	s := GetEnvString(key, defaultValue)
	if err := ValidateCronSchedule(s); err != nil {
		warnDefault(key, s, defaultValue, err)
		return defaultValue
	}
	return s
}
