package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// positiveDuration reads key and falls back to defaultValue when the result
// is not positive.
func positiveDuration(key string, defaultValue time.Duration) time.Duration {
	d := GetEnvDuration(key, defaultValue)
	if err := ValidatePositiveDuration(d); err != nil {
		warnDefault(key, d.String(), defaultValue.String(), err)
		return defaultValue
	}
	return d
}

// positiveInt reads key and falls back to defaultValue when the result is
// not positive.
func positiveInt(key string, defaultValue int) int {
	v := GetEnvInt(key, defaultValue)
	if v <= 0 {
		warnDefault(key, fmt.Sprint(v), fmt.Sprint(defaultValue), fmt.Errorf("must be positive"))
		return defaultValue
	}
	return v
}
