package config

import (
	"fmt"
	"time"

	"github.com/grovetools/codex-wakatime/errors"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for _, d := range []struct {
		field string
		value string
	}{
		{"heartbeat.rate_limit", c.Heartbeat.RateLimit},
		{"heartbeat.command_timeout", c.Heartbeat.CommandTimeout},
		{"wakatime.update_interval", c.WakaTime.UpdateInterval},
	} {
		if d.value == "" {
			continue
		}
		dur, err := time.ParseDuration(d.value)
		if err != nil {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s is not a valid duration: %q", d.field, d.value)).
				WithDetail("field", d.field)
		}
		if dur < 0 {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s cannot be negative", d.field)).
				WithDetail("field", d.field)
		}
	}

	if c.Heartbeat.Category != "" && !validCategories[c.Heartbeat.Category] {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("unknown heartbeat category %q", c.Heartbeat.Category)).
			WithDetail("category", c.Heartbeat.Category)
	}

	return nil
}
