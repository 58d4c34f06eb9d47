package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

// Config defines the nightly planning parameters.
type Config struct {
	// Enabled turns the scheduler on.
	Enabled bool `json:"enabled"`
	// RunAt is the local wall clock trigger time, "HH:MM". Default 21:00,
	// after the evening depot feeds have landed.
	RunAt string `json:"run_at"`
	// DayOffset selects the operational day relative to the trigger day.
	// The default 1 plans the following morning's service.
	DayOffset int `json:"day_offset"`
	// Quota is the revenue quota for scheduled passes.
	Quota int `json:"quota"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.RunAt == "" {
		c.RunAt = "21:00"
	}
	if c.DayOffset == 0 {
		c.DayOffset = 1
	}
	if c.Quota == 0 {
		c.Quota = 15
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if _, _, err := parseClock(c.RunAt); err != nil {
		return err
	}
	if c.Quota < 0 {
		return fmt.Errorf("quota must not be negative")
	}
	return nil
}

func (c Config) runAtClock() (h, m int) {
	h, m, _ = parseClock(c.RunAt)
	return h, m
}

func parseClock(s string) (h, m int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid run_at %q, want HH:MM", s)
	}
	h, err = strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid run_at hour %q", parts[0])
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid run_at minute %q", parts[1])
	}
	return h, m, nil
}
