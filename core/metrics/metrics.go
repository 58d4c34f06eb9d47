// Package metrics defines the observability sink for planner events.
package metrics

import (
	"time"

	"github.com/kilianp07/induction/core/model"
)

// PassSummary captures the outcome of one ranking pass.
type PassSummary struct {
	Date          model.Date
	Quota         int
	Revenue       int
	Standby       int
	Maintenance   int
	OracleLatency time.Duration
}

// Sink records planner events for observability purposes.
type Sink interface {
	RecordRankingPass(s PassSummary) error
	RecordRankingFailure(date model.Date) error
	RecordWhatIf(date model.Date, promoted bool) error
	RecordIngest(date model.Date, rows int) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRankingPass(PassSummary) error   { return nil }
func (NopSink) RecordRankingFailure(model.Date) error { return nil }
func (NopSink) RecordWhatIf(model.Date, bool) error   { return nil }
func (NopSink) RecordIngest(model.Date, int) error    { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}
