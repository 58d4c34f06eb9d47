package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/induction/core/metrics"
	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/infra/logger"
)

// InfluxSink writes planner events to an InfluxDB instance using the
// official client. Historical pass summaries feed the operations dashboards.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRankingPass writes the pass summary as one point.
func (s *InfluxSink) RecordRankingPass(sum coremetrics.PassSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ranking_pass").
		AddTag("date", string(sum.Date)).
		AddTag("outcome", "success").
		AddField("quota", sum.Quota).
		AddField("revenue", sum.Revenue).
		AddField("standby", sum.Standby).
		AddField("maintenance", sum.Maintenance).
		AddField("oracle_latency_ms", sum.OracleLatency.Milliseconds()).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRankingFailure writes an aborted pass marker.
func (s *InfluxSink) RecordRankingFailure(date model.Date) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ranking_pass").
		AddTag("date", string(date)).
		AddTag("outcome", "failure").
		AddField("failed", 1).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordWhatIf writes a what-if mutation event.
func (s *InfluxSink) RecordWhatIf(date model.Date, promoted bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("whatif_mutation").
		AddTag("date", string(date)).
		AddTag("promoted", strconv.FormatBool(promoted)).
		AddField("count", 1).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordIngest writes the normalized row count of one batch.
func (s *InfluxSink) RecordIngest(date model.Date, rows int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ingest_batch").
		AddTag("date", string(date)).
		AddField("rows", rows).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts the underlying client down.
func (s *InfluxSink) Close() { s.client.Close() }
