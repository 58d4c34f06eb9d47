package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/induction/core/metrics"
	"github.com/kilianp07/induction/core/model"
)

// PromSink records planner events in Prometheus metrics.
type PromSink struct {
	passes        *prometheus.CounterVec
	category      *prometheus.GaugeVec
	oracleLatency prometheus.Histogram
	whatifs       *prometheus.CounterVec
	ingested      prometheus.Counter
}

// NewPromSink registers planner metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	passes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranking_passes_total",
		Help: "Total number of ranking passes by outcome",
	}, []string{"outcome"})
	category := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_category_trains",
		Help: "Trainsets per category after the latest ranking pass",
	}, []string{"category"})
	oracleLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "oracle_score_latency_seconds",
		Help:    "Latency of one scoring oracle call",
		Buckets: prometheus.DefBuckets,
	})
	whatifs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whatif_mutations_total",
		Help: "Total number of what-if mutations by promotion outcome",
	}, []string{"promoted"})
	ingested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_rows_total",
		Help: "Total number of normalized ingest rows",
	})

	sink := &PromSink{
		passes:        passes,
		category:      category,
		oracleLatency: oracleLatency,
		whatifs:       whatifs,
		ingested:      ingested,
	}
	for _, c := range []prometheus.Collector{passes, category, oracleLatency, whatifs, ingested} {
		if err := register(reg, c, sink); err != nil {
			return nil, err
		}
	}
	return sink, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector, s *PromSink) error {
	err := reg.Register(c)
	if err == nil {
		return nil
	}
	are, ok := err.(prometheus.AlreadyRegisteredError)
	if !ok {
		return err
	}
	switch existing := are.ExistingCollector.(type) {
	case *prometheus.CounterVec:
		if c == s.passes {
			s.passes = existing
		} else {
			s.whatifs = existing
		}
	case *prometheus.GaugeVec:
		s.category = existing
	case prometheus.Histogram:
		s.oracleLatency = existing
	case prometheus.Counter:
		s.ingested = existing
	}
	return nil
}

// RecordRankingPass updates pass counters and category gauges.
func (s *PromSink) RecordRankingPass(sum coremetrics.PassSummary) error {
	s.passes.WithLabelValues("success").Inc()
	s.category.WithLabelValues("revenue").Set(float64(sum.Revenue))
	s.category.WithLabelValues("standby").Set(float64(sum.Standby))
	s.category.WithLabelValues("maintenance").Set(float64(sum.Maintenance))
	s.oracleLatency.Observe(sum.OracleLatency.Seconds())
	return nil
}

// RecordRankingFailure counts an aborted pass.
func (s *PromSink) RecordRankingFailure(model.Date) error {
	s.passes.WithLabelValues("failure").Inc()
	return nil
}

// RecordWhatIf counts a what-if mutation.
func (s *PromSink) RecordWhatIf(_ model.Date, promoted bool) error {
	s.whatifs.WithLabelValues(strconv.FormatBool(promoted)).Inc()
	return nil
}

// RecordIngest counts normalized rows.
func (s *PromSink) RecordIngest(_ model.Date, rows int) error {
	s.ingested.Add(float64(rows))
	return nil
}
