package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `store:
  backend: "sqlite"
  path: "fleet.db"
oracle:
  mode: "http"
  http:
    url: "http://model:8500/score"
    api_key: "secret"
planner:
  revenue_quota: 18
  standby_policy: "lowest_mileage"
history:
  backend: "sqlite"
  path: "history.db"
metrics:
  prometheus_enabled: true
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "induction"
  feed_topic: "depot/feed"
api:
  addr: ":8081"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"store.backend", cfg.Store.Backend, "sqlite"},
		{"store.path", cfg.Store.Path, "fleet.db"},
		{"oracle.mode", cfg.Oracle.Mode, "http"},
		{"oracle.http.url", cfg.Oracle.HTTP.URL, "http://model:8500/score"},
		{"oracle.http.api_key", cfg.Oracle.HTTP.APIKey, "secret"},
		{"oracle.http.timeout_seconds", cfg.Oracle.HTTP.TimeoutSeconds, 10},
		{"planner.revenue_quota", cfg.Planner.RevenueQuota, 18},
		{"planner.standby_policy", cfg.Planner.StandbyPolicy, "lowest_mileage"},
		{"history.backend", cfg.History.Backend, "sqlite"},
		{"history.path", cfg.History.Path, "history.db"},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9090"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.feed_topic", cfg.MQTT.FeedTopic, "depot/feed"},
		{"api.addr", cfg.API.Addr, ":8081"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.Path != "induction.db" {
		t.Fatalf("store defaults not applied: %+v", cfg.Store)
	}
	if cfg.Oracle.Mode != "mock" {
		t.Fatalf("oracle default not applied: %+v", cfg.Oracle)
	}
	if cfg.Planner.RevenueQuota != 15 || cfg.Planner.StandbyPolicy != "first" {
		t.Fatalf("planner defaults not applied: %+v", cfg.Planner)
	}
	if cfg.History.Backend != "jsonl" || cfg.History.Path != "induction.log" {
		t.Fatalf("history defaults not applied: %+v", cfg.History)
	}
	if cfg.API.Addr != ":8080" {
		t.Fatalf("api default not applied: %+v", cfg.API)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "store:\n  backend: \"postgres\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
