package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kilianp07/induction/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Store.Backend = "memory"
	cfg.Oracle.Mode = "mock"
	cfg.History.Backend = "jsonl"
	cfg.History.Path = filepath.Join(t.TempDir(), "history.log")
	cfg.Planner.SetDefaults()
	cfg.API.SetDefaults()
	return cfg
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServiceEndToEnd(t *testing.T) {
	svc, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()
	h := svc.Handler()

	ingestBody := `{"rows":[
		{"trainset_id":"TS-01","date":"2025-06-01","mileage_km":"12000","fitness_rs_days":"40"},
		{"trainset_id":"TS-02","date":"2025-06-01","mileage_km":"15000","fitness_rs_days":"35"},
		{"trainset_id":"TS-03","date":"2025-06-01","mileage_km":"9000","job_card_status":"open"}
	]}`
	rr := do(t, h, http.MethodPost, "/api/plan/ingest", ingestBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("ingest: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/api/plan/rank", `{"date":"2025-06-01","quota":1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("rank: %d %s", rr.Code, rr.Body.String())
	}
	var plan struct {
		Revenue     []json.RawMessage `json:"revenue"`
		Standby     []json.RawMessage `json:"standby"`
		Maintenance []json.RawMessage `json:"maintenance"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if len(plan.Revenue) != 1 || len(plan.Standby) != 1 || len(plan.Maintenance) != 1 {
		t.Fatalf("unexpected partition: %s", rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/api/plan?date=2025-06-01", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("day: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/api/fleet/summary?date=2025-06-01", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary: %d %s", rr.Code, rr.Body.String())
	}
	var sum struct {
		Total        int `json:"total"`
		Revenue      int `json:"revenue"`
		OpenJobCards int `json:"open_job_cards"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Total != 3 || sum.Revenue != 1 || sum.OpenJobCards != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	rr = do(t, h, http.MethodGet, "/api/plan/history?date=2025-06-01", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("history: %d %s", rr.Code, rr.Body.String())
	}
	var hist []json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected one pass record, got %d", len(hist))
	}
}

func TestServiceRunShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Backend = "none"
	cfg.History.Path = ""
	cfg.API.Addr = "127.0.0.1:0"
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}
