package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coreoracle "github.com/kilianp07/induction/core/oracle"
)

func batchOf(n int) []coreoracle.FeatureVector {
	out := make([]coreoracle.FeatureVector, n)
	for i := range out {
		out[i] = coreoracle.FeatureVector{float64(i), 0, 0, 0, 0, 0, 0, 1}
	}
	return out
}

func TestClientScore(t *testing.T) {
	var gotReq scoreRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{0.1, 0.9}})
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, APIKey: "secret"})
	scores, err := c.Score(context.Background(), batchOf(2))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(scores) != 2 || scores[1] != 0.9 {
		t.Fatalf("unexpected scores %v", scores)
	}
	if gotReq.Encoding != coreoracle.EncodingVersion {
		t.Fatalf("encoding version not sent, got %q", gotReq.Encoding)
	}
	if len(gotReq.Features) != 2 {
		t.Fatalf("feature matrix not sent, got %d rows", len(gotReq.Features))
	}
}

func TestClientScoreOAuth(t *testing.T) {
	sso := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	defer sso.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			t.Errorf("oauth token not sent, got %q", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{0.5}})
	}))
	defer srv.Close()

	cfg := Config{URL: srv.URL, APIKey: "ignored"}
	cfg.OAuth.ClientID = "id"
	cfg.OAuth.ClientSecret = "secret"
	cfg.OAuth.AuthURL = sso.URL
	c := NewClient(cfg)
	scores, err := c.Score(context.Background(), batchOf(1))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(scores) != 1 || scores[0] != 0.5 {
		t.Fatalf("unexpected scores %v", scores)
	}
}

func TestClientScoreLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{0.1}})
	}))
	defer srv.Close()
	c := NewClient(Config{URL: srv.URL})
	if _, err := c.Score(context.Background(), batchOf(3)); err == nil {
		t.Fatal("mismatched batch length must fail")
	}
}

func TestClientScoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := NewClient(Config{URL: srv.URL})
	if _, err := c.Score(context.Background(), batchOf(1)); err == nil {
		t.Fatal("non-200 must fail")
	}
}

func TestClientScoreTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	c := NewClient(Config{URL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Score(ctx, batchOf(1)); err == nil {
		t.Fatal("timeout must fail the call")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatal("empty url must fail validation")
	}
	if err := (Config{URL: "http://model:8500/score"}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
