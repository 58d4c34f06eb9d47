package plan

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/induction/core/ingest"
)

// NewIngestHandler returns an HTTP handler accepting depot feed batches
// via POST /api/plan/ingest. Rows are coerced leniently; only rows with a
// missing identity are dropped.
func NewIngestHandler(n *ingest.Normalizer, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Rows []ingest.RawRow `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		recs, err := n.NormalizeBatch(r.Context(), req.Rows)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, struct {
			Ingested int `json:"ingested"`
			Dropped  int `json:"dropped"`
		}{Ingested: len(recs), Dropped: len(req.Rows) - len(recs)})
	})
}
