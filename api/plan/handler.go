// Package plan exposes the ranking engine over HTTP. All handlers accept
// an optional bearer token; an empty token disables authentication.
package plan

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/induction/core/model"
	"github.com/kilianp07/induction/core/planner"
	"github.com/kilianp07/induction/core/store"
)

// trainDTO is the wire form of a trainset decision. Forced records carry
// no score because the feasibility sentinel is not representable in JSON.
type trainDTO struct {
	TrainsetID string   `json:"trainset_id"`
	Decision   string   `json:"decision"`
	Score      *float64 `json:"score,omitempty"`
	Forced     bool     `json:"forced,omitempty"`
}

func toDTO(r model.TrainRecord) trainDTO {
	d := trainDTO{TrainsetID: r.TrainsetID, Decision: string(r.Decision)}
	if r.ForcedIneligible() {
		d.Forced = true
		return d
	}
	d.Score = r.PredictedScore
	return d
}

type planResponse struct {
	PassID      string     `json:"pass_id"`
	Date        model.Date `json:"date"`
	Quota       int        `json:"quota"`
	Revenue     []trainDTO `json:"revenue"`
	Standby     []trainDTO `json:"standby"`
	Maintenance []trainDTO `json:"maintenance"`
}

func toPlanResponse(p planner.Plan) planResponse {
	resp := planResponse{
		PassID:      p.PassID,
		Date:        p.Date,
		Quota:       p.Quota,
		Revenue:     make([]trainDTO, 0, len(p.Revenue)),
		Standby:     make([]trainDTO, 0, len(p.Standby)),
		Maintenance: make([]trainDTO, 0, len(p.Maintenance)),
	}
	for _, r := range p.Revenue {
		resp.Revenue = append(resp.Revenue, toDTO(r))
	}
	for _, r := range p.Standby {
		resp.Standby = append(resp.Standby, toDTO(r))
	}
	for _, r := range p.Maintenance {
		resp.Maintenance = append(resp.Maintenance, toDTO(r))
	}
	return resp
}

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+token
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NewRankHandler returns an HTTP handler running a ranking pass via
// POST /api/plan/rank. The request body selects the service date and may
// override the configured revenue quota.
func NewRankHandler(eng *planner.Engine, defaultQuota int, token string) http.Handler {
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
			Date  string `json:"date"`
			Quota *int   `json:"quota"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		date, err := model.ParseDate(req.Date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		quota := defaultQuota
		if req.Quota != nil {
			quota = *req.Quota
		}
		plan, err := eng.RunRanking(r.Context(), date, quota)
		if err != nil {
			if errors.Is(err, planner.ErrOracle) {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, toPlanResponse(plan))
	})
}

// NewWhatIfHandler returns an HTTP handler applying a what-if mutation via
// POST /api/plan/whatif.
func NewWhatIfHandler(eng *planner.Engine, token string) http.Handler {
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
			Date       string `json:"date"`
			TrainsetID string `json:"trainset_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		date, err := model.ParseDate(req.Date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.TrainsetID == "" {
			http.Error(w, "trainset_id is required", http.StatusBadRequest)
			return
		}
		res, err := eng.ApplyWhatIf(r.Context(), date, req.TrainsetID)
		if err != nil {
			if errors.Is(err, planner.ErrNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, struct {
			Focus    string `json:"focus"`
			MovedTo  string `json:"moved_to"`
			Promoted string `json:"promoted,omitempty"`
		}{Focus: res.Focus, MovedTo: string(res.MovedTo), Promoted: res.Promoted})
	})
}

// NewDayHandler returns an HTTP handler exposing the stored decisions for
// one service date via GET /api/plan?date=YYYY-MM-DD.
func NewDayHandler(st store.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		date, err := model.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		recs, err := st.Day(r.Context(), date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]trainDTO, 0, len(recs))
		for _, rec := range recs {
			out = append(out, toDTO(rec))
		}
		writeJSON(w, out)
	})
}
