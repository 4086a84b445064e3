package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vitos/coin_tracker/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultFetchLimit = 50
	maxFetchLimit     = 500
)

type pendingResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type coinResponse struct {
	Coin   *domain.CoinDetail    `json:"coin"`
	Ticker *domain.PriceSnapshot `json:"ticker"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.requestLogger(r).Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeJSON(w, r, errorStatus(err), errorResponse{Error: err.Error()})
}

// A query still in flight after the render budget answers 202.
func (s *Server) writePending(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusAccepted, pendingResponse{Status: "pending"})
}

func (s *Server) handleCoinsJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.budgetContext(r.Context())
	defer cancel()

	st := s.service.Coins(ctx)
	switch {
	case st.Failed():
		s.writeJSONError(w, r, st.Err)
	case st.Pending():
		s.writePending(w, r)
	default:
		s.writeJSON(w, r, http.StatusOK, st.Data)
	}
}

func (s *Server) handleCoinJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.budgetContext(r.Context())
	defer cancel()

	d := s.service.Detail(ctx, r.PathValue("coinId"))
	switch {
	case d.Err() != nil:
		s.writeJSONError(w, r, d.Err())
	case d.Loading():
		s.writePending(w, r)
	default:
		s.writeJSON(w, r, http.StatusOK, coinResponse{Coin: d.Info.Data, Ticker: d.Price.Data})
	}
}

func (s *Server) handleFetchesJSON(w http.ResponseWriter, r *http.Request) {
	limit := defaultFetchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxFetchLimit)
	}

	records, err := s.fetchRepo.ListFetches(r.Context(), limit)
	if err != nil {
		s.requestLogger(r).Error("Failed to list fetches", zap.Error(err))
		http.Error(w, "Failed to list fetches", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*domain.FetchRecord{}
	}
	s.writeJSON(w, r, http.StatusOK, records)
}
