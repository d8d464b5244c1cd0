package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/match-settlement-platform/internal/match-service/cache"
	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
	"github.com/radieske/match-settlement-platform/internal/match-service/dto"
	"github.com/radieske/match-settlement-platform/internal/match-service/settlement"
)

// Repo define as operações de persistência usadas pelos handlers REST.
type Repo interface {
	Create(ctx context.Context, homeTeamID, awayTeamID string, startTime time.Time) (*domain.Match, error)
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	List(ctx context.Context, limit, offset int) ([]domain.Match, error)
	UpsertOdds(ctx context.Context, o domain.Odds) error
	GetOdds(ctx context.Context, matchID string) (*domain.Odds, error)
}

// Server expõe a API REST de partidas e o endpoint de liquidação.
type Server struct {
	Log   *zap.Logger
	Repo  Repo
	Orch  *settlement.Orchestrator
	Cache *cache.Cache // opcional; nil desliga o cache de leitura
}

// Router retorna o roteador HTTP do match-service.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/matches", s.createMatch)               // admin
	r.Get("/matches", s.listMatches)                //
	r.Get("/matches/{id}", s.getMatch)              //
	r.Post("/matches/{id}/odds", s.upsertOdds)      // admin
	r.Put("/matches/{id}/odds", s.upsertOdds)       // admin
	r.Post("/matches/{id}/start", s.startMatch)     // scheduled -> active
	r.Post("/matches/{id}/complete", s.completeMatch) // liquidação
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr traduz erros de domínio para status HTTP.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMatchNotFound), errors.Is(err, domain.ErrOddsNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case domain.IsCollaborator(err):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// bearerToken extrai a credencial do header Authorization.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	return strings.TrimPrefix(h, "Bearer ")
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if req.HomeTeamID == "" || req.AwayTeamID == "" || req.StartTime.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	m, err := s.Repo.Create(r.Context(), req.HomeTeamID, req.AwayTeamID, req.StartTime)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.FromMatch(m, nil))
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	limit, offset := 100, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	ms, err := s.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]dto.MatchResponse, 0, len(ms))
	for i := range ms {
		odds, _ := s.Repo.GetOdds(r.Context(), ms[i].ID)
		out = append(out, dto.FromMatch(&ms[i], odds))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.Cache != nil {
		var fromCache dto.MatchResponse
		if ok, _ := s.Cache.GetMatch(r.Context(), id, &fromCache); ok {
			writeJSON(w, http.StatusOK, fromCache)
			return
		}
	}

	m, err := s.Repo.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	odds, oerr := s.Repo.GetOdds(r.Context(), id)
	if oerr != nil && !errors.Is(oerr, domain.ErrOddsNotFound) {
		writeErr(w, oerr)
		return
	}

	resp := dto.FromMatch(m, odds)
	if s.Cache != nil {
		_ = s.Cache.SetMatch(r.Context(), id, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) upsertOdds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.OddsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if !req.WinHome.IsPositive() || !req.Draw.IsPositive() || !req.WinAway.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "odds must be positive"})
		return
	}
	if _, err := s.Repo.Get(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}

	o := domain.Odds{MatchID: id, WinHome: req.WinHome, Draw: req.Draw, WinAway: req.WinAway, UpdatedAt: time.Now().UTC()}
	if err := s.Repo.UpsertOdds(r.Context(), o); err != nil {
		writeErr(w, err)
		return
	}
	if s.Cache != nil {
		// Publica as cotações correntes para o validador do bet-service
		if err := s.Cache.SetOdds(r.Context(), o); err != nil {
			s.Log.Warn("odds cache publish failed", zap.String("matchId", id), zap.Error(err))
		}
		_ = s.Cache.InvalidateMatch(r.Context(), id)
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) startMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.Orch.StartMatch(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if s.Cache != nil {
		_ = s.Cache.InvalidateMatch(r.Context(), id)
	}
	writeJSON(w, http.StatusOK, dto.FromMatch(m, nil))
}

func (s *Server) completeMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.Orch.CompleteMatch(r.Context(), id, bearerToken(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	if s.Cache != nil {
		_ = s.Cache.InvalidateMatch(r.Context(), id)
	}
	writeJSON(w, http.StatusOK, dto.CompleteMatchResponse{
		MatchID:        res.Match.ID,
		Status:         string(res.Match.Status),
		WinnerID:       res.Match.WinnerID,
		WinningOutcome: string(res.WinningOutcome),
		SettlementRef:  res.SettlementRef,
		TotalPot:       res.Plan.TotalPot,
		WinnersPaid:    len(res.Plan.Payouts) - res.PayoutFailures,
		CompletedTime:  res.Match.CompletedTime,
	})
}
