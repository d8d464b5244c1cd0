package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/match-settlement-platform/internal/team-service/cache"
	"github.com/radieske/match-settlement-platform/internal/team-service/dto"
	"github.com/radieske/match-settlement-platform/internal/team-service/repo"
)

// Repo define a persistência de times e atletas usada pelos handlers
type Repo interface {
	CreateTeam(ctx context.Context, t *repo.Team) (string, error)
	GetTeam(ctx context.Context, id string) (*repo.Team, error)
	ListTeams(ctx context.Context) ([]repo.Team, error)
	UpdateTeam(ctx context.Context, id string, t *repo.Team) error
	DeleteTeam(ctx context.Context, id string) error
	CreateAthlete(ctx context.Context, a *repo.Athlete) (string, error)
	ListAthletes(ctx context.Context, teamID string) ([]repo.Athlete, error)
	DeleteAthlete(ctx context.Context, id string) error
}

type Server struct {
	Log   *zap.Logger
	Repo  Repo
	Cache *cache.Cache // opcional; nil desliga o cache de leitura
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/teams", s.createTeam)
	r.Get("/teams", s.listTeams)
	r.Get("/teams/{id}", s.getTeam)
	r.Put("/teams/{id}", s.updateTeam)
	r.Delete("/teams/{id}", s.deleteTeam)
	r.Post("/teams/{id}/athletes", s.createAthlete)
	r.Get("/teams/{id}/athletes", s.listAthletes)
	r.Delete("/athletes/{id}", s.deleteAthlete)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrTeamNotFound), errors.Is(err, repo.ErrAthleteNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func teamResponse(t *repo.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		City:        t.City,
		FoundedYear: t.FoundedYear,
		CreatedAt:   t.CreatedAt,
	}
}

func (s *Server) createTeam(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	id, err := s.Repo.CreateTeam(r.Context(), &repo.Team{
		Name:        req.Name,
		City:        req.City,
		FoundedYear: req.FoundedYear,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.Repo.ListTeams(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		out = append(out, teamResponse(&teams[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// getTeam responde preferencialmente do cache
func (s *Server) getTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.Cache != nil {
		var cached dto.TeamResponse
		if ok, _ := s.Cache.GetTeam(r.Context(), id, &cached); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	t, err := s.Repo.GetTeam(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := teamResponse(t)
	if s.Cache != nil {
		_ = s.Cache.SetTeam(r.Context(), id, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	err := s.Repo.UpdateTeam(r.Context(), id, &repo.Team{
		Name:        req.Name,
		City:        req.City,
		FoundedYear: req.FoundedYear,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	if s.Cache != nil {
		_ = s.Cache.InvalidateTeam(r.Context(), id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Repo.DeleteTeam(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	if s.Cache != nil {
		_ = s.Cache.InvalidateTeam(r.Context(), id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createAthlete(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "id")
	var req dto.CreateAthleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	id, err := s.Repo.CreateAthlete(r.Context(), &repo.Athlete{
		TeamID:       teamID,
		Name:         req.Name,
		Position:     req.Position,
		JerseyNumber: req.JerseyNumber,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) listAthletes(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "id")
	athletes, err := s.Repo.ListAthletes(r.Context(), teamID)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]dto.AthleteResponse, 0, len(athletes))
	for _, a := range athletes {
		out = append(out, dto.AthleteResponse{
			ID:           a.ID,
			TeamID:       a.TeamID,
			Name:         a.Name,
			Position:     a.Position,
			JerseyNumber: a.JerseyNumber,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteAthlete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Repo.DeleteAthlete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
