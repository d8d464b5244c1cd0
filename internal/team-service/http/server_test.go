package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	httpapi "github.com/radieske/match-settlement-platform/internal/team-service/http"
	"github.com/radieske/match-settlement-platform/internal/team-service/repo"
)

type fakeRepo struct {
	teams    map[string]*repo.Team
	athletes map[string]*repo.Athlete
	seq      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{teams: map[string]*repo.Team{}, athletes: map[string]*repo.Athlete{}}
}

func (f *fakeRepo) nextID() string {
	f.seq++
	return "id-" + string(rune('0'+f.seq))
}

func (f *fakeRepo) CreateTeam(_ context.Context, t *repo.Team) (string, error) {
	id := f.nextID()
	cp := *t
	cp.ID = id
	f.teams[id] = &cp
	return id, nil
}

func (f *fakeRepo) GetTeam(_ context.Context, id string) (*repo.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, repo.ErrTeamNotFound
	}
	return t, nil
}

func (f *fakeRepo) ListTeams(_ context.Context) ([]repo.Team, error) {
	var out []repo.Team
	for _, t := range f.teams {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRepo) UpdateTeam(_ context.Context, id string, t *repo.Team) error {
	existing, ok := f.teams[id]
	if !ok {
		return repo.ErrTeamNotFound
	}
	existing.Name, existing.City, existing.FoundedYear = t.Name, t.City, t.FoundedYear
	return nil
}

func (f *fakeRepo) DeleteTeam(_ context.Context, id string) error {
	if _, ok := f.teams[id]; !ok {
		return repo.ErrTeamNotFound
	}
	delete(f.teams, id)
	for aid, a := range f.athletes {
		if a.TeamID == id {
			delete(f.athletes, aid)
		}
	}
	return nil
}

func (f *fakeRepo) CreateAthlete(_ context.Context, a *repo.Athlete) (string, error) {
	if _, ok := f.teams[a.TeamID]; !ok {
		return "", repo.ErrTeamNotFound
	}
	id := f.nextID()
	cp := *a
	cp.ID = id
	f.athletes[id] = &cp
	return id, nil
}

func (f *fakeRepo) ListAthletes(_ context.Context, teamID string) ([]repo.Athlete, error) {
	var out []repo.Athlete
	for _, a := range f.athletes {
		if a.TeamID == teamID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteAthlete(_ context.Context, id string) error {
	if _, ok := f.athletes[id]; !ok {
		return repo.ErrAthleteNotFound
	}
	delete(f.athletes, id)
	return nil
}

func newHandler(fr *fakeRepo) http.Handler {
	s := &httpapi.Server{Log: zap.NewNop(), Repo: fr}
	return s.Router()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTeamCRUD(t *testing.T) {
	fr := newFakeRepo()
	h := newHandler(fr)

	rec := do(h, http.MethodPost, "/teams", `{"name":"Palmeiras","city":"São Paulo","founded_year":1914}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}
	var created map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := created["id"]

	rec = do(h, http.MethodGet, "/teams/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = do(h, http.MethodPut, "/teams/"+id, `{"name":"Palmeiras","city":"São Paulo","founded_year":1915}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update: status = %d", rec.Code)
	}
	if fr.teams[id].FoundedYear != 1915 {
		t.Errorf("founded_year = %d, want 1915", fr.teams[id].FoundedYear)
	}

	rec = do(h, http.MethodDelete, "/teams/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec = do(h, http.MethodGet, "/teams/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
}

func TestCreateTeam_NameRequired(t *testing.T) {
	h := newHandler(newFakeRepo())
	rec := do(h, http.MethodPost, "/teams", `{"city":"Santos"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAthletes_NestedUnderTeam(t *testing.T) {
	fr := newFakeRepo()
	h := newHandler(fr)

	rec := do(h, http.MethodPost, "/teams", `{"name":"Santos","city":"Santos"}`)
	var created map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	teamID := created["id"]

	rec = do(h, http.MethodPost, "/teams/"+teamID+"/athletes", `{"name":"Pelé","position":"atacante","jersey_number":10}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create athlete: status = %d", rec.Code)
	}

	rec = do(h, http.MethodGet, "/teams/"+teamID+"/athletes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list athletes: status = %d", rec.Code)
	}
	var athletes []struct {
		ID           string `json:"id"`
		JerseyNumber int    `json:"jersey_number"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &athletes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(athletes) != 1 || athletes[0].JerseyNumber != 10 {
		t.Fatalf("athletes = %+v", athletes)
	}

	rec = do(h, http.MethodDelete, "/athletes/"+athletes[0].ID, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete athlete: status = %d", rec.Code)
	}
}

func TestCreateAthlete_UnknownTeam(t *testing.T) {
	h := newHandler(newFakeRepo())
	rec := do(h, http.MethodPost, "/teams/nope/athletes", `{"name":"Zico"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
