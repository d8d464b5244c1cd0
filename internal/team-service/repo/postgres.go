package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrAthleteNotFound = errors.New("athlete not found")
)

type Team struct {
	ID          string
	Name        string
	City        string
	FoundedYear int
	CreatedAt   time.Time
}

type Athlete struct {
	ID           string
	TeamID       string
	Name         string
	Position     string
	JerseyNumber int
}

// Postgres implementa o cadastro de times e atletas em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) CreateTeam(ctx context.Context, t *Team) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO teams(id, name, city, founded_year, created_at) VALUES($1,$2,$3,$4,now())`,
		id, t.Name, t.City, nullInt(t.FoundedYear))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) GetTeam(ctx context.Context, id string) (*Team, error) {
	var t Team
	var year sql.NullInt64
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, city, founded_year, created_at FROM teams WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.City, &year, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	t.FoundedYear = int(year.Int64)
	return &t, nil
}

func (p *Postgres) ListTeams(ctx context.Context) ([]Team, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, city, founded_year, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Team
	for rows.Next() {
		var t Team
		var year sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.City, &year, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.FoundedYear = int(year.Int64)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateTeam(ctx context.Context, id string, t *Team) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE teams SET name=$1, city=$2, founded_year=$3 WHERE id=$4`,
		t.Name, t.City, nullInt(t.FoundedYear), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTeamNotFound
	}
	return nil
}

// DeleteTeam remove o time e seus atletas (cascata no schema)
func (p *Postgres) DeleteTeam(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM teams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (p *Postgres) CreateAthlete(ctx context.Context, a *Athlete) (string, error) {
	// Valida o time antes para diferenciar 404 de erro de banco
	var exists string
	err := p.db.QueryRowContext(ctx, `SELECT id FROM teams WHERE id=$1`, a.TeamID).Scan(&exists)
	if err == sql.ErrNoRows {
		return "", ErrTeamNotFound
	}
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO athletes(id, team_id, name, position, jersey_number) VALUES($1,$2,$3,$4,$5)`,
		id, a.TeamID, a.Name, nullStr(a.Position), nullInt(a.JerseyNumber))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) ListAthletes(ctx context.Context, teamID string) ([]Athlete, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, team_id, name, position, jersey_number FROM athletes WHERE team_id=$1 ORDER BY jersey_number, name`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Athlete
	for rows.Next() {
		var a Athlete
		var pos sql.NullString
		var num sql.NullInt64
		if err := rows.Scan(&a.ID, &a.TeamID, &a.Name, &pos, &num); err != nil {
			return nil, err
		}
		a.Position = pos.String
		a.JerseyNumber = int(num.Int64)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteAthlete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM athletes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAthleteNotFound
	}
	return nil
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}
