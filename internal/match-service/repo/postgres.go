package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
)

// Postgres implementa a persistência de partidas e cotações
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de partidas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere uma nova partida com status scheduled
func (p *Postgres) Create(ctx context.Context, homeTeamID, awayTeamID string, startTime time.Time) (*domain.Match, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO matches (id, home_team_id, away_team_id, start_time, status)
		VALUES ($1,$2,$3,$4,'scheduled')`,
		id, homeTeamID, awayTeamID, startTime,
	)
	if err != nil {
		return nil, err
	}
	return p.Get(ctx, id)
}

// Get retorna uma partida pelo id
func (p *Postgres) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	var m domain.Match
	var winner sql.NullString
	var completed sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT id, home_team_id, away_team_id, start_time, status, winner_id, completed_time, created_at, updated_at
		FROM matches WHERE id=$1`, matchID).
		Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.StartTime, &m.Status, &winner, &completed, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		m.WinnerID = winner.String
	}
	if completed.Valid {
		t := completed.Time
		m.CompletedTime = &t
	}
	return &m, nil
}

// List retorna partidas paginadas, mais recentes primeiro
func (p *Postgres) List(ctx context.Context, limit, offset int) ([]domain.Match, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, home_team_id, away_team_id, start_time, status, winner_id, completed_time, created_at, updated_at
		FROM matches
		ORDER BY start_time DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		var m domain.Match
		var winner sql.NullString
		var completed sql.NullTime
		if err := rows.Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.StartTime, &m.Status, &winner, &completed, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if winner.Valid {
			m.WinnerID = winner.String
		}
		if completed.Valid {
			t := completed.Time
			m.CompletedTime = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// TransitionStatus aplica uma transição de status por compare-and-set.
// A condição status=$from no UPDATE garante que duas liquidações concorrentes
// não passem as duas: a que perder a corrida recebe ErrInvalidState.
func (p *Postgres) TransitionStatus(ctx context.Context, matchID string, from, to domain.Status) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE matches SET status=$1, updated_at=NOW()
		WHERE id=$2 AND status=$3`, to, matchID, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := p.Get(ctx, matchID); gerr != nil {
			return gerr
		}
		return domain.ErrInvalidState
	}
	return nil
}

// Complete fecha a partida: processing -> completed, com vencedor e horário
func (p *Postgres) Complete(ctx context.Context, matchID, winnerID string, completedAt time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE matches SET status='completed', winner_id=$1, completed_time=$2, updated_at=NOW()
		WHERE id=$3 AND status='processing'`, winnerID, completedAt, matchID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := p.Get(ctx, matchID); gerr != nil {
			return gerr
		}
		return domain.ErrInvalidState
	}
	return nil
}

// UpsertOdds insere ou atualiza as cotações 1x2 de uma partida
func (p *Postgres) UpsertOdds(ctx context.Context, o domain.Odds) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO odds (match_id, win_home, draw, win_away, updated_at)
		VALUES ($1,$2,$3,$4,NOW())
		ON CONFLICT (match_id) DO UPDATE SET
		  win_home  = EXCLUDED.win_home,
		  draw      = EXCLUDED.draw,
		  win_away  = EXCLUDED.win_away,
		  updated_at= NOW()`,
		o.MatchID, o.WinHome, o.Draw, o.WinAway,
	)
	return err
}

// GetOdds retorna as cotações de uma partida
func (p *Postgres) GetOdds(ctx context.Context, matchID string) (*domain.Odds, error) {
	var o domain.Odds
	err := p.db.QueryRowContext(ctx, `
		SELECT match_id, win_home, draw, win_away, updated_at
		FROM odds WHERE match_id=$1`, matchID).
		Scan(&o.MatchID, &o.WinHome, &o.Draw, &o.WinAway, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOddsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
