package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreatePending insere uma nova aposta com status PENDING_CONFIRMATION
func (p *Postgres) CreatePending(ctx context.Context, b *Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id,user_id,match_id,outcome,amount_staked,odds_on_bet,status)
		VALUES ($1,$2,$3,$4,$5,$6,'PENDING_CONFIRMATION')`,
		id, b.UserID, b.MatchID, b.Outcome, b.AmountStaked, b.OddsOnBet,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete remove uma aposta recém-criada (compensação quando a reserva de
// saldo falha)
func (p *Postgres) Delete(ctx context.Context, betID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id=$1`, betID)
	return err
}

// GetStatus retorna o status atual de uma aposta pelo betID
func (p *Postgres) GetStatus(ctx context.Context, betID string) (string, error) {
	var s string
	err := p.db.QueryRowContext(ctx, `SELECT status FROM bets WHERE id=$1`, betID).Scan(&s)
	return s, err
}

// GetByUser retorna as apostas de um usuário, mais recentes primeiro
func (p *Postgres) GetByUser(ctx context.Context, userID string) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,user_id,match_id,outcome,amount_staked,odds_on_bet,status,COALESCE(settlement_ref,''),created_at,updated_at
		FROM bets WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// ListByMatch retorna todas as apostas de uma partida, de todos os resultados
func (p *Postgres) ListByMatch(ctx context.Context, matchID string) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,user_id,match_id,outcome,amount_staked,odds_on_bet,status,COALESCE(settlement_ref,''),created_at,updated_at
		FROM bets WHERE match_id=$1 ORDER BY created_at`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// SettleMatch marca as apostas ativas da partida como WON/LOST.
// Idempotente: apostas já liquidadas (status WON/LOST) não são tocadas, então
// um retry com outro settlement_ref não re-liquida nada.
func (p *Postgres) SettleMatch(ctx context.Context, matchID, winningOutcome, settlementRef string) (won, lost int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	resWon, err := tx.ExecContext(ctx, `
		UPDATE bets SET status='WON', settlement_ref=$1, updated_at=NOW()
		WHERE match_id=$2 AND outcome=$3 AND status IN ('ACTIVE','PENDING_CONFIRMATION')`,
		settlementRef, matchID, winningOutcome)
	if err != nil {
		return 0, 0, err
	}
	won, _ = resWon.RowsAffected()

	resLost, err := tx.ExecContext(ctx, `
		UPDATE bets SET status='LOST', settlement_ref=$1, updated_at=NOW()
		WHERE match_id=$2 AND outcome<>$3 AND status IN ('ACTIVE','PENDING_CONFIRMATION')`,
		settlementRef, matchID, winningOutcome)
	if err != nil {
		return 0, 0, err
	}
	lost, _ = resLost.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return won, lost, nil
}

// UpdateStatus atualiza o status de uma aposta (usado pelo worker de
// confirmação)
func (p *Postgres) UpdateStatus(ctx context.Context, betID, status string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE bets SET status=$1, updated_at=NOW() WHERE id=$2`, status, betID)
	return err
}

// InsertTransaction registra a mudança de status no histórico de auditoria
func (p *Postgres) InsertTransaction(ctx context.Context, betID, oldStatus, newStatus, reason string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bet_transactions (bet_id, old_status, new_status, reason, created_at)
		VALUES ($1,$2,$3,$4,NOW())`, betID, oldStatus, newStatus, reason)
	return err
}

func scanBets(rows *sql.Rows) ([]Bet, error) {
	var out []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.MatchID, &b.Outcome, &b.AmountStaked, &b.OddsOnBet, &b.Status, &b.SettlementRef, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
