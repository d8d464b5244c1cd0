package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
	"github.com/radieske/match-settlement-platform/pkg/contracts/events"
)

// MatchStore é o contrato de persistência de partidas usado pelo orquestrador.
// TransitionStatus é um compare-and-set: só aplica a transição se o status
// atual for exatamente `from`, senão devolve domain.ErrInvalidState. Cada
// transição é um write commitado individualmente.
type MatchStore interface {
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	TransitionStatus(ctx context.Context, matchID string, from, to domain.Status) error
	Complete(ctx context.Context, matchID, winnerID string, completedAt time.Time) error
}

// BetLedger é o contrato do bet-service visto pelo orquestrador.
type BetLedger interface {
	Settle(ctx context.Context, matchID string, winning domain.Outcome, settlementRef, authToken string) error
	ListByMatch(ctx context.Context, matchID, authToken string) ([]domain.Bet, error)
}

// WalletService é o contrato do wallet-service visto pelo orquestrador.
// A liquidação só credita; débitos acontecem em outros fluxos.
type WalletService interface {
	Credit(ctx context.Context, userID string, amount decimal.Decimal, externalRef, authToken string) error
}

// Publisher publica o evento de partida liquidada.
type Publisher interface {
	PublishMatchCompleted(ctx context.Context, e events.MatchCompleted) error
}

// Result resume uma liquidação bem sucedida.
type Result struct {
	Match          *domain.Match
	WinningOutcome domain.Outcome
	SettlementRef  string
	Plan           domain.PayoutPlan
	PayoutFailures int
}

// Orchestrator conduz a saga de liquidação de uma partida:
// active -> processing (commit imediato, funciona como lock consultivo),
// decisão do vencedor, settle + list no bet-service, rateio do pote via
// créditos no wallet-service e processing -> completed. Falha no settle ou
// no list desfaz para active; falha de crédito individual é registrada e
// não aborta a liquidação.
type Orchestrator struct {
	Log     *zap.Logger
	Store   MatchStore
	Ledger  BetLedger
	Wallet  WalletService
	Decider domain.WinnerDecider
	Publ    Publisher // opcional

	// Callbacks de métricas (opcionais)
	OnSettled      func()
	OnRollback     func()
	OnPayoutPaid   func()
	OnPayoutFailed func()
}

// StartMatch faz a transição scheduled -> active.
func (o *Orchestrator) StartMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	m, err := o.Store.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.StatusScheduled {
		return nil, fmt.Errorf("start match %s in status %q: %w", matchID, m.Status, domain.ErrInvalidState)
	}
	if err := o.Store.TransitionStatus(ctx, matchID, domain.StatusScheduled, domain.StatusActive); err != nil {
		return nil, err
	}
	m.Status = domain.StatusActive
	return m, nil
}

// CompleteMatch executa a liquidação completa de uma partida active.
// authToken é repassado como credencial bearer em toda chamada aos
// colaboradores; o orquestrador não emite nem valida o token.
func (o *Orchestrator) CompleteMatch(ctx context.Context, matchID, authToken string) (*Result, error) {
	m, err := o.Store.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.StatusActive {
		return nil, fmt.Errorf("complete match %s in status %q: %w", matchID, m.Status, domain.ErrInvalidState)
	}

	// Lock consultivo: o processing precisa estar commitado antes de qualquer
	// chamada externa, assim um retry concorrente enxerga InvalidState em vez
	// de reentrar na liquidação. O CAS no store cobre a corrida entre dois
	// leitores de active.
	if err := o.Store.TransitionStatus(ctx, matchID, domain.StatusActive, domain.StatusProcessing); err != nil {
		return nil, err
	}
	m.Status = domain.StatusProcessing

	settlementRef := uuid.NewString()
	winnerID, outcome := o.Decider.DecideWinner(m)

	o.Log.Info("settlement started",
		zap.String("matchId", matchID),
		zap.String("settlementRef", settlementRef),
		zap.String("winningOutcome", string(outcome)),
	)

	res, err := o.settle(ctx, m, winnerID, outcome, settlementRef, authToken)
	if err != nil {
		o.rollback(ctx, matchID)
		return nil, err
	}

	if o.Publ != nil {
		evc := events.MatchCompleted{
			MatchID:        matchID,
			WinnerID:       winnerID,
			WinningOutcome: string(outcome),
			SettlementRef:  settlementRef,
			TotalPot:       res.Plan.TotalPot,
			WinnersPaid:    len(res.Plan.Payouts) - res.PayoutFailures,
			PayoutFailures: res.PayoutFailures,
			CompletedAt:    *res.Match.CompletedTime,
		}
		if perr := o.Publ.PublishMatchCompleted(ctx, evc); perr != nil {
			o.Log.Warn("match_completed publish failed", zap.String("matchId", matchID), zap.Error(perr))
		}
	}

	if o.OnSettled != nil {
		o.OnSettled()
	}
	return res, nil
}

// settle executa os passos externos da saga. Qualquer erro retornado aqui
// dispara o rollback processing -> active no chamador.
func (o *Orchestrator) settle(ctx context.Context, m *domain.Match, winnerID string, outcome domain.Outcome, settlementRef, authToken string) (*Result, error) {
	// 1) Marca as apostas como win/loss no bet-service. O settlementRef torna
	// o settle idempotente: um retry após CollaboratorError não re-liquida.
	if err := o.Ledger.Settle(ctx, m.ID, outcome, settlementRef, authToken); err != nil {
		return nil, &domain.CollaboratorError{Service: "bet-service", Op: "settle", Err: err}
	}

	// 2) Busca todas as apostas da partida (todos os resultados).
	bets, err := o.Ledger.ListByMatch(ctx, m.ID, authToken)
	if err != nil {
		return nil, &domain.CollaboratorError{Service: "bet-service", Op: "list_bets", Err: err}
	}

	// 3) Rateio do pote. winning_stake zero => pote retido, sem créditos.
	plan := domain.ComputePayouts(bets, outcome)

	// 4) Créditos aos vencedores, um a um. Falha individual não aborta:
	// os demais vencedores ainda recebem.
	failures := 0
	for _, p := range plan.Payouts {
		ref := fmt.Sprintf("payout:%s:%s", settlementRef, p.BetID)
		if err := o.Wallet.Credit(ctx, p.UserID, p.Amount, ref, authToken); err != nil {
			failures++
			if o.OnPayoutFailed != nil {
				o.OnPayoutFailed()
			}
			o.Log.Error("payout credit failed",
				zap.String("matchId", m.ID),
				zap.String("betId", p.BetID),
				zap.String("userId", p.UserID),
				zap.String("amount", p.Amount.String()),
				zap.Error(err),
			)
			continue
		}
		if o.OnPayoutPaid != nil {
			o.OnPayoutPaid()
		}
	}

	// 5) processing -> completed, com vencedor e horário.
	completedAt := time.Now().UTC()
	if err := o.Store.Complete(ctx, m.ID, winnerID, completedAt); err != nil {
		return nil, err
	}

	m.Status = domain.StatusCompleted
	m.WinnerID = winnerID
	m.CompletedTime = &completedAt

	o.Log.Info("settlement completed",
		zap.String("matchId", m.ID),
		zap.String("winnerId", winnerID),
		zap.String("totalPot", plan.TotalPot.String()),
		zap.Int("winners", len(plan.Payouts)),
		zap.Int("payoutFailures", failures),
	)

	return &Result{
		Match:          m,
		WinningOutcome: outcome,
		SettlementRef:  settlementRef,
		Plan:           plan,
		PayoutFailures: failures,
	}, nil
}

// rollback desfaz processing -> active após falha de colaborador.
// winner_id e completed_time não são tocados.
func (o *Orchestrator) rollback(ctx context.Context, matchID string) {
	if o.OnRollback != nil {
		o.OnRollback()
	}
	if err := o.Store.TransitionStatus(ctx, matchID, domain.StatusProcessing, domain.StatusActive); err != nil {
		// Partida fica presa em processing; precisa de intervenção manual.
		o.Log.Error("settlement rollback failed", zap.String("matchId", matchID), zap.Error(err))
		return
	}
	o.Log.Warn("settlement rolled back", zap.String("matchId", matchID))
}

// IsRetryable informa ao cliente administrativo se vale repetir a operação.
func IsRetryable(err error) bool {
	return domain.IsCollaborator(err) && !errors.Is(err, domain.ErrInvalidState)
}
