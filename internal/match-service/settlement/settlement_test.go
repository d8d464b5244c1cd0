package settlement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
	"github.com/radieske/match-settlement-platform/internal/match-service/settlement"
)

// ── Fakes ────────────────────────────────────────────────────────────────────

type fakeStore struct {
	m           *domain.Match
	transitions []string
	completeErr error
}

func (s *fakeStore) Get(_ context.Context, matchID string) (*domain.Match, error) {
	if s.m == nil || s.m.ID != matchID {
		return nil, domain.ErrMatchNotFound
	}
	cp := *s.m
	return &cp, nil
}

func (s *fakeStore) TransitionStatus(_ context.Context, matchID string, from, to domain.Status) error {
	if s.m == nil || s.m.ID != matchID {
		return domain.ErrMatchNotFound
	}
	if s.m.Status != from {
		return domain.ErrInvalidState
	}
	s.m.Status = to
	s.transitions = append(s.transitions, string(from)+"->"+string(to))
	return nil
}

func (s *fakeStore) Complete(_ context.Context, matchID, winnerID string, completedAt time.Time) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	if s.m == nil || s.m.ID != matchID {
		return domain.ErrMatchNotFound
	}
	if s.m.Status != domain.StatusProcessing {
		return domain.ErrInvalidState
	}
	s.m.Status = domain.StatusCompleted
	s.m.WinnerID = winnerID
	s.m.CompletedTime = &completedAt
	s.transitions = append(s.transitions, "processing->completed")
	return nil
}

type fakeLedger struct {
	bets        []domain.Bet
	settleErr   error
	listErr     error
	settleCalls int
	listCalls   int
	settledWith domain.Outcome
	settledRef  string
}

func (l *fakeLedger) Settle(_ context.Context, _ string, winning domain.Outcome, settlementRef, _ string) error {
	l.settleCalls++
	if l.settleErr != nil {
		return l.settleErr
	}
	l.settledWith = winning
	l.settledRef = settlementRef
	return nil
}

func (l *fakeLedger) ListByMatch(_ context.Context, _, _ string) ([]domain.Bet, error) {
	l.listCalls++
	if l.listErr != nil {
		return nil, l.listErr
	}
	return l.bets, nil
}

type credit struct {
	userID string
	amount decimal.Decimal
	ref    string
}

type fakeWallet struct {
	credits []credit
	failFor map[string]error // userID -> erro
}

func (w *fakeWallet) Credit(_ context.Context, userID string, amount decimal.Decimal, externalRef, _ string) error {
	w.credits = append(w.credits, credit{userID: userID, amount: amount, ref: externalRef})
	if err, ok := w.failFor[userID]; ok {
		return err
	}
	return nil
}

// fixedDecider sempre escolhe o mandante.
type fixedDecider struct{ outcome domain.Outcome }

func (d fixedDecider) DecideWinner(m *domain.Match) (string, domain.Outcome) {
	if d.outcome == domain.OutcomeWinAway {
		return m.AwayTeamID, domain.OutcomeWinAway
	}
	return m.HomeTeamID, domain.OutcomeWinHome
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func activeMatch() *domain.Match {
	return &domain.Match{
		ID:         "m1",
		HomeTeamID: "team-home",
		AwayTeamID: "team-away",
		StartTime:  time.Now().Add(-2 * time.Hour),
		Status:     domain.StatusActive,
	}
}

func bet(id, userID string, outcome domain.Outcome, stake int64) domain.Bet {
	return domain.Bet{
		BetID:        id,
		UserID:       userID,
		Outcome:      outcome,
		AmountStaked: decimal.NewFromInt(stake),
	}
}

func newOrchestrator(store *fakeStore, ledger *fakeLedger, wallet *fakeWallet) *settlement.Orchestrator {
	return &settlement.Orchestrator{
		Log:     zap.NewNop(),
		Store:   store,
		Ledger:  ledger,
		Wallet:  wallet,
		Decider: fixedDecider{outcome: domain.OutcomeWinHome},
	}
}

// ── CompleteMatch: guardas síncronas ─────────────────────────────────────────

func TestCompleteMatch_NotFound(t *testing.T) {
	orch := newOrchestrator(&fakeStore{}, &fakeLedger{}, &fakeWallet{})

	_, err := orch.CompleteMatch(context.Background(), "missing", "tk")
	if !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("err = %v, want ErrMatchNotFound", err)
	}
}

func TestCompleteMatch_InvalidState(t *testing.T) {
	for _, st := range []domain.Status{domain.StatusScheduled, domain.StatusProcessing, domain.StatusCompleted} {
		m := activeMatch()
		m.Status = st
		store := &fakeStore{m: m}
		ledger := &fakeLedger{}
		orch := newOrchestrator(store, ledger, &fakeWallet{})

		_, err := orch.CompleteMatch(context.Background(), "m1", "tk")
		if !errors.Is(err, domain.ErrInvalidState) {
			t.Fatalf("status %s: err = %v, want ErrInvalidState", st, err)
		}
		if len(store.transitions) != 0 {
			t.Errorf("status %s: match was mutated: %v", st, store.transitions)
		}
		if ledger.settleCalls != 0 {
			t.Errorf("status %s: settle should not have been called", st)
		}
	}
}

// ── CompleteMatch: caminho feliz ─────────────────────────────────────────────

func TestCompleteMatch_PotConservation(t *testing.T) {
	store := &fakeStore{m: activeMatch()}
	ledger := &fakeLedger{bets: []domain.Bet{
		bet("b1", "u1", domain.OutcomeWinHome, 150),
		bet("b2", "u2", domain.OutcomeWinHome, 250),
		bet("b3", "u3", domain.OutcomeWinAway, 400),
		bet("b4", "u4", domain.OutcomeDraw, 200),
	}}
	wallet := &fakeWallet{}
	orch := newOrchestrator(store, ledger, wallet)

	res, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err != nil {
		t.Fatalf("CompleteMatch: %v", err)
	}

	wantPot := decimal.NewFromInt(1000)
	if !res.Plan.TotalPot.Equal(wantPot) {
		t.Errorf("total pot = %s, want %s", res.Plan.TotalPot, wantPot)
	}

	paid := decimal.Zero
	for _, c := range wallet.credits {
		paid = paid.Add(c.amount)
	}
	// Soma dos payouts == pote, a menos do arredondamento (2 casas)
	if paid.Sub(wantPot).Abs().GreaterThan(decimal.NewFromFloat(0.02)) {
		t.Errorf("sum of payouts = %s, want ~%s", paid, wantPot)
	}

	if store.m.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", store.m.Status)
	}
	if store.m.WinnerID != "team-home" {
		t.Errorf("winnerId = %q, want team-home", store.m.WinnerID)
	}
	if store.m.CompletedTime == nil {
		t.Error("completed_time not set")
	}
	if ledger.settledWith != domain.OutcomeWinHome {
		t.Errorf("settled outcome = %s, want win_home", ledger.settledWith)
	}
	if ledger.settledRef != res.SettlementRef {
		t.Errorf("settlement ref mismatch: %s vs %s", ledger.settledRef, res.SettlementRef)
	}
}

// Cenário do rateio integral: duas apostas, só uma no resultado vencedor.
// O vencedor leva o pote inteiro.
func TestCompleteMatch_WinnerTakesWholePot(t *testing.T) {
	store := &fakeStore{m: activeMatch()}
	ledger := &fakeLedger{bets: []domain.Bet{
		bet("a", "1", domain.OutcomeWinHome, 100),
		bet("b", "2", domain.OutcomeWinAway, 300),
	}}
	wallet := &fakeWallet{}
	orch := newOrchestrator(store, ledger, wallet)

	res, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err != nil {
		t.Fatalf("CompleteMatch: %v", err)
	}

	if !res.Plan.TotalPot.Equal(decimal.NewFromInt(400)) {
		t.Errorf("total pot = %s, want 400", res.Plan.TotalPot)
	}
	if !res.Plan.WinningStake.Equal(decimal.NewFromInt(100)) {
		t.Errorf("winning stake = %s, want 100", res.Plan.WinningStake)
	}
	if len(wallet.credits) != 1 {
		t.Fatalf("credits = %d, want 1", len(wallet.credits))
	}
	if wallet.credits[0].userID != "1" {
		t.Errorf("credited user = %s, want 1", wallet.credits[0].userID)
	}
	if !wallet.credits[0].amount.Equal(decimal.NewFromInt(400)) {
		t.Errorf("payout = %s, want 400", wallet.credits[0].amount)
	}
	if store.m.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", store.m.Status)
	}
}

func TestCompleteMatch_ZeroWinners(t *testing.T) {
	store := &fakeStore{m: activeMatch()}
	// ninguém apostou no resultado vencedor (win_home)
	ledger := &fakeLedger{bets: []domain.Bet{
		bet("b1", "u1", domain.OutcomeWinAway, 500),
		bet("b2", "u2", domain.OutcomeDraw, 300),
	}}
	wallet := &fakeWallet{}
	orch := newOrchestrator(store, ledger, wallet)

	res, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err != nil {
		t.Fatalf("CompleteMatch: %v", err)
	}
	if len(wallet.credits) != 0 {
		t.Errorf("credits issued = %d, want 0", len(wallet.credits))
	}
	if store.m.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", store.m.Status)
	}
	if !res.Plan.WinningStake.IsZero() {
		t.Errorf("winning stake = %s, want 0", res.Plan.WinningStake)
	}
}

// ── CompleteMatch: falhas de colaborador e rollback ──────────────────────────

func TestCompleteMatch_SettleFails_RollsBack(t *testing.T) {
	store := &fakeStore{m: activeMatch()}
	ledger := &fakeLedger{settleErr: errors.New("http 503")}
	wallet := &fakeWallet{}
	orch := newOrchestrator(store, ledger, wallet)

	_, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsCollaborator(err) {
		t.Errorf("err = %v, want CollaboratorError", err)
	}
	if store.m.Status != domain.StatusActive {
		t.Errorf("status after rollback = %s, want active", store.m.Status)
	}
	if store.m.WinnerID != "" || store.m.CompletedTime != nil {
		t.Error("rollback must not touch winner_id/completed_time")
	}
	if len(wallet.credits) != 0 {
		t.Errorf("credits issued = %d, want 0", len(wallet.credits))
	}
}

func TestCompleteMatch_ListFailsAfterSettle_RollsBack(t *testing.T) {
	store := &fakeStore{m: activeMatch()}
	ledger := &fakeLedger{listErr: errors.New("timeout")}
	wallet := &fakeWallet{}
	orch := newOrchestrator(store, ledger, wallet)

	_, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsCollaborator(err) {
		t.Errorf("err = %v, want CollaboratorError", err)
	}
	// O settle já tinha sido aplicado no ledger externo: janela de
	// inconsistência conhecida. A partida, porém, volta para active.
	if ledger.settleCalls != 1 {
		t.Errorf("settle calls = %d, want 1", ledger.settleCalls)
	}
	if store.m.Status != domain.StatusActive {
		t.Errorf("status after rollback = %s, want active", store.m.Status)
	}
}

func TestCompleteMatch_PartialPayoutFailure_StillCompletes(t *testing.T) {
	store := &fakeStore{m: activeMatch()}
	ledger := &fakeLedger{bets: []domain.Bet{
		bet("b1", "u1", domain.OutcomeWinHome, 100),
		bet("b2", "u2", domain.OutcomeWinHome, 100),
		bet("b3", "u3", domain.OutcomeWinHome, 100),
	}}
	wallet := &fakeWallet{failFor: map[string]error{"u2": errors.New("wallet down")}}

	var payoutFailures int
	orch := newOrchestrator(store, ledger, wallet)
	orch.OnPayoutFailed = func() { payoutFailures++ }

	res, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err != nil {
		t.Fatalf("CompleteMatch: %v", err)
	}

	if store.m.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", store.m.Status)
	}
	if store.m.WinnerID == "" {
		t.Error("winner_id not set")
	}
	// Os três créditos foram tentados, mesmo com u2 falhando
	if len(wallet.credits) != 3 {
		t.Errorf("credits attempted = %d, want 3", len(wallet.credits))
	}
	if res.PayoutFailures != 1 || payoutFailures != 1 {
		t.Errorf("payout failures = %d (callback %d), want 1", res.PayoutFailures, payoutFailures)
	}
}

func TestCompleteMatch_CompletePersistFails_RollsBack(t *testing.T) {
	store := &fakeStore{m: activeMatch(), completeErr: errors.New("pg down")}
	ledger := &fakeLedger{bets: []domain.Bet{bet("b1", "u1", domain.OutcomeWinHome, 100)}}
	orch := newOrchestrator(store, ledger, &fakeWallet{})

	_, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err == nil {
		t.Fatal("expected error")
	}
	if store.m.Status != domain.StatusActive {
		t.Errorf("status after rollback = %s, want active", store.m.Status)
	}
}

// ── Idempotência entre tentativas ────────────────────────────────────────────

func TestCompleteMatch_RetryUsesFreshSettlementRef(t *testing.T) {
	store := &fakeStore{m: activeMatch()}
	ledger := &fakeLedger{settleErr: errors.New("boom")}
	orch := newOrchestrator(store, ledger, &fakeWallet{})

	_, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err == nil {
		t.Fatal("expected first attempt to fail")
	}

	ledger.settleErr = nil
	ledger.bets = []domain.Bet{bet("b1", "u1", domain.OutcomeWinHome, 10)}
	res, err := orch.CompleteMatch(context.Background(), "m1", "tk")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.SettlementRef == "" {
		t.Error("settlement ref empty on retry")
	}
	if ledger.settleCalls != 2 {
		t.Errorf("settle calls = %d, want 2", ledger.settleCalls)
	}
}

// ── StartMatch ───────────────────────────────────────────────────────────────

func TestStartMatch(t *testing.T) {
	m := activeMatch()
	m.Status = domain.StatusScheduled
	store := &fakeStore{m: m}
	orch := newOrchestrator(store, &fakeLedger{}, &fakeWallet{})

	got, err := orch.StartMatch(context.Background(), "m1")
	if err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if got.Status != domain.StatusActive {
		t.Errorf("status = %s, want active", got.Status)
	}

	// segunda chamada: já active
	if _, err := orch.StartMatch(context.Background(), "m1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("second start err = %v, want ErrInvalidState", err)
	}
}

func TestStartMatch_NotFound(t *testing.T) {
	orch := newOrchestrator(&fakeStore{}, &fakeLedger{}, &fakeWallet{})
	if _, err := orch.StartMatch(context.Background(), "nope"); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Errorf("err = %v, want ErrMatchNotFound", err)
	}
}
