package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
)

func bet(id, user string, outcome domain.Outcome, stake int64) domain.Bet {
	return domain.Bet{BetID: id, UserID: user, Outcome: outcome, AmountStaked: decimal.NewFromInt(stake)}
}

// O rateio é uma redistribuição de soma zero do pote inteiro entre os
// vencedores, proporcional ao stake.
//
//	Cenário:
//	  b1: win_home 100   b2: win_away 300   vencedor: win_home
//	  pote = 400, stake vencedor = 100 => payout(b1) = 400
func TestComputePayouts_WinnerTakesPot(t *testing.T) {
	plan := domain.ComputePayouts([]domain.Bet{
		bet("b1", "u1", domain.OutcomeWinHome, 100),
		bet("b2", "u2", domain.OutcomeWinAway, 300),
	}, domain.OutcomeWinHome)

	if !plan.TotalPot.Equal(decimal.NewFromInt(400)) {
		t.Errorf("total pot = %s, want 400", plan.TotalPot)
	}
	if !plan.WinningStake.Equal(decimal.NewFromInt(100)) {
		t.Errorf("winning stake = %s, want 100", plan.WinningStake)
	}
	if len(plan.Payouts) != 1 {
		t.Fatalf("payouts = %d, want 1", len(plan.Payouts))
	}
	if plan.Payouts[0].UserID != "u1" {
		t.Errorf("payout user = %s, want u1", plan.Payouts[0].UserID)
	}
	if !plan.Payouts[0].Amount.Equal(decimal.NewFromInt(400)) {
		t.Errorf("payout = %s, want 400", plan.Payouts[0].Amount)
	}
}

func TestComputePayouts_ProportionalSplit(t *testing.T) {
	plan := domain.ComputePayouts([]domain.Bet{
		bet("b1", "u1", domain.OutcomeWinHome, 100),
		bet("b2", "u2", domain.OutcomeWinHome, 300),
		bet("b3", "u3", domain.OutcomeDraw, 600),
	}, domain.OutcomeWinHome)

	// pote = 1000, stake vencedor = 400
	// b1: 100/400 * 1000 = 250 ; b2: 300/400 * 1000 = 750
	if len(plan.Payouts) != 2 {
		t.Fatalf("payouts = %d, want 2", len(plan.Payouts))
	}
	if !plan.Payouts[0].Amount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("payout b1 = %s, want 250", plan.Payouts[0].Amount)
	}
	if !plan.Payouts[1].Amount.Equal(decimal.NewFromInt(750)) {
		t.Errorf("payout b2 = %s, want 750", plan.Payouts[1].Amount)
	}
}

// Soma dos payouts == pote, a menos do arredondamento, mesmo com divisões
// que geram dízimas.
func TestComputePayouts_PotConservedWithRounding(t *testing.T) {
	plan := domain.ComputePayouts([]domain.Bet{
		bet("b1", "u1", domain.OutcomeWinHome, 10),
		bet("b2", "u2", domain.OutcomeWinHome, 10),
		bet("b3", "u3", domain.OutcomeWinHome, 10),
		bet("b4", "u4", domain.OutcomeWinAway, 70),
	}, domain.OutcomeWinHome)

	sum := decimal.Zero
	for _, p := range plan.Payouts {
		sum = sum.Add(p.Amount)
		// RoundDown: nenhum vencedor recebe mais do que sua fração exata
		if p.Amount.GreaterThan(decimal.NewFromFloat(33.34)) {
			t.Errorf("payout %s acima da fração: %s", p.BetID, p.Amount)
		}
	}
	diff := plan.TotalPot.Sub(sum)
	if diff.IsNegative() || diff.GreaterThan(decimal.NewFromFloat(0.03)) {
		t.Errorf("pot %s - paid %s = %s, want within [0, 0.03]", plan.TotalPot, sum, diff)
	}
}

func TestComputePayouts_NoWinners(t *testing.T) {
	plan := domain.ComputePayouts([]domain.Bet{
		bet("b1", "u1", domain.OutcomeWinAway, 200),
	}, domain.OutcomeWinHome)

	if len(plan.Payouts) != 0 {
		t.Errorf("payouts = %d, want 0", len(plan.Payouts))
	}
	if !plan.TotalPot.Equal(decimal.NewFromInt(200)) {
		t.Errorf("total pot = %s, want 200", plan.TotalPot)
	}
}

func TestComputePayouts_NoBets(t *testing.T) {
	plan := domain.ComputePayouts(nil, domain.OutcomeWinHome)
	if !plan.TotalPot.IsZero() || len(plan.Payouts) != 0 {
		t.Errorf("empty ledger should yield empty plan, got pot=%s payouts=%d", plan.TotalPot, len(plan.Payouts))
	}
}

func TestValidOutcome(t *testing.T) {
	for _, o := range []domain.Outcome{domain.OutcomeWinHome, domain.OutcomeDraw, domain.OutcomeWinAway} {
		if !domain.ValidOutcome(o) {
			t.Errorf("%s should be valid", o)
		}
	}
	if domain.ValidOutcome("win_both") {
		t.Error("win_both should be invalid")
	}
}

func TestRandomDecider_PicksAParticipant(t *testing.T) {
	m := &domain.Match{ID: "m1", HomeTeamID: "h", AwayTeamID: "a"}
	d := domain.RandomDecider{}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		winner, outcome := d.DecideWinner(m)
		if winner != "h" && winner != "a" {
			t.Fatalf("winner = %q, want h or a", winner)
		}
		if winner == "h" && outcome != domain.OutcomeWinHome {
			t.Fatalf("home winner with outcome %s", outcome)
		}
		if winner == "a" && outcome != domain.OutcomeWinAway {
			t.Fatalf("away winner with outcome %s", outcome)
		}
		seen[winner] = true
	}
	if len(seen) != 2 {
		t.Error("200 draws never picked both sides; decider looks biased")
	}
}
