package domain

import "github.com/shopspring/decimal"

// Bet é a visão do orquestrador sobre uma aposta do bet-service.
type Bet struct {
	BetID        string          `json:"bet_id"`
	UserID       string          `json:"user_id"`
	Outcome      Outcome         `json:"outcome"`
	AmountStaked decimal.Decimal `json:"amount_staked"`
}

// Payout é o crédito devido a uma aposta vencedora.
type Payout struct {
	BetID  string
	UserID string
	Amount decimal.Decimal
}

// PayoutPlan é o resultado do rateio do pote entre os vencedores.
type PayoutPlan struct {
	TotalPot     decimal.Decimal // soma de todas as apostas (vencedoras e perdedoras)
	WinningStake decimal.Decimal // soma das apostas no resultado vencedor
	Payouts      []Payout
}

// ComputePayouts faz o rateio pari-mutuel do pote:
//
//	payout_i = (stake_i / winning_stake) * total_pot
//
// A soma dos payouts é igual ao pote total, a menos do arredondamento
// (2 casas, RoundDown). Com winning_stake zero não há rateio: o pote fica
// retido e Payouts volta vazio.
func ComputePayouts(bets []Bet, winning Outcome) PayoutPlan {
	plan := PayoutPlan{TotalPot: decimal.Zero, WinningStake: decimal.Zero}

	for _, b := range bets {
		plan.TotalPot = plan.TotalPot.Add(b.AmountStaked)
		if b.Outcome == winning {
			plan.WinningStake = plan.WinningStake.Add(b.AmountStaked)
		}
	}

	if plan.WinningStake.IsZero() {
		return plan
	}

	for _, b := range bets {
		if b.Outcome != winning {
			continue
		}
		amount := b.AmountStaked.Div(plan.WinningStake).Mul(plan.TotalPot).RoundDown(2)
		plan.Payouts = append(plan.Payouts, Payout{
			BetID:  b.BetID,
			UserID: b.UserID,
			Amount: amount,
		})
	}

	return plan
}
