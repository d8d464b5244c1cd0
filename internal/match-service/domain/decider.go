package domain

import "math/rand"

// WinnerDecider decide o vencedor de uma partida no momento da liquidação.
// A decisão retorna o time vencedor e o resultado correspondente
// (win_home ou win_away).
type WinnerDecider interface {
	DecideWinner(m *Match) (winnerID string, outcome Outcome)
}

// RandomDecider sorteia o vencedor entre os dois participantes sem peso.
// TODO: trocar por um decisor alimentado pelo placar real quando o feed de
// resultados existir.
type RandomDecider struct {
	Rand *rand.Rand // opcional; nil usa o gerador global
}

func (d RandomDecider) DecideWinner(m *Match) (string, Outcome) {
	coin := rand.Intn(2)
	if d.Rand != nil {
		coin = d.Rand.Intn(2)
	}
	if coin == 0 {
		return m.HomeTeamID, OutcomeWinHome
	}
	return m.AwayTeamID, OutcomeWinAway
}
