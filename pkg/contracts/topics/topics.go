package topics

const (
	// Bets
	BetPlaced    = "bet_placed"
	BetConfirmed = "bet_confirmed"

	// Partidas
	MatchCompleted = "match_completed"

	// DLQs
	BetPlacedDLQ = "bet_placed_dlq"
)
