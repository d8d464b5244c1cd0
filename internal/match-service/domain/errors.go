package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMatchNotFound indica que nenhuma partida existe para o id informado.
	ErrMatchNotFound = errors.New("match not found")

	// ErrOddsNotFound indica que a partida ainda não tem cotações cadastradas.
	ErrOddsNotFound = errors.New("odds not found")

	// ErrInvalidState indica uma transição de status não permitida
	// (ex: completar uma partida que não está active).
	ErrInvalidState = errors.New("invalid match state for this operation")

	// ErrInvalidOutcome indica um resultado fora do enum win_home/draw/win_away.
	ErrInvalidOutcome = errors.New("invalid outcome")
)

// CollaboratorError embrulha falhas de chamadas HTTP aos serviços colaboradores
// (bet-service ou wallet-service). Compare com errors.As / IsCollaborator.
type CollaboratorError struct {
	Service string // "bet-service" | "wallet-service"
	Op      string // ex: "settle", "list_bets", "credit"
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// IsCollaborator informa se err (ou sua cadeia) é uma falha de colaborador.
func IsCollaborator(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
