package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/match-settlement-platform/internal/bet-service/dto"
	"github.com/radieske/match-settlement-platform/internal/bet-service/odds"
	"github.com/radieske/match-settlement-platform/internal/bet-service/repo"
	"github.com/radieske/match-settlement-platform/pkg/contracts/events"
)

// Repo define a persistência de apostas usada pelos handlers.
type Repo interface {
	CreatePending(ctx context.Context, b *repo.Bet) (string, error)
	Delete(ctx context.Context, betID string) error
	GetStatus(ctx context.Context, betID string) (string, error)
	GetByUser(ctx context.Context, userID string) ([]repo.Bet, error)
	ListByMatch(ctx context.Context, matchID string) ([]repo.Bet, error)
	SettleMatch(ctx context.Context, matchID, winningOutcome, settlementRef string) (won, lost int64, err error)
}

// OddsSource lê a cotação corrente de um resultado.
type OddsSource interface {
	CurrentOdd(ctx context.Context, matchID, outcome string) (decimal.Decimal, error)
}

// WalletClient reserva saldo no wallet-service.
type WalletClient interface {
	Reserve(ctx context.Context, userID string, amount decimal.Decimal, externalRef, authToken string) (string, error)
}

type Server struct {
	log  *zap.Logger
	repo Repo
	odds OddsSource
	wcli WalletClient
	publ interface {
		PublishBetPlaced(context.Context, events.BetPlaced) error
	}
}

func NewServer(log *zap.Logger, r Repo, o OddsSource, w WalletClient, p interface {
	PublishBetPlaced(context.Context, events.BetPlaced) error
}) *Server {
	return &Server{log: log, repo: r, odds: o, wcli: w, publ: p}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.bets)                        // POST | GET ?userId=
	mux.HandleFunc("/bets/", s.getBetStatus)               // GET /bets/{id}
	mux.HandleFunc("/internal/matches/", s.internalMatches) // settle / list
	return mux
}

func (s *Server) bets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.placeBet(w, r)
	case http.MethodGet:
		s.listUserBets(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.MatchID == "" || !validOutcome(req.Outcome) || !req.AmountStaked.IsPositive() {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	// 1) Cotação corrente do resultado, mantida no cache pelo match-service
	oddValue, err := s.odds.CurrentOdd(r.Context(), req.MatchID, req.Outcome)
	if err == odds.ErrNoOdds {
		http.Error(w, "no odds for match", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "odds lookup failed", http.StatusBadGateway)
		return
	}

	// 2) Cria aposta local PENDING
	betID, err := s.repo.CreatePending(r.Context(), &repo.Bet{
		UserID:       req.UserID,
		MatchID:      req.MatchID,
		Outcome:      req.Outcome,
		AmountStaked: req.AmountStaked,
		OddsOnBet:    oddValue,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// 3) Reserva o stake via wallet (external_ref = betID).
	// Se a reserva falhar, apaga a aposta recém-criada (compensação).
	if _, err := s.wcli.Reserve(r.Context(), req.UserID, req.AmountStaked, betID, bearerToken(r)); err != nil {
		if derr := s.repo.Delete(r.Context(), betID); derr != nil {
			s.log.Error("bet compensation delete failed", zap.String("betId", betID), zap.Error(derr))
		}
		http.Error(w, "wallet reserve failed", http.StatusConflict)
		return
	}

	// 4) Publica evento bet_placed
	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:        betID,
		UserID:       req.UserID,
		MatchID:      req.MatchID,
		Outcome:      req.Outcome,
		AmountStaked: req.AmountStaked,
		OddsOnBet:    oddValue,
		ReservedRef:  betID,
	})

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{
		BetID:  betID,
		Status: repo.StatusPendingConfirmation,
	})
}

func (s *Server) listUserBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	bets, err := s.repo.GetByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.BetResponse{
			BetID:        b.ID,
			UserID:       b.UserID,
			MatchID:      b.MatchID,
			Outcome:      b.Outcome,
			AmountStaked: b.AmountStaked,
			OddsOnBet:    b.OddsOnBet,
			Status:       b.Status,
			CreatedAt:    b.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// path: /bets/{id}
	id := strings.TrimPrefix(r.URL.Path, "/bets/")
	if id == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}
	st, err := s.repo.GetStatus(r.Context(), id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"bet_id": id, "status": st})
}

// internalMatches resolve as rotas internas usadas pelo match-service:
//
//	POST /internal/matches/{id}/settle
//	GET  /internal/matches/{id}/bets
func (s *Server) internalMatches(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/internal/matches/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	matchID, action := parts[0], parts[1]

	switch {
	case action == "settle" && r.Method == http.MethodPost:
		s.settleMatch(w, r, matchID)
	case action == "bets" && r.Method == http.MethodGet:
		s.listMatchBets(w, r, matchID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) settleMatch(w http.ResponseWriter, r *http.Request, matchID string) {
	var req dto.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if !validOutcome(req.WinningOutcome) || req.SettlementRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	won, lost, err := s.repo.SettleMatch(r.Context(), matchID, req.WinningOutcome, req.SettlementRef)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info("match bets settled",
		zap.String("matchId", matchID),
		zap.String("winningOutcome", req.WinningOutcome),
		zap.String("settlementRef", req.SettlementRef),
		zap.Int64("won", won),
		zap.Int64("lost", lost),
	)
	writeJSON(w, http.StatusOK, dto.SettleResponse{MatchID: matchID, BetsWon: won, BetsLost: lost})
}

func (s *Server) listMatchBets(w http.ResponseWriter, r *http.Request, matchID string) {
	bets, err := s.repo.ListByMatch(r.Context(), matchID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := dto.ListBetsResponse{Bets: make([]dto.LedgerBet, 0, len(bets))}
	for _, b := range bets {
		out.Bets = append(out.Bets, dto.LedgerBet{
			BetID:        b.ID,
			UserID:       b.UserID,
			Outcome:      b.Outcome,
			AmountStaked: b.AmountStaked,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func validOutcome(o string) bool {
	return o == "win_home" || o == "draw" || o == "win_away"
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
