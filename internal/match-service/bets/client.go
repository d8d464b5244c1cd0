package bets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
)

// Client fala com a API interna do bet-service.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type settleRequest struct {
	WinningOutcome string `json:"winning_outcome"`
	SettlementRef  string `json:"settlement_ref"`
}

type listBetsResponse struct {
	Bets []domain.Bet `json:"bets"`
}

// Settle marca as apostas da partida como win/loss conforme o resultado.
// Idempotente no bet-service via settlement_ref.
func (c *Client) Settle(ctx context.Context, matchID string, winning domain.Outcome, settlementRef, authToken string) error {
	body, _ := json.Marshal(settleRequest{WinningOutcome: string(winning), SettlementRef: settlementRef})
	url := fmt.Sprintf("%s/internal/matches/%s/settle", c.BaseURL, matchID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("bet settle http %d", res.StatusCode)
	}
	return nil
}

// ListByMatch devolve todas as apostas da partida, de todos os resultados.
func (c *Client) ListByMatch(ctx context.Context, matchID, authToken string) ([]domain.Bet, error) {
	url := fmt.Sprintf("%s/internal/matches/%s/bets", c.BaseURL, matchID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+authToken)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("bet list http %d", res.StatusCode)
	}
	var out listBetsResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Bets, nil
}
