package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-retry"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	bcDto "github.com/radieske/match-settlement-platform/internal/bet-confirmation/dto"
	betrepo "github.com/radieske/match-settlement-platform/internal/bet-service/repo"
	"github.com/radieske/match-settlement-platform/internal/shared/config"
	"github.com/radieske/match-settlement-platform/internal/shared/db"
	"github.com/radieske/match-settlement-platform/internal/shared/kafka"
	"github.com/radieske/match-settlement-platform/internal/shared/logger"
	ev "github.com/radieske/match-settlement-platform/pkg/contracts/events"
)

var (
	betsConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bets_confirmed_total", Help: "apostas confirmadas (ACTIVE)"})
	betsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bets_rejected_total", Help: "apostas rejeitadas (REJECTED)"})
	betsDLQ = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bets_dlq_total", Help: "eventos bet_placed enviados para a DLQ"})
)

func main() {
	cfg := config.Load()
	log, err := logger.New("bet-confirmation-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(betsConfirmed, betsRejected, betsDLQ)

	// Postgres para atualização de status das apostas
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()
	bets := betrepo.NewPostgres(pg)

	// Kafka consumer: eventos bet_placed
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  "bet-confirmation",
		Topic:    cfg.TopicBetPlaced,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// Kafka producer: bet_confirmed e, opcionalmente, DLQ
	confirmedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetConfirmed)
	defer confirmedWriter.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicBetPlacedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlacedDLQ)
		defer dlqWriter.Close()
	}

	// Servidor HTTP para métricas Prometheus e healthcheck
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.MetricsPort
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	log.Info("bet-confirmation-worker started",
		zap.String("consume", cfg.TopicBetPlaced),
		zap.String("publish", cfg.TopicBetConfirmed),
	)

	ctx := context.Background()

	// Loop principal: consome bet_placed, confirma ou rejeita, publica resultado
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		var placed bcDto.BetPlaced
		if jerr := json.Unmarshal(msg.Value, &placed); jerr != nil {
			log.Error("unmarshal bet_placed", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, bets, cfg, confirmedWriter, dlqWriter, &placed); err != nil {
			log.Error("process bet", zap.String("betId", placed.BetID), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne executa o fluxo de confirmação de uma aposta:
// 1. Consulta o match-service para verificar se a partida ainda aceita apostas
// 2. Partida aberta: efetiva a reserva de saldo e marca a aposta ACTIVE
//    Partida fechada/inexistente: estorna a reserva e marca REJECTED
// 3. Publica evento bet_confirmed no Kafka
// Falha persistente na verificação manda o evento original para a DLQ
func processOne(
	ctx context.Context,
	log *zap.Logger,
	bets *betrepo.Postgres,
	cfg config.Config,
	confirmedWriter *kafkago.Writer,
	dlqWriter *kafkago.Writer,
	placed *bcDto.BetPlaced,
) error {
	status, err := fetchMatchStatus(ctx, cfg, placed.MatchID)
	if err != nil && !errors.Is(err, errMatchNotFound) {
		if dlqWriter != nil {
			_ = kafka.WriteJSON(ctx, dlqWriter, placed.BetID, mustJSON(placed))
			betsDLQ.Inc()
		}
		return err
	}

	// Apostas só valem enquanto a partida não entrou em liquidação
	open := err == nil && (status == "scheduled" || status == "active")

	newStatus := betrepo.StatusActive
	reason := ""
	if !open {
		newStatus = betrepo.StatusRejected
		if errors.Is(err, errMatchNotFound) {
			reason = "match not found"
		} else {
			reason = "match no longer accepting bets (" + status + ")"
		}
	}

	if err := bets.UpdateStatus(ctx, placed.BetID, newStatus); err != nil {
		return err
	}
	if err := bets.InsertTransaction(ctx, placed.BetID, betrepo.StatusPendingConfirmation, newStatus, reason); err != nil {
		log.Warn("bet_tx insert", zap.Error(err))
	}

	// Resolve a reserva de saldo feita na criação da aposta
	if open {
		if err := walletResolve(ctx, cfg, "commit", placed.UserID, placed.ReservedRef); err != nil {
			log.Error("wallet commit", zap.Error(err))
		}
		betsConfirmed.Inc()
	} else {
		if err := walletResolve(ctx, cfg, "refund", placed.UserID, placed.ReservedRef); err != nil {
			log.Error("wallet refund", zap.Error(err))
			// No mundo real, seria interessante uma fila de compensação
		}
		betsRejected.Inc()
	}

	evc := ev.BetConfirmed{
		BetID:  placed.BetID,
		UserID: placed.UserID,
		Status: newStatus,
		Reason: reason,
		Ts:     time.Now(),
	}
	return kafka.WriteJSON(ctx, confirmedWriter, placed.BetID, mustJSON(evc))
}

var errMatchNotFound = errors.New("match not found")

// fetchMatchStatus consulta o status da partida no match-service.
// Erros transitórios (rede, 5xx) são retentados com backoff fibonacci;
// 404 é resposta definitiva e não é retentado.
func fetchMatchStatus(ctx context.Context, cfg config.Config, matchID string) (string, error) {
	var status string

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(300*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		rctx, cancel := context.WithTimeout(ctx, cfg.CollaboratorTimeout)
		defer cancel()

		url := cfg.MatchServiceURL + "/matches/" + matchID
		req, _ := http.NewRequestWithContext(rctx, http.MethodGet, url, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return errMatchNotFound
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("match-service http %s", resp.Status))
		case resp.StatusCode >= 300:
			return fmt.Errorf("match-service http %s", resp.Status)
		}

		var out bcDto.MatchStateResponse
		if jerr := json.NewDecoder(resp.Body).Decode(&out); jerr != nil {
			return jerr
		}
		status = out.Status
		return nil
	})
	return status, err
}

// walletResolve chama /wallet/commit ou /wallet/refund para a reserva da aposta
func walletResolve(ctx context.Context, cfg config.Config, op, userID, externalRef string) error {
	payload, _ := json.Marshal(map[string]any{
		"userId":       userID,
		"external_ref": externalRef,
	})

	url := cfg.WalletServiceURL + "/wallet/" + op
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("wallet " + op + " http " + resp.Status)
	}
	return nil
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
