package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	mcache "github.com/radieske/match-settlement-platform/internal/match-service/cache"
	"github.com/radieske/match-settlement-platform/internal/match-service/bets"
	"github.com/radieske/match-settlement-platform/internal/match-service/domain"
	mhttp "github.com/radieske/match-settlement-platform/internal/match-service/http"
	kpub "github.com/radieske/match-settlement-platform/internal/match-service/producer"
	"github.com/radieske/match-settlement-platform/internal/match-service/repo"
	"github.com/radieske/match-settlement-platform/internal/match-service/settlement"
	"github.com/radieske/match-settlement-platform/internal/match-service/wallet"
	sharedcache "github.com/radieske/match-settlement-platform/internal/shared/cache"
	"github.com/radieske/match-settlement-platform/internal/shared/config"
	"github.com/radieske/match-settlement-platform/internal/shared/db"
	"github.com/radieske/match-settlement-platform/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("match-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de leitura + publicação de odds para o bet-service)
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic match_completed)
	writer := kafkago.NewWriter(kafkago.WriterConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		Topic:    cfg.TopicMatchCompleted,
		Balancer: &kafkago.LeastBytes{},
	})
	defer writer.Close()

	// Métricas Prometheus da liquidação
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_settlements_total", Help: "liquidações concluídas"})
	rolledBack := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_settlement_rollbacks_total", Help: "liquidações desfeitas por falha de colaborador"})
	payoutsPaid := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_payouts_paid_total", Help: "créditos de prêmio efetuados"})
	payoutsFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_payouts_failed_total", Help: "créditos de prêmio com falha (não abortam a liquidação)"})
	prometheus.MustRegister(settled, rolledBack, payoutsPaid, payoutsFailed)

	// deps
	repository := repo.NewPostgres(pg)
	readCache := mcache.New(rdb, 30*time.Second)

	orch := &settlement.Orchestrator{
		Log:            log,
		Store:          repository,
		Ledger:         bets.New(cfg.BetServiceURL, cfg.CollaboratorTimeout),
		Wallet:         wallet.New(cfg.WalletServiceURL, cfg.CollaboratorTimeout),
		Decider:        domain.RandomDecider{},
		Publ:           kpub.NewKafkaPublisher(writer, cfg.TopicMatchCompleted),
		OnSettled:      func() { settled.Inc() },
		OnRollback:     func() { rolledBack.Inc() },
		OnPayoutPaid:   func() { payoutsPaid.Inc() },
		OnPayoutFailed: func() { payoutsFailed.Inc() },
	}

	api := &mhttp.Server{Log: log, Repo: repository, Orch: orch, Cache: readCache}
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.PingContext(r.Context()); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("match-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
