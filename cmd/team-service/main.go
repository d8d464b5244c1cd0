package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	sharedcache "github.com/radieske/match-settlement-platform/internal/shared/cache"
	"github.com/radieske/match-settlement-platform/internal/shared/config"
	"github.com/radieske/match-settlement-platform/internal/shared/db"
	"github.com/radieske/match-settlement-platform/internal/shared/logger"
	"github.com/radieske/match-settlement-platform/internal/shared/metrics"
	tcache "github.com/radieske/match-settlement-platform/internal/team-service/cache"
	thttp "github.com/radieske/match-settlement-platform/internal/team-service/http"
	trepo "github.com/radieske/match-settlement-platform/internal/team-service/repo"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("team-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	api := &thttp.Server{
		Log:   log,
		Repo:  trepo.NewPostgres(pg),
		Cache: tcache.New(rdb, 60*time.Second),
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	defer metricsSrv.Close()
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	apiSrv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: api.Router()}
	log.Info("team-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
