package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/radieske/match-settlement-platform/internal/shared/config"
	"github.com/radieske/match-settlement-platform/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	matches := rp(cfg.MatchServiceURL)
	bets := rp(cfg.BetServiceURL)
	wallet := rp(cfg.WalletServiceURL)
	teams := rp(cfg.TeamServiceURL)

	mux := http.NewServeMux()

	// matches (ex.: /api/matches/* -> match-service)
	mux.Handle("/api/matches", http.StripPrefix("/api", matches))
	mux.Handle("/api/matches/", http.StripPrefix("/api", matches))

	// bets (ex.: /api/bets/* -> bet-service)
	mux.Handle("/api/bets", http.StripPrefix("/api", bets))
	mux.Handle("/api/bets/", http.StripPrefix("/api", bets))

	// wallet (ex.: /api/wallet/* -> wallet-service)
	mux.Handle("/api/wallet", http.StripPrefix("/api", wallet))
	mux.Handle("/api/wallet/", http.StripPrefix("/api", wallet))

	// teams e atletas -> team-service
	mux.Handle("/api/teams", http.StripPrefix("/api", teams))
	mux.Handle("/api/teams/", http.StripPrefix("/api", teams))
	mux.Handle("/api/athletes/", http.StripPrefix("/api", teams))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
