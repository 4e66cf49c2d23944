package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"ranchbook/internal/adapters/auth/gotrue"
	"ranchbook/internal/adapters/billing/functions"
	pg "ranchbook/internal/adapters/storage/postgres"
	"ranchbook/internal/domain/billing"
	"ranchbook/internal/platform/config"
	"ranchbook/internal/platform/logger"
	"ranchbook/internal/ports/auth"
	"ranchbook/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid config", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	opts := router.Options{
		AuthVerifier: buildVerifier(cfg, log),
		Checkout:     buildCheckout(cfg, log),
	}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres unavailable", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		opts.DB = db
		log.Info("storage: postgres", nil)
	} else {
		log.Info("storage: in-memory (set DB_DSN for postgres)", nil)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second, // el export de planillas puede tardar
	}

	log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Environment})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// buildVerifier elige cómo verificar tokens: secret HS256 local si está,
// si no el endpoint /user del servicio; sin nada queda modo dev (headers
// X-Debug-*), solo aceptable fuera de producción.
func buildVerifier(cfg *config.Config, log logger.Logger) auth.AuthVerifier {
	if cfg.AuthJWTSecret != "" {
		log.Info("auth: local jwt verifier", nil)
		return gotrue.NewVerifier(cfg.AuthJWTSecret)
	}
	if cfg.AuthBaseURL != "" {
		client, err := gotrue.NewClient(gotrue.Config{
			BaseURL: cfg.AuthBaseURL,
			APIKey:  cfg.AuthAPIKey,
		})
		if err != nil {
			log.Error("auth client misconfigured", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		log.Info("auth: remote verifier", map[string]any{"base_url": cfg.AuthBaseURL})
		return client
	}
	log.Warn("auth: dev mode, no verifier configured", nil)
	return nil
}

func buildCheckout(cfg *config.Config, log logger.Logger) billing.CheckoutClient {
	if cfg.FunctionsBaseURL == "" {
		log.Warn("billing: checkout functions not configured", nil)
		return nil
	}
	client, err := functions.NewClient(functions.Config{
		BaseURL: cfg.FunctionsBaseURL,
		APIKey:  cfg.FunctionsAPIKey,
	})
	if err != nil {
		log.Error("billing functions misconfigured", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	return client
}
