package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "ranchbook/internal/adapters/storage/memory"
	pg "ranchbook/internal/adapters/storage/postgres"
	"ranchbook/internal/domain/billing"
	"ranchbook/internal/domain/cows"
	"ranchbook/internal/domain/pastures"
	"ranchbook/internal/domain/ranches"
	"ranchbook/internal/export"
	"ranchbook/internal/middleware"
	"ranchbook/internal/platform/metrics"
	"ranchbook/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: cliente de checkout/portal. nil = billing sin checkout.
	Checkout billing.CheckoutClient
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	var (
		ranchesRepo  ranches.Repository
		cowsRepo     cows.Repository
		pasturesRepo pastures.Repository
		billingRepo  billing.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		ranchesRepo = pg.NewRanchesRepo(db)
		cowsRepo = pg.NewCowsRepo(db)
		pasturesRepo = pg.NewPasturesRepo(db)
		billingRepo = pg.NewBillingRepo(db)
	} else {
		store := mem.NewStore()
		ranchesRepo = mem.NewRanchesRepo(store)
		cowsRepo = mem.NewCowsRepo(store)
		pasturesRepo = mem.NewPasturesRepo(store)
		billingRepo = mem.NewBillingRepo(store)
	}

	// Services por módulo
	ranchesSvc := ranches.NewService(ranchesRepo)
	pasturesSvc := pastures.NewService(pasturesRepo)
	cowsSvc := cows.NewService(cowsRepo, pasturesSvc)
	billingSvc := billing.NewService(billingRepo, cowsSvc, opts.Checkout)

	// Rutas por módulo
	ranches.RegisterRoutes(r, ranchesSvc)
	cows.RegisterRoutes(r, cowsSvc, ranchesSvc, billingSvc)
	pastures.RegisterRoutes(r, pasturesSvc, ranchesSvc)
	billing.RegisterRoutes(r, billingSvc, ranchesSvc)
	export.RegisterRoutes(r, cowsSvc, pasturesSvc, ranchesSvc)

	return r
}
