package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/internal/config"
	"ProductCatalog/pkg/kit"
)

func main() {
	service := "auth"

	cfg, err := config.Load(":8081")
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateJWTSecret(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	store, db, err := openUserStore(cfg, log)
	if err != nil {
		log.Fatal("open user store failed", zap.Error(err))
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &auth.Server{
		Log:      log,
		Store:    store,
		JWT:      auth.NewTokenMaker(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL,
	}

	h := auth.NewHandler(s, auth.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(cfg.HTTPAddr, h, log, cfg.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openUserStore picks Postgres when DATABASE_URL is set, memory otherwise.
func openUserStore(cfg config.Config, log *zap.Logger) (auth.UserStore, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory user store")
		return auth.NewMemStore(), nil, nil
	}

	db, err := auth.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := auth.NewPostgresStore(db)
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	log.Info("using postgres user store")
	return store, db, nil
}
