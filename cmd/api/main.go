package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/lightfoot-dev/idbroker/internal/config"
	"github.com/lightfoot-dev/idbroker/internal/httpapi"
	"github.com/lightfoot-dev/idbroker/internal/identity"
	"github.com/lightfoot-dev/idbroker/internal/idp"
	"github.com/lightfoot-dev/idbroker/internal/migrations"
	"github.com/lightfoot-dev/idbroker/internal/obs"
	"github.com/lightfoot-dev/idbroker/internal/samlmeta"
	"github.com/lightfoot-dev/idbroker/internal/token"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)
	logger := obs.Logger()
	defer obs.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.DatabaseDSN == "" {
		logger.Fatal("IDBROKER_PG_DSN is required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := migrations.Up(db); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	users, err := identity.NewService(identity.NewPGUserStore(db))
	if err != nil {
		logger.Fatal("build identity service", zap.Error(err))
	}
	tokens, err := token.NewService(token.NewPGStore(db), cfg.RefreshTokenSalt,
		token.WithAccessTTL(cfg.AccessTTL), token.WithRefreshTTL(cfg.RefreshTTL))
	if err != nil {
		logger.Fatal("build token service", zap.Error(err))
	}

	discoverCtx, cancelDiscover := context.WithTimeout(context.Background(), 30*time.Second)
	registry, err := idp.NewRegistry(discoverCtx, cfg.Providers)
	cancelDiscover()
	if err != nil {
		logger.Fatal("discover upstream realms", zap.Error(err))
	}

	var saml *samlmeta.Service
	if cfg.SAMLMetadataURL != "" {
		saml = samlmeta.NewService(cfg.SAMLMetadataURL)
	}

	api := httpapi.New(httpapi.Deps{
		Users:   users,
		Tokens:  tokens,
		IdP:     registry,
		SAML:    saml,
		DB:      db,
		Cfg:     cfg,
		Version: version,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting idbroker-api", zap.String("version", version), zap.String("addr", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	logger.Info("stopped")
}
