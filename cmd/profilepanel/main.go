package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/profilepanel/internal/adapter/driven/accountapi"
	sqliteadapter "github.com/ericfisherdev/profilepanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/profilepanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/profilepanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/profilepanel/internal/application"
	"github.com/ericfisherdev/profilepanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Install the configured logger as the process default.
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"api_url", cfg.APIURL.String(),
		"request_timeout", cfg.RequestTimeout,
	)

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open database (dual reader/writer with WAL mode) and migrate.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("database ready", "path", db.Path())

	// 5. Credential store, encrypted at rest when a secret key is set.
	key, err := cfg.EncryptionKey()
	if err != nil {
		return fmt.Errorf("deriving encryption key: %w", err)
	}
	credentialStore := sqliteadapter.NewCredentialRepo(db, key)
	if !credentialStore.Encrypted() {
		slog.Warn("PROFILEPANEL_SECRET_KEY not set, session credential is stored unencrypted")
	}

	// 6. Account service client.
	accounts := accountapi.NewClient(cfg.APIURL, cfg.RequestTimeout)

	// 7. Session service.
	sessions := application.NewSessionService(credentialStore, accounts, logger)

	// 8. Register API and GUI routes on one mux.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(sessions, logger))

	loginLimiter := rate.NewLimiter(rate.Every(cfg.LoginInterval), cfg.LoginBurst)
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(sessions, loginLimiter, logger))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.ApplyMiddleware(mux, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 9. Serve until a shutdown signal, then drain.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// 10. Log shutdown complete.
	slog.Info("shutdown complete")
	return nil
}
