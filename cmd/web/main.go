package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jonboulle/clockwork"
	"github.com/slovakpatriot/arena/internal/config"
	"github.com/slovakpatriot/arena/internal/db"
	"github.com/slovakpatriot/arena/internal/middleware"
	"github.com/slovakpatriot/arena/internal/realtime"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsPath); err != nil {
		return err
	}

	providers := middleware.InitAuth(cfg)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	hub := realtime.NewHub(cfg.CORSAllowedOrigins)
	g.Go(func() error { return hub.Run(ctx) })

	var publisher realtime.Publisher = hub
	if cfg.NATSURL != "" {
		nc, err := realtime.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer nc.Close()
		publisher = realtime.NewNATSPublisher(nc)
		g.Go(func() error { return realtime.Relay(ctx, nc, hub) })
	}

	app := newApplication(database, cfg, sessionManager, hub, publisher, clockwork.NewRealClock(), providers)

	if cfg.CleanupInterval > 0 {
		g.Go(func() error { return app.eventService.RunCleanup(ctx, cfg.CleanupInterval, cfg.EventRetention) })
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Addr, "providers", providers, "nats", cfg.NATSURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
