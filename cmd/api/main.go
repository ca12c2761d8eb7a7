// Package main is the entry point for the Fleetbook API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here; the store handle and the reconcile
// ticker are owned by this process, not by individual components.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetbook/internal/config"
	"fleetbook/internal/handler"
	"fleetbook/internal/middleware"
	"fleetbook/internal/repo"
	"fleetbook/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before the real one is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Services ---------------------------------------------------------
	locations := repo.NewLocationRepo(pool)
	vehicles := repo.NewVehicleRepo(pool)
	trips := repo.NewTripRepo(pool)
	store := repo.NewStore(pool)

	bookings := service.NewBookingService(locations, vehicles, trips, store)
	fleet := service.NewFleetService(locations, vehicles, trips)
	reconciler := service.NewReconcilerService(store)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", handler.NewServer(bookings, fleet, reconciler).Routes())

	// --- Reconcile ticker -------------------------------------------------
	// Trip statuses only move forward with time; something has to notice.
	// In a multi-instance deployment an external scheduler calls POST
	// /reconcile instead and RECONCILE_INTERVAL is set to 0.
	tickerCtx, stopTicker := context.WithCancel(context.Background())
	defer stopTicker()
	if cfg.ReconcileInterval > 0 {
		go runReconcileLoop(tickerCtx, reconciler, cfg.ReconcileInterval)
	}

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	stopTicker()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runReconcileLoop advances trip statuses on a fixed cadence until ctx is
// cancelled. Failures are logged and the next tick tries again — the pass is
// idempotent, so a missed tick never loses an update.
func runReconcileLoop(ctx context.Context, reconciler *service.ReconcilerService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := reconciler.Reconcile(ctx)
			if err != nil {
				slog.Error("reconcile pass failed", "error", err)
				continue
			}
			if report.Started > 0 || report.Completed > 0 {
				slog.Info("reconcile pass",
					"started", report.Started,
					"completed", report.Completed,
				)
			}
		}
	}
}
