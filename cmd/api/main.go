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

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/retailboard/internal/config"
	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/database"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast/additive"
	retailHttp "github.com/MrJamesThe3rd/retailboard/internal/http"
	datasetsHandler "github.com/MrJamesThe3rd/retailboard/internal/http/datasets"
	edaHandler "github.com/MrJamesThe3rd/retailboard/internal/http/eda"
	forecastHandler "github.com/MrJamesThe3rd/retailboard/internal/http/forecast"
	segmentsHandler "github.com/MrJamesThe3rd/retailboard/internal/http/segments"
	uploadsHandler "github.com/MrJamesThe3rd/retailboard/internal/http/uploads"
	"github.com/MrJamesThe3rd/retailboard/internal/segment"
	"github.com/MrJamesThe3rd/retailboard/internal/session"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
	uploadStore "github.com/MrJamesThe3rd/retailboard/internal/upload/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(cfg.NewLogger())

	driver, dsn, err := cfg.DataSource()
	if err != nil {
		slog.Error("invalid database config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(driver, dsn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	if cfg.Session.Secret == "change-me" {
		slog.Warn("SESSION_SECRET is the default; set it before exposing the server")
	}

	var (
		uploadService   = upload.NewService(uploadStore.New(db, driver), cfg.Upload.MaxBytes)
		forecastService = forecast.NewService(additive.New(additive.DefaultConfig()), cfg.Forecast.HorizonDays)
		segmentEngine   = segment.NewEngine(cfg.Segment.Clusters, cfg.Segment.Seed)
		dashService     = dashboard.NewService(forecastService, segmentEngine)
		sessions        = session.NewManager(
			session.NewStore(cfg.Session.TTL),
			session.NewTokens(cfg.Session.Secret, cfg.Session.TTL),
			cfg.Session.SecureCookie,
		)
	)

	var (
		datasetsH = datasetsHandler.NewHandler(uploadService, sessions, dashService, cfg.Upload.MaxBytes)
		edaH      = edaHandler.NewHandler(sessions, dashService)
		forecastH = forecastHandler.NewHandler(sessions, dashService)
		segmentsH = segmentsHandler.NewHandler(sessions, dashService)
		uploadsH  = uploadsHandler.NewHandler(uploadService)
	)

	router := retailHttp.New(retailHttp.Options{
		CORSOrigins:      cfg.Server.CORSOrigins,
		UploadsPerMinute: cfg.Upload.RatePerMinute,
		Timeout:          cfg.Server.Timeout,
	}, sessions, datasetsH, edaH, forecastH, segmentsH, uploadsH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "db", driver)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
