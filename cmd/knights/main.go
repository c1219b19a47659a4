package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/knights/internal/config"
	"github.com/totegamma/knights/internal/infra/providers"
	"github.com/totegamma/knights/internal/infra/telemetry"
	"github.com/totegamma/knights/internal/present/rest"
	knightsmw "github.com/totegamma/knights/internal/present/rest/middleware"
	"github.com/totegamma/knights/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(conf.Server.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, conf.Trace)
	if err != nil {
		slog.Error("failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			slog.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	db, err := providers.NewDatabase(conf.Database)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = providers.MigrateDatabase(db)
	if err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	snapshots, err := providers.NewSnapshotCache(conf.Cache)
	if err != nil {
		slog.Error("failed to set up snapshot cache", slog.String("error", err.Error()))
		os.Exit(1)
	}

	knightRepo := providers.NewKnightRepository(db)
	knightUsecase := usecase.NewKnightUsecase(knightRepo, snapshots)
	handler := rest.NewHandler(knightUsecase)

	e := echo.New()
	e.HideBanner = true
	e.Use(otelecho.Middleware(conf.Trace.ServiceName))
	e.Use(knightsmw.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler.RegisterRoutes(e, e.Group("/api"))

	go func() {
		slog.Info(
			"server starting",
			slog.String("addr", conf.Server.Addr),
			slog.String("cache", conf.Cache.Backend),
		)
		if err := e.Start(conf.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", slog.String("error", err.Error()))
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
