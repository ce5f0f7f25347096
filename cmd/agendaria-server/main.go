package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"

	"agendaria/backend/internal/auth"
	"agendaria/backend/internal/calendar"
	calsync "agendaria/backend/internal/calendar/sync"
	"agendaria/backend/internal/config"
	"agendaria/backend/internal/service/accounts"
	"agendaria/backend/internal/service/availability"
	"agendaria/backend/internal/service/scheduling"
	"agendaria/backend/internal/store/postgres"
	httpTransport "agendaria/backend/internal/transport/http"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "agendaria-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "agendaria-server"),
	)
	slog.SetDefault(log)

	log.Info("starting", slog.String("http_addr", cfg.HTTPAddr), slog.String("log_level", cfg.LogLevel))

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	bookingRepo := postgres.NewBookingRepo(db)
	availabilityRepo := postgres.NewAvailabilityRepo(db)
	directoryRepo := postgres.NewDirectoryRepo(db)

	queueClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Warn("queue client close failed", slog.Any("err", err))
		}
	}()
	enqueuer := calsync.NewEnqueuer(queueClient)

	googleSink := calendar.NewGoogleSink(calendar.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, directoryRepo, log)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	schedulingSvc := scheduling.NewService(bookingRepo, availabilityRepo, directoryRepo, enqueuer, log)
	availabilitySvc := availability.NewService(availabilityRepo, directoryRepo, log)
	accountsSvc := accounts.NewService(directoryRepo, tokens, log)

	syncWorker := calsync.NewWorker(googleSink, bookingRepo, directoryRepo, log)
	syncServer := calsync.NewServer(cfg.RedisAddr, log)
	mux := asynq.NewServeMux()
	syncWorker.Register(mux)

	server := httpTransport.NewServer(httpTransport.Deps{
		Accounts:     accountsSvc,
		Scheduling:   schedulingSvc,
		Availability: availabilitySvc,
		Calendar:     googleSink,
		Tokens:       tokens,
		Log:          log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		errCh <- syncServer.Run(mux)
	}()
	go func() {
		errCh <- server.Start(cfg.HTTPAddr)
	}()

	log.Info("server started", slog.String("http_addr", cfg.HTTPAddr), slog.String("redis_addr", cfg.RedisAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped with error", slog.Any("err", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", slog.Any("err", err))
	}
	syncServer.Shutdown()
	log.Info("stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
