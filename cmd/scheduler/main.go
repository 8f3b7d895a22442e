package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/api"
	"github.com/diegoclair/checkin-scheduler/internal/config"
	"github.com/diegoclair/checkin-scheduler/internal/database"
	"github.com/diegoclair/checkin-scheduler/internal/domain/service"
	"github.com/diegoclair/checkin-scheduler/internal/logger"
	"github.com/diegoclair/checkin-scheduler/internal/metrics"
	"github.com/diegoclair/checkin-scheduler/internal/notifier"
	"github.com/diegoclair/checkin-scheduler/internal/rules"
	"github.com/diegoclair/checkin-scheduler/migrator/sqlite"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if envErr != nil {
		log.Debug().Msg(".env file not found, using process environment")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	table, err := rules.Load(cfg.RulesFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.RulesFile).Msg("failed to load rules")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Msg("running migrations")
	if err := sqlite.Migrate(db.DB()); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	n, err := notifier.New(cfg.NotifierChannel, cfg.BotToken(), cfg.SendRatePerSec, cfg.SendTimeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build notifier")
	}
	if n == nil {
		log.Warn().Str("channel", cfg.NotifierChannel).Msg("no notifier configured, firings will be skipped")
	}
	if cfg.RecipientID == "" {
		log.Warn().Msg("RECIPIENT_ID not set, firings will be skipped")
	}

	var sink metrics.Sink = metrics.NewNoopSink()
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		sink = metrics.NewPrometheusSink(reg, log)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	instance := service.NewInstance(service.SchedulerConfig{
		PollInterval: cfg.PollInterval,
		Location:     cfg.Location,
		RecipientID:  cfg.RecipientID,
		ChannelTag:   cfg.ChannelTag,
		SendTimeout:  cfg.SendTimeout,
	}, table, database.NewInstance(db), n, sink, log)

	instance.Scheduler.Start()

	handler := api.NewHandler(instance.Scheduler, log).
		WithHealthChecker(db.DB()).
		WithHistory(instance.Recorder, cfg.RecipientID, cfg.ChannelTag)
	if metricsHandler != nil {
		handler = handler.WithMetrics(metricsHandler)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	instance.Scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
