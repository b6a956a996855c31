package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bjorkvang/internal/api"
	"bjorkvang/internal/booking"
	"bjorkvang/internal/config"
	"bjorkvang/internal/database"
	"bjorkvang/internal/domain"
	"bjorkvang/internal/events"
	"bjorkvang/internal/export"
	"bjorkvang/internal/logging"
	"bjorkvang/internal/mail"
	"bjorkvang/internal/metrics"
	"bjorkvang/internal/models"
	"bjorkvang/internal/repository"
	"bjorkvang/internal/service"
	"bjorkvang/internal/view"
	"bjorkvang/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	yamlv2 "gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := booking.NewStatusEngine(cfg.Booking.Policy, cfg.Booking.FullVenueSpace, cfg.Booking.AutoConfirmHours)
	validator := &booking.Validator{RichForm: cfg.Booking.RichForm}
	normalizer := booking.NewNormalizer(engine, cfg.Booking.DefaultDurationHours)

	repo, outbox, dbCloser, err := initStore(cfg, normalizer, logger)
	if err != nil {
		return err
	}
	if dbCloser != nil {
		defer dbCloser.Close()
	}

	redisClient, cache := initRedis(ctx, cfg, logger)

	sender := initSender(cfg, logger)
	notifyWorker := worker.NewNotifyWorker(outbox, sender, redisClient, worker.BackoffSchedule{}, logger)
	go notifyWorker.Start(ctx)

	metrics.Register()
	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, logger)
	startMetricsServer(cfg, logger)

	builder := &view.Builder{
		BaseURL: cfg.Server.BaseURL,
		From:    cfg.Mail.From,
		ReplyTo: cfg.Mail.ReplyTo,
		BoardTo: cfg.Mail.BoardTo,
		Cc:      cfg.Mail.Cc,
		Bcc:     cfg.Mail.Bcc,
	}

	bookingService := service.NewBookingService(service.Options{
		Repo:           repo,
		NotifyQueue:    notifyWorker,
		EventBus:       eventBus,
		Cache:          cache,
		Builder:        builder,
		Validator:      validator,
		Normalizer:     normalizer,
		Engine:         engine,
		MaxBookingDays: cfg.Booking.MaxBookingDays,
		Logger:         logger,
	})
	spaceService := service.NewSpaceService(cfg.Spaces)
	exporter := export.NewExporter(bookingService, spaceService, cfg.Exports.Path, logger)

	server := api.NewHTTPServer(cfg, bookingService, spaceService, exporter, cache, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.Component(baseLogger, "api-main")

	if err := loadSpaces(cfg, &logger); err != nil {
		return nil, nil, closer, err
	}

	return cfg, &logger, closer, nil
}

// loadSpaces reads the space catalogue from a separate yaml file unless
// the main config already carries one.
func loadSpaces(cfg *config.Config, logger *zerolog.Logger) error {
	if len(cfg.Spaces) > 0 {
		return nil
	}

	spacesPath := os.Getenv("SPACES_PATH")
	if spacesPath == "" {
		spacesPath = "configs/spaces.yaml"
	}

	data, err := os.ReadFile(spacesPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", spacesPath).Msg("no space catalogue configured")
			return nil
		}
		return fmt.Errorf("read %s: %w", spacesPath, err)
	}

	var spacesConfig struct {
		Spaces []models.Space `yaml:"spaces"`
	}
	if err := yamlv2.Unmarshal(data, &spacesConfig); err != nil {
		return fmt.Errorf("parse %s: %w", spacesPath, err)
	}

	if err := config.ValidateSpaces(spacesConfig.Spaces); err != nil {
		return err
	}

	cfg.Spaces = spacesConfig.Spaces
	return nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg.Database.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.Error().Err(err).Msg("creating database directory")
			return err
		}
	}
	if cfg.Database.StateFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.StateFile), 0o755); err != nil {
			logger.Error().Err(err).Msg("creating state directory")
			return err
		}
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("creating export directory")
		return err
	}
	return nil
}

// initStore selects the persistence backend: sqlite when a database
// path is configured, the file-backed memory store otherwise.
func initStore(cfg *config.Config, normalizer *booking.Normalizer, logger *zerolog.Logger) (domain.Repository, domain.OutboxRepository, io.Closer, error) {
	if cfg.Database.Path != "" {
		db, err := database.NewDB(cfg.Database.Path, logger)
		if err != nil {
			logger.Error().Err(err).Msg("database init error")
			return nil, nil, nil, err
		}
		return db, db, db, nil
	}

	store, err := repository.NewMemoryStore(cfg.Database.StateFile, normalizer)
	if err != nil {
		logger.Error().Err(err).Msg("memory store init error")
		return nil, nil, nil, err
	}
	return store, repository.NewMemoryOutbox(), nil, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*goredis.Client, domain.CalendarCache) {
	if cfg.Redis.Address == "" {
		return nil, nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
		return nil, nil
	}

	ttl := time.Duration(cfg.Booking.CalendarCacheTTL) * time.Second
	return client, repository.NewRedisCalendarCache(client, ttl)
}

func initSender(cfg *config.Config, logger *zerolog.Logger) domain.NotificationSender {
	if cfg.Mail.Enabled {
		return mail.NewSMTPSender(cfg.Mail.SMTP, logger)
	}
	return mail.NewNoopSender(logger)
}

func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	countHandler := func(ev *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		metrics.IncBooking(payload.Status)
		return nil
	}

	bus.Subscribe(events.EventBookingReceived, countHandler)
	bus.Subscribe(events.EventBookingConfirmed, countHandler)
	bus.Subscribe(events.EventBookingApproved, countHandler)
	bus.Subscribe(events.EventBookingRejected, countHandler)
	bus.Subscribe(events.EventBookingConflict, func(ev *events.Event) error {
		metrics.IncConflict()
		return nil
	})
}

func startMetricsServer(cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}
