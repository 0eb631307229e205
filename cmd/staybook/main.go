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

	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/service"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongostore "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	outboxworker "staybook/internal/infra/outbox"
	pricingconfig "staybook/internal/infra/pricing"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/submission"
	"staybook/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(os.Getenv("APP_ENV")).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, app.health, app.metrics, app.handlers)

	go func() {
		if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting",
		"addr", cfg.HTTPAddr,
		"storage", cfg.StorageMode,
		"submission", cfg.SubmissionMode,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type outboxStore interface {
	appoutbox.Outbox
	appoutbox.Source
}

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	metrics  *obs.Metrics
	worker   *outboxworker.Worker
	closers  []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{health: obs.HealthHandlers{Checks: map[string]obs.Check{}}}

	policy := pricingconfig.LoadPolicyFile(cfg.PricingPolicyFile, logger)
	logger.Info("pricing policy loaded",
		"service_charge_percent", policy.Pricing.ServiceChargePercent,
		"default_lead_time", policy.DefaultLeadTime,
	)

	var (
		listingsRepo domainlistings.Repository
		idempotency  middleware.IdempotencyStore
		box          outboxStore
	)
	switch cfg.StorageMode {
	case config.ModeMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		app.health.Checks["mongo"] = client.Ping
		listingsRepo = mongostore.NewListingRepository(client.DB)
		if idempotency, err = mongostore.NewIdempotencyStore(ctx, client.DB); err != nil {
			return nil, err
		}
		if box, err = outboxworker.NewStore(ctx, client.DB); err != nil {
			return nil, err
		}
	default:
		listingsRepo = memory.NewListingRepository()
		idempotency = memory.NewIdempotencyStore()
		box = memory.NewOutbox()
	}

	n, err := memory.LoadListingFixtures(ctx, listingsRepo, cfg.ListingsFixtures, logger)
	if err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", cfg.ListingsFixtures)
	}
	logger.Info("listing fixtures loaded", "count", n, "path", cfg.ListingsFixtures)

	submitter := &submission.ReservingSubmitter{
		Listings:            listingsRepo,
		TopicPrefix:         cfg.KafkaTopicPrefix,
		PaymentRedirectBase: cfg.PaymentRedirectBase,
		Logger:              logger,
		Outbox:              box,
	}
	var producer outboxworker.Producer = outboxworker.LogProducer{Logger: logger}
	if cfg.SubmissionMode == config.ModeKafka {
		kp, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig("staybook"))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return kp.Close() })
		submitter.Publisher = kp
		producer = kp
	}

	var (
		telemetry policies.Telemetry = policies.NopTelemetry{}
		recorder  middleware.Recorder
	)
	if cfg.MetricsEnabled {
		app.metrics = obs.NewMetrics("staybook")
		telemetry = app.metrics
		recorder = app.metrics
	}

	buses := service.Build(service.Options{
		Listings:       listingsRepo,
		Wizards:        memory.NewWizardRepository(),
		Validator:      domainbooking.NewValidator(policy.DefaultLeadTime),
		Policy:         policies.StaticPricingPolicy{Policy: policy.Pricing},
		Clock:          policies.SystemClock{},
		IDs:            policies.UUIDGenerator{},
		Outbox:         box,
		Submitter:      submitter,
		Telemetry:      telemetry,
		Idempotency:    idempotency,
		SubmitTimeout:  cfg.SubmitTimeout,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Messages:       validation.NewStructValidator(),
		Recorder:       recorder,
	})

	logger.Debug("bus handlers registered", "keys", buses.Keys)

	app.handlers = ginserver.Handlers{
		Availability: ginserver.AvailabilityHandler{Queries: buses.Queries},
		Quote:        ginserver.QuoteHandler{Queries: buses.Queries},
		Wizard:       ginserver.WizardHandler{Commands: buses.Commands, Queries: buses.Queries},
	}
	app.worker = &outboxworker.Worker{
		Source:      box,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	return app, nil
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Error("shutdown step failed", "error", err)
		}
	}
}
