package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"churnguard/internal/config"
	"churnguard/internal/domain/service/features"
	"churnguard/internal/domain/service/predict"
	"churnguard/internal/domain/service/risk"
	"churnguard/internal/domain/value"
	"churnguard/internal/infrastructure/artifacts"
	"churnguard/internal/infrastructure/notifier"
	"churnguard/internal/infrastructure/persistence"
	"churnguard/internal/infrastructure/queue"
	"churnguard/internal/infrastructure/sample"
	"churnguard/internal/infrastructure/stats"
	"churnguard/internal/server"
	"churnguard/internal/worker"
	"churnguard/pkg/application/connectors"
	"churnguard/pkg/application/modules"
	"churnguard/pkg/contextx"
	"churnguard/pkg/logx"
	"churnguard/pkg/middlewarex"
)

const appName = "churnguard"

// set via -ldflags "-X main.version=..."
var version = "dev" //nolint:gochecknoglobals

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(log)

	ctx = contextx.WithLogger(ctx, log)

	if err := run(ctx); err != nil {
		log.Error("application failed", logx.Error(err))
		os.Exit(1)
	}

	log.Info("application stopped")
}

func run(ctx context.Context) error { //nolint:funlen
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	bundle, err := artifacts.Load(cfg.Model.ArtifactsDir)
	if err != nil {
		return fmt.Errorf("artifacts.Load: %w", err)
	}

	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	rds := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := rds.Client(ctx)
	defer rds.Close(ctx)

	engineer := features.NewEngineer(bundle.Encoders, bundle.Segments)

	scorer, err := risk.NewScorer(bundle.Threshold)
	if err != nil {
		return fmt.Errorf("risk.NewScorer: %w", err)
	}

	predictService := predict.NewService(engineer, scorer, bundle.Model, bundle.Model.Version).
		WithHistory(persistence.NewPredictionRepository(db)).
		WithStats(stats.NewRedisRecorder(redisClient)).
		WithTrainingMeta(bundle.Hyperparams, bundle.Metrics)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Notifier.Enabled() {
		alertBot, err := notifier.NewTelegramBot(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		predictService.WithAlerter(alertBot)

		g.Go(func() error {
			if err := alertBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("alertBot.Run: %w", err)
			}
			return nil
		})
	}

	queueClient := queue.NewClient(
		cfg.Redis.Address,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DatabaseNumber,
	)
	defer queueClient.Close() //nolint:errcheck

	srv := server.NewServer(server.NewPredictionServer(
		predictService,
		queueClient,
		sample.NewGenerator(cfg.Model.SampleSeed),
		encoderCategories(bundle),
	))

	router := chi.NewRouter()
	router.Use(
		middlewarex.Recovery,
		middlewarex.TraceID,
		middlewarex.Logger,
	)
	srv.RegisterRoutes(router)

	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, httpServer)

	canary := worker.NewCanaryWorker(predictService).WithInterval(cfg.Worker.CanaryInterval)

	modules.ProbeServer{
		Name:          appName,
		Version:       version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
		ReadyChecks:   []func() bool{canary.Healthy},
	}.Run(ctx, g)

	modules.MetricServer{ListenAddress: cfg.HTTP.MetricsListenAddress}.Run(ctx, g)

	modules.AsynqServer{
		RedisAddress:  cfg.Redis.Address,
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(ctx, g,
		modules.AsynqQueues{queue.QueueName: cfg.Worker.QueueConcurrency},
		modules.AsynqHandler{
			Pattern: queue.TypeBatchScore,
			Handle:  worker.NewBatchScorer(predictService).HandleBatchScore,
		},
	)

	g.Go(func() error {
		if err := canary.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("canary.Run: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

func encoderCategories(bundle *artifacts.Bundle) map[string]map[string]int {
	return map[string]map[string]int{
		value.FeatureContract:         bundle.Encoders.Contract,
		value.FeaturePaymentMethod:    bundle.Encoders.PaymentMethod,
		value.FeatureInternetService:  bundle.Encoders.InternetService,
		value.FeaturePaperlessBilling: bundle.Encoders.PaperlessBilling,
	}
}
