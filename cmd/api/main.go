package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/juhi-kothari/Pranam-app/internal/config"
	"github.com/juhi-kothari/Pranam-app/internal/db"
	"github.com/juhi-kothari/Pranam-app/internal/events"
	"github.com/juhi-kothari/Pranam-app/internal/logging"
	"github.com/juhi-kothari/Pranam-app/internal/server"
	"github.com/juhi-kothari/Pranam-app/internal/storage"
	"github.com/juhi-kothari/Pranam-app/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "pranam-api"

// Set with -ldflags "-X main.buildTime=...".
var buildTime = "unknown"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.MustNew(serviceName, "unknown", true).Fatal("load config", zap.Error(err))
	}
	log := logging.MustNew(serviceName, cfg.AppEnv, cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, cfg.Version, cfg.AppEnv)
	if err != nil {
		return err
	}
	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, cfg.Version, cfg.AppEnv)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMeter(sctx); err != nil {
			log.Warn("meter provider shutdown", zap.Error(err))
		}
		if err := shutdownTracer(sctx); err != nil {
			log.Warn("tracer provider shutdown", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewShopMetrics()
	if err != nil {
		return err
	}

	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}
	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(conn); err != nil {
			return err
		}
		log.Info("auto migration applied")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		defer func() { _ = kp.Close() }()
		publisher = kp
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	deps := server.Deps{
		Config:         cfg,
		DB:             conn,
		Logger:         log,
		Publisher:      publisher,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		BuildTime:      buildTime,
	}
	if cfg.StorageBucket != "" {
		up, err := storage.NewGCSUploader(ctx, cfg.StorageBucket)
		if err != nil {
			return err
		}
		defer func() { _ = up.Close() }()
		deps.Uploader = up
	} else {
		log.Warn("STORAGE_BUCKET not set; chat attachments disabled")
	}
	if cfg.Payment.KeyID == "" {
		log.Warn("RAZORPAY_KEY_ID not set; using mock gateway orders")
	}
	if cfg.Payment.KeySecret == "" {
		log.Warn("RAZORPAY_KEY_SECRET not set; payment verification will reject every signature")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(server.New(deps), serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(sctx)
}
