package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-artisan-market/internal/alerts"
	"github.com/ariefcatur/go-artisan-market/internal/config"
	kafkax "github.com/ariefcatur/go-artisan-market/internal/kafka"
	"github.com/ariefcatur/go-artisan-market/internal/logx"
	"github.com/ariefcatur/go-artisan-market/internal/market"
	"github.com/ariefcatur/go-artisan-market/internal/postgres"
	"github.com/ariefcatur/go-artisan-market/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := logx.New(cfg.ServiceName + "-alerts")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalw("db connect", "error", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service: dedup + materialisasi alert
	svc := &alerts.Service{
		Writer:  store,
		Markers: &alerts.RedisMarkers{R: rdb},
		Log:     logger,
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AlertGroup, market.TopicAlertPending, cfg.AlertWorkers, logger)

	go func() {
		logger.Infow("alert consumer started",
			"group", cfg.AlertGroup, "topic", market.TopicAlertPending, "workers", cfg.AlertWorkers)
		if err := cons.Start(ctx, svc.HandlePending); err != nil {
			logger.Errorw("consumer exit", "error", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Infow("shutting down consumer")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
