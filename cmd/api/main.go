package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-artisan-market/internal/alerts"
	"github.com/ariefcatur/go-artisan-market/internal/config"
	"github.com/ariefcatur/go-artisan-market/internal/httpx"
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
	logger, err := logx.New(cfg.ServiceName)
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

	// Kafka producer utk relay alert
	prod := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicAlertPending, logger)

	// Relay outbox pending_alerts
	relay := &alerts.Relay{
		Outbox:   store,
		Producer: prod,
		Service:  cfg.ServiceName,
		Interval: cfg.RelayInterval,
		Log:      logger,
	}
	relay.Start(ctx)

	// Engine & handler
	engine := market.NewEngine(store, logger)
	router := httpx.NewRouter()
	h := &httpx.Handler{
		Engine: engine,
		Reader: store,
		DB:     store,
		Redis:  rdb,
		Log:    logger,
	}
	h.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Infow("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("listen", "error", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Infow("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel() // stop relay loop
	_ = prod.Close()
}
