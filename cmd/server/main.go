package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/broker"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/config"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/repository"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/router"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/service"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger. dev: pretty, prod: JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.Env != "production")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	tp, err := infra.InitTracer("pos-stock", cfg.JaegerEndpoint)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Kafka is optional; without brokers the ledger skips event publishing.
	var (
		producer  *broker.Producer
		brokerCB  *infra.CircuitBreaker
		eventos   service.EventosStock
		alertasEv worker.AlertaPublisher
	)
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer = broker.NewProducer(brokers, cfg.KafkaTopicStock)
		brokerCB = infra.NewCircuitBreaker("kafka", infra.DefaultCBConfig())
		publisher := broker.NewEventPublisher(producer, brokerCB)
		eventos = publisher
		alertasEv = publisher
	}

	dispatcher := worker.NewDispatcher(rdb)
	ledger := service.NewStockLedger(
		repository.NewMovimientoStockRepository(db),
		repository.NewVarianteRepository(db),
		eventos,
		dispatcher,
	)

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	handlers := map[string]worker.Handler{}
	var emails worker.AlertaEnqueuer
	if mailer := infra.NewMailer(cfg); mailer != nil {
		handlers[worker.JobAlertaEmail] = worker.NewEmailWorker(mailer, ledger)
		emails = dispatcher
	}
	handlers[worker.JobVerificarStock] = worker.NewStockAlertWorker(ledger, alertasEv, emails)

	workers := worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	worker.StartRequeueCron(ctx, worker.RequeueCronConfig{
		RDB:   rdb,
		CB:    brokerCB,
		Queue: worker.QueueStock,
	})

	r := router.New(cfg, router.Deps{DB: db, Redis: rdb, Ledger: ledger, BrokerCB: brokerCB})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("stock ledger listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	workers.Wait()

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Warn().Err(err).Msg("kafka producer close")
		}
	}
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}
	log.Info().Msg("server exited")
}
