package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mathematico-payments/internal/cache"
	"mathematico-payments/internal/client"
	"mathematico-payments/internal/config"
	"mathematico-payments/internal/repository"
	"mathematico-payments/internal/server"
	"mathematico-payments/internal/service"
)

const dedupeTTL = 24 * time.Hour

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}

	setupLogger(cfg)

	db := client.InitMysqlClient(cfg.DatabaseURL)
	razorpayClient := client.NewRazorpayClient(&cfg.Razorpay)

	var catalogRepo repository.CatalogRepository
	if cfg.CatalogSource == "fallback" {
		catalogRepo = repository.NewStaticCatalogRepository()
		log.Warn().Msg("using static fallback catalog")
	} else {
		catalogRepo = repository.NewCatalogRepository(db)
		if cfg.Environment.Name == "development" {
			if err := catalogRepo.Seed(context.Background()); err != nil {
				log.Fatal().Err(err).Msg("seed catalog")
			}
		}
	}

	intentRepo := repository.NewPaymentIntentRepository(db)
	ledgerRepo := repository.NewProcessedEventRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	var deduper cache.Deduper
	if cfg.RedisAddr != "" {
		deduper = cache.NewRedisDeduper(cfg.RedisAddr, dedupeTTL)
	} else {
		deduper = cache.NewMemoryDeduper(dedupeTTL)
	}

	paymentService := service.NewPaymentService(
		db,
		razorpayClient,
		&cfg.Razorpay,
		catalogRepo,
		intentRepo,
		ledgerRepo,
		enrollmentRepo,
		deduper,
		service.NewLogNotifier(),
	)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo)

	srv := server.NewServer(cfg, paymentService, enrollmentService)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}
