package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tkartsan/waletapp/internal/app/service"
	"github.com/tkartsan/waletapp/internal/infrastructure/configloader"
	"github.com/tkartsan/waletapp/internal/infrastructure/httpclient"
	"github.com/tkartsan/waletapp/internal/infrastructure/restapi"
	"github.com/tkartsan/waletapp/internal/pkg/logger"
	"github.com/tkartsan/waletapp/internal/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to the YAML configuration file")
	flag.Parse()

	// .env is optional; the environment still overrides the file-based key.
	_ = godotenv.Load()

	cfg, err := configloader.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", "path", *configPath, "error", err)
	}

	logger.Init(cfg.Logging.Level)
	defer logger.Sync()
	log := logger.NewSlogAdapter()

	metrics.MustRegisterMetrics()

	indexerClient, err := httpclient.NewIndexerClient(cfg.Indexer, logger.Zap())
	if err != nil {
		logger.Fatal("Failed to initialize indexer client", "error", err)
	}
	coinGeckoClient := httpclient.NewCoinGeckoClient(cfg.CoinGecko, logger.Zap())

	priceService := service.NewTokenPriceService(
		coinGeckoClient,
		indexerClient,
		log,
		time.Duration(cfg.Aggregator.PriceCacheTTLMinutes)*time.Minute,
	)
	assetFilter := service.NewAssetFilter(cfg.Aggregator.ExcludedNamePrefixes, cfg.Aggregator.MinValueUSD)
	aggregator := service.NewAggregatorService(
		indexerClient,
		priceService,
		assetFilter,
		log,
		cfg.Chain,
		cfg.Aggregator.MaxConcurrentPriceFetches,
	)

	portfolioHandler := restapi.NewPortfolioHandler(aggregator, service.NewRunTracker(), log)
	router := restapi.SetupRouter(portfolioHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting portfolio server", "port", cfg.Server.Port, "chain", cfg.Indexer.Chain)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
