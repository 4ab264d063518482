package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tkartsan/waletapp/internal/app/service"
	"github.com/tkartsan/waletapp/internal/infrastructure/configloader"
	"github.com/tkartsan/waletapp/internal/infrastructure/httpclient"
	"github.com/tkartsan/waletapp/internal/pkg/logger"
	"github.com/tkartsan/waletapp/internal/pkg/utils"
)

// One-shot aggregation: print the priced portfolio for a single address.
func main() {
	configPath := flag.String("config", "config/config.yml", "path to the YAML configuration file")
	address := flag.String("address", "", "wallet address to aggregate")
	flag.Parse()

	if *address == "" {
		fmt.Fprintln(os.Stderr, "usage: aggregate -address 0x... [-config config/config.yml]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := configloader.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", "path", *configPath, "error", err)
	}

	logger.Init(cfg.Logging.Level)
	defer logger.Sync()
	log := logger.NewSlogAdapter()

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	portfolio, err := aggregator.Aggregate(ctx, *address)
	if err != nil {
		logger.Fatal("Aggregation failed", "address", *address, "error", err)
	}

	fmt.Printf("Portfolio for %s\n\n", portfolio.Address)
	fmt.Printf("%-24s %-8s %16s %16s %16s\n", "NAME", "SYMBOL", "QUANTITY", "PRICE (USD)", "VALUE (USD)")
	for _, asset := range portfolio.Assets {
		fmt.Printf("%-24s %-8s %16s %16s %16s\n",
			asset.Name,
			asset.Symbol,
			utils.FormatDecimal(asset.Quantity, utils.QuantityDisplayDigits),
			utils.FormatDecimal(asset.PriceUSD, utils.PriceDisplayDigits),
			utils.FormatDecimal(asset.ValueUSD, utils.ValueDisplayDigits),
		)
	}
	fmt.Printf("\nTotal: %s USD\n", utils.FormatDecimal(portfolio.TotalValueUSD, utils.ValueDisplayDigits))
}
