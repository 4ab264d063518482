package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// APIKeyEnvVar overrides the indexer API key from the environment when set.
const APIKeyEnvVar = "MORALIS_API_KEY"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// IndexerConfig holds the balance/price indexing service configuration.
type IndexerConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	Chain                string  `yaml:"chain"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	MaxRequestsPerSecond float64 `yaml:"maxRequestsPerSecond"`
}

// CoinGeckoConfig holds the native coin price oracle configuration.
type CoinGeckoConfig struct {
	BaseURL              string `yaml:"baseURL"`
	NativeCoinID         string `yaml:"nativeCoinID"`
	VsCurrency           string `yaml:"vsCurrency"`
	ClientTimeoutSeconds int    `yaml:"clientTimeoutSeconds"`
}

// ChainConfig describes the single configured chain's native asset.
type ChainConfig struct {
	NativeName     string `yaml:"nativeName"`
	NativeSymbol   string `yaml:"nativeSymbol"`
	NativeDecimals int    `yaml:"nativeDecimals"`
}

// AggregatorConfig holds the aggregation pipeline tunables.
type AggregatorConfig struct {
	MinValueUSD               float64  `yaml:"minValueUSD"`
	ExcludedNamePrefixes      []string `yaml:"excludedNamePrefixes"`
	MaxConcurrentPriceFetches int      `yaml:"maxConcurrentPriceFetches"`
	PriceCacheTTLMinutes      int      `yaml:"priceCacheTTLMinutes"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Indexer    IndexerConfig    `yaml:"indexer"`
	CoinGecko  CoinGeckoConfig  `yaml:"coingecko"`
	Chain      ChainConfig      `yaml:"chain"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
}

// Load reads the YAML configuration file from the given path, applies the
// environment override for the API key and fills in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if v := os.Getenv(APIKeyEnvVar); v != "" {
		cfg.Indexer.APIKey = v
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Indexer.BaseURL == "" {
		cfg.Indexer.BaseURL = "https://deep-index.moralis.io/api/v2.2"
	}
	if cfg.Indexer.Chain == "" {
		cfg.Indexer.Chain = "eth"
	}
	if cfg.Indexer.RequestTimeoutMillis <= 0 {
		cfg.Indexer.RequestTimeoutMillis = 10000
	}
	if cfg.Indexer.MaxRequestsPerSecond <= 0 {
		cfg.Indexer.MaxRequestsPerSecond = 5
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGecko.NativeCoinID == "" {
		cfg.CoinGecko.NativeCoinID = "ethereum"
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = "usd"
	}
	if cfg.CoinGecko.ClientTimeoutSeconds <= 0 {
		cfg.CoinGecko.ClientTimeoutSeconds = 10
	}

	if cfg.Chain.NativeName == "" {
		cfg.Chain.NativeName = "Ethereum"
	}
	if cfg.Chain.NativeSymbol == "" {
		cfg.Chain.NativeSymbol = "ETH"
	}
	if cfg.Chain.NativeDecimals <= 0 {
		cfg.Chain.NativeDecimals = 18
	}

	if cfg.Aggregator.MinValueUSD <= 0 {
		cfg.Aggregator.MinValueUSD = 0.00002
	}
	if cfg.Aggregator.ExcludedNamePrefixes == nil {
		cfg.Aggregator.ExcludedNamePrefixes = []string{"YT ", "PT "}
	}
	if cfg.Aggregator.MaxConcurrentPriceFetches <= 0 {
		cfg.Aggregator.MaxConcurrentPriceFetches = 10
	}
	// PriceCacheTTLMinutes stays 0 unless configured: каждый запуск делает
	// ровно одну попытку получения цены на актив.

	return &cfg, nil
}
