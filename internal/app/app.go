// Package app wires configuration, clients, storage and services into
// a runnable application core.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hklens/hklens/internal/clients/sina"
	"github.com/hklens/hklens/internal/clients/translate"
	"github.com/hklens/hklens/internal/clients/yahoo"
	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/interfaces"
	"github.com/hklens/hklens/internal/services/market"
	"github.com/hklens/hklens/internal/services/quote"
	"github.com/hklens/hklens/internal/services/watchlist"
	"github.com/hklens/hklens/internal/storage/tickerfs"
)

// App holds all initialized clients and services. It is the shared core
// behind cmd/hklens-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            interfaces.TickerStore
	MarketService    interfaces.MarketService
	QuoteService     interfaces.QuoteNameService
	WatchlistService interfaces.WatchlistService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, storage, clients and
// services. configPath may be empty, in which case HKLENS_CONFIG and
// then the binary directory are checked.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("HKLENS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "hklens.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/hklens.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := tickerfs.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	sinaClient := sina.NewClient(
		sina.WithQuoteURL(config.Clients.Sina.QuoteURL),
		sina.WithSuggestURL(config.Clients.Sina.SuggestURL),
		sina.WithRateLimit(config.Clients.Sina.RateLimit),
		sina.WithTimeout(config.Clients.Sina.GetTimeout()),
		sina.WithLogger(logger),
	)

	translator := translate.NewClient(
		translate.WithBaseURL(config.Clients.Translate.BaseURL),
		translate.WithTarget(config.Clients.Translate.Target),
		translate.WithTimeout(config.Clients.Translate.GetTimeout()),
		translate.WithLogger(logger),
	)

	quoteService := quote.NewService(sinaClient, logger)
	marketService := market.NewService(yahooClient, quoteService, translator, logger)
	watchlistService := watchlist.NewService(store, quoteService, logger)

	logger.Info().
		Str("version", common.Version).
		Str("environment", config.Environment).
		Str("data_path", config.Storage.Path).
		Msg("Application initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		Store:            store,
		MarketService:    marketService,
		QuoteService:     quoteService,
		WatchlistService: watchlistService,
		StartupTime:      time.Now(),
	}, nil
}
