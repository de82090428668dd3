package interfaces

import (
	"context"

	"github.com/hklens/hklens/internal/models"
)

// StockAnalysis is the full deep-analysis payload for one ticker.
type StockAnalysis struct {
	Ticker    string                  `json:"ticker"`
	Symbol    string                  `json:"symbol"`
	Series    *models.IndicatorSeries `json:"series"`
	Narrative *models.Narrative       `json:"narrative,omitempty"`
	Info      models.Info             `json:"info,omitempty"`
	Warning   string                  `json:"warning,omitempty"`
}

// MarketService is the provider-facing pipeline boundary. Provider
// failures surface as empty results, never as errors or panics; the only
// errors returned are context cancellations.
type MarketService interface {
	// History fetches OHLCV bars; nil series means no data
	History(ctx context.Context, ticker string, period models.Period, interval models.Interval) *models.Series

	// Info fetches descriptive metadata; empty map on failure
	Info(ctx context.Context, ticker string) models.Info

	// Holders fetches shareholder breakdowns; empty tables on failure
	Holders(ctx context.Context, ticker string) *models.Holders

	// News fetches recent news; empty slice on failure
	News(ctx context.Context, ticker string, limit int) []models.NewsItem

	// Analyze runs the full pipeline: history, indicators, narrative, info
	Analyze(ctx context.Context, ticker string, period models.Period, interval models.Interval) *StockAnalysis

	// PortfolioQuotes fetches quote rows for many tickers with bounded
	// concurrency; rows are keyed by ticker, order matches the input
	PortfolioQuotes(ctx context.Context, tickers []string) []models.PortfolioQuote

	// ExchangeRate returns the from->to rate, falling back to fixed
	// approximations when the provider is unavailable
	ExchangeRate(ctx context.Context, from, to string) float64
}

// QuoteNameService resolves display names with raw-code fallback.
type QuoteNameService interface {
	// DisplayNames returns a name for every input code, falling back to
	// the raw code itself when unresolved
	DisplayNames(ctx context.Context, codes []string) map[string]string

	// Search finds tickers by company name; empty slice on failure
	Search(ctx context.Context, query string) []models.SearchResult
}

// WatchlistService manages the persisted ticker working set.
type WatchlistService interface {
	// List returns the current entries with resolved display names
	List(ctx context.Context) []models.WatchlistEntry

	// Add appends codes (exact-match deduped) and persists
	Add(ctx context.Context, codes ...string) ([]models.WatchlistEntry, error)

	// Remove deletes a code and persists
	Remove(ctx context.Context, code string) ([]models.WatchlistEntry, error)
}
