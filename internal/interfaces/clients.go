// Package interfaces defines service contracts for hklens
package interfaces

import (
	"context"

	"github.com/hklens/hklens/internal/models"
)

// MarketDataClient provides access to the upstream market data provider.
// Symbols are canonical exchange-qualified form ("0700.HK"); callers
// normalize first. Every method may fail; converting failures to empty
// results is the market service's job, not the client's.
type MarketDataClient interface {
	// GetHistory retrieves OHLCV history for a symbol
	GetHistory(ctx context.Context, symbol string, opts ...HistoryOption) (*models.Series, error)

	// GetInfo retrieves descriptive/fundamental metadata
	GetInfo(ctx context.Context, symbol string) (models.Info, error)

	// GetHolders retrieves shareholder breakdowns; each table is guarded
	// independently and a partially-filled result is not an error
	GetHolders(ctx context.Context, symbol string) (*models.Holders, error)

	// GetNews retrieves recent news items, normalized across upstream shapes
	GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// HistoryOption configures history requests
type HistoryOption func(*HistoryParams)

// HistoryParams holds history query parameters
type HistoryParams struct {
	Period   models.Period
	Interval models.Interval
}

// WithPeriod sets the history span
func WithPeriod(period models.Period) HistoryOption {
	return func(p *HistoryParams) {
		p.Period = period
	}
}

// WithInterval sets the bar granularity
func WithInterval(interval models.Interval) HistoryOption {
	return func(p *HistoryParams) {
		p.Interval = interval
	}
}

// QuoteNameClient resolves localized display names and free-text searches
// against the secondary quote provider.
type QuoteNameClient interface {
	// ResolveNames maps raw ticker codes to localized display names.
	// Codes that cannot be resolved are absent from the result.
	ResolveNames(ctx context.Context, codes []string) (map[string]string, error)

	// Search finds tickers by company name
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Translator is a best-effort text translation collaborator. It fails
// closed: on any error the original text is returned unchanged.
type Translator interface {
	Translate(ctx context.Context, text string) string
}
