// Package market implements the stock analysis pipeline over the
// upstream market data provider.
package market

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/interfaces"
	"github.com/hklens/hklens/internal/models"
	"github.com/hklens/hklens/internal/services/narrative"
	"github.com/hklens/hklens/internal/signals"
)

// quoteConcurrency bounds the portfolio fan-out.
const quoteConcurrency = 5

// fallbackRates are the fixed approximations used when the exchange
// rate provider is unreachable.
var fallbackRates = map[string]float64{
	"HKDCNY": 0.92,
	"CNYHKD": 1.09,
}

// Service is the provider-facing pipeline. Upstream failures surface as
// empty results so a single flaky endpoint never takes down a whole
// analysis page.
type Service struct {
	client     interfaces.MarketDataClient
	names      interfaces.QuoteNameService
	translator interfaces.Translator
	engine     *narrative.Engine
	logger     *common.Logger
}

// NewService creates a market service. The name resolver and translator
// are optional; without them quotes fall back to raw codes and company
// summaries stay untranslated.
func NewService(client interfaces.MarketDataClient, names interfaces.QuoteNameService, translator interfaces.Translator, logger *common.Logger) *Service {
	return &Service{
		client:     client,
		names:      names,
		translator: translator,
		engine:     narrative.NewEngine(),
		logger:     logger,
	}
}

// History fetches OHLCV bars for a ticker. Provider failures log and
// return nil.
func (s *Service) History(ctx context.Context, ticker string, period models.Period, interval models.Interval) *models.Series {
	symbol := models.NormalizeTicker(ticker)

	series, err := s.client.GetHistory(ctx, symbol,
		interfaces.WithPeriod(period),
		interfaces.WithInterval(interval))
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("history fetch failed")
		return nil
	}
	return series
}

// Info fetches descriptive metadata. Provider failures return an empty
// map. When a translator is configured, the English business summary
// gains a translated companion field.
func (s *Service) Info(ctx context.Context, ticker string) models.Info {
	symbol := models.NormalizeTicker(ticker)

	info, err := s.client.GetInfo(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("info fetch failed")
		return models.Info{}
	}

	if s.translator != nil {
		if summary := info.GetString("longBusinessSummary", ""); summary != "" {
			info["translatedSummary"] = s.translator.Translate(ctx, summary)
		}
	}
	return info
}

// Holders fetches shareholder breakdowns. Provider failures return
// empty tables.
func (s *Service) Holders(ctx context.Context, ticker string) *models.Holders {
	symbol := models.NormalizeTicker(ticker)

	holders, err := s.client.GetHolders(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("holders fetch failed")
		return &models.Holders{}
	}
	return holders
}

// News fetches recent news. Provider failures return an empty slice.
func (s *Service) News(ctx context.Context, ticker string, limit int) []models.NewsItem {
	symbol := models.NormalizeTicker(ticker)

	items, err := s.client.GetNews(ctx, symbol, limit)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("news fetch failed")
		return []models.NewsItem{}
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items
}

// Analyze runs the full pipeline for one ticker: history, indicator
// columns, narrative and metadata. A ticker with no bars still yields a
// result, just without series or narrative.
func (s *Service) Analyze(ctx context.Context, ticker string, period models.Period, interval models.Interval) *interfaces.StockAnalysis {
	symbol := models.NormalizeTicker(ticker)

	analysis := &interfaces.StockAnalysis{
		Ticker:  ticker,
		Symbol:  symbol,
		Warning: models.ValidateCombination(period, interval),
	}

	series := s.History(ctx, ticker, period, interval)
	if series.Empty() {
		s.logger.Info().Str("symbol", symbol).Msg("no history, skipping indicators")
		analysis.Info = s.Info(ctx, ticker)
		return analysis
	}

	indicatorSeries := signals.Compute(series)
	analysis.Series = indicatorSeries

	if snap, ok := indicatorSeries.Latest(); ok {
		analysis.Narrative = s.engine.Analyze(snap)
	}

	analysis.Info = s.Info(ctx, ticker)
	return analysis
}

// PortfolioQuotes fetches quote rows for many tickers with bounded
// concurrency. The output order matches the input; tickers whose fetch
// failed still get a row carrying just the code and resolved name.
func (s *Service) PortfolioQuotes(ctx context.Context, tickers []string) []models.PortfolioQuote {
	quotes := make([]models.PortfolioQuote, len(tickers))

	names := map[string]string{}
	if s.names != nil {
		names = s.names.DisplayNames(ctx, tickers)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, quoteConcurrency)

	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			quote := s.fetchQuote(ctx, ticker)
			quote.Name = names[ticker]
			quotes[i] = quote
		}(i, ticker)
	}
	wg.Wait()

	return quotes
}

// fetchQuote derives a quote row from one month of daily bars.
func (s *Service) fetchQuote(ctx context.Context, ticker string) models.PortfolioQuote {
	quote := models.PortfolioQuote{
		Code:     ticker,
		Currency: "HKD",
	}

	series := s.History(ctx, ticker, models.Period1M, models.Interval1d)
	if series.Empty() {
		return quote
	}

	bars := series.Bars
	last := bars[len(bars)-1]
	quote.Last = last.Close
	quote.Volume = last.Volume

	if len(bars) > 1 {
		prev := bars[len(bars)-2].Close
		quote.DayChange = last.Close - prev
		if prev != 0 {
			quote.DayPct = (last.Close - prev) / prev * 100
		}
	}
	if first := bars[0].Close; first != 0 {
		quote.MonthPct = (last.Close - first) / first * 100
	}
	return quote
}

// ExchangeRate returns the from->to conversion rate. The provider is
// asked first via the currency pair symbol; on failure the fixed
// approximations apply, and unknown pairs convert at parity.
func (s *Service) ExchangeRate(ctx context.Context, from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to || from == "" || to == "" {
		return 1.0
	}

	pair := fmt.Sprintf("%s%s=X", from, to)
	series, err := s.client.GetHistory(ctx, pair,
		interfaces.WithPeriod(models.Period5D),
		interfaces.WithInterval(models.Interval1d))
	if err == nil && !series.Empty() {
		if rate := series.LastClose(); rate > 0 {
			return rate
		}
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("pair", pair).Msg("exchange rate fetch failed, using fallback")
	}

	if rate, known := fallbackRates[from+to]; known {
		return rate
	}
	return 1.0
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
