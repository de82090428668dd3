package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hklens/hklens/internal/app"
	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/interfaces"
	"github.com/hklens/hklens/internal/models"
	"github.com/hklens/hklens/internal/signals"
)

// fakeMarket is a scriptable MarketService.
type fakeMarket struct {
	series *models.Series
	info   models.Info
	news   []models.NewsItem
	rate   float64
}

func (f *fakeMarket) History(ctx context.Context, ticker string, period models.Period, interval models.Interval) *models.Series {
	return f.series
}

func (f *fakeMarket) Info(ctx context.Context, ticker string) models.Info {
	if f.info == nil {
		return models.Info{}
	}
	return f.info
}

func (f *fakeMarket) Holders(ctx context.Context, ticker string) *models.Holders {
	return &models.Holders{}
}

func (f *fakeMarket) News(ctx context.Context, ticker string, limit int) []models.NewsItem {
	if limit < len(f.news) {
		return f.news[:limit]
	}
	return f.news
}

func (f *fakeMarket) Analyze(ctx context.Context, ticker string, period models.Period, interval models.Interval) *interfaces.StockAnalysis {
	analysis := &interfaces.StockAnalysis{
		Ticker: ticker,
		Symbol: models.NormalizeTicker(ticker),
		Info:   f.Info(ctx, ticker),
	}
	if !f.series.Empty() {
		analysis.Series = signals.Compute(f.series)
	}
	return analysis
}

func (f *fakeMarket) PortfolioQuotes(ctx context.Context, tickers []string) []models.PortfolioQuote {
	quotes := make([]models.PortfolioQuote, len(tickers))
	for i, t := range tickers {
		quotes[i] = models.PortfolioQuote{Code: t, Name: t, Last: 100, DayChange: 2, Currency: "HKD"}
	}
	return quotes
}

func (f *fakeMarket) ExchangeRate(ctx context.Context, from, to string) float64 {
	if f.rate != 0 {
		return f.rate
	}
	return 1.0
}

// fakeQuotes is a fixed-result QuoteNameService.
type fakeQuotes struct {
	results []models.SearchResult
}

func (f *fakeQuotes) DisplayNames(ctx context.Context, codes []string) map[string]string {
	out := map[string]string{}
	for _, c := range codes {
		out[c] = c
	}
	return out
}

func (f *fakeQuotes) Search(ctx context.Context, query string) []models.SearchResult {
	return f.results
}

// fakeWatchlist is an in-memory WatchlistService.
type fakeWatchlist struct {
	codes []string
	err   error
}

func (f *fakeWatchlist) entries() []models.WatchlistEntry {
	out := make([]models.WatchlistEntry, len(f.codes))
	for i, c := range f.codes {
		out[i] = models.WatchlistEntry{Code: c, Name: c}
	}
	return out
}

func (f *fakeWatchlist) List(ctx context.Context) []models.WatchlistEntry {
	return f.entries()
}

func (f *fakeWatchlist) Add(ctx context.Context, codes ...string) ([]models.WatchlistEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.codes = append(f.codes, codes...)
	return f.entries(), nil
}

func (f *fakeWatchlist) Remove(ctx context.Context, code string) ([]models.WatchlistEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	kept := f.codes[:0]
	for _, c := range f.codes {
		if c != code {
			kept = append(kept, c)
		}
	}
	f.codes = kept
	return f.entries(), nil
}

func testSeries(n int) *models.Series {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = models.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return models.NewSeries("0700.HK", bars)
}

func newTestServer(market *fakeMarket, quotes *fakeQuotes, wl *fakeWatchlist) *Server {
	if market == nil {
		market = &fakeMarket{}
	}
	if quotes == nil {
		quotes = &fakeQuotes{}
	}
	if wl == nil {
		wl = &fakeWatchlist{}
	}
	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           common.NewSilentLogger(),
		MarketService:    market,
		QuoteService:     quotes,
		WatchlistService: wl,
		StartupTime:      time.Now(),
	}
	return NewServer(a)
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, common.ServiceName, body["service"])
	assert.NotEmpty(t, body["version"])
}

func TestAnalysisEndpoint(t *testing.T) {
	s := newTestServer(&fakeMarket{series: testSeries(60)}, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/stocks/700/analysis?period=6mo&interval=1d", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Ticker string `json:"ticker"`
		Symbol string `json:"symbol"`
		Series *struct {
			Columns struct {
				SMA20 []*float64 `json:"sma_20"`
			} `json:"columns"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "700", body.Ticker)
	assert.Equal(t, "0700.HK", body.Symbol)
	require.NotNil(t, body.Series)
	require.Len(t, body.Series.Columns.SMA20, 60)
	// undefined leading cells serialize as null
	assert.Nil(t, body.Series.Columns.SMA20[0])
	assert.NotNil(t, body.Series.Columns.SMA20[19])
}

func TestHistoryEndpointEmptySeries(t *testing.T) {
	s := newTestServer(&fakeMarket{}, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/stocks/700/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "0700.HK", body.Symbol)
	assert.Empty(t, body.Bars)
}

func TestNewsEndpointLimitValidation(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/stocks/700/news?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/stocks/700/news?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/stocks/700/news", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStockRouteErrors(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/stocks/700/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/stocks/700", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(s, http.MethodPost, "/api/stocks/700/info", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChartEndpoint(t *testing.T) {
	s := newTestServer(&fakeMarket{series: testSeries(60)}, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/stocks/700/chart.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes()[:4])
}

func TestChartEndpointNoHistory(t *testing.T) {
	s := newTestServer(&fakeMarket{}, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/stocks/700/chart.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	quotes := &fakeQuotes{results: []models.SearchResult{{Name: "腾讯控股", Code: "0700"}}}
	s := newTestServer(nil, quotes, nil)

	rec := doRequest(s, http.MethodGet, "/api/search?q=tencent", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body []models.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "0700", body[0].Code)
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioQuotesFromWatchlist(t *testing.T) {
	s := newTestServer(&fakeMarket{}, nil, &fakeWatchlist{codes: []string{"0700", "0005"}})

	rec := doRequest(s, http.MethodGet, "/api/portfolio/quotes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body portfolioQuotesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Quotes, 2)
	assert.Equal(t, "0700", body.Quotes[0].Code)
	assert.Equal(t, "HKD", body.Currency)
	assert.InDelta(t, 1.0, body.Rate, 1e-9)
}

func TestPortfolioQuotesCurrencyConversion(t *testing.T) {
	s := newTestServer(&fakeMarket{rate: 0.92}, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/portfolio/quotes?tickers=0700&currency=cny", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body portfolioQuotesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CNY", body.Currency)
	assert.InDelta(t, 0.92, body.Rate, 1e-9)
	require.Len(t, body.Quotes, 1)
	assert.InDelta(t, 92.0, body.Quotes[0].Last, 1e-9)
	assert.InDelta(t, 1.84, body.Quotes[0].DayChange, 1e-9)
	assert.Equal(t, "CNY", body.Quotes[0].Currency)
}

func TestPortfolioQuotesEmptyWatchlist(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/portfolio/quotes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body portfolioQuotesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Quotes)
	assert.Empty(t, body.Quotes)
}

func TestWatchlistCRUD(t *testing.T) {
	wl := &fakeWatchlist{}
	s := newTestServer(nil, nil, wl)

	// empty list
	rec := doRequest(s, http.MethodGet, "/api/watchlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// add
	rec = doRequest(s, http.MethodPost, "/api/watchlist", []byte(`{"codes": ["0700", "0005"]}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.WatchlistEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)

	// single-code form
	rec = doRequest(s, http.MethodPost, "/api/watchlist", []byte(`{"code": "1810"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 3)

	// remove
	rec = doRequest(s, http.MethodDelete, "/api/watchlist/0005", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestWatchlistAddValidation(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodPost, "/api/watchlist", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPost, "/api/watchlist", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWatchlistMethodNotAllowed(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(s, http.MethodPut, "/api/watchlist", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/watchlist/0700", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflightAndCorrelationID(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))
}
