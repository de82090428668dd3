package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/models"
	"github.com/hklens/hklens/internal/services/chart"
)

const defaultNewsLimit = 10

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"service": common.ServiceName,
		"version": common.Version,
	})
}

// routeStocks dispatches /api/stocks/{ticker}/{action} requests.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/stocks/")
	ticker, action, found := strings.Cut(rest, "/")
	if ticker == "" || !found {
		WriteError(w, http.StatusNotFound, "Expected /api/stocks/{ticker}/{action}")
		return
	}

	switch action {
	case "analysis":
		s.handleStockAnalysis(w, r, ticker)
	case "history":
		s.handleStockHistory(w, r, ticker)
	case "info":
		s.handleStockInfo(w, r, ticker)
	case "holders":
		s.handleStockHolders(w, r, ticker)
	case "news":
		s.handleStockNews(w, r, ticker)
	case "chart.png":
		s.handleStockChart(w, r, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Unknown stock action: "+action)
	}
}

// historyParams reads the period and interval query parameters,
// defaulting to one year of daily bars.
func historyParams(r *http.Request) (models.Period, models.Interval) {
	period := models.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = models.Period1Y
	}
	interval := models.Interval(r.URL.Query().Get("interval"))
	if interval == "" {
		interval = models.Interval1d
	}
	return period, interval
}

// handleStockAnalysis handles GET /api/stocks/{ticker}/analysis.
func (s *Server) handleStockAnalysis(w http.ResponseWriter, r *http.Request, ticker string) {
	period, interval := historyParams(r)
	analysis := s.app.MarketService.Analyze(r.Context(), ticker, period, interval)
	WriteJSON(w, http.StatusOK, analysis)
}

// handleStockHistory handles GET /api/stocks/{ticker}/history.
func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request, ticker string) {
	period, interval := historyParams(r)
	series := s.app.MarketService.History(r.Context(), ticker, period, interval)
	if series == nil {
		series = models.NewSeries(models.NormalizeTicker(ticker), nil)
	}
	WriteJSON(w, http.StatusOK, series)
}

// handleStockInfo handles GET /api/stocks/{ticker}/info.
func (s *Server) handleStockInfo(w http.ResponseWriter, r *http.Request, ticker string) {
	info := s.app.MarketService.Info(r.Context(), ticker)
	WriteJSON(w, http.StatusOK, info)
}

// handleStockHolders handles GET /api/stocks/{ticker}/holders.
func (s *Server) handleStockHolders(w http.ResponseWriter, r *http.Request, ticker string) {
	holders := s.app.MarketService.Holders(r.Context(), ticker)
	WriteJSON(w, http.StatusOK, holders)
}

// handleStockNews handles GET /api/stocks/{ticker}/news.
func (s *Server) handleStockNews(w http.ResponseWriter, r *http.Request, ticker string) {
	limit := defaultNewsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	news := s.app.MarketService.News(r.Context(), ticker, limit)
	WriteJSON(w, http.StatusOK, news)
}

// handleStockChart handles GET /api/stocks/{ticker}/chart.png.
func (s *Server) handleStockChart(w http.ResponseWriter, r *http.Request, ticker string) {
	period, interval := historyParams(r)
	analysis := s.app.MarketService.Analyze(r.Context(), ticker, period, interval)
	if analysis.Series == nil {
		WriteError(w, http.StatusNotFound, "No history available for "+ticker)
		return
	}

	png, err := chart.RenderPriceChart(analysis.Series)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("chart render failed")
		WriteError(w, http.StatusInternalServerError, "Chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleSearch handles GET /api/search?q=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	results := s.app.QuoteService.Search(r.Context(), query)
	WriteJSON(w, http.StatusOK, results)
}

// portfolioQuotesResponse is the quote table payload.
type portfolioQuotesResponse struct {
	Quotes   []models.PortfolioQuote `json:"quotes"`
	Currency string                  `json:"currency"`
	Rate     float64                 `json:"rate"`
}

// handlePortfolioQuotes handles GET /api/portfolio/quotes. Without a
// tickers parameter the persisted watchlist is quoted. A currency
// parameter converts prices from HKD at the current rate.
func (s *Server) handlePortfolioQuotes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var tickers []string
	if raw := r.URL.Query().Get("tickers"); raw != "" {
		tickers = models.SplitTickerInput(raw)
	} else {
		for _, entry := range s.app.WatchlistService.List(r.Context()) {
			tickers = append(tickers, entry.Code)
		}
	}
	if len(tickers) == 0 {
		WriteJSON(w, http.StatusOK, portfolioQuotesResponse{
			Quotes:   []models.PortfolioQuote{},
			Currency: "HKD",
			Rate:     1.0,
		})
		return
	}

	quotes := s.app.MarketService.PortfolioQuotes(r.Context(), tickers)

	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	rate := 1.0
	if currency != "" && currency != "HKD" {
		rate = s.app.MarketService.ExchangeRate(r.Context(), "HKD", currency)
		for i := range quotes {
			quotes[i].Last *= rate
			quotes[i].DayChange *= rate
			quotes[i].Currency = currency
		}
	} else {
		currency = "HKD"
	}

	WriteJSON(w, http.StatusOK, portfolioQuotesResponse{
		Quotes:   quotes,
		Currency: currency,
		Rate:     rate,
	})
}

// watchlistAddRequest is the POST /api/watchlist body.
type watchlistAddRequest struct {
	Codes []string `json:"codes"`
	Code  string   `json:"code"`
}

// handleWatchlist handles GET and POST /api/watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries := s.app.WatchlistService.List(r.Context())
		WriteJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		var req watchlistAddRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		codes := req.Codes
		if req.Code != "" {
			codes = append(codes, req.Code)
		}
		if len(codes) == 0 {
			WriteError(w, http.StatusBadRequest, "Provide 'code' or 'codes'")
			return
		}

		entries, err := s.app.WatchlistService.Add(r.Context(), codes...)
		if err != nil {
			s.logger.Error().Err(err).Msg("watchlist add failed")
			WriteError(w, http.StatusInternalServerError, "Failed to update watchlist")
			return
		}
		WriteJSON(w, http.StatusOK, entries)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistRemove handles DELETE /api/watchlist/{code}.
func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	code := PathParam(r, "/api/watchlist/", "")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "Expected /api/watchlist/{code}")
		return
	}

	entries, err := s.app.WatchlistService.Remove(r.Context(), code)
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("watchlist remove failed")
		WriteError(w, http.StatusInternalServerError, "Failed to update watchlist")
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}
