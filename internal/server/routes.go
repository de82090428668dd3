package server

import "net/http"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Stocks
	mux.HandleFunc("/api/stocks/", s.routeStocks)
	mux.HandleFunc("/api/search", s.handleSearch)

	// Portfolio
	mux.HandleFunc("/api/portfolio/quotes", s.handlePortfolioQuotes)

	// Watchlist
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)
	mux.HandleFunc("/api/watchlist/", s.handleWatchlistRemove)
}
