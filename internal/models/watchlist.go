package models

// TickerList is the persisted working set of raw ticker codes.
// Only the raw codes are durable; display names are recomputed.
type TickerList struct {
	Tickers []string `json:"tickers"`
}

// Contains reports exact-match membership.
func (l *TickerList) Contains(code string) bool {
	for _, t := range l.Tickers {
		if t == code {
			return true
		}
	}
	return false
}

// StockDetail is one entry of the best-effort details snapshot.
type StockDetail struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// StockDetails is the optional persisted detail snapshot document.
type StockDetails struct {
	Stocks []StockDetail `json:"stocks"`
}

// WatchlistEntry pairs a raw code with its resolved display name for
// API responses. Name falls back to the raw code when unresolved.
type WatchlistEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
