package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Period is the history span requested from the market data provider.
type Period string

// Periods accepted by the chart endpoint, shortest to longest.
const (
	Period1D  Period = "1d"
	Period5D  Period = "5d"
	Period1M  Period = "1mo"
	Period3M  Period = "3mo"
	Period6M  Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	PeriodMax Period = "max"
)

// Interval is the bar granularity.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval60m Interval = "60m"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

// IsIntraday reports whether the interval is minute-level.
func (i Interval) IsIntraday() bool {
	switch i {
	case Interval1m, Interval5m, Interval15m, Interval30m, Interval60m:
		return true
	}
	return false
}

// ValidateCombination returns a human-readable warning when a minute-level
// interval is combined with a period the upstream rarely serves. The fetch
// itself is never rejected; the upstream simply may return nothing.
func ValidateCombination(period Period, interval Interval) string {
	if !interval.IsIntraday() {
		return ""
	}
	switch period {
	case Period1D, Period5D:
		return ""
	}
	return "minute-level data is usually limited to short periods (1d, 5d); shorten the period if the chart is empty"
}

// Bar is a single OHLCV candlestick.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is an OHLCV history ordered strictly ascending by time with no
// duplicate timestamps.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// NewSeries builds a Series from bars, sorting ascending and dropping
// duplicate timestamps (first occurrence wins).
func NewSeries(symbol string, bars []Bar) *Series {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	deduped := sorted[:0]
	for _, b := range sorted {
		if len(deduped) > 0 && !b.Time.After(deduped[len(deduped)-1].Time) {
			continue
		}
		deduped = append(deduped, b)
	}
	return &Series{Symbol: symbol, Bars: deduped}
}

// Empty reports whether the series holds no bars.
func (s *Series) Empty() bool {
	return s == nil || len(s.Bars) == 0
}

// Closes returns the close column.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s *Series) LastClose() float64 {
	if s.Empty() {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// Info is the loosely-typed descriptive/fundamental mapping returned by
// the provider. Any field may be absent; consumers go through the typed
// accessors instead of reading the map directly.
type Info map[string]any

// GetFloat returns a numeric field. Absent or non-numeric values yield ok=false.
func (m Info) GetFloat(key string) (float64, bool) {
	v, present := m[key]
	if !present {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// GetString returns a string field, or fallback when absent or not a string.
func (m Info) GetString(key, fallback string) string {
	if v, present := m[key]; present {
		if s, isStr := v.(string); isStr {
			return s
		}
	}
	return fallback
}

// Has reports whether the field is present.
func (m Info) Has(key string) bool {
	_, present := m[key]
	return present
}

// MajorHolderRow is one value/description pair from the major-holders summary.
type MajorHolderRow struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// InstitutionalHolder is one row of the institutional holders table.
type InstitutionalHolder struct {
	Holder       string    `json:"holder"`
	Shares       int64     `json:"shares"`
	DateReported time.Time `json:"date_reported"`
	PctOut       float64   `json:"pct_out"`
	Value        float64   `json:"value"`
}

// InsiderTransaction is one row of the insider transactions table.
type InsiderTransaction struct {
	Insider     string    `json:"insider"`
	Position    string    `json:"position"`
	Transaction string    `json:"transaction"`
	Ownership   string    `json:"ownership"`
	Date        time.Time `json:"date"`
	Shares      int64     `json:"shares"`
	Value       float64   `json:"value"`
}

// Holders groups the shareholder breakdowns. Each table is fetched
// independently; a nil/empty table means that fetch failed or had no data.
type Holders struct {
	Major         []MajorHolderRow      `json:"major,omitempty"`
	Institutional []InstitutionalHolder `json:"institutional,omitempty"`
	Insider       []InsiderTransaction  `json:"insider,omitempty"`
}

// FlexTime unmarshals a publish time that is either a Unix-seconds number
// (legacy news shape) or an ISO-8601 / RFC3339 string (nested content shape).
type FlexTime struct {
	time.Time
}

// UnmarshalJSON accepts Unix seconds or an ISO-8601 string.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	var secs int64
	if err := json.Unmarshal(data, &secs); err == nil {
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s as publish time", string(data))
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("cannot parse publish time '%s'", s)
}

// MarshalJSON encodes as RFC3339.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// NewsItem is a normalized news record.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Publisher   string    `json:"publisher"`
	PublishedAt time.Time `json:"published_at"`
}

// SearchResult is one suggestion from the free-text stock search.
type SearchResult struct {
	Name string `json:"name"`
	Code string `json:"code"` // 4-digit display code, suffix added on use
}

// PortfolioQuote is one row of the portfolio overview table.
type PortfolioQuote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Last      float64 `json:"last"`
	DayChange float64 `json:"day_change"`
	DayPct    float64 `json:"day_pct"`
	MonthPct  float64 `json:"month_pct"`
	Volume    int64   `json:"volume"`
	Currency  string  `json:"currency"`
}

// DisplayLabel formats a code with its resolved name for pickers.
func (q PortfolioQuote) DisplayLabel() string {
	if q.Name == "" || strings.EqualFold(q.Name, q.Code) {
		return q.Code
	}
	return q.Code + " - " + q.Name
}
