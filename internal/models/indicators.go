package models

// IndicatorColumns holds the derived columns for a series, each aligned
// 1:1 by row with the source bars. Cells without enough trailing history
// are undefined (NullFloat with Valid=false), never 0.0.
type IndicatorColumns struct {
	SMA20      []NullFloat `json:"sma_20"`
	SMA50      []NullFloat `json:"sma_50"`
	BBHigh     []NullFloat `json:"bb_high"`
	BBMid      []NullFloat `json:"bb_mid"`
	BBLow      []NullFloat `json:"bb_low"`
	RSI        []NullFloat `json:"rsi"`
	MACD       []NullFloat `json:"macd"`
	MACDSignal []NullFloat `json:"macd_signal"`
	MACDDiff   []NullFloat `json:"macd_diff"`
}

// IndicatorSeries is an OHLCV series augmented with derived columns.
// The embedded series is a copy; computing indicators never mutates the
// caller's bars.
type IndicatorSeries struct {
	Series  `json:"series"`
	Columns IndicatorColumns `json:"columns"`
}

// Snapshot is the latest indicator row plus the closes the narrative
// engine compares against.
type Snapshot struct {
	Close      float64   `json:"close"`
	PrevClose  float64   `json:"prev_close"`
	SMA20      NullFloat `json:"sma_20"`
	SMA50      NullFloat `json:"sma_50"`
	BBHigh     NullFloat `json:"bb_high"`
	BBLow      NullFloat `json:"bb_low"`
	RSI        NullFloat `json:"rsi"`
	MACD       NullFloat `json:"macd"`
	MACDSignal NullFloat `json:"macd_signal"`
}

// Latest extracts the snapshot for the last row. ok is false for an
// empty series. When only one bar exists, PrevClose falls back to the
// bar's open, mirroring how a single-bar day is read.
func (s *IndicatorSeries) Latest() (Snapshot, bool) {
	n := len(s.Bars)
	if n == 0 {
		return Snapshot{}, false
	}

	last := n - 1
	snap := Snapshot{
		Close:      s.Bars[last].Close,
		PrevClose:  s.Bars[last].Open,
		SMA20:      s.Columns.SMA20[last],
		SMA50:      s.Columns.SMA50[last],
		BBHigh:     s.Columns.BBHigh[last],
		BBLow:      s.Columns.BBLow[last],
		RSI:        s.Columns.RSI[last],
		MACD:       s.Columns.MACD[last],
		MACDSignal: s.Columns.MACDSignal[last],
	}
	if n > 1 {
		snap.PrevClose = s.Bars[last-1].Close
	}
	return snap, true
}
