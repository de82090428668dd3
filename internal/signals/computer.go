package signals

import (
	"github.com/hklens/hklens/internal/models"
)

// Compute derives the full indicator column set for a series. The input
// series is copied, never mutated; the returned columns are aligned 1:1
// with the bars. An empty series yields empty columns.
func Compute(series *models.Series) *models.IndicatorSeries {
	bars := make([]models.Bar, len(series.Bars))
	copy(bars, series.Bars)

	result := &models.IndicatorSeries{
		Series: models.Series{Symbol: series.Symbol, Bars: bars},
	}

	closes := series.Closes()
	result.Columns.SMA20 = SMASeries(closes, SMAShortWindow)
	result.Columns.SMA50 = SMASeries(closes, SMALongWindow)

	mid, high, low := BollingerSeries(closes, BollingerWindow, BollingerStdDevs)
	result.Columns.BBMid = mid
	result.Columns.BBHigh = high
	result.Columns.BBLow = low

	result.Columns.RSI = RSISeries(closes, RSIWindow)

	macd, signal, diff := MACDSeries(closes, MACDFast, MACDSlow, MACDSignalWindow)
	result.Columns.MACD = macd
	result.Columns.MACDSignal = signal
	result.Columns.MACDDiff = diff

	return result
}
