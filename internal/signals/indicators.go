// Package signals provides technical indicator calculations
package signals

import (
	"math"

	"github.com/hklens/hklens/internal/models"
)

// Fixed indicator parameters. These are design constants, not
// configuration.
const (
	SMAShortWindow   = 20
	SMALongWindow    = 50
	BollingerWindow  = 20
	BollingerStdDevs = 2.0
	RSIWindow        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignalWindow = 9
)

// SMASeries computes the trailing simple moving average column.
// The first window-1 cells are undefined.
func SMASeries(closes []float64, window int) []models.NullFloat {
	out := make([]models.NullFloat, len(closes))
	if window <= 0 {
		return out
	}

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out[i] = models.Float(sum / float64(window))
		}
	}
	return out
}

// rollingStd computes the trailing sample standard deviation (ddof=1)
// of the window ending at index i.
func rollingStd(closes []float64, end, window int) float64 {
	if window < 2 {
		return 0
	}
	start := end - window + 1
	mean := 0.0
	for i := start; i <= end; i++ {
		mean += closes[i]
	}
	mean /= float64(window)

	variance := 0.0
	for i := start; i <= end; i++ {
		d := closes[i] - mean
		variance += d * d
	}
	variance /= float64(window - 1)
	return math.Sqrt(variance)
}

// BollingerSeries computes the mid/high/low band columns: mid is the
// window SMA of close, high/low are mid +/- devs trailing sample
// standard deviations.
func BollingerSeries(closes []float64, window int, devs float64) (mid, high, low []models.NullFloat) {
	mid = SMASeries(closes, window)
	high = make([]models.NullFloat, len(closes))
	low = make([]models.NullFloat, len(closes))

	for i := range closes {
		if !mid[i].Valid {
			continue
		}
		sigma := rollingStd(closes, i, window)
		high[i] = models.Float(mid[i].Float64 + devs*sigma)
		low[i] = models.Float(mid[i].Float64 - devs*sigma)
	}
	return mid, high, low
}

// RSISeries computes the Wilder-smoothed relative strength index.
// RSI needs window close-to-close changes, so the first window cells are
// undefined. A flat window (no gains, no losses) reads as neutral 50;
// a window with no losses reads as 100.
func RSISeries(closes []float64, window int) []models.NullFloat {
	out := make([]models.NullFloat, len(closes))
	if window <= 0 || len(closes) < window+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = models.Float(rsiValue(avgGain, avgLoss))

	for i := window + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
		out[i] = models.Float(rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // no movement either way
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// EMASeries computes the exponential moving average column, seeded with
// the SMA of the first window values. The first window-1 cells are
// undefined.
func EMASeries(closes []float64, window int) []models.NullFloat {
	out := make([]models.NullFloat, len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}

	seed := 0.0
	for i := 0; i < window; i++ {
		seed += closes[i]
	}
	ema := seed / float64(window)
	out[window-1] = models.Float(ema)

	multiplier := 2.0 / float64(window+1)
	for i := window; i < len(closes); i++ {
		ema = (closes[i]-ema)*multiplier + ema
		out[i] = models.Float(ema)
	}
	return out
}

// MACDSeries computes the MACD line (fast EMA - slow EMA), its signal
// line (EMA of the MACD line), and their difference. The MACD line is
// defined from index slow-1; the signal needs a further signalWindow-1
// MACD values.
func MACDSeries(closes []float64, fast, slow, signalWindow int) (macd, signal, diff []models.NullFloat) {
	n := len(closes)
	macd = make([]models.NullFloat, n)
	signal = make([]models.NullFloat, n)
	diff = make([]models.NullFloat, n)

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	macdValues := make([]float64, 0, n)
	firstMACD := -1
	for i := 0; i < n; i++ {
		if !fastEMA[i].Valid || !slowEMA[i].Valid {
			continue
		}
		if firstMACD < 0 {
			firstMACD = i
		}
		v := fastEMA[i].Float64 - slowEMA[i].Float64
		macd[i] = models.Float(v)
		macdValues = append(macdValues, v)
	}

	if firstMACD < 0 {
		return macd, signal, diff
	}

	signalOnMACD := EMASeries(macdValues, signalWindow)
	for j, s := range signalOnMACD {
		if !s.Valid {
			continue
		}
		i := firstMACD + j
		signal[i] = s
		diff[i] = models.Float(macd[i].Float64 - s.Float64)
	}
	return macd, signal, diff
}
