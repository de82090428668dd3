package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hklens/hklens/internal/models"
)

func fullSnapshot() models.Snapshot {
	return models.Snapshot{
		Close:      105,
		PrevClose:  103,
		SMA20:      models.Float(100),
		SMA50:      models.Float(95),
		BBHigh:     models.Float(112),
		BBLow:      models.Float(92),
		RSI:        models.Float(55),
		MACD:       models.Float(1.2),
		MACDSignal: models.Float(0.8),
	}
}

func TestAnalyzeTrendRegimes(t *testing.T) {
	tests := []struct {
		name   string
		close  float64
		sma20  float64
		sma50  float64
		regime models.TrendRegime
		label  string
	}{
		{"above both", 110, 100, 95, models.TrendBullishAlignment, "多头排列"},
		{"below both", 90, 100, 95, models.TrendBearishAlignment, "空头排列"},
		{"above short below long", 102, 100, 105, models.TrendShortTermRebound, "短期反弹"},
		{"below short above long", 98, 100, 95, models.TrendShortTermPullback, "短期回调"},
		{"exactly on short average", 100, 100, 95, models.TrendShortTermPullback, "短期回调"},
		{"exactly on both averages", 100, 100, 100, models.TrendShortTermPullback, "短期回调"},
	}

	engine := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := fullSnapshot()
			snap.Close = tt.close
			snap.SMA20 = models.Float(tt.sma20)
			snap.SMA50 = models.Float(tt.sma50)

			result := engine.Analyze(snap)
			assert.Equal(t, tt.regime, result.Trend.Regime)
			assert.Equal(t, tt.label, result.Trend.Label)
			assert.NotEmpty(t, result.Trend.Commentary)
		})
	}
}

func TestAnalyzeBandBreaks(t *testing.T) {
	engine := NewEngine()

	t.Run("above upper", func(t *testing.T) {
		snap := fullSnapshot()
		snap.Close = 115
		result := engine.Analyze(snap)
		assert.Equal(t, models.BandAboveUpper, result.Band.Break)
		assert.False(t, result.Band.PositionPct.Valid)
		assert.Contains(t, result.Band.Commentary, "突破布林带上轨")
	})

	t.Run("below lower", func(t *testing.T) {
		snap := fullSnapshot()
		snap.Close = 90
		result := engine.Analyze(snap)
		assert.Equal(t, models.BandBelowLower, result.Band.Break)
		assert.Contains(t, result.Band.Commentary, "跌破布林带下轨")
	})

	t.Run("inside with position", func(t *testing.T) {
		snap := fullSnapshot()
		snap.Close = 102
		snap.BBHigh = models.Float(112)
		snap.BBLow = models.Float(92)
		result := engine.Analyze(snap)
		assert.Equal(t, models.BandInside, result.Band.Break)
		require.True(t, result.Band.PositionPct.Valid)
		assert.InDelta(t, 50.0, result.Band.PositionPct.Float64, 1e-9)
		assert.Contains(t, result.Band.Commentary, "50.0%")
	})
}

func TestAnalyzeBandSqueeze(t *testing.T) {
	engine := NewEngine()

	snap := fullSnapshot()
	snap.Close = 100
	snap.BBHigh = models.Float(102)
	snap.BBLow = models.Float(98) // width 4 < 100 * 0.05
	result := engine.Analyze(snap)
	assert.True(t, result.Band.Squeeze)
	assert.Contains(t, result.Band.Commentary, "通道收窄")

	snap.BBHigh = models.Float(104)
	snap.BBLow = models.Float(96) // width 8 >= 5
	result = engine.Analyze(snap)
	assert.False(t, result.Band.Squeeze)
	assert.NotContains(t, result.Band.Commentary, "通道收窄")
}

func TestAnalyzeBandCollapsedChannel(t *testing.T) {
	engine := NewEngine()

	snap := fullSnapshot()
	snap.Close = 100
	snap.BBHigh = models.Float(100)
	snap.BBLow = models.Float(100)
	result := engine.Analyze(snap)
	assert.Equal(t, models.BandInside, result.Band.Break)
	require.True(t, result.Band.PositionPct.Valid)
	assert.InDelta(t, 50.0, result.Band.PositionPct.Float64, 1e-9)
	assert.True(t, result.Band.Squeeze)
}

func TestAnalyzeMomentum(t *testing.T) {
	engine := NewEngine()

	t.Run("overbought with bullish cross above zero", func(t *testing.T) {
		snap := fullSnapshot()
		snap.RSI = models.Float(75)
		snap.MACD = models.Float(2)
		snap.MACDSignal = models.Float(1)
		result := engine.Analyze(snap)
		assert.Equal(t, models.RSIOverbought, result.Momentum.RSIBucket)
		assert.Equal(t, models.MACDBullishCross, result.Momentum.Cross)
		assert.True(t, result.Momentum.AboveZero)
		assert.Contains(t, result.Momentum.Commentary, "超买")
		assert.Contains(t, result.Momentum.Commentary, "金叉")
		assert.Contains(t, result.Momentum.Commentary, "零轴上方")
	})

	t.Run("oversold with bearish cross below zero", func(t *testing.T) {
		snap := fullSnapshot()
		snap.RSI = models.Float(25)
		snap.MACD = models.Float(-2)
		snap.MACDSignal = models.Float(-1)
		result := engine.Analyze(snap)
		assert.Equal(t, models.RSIOversold, result.Momentum.RSIBucket)
		assert.Equal(t, models.MACDBearishCross, result.Momentum.Cross)
		assert.True(t, result.Momentum.BelowZero)
		assert.Contains(t, result.Momentum.Commentary, "超卖")
		assert.Contains(t, result.Momentum.Commentary, "死叉")
		assert.Contains(t, result.Momentum.Commentary, "零轴下方")
	})

	t.Run("mixed zero axis gets no dominance note", func(t *testing.T) {
		snap := fullSnapshot()
		snap.MACD = models.Float(0.5)
		snap.MACDSignal = models.Float(-0.2)
		result := engine.Analyze(snap)
		assert.False(t, result.Momentum.AboveZero)
		assert.False(t, result.Momentum.BelowZero)
		assert.NotContains(t, result.Momentum.Commentary, "零轴")
	})
}

func TestRecommendationTiers(t *testing.T) {
	engine := NewEngine()

	t.Run("all bullish", func(t *testing.T) {
		snap := fullSnapshot() // above both averages, neutral RSI, bullish cross, rising
		result := engine.Analyze(snap)
		assert.InDelta(t, 4.5, result.Score, 1e-9)
		assert.Equal(t, models.RecommendBullish, result.Recommendation)
		assert.Contains(t, result.Verdict, "积极看多")
	})

	t.Run("all bearish", func(t *testing.T) {
		snap := models.Snapshot{
			Close:      90,
			PrevClose:  92,
			SMA20:      models.Float(100),
			SMA50:      models.Float(95),
			BBHigh:     models.Float(112),
			BBLow:      models.Float(92),
			RSI:        models.Float(25),
			MACD:       models.Float(-2),
			MACDSignal: models.Float(-1),
		}
		result := engine.Analyze(snap)
		assert.InDelta(t, 0.0, result.Score, 1e-9)
		assert.Equal(t, models.RecommendCautious, result.Recommendation)
		assert.Contains(t, result.Verdict, "谨慎观望")
	})

	t.Run("mixed signals hold", func(t *testing.T) {
		snap := fullSnapshot()
		snap.SMA50 = models.Float(110) // below long average
		snap.MACD = models.Float(0.5)
		snap.MACDSignal = models.Float(0.8) // bearish cross
		result := engine.Analyze(snap)
		assert.InDelta(t, 2.5, result.Score, 1e-9)
		assert.Equal(t, models.RecommendNeutral, result.Recommendation)
		assert.Contains(t, result.Verdict, "中性持有")
	})

	t.Run("score boundary four is bullish", func(t *testing.T) {
		snap := fullSnapshot()
		snap.PrevClose = snap.Close // drop the half point
		result := engine.Analyze(snap)
		assert.InDelta(t, 4.0, result.Score, 1e-9)
		assert.Equal(t, models.RecommendBullish, result.Recommendation)
	})

	t.Run("score boundary one is cautious", func(t *testing.T) {
		snap := models.Snapshot{
			Close:      98,
			PrevClose:  99,
			SMA20:      models.Float(100),
			SMA50:      models.Float(95),
			BBHigh:     models.Float(112),
			BBLow:      models.Float(92),
			RSI:        models.Float(35), // outside 40-70
			MACD:       models.Float(-1),
			MACDSignal: models.Float(-0.5),
		}
		result := engine.Analyze(snap)
		assert.InDelta(t, 1.0, result.Score, 1e-9)
		assert.Equal(t, models.RecommendCautious, result.Recommendation)
	})
}

func TestUndefinedCellsContributeNothing(t *testing.T) {
	engine := NewEngine()

	snap := models.Snapshot{
		Close:     100,
		PrevClose: 99,
	}
	result := engine.Analyze(snap)

	// only the rising half point counts
	assert.InDelta(t, 0.5, result.Score, 1e-9)
	assert.Equal(t, models.RecommendCautious, result.Recommendation)
	assert.Equal(t, models.TrendShortTermPullback, result.Trend.Regime)
	assert.Equal(t, models.RSINeutral, result.Momentum.RSIBucket)
	assert.Contains(t, result.Band.Commentary, "数据不足")
}

func TestAnalyzePointsOrder(t *testing.T) {
	engine := NewEngine()
	result := engine.Analyze(fullSnapshot())

	require.Len(t, result.Points, 3)
	assert.Contains(t, result.Points[0], "均线趋势")
	assert.Contains(t, result.Points[1], "布林带形态")
	assert.Contains(t, result.Points[2], "动能指标")
}

func TestAnalyzeDeterministic(t *testing.T) {
	engine := NewEngine()
	snap := fullSnapshot()
	a := engine.Analyze(snap)
	b := engine.Analyze(snap)
	assert.Equal(t, a, b)
}
