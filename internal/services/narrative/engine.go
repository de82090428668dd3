// Package narrative turns an indicator snapshot into a templated
// Chinese-language technical reading.
package narrative

import (
	"fmt"

	"github.com/hklens/hklens/internal/models"
)

// Thresholds for the momentum and composite rules.
const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0

	// channel width below this fraction of close counts as a squeeze
	squeezeRatio = 0.05

	bullishScore  = 4.0
	cautiousScore = 1.0
)

// Engine derives a rule-based narrative from the latest indicator row.
// It is pure and deterministic: the same snapshot always yields the
// same wording.
type Engine struct{}

// NewEngine creates a narrative engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze evaluates the full rule set against a snapshot.
func (e *Engine) Analyze(snap models.Snapshot) *models.Narrative {
	trend := e.analyzeTrend(snap)
	band := e.analyzeBand(snap)
	momentum := e.analyzeMomentum(snap)
	score, recommendation, verdict := e.recommend(snap)

	return &models.Narrative{
		Trend:          trend,
		Band:           band,
		Momentum:       momentum,
		Score:          score,
		Recommendation: recommendation,
		Verdict:        verdict,
		Points: []string{
			fmt.Sprintf("均线趋势 (%s): %s", trend.Label, trend.Commentary),
			"布林带形态: " + band.Commentary,
			"动能指标: " + momentum.Commentary,
		},
	}
}

// analyzeTrend classifies the close against the 20 and 50 day averages.
// All comparisons are strict: a close sitting exactly on an average does
// not count as above it, so equality falls through to the weaker branch.
func (e *Engine) analyzeTrend(snap models.Snapshot) models.TrendFinding {
	aboveShort := snap.SMA20.Valid && snap.Close > snap.SMA20.Float64
	aboveLong := snap.SMA50.Valid && snap.Close > snap.SMA50.Float64
	belowShort := snap.SMA20.Valid && snap.Close < snap.SMA20.Float64
	belowLong := snap.SMA50.Valid && snap.Close < snap.SMA50.Float64

	switch {
	case aboveShort && aboveLong:
		return models.TrendFinding{
			Regime:     models.TrendBullishAlignment,
			Label:      "多头排列",
			Commentary: "股价稳居20日和50日均线上方，短期与中期趋势均表现强势，属于典型的上升通道。",
		}
	case belowShort && belowLong:
		return models.TrendFinding{
			Regime:     models.TrendBearishAlignment,
			Label:      "空头排列",
			Commentary: "股价受制于20日和50日均线压制，市场情绪偏弱，处于下跌趋势中。",
		}
	case aboveShort:
		return models.TrendFinding{
			Regime:     models.TrendShortTermRebound,
			Label:      "短期反弹",
			Commentary: "股价站上20日均线，显示短期有反弹迹象，但需关注上方50日均线压力。",
		}
	default:
		return models.TrendFinding{
			Regime:     models.TrendShortTermPullback,
			Label:      "短期回调",
			Commentary: "股价跌破20日均线，短期可能面临调整，下方关注50日均线支撑。",
		}
	}
}

// analyzeBand positions the close within the Bollinger channel. The
// in-channel position is reported as a 0-100 percentage; a channel
// narrower than 5% of the close flags an impending squeeze.
func (e *Engine) analyzeBand(snap models.Snapshot) models.BandPosition {
	if !snap.BBHigh.Valid || !snap.BBLow.Valid {
		return models.BandPosition{
			Break:      models.BandInside,
			Commentary: "布林带数据不足，暂无法判断通道位置。",
		}
	}

	high, low := snap.BBHigh.Float64, snap.BBLow.Float64
	switch {
	case snap.Close > high:
		return models.BandPosition{
			Break:      models.BandAboveUpper,
			Commentary: "股价突破布林带上轨，表明短期上涨动能极强，但也需警惕乖离率过大带来的回调风险。",
		}
	case snap.Close < low:
		return models.BandPosition{
			Break:      models.BandBelowLower,
			Commentary: "股价跌破布林带下轨，处于极端弱势区域，可能存在超跌反弹机会。",
		}
	}

	band := models.BandPosition{Break: models.BandInside}
	if high > low {
		band.PositionPct = models.Float((snap.Close - low) / (high - low) * 100)
	} else {
		// collapsed channel, price pinned at both rails
		band.PositionPct = models.Float(50)
	}
	band.Commentary = fmt.Sprintf("股价处于布林带通道内部 (位置: %.1f%%)，波动相对正常。", band.PositionPct.Float64)

	if high-low < snap.Close*squeezeRatio {
		band.Squeeze = true
		band.Commentary += " 通道收窄，预示着变盘在即。"
	}
	return band
}

// analyzeMomentum buckets the RSI and reads the MACD cross. Zero-axis
// commentary is added only when both the MACD line and its signal sit on
// the same side of zero.
func (e *Engine) analyzeMomentum(snap models.Snapshot) models.MomentumFinding {
	finding := models.MomentumFinding{
		RSI:       snap.RSI,
		RSIBucket: models.RSINeutral,
	}

	rsiLabel := "中性"
	if snap.RSI.Valid {
		switch {
		case snap.RSI.Float64 > rsiOverbought:
			finding.RSIBucket = models.RSIOverbought
			rsiLabel = "超买"
		case snap.RSI.Float64 < rsiOversold:
			finding.RSIBucket = models.RSIOversold
			rsiLabel = "超卖"
		}
	}

	macd := snap.MACD.Or(0)
	signal := snap.MACDSignal.Or(0)

	crossLabel := "死叉"
	crossDesc := "MACD线下穿信号线，发出卖出信号。"
	finding.Cross = models.MACDBearishCross
	if macd > signal {
		finding.Cross = models.MACDBullishCross
		crossLabel = "金叉"
		crossDesc = "MACD线上穿信号线，发出买入信号。"
	}

	if macd > 0 && signal > 0 {
		finding.AboveZero = true
		crossDesc += " 且MACD处于零轴上方，多头主导。"
	} else if macd < 0 && signal < 0 {
		finding.BelowZero = true
		crossDesc += " 且MACD处于零轴下方，空头主导。"
	}

	finding.Commentary = fmt.Sprintf("RSI为 %.1f (%s)。MACD呈现 %s，%s", snap.RSI.Or(0), rsiLabel, crossLabel, crossDesc)
	return finding
}

// recommend computes the composite score and maps it to the 3-tier
// verdict. Undefined cells contribute nothing to the score.
func (e *Engine) recommend(snap models.Snapshot) (float64, models.Recommendation, string) {
	score := 0.0
	if snap.SMA20.Valid && snap.Close > snap.SMA20.Float64 {
		score++
	}
	if snap.SMA50.Valid && snap.Close > snap.SMA50.Float64 {
		score++
	}
	if snap.RSI.Valid && snap.RSI.Float64 > 40 && snap.RSI.Float64 < 70 {
		score++
	}
	if snap.MACD.Valid && snap.MACDSignal.Valid && snap.MACD.Float64 > snap.MACDSignal.Float64 {
		score++
	}
	if snap.Close > snap.PrevClose {
		score += 0.5
	}

	switch {
	case score >= bullishScore:
		return score, models.RecommendBullish, "综合评级: 积极看多 - 各项指标配合良好，可考虑逢低介入或持有。"
	case score <= cautiousScore:
		return score, models.RecommendCautious, "综合评级: 谨慎观望 - 技术面偏弱，建议等待趋势明朗。"
	default:
		return score, models.RecommendNeutral, "综合评级: 中性持有 - 多空力量胶着，建议关注关键支撑/压力位的得失。"
	}
}
