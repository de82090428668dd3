package models

// TrendRegime is the 4-way moving-average alignment classification.
type TrendRegime string

const (
	TrendBullishAlignment TrendRegime = "bullish_alignment" // 多头排列
	TrendBearishAlignment TrendRegime = "bearish_alignment" // 空头排列
	TrendShortTermRebound TrendRegime = "short_term_rebound" // 短期反弹
	TrendShortTermPullback TrendRegime = "short_term_pullback" // 短期回调
)

// BandBreak describes the price position relative to the Bollinger channel.
type BandBreak string

const (
	BandAboveUpper BandBreak = "above_upper"
	BandBelowLower BandBreak = "below_lower"
	BandInside     BandBreak = "inside"
)

// RSIBucket classifies the RSI reading.
type RSIBucket string

const (
	RSIOverbought RSIBucket = "overbought"
	RSIOversold   RSIBucket = "oversold"
	RSINeutral    RSIBucket = "neutral"
)

// MACDCross is the MACD line vs signal line relationship.
type MACDCross string

const (
	MACDBullishCross MACDCross = "bullish_cross" // 金叉
	MACDBearishCross MACDCross = "bearish_cross" // 死叉
)

// Recommendation is the 3-tier composite verdict.
type Recommendation string

const (
	RecommendBullish  Recommendation = "bullish"      // 积极看多
	RecommendNeutral  Recommendation = "neutral_hold" // 中性持有
	RecommendCautious Recommendation = "cautious_wait" // 谨慎观望
)

// BandPosition is the Bollinger channel finding.
type BandPosition struct {
	Break       BandBreak `json:"break"`
	PositionPct NullFloat `json:"position_pct"` // 0-100 inside channel, undefined on breaks
	Squeeze     bool      `json:"squeeze"`
	Commentary  string    `json:"commentary"`
}

// TrendFinding is the moving-average regime finding.
type TrendFinding struct {
	Regime     TrendRegime `json:"regime"`
	Label      string      `json:"label"`
	Commentary string      `json:"commentary"`
}

// MomentumFinding groups the RSI and MACD readings.
type MomentumFinding struct {
	RSI        NullFloat `json:"rsi"`
	RSIBucket  RSIBucket `json:"rsi_bucket"`
	Cross      MACDCross `json:"macd_cross"`
	AboveZero  bool      `json:"above_zero"`  // both MACD and signal positive
	BelowZero  bool      `json:"below_zero"`  // both MACD and signal negative
	Commentary string    `json:"commentary"`
}

// Narrative is the full rule-engine output for one snapshot.
type Narrative struct {
	Trend          TrendFinding    `json:"trend"`
	Band           BandPosition    `json:"band"`
	Momentum       MomentumFinding `json:"momentum"`
	Score          float64         `json:"score"`
	Recommendation Recommendation  `json:"recommendation"`
	Verdict        string          `json:"verdict"`
	Points         []string        `json:"points"` // ordered templated sentences
}
