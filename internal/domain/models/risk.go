package models

import "time"

// RiskFactor is one component of the composite risk score.
type RiskFactor struct {
	Value float64 `json:"value"`
	Score int     `json:"score"`
	Risk  string  `json:"risk"` // low / medium / high
}

// RiskFactors is the per-factor breakdown of a risk assessment.
type RiskFactors struct {
	Volatility       RiskFactor `json:"volatility"`
	PriceSwings      RiskFactor `json:"priceSwings"`
	VolumeVolatility RiskFactor `json:"volumeVolatility"`
	TrendStrength    RiskFactor `json:"trendStrength"`
}

// RiskAssessment is the model-free composite risk score for a symbol.
type RiskAssessment struct {
	Symbol         string      `json:"symbol"`
	RiskScore      int         `json:"riskScore"` // 0-100
	RiskLevel      string      `json:"riskLevel"` // low / medium / high / extreme
	RiskFactors    RiskFactors `json:"riskFactors"`
	Warnings       []string    `json:"warnings"`
	AnalyzedAt     time.Time   `json:"analyzedAt"`
	CacheExpiresAt time.Time   `json:"cacheExpiresAt"`
}
