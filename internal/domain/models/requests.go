package models

// Requests for prediction HTTP endpoints. Defined in domain for consistency and reuse.

type PredictionRequest struct {
	Symbol    string `json:"symbol" validate:"required"`
	Timeframe string `json:"timeframe" default:"7d" validate:"oneof=7d 14d 30d"`
}

type EnsemblePredictionRequest struct {
	Symbol         string  `json:"symbol" validate:"required"`
	Timeframe      string  `json:"timeframe" default:"7d" validate:"oneof=7d 14d 30d"`
	EnsembleMethod string  `json:"ensemble_method" default:"weighted_average" validate:"oneof=weighted_average majority_voting max_confidence"`
	MinConfidence  float64 `json:"min_confidence" default:"0.3" validate:"gte=0,lte=1"`
}

type RiskScoreRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	// Optional portfolio allocation in [0,1]; informational only.
	PortfolioAllocation *float64 `json:"portfolio_allocation,omitempty" validate:"omitempty,gte=0,lte=1"`
}
