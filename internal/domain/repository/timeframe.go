package repository

import "Coinsight/internal/domain/models"

// Timeframe is a supported prediction horizon.
type Timeframe string

const (
	TF7d  Timeframe = "7d"
	TF14d Timeframe = "14d"
	TF30d Timeframe = "30d"
)

// Days returns the horizon length in days.
func (tf Timeframe) Days() int {
	switch tf {
	case TF7d:
		return 7
	case TF14d:
		return 14
	case TF30d:
		return 30
	default:
		return 0
	}
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF7d, TF14d, TF30d:
		return true
	default:
		return false
	}
}

// ParseTimeframe validates a raw string. Bad values are a validation-class
// error, not silently normalized.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !IsValidTimeframe(tf) {
		return "", &models.InvalidTimeframeError{Timeframe: s}
	}
	return tf, nil
}

// AllTimeframes lists every supported horizon, used by cache invalidation.
func AllTimeframes() []Timeframe {
	return []Timeframe{TF7d, TF14d, TF30d}
}
