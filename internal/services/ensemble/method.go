package ensemble

import "Coinsight/internal/domain/models"

// Method is the closed set of combination rules. Unknown names are rejected
// at the configuration boundary by ParseMethod, never at combination time.
type Method int

const (
	WeightedAverage Method = iota
	MajorityVoting
	MaxConfidence
)

func (m Method) String() string {
	switch m {
	case WeightedAverage:
		return "weighted_average"
	case MajorityVoting:
		return "majority_voting"
	case MaxConfidence:
		return "max_confidence"
	default:
		return "unknown"
	}
}

// ParseMethod maps a wire name to a Method. Fatal configuration error on
// unrecognized input.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "weighted_average":
		return WeightedAverage, nil
	case "majority_voting":
		return MajorityVoting, nil
	case "max_confidence":
		return MaxConfidence, nil
	default:
		return 0, &models.UnknownMethodError{Method: s}
	}
}
