package attribution

import (
	"math"

	"github.com/kbukum/minutes/errors"
)

// Confidence thresholds used for the two item kinds.
const (
	ActionItemThreshold = 0.7
	// CommitmentThreshold is higher because implicit commitments are inferred, not stated.
	CommitmentThreshold = 0.8
)

// ValidateThreshold returns INVALID_THRESHOLD unless 0 <= threshold <= 1.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return errors.InvalidThreshold(threshold)
	}
	return nil
}

// FilterByConfidence returns the items whose confidence is at least
// threshold, in their original order.
func FilterByConfidence(items []RawItem, threshold float64) ([]RawItem, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	out := make([]RawItem, 0, len(items))
	for _, item := range items {
		if Confidence(item) >= threshold {
			out = append(out, item)
		}
	}
	return out, nil
}
