package source

import (
	"context"

	"sateihub/server/internal/models"
)

// Validity thresholds applied to every record before acceptance.
// Records at or below these bounds are treated as data errors and
// dropped, never surfaced as failures.
const (
	MinimumPriceThreshold = 1_000_000
	MinimumAreaThreshold  = 20.0
)

// ComparableSource returns raw comparable transactions for one region
// and one target year. Implementations may fail per call; callers treat
// a failed call as zero records and move on.
type ComparableSource interface {
	Fetch(ctx context.Context, regionCode string, year int) ([]models.RawComparable, error)
}

// FilterValid drops records failing the validity thresholds. Malformed
// or partially populated records are filterable, never a crash.
func FilterValid(records []models.RawComparable) []models.RawComparable {
	valid := make([]models.RawComparable, 0, len(records))
	for _, r := range records {
		if r.Price <= MinimumPriceThreshold {
			continue
		}
		if r.AreaSqm <= MinimumAreaThreshold {
			continue
		}
		if r.Address == "" {
			continue
		}
		valid = append(valid, r)
	}
	return valid
}
