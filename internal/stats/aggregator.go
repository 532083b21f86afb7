package stats

import (
	"errors"
	"math"
	"sort"

	"sateihub/server/internal/models"
)

// ErrInsufficientData is returned when there are no corrected
// comparables to aggregate. Callers are expected to fall back to a
// default estimate rather than surface this to the end user.
var ErrInsufficientData = errors.New("no comparables to aggregate")

// priceRangeIncrement is the display granularity of price range bounds.
const priceRangeIncrement = 10_000

// Aggregator computes summary statistics over corrected prices. It is
// stateless and deterministic: aggregating the same list twice yields
// identical results.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate computes mean, median, an IQR-fenced filtered mean, and a
// normal-approximation 95% confidence interval over corrected prices.
func (a *Aggregator) Aggregate(corrected []models.CorrectedComparable) (models.AggregateStatistics, error) {
	if len(corrected) == 0 {
		return models.AggregateStatistics{}, ErrInsufficientData
	}

	prices := make([]float64, len(corrected))
	for i, c := range corrected {
		prices[i] = float64(c.CorrectedPrice)
	}

	filtered := removeOutliers(prices)
	filteredMean := mean(filtered)
	margin := 1.96 * stdDev(filtered) / math.Sqrt(float64(len(filtered)))

	return models.AggregateStatistics{
		MeanPrice:         round(mean(prices)),
		MedianPrice:       round(median(prices)),
		FilteredMeanPrice: round(filteredMean),
		ConfidenceInterval: models.ConfidenceInterval{
			Lower:         round(filteredMean - margin),
			Upper:         round(filteredMean + margin),
			MarginOfError: round(margin),
		},
		SampleCount:         len(prices),
		FilteredSampleCount: len(filtered),
	}, nil
}

// PriceRange derives the human-facing price range from the confidence
// interval: bounds floored to the nearest 10,000-unit increment, with
// the lower bound clamped positive.
func (a *Aggregator) PriceRange(stats models.AggregateStatistics) (low, high int64) {
	low = floorToIncrement(stats.ConfidenceInterval.Lower)
	high = floorToIncrement(stats.ConfidenceInterval.Upper)

	if low < priceRangeIncrement {
		low = priceRangeIncrement
	}
	if high < low {
		high = low
	}
	return low, high
}

// ConfidenceLabel rates a result by sample count alone. Interval width
// is deliberately not considered; keep the behavior stable for callers
// that key off these labels.
func (a *Aggregator) ConfidenceLabel(sampleCount int) models.ConfidenceLabel {
	switch {
	case sampleCount < 10:
		return models.ConfidenceLow
	case sampleCount < 30:
		return models.ConfidenceMedium
	case sampleCount < 100:
		return models.ConfidenceHigh
	default:
		return models.ConfidenceVeryHigh
	}
}

// removeOutliers drops values outside the classic 1.5-IQR fences.
func removeOutliers(prices []float64) []float64 {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	q1 := sorted[int(float64(len(sorted))*0.25)]
	q3 := sorted[int(float64(len(sorted))*0.75)]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	filtered := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p >= lower && p <= upper {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	middle := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[middle-1] + sorted[middle]) / 2
	}
	return sorted[middle]
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round(v float64) int64 {
	return int64(math.Round(v))
}

func floorToIncrement(v int64) int64 {
	return int64(math.Floor(float64(v)/priceRangeIncrement)) * priceRangeIncrement
}
