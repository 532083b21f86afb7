package insight

import (
	"fmt"
	"sort"

	"sateihub/server/internal/models"
)

// trendWindowShare is the share of comparables, sorted by
// pseudo-distance, compared at each end for the price trend.
const trendWindowShare = 0.3

// temperatureBands maps price-per-sqm to a market temperature label.
// Ordered high to low; the first band whose floor is exceeded wins.
var temperatureBands = []struct {
	MinPricePerSqm float64
	Label          models.MarketTrend
}{
	{200_000, models.MarketHigh},
	{150_000, models.MarketRising},
	{100_000, models.MarketStable},
	{0, models.MarketLow},
}

// investmentRubric scores a property for investment value. Points are
// summed over all matching rows.
var investmentRubric = []struct {
	Points  int
	Applies func(pricePerSqm float64, ageYears, sampleCount int) bool
}{
	// price per sqm in the sweet spot between affordable and overheated
	{2, func(pps float64, _, _ int) bool { return pps >= 120_000 && pps <= 180_000 }},
	// young enough that major renovation is still far off
	{2, func(_ float64, age, _ int) bool { return age <= 15 }},
	// enough evidence to trust the numbers
	{1, func(_ float64, _, n int) bool { return n >= 20 }},
}

// Analyzer derives market-trend insights from corrected comparables.
// All output is deterministic given identical inputs.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analysis is the full insight output for one valuation.
type Analysis struct {
	PriceTrend      models.PriceTrend
	MarketTrend     models.MarketTrend
	InvestmentValue models.InvestmentValue
	Insights        []string
}

// Analyze runs every insight derivation over the corrected set.
// targetArea and targetAge describe the property being valued.
func (a *Analyzer) Analyze(corrected []models.CorrectedComparable, targetArea float64, targetAge int) Analysis {
	avgPrice := averageCorrectedPrice(corrected)
	pricePerSqm := 0.0
	if targetArea > 0 {
		pricePerSqm = avgPrice / targetArea
	}

	return Analysis{
		PriceTrend:      a.PriceTrend(corrected),
		MarketTrend:     a.MarketTemperature(pricePerSqm),
		InvestmentValue: a.InvestmentValue(pricePerSqm, targetAge, len(corrected)),
		Insights:        a.InsightBullets(pricePerSqm, targetAge, len(corrected)),
	}
}

// PriceTrend compares the nearest 30% of comparables against the
// farthest 30% by pseudo-distance. Distance stands in for recency when
// transaction dates are absent; this is a domain approximation, not a
// measurement.
func (a *Analyzer) PriceTrend(corrected []models.CorrectedComparable) models.PriceTrend {
	if len(corrected) < 5 {
		return models.TrendStable
	}

	byDistance := make([]models.CorrectedComparable, len(corrected))
	copy(byDistance, corrected)
	sort.SliceStable(byDistance, func(i, j int) bool {
		return byDistance[i].PseudoDistanceKm < byDistance[j].PseudoDistanceKm
	})

	window := int(float64(len(byDistance)) * trendWindowShare)
	nearAvg := averageCorrectedPrice(byDistance[:window])
	farAvg := averageCorrectedPrice(byDistance[len(byDistance)-window:])

	change := (nearAvg - farAvg) / farAvg * 100
	switch {
	case change > 5:
		return models.TrendRising
	case change < -5:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// MarketTemperature classifies the local market by average corrected
// price per square meter.
func (a *Analyzer) MarketTemperature(pricePerSqm float64) models.MarketTrend {
	for _, band := range temperatureBands {
		if pricePerSqm > band.MinPricePerSqm {
			return band.Label
		}
	}
	return models.MarketLow
}

// InvestmentValue scores the property against the investment rubric.
func (a *Analyzer) InvestmentValue(pricePerSqm float64, ageYears, sampleCount int) models.InvestmentValue {
	score := 0
	for _, row := range investmentRubric {
		if row.Applies(pricePerSqm, ageYears, sampleCount) {
			score += row.Points
		}
	}

	switch {
	case score >= 4:
		return models.InvestmentHigh
	case score >= 2:
		return models.InvestmentMedium
	default:
		return models.InvestmentLow
	}
}

// InsightBullets produces the ordered, human-readable observation list:
// sample adequacy first, then price band and age band when notable.
func (a *Analyzer) InsightBullets(pricePerSqm float64, ageYears, sampleCount int) []string {
	insights := make([]string, 0, 4)

	if sampleCount >= 20 {
		insights = append(insights, fmt.Sprintf("Estimate is based on %d comparable transactions in the surrounding market", sampleCount))
	} else {
		insights = append(insights, fmt.Sprintf("Estimate is based on %d comparable transactions; more data would improve precision", sampleCount))
	}

	if pricePerSqm > 200_000 {
		insights = append(insights, "The area trades at premium prices, which may indicate strong investment value")
	} else if pricePerSqm > 0 && pricePerSqm < 100_000 {
		insights = append(insights, "The area trades at below-average prices, which may present a buying opportunity")
	}

	if ageYears <= 10 {
		insights = append(insights, "The building is relatively new, keeping near-term maintenance costs low")
	} else if ageYears >= 25 {
		insights = append(insights, "The building's age suggests budgeting for renovation and maintenance")
	}

	return insights
}

func averageCorrectedPrice(corrected []models.CorrectedComparable) float64 {
	if len(corrected) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range corrected {
		sum += float64(c.CorrectedPrice)
	}
	return sum / float64(len(corrected))
}
