package correction

import (
	"math"

	"github.com/shopspring/decimal"

	"sateihub/server/internal/models"
)

// Target is the property being valued, reduced to the attributes the
// correction factors depend on.
type Target struct {
	AreaSqm  float64
	AgeYears int
}

// Model applies independent multiplicative adjustments to a comparable's
// price for distance, floor-area mismatch, and age difference. All
// factors are pure functions of their inputs.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// Correct produces the corrected comparable for one raw record.
func (m *Model) Correct(target Target, comparable models.RawComparable, pseudoDistanceKm float64) models.CorrectedComparable {
	distanceFactor := DistanceFactor(pseudoDistanceKm)
	areaFactor := AreaFactor(target.AreaSqm, comparable.AreaSqm)
	ageFactor := AgeFactor(target.AgeYears, comparable.AgeYears)
	totalFactor := distanceFactor * areaFactor * ageFactor

	corrected := decimal.NewFromInt(comparable.Price).
		Mul(decimal.NewFromFloat(totalFactor)).
		Round(0).
		IntPart()

	return models.CorrectedComparable{
		RawComparable:    comparable,
		PseudoDistanceKm: pseudoDistanceKm,
		DistanceFactor:   distanceFactor,
		AreaFactor:       areaFactor,
		AgeFactor:        ageFactor,
		TotalFactor:      totalFactor,
		CorrectedPrice:   corrected,
	}
}

// DistanceFactor weights closer comparables up and distant ones down on
// a meter-normalized scale, floored at 0.7.
func DistanceFactor(distanceKm float64) float64 {
	meters := distanceKm * 1000
	return math.Max(0.7, 1-(meters/2000)*0.3)
}

// AreaFactor compares the comparable's floor area to the target's.
// Within 20% no adjustment is made; a much smaller comparable widens the
// estimate toward the subject, a much larger one narrows it.
func AreaFactor(targetArea, comparableArea float64) float64 {
	if targetArea <= 0 || comparableArea <= 0 {
		return 1.0
	}

	ratio := comparableArea / targetArea
	switch {
	case ratio >= 0.8 && ratio <= 1.2:
		return 1.0
	case ratio < 0.8:
		return 0.9
	default:
		return 1.1
	}
}

// AgeFactor discounts comparables by how far their building age is from
// the target's.
func AgeFactor(targetAge, comparableAge int) float64 {
	diff := targetAge - comparableAge
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= 5:
		return 1.0
	case diff <= 10:
		return 0.95
	case diff <= 20:
		return 0.9
	default:
		return 0.85
	}
}
