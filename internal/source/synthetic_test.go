package source

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sateihub/server/internal/models"
)

func TestFilterValid(t *testing.T) {
	records := []models.RawComparable{
		{Address: "東京都新宿区", Price: 32_000_000, AreaSqm: 68},
		{Address: "東京都新宿区", Price: 1_000_000, AreaSqm: 68},  // at price threshold
		{Address: "東京都新宿区", Price: 32_000_000, AreaSqm: 20}, // at area threshold
		{Address: "", Price: 32_000_000, AreaSqm: 68},
		{Address: "東京都新宿区", Price: 1_000_001, AreaSqm: 20.5},
	}

	valid := FilterValid(records)
	require.Len(t, valid, 2)
	assert.Equal(t, int64(32_000_000), valid[0].Price)
	assert.Equal(t, int64(1_000_001), valid[1].Price)
}

func TestFilterValidEmpty(t *testing.T) {
	assert.Empty(t, FilterValid(nil))
	assert.Empty(t, FilterValid([]models.RawComparable{}))
}

func TestSyntheticGenerate(t *testing.T) {
	target := SyntheticTarget{
		Address:      "広島県広島市中区大手町1丁目",
		AreaSqm:      70,
		AgeYears:     12,
		Purpose:      models.PurposeSale,
		PropertyType: models.PropertyResidential,
	}

	src := NewSyntheticSource()
	records := src.Generate(rand.New(rand.NewSource(42)), target, 250)
	require.Len(t, records, 250)

	base := EstimateBasePrice(target.AreaSqm, target.AgeYears, target.PropertyType)
	for i, r := range records {
		assert.NotEmpty(t, r.Address)
		assert.Contains(t, r.Address, target.Address)
		assert.GreaterOrEqual(t, float64(r.Price), base*0.7-1)
		assert.LessOrEqual(t, float64(r.Price), base*1.3+1)
		assert.GreaterOrEqual(t, r.AgeYears, 0)
		assert.Equal(t, models.PurposeSale, r.Purpose)
		if i > 0 {
			assert.GreaterOrEqual(t, r.Price, records[i-1].Price)
		}
	}
}

func TestSyntheticGenerateDeterministic(t *testing.T) {
	target := SyntheticTarget{Address: "東京都新宿区西新宿", AreaSqm: 55, AgeYears: 8}

	src := NewSyntheticSource()
	first := src.Generate(rand.New(rand.NewSource(7)), target, 50)
	second := src.Generate(rand.New(rand.NewSource(7)), target, 50)
	assert.Equal(t, first, second)

	third := src.Generate(rand.New(rand.NewSource(8)), target, 50)
	assert.NotEqual(t, first, third)
}

func TestEstimateBasePrice(t *testing.T) {
	tests := []struct {
		name         string
		area         float64
		age          int
		propertyType models.PropertyType
		expected     float64
	}{
		{"new residential", 70, 0, models.PropertyResidential, 42_000_000},
		{"aged residential", 70, 10, models.PropertyResidential, 33_600_000},
		{"depreciation floor", 70, 40, models.PropertyResidential, 21_000_000},
		{"commercial", 100, 0, models.PropertyCommercial, 80_000_000},
		{"unknown type uses default", 100, 0, models.PropertyType("castle"), 50_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EstimateBasePrice(tt.area, tt.age, tt.propertyType), 0.01)
		})
	}
}
