package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected RegionProfile
	}{
		{
			name:     "Tokyo has a tuned profile",
			code:     "13",
			expected: RegionProfile{SearchRadiusKm: 15, LookbackMonths: 120, MinimumSampleSize: 800},
		},
		{
			name:     "Osaka has a tuned profile",
			code:     "27",
			expected: RegionProfile{SearchRadiusKm: 12, LookbackMonths: 120, MinimumSampleSize: 700},
		},
		{
			name:     "Unmapped region falls back to the default",
			code:     "47",
			expected: DefaultRegionProfile,
		},
		{
			name:     "Unknown code falls back to the default",
			code:     "99",
			expected: DefaultRegionProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProfileFor(tt.code))
		})
	}
}

func TestEveryProfiledRegionExists(t *testing.T) {
	for code := range RegionProfiles {
		assert.NotNil(t, PrefectureByCode(code), "profile for %s has no region entry", code)
	}
}

func TestNeighborRegions(t *testing.T) {
	t.Run("Tokyo ring ordered by distance", func(t *testing.T) {
		neighbors := NeighborRegions("13")
		require.Len(t, neighbors, 3)
		// Saitama and Kanagawa capitals are both closer to Tokyo than Chiba
		assert.ElementsMatch(t, []string{"11", "12", "14"}, neighbors)
		assert.Equal(t, "12", neighbors[len(neighbors)-1])
	})

	t.Run("region without a ring", func(t *testing.T) {
		assert.Nil(t, NeighborRegions("47"))
	})

	t.Run("ring is a copy", func(t *testing.T) {
		first := NeighborRegions("27")
		first[0] = "mutated"
		assert.NotContains(t, NeighborRegions("27"), "mutated")
	})
}

func TestPrefectureTableIsComplete(t *testing.T) {
	require.Len(t, Prefectures, 47)
	assert.Equal(t, "01", Prefectures[0].Code)
	assert.Equal(t, "47", Prefectures[len(Prefectures)-1].Code)
	for _, p := range Prefectures {
		assert.Len(t, p.Center, 2, "prefecture %s center", p.Name)
	}
}
