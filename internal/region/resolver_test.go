package region

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"sateihub/server/config"
)

func TestResolve(t *testing.T) {
	resolver := NewResolver(logrus.New(), nil)

	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{"Tokyo address", "東京都新宿区西新宿1-1-1", "13"},
		{"Osaka address", "大阪府大阪市北区梅田2-2-2", "27"},
		{"Hokkaido address", "北海道札幌市中央区北1条", "01"},
		{"Kyoto address", "京都府京都市左京区", "26"},
		{"Foreign address degrades to default", "1600 Pennsylvania Avenue", config.DefaultRegionCode},
		{"Empty address degrades to default", "", config.DefaultRegionCode},
		{"City only without prefecture degrades to default", "札幌市中央区", config.DefaultRegionCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolver.Resolve(tt.address))
		})
	}
}

func TestResolveUsesCache(t *testing.T) {
	cache := NewMapCache()
	resolver := NewResolver(logrus.New(), cache)

	assert.Equal(t, "13", resolver.Resolve("東京都千代田区丸の内1-1"))

	code, ok := cache.Get("東京都千代田区丸の内1-1")
	assert.True(t, ok)
	assert.Equal(t, "13", code)

	// A poisoned cache entry is returned as-is, proving the cache is hit.
	cache.Set("東京都千代田区丸の内1-1", "27")
	assert.Equal(t, "27", resolver.Resolve("東京都千代田区丸の内1-1"))
}

func TestProfileForAlwaysReturns(t *testing.T) {
	resolver := NewResolver(nil, nil)

	profile := resolver.ProfileFor("13")
	assert.Equal(t, 800, profile.MinimumSampleSize)

	fallback := resolver.ProfileFor("not-a-code")
	assert.Equal(t, config.DefaultRegionProfile, fallback)
}
