package config

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DefaultRegionCode is used when an address cannot be classified.
const DefaultRegionCode = "34"

// RegionProfile controls the comparable search for one administrative
// region: how wide to look, how far back, and how many records the
// estimate should rest on.
type RegionProfile struct {
	SearchRadiusKm    float64 `json:"search_radius_km"`
	LookbackMonths    int     `json:"lookback_months"`
	MinimumSampleSize int     `json:"minimum_sample_size"`
}

// Prefecture is one entry of the fixed region table.
type Prefecture struct {
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	Center []float64 `json:"center"` // lat, lon of the prefectural capital
}

// Prefectures is the ordered region table used for address resolution.
// Resolution is first-match substring search, so the order is fixed.
var Prefectures = []Prefecture{
	{Code: "01", Name: "北海道", Center: []float64{43.0642, 141.3469}},
	{Code: "02", Name: "青森県", Center: []float64{40.8244, 140.7400}},
	{Code: "03", Name: "岩手県", Center: []float64{39.7036, 141.1527}},
	{Code: "04", Name: "宮城県", Center: []float64{38.2688, 140.8721}},
	{Code: "05", Name: "秋田県", Center: []float64{39.7186, 140.1024}},
	{Code: "06", Name: "山形県", Center: []float64{38.2404, 140.3633}},
	{Code: "07", Name: "福島県", Center: []float64{37.7500, 140.4678}},
	{Code: "08", Name: "茨城県", Center: []float64{36.3418, 140.4468}},
	{Code: "09", Name: "栃木県", Center: []float64{36.5657, 139.8836}},
	{Code: "10", Name: "群馬県", Center: []float64{36.3911, 139.0608}},
	{Code: "11", Name: "埼玉県", Center: []float64{35.8570, 139.6489}},
	{Code: "12", Name: "千葉県", Center: []float64{35.6047, 140.1233}},
	{Code: "13", Name: "東京都", Center: []float64{35.6895, 139.6917}},
	{Code: "14", Name: "神奈川県", Center: []float64{35.4478, 139.6425}},
	{Code: "15", Name: "新潟県", Center: []float64{37.9026, 139.0236}},
	{Code: "16", Name: "富山県", Center: []float64{36.6953, 137.2113}},
	{Code: "17", Name: "石川県", Center: []float64{36.5947, 136.6256}},
	{Code: "18", Name: "福井県", Center: []float64{36.0652, 136.2216}},
	{Code: "19", Name: "山梨県", Center: []float64{35.6642, 138.5684}},
	{Code: "20", Name: "長野県", Center: []float64{36.6513, 138.1810}},
	{Code: "21", Name: "岐阜県", Center: []float64{35.3912, 136.7223}},
	{Code: "22", Name: "静岡県", Center: []float64{34.9769, 138.3831}},
	{Code: "23", Name: "愛知県", Center: []float64{35.1802, 136.9066}},
	{Code: "24", Name: "三重県", Center: []float64{34.7303, 136.5086}},
	{Code: "25", Name: "滋賀県", Center: []float64{35.0045, 135.8686}},
	{Code: "26", Name: "京都府", Center: []float64{35.0212, 135.7556}},
	{Code: "27", Name: "大阪府", Center: []float64{34.6863, 135.5200}},
	{Code: "28", Name: "兵庫県", Center: []float64{34.6913, 135.1830}},
	{Code: "29", Name: "奈良県", Center: []float64{34.6851, 135.8050}},
	{Code: "30", Name: "和歌山県", Center: []float64{34.2260, 135.1675}},
	{Code: "31", Name: "鳥取県", Center: []float64{35.5039, 134.2377}},
	{Code: "32", Name: "島根県", Center: []float64{35.4723, 133.0505}},
	{Code: "33", Name: "岡山県", Center: []float64{34.6618, 133.9344}},
	{Code: "34", Name: "広島県", Center: []float64{34.3966, 132.4596}},
	{Code: "35", Name: "山口県", Center: []float64{34.1861, 131.4705}},
	{Code: "36", Name: "徳島県", Center: []float64{34.0658, 134.5593}},
	{Code: "37", Name: "香川県", Center: []float64{34.3401, 134.0434}},
	{Code: "38", Name: "愛媛県", Center: []float64{33.8417, 132.7657}},
	{Code: "39", Name: "高知県", Center: []float64{33.5597, 133.5311}},
	{Code: "40", Name: "福岡県", Center: []float64{33.6064, 130.4181}},
	{Code: "41", Name: "佐賀県", Center: []float64{33.2494, 130.2988}},
	{Code: "42", Name: "長崎県", Center: []float64{32.7448, 129.8737}},
	{Code: "43", Name: "熊本県", Center: []float64{32.7898, 130.7417}},
	{Code: "44", Name: "大分県", Center: []float64{33.2382, 131.6126}},
	{Code: "45", Name: "宮崎県", Center: []float64{31.9111, 131.4239}},
	{Code: "46", Name: "鹿児島県", Center: []float64{31.5602, 130.5581}},
	{Code: "47", Name: "沖縄県", Center: []float64{26.2124, 127.6809}},
}

// DefaultRegionProfile applies to every region without a tuned entry.
var DefaultRegionProfile = RegionProfile{
	SearchRadiusKm:    6,
	LookbackMonths:    120,
	MinimumSampleSize: 250,
}

// RegionProfiles holds per-region search tuning for markets with enough
// transaction volume to warrant it.
var RegionProfiles = map[string]RegionProfile{
	// Greater Tokyo
	"13": {SearchRadiusKm: 15, LookbackMonths: 120, MinimumSampleSize: 800},
	"14": {SearchRadiusKm: 12, LookbackMonths: 120, MinimumSampleSize: 600},
	"11": {SearchRadiusKm: 10, LookbackMonths: 120, MinimumSampleSize: 500},
	"12": {SearchRadiusKm: 10, LookbackMonths: 120, MinimumSampleSize: 500},

	// Kansai
	"27": {SearchRadiusKm: 12, LookbackMonths: 120, MinimumSampleSize: 700},
	"28": {SearchRadiusKm: 10, LookbackMonths: 120, MinimumSampleSize: 500},
	"26": {SearchRadiusKm: 10, LookbackMonths: 120, MinimumSampleSize: 400},
	"29": {SearchRadiusKm: 8, LookbackMonths: 120, MinimumSampleSize: 300},
	"30": {SearchRadiusKm: 8, LookbackMonths: 120, MinimumSampleSize: 250},

	// Chubu
	"23": {SearchRadiusKm: 10, LookbackMonths: 120, MinimumSampleSize: 500},
	"22": {SearchRadiusKm: 8, LookbackMonths: 120, MinimumSampleSize: 400},
	"21": {SearchRadiusKm: 8, LookbackMonths: 120, MinimumSampleSize: 300},

	// Other major markets
	"34": {SearchRadiusKm: 8, LookbackMonths: 120, MinimumSampleSize: 400},
	"40": {SearchRadiusKm: 8, LookbackMonths: 120, MinimumSampleSize: 400},
	"01": {SearchRadiusKm: 6, LookbackMonths: 120, MinimumSampleSize: 300},
}

// regionAdjacency is a static one-ring adjacency table used to broaden
// the comparable search when the primary region is too thin.
var regionAdjacency = map[string][]string{
	"13": {"11", "12", "14"},
	"27": {"26", "28", "29", "30"},
	"23": {"21", "22", "24"},
	"34": {"33", "35", "36"},
	"40": {"41", "42", "43"},
}

// ProfileFor returns the search profile for a region code, falling back
// to the default profile for unmapped codes. Never fails.
func ProfileFor(code string) RegionProfile {
	if profile, ok := RegionProfiles[code]; ok {
		return profile
	}
	return DefaultRegionProfile
}

// PrefectureByCode returns the region table entry for a code, or nil.
func PrefectureByCode(code string) *Prefecture {
	for i := range Prefectures {
		if Prefectures[i].Code == code {
			return &Prefectures[i]
		}
	}
	return nil
}

// NeighborRegions returns the adjacency ring for a region, ordered by
// great-circle distance between prefectural capitals so the closest
// market is queried first. Regions without an entry have no ring.
func NeighborRegions(code string) []string {
	ring, ok := regionAdjacency[code]
	if !ok {
		return nil
	}

	neighbors := make([]string, len(ring))
	copy(neighbors, ring)

	origin := PrefectureByCode(code)
	if origin == nil {
		return neighbors
	}
	originPt := centerPoint(origin)

	sort.SliceStable(neighbors, func(i, j int) bool {
		pi := PrefectureByCode(neighbors[i])
		pj := PrefectureByCode(neighbors[j])
		if pi == nil || pj == nil {
			return false
		}
		return geo.Distance(originPt, centerPoint(pi)) < geo.Distance(originPt, centerPoint(pj))
	})

	return neighbors
}

func centerPoint(p *Prefecture) orb.Point {
	// orb points are lon/lat
	return orb.Point{p.Center[1], p.Center[0]}
}
