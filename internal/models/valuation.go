package models

// ConfidenceLabel is the coarse, sample-size-only confidence rating of a
// valuation. It deliberately ignores interval width; see the aggregator.
type ConfidenceLabel string

const (
	ConfidenceLow      ConfidenceLabel = "low"
	ConfidenceMedium   ConfidenceLabel = "medium"
	ConfidenceHigh     ConfidenceLabel = "high"
	ConfidenceVeryHigh ConfidenceLabel = "very_high"
)

// DataOrigin tags where the comparables behind a result came from.
type DataOrigin string

const (
	OriginLive      DataOrigin = "live"
	OriginSynthetic DataOrigin = "synthetic"
)

// DataQuality is a coarse indicator of how much to trust a result.
type DataQuality string

const (
	QualityGood     DataQuality = "good"
	QualityLimited  DataQuality = "limited"
	QualityFallback DataQuality = "fallback"
)

// Trend labels for market insight output.
type (
	PriceTrend      string
	MarketTrend     string
	InvestmentValue string
)

const (
	TrendRising    PriceTrend = "rising"
	TrendDeclining PriceTrend = "declining"
	TrendStable    PriceTrend = "stable"

	MarketHigh   MarketTrend = "high"
	MarketRising MarketTrend = "rising"
	MarketStable MarketTrend = "stable"
	MarketLow    MarketTrend = "low"

	InvestmentHigh   InvestmentValue = "high"
	InvestmentMedium InvestmentValue = "medium"
	InvestmentLow    InvestmentValue = "low"
)

// ValuationRequest is the inbound request from the conversational
// front-end or any HTTP caller. Money-free: only the target property.
type ValuationRequest struct {
	Address  string  `json:"address" binding:"required" validate:"required"`
	AreaSqm  float64 `json:"area_sqm" binding:"required,gt=0" validate:"required,gt=0"`
	AgeYears int     `json:"age_years" binding:"gte=0" validate:"gte=0"`
	Purpose  Purpose `json:"purpose" binding:"required,oneof=sale purchase rental" validate:"required,oneof=sale purchase rental"`

	// PropertyType defaults to residential when empty.
	PropertyType PropertyType `json:"property_type,omitempty" validate:"omitempty,oneof=residential commercial office warehouse"`

	// Optional per-request overrides of the resolved region profile.
	SearchRadiusKmOverride *float64 `json:"search_radius_km_override,omitempty" validate:"omitempty,gt=0"`
	LookbackMonthsOverride *int     `json:"lookback_months_override,omitempty" validate:"omitempty,gt=0"`
}

// ConfidenceInterval is a normal-approximation 95% interval over
// corrected prices, in whole currency units.
type ConfidenceInterval struct {
	Lower         int64 `json:"lower"`
	Upper         int64 `json:"upper"`
	MarginOfError int64 `json:"margin_of_error"`
}

// AggregateStatistics is derived from a corrected comparable list and is
// never persisted.
type AggregateStatistics struct {
	MeanPrice           int64              `json:"mean_price"`
	MedianPrice         int64              `json:"median_price"`
	FilteredMeanPrice   int64              `json:"filtered_mean_price"`
	ConfidenceInterval  ConfidenceInterval `json:"confidence_interval"`
	SampleCount         int                `json:"sample_count"`
	FilteredSampleCount int                `json:"filtered_sample_count"`
}

// ValuationResult is the engine output for a single request. Created
// once per request, immutable, no lifecycle beyond the response.
type ValuationResult struct {
	PriceRangeLow   int64           `json:"price_range_low"`
	PriceRangeHigh  int64           `json:"price_range_high"`
	ConfidenceLabel ConfidenceLabel `json:"confidence_label"`
	SampleCount     int             `json:"sample_count"`

	MarketTrend     MarketTrend     `json:"market_trend"`
	PriceTrend      PriceTrend      `json:"price_trend"`
	InvestmentValue InvestmentValue `json:"investment_value"`
	Insights        []string        `json:"insights"`

	DataOrigin  DataOrigin  `json:"data_origin"`
	DataQuality DataQuality `json:"data_quality"`
	RegionCode  string      `json:"region_code"`

	// Top comparables by ascending corrected price.
	Comparables []CorrectedComparable `json:"comparables"`

	Statistics AggregateStatistics `json:"statistics"`
}
