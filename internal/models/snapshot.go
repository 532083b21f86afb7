package models

import (
	"time"

	"github.com/google/uuid"
)

// ValuationRecord is the persisted snapshot of a completed valuation.
// Persistence is best-effort; the request/response cycle never waits on
// or fails because of it.
type ValuationRecord struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Address      string  `gorm:"index" json:"address"`
	AreaSqm      float64 `json:"area_sqm"`
	AgeYears     int     `json:"age_years"`
	Purpose      string  `json:"purpose"`
	PropertyType string  `json:"property_type"`
	RegionCode   string  `gorm:"index" json:"region_code"`

	PriceRangeLow   int64  `json:"price_range_low"`
	PriceRangeHigh  int64  `json:"price_range_high"`
	ConfidenceLabel string `json:"confidence_label"`
	SampleCount     int    `json:"sample_count"`
	DataOrigin      string `json:"data_origin"`
	DataQuality     string `json:"data_quality"`

	CreatedAt time.Time `json:"created_at"`
}

// NewValuationRecord flattens a request/result pair into a snapshot.
func NewValuationRecord(req ValuationRequest, result ValuationResult) *ValuationRecord {
	return &ValuationRecord{
		ID:              uuid.NewString(),
		Address:         req.Address,
		AreaSqm:         req.AreaSqm,
		AgeYears:        req.AgeYears,
		Purpose:         string(req.Purpose),
		PropertyType:    string(req.PropertyType),
		RegionCode:      result.RegionCode,
		PriceRangeLow:   result.PriceRangeLow,
		PriceRangeHigh:  result.PriceRangeHigh,
		ConfidenceLabel: string(result.ConfidenceLabel),
		SampleCount:     result.SampleCount,
		DataOrigin:      string(result.DataOrigin),
		DataQuality:     string(result.DataQuality),
	}
}
