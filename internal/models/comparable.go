package models

import "time"

// Purpose is the declared transaction purpose of a valuation request or
// a comparable record. Values are fixed tokens so downstream renderers
// can localize them.
type Purpose string

const (
	PurposeSale     Purpose = "sale"
	PurposePurchase Purpose = "purchase"
	PurposeRental   Purpose = "rental"
)

// Valid reports whether p is one of the known purpose tokens.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeSale, PurposePurchase, PurposeRental:
		return true
	}
	return false
}

// PropertyType describes the building use of the target property. It
// only influences the synthetic base-price heuristic.
type PropertyType string

const (
	PropertyResidential PropertyType = "residential"
	PropertyCommercial  PropertyType = "commercial"
	PropertyOffice      PropertyType = "office"
	PropertyWarehouse   PropertyType = "warehouse"
)

// RawComparable is one observed transaction as returned by a comparable
// source. Immutable once created; prices are whole currency units.
type RawComparable struct {
	Address         string     `json:"address"`
	Price           int64      `json:"price"`
	AreaSqm         float64    `json:"area_sqm"`
	AgeYears        int        `json:"age_years"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
	Purpose         Purpose    `json:"purpose"`
}

// CorrectedComparable is a RawComparable plus the multiplicative
// adjustment factors applied against the target property. One corrected
// record per raw record, never shared.
type CorrectedComparable struct {
	RawComparable

	PseudoDistanceKm float64 `json:"pseudo_distance_km"`
	DistanceFactor   float64 `json:"distance_factor"`
	AreaFactor       float64 `json:"area_factor"`
	AgeFactor        float64 `json:"age_factor"`
	TotalFactor      float64 `json:"total_factor"`
	CorrectedPrice   int64   `json:"corrected_price"`
}
