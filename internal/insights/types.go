// Package insights defines the industry insight data model and the
// parser/validator for provider responses.
package insights

import (
	"encoding/json"
	"strings"
	"time"
)

// DemandLevel describes hiring demand for an industry.
type DemandLevel string

// DemandLevel values.
const (
	DemandHigh   DemandLevel = "High"
	DemandMedium DemandLevel = "Medium"
	DemandLow    DemandLevel = "Low"
)

// Valid reports whether the value is one of the known levels.
func (d DemandLevel) Valid() bool {
	switch d {
	case DemandHigh, DemandMedium, DemandLow:
		return true
	}
	return false
}

// UnmarshalJSON normalizes case so "HIGH" and "high" both decode to "High".
// Unknown values pass through unchanged and are rejected by validation.
func (d *DemandLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = DemandLevel(normalizeEnum(s))
	return nil
}

// MarketOutlook describes the market trajectory for an industry.
type MarketOutlook string

// MarketOutlook values.
const (
	OutlookPositive MarketOutlook = "Positive"
	OutlookNeutral  MarketOutlook = "Neutral"
	OutlookNegative MarketOutlook = "Negative"
)

// Valid reports whether the value is one of the known outlooks.
func (o MarketOutlook) Valid() bool {
	switch o {
	case OutlookPositive, OutlookNeutral, OutlookNegative:
		return true
	}
	return false
}

// UnmarshalJSON normalizes case; the provider is prompted for uppercase
// outlook values ("POSITIVE") while the stored form is title case.
func (o *MarketOutlook) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = MarketOutlook(normalizeEnum(s))
	return nil
}

func normalizeEnum(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// SalaryRange is one role's compensation band within an industry.
type SalaryRange struct {
	Role     string  `json:"role" validate:"required"`
	Min      float64 `json:"min" validate:"gte=0"`
	Max      float64 `json:"max" validate:"gtefield=Min"`
	Median   float64 `json:"median" validate:"gtefield=Min,ltefield=Max"`
	Location string  `json:"location" validate:"required"`
}

// Insight holds the computed fields for one industry. The industry name
// itself is supplied by the caller and never expected in the payload.
type Insight struct {
	SalaryRanges      []SalaryRange `json:"salaryRanges" validate:"required,min=5,dive"`
	GrowthRate        float64       `json:"growthRate"`
	DemandLevel       DemandLevel   `json:"demandLevel" validate:"required,oneof=High Medium Low"`
	TopSkills         []string      `json:"topSkills" validate:"required,min=1,dive,required"`
	MarketOutlook     MarketOutlook `json:"marketOutlook" validate:"required,oneof=Positive Neutral Negative"`
	KeyTrends         []string      `json:"keyTrends" validate:"required,min=1,dive,required"`
	RecommendedSkills []string      `json:"recommendedSkills" validate:"required,min=1,dive,required"`
}

// Record is a fully populated industry insight row as persisted by the
// store, including freshness timestamps.
type Record struct {
	Industry    string    `json:"industry"`
	Insight     Insight   `json:"insight"`
	LastUpdated time.Time `json:"last_updated"`
	NextUpdate  time.Time `json:"next_update"`
}

// RefreshPeriod is the freshness window: next_update is always exactly one
// period after last_updated.
const RefreshPeriod = 7 * 24 * time.Hour
