package models

import (
	"time"
)

// Verdict is the final recommendation for a candidate product.
type Verdict string

const (
	VerdictScale Verdict = "SCALE"
	VerdictTest  Verdict = "TEST"
	VerdictKill  Verdict = "KILL"
)

// Confidence expresses how much weight the verdict carries.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// DemandLevel buckets the demand score.
type DemandLevel string

const (
	DemandWeak     DemandLevel = "Weak"
	DemandEmerging DemandLevel = "Emerging"
	DemandModerate DemandLevel = "Moderate"
	DemandStrong   DemandLevel = "Strong"
)

// RiskLevel buckets the risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// CompetitionLevel buckets market saturation.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "Low"
	CompetitionMedium CompetitionLevel = "Medium"
	CompetitionHigh   CompetitionLevel = "High"
)

// PriceTier classifies the average selling price of a product set.
type PriceTier string

const (
	TierBudget   PriceTier = "Budget"
	TierMidRange PriceTier = "Mid-Range"
	TierPremium  PriceTier = "Premium"
	TierLuxury   PriceTier = "Luxury"
)

// Demand pairs the bucketed level with the underlying score.
type Demand struct {
	Level DemandLevel `json:"level"`
	Score int         `json:"score"`
}

// ProfitScenarios holds net profit estimates per unit under three
// advertising-spend assumptions.
type ProfitScenarios struct {
	Worst   float64 `json:"worst"`
	Average float64 `json:"average"`
	Best    float64 `json:"best"`
}

// AnalysisRecord is the final output of an analysis request. It is created
// once and never mutated; market conditions are point-in-time, so a new
// request always produces a new record.
type AnalysisRecord struct {
	ID               string              `json:"id"`
	Query            string              `json:"query"`
	Verdict          Verdict             `json:"verdict"`
	Confidence       Confidence          `json:"confidence"`
	CompositeScore   int                 `json:"composite_score"`
	SaturationScore  int                 `json:"saturation_score"`
	Demand           Demand              `json:"demand"`
	RiskScore        int                 `json:"risk_score"`
	RiskLevel        RiskLevel           `json:"risk_level"`
	CompetitionLevel CompetitionLevel    `json:"competition_level"`
	PriceTier        PriceTier           `json:"price_tier"`
	ProfitScenarios  ProfitScenarios     `json:"profit_scenarios"`
	Recommendation   string              `json:"recommendation"`
	Sources          []NormalizedProduct `json:"sources"`
	CreatedAt        time.Time           `json:"created_at"`
}
