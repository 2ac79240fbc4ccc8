// Package scoring turns a set of normalized products into the saturation,
// demand, risk and profit sub-scores and the final SCALE/TEST/KILL verdict.
// Every function here is deterministic: identical input sets always yield
// identical scores.
package scoring

import (
	"math"

	"github.com/dropradar/dropradar/internal/models"
)

// Saturation component weights and caps.
const (
	platformWeight   = 15
	platformCap      = 30
	listingWeight    = 8
	listingCap       = 25
	reviewsPerPoint  = 50
	reviewFactorCap  = 25
	tightnessMax     = 20
	tightnessMid     = 12
	tightnessLoose   = 6
	tightCVThreshold = 0.10
	midCVThreshold   = 0.25
	looseCVThreshold = 0.50
)

// Saturation estimates market crowding 0-100; higher means more crowded.
// Uniform pricing across listings raises the score, since commoditized
// niches converge on a single price point.
func Saturation(products []models.NormalizedProduct) int {
	return saturationFrom(computeStats(products))
}

func saturationFrom(s setStats) int {
	if s.listings == 0 {
		return 0
	}
	score := minInt(s.platforms*platformWeight, platformCap)
	score += minInt(s.listings*listingWeight, listingCap)
	score += minInt(int(s.avgReviews/reviewsPerPoint), reviewFactorCap)
	score += tightnessFactor(s)
	return clampScore(score)
}

func tightnessFactor(s setStats) int {
	if s.listings < 2 {
		return 0
	}
	switch {
	case s.priceCV < tightCVThreshold:
		return tightnessMax
	case s.priceCV < midCVThreshold:
		return tightnessMid
	case s.priceCV < looseCVThreshold:
		return tightnessLoose
	default:
		return 0
	}
}

// Demand component weights and bucket boundaries.
const (
	reviewsPerDemandPoint = 15
	reviewDemandCap       = 70
	ratingDemandWeight    = 6
	ratingDemandCap       = 30

	demandStrongMin   = 70
	demandModerateMin = 45
	demandEmergingMin = 20
)

// Demand blends review volume and average rating into a 0-100 score with a
// bucketed level.
func Demand(products []models.NormalizedProduct) models.Demand {
	return demandFrom(computeStats(products))
}

func demandFrom(s setStats) models.Demand {
	if s.listings == 0 {
		return models.Demand{Level: models.DemandWeak}
	}
	score := minInt(int(s.avgReviews/reviewsPerDemandPoint), reviewDemandCap)
	score += minInt(int(s.avgRating*ratingDemandWeight), ratingDemandCap)
	score = clampScore(score)
	return models.Demand{Level: demandLevel(score), Score: score}
}

func demandLevel(score int) models.DemandLevel {
	switch {
	case score >= demandStrongMin:
		return models.DemandStrong
	case score >= demandModerateMin:
		return models.DemandModerate
	case score >= demandEmergingMin:
		return models.DemandEmerging
	default:
		return models.DemandWeak
	}
}

// Price tier boundaries in base currency.
const (
	budgetMax   = 20.0
	midRangeMax = 50.0
	premiumMax  = 150.0
)

// Tier classifies the average base-currency price of the product set.
func Tier(avgPrice float64) models.PriceTier {
	switch {
	case avgPrice < budgetMax:
		return models.TierBudget
	case avgPrice < midRangeMax:
		return models.TierMidRange
	case avgPrice < premiumMax:
		return models.TierPremium
	default:
		return models.TierLuxury
	}
}

// Risk formula weights and penalties.
const (
	riskSaturationWeight = 0.4
	riskDemandWeight     = 0.3

	volatilityPenaltyHigh = 15
	volatilityPenaltyMid  = 10
	volatilityPenaltyLow  = 5

	budgetTierPenalty = 10

	riskHighMin     = 70
	riskModerateMin = 40
)

// Risk combines saturation, inverted demand, price volatility and the thin
// margins of the budget tier into a 0-100 risk score.
func Risk(saturation, demandScore int, s setStats, tier models.PriceTier) int {
	risk := int(riskSaturationWeight*float64(saturation) + riskDemandWeight*float64(100-demandScore))
	risk += volatilityPenalty(s)
	if tier == models.TierBudget {
		risk += budgetTierPenalty
	}
	return clampScore(risk)
}

func volatilityPenalty(s setStats) int {
	if s.listings < 2 {
		return 0
	}
	switch {
	case s.priceCV >= looseCVThreshold:
		return volatilityPenaltyHigh
	case s.priceCV >= midCVThreshold:
		return volatilityPenaltyMid
	case s.priceCV >= tightCVThreshold:
		return volatilityPenaltyLow
	default:
		return 0
	}
}

func riskLevel(score int) models.RiskLevel {
	switch {
	case score >= riskHighMin:
		return models.RiskHigh
	case score >= riskModerateMin:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}

// Profit opportunity weights and bonuses.
const (
	oppDemandWeight     = 0.4
	oppSaturationWeight = 0.3
	oppRiskWeight       = 0.2

	tierBonusPremium  = 10
	tierBonusMidRange = 8
	tierBonusLuxury   = 5

	stabilityBonus = 5
)

// Opportunity estimates profit potential 0-100, floored at 0.
func Opportunity(demandScore, saturation, risk int, tier models.PriceTier, s setStats) int {
	v := oppDemandWeight*float64(demandScore) +
		oppSaturationWeight*float64(100-saturation) +
		float64(tierBonus(tier)+stabilityBonusFor(s)) -
		oppRiskWeight*float64(risk)
	if v < 0 {
		v = 0
	}
	return clampScore(int(v))
}

func tierBonus(tier models.PriceTier) int {
	switch tier {
	case models.TierPremium:
		return tierBonusPremium
	case models.TierMidRange:
		return tierBonusMidRange
	case models.TierLuxury:
		return tierBonusLuxury
	default:
		return 0
	}
}

func stabilityBonusFor(s setStats) int {
	if s.listings >= 2 && s.priceCV < tightCVThreshold {
		return stabilityBonus
	}
	return 0
}

func competitionLevel(saturation int) models.CompetitionLevel {
	switch {
	case saturation >= 70:
		return models.CompetitionHigh
	case saturation >= 40:
		return models.CompetitionMedium
	default:
		return models.CompetitionLow
	}
}

// Profit scenario cost assumptions.
const (
	cogsRate         = 0.35
	shippingEstimate = 4.50

	adSpendBest    = 0.20
	adSpendAverage = 0.35
	adSpendWorst   = 0.50
)

// Scenarios derives worst/average/best net profit per unit for a selling
// price: price minus estimated cost of goods, a fixed shipping estimate and
// a scenario-dependent advertising fraction. Values are rounded to cents.
func Scenarios(price float64) models.ProfitScenarios {
	if price <= 0 {
		return models.ProfitScenarios{}
	}
	net := func(adFraction float64) float64 {
		v := price - price*cogsRate - shippingEstimate - price*adFraction
		return math.Round(v*100) / 100
	}
	return models.ProfitScenarios{
		Worst:   net(adSpendWorst),
		Average: net(adSpendAverage),
		Best:    net(adSpendBest),
	}
}
