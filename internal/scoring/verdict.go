package scoring

import (
	"github.com/dropradar/dropradar/internal/models"
)

// Verdict decision boundary. These constants are the single source of truth
// for the SCALE/TEST/KILL decision; the comparisons below are asserted
// exactly by the boundary tests.
const (
	ScaleOpportunityMin  = 60
	ScaleRiskCeiling     = 50
	TestOpportunityFloor = 35
	TestRiskCeiling      = 70
)

// Thresholds carries the decision boundary; zero values select the
// defaults, so callers can override individual limits from configuration.
type Thresholds struct {
	ScaleOpportunityMin  int
	ScaleRiskCeiling     int
	TestOpportunityFloor int
	TestRiskCeiling      int
}

func (t Thresholds) withDefaults() Thresholds {
	if t.ScaleOpportunityMin == 0 {
		t.ScaleOpportunityMin = ScaleOpportunityMin
	}
	if t.ScaleRiskCeiling == 0 {
		t.ScaleRiskCeiling = ScaleRiskCeiling
	}
	if t.TestOpportunityFloor == 0 {
		t.TestOpportunityFloor = TestOpportunityFloor
	}
	if t.TestRiskCeiling == 0 {
		t.TestRiskCeiling = TestRiskCeiling
	}
	return t
}

// Decide maps an opportunity/risk pair onto a verdict and confidence.
// The SCALE boundary is inclusive on opportunity and strict on risk.
func (t Thresholds) Decide(opportunity, risk int) (models.Verdict, models.Confidence) {
	t = t.withDefaults()
	switch {
	case opportunity >= t.ScaleOpportunityMin && risk < t.ScaleRiskCeiling:
		return models.VerdictScale, models.ConfidenceHigh
	case opportunity > t.TestOpportunityFloor && risk < t.TestRiskCeiling:
		return models.VerdictTest, models.ConfidenceMedium
	default:
		return models.VerdictKill, models.ConfidenceLow
	}
}

// Summary is the full scoring output for one product set.
type Summary struct {
	Verdict          models.Verdict
	Confidence       models.Confidence
	Opportunity      int
	Saturation       int
	Demand           models.Demand
	Risk             int
	RiskLevel        models.RiskLevel
	CompetitionLevel models.CompetitionLevel
	Tier             models.PriceTier
	AveragePrice     float64
	Scenarios        models.ProfitScenarios
	Recommendation   string
}

// Engine evaluates normalized product sets. It holds only the configured
// decision thresholds; evaluation itself is stateless.
type Engine struct {
	thresholds Thresholds
}

func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds.withDefaults()}
}

const insufficientDataText = "Insufficient data to assess this product. Extraction produced no usable listings."

// Evaluate runs the sub-scorers over the product set and combines them into
// a verdict. An empty set is the engine's only degenerate input and yields
// a fixed insufficient-data KILL/LOW summary rather than an error.
func (e *Engine) Evaluate(products []models.NormalizedProduct) Summary {
	if len(products) == 0 {
		return Summary{
			Verdict:          models.VerdictKill,
			Confidence:       models.ConfidenceLow,
			Demand:           models.Demand{Level: models.DemandWeak},
			RiskLevel:        models.RiskLow,
			CompetitionLevel: models.CompetitionLow,
			Tier:             models.TierBudget,
			Recommendation:   insufficientDataText,
		}
	}

	stats := computeStats(products)
	saturation := saturationFrom(stats)
	demand := demandFrom(stats)
	tier := Tier(stats.avgPrice)
	risk := Risk(saturation, demand.Score, stats, tier)
	opportunity := Opportunity(demand.Score, saturation, risk, tier, stats)
	verdict, confidence := e.thresholds.Decide(opportunity, risk)

	return Summary{
		Verdict:          verdict,
		Confidence:       confidence,
		Opportunity:      opportunity,
		Saturation:       saturation,
		Demand:           demand,
		Risk:             risk,
		RiskLevel:        riskLevel(risk),
		CompetitionLevel: competitionLevel(saturation),
		Tier:             tier,
		AveragePrice:     stats.avgPrice,
		Scenarios:        Scenarios(stats.avgPrice),
		Recommendation:   recommendation(verdict, tier),
	}
}

var tierAdvice = map[models.PriceTier]string{
	models.TierBudget:   "Budget tier: thin margins, compete on volume and bundle upsells.",
	models.TierMidRange: "Mid-range tier: healthy impulse-buy territory, test creatives aggressively.",
	models.TierPremium:  "Premium tier: margins support paid acquisition, lead with quality signals.",
	models.TierLuxury:   "Luxury tier: narrow audience, invest in brand trust and generous guarantees.",
}

var verdictAdvice = map[models.Verdict]string{
	models.VerdictScale: "Strong opportunity with manageable risk. Scale ad spend.",
	models.VerdictTest:  "Run a small paid test before committing inventory.",
	models.VerdictKill:  "Skip this product. The market signals do not justify the risk.",
}

func recommendation(v models.Verdict, tier models.PriceTier) string {
	return verdictAdvice[v] + " " + tierAdvice[tier]
}
