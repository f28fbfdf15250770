package analysis

import (
	"math"

	"github.com/finsight-ai/finsight-go/internal/models"
)

// Category weights for the overall health score. Solvency and profitability
// dominate long-run viability; efficiency is a secondary signal.
const (
	weightLiquidity     = 0.25
	weightProfitability = 0.35
	weightSolvency      = 0.30
	weightEfficiency    = 0.10
)

// RiskScorer turns a ratio result into a 0-100 health score, a risk level
// and the red flags / warnings crossed along the way. Scoring is
// deterministic: flags and warnings always accumulate in the fixed
// evaluation order of the point tables below.
type RiskScorer struct {
	ratios models.RatioResult
}

// NewRiskScorer creates a scorer over a computed ratio result.
func NewRiskScorer(ratios models.RatioResult) *RiskScorer {
	return &RiskScorer{ratios: ratios}
}

// categoryScore is the outcome of scoring one category in isolation.
type categoryScore struct {
	score    float64
	redFlags []string
	warnings []string
}

// scoreValue looks up a ratio and reports whether it should be scored. A
// value that computed to exactly zero is skipped the same way an undefined
// one is, mirroring how the scoring tables were originally calibrated.
func scoreValue(set models.RatioSet, name string) (float64, bool) {
	v, ok := set[name].Float64()
	return v, ok && v != 0
}

// definedValue looks up a ratio, skipping only undefined values.
func definedValue(set models.RatioSet, name string) (float64, bool) {
	return set[name].Float64()
}

func scoreLiquidity(liquidity models.RatioSet) categoryScore {
	var result categoryScore

	if currentRatio, ok := scoreValue(liquidity, "current_ratio"); ok {
		switch {
		case currentRatio >= 2.0:
			result.score += 40
		case currentRatio >= 1.5:
			result.score += 30
		case currentRatio >= 1.0:
			result.score += 15
			result.warnings = append(result.warnings, "Current ratio below healthy threshold")
		default:
			result.score += 5
			result.redFlags = append(result.redFlags, "Critical liquidity: Current ratio < 1.0")
		}
	}

	if quickRatio, ok := scoreValue(liquidity, "quick_ratio"); ok {
		switch {
		case quickRatio >= 1.0:
			result.score += 30
		case quickRatio >= 0.7:
			result.score += 20
		default:
			result.score += 10
			result.warnings = append(result.warnings, "Quick ratio below 0.7")
		}
	}

	if cashRatio, ok := scoreValue(liquidity, "cash_ratio"); ok {
		switch {
		case cashRatio >= 0.5:
			result.score += 30
		case cashRatio >= 0.2:
			result.score += 20
		default:
			result.score += 10
		}
	}

	return result
}

func scoreProfitability(profitability models.RatioSet) categoryScore {
	var result categoryScore

	if npm, ok := scoreValue(profitability, "net_profit_margin"); ok {
		switch {
		case npm >= 10:
			result.score += 30
		case npm >= 5:
			result.score += 20
		case npm >= 0:
			result.score += 10
			result.warnings = append(result.warnings, "Low profit margin")
		default:
			result.redFlags = append(result.redFlags, "Negative profit margin - company is losing money")
		}
	}

	if roe, ok := scoreValue(profitability, "return_on_equity"); ok {
		switch {
		case roe >= 15:
			result.score += 35
		case roe >= 10:
			result.score += 25
		case roe >= 5:
			result.score += 15
		default:
			result.score += 5
			result.warnings = append(result.warnings, "ROE below 5%")
		}
	}

	if roa, ok := scoreValue(profitability, "return_on_assets"); ok {
		switch {
		case roa >= 5:
			result.score += 20
		case roa >= 2:
			result.score += 12
		default:
			result.score += 5
		}
	}

	if opm, ok := scoreValue(profitability, "operating_profit_margin"); ok {
		switch {
		case opm >= 15:
			result.score += 15
		case opm >= 10:
			result.score += 10
		case opm >= 5:
			result.score += 5
		default:
			result.warnings = append(result.warnings, "Low operating margin")
		}
	}

	return result
}

func scoreSolvency(solvency models.RatioSet) categoryScore {
	var result categoryScore

	if dte, ok := definedValue(solvency, "debt_to_equity"); ok {
		switch {
		case dte < 0.5:
			result.score += 40
		case dte < 1.0:
			result.score += 30
		case dte < 2.0:
			result.score += 15
			result.warnings = append(result.warnings, "Elevated debt levels")
		default:
			result.score += 5
			result.redFlags = append(result.redFlags, "High debt burden - D/E ratio > 2.0")
		}
	}

	if coverage, ok := scoreValue(solvency, "interest_coverage"); ok {
		switch {
		case coverage >= 5.0:
			result.score += 35
		case coverage >= 3.0:
			result.score += 25
		case coverage >= 1.5:
			result.score += 12
			result.warnings = append(result.warnings, "Interest coverage below 3.0")
		default:
			result.score += 3
			result.redFlags = append(result.redFlags, "Critical: Cannot cover interest payments")
		}
	}

	if dta, ok := definedValue(solvency, "debt_to_assets"); ok {
		switch {
		case dta < 0.4:
			result.score += 25
		case dta < 0.6:
			result.score += 15
		default:
			result.score += 5
			result.warnings = append(result.warnings, "High debt relative to assets")
		}
	}

	return result
}

func scoreEfficiency(efficiency models.RatioSet) categoryScore {
	var result categoryScore

	if turnover, ok := scoreValue(efficiency, "asset_turnover"); ok {
		switch {
		case turnover >= 1.5:
			result.score += 40
		case turnover >= 1.0:
			result.score += 30
		case turnover >= 0.5:
			result.score += 20
		default:
			result.score += 10
		}
	}

	if dso, ok := scoreValue(efficiency, "days_sales_outstanding"); ok {
		switch {
		case dso <= 30:
			result.score += 30
		case dso <= 45:
			result.score += 20
		case dso <= 60:
			result.score += 10
		default:
			result.warnings = append(result.warnings, "High DSO - slow collections")
		}
	}

	if ccc, ok := scoreValue(efficiency, "cash_conversion_cycle"); ok {
		switch {
		case ccc <= 30:
			result.score += 30
		case ccc <= 60:
			result.score += 20
		case ccc <= 90:
			result.score += 10
		default:
			result.warnings = append(result.warnings, "Long cash conversion cycle")
		}
	}

	return result
}

// CalculateHealthScore returns the weighted overall score, rounded to 2
// decimal places.
func (s *RiskScorer) CalculateHealthScore() float64 {
	liquidity := scoreLiquidity(s.ratios.Liquidity)
	profitability := scoreProfitability(s.ratios.Profitability)
	solvency := scoreSolvency(s.ratios.Solvency)
	efficiency := scoreEfficiency(s.ratios.Efficiency)

	total := liquidity.score*weightLiquidity +
		profitability.score*weightProfitability +
		solvency.score*weightSolvency +
		efficiency.score*weightEfficiency
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// riskLevelForScore classifies a 0-100 score. The same thresholds apply to
// the overall score and to each category's own score.
func riskLevelForScore(score float64) models.RiskLevel {
	switch {
	case score >= 75:
		return models.RiskLow
	case score >= 60:
		return models.RiskMedium
	case score >= 40:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

// AssessRiskLevel classifies the overall health score.
func (s *RiskScorer) AssessRiskLevel() models.RiskLevel {
	return riskLevelForScore(s.CalculateHealthScore())
}

var recommendations = map[models.RiskLevel]string{
	models.RiskLow:      "Strong financial health. Continue monitoring key metrics.",
	models.RiskMedium:   "Moderate financial health. Address warnings to improve position.",
	models.RiskHigh:     "Elevated financial risk. Immediate attention needed on red flags.",
	models.RiskCritical: "Critical financial condition. Urgent intervention required.",
}

// GetAssessment builds the complete assessment: overall score, risk level,
// per-category scores, red flags, warnings and a recommendation.
func (s *RiskScorer) GetAssessment() models.Assessment {
	liquidity := scoreLiquidity(s.ratios.Liquidity)
	profitability := scoreProfitability(s.ratios.Profitability)
	solvency := scoreSolvency(s.ratios.Solvency)
	efficiency := scoreEfficiency(s.ratios.Efficiency)

	overall := round2(liquidity.score*weightLiquidity +
		profitability.score*weightProfitability +
		solvency.score*weightSolvency +
		efficiency.score*weightEfficiency)
	riskLevel := riskLevelForScore(overall)

	redFlags := make([]string, 0)
	warnings := make([]string, 0)
	for _, category := range []categoryScore{liquidity, profitability, solvency, efficiency} {
		redFlags = append(redFlags, category.redFlags...)
		warnings = append(warnings, category.warnings...)
	}

	return models.Assessment{
		OverallScore: overall,
		RiskLevel:    riskLevel,
		CategoryScores: map[string]models.CategoryScore{
			models.CategoryLiquidity:     {Score: liquidity.score, Risk: riskLevelForScore(liquidity.score)},
			models.CategoryProfitability: {Score: profitability.score, Risk: riskLevelForScore(profitability.score)},
			models.CategorySolvency:      {Score: solvency.score, Risk: riskLevelForScore(solvency.score)},
			models.CategoryEfficiency:    {Score: efficiency.score, Risk: riskLevelForScore(efficiency.score)},
		},
		RedFlags:       redFlags,
		Warnings:       warnings,
		Recommendation: recommendations[riskLevel],
	}
}
