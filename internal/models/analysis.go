package models

import "time"

// Ratio categories.
const (
	CategoryLiquidity     = "liquidity"
	CategoryProfitability = "profitability"
	CategorySolvency      = "solvency"
	CategoryEfficiency    = "efficiency"
)

// RiskLevel classifies a health score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RatioSet maps ratio names to their computed values within one category.
// Every catalogued ratio name is present, undefined values included.
type RatioSet map[string]MetricValue

// RatioResult is the full ratio computation for one statement, grouped by
// category. It is built once and never mutated.
type RatioResult struct {
	Liquidity     RatioSet `json:"liquidity"`
	Profitability RatioSet `json:"profitability"`
	Solvency      RatioSet `json:"solvency"`
	Efficiency    RatioSet `json:"efficiency"`
}

// RatioCategory pairs a category name with its ratio set.
type RatioCategory struct {
	Name   string
	Ratios RatioSet
}

// Categories returns the categories in their canonical order.
func (r RatioResult) Categories() []RatioCategory {
	return []RatioCategory{
		{CategoryLiquidity, r.Liquidity},
		{CategoryProfitability, r.Profitability},
		{CategorySolvency, r.Solvency},
		{CategoryEfficiency, r.Efficiency},
	}
}

// Flatten collapses the nested result into a single metric-name map, the
// shape used to assemble historical series across periods.
func (r RatioResult) Flatten() map[string]MetricValue {
	flat := make(map[string]MetricValue)
	for _, category := range r.Categories() {
		for name, value := range category.Ratios {
			flat[name] = value
		}
	}
	return flat
}

// CategoryScore is one category's contribution to an assessment.
type CategoryScore struct {
	Score float64   `json:"score"`
	Risk  RiskLevel `json:"risk"`
}

// Assessment is the full risk assessment for one statement.
type Assessment struct {
	OverallScore   float64                  `json:"overall_score"`
	RiskLevel      RiskLevel                `json:"risk_level"`
	CategoryScores map[string]CategoryScore `json:"category_scores"`
	RedFlags       []string                 `json:"red_flags"`
	Warnings       []string                 `json:"warnings"`
	Recommendation string                   `json:"recommendation"`
}

// PeriodSample is one point of a historical series: the metrics computed for
// a single reporting period. Metrics absent for the period are simply not
// present in the map.
type PeriodSample struct {
	Period  time.Time              `json:"period"`
	Metrics map[string]MetricValue `json:"metrics"`
}

// Metric returns the named metric value for this sample.
func (s PeriodSample) Metric(name string) MetricValue {
	if v, ok := s.Metrics[name]; ok {
		return v
	}
	return Undefined()
}

// TrendDirection is the coarse classification of a metric's movement.
type TrendDirection string

const (
	TrendIncreasing       TrendDirection = "increasing"
	TrendDecreasing       TrendDirection = "decreasing"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// GrowthPoint is one period's growth relative to the previous sample.
// Growth values are undefined when the previous sample is absent or zero.
type GrowthPoint struct {
	Period    time.Time   `json:"period"`
	Value     float64     `json:"value"`
	Growth    MetricValue `json:"growth"`
	GrowthPct MetricValue `json:"growth_pct"`
}

// MovingAveragePoint is one period's trailing moving average.
type MovingAveragePoint struct {
	Period        time.Time `json:"period"`
	Value         float64   `json:"value"`
	MovingAverage float64   `json:"moving_average"`
}

// MetricTrendSummary is a compact trend summary used when comparing metrics.
type MetricTrendSummary struct {
	Name  string         `json:"name"`
	CAGR  MetricValue    `json:"cagr"`
	Trend TrendDirection `json:"trend"`
}

// TrendComparison summarizes two metrics side by side.
type TrendComparison struct {
	Metric1 MetricTrendSummary `json:"metric1"`
	Metric2 MetricTrendSummary `json:"metric2"`
}

// TrendResult is the combined trend analysis for one metric across a
// company's reporting periods.
type TrendResult struct {
	Metric         string               `json:"metric"`
	YoYGrowth      []GrowthPoint        `json:"yoy_growth"`
	QoQGrowth      []GrowthPoint        `json:"qoq_growth"`
	CAGR           MetricValue          `json:"cagr"`
	TrendDirection TrendDirection       `json:"trend_direction"`
	Volatility     MetricValue          `json:"volatility"`
	MovingAverage  []MovingAveragePoint `json:"moving_average"`
	DataPoints     int                  `json:"data_points"`
}
