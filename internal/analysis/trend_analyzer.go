package analysis

import (
	"math"
	"sort"

	"github.com/finsight-ai/finsight-go/internal/models"
)

// defaultMovingAveragePeriods is the trailing window used when the caller
// does not pick one.
const defaultMovingAveragePeriods = 3

// TrendAnalyzer computes period-over-period dynamics for one metric at a
// time across a company's reporting periods. The series is sorted ascending
// by period end before any computation; each sub-analysis is an independent
// pure function over the same sorted series.
type TrendAnalyzer struct {
	samples []models.PeriodSample
}

// NewTrendAnalyzer creates an analyzer over a historical series. The input
// slice is copied and sorted, never mutated.
func NewTrendAnalyzer(series []models.PeriodSample) *TrendAnalyzer {
	samples := make([]models.PeriodSample, len(series))
	copy(samples, series)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Period.Before(samples[j].Period)
	})
	return &TrendAnalyzer{samples: samples}
}

// growth computes consecutive-sample growth for a metric. Year-over-year
// and quarter-over-quarter use the same difference logic; they differ only
// in the cadence of the series the caller assembled.
func (t *TrendAnalyzer) growth(metric string) []models.GrowthPoint {
	points := make([]models.GrowthPoint, 0, len(t.samples))

	for i, sample := range t.samples {
		current, ok := sample.Metric(metric).Float64()
		if !ok {
			continue
		}

		point := models.GrowthPoint{
			Period:    sample.Period,
			Value:     current,
			Growth:    models.Undefined(),
			GrowthPct: models.Undefined(),
		}

		if i > 0 {
			previous, prevOK := t.samples[i-1].Metric(metric).Float64()
			if prevOK && previous != 0 {
				growth := current - previous
				point.Growth = models.Defined(round2(growth))
				point.GrowthPct = models.Defined(round2(growth / previous * 100))
			}
		}

		points = append(points, point)
	}

	return points
}

// YearOverYearGrowth computes growth between consecutive yearly samples.
func (t *TrendAnalyzer) YearOverYearGrowth(metric string) []models.GrowthPoint {
	return t.growth(metric)
}

// QuarterOverQuarterGrowth computes growth between consecutive quarterly
// samples.
func (t *TrendAnalyzer) QuarterOverQuarterGrowth(metric string) []models.GrowthPoint {
	return t.growth(metric)
}

// CAGR is the compound annual growth rate between the first and last
// samples over the default horizon of one year per interval between
// samples.
func (t *TrendAnalyzer) CAGR(metric string) models.MetricValue {
	return t.CAGROverYears(metric, len(t.samples)-1)
}

// CAGROverYears is the compound annual growth rate between the first and
// last samples over an explicit horizon, as a percentage rounded to 2
// decimal places. A zero-year horizon yields zero growth. Undefined when
// the series is shorter than 2 samples, either endpoint value is
// unavailable, or the base value is nonpositive.
func (t *TrendAnalyzer) CAGROverYears(metric string, years int) models.MetricValue {
	if len(t.samples) < 2 {
		return models.Undefined()
	}

	beginning, beginOK := t.samples[0].Metric(metric).Float64()
	ending, endOK := t.samples[len(t.samples)-1].Metric(metric).Float64()
	if !beginOK || !endOK || ending == 0 || beginning <= 0 {
		return models.Undefined()
	}

	if years == 0 {
		return models.Defined(0)
	}

	cagr := (math.Pow(ending/beginning, 1/float64(years)) - 1) * 100
	return models.Defined(round2(cagr))
}

// MovingAverage computes a trailing moving average over the given window.
// Samples with no value for the metric do not occupy a window slot; before
// the window fills, the average covers all values seen so far.
func (t *TrendAnalyzer) MovingAverage(metric string, periods int) []models.MovingAveragePoint {
	if periods <= 0 {
		periods = defaultMovingAveragePeriods
	}

	points := make([]models.MovingAveragePoint, 0, len(t.samples))
	values := make([]float64, 0, len(t.samples))

	for _, sample := range t.samples {
		current, ok := sample.Metric(metric).Float64()
		if !ok {
			continue
		}
		values = append(values, current)

		window := values
		if len(values) >= periods {
			window = values[len(values)-periods:]
		}
		points = append(points, models.MovingAveragePoint{
			Period:        sample.Period,
			Value:         current,
			MovingAverage: round2(mean(window)),
		})
	}

	return points
}

// TrendDirection classifies the metric's movement from the sign and
// magnitude of an ordinary least-squares slope against the sample index,
// relative to the series mean.
func (t *TrendAnalyzer) TrendDirection(metric string) models.TrendDirection {
	values := t.definedValues(metric)
	if len(values) < 2 {
		return models.TrendInsufficientData
	}

	n := len(values)
	xMean := float64(n-1) / 2
	yMean := mean(values)

	var numerator, denominator float64
	for i, v := range values {
		dx := float64(i) - xMean
		numerator += dx * (v - yMean)
		denominator += dx * dx
	}
	if denominator == 0 {
		return models.TrendStable
	}
	slope := numerator / denominator

	switch {
	case slope > 0.05*yMean:
		return models.TrendIncreasing
	case slope < -0.05*yMean:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// Volatility is the sample standard deviation of the metric's defined
// values, rounded to 2 decimal places; undefined below 2 values.
func (t *TrendAnalyzer) Volatility(metric string) models.MetricValue {
	values := t.definedValues(metric)
	if len(values) < 2 {
		return models.Undefined()
	}

	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		sumSquares += (v - m) * (v - m)
	}
	stdev := math.Sqrt(sumSquares / float64(len(values)-1))
	return models.Defined(round2(stdev))
}

// AnalyzeAllTrends runs every sub-analysis for a metric and assembles the
// combined result. No sub-analysis depends on another's output. A
// non-positive movingAveragePeriods falls back to the default window.
func (t *TrendAnalyzer) AnalyzeAllTrends(metric string, movingAveragePeriods int) models.TrendResult {
	return models.TrendResult{
		Metric:         metric,
		YoYGrowth:      t.YearOverYearGrowth(metric),
		QoQGrowth:      t.QuarterOverQuarterGrowth(metric),
		CAGR:           t.CAGR(metric),
		TrendDirection: t.TrendDirection(metric),
		Volatility:     t.Volatility(metric),
		MovingAverage:  t.MovingAverage(metric, movingAveragePeriods),
		DataPoints:     len(t.samples),
	}
}

// CompareMetrics summarizes two metrics side by side.
func (t *TrendAnalyzer) CompareMetrics(metric1, metric2 string) models.TrendComparison {
	summarize := func(name string) models.MetricTrendSummary {
		return models.MetricTrendSummary{
			Name:  name,
			CAGR:  t.CAGR(name),
			Trend: t.TrendDirection(name),
		}
	}
	return models.TrendComparison{
		Metric1: summarize(metric1),
		Metric2: summarize(metric2),
	}
}

func (t *TrendAnalyzer) definedValues(metric string) []float64 {
	values := make([]float64, 0, len(t.samples))
	for _, sample := range t.samples {
		if v, ok := sample.Metric(metric).Float64(); ok {
			values = append(values, v)
		}
	}
	return values
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
