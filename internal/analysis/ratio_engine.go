package analysis

import (
	"math"

	"github.com/finsight-ai/finsight-go/internal/models"
)

const (
	// defaultTaxRate is applied when a statement reports no tax rate.
	defaultTaxRate = 0.25
	daysPerYear    = 365
)

// RatioEngine computes standard financial ratios from one statement's
// sections. All formulas follow standard accounting definitions and the
// computation is fully deterministic: identical input always yields
// identical output.
type RatioEngine struct {
	bs models.BalanceSheet
	is models.IncomeStatement
	cf models.CashFlowStatement
}

// NewRatioEngine creates an engine over a snapshot of statement data.
func NewRatioEngine(input models.StatementInput) *RatioEngine {
	return &RatioEngine{
		bs: input.BalanceSheet,
		is: input.IncomeStatement,
		cf: input.CashFlow,
	}
}

// safeDivide returns numerator/denominator rounded to 4 decimal places, or
// undefined when the denominator is zero.
func safeDivide(numerator, denominator float64) models.MetricValue {
	if denominator == 0 {
		return models.Undefined()
	}
	return models.Defined(round4(numerator / denominator))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// asPercent scales a ratio to a percentage, preserving undefined.
func asPercent(m models.MetricValue) models.MetricValue {
	v, ok := m.Float64()
	if !ok {
		return models.Undefined()
	}
	return models.Defined(v * 100)
}

// Liquidity ratios

// CurrentRatio is current assets over current liabilities.
func (e *RatioEngine) CurrentRatio() models.MetricValue {
	return safeDivide(e.bs.CurrentAssets, e.bs.CurrentLiabilities)
}

// QuickRatio excludes inventory from current assets.
func (e *RatioEngine) QuickRatio() models.MetricValue {
	return safeDivide(e.bs.CurrentAssets-e.bs.Inventory, e.bs.CurrentLiabilities)
}

// CashRatio is cash and equivalents over current liabilities.
func (e *RatioEngine) CashRatio() models.MetricValue {
	return safeDivide(e.bs.CashAndEquivalents, e.bs.CurrentLiabilities)
}

// WorkingCapital is current assets minus current liabilities. Pure
// subtraction, so it is always defined.
func (e *RatioEngine) WorkingCapital() models.MetricValue {
	return models.Defined(e.bs.CurrentAssets - e.bs.CurrentLiabilities)
}

// OperatingCashFlowRatio is operating cash flow over current liabilities.
func (e *RatioEngine) OperatingCashFlowRatio() models.MetricValue {
	return safeDivide(e.cf.OperatingCashFlow, e.bs.CurrentLiabilities)
}

// Profitability ratios (expressed as percentages)

// GrossProfitMargin is (revenue - COGS) / revenue × 100.
func (e *RatioEngine) GrossProfitMargin() models.MetricValue {
	return asPercent(safeDivide(e.is.Revenue-e.is.CostOfGoodsSold, e.is.Revenue))
}

// OperatingProfitMargin is operating income / revenue × 100.
func (e *RatioEngine) OperatingProfitMargin() models.MetricValue {
	return asPercent(safeDivide(e.is.OperatingIncome, e.is.Revenue))
}

// NetProfitMargin is net income / revenue × 100.
func (e *RatioEngine) NetProfitMargin() models.MetricValue {
	return asPercent(safeDivide(e.is.NetIncome, e.is.Revenue))
}

// ReturnOnAssets is net income / total assets × 100.
func (e *RatioEngine) ReturnOnAssets() models.MetricValue {
	return asPercent(safeDivide(e.is.NetIncome, e.bs.TotalAssets))
}

// ReturnOnEquity is net income / total equity × 100.
func (e *RatioEngine) ReturnOnEquity() models.MetricValue {
	return asPercent(safeDivide(e.is.NetIncome, e.bs.TotalEquity))
}

// ReturnOnInvestedCapital is NOPAT over invested capital × 100, where NOPAT
// is operating income after tax and invested capital is debt plus equity.
func (e *RatioEngine) ReturnOnInvestedCapital() models.MetricValue {
	taxRate := defaultTaxRate
	if e.is.TaxRate != nil {
		taxRate = *e.is.TaxRate
	}
	nopat := e.is.OperatingIncome * (1 - taxRate)
	investedCapital := e.bs.TotalDebt + e.bs.TotalEquity
	return asPercent(safeDivide(nopat, investedCapital))
}

// Solvency ratios

// DebtToEquity is total debt over total equity.
func (e *RatioEngine) DebtToEquity() models.MetricValue {
	return safeDivide(e.bs.TotalDebt, e.bs.TotalEquity)
}

// DebtToAssets is total debt over total assets.
func (e *RatioEngine) DebtToAssets() models.MetricValue {
	return safeDivide(e.bs.TotalDebt, e.bs.TotalAssets)
}

// InterestCoverage is EBIT over interest expense.
func (e *RatioEngine) InterestCoverage() models.MetricValue {
	return safeDivide(e.is.EBIT, e.is.InterestExpense)
}

// EquityRatio is total equity over total assets.
func (e *RatioEngine) EquityRatio() models.MetricValue {
	return safeDivide(e.bs.TotalEquity, e.bs.TotalAssets)
}

// DebtServiceCoverage is operating income over total debt service.
func (e *RatioEngine) DebtServiceCoverage() models.MetricValue {
	return safeDivide(e.is.OperatingIncome, e.is.TotalDebtService)
}

// Efficiency ratios

// AssetTurnover is revenue over total assets.
func (e *RatioEngine) AssetTurnover() models.MetricValue {
	return safeDivide(e.is.Revenue, e.bs.TotalAssets)
}

// InventoryTurnover is COGS over inventory.
func (e *RatioEngine) InventoryTurnover() models.MetricValue {
	return safeDivide(e.is.CostOfGoodsSold, e.bs.Inventory)
}

// ReceivablesTurnover is revenue over accounts receivable.
func (e *RatioEngine) ReceivablesTurnover() models.MetricValue {
	return safeDivide(e.is.Revenue, e.bs.AccountsReceivable)
}

// DaysSalesOutstanding is 365 over receivables turnover; undefined when the
// turnover is undefined or zero.
func (e *RatioEngine) DaysSalesOutstanding() models.MetricValue {
	turnover, ok := e.ReceivablesTurnover().Float64()
	if !ok || turnover == 0 {
		return models.Undefined()
	}
	return models.Defined(daysPerYear / turnover)
}

// DaysInventoryOutstanding is 365 over inventory turnover; undefined when
// the turnover is undefined or zero.
func (e *RatioEngine) DaysInventoryOutstanding() models.MetricValue {
	turnover, ok := e.InventoryTurnover().Float64()
	if !ok || turnover == 0 {
		return models.Undefined()
	}
	return models.Defined(daysPerYear / turnover)
}

// CashConversionCycle is DSO + DIO - DPO; undefined when either component
// is undefined. An absent DPO counts as zero.
func (e *RatioEngine) CashConversionCycle() models.MetricValue {
	dso, dsoOK := e.DaysSalesOutstanding().Float64()
	dio, dioOK := e.DaysInventoryOutstanding().Float64()
	if !dsoOK || !dioOK {
		return models.Undefined()
	}
	return models.Defined(dso + dio - e.is.DaysPayableOutstanding)
}

// ComputeAllRatios computes the full ratio catalogue grouped by category.
// Every ratio name is present in the result, undefined values included.
func (e *RatioEngine) ComputeAllRatios() models.RatioResult {
	return models.RatioResult{
		Liquidity: models.RatioSet{
			"current_ratio":             e.CurrentRatio(),
			"quick_ratio":               e.QuickRatio(),
			"cash_ratio":                e.CashRatio(),
			"working_capital":           e.WorkingCapital(),
			"operating_cash_flow_ratio": e.OperatingCashFlowRatio(),
		},
		Profitability: models.RatioSet{
			"gross_profit_margin":        e.GrossProfitMargin(),
			"operating_profit_margin":    e.OperatingProfitMargin(),
			"net_profit_margin":          e.NetProfitMargin(),
			"return_on_assets":           e.ReturnOnAssets(),
			"return_on_equity":           e.ReturnOnEquity(),
			"return_on_invested_capital": e.ReturnOnInvestedCapital(),
		},
		Solvency: models.RatioSet{
			"debt_to_equity":        e.DebtToEquity(),
			"debt_to_assets":        e.DebtToAssets(),
			"interest_coverage":     e.InterestCoverage(),
			"equity_ratio":          e.EquityRatio(),
			"debt_service_coverage": e.DebtServiceCoverage(),
		},
		Efficiency: models.RatioSet{
			"asset_turnover":             e.AssetTurnover(),
			"inventory_turnover":         e.InventoryTurnover(),
			"receivables_turnover":       e.ReceivablesTurnover(),
			"days_sales_outstanding":     e.DaysSalesOutstanding(),
			"days_inventory_outstanding": e.DaysInventoryOutstanding(),
			"cash_conversion_cycle":      e.CashConversionCycle(),
		},
	}
}
