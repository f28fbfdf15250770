package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight-go/internal/models"
)

func sampleStatement() models.StatementInput {
	taxRate := 0.25
	return models.StatementInput{
		BalanceSheet: models.BalanceSheet{
			CurrentAssets:      1_500_000,
			CurrentLiabilities: 750_000,
			TotalAssets:        5_000_000,
			TotalEquity:        3_000_000,
			TotalDebt:          2_000_000,
			Inventory:          400_000,
			CashAndEquivalents: 500_000,
			AccountsReceivable: 300_000,
		},
		IncomeStatement: models.IncomeStatement{
			Revenue:         10_000_000,
			CostOfGoodsSold: 6_000_000,
			OperatingIncome: 1_500_000,
			NetIncome:       1_000_000,
			EBIT:            1_400_000,
			InterestExpense: 100_000,
			TaxRate:         &taxRate,
		},
		CashFlow: models.CashFlowStatement{
			OperatingCashFlow: 1_200_000,
		},
	}
}

func requireDefined(t *testing.T, m models.MetricValue) float64 {
	t.Helper()
	v, ok := m.Float64()
	require.True(t, ok, "expected a defined metric value")
	return v
}

func TestRatioEngineSampleStatement(t *testing.T) {
	engine := NewRatioEngine(sampleStatement())

	assert.InDelta(t, 2.0, requireDefined(t, engine.CurrentRatio()), 1e-9)
	assert.InDelta(t, 10.0, requireDefined(t, engine.NetProfitMargin()), 1e-9)
	assert.InDelta(t, 33.33, requireDefined(t, engine.ReturnOnEquity()), 1e-9)
	assert.InDelta(t, 0.6667, requireDefined(t, engine.DebtToEquity()), 1e-9)

	// (1,500,000 - 400,000) / 750,000
	assert.InDelta(t, 1.4667, requireDefined(t, engine.QuickRatio()), 1e-9)
	assert.InDelta(t, 0.6667, requireDefined(t, engine.CashRatio()), 1e-9)
	assert.InDelta(t, 750_000, requireDefined(t, engine.WorkingCapital()), 1e-9)
	assert.InDelta(t, 1.6, requireDefined(t, engine.OperatingCashFlowRatio()), 1e-9)

	assert.InDelta(t, 40.0, requireDefined(t, engine.GrossProfitMargin()), 1e-9)
	assert.InDelta(t, 15.0, requireDefined(t, engine.OperatingProfitMargin()), 1e-9)
	assert.InDelta(t, 20.0, requireDefined(t, engine.ReturnOnAssets()), 1e-9)
	// NOPAT 1,125,000 over invested capital 5,000,000
	assert.InDelta(t, 22.5, requireDefined(t, engine.ReturnOnInvestedCapital()), 1e-9)

	assert.InDelta(t, 0.4, requireDefined(t, engine.DebtToAssets()), 1e-9)
	assert.InDelta(t, 14.0, requireDefined(t, engine.InterestCoverage()), 1e-9)
	assert.InDelta(t, 0.6, requireDefined(t, engine.EquityRatio()), 1e-9)

	assert.InDelta(t, 2.0, requireDefined(t, engine.AssetTurnover()), 1e-9)
	assert.InDelta(t, 15.0, requireDefined(t, engine.InventoryTurnover()), 1e-9)
	assert.InDelta(t, 33.3333, requireDefined(t, engine.ReceivablesTurnover()), 1e-9)
	assert.InDelta(t, 10.95, requireDefined(t, engine.DaysSalesOutstanding()), 0.01)
	assert.InDelta(t, 24.33, requireDefined(t, engine.DaysInventoryOutstanding()), 0.01)
}

func TestRatioEngineZeroCurrentLiabilities(t *testing.T) {
	input := sampleStatement()
	input.BalanceSheet.CurrentLiabilities = 0
	engine := NewRatioEngine(input)

	assert.False(t, engine.CurrentRatio().IsDefined())
	assert.False(t, engine.QuickRatio().IsDefined())
	assert.False(t, engine.CashRatio().IsDefined())
	assert.False(t, engine.OperatingCashFlowRatio().IsDefined())

	// Working capital is pure subtraction and stays defined.
	assert.InDelta(t, 1_500_000, requireDefined(t, engine.WorkingCapital()), 1e-9)
}

func TestRatioEngineUndefinedPropagation(t *testing.T) {
	// An empty statement defines nothing except working capital.
	engine := NewRatioEngine(models.StatementInput{})
	ratios := engine.ComputeAllRatios()

	for _, category := range ratios.Categories() {
		for name, value := range category.Ratios {
			if name == "working_capital" {
				assert.True(t, value.IsDefined())
				continue
			}
			assert.False(t, value.IsDefined(), "ratio %s should be undefined", name)
		}
	}
}

func TestRatioEngineDaysOutstandingRules(t *testing.T) {
	input := sampleStatement()
	input.BalanceSheet.AccountsReceivable = 0
	input.BalanceSheet.Inventory = 0
	engine := NewRatioEngine(input)

	assert.False(t, engine.ReceivablesTurnover().IsDefined())
	assert.False(t, engine.DaysSalesOutstanding().IsDefined())
	assert.False(t, engine.DaysInventoryOutstanding().IsDefined())
	// CCC requires both DSO and DIO.
	assert.False(t, engine.CashConversionCycle().IsDefined())
}

func TestRatioEngineCashConversionCycle(t *testing.T) {
	input := sampleStatement()
	input.IncomeStatement.DaysPayableOutstanding = 20
	engine := NewRatioEngine(input)

	dso := requireDefined(t, engine.DaysSalesOutstanding())
	dio := requireDefined(t, engine.DaysInventoryOutstanding())
	ccc := requireDefined(t, engine.CashConversionCycle())
	assert.InDelta(t, dso+dio-20, ccc, 1e-9)
}

func TestRatioEngineTaxRateDefault(t *testing.T) {
	input := sampleStatement()
	input.IncomeStatement.TaxRate = nil
	engine := NewRatioEngine(input)

	// Absent tax rate defaults to 25%.
	assert.InDelta(t, 22.5, requireDefined(t, engine.ReturnOnInvestedCapital()), 1e-9)

	zero := 0.0
	input.IncomeStatement.TaxRate = &zero
	engine = NewRatioEngine(input)
	// A reported zero rate is honored, not replaced by the default.
	assert.InDelta(t, 30.0, requireDefined(t, engine.ReturnOnInvestedCapital()), 1e-9)
}

func TestComputeAllRatiosIdempotent(t *testing.T) {
	engine := NewRatioEngine(sampleStatement())

	first := engine.ComputeAllRatios()
	second := engine.ComputeAllRatios()
	assert.Equal(t, first, second)

	// Every catalogued ratio key is present even when undefined.
	empty := NewRatioEngine(models.StatementInput{}).ComputeAllRatios()
	assert.Len(t, empty.Liquidity, 5)
	assert.Len(t, empty.Profitability, 6)
	assert.Len(t, empty.Solvency, 5)
	assert.Len(t, empty.Efficiency, 6)
}
