package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput indicates a statement section that is not a mapping of
// line-item names to numbers. It is the only condition that aborts ratio
// computation instead of degrading to undefined values.
var ErrInvalidInput = errors.New("invalid statement input")

// Line-item vocabulary produced by the statement parsing layer.
const (
	ItemCurrentAssets          = "current_assets"
	ItemCurrentLiabilities     = "current_liabilities"
	ItemTotalAssets            = "total_assets"
	ItemTotalEquity            = "total_equity"
	ItemTotalDebt              = "total_debt"
	ItemInventory              = "inventory"
	ItemCashAndEquivalents     = "cash_and_equivalents"
	ItemAccountsReceivable     = "accounts_receivable"
	ItemRevenue                = "revenue"
	ItemCostOfGoodsSold        = "cost_of_goods_sold"
	ItemOperatingIncome        = "operating_income"
	ItemNetIncome              = "net_income"
	ItemEBIT                   = "ebit"
	ItemInterestExpense        = "interest_expense"
	ItemTaxRate                = "tax_rate"
	ItemTotalDebtService       = "total_debt_service"
	ItemDaysPayableOutstanding = "days_payable_outstanding"
	ItemOperatingCashFlow      = "operating_cash_flow"
)

// BalanceSheet holds the balance sheet line items used by the ratio engine.
// Absent items carry their natural accounting default of zero.
type BalanceSheet struct {
	CurrentAssets      float64 `json:"current_assets"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	TotalAssets        float64 `json:"total_assets"`
	TotalEquity        float64 `json:"total_equity"`
	TotalDebt          float64 `json:"total_debt"`
	Inventory          float64 `json:"inventory"`
	CashAndEquivalents float64 `json:"cash_and_equivalents"`
	AccountsReceivable float64 `json:"accounts_receivable"`
}

// IncomeStatement holds the income statement line items. TaxRate is a
// pointer because a reported zero rate must be honored while an absent rate
// defaults to 25% inside the engine.
type IncomeStatement struct {
	Revenue                float64  `json:"revenue"`
	CostOfGoodsSold        float64  `json:"cost_of_goods_sold"`
	OperatingIncome        float64  `json:"operating_income"`
	NetIncome              float64  `json:"net_income"`
	EBIT                   float64  `json:"ebit"`
	InterestExpense        float64  `json:"interest_expense"`
	TaxRate                *float64 `json:"tax_rate,omitempty"`
	TotalDebtService       float64  `json:"total_debt_service"`
	DaysPayableOutstanding float64  `json:"days_payable_outstanding"`
}

// CashFlowStatement holds the cash flow line items.
type CashFlowStatement struct {
	OperatingCashFlow float64 `json:"operating_cash_flow"`
}

// StatementInput is the immutable input to one ratio computation: a snapshot
// of the three statement sections for a single reporting period.
type StatementInput struct {
	BalanceSheet    BalanceSheet
	IncomeStatement IncomeStatement
	CashFlow        CashFlowStatement
}

// StatementData is the raw parsed statement document as persisted: each
// section maps line-item names to exact decimal values produced by the
// upstream parser. Unknown keys are carried along and ignored by analysis.
type StatementData struct {
	BalanceSheet    map[string]decimal.Decimal `json:"balance_sheet"`
	IncomeStatement map[string]decimal.Decimal `json:"income_statement"`
	CashFlow        map[string]decimal.Decimal `json:"cash_flow"`
}

// Input converts the raw decimal sections into the typed engine input,
// picking only known line items.
func (d StatementData) Input() StatementInput {
	bs := func(key string) float64 {
		if v, ok := d.BalanceSheet[key]; ok {
			return v.InexactFloat64()
		}
		return 0
	}
	is := func(key string) float64 {
		if v, ok := d.IncomeStatement[key]; ok {
			return v.InexactFloat64()
		}
		return 0
	}

	input := StatementInput{
		BalanceSheet: BalanceSheet{
			CurrentAssets:      bs(ItemCurrentAssets),
			CurrentLiabilities: bs(ItemCurrentLiabilities),
			TotalAssets:        bs(ItemTotalAssets),
			TotalEquity:        bs(ItemTotalEquity),
			TotalDebt:          bs(ItemTotalDebt),
			Inventory:          bs(ItemInventory),
			CashAndEquivalents: bs(ItemCashAndEquivalents),
			AccountsReceivable: bs(ItemAccountsReceivable),
		},
		IncomeStatement: IncomeStatement{
			Revenue:                is(ItemRevenue),
			CostOfGoodsSold:        is(ItemCostOfGoodsSold),
			OperatingIncome:        is(ItemOperatingIncome),
			NetIncome:              is(ItemNetIncome),
			EBIT:                   is(ItemEBIT),
			InterestExpense:        is(ItemInterestExpense),
			TotalDebtService:       is(ItemTotalDebtService),
			DaysPayableOutstanding: is(ItemDaysPayableOutstanding),
		},
	}
	if v, ok := d.IncomeStatement[ItemTaxRate]; ok {
		rate := v.InexactFloat64()
		input.IncomeStatement.TaxRate = &rate
	}
	if v, ok := d.CashFlow[ItemOperatingCashFlow]; ok {
		input.CashFlow.OperatingCashFlow = v.InexactFloat64()
	}
	return input
}

// ParseStatementData converts untyped parser output into the persisted
// decimal form. Unknown keys are carried along; a non-numeric value for any
// key fails with ErrInvalidInput.
func ParseStatementData(balanceSheet, incomeStatement, cashFlow map[string]any) (StatementData, error) {
	data := StatementData{
		BalanceSheet:    make(map[string]decimal.Decimal, len(balanceSheet)),
		IncomeStatement: make(map[string]decimal.Decimal, len(incomeStatement)),
		CashFlow:        make(map[string]decimal.Decimal, len(cashFlow)),
	}

	sections := []struct {
		name  string
		items map[string]any
		dst   map[string]decimal.Decimal
	}{
		{"balance_sheet", balanceSheet, data.BalanceSheet},
		{"income_statement", incomeStatement, data.IncomeStatement},
		{"cash_flow", cashFlow, data.CashFlow},
	}
	for _, section := range sections {
		for key, raw := range section.items {
			value, err := toDecimal(raw)
			if err != nil {
				return StatementData{}, fmt.Errorf("%w: %s.%s: %v", ErrInvalidInput, section.name, key, err)
			}
			section.dst[key] = value
		}
	}
	return data, nil
}

// ParseStatementInput builds a StatementInput from untyped parser output.
func ParseStatementInput(balanceSheet, incomeStatement, cashFlow map[string]any) (StatementInput, error) {
	data, err := ParseStatementData(balanceSheet, incomeStatement, cashFlow)
	if err != nil {
		return StatementInput{}, err
	}
	return data.Input(), nil
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case decimal.Decimal:
		return v, nil
	case json.Number:
		return decimal.NewFromString(v.String())
	default:
		return decimal.Decimal{}, fmt.Errorf("value %v is not a number", raw)
	}
}

// Company is a tracked company whose statements are analyzed.
type Company struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Industry  string    `json:"industry" db:"industry"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FinancialStatement is a stored statement for one reporting period.
type FinancialStatement struct {
	ID          string        `json:"id" db:"id"`
	CompanyID   string        `json:"company_id" db:"company_id"`
	PeriodStart time.Time     `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time     `json:"period_end" db:"period_end"`
	Currency    string        `json:"currency" db:"currency"`
	RawData     StatementData `json:"raw_data" db:"raw_data"`
	UploadedAt  time.Time     `json:"uploaded_at" db:"uploaded_at"`
}
