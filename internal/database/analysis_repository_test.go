package database

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight-go/internal/models"
)

func newMockRepository(t *testing.T) (*AnalysisRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewAnalysisRepository(mock), mock
}

func TestCreateCompany(t *testing.T) {
	repo, mock := newMockRepository(t)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO companies`).
		WithArgs(pgxmock.AnyArg(), "Acme Corp", "manufacturing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "industry", "created_at"}).
			AddRow("company-1", "Acme Corp", "manufacturing", created))

	company, err := repo.CreateCompany(context.Background(), "Acme Corp", "manufacturing")
	require.NoError(t, err)
	assert.Equal(t, "company-1", company.ID)
	assert.Equal(t, "Acme Corp", company.Name)
	assert.Equal(t, created, company.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCompanyNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT id, name, industry, created_at FROM companies`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetCompany(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestGetStatementNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT id, company_id, period_start, period_end`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetStatement(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrStatementNotFound)
}

func TestListStatementsOrdered(t *testing.T) {
	repo, mock := newMockRepository(t)

	p2022 := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	p2023 := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	uploaded := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	empty := models.StatementData{}

	mock.ExpectQuery(`FROM financial_statements`).
		WithArgs("company-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "company_id", "period_start", "period_end", "currency", "raw_data", "uploaded_at",
		}).
			AddRow("stmt-1", "company-1", p2022.AddDate(-1, 0, 1), p2022, "USD", empty, uploaded).
			AddRow("stmt-2", "company-1", p2023.AddDate(-1, 0, 1), p2023, "USD", empty, uploaded))

	statements, err := repo.ListStatements(context.Background(), "company-1")
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.Equal(t, "stmt-1", statements[0].ID)
	assert.Equal(t, p2022, statements[0].PeriodEnd)
	assert.Equal(t, "stmt-2", statements[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMetricsReplacesExisting(t *testing.T) {
	repo, mock := newMockRepository(t)

	ratios := models.RatioResult{
		Liquidity:     models.RatioSet{"current_ratio": models.Defined(2.0)},
		Profitability: models.RatioSet{"net_profit_margin": models.Defined(10.0)},
		Solvency:      models.RatioSet{"debt_to_equity": models.Undefined()},
		Efficiency:    models.RatioSet{"asset_turnover": models.Defined(0.8)},
	}

	mock.ExpectExec(`DELETE FROM computed_metrics`).
		WithArgs("stmt-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	currentRatio := 2.0
	netMargin := 10.0
	turnover := 0.8
	mock.ExpectExec(`INSERT INTO computed_metrics`).
		WithArgs(pgxmock.AnyArg(), "stmt-1", models.CategoryLiquidity, "current_ratio", &currentRatio).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO computed_metrics`).
		WithArgs(pgxmock.AnyArg(), "stmt-1", models.CategoryProfitability, "net_profit_margin", &netMargin).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO computed_metrics`).
		WithArgs(pgxmock.AnyArg(), "stmt-1", models.CategorySolvency, "debt_to_equity", (*float64)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO computed_metrics`).
		WithArgs(pgxmock.AnyArg(), "stmt-1", models.CategoryEfficiency, "asset_turnover", &turnover).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.SaveMetrics(context.Background(), "stmt-1", ratios)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricHistoryGroupsByStatement(t *testing.T) {
	repo, mock := newMockRepository(t)

	p2022 := time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	p2023 := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	revenue2022 := 1000.0
	revenue2023 := 1100.0

	mock.ExpectQuery(`JOIN computed_metrics`).
		WithArgs("company-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "period_end", "metric_name", "metric_value"}).
			AddRow("stmt-1", p2022, "debt_to_equity", (*float64)(nil)).
			AddRow("stmt-1", p2022, "revenue", &revenue2022).
			AddRow("stmt-2", p2023, "revenue", &revenue2023))

	samples, err := repo.MetricHistory(context.Background(), "company-1")
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, p2022, samples[0].Period)
	value, ok := samples[0].Metric("revenue").Float64()
	require.True(t, ok)
	assert.Equal(t, 1000.0, value)
	// NULL metrics stay absent from the sample.
	assert.False(t, samples[0].Metric("debt_to_equity").IsDefined())

	assert.Equal(t, p2023, samples[1].Period)
	value, ok = samples[1].Metric("revenue").Float64()
	require.True(t, ok)
	assert.Equal(t, 1100.0, value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricHistoryDuplicatePeriodKeepsLatestUpload(t *testing.T) {
	repo, mock := newMockRepository(t)

	// Two statements for the same reporting period: a correction was
	// re-ingested. Rows arrive ordered by upload time, so the corrected
	// statement comes second and must replace the first entirely.
	period := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	staleRatio := 1.5
	staleRevenue := 1000.0
	fixedRatio := 2.0
	fixedRevenue := 1100.0

	mock.ExpectQuery(`JOIN computed_metrics`).
		WithArgs("company-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "period_end", "metric_name", "metric_value"}).
			AddRow("stmt-a", period, "current_ratio", &staleRatio).
			AddRow("stmt-a", period, "revenue", &staleRevenue).
			AddRow("stmt-b", period, "current_ratio", &fixedRatio).
			AddRow("stmt-b", period, "revenue", &fixedRevenue))

	samples, err := repo.MetricHistory(context.Background(), "company-1")
	require.NoError(t, err)
	// One sample per period, never one fragment per statement.
	require.Len(t, samples, 1)
	assert.Equal(t, period, samples[0].Period)

	value, ok := samples[0].Metric("current_ratio").Float64()
	require.True(t, ok)
	assert.Equal(t, 2.0, value)
	value, ok = samples[0].Metric("revenue").Float64()
	require.True(t, ok)
	assert.Equal(t, 1100.0, value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestMetrics(t *testing.T) {
	repo, mock := newMockRepository(t)

	ratio := 1.5
	mock.ExpectQuery(`SELECT m.metric_name, m.metric_value`).
		WithArgs("company-1").
		WillReturnRows(pgxmock.NewRows([]string{"metric_name", "metric_value"}).
			AddRow("current_ratio", &ratio).
			AddRow("debt_to_equity", (*float64)(nil)))

	metrics, err := repo.LatestMetrics(context.Background(), "company-1")
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	value, ok := metrics["current_ratio"].Float64()
	require.True(t, ok)
	assert.Equal(t, 1.5, value)
	assert.False(t, metrics["debt_to_equity"].IsDefined())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAssessment(t *testing.T) {
	repo, mock := newMockRepository(t)

	assessment := models.Assessment{
		OverallScore: 93.0,
		RiskLevel:    models.RiskLow,
		CategoryScores: map[string]models.CategoryScore{
			models.CategoryLiquidity:     {Score: 100, Risk: models.RiskLow},
			models.CategoryProfitability: {Score: 100, Risk: models.RiskLow},
			models.CategorySolvency:      {Score: 80, Risk: models.RiskLow},
			models.CategoryEfficiency:    {Score: 90, Risk: models.RiskLow},
		},
		RedFlags:       []string{},
		Warnings:       []string{},
		Recommendation: "Financial position is healthy. Maintain current practices.",
	}

	date := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO risk_assessments`).
		WithArgs(pgxmock.AnyArg(), "company-1", "stmt-1", date,
			93.0, "low", "low", "low", "low", "low",
			[]string{}, []string{}, assessment.Recommendation).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.SaveAssessment(context.Background(), "company-1", "stmt-1", date, assessment)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
