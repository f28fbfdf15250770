package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finsight-ai/finsight-go/internal/models"
)

// Sentinel errors surfaced to the API layer.
var (
	ErrCompanyNotFound   = errors.New("company not found")
	ErrStatementNotFound = errors.New("statement not found")
)

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// AnalysisRepository persists companies, statements and the analysis
// pipeline's outputs: per-statement computed metrics and risk assessments.
type AnalysisRepository struct {
	pool DatabasePool
}

// NewAnalysisRepository creates a repository over a database pool.
func NewAnalysisRepository(pool DatabasePool) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

// CreateCompany inserts a new company.
func (r *AnalysisRepository) CreateCompany(ctx context.Context, name, industry string) (*models.Company, error) {
	query := `
		INSERT INTO companies (id, name, industry)
		VALUES ($1, $2, $3)
		RETURNING id, name, industry, created_at
	`

	var company models.Company
	err := r.pool.QueryRow(ctx, query, uuid.New().String(), name, industry).Scan(
		&company.ID,
		&company.Name,
		&company.Industry,
		&company.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &company, nil
}

// GetCompany fetches a company by ID.
func (r *AnalysisRepository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	query := `SELECT id, name, industry, created_at FROM companies WHERE id = $1`

	var company models.Company
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Industry,
		&company.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

// ListCompanies returns all companies ordered by name.
func (r *AnalysisRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	query := `SELECT id, name, industry, created_at FROM companies ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var company models.Company
		if err := rows.Scan(&company.ID, &company.Name, &company.Industry, &company.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// CreateStatement stores a parsed statement for one reporting period.
func (r *AnalysisRepository) CreateStatement(ctx context.Context, companyID string, periodStart, periodEnd time.Time, currency string, data models.StatementData) (*models.FinancialStatement, error) {
	query := `
		INSERT INTO financial_statements (id, company_id, period_start, period_end, currency, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, company_id, period_start, period_end, currency, raw_data, uploaded_at
	`

	var statement models.FinancialStatement
	err := r.pool.QueryRow(ctx, query, uuid.New().String(), companyID, periodStart, periodEnd, currency, data).Scan(
		&statement.ID,
		&statement.CompanyID,
		&statement.PeriodStart,
		&statement.PeriodEnd,
		&statement.Currency,
		&statement.RawData,
		&statement.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create statement: %w", err)
	}
	return &statement, nil
}

// GetStatement fetches a statement by ID.
func (r *AnalysisRepository) GetStatement(ctx context.Context, id string) (*models.FinancialStatement, error) {
	query := `
		SELECT id, company_id, period_start, period_end, currency, raw_data, uploaded_at
		FROM financial_statements
		WHERE id = $1
	`

	var statement models.FinancialStatement
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&statement.ID,
		&statement.CompanyID,
		&statement.PeriodStart,
		&statement.PeriodEnd,
		&statement.Currency,
		&statement.RawData,
		&statement.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStatementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return &statement, nil
}

// ListStatements returns a company's statements ordered by period end,
// ascending.
func (r *AnalysisRepository) ListStatements(ctx context.Context, companyID string) ([]models.FinancialStatement, error) {
	query := `
		SELECT id, company_id, period_start, period_end, currency, raw_data, uploaded_at
		FROM financial_statements
		WHERE company_id = $1
		ORDER BY period_end
	`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	defer rows.Close()

	var statements []models.FinancialStatement
	for rows.Next() {
		var statement models.FinancialStatement
		if err := rows.Scan(
			&statement.ID,
			&statement.CompanyID,
			&statement.PeriodStart,
			&statement.PeriodEnd,
			&statement.Currency,
			&statement.RawData,
			&statement.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, statement)
	}
	return statements, rows.Err()
}

// SaveMetrics replaces a statement's computed metrics with a fresh ratio
// result. Undefined ratios are stored as NULL so the full catalogue is
// always present.
func (r *AnalysisRepository) SaveMetrics(ctx context.Context, statementID string, ratios models.RatioResult) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM computed_metrics WHERE statement_id = $1`, statementID); err != nil {
		return fmt.Errorf("failed to clear metrics: %w", err)
	}

	insert := `
		INSERT INTO computed_metrics (id, statement_id, metric_category, metric_name, metric_value)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, category := range ratios.Categories() {
		for name, value := range category.Ratios {
			if _, err := r.pool.Exec(ctx, insert, uuid.New().String(), statementID, category.Name, name, value.Ptr()); err != nil {
				return fmt.Errorf("failed to save metric %s: %w", name, err)
			}
		}
	}
	return nil
}

// MetricHistory assembles the historical series for a company: one sample
// per reporting period, ordered by period end, carrying that period's
// stored metric values. When several statements share a period end (a
// re-ingested correction), the most recently uploaded one wins so the
// series never carries duplicate periods.
func (r *AnalysisRepository) MetricHistory(ctx context.Context, companyID string) ([]models.PeriodSample, error) {
	query := `
		SELECT s.id, s.period_end, m.metric_name, m.metric_value
		FROM financial_statements s
		JOIN computed_metrics m ON m.statement_id = s.id
		WHERE s.company_id = $1
		ORDER BY s.period_end, s.uploaded_at, s.id, m.metric_name
	`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load metric history: %w", err)
	}
	defer rows.Close()

	var samples []models.PeriodSample
	byStatement := make(map[string]int)
	byPeriod := make(map[int64]int)
	for rows.Next() {
		var (
			statementID string
			periodEnd   time.Time
			name        string
			value       *float64
		)
		if err := rows.Scan(&statementID, &periodEnd, &name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metric history: %w", err)
		}

		idx, ok := byStatement[statementID]
		if !ok {
			if prev, dup := byPeriod[periodEnd.UnixNano()]; dup {
				// Later upload for the same period supersedes the
				// earlier statement's metrics.
				samples[prev] = models.PeriodSample{
					Period:  periodEnd,
					Metrics: make(map[string]models.MetricValue),
				}
				idx = prev
			} else {
				samples = append(samples, models.PeriodSample{
					Period:  periodEnd,
					Metrics: make(map[string]models.MetricValue),
				})
				idx = len(samples) - 1
				byPeriod[periodEnd.UnixNano()] = idx
			}
			byStatement[statementID] = idx
		}
		if value != nil {
			samples[idx].Metrics[name] = models.Defined(*value)
		}
	}
	return samples, rows.Err()
}

// LatestMetrics returns the stored metric values of a company's most recent
// statement.
func (r *AnalysisRepository) LatestMetrics(ctx context.Context, companyID string) (map[string]models.MetricValue, error) {
	query := `
		SELECT m.metric_name, m.metric_value
		FROM computed_metrics m
		JOIN financial_statements s ON s.id = m.statement_id
		WHERE s.company_id = $1
		  AND s.period_end = (
			SELECT MAX(period_end) FROM financial_statements WHERE company_id = $1
		  )
	`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest metrics: %w", err)
	}
	defer rows.Close()

	metrics := make(map[string]models.MetricValue)
	for rows.Next() {
		var (
			name  string
			value *float64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics[name] = models.MetricFromPtr(value)
	}
	return metrics, rows.Err()
}

// SaveAssessment stores a risk assessment computed for a statement.
func (r *AnalysisRepository) SaveAssessment(ctx context.Context, companyID, statementID string, assessmentDate time.Time, assessment models.Assessment) error {
	query := `
		INSERT INTO risk_assessments (
			id, company_id, statement_id, assessment_date,
			overall_score, risk_level,
			liquidity_risk, profitability_risk, solvency_risk, efficiency_risk,
			red_flags, warnings, recommendation
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		uuid.New().String(),
		companyID,
		statementID,
		assessmentDate,
		assessment.OverallScore,
		string(assessment.RiskLevel),
		string(assessment.CategoryScores[models.CategoryLiquidity].Risk),
		string(assessment.CategoryScores[models.CategoryProfitability].Risk),
		string(assessment.CategoryScores[models.CategorySolvency].Risk),
		string(assessment.CategoryScores[models.CategoryEfficiency].Risk),
		assessment.RedFlags,
		assessment.Warnings,
		assessment.Recommendation,
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}
