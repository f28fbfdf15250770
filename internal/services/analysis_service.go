package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finsight-ai/finsight-go/internal/analysis"
	"github.com/finsight-ai/finsight-go/internal/models"
)

// Repository is the persistence surface the service depends on.
type Repository interface {
	CreateCompany(ctx context.Context, name, industry string) (*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	CreateStatement(ctx context.Context, companyID string, periodStart, periodEnd time.Time, currency string, data models.StatementData) (*models.FinancialStatement, error)
	GetStatement(ctx context.Context, id string) (*models.FinancialStatement, error)
	ListStatements(ctx context.Context, companyID string) ([]models.FinancialStatement, error)
	SaveMetrics(ctx context.Context, statementID string, ratios models.RatioResult) error
	MetricHistory(ctx context.Context, companyID string) ([]models.PeriodSample, error)
	LatestMetrics(ctx context.Context, companyID string) (map[string]models.MetricValue, error)
	SaveAssessment(ctx context.Context, companyID, statementID string, assessmentDate time.Time, assessment models.Assessment) error
}

// AssessmentCache caches computed assessments per statement.
type AssessmentCache interface {
	Get(ctx context.Context, statementID string) (*models.Assessment, bool)
	Set(ctx context.Context, statementID string, assessment models.Assessment)
}

// CompanyComparison is one company's latest metrics in a cross-company view.
type CompanyComparison struct {
	CompanyID   string                        `json:"company_id"`
	CompanyName string                        `json:"company_name"`
	Metrics     map[string]models.MetricValue `json:"metrics"`
}

// AnalysisService runs the analysis pipeline over stored statements.
type AnalysisService struct {
	repo                 Repository
	cache                AssessmentCache
	logger               *logrus.Logger
	movingAveragePeriods int
}

// NewAnalysisService creates the service. A non-positive
// movingAveragePeriods falls back to the analyzer's default window.
func NewAnalysisService(repo Repository, cache AssessmentCache, logger *logrus.Logger, movingAveragePeriods int) *AnalysisService {
	return &AnalysisService{
		repo:                 repo,
		cache:                cache,
		logger:               logger,
		movingAveragePeriods: movingAveragePeriods,
	}
}

// CreateCompany registers a company for analysis.
func (s *AnalysisService) CreateCompany(ctx context.Context, name, industry string) (*models.Company, error) {
	return s.repo.CreateCompany(ctx, name, industry)
}

// GetCompany fetches a company.
func (s *AnalysisService) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	return s.repo.GetCompany(ctx, id)
}

// ListCompanies lists all companies.
func (s *AnalysisService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	return s.repo.ListCompanies(ctx)
}

// ListStatements lists a company's statements ordered by period end.
func (s *AnalysisService) ListStatements(ctx context.Context, companyID string) ([]models.FinancialStatement, error) {
	if _, err := s.repo.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListStatements(ctx, companyID)
}

// IngestStatement parses and stores a statement, then computes and persists
// its ratio catalogue in the same pass.
func (s *AnalysisService) IngestStatement(ctx context.Context, companyID string, periodStart, periodEnd time.Time, currency string, balanceSheet, incomeStatement, cashFlow map[string]any) (*models.FinancialStatement, models.RatioResult, error) {
	if _, err := s.repo.GetCompany(ctx, companyID); err != nil {
		return nil, models.RatioResult{}, err
	}

	data, err := models.ParseStatementData(balanceSheet, incomeStatement, cashFlow)
	if err != nil {
		return nil, models.RatioResult{}, err
	}

	statement, err := s.repo.CreateStatement(ctx, companyID, periodStart, periodEnd, currency, data)
	if err != nil {
		return nil, models.RatioResult{}, err
	}

	ratios := analysis.NewRatioEngine(data.Input()).ComputeAllRatios()
	if err := s.repo.SaveMetrics(ctx, statement.ID, ratios); err != nil {
		return nil, models.RatioResult{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"company_id":   companyID,
		"statement_id": statement.ID,
		"period_end":   periodEnd.Format("2006-01-02"),
	}).Info("Statement ingested and ratios computed")

	return statement, ratios, nil
}

// AnalyzeRatios recomputes the full ratio catalogue for a stored statement
// and refreshes its persisted metrics.
func (s *AnalysisService) AnalyzeRatios(ctx context.Context, statementID string) (models.RatioResult, error) {
	statement, err := s.repo.GetStatement(ctx, statementID)
	if err != nil {
		return models.RatioResult{}, err
	}

	ratios := analysis.NewRatioEngine(statement.RawData.Input()).ComputeAllRatios()
	if err := s.repo.SaveMetrics(ctx, statementID, ratios); err != nil {
		return models.RatioResult{}, err
	}
	return ratios, nil
}

// HealthScore computes the risk assessment for a statement. Results are
// cached per statement; a cache hit skips both computation and persistence.
func (s *AnalysisService) HealthScore(ctx context.Context, statementID string) (models.Assessment, error) {
	if cached, found := s.cache.Get(ctx, statementID); found {
		return *cached, nil
	}

	statement, err := s.repo.GetStatement(ctx, statementID)
	if err != nil {
		return models.Assessment{}, err
	}

	ratios := analysis.NewRatioEngine(statement.RawData.Input()).ComputeAllRatios()
	assessment := analysis.NewRiskScorer(ratios).GetAssessment()

	if err := s.repo.SaveAssessment(ctx, statement.CompanyID, statementID, statement.PeriodEnd, assessment); err != nil {
		return models.Assessment{}, err
	}
	s.cache.Set(ctx, statementID, assessment)

	s.logger.WithFields(logrus.Fields{
		"statement_id": statementID,
		"score":        assessment.OverallScore,
		"risk_level":   assessment.RiskLevel,
	}).Info("Health score computed")

	return assessment, nil
}

// AnalyzeTrends runs the trend analysis for the requested metrics over a
// company's stored metric history. With no metrics given, every metric seen
// in the history is analyzed, in sorted order.
func (s *AnalysisService) AnalyzeTrends(ctx context.Context, companyID string, metrics []string) ([]models.TrendResult, error) {
	if _, err := s.repo.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}

	history, err := s.repo.MetricHistory(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if len(metrics) == 0 {
		seen := make(map[string]struct{})
		for _, sample := range history {
			for name := range sample.Metrics {
				seen[name] = struct{}{}
			}
		}
		for name := range seen {
			metrics = append(metrics, name)
		}
		sort.Strings(metrics)
	}

	analyzer := analysis.NewTrendAnalyzer(history)
	results := make([]models.TrendResult, 0, len(metrics))
	for _, metric := range metrics {
		results = append(results, analyzer.AnalyzeAllTrends(metric, s.movingAveragePeriods))
	}
	return results, nil
}

// CompareTrends summarizes two metrics side by side for a company.
func (s *AnalysisService) CompareTrends(ctx context.Context, companyID, metric1, metric2 string) (models.TrendComparison, error) {
	if _, err := s.repo.GetCompany(ctx, companyID); err != nil {
		return models.TrendComparison{}, err
	}

	history, err := s.repo.MetricHistory(ctx, companyID)
	if err != nil {
		return models.TrendComparison{}, err
	}
	return analysis.NewTrendAnalyzer(history).CompareMetrics(metric1, metric2), nil
}

// CompareCompanies assembles each company's latest stored metrics into a
// deterministic comparison, ordered as requested.
func (s *AnalysisService) CompareCompanies(ctx context.Context, companyIDs []string) ([]CompanyComparison, error) {
	if len(companyIDs) < 2 {
		return nil, fmt.Errorf("%w: comparison requires at least 2 companies", models.ErrInvalidInput)
	}

	comparisons := make([]CompanyComparison, 0, len(companyIDs))
	for _, id := range companyIDs {
		company, err := s.repo.GetCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		metrics, err := s.repo.LatestMetrics(ctx, id)
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, CompanyComparison{
			CompanyID:   company.ID,
			CompanyName: company.Name,
			Metrics:     metrics,
		})
	}
	return comparisons, nil
}
