package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsight-ai/finsight-go/internal/database"
	"github.com/finsight-ai/finsight-go/internal/models"
	"github.com/finsight-ai/finsight-go/internal/services"
)

// AnalysisService is the service surface the handlers depend on.
type AnalysisService interface {
	CreateCompany(ctx context.Context, name, industry string) (*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	ListStatements(ctx context.Context, companyID string) ([]models.FinancialStatement, error)
	IngestStatement(ctx context.Context, companyID string, periodStart, periodEnd time.Time, currency string, balanceSheet, incomeStatement, cashFlow map[string]any) (*models.FinancialStatement, models.RatioResult, error)
	AnalyzeRatios(ctx context.Context, statementID string) (models.RatioResult, error)
	HealthScore(ctx context.Context, statementID string) (models.Assessment, error)
	AnalyzeTrends(ctx context.Context, companyID string, metrics []string) ([]models.TrendResult, error)
	CompareTrends(ctx context.Context, companyID, metric1, metric2 string) (models.TrendComparison, error)
	CompareCompanies(ctx context.Context, companyIDs []string) ([]services.CompanyComparison, error)
}

// CompanyHandler serves company and statement management endpoints.
type CompanyHandler struct {
	service AnalysisService
}

// NewCompanyHandler creates the handler.
func NewCompanyHandler(service AnalysisService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

type createCompanyRequest struct {
	Name     string `json:"name" binding:"required"`
	Industry string `json:"industry"`
}

type ingestStatementRequest struct {
	PeriodStart     time.Time      `json:"period_start" binding:"required"`
	PeriodEnd       time.Time      `json:"period_end" binding:"required"`
	Currency        string         `json:"currency"`
	BalanceSheet    map[string]any `json:"balance_sheet"`
	IncomeStatement map[string]any `json:"income_statement"`
	CashFlow        map[string]any `json:"cash_flow"`
}

type ingestStatementResponse struct {
	Statement *models.FinancialStatement `json:"statement"`
	Ratios    models.RatioResult         `json:"ratios"`
}

// CreateCompany registers a new company.
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	company, err := h.service.CreateCompany(c.Request.Context(), req.Name, req.Industry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

// GetCompany fetches a company by ID.
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.service.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// ListCompanies lists all companies.
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companies, err := h.service.ListCompanies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies, "count": len(companies)})
}

// ListStatements lists a company's statements ordered by period end.
func (h *CompanyHandler) ListStatements(c *gin.Context) {
	statements, err := h.service.ListStatements(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statements": statements, "count": len(statements)})
}

// IngestStatement stores a statement and returns it with its computed
// ratio catalogue.
func (h *CompanyHandler) IngestStatement(c *gin.Context) {
	var req ingestStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period_start and period_end are required"})
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	statement, ratios, err := h.service.IngestStatement(
		c.Request.Context(),
		c.Param("id"),
		req.PeriodStart,
		req.PeriodEnd,
		req.Currency,
		req.BalanceSheet,
		req.IncomeStatement,
		req.CashFlow,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingestStatementResponse{Statement: statement, Ratios: ratios})
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrCompanyNotFound), errors.Is(err, database.ErrStatementNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
