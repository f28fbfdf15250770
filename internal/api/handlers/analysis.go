package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsight-ai/finsight-go/internal/models"
)

// AnalysisHandler serves the analysis pipeline endpoints.
type AnalysisHandler struct {
	service AnalysisService
}

// NewAnalysisHandler creates the handler.
func NewAnalysisHandler(service AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

type ratiosResponse struct {
	StatementID string             `json:"statement_id"`
	Ratios      models.RatioResult `json:"ratios"`
	Timestamp   time.Time          `json:"timestamp"`
}

type trendsResponse struct {
	CompanyID string               `json:"company_id"`
	Trends    []models.TrendResult `json:"trends"`
	Count     int                  `json:"count"`
}

type compareCompaniesRequest struct {
	CompanyIDs []string `json:"company_ids" binding:"required"`
}

// GetRatios returns the full ratio catalogue for a statement.
func (h *AnalysisHandler) GetRatios(c *gin.Context) {
	statementID := c.Param("id")
	ratios, err := h.service.AnalyzeRatios(c.Request.Context(), statementID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratiosResponse{
		StatementID: statementID,
		Ratios:      ratios,
		Timestamp:   time.Now(),
	})
}

// GetHealthScore returns the risk assessment for a statement.
func (h *AnalysisHandler) GetHealthScore(c *gin.Context) {
	assessment, err := h.service.HealthScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// GetTrends returns trend analyses for a company. The metrics query
// parameter narrows the analysis to a comma-separated list; without it,
// every stored metric is analyzed.
func (h *AnalysisHandler) GetTrends(c *gin.Context) {
	companyID := c.Param("id")

	var metrics []string
	if raw := c.Query("metrics"); raw != "" {
		for _, metric := range strings.Split(raw, ",") {
			if metric = strings.TrimSpace(metric); metric != "" {
				metrics = append(metrics, metric)
			}
		}
	}

	trends, err := h.service.AnalyzeTrends(c.Request.Context(), companyID, metrics)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trendsResponse{
		CompanyID: companyID,
		Trends:    trends,
		Count:     len(trends),
	})
}

// CompareTrends summarizes two metrics side by side for a company.
func (h *AnalysisHandler) CompareTrends(c *gin.Context) {
	metric1 := c.Query("metric1")
	metric2 := c.Query("metric2")
	if metric1 == "" || metric2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "metric1 and metric2 parameters are required"})
		return
	}

	comparison, err := h.service.CompareTrends(c.Request.Context(), c.Param("id"), metric1, metric2)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// CompareCompanies returns each requested company's latest metrics.
func (h *AnalysisHandler) CompareCompanies(c *gin.Context) {
	var req compareCompaniesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_ids is required"})
		return
	}

	comparisons, err := h.service.CompareCompanies(c.Request.Context(), req.CompanyIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comparisons": comparisons, "count": len(comparisons)})
}
