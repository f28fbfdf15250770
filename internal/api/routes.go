package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsight-ai/finsight-go/internal/api/handlers"
	"github.com/finsight-ai/finsight-go/internal/database"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// SetupRoutes wires the HTTP surface onto the router.
func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient, service handlers.AnalysisService) {
	router.GET("/health", healthCheck(db, redis))

	companyHandler := handlers.NewCompanyHandler(service)
	analysisHandler := handlers.NewAnalysisHandler(service)

	v1 := router.Group("/api/v1")
	{
		companies := v1.Group("/companies")
		{
			companies.POST("", companyHandler.CreateCompany)
			companies.GET("", companyHandler.ListCompanies)
			companies.GET("/:id", companyHandler.GetCompany)
			companies.GET("/:id/statements", companyHandler.ListStatements)
			companies.POST("/:id/statements", companyHandler.IngestStatement)
			companies.GET("/:id/trends", analysisHandler.GetTrends)
			companies.GET("/:id/trends/compare", analysisHandler.CompareTrends)
		}

		statements := v1.Group("/statements")
		{
			statements.GET("/:id/ratios", analysisHandler.GetRatios)
			statements.GET("/:id/health-score", analysisHandler.GetHealthScore)
		}

		analysis := v1.Group("/analysis")
		{
			analysis.POST("/compare", analysisHandler.CompareCompanies)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
