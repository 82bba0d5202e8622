package api

import (
	"Tally/internal/api/middleware"
	"Tally/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		apiGroup.GET("/health", group.BatchHandler.Health)

		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.GET("/daily", group.AnalyticsHandler.GetDailySummaries)
			analyticsGroup.GET("/top-items", group.AnalyticsHandler.GetTopItems)
			analyticsGroup.GET("/hourly", group.AnalyticsHandler.GetHourlyBreakdown)
			analyticsGroup.GET("/forecast/daily", group.AnalyticsHandler.GetDailyForecasts)
			analyticsGroup.GET("/forecast/hourly", group.AnalyticsHandler.GetHourlyForecasts)

			// 手动触发与补算入口
			analyticsGroup.POST("/batch/run", group.BatchHandler.RunBatch)
		}
	}

	return r
}
