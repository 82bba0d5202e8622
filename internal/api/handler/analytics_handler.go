package handler

import (
	"Tally/internal/pkg/response"
	"Tally/internal/pkg/util"
	"Tally/internal/service"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
	}
}

// GetDailySummaries GET /api/analytics/daily?start=&end=&limit=
func (s *AnalyticsHandler) GetDailySummaries(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}
	limit := parseIntQuery(c, "limit", 30)

	res, err := s.analyticsSvc.GetDailySummaries(c.Request.Context(), start, end, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetTopItems GET /api/analytics/top-items?start=&end=&limit=
func (s *AnalyticsHandler) GetTopItems(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}
	limit := parseIntQuery(c, "limit", 10)

	res, err := s.analyticsSvc.GetTopItems(c.Request.Context(), start, end, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetHourlyBreakdown GET /api/analytics/hourly?date=&days=
func (s *AnalyticsHandler) GetHourlyBreakdown(c *gin.Context) {
	targetDate := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := util.ParseDate(raw)
		if err != nil {
			response.Error(c, service.ErrInvalidDate)
			return
		}
		targetDate = parsed
	}
	days := parseIntQuery(c, "days", 7)

	res, err := s.analyticsSvc.GetHourlyBreakdown(c.Request.Context(), targetDate, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetDailyForecasts GET /api/analytics/forecast/daily?limit=
func (s *AnalyticsHandler) GetDailyForecasts(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 7)

	res, err := s.analyticsSvc.GetDailyForecasts(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetHourlyForecasts GET /api/analytics/forecast/hourly?date= 默认明天
func (s *AnalyticsHandler) GetHourlyForecasts(c *gin.Context) {
	forecastDate := time.Now().AddDate(0, 0, 1)
	if raw := c.Query("date"); raw != "" {
		parsed, err := util.ParseDate(raw)
		if err != nil {
			response.Error(c, service.ErrInvalidDate)
			return
		}
		forecastDate = parsed
	}

	res, err := s.analyticsSvc.GetHourlyForecasts(c.Request.Context(), forecastDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func parseDateRange(c *gin.Context) (start, end *time.Time, ok bool) {
	if raw := c.Query("start"); raw != "" {
		parsed, err := util.ParseDate(raw)
		if err != nil {
			response.Error(c, service.ErrInvalidDate)
			return nil, nil, false
		}
		start = &parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := util.ParseDate(raw)
		if err != nil {
			response.Error(c, service.ErrInvalidDate)
			return nil, nil, false
		}
		end = &parsed
	}
	return start, end, true
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
