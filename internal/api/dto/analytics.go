package dto

import (
	"time"
)

// DailySummary 日营收汇总
type DailySummary struct {
	Date              time.Time      `json:"date"`
	TotalRevenue      float64        `json:"totalRevenue"`
	OrderCount        int            `json:"orderCount"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	TopItems          []TopItemEntry `json:"topItems"`
}

// TopItemEntry 热销商品条目
type TopItemEntry struct {
	ItemID   uint64  `json:"itemId"`
	ItemName string  `json:"itemName"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// HourlyBreakdown 小时订单分布
type HourlyBreakdown struct {
	Date       time.Time `json:"date"`
	Hour       int       `json:"hour"`
	OrderCount int       `json:"orderCount"`
}

// DailyForecast 日营收预测
type DailyForecast struct {
	ForecastDate  time.Time `json:"forecastDate"`
	ForecastValue float64   `json:"forecastValue"`
	ModelVersion  string    `json:"modelVersion"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// HourlyForecast 小时订单量预测
type HourlyForecast struct {
	Hour          int       `json:"hour"`
	ForecastValue float64   `json:"forecastValue"`
	ModelVersion  string    `json:"modelVersion"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// DailySummariesDTO 日汇总列表
type DailySummariesDTO struct {
	Summaries []DailySummary `json:"summaries"`
	Total     int            `json:"total"`
}

// TopItemsDTO 热销商品列表
type TopItemsDTO struct {
	TopItems []TopItemEntry `json:"topItems"`
	Total    int            `json:"total"`
}

// HourlyBreakdownDTO 小时分布列表
type HourlyBreakdownDTO struct {
	HourlyData []HourlyBreakdown `json:"hourlyData"`
	Total      int               `json:"total"`
}

// DailyForecastsDTO 日预测列表
type DailyForecastsDTO struct {
	Forecasts []DailyForecast `json:"forecasts"`
	Total     int             `json:"total"`
}

// HourlyForecastsDTO 小时预测列表
type HourlyForecastsDTO struct {
	ForecastDate time.Time        `json:"forecastDate"`
	Forecasts    []HourlyForecast `json:"forecasts"`
	Total        int              `json:"total"`
}
