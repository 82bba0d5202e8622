package model

import (
	"time"
)

// 预测类型
const (
	ForecastTypeDailyRevenue = "daily_revenue"
	ForecastTypeHourlyPrefix = "hourly_" // hourly_00 .. hourly_23
)

// TopItem 单日热销商品排行条目，按销量降序
type TopItem struct {
	ItemID   uint64  `json:"itemId"`
	ItemName string  `json:"itemName"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DailyRevenueCache 每日营收汇总，date 唯一，批处理整行覆盖写
type DailyRevenueCache struct {
	ID                uint64    `gorm:"primaryKey"`
	Date              time.Time `gorm:"not null;uniqueIndex;column:date"`
	TotalRevenue      float64   `gorm:"not null;default:0;type:decimal(10,2)"`
	OrderCount        int       `gorm:"not null;default:0"`
	AverageOrderValue float64   `gorm:"not null;default:0;type:decimal(10,2)"`
	TopItems          []TopItem `gorm:"serializer:json"`
	CreatedAt         time.Time
}

func (DailyRevenueCache) TableName() string {
	return "daily_revenue_cache"
}

// HourlyOrderCache 每小时订单量，date+hour 唯一，一天恒定 24 行
type HourlyOrderCache struct {
	ID         uint64    `gorm:"primaryKey"`
	Date       time.Time `gorm:"not null;index:idx_date_hour,unique;column:date"`
	Hour       int       `gorm:"not null;index:idx_date_hour,unique"`
	OrderCount int       `gorm:"not null;default:0"`
}

func (HourlyOrderCache) TableName() string {
	return "hourly_order_cache"
}

// ForecastHistory 预测历史，只追加不更新，保留每次运行的输出
type ForecastHistory struct {
	ID            uint64    `gorm:"primaryKey"`
	ForecastType  string    `gorm:"not null;size:50;index"`
	ForecastValue float64   `gorm:"not null;default:0;type:decimal(10,2)"`
	ForecastDate  time.Time `gorm:"not null;index"`
	ModelVersion  string    `gorm:"not null;size:50"`
	GeneratedAt   time.Time `gorm:"autoCreateTime"`
}

func (ForecastHistory) TableName() string {
	return "forecast_history"
}
