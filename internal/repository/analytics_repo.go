package repository

import (
	"Tally/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepo 分析库读写访问。聚合行按自然键幂等覆盖，预测只追加
type AnalyticsRepo interface {
	// EnsureSchema 建表，进程启动时调用一次，重复调用安全
	EnsureSchema() error
	// SaveDayAggregates 单事务写入一天的日汇总与 24 行小时分布：要么全部落库要么全部回滚
	SaveDayAggregates(ctx context.Context, daily *model.DailyRevenueCache, hourly []*model.HourlyOrderCache) error
	// AppendForecasts 追加预测历史，从不覆盖已有预测
	AppendForecasts(ctx context.Context, rows []*model.ForecastHistory) error

	GetDailySummaries(ctx context.Context, start, end *time.Time, limit int) ([]*model.DailyRevenueCache, error)
	GetDailyRevenueSince(ctx context.Context, cutoff time.Time) ([]*model.DailyRevenueCache, error)
	GetHourlyRange(ctx context.Context, start, end time.Time) ([]*model.HourlyOrderCache, error)
	GetHourlyOrdersSince(ctx context.Context, cutoff time.Time) ([]*model.HourlyOrderCache, error)
	GetForecastsByType(ctx context.Context, forecastType string, limit int) ([]*model.ForecastHistory, error)
	GetHourlyForecasts(ctx context.Context, forecastDate time.Time) ([]*model.ForecastHistory, error)
}

type analyticsRepoImpl struct {
	db *gorm.DB
}

func NewAnalyticsRepo(db *gorm.DB) AnalyticsRepo {
	return &analyticsRepoImpl{db: db}
}

func (r *analyticsRepoImpl) EnsureSchema() error {
	return r.db.AutoMigrate(
		&model.DailyRevenueCache{},
		&model.HourlyOrderCache{},
		&model.ForecastHistory{},
	)
}

// SaveDayAggregates 日汇总按 date、小时分布按 (date, hour) Upsert，
// 重跑同一天只覆盖旧值，不产生重复行
func (r *analyticsRepoImpl) SaveDayAggregates(ctx context.Context, daily *model.DailyRevenueCache, hourly []*model.HourlyOrderCache) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_revenue",
				"order_count",
				"average_order_value",
				"top_items",
			}),
		}).Create(daily).Error
		if err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "hour"}},
			DoUpdates: clause.AssignmentColumns([]string{"order_count"}),
		}).Create(&hourly).Error
	})
}

func (r *analyticsRepoImpl) AppendForecasts(ctx context.Context, rows []*model.ForecastHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *analyticsRepoImpl) GetDailySummaries(ctx context.Context, start, end *time.Time, limit int) ([]*model.DailyRevenueCache, error) {
	rows := make([]*model.DailyRevenueCache, 0)
	query := r.db.WithContext(ctx).Model(&model.DailyRevenueCache{})
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}
	result := query.Order("date DESC").Limit(limit).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

func (r *analyticsRepoImpl) GetDailyRevenueSince(ctx context.Context, cutoff time.Time) ([]*model.DailyRevenueCache, error) {
	rows := make([]*model.DailyRevenueCache, 0)
	result := r.db.WithContext(ctx).
		Where("date >= ?", cutoff).
		Order("date ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

func (r *analyticsRepoImpl) GetHourlyRange(ctx context.Context, start, end time.Time) ([]*model.HourlyOrderCache, error) {
	rows := make([]*model.HourlyOrderCache, 0)
	result := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date ASC").
		Order("hour ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

func (r *analyticsRepoImpl) GetHourlyOrdersSince(ctx context.Context, cutoff time.Time) ([]*model.HourlyOrderCache, error) {
	rows := make([]*model.HourlyOrderCache, 0)
	result := r.db.WithContext(ctx).
		Where("date >= ?", cutoff).
		Order("date ASC").
		Order("hour ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

// GetForecastsByType 按生成时间倒序返回，最新一次运行的预测排在最前
func (r *analyticsRepoImpl) GetForecastsByType(ctx context.Context, forecastType string, limit int) ([]*model.ForecastHistory, error) {
	rows := make([]*model.ForecastHistory, 0)
	result := r.db.WithContext(ctx).
		Where("forecast_type = ?", forecastType).
		Order("generated_at DESC").
		Order("forecast_date ASC").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

func (r *analyticsRepoImpl) GetHourlyForecasts(ctx context.Context, forecastDate time.Time) ([]*model.ForecastHistory, error) {
	rows := make([]*model.ForecastHistory, 0)
	result := r.db.WithContext(ctx).
		Where("forecast_type LIKE ? AND forecast_date = ?", model.ForecastTypeHourlyPrefix+"%", forecastDate).
		Order("generated_at DESC").
		Order("forecast_type ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}
