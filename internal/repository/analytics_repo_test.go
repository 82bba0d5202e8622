package repository

import (
	"Tally/internal/model"
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库只能挂一个连接，多连接会各自拿到独立的空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func newAnalyticsRepo(t *testing.T) AnalyticsRepo {
	t.Helper()
	repo := NewAnalyticsRepo(newTestDB(t))
	require.NoError(t, repo.EnsureSchema())
	return repo
}

func dayAggregates(day time.Time, revenue float64, orderCount int) (*model.DailyRevenueCache, []*model.HourlyOrderCache) {
	daily := &model.DailyRevenueCache{
		Date:              day,
		TotalRevenue:      revenue,
		OrderCount:        orderCount,
		AverageOrderValue: revenue / float64(orderCount),
		TopItems: []model.TopItem{
			{ItemID: 1, ItemName: "Burger", Quantity: orderCount, Revenue: revenue},
		},
	}
	hourly := make([]*model.HourlyOrderCache, 0, 24)
	for h := 0; h < 24; h++ {
		count := 0
		if h == 12 {
			count = orderCount
		}
		hourly = append(hourly, &model.HourlyOrderCache{Date: day, Hour: h, OrderCount: count})
	}
	return daily, hourly
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	repo := NewAnalyticsRepo(newTestDB(t))

	require.NoError(t, repo.EnsureSchema())
	require.NoError(t, repo.EnsureSchema())
}

func TestSaveDayAggregatesUpsertsByDate(t *testing.T) {
	repo := newAnalyticsRepo(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	daily, hourly := dayAggregates(day, 100.00, 4)
	require.NoError(t, repo.SaveDayAggregates(ctx, daily, hourly))

	// 重跑同一天：晚到订单把营收推高，应覆盖而不是新增
	daily2, hourly2 := dayAggregates(day, 160.00, 5)
	require.NoError(t, repo.SaveDayAggregates(ctx, daily2, hourly2))

	summaries, err := repo.GetDailySummaries(ctx, nil, nil, 100)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.InDelta(t, 160.00, summaries[0].TotalRevenue, 0.001)
	assert.Equal(t, 5, summaries[0].OrderCount)
	require.Len(t, summaries[0].TopItems, 1)
	assert.Equal(t, "Burger", summaries[0].TopItems[0].ItemName)

	rows, err := repo.GetHourlyRange(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, rows, 24)
	for _, row := range rows {
		if row.Hour == 12 {
			assert.Equal(t, 5, row.OrderCount)
		} else {
			assert.Zero(t, row.OrderCount)
		}
	}
}

func TestSaveDayAggregatesSeparateDates(t *testing.T) {
	repo := newAnalyticsRepo(t)
	ctx := context.Background()
	day1 := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	daily1, hourly1 := dayAggregates(day1, 100.00, 4)
	require.NoError(t, repo.SaveDayAggregates(ctx, daily1, hourly1))
	daily2, hourly2 := dayAggregates(day2, 220.00, 8)
	require.NoError(t, repo.SaveDayAggregates(ctx, daily2, hourly2))

	summaries, err := repo.GetDailySummaries(ctx, nil, nil, 100)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	// date DESC：最近的一天在前
	assert.True(t, summaries[0].Date.After(summaries[1].Date))

	rows, err := repo.GetHourlyOrdersSince(ctx, day1)
	require.NoError(t, err)
	assert.Len(t, rows, 48)
}

func TestGetDailySummariesRangeAndLimit(t *testing.T) {
	repo := newAnalyticsRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		daily, hourly := dayAggregates(base.AddDate(0, 0, i), float64(100+i), 4)
		require.NoError(t, repo.SaveDayAggregates(ctx, daily, hourly))
	}

	start := base.AddDate(0, 0, 1)
	end := base.AddDate(0, 0, 3)
	summaries, err := repo.GetDailySummaries(ctx, &start, &end, 100)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	limited, err := repo.GetDailySummaries(ctx, nil, nil, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.True(t, limited[0].Date.Equal(base.AddDate(0, 0, 4)))
}

func TestAppendForecastsNeverOverwrites(t *testing.T) {
	repo := newAnalyticsRepo(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	batch := func(value float64) []*model.ForecastHistory {
		rows := make([]*model.ForecastHistory, 0, 7)
		for i := 1; i <= 7; i++ {
			rows = append(rows, &model.ForecastHistory{
				ForecastType:  model.ForecastTypeDailyRevenue,
				ForecastValue: value,
				ForecastDate:  day.AddDate(0, 0, i),
				ModelVersion:  "ensemble-v1",
			})
		}
		return rows
	}

	require.NoError(t, repo.AppendForecasts(ctx, batch(100)))
	require.NoError(t, repo.AppendForecasts(ctx, batch(120)))
	require.NoError(t, repo.AppendForecasts(ctx, nil))

	rows, err := repo.GetForecastsByType(ctx, model.ForecastTypeDailyRevenue, 100)
	require.NoError(t, err)
	assert.Len(t, rows, 14)
}

func TestGetHourlyForecastsFiltersTypeAndDate(t *testing.T) {
	repo := newAnalyticsRepo(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

	rows := []*model.ForecastHistory{
		{ForecastType: "hourly_05", ForecastValue: 3, ForecastDate: day, ModelVersion: "hourly-ewa-v1"},
		{ForecastType: "hourly_12", ForecastValue: 8, ForecastDate: day, ModelVersion: "hourly-ewa-v1"},
		{ForecastType: "hourly_05", ForecastValue: 4, ForecastDate: day.AddDate(0, 0, 1), ModelVersion: "hourly-ewa-v1"},
		{ForecastType: model.ForecastTypeDailyRevenue, ForecastValue: 100, ForecastDate: day, ModelVersion: "ensemble-v1"},
	}
	require.NoError(t, repo.AppendForecasts(ctx, rows))

	got, err := repo.GetHourlyForecasts(ctx, day)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, row := range got {
		assert.NotEqual(t, model.ForecastTypeDailyRevenue, row.ForecastType)
		assert.True(t, row.ForecastDate.Equal(day))
	}
}
