package service

import (
	"Tally/internal/api/config"
	"Tally/internal/model"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testForecastingConfig() config.ForecastingConfig {
	return config.ForecastingConfig{
		MovingAverageWindow: 7,
		SmoothingAlpha:      0.3,
		TrendBeta:           0.1,
		PolynomialDegree:    2,
		OutlierDetection:    true,
		HistoryDaysDaily:    30,
		HistoryDaysHourly:   7,
		TopItems:            10,
	}
}

func revenueHistory(from time.Time, revenues ...float64) []RevenuePoint {
	points := make([]RevenuePoint, 0, len(revenues))
	for i, v := range revenues {
		points = append(points, RevenuePoint{Date: from.AddDate(0, 0, i), Revenue: v})
	}
	return points
}

func TestDailyRevenueForecastInsufficientHistory(t *testing.T) {
	svc := NewForecastService(testForecastingConfig())
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.DailyRevenueForecast(nil, 7, day)
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = svc.DailyRevenueForecast(revenueHistory(day, 100), 7, day)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestDailyRevenueForecastFlatSeries(t *testing.T) {
	svc := NewForecastService(testForecastingConfig())
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day := start.AddDate(0, 0, 6)
	history := revenueHistory(start, 100, 100, 100, 100, 100, 100, 100)

	rows, err := svc.DailyRevenueForecast(history, 7, day)

	require.NoError(t, err)
	require.Len(t, rows, 7)
	for i, row := range rows {
		assert.Equal(t, model.ForecastTypeDailyRevenue, row.ForecastType)
		assert.Equal(t, DailyModelVersion, row.ModelVersion)
		assert.True(t, row.ForecastDate.Equal(day.AddDate(0, 0, i+1)))
		// 平稳序列的预测应当贴近水平值
		assert.InDelta(t, 100.00, row.ForecastValue, 0.5)
	}
}

func TestDailyRevenueForecastDeterministic(t *testing.T) {
	svc := NewForecastService(testForecastingConfig())
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day := start.AddDate(0, 0, 5)
	history := revenueHistory(start, 80, 95, 110, 90, 105, 120)

	first, err := svc.DailyRevenueForecast(history, 7, day)
	require.NoError(t, err)
	second, err := svc.DailyRevenueForecast(history, 7, day)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ForecastValue, second[i].ForecastValue)
		assert.True(t, first[i].ForecastDate.Equal(second[i].ForecastDate))
	}
}

func TestDailyRevenueForecastDampensOutliers(t *testing.T) {
	svc := NewForecastService(testForecastingConfig())
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day := start.AddDate(0, 0, 4)
	history := revenueHistory(start, 10, 10, 10, 10, 200)

	rows, err := svc.DailyRevenueForecast(history, 1, day)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	// 离群点被中位数替换后，预测回到正常水平
	assert.InDelta(t, 10.00, rows[0].ForecastValue, 0.5)
}

func TestDailyRevenueForecastNeverNegative(t *testing.T) {
	svc := NewForecastService(testForecastingConfig())
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day := start.AddDate(0, 0, 2)
	history := revenueHistory(start, 300, 150, 10)

	rows, err := svc.DailyRevenueForecast(history, 7, day)

	require.NoError(t, err)
	for _, row := range rows {
		assert.GreaterOrEqual(t, row.ForecastValue, 0.0)
	}
}

func TestHourlyOrderForecastInsufficientDays(t *testing.T) {
	svc := NewForecastService(testForecastingConfig())
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	// 点数足够但全部来自同一天，仍然视为历史不足
	history := make([]HourlyPoint, 0, 24)
	for h := 0; h < 24; h++ {
		history = append(history, HourlyPoint{Date: day, Hour: h, OrderCount: h})
	}

	_, err := svc.HourlyOrderForecast(history, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestHourlyOrderForecastWeightsRecentDays(t *testing.T) {
	svc := NewForecastService(testForecastingConfig())
	day1 := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	target := day1.AddDate(0, 0, 2)

	history := []HourlyPoint{
		{Date: day1, Hour: 12, OrderCount: 4},
		{Date: day2, Hour: 12, OrderCount: 6},
	}

	rows, err := svc.HourlyOrderForecast(history, target)

	require.NoError(t, err)
	require.Len(t, rows, 24)

	byHour := make(map[string]float64, 24)
	for _, row := range rows {
		assert.Equal(t, HourlyModelVersion, row.ModelVersion)
		assert.True(t, row.ForecastDate.Equal(target))
		byHour[row.ForecastType] = row.ForecastValue
	}

	// 指数权重偏向较新的一天：结果落在 4 和 6 之间且更靠近 6
	noon := byHour[fmt.Sprintf("%s12", model.ForecastTypeHourlyPrefix)]
	assert.Greater(t, noon, 5.0)
	assert.Less(t, noon, 6.0)

	// 相邻零值小时取左右均值插值，远离高峰的小时保持为零
	assert.InDelta(t, noon/2, byHour[fmt.Sprintf("%s11", model.ForecastTypeHourlyPrefix)], 0.01)
	assert.InDelta(t, noon/2, byHour[fmt.Sprintf("%s13", model.ForecastTypeHourlyPrefix)], 0.01)
	assert.Zero(t, byHour[fmt.Sprintf("%s05", model.ForecastTypeHourlyPrefix)])
	assert.Zero(t, byHour[fmt.Sprintf("%s14", model.ForecastTypeHourlyPrefix)])
}

func TestHourlyOrderForecastCoversAllHours(t *testing.T) {
	svc := NewForecastService(testForecastingConfig())
	day1 := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	target := day1.AddDate(0, 0, 2)

	history := make([]HourlyPoint, 0, 48)
	for h := 0; h < 24; h++ {
		history = append(history, HourlyPoint{Date: day1, Hour: h, OrderCount: h % 5})
		history = append(history, HourlyPoint{Date: day2, Hour: h, OrderCount: (h + 1) % 5})
	}

	rows, err := svc.HourlyOrderForecast(history, target)

	require.NoError(t, err)
	require.Len(t, rows, 24)

	seen := make(map[string]struct{}, 24)
	for _, row := range rows {
		seen[row.ForecastType] = struct{}{}
	}
	for h := 0; h < 24; h++ {
		assert.Contains(t, seen, fmt.Sprintf("%s%02d", model.ForecastTypeHourlyPrefix, h))
	}
}
