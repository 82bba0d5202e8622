package service

import (
	"Tally/internal/api/dto"
	"Tally/internal/model"
	"Tally/internal/pkg/consts"
	"Tally/internal/pkg/redis"
	"Tally/internal/pkg/util"
	"Tally/internal/repository"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

// 读接口只查分析库的预计算表，绝不回源订单库
const cacheTTL = 10 * time.Minute

type AnalyticsService interface {
	GetDailySummaries(ctx context.Context, start, end *time.Time, limit int) (*dto.DailySummariesDTO, error)
	// GetTopItems 跨日合并 daily_revenue_cache 里的排行快照后重新排序
	GetTopItems(ctx context.Context, start, end *time.Time, limit int) (*dto.TopItemsDTO, error)
	GetHourlyBreakdown(ctx context.Context, targetDate time.Time, daysBack int) (*dto.HourlyBreakdownDTO, error)
	GetDailyForecasts(ctx context.Context, limit int) (*dto.DailyForecastsDTO, error)
	GetHourlyForecasts(ctx context.Context, forecastDate time.Time) (*dto.HourlyForecastsDTO, error)
	// InvalidateCache 批处理成功后清空读缓存
	InvalidateCache(ctx context.Context)
}

type analyticsServiceImpl struct {
	analyticsRepo repository.AnalyticsRepo
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepo) AnalyticsService {
	return &analyticsServiceImpl{analyticsRepo: analyticsRepo}
}

func (s *analyticsServiceImpl) GetDailySummaries(ctx context.Context, start, end *time.Time, limit int) (*dto.DailySummariesDTO, error) {
	key := consts.DailySummariesKey + rangeKey(start, end, limit)
	var cached dto.DailySummariesDTO
	if hitCache(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.analyticsRepo.GetDailySummaries(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.DailySummary, 0, len(rows))
	for _, row := range rows {
		var summary dto.DailySummary
		_ = copier.Copy(&summary, row)
		summaries = append(summaries, summary)
	}

	res := &dto.DailySummariesDTO{Summaries: summaries, Total: len(summaries)}
	putCache(ctx, key, res)
	return res, nil
}

func (s *analyticsServiceImpl) GetTopItems(ctx context.Context, start, end *time.Time, limit int) (*dto.TopItemsDTO, error) {
	key := consts.TopItemsKey + rangeKey(start, end, limit)
	var cached dto.TopItemsDTO
	if hitCache(ctx, key, &cached) {
		return &cached, nil
	}

	// 不限制天数，区间内的每日排行快照全部参与合并
	rows, err := s.analyticsRepo.GetDailySummaries(ctx, start, end, -1)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uint64]*dto.TopItemEntry)
	for _, row := range rows {
		for _, item := range row.TopItems {
			entry, ok := grouped[item.ItemID]
			if !ok {
				entry = &dto.TopItemEntry{ItemID: item.ItemID, ItemName: item.ItemName}
				grouped[item.ItemID] = entry
			}
			entry.Quantity += item.Quantity
			entry.Revenue += item.Revenue
		}
	}

	merged := make([]dto.TopItemEntry, 0, len(grouped))
	for _, entry := range grouped {
		merged = append(merged, *entry)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Quantity != merged[j].Quantity {
			return merged[i].Quantity > merged[j].Quantity
		}
		return merged[i].ItemID < merged[j].ItemID
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	res := &dto.TopItemsDTO{TopItems: merged, Total: len(merged)}
	putCache(ctx, key, res)
	return res, nil
}

func (s *analyticsServiceImpl) GetHourlyBreakdown(ctx context.Context, targetDate time.Time, daysBack int) (*dto.HourlyBreakdownDTO, error) {
	if daysBack < 1 {
		daysBack = 1
	}
	day := util.GetMidnight(targetDate)
	startDay := day.AddDate(0, 0, -(daysBack - 1))

	key := fmt.Sprintf("%s%s_%d", consts.HourlyBreakdownKey, util.FormatDate(day), daysBack)
	var cached dto.HourlyBreakdownDTO
	if hitCache(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.analyticsRepo.GetHourlyRange(ctx, startDay, day)
	if err != nil {
		return nil, err
	}

	data := make([]dto.HourlyBreakdown, 0, len(rows))
	for _, row := range rows {
		var entry dto.HourlyBreakdown
		_ = copier.Copy(&entry, row)
		data = append(data, entry)
	}

	res := &dto.HourlyBreakdownDTO{HourlyData: data, Total: len(data)}
	putCache(ctx, key, res)
	return res, nil
}

func (s *analyticsServiceImpl) GetDailyForecasts(ctx context.Context, limit int) (*dto.DailyForecastsDTO, error) {
	if limit <= 0 {
		limit = 7
	}

	key := fmt.Sprintf("%s_%d", consts.DailyForecastKey, limit)
	var cached dto.DailyForecastsDTO
	if hitCache(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.analyticsRepo.GetForecastsByType(ctx, model.ForecastTypeDailyRevenue, limit)
	if err != nil {
		return nil, err
	}

	// 多次运行的预测可能共存，同一目标日期只保留最新生成的那条
	seen := make(map[string]struct{})
	forecasts := make([]dto.DailyForecast, 0, len(rows))
	for _, row := range rows {
		dateKey := util.FormatDate(row.ForecastDate)
		if _, ok := seen[dateKey]; ok {
			continue
		}
		seen[dateKey] = struct{}{}
		forecasts = append(forecasts, dto.DailyForecast{
			ForecastDate:  row.ForecastDate,
			ForecastValue: row.ForecastValue,
			ModelVersion:  row.ModelVersion,
			GeneratedAt:   row.GeneratedAt,
		})
	}
	sort.Slice(forecasts, func(i, j int) bool {
		return forecasts[i].ForecastDate.Before(forecasts[j].ForecastDate)
	})

	res := &dto.DailyForecastsDTO{Forecasts: forecasts, Total: len(forecasts)}
	putCache(ctx, key, res)
	return res, nil
}

func (s *analyticsServiceImpl) GetHourlyForecasts(ctx context.Context, forecastDate time.Time) (*dto.HourlyForecastsDTO, error) {
	day := util.GetMidnight(forecastDate)

	key := consts.HourlyForecastKey + util.FormatDate(day)
	var cached dto.HourlyForecastsDTO
	if hitCache(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.analyticsRepo.GetHourlyForecasts(ctx, day)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	forecasts := make([]dto.HourlyForecast, 0, 24)
	for _, row := range rows {
		if _, ok := seen[row.ForecastType]; ok {
			continue
		}
		seen[row.ForecastType] = struct{}{}

		var hour int
		if _, err := fmt.Sscanf(row.ForecastType, model.ForecastTypeHourlyPrefix+"%02d", &hour); err != nil {
			continue
		}
		forecasts = append(forecasts, dto.HourlyForecast{
			Hour:          hour,
			ForecastValue: row.ForecastValue,
			ModelVersion:  row.ModelVersion,
			GeneratedAt:   row.GeneratedAt,
		})
	}
	sort.Slice(forecasts, func(i, j int) bool { return forecasts[i].Hour < forecasts[j].Hour })

	res := &dto.HourlyForecastsDTO{ForecastDate: day, Forecasts: forecasts, Total: len(forecasts)}
	putCache(ctx, key, res)
	return res, nil
}

func (s *analyticsServiceImpl) InvalidateCache(ctx context.Context) {
	_ = redis.DeleteByPrefix(ctx, "analytics:")
}

func rangeKey(start, end *time.Time, limit int) string {
	s, e := "-", "-"
	if start != nil {
		s = util.FormatDate(*start)
	}
	if end != nil {
		e = util.FormatDate(*end)
	}
	return fmt.Sprintf("%s_%s_%d", s, e, limit)
}

func hitCache(ctx context.Context, key string, out interface{}) bool {
	val, err := redis.GetValue(ctx, key)
	if err != nil || val == "" {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func putCache(ctx context.Context, key string, val interface{}) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = redis.SetWithExpiration(ctx, key, string(data), cacheTTL)
}
