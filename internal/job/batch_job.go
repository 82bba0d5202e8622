package job

import (
	"Tally/internal/api/config"
	"Tally/internal/model"
	"Tally/internal/pkg/logger"
	"Tally/internal/pkg/util"
	"Tally/internal/repository"
	"Tally/internal/service"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RunState 批处理运行状态
type RunState string

const (
	StateIdle        RunState = "IDLE"
	StateReading     RunState = "READING"
	StateAggregating RunState = "AGGREGATING"
	StateForecasting RunState = "FORECASTING"
	StateWriting     RunState = "WRITING"
	StateCompleted   RunState = "COMPLETED"
	StateFailed      RunState = "FAILED"
)

// dailyForecastHorizon 日营收预测天数
const dailyForecastHorizon = 7

// RunReport 一次批处理运行的结果摘要，供日志与手动触发接口消费
type RunReport struct {
	Date              string
	State             RunState
	OrdersRead        int
	AggregatesWritten bool
	ForecastsWritten  int
	Warnings          []string
	Attempts          int
	Elapsed           time.Duration
}

// BatchJob 批处理编排器：读订单 → 聚合 → 预测 → 写分析库。
// 同一时刻最多一次运行，并发触发直接拒绝而不是排队
type BatchJob struct {
	orderRepo     repository.OrderRepo
	analyticsRepo repository.AnalyticsRepo
	forecastSvc   service.ForecastService
	analyticsSvc  service.AnalyticsService
	forecastCfg   config.ForecastingConfig
	batchCfg      config.BatchConfig

	running atomic.Bool
	state   atomic.Value // RunState
}

func NewBatchJob(
	orderRepo repository.OrderRepo,
	analyticsRepo repository.AnalyticsRepo,
	forecastSvc service.ForecastService,
	analyticsSvc service.AnalyticsService,
	forecastCfg config.ForecastingConfig,
	batchCfg config.BatchConfig,
) *BatchJob {
	s := &BatchJob{
		orderRepo:     orderRepo,
		analyticsRepo: analyticsRepo,
		forecastSvc:   forecastSvc,
		analyticsSvc:  analyticsSvc,
		forecastCfg:   forecastCfg,
		batchCfg:      batchCfg,
	}
	s.state.Store(StateIdle)
	return s
}

// Run 定时触发入口，处理昨天的完整一天数据
func (s *BatchJob) Run() {
	traceID := "job-batch-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	report, err := s.RunForDate(ctx, util.Yesterday(time.Now()))
	if errors.Is(err, service.ErrBatchAlreadyRunning) {
		log.WarnContext(ctx, "batch run already in progress, trigger dropped")
		return
	}
	if err != nil {
		log.ErrorContext(ctx, "batch run failed",
			"date", report.Date,
			"attempts", report.Attempts,
			"err", err)
		return
	}

	log.InfoContext(ctx, "batch run completed",
		"date", report.Date,
		"orders_read", report.OrdersRead,
		"forecasts_written", report.ForecastsWritten,
		"warnings", report.Warnings,
		"elapsed", report.Elapsed)
}

// IsRunning 当前是否有运行中的批处理
func (s *BatchJob) IsRunning() bool {
	return s.running.Load()
}

// CurrentState 当前运行状态
func (s *BatchJob) CurrentState() RunState {
	return s.state.Load().(RunState)
}

// RunForDate 对指定日期执行一次完整批处理，手动补算也走这里。
// 可重试错误（订单库不可用、分析库写失败）按配置的次数退避重试，
// 历史不足只降级跳过预测，聚合结果照常落库
func (s *BatchJob) RunForDate(ctx context.Context, date time.Time) (*RunReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, service.ErrBatchAlreadyRunning
	}
	defer s.running.Store(false)
	defer s.state.Store(StateIdle)

	start := time.Now()
	day := util.GetMidnight(date)
	report := &RunReport{Date: util.FormatDate(day), State: StateFailed}

	maxAttempts := s.batchCfg.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := time.Duration(s.batchCfg.BackoffSeconds) * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		report.Attempts = attempt

		err := s.runOnce(ctx, day, report)
		if err == nil {
			report.State = StateCompleted
			report.Elapsed = time.Since(start)
			return report, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			break
		}

		log.WarnContext(ctx, "batch attempt failed, retrying",
			"date", report.Date,
			"attempt", attempt,
			"backoff", backoff*time.Duration(attempt),
			"err", err)

		select {
		case <-ctx.Done():
			report.Elapsed = time.Since(start)
			return report, ctx.Err()
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}

	report.Elapsed = time.Since(start)
	return report, lastErr
}

func (s *BatchJob) runOnce(ctx context.Context, day time.Time, report *RunReport) error {
	report.OrdersRead = 0
	report.AggregatesWritten = false
	report.ForecastsWritten = 0
	report.Warnings = nil

	// Reading：拉取目标日的全部订单与 SERVED 订单明细
	s.state.Store(StateReading)
	dayEnd := day.AddDate(0, 0, 1)

	orders, err := s.orderRepo.FetchOrders(ctx, day, dayEnd)
	if err != nil {
		return fmt.Errorf("%w: fetch orders: %v", service.ErrSourceUnavailable, err)
	}
	report.OrdersRead = len(orders)

	servedIDs := make([]uint64, 0, len(orders))
	for _, o := range orders {
		if o.Status == model.OrderStatusServed {
			servedIDs = append(servedIDs, o.ID)
		}
	}

	items, err := s.orderRepo.FetchOrderItems(ctx, servedIDs)
	if err != nil {
		return fmt.Errorf("%w: fetch order items: %v", service.ErrSourceUnavailable, err)
	}

	// Aggregating：纯内存计算
	s.state.Store(StateAggregating)
	agg := service.AggregateDay(day, orders, items, s.forecastCfg.TopItems)

	// Forecasting：历史窗口来自分析库，再叠加本次刚算出的聚合
	s.state.Store(StateForecasting)
	forecasts, err := s.buildForecasts(ctx, day, agg, report)
	if err != nil {
		return err
	}

	// Writing：聚合行单事务幂等覆盖，预测追加
	s.state.Store(StateWriting)
	if err := s.analyticsRepo.SaveDayAggregates(ctx, agg.Daily, agg.Hourly); err != nil {
		return fmt.Errorf("%w: aggregates for %s: %v", service.ErrAnalyticsWriteFailed, report.Date, err)
	}
	report.AggregatesWritten = true

	if len(forecasts) > 0 {
		if err := s.analyticsRepo.AppendForecasts(ctx, forecasts); err != nil {
			return fmt.Errorf("%w: forecasts for %s: %v", service.ErrAnalyticsWriteFailed, report.Date, err)
		}
		report.ForecastsWritten = len(forecasts)
	}

	s.analyticsSvc.InvalidateCache(ctx)
	return nil
}

// buildForecasts 组装两类预测。历史不足是软失败：记警告、跳过对应预测
func (s *BatchJob) buildForecasts(ctx context.Context, day time.Time, agg *service.DayAggregate, report *RunReport) ([]*model.ForecastHistory, error) {
	rows := make([]*model.ForecastHistory, 0, dailyForecastHorizon+24)

	dailyHistory, err := s.dailyRevenueHistory(ctx, day, agg)
	if err != nil {
		return nil, err
	}

	dailyRows, err := s.forecastSvc.DailyRevenueForecast(dailyHistory, dailyForecastHorizon, day)
	switch {
	case errors.Is(err, service.ErrInsufficientHistory):
		report.Warnings = append(report.Warnings, "insufficient history, daily revenue forecast skipped")
	case err != nil:
		return nil, err
	default:
		rows = append(rows, dailyRows...)
	}

	hourlyHistory, err := s.hourlyOrderHistory(ctx, day, agg)
	if err != nil {
		return nil, err
	}

	hourlyRows, err := s.forecastSvc.HourlyOrderForecast(hourlyHistory, day.AddDate(0, 0, 1))
	switch {
	case errors.Is(err, service.ErrInsufficientHistory):
		report.Warnings = append(report.Warnings, "insufficient history, hourly order forecast skipped")
	case err != nil:
		return nil, err
	default:
		rows = append(rows, hourlyRows...)
	}

	return rows, nil
}

// dailyRevenueHistory 读取预测窗口内的日营收，目标日以本次聚合结果为准
func (s *BatchJob) dailyRevenueHistory(ctx context.Context, day time.Time, agg *service.DayAggregate) ([]service.RevenuePoint, error) {
	cutoff := day.AddDate(0, 0, -s.forecastCfg.HistoryDaysDaily)
	stored, err := s.analyticsRepo.GetDailyRevenueSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%w: revenue history: %v", service.ErrAnalyticsWriteFailed, err)
	}

	points := make([]service.RevenuePoint, 0, len(stored)+1)
	for _, row := range stored {
		if row.Date.Equal(day) {
			continue
		}
		points = append(points, service.RevenuePoint{Date: row.Date, Revenue: row.TotalRevenue})
	}
	points = append(points, service.RevenuePoint{Date: day, Revenue: agg.Daily.TotalRevenue})
	return points, nil
}

// hourlyOrderHistory 读取预测窗口内的小时分布，目标日以本次聚合结果为准
func (s *BatchJob) hourlyOrderHistory(ctx context.Context, day time.Time, agg *service.DayAggregate) ([]service.HourlyPoint, error) {
	cutoff := day.AddDate(0, 0, -s.forecastCfg.HistoryDaysHourly)
	stored, err := s.analyticsRepo.GetHourlyOrdersSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%w: hourly history: %v", service.ErrAnalyticsWriteFailed, err)
	}

	points := make([]service.HourlyPoint, 0, len(stored)+24)
	for _, row := range stored {
		if row.Date.Equal(day) {
			continue
		}
		points = append(points, service.HourlyPoint{Date: row.Date, Hour: row.Hour, OrderCount: row.OrderCount})
	}
	for _, row := range agg.Hourly {
		points = append(points, service.HourlyPoint{Date: row.Date, Hour: row.Hour, OrderCount: row.OrderCount})
	}
	return points, nil
}

func retryable(err error) bool {
	return errors.Is(err, service.ErrSourceUnavailable) || errors.Is(err, service.ErrAnalyticsWriteFailed)
}
