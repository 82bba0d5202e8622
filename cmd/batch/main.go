package main

import (
	"Tally/internal/api/config"
	"Tally/internal/job"
	"Tally/internal/pkg/database"
	"Tally/internal/pkg/logger"
	"Tally/internal/pkg/redis"
	"Tally/internal/pkg/util"
	"Tally/internal/repository"
	"Tally/internal/service"
	"context"
	"flag"
	log "log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// 手动批处理入口：不起 HTTP 服务，跑完一次目标日期的聚合与预测即退出。
// 常用于补算历史日期或排障重跑
func main() {
	dateFlag := flag.String("date", "", "target date (2006-01-02), defaults to yesterday")
	flag.Parse()

	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		os.Exit(1)
	}
	cfg := config.Cfg

	logger.InitLogger()

	targetDate := util.Yesterday(time.Now())
	if *dateFlag != "" {
		parsed, err := util.ParseDate(*dateFlag)
		if err != nil {
			log.Error("Invalid -date value", "date", *dateFlag, "err", err)
			os.Exit(1)
		}
		targetDate = parsed
	}

	orderDB, err := database.NewGormDB(&cfg.OrderDB)
	if err != nil {
		log.Error("Fatal error: failed to connect order database", "err", err)
		os.Exit(1)
	}

	if err = database.EnsureDatabase(&cfg.AnalyticsDB); err != nil {
		log.Error("Fatal error: failed to ensure analytics database", "err", err)
		os.Exit(1)
	}
	analyticsDB, err := database.NewGormDB(&cfg.AnalyticsDB)
	if err != nil {
		log.Error("Fatal error: failed to connect analytics database", "err", err)
		os.Exit(1)
	}

	// Redis 不可用时只丢失缓存失效，批处理照常执行
	if err = redis.InitRedis(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, cache invalidation skipped", "err", err)
	}

	orderRepo := repository.NewOrderRepo(orderDB)
	analyticsRepo := repository.NewAnalyticsRepo(analyticsDB)
	if err = analyticsRepo.EnsureSchema(); err != nil {
		log.Error("Fatal error: failed to ensure analytics schema", "err", err)
		os.Exit(1)
	}

	forecastService := service.NewForecastService(cfg.Forecasting)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	batchJob := job.NewBatchJob(orderRepo, analyticsRepo, forecastService, analyticsService, cfg.Forecasting, cfg.Batch)

	traceID := "cli-batch-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	report, err := batchJob.RunForDate(ctx, targetDate)
	if err != nil {
		log.ErrorContext(ctx, "batch run failed",
			"date", util.FormatDate(targetDate),
			"err", err)
		os.Exit(1)
	}

	log.InfoContext(ctx, "batch run completed",
		"date", report.Date,
		"orders_read", report.OrdersRead,
		"aggregates_written", report.AggregatesWritten,
		"forecasts_written", report.ForecastsWritten,
		"warnings", report.Warnings,
		"elapsed", report.Elapsed)
}
