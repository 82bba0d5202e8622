package wire

import (
	"Tally/internal/api"
	"Tally/internal/api/config"
	"Tally/internal/api/handler"
	"Tally/internal/job"
	"Tally/internal/pkg/cron"
	"Tally/internal/repository"
	"Tally/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router   *gin.Engine
	OrderDB  *gorm.DB
	CronMgr  *cron.Manager
	BatchJob *job.BatchJob
}

func BuildApplication(orderDB, analyticsDB *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	orderRepo := repository.NewOrderRepo(orderDB)
	analyticsRepo := repository.NewAnalyticsRepo(analyticsDB)

	// 分析库表结构幂等建表，只在启动时执行一次
	if err := analyticsRepo.EnsureSchema(); err != nil {
		return nil, err
	}

	forecastService := service.NewForecastService(cfg.Forecasting)
	analyticsService := service.NewAnalyticsService(analyticsRepo)

	batchJob := job.NewBatchJob(orderRepo, analyticsRepo, forecastService, analyticsService, cfg.Forecasting, cfg.Batch)

	handlers := &api.HandlersGroup{
		AnalyticsHandler: handler.NewAnalyticsHandler(analyticsService),
		BatchHandler:     handler.NewBatchHandler(batchJob),
	}

	router := api.SetupRouter(handlers)
	cronMgr := cron.NewCronManager(batchJob, cfg.Scheduler)

	return &ApplicationContainer{
		Router:   router,
		OrderDB:  orderDB,
		CronMgr:  cronMgr,
		BatchJob: batchJob,
	}, nil
}
