package cron

import (
	"Tally/internal/api/config"
	"Tally/internal/job"
	"fmt"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine   *cron.Cron
	batchJob *job.BatchJob
	cfg      config.SchedulerConfig
}

func NewCronManager(batchJob *job.BatchJob, cfg config.SchedulerConfig) *Manager {
	return &Manager{
		engine:   cron.New(cron.WithSeconds()),
		batchJob: batchJob,
		cfg:      cfg,
	}
}

// RegisterJobs 注册定时任务。run_time 非法时回退到 00:00
func (s *Manager) RegisterJobs() error {
	if !s.cfg.Enabled {
		log.Info("Scheduler disabled in configuration, batch job not registered")
		return nil
	}

	var hour, minute int
	if _, err := fmt.Sscanf(s.cfg.RunTime, "%d:%d", &hour, &minute); err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		log.Error("Invalid scheduler run_time, falling back to 00:00", "run_time", s.cfg.RunTime)
		hour, minute = 0, 0
	}

	spec := fmt.Sprintf("0 %d %d * * *", minute, hour)
	if _, err := s.engine.AddJob(spec, s.batchJob); err != nil {
		return err
	}

	log.Info("Batch job scheduled", "hour", hour, "minute", minute)
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
