package handler

import (
	"Tally/internal/api/dto"
	"Tally/internal/job"
	"Tally/internal/pkg/response"
	"Tally/internal/pkg/util"
	"Tally/internal/service"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type BatchHandler struct {
	batchJob *job.BatchJob
}

func NewBatchHandler(batchJob *job.BatchJob) *BatchHandler {
	return &BatchHandler{
		batchJob: batchJob,
	}
}

// RunBatch POST /api/analytics/batch/run 手动触发/补算，同步执行并返回运行摘要
func (s *BatchHandler) RunBatch(c *gin.Context) {
	var req dto.RunBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, err)
		return
	}

	targetDate := util.Yesterday(time.Now())
	if req.Date != "" {
		parsed, err := util.ParseDate(req.Date)
		if err != nil {
			response.Error(c, service.ErrInvalidDate)
			return
		}
		targetDate = parsed
	}

	report, err := s.batchJob.RunForDate(c.Request.Context(), targetDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBatchRunDTO(report))
}

// Health GET /api/health
func (s *BatchHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"batch_state": s.batchJob.CurrentState(),
	})
}

func toBatchRunDTO(report *job.RunReport) *dto.BatchRunDTO {
	return &dto.BatchRunDTO{
		Date:              report.Date,
		State:             string(report.State),
		OrdersRead:        report.OrdersRead,
		AggregatesWritten: report.AggregatesWritten,
		ForecastsWritten:  report.ForecastsWritten,
		Warnings:          report.Warnings,
		Attempts:          report.Attempts,
		ElapsedMs:         report.Elapsed.Milliseconds(),
	}
}
