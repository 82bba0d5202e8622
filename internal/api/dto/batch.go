package dto

// RunBatchRequest 手动触发批处理，date 为空时默认处理昨天
type RunBatchRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// BatchRunDTO 一次批处理运行的结果摘要
type BatchRunDTO struct {
	Date              string   `json:"date"`
	State             string   `json:"state"`
	OrdersRead        int      `json:"ordersRead"`
	AggregatesWritten bool     `json:"aggregatesWritten"`
	ForecastsWritten  int      `json:"forecastsWritten"`
	Warnings          []string `json:"warnings"`
	Attempts          int      `json:"attempts"`
	ElapsedMs         int64    `json:"elapsedMs"`
}
