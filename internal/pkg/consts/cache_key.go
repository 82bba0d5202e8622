package consts

// Redis 缓存 Key 前缀，批处理成功后按日期失效
const (
	DailySummariesKey  = "analytics:daily:"    // + start_end_limit
	TopItemsKey        = "analytics:topitems:" // + start_end_limit
	HourlyBreakdownKey = "analytics:hourly:"   // + date_days
	DailyForecastKey   = "analytics:forecast:daily"
	HourlyForecastKey  = "analytics:forecast:hourly:" // + date
)
