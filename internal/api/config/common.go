package config

// Config 配置主体
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	OrderDB     DBConfig          `mapstructure:"order_database"`
	AnalyticsDB DBConfig          `mapstructure:"analytics_database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Forecasting ForecastingConfig `mapstructure:"forecasting"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Batch       BatchConfig       `mapstructure:"batch"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置（订单库与分析库各一份）
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// ForecastingConfig 预测参数配置
type ForecastingConfig struct {
	MovingAverageWindow int     `mapstructure:"moving_average_window"`
	SmoothingAlpha      float64 `mapstructure:"smoothing_alpha"`
	TrendBeta           float64 `mapstructure:"trend_beta"`
	PolynomialDegree    int     `mapstructure:"polynomial_degree"`
	OutlierDetection    bool    `mapstructure:"outlier_detection"`
	HistoryDaysDaily    int     `mapstructure:"history_days_daily"`
	HistoryDaysHourly   int     `mapstructure:"history_days_hourly"`
	TopItems            int     `mapstructure:"top_items"`
}

// SchedulerConfig 定时任务配置，run_time 格式 "HH:MM"
type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	RunTime string `mapstructure:"run_time"`
}

// BatchConfig 批处理重试配置
type BatchConfig struct {
	MaxRetries     int `mapstructure:"max_retries"`
	BackoffSeconds int `mapstructure:"backoff_seconds"`
}
