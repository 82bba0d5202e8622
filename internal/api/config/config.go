package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

// setDefaults 预测与调度参数的缺省值，配置文件可覆盖
func setDefaults() {
	viper.SetDefault("forecasting.moving_average_window", 7)
	viper.SetDefault("forecasting.smoothing_alpha", 0.3)
	viper.SetDefault("forecasting.trend_beta", 0.1)
	viper.SetDefault("forecasting.polynomial_degree", 2)
	viper.SetDefault("forecasting.outlier_detection", true)
	viper.SetDefault("forecasting.history_days_daily", 30)
	viper.SetDefault("forecasting.history_days_hourly", 7)
	viper.SetDefault("forecasting.top_items", 10)
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.run_time", "00:00")
	viper.SetDefault("batch.max_retries", 3)
	viper.SetDefault("batch.backoff_seconds", 30)
}
