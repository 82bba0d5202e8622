package database

import (
	"Tally/internal/api/config"
	"Tally/internal/pkg/logger"
	"database/sql"
	"fmt"
	log "log/slog"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewGormDB 初始化并返回 *gorm.DB 实例，处理连接池配置
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	dialector = mysql.Open(cfg.DSN)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      logger.NewGormLogger(),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	log.Info("Database connection established successfully.")
	return db, nil
}

// EnsureDatabase 分析库不存在时自动创建。订单库由订单服务维护，禁止对其调用
func EnsureDatabase(cfg *config.DBConfig) error {
	dsnCfg, err := driver.ParseDSN(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse dsn: %w", err)
	}

	dbName := dsnCfg.DBName
	dsnCfg.DBName = ""

	conn, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to connect without schema: %w", err)
	}
	defer conn.Close()

	_, err = conn.Exec("CREATE DATABASE IF NOT EXISTS `" + dbName + "` CHARACTER SET utf8mb4")
	if err != nil {
		return fmt.Errorf("failed to create database %s: %w", dbName, err)
	}

	log.Info("Analytics database ready", "database", dbName)
	return nil
}
