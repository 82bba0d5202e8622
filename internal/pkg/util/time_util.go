package util

import (
	"time"
)

const DateLayout = "2006-01-02"

// GetMidnight 返回 t 所在日期的零点
func GetMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Yesterday 返回昨天的零点，批处理默认目标日期
func Yesterday(now time.Time) time.Time {
	return GetMidnight(now).AddDate(0, 0, -1)
}

// ParseDate 解析 "2006-01-02" 格式日期，返回当日零点（UTC）
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate 格式化为 "2006-01-02"
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
