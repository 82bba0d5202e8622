package service

import (
	"Tally/internal/api/config"
	"Tally/internal/model"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// 模型版本号随预测方法一同写入 forecast_history，方法演进后历史预测仍可比对
const (
	DailyModelVersion  = "ensemble-v1"
	HourlyModelVersion = "hourly-ewa-v1"
)

// MinHistoryPoints 低于该历史点数时不产出预测，返回 ErrInsufficientHistory
const MinHistoryPoints = 2

// RevenuePoint 日营收历史点
type RevenuePoint struct {
	Date    time.Time
	Revenue float64
}

// HourlyPoint 小时订单量历史点
type HourlyPoint struct {
	Date       time.Time
	Hour       int
	OrderCount int
}

type ForecastService interface {
	// DailyRevenueForecast 基于日营收历史窗口预测未来 horizon 天营收。
	// 逐日递推：先预测 from+1，并把该预测并入窗口再预测 from+2，依此类推
	DailyRevenueForecast(history []RevenuePoint, horizon int, from time.Time) ([]*model.ForecastHistory, error)
	// HourlyOrderForecast 基于近几日的小时分布预测 targetDate 每小时订单量，恒定 24 条
	HourlyOrderForecast(history []HourlyPoint, targetDate time.Time) ([]*model.ForecastHistory, error)
}

type forecastServiceImpl struct {
	cfg config.ForecastingConfig
}

func NewForecastService(cfg config.ForecastingConfig) ForecastService {
	return &forecastServiceImpl{cfg: cfg}
}

func (s *forecastServiceImpl) DailyRevenueForecast(history []RevenuePoint, horizon int, from time.Time) ([]*model.ForecastHistory, error) {
	if len(history) < MinHistoryPoints {
		return nil, ErrInsufficientHistory
	}

	window := make([]RevenuePoint, len(history))
	copy(window, history)
	sort.Slice(window, func(i, j int) bool { return window[i].Date.Before(window[j].Date) })

	rows := make([]*model.ForecastHistory, 0, horizon)
	for ahead := 1; ahead <= horizon; ahead++ {
		forecastDate := from.AddDate(0, 0, ahead)
		value := s.ensemble(window)
		rows = append(rows, &model.ForecastHistory{
			ForecastType:  model.ForecastTypeDailyRevenue,
			ForecastValue: value,
			ForecastDate:  forecastDate,
			ModelVersion:  DailyModelVersion,
		})
		window = append(window, RevenuePoint{Date: forecastDate, Revenue: value})
	}

	return rows, nil
}

func (s *forecastServiceImpl) HourlyOrderForecast(history []HourlyPoint, targetDate time.Time) ([]*model.ForecastHistory, error) {
	// 历史长度按覆盖的天数衡量，单独一天的分布不足以外推
	days := make(map[time.Time]struct{})
	for _, p := range history {
		days[p.Date] = struct{}{}
	}
	if len(days) < MinHistoryPoints {
		return nil, ErrInsufficientHistory
	}

	// 按日期升序分组，保证指数权重总是偏向较新的一天
	sorted := make([]HourlyPoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Hour < sorted[j].Hour
	})

	hourGroups := make(map[int][]float64)
	for _, p := range sorted {
		if p.Hour < 0 || p.Hour > 23 {
			continue
		}
		hourGroups[p.Hour] = append(hourGroups[p.Hour], float64(p.OrderCount))
	}

	values := [24]float64{}
	for h := 0; h < 24; h++ {
		if samples, ok := hourGroups[h]; ok && len(samples) > 0 {
			values[h] = round2(weightedAverage(s.dampenOutliers(samples)))
		}
	}
	interpolateZeroHours(&values)

	rows := make([]*model.ForecastHistory, 0, 24)
	for h := 0; h < 24; h++ {
		rows = append(rows, &model.ForecastHistory{
			ForecastType:  fmt.Sprintf("%s%02d", model.ForecastTypeHourlyPrefix, h),
			ForecastValue: values[h],
			ForecastDate:  targetDate,
			ModelVersion:  HourlyModelVersion,
		})
	}
	return rows, nil
}

// ensemble 组合多种方法的加权平均：Holt 双指数平滑 0.30、加权滑动平均 0.25、
// 线性回归 0.25、多项式回归 0.20，未触发的方法按剩余权重归一化
func (s *forecastServiceImpl) ensemble(window []RevenuePoint) float64 {
	values := make([]float64, len(window))
	for i, p := range window {
		values[i] = p.Revenue
	}

	var forecasts, weights []float64

	if v := s.exponentialSmoothing(values); v > 0 {
		forecasts = append(forecasts, v)
		weights = append(weights, 0.30)
	}
	if v := s.weightedMovingAverage(values); v > 0 {
		forecasts = append(forecasts, v)
		weights = append(weights, 0.25)
	}
	if len(window) >= 3 {
		if v := s.linearRegression(window); v > 0 {
			forecasts = append(forecasts, v)
			weights = append(weights, 0.25)
		}
	}
	if len(window) >= 5 {
		if v := s.polynomialRegression(window); v > 0 {
			forecasts = append(forecasts, v)
			weights = append(weights, 0.20)
		}
	}

	if len(forecasts) == 0 {
		return 0
	}

	var totalWeight, sum float64
	for _, w := range weights {
		totalWeight += w
	}
	for i, f := range forecasts {
		sum += f * weights[i] / totalWeight
	}
	return round2(sum)
}

// exponentialSmoothing Holt 双指数平滑，level 和 trend 分别按 alpha、beta 更新
func (s *forecastServiceImpl) exponentialSmoothing(values []float64) float64 {
	values = s.dampenOutliers(values)
	if len(values) == 0 {
		return 0
	}
	if len(values) < 2 {
		return round2(values[0])
	}

	level := values[0]
	trend := values[1] - values[0]
	for _, v := range values[1:] {
		lastLevel := level
		level = s.cfg.SmoothingAlpha*v + (1-s.cfg.SmoothingAlpha)*(level+trend)
		trend = s.cfg.TrendBeta*(level-lastLevel) + (1-s.cfg.TrendBeta)*trend
	}

	return round2(math.Max(0, level+trend))
}

// weightedMovingAverage 取窗口内最近 N 个点，越新权重越大
func (s *forecastServiceImpl) weightedMovingAverage(values []float64) float64 {
	n := s.cfg.MovingAverageWindow
	if n <= 0 {
		n = 7
	}
	if len(values) > n {
		values = values[len(values)-n:]
	}
	values = s.dampenOutliers(values)
	if len(values) == 0 {
		return 0
	}
	return round2(weightedAverage(values))
}

func (s *forecastServiceImpl) linearRegression(window []RevenuePoint) float64 {
	first := window[0].Date
	ys := make([]float64, len(window))
	for i, p := range window {
		ys[i] = p.Revenue
	}
	ys = s.dampenOutliers(ys)

	series := make(stats.Series, len(window))
	for i, p := range window {
		series[i] = stats.Coordinate{
			X: float64(int(p.Date.Sub(first).Hours() / 24)),
			Y: ys[i],
		}
	}

	fitted, err := stats.LinearRegression(series)
	if err != nil || len(fitted) < 2 {
		return 0
	}

	last := len(fitted) - 1
	dx := fitted[last].X - fitted[0].X
	if dx == 0 {
		return 0
	}
	slope := (fitted[last].Y - fitted[0].Y) / dx
	intercept := fitted[0].Y - slope*fitted[0].X

	pred := intercept + slope*(fitted[last].X+1)
	return round2(math.Max(0, pred))
}

// polynomialRegression 最小二乘多项式拟合，正规方程高斯消元求解
func (s *forecastServiceImpl) polynomialRegression(window []RevenuePoint) float64 {
	degree := s.cfg.PolynomialDegree
	if degree < 1 {
		degree = 2
	}
	if len(window) < degree+1 {
		return 0
	}

	first := window[0].Date
	xs := make([]float64, len(window))
	ys := make([]float64, len(window))
	for i, p := range window {
		xs[i] = float64(int(p.Date.Sub(first).Hours() / 24))
		ys[i] = p.Revenue
	}
	ys = s.dampenOutliers(ys)

	coeffs, ok := polyFit(xs, ys, degree)
	if !ok {
		return 0
	}

	next := xs[len(xs)-1] + 1
	var pred float64
	for i, c := range coeffs {
		pred += c * math.Pow(next, float64(i))
	}
	return round2(math.Max(0, pred))
}

// dampenOutliers IQR 法识别离群点并用中位数替换，不整体剔除以保留序列长度
func (s *forecastServiceImpl) dampenOutliers(values []float64) []float64 {
	if !s.cfg.OutlierDetection || len(values) < 4 {
		return values
	}

	q1, err1 := stats.Percentile(values, 25)
	q3, err2 := stats.Percentile(values, 75)
	med, err3 := stats.Median(values)
	if err1 != nil || err2 != nil || err3 != nil {
		return values
	}

	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	cleaned := make([]float64, len(values))
	for i, v := range values {
		if v < lower || v > upper {
			cleaned[i] = med
		} else {
			cleaned[i] = v
		}
	}
	return cleaned
}

// weightedAverage 指数权重平均，权重 e^linspace(0,1,n) 归一化
func weightedAverage(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return values[0]
	}

	var weightSum, sum float64
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		weights[i] = math.Exp(float64(i) / float64(n-1))
		weightSum += weights[i]
	}
	for i, v := range values {
		sum += v * weights[i] / weightSum
	}
	return sum
}

// interpolateZeroHours 对内部的零值小时用左右邻居线性插值，填补偶发缺口。
// 以原始分布为基准插值，避免插值结果向后连锁扩散
func interpolateZeroHours(values *[24]float64) {
	original := *values
	for h := 1; h < 23; h++ {
		if original[h] != 0 {
			continue
		}
		prev := original[h-1]
		next := original[h+1]
		if prev > 0 || next > 0 {
			values[h] = round2((prev + next) / 2)
		}
	}
}

// polyFit 解正规方程 (X^T X) c = X^T y，返回按幂次升序的系数
func polyFit(xs, ys []float64, degree int) ([]float64, bool) {
	n := degree + 1

	// 构造增广矩阵
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n+1)
		for j := 0; j < n; j++ {
			var sum float64
			for k := range xs {
				sum += math.Pow(xs[k], float64(i+j))
			}
			m[i][j] = sum
		}
		var rhs float64
		for k := range xs {
			rhs += ys[k] * math.Pow(xs[k], float64(i))
		}
		m[i][n] = rhs
	}

	// 列主元高斯消元
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < n; row++ {
			factor := m[row][col] / m[col][col]
			for j := col; j <= n; j++ {
				m[row][j] -= factor * m[col][j]
			}
		}
	}

	coeffs := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * coeffs[j]
		}
		coeffs[i] = sum / m[i][i]
	}
	return coeffs, true
}
