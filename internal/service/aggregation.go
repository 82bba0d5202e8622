package service

import (
	"Tally/internal/model"
	"Tally/internal/pkg/util"
	"math"
	"sort"
	"time"
)

// DefaultTopItems 热销排行默认条数，配置未给出时使用
const DefaultTopItems = 10

// DayAggregate 单日聚合结果：一行日汇总 + 固定 24 行小时分布
type DayAggregate struct {
	Daily  *model.DailyRevenueCache
	Hourly []*model.HourlyOrderCache
}

// AggregateDay 把一个自然日的订单与明细聚合为日汇总、小时分布和热销排行。
// 纯计算：相同输入产出完全相同的结果，重跑安全。
// 只有 SERVED 状态的订单计入营收与订单量，状态过滤在这里完成，不在读取层。
func AggregateDay(date time.Time, orders []*model.Order, items []*model.OrderItem, topK int) *DayAggregate {
	day := util.GetMidnight(date)

	var totalRevenue float64
	var orderCount int
	hourlyCounts := [24]int{}
	servedIDs := make(map[uint64]struct{})

	for _, o := range orders {
		if o.Status != model.OrderStatusServed {
			continue
		}
		totalRevenue += o.TotalAmount
		orderCount++
		hourlyCounts[o.CreatedAt.Hour()]++
		servedIDs[o.ID] = struct{}{}
	}

	// 订单量为 0 时均值定义为 0，不允许除零
	var avg float64
	if orderCount > 0 {
		avg = round2(totalRevenue / float64(orderCount))
	}

	daily := &model.DailyRevenueCache{
		Date:              day,
		TotalRevenue:      round2(totalRevenue),
		OrderCount:        orderCount,
		AverageOrderValue: avg,
		TopItems:          RankTopItems(items, servedIDs, topK),
	}

	hourly := make([]*model.HourlyOrderCache, 0, 24)
	for h := 0; h < 24; h++ {
		hourly = append(hourly, &model.HourlyOrderCache{
			Date:       day,
			Hour:       h,
			OrderCount: hourlyCounts[h],
		})
	}

	return &DayAggregate{Daily: daily, Hourly: hourly}
}

// RankTopItems 按商品聚合 SERVED 订单明细：销量求和、销售额 = Σ(数量×单价)。
// 销量降序，销量相同按 item_id 升序，保证排序稳定可复现
func RankTopItems(items []*model.OrderItem, servedIDs map[uint64]struct{}, topK int) []model.TopItem {
	if topK <= 0 {
		topK = DefaultTopItems
	}

	grouped := make(map[uint64]*model.TopItem)
	for _, it := range items {
		if _, ok := servedIDs[it.OrderID]; !ok {
			continue
		}
		entry, ok := grouped[it.ItemID]
		if !ok {
			entry = &model.TopItem{ItemID: it.ItemID, ItemName: it.ItemName}
			grouped[it.ItemID] = entry
		}
		entry.Quantity += it.Quantity
		entry.Revenue += float64(it.Quantity) * it.UnitPrice
	}

	ranked := make([]model.TopItem, 0, len(grouped))
	for _, entry := range grouped {
		entry.Revenue = round2(entry.Revenue)
		ranked = append(ranked, *entry)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].ItemID < ranked[j].ItemID
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
