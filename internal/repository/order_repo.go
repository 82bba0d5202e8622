package repository

import (
	"Tally/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// fetchItemsChunkSize IN 查询分批大小，避免超长 SQL
const fetchItemsChunkSize = 500

// OrderRepo 订单库只读访问。表由订单服务维护，任何写操作都不允许出现在这里。
// 状态过滤不在此层做，读取层忠实返回区间内的全部订单
type OrderRepo interface {
	// FetchOrders 返回 [start, end) 区间内的全部订单
	FetchOrders(ctx context.Context, start, end time.Time) ([]*model.Order, error)
	// FetchOrderItems 按订单 ID 批量返回订单明细
	FetchOrderItems(ctx context.Context, orderIDs []uint64) ([]*model.OrderItem, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepo {
	return &orderRepoImpl{db: db}
}

func (r *orderRepoImpl) FetchOrders(ctx context.Context, start, end time.Time) ([]*model.Order, error) {
	orders := make([]*model.Order, 0)
	result := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("id ASC").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}
	return orders, nil
}

func (r *orderRepoImpl) FetchOrderItems(ctx context.Context, orderIDs []uint64) ([]*model.OrderItem, error) {
	items := make([]*model.OrderItem, 0)
	for i := 0; i < len(orderIDs); i += fetchItemsChunkSize {
		end := i + fetchItemsChunkSize
		if end > len(orderIDs) {
			end = len(orderIDs)
		}

		chunk := make([]*model.OrderItem, 0)
		result := r.db.WithContext(ctx).
			Where("order_id IN ?", orderIDs[i:end]).
			Order("id ASC").
			Find(&chunk)
		if result.Error != nil {
			return nil, result.Error
		}
		items = append(items, chunk...)
	}
	return items, nil
}
