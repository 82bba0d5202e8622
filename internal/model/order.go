package model

import (
	"time"
)

// 订单状态，取值与订单服务保持一致
const (
	OrderStatusCreated   = "CREATED"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusServed    = "SERVED"
)

// Order 订单表只读映射。表由订单服务维护，本服务禁止写入
type Order struct {
	ID          uint64    `gorm:"primaryKey"`
	CreatedAt   time.Time `gorm:"not null"`
	Status      string    `gorm:"not null;size:20"`
	TableID     uint64    `gorm:"not null"`
	TotalAmount float64   `gorm:"type:decimal(10,2)"`
	UserID      uint64    `gorm:"not null"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单明细只读映射，仅用于热销商品排行
type OrderItem struct {
	ID        uint64  `gorm:"primaryKey"`
	OrderID   uint64  `gorm:"not null;index"`
	ItemID    uint64  `gorm:"not null"`
	ItemName  string  `gorm:"not null;size:255"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"not null;type:decimal(10,2)"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
