package models

import (
	"time"
)

// OrderItem 订单项（下单时的价格快照，不随商品改价变化）
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                           // 主键
	OrderID     uint      `gorm:"not null;index" json:"order_id"`                 // 订单ID
	ProductID   uint      `gorm:"not null;index" json:"product_id"`               // 商品ID
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"` // 商品名称快照
	Quantity    int       `gorm:"not null" json:"quantity"`                       // 数量
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null" json:"unit_price"`  // 单价快照
	TotalPrice  Money     `gorm:"type:decimal(20,2);not null" json:"total_price"` // 小计
	CreatedAt   time.Time `json:"created_at"`                                     // 创建时间

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
