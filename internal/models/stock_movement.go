package models

import (
	"time"
)

// 库存流水方向
const (
	StockMovementIn         = "in"
	StockMovementOut        = "out"
	StockMovementAdjustment = "adjustment"
)

// 库存流水来源
const (
	StockReferencePurchase   = "purchase"
	StockReferenceSale       = "sale"
	StockReferenceReturn     = "return"
	StockReferenceAdjustment = "adjustment"
)

// StockMovement 库存流水（只追加）
type StockMovement struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                                                 // 主键
	ProductID     uint      `gorm:"not null;index" json:"product_id"`                                                     // 商品ID
	MovementType  string    `gorm:"type:varchar(20);not null;index" json:"movement_type"`                                 // in / out / adjustment
	Quantity      int       `gorm:"not null" json:"quantity"`                                                             // 数量（adjustment 可为负）
	ReferenceType string    `gorm:"type:varchar(20);not null;index:idx_stock_reference,priority:1" json:"reference_type"` // 来源类型
	ReferenceID   *uint     `gorm:"index:idx_stock_reference,priority:2" json:"reference_id,omitempty"`                   // 来源ID（订单ID等）
	Notes         string    `gorm:"type:text" json:"notes"`                                                               // 备注
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                                              // 创建时间

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (StockMovement) TableName() string {
	return "stock_movements"
}
