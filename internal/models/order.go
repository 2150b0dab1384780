package models

import (
	"time"
)

// Order 订单表（创建后仅允许状态流转）
type Order struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                                                              // 主键
	OrderNumber       string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`                                         // 订单编号
	UserID            uint       `gorm:"not null;index:idx_orders_user_status,priority:1" json:"user_id"`                                   // 用户ID
	TotalAmount       Money      `gorm:"type:decimal(20,2);not null" json:"total_amount"`                                                   // 商品合计
	ShippingAmount    Money      `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"`                                      // 运费
	TaxAmount         Money      `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`                                           // 税费
	DiscountAmount    Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`                                      // 优惠
	Status            string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_user_status,priority:2" json:"status"` // 订单状态
	PaymentStatus     string     `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`                                 // 支付状态
	PaymentMethod     string     `gorm:"type:varchar(50)" json:"payment_method"`                                                            // 支付方式
	ShippingAddressID *uint      `gorm:"index" json:"shipping_address_id,omitempty"`                                                        // 收货地址
	BillingAddressID  *uint      `json:"billing_address_id,omitempty"`                                                                      // 账单地址
	Notes             string     `gorm:"type:text" json:"notes"`                                                                            // 备注
	ShippedAt         *time.Time `json:"shipped_at,omitempty"`                                                                              // 发货时间
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`                                                                            // 签收时间
	CanceledAt        *time.Time `json:"canceled_at,omitempty"`                                                                             // 取消/退款时间
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                                                           // 创建时间
	UpdatedAt         time.Time  `json:"updated_at"`                                                                                        // 更新时间

	User            *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`                // 下单用户
	Items           []OrderItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
	ShippingAddress *UserAddress `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`        // 收货地址快照
	BillingAddress  *UserAddress `gorm:"foreignKey:BillingAddressID" json:"-"`                                  // 账单地址
	ItemCount       int64        `gorm:"-:migration;->" json:"item_count,omitempty"`                            // 订单项数量（仅查询）
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
