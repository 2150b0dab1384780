package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品表
type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`                                                                 // 主键
	CategoryID    uint            `gorm:"not null;index:idx_products_category_active,priority:1" json:"category_id"`            // 分类ID
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name"`                                         // 名称
	Description   string          `gorm:"type:text" json:"description"`                                                         // 描述
	Price         Money           `gorm:"type:decimal(20,2);not null" json:"price"`                                             // 当前售价
	OldPrice      *Money          `gorm:"type:decimal(20,2)" json:"old_price,omitempty"`                                        // 原价（用于折扣展示）
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`                                             // 库存
	SKU           *string         `gorm:"column:sku;type:varchar(100);uniqueIndex" json:"sku,omitempty"`                        // SKU（唯一，可空）
	Weight        decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"weight"`                                   // 重量
	Dimensions    string          `gorm:"type:varchar(100)" json:"dimensions"`                                                  // 尺寸
	ImageURL      string          `gorm:"type:varchar(500)" json:"image_url"`                                                   // 主图
	IsActive      bool            `gorm:"not null;default:true;index:idx_products_category_active,priority:2" json:"is_active"` // 是否上架
	IsFeatured    bool            `gorm:"not null;default:false;index" json:"is_featured"`                                      // 是否推荐
	Rating        decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rating"`                                   // 平均评分（冗余聚合）
	ReviewCount   int             `gorm:"not null;default:0" json:"review_count"`                                               // 已审核评价数（冗余聚合）
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`                                                              // 创建时间
	UpdatedAt     time.Time       `json:"updated_at"`                                                                           // 更新时间

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 所属分类
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// SKUValue 返回 SKU 文本（为空时返回空串）
func (p *Product) SKUValue() string {
	if p == nil || p.SKU == nil {
		return ""
	}
	return *p.SKU
}
