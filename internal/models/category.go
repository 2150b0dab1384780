package models

import (
	"time"
)

// Category 商品分类表
type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`                               // 主键
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`             // 名称
	Slug        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"` // 唯一标识
	Description string    `gorm:"type:text" json:"description"`                       // 描述
	ImageURL    string    `gorm:"type:varchar(500)" json:"image_url"`                 // 图片
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`       // 是否启用
	SortOrder   int       `gorm:"not null;default:0;index" json:"sort_order"`         // 排序
	CreatedAt   time.Time `json:"created_at"`                                         // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                         // 更新时间

	ProductCount int64 `gorm:"-:migration;->" json:"product_count,omitempty"` // 启用商品数（仅查询）
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
