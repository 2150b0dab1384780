package models

import (
	"time"
)

// UserAddress 用户收货地址
type UserAddress struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                       // 主键
	UserID       uint      `gorm:"not null;index" json:"user_id"`                              // 用户ID
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`                     // 地址名称（家/公司）
	Street       string    `gorm:"type:varchar(255);not null" json:"street"`                   // 街道
	Number       string    `gorm:"type:varchar(20);not null" json:"number"`                    // 门牌号
	Complement   string    `gorm:"type:varchar(100)" json:"complement"`                        // 补充信息
	Neighborhood string    `gorm:"type:varchar(100);not null" json:"neighborhood"`             // 街区
	City         string    `gorm:"type:varchar(100);not null" json:"city"`                     // 城市
	State        string    `gorm:"type:varchar(50);not null" json:"state"`                     // 州/省
	ZipCode      string    `gorm:"type:varchar(20);not null" json:"zip_code"`                  // 邮编
	Country      string    `gorm:"type:varchar(100);not null;default:'Brasil'" json:"country"` // 国家
	IsDefault    bool      `gorm:"not null;default:false" json:"is_default"`                   // 是否默认地址
	CreatedAt    time.Time `json:"created_at"`                                                 // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                                 // 更新时间

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"` // 所属用户
}

// TableName 指定表名
func (UserAddress) TableName() string {
	return "user_addresses"
}
