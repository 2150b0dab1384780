package models

import (
	"time"
)

// User 用户表
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                       // 主键
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`                     // 姓名
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`        // 邮箱（唯一）
	PasswordHash string     `gorm:"column:password;type:varchar(255);not null" json:"-"`        // 密码哈希（不返回给前端）
	Phone        string     `gorm:"type:varchar(20)" json:"phone"`                              // 电话
	Address      string     `gorm:"type:text" json:"address"`                                   // 地址
	City         string     `gorm:"type:varchar(100)" json:"city"`                              // 城市
	State        string     `gorm:"type:varchar(50)" json:"state"`                              // 州/省
	ZipCode      string     `gorm:"type:varchar(20)" json:"zip_code"`                           // 邮编
	Country      string     `gorm:"type:varchar(100);not null;default:'Brasil'" json:"country"` // 国家
	DateOfBirth  *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`                   // 出生日期
	IsActive     bool       `gorm:"not null;default:true;index" json:"is_active"`               // 是否启用（软禁用）
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`                     // 管理员
	IsVendor     bool       `gorm:"not null;default:false" json:"is_vendor"`                    // 商家
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`                                    // 最后登录时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                 // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Roles 根据标记推导角色（用于 RBAC 同步）
func (u *User) Roles() []string {
	if u == nil {
		return nil
	}
	roles := []string{"customer"}
	if u.IsVendor {
		roles = append(roles, "vendor")
	}
	if u.IsAdmin {
		roles = append(roles, "admin")
	}
	return roles
}
