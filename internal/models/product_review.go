package models

import (
	"time"
)

// ProductReview 商品评价（同一用户对同一商品仅一条）
type ProductReview struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                                                                                    // 主键
	ProductID          uint      `gorm:"not null;uniqueIndex:idx_review_user_product,priority:2;index:idx_reviews_product_approved,priority:1" json:"product_id"` // 商品ID
	UserID             uint      `gorm:"not null;uniqueIndex:idx_review_user_product,priority:1" json:"user_id"`                                                  // 用户ID
	Rating             int       `gorm:"not null;check:chk_product_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`                                     // 评分 1-5
	Title              string    `gorm:"type:varchar(255)" json:"title"`                                                                                          // 标题
	Comment            string    `gorm:"type:text" json:"comment"`                                                                                                // 内容
	IsVerifiedPurchase bool      `gorm:"not null;default:false" json:"is_verified_purchase"`                                                                      // 是否已购
	IsApproved         bool      `gorm:"not null;default:true;index:idx_reviews_product_approved,priority:2" json:"is_approved"`                                  // 是否审核通过
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                                                                                 // 创建时间
	UpdatedAt          time.Time `json:"updated_at"`                                                                                                              // 更新时间

	UserName string   `gorm:"-:migration;->" json:"user_name,omitempty"`                 // 评价人（仅查询）
	User     *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`    // 评价用户
	Product  *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"` // 被评商品
}

// TableName 指定表名
func (ProductReview) TableName() string {
	return "product_reviews"
}
