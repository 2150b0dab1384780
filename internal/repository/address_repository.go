package repository

import (
	"context"
	"errors"

	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
)

// AddressRepository 收货地址数据访问接口
type AddressRepository interface {
	Create(ctx context.Context, address *models.UserAddress) error
	ListByUser(ctx context.Context, userID uint) ([]models.UserAddress, error)
	GetByUser(ctx context.Context, userID, addressID uint) (*models.UserAddress, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	ClearDefault(ctx context.Context, userID uint) error
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AddressRepository
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAddressRepository) WithTx(tx *gorm.DB) AddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// Create 新增地址
func (r *GormAddressRepository) Create(ctx context.Context, address *models.UserAddress) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// ListByUser 默认地址优先，其余按创建时间倒序
func (r *GormAddressRepository) ListByUser(ctx context.Context, userID uint) ([]models.UserAddress, error) {
	var addresses []models.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// GetByUser 获取属于该用户的地址
func (r *GormAddressRepository) GetByUser(ctx context.Context, userID, addressID uint) (*models.UserAddress, error) {
	var address models.UserAddress
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// CountByUser 用户地址数量
func (r *GormAddressRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserAddress{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ClearDefault 取消用户全部默认地址
func (r *GormAddressRepository) ClearDefault(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.UserAddress{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

// Transaction 执行事务
func (r *GormAddressRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(fn)
}
