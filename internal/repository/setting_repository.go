package repository

import (
	"context"
	"errors"

	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 系统设置数据访问接口
type SettingRepository interface {
	ListActive(ctx context.Context) ([]models.SystemSetting, error)
	GetByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	Upsert(ctx context.Context, key, value string) (*models.SystemSetting, error)
	EnsureDefault(ctx context.Context, setting models.SystemSetting) (bool, error)
}

// GormSettingRepository GORM 实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// ListActive 全部生效配置
func (r *GormSettingRepository) ListActive(ctx context.Context) ([]models.SystemSetting, error) {
	var settings []models.SystemSetting
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("setting_key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// GetByKey 获取生效配置
func (r *GormSettingRepository) GetByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	err := r.db.WithContext(ctx).Where("setting_key = ? AND is_active = ?", key, true).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// Upsert 按 setting_key 写入配置
func (r *GormSettingRepository) Upsert(ctx context.Context, key, value string) (*models.SystemSetting, error) {
	setting := models.SystemSetting{SettingKey: key, SettingValue: value, IsActive: true}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, err
	}
	var stored models.SystemSetting
	if err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// EnsureDefault 不存在时插入默认配置，返回是否插入
func (r *GormSettingRepository) EnsureDefault(ctx context.Context, setting models.SystemSetting) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&setting)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
