package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bossshopp/internal/cache"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"
)

const (
	settingsCacheKey = "settings:all"
	settingsCacheTTL = 5 * time.Minute
)

// publicSettingKeys 对匿名访问开放的配置
var publicSettingKeys = []string{
	models.SettingSiteName,
	models.SettingSiteDescription,
	models.SettingCurrency,
	models.SettingFreeShippingMinimum,
	models.SettingMaxCartItems,
	models.SettingMaintenanceMode,
}

// SettingService 系统设置服务
type SettingService struct {
	repo    repository.SettingRepository
	timeout time.Duration
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository, timeout time.Duration) *SettingService {
	return &SettingService{repo: repo, timeout: timeout}
}

// All 全部生效配置
func (s *SettingService) All(ctx context.Context) (map[string]string, error) {
	var cached map[string]string
	if hit, err := cache.GetJSON(ctx, settingsCacheKey, &cached); err != nil {
		logger.Warnw("setting_cache_read_failed", "error", err)
	} else if hit {
		return cached, nil
	}

	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.SettingKey] = row.SettingValue
	}
	if err := cache.SetJSON(ctx, settingsCacheKey, values, settingsCacheTTL); err != nil {
		logger.Warnw("setting_cache_write_failed", "error", err)
	}
	return values, nil
}

// Public 匿名可见配置
func (s *SettingService) Public(ctx context.Context) (map[string]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(publicSettingKeys))
	for _, key := range publicSettingKeys {
		if value, ok := all[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}

// Get 获取单个配置
func (s *SettingService) Get(ctx context.Context, key string) (string, bool, error) {
	all, err := s.All(ctx)
	if err != nil {
		return "", false, err
	}
	value, ok := all[strings.TrimSpace(key)]
	return value, ok, nil
}

// Set 写入配置并失效缓存
func (s *SettingService) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidInput
	}
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.repo.Upsert(ctx, key, value); err != nil {
		return err
	}
	if err := cache.Del(ctx, settingsCacheKey); err != nil {
		logger.Warnw("setting_cache_invalidate_failed", "key", key, "error", err)
	}
	return nil
}

// GetString 获取字符串配置，缺失或为空时返回默认值
func (s *SettingService) GetString(ctx context.Context, key, def string) string {
	if s == nil {
		return def
	}
	value, ok, err := s.Get(ctx, key)
	if err != nil {
		logger.Warnw("setting_read_failed", "key", key, "error", err)
		return def
	}
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

// GetInt 获取整数配置，缺失或非法时返回默认值
func (s *SettingService) GetInt(ctx context.Context, key string, def int) int {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warnw("setting_parse_int_failed", "key", key, "value", raw)
		return def
	}
	return parsed
}

// GetBool 获取布尔配置
func (s *SettingService) GetBool(ctx context.Context, key string, def bool) bool {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

// EnsureDefaults 补齐缺失的内置配置，返回新增条数
func (s *SettingService) EnsureDefaults(ctx context.Context) (int, error) {
	inserted := 0
	for _, setting := range models.DefaultSystemSettings() {
		ok, err := s.repo.EnsureDefault(ctx, setting)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	if inserted > 0 {
		if err := cache.Del(ctx, settingsCacheKey); err != nil {
			logger.Warnw("setting_cache_invalidate_failed", "error", err)
		}
	}
	return inserted, nil
}
