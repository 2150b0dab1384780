package models

import (
	"errors"
	"strings"

	"github.com/bossshopp/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// PasswordHashCost 密码哈希固定成本
	PasswordHashCost = 10

	defaultAdminEmail    = "admin@bossshopp.com"
	defaultAdminPassword = "admin123"
)

// HashPassword 生成 bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// InitDefaultAdmin 初始化默认管理员账号
// 已存在管理员时仅确保其为启用状态
func InitDefaultAdmin(db *gorm.DB, email, password string) (*User, error) {
	var existing User
	err := db.Where("is_admin = ?", true).Order("id asc").First(&existing).Error
	if err == nil {
		if !existing.IsActive {
			if err := db.Model(&existing).Update("is_active", true).Error; err != nil {
				logger.Warnw("ensure_default_admin_active_failed", "user_id", existing.ID, "error", err)
			}
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = defaultAdminEmail
	}
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := User{
		Name:         "Administrador",
		Email:        email,
		PasswordHash: hash,
		City:         "São Paulo",
		State:        "SP",
		Country:      "Brasil",
		IsActive:     true,
		IsAdmin:      true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "email", email)
		logger.Warnw("default_admin_password_change_required", "email", email)
	} else {
		logger.Warnw("default_admin_created", "email", email, "password_hidden", true)
	}
	return &admin, nil
}
