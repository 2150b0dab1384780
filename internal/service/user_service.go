package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/bossshopp/internal/cache"
	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummyHash 未知邮箱也执行一次等成本的 bcrypt 比较
func compareDummyHash(password string) {
	dummyHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("bossshopp-dummy-password"), models.PasswordHashCost)
		if err == nil {
			dummyHash = hash
		}
	})
	if len(dummyHash) > 0 {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	}
}

// CreateUserInput 创建用户输入
type CreateUserInput struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	Address     string
	City        string
	State       string
	ZipCode     string
	Country     string
	DateOfBirth *time.Time
	IsAdmin     bool
	IsVendor    bool
}

// UpdateProfileInput 资料更新输入，nil 字段不修改
type UpdateProfileInput struct {
	Name        *string
	Phone       *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Country     *string
	DateOfBirth *time.Time
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID uint     `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// UserService 用户服务
type UserService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	timeout  time.Duration
}

// NewUserService 创建用户服务
func NewUserService(cfg *config.Config, userRepo repository.UserRepository) *UserService {
	return &UserService{
		cfg:      cfg,
		userRepo: userRepo,
		timeout:  cfg.Database.StatementTimeout(),
	}
}

// Create 注册用户，返回新用户 ID
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (uint, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return 0, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, ErrInvalidInput
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return 0, err
	}
	hash, err := models.HashPassword(input.Password)
	if err != nil {
		return 0, err
	}
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = constants.DefaultCountry
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		ZipCode:      strings.TrimSpace(input.ZipCode),
		Country:      country,
		DateOfBirth:  input.DateOfBirth,
		IsActive:     true,
		IsAdmin:      input.IsAdmin,
		IsVendor:     input.IsVendor,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		err = translateConstraint(err, ErrEmailExists)
		logger.Warnw("user_create_failed", "email", email, "error", err)
		return 0, err
	}
	logger.Infow("user_created", "user_id", user.ID)
	return user.ID, nil
}

// Authenticate 校验邮箱密码，任何不匹配均返回 (nil, nil)
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	normalized, err := normalizeEmail(email)
	if err != nil {
		compareDummyHash(password)
		return nil, nil
	}
	user, err := s.userRepo.GetActiveByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		compareDummyHash(password)
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}

	now := time.Now()
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		logger.Warnw("user_touch_last_login_failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	user.PasswordHash = ""
	return user, nil
}

// GetByID 获取启用用户
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.GetActiveByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile 更新资料（仅非 nil 字段）
func (s *UserService) UpdateProfile(ctx context.Context, id uint, input UpdateProfileInput) (*models.User, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	fields := map[string]interface{}{}
	setString := func(column string, value *string) {
		if value != nil {
			fields[column] = strings.TrimSpace(*value)
		}
	}
	setString("name", input.Name)
	setString("phone", input.Phone)
	setString("address", input.Address)
	setString("city", input.City)
	setString("state", input.State)
	setString("zip_code", input.ZipCode)
	setString("country", input.Country)
	if input.DateOfBirth != nil {
		fields["date_of_birth"] = *input.DateOfBirth
	}
	if name, ok := fields["name"]; ok && name == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if err := s.userRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Deactivate 软禁用用户
func (s *UserService) Deactivate(ctx context.Context, id uint) error {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	affected, err := s.userRepo.SetActive(ctx, id, false)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	if err := cache.InvalidateUserAuthState(ctx, id); err != nil {
		logger.Warnw("user_auth_state_invalidate_failed", "user_id", id, "error", err)
	}
	logger.Infow("user_deactivated", "user_id", id)
	return nil
}

// ResolveAuthState 获取鉴权快照，缓存未命中时回表
func (s *UserService) ResolveAuthState(ctx context.Context, id uint) (*cache.UserAuthState, error) {
	if state, hit, err := cache.LoadUserAuthState(ctx, id); err == nil && hit {
		return state, nil
	}
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	state := cache.NewUserAuthState(user)
	if err := cache.StoreUserAuthState(ctx, state); err != nil {
		logger.Warnw("user_auth_state_cache_failed", "user_id", id, "error", err)
	}
	return state, nil
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	hours := s.cfg.UserJWT.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := UserJWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ListUsers 管理端用户列表
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserListFilter) ([]models.User, int64, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.userRepo.List(ctx, filter)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
