package service

import (
	"context"
	"strings"
	"time"

	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"

	"gorm.io/gorm"
)

// AddressInput 新增地址输入
type AddressInput struct {
	Name         string `json:"name"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"is_default"`
}

// AddressService 收货地址服务
type AddressService struct {
	addressRepo repository.AddressRepository
	timeout     time.Duration
}

// NewAddressService 创建地址服务
func NewAddressService(addressRepo repository.AddressRepository, timeout time.Duration) *AddressService {
	return &AddressService{addressRepo: addressRepo, timeout: timeout}
}

// Add 新增地址；首个地址自动成为默认地址
func (s *AddressService) Add(ctx context.Context, userID uint, input AddressInput) (*models.UserAddress, error) {
	address := &models.UserAddress{
		UserID:       userID,
		Name:         strings.TrimSpace(input.Name),
		Street:       strings.TrimSpace(input.Street),
		Number:       strings.TrimSpace(input.Number),
		Complement:   strings.TrimSpace(input.Complement),
		Neighborhood: strings.TrimSpace(input.Neighborhood),
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		ZipCode:      strings.TrimSpace(input.ZipCode),
		Country:      strings.TrimSpace(input.Country),
		IsDefault:    input.IsDefault,
	}
	if userID == 0 || address.Name == "" || address.Street == "" || address.Number == "" ||
		address.Neighborhood == "" || address.City == "" || address.State == "" || address.ZipCode == "" {
		return nil, ErrInvalidInput
	}
	if address.Country == "" {
		address.Country = constants.DefaultCountry
	}

	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	err := s.addressRepo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)
		count, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}
		if address.IsDefault && count > 0 {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return translateConstraint(repo.Create(ctx, address), nil)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// List 用户地址（默认地址优先，最新优先）
func (s *AddressService) List(ctx context.Context, userID uint) ([]models.UserAddress, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.addressRepo.ListByUser(ctx, userID)
}

// Get 获取用户地址
func (s *AddressService) Get(ctx context.Context, userID, addressID uint) (*models.UserAddress, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.addressRepo.GetByUser(ctx, userID, addressID)
}
