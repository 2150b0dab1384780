package service

import (
	"context"
	"errors"
	"time"

	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"
)

// CartLine 购物车行（用于响应）
type CartLine struct {
	Item     models.CartItem `json:"item"`
	Product  *models.Product `json:"product"`
	Subtotal models.Money    `json:"subtotal"`
}

// CartSummary 购物车汇总
type CartSummary struct {
	Lines      []CartLine   `json:"lines"`
	Total      models.Money `json:"total"`
	TotalItems int          `json:"total_items"`
}

// CartService 购物车服务
type CartService struct {
	cartRepo       repository.CartRepository
	productRepo    repository.ProductRepository
	settingService *SettingService
	timeout        time.Duration
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, settingService *SettingService, timeout time.Duration) *CartService {
	return &CartService{
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		settingService: settingService,
		timeout:        timeout,
	}
}

// Add 加入购物车，已存在则累加数量
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	limit := s.maxCartItems(ctx)
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.productRepo.GetActiveByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotAvailable
	}
	if quantity > product.StockQuantity {
		return ErrOutOfStock
	}
	err = s.cartRepo.Increment(ctx, userID, productID, quantity, limit)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrCartStockExceeded):
		return ErrOutOfStock
	case errors.Is(err, repository.ErrCartLineLimit):
		return ErrCartFull
	default:
		logger.Warnw("cart_add_failed", "user_id", userID, "product_id", productID, "error", err)
		return translateConstraint(err, nil)
	}
}

// Update 覆盖数量，quantity<=0 时移除
func (s *CartService) Update(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	product, err := s.productRepo.GetActiveByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotAvailable
	}
	if quantity > product.StockQuantity {
		return ErrOutOfStock
	}
	affected, err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove 移除购物车项
func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.cartRepo.DeleteByUserAndProduct(ctx, userID, productID)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	return s.cartRepo.ClearByUser(ctx, userID)
}

// List 购物车内容（仅上架商品）与合计
func (s *CartService) List(ctx context.Context, userID uint) (*CartSummary, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := &CartSummary{Lines: make([]CartLine, 0, len(items)), Total: models.ZeroMoney()}
	for _, item := range items {
		product := item.Product
		if product == nil || !product.IsActive {
			continue
		}
		subtotal := product.Price.MulInt(item.Quantity)
		item.Product = nil
		summary.Lines = append(summary.Lines, CartLine{Item: item, Product: product, Subtotal: subtotal})
		summary.Total = summary.Total.Add(subtotal)
		summary.TotalItems += item.Quantity
	}
	return summary, nil
}

func (s *CartService) maxCartItems(ctx context.Context) int {
	if s.settingService == nil {
		return constants.DefaultMaxCartItems
	}
	return s.settingService.GetInt(ctx, models.SettingMaxCartItems, constants.DefaultMaxCartItems)
}
