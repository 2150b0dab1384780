package service

import (
	"context"
	"time"

	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/repository"
)

// FavoriteService 收藏服务
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	timeout      time.Duration
}

// NewFavoriteService 创建收藏服务
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, productRepo repository.ProductRepository, timeout time.Duration) *FavoriteService {
	return &FavoriteService{favoriteRepo: favoriteRepo, productRepo: productRepo, timeout: timeout}
}

// Add 收藏商品，重复收藏视为成功
func (s *FavoriteService) Add(ctx context.Context, userID, productID uint) error {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	product, err := s.productRepo.GetActiveByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotAvailable
	}
	return s.favoriteRepo.Add(ctx, userID, productID)
}

// Remove 取消收藏
func (s *FavoriteService) Remove(ctx context.Context, userID, productID uint) error {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.favoriteRepo.Remove(ctx, userID, productID)
	return err
}

// List 收藏的上架商品
func (s *FavoriteService) List(ctx context.Context, userID uint) ([]models.Product, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	favorites, err := s.favoriteRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(favorites))
	for _, favorite := range favorites {
		if favorite.Product != nil {
			products = append(products, *favorite.Product)
		}
	}
	return products, nil
}
