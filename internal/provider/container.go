package provider

import (
	"errors"

	"github.com/bossshopp/internal/authz"
	"github.com/bossshopp/internal/cache"
	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/queue"
	"github.com/bossshopp/internal/repository"
	"github.com/bossshopp/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Repositories
	UserRepo     repository.UserRepository
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	CartRepo     repository.CartRepository
	FavoriteRepo repository.FavoriteRepository
	AddressRepo  repository.AddressRepository
	OrderRepo    repository.OrderRepository
	ReviewRepo   repository.ReviewRepository
	MovementRepo repository.StockMovementRepository
	SettingRepo  repository.SettingRepository
	ReportRepo   repository.ReportRepository

	// Services
	AuthzService    *authz.Service
	UserService     *service.UserService
	CatalogService  *service.CatalogService
	CartService     *service.CartService
	FavoriteService *service.FavoriteService
	AddressService  *service.AddressService
	OrderService    *service.OrderService
	ReviewService   *service.ReviewService
	SettingService  *service.SettingService
	ReportService   *service.ReportService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, errors.New("db is nil")
	}

	// 初始化缓存，失败时降级为无缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	db := c.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.FavoriteRepo = repository.NewFavoriteRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.MovementRepo = repository.NewStockMovementRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.ReportRepo = repository.NewReportRepository(db)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	timeout := c.Config.Database.StatementTimeout()
	c.SettingService = service.NewSettingService(c.SettingRepo, timeout)
	c.UserService = service.NewUserService(c.Config, c.UserRepo)
	c.CatalogService = service.NewCatalogService(c.Config, c.CategoryRepo, c.ProductRepo, c.MovementRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.SettingService, timeout)
	c.FavoriteService = service.NewFavoriteService(c.FavoriteRepo, c.ProductRepo, timeout)
	c.AddressService = service.NewAddressService(c.AddressRepo, timeout)
	c.OrderService = service.NewOrderService(c.Config, service.OrderServiceOptions{
		OrderRepo:      c.OrderRepo,
		ProductRepo:    c.ProductRepo,
		CartRepo:       c.CartRepo,
		AddressRepo:    c.AddressRepo,
		MovementRepo:   c.MovementRepo,
		SettingService: c.SettingService,
		QueueClient:    c.QueueClient,
	})
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.ProductRepo, c.OrderRepo, timeout)
	c.ReportService = service.NewReportService(c.ReportRepo, timeout)
	return nil
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
