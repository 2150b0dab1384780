package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/constants"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"
	"github.com/bossshopp/internal/queue"
	"github.com/bossshopp/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	cartRepo          repository.CartRepository
	addressRepo       repository.AddressRepository
	movementRepo      repository.StockMovementRepository
	settingService    *SettingService
	queueClient       *queue.Client
	pendingTimeout    time.Duration
	lowStockThreshold int
	timeout           time.Duration
}

// OrderServiceOptions 订单服务依赖
type OrderServiceOptions struct {
	OrderRepo      repository.OrderRepository
	ProductRepo    repository.ProductRepository
	CartRepo       repository.CartRepository
	AddressRepo    repository.AddressRepository
	MovementRepo   repository.StockMovementRepository
	SettingService *SettingService
	QueueClient    *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(cfg *config.Config, opts OrderServiceOptions) *OrderService {
	pending := cfg.Order.PendingTimeoutMinutes
	if pending <= 0 {
		pending = 30
	}
	return &OrderService{
		orderRepo:         opts.OrderRepo,
		productRepo:       opts.ProductRepo,
		cartRepo:          opts.CartRepo,
		addressRepo:       opts.AddressRepo,
		movementRepo:      opts.MovementRepo,
		settingService:    opts.SettingService,
		queueClient:       opts.QueueClient,
		pendingTimeout:    time.Duration(pending) * time.Minute,
		lowStockThreshold: cfg.Catalog.LowStockThreshold,
		timeout:           cfg.Database.StatementTimeout(),
	}
}

// CreateOrderInput 创建订单输入，Items 为空时使用购物车
type CreateOrderInput struct {
	UserID            uint
	Items             []OrderLineInput
	ShippingAddressID *uint
	BillingAddressID  *uint
	PaymentMethod     string
	Notes             string
}

// OrderLineInput 下单行
type OrderLineInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// stockAfterOrder 下单后商品剩余库存（用于低库存告警）
type stockAfterOrder struct {
	ProductID uint
	Name      string
	Remaining int
}

// Create 下单：快照价格、扣减库存、记录流水并清理购物车，任一步失败整体回滚
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, wrapOrderCreation(ErrInvalidInput)
	}
	prefix := s.orderNumberPrefix(ctx)
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	lines := input.Items
	fromCart := len(lines) == 0
	if fromCart {
		cartItems, err := s.cartRepo.ListByUser(ctx, input.UserID)
		if err != nil {
			return nil, wrapOrderCreation(err)
		}
		for _, item := range cartItems {
			lines = append(lines, OrderLineInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	merged, err := mergeOrderLines(lines)
	if err != nil {
		return nil, wrapOrderCreation(err)
	}

	order := &models.Order{
		OrderNumber:       generateOrderNumber(prefix),
		UserID:            input.UserID,
		ShippingAmount:    models.ZeroMoney(),
		TaxAmount:         models.ZeroMoney(),
		DiscountAmount:    models.ZeroMoney(),
		Status:            constants.OrderStatusPending,
		PaymentStatus:     constants.PaymentStatusPending,
		PaymentMethod:     strings.TrimSpace(input.PaymentMethod),
		ShippingAddressID: input.ShippingAddressID,
		BillingAddressID:  input.BillingAddressID,
		Notes:             strings.TrimSpace(input.Notes),
	}
	var remaining []stockAfterOrder

	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		addressRepo := s.addressRepo.WithTx(tx)

		for _, addressID := range []*uint{input.ShippingAddressID, input.BillingAddressID} {
			if addressID == nil {
				continue
			}
			address, err := addressRepo.GetByUser(ctx, input.UserID, *addressID)
			if err != nil {
				return err
			}
			if address == nil {
				return ErrAddressNotFound
			}
		}

		total := models.ZeroMoney()
		items := make([]models.OrderItem, 0, len(merged))
		products := make(map[uint]*models.Product, len(merged))
		for _, line := range merged {
			product, err := productRepo.GetActiveByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return ErrProductNotAvailable
			}
			if product.StockQuantity < line.Quantity {
				return ErrOutOfStock
			}
			products[product.ID] = product
			lineTotal := product.Price.MulInt(line.Quantity)
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				TotalPrice:  lineTotal,
			})
		}
		order.TotalAmount = total

		if err := orderRepo.Create(ctx, order, items); err != nil {
			return translateConstraint(err, nil)
		}

		movements := make([]models.StockMovement, 0, len(items))
		for _, item := range items {
			affected, err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrOutOfStock
			}
			orderID := order.ID
			movements = append(movements, models.StockMovement{
				ProductID:     item.ProductID,
				MovementType:  models.StockMovementOut,
				Quantity:      item.Quantity,
				ReferenceType: models.StockReferenceSale,
				ReferenceID:   &orderID,
				Notes:         fmt.Sprintf("order %s", order.OrderNumber),
			})
			product := products[item.ProductID]
			remaining = append(remaining, stockAfterOrder{
				ProductID: item.ProductID,
				Name:      product.Name,
				Remaining: product.StockQuantity - item.Quantity,
			})
		}
		if err := s.movementRepo.WithTx(tx).Append(ctx, movements...); err != nil {
			return err
		}

		return s.cartRepo.WithTx(tx).ClearByUser(ctx, input.UserID)
	})
	if err != nil {
		logger.Warnw("order_create_failed",
			"user_id", input.UserID,
			"from_cart", fromCart,
			"error", err,
		)
		return nil, wrapOrderCreation(err)
	}
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"user_id", order.UserID,
		"total_amount", order.TotalAmount.String(),
	)

	s.afterOrderCreated(order, remaining)

	full, err := s.orderRepo.GetByID(ctx, order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// afterOrderCreated 提交后投递超时取消与低库存告警，失败仅记录日志
func (s *OrderService) afterOrderCreated(order *models.Order, remaining []stockAfterOrder) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{OrderID: order.ID}, s.pendingTimeout); err != nil {
		logger.Errorw("order_enqueue_timeout_cancel_failed",
			"order_id", order.ID,
			"order_number", order.OrderNumber,
			"error", err,
		)
	}
	if s.lowStockThreshold <= 0 {
		return
	}
	for _, item := range remaining {
		if item.Remaining > s.lowStockThreshold {
			continue
		}
		if err := s.queueClient.EnqueueLowStockAlert(queue.LowStockAlertPayload{
			ProductID:     item.ProductID,
			ProductName:   item.Name,
			StockQuantity: item.Remaining,
			Threshold:     s.lowStockThreshold,
		}); err != nil {
			logger.Warnw("order_enqueue_low_stock_alert_failed", "product_id", item.ProductID, "error", err)
		}
	}
}

// Get 获取订单，userID 为 0 表示管理端视角
func (s *OrderService) Get(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	if userID == 0 {
		return s.orderRepo.GetByID(ctx, orderID)
	}
	return s.orderRepo.GetByIDAndUser(ctx, orderID, userID)
}

// ListByUser 用户订单（最新优先，附订单项数量）
func (s *OrderService) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Order, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	orders, _, err := s.orderRepo.ListByUser(ctx, repository.OrderListFilter{
		UserID:   userID,
		Page:     1,
		PageSize: clampSearchLimit(limit, defaultSearchLimit, maxSearchLimit),
	})
	return orders, err
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(ctx context.Context, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	if filter.PageSize <= 0 || filter.PageSize > maxPageSize {
		filter.PageSize = defaultSearchLimit
	}
	return s.orderRepo.ListAdmin(ctx, filter)
}

// UpdateStatus 按流转表更新订单状态；取消/退款时回补库存
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, target string) (*models.Order, error) {
	target = normalizeStatus(target)
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	err := s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		return s.transitionInTx(ctx, tx, orderID, "", target)
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrNotFound) {
			logger.Warnw("order_update_status_failed", "order_id", orderID, "target", target, "error", err)
		}
		return nil, err
	}
	logger.Infow("order_status_updated", "order_id", orderID, "status", target)
	return s.orderRepo.GetByID(ctx, orderID)
}

// CancelIfPending 超时取消：仅对仍为 pending 的订单生效，返回是否取消
func (s *OrderService) CancelIfPending(ctx context.Context, orderID uint) (bool, error) {
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()

	err := s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		return s.transitionInTx(ctx, tx, orderID, constants.OrderStatusPending, constants.OrderStatusCancelled)
	})
	if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	logger.Infow("order_timeout_cancelled", "order_id", orderID)
	return true, nil
}

// transitionInTx 事务内状态流转；expectFrom 非空时要求当前状态一致
func (s *OrderService) transitionInTx(ctx context.Context, tx *gorm.DB, orderID uint, expectFrom, target string) error {
	orderRepo := s.orderRepo.WithTx(tx)
	order, err := orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrNotFound
	}
	if isTerminalStatus(order.Status) {
		return ErrOrderFinalized
	}
	if expectFrom != "" && order.Status != expectFrom {
		return ErrInvalidTransition
	}
	if !canTransition(order.Status, target) {
		return ErrInvalidTransition
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	switch target {
	case constants.OrderStatusShipped:
		updates["shipped_at"] = now
	case constants.OrderStatusDelivered:
		updates["delivered_at"] = now
	case constants.OrderStatusCancelled, constants.OrderStatusRefunded:
		updates["canceled_at"] = now
	}
	if target == constants.OrderStatusRefunded && order.PaymentStatus == constants.PaymentStatusPaid {
		updates["payment_status"] = constants.PaymentStatusRefunded
	}
	affected, err := orderRepo.TransitionStatus(ctx, order.ID, order.Status, target, updates)
	if err != nil {
		return err
	}
	if affected == 0 {
		// 并发流转已改变状态
		return ErrInvalidTransition
	}
	if !restoresStock(target) {
		return nil
	}

	productRepo := s.productRepo.WithTx(tx)
	movements := make([]models.StockMovement, 0, len(order.Items))
	for _, item := range order.Items {
		if _, err := productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		ref := order.ID
		movements = append(movements, models.StockMovement{
			ProductID:     item.ProductID,
			MovementType:  models.StockMovementIn,
			Quantity:      item.Quantity,
			ReferenceType: models.StockReferenceReturn,
			ReferenceID:   &ref,
			Notes:         fmt.Sprintf("order %s %s", order.OrderNumber, target),
		})
	}
	return s.movementRepo.WithTx(tx).Append(ctx, movements...)
}

// UpdatePaymentStatus 更新支付状态（与订单状态独立）
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	status = normalizeStatus(status)
	if !paymentStatuses[status] {
		return nil, ErrInvalidPaymentState
	}
	ctx, cancel := withStatementTimeout(ctx, s.timeout)
	defer cancel()
	affected, err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	logger.Infow("order_payment_status_updated", "order_id", orderID, "payment_status", status)
	return s.orderRepo.GetByID(ctx, orderID)
}

// SweepStalePending 取消超时未处理的订单（队列不可用时由 worker 定期调用）
func (s *OrderService) SweepStalePending(ctx context.Context, limit int) (int, error) {
	listCtx, cancel := withStatementTimeout(ctx, s.timeout)
	orders, err := s.orderRepo.ListStalePending(listCtx, time.Now().Add(-s.pendingTimeout), limit)
	cancel()
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, order := range orders {
		ok, err := s.CancelIfPending(ctx, order.ID)
		if err != nil {
			logger.Warnw("order_sweep_cancel_failed", "order_id", order.ID, "error", err)
			continue
		}
		if ok {
			cancelled++
		}
	}
	return cancelled, nil
}

func (s *OrderService) orderNumberPrefix(ctx context.Context) string {
	if s.settingService == nil {
		return constants.DefaultOrderNumberPrefix
	}
	return s.settingService.GetString(ctx, models.SettingOrderNumberPrefix, constants.DefaultOrderNumberPrefix)
}

// mergeOrderLines 合并重复商品行
func mergeOrderLines(lines []OrderLineInput) ([]OrderLineInput, error) {
	if len(lines) == 0 {
		return nil, ErrInvalidInput
	}
	merged := make([]OrderLineInput, 0, len(lines))
	index := make(map[uint]int, len(lines))
	for _, line := range lines {
		if line.ProductID == 0 {
			return nil, ErrInvalidInput
		}
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if idx, ok := index[line.ProductID]; ok {
			merged[idx].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// generateOrderNumber <前缀><yyyymmddhhmmss><6 位随机数>
func generateOrderNumber(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = constants.DefaultOrderNumberPrefix
	}
	return fmt.Sprintf("%s%s%s", prefix, time.Now().Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
