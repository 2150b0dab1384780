package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// 支付状态常量（与订单状态独立）
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 支付方式常量（仅作为不透明字符串记录）
const (
	PaymentMethodPix        = "pix"
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodBoleto     = "boleto"
)

// 角色常量
const (
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
	RoleCustomer = "customer"
)

// 默认值
const (
	DefaultCountry           = "Brasil"
	DefaultOrderNumberPrefix = "BS"
	DefaultMaxCartItems      = 50
)

// SalesCountedStatuses 计入销售统计的订单状态
var SalesCountedStatuses = []string{OrderStatusDelivered, OrderStatusShipped}

// 队列与任务类型
const (
	QueueDefault           = "default"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
	TaskLowStockAlert      = "catalog:low_stock_alert"
)
