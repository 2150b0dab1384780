package router

import (
	"net/http"

	"github.com/bossshopp/internal/cache"
	"github.com/bossshopp/internal/config"
	adminhandlers "github.com/bossshopp/internal/http/handlers/admin"
	publichandlers "github.com/bossshopp/internal/http/handlers/public"
	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	loginRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate:login"),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}
	userAuth := UserJWTAuthMiddleware(c.UserService)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("")
		{
			public.GET("/settings/public", publicHandler.GetPublicSettings)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/search", publicHandler.SearchProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/products/:id/reviews", publicHandler.GetProductReviews)
		}

		// 用户认证
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(userAuth)
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me", publicHandler.UpdateUserProfile)

			user.GET("/cart", publicHandler.GetCart)
			user.DELETE("/cart", publicHandler.ClearCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:product_id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)

			user.GET("/favorites", publicHandler.GetFavorites)
			user.POST("/favorites/:product_id", publicHandler.AddFavorite)
			user.DELETE("/favorites/:product_id", publicHandler.RemoveFavorite)

			user.GET("/addresses", publicHandler.GetAddresses)
			user.POST("/addresses", publicHandler.CreateAddress)

			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)

			user.POST("/products/:id/reviews", publicHandler.UpsertReview)
		}

		// 管理端接口（需鉴权 + RBAC）
		admin := apiV1.Group("/admin")
		admin.Use(userAuth, AdminRBACMiddleware(c.AuthzService))
		{
			// 商品与库存
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.POST("/products/:id/stock", adminHandler.AdjustProductStock)
			admin.GET("/products/:id/stock", adminHandler.GetProductStockHistory)
			admin.GET("/products/low-stock", adminHandler.GetLowStockProducts)

			// 订单
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
			admin.PATCH("/orders/:id/payment-status", adminHandler.UpdateOrderPaymentStatus)

			// 报表
			admin.GET("/reports/sales", adminHandler.GetSalesStatistics)
			admin.GET("/reports/top-products", adminHandler.GetTopProducts)
			admin.GET("/reports/users", adminHandler.GetUserStatistics)
			admin.GET("/reports/daily", adminHandler.GetDailySales)

			// 设置与用户
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id/deactivate", adminHandler.DeactivateUser)

			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, adminPermissionCatalog(r.Routes(), c.AuthzService))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		status := gin.H{"status": "ok"}
		if c != nil && c.DB != nil {
			if sqlDB, err := c.DB.DB(); err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
			status["database"] = "ok"
		}
		ctx.JSON(http.StatusOK, status)
	})

	return r
}
