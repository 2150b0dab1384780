package router

import (
	"context"
	"strings"
	"time"

	"github.com/bossshopp/internal/authz"
	"github.com/bossshopp/internal/cache"
	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = response.RequestIDKey
	requestIDHeader = "X-Request-ID"
	bearerScheme    = "Bearer"
)

// UserAuthenticator 解析令牌并给出用户当前的鉴权快照
type UserAuthenticator interface {
	ParseUserJWT(tokenString string) (*service.UserJWTClaims, error)
	ResolveAuthState(ctx context.Context, id uint) (*cache.UserAuthState, error)
}

// RoleEnforcer 角色级授权判定
type RoleEnforcer interface {
	EnforceRoles(roles []string, obj, act string) (bool, error)
}

// RequestIDMiddleware 透传或生成 X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware 每个请求一条访问日志，5xx 与 handler 错误记为 error
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Z()
	}
	access := log.Named("access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", getRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 || c.Writer.Status() >= 500 {
			access.Error("request", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		access.Info("request", fields...)
	}
}

func getRequestID(c *gin.Context) string {
	id, _ := c.Get(requestIDKey)
	s, _ := id.(string)
	return s
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, msg)
	c.Abort()
}

// bearerToken 取出 Authorization: Bearer <token> 中的令牌
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "authorization header missing"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != bearerScheme || token == "" {
		return "", "authorization header invalid"
	}
	return token, ""
}

// UserJWTAuthMiddleware 校验令牌并按快照拒绝已禁用用户，通过后写入用户 ID、邮箱与角色
func UserJWTAuthMiddleware(auth UserAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			abortUnauthorized(c, "token invalid")
			return
		}
		token, reason := bearerToken(c.GetHeader("Authorization"))
		if reason != "" {
			abortUnauthorized(c, reason)
			return
		}
		claims, err := auth.ParseUserJWT(token)
		if err != nil || claims == nil {
			abortUnauthorized(c, "token invalid")
			return
		}

		state, err := auth.ResolveAuthState(c.Request.Context(), claims.UserID)
		switch {
		case err != nil:
			logger.Warnw("user_auth_state_resolve_failed", "user_id", claims.UserID, "error", err)
			abortUnauthorized(c, "token invalid")
			return
		case state == nil:
			abortUnauthorized(c, "token invalid")
			return
		case !state.IsActive:
			abortUnauthorized(c, "user disabled")
			return
		}

		c.Set(handlershared.ContextUserIDKey, claims.UserID)
		c.Set(handlershared.ContextUserEmailKey, claims.Email)
		c.Set(handlershared.ContextUserRolesKey, state.Roles)
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
// 角色来自鉴权快照，策略由 casbin 按路由模板判定
func AdminRBACMiddleware(enforcer RoleEnforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enforcer == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "unauthorized")
			return
		}
		var roles []string
		if raw, ok := c.Get(handlershared.ContextUserRolesKey); ok {
			roles, _ = raw.([]string)
		}
		if len(roles) == 0 {
			abortUnauthorized(c, "unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := enforcer.EnforceRoles(roles, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"user_id", c.GetUint(handlershared.ContextUserIDKey),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, "unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"user_id", c.GetUint(handlershared.ContextUserIDKey),
				"roles", roles,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, "forbidden")
			c.Abort()
			return
		}

		c.Next()
	}
}
