package shared

import (
	"errors"

	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(response.RequestIDKey); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		log := RequestLog(c)
		if code >= response.CodeInternal {
			log.Errorw("handler_error", "code", code, "message", msg, "path", c.FullPath(), "error", err)
		} else {
			log.Warnw("handler_rejected", "code", code, "message", msg, "path", c.FullPath(), "error", err)
		}
	}
	response.Error(c, code, msg)
}

// mappedError 业务错误到接口错误码的映射
type mappedError struct {
	target error
	code   int
	msg    string
}

// 顺序敏感：更具体的错误放在前面
var serviceErrorRules = []mappedError{
	{target: service.ErrEmailExists, code: response.CodeConflict, msg: "email already registered"},
	{target: service.ErrSKUExists, code: response.CodeConflict, msg: "sku already exists"},
	{target: service.ErrOutOfStock, code: response.CodeConflict, msg: "insufficient stock"},
	{target: service.ErrOrderFinalized, code: response.CodeConflict, msg: "order already in final status"},
	{target: service.ErrInvalidTransition, code: response.CodeConflict, msg: "invalid order status transition"},
	{target: service.ErrConstraintViolation, code: response.CodeConflict, msg: "constraint violation"},
	{target: service.ErrAddressNotFound, code: response.CodeNotFound, msg: "address not found"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "quantity must be positive"},
	{target: service.ErrInvalidRating, code: response.CodeBadRequest, msg: "rating must be between 1 and 5"},
	{target: service.ErrCartFull, code: response.CodeBadRequest, msg: "cart item limit reached"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, msg: "password does not meet policy"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, msg: "invalid email"},
	{target: service.ErrInvalidPaymentState, code: response.CodeBadRequest, msg: "invalid payment status"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, msg: "invalid input"},
}

// RespondServiceError 将业务错误映射为接口错误，未命中规则时按 fallbackMsg 返回 500。
func RespondServiceError(c *gin.Context, err error, fallbackMsg string) {
	if code, msg, ok := MapServiceError(err); ok {
		RespondError(c, code, msg, nil)
		return
	}
	RespondError(c, response.CodeInternal, fallbackMsg, err)
}

// MapServiceError 查找业务错误对应的错误码
func MapServiceError(err error) (int, string, bool) {
	if err == nil {
		return 0, "", false
	}
	for _, rule := range serviceErrorRules {
		if errors.Is(err, rule.target) {
			return rule.code, rule.msg, true
		}
	}
	return 0, "", false
}
