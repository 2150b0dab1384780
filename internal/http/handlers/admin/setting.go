package admin

import (
	"strings"

	"github.com/bossshopp/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetSettings 全部生效配置
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.SettingService.All(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "fetch settings failed", err)
		return
	}
	response.Success(c, settings)
}

// UpdateSettings 批量写入配置
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if len(req) == 0 {
		respondError(c, response.CodeBadRequest, "no settings provided", nil)
		return
	}
	for key, value := range req {
		if strings.TrimSpace(key) == "" {
			respondError(c, response.CodeBadRequest, "setting key is required", nil)
			return
		}
		if err := h.SettingService.Set(c.Request.Context(), key, value); err != nil {
			respondServiceError(c, err, "update settings failed")
			return
		}
	}
	h.GetSettings(c)
}
