package admin

import (
	"strings"

	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := handlershared.ReadPagination(c)
	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	}
	switch strings.ToLower(strings.TrimSpace(c.Query("is_active"))) {
	case "true", "1":
		active := true
		filter.IsActive = &active
	case "false", "0":
		active := false
		filter.IsActive = &active
	}
	users, total, err := h.UserService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "fetch users failed", err)
		return
	}
	response.SuccessWithPage(c, users, handlershared.BuildPagination(page, pageSize, total))
}

// DeactivateUser 禁用用户
func (h *Handler) DeactivateUser(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if current, exists := c.Get(handlershared.ContextUserIDKey); exists {
		if uid, typeOK := current.(uint); typeOK && uid == id {
			respondError(c, response.CodeBadRequest, "cannot deactivate yourself", nil)
			return
		}
	}
	if err := h.UserService.Deactivate(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "deactivate user failed")
		return
	}
	response.Success(c, gin.H{"deactivated": true})
}
