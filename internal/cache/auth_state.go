package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/bossshopp/internal/models"
)

const authStateTTL = 10 * time.Minute

// UserAuthState 鉴权快照，中间件据此判断启用状态与角色，不必每次回表
type UserAuthState struct {
	UserID   uint      `json:"user_id"`
	IsActive bool      `json:"is_active"`
	Roles    []string  `json:"roles"`
	CachedAt time.Time `json:"cached_at"`
}

// HasRole 是否具备角色
func (s *UserAuthState) HasRole(role string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func authStateKey(userID uint) string {
	return "auth:user:" + strconv.FormatUint(uint64(userID), 10)
}

// NewUserAuthState 由用户记录生成快照
func NewUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:   user.ID,
		IsActive: user.IsActive,
		Roles:    user.Roles(),
		CachedAt: time.Now(),
	}
}

// LoadUserAuthState 读取快照，返回是否命中
func LoadUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	state := &UserAuthState{}
	hit, err := GetJSON(ctx, authStateKey(userID), state)
	if err != nil || !hit {
		return nil, false, err
	}
	return state, true, nil
}

// StoreUserAuthState 写入快照
func StoreUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(state.UserID), state, authStateTTL)
}

// InvalidateUserAuthState 用户资料或状态变更后清除快照
func InvalidateUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, authStateKey(userID))
}
