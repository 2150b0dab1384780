package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bossshopp/internal/config"
	"github.com/bossshopp/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	ctx := context.Background()
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}
	if err := SetJSON(ctx, "settings:all", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("set on disabled cache should not fail: %v", err)
	}
	var dest map[string]string
	hit, err := GetJSON(ctx, "settings:all", &dest)
	if err != nil || hit {
		t.Fatalf("get on disabled cache want miss, got hit=%v err=%v", hit, err)
	}
	if err := Del(ctx, "settings:all"); err != nil {
		t.Fatalf("del on disabled cache should not fail: %v", err)
	}
	if err := Ping(ctx); err != nil {
		t.Fatalf("ping on disabled cache should not fail: %v", err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	if got := BuildKey(" report:sales "); got != defaultKeyPrefix+":report:sales" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := BuildKey(""); got != defaultKeyPrefix {
		t.Fatalf("empty key should return prefix, got %s", got)
	}
}

func TestNewUserAuthState(t *testing.T) {
	state := NewUserAuthState(&models.User{ID: 7, IsActive: true, IsAdmin: true})
	if state == nil || state.UserID != 7 || !state.IsActive {
		t.Fatalf("unexpected state: %+v", state)
	}
	if len(state.Roles) != 2 {
		t.Fatalf("admin user should carry customer and admin roles, got %v", state.Roles)
	}
	if !state.HasRole("admin") || state.HasRole("vendor") {
		t.Fatalf("unexpected role check result: %v", state.Roles)
	}
	if state.CachedAt.IsZero() {
		t.Fatalf("cached_at should be stamped")
	}
	if NewUserAuthState(nil) != nil {
		t.Fatalf("nil user should give nil state")
	}
	var empty *UserAuthState
	if empty.HasRole("admin") {
		t.Fatalf("nil state should have no roles")
	}
}

func TestAuthStateOpsOnDisabledCache(t *testing.T) {
	if err := InitRedis(nil); err != nil {
		t.Fatalf("init nil config failed: %v", err)
	}
	ctx := context.Background()
	state, hit, err := LoadUserAuthState(ctx, 7)
	if err != nil || hit || state != nil {
		t.Fatalf("want miss on disabled cache, got %v %v %v", state, hit, err)
	}
	if err := StoreUserAuthState(ctx, &UserAuthState{UserID: 7}); err != nil {
		t.Fatalf("store should be noop: %v", err)
	}
	if err := InvalidateUserAuthState(ctx, 7); err != nil {
		t.Fatalf("invalidate should be noop: %v", err)
	}
	if authStateKey(7) != "auth:user:7" {
		t.Fatalf("unexpected key %s", authStateKey(7))
	}
}
