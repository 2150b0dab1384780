package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bossshopp/internal/cache"
	"github.com/bossshopp/internal/config"
	handlershared "github.com/bossshopp/internal/http/handlers/shared"
	"github.com/bossshopp/internal/service"

	"github.com/gin-gonic/gin"
)

type fakeAuthenticator struct {
	claims *service.UserJWTClaims
	state  *cache.UserAuthState
	err    error
}

func (f fakeAuthenticator) ParseUserJWT(tokenString string) (*service.UserJWTClaims, error) {
	if tokenString != "good" {
		return nil, errors.New("invalid token")
	}
	return f.claims, nil
}

func (f fakeAuthenticator) ResolveAuthState(ctx context.Context, id uint) (*cache.UserAuthState, error) {
	return f.state, f.err
}

type fakeEnforcer struct {
	allowed map[string]bool
	err     error
}

func (f fakeEnforcer) EnforceRoles(roles []string, obj, act string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, role := range roles {
		if f.allowed[role+" "+act+" "+obj] {
			return true, nil
		}
	}
	return false, nil
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func TestCORSPolicyAllowOrigin(t *testing.T) {
	wildcard := newCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"*"}})
	if got := wildcard.allowOrigin("https://example.com"); got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	withCreds := newCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})
	if got := withCreds.allowOrigin("https://example.com"); got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	list := newCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"https://a.example.com", " https://b.example.com "}})
	if got := list.allowOrigin("https://B.example.com"); got != "https://B.example.com" {
		t.Fatalf("allow-list should match case-insensitively, got %s", got)
	}
	if got := list.allowOrigin("https://x.example.com"); got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
	if got := list.allowOrigin(""); got != "" {
		t.Fatalf("missing origin should be empty, got %s", got)
	}

	if empty := newCORSPolicy(config.CORSConfig{}); !empty.wildcard || empty.methods == "" {
		t.Fatalf("empty config should fall back to defaults: %+v", empty)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}, MaxAge: 600}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight want 204 got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://shop.example.com" || w.Header().Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("unexpected cors headers: %v", w.Header())
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header, token, reason string
	}{
		{"", "", "authorization header missing"},
		{"Bearer abc", "abc", ""},
		{"Bearer   abc ", "abc", ""},
		{"Bearer", "", "authorization header invalid"},
		{"Bearer ", "", "authorization header invalid"},
		{"Basic abc", "", "authorization header invalid"},
	}
	for _, tc := range cases {
		token, reason := bearerToken(tc.header)
		if token != tc.token || reason != tc.reason {
			t.Fatalf("bearerToken(%q) = %q, %q", tc.header, token, reason)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func newUserAuthEngine(auth UserAuthenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(UserJWTAuthMiddleware(auth))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint(handlershared.ContextUserIDKey),
			"roles":   c.GetStringSlice(handlershared.ContextUserRolesKey),
		})
	})
	return r
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	auth := fakeAuthenticator{
		claims: &service.UserJWTClaims{UserID: 7, Email: "maria@example.com"},
		state:  &cache.UserAuthState{UserID: 7, IsActive: true, Roles: []string{"customer"}},
	}
	r := newUserAuthEngine(auth)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: 401},
		{name: "wrong scheme", header: "Token good", want: 401},
		{name: "bad token", header: "Bearer bad", want: 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if got := decodeEnvelope(t, w).StatusCode; got != tc.want {
				t.Fatalf("status_code want %d got %d", tc.want, got)
			}
		})
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	var body struct {
		UserID uint     `json:"user_id"`
		Roles  []string `json:"roles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body.UserID != 7 || len(body.Roles) != 1 || body.Roles[0] != "customer" {
		t.Fatalf("unexpected context values: %+v", body)
	}
}

func TestUserJWTAuthMiddlewareRejectsDisabledUser(t *testing.T) {
	r := newUserAuthEngine(fakeAuthenticator{
		claims: &service.UserJWTClaims{UserID: 7},
		state:  &cache.UserAuthState{UserID: 7, IsActive: false},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	resp := decodeEnvelope(t, w)
	if resp.StatusCode != 401 || resp.Msg != "user disabled" {
		t.Fatalf("disabled user should be rejected, got %+v", resp)
	}

	r = newUserAuthEngine(fakeAuthenticator{claims: &service.UserJWTClaims{UserID: 8}})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	if got := decodeEnvelope(t, w).StatusCode; got != 401 {
		t.Fatalf("deleted user should be rejected, got %d", got)
	}
}

func TestAdminRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	enforcer := fakeEnforcer{allowed: map[string]bool{
		"vendor GET /api/v1/admin/products/:id/stock": true,
	}}
	build := func(roles []string, e RoleEnforcer) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if roles != nil {
				c.Set(handlershared.ContextUserRolesKey, roles)
			}
			c.Next()
		})
		r.Use(AdminRBACMiddleware(e))
		r.GET("/api/v1/admin/products/:id/stock", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status_code": 0})
		})
		return r
	}
	do := func(r *gin.Engine) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/products/3/stock", nil))
		return decodeEnvelope(t, w).StatusCode
	}

	if got := do(build([]string{"customer", "vendor"}, enforcer)); got != 0 {
		t.Fatalf("vendor should pass, got %d", got)
	}
	if got := do(build([]string{"customer"}, enforcer)); got != 403 {
		t.Fatalf("customer should be forbidden, got %d", got)
	}
	if got := do(build(nil, enforcer)); got != 401 {
		t.Fatalf("missing roles should be unauthorized, got %d", got)
	}
	if got := do(build([]string{"vendor"}, fakeEnforcer{err: errors.New("boom")})); got != 401 {
		t.Fatalf("enforcer failure should be unauthorized, got %d", got)
	}
	if got := do(build([]string{"vendor"}, nil)); got != 401 {
		t.Fatalf("nil enforcer should be unauthorized, got %d", got)
	}
}
