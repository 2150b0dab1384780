package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	return svc
}

func mustEnforce(t *testing.T, svc *Service, userID uint, obj, act string) bool {
	t.Helper()
	allow, err := svc.EnforceUser(userID, obj, act)
	if err != nil {
		t.Fatalf("enforce %s %s failed: %v", act, obj, err)
	}
	return allow
}

func TestBuiltinRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetUserRoles(1, []string{"customer", "admin"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if err := svc.SetUserRoles(2, []string{"customer", "vendor"}); err != nil {
		t.Fatalf("set vendor roles failed: %v", err)
	}
	if err := svc.SetUserRoles(3, []string{"customer"}); err != nil {
		t.Fatalf("set customer roles failed: %v", err)
	}

	cases := []struct {
		user uint
		obj  string
		act  string
		want bool
	}{
		{1, "/api/v1/admin/orders/5/status", "PATCH", true},
		{1, "/api/v1/admin/users/9/deactivate", "patch", true},
		{2, "/api/v1/admin/products", "POST", true},
		{2, "/api/v1/admin/products/3/stock", "POST", true},
		{2, "/api/v1/admin/reports/sales", "GET", true},
		{2, "/api/v1/admin/orders/5/status", "PATCH", false},
		{2, "/api/v1/admin/settings", "PUT", false},
		{3, "/api/v1/admin/reports/sales", "GET", false},
		{4, "/api/v1/admin/products", "POST", false},
	}
	for _, tc := range cases {
		if got := mustEnforce(t, svc, tc.user, tc.obj, tc.act); got != tc.want {
			t.Fatalf("user %d %s %s: got %v want %v", tc.user, tc.act, tc.obj, got, tc.want)
		}
	}
}

func TestSetUserRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetUserRoles(7, []string{"admin"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	if err := svc.SetUserRoles(7, []string{"vendor"}); err != nil {
		t.Fatalf("override roles failed: %v", err)
	}
	roles, err := svc.UserRoles(7)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:vendor" {
		t.Fatalf("unexpected roles: %v", roles)
	}
	if mustEnforce(t, svc, 7, "/api/v1/admin/settings", "PUT") {
		t.Fatalf("expected admin access to be revoked")
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	policies, err := svc.RolePolicies("vendor")
	if err != nil {
		t.Fatalf("get policies failed: %v", err)
	}
	if len(policies) != 5 {
		t.Fatalf("expected 5 vendor policies, got %d", len(policies))
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := map[string]string{
		"":                       "/",
		"/api/v1":                "/",
		"/api/v1/admin/products": "/admin/products",
		"admin/orders":           "/admin/orders",
		"/health":                "/health",
	}
	for in, want := range cases {
		if got := NormalizeObject(in); got != want {
			t.Fatalf("NormalizeObject(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnforceRolesWithoutUserBinding(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	allow, err := svc.EnforceRoles([]string{"customer", "vendor"}, "/api/v1/admin/products/3", "PUT")
	if err != nil {
		t.Fatalf("enforce roles failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected vendor role to allow product update")
	}
	allow, err = svc.EnforceRoles([]string{"customer", ""}, "/api/v1/admin/products/3", "PUT")
	if err != nil {
		t.Fatalf("enforce roles failed: %v", err)
	}
	if allow {
		t.Fatalf("expected customer role to be denied")
	}
}

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"admin":          "role:admin",
		" role:vendor ":  "role:vendor",
		"store  manager": "role:store_manager",
	}
	for in, want := range cases {
		got, err := NormalizeRole(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeRole(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "   ", "role:"} {
		if _, err := NormalizeRole(in); !errors.Is(err, ErrRoleRequired) {
			t.Fatalf("NormalizeRole(%q) want ErrRoleRequired, got %v", in, err)
		}
	}
}

func TestNilServiceIsUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.EnforceRoles([]string{"admin"}, "/admin/settings", "GET"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if err := svc.SetUserRoles(1, []string{"admin"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if err := svc.SetUserRoles(0, nil); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("want ErrUserRequired, got %v", err)
	}
}
