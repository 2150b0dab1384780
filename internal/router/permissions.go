package router

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/bossshopp/internal/authz"
	"github.com/bossshopp/internal/constants"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

var catalogRoles = []string{constants.RoleAdmin, constants.RoleVendor, constants.RoleCustomer}

type permissionEntry struct {
	Method     string   `json:"method"`
	Object     string   `json:"object"`
	Permission string   `json:"permission"`
	Roles      []string `json:"roles"`
}

type permissionGroup struct {
	Module      string            `json:"module"`
	Permissions []permissionEntry `json:"permissions"`
}

// adminPermissionCatalog 已注册的后台路由按模块分组，并标出当前放行的内置角色
func adminPermissionCatalog(routes gin.RoutesInfo, enforcer RoleEnforcer) []permissionGroup {
	byModule := make(map[string][]permissionEntry)
	seen := make(map[string]bool)
	for _, route := range routes {
		method := strings.ToUpper(route.Method)
		if method == http.MethodOptions || method == http.MethodHead || !strings.HasPrefix(route.Path, adminRoutePrefix) {
			continue
		}
		object := authz.NormalizeObject(route.Path)
		permission := method + ":" + object
		if seen[permission] {
			continue
		}
		seen[permission] = true

		module := permissionModule(object)
		byModule[module] = append(byModule[module], permissionEntry{
			Method:     method,
			Object:     object,
			Permission: permission,
			Roles:      allowedRoles(enforcer, object, method),
		})
	}

	groups := make([]permissionGroup, 0, len(byModule))
	for module, entries := range byModule {
		slices.SortFunc(entries, func(a, b permissionEntry) int {
			return cmp.Or(cmp.Compare(a.Object, b.Object), cmp.Compare(a.Method, b.Method))
		})
		groups = append(groups, permissionGroup{Module: module, Permissions: entries})
	}
	slices.SortFunc(groups, func(a, b permissionGroup) int { return cmp.Compare(a.Module, b.Module) })
	return groups
}

func allowedRoles(enforcer RoleEnforcer, object, method string) []string {
	roles := []string{}
	if enforcer == nil {
		return roles
	}
	for _, role := range catalogRoles {
		if ok, err := enforcer.EnforceRoles([]string{role}, object, method); err == nil && ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// permissionModule /admin/products/:id -> products
func permissionModule(object string) string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(object), "/"), "/")
	switch {
	case parts[0] == "":
		return "system"
	case parts[0] == "admin" && len(parts) > 1:
		return parts[1]
	default:
		return parts[0]
	}
}
