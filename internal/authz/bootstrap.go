package authz

import (
	"fmt"

	"github.com/bossshopp/internal/constants"
)

// builtinPolicies customer 不进后台；vendor 维护商品库存并看报表；admin 全部放行
var builtinPolicies = map[string][]Policy{
	constants.RoleVendor: {
		{Object: "/admin/products", Action: "POST"},
		{Object: "/admin/products/:id", Action: "PUT"},
		{Object: "/admin/products/:id/stock", Action: anyAction},
		{Object: "/admin/products/low-stock", Action: "GET"},
		{Object: "/admin/reports/*", Action: "GET"},
	},
	constants.RoleAdmin: {
		{Object: "/admin/*", Action: anyAction},
	},
}

// BootstrapBuiltinRoles 写入预置规则，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for role, policies := range builtinPolicies {
		for _, p := range policies {
			if err := s.Grant(role, p.Object, p.Action); err != nil {
				return fmt.Errorf("authz: bootstrap %s: %w", role, err)
			}
		}
	}
	return nil
}
