package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// Service 基于 casbin 的后台授权；规则落在 casbin_rule 表，用户角色随 users 表标志位同步
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 加载模型与已持久化的规则
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz: db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", ruleTable)
	if err != nil {
		return nil, fmt.Errorf("authz: adapter: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: load policy: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// Enforce 单个主体判定
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.enforcer.Enforce(strings.TrimSpace(sub), NormalizeObject(obj), NormalizeAction(act))
}

// EnforceUser 按已绑定的用户角色判定
func (s *Service) EnforceUser(userID uint, obj, act string) (bool, error) {
	return s.Enforce(SubjectForUser(userID), obj, act)
}

// EnforceRoles 按 token 携带的角色判定，任一放行即可；非法角色名忽略
func (s *Service) EnforceRoles(roles []string, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	for _, role := range roles {
		subject, err := NormalizeRole(role)
		if err != nil {
			continue
		}
		ok, err := s.Enforce(subject, obj, act)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// Grant 为角色添加规则，已存在时不报错
func (s *Service) Grant(role, object, action string) error {
	if err := s.ready(); err != nil {
		return err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	act := NormalizeAction(action)
	if act == "" {
		return fmt.Errorf("authz: action is required")
	}
	if _, err := s.enforcer.AddPolicy(subject, NormalizeObject(object), act); err != nil {
		return fmt.Errorf("authz: grant %s %s %s: %w", subject, act, object, err)
	}
	return nil
}

// RolePolicies 角色的全部规则
func (s *Service) RolePolicies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("authz: policies of %s: %w", subject, err)
	}
	return toPolicies(rules), nil
}

// SetUserRoles 用 roles 整体替换用户已绑定的角色
func (s *Service) SetUserRoles(userID uint, roles []string) error {
	if userID == 0 {
		return ErrUserRequired
	}
	if err := s.ready(); err != nil {
		return err
	}
	subjects := make([]string, 0, len(roles))
	for _, role := range roles {
		subject, err := NormalizeRole(role)
		if err != nil {
			return err
		}
		subjects = append(subjects, subject)
	}

	user := SubjectForUser(userID)
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy(groupPolicy, 0, user); err != nil {
		return fmt.Errorf("authz: clear roles of %s: %w", user, err)
	}
	for _, subject := range subjects {
		if _, err := s.enforcer.AddNamedGroupingPolicy(groupPolicy, user, subject); err != nil {
			return fmt.Errorf("authz: bind %s to %s: %w", subject, user, err)
		}
	}
	return nil
}

// UserRoles 用户已绑定的角色，按名称排序
func (s *Service) UserRoles(userID uint) ([]string, error) {
	if userID == 0 {
		return nil, ErrUserRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForUser(userID))
	if err != nil {
		return nil, fmt.Errorf("authz: roles of user %d: %w", userID, err)
	}
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		if strings.HasPrefix(role, rolePrefix) {
			out = append(out, role)
		}
	}
	sort.Strings(out)
	return out, nil
}
