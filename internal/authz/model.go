package authz

import (
	"errors"
	"strconv"
	"strings"
)

const (
	apiPrefix   = "/api/v1"
	ruleTable   = "casbin_rule"
	userPrefix  = "user:"
	rolePrefix  = "role:"
	anyAction   = "*"
	groupPolicy = "g"
)

// rbacModel 用户经 g 继承角色，对象按 keyMatch2 匹配路由模板
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var (
	ErrUnavailable  = errors.New("authz: service unavailable")
	ErrRoleRequired = errors.New("authz: role is required")
	ErrUserRequired = errors.New("authz: user id is required")
)

// Policy 一条授权规则
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// SubjectForUser 用户主体
func SubjectForUser(userID uint) string {
	return userPrefix + strconv.FormatUint(uint64(userID), 10)
}

// NormalizeRole customer -> role:customer，空白替换为下划线
func NormalizeRole(role string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(role), rolePrefix)
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return "", ErrRoleRequired
	}
	return rolePrefix + name, nil
}

// NormalizeObject 授权对象统一为不带 /api/v1 前缀的路径
func NormalizeObject(object string) string {
	path := strings.TrimSpace(object)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	switch {
	case path == apiPrefix:
		return "/"
	case strings.HasPrefix(path, apiPrefix+"/"):
		return path[len(apiPrefix):]
	}
	return path
}

// NormalizeAction HTTP 方法大写
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}

func toPolicies(rules [][]string) []Policy {
	out := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		out = append(out, Policy{Subject: rule[0], Object: rule[1], Action: rule[2]})
	}
	return out
}
