package auth

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleUser  = "user"
	RoleStaff = "staff"
)

// Authorizer decides whether a role may call a method on a path
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds an in-memory enforcer with the service's route policy.
// Staff inherit every user permission.
func NewAuthorizer() (*Authorizer, error) {
	m := model.NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("g", "g", "_, _")
	m.AddDef("e", "e", "some(where (p.eft == allow))")
	m.AddDef("m", "m", "g(r.sub, p.sub) && pathMatch(r.obj, p.obj) && methodMatch(r.act, p.act)")

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	e.AddFunction("pathMatch", pathMatchFunc)
	e.AddFunction("methodMatch", methodMatchFunc)

	policies := [][]string{
		{RoleUser, "/api/requests/**", "ANY"},
		{RoleUser, "/api/requests", "ANY"},
		{RoleUser, "/api/author-requests/**", "ANY"},
		{RoleUser, "/api/author-requests", "ANY"},
		{RoleUser, "/api/artist-requests/**", "ANY"},
		{RoleUser, "/api/artist-requests", "ANY"},
		{RoleUser, "/api/novels/**", "ANY"},
		{RoleUser, "/api/comments/**", "ANY"},
		{RoleStaff, "/api/admin/**", "ANY"},
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("failed to add policy %v: %w", p, err)
		}
	}
	if _, err := e.AddGroupingPolicy(RoleStaff, RoleUser); err != nil {
		return nil, fmt.Errorf("failed to add role inheritance: %w", err)
	}

	return &Authorizer{enforcer: e}, nil
}

// Allowed reports whether role may perform method on path
func (a *Authorizer) Allowed(role, path, method string) (bool, error) {
	return a.enforcer.Enforce(role, path, method)
}

// PathMatch matches "/a/*" against one segment and "/a/**" against any depth.
func PathMatch(path, pattern string) bool {
	i := strings.LastIndex(pattern, "/")
	if i == -1 {
		return false
	}
	switch pattern[i+1:] {
	case "*":
		return strings.HasPrefix(path, pattern[:i+1]) && !strings.Contains(path[i+1:], "/")
	case "**":
		return strings.HasPrefix(path, pattern[:i+1])
	default:
		return path == pattern
	}
}

func pathMatchFunc(args ...interface{}) (interface{}, error) {
	return PathMatch(args[0].(string), args[1].(string)), nil
}

func methodMatchFunc(args ...interface{}) (interface{}, error) {
	pattern := args[1].(string)
	return pattern == "ANY" || args[0].(string) == pattern, nil
}
