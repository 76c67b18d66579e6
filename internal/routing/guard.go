// Package routing decides whether a navigation target that declares a
// required role gets rendered or redirected. It is a flat allow/deny
// check, not a permission system.
package routing

import (
	"github.com/localmart/storefront-client/internal/models"
	"github.com/localmart/storefront-client/internal/session"
)

// Requirement is the role a route declares. RequireBusiness is the
// generic form used on route tables; it accepts the concrete
// business_owner role.
type Requirement string

const (
	RequireAdmin    Requirement = "admin"
	RequireBusiness Requirement = "business"
	RequireCustomer Requirement = "customer"
)

type Decision int

const (
	// Wait means the session is still undetermined; render a neutral
	// loading state and never redirect prematurely.
	Wait Decision = iota
	Allow
	RedirectLogin
	RedirectHome
)

type Guard struct {
	sess *session.Store
}

func NewGuard(sess *session.Store) *Guard {
	return &Guard{sess: sess}
}

func (g *Guard) Decide(required Requirement) Decision {
	switch g.sess.Status() {
	case session.StatusUnknown:
		return Wait
	case session.StatusAnonymous:
		return RedirectLogin
	}

	user := g.sess.User()
	if user == nil {
		return RedirectLogin
	}
	if roleSatisfies(user.Role, required) {
		return Allow
	}
	return RedirectHome
}

func roleSatisfies(role models.Role, required Requirement) bool {
	switch required {
	case RequireAdmin:
		return role == models.RoleAdmin
	case RequireBusiness:
		return role == models.RoleBusinessOwner
	case RequireCustomer:
		return role == models.RoleCustomer
	}
	return false
}

// HomePath is where a freshly authenticated session lands, by role.
func HomePath(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/dashboard/admin"
	case models.RoleBusinessOwner:
		return "/dashboard/business"
	default:
		return "/"
	}
}
