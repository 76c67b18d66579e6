package routing_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmart/storefront-client/internal/models"
	"github.com/localmart/storefront-client/internal/routing"
	"github.com/localmart/storefront-client/internal/session"
	"github.com/localmart/storefront-client/pkg/storage"
)

func sessionWithRole(t *testing.T, role models.Role) *session.Store {
	t.Helper()
	persist := storage.NewMemoryStore()
	user := models.User{ID: "u1", Email: "u@x.co", Name: "U", Role: role}
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, persist.Set("token", "tok"))
	require.NoError(t, persist.Set("user", string(raw)))
	sess := session.NewStore(persist)
	sess.Restore()
	return sess
}

func TestUndeterminedSessionWaits(t *testing.T) {
	sess := session.NewStore(storage.NewMemoryStore())
	guard := routing.NewGuard(sess)

	// Restore has not run: never redirect, not even transiently
	for _, req := range []routing.Requirement{routing.RequireAdmin, routing.RequireBusiness, routing.RequireCustomer} {
		assert.Equal(t, routing.Wait, guard.Decide(req))
	}
}

func TestAnonymousSessionRedirectsToLogin(t *testing.T) {
	sess := session.NewStore(storage.NewMemoryStore())
	sess.Restore()
	guard := routing.NewGuard(sess)

	for _, req := range []routing.Requirement{routing.RequireAdmin, routing.RequireBusiness, routing.RequireCustomer} {
		assert.Equal(t, routing.RedirectLogin, guard.Decide(req))
	}
}

func TestRoleMatrix(t *testing.T) {
	cases := []struct {
		role     models.Role
		required routing.Requirement
		want     routing.Decision
	}{
		{models.RoleAdmin, routing.RequireAdmin, routing.Allow},
		{models.RoleAdmin, routing.RequireBusiness, routing.RedirectHome},
		{models.RoleAdmin, routing.RequireCustomer, routing.RedirectHome},
		{models.RoleBusinessOwner, routing.RequireAdmin, routing.RedirectHome},
		// the generic "business" requirement accepts the concrete owner role
		{models.RoleBusinessOwner, routing.RequireBusiness, routing.Allow},
		{models.RoleBusinessOwner, routing.RequireCustomer, routing.RedirectHome},
		{models.RoleCustomer, routing.RequireAdmin, routing.RedirectHome},
		{models.RoleCustomer, routing.RequireBusiness, routing.RedirectHome},
		{models.RoleCustomer, routing.RequireCustomer, routing.Allow},
	}

	for _, tc := range cases {
		guard := routing.NewGuard(sessionWithRole(t, tc.role))
		got := guard.Decide(tc.required)
		assert.Equal(t, tc.want, got, "role=%s required=%s", tc.role, tc.required)
	}
}

func TestUnknownRequirementDenies(t *testing.T) {
	guard := routing.NewGuard(sessionWithRole(t, models.RoleAdmin))
	assert.Equal(t, routing.RedirectHome, guard.Decide(routing.Requirement("superuser")))
}

func TestHomePathByRole(t *testing.T) {
	assert.Equal(t, "/dashboard/admin", routing.HomePath(models.RoleAdmin))
	assert.Equal(t, "/dashboard/business", routing.HomePath(models.RoleBusinessOwner))
	assert.Equal(t, "/", routing.HomePath(models.RoleCustomer))
}
