package app_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmart/storefront-client/internal/app"
	"github.com/localmart/storefront-client/internal/models"
	"github.com/localmart/storefront-client/internal/routing"
	"github.com/localmart/storefront-client/internal/session"
	"github.com/localmart/storefront-client/internal/stubapi"
	"github.com/localmart/storefront-client/pkg/config"
	"github.com/localmart/storefront-client/pkg/storage"
)

func newApp(t *testing.T, persist storage.Store) *app.App {
	t.Helper()
	store := stubapi.NewStore()
	stubapi.Seed(store)
	backend := httptest.NewServer(stubapi.NewRouter(store, "test-secret"))
	t.Cleanup(backend.Close)

	cfg := config.Config{
		APIBaseURL:     backend.URL + "/api",
		RequestTimeout: 5 * time.Second,
		CacheTTL:       time.Minute,
	}
	a, err := app.New(cfg, persist)
	require.NoError(t, err)
	return a
}

func TestBusinessRegistrationLandsOnBusinessDashboard(t *testing.T) {
	a := newApp(t, storage.NewMemoryStore())
	a.Start()

	err := a.Session.Register(context.Background(),
		"Shop Owner", "owner@biz.co", "secret-pass", models.ChoiceBusiness)
	require.NoError(t, err)

	user := a.Session.User()
	require.NotNil(t, user)
	assert.Equal(t, models.RoleBusinessOwner, user.Role)
	assert.Equal(t, "/dashboard/business", routing.HomePath(user.Role))

	// the generic business route admits the owner; admin routes do not
	assert.Equal(t, routing.Allow, a.Guard.Decide(routing.RequireBusiness))
	assert.Equal(t, routing.RedirectHome, a.Guard.Decide(routing.RequireAdmin))
}

func TestCustomerCartFlowUsesServerReturnedState(t *testing.T) {
	a := newApp(t, storage.NewMemoryStore())
	a.Start()

	require.NoError(t, a.Session.Register(context.Background(),
		"Customer", "c@test.co", "secret-pass", models.ChoiceCustomer))

	products, err := a.Catalog.Products(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, products)
	p := products[0]

	require.NoError(t, a.Cart.AddItem(context.Background(), p.ID, 2))
	assert.Equal(t, 2, a.Cart.ItemCount())
	assert.True(t, a.Cart.TotalAmount().Equal(p.Price.Mul(decimal.NewFromInt(2))))

	require.NoError(t, a.Cart.SetQuantity(context.Background(), p.ID, 1))
	assert.Equal(t, 1, a.Cart.ItemCount())
	assert.True(t, a.Cart.TotalAmount().Equal(p.Price))
}

func TestLogoutClearsSessionCartAndStorage(t *testing.T) {
	persist := storage.NewMemoryStore()
	a := newApp(t, persist)
	a.Start()

	require.NoError(t, a.Session.Register(context.Background(),
		"Customer", "c@test.co", "secret-pass", models.ChoiceCustomer))
	products, err := a.Catalog.Products(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Cart.AddItem(context.Background(), products[0].ID, 1))

	a.Session.Logout()

	assert.Equal(t, session.StatusAnonymous, a.Session.Status())
	assert.Nil(t, a.Session.User())
	assert.Nil(t, a.Cart.Cart())
	_, hasToken := persist.Get("token")
	_, hasUser := persist.Get("user")
	assert.False(t, hasToken)
	assert.False(t, hasUser)
}

func TestRejectedTokenInvalidatesSessionWithoutManualLogout(t *testing.T) {
	persist := storage.NewMemoryStore()

	// a persisted credential the backend will not accept
	user := models.User{ID: "u1", Email: "u1@test.co", Name: "U", Role: models.RoleCustomer}
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, persist.Set("token", "expired-token"))
	require.NoError(t, persist.Set("user", string(raw)))

	a := newApp(t, persist)
	a.Start()
	require.Equal(t, session.StatusAuthenticated, a.Session.Status())

	err = a.Cart.Refresh(context.Background())
	assert.True(t, a.HandleAuthFailure(err), "401 on a cart fetch must count as an auth failure")

	assert.Equal(t, session.StatusAnonymous, a.Session.Status())
	assert.Nil(t, a.Cart.Cart())
	_, hasToken := persist.Get("token")
	assert.False(t, hasToken, "stale token must be gone from storage")
}

func TestHandleAuthFailureIgnoresOtherErrors(t *testing.T) {
	a := newApp(t, storage.NewMemoryStore())
	a.Start()

	assert.False(t, a.HandleAuthFailure(nil))
	assert.False(t, a.HandleAuthFailure(context.DeadlineExceeded))
}
