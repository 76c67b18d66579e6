package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmart/storefront-client/internal/api"
	"github.com/localmart/storefront-client/internal/cart"
	"github.com/localmart/storefront-client/internal/models"
	"github.com/localmart/storefront-client/internal/session"
	"github.com/localmart/storefront-client/internal/stubapi"
	"github.com/localmart/storefront-client/pkg/storage"
)

type fixture struct {
	sess   *session.Store
	cart   *cart.Store
	client *api.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := stubapi.NewStore()
	stubapi.Seed(store)
	backend := httptest.NewServer(stubapi.NewRouter(store, "test-secret"))
	t.Cleanup(backend.Close)
	return newFixtureAgainst(t, backend.URL+"/api")
}

func newFixtureAgainst(t *testing.T, baseURL string) *fixture {
	t.Helper()
	return buildFixture(t, baseURL, storage.NewMemoryStore())
}

// newAuthenticatedFixture pre-seeds storage with a synthetic token and
// identity so Restore comes up authenticated without a backend round
// trip. The token is meaningless to any real verifier.
func newAuthenticatedFixture(t *testing.T, baseURL string) *fixture {
	t.Helper()
	persist := storage.NewMemoryStore()
	user := models.User{ID: "u1", Email: "u1@test.co", Name: "U", Role: models.RoleCustomer}
	raw, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, persist.Set("token", "synthetic-token"))
	require.NoError(t, persist.Set("user", string(raw)))
	return buildFixture(t, baseURL, persist)
}

func buildFixture(t *testing.T, baseURL string, persist storage.Store) *fixture {
	t.Helper()
	sess := session.NewStore(persist)
	client := api.New(baseURL, 5*time.Second, sess)
	sess.SetAPI(client)
	c := cart.NewStore(client, sess)
	sess.Restore()
	return &fixture{sess: sess, cart: c, client: client}
}

func (f *fixture) registerCustomer(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sess.Register(context.Background(),
		"Test Customer", "customer@test.co", "secret-pass", models.ChoiceCustomer))
}

func (f *fixture) anyProduct(t *testing.T) models.Product {
	t.Helper()
	var list []models.Product
	require.NoError(t, f.client.Get(context.Background(), "/products", nil, &list))
	require.NotEmpty(t, list)
	return list[0]
}

func TestMutationsRequireAuthentication(t *testing.T) {
	f := newFixture(t)

	err := f.cart.AddItem(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, api.ErrAuthenticationRequired)

	err = f.cart.SetQuantity(context.Background(), "p1", 2)
	assert.ErrorIs(t, err, api.ErrAuthenticationRequired)

	err = f.cart.RemoveItem(context.Background(), "p1")
	assert.ErrorIs(t, err, api.ErrAuthenticationRequired)

	err = f.cart.Clear(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthenticationRequired)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t)

	assert.Error(t, f.cart.AddItem(context.Background(), "p1", 0))
	assert.Error(t, f.cart.SetQuantity(context.Background(), "p1", -1))
}

func TestAddItemAdoptsServerCartAndDerivesTotals(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t)
	p := f.anyProduct(t)

	require.NoError(t, f.cart.AddItem(context.Background(), p.ID, 2))

	assert.Equal(t, 2, f.cart.ItemCount())
	want := p.Price.Mul(decimal.NewFromInt(2))
	assert.True(t, f.cart.TotalAmount().Equal(want),
		"total %s, want %s", f.cart.TotalAmount(), want)

	// totals always recomputed from the server's line items
	require.NoError(t, f.cart.SetQuantity(context.Background(), p.ID, 1))
	assert.Equal(t, 1, f.cart.ItemCount())
	assert.True(t, f.cart.TotalAmount().Equal(p.Price))
}

func TestTotalsTrackEveryMutation(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t)

	var list []models.Product
	require.NoError(t, f.client.Get(context.Background(), "/products", nil, &list))
	require.GreaterOrEqual(t, len(list), 2)

	require.NoError(t, f.cart.AddItem(context.Background(), list[0].ID, 3))
	require.NoError(t, f.cart.AddItem(context.Background(), list[1].ID, 1))

	c := f.cart.Cart()
	require.NotNil(t, c)
	wantTotal := decimal.Zero
	wantCount := 0
	for _, it := range c.Items {
		wantTotal = wantTotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		wantCount += it.Quantity
	}
	assert.Equal(t, wantCount, f.cart.ItemCount())
	assert.True(t, f.cart.TotalAmount().Equal(wantTotal))

	require.NoError(t, f.cart.RemoveItem(context.Background(), list[0].ID))
	assert.Equal(t, 1, f.cart.ItemCount())

	require.NoError(t, f.cart.Clear(context.Background()))
	assert.Equal(t, 0, f.cart.ItemCount())
	assert.True(t, f.cart.TotalAmount().IsZero())
}

func TestRefreshFailureResetsToNoCart(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(backend.Close)

	f := newAuthenticatedFixture(t, backend.URL)

	require.NoError(t, f.cart.Refresh(context.Background()))
	assert.Nil(t, f.cart.Cart())
	assert.Equal(t, 0, f.cart.ItemCount())
}

func TestRefreshSurfacesRejectedToken(t *testing.T) {
	store := stubapi.NewStore()
	backend := httptest.NewServer(stubapi.NewRouter(store, "test-secret"))
	t.Cleanup(backend.Close)

	// the synthetic token is not a jwt the stub accepts
	f := newAuthenticatedFixture(t, backend.URL+"/api")

	err := f.cart.Refresh(context.Background())
	assert.ErrorIs(t, err, api.ErrAuthenticationRequired)
	assert.Nil(t, f.cart.Cart())
}

func TestMutationResponseWithoutCartFallsBackToRefresh(t *testing.T) {
	serverCart := models.Cart{
		ID:     "c1",
		UserID: "u1",
		Items: []models.CartItem{{
			Product:  models.ProductSnapshot{ID: "p1", Name: "Thing", Price: decimal.NewFromInt(1000)},
			Quantity: 2,
		}},
	}
	var refreshes atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/cart":
			// acknowledgment without the updated cart payload
			w.Write([]byte(`{"message":"added"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/cart":
			refreshes.Add(1)
			json.NewEncoder(w).Encode(map[string]any{"cart": serverCart})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	f := newAuthenticatedFixture(t, backend.URL)
	before := refreshes.Load()

	require.NoError(t, f.cart.AddItem(context.Background(), "p1", 2))

	assert.Equal(t, before+1, refreshes.Load(),
		"store must re-fetch when the mutation response omits the cart")
	assert.Equal(t, 2, f.cart.ItemCount())
	assert.True(t, f.cart.TotalAmount().Equal(decimal.NewFromInt(2000)))
}

func TestStaleMutationResponseIsDiscarded(t *testing.T) {
	firstReceived := make(chan struct{})
	releaseFirst := make(chan struct{})

	cartWithQty := func(qty int) map[string]any {
		return map[string]any{"cart": models.Cart{
			ID:     "c1",
			UserID: "u1",
			Items: []models.CartItem{{
				Product:  models.ProductSnapshot{ID: "p1", Name: "Thing", Price: decimal.NewFromInt(5)},
				Quantity: qty,
			}},
		}}
	}

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPut {
			json.NewEncoder(w).Encode(map[string]any{"cart": models.Cart{ID: "c1", UserID: "u1", Items: []models.CartItem{}}})
			return
		}
		var body struct {
			Quantity int `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Quantity == 1 {
			close(firstReceived)
			<-releaseFirst // hold the first response until the second lands
			json.NewEncoder(w).Encode(cartWithQty(1))
			return
		}
		json.NewEncoder(w).Encode(cartWithQty(2))
	}))
	t.Cleanup(backend.Close)

	f := newAuthenticatedFixture(t, backend.URL)

	done := make(chan error, 1)
	go func() {
		done <- f.cart.SetQuantity(context.Background(), "p1", 1)
	}()
	<-firstReceived

	// second mutation issued after the first, answered before it
	require.NoError(t, f.cart.SetQuantity(context.Background(), "p1", 2))
	assert.Equal(t, 2, f.cart.ItemCount())

	close(releaseFirst)
	require.NoError(t, <-done)

	// the late response for the older mutation must not win
	assert.Equal(t, 2, f.cart.ItemCount())
	assert.True(t, f.cart.TotalAmount().Equal(decimal.NewFromInt(10)))
}

func TestLogoutClearsMirrorAndRefusesFurtherCalls(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t)
	p := f.anyProduct(t)
	require.NoError(t, f.cart.AddItem(context.Background(), p.ID, 1))
	require.Equal(t, 1, f.cart.ItemCount())

	f.sess.Logout()

	assert.Nil(t, f.cart.Cart())
	assert.Equal(t, 0, f.cart.ItemCount())
	assert.True(t, f.cart.TotalAmount().IsZero())
	assert.ErrorIs(t, f.cart.AddItem(context.Background(), p.ID, 1), api.ErrAuthenticationRequired)
}

func TestLoginRefetchesExistingServerCart(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t)
	p := f.anyProduct(t)
	require.NoError(t, f.cart.AddItem(context.Background(), p.ID, 3))

	f.sess.Logout()
	require.Equal(t, 0, f.cart.ItemCount())

	require.NoError(t, f.sess.Login(context.Background(), "customer@test.co", "secret-pass"))

	// subscription fired a refresh; the server still held the cart
	assert.Equal(t, 3, f.cart.ItemCount())
}
