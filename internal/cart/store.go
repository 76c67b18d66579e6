// Package cart mirrors the authenticated user's server-side cart. The
// server owns every mutation; the mirror only ever adopts state the
// server returned, or re-fetches when a response omits it.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/localmart/storefront-client/internal/api"
	"github.com/localmart/storefront-client/internal/models"
	"github.com/localmart/storefront-client/internal/session"
)

// API is the slice of the HTTP client the store uses.
type API interface {
	Get(ctx context.Context, path string, query url.Values, dest any) error
	Do(ctx context.Context, method, path string, body any, dest any) error
}

type Store struct {
	mu   sync.RWMutex
	api  API
	sess *session.Store
	cart *models.Cart

	// seq numbers each issued operation; applied is the seq of the state
	// currently mirrored. A response whose seq is below applied is stale
	// (a newer operation already landed) and is dropped, so the last
	// operation issued wins rather than the last response to arrive.
	seq     uint64
	applied uint64
}

// NewStore builds the mirror and subscribes it to the session's auth
// signal: logging out empties the mirror, logging in triggers a fetch.
func NewStore(client API, sess *session.Store) *Store {
	s := &Store{api: client, sess: sess}
	sess.OnChange(func(status session.Status, _ *models.User) {
		if status == session.StatusAuthenticated {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = s.Refresh(ctx)
			return
		}
		s.clearLocal()
	})
	return s
}

// Cart returns a copy of the mirrored cart, or nil when there is none.
func (s *Store) Cart() *models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return nil
	}
	c := *s.cart
	c.Items = append([]models.CartItem(nil), s.cart.Items...)
	return &c
}

// ItemCount is computed fresh from the line items on every call, never
// cached separately.
func (s *Store) ItemCount() int {
	return s.Cart().ItemCount()
}

// TotalAmount is computed fresh from the line items on every call.
func (s *Store) TotalAmount() decimal.Decimal {
	return s.Cart().Total()
}

// Refresh fetches the current cart. Fetch failure resets the mirror to
// "no cart" instead of surfacing an error, since cart absence is a
// normal state for a fresh account. The one failure that does surface
// is a rejected token, which the caller must turn into an invalidated
// session.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.authenticated() {
		s.clearLocal()
		return nil
	}

	seq := s.nextSeq()
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/cart", nil, &raw); err != nil {
		s.clearLocal()
		if errors.Is(err, api.ErrAuthenticationRequired) {
			return err
		}
		return nil
	}
	s.adopt(seq, parseCart(raw))
	return nil
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Store) AddItem(ctx context.Context, productID string, quantity int) error {
	if errs := models.ValidateQuantity(quantity); !errs.Ok() {
		return fmt.Errorf("add item: %s", errs["quantity"])
	}
	return s.mutate(ctx, http.MethodPost, "/cart", addItemRequest{ProductID: productID, Quantity: quantity})
}

func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if errs := models.ValidateQuantity(quantity); !errs.Ok() {
		return fmt.Errorf("set quantity: %s", errs["quantity"])
	}
	return s.mutate(ctx, http.MethodPut, "/cart/"+productID, setQuantityRequest{Quantity: quantity})
}

func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, http.MethodDelete, "/cart/"+productID, nil)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, http.MethodDelete, "/cart/clear/all", nil)
}

func (s *Store) mutate(ctx context.Context, method, path string, body any) error {
	if !s.authenticated() {
		return fmt.Errorf("cart: %w", api.ErrAuthenticationRequired)
	}

	seq := s.nextSeq()
	var raw json.RawMessage
	if err := s.api.Do(ctx, method, path, body, &raw); err != nil {
		return err
	}

	cart := parseCart(raw)
	if cart == nil {
		// mutation response without the updated cart: resynchronize
		return s.Refresh(ctx)
	}
	s.adopt(seq, cart)
	return nil
}

func (s *Store) authenticated() bool {
	return s.sess.Status() == session.StatusAuthenticated
}

func (s *Store) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *Store) adopt(seq uint64, cart *models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		return
	}
	s.applied = seq
	s.cart = cart
}

// clearLocal empties the mirror and fences off any response still in
// flight so it cannot resurrect the cart afterwards.
func (s *Store) clearLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = s.seq
	s.cart = nil
}

// parseCart accepts both response shapes the backend uses: the full
// cart under a "cart" key, or the cart as the bare body.
func parseCart(raw json.RawMessage) *models.Cart {
	if len(raw) == 0 {
		return nil
	}
	var env struct {
		Cart *models.Cart `json:"cart"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Cart != nil {
		return env.Cart
	}
	var c models.Cart
	if err := json.Unmarshal(raw, &c); err == nil && (c.ID != "" || c.UserID != "" || c.Items != nil) {
		return &c
	}
	return nil
}
