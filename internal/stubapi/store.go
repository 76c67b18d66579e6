package stubapi

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmart/storefront-client/internal/models"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("already exists")
)

type account struct {
	models.User
	PasswordHash []byte
}

// Store is the stub backend's in-memory state. Everything sits behind
// one mutex; this is a dev/test fixture, not a database.
type Store struct {
	mu         sync.Mutex
	users      map[string]*account // by id
	emails     map[string]string   // email -> id
	shops      map[string]*models.Shop
	products   map[string]*models.Product
	promotions map[string]*models.Promotion
	categories map[string]*models.Category
	carts      map[string]*models.Cart // by user id
	orders     map[string]*models.Order
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*account),
		emails:     make(map[string]string),
		shops:      make(map[string]*models.Shop),
		products:   make(map[string]*models.Product),
		promotions: make(map[string]*models.Promotion),
		categories: make(map[string]*models.Category),
		carts:      make(map[string]*models.Cart),
		orders:     make(map[string]*models.Order),
	}
}

func (s *Store) createUser(name, email, role string, hash []byte) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[email]; taken {
		return nil, errDuplicate
	}
	acc := &account{
		User: models.User{
			ID:    uuid.NewString(),
			Email: email,
			Name:  name,
			Role:  models.Role(role),
		},
		PasswordHash: hash,
	}
	s.users[acc.ID] = acc
	s.emails[email] = acc.ID
	u := acc.User
	return &u, nil
}

func (s *Store) userByEmail(email string) (*account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, errNotFound
	}
	acc := *s.users[id]
	return &acc, nil
}

// --- catalog ---

func (s *Store) listShops(ownerID string) []models.Shop {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Shop{}
	for _, sh := range s.shops {
		if ownerID == "" || sh.OwnerID == ownerID {
			out = append(out, *sh)
		}
	}
	return out
}

func (s *Store) putShop(sh *models.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[sh.ID] = sh
}

func (s *Store) getShop(id string) (*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shops[id]
	if !ok {
		return nil, errNotFound
	}
	out := *sh
	return &out, nil
}

func (s *Store) deleteShop(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shops[id]; !ok {
		return errNotFound
	}
	delete(s.shops, id)
	return nil
}

func (s *Store) listProducts(ownerID string) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, p := range s.products {
		if ownerID == "" || p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out
}

func (s *Store) putProduct(p *models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) getProduct(id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, errNotFound
	}
	out := *p
	return &out, nil
}

func (s *Store) deleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return errNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) listPromotions(ownerID string) []models.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Promotion{}
	for _, p := range s.promotions {
		if ownerID == "" || p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out
}

func (s *Store) putPromotion(p *models.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotions[p.ID] = p
}

func (s *Store) getPromotion(id string) (*models.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.promotions[id]
	if !ok {
		return nil, errNotFound
	}
	out := *p
	return &out, nil
}

func (s *Store) deletePromotion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promotions[id]; !ok {
		return errNotFound
	}
	delete(s.promotions, id)
	return nil
}

func (s *Store) listCategories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Category{}
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out
}

func (s *Store) putCategory(c *models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

func (s *Store) deleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return errNotFound
	}
	delete(s.categories, id)
	return nil
}

// --- cart ---

func (s *Store) cartFor(userID string) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(userID)
}

// cartLocked lazily creates the user's cart. Caller holds s.mu.
func (s *Store) cartLocked(userID string) *models.Cart {
	c, ok := s.carts[userID]
	if !ok {
		now := time.Now().UTC()
		c = &models.Cart{
			ID:        uuid.NewString(),
			UserID:    userID,
			Items:     []models.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.carts[userID] = c
	}
	out := *c
	out.Items = append([]models.CartItem(nil), c.Items...)
	return &out
}

func (s *Store) addCartItem(userID, productID string, quantity int) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, errNotFound
	}
	s.cartLocked(userID)
	c := s.carts[userID]

	merged := false
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, models.CartItem{
			Product: models.ProductSnapshot{
				ID:            p.ID,
				Name:          p.Name,
				Price:         p.Price,
				OriginalPrice: p.OriginalPrice,
				Image:         p.Image,
				Stock:         p.Stock,
			},
			Quantity: quantity,
		})
	}
	c.UpdatedAt = time.Now().UTC()
	out := *c
	out.Items = append([]models.CartItem(nil), c.Items...)
	return &out, nil
}

func (s *Store) setCartQuantity(userID, productID string, quantity int) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, errNotFound
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = time.Now().UTC()
			out := *c
			out.Items = append([]models.CartItem(nil), c.Items...)
			return &out, nil
		}
	}
	return nil, errNotFound
}

func (s *Store) removeCartItem(userID, productID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, errNotFound
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			out := *c
			out.Items = append([]models.CartItem(nil), c.Items...)
			return &out, nil
		}
	}
	return nil, errNotFound
}

func (s *Store) clearCart(userID string) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartLocked(userID)
	c := s.carts[userID]
	c.Items = []models.CartItem{}
	c.UpdatedAt = time.Now().UTC()
	out := *c
	out.Items = []models.CartItem{}
	return &out
}

// --- orders ---

func (s *Store) placeOrder(userID, shippingAddress, paymentMethod string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok || len(c.Items) == 0 {
		return nil, errNotFound
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, models.OrderItem{Product: it.Product, Quantity: it.Quantity})
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		Total:           total,
		Status:          models.OrderPending,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.orders[order.ID] = order

	c.Items = []models.CartItem{}
	c.UpdatedAt = now

	out := *order
	return &out, nil
}

func (s *Store) listOrders(userID string) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out
}

func (s *Store) getOrder(userID, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, errNotFound
	}
	out := *o
	return &out, nil
}

func (s *Store) cancelOrder(userID, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, errNotFound
	}
	switch o.Status {
	case models.OrderPending, models.OrderConfirmed, models.OrderProcessing:
		o.Status = models.OrderCancelled
		o.UpdatedAt = time.Now().UTC()
	default:
		return nil, errors.New("order can no longer be cancelled")
	}
	out := *o
	return &out, nil
}
