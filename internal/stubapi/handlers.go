package stubapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/localmart/storefront-client/internal/models"
)

// Handler owns the stub backend's endpoints. It exists so the client
// core can be exercised against the real wire contract without a
// deployed backend; it implements the HTTP shapes, not the business
// rules behind them.
type Handler struct {
	store  *Store
	secret string
}

func NewHandler(store *Store, jwtSecret string) *Handler {
	return &Handler{store: store, secret: jwtSecret}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// --- auth ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) authPayload(w http.ResponseWriter, user *models.User) {
	token, err := h.issueToken(user.ID, string(user.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	if _, ok := models.NormalizeRole(req.Role); !ok {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}
	user, err := h.store.createUser(req.Name, req.Email, req.Role, hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user with this email already exists")
		return
	}
	h.authPayload(w, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	acc, err := h.store.userByEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	u := acc.User
	h.authPayload(w, &u)
}

// --- catalog ---

// formFile records an uploaded image. The stub keeps only a synthetic
// path; nothing serves the bytes back.
func formImage(r *http.Request) string {
	file, header, err := r.FormFile("image")
	if err != nil {
		return ""
	}
	defer file.Close()
	return "/uploads/" + uuid.NewString() + "-" + header.Filename
}

func (h *Handler) listShops(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listShops(""))
}

func (h *Handler) myShops(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listShops(callerID(r)))
}

func (h *Handler) getShop(w http.ResponseWriter, r *http.Request) {
	sh, err := h.store.getShop(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "shop not found")
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (h *Handler) createShop(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	now := time.Now().UTC()
	sh := &models.Shop{
		ID:          uuid.NewString(),
		OwnerID:     callerID(r),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Address:     r.FormValue("address"),
		Image:       formImage(r),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if sh.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	h.store.putShop(sh)
	writeJSON(w, http.StatusCreated, sh)
}

func (h *Handler) updateShop(w http.ResponseWriter, r *http.Request) {
	sh, err := h.store.getShop(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "shop not found")
		return
	}
	if sh.OwnerID != callerID(r) && callerRole(r) != string(models.RoleAdmin) {
		writeError(w, http.StatusForbidden, "not your shop")
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	if v := r.FormValue("name"); v != "" {
		sh.Name = v
	}
	if v := r.FormValue("description"); v != "" {
		sh.Description = v
	}
	if v := r.FormValue("category"); v != "" {
		sh.Category = v
	}
	if v := r.FormValue("address"); v != "" {
		sh.Address = v
	}
	if img := formImage(r); img != "" {
		sh.Image = img
	}
	sh.UpdatedAt = time.Now().UTC()
	h.store.putShop(sh)
	writeJSON(w, http.StatusOK, sh)
}

func (h *Handler) deleteShop(w http.ResponseWriter, r *http.Request) {
	if err := h.store.deleteShop(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "shop not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listProducts(""))
}

func (h *Handler) myProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listProducts(callerID(r)))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.getProduct(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || !price.IsPositive() {
		writeError(w, http.StatusBadRequest, "price must be a positive number")
		return
	}
	now := time.Now().UTC()
	p := &models.Product{
		ID:          uuid.NewString(),
		ShopID:      r.FormValue("shopId"),
		OwnerID:     callerID(r),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Price:       price,
		Image:       formImage(r),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if v := r.FormValue("originalPrice"); v != "" {
		if op, err := decimal.NewFromString(v); err == nil {
			p.OriginalPrice = &op
		}
	}
	if v := r.FormValue("stock"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Stock = &n
		}
	}
	h.store.putProduct(p)
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.getProduct(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if p.OwnerID != callerID(r) && callerRole(r) != string(models.RoleAdmin) {
		writeError(w, http.StatusForbidden, "not your product")
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	if v := r.FormValue("name"); v != "" {
		p.Name = v
	}
	if v := r.FormValue("description"); v != "" {
		p.Description = v
	}
	if v := r.FormValue("category"); v != "" {
		p.Category = v
	}
	if v := r.FormValue("price"); v != "" {
		if price, err := decimal.NewFromString(v); err == nil && price.IsPositive() {
			p.Price = price
		}
	}
	if v := r.FormValue("stock"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Stock = &n
		}
	}
	if img := formImage(r); img != "" {
		p.Image = img
	}
	p.UpdatedAt = time.Now().UTC()
	h.store.putProduct(p)
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.store.deleteProduct(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *Handler) listPromotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listPromotions(""))
}

func (h *Handler) myPromotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listPromotions(callerID(r)))
}

func (h *Handler) getPromotion(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.getPromotion(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "promotion not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createPromotion(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	start, err1 := time.Parse(time.RFC3339, r.FormValue("startDate"))
	end, err2 := time.Parse(time.RFC3339, r.FormValue("endDate"))
	if err1 != nil || err2 != nil || end.Before(start) {
		writeError(w, http.StatusBadRequest, "startDate and endDate must be RFC3339 and ordered")
		return
	}
	now := time.Now().UTC()
	p := &models.Promotion{
		ID:          uuid.NewString(),
		ShopID:      r.FormValue("shopId"),
		OwnerID:     callerID(r),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Discount:    r.FormValue("discount"),
		StartDate:   start,
		EndDate:     end,
		Image:       formImage(r),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	h.store.putPromotion(p)
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updatePromotion(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.getPromotion(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "promotion not found")
		return
	}
	if p.OwnerID != callerID(r) && callerRole(r) != string(models.RoleAdmin) {
		writeError(w, http.StatusForbidden, "not your promotion")
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	if v := r.FormValue("title"); v != "" {
		p.Title = v
	}
	if v := r.FormValue("description"); v != "" {
		p.Description = v
	}
	if v := r.FormValue("discount"); v != "" {
		p.Discount = v
	}
	if v := r.FormValue("startDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.StartDate = t
		}
	}
	if v := r.FormValue("endDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.EndDate = t
		}
	}
	if img := formImage(r); img != "" {
		p.Image = img
	}
	p.UpdatedAt = time.Now().UTC()
	h.store.putPromotion(p)
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deletePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.store.deletePromotion(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "promotion not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listCategories())
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	c := &models.Category{
		ID:    uuid.NewString(),
		Name:  r.FormValue("name"),
		Image: formImage(r),
	}
	if c.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	h.store.putCategory(c)
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.deleteCategory(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// --- cart ---
// Cart responses carry the full cart under a "cart" key.

func cartPayload(w http.ResponseWriter, code int, c *models.Cart) {
	writeJSON(w, code, map[string]any{"cart": c})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cartPayload(w, http.StatusOK, h.store.cartFor(callerID(r)))
}

type cartAddRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req cartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}
	c, err := h.store.addCartItem(callerID(r), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	cartPayload(w, http.StatusOK, c)
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}
	c, err := h.store.setCartQuantity(callerID(r), chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		writeError(w, http.StatusNotFound, "item not in cart")
		return
	}
	cartPayload(w, http.StatusOK, c)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.removeCartItem(callerID(r), chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, http.StatusNotFound, "item not in cart")
		return
	}
	cartPayload(w, http.StatusOK, c)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	cartPayload(w, http.StatusOK, h.store.clearCart(callerID(r)))
}

// --- orders ---

type placeOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.ShippingAddress == "" || req.PaymentMethod == "" {
		writeError(w, http.StatusBadRequest, "shippingAddress and paymentMethod are required")
		return
	}
	order, err := h.store.placeOrder(callerID(r), req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listOrders(callerID(r)))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.getOrder(callerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.cancelOrder(callerID(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, errNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, order)
}
