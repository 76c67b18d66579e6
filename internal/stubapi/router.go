package stubapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter builds the stub backend under /api, matching the contract
// the client wrapper consumes.
func NewRouter(store *Store, jwtSecret string) http.Handler {
	h := NewHandler(store, jwtSecret)

	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		// public reads
		r.Get("/shops", h.listShops)
		r.Get("/shops/{id}", h.getShop)
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/promotions", h.listPromotions)
		r.Get("/promotions/{id}", h.getPromotion)
		r.Get("/categories", h.listCategories)

		// everything below needs a bearer token
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/shops/my", h.myShops)
			r.Post("/shops", h.createShop)
			r.Put("/shops/{id}", h.updateShop)
			r.Delete("/shops/{id}", h.deleteShop)

			r.Get("/products/my", h.myProducts)
			r.Post("/products", h.createProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)

			r.Get("/promotions/my", h.myPromotions)
			r.Post("/promotions", h.createPromotion)
			r.Put("/promotions/{id}", h.updatePromotion)
			r.Delete("/promotions/{id}", h.deletePromotion)

			r.Post("/categories", h.createCategory)
			r.Delete("/categories/{id}", h.deleteCategory)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.getCart)
				r.Post("/", h.addToCart)
				r.Put("/{productId}", h.setCartQuantity)
				r.Delete("/clear/all", h.clearCart)
				r.Delete("/{productId}", h.removeFromCart)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.placeOrder)
				r.Get("/", h.listOrders)
				r.Get("/{id}", h.getOrder)
				r.Put("/{id}/cancel", h.cancelOrder)
			})
		})
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
