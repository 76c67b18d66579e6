// Package catalog is the read/CRUD layer for the server-owned entities
// the storefront renders: products, shops, promotions, categories.
// Reads go through a shared TTL cache keyed by endpoint+params.
package catalog

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/localmart/storefront-client/internal/models"
)

type API interface {
	Get(ctx context.Context, path string, query url.Values, dest any) error
	Do(ctx context.Context, method, path string, body any, dest any) error
}

type Service struct {
	api   API
	cache *queryCache
}

func NewService(client API, cacheTTL time.Duration) *Service {
	return &Service{api: client, cache: newQueryCache(cacheTTL)}
}

func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func fetchList[T any](ctx context.Context, s *Service, path string, query url.Values) ([]T, error) {
	key := cacheKey(path, query)
	if v, ok := s.cache.get(key); ok {
		return v.([]T), nil
	}
	var list []T
	if err := s.api.Get(ctx, path, query, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	s.cache.set(key, list)
	return list, nil
}

func fetchOne[T any](ctx context.Context, s *Service, path string) (*T, error) {
	key := cacheKey(path, nil)
	if v, ok := s.cache.get(key); ok {
		item := v.(T)
		return &item, nil
	}
	var item T
	if err := s.api.Get(ctx, path, nil, &item); err != nil {
		return nil, err
	}
	s.cache.set(key, item)
	return &item, nil
}

// --- Reads ---

func (s *Service) Products(ctx context.Context, query url.Values) ([]models.Product, error) {
	return fetchList[models.Product](ctx, s, "/products", query)
}

func (s *Service) Product(ctx context.Context, id string) (*models.Product, error) {
	return fetchOne[models.Product](ctx, s, "/products/"+id)
}

func (s *Service) MyProducts(ctx context.Context) ([]models.Product, error) {
	return fetchList[models.Product](ctx, s, "/products/my", nil)
}

func (s *Service) Shops(ctx context.Context, query url.Values) ([]models.Shop, error) {
	return fetchList[models.Shop](ctx, s, "/shops", query)
}

func (s *Service) Shop(ctx context.Context, id string) (*models.Shop, error) {
	return fetchOne[models.Shop](ctx, s, "/shops/"+id)
}

func (s *Service) MyShops(ctx context.Context) ([]models.Shop, error) {
	return fetchList[models.Shop](ctx, s, "/shops/my", nil)
}

func (s *Service) Promotions(ctx context.Context, query url.Values) ([]models.Promotion, error) {
	return fetchList[models.Promotion](ctx, s, "/promotions", query)
}

func (s *Service) Promotion(ctx context.Context, id string) (*models.Promotion, error) {
	return fetchOne[models.Promotion](ctx, s, "/promotions/"+id)
}

func (s *Service) MyPromotions(ctx context.Context) ([]models.Promotion, error) {
	return fetchList[models.Promotion](ctx, s, "/promotions/my", nil)
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return fetchList[models.Category](ctx, s, "/categories", nil)
}

// --- Writes ---
// Create/update bodies go as multipart forms so an optional image file
// can ride along with the record fields.

func (s *Service) CreateProduct(ctx context.Context, form ProductForm) (*models.Product, error) {
	if errs := form.Validate(); !errs.Ok() {
		return nil, ValidationFailed(errs)
	}
	var created models.Product
	if err := s.api.Do(ctx, http.MethodPost, "/products", form.multipart(), &created); err != nil {
		return nil, err
	}
	s.cache.invalidatePrefix("/products")
	return &created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, form ProductForm) (*models.Product, error) {
	if errs := form.Validate(); !errs.Ok() {
		return nil, ValidationFailed(errs)
	}
	var updated models.Product
	if err := s.api.Do(ctx, http.MethodPut, "/products/"+id, form.multipart(), &updated); err != nil {
		return nil, err
	}
	s.cache.invalidatePrefix("/products")
	return &updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.api.Do(ctx, http.MethodDelete, "/products/"+id, nil, nil); err != nil {
		return err
	}
	s.cache.invalidatePrefix("/products")
	return nil
}

func (s *Service) CreateShop(ctx context.Context, form ShopForm) (*models.Shop, error) {
	if errs := form.Validate(); !errs.Ok() {
		return nil, ValidationFailed(errs)
	}
	var created models.Shop
	if err := s.api.Do(ctx, http.MethodPost, "/shops", form.multipart(), &created); err != nil {
		return nil, err
	}
	s.cache.invalidatePrefix("/shops")
	return &created, nil
}

func (s *Service) UpdateShop(ctx context.Context, id string, form ShopForm) (*models.Shop, error) {
	if errs := form.Validate(); !errs.Ok() {
		return nil, ValidationFailed(errs)
	}
	var updated models.Shop
	if err := s.api.Do(ctx, http.MethodPut, "/shops/"+id, form.multipart(), &updated); err != nil {
		return nil, err
	}
	s.cache.invalidatePrefix("/shops")
	return &updated, nil
}

func (s *Service) DeleteShop(ctx context.Context, id string) error {
	if err := s.api.Do(ctx, http.MethodDelete, "/shops/"+id, nil, nil); err != nil {
		return err
	}
	s.cache.invalidatePrefix("/shops")
	return nil
}

func (s *Service) CreatePromotion(ctx context.Context, form PromotionForm) (*models.Promotion, error) {
	if errs := form.Validate(); !errs.Ok() {
		return nil, ValidationFailed(errs)
	}
	var created models.Promotion
	if err := s.api.Do(ctx, http.MethodPost, "/promotions", form.multipart(), &created); err != nil {
		return nil, err
	}
	s.cache.invalidatePrefix("/promotions")
	return &created, nil
}

func (s *Service) UpdatePromotion(ctx context.Context, id string, form PromotionForm) (*models.Promotion, error) {
	if errs := form.Validate(); !errs.Ok() {
		return nil, ValidationFailed(errs)
	}
	var updated models.Promotion
	if err := s.api.Do(ctx, http.MethodPut, "/promotions/"+id, form.multipart(), &updated); err != nil {
		return nil, err
	}
	s.cache.invalidatePrefix("/promotions")
	return &updated, nil
}

func (s *Service) DeletePromotion(ctx context.Context, id string) error {
	if err := s.api.Do(ctx, http.MethodDelete, "/promotions/"+id, nil, nil); err != nil {
		return err
	}
	s.cache.invalidatePrefix("/promotions")
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, form CategoryForm) (*models.Category, error) {
	if errs := form.Validate(); !errs.Ok() {
		return nil, ValidationFailed(errs)
	}
	var created models.Category
	if err := s.api.Do(ctx, http.MethodPost, "/categories", form.multipart(), &created); err != nil {
		return nil, err
	}
	s.cache.invalidatePrefix("/categories")
	return &created, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.api.Do(ctx, http.MethodDelete, "/categories/"+id, nil, nil); err != nil {
		return err
	}
	s.cache.invalidatePrefix("/categories")
	return nil
}
