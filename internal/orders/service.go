// Package orders places and reads orders. Order status is owned by the
// backend; this layer only carries it through for display.
package orders

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/localmart/storefront-client/internal/models"
)

type API interface {
	Get(ctx context.Context, path string, query url.Values, dest any) error
	Do(ctx context.Context, method, path string, body any, dest any) error
}

type Service struct {
	api API
}

func NewService(client API) *Service {
	return &Service{api: client}
}

type placeRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	PaymentMethod   string `json:"paymentMethod"`
}

func (s *Service) Place(ctx context.Context, shippingAddress, paymentMethod string) (*models.Order, error) {
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, errors.New("shipping address is required")
	}
	if strings.TrimSpace(paymentMethod) == "" {
		return nil, errors.New("payment method is required")
	}
	var order models.Order
	if err := s.api.Do(ctx, http.MethodPost, "/orders", placeRequest{
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
	}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	var list []models.Order
	if err := s.api.Get(ctx, "/orders", nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Order{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.api.Get(ctx, "/orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.api.Do(ctx, http.MethodPut, "/orders/"+id+"/cancel", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
