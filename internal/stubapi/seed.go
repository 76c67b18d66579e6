package stubapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmart/storefront-client/internal/models"
)

// Seed loads a small demo catalog so a freshly started stub has
// something to browse.
func Seed(s *Store) {
	now := time.Now().UTC()

	groceries := &models.Category{ID: uuid.NewString(), Name: "Groceries"}
	bakery := &models.Category{ID: uuid.NewString(), Name: "Bakery"}
	s.putCategory(groceries)
	s.putCategory(bakery)

	shop := &models.Shop{
		ID:          uuid.NewString(),
		Name:        "Corner Market",
		Description: "Neighborhood grocery",
		Category:    groceries.Name,
		Address:     "12 Main St",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.putShop(shop)

	stock := 25
	s.putProduct(&models.Product{
		ID:        uuid.NewString(),
		ShopID:    shop.ID,
		Name:      "Sourdough Loaf",
		Category:  bakery.Name,
		Price:     decimal.NewFromInt(6),
		Stock:     &stock,
		CreatedAt: now,
		UpdatedAt: now,
	})
	s.putProduct(&models.Product{
		ID:        uuid.NewString(),
		ShopID:    shop.ID,
		Name:      "Olive Oil 500ml",
		Category:  groceries.Name,
		Price:     decimal.NewFromFloat(11.50),
		CreatedAt: now,
		UpdatedAt: now,
	})

	s.putPromotion(&models.Promotion{
		ID:          uuid.NewString(),
		ShopID:      shop.ID,
		Title:       "Weekend bakery sale",
		Discount:    "20%",
		StartDate:   now,
		EndDate:     now.Add(72 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
		Description: "All baked goods, Friday through Sunday",
	})
}
