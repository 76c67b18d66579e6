package catalog

import (
	"context"
	"sync"

	"github.com/localmart/storefront-client/internal/models"
)

// StorefrontPage is everything the landing page renders. The four
// collections have no ordering dependency on each other, so they are
// fetched concurrently; the page stays "loading" until all four settle.
type StorefrontPage struct {
	Shops      []models.Shop
	Products   []models.Product
	Promotions []models.Promotion
	Categories []models.Category
}

func (s *Service) LoadStorefrontPage(ctx context.Context) (*StorefrontPage, error) {
	page := &StorefrontPage{}

	var wg sync.WaitGroup
	errs := make([]error, 4)

	wg.Add(4)
	go func() {
		defer wg.Done()
		page.Shops, errs[0] = s.Shops(ctx, nil)
	}()
	go func() {
		defer wg.Done()
		page.Products, errs[1] = s.Products(ctx, nil)
	}()
	go func() {
		defer wg.Done()
		page.Promotions, errs[2] = s.Promotions(ctx, nil)
	}()
	go func() {
		defer wg.Done()
		page.Categories, errs[3] = s.Categories(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return page, nil
}
