package catalog

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/localmart/storefront-client/internal/api"
	"github.com/localmart/storefront-client/internal/models"
)

// ValidationError carries field-level messages from synchronous form
// validation. It never reaches the network layer.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func ValidationFailed(fields models.FieldErrors) error {
	return &ValidationError{Fields: fields}
}

// Image is an optional file attachment on a create/update form.
type Image struct {
	Name   string
	Reader io.Reader
}

func attach(f *api.Form, img *Image) {
	if img == nil {
		return
	}
	f.FileField = "image"
	f.FileName = img.Name
	f.File = img.Reader
}

type ProductForm struct {
	ShopID        string
	Name          string
	Description   string
	Category      string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Stock         *int
	Image         *Image
}

func (f ProductForm) Validate() models.FieldErrors {
	return models.ValidateProductForm(f.Name, f.Price, f.Stock)
}

func (f ProductForm) multipart() *api.Form {
	fields := map[string]string{
		"name":        f.Name,
		"description": f.Description,
		"category":    f.Category,
		"price":       f.Price.String(),
	}
	if f.ShopID != "" {
		fields["shopId"] = f.ShopID
	}
	if f.OriginalPrice != nil {
		fields["originalPrice"] = f.OriginalPrice.String()
	}
	if f.Stock != nil {
		fields["stock"] = strconv.Itoa(*f.Stock)
	}
	form := &api.Form{Fields: fields}
	attach(form, f.Image)
	return form
}

type ShopForm struct {
	Name        string
	Description string
	Category    string
	Address     string
	Image       *Image
}

func (f ShopForm) Validate() models.FieldErrors {
	errs := models.FieldErrors{}
	if f.Name == "" {
		errs["name"] = "name is required"
	}
	return errs
}

func (f ShopForm) multipart() *api.Form {
	form := &api.Form{Fields: map[string]string{
		"name":        f.Name,
		"description": f.Description,
		"category":    f.Category,
		"address":     f.Address,
	}}
	attach(form, f.Image)
	return form
}

type PromotionForm struct {
	ShopID      string
	Title       string
	Description string
	Discount    string
	StartDate   time.Time
	EndDate     time.Time
	Image       *Image
}

func (f PromotionForm) Validate() models.FieldErrors {
	return models.ValidatePromotionForm(f.Title, f.StartDate, f.EndDate)
}

func (f PromotionForm) multipart() *api.Form {
	fields := map[string]string{
		"title":       f.Title,
		"description": f.Description,
		"discount":    f.Discount,
		"startDate":   f.StartDate.Format(time.RFC3339),
		"endDate":     f.EndDate.Format(time.RFC3339),
	}
	if f.ShopID != "" {
		fields["shopId"] = f.ShopID
	}
	form := &api.Form{Fields: fields}
	attach(form, f.Image)
	return form
}

type CategoryForm struct {
	Name  string
	Image *Image
}

func (f CategoryForm) Validate() models.FieldErrors {
	errs := models.FieldErrors{}
	if f.Name == "" {
		errs["name"] = "name is required"
	}
	return errs
}

func (f CategoryForm) multipart() *api.Form {
	form := &api.Form{Fields: map[string]string{"name": f.Name}}
	attach(form, f.Image)
	return form
}
