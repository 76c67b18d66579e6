package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldErrors maps form field names to user-facing messages. Form
// validation runs synchronously before any network call and reports
// through this type, never through an error return the caller might
// mistake for a transport failure.
type FieldErrors map[string]string

func (f FieldErrors) Ok() bool { return len(f) == 0 }

var emailRegex = regexp.MustCompile(`^(([^<>()[\]\.,;:\s@\"]+(\.[^<>()[\]\.,;:\s@\"]+)*)|(\".+\"))@(([^<>()[\]\.,;:\s@\"]+\.)+[^<>()[\]\.,;:\s@\"]{2,})$`)

func ValidateLoginForm(email, password string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(email) == "" {
		errs["email"] = "email is required"
	} else if !emailRegex.MatchString(email) {
		errs["email"] = "please enter a valid email address"
	}
	if password == "" {
		errs["password"] = "password is required"
	}
	return errs
}

func ValidateRegistrationForm(name, email, password string, choice RoleChoice) FieldErrors {
	errs := ValidateLoginForm(email, password)
	if strings.TrimSpace(name) == "" {
		errs["name"] = "name is required"
	}
	if password != "" && utf8.RuneCountInString(password) < 8 {
		errs["password"] = "password must be at least 8 characters"
	}
	if _, ok := BackendRole(choice); !ok {
		errs["role"] = "choose customer or business"
	}
	return errs
}

func ValidateProductForm(name string, price decimal.Decimal, stock *int) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs["name"] = "name is required"
	}
	if !price.IsPositive() {
		errs["price"] = "price must be greater than zero"
	}
	if stock != nil && *stock < 0 {
		errs["stock"] = "stock cannot be negative"
	}
	return errs
}

func ValidatePromotionForm(title string, start, end time.Time) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(title) == "" {
		errs["title"] = "title is required"
	}
	if start.IsZero() || end.IsZero() {
		errs["dates"] = "start and end dates are required"
	} else if end.Before(start) {
		errs["dates"] = "end date must not be before start date"
	}
	return errs
}

func ValidateQuantity(quantity int) FieldErrors {
	errs := FieldErrors{}
	if quantity < 1 {
		errs["quantity"] = "quantity must be at least 1"
	}
	return errs
}
