package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoleChoiceMapping(t *testing.T) {
	got, ok := BackendRole(ChoiceBusiness)
	assert.True(t, ok)
	assert.Equal(t, "business_owner", got)

	got, ok = BackendRole(ChoiceCustomer)
	assert.True(t, ok)
	assert.Equal(t, "customer", got)

	_, ok = BackendRole(RoleChoice("root"))
	assert.False(t, ok)
}

func TestNormalizeRoleRejectsUnknownStrings(t *testing.T) {
	r, ok := NormalizeRole("business_owner")
	assert.True(t, ok)
	assert.Equal(t, RoleBusinessOwner, r)

	_, ok = NormalizeRole("superadmin")
	assert.False(t, ok)
}

func TestUserValid(t *testing.T) {
	assert.True(t, User{ID: "1", Email: "a@b.co", Role: RoleCustomer}.Valid())
	assert.False(t, User{Email: "a@b.co", Role: RoleCustomer}.Valid())
	assert.False(t, User{ID: "1", Role: RoleCustomer}.Valid())
	assert.False(t, User{ID: "1", Email: "a@b.co", Role: Role("ghost")}.Valid())
}

func TestCartDerivedValues(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{Product: ProductSnapshot{ID: "a", Price: decimal.NewFromInt(1000)}, Quantity: 2},
		{Product: ProductSnapshot{ID: "b", Price: decimal.NewFromFloat(2.50)}, Quantity: 3},
	}}
	assert.Equal(t, 5, c.ItemCount())
	assert.True(t, c.Total().Equal(decimal.NewFromFloat(2007.50)))

	var empty *Cart
	assert.Equal(t, 0, empty.ItemCount())
	assert.True(t, empty.Total().IsZero())
}

func TestOrderStatusDisplayLabel(t *testing.T) {
	assert.Equal(t, "Pending", OrderPending.DisplayLabel())
	assert.Equal(t, "Confirmed", OrderConfirmed.DisplayLabel())
	assert.Equal(t, "Cancelled", OrderCancelled.DisplayLabel())
	// backend-defined enumeration: new values must not be dropped
	assert.Equal(t, "Unknown status", OrderStatus("awaiting_pickup").DisplayLabel())
}

func TestValidateLoginForm(t *testing.T) {
	assert.True(t, ValidateLoginForm("a@b.co", "pw").Ok())

	errs := ValidateLoginForm("", "")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	errs = ValidateLoginForm("not-an-email", "pw")
	assert.Contains(t, errs, "email")
}

func TestValidateRegistrationForm(t *testing.T) {
	assert.True(t, ValidateRegistrationForm("Ada", "a@b.co", "longenough", ChoiceCustomer).Ok())

	errs := ValidateRegistrationForm("", "a@b.co", "short", ChoiceBusiness)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "password")

	errs = ValidateRegistrationForm("Ada", "a@b.co", "longenough", RoleChoice("root"))
	assert.Contains(t, errs, "role")
}

func TestValidateProductForm(t *testing.T) {
	neg := -1
	errs := ValidateProductForm("", decimal.Zero, &neg)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "stock")

	assert.True(t, ValidateProductForm("Bread", decimal.NewFromInt(4), nil).Ok())
}

func TestValidatePromotionForm(t *testing.T) {
	now := time.Now()
	assert.True(t, ValidatePromotionForm("Sale", now, now.Add(time.Hour)).Ok())

	errs := ValidatePromotionForm("Sale", now, now.Add(-time.Hour))
	assert.Contains(t, errs, "dates")

	errs = ValidatePromotionForm("", time.Time{}, time.Time{})
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "dates")
}

func TestValidateQuantity(t *testing.T) {
	assert.True(t, ValidateQuantity(1).Ok())
	assert.False(t, ValidateQuantity(0).Ok())
	assert.False(t, ValidateQuantity(-2).Ok())
}
