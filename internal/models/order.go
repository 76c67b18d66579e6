package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is backend-defined. The client displays whatever arrives
// and never computes transitions; see DisplayLabel for the rendering
// rule around unrecognized values.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var statusLabels = map[OrderStatus]string{
	OrderPending:    "Pending",
	OrderConfirmed:  "Confirmed",
	OrderProcessing: "Processing",
	OrderShipped:    "Shipped",
	OrderDelivered:  "Delivered",
	OrderCancelled:  "Cancelled",
}

// DisplayLabel renders a status for the UI. Values the client does not
// recognize render as a generic unknown rather than being dropped, since
// the enumeration belongs to the backend and may grow.
func (s OrderStatus) DisplayLabel() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown status"
}

type OrderItem struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
