package orders

import (
	"time"

	"github.com/pasarkita/storefront/services/cartapi"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal states accept no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type Customer struct {
	Name           string
	Email          string
	Phone          string
	Address        cartapi.Address
	Notes          string
	ShippingMethod string
}

// Order is the local mirror of a backend-confirmed order. Items and
// TotalInCents are a snapshot taken at creation time and never change
// afterwards: only Status (and LastModified) may be mutated.
type Order struct {
	ID             int64
	OrderUID       string
	OrderNumber    string
	BackendOrderID string
	ShopperUID     string
	SellerID       string
	Items          []cartapi.CartItem
	TotalInCents   int64
	Customer       Customer
	Status         OrderStatus
	CreatedAt      time.Time
	LastModified   *time.Time
}
