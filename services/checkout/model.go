package checkout

import (
	"context"
	"time"

	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/checkoutevents"
)

// CheckoutContext tracks one checkout submission from the moment the shopper
// presses "order" until the payment provider reports a final status.
type CheckoutContext struct {
	OrderUID              string
	ShopperUID            string
	SellerID              string
	CreatedAt             time.Time
	LastModified          *time.Time
	OrderNumber           string
	BackendOrderID        string
	PaymentMethod         string
	TotalInCents          int64
	CheckoutStatus        checkoutevents.CheckoutStatus
	CheckoutStatusDetails string
}

// CheckoutResponse is returned to the storefront so it can show the order
// confirmation or hand the shopper over to the payment page.
type CheckoutResponse struct {
	OrderUID       string
	OrderNumber    string
	BackendOrderID string
	TotalInCents   int64
	PaymentMethod  string
	PaymentURL     string `json:",omitempty"`
}

// CartReader is the slice of the cart service that checkout needs: the lines
// the shopper marked for purchase.
type CartReader interface {
	SelectedItems(c context.Context, shopperUID string) ([]cartapi.CartItem, error)
}
