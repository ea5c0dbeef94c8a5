package paymidtrans

import (
	"time"

	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/checkoutevents"
)

// PaymentContext is seeded from the order-created event and enriched as the
// payment progresses through Snap token creation, redirect and webhook.
type PaymentContext struct {
	OrderUID              string
	ShopperUID            string
	CreatedAt             time.Time
	LastModified          *time.Time
	AmountInCents         int64
	ShippingCost          int64
	Items                 []cartapi.CartItem
	CustomerName          string
	Email                 string
	SnapToken             string
	RedirectURL           string
	OriginalReturnURL     string
	PaymentMethod         string
	CheckoutStatus        checkoutevents.CheckoutStatus
	CheckoutStatusDetails string
}

// StartPaymentResponse carries what the storefront needs to open the Snap
// widget: the transaction token and the client key.
type StartPaymentResponse struct {
	OrderUID    string
	Token       string
	RedirectURL string
	ClientKey   string
}

// WebhookNotification is the status message Midtrans posts to us.
type WebhookNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	GrossAmount       string `json:"gross_amount"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
}

type WebhookNotificationResponse struct {
	Status string
}
