package cartapi

import (
	"fmt"
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"

	"github.com/pasarkita/storefront/lib/myerrors"
)

// CartItem is the canonical cart line shape: one line per product id.
type CartItem struct {
	ProductID string `json:"product_id" form:"productId"`
	SellerID  string `json:"seller_id" form:"sellerId"`
	Name      string `json:"product_name" form:"name"`
	Price     int64  `json:"price" form:"price"`
	Quantity  int    `json:"quantity" form:"quantity"`
	ImageURL  string `json:"image_url" form:"imageUrl"`
	Variant   string `json:"variant,omitempty" form:"variant"`
}

func (i CartItem) TotalPrice() int64 {
	return i.Price * int64(i.Quantity)
}

type Address struct {
	RecipientName string `json:"recipient_name" form:"recipientName"`
	Phone         string `json:"phone" form:"phone"`
	Street        string `json:"street" form:"street"`
	City          string `json:"city" form:"city"`
	Province      string `json:"province" form:"province"`
	PostalCode    string `json:"postal_code" form:"postalCode"`
	Country       string `json:"country" form:"country"`
}

// CheckoutForm is what the storefront posts when the shopper submits the
// checkout wizard. The cart lines themselves are not part of the form: the
// checkout service reads the current selection, unless buyNow is set, in
// which case the single buy-now item bypasses cart and selection entirely.
type CheckoutForm struct {
	ShopperUID     string   `form:"shopperUid"`
	SellerID       string   `form:"sellerId"`
	CustomerName   string   `form:"customerName"`
	Email          string   `form:"email"`
	PaymentMethod  string   `form:"paymentMethod"`
	ShippingMethod string   `form:"shippingMethod"`
	ShippingCost   int64    `form:"shippingCost"`
	BuyerNotes     string   `form:"buyerNotes"`
	Address        Address  `form:"address"`
	BuyNow         bool     `form:"buyNow"`
	BuyNowItem     CartItem `form:"buyNowItem"`
}

func NewCheckoutFormFromRequest(r *http.Request) (CheckoutForm, error) {
	err := r.ParseForm()
	if err != nil {
		return CheckoutForm{}, myerrors.NewInvalidInputError(err)
	}
	return NewCheckoutFormFromValues(r.Form)
}

func NewCheckoutFormFromValues(values url.Values) (CheckoutForm, error) {
	form := CheckoutForm{}
	err := formcodec.NewDecoder().Decode(&form, values)
	if err != nil {
		return form, fmt.Errorf("error decoding form: %s", err)
	}

	return form, nil
}

func (f CheckoutForm) ToForm() (url.Values, error) {
	values, err := formcodec.NewEncoder().Encode(f)
	if err != nil {
		return nil, fmt.Errorf("error encoding form: %s", err)
	}

	return values, nil
}

func NewCartItemFromRequest(r *http.Request) (CartItem, error) {
	err := r.ParseForm()
	if err != nil {
		return CartItem{}, myerrors.NewInvalidInputError(err)
	}

	item := CartItem{}
	err = formcodec.NewDecoder().Decode(&item, r.Form)
	if err != nil {
		return CartItem{}, myerrors.NewInvalidInputErrorf("error decoding form: %s", err)
	}

	return item, nil
}

func (f CheckoutForm) Validate() error {
	if f.ShopperUID == "" {
		return myerrors.NewInvalidInputErrorf("missing shopperUid")
	}
	if f.PaymentMethod != PaymentMethodManualTransfer && f.PaymentMethod != PaymentMethodMidtrans {
		return myerrors.NewInvalidInputErrorf("unsupported payment method %q", f.PaymentMethod)
	}
	if f.Address.RecipientName == "" || f.Address.Phone == "" || f.Address.Street == "" ||
		f.Address.City == "" || f.Address.PostalCode == "" {
		return myerrors.NewInvalidInputErrorf("incomplete shipping address")
	}
	if f.BuyNow && (f.BuyNowItem.ProductID == "" || f.BuyNowItem.Quantity <= 0) {
		return myerrors.NewInvalidInputErrorf("invalid buy-now item")
	}
	return nil
}

const (
	PaymentMethodManualTransfer = "manual_transfer"
	PaymentMethodMidtrans       = "midtrans"
)
