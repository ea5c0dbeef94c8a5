package cart

import (
	"time"

	"github.com/pasarkita/storefront/services/cartapi"
)

type Cart struct {
	ShopperUID   string
	CreatedAt    time.Time
	LastModified *time.Time
	Items        []cartapi.CartItem
}

// Selection is the subset of cart lines marked for the next checkout. It is
// persisted independently from the cart itself.
type Selection struct {
	ShopperUID string
	ProductIDs []string
}

func (s Selection) Has(productID string) bool {
	for _, uid := range s.ProductIDs {
		if uid == productID {
			return true
		}
	}
	return false
}

func (s Selection) Without(productID string) Selection {
	kept := []string{}
	for _, uid := range s.ProductIDs {
		if uid != productID {
			kept = append(kept, uid)
		}
	}
	s.ProductIDs = kept
	return s
}

func (b Cart) Find(productID string) (cartapi.CartItem, bool) {
	for _, item := range b.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return cartapi.CartItem{}, false
}

func (b Cart) TotalPrice() int64 {
	var total int64
	for _, item := range b.Items {
		total += item.TotalPrice()
	}
	return total
}

func (b Cart) ItemCount() int {
	count := 0
	for _, item := range b.Items {
		count += item.Quantity
	}
	return count
}

func (b Cart) SelectedItems(selection Selection) []cartapi.CartItem {
	selected := []cartapi.CartItem{}
	for _, item := range b.Items {
		if selection.Has(item.ProductID) {
			selected = append(selected, item)
		}
	}
	return selected
}

func (b Cart) SelectedTotalPrice(selection Selection) int64 {
	var total int64
	for _, item := range b.SelectedItems(selection) {
		total += item.TotalPrice()
	}
	return total
}

func (b Cart) SelectedItemCount(selection Selection) int {
	count := 0
	for _, item := range b.SelectedItems(selection) {
		count += item.Quantity
	}
	return count
}

// CartView is what the cart endpoints return: the lines, the selection and
// the derived aggregates, recomputed on every request.
type CartView struct {
	ShopperUID         string
	Items              []cartapi.CartItem
	SelectedProductIDs []string
	TotalPrice         int64
	SelectedTotalPrice int64
	ItemCount          int
	SelectedItemCount  int
}

func newCartView(cart Cart, selection Selection) CartView {
	return CartView{
		ShopperUID:         cart.ShopperUID,
		Items:              cart.Items,
		SelectedProductIDs: selection.ProductIDs,
		TotalPrice:         cart.TotalPrice(),
		SelectedTotalPrice: cart.SelectedTotalPrice(selection),
		ItemCount:          cart.ItemCount(),
		SelectedItemCount:  cart.SelectedItemCount(selection),
	}
}
