package cart

import (
	"context"
	"fmt"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/services/cartapi"
)

func (s *service) getCartView(c context.Context, shopperUID string) (CartView, error) {
	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Fetch cart of shopper %s", shopperUID)

	cart, selection, err := s.load(c, shopperUID)
	if err != nil {
		return CartView{}, err
	}

	return newCartView(cart, selection), nil
}

// addItem appends a new line, or increments the quantity of the existing
// line with the same product id: a product occurs at most once per cart.
func (s *service) addItem(c context.Context, shopperUID string, item cartapi.CartItem) (CartView, error) {
	if item.ProductID == "" {
		return CartView{}, myerrors.NewInvalidInputErrorf("missing product id")
	}
	if item.Price < 0 {
		return CartView{}, myerrors.NewInvalidInputErrorf("negative price for product %s", item.ProductID)
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Add %d x product %s to cart of shopper %s", item.Quantity, item.ProductID, shopperUID)

	var view CartView
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, selection, err := s.load(c, shopperUID)
		if err != nil {
			return err
		}

		existing, found := cart.Find(item.ProductID)
		if found {
			existing.Quantity += item.Quantity
			cart = s.replaceItem(cart, existing)
		} else {
			cart.Items = append(cart.Items, item)
		}

		cart, err = s.storeCart(c, cart)
		if err != nil {
			return err
		}

		view = newCartView(cart, selection)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}

	return view, nil
}

// removeItem drops the line with this product id and un-selects it in the
// same operation. Removing an absent product is a no-op.
func (s *service) removeItem(c context.Context, shopperUID string, productID string) (CartView, error) {
	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Remove product %s from cart of shopper %s", productID, shopperUID)

	var view CartView
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, selection, err := s.load(c, shopperUID)
		if err != nil {
			return err
		}

		kept := []cartapi.CartItem{}
		for _, item := range cart.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
		selection = selection.Without(productID)

		cart, selection, err = s.store(c, cart, selection)
		if err != nil {
			return err
		}

		view = newCartView(cart, selection)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}

	return view, nil
}

// updateQuantity sets the line to an absolute quantity. A quantity of zero
// or less removes the line instead.
func (s *service) updateQuantity(c context.Context, shopperUID string, productID string, quantity int) (CartView, error) {
	if quantity <= 0 {
		return s.removeItem(c, shopperUID, productID)
	}

	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Set quantity of product %s to %d for shopper %s", productID, quantity, shopperUID)

	var view CartView
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, selection, err := s.load(c, shopperUID)
		if err != nil {
			return err
		}

		item, found := cart.Find(productID)
		if found {
			item.Quantity = quantity
			cart = s.replaceItem(cart, item)

			cart, err = s.storeCart(c, cart)
			if err != nil {
				return err
			}
		}

		view = newCartView(cart, selection)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}

	return view, nil
}

func (s *service) clearCart(c context.Context, shopperUID string) (CartView, error) {
	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Clear cart of shopper %s", shopperUID)

	var view CartView
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, selection, err := s.load(c, shopperUID)
		if err != nil {
			return err
		}

		cart.Items = []cartapi.CartItem{}
		selection.ProductIDs = []string{}

		cart, selection, err = s.store(c, cart, selection)
		if err != nil {
			return err
		}

		view = newCartView(cart, selection)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}

	return view, nil
}

func (s *service) toggleSelectItem(c context.Context, shopperUID string, productID string) (CartView, error) {
	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Toggle selection of product %s for shopper %s", productID, shopperUID)

	var view CartView
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, selection, err := s.load(c, shopperUID)
		if err != nil {
			return err
		}

		// selection may only reference lines present in the cart
		_, found := cart.Find(productID)
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("product %s not in cart of shopper %s", productID, shopperUID))
		}

		if selection.Has(productID) {
			selection = selection.Without(productID)
		} else {
			selection.ProductIDs = append(selection.ProductIDs, productID)
		}

		selection, err = s.storeSelection(c, selection, shopperUID)
		if err != nil {
			return err
		}

		view = newCartView(cart, selection)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}

	return view, nil
}

// toggleSelectAll selects every line, unless the selection already covers
// the whole cart: then it deselects everything.
func (s *service) toggleSelectAll(c context.Context, shopperUID string) (CartView, error) {
	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Toggle select-all for shopper %s", shopperUID)

	var view CartView
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, selection, err := s.load(c, shopperUID)
		if err != nil {
			return err
		}

		allSelected := len(cart.Items) > 0
		for _, item := range cart.Items {
			if !selection.Has(item.ProductID) {
				allSelected = false
				break
			}
		}

		if allSelected {
			selection.ProductIDs = []string{}
		} else {
			selection.ProductIDs = []string{}
			for _, item := range cart.Items {
				selection.ProductIDs = append(selection.ProductIDs, item.ProductID)
			}
		}

		selection, err = s.storeSelection(c, selection, shopperUID)
		if err != nil {
			return err
		}

		view = newCartView(cart, selection)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}

	return view, nil
}

func (s *service) removeSelectedItems(c context.Context, shopperUID string) (CartView, error) {
	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Remove selected items from cart of shopper %s", shopperUID)

	var view CartView
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, selection, err := s.load(c, shopperUID)
		if err != nil {
			return err
		}

		cart, selection = removeProducts(cart, selection, selection.ProductIDs)

		cart, selection, err = s.store(c, cart, selection)
		if err != nil {
			return err
		}

		view = newCartView(cart, selection)
		return nil
	})
	if err != nil {
		return CartView{}, err
	}

	return view, nil
}

// SelectedItems exposes the current selection to the checkout service.
func (s *service) SelectedItems(c context.Context, shopperUID string) ([]cartapi.CartItem, error) {
	cart, selection, err := s.load(c, shopperUID)
	if err != nil {
		return nil, err
	}

	return cart.SelectedItems(selection), nil
}

func removeProducts(cart Cart, selection Selection, productIDs []string) (Cart, Selection) {
	toRemove := map[string]bool{}
	for _, uid := range productIDs {
		toRemove[uid] = true
	}

	kept := []cartapi.CartItem{}
	for _, item := range cart.Items {
		if !toRemove[item.ProductID] {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	keptSelection := []string{}
	for _, uid := range selection.ProductIDs {
		if !toRemove[uid] {
			keptSelection = append(keptSelection, uid)
		}
	}
	selection.ProductIDs = keptSelection

	return cart, selection
}

func (s *service) load(c context.Context, shopperUID string) (Cart, Selection, error) {
	cart, found, err := s.cartStore.Get(c, shopperUID)
	if err != nil {
		return Cart{}, Selection{}, myerrors.NewInternalError(err)
	}
	if !found {
		cart = Cart{
			ShopperUID: shopperUID,
			CreatedAt:  s.nower.Now(),
			Items:      []cartapi.CartItem{},
		}
	}

	selection, found, err := s.selectionStore.Get(c, shopperUID)
	if err != nil {
		return Cart{}, Selection{}, myerrors.NewInternalError(err)
	}
	if !found {
		selection = Selection{
			ShopperUID: shopperUID,
			ProductIDs: []string{},
		}
	}

	return cart, selection, nil
}

func (s *service) replaceItem(cart Cart, updated cartapi.CartItem) Cart {
	for i, item := range cart.Items {
		if item.ProductID == updated.ProductID {
			cart.Items[i] = updated
		}
	}
	return cart
}

func (s *service) storeCart(c context.Context, cart Cart) (Cart, error) {
	now := s.nower.Now()
	cart.LastModified = &now

	err := s.cartStore.Put(c, cart.ShopperUID, cart)
	if err != nil {
		return Cart{}, myerrors.NewInternalError(err)
	}
	return cart, nil
}

func (s *service) storeSelection(c context.Context, selection Selection, shopperUID string) (Selection, error) {
	selection.ShopperUID = shopperUID

	err := s.selectionStore.Put(c, shopperUID, selection)
	if err != nil {
		return Selection{}, myerrors.NewInternalError(err)
	}
	return selection, nil
}

func (s *service) store(c context.Context, cart Cart, selection Selection) (Cart, Selection, error) {
	cart, err := s.storeCart(c, cart)
	if err != nil {
		return Cart{}, Selection{}, err
	}

	selection, err = s.storeSelection(c, selection, cart.ShopperUID)
	if err != nil {
		return Cart{}, Selection{}, err
	}

	return cart, selection, nil
}
