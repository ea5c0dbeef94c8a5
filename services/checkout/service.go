package checkout

import (
	"context"
	"fmt"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mypublisher"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/lib/myuuid"
	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/checkoutevents"
	"github.com/pasarkita/storefront/services/orderevents"
)

type service struct {
	checkoutStore mystore.Store[CheckoutContext]
	cartReader    CartReader
	orderAPI      OrderAPI
	publisher     mypublisher.Publisher
	pubsub        mypubsub.PubSub
	nower         mytime.Nower
	uuider        myuuid.UUIDer
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(checkoutStore mystore.Store[CheckoutContext], cartReader CartReader, orderAPI OrderAPI, publisher mypublisher.Publisher, pubsub mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		checkoutStore: checkoutStore,
		cartReader:    cartReader,
		orderAPI:      orderAPI,
		publisher:     publisher,
		pubsub:        pubsub,
		nower:         nower,
		uuider:        uuider,
		logger:        logger,
	}
}

// startCheckout submits the shopper's selection (or a buy-now single line) to
// the external order API. The backend is the single source of truth: only
// after it confirmed the order do we persist the checkout context and emit
// the order-created event that feeds the local mirror.
func (s *service) startCheckout(c context.Context, hostname string, form cartapi.CheckoutForm) (CheckoutResponse, error) {
	err := form.Validate()
	if err != nil {
		return CheckoutResponse{}, err
	}

	items, err := s.resolveItems(c, form)
	if err != nil {
		return CheckoutResponse{}, err
	}

	var itemTotal int64
	for _, item := range items {
		itemTotal += item.TotalPrice()
	}
	total := itemTotal + form.ShippingCost

	s.logger.Log(c, form.ShopperUID, mylog.SeverityInfo, "Start checkout for shopper %s: %d items, total %d", form.ShopperUID, len(items), total)

	backendResp, err := s.orderAPI.CreateOrder(c, OrderRequest{
		SellerID:        form.SellerID,
		Items:           items,
		ShippingAddress: form.Address,
		ShippingCost:    form.ShippingCost,
		BuyerNotes:      form.BuyerNotes,
		PaymentMethod:   form.PaymentMethod,
	})
	if err != nil {
		return CheckoutResponse{}, fmt.Errorf("error creating order on backend: %w", err)
	}

	now := s.nower.Now()
	checkoutContext := CheckoutContext{
		OrderUID:       s.uuider.Create(),
		ShopperUID:     form.ShopperUID,
		SellerID:       form.SellerID,
		CreatedAt:      now,
		OrderNumber:    fmt.Sprintf("ORD-%d", now.UnixMilli()),
		BackendOrderID: backendResp.OrderID,
		PaymentMethod:  form.PaymentMethod,
		TotalInCents:   total,
		CheckoutStatus: checkoutevents.CheckoutStatusPending,
	}

	err = s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		err := s.checkoutStore.Put(c, checkoutContext.OrderUID, checkoutContext)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			CheckoutUID:   checkoutContext.OrderUID,
			ProviderName:  form.PaymentMethod,
			AmountInCents: total,
			Currency:      "IDR",
			ShopperUID:    form.ShopperUID,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, orderevents.TopicName, orderevents.OrderCreated{
			OrderUID:       checkoutContext.OrderUID,
			OrderNumber:    checkoutContext.OrderNumber,
			BackendOrderID: backendResp.OrderID,
			ShopperUID:     form.ShopperUID,
			SellerID:       form.SellerID,
			Items:          items,
			TotalInCents:   total,
			ShippingCost:   form.ShippingCost,
			ShippingMethod: form.ShippingMethod,
			PaymentMethod:  form.PaymentMethod,
			CustomerName:   form.CustomerName,
			Email:          form.Email,
			Address:        form.Address,
			BuyerNotes:     form.BuyerNotes,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return CheckoutResponse{}, err
	}

	resp := CheckoutResponse{
		OrderUID:       checkoutContext.OrderUID,
		OrderNumber:    checkoutContext.OrderNumber,
		BackendOrderID: backendResp.OrderID,
		TotalInCents:   total,
		PaymentMethod:  form.PaymentMethod,
	}
	if form.PaymentMethod == cartapi.PaymentMethodMidtrans {
		resp.PaymentURL = fmt.Sprintf("%s/midtrans/payment/%s", hostname, checkoutContext.OrderUID)
	}

	return resp, nil
}

func (s *service) resolveItems(c context.Context, form cartapi.CheckoutForm) ([]cartapi.CartItem, error) {
	if form.BuyNow {
		return []cartapi.CartItem{form.BuyNowItem}, nil
	}

	items, err := s.cartReader.SelectedItems(c, form.ShopperUID)
	if err != nil {
		return nil, fmt.Errorf("error reading cart selection: %w", err)
	}
	if len(items) == 0 {
		return nil, myerrors.NewInvalidInputErrorf("no items selected for checkout")
	}

	return items, nil
}

func (s *service) getCheckoutContext(c context.Context, orderUID string) (CheckoutContext, error) {
	checkoutContext, found, err := s.checkoutStore.Get(c, orderUID)
	if err != nil {
		return CheckoutContext{}, myerrors.NewInternalError(err)
	}
	if !found {
		return CheckoutContext{}, myerrors.NewNotFoundError(fmt.Errorf("checkout %s not found", orderUID))
	}

	return checkoutContext, nil
}
