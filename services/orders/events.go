package orders

import (
	"context"
	"fmt"

	"github.com/pasarkita/storefront/lib/myhttp"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/services/checkoutevents"
	"github.com/pasarkita/storefront/services/orderevents"
)

func (s *service) Subscribe(c context.Context) error {
	hostname := myhttp.GuessHostnameWithScheme()

	for topic, path := range map[string]string{
		orderevents.TopicName:    "/api/order/event",
		checkoutevents.TopicName: "/api/order/checkout-event",
	} {
		err := s.pubsub.CreateTopic(c, topic)
		if err != nil {
			return fmt.Errorf("error creating topic %s: %s", topic, err)
		}

		err = s.pubsub.Subscribe(c, topic, hostname+path)
		if err != nil {
			return fmt.Errorf("error subscribing to topic %s: %s", topic, err)
		}
	}

	return nil
}

// OnOrderCreated mirrors a backend-confirmed order into the local store.
func (s *service) OnOrderCreated(c context.Context, topic string, event orderevents.OrderCreated) error {
	s.logger.Log(c, event.OrderUID, mylog.SeverityInfo, "Webhook: mirror order %s for shopper %s", event.OrderUID, event.ShopperUID)

	_, err := s.createOrder(c, Order{
		OrderUID:       event.OrderUID,
		OrderNumber:    event.OrderNumber,
		BackendOrderID: event.BackendOrderID,
		ShopperUID:     event.ShopperUID,
		SellerID:       event.SellerID,
		Items:          event.Items,
		TotalInCents:   event.TotalInCents,
		Customer: Customer{
			Name:           event.CustomerName,
			Email:          event.Email,
			Address:        event.Address,
			Notes:          event.BuyerNotes,
			ShippingMethod: event.ShippingMethod,
		},
	})

	return err
}

// OnOrderStatusChanged is our own event echoed back at us.
func (s *service) OnOrderStatusChanged(c context.Context, topic string, event orderevents.OrderStatusChanged) error {
	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	return nil
}

// OnCheckoutCompleted moves the mirrored order along based on the payment
// outcome: paid orders go to processing, failed ones are cancelled, a pending
// payment leaves the order untouched.
func (s *service) OnCheckoutCompleted(c context.Context, topic string, event checkoutevents.CheckoutCompleted) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityInfo, "Webhook: checkout %s completed with status %s", event.CheckoutUID, event.CheckoutStatus)

	if event.CheckoutStatus == checkoutevents.CheckoutStatusPending {
		return nil
	}

	order, err := s.findByOrderUID(c, event.CheckoutUID)
	if err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return nil
	}

	status := OrderStatusCancelled
	if event.Success {
		status = OrderStatusProcessing
	}

	_, err = s.updateOrderStatus(c, order.ID, status)
	return err
}

func (s *service) findByOrderUID(c context.Context, orderUID string) (Order, error) {
	orders, err := s.orderStore.List(c)
	if err != nil {
		return Order{}, err
	}

	for _, order := range orders {
		if order.OrderUID == orderUID {
			return order, nil
		}
	}

	return Order{}, fmt.Errorf("no order with uid %s", orderUID)
}
