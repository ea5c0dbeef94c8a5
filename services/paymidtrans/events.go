package paymidtrans

import (
	"context"
	"fmt"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myhttp"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/checkoutevents"
	"github.com/pasarkita/storefront/services/orderevents"
)

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.CreateTopic(c, orderevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", orderevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, orderevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/midtrans/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", orderevents.TopicName, err)
	}

	return nil
}

// OnOrderCreated seeds a payment context for orders that are to be paid
// through midtrans. Orders with other payment methods are none of our business.
func (s *service) OnOrderCreated(c context.Context, topic string, event orderevents.OrderCreated) error {
	if event.PaymentMethod != cartapi.PaymentMethodMidtrans {
		return nil
	}

	s.logger.Log(c, event.OrderUID, mylog.SeverityInfo, "Webhook: prepare midtrans payment for order %s", event.OrderUID)

	return s.paymentStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		_, found, err := s.paymentStore.Get(c, event.OrderUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			return nil
		}

		return s.paymentStore.Put(c, event.OrderUID, PaymentContext{
			OrderUID:       event.OrderUID,
			ShopperUID:     event.ShopperUID,
			CreatedAt:      s.nower.Now(),
			AmountInCents:  event.TotalInCents,
			ShippingCost:   event.ShippingCost,
			Items:          event.Items,
			CustomerName:   event.CustomerName,
			Email:          event.Email,
			CheckoutStatus: checkoutevents.CheckoutStatusPending,
		})
	})
}

func (s *service) OnOrderStatusChanged(c context.Context, topic string, event orderevents.OrderStatusChanged) error {
	return nil
}
