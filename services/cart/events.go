package cart

import (
	"context"
	"fmt"

	"github.com/pasarkita/storefront/lib/myhttp"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/services/orderevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.CreateTopic(c, orderevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", orderevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, orderevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/cart/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", orderevents.TopicName, err)
	}

	return nil
}

// OnOrderCreated removes the purchased lines from the shopper's cart. Must be
// idempotent: the event can be delivered more than once.
func (s *service) OnOrderCreated(c context.Context, topic string, event orderevents.OrderCreated) error {
	s.logger.Log(c, event.ShopperUID, mylog.SeverityInfo, "Webhook: order %s created -> remove purchased lines from cart of shopper %s", event.OrderUID, event.ShopperUID)

	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, selection, err := s.load(c, event.ShopperUID)
		if err != nil {
			return err
		}

		productIDs := []string{}
		for _, item := range event.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		cart, selection = removeProducts(cart, selection, productIDs)

		_, _, err = s.store(c, cart, selection)
		return err
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *service) OnOrderStatusChanged(c context.Context, topic string, event orderevents.OrderStatusChanged) error {
	return nil
}
