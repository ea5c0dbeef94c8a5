package stock

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

	err = s.pubsub.Subscribe(c, orderevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/stock/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", orderevents.TopicName, err)
	}

	return nil
}

// OnOrderCreated decrements the stock of every purchased line.
func (s *service) OnOrderCreated(c context.Context, topic string, event orderevents.OrderCreated) error {
	s.logger.Log(c, event.OrderUID, mylog.SeverityInfo, "Webhook: order %s created -> adjust stock of %d products", event.OrderUID, len(event.Items))

	for _, item := range event.Items {
		err := s.decrement(c, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *service) OnOrderStatusChanged(c context.Context, topic string, event orderevents.OrderStatusChanged) error {
	return nil
}
