package checkout

import (
	"context"
	"fmt"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myhttp"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/services/checkoutevents"
	"github.com/pasarkita/storefront/services/orderevents"
)

func (s *service) CreateTopics(c context.Context) error {
	for _, topic := range []string{checkoutevents.TopicName, orderevents.TopicName} {
		err := s.publisher.CreateTopic(c, topic)
		if err != nil {
			return fmt.Errorf("error creating topic %s: %s", topic, err)
		}
	}

	return nil
}

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, checkoutevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/checkout/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

// OnCheckoutStarted is our own event echoed back at us.
func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	return nil
}

// OnCheckoutCompleted records the final payment outcome on the checkout context.
func (s *service) OnCheckoutCompleted(c context.Context, topic string, event checkoutevents.CheckoutCompleted) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityInfo, "Webhook: checkout %s completed with status %s", event.CheckoutUID, event.CheckoutStatus)

	return s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		checkoutContext, found, err := s.checkoutStore.Get(c, event.CheckoutUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout %s not found", event.CheckoutUID))
		}

		now := s.nower.Now()
		checkoutContext.LastModified = &now
		checkoutContext.CheckoutStatus = event.CheckoutStatus
		checkoutContext.CheckoutStatusDetails = event.CheckoutStatusDetails

		err = s.checkoutStore.Put(c, event.CheckoutUID, checkoutContext)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
}
