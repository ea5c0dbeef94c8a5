package orders

import (
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mypublisher"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
)

type service struct {
	orderStore mystore.Store[Order]
	publisher  mypublisher.Publisher
	pubsub     mypubsub.PubSub
	nower      mytime.Nower
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(orderStore mystore.Store[Order], publisher mypublisher.Publisher, pubsub mypubsub.PubSub, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		orderStore: orderStore,
		publisher:  publisher,
		pubsub:     pubsub,
		nower:      nower,
		logger:     logger,
	}
}
