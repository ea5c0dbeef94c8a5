package cart

import (
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
)

type service struct {
	cartStore      mystore.Store[Cart]
	selectionStore mystore.Store[Selection]
	pubsub         mypubsub.PubSub
	nower          mytime.Nower
	logger         mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(cartStore mystore.Store[Cart], selectionStore mystore.Store[Selection], nower mytime.Nower, logger mylog.Logger, pubsub mypubsub.PubSub) *service {
	return &service{
		cartStore:      cartStore,
		selectionStore: selectionStore,
		pubsub:         pubsub,
		nower:          nower,
		logger:         logger,
	}
}
