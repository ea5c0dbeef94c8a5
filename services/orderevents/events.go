package orderevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myevents"
	"github.com/pasarkita/storefront/services/cartapi"
)

const (
	TopicName              = "order"
	orderCreatedName       = TopicName + ".created"
	orderStatusChangedName = TopicName + ".status.changed"
)

type OrderEventService interface {
	Subscribe(c context.Context) error
	OnOrderCreated(c context.Context, topic string, event OrderCreated) error
	OnOrderStatusChanged(c context.Context, topic string, event OrderStatusChanged) error
}

func DispatchEvent(c context.Context, reader io.Reader, service OrderEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case orderCreatedName:
		{
			event := OrderCreated{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnOrderCreated(c, envelope.Topic, event)
		}
	case orderStatusChangedName:
		{
			event := OrderStatusChanged{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnOrderStatusChanged(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("%s", envelope.EventTypeName))
	}
}

// OrderCreated carries the full order snapshot so that downstream services
// (order mirror, cart cleanup, stock overrides) do not need to reach back
// into the checkout store.
type OrderCreated struct {
	OrderUID       string
	OrderNumber    string
	BackendOrderID string
	ShopperUID     string
	SellerID       string
	Items          []cartapi.CartItem
	TotalInCents   int64
	ShippingCost   int64
	ShippingMethod string
	PaymentMethod  string
	CustomerName   string
	Email          string
	Address        cartapi.Address
	BuyerNotes     string
}

func (e OrderCreated) GetEventTypeName() string {
	return orderCreatedName
}

func (e OrderCreated) GetAggregateName() string {
	return e.OrderUID
}

type OrderStatusChanged struct {
	OrderUID  string
	OldStatus string
	NewStatus string
}

func (e OrderStatusChanged) GetEventTypeName() string {
	return orderStatusChangedName
}

func (e OrderStatusChanged) GetAggregateName() string {
	return e.OrderUID
}
