package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/pasarkita/storefront/lib/myevents"
	"github.com/pasarkita/storefront/lib/mypublisher"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/checkoutevents"
	"github.com/pasarkita/storefront/services/orderevents"
)

var orderItems = []cartapi.CartItem{
	{ProductID: "p1", SellerID: "seller1", Name: "Shirt", Price: 1000, Quantity: 2},
}

func TestOrderService(t *testing.T) {

	t.Run("Create orders with increasing ids", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, nower, _ := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		first := postOrder(t, router, Order{ShopperUID: "shopper1", Items: orderItems, TotalInCents: 2000})
		second := postOrder(t, router, Order{ShopperUID: "shopper1", Items: orderItems, TotalInCents: 2000})

		// then
		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
		assert.Equal(t, OrderStatusPending, first.Status)
		assert.NotEmpty(t, first.OrderNumber)
	})

	t.Run("List orders newest first", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, nower, _ := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		postOrder(t, router, Order{ShopperUID: "shopper1", Items: orderItems})
		postOrder(t, router, Order{ShopperUID: "shopper2", Items: orderItems})

		// when
		request, err := http.NewRequest(http.MethodGet, "/order", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		orders := []Order{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&orders))
		assert.Len(t, orders, 2)
		assert.Equal(t, int64(2), orders[0].ID)
		assert.Equal(t, int64(1), orders[1].ID)
	})

	t.Run("Get order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, nower, _ := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		created := postOrder(t, router, Order{ShopperUID: "shopper1", Items: orderItems, TotalInCents: 2000})

		// when
		request, err := http.NewRequest(http.MethodGet, "/order/1", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		order := Order{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&order))
		assert.Equal(t, created.ID, order.ID)
		assert.Equal(t, orderItems, order.Items)
	})

	t.Run("Get order not exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _ := setup(t, ctrl)

		// when
		request, err := http.NewRequest(http.MethodGet, "/order/42", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 404, response.Code)
	})

	t.Run("Update order status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, nower, publisher := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		postOrder(t, router, Order{OrderUID: "uid-1", ShopperUID: "shopper1", Items: orderItems})
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.OrderStatusChanged{
			OrderUID:  "uid-1",
			OldStatus: "pending",
			NewStatus: "processing",
		}).Return(nil)

		// when
		response := putStatus(t, router, "/order/1/status/processing")

		// then
		assert.Equal(t, 200, response.Code)
		order := Order{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&order))
		assert.Equal(t, OrderStatusProcessing, order.Status)
	})

	t.Run("Update order status to unknown value fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, nower, _ := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		postOrder(t, router, Order{ShopperUID: "shopper1", Items: orderItems})

		// when
		response := putStatus(t, router, "/order/1/status/lost")

		// then
		assert.Equal(t, 400, response.Code)
	})

	t.Run("Cancelled order is terminal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, nower, publisher := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		postOrder(t, router, Order{OrderUID: "uid-1", ShopperUID: "shopper1", Items: orderItems})
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.OrderStatusChanged{
			OrderUID:  "uid-1",
			OldStatus: "pending",
			NewStatus: "cancelled",
		}).Return(nil)

		// when
		response := putStatus(t, router, "/order/1/cancel")
		assert.Equal(t, 200, response.Code)

		// and when moving it again
		response = putStatus(t, router, "/order/1/status/processing")

		// then
		assert.Equal(t, 400, response.Code)
	})

	t.Run("Order-created event mirrors the order once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, nower, _ := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		event := orderevents.OrderCreated{
			OrderUID:       "uid-1",
			OrderNumber:    "ORD-1694000000000",
			BackendOrderID: "backend-1",
			ShopperUID:     "shopper1",
			SellerID:       "seller1",
			Items:          orderItems,
			TotalInCents:   2500,
			ShippingCost:   500,
			CustomerName:   "Budi",
		}

		// when delivered twice
		response := pushEvent(t, router, "/api/order/event", orderevents.TopicName, event)
		assert.Equal(t, 200, response.Code)
		response = pushEvent(t, router, "/api/order/event", orderevents.TopicName, event)
		assert.Equal(t, 200, response.Code)

		// then only one mirror exists
		orders, err := storer.List(ctx)
		assert.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Equal(t, "ORD-1694000000000", orders[0].OrderNumber)
		assert.Equal(t, "Budi", orders[0].Customer.Name)
	})

	t.Run("Successful payment moves order to processing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, nower, publisher := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		postOrder(t, router, Order{OrderUID: "uid-1", ShopperUID: "shopper1", Items: orderItems})
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.OrderStatusChanged{
			OrderUID:  "uid-1",
			OldStatus: "pending",
			NewStatus: "processing",
		}).Return(nil)

		// when
		response := pushEvent(t, router, "/api/order/checkout-event", checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			CheckoutUID:    "uid-1",
			CheckoutStatus: checkoutevents.CheckoutStatusSuccess,
			Success:        true,
		})

		// then
		assert.Equal(t, 200, response.Code)
		order := getOrder(t, router, "/order/1")
		assert.Equal(t, OrderStatusProcessing, order.Status)
	})

	t.Run("Failed payment cancels the order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, nower, publisher := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		postOrder(t, router, Order{OrderUID: "uid-1", ShopperUID: "shopper1", Items: orderItems})
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, orderevents.OrderStatusChanged{
			OrderUID:  "uid-1",
			OldStatus: "pending",
			NewStatus: "cancelled",
		}).Return(nil)

		// when
		response := pushEvent(t, router, "/api/order/checkout-event", checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			CheckoutUID:    "uid-1",
			CheckoutStatus: checkoutevents.CheckoutStatusExpired,
			Success:        false,
		})

		// then
		assert.Equal(t, 200, response.Code)
		order := getOrder(t, router, "/order/1")
		assert.Equal(t, OrderStatusCancelled, order.Status)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[Order], *mytime.MockNower, *mypublisher.MockPublisher) {
	c := context.TODO()
	storer, _, _ := mystore.New[Order](c)
	nower := mytime.NewMockNower(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	subscriber := mypubsub.NewMockPubSub(ctrl)

	sut := NewService(storer, publisher, subscriber, nower)
	router := mux.NewRouter()

	// These are called by the following call to RegisterEndpoints
	subscriber.EXPECT().CreateTopic(c, gomock.Any()).Return(nil).Times(2)
	subscriber.EXPECT().Subscribe(c, gomock.Any(), gomock.Any()).Return(nil).Times(2)

	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, storer, nower, publisher
}

func postOrder(t *testing.T, router *mux.Router, order Order) Order {
	body, err := json.Marshal(order)
	assert.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, "/order", bytes.NewReader(body))
	assert.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	assert.Equal(t, 200, response.Code)

	created := Order{}
	assert.NoError(t, json.NewDecoder(response.Body).Decode(&created))
	return created
}

func getOrder(t *testing.T, router *mux.Router, path string) Order {
	request, err := http.NewRequest(http.MethodGet, path, nil)
	assert.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	assert.Equal(t, 200, response.Code)

	order := Order{}
	assert.NoError(t, json.NewDecoder(response.Body).Decode(&order))
	return order
}

func putStatus(t *testing.T, router *mux.Router, path string) *httptest.ResponseRecorder {
	request, err := http.NewRequest(http.MethodPut, path, nil)
	assert.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func pushEvent(t *testing.T, router *mux.Router, path string, topic string, event myevents.Event) *httptest.ResponseRecorder {
	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	envelope, err := json.Marshal(myevents.EventEnvelope{
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	})
	assert.NoError(t, err)

	body, err := json.Marshal(myevents.PushRequest{
		Message: myevents.PushMessage{
			Data: envelope,
		},
	})
	assert.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	assert.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}
