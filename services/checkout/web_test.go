package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/pasarkita/storefront/lib/myevents"
	"github.com/pasarkita/storefront/lib/mypublisher"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/lib/myuuid"
	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/checkoutevents"
	"github.com/pasarkita/storefront/services/orderevents"
)

const validForm = `shopperUid=shopper1&sellerId=seller1&customerName=Budi&email=budi%40example.com` +
	`&paymentMethod=manual_transfer&shippingMethod=regular&shippingCost=500` +
	`&address.recipientName=Budi&address.phone=0812&address.street=Jl.%20Merdeka%201&address.city=Jakarta&address.postalCode=10110`

var selectedItems = []cartapi.CartItem{
	{ProductID: "p1", SellerID: "seller1", Name: "Shirt", Price: 1000, Quantity: 2},
	{ProductID: "p2", SellerID: "seller1", Name: "Mug", Price: 2000, Quantity: 1},
}

type fakeCartReader struct {
	items []cartapi.CartItem
	err   error
}

func (f fakeCartReader) SelectedItems(c context.Context, shopperUID string) ([]cartapi.CartItem, error) {
	return f.items, f.err
}

func TestCheckoutService(t *testing.T) {

	t.Run("Start checkout from selection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, orderAPI, nower, uuider, publisher := setup(t, ctrl, fakeCartReader{items: selectedItems})

		// given
		orderAPI.EXPECT().CreateOrder(gomock.Any(), OrderRequest{
			SellerID:      "seller1",
			Items:         selectedItems,
			ShippingAddress: cartapi.Address{
				RecipientName: "Budi",
				Phone:         "0812",
				Street:        "Jl. Merdeka 1",
				City:          "Jakarta",
				PostalCode:    "10110",
			},
			ShippingCost:  500,
			PaymentMethod: "manual_transfer",
		}).Return(OrderResponse{OrderID: "backend-1"}, nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("order-123")
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			CheckoutUID:   "order-123",
			ProviderName:  "manual_transfer",
			AmountInCents: 4500,
			Currency:      "IDR",
			ShopperUID:    "shopper1",
		}).Return(nil)
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := postCheckout(t, router, validForm)

		// then
		assert.Equal(t, 200, response.Code)
		resp := CheckoutResponse{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&resp))
		assert.Equal(t, "order-123", resp.OrderUID)
		assert.Equal(t, "backend-1", resp.BackendOrderID)
		assert.Equal(t, int64(4500), resp.TotalInCents)
		assert.Empty(t, resp.PaymentURL)

		stored, exists, _ := storer.Get(ctx, "order-123")
		assert.True(t, exists)
		assert.Equal(t, "shopper1", stored.ShopperUID)
		assert.Equal(t, "backend-1", stored.BackendOrderID)
		assert.Equal(t, checkoutevents.CheckoutStatusPending, stored.CheckoutStatus)
		assert.True(t, strings.HasPrefix(stored.OrderNumber, "ORD-"))
	})

	t.Run("Start midtrans checkout returns payment url", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, orderAPI, nower, uuider, publisher := setup(t, ctrl, fakeCartReader{items: selectedItems})

		// given
		orderAPI.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(OrderResponse{OrderID: "backend-1"}, nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("order-123")
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := postCheckout(t, router, strings.Replace(validForm, "manual_transfer", "midtrans", 1))

		// then
		assert.Equal(t, 200, response.Code)
		resp := CheckoutResponse{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&resp))
		assert.Equal(t, "http://localhost:8888/midtrans/payment/order-123", resp.PaymentURL)
	})

	t.Run("Buy-now bypasses the cart selection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup: the cart reader would fail if consulted
		_, router, _, orderAPI, nower, uuider, publisher := setup(t, ctrl, fakeCartReader{err: assert.AnError})

		// given
		orderAPI.EXPECT().CreateOrder(gomock.Any(), OrderRequest{
			SellerID: "seller1",
			Items: []cartapi.CartItem{
				{ProductID: "p9", Name: "Lamp", Price: 3000, Quantity: 2},
			},
			ShippingAddress: cartapi.Address{
				RecipientName: "Budi",
				Phone:         "0812",
				Street:        "Jl. Merdeka 1",
				City:          "Jakarta",
				PostalCode:    "10110",
			},
			ShippingCost:  500,
			PaymentMethod: "manual_transfer",
		}).Return(OrderResponse{OrderID: "backend-2"}, nil)
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		uuider.EXPECT().Create().Return("order-456")
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)
		publisher.EXPECT().Publish(gomock.Any(), orderevents.TopicName, gomock.Any()).Return(nil)

		// when
		body := validForm + `&buyNow=true&buyNowItem.productId=p9&buyNowItem.name=Lamp&buyNowItem.price=3000&buyNowItem.quantity=2`
		response := postCheckout(t, router, body)

		// then
		assert.Equal(t, 200, response.Code)
		resp := CheckoutResponse{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&resp))
		assert.Equal(t, int64(6500), resp.TotalInCents)
	})

	t.Run("Checkout with empty selection fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl, fakeCartReader{items: []cartapi.CartItem{}})

		// when
		response := postCheckout(t, router, validForm)

		// then
		assert.Equal(t, 400, response.Code)
	})

	t.Run("Checkout with incomplete address fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl, fakeCartReader{items: selectedItems})

		// when
		response := postCheckout(t, router, `shopperUid=shopper1&paymentMethod=manual_transfer`)

		// then
		assert.Equal(t, 400, response.Code)
	})

	t.Run("Checkout aborts when backend fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, orderAPI, _, _, _ := setup(t, ctrl, fakeCartReader{items: selectedItems})

		// given
		orderAPI.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(OrderResponse{}, assert.AnError)

		// when
		response := postCheckout(t, router, validForm)

		// then: nothing persisted, nothing published
		assert.Equal(t, 500, response.Code)
		contexts, err := storer.List(ctx)
		assert.NoError(t, err)
		assert.Empty(t, contexts)
	})

	t.Run("Get checkout status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _, _, _ := setup(t, ctrl, fakeCartReader{})

		// given
		_ = storer.Put(ctx, "order-123", CheckoutContext{
			OrderUID:       "order-123",
			ShopperUID:     "shopper1",
			CheckoutStatus: checkoutevents.CheckoutStatusPending,
		})

		// when
		request, err := http.NewRequest(http.MethodGet, "/checkout/order-123", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		stored := CheckoutContext{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&stored))
		assert.Equal(t, "shopper1", stored.ShopperUID)
	})

	t.Run("Get unknown checkout status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _, _ := setup(t, ctrl, fakeCartReader{})

		// when
		request, err := http.NewRequest(http.MethodGet, "/checkout/unknown", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 404, response.Code)
	})

	t.Run("Checkout completed event updates context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, nower, _, _ := setup(t, ctrl, fakeCartReader{})

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		_ = storer.Put(ctx, "order-123", CheckoutContext{
			OrderUID:       "order-123",
			ShopperUID:     "shopper1",
			CheckoutStatus: checkoutevents.CheckoutStatusPending,
		})

		// when
		response := pushCheckoutCompleted(t, router, checkoutevents.CheckoutCompleted{
			CheckoutUID:           "order-123",
			ProviderName:          "midtrans",
			PaymentMethod:         "midtrans",
			ShopperUID:            "shopper1",
			CheckoutStatus:        checkoutevents.CheckoutStatusSuccess,
			CheckoutStatusDetails: "settlement",
			Success:               true,
		})

		// then
		assert.Equal(t, 200, response.Code)
		stored, exists, _ := storer.Get(ctx, "order-123")
		assert.True(t, exists)
		assert.Equal(t, checkoutevents.CheckoutStatusSuccess, stored.CheckoutStatus)
		assert.Equal(t, "settlement", stored.CheckoutStatusDetails)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller, cartReader CartReader) (context.Context, *mux.Router, mystore.Store[CheckoutContext], *MockOrderAPI, *mytime.MockNower, *myuuid.MockUUIDer, *mypublisher.MockPublisher) {
	c := context.TODO()
	storer, _, _ := mystore.New[CheckoutContext](c)
	orderAPI := NewMockOrderAPI(ctrl)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	subscriber := mypubsub.NewMockPubSub(ctrl)

	sut := NewService(storer, cartReader, orderAPI, publisher, subscriber, nower, uuider)
	router := mux.NewRouter()

	// These are called by the following call to RegisterEndpoints
	publisher.EXPECT().CreateTopic(c, checkoutevents.TopicName).Return(nil)
	publisher.EXPECT().CreateTopic(c, orderevents.TopicName).Return(nil)
	subscriber.EXPECT().CreateTopic(c, checkoutevents.TopicName).Return(nil)
	subscriber.EXPECT().Subscribe(c, checkoutevents.TopicName, gomock.Any()).Return(nil)

	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, storer, orderAPI, nower, uuider, publisher
}

func postCheckout(t *testing.T, router *mux.Router, body string) *httptest.ResponseRecorder {
	request, err := http.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	assert.NoError(t, err)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Host = "localhost:8888"
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func pushCheckoutCompleted(t *testing.T, router *mux.Router, event checkoutevents.CheckoutCompleted) *httptest.ResponseRecorder {
	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	envelope, err := json.Marshal(myevents.EventEnvelope{
		Topic:         checkoutevents.TopicName,
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

	request, err := http.NewRequest(http.MethodPost, "/api/checkout/event", strings.NewReader(string(body)))
	assert.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}
