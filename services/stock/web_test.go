package stock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/pasarkita/storefront/lib/myevents"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/orderevents"
)

func TestStockService(t *testing.T) {

	t.Run("Get stock with override", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _ := setup(t, ctrl)

		// given
		_ = storer.Put(ctx, "p1", StockOverride{ProductID: "p1", Stock: 7})

		// when
		response := getStock(t, router, "p1")

		// then
		assert.Equal(t, 200, response.Code)
		stock := ProductStock{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&stock))
		assert.Equal(t, 7, stock.Stock)
	})

	t.Run("Get stock without override falls through to backend", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, productAPI, _ := setup(t, ctrl)

		// given
		productAPI.EXPECT().GetProductStock(gomock.Any(), "p1").Return(ProductStock{ProductID: "p1", Stock: 12}, nil)

		// when
		response := getStock(t, router, "p1")

		// then
		assert.Equal(t, 200, response.Code)
		stock := ProductStock{}
		assert.NoError(t, json.NewDecoder(response.Body).Decode(&stock))
		assert.Equal(t, 12, stock.Stock)
	})

	t.Run("Concurrent reads hit the backend once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, productAPI, _ := setup(t, ctrl)

		// given: a slow backend that only tolerates a single call
		started := make(chan struct{})
		release := make(chan struct{})
		productAPI.EXPECT().GetProductStock(gomock.Any(), "p1").
			DoAndReturn(func(c context.Context, productID string) (ProductStock, error) {
				close(started)
				<-release
				return ProductStock{ProductID: "p1", Stock: 12}, nil
			})

		// when: the second read joins the in-flight backend call
		var wg sync.WaitGroup
		responses := make([]*httptest.ResponseRecorder, 2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			responses[0] = getStock(t, router, "p1")
		}()
		<-started
		wg.Add(1)
		go func() {
			defer wg.Done()
			responses[1] = getStock(t, router, "p1")
		}()
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		// then
		for _, response := range responses {
			assert.Equal(t, 200, response.Code)
			stock := ProductStock{}
			assert.NoError(t, json.NewDecoder(response.Body).Decode(&stock))
			assert.Equal(t, 12, stock.Stock)
		}
	})

	t.Run("Set stock override", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, nower := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		request, err := http.NewRequest(http.MethodPut, "/stock/p1/5", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		stored, exists, _ := storer.Get(ctx, "p1")
		assert.True(t, exists)
		assert.Equal(t, 5, stored.Stock)
	})

	t.Run("Set negative stock fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _ := setup(t, ctrl)

		// when
		request, err := http.NewRequest(http.MethodPut, "/stock/p1/-2", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 400, response.Code)
	})

	t.Run("Order event decrements stock with floor zero", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, productAPI, nower := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		_ = storer.Put(ctx, "p1", StockOverride{ProductID: "p1", Stock: 5})
		productAPI.EXPECT().GetProductStock(gomock.Any(), "p2").Return(ProductStock{ProductID: "p2", Stock: 1}, nil)

		// when
		response := pushOrderCreated(t, router, orderevents.OrderCreated{
			OrderUID: "order-1",
			Items: []cartapi.CartItem{
				{ProductID: "p1", Quantity: 2},
				{ProductID: "p2", Quantity: 4},
			},
		})

		// then
		assert.Equal(t, 200, response.Code)

		p1, _, _ := storer.Get(ctx, "p1")
		assert.Equal(t, 3, p1.Stock)

		p2, _, _ := storer.Get(ctx, "p2")
		assert.Equal(t, 0, p2.Stock)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[StockOverride], *MockProductAPI, *mytime.MockNower) {
	c := context.TODO()
	storer, _, _ := mystore.New[StockOverride](c)
	productAPI := NewMockProductAPI(ctrl)
	nower := mytime.NewMockNower(ctrl)
	subscriber := mypubsub.NewMockPubSub(ctrl)

	sut := NewService(storer, productAPI, subscriber, nower)
	router := mux.NewRouter()

	// These are called by the following call to RegisterEndpoints
	subscriber.EXPECT().CreateTopic(c, orderevents.TopicName).Return(nil)
	subscriber.EXPECT().Subscribe(c, orderevents.TopicName, gomock.Any()).Return(nil)

	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, storer, productAPI, nower
}

func getStock(t *testing.T, router *mux.Router, productID string) *httptest.ResponseRecorder {
	request, err := http.NewRequest(http.MethodGet, "/stock/"+productID, nil)
	assert.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func pushOrderCreated(t *testing.T, router *mux.Router, event orderevents.OrderCreated) *httptest.ResponseRecorder {
	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	envelope, err := json.Marshal(myevents.EventEnvelope{
		Topic:         orderevents.TopicName,
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

	request, err := http.NewRequest(http.MethodPost, "/api/stock/event", strings.NewReader(string(body)))
	assert.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}
