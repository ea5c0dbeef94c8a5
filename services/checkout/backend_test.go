package checkout

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myhttpclient"
	"github.com/pasarkita/storefront/services/cartapi"
)

func TestOrderAPIClient(t *testing.T) {
	request := OrderRequest{
		SellerID: "seller1",
		Items: []cartapi.CartItem{
			{ProductID: "p1", SellerID: "seller1", Name: "Shirt", Price: 1000, Quantity: 2},
		},
		ShippingCost:  500,
		PaymentMethod: "manual_transfer",
	}

	tests := []struct {
		name           string
		status         int
		body           string
		err            error
		expectedID     string
		expectedStatus int
	}{
		{
			name:       "Order created",
			status:     http.StatusCreated,
			body:       `{"order_id":"backend-1"}`,
			expectedID: "backend-1",
		},
		{
			name:           "Response without order id is a hard failure",
			status:         http.StatusOK,
			body:           `{"message":"ok"}`,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Backend error status",
			status:         http.StatusBadGateway,
			body:           ``,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Backend unreachable",
			err:            assert.AnError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "Malformed response",
			status:         http.StatusOK,
			body:           `not json`,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			sender := myhttpclient.NewMockHTTPSender(ctrl)
			sender.EXPECT().Send(gomock.Any(), http.MethodPost, "http://backend.local/orders", gomock.Any()).
				Return(tc.status, []byte(tc.body), tc.err)

			client := NewOrderAPIClient("http://backend.local", sender)
			resp, err := client.CreateOrder(context.TODO(), request)

			if tc.expectedID != "" {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedID, resp.OrderID)
			} else {
				assert.Error(t, err)
				assert.Equal(t, tc.expectedStatus, myerrors.GetHTTPStatus(err))
			}
		})
	}
}
