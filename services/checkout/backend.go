package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myhttpclient"
	"github.com/pasarkita/storefront/services/cartapi"
)

// OrderRequest is the shape the external order API expects.
type OrderRequest struct {
	SellerID        string             `json:"seller_id"`
	Items           []cartapi.CartItem `json:"items"`
	ShippingAddress cartapi.Address    `json:"shipping_address"`
	ShippingCost    int64              `json:"shipping_cost"`
	BuyerNotes      string             `json:"buyer_notes"`
	PaymentMethod   string             `json:"payment_method"`
}

type OrderResponse struct {
	OrderID string `json:"order_id"`
}

//go:generate mockgen -source=backend.go -package checkout -destination backend_mock.go OrderAPI
type OrderAPI interface {
	CreateOrder(c context.Context, req OrderRequest) (OrderResponse, error)
}

type orderAPIClient struct {
	baseURL    string
	httpClient myhttpclient.HTTPSender
}

func NewOrderAPIClient(baseURL string, httpClient myhttpclient.HTTPSender) OrderAPI {
	return &orderAPIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c orderAPIClient) CreateOrder(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return OrderResponse{}, myerrors.NewInternalError(fmt.Errorf("error marshalling order request: %s", err))
	}

	status, respBody, err := c.httpClient.Send(ctx, http.MethodPost, c.baseURL+"/orders", body)
	if err != nil {
		return OrderResponse{}, myerrors.NewUnavailableError(fmt.Errorf("error calling order api: %s", err))
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return OrderResponse{}, myerrors.NewInternalError(fmt.Errorf("order api returned status %d", status))
	}

	resp := OrderResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return OrderResponse{}, myerrors.NewInternalError(fmt.Errorf("error parsing order api response: %s", err))
	}

	// An order that the backend did not assign an id to does not exist
	if resp.OrderID == "" {
		return OrderResponse{}, myerrors.NewInternalError(fmt.Errorf("order api response without order_id"))
	}

	return resp, nil
}
