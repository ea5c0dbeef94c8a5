package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myhttpclient"
)

type ProductStock struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

//go:generate mockgen -source=backend.go -package stock -destination backend_mock.go ProductAPI
type ProductAPI interface {
	GetProductStock(c context.Context, productID string) (ProductStock, error)
}

type productAPIClient struct {
	baseURL    string
	httpClient myhttpclient.HTTPSender
}

func NewProductAPIClient(baseURL string, httpClient myhttpclient.HTTPSender) ProductAPI {
	return &productAPIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c productAPIClient) GetProductStock(ctx context.Context, productID string) (ProductStock, error) {
	status, respBody, err := c.httpClient.Send(ctx, http.MethodGet, fmt.Sprintf("%s/products/%s", c.baseURL, productID), nil)
	if err != nil {
		return ProductStock{}, myerrors.NewUnavailableError(fmt.Errorf("error calling product api: %s", err))
	}
	if status == http.StatusNotFound {
		return ProductStock{}, myerrors.NewNotFoundError(fmt.Errorf("product %s not found", productID))
	}
	if status != http.StatusOK {
		return ProductStock{}, myerrors.NewInternalError(fmt.Errorf("product api returned status %d", status))
	}

	resp := ProductStock{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return ProductStock{}, myerrors.NewInternalError(fmt.Errorf("error parsing product api response: %s", err))
	}

	return resp, nil
}
