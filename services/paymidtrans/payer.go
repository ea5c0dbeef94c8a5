package paymidtrans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myhttpclient"
)

// SnapRequest is the payload of the Snap create-transaction call:
// POST {host}/snap/v1/transactions with the server key as basic-auth user.
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	ItemDetails        []ItemDetail       `json:"item_details,omitempty"`
	CustomerDetails    *CustomerDetails   `json:"customer_details,omitempty"`
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

//go:generate mockgen -source=payer.go -package paymidtrans -destination payer_mock.go Payer
type Payer interface {
	UseServerKey(serverKey string)
	CreateTransaction(c context.Context, request SnapRequest) (SnapResponse, error)
}

type snapPayer struct {
	baseURL    string
	serverKey  string
	httpClient myhttpclient.HTTPSender
}

func NewPayer(environment string, httpClient myhttpclient.HTTPSender) Payer {
	baseURL := "https://app.sandbox.midtrans.com"
	if environment == "production" {
		baseURL = "https://app.midtrans.com"
	}

	return &snapPayer{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (p *snapPayer) UseServerKey(serverKey string) {
	p.serverKey = serverKey
}

func (p *snapPayer) CreateTransaction(c context.Context, request SnapRequest) (SnapResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return SnapResponse{}, myerrors.NewInternalError(fmt.Errorf("error marshalling snap request: %s", err))
	}

	status, respBody, err := p.httpClient.SendWithBasicAuth(c, http.MethodPost, p.baseURL+"/snap/v1/transactions", body, p.serverKey, "")
	if err != nil {
		return SnapResponse{}, myerrors.NewUnavailableError(fmt.Errorf("error calling snap api: %s", err))
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return SnapResponse{}, myerrors.NewInternalError(fmt.Errorf("snap api returned status %d: %s", status, respBody))
	}

	resp := SnapResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return SnapResponse{}, myerrors.NewInternalError(fmt.Errorf("error parsing snap response: %s", err))
	}
	if resp.Token == "" {
		return SnapResponse{}, myerrors.NewInternalError(fmt.Errorf("snap response without token"))
	}

	return resp, nil
}
