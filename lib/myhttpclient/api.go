package myhttpclient

import "context"

//go:generate mockgen -source=api.go -package myhttpclient -destination httpclient_mock.go HTTPSender
type HTTPSender interface {
	Send(ctx context.Context, method string, url string, body []byte) (int, []byte, error)
	SendWithBasicAuth(ctx context.Context, method string, url string, body []byte, username string, password string) (int, []byte, error)
}

func New() HTTPSender {
	return newJSONHTTPClient()
}
