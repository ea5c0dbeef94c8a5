package myvault

import (
	"context"

	"github.com/pasarkita/storefront/lib/mystore"
)

const (
	CurrentCredentials = "currentCredentials"
)

// Credentials are the secrets needed to talk to the payment gateway.
type Credentials struct {
	Environment string
	ServerKey   string
	ClientKey   string
}

type VaultReader[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
}

type VaultReadWriter[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
	Put(c context.Context, uid string, value T) error
}

func New[T any](c context.Context) (VaultReadWriter[T], func(), error) {
	return mystore.New[T](c)
}
