package stock

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
)

// StockOverride is a locally adjusted stock level for a product: purchases
// decrement it without a backend round-trip.
type StockOverride struct {
	ProductID    string
	Stock        int
	LastModified time.Time
}

type service struct {
	stockStore mystore.Store[StockOverride]
	productAPI ProductAPI
	group      singleflight.Group
	pubsub     mypubsub.PubSub
	nower      mytime.Nower
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(stockStore mystore.Store[StockOverride], productAPI ProductAPI, pubsub mypubsub.PubSub, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		stockStore: stockStore,
		productAPI: productAPI,
		pubsub:     pubsub,
		nower:      nower,
		logger:     logger,
	}
}

// getStock returns the local override when one exists, otherwise falls
// through to the backend. Concurrent backend reads for the same product are
// collapsed into one.
func (s *service) getStock(c context.Context, productID string) (ProductStock, error) {
	override, found, err := s.stockStore.Get(c, productID)
	if err != nil {
		return ProductStock{}, myerrors.NewInternalError(err)
	}
	if found {
		return ProductStock{ProductID: productID, Stock: override.Stock}, nil
	}

	result, err, _ := s.group.Do(productID, func() (interface{}, error) {
		return s.productAPI.GetProductStock(c, productID)
	})
	if err != nil {
		return ProductStock{}, err
	}

	return result.(ProductStock), nil
}

func (s *service) setStock(c context.Context, productID string, level int) (StockOverride, error) {
	if level < 0 {
		return StockOverride{}, myerrors.NewInvalidInputErrorf("negative stock level %d", level)
	}

	s.logger.Log(c, productID, mylog.SeverityInfo, "Override stock of product %s to %d", productID, level)

	override := StockOverride{
		ProductID:    productID,
		Stock:        level,
		LastModified: s.nower.Now(),
	}
	err := s.stockStore.Put(c, productID, override)
	if err != nil {
		return StockOverride{}, myerrors.NewInternalError(err)
	}

	return override, nil
}

// decrement lowers the level by the purchased quantity, never below zero.
func (s *service) decrement(c context.Context, productID string, quantity int) error {
	return s.stockStore.RunInTransaction(c, func(c context.Context) error {
		current, found, err := s.stockStore.Get(c, productID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			productStock, err := s.getStock(c, productID)
			if err != nil {
				return fmt.Errorf("error fetching stock of product %s: %w", productID, err)
			}
			current = StockOverride{
				ProductID: productID,
				Stock:     productStock.Stock,
			}
		}

		current.Stock -= quantity
		if current.Stock < 0 {
			current.Stock = 0
		}
		current.LastModified = s.nower.Now()

		return s.stockStore.Put(c, productID, current)
	})
}
