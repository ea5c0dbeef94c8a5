package orders

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/orderevents"
)

// createOrder assigns the next numeric id (highest existing + 1), snapshots
// the items and persists the order with status pending.
func (s *service) createOrder(c context.Context, order Order) (Order, error) {
	s.logger.Log(c, order.ShopperUID, mylog.SeverityInfo, "Create order for shopper %s with %d items", order.ShopperUID, len(order.Items))

	var created Order
	err := s.orderStore.RunInTransaction(c, func(c context.Context) error {
		existing, err := s.orderStore.List(c)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		// Creation must be idempotent when fed from the event bus
		if order.OrderUID != "" {
			for _, o := range existing {
				if o.OrderUID == order.OrderUID {
					created = o
					return nil
				}
			}
		}

		var highest int64
		for _, o := range existing {
			if o.ID > highest {
				highest = o.ID
			}
		}

		now := s.nower.Now()
		order.ID = highest + 1
		order.Items = append([]cartapi.CartItem{}, order.Items...)
		order.Status = OrderStatusPending
		order.CreatedAt = now
		if order.OrderNumber == "" {
			order.OrderNumber = fmt.Sprintf("ORD-%d", now.UnixMilli())
		}

		err = s.orderStore.Put(c, strconv.FormatInt(order.ID, 10), order)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		created = order
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	return created, nil
}

// listOrders returns the mirror newest-first.
func (s *service) listOrders(c context.Context) ([]Order, error) {
	orders, err := s.orderStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ID > orders[j].ID
	})

	return orders, nil
}

func (s *service) getOrder(c context.Context, orderID int64) (Order, error) {
	order, found, err := s.orderStore.Get(c, strconv.FormatInt(orderID, 10))
	if err != nil {
		return Order{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Order{}, myerrors.NewNotFoundError(fmt.Errorf("order %d not found", orderID))
	}

	return order, nil
}

// updateOrderStatus replaces the status of an order. Delivered and cancelled
// are terminal: once reached, no further transition is allowed.
func (s *service) updateOrderStatus(c context.Context, orderID int64, status OrderStatus) (Order, error) {
	if !status.IsValid() {
		return Order{}, myerrors.NewInvalidInputErrorf("unknown order status %q", status)
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Update status of order %d to %s", orderID, status)

	var updated Order
	var oldStatus OrderStatus
	err := s.orderStore.RunInTransaction(c, func(c context.Context) error {
		order, found, err := s.orderStore.Get(c, strconv.FormatInt(orderID, 10))
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("order %d not found", orderID))
		}

		if order.Status == status {
			updated = order
			oldStatus = order.Status
			return nil
		}
		if order.Status.IsTerminal() {
			return myerrors.NewInvalidInputErrorf("order %d is already %s", orderID, order.Status)
		}

		oldStatus = order.Status
		now := s.nower.Now()
		order.Status = status
		order.LastModified = &now

		err = s.orderStore.Put(c, strconv.FormatInt(orderID, 10), order)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, orderevents.TopicName, orderevents.OrderStatusChanged{
			OrderUID:  order.OrderUID,
			OldStatus: string(oldStatus),
			NewStatus: string(status),
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		updated = order
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	return updated, nil
}

func (s *service) cancelOrder(c context.Context, orderID int64) (Order, error) {
	return s.updateOrderStatus(c, orderID, OrderStatusCancelled)
}
