package paymidtrans

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mypublisher"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/lib/myvault"
	"github.com/pasarkita/storefront/services/checkoutevents"
)

type service struct {
	payer        Payer
	paymentStore mystore.Store[PaymentContext]
	vault        myvault.VaultReader[myvault.Credentials]
	publisher    mypublisher.Publisher
	pubsub       mypubsub.PubSub
	nower        mytime.Nower
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(payer Payer, paymentStore mystore.Store[PaymentContext], vault myvault.VaultReader[myvault.Credentials], publisher mypublisher.Publisher, pubsub mypubsub.PubSub, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		payer:        payer,
		paymentStore: paymentStore,
		vault:        vault,
		publisher:    publisher,
		pubsub:       pubsub,
		nower:        nower,
		logger:       logger,
	}
}

// startPayment creates a Snap transaction for an order that checkout handed
// over to us. The token lets the storefront open the payment widget.
func (s *service) startPayment(c context.Context, orderUID string, returnURL string) (StartPaymentResponse, error) {
	s.logger.Log(c, orderUID, mylog.SeverityInfo, "Start midtrans payment for order %s", orderUID)

	credentials, found, err := s.vault.Get(c, myvault.CurrentCredentials)
	if err != nil || !found {
		return StartPaymentResponse{}, myerrors.NewInternalError(fmt.Errorf("no midtrans credentials available"))
	}
	s.payer.UseServerKey(credentials.ServerKey)

	paymentContext, found, err := s.paymentStore.Get(c, orderUID)
	if err != nil {
		return StartPaymentResponse{}, myerrors.NewInternalError(err)
	}
	if !found {
		return StartPaymentResponse{}, myerrors.NewNotFoundError(fmt.Errorf("payment for order %s not found", orderUID))
	}

	snapResp, err := s.payer.CreateTransaction(c, composeSnapRequest(paymentContext))
	if err != nil {
		return StartPaymentResponse{}, err
	}

	err = s.paymentStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		now := s.nower.Now()
		paymentContext.SnapToken = snapResp.Token
		paymentContext.RedirectURL = snapResp.RedirectURL
		paymentContext.OriginalReturnURL = returnURL
		paymentContext.LastModified = &now

		return s.paymentStore.Put(c, orderUID, paymentContext)
	})
	if err != nil {
		return StartPaymentResponse{}, myerrors.NewInternalError(err)
	}

	return StartPaymentResponse{
		OrderUID:    orderUID,
		Token:       snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
		ClientKey:   credentials.ClientKey,
	}, nil
}

func composeSnapRequest(paymentContext PaymentContext) SnapRequest {
	items := []ItemDetail{}
	for _, item := range paymentContext.Items {
		items = append(items, ItemDetail{
			ID:       item.ProductID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	// Snap requires the item details to add up to the gross amount
	if paymentContext.ShippingCost > 0 {
		items = append(items, ItemDetail{
			ID:       "shipping",
			Name:     "Shipping",
			Price:    paymentContext.ShippingCost,
			Quantity: 1,
		})
	}

	return SnapRequest{
		TransactionDetails: TransactionDetails{
			OrderID:     paymentContext.OrderUID,
			GrossAmount: paymentContext.AmountInCents,
		},
		ItemDetails: items,
		CustomerDetails: &CustomerDetails{
			FirstName: paymentContext.CustomerName,
			Email:     paymentContext.Email,
		},
	}
}

// finalizePayment handles the shopper returning from the payment page and
// sends them back to the storefront with the status attached.
func (s *service) finalizePayment(c context.Context, orderUID string, status string) (string, error) {
	s.logger.Log(c, orderUID, mylog.SeverityInfo, "Redirect: payment for order %s -> %s", orderUID, status)

	adjustedReturnURL := ""
	err := s.paymentStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		paymentContext, found, err := s.paymentStore.Get(c, orderUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("payment for order %s not found", orderUID))
		}

		now := s.nower.Now()
		paymentContext.LastModified = &now
		if paymentContext.CheckoutStatus == checkoutevents.CheckoutStatusUndefined ||
			paymentContext.CheckoutStatus == checkoutevents.CheckoutStatusPending {
			// The webhook is authoritative, the redirect status only fills the gap
			paymentContext.CheckoutStatusDetails = "redirect:" + status
		}

		err = s.paymentStore.Put(c, orderUID, paymentContext)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		adjustedReturnURL, err = addStatusQueryParam(paymentContext.OriginalReturnURL, status)
		return err
	})
	if err != nil {
		return "", err
	}

	return adjustedReturnURL, nil
}

func addStatusQueryParam(orgURL string, status string) (string, error) {
	u, err := url.Parse(orgURL)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error parsing return url %s: %s", orgURL, err))
	}
	params := u.Query()
	params.Set("status", status)
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// webhookNotification processes the authoritative status report and fans the
// outcome out to the rest of the system.
func (s *service) webhookNotification(c context.Context, notification WebhookNotification) error {
	s.logger.Log(c, notification.OrderID, mylog.SeverityInfo, "Webhook: transaction status %s for order %s", notification.TransactionStatus, notification.OrderID)

	eventStatus := classifyTransactionStatus(notification.TransactionStatus, notification.FraudStatus)

	return s.paymentStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		paymentContext, found, err := s.paymentStore.Get(c, notification.OrderID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("payment for order %s not found", notification.OrderID))
		}

		now := s.nower.Now()
		paymentContext.LastModified = &now
		paymentContext.PaymentMethod = notification.PaymentType
		paymentContext.CheckoutStatus = eventStatus
		paymentContext.CheckoutStatusDetails = notification.TransactionStatus

		err = s.paymentStore.Put(c, notification.OrderID, paymentContext)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			CheckoutUID:           paymentContext.OrderUID,
			ProviderName:          "midtrans",
			PaymentMethod:         notification.PaymentType,
			ShopperUID:            paymentContext.ShopperUID,
			CheckoutStatus:        eventStatus,
			CheckoutStatusDetails: notification.TransactionStatus,
			Success:               eventStatus == checkoutevents.CheckoutStatusSuccess,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
}

func classifyTransactionStatus(transactionStatus string, fraudStatus string) checkoutevents.CheckoutStatus {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return checkoutevents.CheckoutStatusFraud
		}
		return checkoutevents.CheckoutStatusSuccess
	case "settlement":
		return checkoutevents.CheckoutStatusSuccess
	case "pending":
		return checkoutevents.CheckoutStatusPending
	case "deny":
		return checkoutevents.CheckoutStatusFailed
	case "cancel":
		return checkoutevents.CheckoutStatusCancelled
	case "expire":
		return checkoutevents.CheckoutStatusExpired
	default:
		return checkoutevents.CheckoutStatusOther
	}
}
