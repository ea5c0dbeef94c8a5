package paymidtrans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pasarkita/storefront/lib/mycontext"
	"github.com/pasarkita/storefront/lib/myhttp"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mypublisher"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/lib/myvault"
	"github.com/pasarkita/storefront/services/orderevents"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(payer Payer, paymentStore mystore.Store[PaymentContext], vault myvault.VaultReader[myvault.Credentials], publisher mypublisher.Publisher, subscriber mypubsub.PubSub, nower mytime.Nower) *webService {
	logger := mylog.New("paymidtrans")
	return &webService{
		service: newService(payer, paymentStore, vault, publisher, subscriber, nower, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/midtrans/payment/{orderUID}", s.startPaymentPage()).Methods("POST")

	// Midtrans redirects the shopper here after the payment page
	router.HandleFunc("/midtrans/payment/{orderUID}/status/{status}", s.finalizePaymentPage()).Methods("GET")

	// Authoritative status notification called by Midtrans
	router.HandleFunc("/midtrans/payment/webhook/event", s.webhookNotificationPage()).Methods("POST")

	router.HandleFunc("/api/midtrans/event", s.handleEventEnvelope()).Methods("POST")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	err = s.service.Subscribe(c)
	if err != nil {
		return err
	}

	return nil
}

func (s *webService) startPaymentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		returnURL := r.FormValue("returnUrl")
		if returnURL == "" {
			returnURL = myhttp.HostnameWithScheme(r) + "/order"
		}

		resp, err := s.service.startPayment(c, mux.Vars(r)["orderUID"], returnURL)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, resp)
	}
}

func (s *webService) finalizePaymentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		redirectURL, err := s.service.finalizePayment(c, mux.Vars(r)["orderUID"], mux.Vars(r)["status"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

func (s *webService) webhookNotificationPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		notification := WebhookNotification{}
		err := json.NewDecoder(r.Body).Decode(&notification)
		if err != nil {
			errorWriter.WriteError(c, w, 1, fmt.Errorf("error parsing webhook notification: %s", err))
			return
		}

		err = s.service.webhookNotification(c, notification)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, WebhookNotificationResponse{
			Status: "ok",
		})
	}
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := orderevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}
