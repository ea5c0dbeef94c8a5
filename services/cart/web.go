package cart

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pasarkita/storefront/lib/mycontext"
	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myhttp"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/services/cartapi"
	"github.com/pasarkita/storefront/services/orderevents"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(cartStore mystore.Store[Cart], selectionStore mystore.Store[Selection], nower mytime.Nower, subscriber mypubsub.PubSub) *webService {
	logger := mylog.New("cart")
	return &webService{
		service: newService(cartStore, selectionStore, nower, logger, subscriber),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/cart/{shopperUID}", s.cartPage()).Methods("GET")
	router.HandleFunc("/cart/{shopperUID}", s.clearCartPage()).Methods("DELETE")
	router.HandleFunc("/cart/{shopperUID}/items", s.addItemPage()).Methods("POST")
	router.HandleFunc("/cart/{shopperUID}/items/{productID}", s.removeItemPage()).Methods("DELETE")
	router.HandleFunc("/cart/{shopperUID}/items/{productID}/quantity/{quantity}", s.updateQuantityPage()).Methods("PUT")
	router.HandleFunc("/cart/{shopperUID}/selection/toggle-all", s.toggleSelectAllPage()).Methods("PUT")
	router.HandleFunc("/cart/{shopperUID}/selection/{productID}/toggle", s.toggleSelectItemPage()).Methods("PUT")
	router.HandleFunc("/cart/{shopperUID}/selection", s.removeSelectedItemsPage()).Methods("DELETE")

	// Order events tell us which lines have been purchased
	router.HandleFunc("/api/cart/event", s.handleEventEnvelope()).Methods("POST")

	err := s.service.Subscribe(c)
	if err != nil {
		return err
	}

	return nil
}

// CartService is the read interface that the checkout service uses to
// resolve the shopper's current selection.
func (s *webService) SelectedItems(c context.Context, shopperUID string) ([]cartapi.CartItem, error) {
	return s.service.SelectedItems(c, shopperUID)
}

func (s *webService) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.getCartView(c, mux.Vars(r)["shopperUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) addItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		item, err := cartapi.NewCartItemFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		view, err := s.service.addItem(c, mux.Vars(r)["shopperUID"], item)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) removeItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.removeItem(c, mux.Vars(r)["shopperUID"], mux.Vars(r)["productID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) updateQuantityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		quantity, err := strconv.Atoi(mux.Vars(r)["quantity"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid quantity: %s", err))
			return
		}

		view, err := s.service.updateQuantity(c, mux.Vars(r)["shopperUID"], mux.Vars(r)["productID"], quantity)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) clearCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.clearCart(c, mux.Vars(r)["shopperUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) toggleSelectItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.toggleSelectItem(c, mux.Vars(r)["shopperUID"], mux.Vars(r)["productID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) toggleSelectAllPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.toggleSelectAll(c, mux.Vars(r)["shopperUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
	}
}

func (s *webService) removeSelectedItemsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		view, err := s.service.removeSelectedItems(c, mux.Vars(r)["shopperUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, view)
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
