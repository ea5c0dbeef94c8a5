package address

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pasarkita/storefront/lib/mycontext"
	"github.com/pasarkita/storefront/lib/myerrors"
	"github.com/pasarkita/storefront/lib/myhttp"
	"github.com/pasarkita/storefront/lib/mylog"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/lib/myuuid"
	"github.com/pasarkita/storefront/services/cartapi"

	formcodec "github.com/go-playground/form/v4"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(addressStore mystore.Store[AddressBook], nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("address")
	return &webService{
		service: newService(addressStore, nower, uuider, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/address/{shopperUID}", s.addressBookPage()).Methods("GET")
	router.HandleFunc("/address/{shopperUID}", s.addAddressPage()).Methods("POST")
	router.HandleFunc("/address/{shopperUID}/{addressUID}", s.updateAddressPage()).Methods("PUT")
	router.HandleFunc("/address/{shopperUID}/{addressUID}", s.removeAddressPage()).Methods("DELETE")
	router.HandleFunc("/address/{shopperUID}/{addressUID}/select", s.selectAddressPage()).Methods("PUT")

	return nil
}

type addressForm struct {
	Label   string          `form:"label"`
	Address cartapi.Address `form:"address"`
}

func parseAddressForm(r *http.Request) (addressForm, error) {
	err := r.ParseForm()
	if err != nil {
		return addressForm{}, myerrors.NewInvalidInputError(err)
	}

	form := addressForm{}
	err = formcodec.NewDecoder().Decode(&form, r.Form)
	if err != nil {
		return addressForm{}, myerrors.NewInvalidInputErrorf("error decoding form: %s", err)
	}

	return form, nil
}

func (s *webService) addressBookPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		book, err := s.service.getAddressBook(c, mux.Vars(r)["shopperUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, book)
	}
}

func (s *webService) addAddressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		form, err := parseAddressForm(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		book, err := s.service.addAddress(c, mux.Vars(r)["shopperUID"], form.Label, form.Address)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, book)
	}
}

func (s *webService) updateAddressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		form, err := parseAddressForm(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		book, err := s.service.updateAddress(c, mux.Vars(r)["shopperUID"], mux.Vars(r)["addressUID"], form.Label, form.Address)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, book)
	}
}

func (s *webService) removeAddressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		book, err := s.service.removeAddress(c, mux.Vars(r)["shopperUID"], mux.Vars(r)["addressUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, book)
	}
}

func (s *webService) selectAddressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		book, err := s.service.selectAddress(c, mux.Vars(r)["shopperUID"], mux.Vars(r)["addressUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, book)
	}
}
