package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/pasarkita/storefront/lib/myhttpclient"
	"github.com/pasarkita/storefront/lib/mypublisher"
	"github.com/pasarkita/storefront/lib/mypubsub"
	"github.com/pasarkita/storefront/lib/myqueue"
	"github.com/pasarkita/storefront/lib/mystore"
	"github.com/pasarkita/storefront/lib/mytime"
	"github.com/pasarkita/storefront/lib/myuuid"
	"github.com/pasarkita/storefront/lib/myvault"
	"github.com/pasarkita/storefront/services/address"
	"github.com/pasarkita/storefront/services/cart"
	"github.com/pasarkita/storefront/services/checkout"
	"github.com/pasarkita/storefront/services/orders"
	"github.com/pasarkita/storefront/services/paymidtrans"
	"github.com/pasarkita/storefront/services/stock"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}
	httpClient := myhttpclient.New()

	vault, vaultCleanup, err := myvault.New[myvault.Credentials](c)
	if err != nil {
		log.Fatalf("Error creating vault: %s", err)
	}
	defer vaultCleanup()
	err = seedVaultFromEnv(c, vault)
	if err != nil {
		log.Fatalf("Error seeding vault: %s", err)
	}

	subscriber, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, subscriber, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	cartService := createCartService(c, router, nower, subscriber)
	createCheckoutService(c, router, cartService, httpClient, publisher, subscriber, nower, uuider)
	createOrderService(c, router, publisher, subscriber, nower)
	createPaymentService(c, router, vault, httpClient, publisher, subscriber, nower)
	createStockService(c, router, httpClient, subscriber, nower)
	createAddressService(c, router, nower, uuider)

	startWebServerBlocking(router)
}

func createCartService(c context.Context, router *mux.Router, nower mytime.Nower, subscriber mypubsub.PubSub) checkout.CartReader {
	cartStore, _, err := mystore.New[cart.Cart](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	selectionStore, _, err := mystore.New[cart.Selection](c)
	if err != nil {
		log.Fatalf("Error creating selection store: %s", err)
	}

	cartService := cart.NewService(cartStore, selectionStore, nower, subscriber)
	err = cartService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart service: %s", err)
	}

	return cartService
}

func createCheckoutService(c context.Context, router *mux.Router, cartReader checkout.CartReader,
	httpClient myhttpclient.HTTPSender, publisher mypublisher.Publisher, subscriber mypubsub.PubSub,
	nower mytime.Nower, uuider myuuid.UUIDer) {
	checkoutStore, _, err := mystore.New[checkout.CheckoutContext](c)
	if err != nil {
		log.Fatalf("Error creating checkout store: %s", err)
	}

	orderAPI := checkout.NewOrderAPIClient(backendBaseURL(), httpClient)

	checkoutService := checkout.NewService(checkoutStore, cartReader, orderAPI, publisher, subscriber, nower, uuider)
	err = checkoutService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering checkout service: %s", err)
	}
}

func createOrderService(c context.Context, router *mux.Router, publisher mypublisher.Publisher,
	subscriber mypubsub.PubSub, nower mytime.Nower) {
	orderStore, _, err := mystore.New[orders.Order](c)
	if err != nil {
		log.Fatalf("Error creating order store: %s", err)
	}

	orderService := orders.NewService(orderStore, publisher, subscriber, nower)
	err = orderService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering order service: %s", err)
	}
}

func createPaymentService(c context.Context, router *mux.Router, vault myvault.VaultReader[myvault.Credentials],
	httpClient myhttpclient.HTTPSender, publisher mypublisher.Publisher, subscriber mypubsub.PubSub,
	nower mytime.Nower) {
	paymentStore, _, err := mystore.New[paymidtrans.PaymentContext](c)
	if err != nil {
		log.Fatalf("Error creating payment store: %s", err)
	}

	payer := paymidtrans.NewPayer(os.Getenv("MIDTRANS_ENVIRONMENT"), httpClient)

	paymentService := paymidtrans.NewService(payer, paymentStore, vault, publisher, subscriber, nower)
	err = paymentService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering payment service: %s", err)
	}
}

func createStockService(c context.Context, router *mux.Router, httpClient myhttpclient.HTTPSender,
	subscriber mypubsub.PubSub, nower mytime.Nower) {
	stockStore, _, err := mystore.New[stock.StockOverride](c)
	if err != nil {
		log.Fatalf("Error creating stock store: %s", err)
	}

	productAPI := stock.NewProductAPIClient(backendBaseURL(), httpClient)

	stockService := stock.NewService(stockStore, productAPI, subscriber, nower)
	err = stockService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering stock service: %s", err)
	}
}

func createAddressService(c context.Context, router *mux.Router, nower mytime.Nower, uuider myuuid.UUIDer) {
	addressStore, _, err := mystore.New[address.AddressBook](c)
	if err != nil {
		log.Fatalf("Error creating address store: %s", err)
	}

	addressService := address.NewService(addressStore, nower, uuider)
	err = addressService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering address service: %s", err)
	}
}

func seedVaultFromEnv(c context.Context, vault myvault.VaultReadWriter[myvault.Credentials]) error {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		log.Printf("MIDTRANS_SERVER_KEY not set: payments will fail until credentials are stored")
		return nil
	}

	return vault.Put(c, myvault.CurrentCredentials, myvault.Credentials{
		Environment: os.Getenv("MIDTRANS_ENVIRONMENT"),
		ServerKey:   serverKey,
		ClientKey:   os.Getenv("MIDTRANS_CLIENT_KEY"),
	})
}

// backendBaseURL points at the marketplace backend that owns orders and
// product stock.
func backendBaseURL() string {
	baseURL := os.Getenv("BACKEND_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:9090"
	}
	return baseURL
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
