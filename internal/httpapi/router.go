package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ready2shop/storefront/internal/catalog"
	"github.com/ready2shop/storefront/internal/refdata"
)

// NewRouter assembles the storefront API.
func NewRouter(registry *Registry, repo catalog.RepoInterface, provider refdata.Provider, requestTimeout time.Duration) http.Handler {
	cartHandler := NewCartHandler(registry, repo, requestTimeout)
	checkoutHandler := NewCheckoutHandler(registry, requestTimeout)
	productHandler := NewProductHandler(repo, requestTimeout)
	refDataHandler := NewRefDataHandler(provider, requestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", productHandler.List)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{product_id}/decrement", cartHandler.DecrementItem)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/form", checkoutHandler.GetForm)
			r.Put("/form", checkoutHandler.UpdateForm)
			r.Post("/country", checkoutHandler.SelectCountry)
			r.Post("/state", checkoutHandler.SelectState)
			r.Post("/billing-same-as-shipping", checkoutHandler.BillingSameAsShipping)
			r.Post("/expiration-year", checkoutHandler.SelectExpirationYear)
			r.Post("/purchase", checkoutHandler.Purchase)
		})

		r.Route("/refdata", func(r chi.Router) {
			r.Get("/countries", refDataHandler.Countries)
			r.Get("/countries/{code}/states", refDataHandler.States)
			r.Get("/card-months", refDataHandler.CardMonths)
			r.Get("/card-years", refDataHandler.CardYears)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
