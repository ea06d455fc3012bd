package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ready2shop/storefront/internal/refdata"
)

// RefDataHandler proxies the dropdown sources. Lookup failures degrade to
// empty lists so the form stays editable.
type RefDataHandler struct {
	provider refdata.Provider
	timeout  time.Duration
}

func NewRefDataHandler(provider refdata.Provider, timeout time.Duration) *RefDataHandler {
	return &RefDataHandler{
		provider: provider,
		timeout:  timeout,
	}
}

func (h *RefDataHandler) Countries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	countries, err := h.provider.Countries(ctx)
	if err != nil {
		countries = []refdata.Country{}
	}
	respondJSON(w, http.StatusOK, countries)
}

func (h *RefDataHandler) States(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	states, err := h.provider.StatesByCountry(ctx, chi.URLParam(r, "code"))
	if err != nil {
		states = []refdata.State{}
	}
	respondJSON(w, http.StatusOK, states)
}

func (h *RefDataHandler) CardMonths(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	months, err := h.provider.CreditCardMonths(ctx, intQuery(r, "start", 1))
	if err != nil {
		months = []int{}
	}
	respondJSON(w, http.StatusOK, months)
}

func (h *RefDataHandler) CardYears(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	years, err := h.provider.CreditCardYears(ctx)
	if err != nil {
		years = []int{}
	}
	respondJSON(w, http.StatusOK, years)
}
