package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ready2shop/storefront/internal/checkout"
	"github.com/ready2shop/storefront/internal/gateway"
	"github.com/ready2shop/storefront/internal/refdata"
)

type CheckoutHandler struct {
	registry *Registry
	timeout  time.Duration
}

func NewCheckoutHandler(registry *Registry, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		registry: registry,
		timeout:  timeout,
	}
}

type FormValuesDTO struct {
	Customer *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"customer,omitempty"`
	ShippingAddress *AddressValuesDTO `json:"shippingAddress,omitempty"`
	BillingAddress  *AddressValuesDTO `json:"billingAddress,omitempty"`
	CreditCard      *struct {
		CardType        string `json:"cardType"`
		NameOnCard      string `json:"nameOnCard"`
		CardNumber      string `json:"cardNumber"`
		SecurityCode    string `json:"securityCode"`
		ExpirationMonth string `json:"expirationMonth"`
	} `json:"creditCard,omitempty"`
}

type AddressValuesDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
}

type SelectCountryDTO struct {
	Section string          `json:"section"`
	Country refdata.Country `json:"country"`
}

type SelectStateDTO struct {
	Section string        `json:"section"`
	State   refdata.State `json:"state"`
}

type BillingSameAsShippingDTO struct {
	Enabled bool `json:"enabled"`
}

type ExpirationYearDTO struct {
	Year string `json:"year"`
}

type PurchaseResponseDTO struct {
	OrderTrackingNumber string `json:"orderTrackingNumber"`
}

// GetForm returns the current form state for rendering, plus dropdown
// sources.
func (h *CheckoutHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.registry.session(getSessionID(r.Context())).checkout
	if len(session.Countries()) == 0 {
		session.Begin(ctx)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"form":      session.Form(),
		"status":    session.Status(),
		"countries": session.Countries(),
		"months":    session.Months(),
		"years":     session.Years(),
	})
}

// UpdateForm applies raw values for the sections present in the body.
func (h *CheckoutHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	var req FormValuesDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session := h.registry.session(getSessionID(r.Context())).checkout
	if req.Customer != nil {
		session.SetCustomer(req.Customer.FirstName, req.Customer.LastName, req.Customer.Email)
	}
	if req.ShippingAddress != nil {
		session.SetAddressValues(checkout.ShippingSection,
			req.ShippingAddress.Street, req.ShippingAddress.City, req.ShippingAddress.ZipCode)
	}
	if req.BillingAddress != nil {
		session.SetAddressValues(checkout.BillingSection,
			req.BillingAddress.Street, req.BillingAddress.City, req.BillingAddress.ZipCode)
	}
	if req.CreditCard != nil {
		session.SetCreditCard(req.CreditCard.CardType, req.CreditCard.NameOnCard,
			req.CreditCard.CardNumber, req.CreditCard.SecurityCode)
		if req.CreditCard.ExpirationMonth != "" {
			session.SelectExpirationMonth(req.CreditCard.ExpirationMonth)
		}
	}

	respondJSON(w, http.StatusOK, session.Form())
}

// SelectCountry records a country choice and returns the resolved states
// for that section.
func (h *CheckoutHandler) SelectCountry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SelectCountryDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	section, err := addressSection(req.Section)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_section", err.Error())
		return
	}

	session := h.registry.session(getSessionID(r.Context())).checkout
	states := session.SelectCountry(ctx, section, req.Country)
	respondJSON(w, http.StatusOK, map[string]interface{}{"states": states})
}

func (h *CheckoutHandler) SelectState(w http.ResponseWriter, r *http.Request) {
	var req SelectStateDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	section, err := addressSection(req.Section)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_section", err.Error())
		return
	}

	session := h.registry.session(getSessionID(r.Context())).checkout
	session.SelectState(section, req.State)
	respondJSON(w, http.StatusOK, session.Form())
}

func (h *CheckoutHandler) BillingSameAsShipping(w http.ResponseWriter, r *http.Request) {
	var req BillingSameAsShippingDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session := h.registry.session(getSessionID(r.Context())).checkout
	session.SetBillingSameAsShipping(req.Enabled)
	respondJSON(w, http.StatusOK, session.Form())
}

// SelectExpirationYear records the year and returns the recomputed month
// options.
func (h *CheckoutHandler) SelectExpirationYear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ExpirationYearDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session := h.registry.session(getSessionID(r.Context())).checkout
	months := session.SelectExpirationYear(ctx, req.Year)
	respondJSON(w, http.StatusOK, map[string]interface{}{"months": months})
}

// Purchase submits the checkout. Validation failures come back as 422
// with the per-field tags; gateway failures as 502 with the gateway's
// message; success as the tracking number.
func (h *CheckoutHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session := h.registry.session(getSessionID(r.Context())).checkout
	trackingNumber, err := session.Submit(ctx)
	if err != nil {
		var validationErr *checkout.ValidationError
		if errors.As(err, &validationErr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":      "checkout form is invalid",
				"code":       "validation_failed",
				"violations": validationErr.Violations,
			})
			return
		}

		var gatewayErr *gateway.Error
		if errors.As(err, &gatewayErr) {
			respondError(w, http.StatusBadGateway, "order_rejected", gatewayErr.Message)
			return
		}

		respondError(w, http.StatusBadGateway, "gateway_unavailable", "could not place order")
		return
	}

	respondJSON(w, http.StatusCreated, PurchaseResponseDTO{OrderTrackingNumber: trackingNumber})
}

func addressSection(name string) (checkout.AddressSection, error) {
	switch name {
	case string(checkout.ShippingSection):
		return checkout.ShippingSection, nil
	case string(checkout.BillingSection):
		return checkout.BillingSection, nil
	default:
		return "", errors.New("section must be shippingAddress or billingAddress")
	}
}
