package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/ready2shop/storefront/internal/cart"
	"github.com/ready2shop/storefront/internal/events"
	"github.com/ready2shop/storefront/internal/refdata"
)

// AddressSection names one of the two address sections. Shipping and
// billing resolve their state lists independently.
type AddressSection string

const (
	ShippingSection AddressSection = "shippingAddress"
	BillingSection  AddressSection = "billingAddress"
)

var IllegalTransitionError = errors.New("illegal transition of checkout status")

// ValidationError is returned by Submit when the form fails validation.
// The gateway is never reached in that case.
type ValidationError struct {
	Violations Violations
}

func (e *ValidationError) Error() string {
	return "checkout form is invalid"
}

// Session drives one logical checkout: it owns the form, tracks the
// status machine, resolves dependent reference data and, on submit,
// assembles the purchase and hands it to the gateway. Mutations are
// serialized by the session's own lock; reference-data results are
// applied atomically and discarded when a later selection superseded the
// lookup that produced them.
type Session struct {
	mu     sync.Mutex
	form   *Form
	status Status

	cart    *cart.Engine
	refdata refdata.Provider
	gateway OrderGateway
	events  events.Publisher
	log     *slog.Logger
	now     func() time.Time

	totals    cart.Totals
	countries []refdata.Country
	months    []int
	years     []int
}

// NewSession wires a session to its collaborators. The events publisher
// may be nil when no broker is configured.
func NewSession(engine *cart.Engine, provider refdata.Provider, gw OrderGateway, publisher events.Publisher, log *slog.Logger) *Session {
	s := &Session{
		form:    NewForm(),
		status:  StatusEditing,
		cart:    engine,
		refdata: provider,
		gateway: gw,
		events:  publisher,
		log:     log,
		now:     time.Now,
	}

	engine.Subscribe(func(totals cart.Totals) {
		s.mu.Lock()
		s.totals = totals
		s.mu.Unlock()
	})

	return s
}

// Begin populates the dropdown sources: countries, card months starting
// from the current month, and the card year window. A failed lookup
// degrades to an empty list and never blocks editing.
func (s *Session) Begin(ctx context.Context) {
	countries, err := s.refdata.Countries(ctx)
	if err != nil {
		s.log.Warn("countries lookup failed", "error", err)
		countries = nil
	}

	startMonth := int(s.now().Month())
	months, err := s.refdata.CreditCardMonths(ctx, startMonth)
	if err != nil {
		s.log.Warn("card months lookup failed", "error", err)
		months = nil
	}

	years, err := s.refdata.CreditCardYears(ctx)
	if err != nil {
		s.log.Warn("card years lookup failed", "error", err)
		years = nil
	}

	s.mu.Lock()
	s.countries = countries
	s.months = months
	s.years = years
	s.mu.Unlock()
}

// SelectCountry records the country choice for an address section and
// resolves its states. The result is applied only if the section still
// has the same country selected once the lookup returns; a stale result
// from a superseded selection is discarded. On success the section's
// selected state defaults to the first entry of the new list.
func (s *Session) SelectCountry(ctx context.Context, section AddressSection, country refdata.Country) []refdata.State {
	s.mu.Lock()
	addr := s.address(section)
	addr.Country.Value = country
	addr.Country.Touched = true
	s.mu.Unlock()

	states, err := s.refdata.StatesByCountry(ctx, country.Code)
	if err != nil {
		s.log.Warn("states lookup failed", "country", country.Code, "error", err)
		states = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	addr = s.address(section)
	if addr.Country.Value.Code != country.Code {
		// superseded by a later selection
		return append([]refdata.State(nil), addr.StateOptions...)
	}

	addr.StateOptions = states
	if len(states) > 0 {
		addr.State.Value = states[0]
	} else {
		addr.State.Value = refdata.State{}
	}
	addr.State.Touched = true
	return append([]refdata.State(nil), states...)
}

// SelectState records an explicit state choice from the section's options.
func (s *Session) SelectState(section AddressSection, state refdata.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := s.address(section)
	addr.State.Value = state
	addr.State.Touched = true
}

// SetBillingSameAsShipping applies or reverts the one-shot copy of the
// shipping section onto billing.
func (s *Session) SetBillingSameAsShipping(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		s.form.CopyShippingToBilling()
	} else {
		s.form.ClearBilling()
	}
}

// SelectExpirationYear records the year and recomputes the month options:
// picking the current calendar year restricts months to start from the
// current month, any other year offers the full range.
func (s *Session) SelectExpirationYear(ctx context.Context, year string) []int {
	startMonth := 1
	if selected, err := strconv.Atoi(year); err == nil && selected == s.now().Year() {
		startMonth = int(s.now().Month())
	}

	months, err := s.refdata.CreditCardMonths(ctx, startMonth)
	if err != nil {
		s.log.Warn("card months lookup failed", "error", err)
		months = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.CreditCard.ExpirationYear.set(year)
	s.months = months
	return append([]int(nil), months...)
}

func (s *Session) SetCustomer(firstName, lastName, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.SetCustomer(firstName, lastName, email)
}

func (s *Session) SetAddressValues(section AddressSection, street, city, zipCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address(section).SetValues(street, city, zipCode)
}

func (s *Session) SetCreditCard(cardType, nameOnCard, cardNumber, securityCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.CreditCard.SetValues(cardType, nameOnCard, cardNumber, securityCode)
}

func (s *Session) SelectExpirationMonth(month string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.CreditCard.ExpirationMonth.set(month)
}

// Submit validates the form and, if valid, assembles the purchase from
// the current cart state and places it through the gateway. An invalid
// form marks every field touched and returns a ValidationError without
// reaching the gateway. A gateway failure leaves form and cart unchanged
// so the user can correct and resubmit. Success resets both.
func (s *Session) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !CanTransitionTo(s.status, StatusValidating) {
		s.mu.Unlock()
		return "", IllegalTransitionError
	}
	s.status = StatusValidating

	violations := s.form.Validate()
	if len(violations) > 0 {
		s.form.MarkAllTouched()
		s.status = StatusEditing
		s.mu.Unlock()
		return "", &ValidationError{Violations: violations}
	}

	s.status = StatusSubmitting
	purchase := buildPurchase(s.form, s.totals, s.cart.Items())
	s.mu.Unlock()

	confirmation, err := s.gateway.PlaceOrder(ctx, purchase)
	if err != nil {
		s.mu.Lock()
		s.status = StatusEditing
		s.mu.Unlock()
		return "", err
	}

	s.mu.Lock()
	s.status = StatusCompleted
	s.mu.Unlock()

	s.publishOrderPlaced(ctx, confirmation.OrderTrackingNumber, purchase)

	// full reset: cart first (broadcasts zero totals), then the form
	s.cart.Reset()
	s.mu.Lock()
	s.form.Reset()
	s.status = StatusEditing
	s.mu.Unlock()

	return confirmation.OrderTrackingNumber, nil
}

func (s *Session) publishOrderPlaced(ctx context.Context, trackingNumber string, purchase *PurchaseRequest) {
	if s.events == nil {
		return
	}

	items := make([]events.OrderPlacedItem, len(purchase.OrderItems))
	for i, item := range purchase.OrderItems {
		items[i] = events.OrderPlacedItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	event := events.OrderPlaced{
		OrderTrackingNumber: trackingNumber,
		TotalPrice:          purchase.Order.TotalPrice,
		TotalQuantity:       purchase.Order.TotalQuantity,
		Items:               items,
		PlacedAt:            s.now(),
	}

	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		// the order is already placed, delivery is best effort
		s.log.Warn("order event publish failed", "tracking_number", trackingNumber, "error", err)
	}
}

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Form returns a snapshot of the form, state options cloned.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := *s.form
	snapshot.ShippingAddress.StateOptions = append([]refdata.State(nil), s.form.ShippingAddress.StateOptions...)
	snapshot.BillingAddress.StateOptions = append([]refdata.State(nil), s.form.BillingAddress.StateOptions...)
	return snapshot
}

func (s *Session) Countries() []refdata.Country {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]refdata.Country(nil), s.countries...)
}

func (s *Session) Months() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.months...)
}

func (s *Session) Years() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.years...)
}

// address resolves a section name. Caller must hold the lock.
func (s *Session) address(section AddressSection) *Address {
	if section == BillingSection {
		return &s.form.BillingAddress
	}
	return &s.form.ShippingAddress
}
