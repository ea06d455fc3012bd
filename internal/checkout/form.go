package checkout

import (
	"github.com/ready2shop/storefront/internal/refdata"
	"github.com/ready2shop/storefront/internal/validation"
)

// Field is a single text input: the raw value plus a touched flag that
// controls whether validation messages render for it.
type Field struct {
	Value   string `json:"value"`
	Touched bool   `json:"touched"`
}

func (f *Field) set(value string) {
	f.Value = value
	f.Touched = true
}

// CountryField and StateField hold the structured reference record the
// user picked from a dropdown, not a plain string.
type CountryField struct {
	Value   refdata.Country `json:"value"`
	Touched bool            `json:"touched"`
}

type StateField struct {
	Value   refdata.State `json:"value"`
	Touched bool          `json:"touched"`
}

type Customer struct {
	FirstName Field `json:"firstName"`
	LastName  Field `json:"lastName"`
	Email     Field `json:"email"`
}

// Address is one address section. StateOptions is the dropdown list
// resolved for the currently selected country; shipping and billing each
// keep their own copy.
type Address struct {
	Street       Field           `json:"street"`
	City         Field           `json:"city"`
	State        StateField      `json:"state"`
	Country      CountryField    `json:"country"`
	ZipCode      Field           `json:"zipCode"`
	StateOptions []refdata.State `json:"stateOptions"`
}

type CreditCard struct {
	CardType        Field `json:"cardType"`
	NameOnCard      Field `json:"nameOnCard"`
	CardNumber      Field `json:"cardNumber"`
	SecurityCode    Field `json:"securityCode"`
	ExpirationMonth Field `json:"expirationMonth"`
	ExpirationYear  Field `json:"expirationYear"`
}

// Form is the four-section checkout form. Sections validate independently
// but are submitted together.
type Form struct {
	Customer        Customer   `json:"customer"`
	ShippingAddress Address    `json:"shippingAddress"`
	BillingAddress  Address    `json:"billingAddress"`
	CreditCard      CreditCard `json:"creditCard"`

	// BillingSameAsShipping records the toggle position. The copy itself
	// is one-shot: later shipping edits do not propagate.
	BillingSameAsShipping bool `json:"billingSameAsShipping"`
}

func NewForm() *Form {
	return &Form{}
}

// Violations maps a qualified field name ("customer.firstName") to the
// failure tags its rules produced.
type Violations map[string][]string

func (v Violations) check(field, value string, rules []validation.Rule) {
	if tags := validation.Apply(value, rules); len(tags) > 0 {
		v[field] = tags
	}
}

var (
	nameRules = []validation.Rule{
		validation.Required(), validation.MinLength(2), validation.NotOnlyWhitespace(),
	}
	emailRules = []validation.Rule{
		validation.Required(), validation.Pattern(validation.EmailPattern),
	}
	requiredOnly    = []validation.Rule{validation.Required()}
	cardNumberRules = []validation.Rule{
		validation.Required(), validation.Pattern(validation.CardNumberPattern),
	}
	securityCodeRules = []validation.Rule{
		validation.Required(), validation.Pattern(validation.SecurityCodePattern),
	}
)

// Validate is a pure function from current values to failure tags. An
// empty result means the whole form is valid.
func (f *Form) Validate() Violations {
	v := Violations{}

	v.check("customer.firstName", f.Customer.FirstName.Value, nameRules)
	v.check("customer.lastName", f.Customer.LastName.Value, nameRules)
	v.check("customer.email", f.Customer.Email.Value, emailRules)

	f.ShippingAddress.validate("shippingAddress", v)
	f.BillingAddress.validate("billingAddress", v)

	v.check("creditCard.cardType", f.CreditCard.CardType.Value, requiredOnly)
	v.check("creditCard.nameOnCard", f.CreditCard.NameOnCard.Value, nameRules)
	v.check("creditCard.cardNumber", f.CreditCard.CardNumber.Value, cardNumberRules)
	v.check("creditCard.securityCode", f.CreditCard.SecurityCode.Value, securityCodeRules)
	v.check("creditCard.expirationMonth", f.CreditCard.ExpirationMonth.Value, requiredOnly)
	v.check("creditCard.expirationYear", f.CreditCard.ExpirationYear.Value, requiredOnly)

	return v
}

func (a *Address) validate(section string, v Violations) {
	v.check(section+".street", a.Street.Value, nameRules)
	v.check(section+".city", a.City.Value, nameRules)
	v.check(section+".state", a.State.Value.Code, requiredOnly)
	v.check(section+".country", a.Country.Value.Code, requiredOnly)
	v.check(section+".zipCode", a.ZipCode.Value, nameRules)
}

func (f *Form) Valid() bool {
	return len(f.Validate()) == 0
}

// MarkAllTouched flips every field to touched so that validation messages
// render after a failed submit attempt.
func (f *Form) MarkAllTouched() {
	for _, field := range []*Field{
		&f.Customer.FirstName, &f.Customer.LastName, &f.Customer.Email,
		&f.ShippingAddress.Street, &f.ShippingAddress.City, &f.ShippingAddress.ZipCode,
		&f.BillingAddress.Street, &f.BillingAddress.City, &f.BillingAddress.ZipCode,
		&f.CreditCard.CardType, &f.CreditCard.NameOnCard, &f.CreditCard.CardNumber,
		&f.CreditCard.SecurityCode, &f.CreditCard.ExpirationMonth, &f.CreditCard.ExpirationYear,
	} {
		field.Touched = true
	}
	f.ShippingAddress.State.Touched = true
	f.ShippingAddress.Country.Touched = true
	f.BillingAddress.State.Touched = true
	f.BillingAddress.Country.Touched = true
}

// Reset returns the form to its pristine empty state, state options
// included.
func (f *Form) Reset() {
	*f = Form{}
}

func (f *Form) SetCustomer(firstName, lastName, email string) {
	f.Customer.FirstName.set(firstName)
	f.Customer.LastName.set(lastName)
	f.Customer.Email.set(email)
}

func (a *Address) SetValues(street, city, zipCode string) {
	a.Street.set(street)
	a.City.set(city)
	a.ZipCode.set(zipCode)
}

func (c *CreditCard) SetValues(cardType, nameOnCard, cardNumber, securityCode string) {
	c.CardType.set(cardType)
	c.NameOnCard.set(nameOnCard)
	c.CardNumber.set(cardNumber)
	c.SecurityCode.set(securityCode)
}

// CopyShippingToBilling overwrites the billing section with the shipping
// section, resolved state options included. One-shot, not a live binding.
func (f *Form) CopyShippingToBilling() {
	f.BillingAddress = f.ShippingAddress
	f.BillingAddress.StateOptions = append([]refdata.State(nil), f.ShippingAddress.StateOptions...)
	f.BillingSameAsShipping = true
}

// ClearBilling empties the billing section back to untouched, with an
// empty state-options list. The pre-copy values are not restored.
func (f *Form) ClearBilling() {
	f.BillingAddress = Address{}
	f.BillingSameAsShipping = false
}
