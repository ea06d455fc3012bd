package refdata

import "context"

// Country and State are reference-data records selected from dynamically
// fetched dropdown lists. States are scoped to a country.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Provider supplies the lookup lists consumed by the checkout form.
// Implementations must be safe for concurrent use.
type Provider interface {
	Countries(ctx context.Context) ([]Country, error)
	StatesByCountry(ctx context.Context, countryCode string) ([]State, error)
	// CreditCardMonths returns startMonth..12.
	CreditCardMonths(ctx context.Context, startMonth int) ([]int, error)
	// CreditCardYears returns a fixed forward-looking window from the
	// current year.
	CreditCardYears(ctx context.Context) ([]int, error)
}
