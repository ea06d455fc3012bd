package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// YearsWindow is how many years beyond the current one the expiration
// dropdown offers.
const YearsWindow = 10

// HTTPProvider fetches countries and states from the reference-data
// endpoints. Card months and years are calendar-derived, no remote call
// is involved.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
}

func (p *HTTPProvider) Countries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := p.getJSON(ctx, p.baseURL+"/countries", &countries); err != nil {
		return nil, fmt.Errorf("failed to fetch countries: %w", err)
	}
	return countries, nil
}

func (p *HTTPProvider) StatesByCountry(ctx context.Context, countryCode string) ([]State, error) {
	var states []State
	url := fmt.Sprintf("%s/countries/%s/states", p.baseURL, countryCode)
	if err := p.getJSON(ctx, url, &states); err != nil {
		return nil, fmt.Errorf("failed to fetch states for %s: %w", countryCode, err)
	}
	return states, nil
}

func (p *HTTPProvider) CreditCardMonths(_ context.Context, startMonth int) ([]int, error) {
	if startMonth < 1 {
		startMonth = 1
	}
	var months []int
	for month := startMonth; month <= 12; month++ {
		months = append(months, month)
	}
	return months, nil
}

func (p *HTTPProvider) CreditCardYears(_ context.Context) ([]int, error) {
	start := p.now().Year()
	var years []int
	for year := start; year <= start+YearsWindow; year++ {
		years = append(years, year)
	}
	return years, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}
