package refdata

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	mu           sync.Mutex
	countryCalls int
	stateCalls   int
	monthCalls   int
	yearCalls    int

	// when set, StatesByCountry blocks until the channel is closed
	release chan struct{}
}

func (p *countingProvider) Countries(context.Context) ([]Country, error) {
	p.mu.Lock()
	p.countryCalls++
	p.mu.Unlock()
	return []Country{{Code: "US", Name: "United States"}}, nil
}

func (p *countingProvider) StatesByCountry(_ context.Context, code string) ([]State, error) {
	p.mu.Lock()
	p.stateCalls++
	release := p.release
	p.mu.Unlock()
	if release != nil {
		<-release
	}
	if code == "US" {
		return []State{{Code: "IL", Name: "Illinois"}}, nil
	}
	return nil, nil
}

func (p *countingProvider) CreditCardMonths(_ context.Context, startMonth int) ([]int, error) {
	p.mu.Lock()
	p.monthCalls++
	p.mu.Unlock()
	var months []int
	for month := startMonth; month <= 12; month++ {
		months = append(months, month)
	}
	return months, nil
}

func (p *countingProvider) CreditCardYears(context.Context) ([]int, error) {
	p.mu.Lock()
	p.yearCalls++
	p.mu.Unlock()
	return []int{2026, 2027}, nil
}

func (p *countingProvider) calls() (countries, states int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.countryCalls, p.stateCalls
}

func setupCached(t *testing.T) (*Cached, *miniredis.Miniredis, *countingProvider) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	inner := &countingProvider{}
	return NewCached(inner, client, slog.Default()), mr, inner
}

func TestCountries_CacheHitSkipsInnerProvider(t *testing.T) {
	sut, mr, inner := setupCached(t)

	cached := []Country{{Code: "DE", Name: "Germany"}}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set("refdata:countries", string(payload)))

	countries, err := sut.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, countries)

	countryCalls, _ := inner.calls()
	assert.Zero(t, countryCalls)
}

func TestCountries_CacheMissFetchesAndStores(t *testing.T) {
	sut, mr, inner := setupCached(t)

	countries, err := sut.Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "US", countries[0].Code)

	countryCalls, _ := inner.calls()
	assert.Equal(t, 1, countryCalls)

	// the store happens asynchronously
	require.Eventually(t, func() bool {
		return mr.Exists("refdata:countries")
	}, time.Second, 10*time.Millisecond)

	ttl := mr.TTL("refdata:countries")
	assert.True(t, ttl >= 12*time.Hour, "TTL should be at least the base TTL")
	assert.True(t, ttl < 12*time.Hour+30*time.Minute, "TTL should be base + max jitter")
}

func TestStatesByCountry_CorruptEntryFallsThrough(t *testing.T) {
	sut, mr, inner := setupCached(t)

	require.NoError(t, mr.Set("refdata:states:US", "{not json"))

	states, err := sut.StatesByCountry(context.Background(), "US")
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "Illinois", states[0].Name)

	_, stateCalls := inner.calls()
	assert.Equal(t, 1, stateCalls)
}

func TestCountries_RedisDownFallsThrough(t *testing.T) {
	sut, mr, inner := setupCached(t)
	mr.Close()

	countries, err := sut.Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "US", countries[0].Code)

	countryCalls, _ := inner.calls()
	assert.Equal(t, 1, countryCalls)
}

func TestStatesByCountry_CollapsesConcurrentMisses(t *testing.T) {
	sut, _, inner := setupCached(t)

	release := make(chan struct{})
	inner.mu.Lock()
	inner.release = release
	inner.mu.Unlock()

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]State, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = sut.StatesByCountry(context.Background(), "US")
		}(i)
	}

	// let every caller join the in-flight lookup before releasing it
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	_, stateCalls := inner.calls()
	assert.Equal(t, 1, stateCalls)
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 1)
		assert.Equal(t, "IL", results[i][0].Code)
	}
}

func TestMonthsAndYears_BypassCache(t *testing.T) {
	sut, mr, inner := setupCached(t)

	months, err := sut.CreditCardMonths(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, months, 10)

	years, err := sut.CreditCardYears(context.Background())
	require.NoError(t, err)
	assert.Len(t, years, 2)

	inner.mu.Lock()
	assert.Equal(t, 1, inner.monthCalls)
	assert.Equal(t, 1, inner.yearCalls)
	inner.mu.Unlock()

	assert.Empty(t, mr.Keys())
}
