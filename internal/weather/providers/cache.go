package providers

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// CachedProvider memoizes a provider's answers per location for a TTL, so a
// widget polling often does not hit the upstream API on every call. Errors
// are never cached.
type CachedProvider struct {
	provider weather.Provider
	cache    *cache.Cache
}

// NewCached wraps p with a TTL cache.
func NewCached(p weather.Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		provider: p,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) Name() string {
	return c.provider.Name()
}

func (c *CachedProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	key := "now|" + loc.Key()
	if v, ok := c.cache.Get(key); ok {
		return v.(weather.ProviderReading), nil
	}
	r, err := c.provider.Fetch(ctx, loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	c.cache.SetDefault(key, r)
	return r, nil
}

// FetchForecast forwards to the wrapped provider. Providers without daily
// forecasts contribute nothing.
func (c *CachedProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	fp, ok := c.provider.(weather.ForecastProvider)
	if !ok {
		return nil, nil
	}
	return c.cachedSlice("days|"+strconv.Itoa(days)+"|"+loc.Key(), func() ([]weather.ProviderReading, error) {
		return fp.FetchForecast(ctx, loc, days)
	})
}

// FetchHourly forwards to the wrapped provider. Providers without hourly
// forecasts contribute nothing.
func (c *CachedProvider) FetchHourly(ctx context.Context, loc weather.Location, hours int) ([]weather.ProviderReading, error) {
	hp, ok := c.provider.(weather.HourlyProvider)
	if !ok {
		return nil, nil
	}
	return c.cachedSlice("hours|"+strconv.Itoa(hours)+"|"+loc.Key(), func() ([]weather.ProviderReading, error) {
		return hp.FetchHourly(ctx, loc, hours)
	})
}

func (c *CachedProvider) cachedSlice(key string, fetch func() ([]weather.ProviderReading, error)) ([]weather.ProviderReading, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.([]weather.ProviderReading), nil
	}
	rs, err := fetch()
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, rs)
	return rs, nil
}
