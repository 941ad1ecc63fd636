package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Fetch(context.Context, weather.Location) (weather.ProviderReading, error) {
	p.calls++
	if p.err != nil {
		return weather.ProviderReading{}, p.err
	}
	t := weather.Celsius(float64(p.calls))
	return weather.ProviderReading{ProviderName: "counting", Weather: weather.Weather{Temperature: &t}}, nil
}

type countingForecaster struct {
	countingProvider
}

func (p *countingForecaster) FetchForecast(_ context.Context, _ weather.Location, days int) ([]weather.ProviderReading, error) {
	p.calls++
	return make([]weather.ProviderReading, days), nil
}

func TestCachedProviderFetch(t *testing.T) {
	inner := &countingProvider{}
	c := NewCached(inner, time.Minute)
	paris := weather.Location{City: "Paris", Country: "FR"}
	oslo := weather.Location{City: "Oslo", Country: "NO"}

	assert.Equal(t, "counting", c.Name())

	r1, err := c.Fetch(context.Background(), paris)
	require.NoError(t, err)
	r2, err := c.Fetch(context.Background(), paris)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls)

	_, err = c.Fetch(context.Background(), oslo)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	c := NewCached(inner, time.Minute)
	loc := weather.Location{City: "Paris"}

	_, err := c.Fetch(context.Background(), loc)
	assert.Error(t, err)

	inner.err = nil
	r, err := c.Fetch(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, weather.Celsius(2), *r.Weather.Temperature)
}

func TestCachedProviderExpires(t *testing.T) {
	inner := &countingProvider{}
	c := NewCached(inner, 20*time.Millisecond)
	loc := weather.Location{City: "Paris"}

	_, err := c.Fetch(context.Background(), loc)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = c.Fetch(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProviderForecast(t *testing.T) {
	inner := &countingForecaster{}
	c := NewCached(inner, time.Minute)
	loc := weather.Location{City: "Paris"}

	days, err := c.FetchForecast(context.Background(), loc, 3)
	require.NoError(t, err)
	assert.Len(t, days, 3)
	_, err = c.FetchForecast(context.Background(), loc, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	// Different horizon, different entry.
	days, err = c.FetchForecast(context.Background(), loc, 1)
	require.NoError(t, err)
	assert.Len(t, days, 1)
	assert.Equal(t, 2, inner.calls)

	// The wrapped provider has no hourly data.
	hours, err := c.FetchHourly(context.Background(), loc, 12)
	require.NoError(t, err)
	assert.Nil(t, hours)
}

func TestCachedProviderWithoutForecastSupport(t *testing.T) {
	c := NewCached(&countingProvider{}, time.Minute)
	days, err := c.FetchForecast(context.Background(), weather.Location{City: "Paris"}, 3)
	require.NoError(t, err)
	assert.Nil(t, days)
}
