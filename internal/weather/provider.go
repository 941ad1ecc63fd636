package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a Snapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time
	Weather      Weather

	// Warnings lists provider fields that were present but malformed and
	// therefore left unset.
	Warnings []string
}

// Provider abstracts a weather data source (e.g. wttr.in, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ForecastProvider is implemented by providers that serve daily forecasts.
type ForecastProvider interface {
	Provider
	FetchForecast(ctx context.Context, loc Location, days int) ([]ProviderReading, error)
}

// HourlyProvider is implemented by providers that serve hourly forecasts.
type HourlyProvider interface {
	Provider
	FetchHourly(ctx context.Context, loc Location, hours int) ([]ProviderReading, error)
}

// Store is the contract the in-memory and SQLite stores satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot Snapshot) error
	GetLatest(loc Location) (Snapshot, error)
	GetRange(loc Location, from, to time.Time) ([]Snapshot, error)
}

// Sink receives every stored snapshot, e.g. to export it to a time-series database.
type Sink interface {
	Write(ctx context.Context, snapshot Snapshot) error
}
