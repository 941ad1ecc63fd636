package weather

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-data-aggregation/internal/logging"
)

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store     Store
	providers []Provider
	sinks     []Sink
	log       logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithSinks registers sinks notified after every stored snapshot.
func WithSinks(sinks ...Sink) Option {
	return func(s *Service) { s.sinks = append(s.sinks, sinks...) }
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField(logging.FieldComponent, "service")
	return s
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a snapshot. When every provider
// fails the last good snapshot is kept and ErrNoData is returned together
// with the provider errors.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	log := s.log.WithField(logging.FieldLocation, loc.Key())
	if len(s.providers) == 0 {
		log.Error("no providers available to fetch weather data")
		return ErrNoProviders
	}
	log.WithField("providers", len(s.providers)).Debug("fetching current weather")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
		errs     []error
	)

	for _, p := range s.providers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.WithField(logging.FieldProvider, p.Name()).WithError(err).Warn("provider fetch failed")
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				return
			}
			for _, w := range r.Warnings {
				log.WithField(logging.FieldProvider, p.Name()).Warn(w)
			}
			readings = append(readings, r)
		}()
	}

	wg.Wait()

	if len(readings) == 0 {
		log.Warn("no successful provider readings; keeping last good snapshot if any")
		return errors.Join(append([]error{ErrNoData}, errs...)...)
	}

	// Keep aggregation independent of goroutine completion order.
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].ProviderName < readings[j].ProviderName
	})

	snapshot := AggregateReadings(loc, readings)
	if err := s.store.SaveSnapshot(loc, snapshot); err != nil {
		return err
	}
	log.WithField("summary", snapshot.Summary()).Info("stored snapshot")

	for _, sink := range s.sinks {
		if err := sink.Write(ctx, snapshot); err != nil {
			log.WithError(err).Warn("sink write failed")
		}
	}
	return nil
}

// GetForecast fetches multi-day forecasts from providers that support it,
// aggregates them per day, and returns a normalized Forecast.
func (s *Service) GetForecast(ctx context.Context, loc Location, days int) (Forecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}
	return s.bucketed(ctx, loc, days, "forecast", func(ts time.Time) time.Time {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}, func(p Provider) (func() ([]ProviderReading, error), bool) {
		fp, ok := p.(ForecastProvider)
		if !ok {
			return nil, false
		}
		return func() ([]ProviderReading, error) { return fp.FetchForecast(ctx, loc, days) }, true
	})
}

// GetHourly fetches hourly forecasts from providers that support it and
// aggregates them per hour.
func (s *Service) GetHourly(ctx context.Context, loc Location, hours int) (Forecast, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("hours must be greater than zero")
	}
	return s.bucketed(ctx, loc, hours, "hourly", func(ts time.Time) time.Time {
		return ts.Truncate(time.Hour)
	}, func(p Provider) (func() ([]ProviderReading, error), bool) {
		hp, ok := p.(HourlyProvider)
		if !ok {
			return nil, false
		}
		return func() ([]ProviderReading, error) { return hp.FetchHourly(ctx, loc, hours) }, true
	})
}

// bucketed fans out to the providers selected by fetcher, groups readings by
// bucket(timestamp) and aggregates each bucket, returning at most limit entries.
func (s *Service) bucketed(
	ctx context.Context,
	loc Location,
	limit int,
	kind string,
	bucket func(time.Time) time.Time,
	fetcher func(Provider) (func() ([]ProviderReading, error), bool),
) (Forecast, error) {
	log := s.log.WithFields(logrus.Fields{logging.FieldLocation: loc.Key(), "kind": kind})
	log.WithField("limit", limit).Debug("fetching forecast")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		buckets = make(map[time.Time][]ProviderReading)
	)

	for _, p := range s.providers {
		p := p
		fetch, ok := fetcher(p)
		if !ok {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			readings, err := fetch()
			if err != nil {
				log.WithField(logging.FieldProvider, p.Name()).WithError(err).Warn("provider forecast failed")
				return
			}

			mu.Lock()
			defer mu.Unlock()
			for _, r := range readings {
				k := bucket(r.Timestamp.UTC())
				buckets[k] = append(buckets[k], r)
			}
		}()
	}

	wg.Wait()

	if len(buckets) == 0 {
		log.Warn("no successful forecast readings")
		return nil, ErrNoData
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	forecast := make(Forecast, 0, limit)
	for _, k := range keys {
		if len(forecast) >= limit {
			break
		}
		readings := buckets[k]
		sort.SliceStable(readings, func(i, j int) bool {
			return readings[i].ProviderName < readings[j].ProviderName
		})
		snapshot := AggregateReadings(loc, readings)
		snapshot.Timestamp = k
		forecast = append(forecast, snapshot)
	}

	return forecast, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (Snapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(loc, from, to)
}
