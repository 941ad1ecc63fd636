package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-data-aggregation/internal/logging"
	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// Fetcher is the part of the weather service the scheduler drives.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically fetches weather data for configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Fetcher
	locations []weather.Location
	interval  time.Duration
	log       logrus.FieldLogger
}

// New creates a new Scheduler.
func New(locations []weather.Location, interval time.Duration, service Fetcher, log logrus.FieldLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		locations: locations,
		interval:  interval,
		log:       log.WithField(logging.FieldComponent, "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.log.Info("no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval < time.Minute {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce fetches every location concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	s.log.Debug("running weather fetch job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.service.FetchAndStore(ctx, loc); err != nil {
				s.log.WithField(logging.FieldLocation, loc.Key()).WithError(err).Warn("fetch failed")
			}
		}()
	}
	wg.Wait()
	s.log.Debug("completed weather fetch job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
