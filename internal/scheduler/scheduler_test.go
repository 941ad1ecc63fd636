package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

type fakeFetcher struct {
	mu    sync.Mutex
	seen  []string
	fails map[string]bool
}

func (f *fakeFetcher) FetchAndStore(ctx context.Context, loc weather.Location) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, loc.Key())
	if f.fails[loc.Key()] {
		return errors.New("upstream down")
	}
	return nil
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.seen...)
	sort.Strings(out)
	return out
}

var locations = []weather.Location{
	{City: "Paris", Country: "FR"},
	{City: "Oslo", Country: "NO"},
	{City: "Lima", Country: "PE"},
}

func TestRunOnceFetchesEveryLocation(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	f := &fakeFetcher{fails: map[string]bool{locations[1].Key(): true}}

	s := New(locations, time.Minute, f, logger)
	s.RunOnce()

	want := []string{locations[0].Key(), locations[1].Key(), locations[2].Key()}
	sort.Strings(want)
	assert.Equal(t, want, f.calls())

	// Only the failing location is reported.
	var warnings int
	for _, e := range hook.AllEntries() {
		if e.Message == "fetch failed" {
			warnings++
			assert.Equal(t, locations[1].Key(), e.Data["location"])
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestStartWithoutLocations(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	f := &fakeFetcher{}

	s := New(nil, time.Minute, f, logger)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Empty(t, f.calls())
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "no locations")
}

func TestStartRunsImmediately(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	f := &fakeFetcher{}

	s := New(locations[:1], time.Hour, f, logger)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return len(f.calls()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
