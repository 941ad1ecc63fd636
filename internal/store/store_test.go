package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

var (
	paris = weather.Location{City: "Paris", Country: "FR"}
	oslo  = weather.Location{City: "Oslo", Country: "NO"}
	base  = time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)
)

func snapshotAt(id string, loc weather.Location, ts time.Time) weather.Snapshot {
	temp := weather.Celsius(21.5)
	return weather.Snapshot{ID: id, Location: loc, Timestamp: ts, Weather: weather.Weather{Temperature: &temp}}
}

func newSQLiteForTest(t *testing.T, maxAge time.Duration) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "weather.db"), maxAge)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Both stores must behave the same for the service.
func testStoreContract(t *testing.T, s weather.Store) {
	_, err := s.GetLatest(paris)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("p1", paris, base)))
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("p2", paris, base.Add(time.Hour))))
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("p3", paris, base.Add(2*time.Hour))))
	require.NoError(t, s.SaveSnapshot(oslo, snapshotAt("o1", oslo, base)))

	latest, err := s.GetLatest(paris)
	require.NoError(t, err)
	assert.Equal(t, "p3", latest.ID)

	latest, err = s.GetLatest(oslo)
	require.NoError(t, err)
	assert.Equal(t, "o1", latest.ID)

	// Bounds are inclusive.
	rng, err := s.GetRange(paris, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rng, 2)
	assert.Equal(t, "p1", rng[0].ID)
	assert.Equal(t, "p2", rng[1].ID)

	_, err = s.GetRange(paris, base.Add(-48*time.Hour), base.Add(-24*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetRange(weather.Location{City: "Lima"}, base, base.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreContract(t *testing.T) {
	testStoreContract(t, NewMemoryStore(0, 0))
}

func TestSQLiteStoreContract(t *testing.T) {
	testStoreContract(t, newSQLiteForTest(t, 0))
}

func TestMemoryStoreMaxHistory(t *testing.T) {
	s := NewMemoryStore(2, 0)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveSnapshot(paris, snapshotAt(id, paris, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := s.GetRange(paris, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "c", all[1].ID)
}

func TestMemoryStoreMaxAgeKeepsNewest(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return base.Add(24 * time.Hour) }

	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("old", paris, base)))
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("older-but-newest", paris, base.Add(time.Minute))))

	// Everything is past the cutoff, but the most recent snapshot survives.
	latest, err := s.GetLatest(paris)
	require.NoError(t, err)
	assert.Equal(t, "older-but-newest", latest.ID)

	all, err := s.GetRange(paris, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	s.now = func() time.Time { return base.Add(90 * time.Minute) }
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("fresh", paris, base.Add(80*time.Minute))))
	all, err = s.GetRange(paris, base.Add(-time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "fresh", all[0].ID)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newSQLiteForTest(t, 0)

	lat, lon := 48.8566, 2.3522
	loc := weather.Location{City: "Paris", Country: "FR", Lat: &lat, Lon: &lon}
	temp := weather.Fahrenheit(212)
	wind := weather.Ms(10)
	cond := weather.ConditionLightRain
	moon := weather.MoonWaningGibbous
	humidity := 0.42

	in := weather.Snapshot{
		ID:        "full",
		Location:  loc,
		Timestamp: base,
		Weather: weather.Weather{
			Temperature: &temp,
			Condition:   &cond,
			Humidity:    &humidity,
			MoonPhase:   &moon,
			WindSpeed:   &wind,
		},
		Providers: []weather.ProviderContribution{{ProviderName: "wttr.in", Timestamp: base}},
	}
	require.NoError(t, s.SaveSnapshot(loc, in))

	out, err := s.GetLatest(loc)
	require.NoError(t, err)
	assert.Equal(t, "full", out.ID)
	assert.True(t, base.Equal(out.Timestamp))
	require.NotNil(t, out.Location.Lat)
	assert.Equal(t, lat, *out.Location.Lat)

	// Quantities come back normalized but equal.
	require.NotNil(t, out.Temperature)
	assert.Equal(t, weather.UnitCelsius, out.Temperature.Unit())
	assert.True(t, out.Temperature.Equal(temp))
	require.NotNil(t, out.WindSpeed)
	assert.InDelta(t, 36.0, out.WindSpeed.Value(), 1e-9)

	assert.Equal(t, cond, *out.Condition)
	assert.Equal(t, humidity, *out.Humidity)
	assert.Equal(t, moon, *out.MoonPhase)
	assert.Nil(t, out.FeelsLike)
	require.Len(t, out.Providers, 1)
	assert.Equal(t, "wttr.in", out.Providers[0].ProviderName)
}

func TestSQLiteStoreMaxAge(t *testing.T) {
	s := newSQLiteForTest(t, time.Hour)
	s.now = func() time.Time { return base.Add(24 * time.Hour) }

	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("a", paris, base)))
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("b", paris, base.Add(time.Minute))))

	all, err := s.GetRange(paris, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)
}

func TestSQLiteStoreReplacesSameID(t *testing.T) {
	s := newSQLiteForTest(t, 0)
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("same", paris, base)))
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("same", paris, base.Add(time.Minute))))

	all, err := s.GetRange(paris, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, base.Add(time.Minute).Equal(all[0].Timestamp))
}

func TestMemoryStoreOrdersByTimestamp(t *testing.T) {
	s := NewMemoryStore(0, 0)
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("late", paris, base.Add(time.Hour))))
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("early", paris, base)))
	require.NoError(t, s.SaveSnapshot(paris, snapshotAt("late", paris, base.Add(2*time.Hour))))

	latest, err := s.GetLatest(paris)
	require.NoError(t, err)
	assert.Equal(t, "late", latest.ID)
	assert.True(t, base.Add(2*time.Hour).Equal(latest.Timestamp))

	all, err := s.GetRange(paris, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "early", all[0].ID)
}
