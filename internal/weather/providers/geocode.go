package providers

import (
	"context"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// Geocoder resolves a location's coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, loc weather.Location) (lat, lon float64, err error)
}

// GoogleGeocoder resolves city/country pairs through the Google Geocoding API.
// Results never change for a given location, so they are cached for the
// process lifetime.
type GoogleGeocoder struct {
	cache *cache.Cache
}

var geocoderKeyOnce sync.Once

// NewGoogleGeocoder configures the geocoding client with apiKey. The
// underlying client holds the key globally; the first key wins.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoderKeyOnce.Do(func() { geocoder.ApiKey = apiKey })
	return &GoogleGeocoder{cache: cache.New(cache.NoExpiration, 0)}
}

type coords struct{ lat, lon float64 }

func (g *GoogleGeocoder) Geocode(ctx context.Context, loc weather.Location) (float64, float64, error) {
	if c, ok := g.cache.Get(loc.Key()); ok {
		cc := c.(coords)
		return cc.lat, cc.lon, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	res, err := geocoder.Geocoding(geocoder.Address{City: loc.City, Country: loc.Country})
	if err != nil {
		return 0, 0, errors.Wrapf(err, "geocode %s", loc.Key())
	}
	g.cache.Set(loc.Key(), coords{lat: res.Latitude, lon: res.Longitude}, cache.NoExpiration)
	return res.Latitude, res.Longitude, nil
}
