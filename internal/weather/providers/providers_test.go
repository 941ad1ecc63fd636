package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

func serveJSON(t *testing.T, check func(r *http.Request), body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWeatherAPIFetch(t *testing.T) {
	var query string
	srv := serveJSON(t, func(r *http.Request) {
		assert.Equal(t, "/current.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		query = r.URL.Query().Get("q")
	}, `{"current":{"last_updated_epoch":1718100000,"temp_c":18.5,"feelslike_c":17,
		"humidity":72,"wind_kph":9.4,
		"condition":{"text":"Light rain","icon":"//cdn.weatherapi.com/weather/64x64/day/296.png","code":1183}}}`)

	p := NewWeatherAPIProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	r, err := p.Fetch(context.Background(), weather.Location{City: "Paris", Country: "FR"})
	require.NoError(t, err)
	assert.Equal(t, "Paris,FR", query)
	assert.Equal(t, "weatherapi", r.ProviderName)
	assert.Equal(t, int64(1718100000), r.Timestamp.Unix())
	assert.Equal(t, weather.Celsius(18.5), *r.Weather.Temperature)
	assert.Equal(t, weather.Celsius(17), *r.Weather.FeelsLike)
	assert.InDelta(t, 0.72, *r.Weather.Humidity, 1e-9)
	assert.Equal(t, weather.Kmh(9.4), *r.Weather.WindSpeed)
	assert.Equal(t, weather.ConditionLightRain, *r.Weather.Condition)
}

func TestWeatherAPIMissingFieldsStayUnset(t *testing.T) {
	srv := serveJSON(t, nil, `{"current":{"temp_c":3,"condition":{"text":"Patchy heavy snow"}}}`)
	p := NewWeatherAPIProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	r, err := p.Fetch(context.Background(), weather.Location{City: "Oslo"})
	require.NoError(t, err)
	assert.Equal(t, weather.Celsius(3), *r.Weather.Temperature)
	assert.Nil(t, r.Weather.FeelsLike)
	assert.Nil(t, r.Weather.Humidity)
	assert.Nil(t, r.Weather.WindSpeed)
	assert.Equal(t, weather.ConditionHeavySnow, *r.Weather.Condition)
}

func TestWeatherAPIForecast(t *testing.T) {
	srv := serveJSON(t, func(r *http.Request) {
		assert.Equal(t, "/forecast.json", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("days"))
	}, `{"forecast":{"forecastday":[
		{"date_epoch":1718064000,"day":{"avgtemp_c":20.1,"maxwind_kph":15,"avghumidity":60,
			"condition":{"icon":"//cdn/64x64/day/113.png"}},"astro":{"moon_phase":"Waxing Crescent"}},
		{"date_epoch":1718150400,"day":{"avgtemp_c":18,"condition":{"text":"Sunny"}},"astro":{"moon_phase":"Wobbly"}}
	]}}`)
	p := NewWeatherAPIProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	days, err := p.FetchForecast(context.Background(), weather.Location{City: "Paris"}, 2)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, weather.ConditionClear, *days[0].Weather.Condition)
	assert.Equal(t, weather.MoonWaxingCrescent, *days[0].Weather.MoonPhase)
	assert.Equal(t, weather.Kmh(15), *days[0].Weather.WindSpeed)

	assert.Nil(t, days[1].Weather.WindSpeed)
	assert.Equal(t, weather.ConditionClear, *days[1].Weather.Condition)
	assert.Nil(t, days[1].Weather.MoonPhase)
	assert.Len(t, days[1].Warnings, 1)
}

func TestWeatherAPIRequiresKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "")
	_, err := p.Fetch(context.Background(), weather.Location{City: "Paris"})
	assert.Error(t, err)
}

func TestWeatherAPIBadAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "wrong")
	p.baseURL = srv.URL
	_, err := p.Fetch(context.Background(), weather.Location{City: "Paris"})
	assert.ErrorIs(t, err, weather.ErrBadAuth)
}

func TestMapWeatherAPICondition(t *testing.T) {
	c := mapWeatherAPICondition(weatherAPICondition{Icon: "//cdn.weatherapi.com/weather/64x64/night/389.png"})
	require.NotNil(t, c)
	assert.Equal(t, weather.ConditionThunderyHeavyRain, *c)

	// Unknown icon falls back to the text.
	c = mapWeatherAPICondition(weatherAPICondition{Icon: "//cdn/64x64/day/999.png", Text: "Mist"})
	require.NotNil(t, c)
	assert.Equal(t, weather.ConditionFog, *c)

	assert.Nil(t, mapWeatherAPICondition(weatherAPICondition{}))
}

func TestConditionFromText(t *testing.T) {
	tests := []struct {
		text string
		want weather.Condition
	}{
		{"Thundery outbreaks possible", weather.ConditionThunderyShowers},
		{"Patchy light snow with thunder", weather.ConditionThunderySnowShowers},
		{"Light sleet", weather.ConditionLightSleet},
		{"Blizzard", weather.ConditionHeavySnow},
		{"Moderate rain", weather.ConditionLightRain},
		{"Torrential rain shower", weather.ConditionHeavyRain},
		{"Light rain shower", weather.ConditionLightShowers},
		{"Overcast", weather.ConditionOvercast},
		{"Partly cloudy", weather.ConditionPartlyCloudy},
		{"Sunny", weather.ConditionClear},
	}
	for _, tt := range tests {
		got, ok := conditionFromText(tt.text)
		assert.True(t, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}

	_, ok := conditionFromText("Volcanic ash")
	assert.False(t, ok)
}

func TestOpenWeatherFetch(t *testing.T) {
	srv := serveJSON(t, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "48.856600", q.Get("lat"))
		assert.Empty(t, q.Get("q"))
	}, `{"dt":1718100000,"main":{"temp":21.3,"feels_like":20.9,"humidity":55},
		"wind":{"speed":4.1},"weather":[{"id":803,"description":"broken clouds"}]}`)

	p := NewOpenWeatherProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	lat, lon := 48.8566, 2.3522
	r, err := p.Fetch(context.Background(), weather.Location{City: "Paris", Lat: &lat, Lon: &lon})
	require.NoError(t, err)
	assert.Equal(t, "openweathermap", r.ProviderName)
	assert.Equal(t, weather.Celsius(21.3), *r.Weather.Temperature)
	assert.Equal(t, weather.Ms(4.1), *r.Weather.WindSpeed)
	assert.InDelta(t, 0.55, *r.Weather.Humidity, 1e-9)
	assert.Equal(t, weather.ConditionCloudy, *r.Weather.Condition)
}

func TestOpenWeatherConditionFallsBackToText(t *testing.T) {
	srv := serveJSON(t, nil, `{"main":{"temp":1},"weather":[{"id":999,"description":"light snow"}]}`)
	p := NewOpenWeatherProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	r, err := p.Fetch(context.Background(), weather.Location{City: "Oslo"})
	require.NoError(t, err)
	assert.Equal(t, weather.ConditionLightSnow, *r.Weather.Condition)
	assert.Nil(t, r.Weather.WindSpeed)
}

type fakeGeocoder struct {
	lat, lon float64
	err      error
	calls    int
}

func (g *fakeGeocoder) Geocode(context.Context, weather.Location) (float64, float64, error) {
	g.calls++
	return g.lat, g.lon, g.err
}

func TestOpenMeteoFetch(t *testing.T) {
	srv := serveJSON(t, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "59.910000", q.Get("latitude"))
		assert.Equal(t, "10.750000", q.Get("longitude"))
		assert.Equal(t, "GMT", q.Get("timezone"))
	}, `{"current":{"time":"2024-06-11T10:15","temperature_2m":14.2,"relative_humidity_2m":81,
		"apparent_temperature":13.1,"weather_code":61,"wind_speed_10m":12.6}}`)

	geo := &fakeGeocoder{lat: 59.91, lon: 10.75}
	p := NewOpenMeteoProvider(srv.Client(), geo)
	p.baseURL = srv.URL

	r, err := p.Fetch(context.Background(), weather.Location{City: "Oslo", Country: "NO"})
	require.NoError(t, err)
	assert.Equal(t, 1, geo.calls)
	assert.Equal(t, "2024-06-11T10:15:00Z", r.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, weather.Celsius(14.2), *r.Weather.Temperature)
	assert.Equal(t, weather.Kmh(12.6), *r.Weather.WindSpeed)
	assert.Equal(t, weather.ConditionLightRain, *r.Weather.Condition)
}

func TestOpenMeteoForecast(t *testing.T) {
	srv := serveJSON(t, func(r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("forecast_days"))
	}, `{"daily":{"time":["2024-06-11","2024-06-12"],"weather_code":[3,null],
		"temperature_2m_max":[20,18],"temperature_2m_min":[10,null],"wind_speed_10m_max":[20.5,14]}}`)

	lat, lon := 59.91, 10.75
	p := NewOpenMeteoProvider(srv.Client(), nil)
	p.baseURL = srv.URL

	days, err := p.FetchForecast(context.Background(), weather.Location{City: "Oslo", Lat: &lat, Lon: &lon}, 2)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, weather.Celsius(15), *days[0].Weather.Temperature)
	assert.Equal(t, weather.ConditionOvercast, *days[0].Weather.Condition)
	assert.Nil(t, days[1].Weather.Temperature)
	assert.Nil(t, days[1].Weather.Condition)
	assert.Equal(t, weather.Kmh(14), *days[1].Weather.WindSpeed)
}

func TestOpenMeteoNeedsCoordinates(t *testing.T) {
	p := NewOpenMeteoProvider(http.DefaultClient, nil)
	_, err := p.Fetch(context.Background(), weather.Location{City: "Oslo"})
	assert.Error(t, err)

	boom := errors.New("quota exceeded")
	p = NewOpenMeteoProvider(http.DefaultClient, &fakeGeocoder{err: boom})
	_, err = p.Fetch(context.Background(), weather.Location{City: "Oslo"})
	assert.ErrorIs(t, err, boom)
}
