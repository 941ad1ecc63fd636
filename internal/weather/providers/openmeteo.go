package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo only accepts coordinates; locations without them are resolved
// through the geocoder when one is configured.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder Geocoder
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		httpCfg:  HTTPClientConfig{Client: client},
		circuit:  newCircuitBreaker("openmeteo"),
		geocoder: geo,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

const openMeteoTimeLayout = "2006-01-02T15:04"

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	values := url.Values{}
	values.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m")

	var payload struct {
		Current struct {
			Time                string   `json:"time"`
			Temperature         *float64 `json:"temperature_2m"`
			RelativeHumidity    *float64 `json:"relative_humidity_2m"`
			ApparentTemperature *float64 `json:"apparent_temperature"`
			WeatherCode         *int     `json:"weather_code"`
			WindSpeed           *float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}
	if err := p.get(ctx, loc, values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts, err := time.ParseInLocation(openMeteoTimeLayout, payload.Current.Time, time.UTC)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		Weather: weather.Weather{
			Temperature: optTemperature(payload.Current.Temperature, weather.Celsius),
			FeelsLike:   optTemperature(payload.Current.ApparentTemperature, weather.Celsius),
			Humidity:    optHumidity(payload.Current.RelativeHumidity),
			// Open-Meteo defaults to km/h.
			WindSpeed: optWindSpeed(payload.Current.WindSpeed, weather.Kmh),
			Condition: wmoCondition(payload.Current.WeatherCode),
		},
	}, nil
}

// FetchForecast returns up to days daily readings; the temperature is the
// midpoint of the daily extremes.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	values := url.Values{}
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,wind_speed_10m_max")
	values.Set("forecast_days", strconv.Itoa(days))

	var payload struct {
		Daily struct {
			Time        []string   `json:"time"`
			WeatherCode []*int     `json:"weather_code"`
			TempMax     []*float64 `json:"temperature_2m_max"`
			TempMin     []*float64 `json:"temperature_2m_min"`
			WindMax     []*float64 `json:"wind_speed_10m_max"`
		} `json:"daily"`
	}
	if err := p.get(ctx, loc, values, &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	var readings []weather.ProviderReading
	for i, day := range d.Time {
		if i >= len(d.WeatherCode) || i >= len(d.TempMax) || i >= len(d.TempMin) || i >= len(d.WindMax) {
			break
		}
		ts, err := time.ParseInLocation("2006-01-02", day, time.UTC)
		if err != nil {
			continue
		}
		var temp *weather.Temperature
		if d.TempMax[i] != nil && d.TempMin[i] != nil {
			t := weather.Celsius((*d.TempMax[i] + *d.TempMin[i]) / 2)
			temp = &t
		}
		readings = append(readings, weather.ProviderReading{
			ProviderName: p.name,
			Timestamp:    ts,
			Weather: weather.Weather{
				Temperature: temp,
				WindSpeed:   optWindSpeed(d.WindMax[i], weather.Kmh),
				Condition:   wmoCondition(d.WeatherCode[i]),
			},
		})
	}
	return readings, nil
}

func (p *OpenMeteoProvider) get(ctx context.Context, loc weather.Location, values url.Values, out interface{}) error {
	lat, lon, err := p.coordinates(ctx, loc)
	if err != nil {
		return err
	}

	buildRequest := func() (*http.Request, error) {
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("timezone", "GMT")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode openmeteo response")
}

func (p *OpenMeteoProvider) coordinates(ctx context.Context, loc weather.Location) (float64, float64, error) {
	if loc.Lat != nil && loc.Lon != nil {
		return *loc.Lat, *loc.Lon, nil
	}
	if p.geocoder == nil {
		return 0, 0, fmt.Errorf("openmeteo requires latitude and longitude")
	}
	return p.geocoder.Geocode(ctx, loc)
}

func wmoCondition(code *int) *weather.Condition {
	if code == nil {
		return nil
	}
	return conditionPtr(weather.ConditionFromWMO(*code))
}
