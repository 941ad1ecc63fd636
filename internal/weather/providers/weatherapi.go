package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-data-aggregation/internal/common"
	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	var payload struct {
		Current struct {
			LastUpdatedEpoch int64               `json:"last_updated_epoch"`
			TempC            *float64            `json:"temp_c"`
			FeelsLikeC       *float64            `json:"feelslike_c"`
			Humidity         *float64            `json:"humidity"`
			WindKph          *float64            `json:"wind_kph"`
			Condition        weatherAPICondition `json:"condition"`
		} `json:"current"`
	}
	if err := p.get(ctx, "current.json", loc, nil, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	if payload.Current.LastUpdatedEpoch == 0 {
		ts = time.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		Weather: weather.Weather{
			Temperature: optTemperature(payload.Current.TempC, weather.Celsius),
			FeelsLike:   optTemperature(payload.Current.FeelsLikeC, weather.Celsius),
			Humidity:    optHumidity(payload.Current.Humidity),
			WindSpeed:   optWindSpeed(payload.Current.WindKph, weather.Kmh),
			Condition:   mapWeatherAPICondition(payload.Current.Condition),
		},
	}, nil
}

// FetchForecast returns up to days daily readings.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				DateEpoch int64 `json:"date_epoch"`
				Day       struct {
					AvgTempC    *float64            `json:"avgtemp_c"`
					MaxWindKph  *float64            `json:"maxwind_kph"`
					AvgHumidity *float64            `json:"avghumidity"`
					Condition   weatherAPICondition `json:"condition"`
				} `json:"day"`
				Astro struct {
					MoonPhase string `json:"moon_phase"`
				} `json:"astro"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	extra := url.Values{}
	extra.Set("days", strconv.Itoa(days))
	if err := p.get(ctx, "forecast.json", loc, extra, &payload); err != nil {
		return nil, err
	}

	readings := make([]weather.ProviderReading, 0, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		dec := &fieldDecoder{provider: p.name}
		readings = append(readings, weather.ProviderReading{
			ProviderName: p.name,
			Timestamp:    time.Unix(fd.DateEpoch, 0).UTC(),
			Weather: weather.Weather{
				Temperature: optTemperature(fd.Day.AvgTempC, weather.Celsius),
				Humidity:    optHumidity(fd.Day.AvgHumidity),
				WindSpeed:   optWindSpeed(fd.Day.MaxWindKph, weather.Kmh),
				Condition:   mapWeatherAPICondition(fd.Day.Condition),
				MoonPhase:   dec.moonPhase("moon_phase", fd.Astro.MoonPhase),
			},
			Warnings: dec.warnings,
		})
	}
	return readings, nil
}

func (p *WeatherAPIProvider) get(ctx context.Context, endpoint string, loc weather.Location, extra url.Values, out interface{}) error {
	if p.apiKey == "" {
		return fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, v := range extra {
			values[k] = v
		}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		if loc.Lat != nil && loc.Lon != nil {
			values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
		} else {
			values.Set("q", loc.Query())
		}

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return errors.Wrapf(json.NewDecoder(resp.Body).Decode(out), "decode weatherapi %s", endpoint)
}

// mapWeatherAPICondition resolves the condition through the icon file name,
// which is a World Weather Online code (".../64x64/day/113.png"). The text is
// used when the icon is missing.
func mapWeatherAPICondition(c weatherAPICondition) *weather.Condition {
	if c.Icon != "" {
		base := strings.TrimSuffix(path.Base(c.Icon), path.Ext(c.Icon))
		if cond, ok := weather.ConditionFromWWOString(base); ok {
			return &cond
		}
	}
	return conditionPtr(conditionFromText(c.Text))
}

// conditionFromText is a keyword fallback for free-form provider descriptions.
func conditionFromText(text string) (weather.Condition, bool) {
	t := strings.TrimSpace(text)
	switch {
	case t == "":
		return "", false
	case common.ContainsAnyFold(t, "thunder"):
		if common.ContainsAnyFold(t, "snow") {
			return weather.ConditionThunderySnowShowers, true
		}
		return weather.ConditionThunderyShowers, true
	case common.ContainsAnyFold(t, "sleet", "ice pellets", "freezing"):
		return weather.ConditionLightSleet, true
	case common.ContainsAnyFold(t, "blizzard", "heavy snow"):
		return weather.ConditionHeavySnow, true
	case common.ContainsAnyFold(t, "snow"):
		return weather.ConditionLightSnow, true
	case common.ContainsAnyFold(t, "heavy rain", "torrential"):
		return weather.ConditionHeavyRain, true
	case common.ContainsAnyFold(t, "shower"):
		return weather.ConditionLightShowers, true
	case common.ContainsAnyFold(t, "rain", "drizzle"):
		return weather.ConditionLightRain, true
	case common.ContainsAnyFold(t, "fog", "mist", "haze"):
		return weather.ConditionFog, true
	case common.ContainsAnyFold(t, "overcast"):
		return weather.ConditionOvercast, true
	case common.ContainsAnyFold(t, "partly"):
		return weather.ConditionPartlyCloudy, true
	case common.ContainsAnyFold(t, "cloud"):
		return weather.ConditionCloudy, true
	case common.ContainsAnyFold(t, "sunny", "clear"):
		return weather.ConditionClear, true
	}
	return "", false
}
