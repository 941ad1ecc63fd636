package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// WttrInProvider implements weather.Provider for wttr.in's JSON (j1) format.
// It needs no API key.
type WttrInProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewWttrInProvider(client *http.Client) *WttrInProvider {
	return &WttrInProvider{
		name:    "wttr.in",
		baseURL: "https://wttr.in",
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newCircuitBreaker("wttr.in"),
		now:     time.Now,
	}
}

func (p *WttrInProvider) Name() string {
	return p.name
}

func (p *WttrInProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	report, err := p.report(ctx, loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	return report.Current, nil
}

// FetchForecast returns up to days daily readings. wttr.in serves three days.
func (p *WttrInProvider) FetchForecast(ctx context.Context, loc weather.Location, days int) ([]weather.ProviderReading, error) {
	report, err := p.report(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(report.Days) > days {
		return report.Days[:days], nil
	}
	return report.Days, nil
}

// FetchHourly returns the three-hourly slots from the current slot up to
// hours ahead.
func (p *WttrInProvider) FetchHourly(ctx context.Context, loc weather.Location, hours int) ([]weather.ProviderReading, error) {
	report, err := p.report(ctx, loc)
	if err != nil {
		return nil, err
	}
	now := p.now().UTC()
	from := now.Add(-3 * time.Hour)
	until := now.Add(time.Duration(hours) * time.Hour)

	var out []weather.ProviderReading
	for _, r := range report.Hours {
		if r.Timestamp.After(from) && !r.Timestamp.After(until) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (p *WttrInProvider) report(ctx context.Context, loc weather.Location) (WttrInReport, error) {
	buildRequest := func() (*http.Request, error) {
		q := loc.Query()
		if loc.Lat != nil && loc.Lon != nil {
			q = fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon)
		}
		u := fmt.Sprintf("%s/%s?format=j1", p.baseURL, url.PathEscape(q))
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return WttrInReport{}, err
	}
	defer resp.Body.Close()

	return DecodeWttrIn(resp.Body, p.now())
}

// WttrInReport is a decoded wttr.in j1 document.
type WttrInReport struct {
	Current weather.ProviderReading
	Days    []weather.ProviderReading
	Hours   []weather.ProviderReading
}

type wttrValue struct {
	Value string `json:"value"`
}

type wttrResponse struct {
	CurrentCondition []wttrCurrent `json:"current_condition"`
	NearestArea      []wttrArea    `json:"nearest_area"`
	Request          []struct {
		Query string `json:"query"`
		Type  string `json:"type"`
	} `json:"request"`
	Weather []wttrDay `json:"weather"`
}

type wttrCurrent struct {
	FeelsLikeC      string      `json:"FeelsLikeC"`
	FeelsLikeF      string      `json:"FeelsLikeF"`
	Cloudcover      string      `json:"cloudcover"`
	Humidity        string      `json:"humidity"`
	ObservationTime string      `json:"observation_time"`
	PrecipMM        string      `json:"precipMM"`
	Pressure        string      `json:"pressure"`
	TempC           string      `json:"temp_C"`
	TempF           string      `json:"temp_F"`
	WeatherCode     string      `json:"weatherCode"`
	WeatherDesc     []wttrValue `json:"weatherDesc"`
	WindDir16Point  string      `json:"winddir16Point"`
	WindspeedKmph   string      `json:"windspeedKmph"`
	WindspeedMiles  string      `json:"windspeedMiles"`
}

type wttrArea struct {
	AreaName  []wttrValue `json:"areaName"`
	Country   []wttrValue `json:"country"`
	Latitude  string      `json:"latitude"`
	Longitude string      `json:"longitude"`
	Region    []wttrValue `json:"region"`
}

type wttrDay struct {
	Astronomy []wttrAstronomy `json:"astronomy"`
	AvgtempC  string          `json:"avgtempC"`
	MaxtempC  string          `json:"maxtempC"`
	MintempC  string          `json:"mintempC"`
	Date      string          `json:"date"`
	Hourly    []wttrHourly    `json:"hourly"`
}

type wttrAstronomy struct {
	MoonIllumination string `json:"moon_illumination"`
	MoonPhase        string `json:"moon_phase"`
	Moonrise         string `json:"moonrise"`
	Moonset          string `json:"moonset"`
	Sunrise          string `json:"sunrise"`
	Sunset           string `json:"sunset"`
}

type wttrHourly struct {
	Time          string `json:"time"`
	TempC         string `json:"tempC"`
	FeelsLikeC    string `json:"FeelsLikeC"`
	Humidity      string `json:"humidity"`
	WeatherCode   string `json:"weatherCode"`
	WindspeedKmph string `json:"windspeedKmph"`
}

// DecodeWttrIn reads a wttr.in j1 document. wttr.in reports the observation
// clock in UTC without a date, so now anchors it to a day. Forecast dates
// are local to the location and are taken as UTC.
func DecodeWttrIn(r io.Reader, now time.Time) (WttrInReport, error) {
	var payload wttrResponse
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return WttrInReport{}, errors.Wrap(err, "decode wttr.in response")
	}
	if len(payload.CurrentCondition) == 0 {
		return WttrInReport{}, errors.New("wttr.in response has no current_condition")
	}

	const name = "wttr.in"
	var report WttrInReport

	cur := payload.CurrentCondition[0]
	dec := &fieldDecoder{provider: name}
	w := weather.Weather{
		Temperature: dec.temperature("temp_C", cur.TempC, weather.ParseCelsius),
		FeelsLike:   dec.temperature("FeelsLikeC", cur.FeelsLikeC, weather.ParseCelsius),
		Humidity:    dec.humidity("humidity", cur.Humidity),
		Condition:   dec.wwoCondition("weatherCode", cur.WeatherCode),
		WindSpeed:   dec.windSpeed("windspeedKmph", cur.WindspeedKmph, weather.ParseKmh),
	}
	if len(payload.Weather) > 0 && len(payload.Weather[0].Astronomy) > 0 {
		w.MoonPhase = dec.moonPhase("moon_phase", payload.Weather[0].Astronomy[0].MoonPhase)
	}
	report.Current = weather.ProviderReading{
		ProviderName: name,
		Timestamp:    observationTime(cur.ObservationTime, now),
		Weather:      w,
		Warnings:     dec.warnings,
	}

	for _, day := range payload.Weather {
		date, err := time.ParseInLocation("2006-01-02", day.Date, time.UTC)
		if err != nil {
			report.Current.Warnings = append(report.Current.Warnings, fmt.Sprintf("%s: invalid date %q", name, day.Date))
			continue
		}

		dd := &fieldDecoder{provider: name}
		dw := weather.Weather{
			Temperature: dd.temperature("avgtempC", day.AvgtempC, weather.ParseCelsius),
		}
		if len(day.Astronomy) > 0 {
			dw.MoonPhase = dd.moonPhase("moon_phase", day.Astronomy[0].MoonPhase)
		}
		if h, ok := middayHour(day.Hourly); ok {
			dw.Condition = dd.wwoCondition("weatherCode", h.WeatherCode)
			dw.Humidity = dd.humidity("humidity", h.Humidity)
			dw.WindSpeed = dd.windSpeed("windspeedKmph", h.WindspeedKmph, weather.ParseKmh)
		}
		report.Days = append(report.Days, weather.ProviderReading{
			ProviderName: name,
			Timestamp:    date,
			Weather:      dw,
			Warnings:     dd.warnings,
		})

		for _, h := range day.Hourly {
			hhmm, err := strconv.Atoi(h.Time)
			if err != nil {
				continue
			}
			hd := &fieldDecoder{provider: name}
			report.Hours = append(report.Hours, weather.ProviderReading{
				ProviderName: name,
				Timestamp:    date.Add(time.Duration(hhmm/100)*time.Hour + time.Duration(hhmm%100)*time.Minute),
				Weather: weather.Weather{
					Temperature: hd.temperature("tempC", h.TempC, weather.ParseCelsius),
					FeelsLike:   hd.temperature("FeelsLikeC", h.FeelsLikeC, weather.ParseCelsius),
					Humidity:    hd.humidity("humidity", h.Humidity),
					Condition:   hd.wwoCondition("weatherCode", h.WeatherCode),
					WindSpeed:   hd.windSpeed("windspeedKmph", h.WindspeedKmph, weather.ParseKmh),
					MoonPhase:   dw.MoonPhase,
				},
				Warnings: hd.warnings,
			})
		}
	}

	return report, nil
}

// observationTime anchors wttr.in's "07:41 AM" UTC clock to the most recent
// matching instant not after now.
func observationTime(clock string, now time.Time) time.Time {
	now = now.UTC()
	t, err := time.Parse("03:04 PM", clock)
	if err != nil {
		return now
	}
	ts := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	if ts.After(now) {
		ts = ts.AddDate(0, 0, -1)
	}
	return ts
}

// middayHour picks the 12:00 slot, falling back to the first one.
func middayHour(hours []wttrHourly) (wttrHourly, bool) {
	if len(hours) == 0 {
		return wttrHourly{}, false
	}
	for _, h := range hours {
		if h.Time == "1200" {
			return h, true
		}
	}
	return hours[0], true
}
