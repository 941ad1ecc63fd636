package weather

import (
	"fmt"
	"strings"
	"time"
)

// Weather is a provider-agnostic observation. Every field is optional because
// a provider response may omit any of them.
type Weather struct {
	Temperature *Temperature `json:"temperature,omitempty"`
	FeelsLike   *Temperature `json:"feelsLike,omitempty"`
	Condition   *Condition   `json:"condition,omitempty"`
	// Humidity is a fraction in [0, 1].
	Humidity  *float64   `json:"humidity,omitempty"`
	MoonPhase *MoonPhase `json:"moonPhase,omitempty"`
	WindSpeed *WindSpeed `json:"windSpeed,omitempty"`
}

// In returns a copy with quantities converted to the given display units.
func (w Weather) In(u Units) Weather {
	out := w
	if w.Temperature != nil {
		t := w.Temperature.In(u.Temperature)
		out.Temperature = &t
	}
	if w.FeelsLike != nil {
		t := w.FeelsLike.In(u.Temperature)
		out.FeelsLike = &t
	}
	if w.WindSpeed != nil {
		s := w.WindSpeed.In(u.WindSpeed)
		out.WindSpeed = &s
	}
	return out
}

// Summary renders a one-line widget text such as "☀️ 21 °C 12 km/h 🌒".
// Absent fields are skipped.
func (w Weather) Summary() string {
	var parts []string
	if w.Condition != nil {
		parts = append(parts, w.Condition.Symbol())
	}
	if w.Temperature != nil {
		parts = append(parts, w.Temperature.Round().String())
	}
	if w.WindSpeed != nil {
		parts = append(parts, w.WindSpeed.Round().String())
	}
	if w.Humidity != nil {
		parts = append(parts, fmt.Sprintf("%.0f%%", *w.Humidity*100))
	}
	if w.MoonPhase != nil {
		parts = append(parts, w.MoonPhase.String())
	}
	return strings.Join(parts, " ")
}

// Units is a display preset pairing a temperature and a wind speed unit.
type Units struct {
	Name        string          `json:"name"`
	Temperature TemperatureUnit `json:"-"`
	WindSpeed   WindSpeedUnit   `json:"-"`
}

var (
	UnitsMetric   = Units{Name: "metric", Temperature: UnitCelsius, WindSpeed: UnitKmh}
	UnitsImperial = Units{Name: "imperial", Temperature: UnitFahrenheit, WindSpeed: UnitMph}
	UnitsSI       = Units{Name: "si", Temperature: UnitKelvin, WindSpeed: UnitMs}
)

// ParseUnits resolves a preset name. Empty input selects metric.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric":
		return UnitsMetric, nil
	case "imperial", "us":
		return UnitsImperial, nil
	case "si":
		return UnitsSI, nil
	}
	return Units{}, fmt.Errorf("unknown units %q", s)
}

// Location represents a logical place for which we track weather.
// City/Country must be provided; Lat/Lon are optional.
type Location struct {
	City    string   `json:"city" yaml:"city"`
	Country string   `json:"country" yaml:"country"`
	Lat     *float64 `json:"lat,omitempty" yaml:"lat"`
	Lon     *float64 `json:"lon,omitempty" yaml:"lon"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Query returns the free-form "City,Country" form most providers accept.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return l.City + "," + l.Country
}

// Snapshot is the aggregated weather for a location at a point in time.
type Snapshot struct {
	ID        string    `json:"id"`
	Location  Location  `json:"location"`
	Timestamp time.Time `json:"timestamp"` // always UTC
	Weather

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// In returns a copy of the snapshot in the given display units.
func (s Snapshot) In(u Units) Snapshot {
	s.Weather = s.Weather.In(u)
	return s
}

// Forecast is a sequence of snapshots ordered by Timestamp ascending.
type Forecast []Snapshot

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}
