package weather

import (
	"time"

	"github.com/google/uuid"
)

// AggregateReadings combines multiple provider readings into a single Snapshot.
// Temperatures are averaged in Celsius and wind speeds in km/h, so providers
// reporting in different units are comparable. Conditions are selected by
// majority (first reported wins a tie). Fields no provider reported stay unset.
func AggregateReadings(loc Location, readings []ProviderReading) Snapshot {
	snap := Snapshot{
		ID:       uuid.NewString(),
		Location: loc,
	}
	if len(readings) == 0 {
		snap.Timestamp = time.Now().UTC()
		return snap
	}

	var (
		temp, feels, humidity, wind meanAcc
		moon                        *MoonPhase
		newestTS                    time.Time
	)

	conditionCounts := make(map[Condition]int)
	var conditionOrder []Condition
	providers := make([]ProviderContribution, 0, len(readings))

	for _, r := range readings {
		w := r.Weather
		if w.Temperature != nil {
			temp.add(w.Temperature.AsCelsius().Value())
		}
		if w.FeelsLike != nil {
			feels.add(w.FeelsLike.AsCelsius().Value())
		}
		if w.Humidity != nil {
			humidity.add(*w.Humidity)
		}
		if w.WindSpeed != nil {
			wind.add(w.WindSpeed.AsKmh().Value())
		}
		if w.Condition != nil {
			if conditionCounts[*w.Condition] == 0 {
				conditionOrder = append(conditionOrder, *w.Condition)
			}
			conditionCounts[*w.Condition]++
		}
		if moon == nil && w.MoonPhase != nil {
			m := *w.MoonPhase
			moon = &m
		}

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	if newestTS.IsZero() {
		newestTS = time.Now()
	}
	snap.Timestamp = newestTS.UTC()
	snap.Providers = providers

	if v, ok := temp.mean(); ok {
		t := Celsius(v)
		snap.Temperature = &t
	}
	if v, ok := feels.mean(); ok {
		t := Celsius(v)
		snap.FeelsLike = &t
	}
	if v, ok := humidity.mean(); ok {
		snap.Humidity = &v
	}
	if v, ok := wind.mean(); ok {
		s := Kmh(v)
		snap.WindSpeed = &s
	}

	// Pick majority condition.
	bestCount := 0
	for _, cond := range conditionOrder {
		if count := conditionCounts[cond]; count > bestCount {
			c := cond
			snap.Condition = &c
			bestCount = count
		}
	}

	if moon == nil {
		m := MoonPhaseAt(snap.Timestamp)
		moon = &m
	}
	snap.MoonPhase = moon

	return snap
}

type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v float64) {
	a.sum += v
	a.n++
}

func (a meanAcc) mean() (float64, bool) {
	if a.n == 0 {
		return 0, false
	}
	return a.sum / float64(a.n), true
}
