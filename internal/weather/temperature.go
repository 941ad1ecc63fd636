package weather

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Hottest and coldest temperatures recorded on Earth.
const (
	lowestC  = -98.0
	lowestF  = -144.0
	lowestK  = 179.0
	highestC = 56.7
	highestF = 134.1
	highestK = 329.85
)

// TemperatureUnit tags the unit a Temperature magnitude is expressed in.
type TemperatureUnit int

const (
	UnitCelsius TemperatureUnit = iota
	UnitFahrenheit
	UnitKelvin
)

// String returns the unit letter: C, F or K.
func (u TemperatureUnit) String() string {
	switch u {
	case UnitCelsius:
		return "C"
	case UnitFahrenheit:
		return "F"
	case UnitKelvin:
		return "K"
	default:
		return fmt.Sprintf("TemperatureUnit(%d)", int(u))
	}
}

// ParseTemperatureUnit accepts a unit letter or name, case-insensitive.
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "°c", "celsius":
		return UnitCelsius, nil
	case "f", "°f", "fahrenheit":
		return UnitFahrenheit, nil
	case "k", "kelvin":
		return UnitKelvin, nil
	}
	return 0, fmt.Errorf("unknown temperature unit %q", s)
}

// Temperature is a magnitude tagged with its unit. Two temperatures compare
// by their Celsius value, so Celsius(100) equals Fahrenheit(212).
type Temperature struct {
	unit  TemperatureUnit
	value float64
}

func Celsius(v float64) Temperature    { return Temperature{unit: UnitCelsius, value: v} }
func Fahrenheit(v float64) Temperature { return Temperature{unit: UnitFahrenheit, value: v} }
func Kelvin(v float64) Temperature     { return Temperature{unit: UnitKelvin, value: v} }

// ParseTemperature parses decimal text as a magnitude in the given unit.
func ParseTemperature(s string, unit TemperatureUnit) (Temperature, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return Temperature{}, &ParseError{Quantity: "temperature", Unit: unit.String(), Input: s, Err: err}
	}
	return Temperature{unit: unit, value: v}, nil
}

func ParseCelsius(s string) (Temperature, error)    { return ParseTemperature(s, UnitCelsius) }
func ParseFahrenheit(s string) (Temperature, error) { return ParseTemperature(s, UnitFahrenheit) }
func ParseKelvin(s string) (Temperature, error)     { return ParseTemperature(s, UnitKelvin) }

// Value returns the magnitude in the temperature's own unit.
func (t Temperature) Value() float64 { return t.value }

// Unit returns the unit tag.
func (t Temperature) Unit() TemperatureUnit { return t.unit }

// AsCelsius converts to Celsius. Celsius is the pivot for every other conversion.
func (t Temperature) AsCelsius() Temperature {
	switch t.unit {
	case UnitFahrenheit:
		return Celsius((t.value - 32) * 5 / 9)
	case UnitKelvin:
		return Celsius(t.value - 273.15)
	default:
		return t
	}
}

// AsFahrenheit converts to Fahrenheit.
func (t Temperature) AsFahrenheit() Temperature {
	switch t.unit {
	case UnitFahrenheit:
		return t
	case UnitCelsius:
		return Fahrenheit(t.value*9/5 + 32)
	default:
		return t.AsCelsius().AsFahrenheit()
	}
}

// AsKelvin converts to Kelvin.
func (t Temperature) AsKelvin() Temperature {
	switch t.unit {
	case UnitKelvin:
		return t
	case UnitCelsius:
		return Kelvin(t.value + 273.15)
	default:
		return t.AsCelsius().AsKelvin()
	}
}

// In converts to the given unit.
func (t Temperature) In(unit TemperatureUnit) Temperature {
	switch unit {
	case UnitFahrenheit:
		return t.AsFahrenheit()
	case UnitKelvin:
		return t.AsKelvin()
	default:
		return t.AsCelsius()
	}
}

// Clamp bounds the temperature between the lowest and highest temperatures
// recorded on Earth, expressed in its current unit.
func (t Temperature) Clamp() Temperature {
	switch t.unit {
	case UnitFahrenheit:
		t.value = math.Min(math.Max(t.value, lowestF), highestF)
	case UnitKelvin:
		t.value = math.Min(math.Max(t.value, lowestK), highestK)
	default:
		t.value = math.Min(math.Max(t.value, lowestC), highestC)
	}
	return t
}

// Round rounds to whole units, half away from zero.
func (t Temperature) Round() Temperature {
	t.value = math.Round(t.value)
	return t
}

// Equal reports whether both temperatures have the same Celsius value.
// No tolerance is applied; round both sides first when that matters.
func (t Temperature) Equal(o Temperature) bool {
	return t.AsCelsius().value == o.AsCelsius().value
}

// Compare orders temperatures by their Celsius value. NaN magnitudes have no
// meaningful order.
func (t Temperature) Compare(o Temperature) int {
	return cmp.Compare(t.AsCelsius().value, o.AsCelsius().value)
}

// Less reports whether t is colder than o.
func (t Temperature) Less(o Temperature) bool {
	return t.AsCelsius().value < o.AsCelsius().value
}

func (t Temperature) String() string {
	v := strconv.FormatFloat(t.value, 'f', -1, 64)
	if t.unit == UnitKelvin {
		return v + " K"
	}
	return v + " °" + t.unit.String()
}

type quantityJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// MarshalJSON encodes as {"value":21.5,"unit":"C"}.
func (t Temperature) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{Value: t.value, Unit: t.unit.String()})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (t *Temperature) UnmarshalJSON(data []byte) error {
	var q quantityJSON
	if err := json.Unmarshal(data, &q); err != nil {
		return err
	}
	unit, err := ParseTemperatureUnit(q.Unit)
	if err != nil {
		return err
	}
	*t = Temperature{unit: unit, value: q.Value}
	return nil
}
