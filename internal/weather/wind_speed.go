package weather

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// km/h per unit.
const (
	kmhPerKnot = 1.852
	kmhPerMph  = 1.609344
	kmhPerMs   = 3.6
)

// WindSpeedUnit tags the unit a WindSpeed magnitude is expressed in.
type WindSpeedUnit int

const (
	UnitKmh WindSpeedUnit = iota
	UnitKnots
	UnitMph
	UnitMs
)

func (u WindSpeedUnit) String() string {
	switch u {
	case UnitKmh:
		return "km/h"
	case UnitKnots:
		return "kn"
	case UnitMph:
		return "mph"
	case UnitMs:
		return "m/s"
	default:
		return fmt.Sprintf("WindSpeedUnit(%d)", int(u))
	}
}

// ParseWindSpeedUnit accepts the display suffix or a common alias.
func ParseWindSpeedUnit(s string) (WindSpeedUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km/h", "kmh", "kph", "kmph":
		return UnitKmh, nil
	case "kn", "kt", "knots":
		return UnitKnots, nil
	case "mph":
		return UnitMph, nil
	case "m/s", "ms", "mps":
		return UnitMs, nil
	}
	return 0, fmt.Errorf("unknown wind speed unit %q", s)
}

// WindSpeed is a magnitude tagged with its unit, compared through km/h.
type WindSpeed struct {
	unit  WindSpeedUnit
	value float64
}

func Kmh(v float64) WindSpeed   { return WindSpeed{unit: UnitKmh, value: v} }
func Knots(v float64) WindSpeed { return WindSpeed{unit: UnitKnots, value: v} }
func Mph(v float64) WindSpeed   { return WindSpeed{unit: UnitMph, value: v} }
func Ms(v float64) WindSpeed    { return WindSpeed{unit: UnitMs, value: v} }

// ParseWindSpeed parses decimal text as a magnitude in the given unit.
func ParseWindSpeed(s string, unit WindSpeedUnit) (WindSpeed, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return WindSpeed{}, &ParseError{Quantity: "wind speed", Unit: unit.String(), Input: s, Err: err}
	}
	return WindSpeed{unit: unit, value: v}, nil
}

func ParseKmh(s string) (WindSpeed, error)   { return ParseWindSpeed(s, UnitKmh) }
func ParseKnots(s string) (WindSpeed, error) { return ParseWindSpeed(s, UnitKnots) }
func ParseMph(s string) (WindSpeed, error)   { return ParseWindSpeed(s, UnitMph) }
func ParseMs(s string) (WindSpeed, error)    { return ParseWindSpeed(s, UnitMs) }

func (w WindSpeed) Value() float64      { return w.value }
func (w WindSpeed) Unit() WindSpeedUnit { return w.unit }

// AsKmh converts to km/h, the pivot unit.
func (w WindSpeed) AsKmh() WindSpeed {
	switch w.unit {
	case UnitKnots:
		return Kmh(w.value * kmhPerKnot)
	case UnitMph:
		return Kmh(w.value * kmhPerMph)
	case UnitMs:
		return Kmh(w.value * kmhPerMs)
	default:
		return w
	}
}

func (w WindSpeed) AsKnots() WindSpeed {
	if w.unit == UnitKnots {
		return w
	}
	return Knots(w.AsKmh().value / kmhPerKnot)
}

func (w WindSpeed) AsMph() WindSpeed {
	if w.unit == UnitMph {
		return w
	}
	return Mph(w.AsKmh().value / kmhPerMph)
}

func (w WindSpeed) AsMs() WindSpeed {
	if w.unit == UnitMs {
		return w
	}
	return Ms(w.AsKmh().value / kmhPerMs)
}

// In converts to the given unit.
func (w WindSpeed) In(unit WindSpeedUnit) WindSpeed {
	switch unit {
	case UnitKnots:
		return w.AsKnots()
	case UnitMph:
		return w.AsMph()
	case UnitMs:
		return w.AsMs()
	default:
		return w.AsKmh()
	}
}

// Round rounds to whole units, half away from zero.
func (w WindSpeed) Round() WindSpeed {
	w.value = math.Round(w.value)
	return w
}

// Equal reports whether both speeds have the same km/h value.
func (w WindSpeed) Equal(o WindSpeed) bool {
	return w.AsKmh().value == o.AsKmh().value
}

func (w WindSpeed) Compare(o WindSpeed) int {
	return cmp.Compare(w.AsKmh().value, o.AsKmh().value)
}

func (w WindSpeed) Less(o WindSpeed) bool {
	return w.AsKmh().value < o.AsKmh().value
}

func (w WindSpeed) String() string {
	return strconv.FormatFloat(w.value, 'f', -1, 64) + " " + w.unit.String()
}

func (w WindSpeed) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{Value: w.value, Unit: w.unit.String()})
}

func (w *WindSpeed) UnmarshalJSON(data []byte) error {
	var q quantityJSON
	if err := json.Unmarshal(data, &q); err != nil {
		return err
	}
	unit, err := ParseWindSpeedUnit(q.Unit)
	if err != nil {
		return err
	}
	*w = WindSpeed{unit: unit, value: q.Value}
	return nil
}
