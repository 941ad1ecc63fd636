package weather

import (
	"strconv"
	"strings"
)

// Condition represents a normalized sky state. The zero value means no
// condition is known.
type Condition string

const (
	// ConditionClear is little or no cloud; also called sunny.
	ConditionClear        Condition = "clear"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionCloudy       Condition = "cloudy"
	// ConditionOvercast is very cloudy.
	ConditionOvercast            Condition = "overcast"
	ConditionFog                 Condition = "fog"
	ConditionLightShowers        Condition = "light_showers"
	ConditionHeavyShowers        Condition = "heavy_showers"
	ConditionThunderyShowers     Condition = "thundery_showers"
	ConditionLightRain           Condition = "light_rain"
	ConditionHeavyRain           Condition = "heavy_rain"
	ConditionThunderyHeavyRain   Condition = "thundery_heavy_rain"
	ConditionLightSleet          Condition = "light_sleet"
	ConditionLightSleetShowers   Condition = "light_sleet_showers"
	ConditionLightSnowShowers    Condition = "light_snow_showers"
	ConditionHeavySnowShowers    Condition = "heavy_snow_showers"
	ConditionThunderySnowShowers Condition = "thundery_snow_showers"
	ConditionLightSnow           Condition = "light_snow"
	ConditionHeavySnow           Condition = "heavy_snow"
)

// Labels and glyphs follow wttr.in's symbol table.
var conditionDisplay = map[Condition]struct{ description, symbol string }{
	ConditionClear:               {"Clear", "☀️"},
	ConditionPartlyCloudy:        {"Partly cloudy", "⛅️"},
	ConditionCloudy:              {"Cloudy", "☁️"},
	ConditionOvercast:            {"Overcast", "☁️"},
	ConditionFog:                 {"Fog", "🌫"},
	ConditionLightShowers:        {"Light showers", "🌦"},
	ConditionHeavyShowers:        {"Heavy showers", "🌧"},
	ConditionThunderyShowers:     {"Thundery showers", "⛈"},
	ConditionLightRain:           {"Light rain", "🌦"},
	ConditionHeavyRain:           {"Heavy rain", "🌧"},
	ConditionThunderyHeavyRain:   {"Thundery heavy rain", "🌩"},
	ConditionLightSleet:          {"Light sleet", "🌧"},
	ConditionLightSleetShowers:   {"Light sleet showers", "🌧"},
	ConditionLightSnowShowers:    {"Light snow showers", "🌨"},
	ConditionHeavySnowShowers:    {"Heavy snow showers", "❄️"},
	ConditionThunderySnowShowers: {"Thundery snow showers", "⛈"},
	ConditionLightSnow:           {"Light snow", "🌨"},
	ConditionHeavySnow:           {"Heavy snow", "❄️"},
}

const unknownSymbol = "✨"

// Valid reports whether c is one of the declared conditions.
func (c Condition) Valid() bool {
	_, ok := conditionDisplay[c]
	return ok
}

// Description returns a human readable label, or "Unknown".
func (c Condition) Description() string {
	if d, ok := conditionDisplay[c]; ok {
		return d.description
	}
	return "Unknown"
}

// Symbol returns the display glyph for the condition.
func (c Condition) Symbol() string {
	if d, ok := conditionDisplay[c]; ok {
		return d.symbol
	}
	return unknownSymbol
}

func (c Condition) String() string {
	return c.Description()
}

// World Weather Online icon codes, as served by wttr.in and WeatherAPI.com.
// Each provider code keeps its own entry even when several share a condition.
//
// See: https://www.worldweatheronline.com/developer/api/docs/weather-icons.aspx
var wwoConditions = map[int]Condition{
	113: ConditionClear,
	116: ConditionPartlyCloudy,
	119: ConditionCloudy,
	122: ConditionOvercast,

	143: ConditionFog,
	248: ConditionFog,
	260: ConditionFog,

	176: ConditionLightShowers,
	263: ConditionLightShowers,
	353: ConditionLightShowers,

	179: ConditionLightSleetShowers,
	362: ConditionLightSleetShowers,
	365: ConditionLightSleetShowers,
	374: ConditionLightSleetShowers,

	182: ConditionLightSleet,
	185: ConditionLightSleet,
	281: ConditionLightSleet,
	284: ConditionLightSleet,
	311: ConditionLightSleet,
	314: ConditionLightSleet,
	317: ConditionLightSleet,
	350: ConditionLightSleet,
	377: ConditionLightSleet,

	200: ConditionThunderyShowers,
	386: ConditionThunderyShowers,

	227: ConditionLightSnow,
	320: ConditionLightSnow,

	230: ConditionHeavySnow,
	338: ConditionHeavySnow,

	266: ConditionLightRain,
	293: ConditionLightRain,
	296: ConditionLightRain,

	299: ConditionHeavyShowers,
	305: ConditionHeavyShowers,
	356: ConditionHeavyShowers,

	302: ConditionHeavyRain,
	308: ConditionHeavyRain,
	359: ConditionHeavyRain,

	323: ConditionLightSnowShowers,
	326: ConditionLightSnowShowers,
	368: ConditionLightSnowShowers,

	329: ConditionHeavySnow,
	332: ConditionHeavySnow,

	335: ConditionHeavySnowShowers,
	371: ConditionHeavySnowShowers,
	395: ConditionHeavySnowShowers,

	389: ConditionThunderyHeavyRain,

	392: ConditionThunderySnowShowers,
}

// ConditionFromWWO looks up a World Weather Online code. The boolean is false
// when the code has no mapping.
func ConditionFromWWO(code int) (Condition, bool) {
	c, ok := wwoConditions[code]
	return c, ok
}

// ConditionFromWWOString looks up a code delivered as text. Malformed input
// has no mapping.
func ConditionFromWWOString(s string) (Condition, bool) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return ConditionFromWWO(code)
}

// WMO weather interpretation codes used by Open-Meteo.
var wmoConditions = map[int]Condition{
	0:  ConditionClear,
	1:  ConditionClear,
	2:  ConditionPartlyCloudy,
	3:  ConditionOvercast,
	45: ConditionFog,
	48: ConditionFog,
	51: ConditionLightRain,
	53: ConditionLightRain,
	55: ConditionLightRain,
	56: ConditionLightSleet,
	57: ConditionLightSleet,
	61: ConditionLightRain,
	63: ConditionHeavyRain,
	65: ConditionHeavyRain,
	66: ConditionLightSleet,
	67: ConditionLightSleet,
	71: ConditionLightSnow,
	73: ConditionHeavySnow,
	75: ConditionHeavySnow,
	77: ConditionLightSnow,
	80: ConditionLightShowers,
	81: ConditionHeavyShowers,
	82: ConditionHeavyShowers,
	85: ConditionLightSnowShowers,
	86: ConditionHeavySnowShowers,
	95: ConditionThunderyShowers,
	96: ConditionThunderyHeavyRain,
	99: ConditionThunderyHeavyRain,
}

// ConditionFromWMO looks up an Open-Meteo weather code.
func ConditionFromWMO(code int) (Condition, bool) {
	c, ok := wmoConditions[code]
	return c, ok
}

// OpenWeatherMap condition ids.
//
// See: https://openweathermap.org/weather-conditions
var openWeatherConditions = map[int]Condition{
	200: ConditionThunderyShowers,
	201: ConditionThunderyShowers,
	202: ConditionThunderyHeavyRain,
	210: ConditionThunderyShowers,
	211: ConditionThunderyShowers,
	212: ConditionThunderyHeavyRain,
	221: ConditionThunderyHeavyRain,
	230: ConditionThunderyShowers,
	231: ConditionThunderyShowers,
	232: ConditionThunderyHeavyRain,

	300: ConditionLightRain,
	301: ConditionLightRain,
	302: ConditionLightRain,
	310: ConditionLightRain,
	311: ConditionLightRain,
	312: ConditionHeavyRain,
	313: ConditionLightShowers,
	314: ConditionHeavyShowers,
	321: ConditionLightShowers,

	500: ConditionLightRain,
	501: ConditionLightRain,
	502: ConditionHeavyRain,
	503: ConditionHeavyRain,
	504: ConditionHeavyRain,
	511: ConditionLightSleet,
	520: ConditionLightShowers,
	521: ConditionHeavyShowers,
	522: ConditionHeavyShowers,
	531: ConditionHeavyShowers,

	600: ConditionLightSnow,
	601: ConditionHeavySnow,
	602: ConditionHeavySnow,
	611: ConditionLightSleet,
	612: ConditionLightSleetShowers,
	613: ConditionLightSleetShowers,
	615: ConditionLightSleet,
	616: ConditionLightSleet,
	620: ConditionLightSnowShowers,
	621: ConditionHeavySnowShowers,
	622: ConditionHeavySnowShowers,

	701: ConditionFog,
	711: ConditionFog,
	721: ConditionFog,
	741: ConditionFog,

	800: ConditionClear,
	801: ConditionPartlyCloudy,
	802: ConditionPartlyCloudy,
	803: ConditionCloudy,
	804: ConditionOvercast,
}

// ConditionFromOpenWeather looks up an OpenWeatherMap condition id.
func ConditionFromOpenWeather(id int) (Condition, bool) {
	c, ok := openWeatherConditions[id]
	return c, ok
}
