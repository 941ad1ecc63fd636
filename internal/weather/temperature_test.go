package weather

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemperatureConversions(t *testing.T) {
	tests := []struct {
		name string
		in   Temperature
		want Temperature
	}{
		{"boiling C to F", Celsius(100).AsFahrenheit(), Fahrenheit(212)},
		{"boiling F to C", Fahrenheit(212).AsCelsius(), Celsius(100)},
		{"freezing C to K", Celsius(0).AsKelvin(), Kelvin(273.15)},
		{"absolute zero K to C", Kelvin(0).AsCelsius(), Celsius(-273.15)},
		{"absolute zero K to F", Kelvin(0).AsFahrenheit().Round(), Fahrenheit(-460)},
		{"body F to K", Fahrenheit(98.6).AsKelvin().Round(), Kelvin(310)},
		{"minus forty", Celsius(-40).AsFahrenheit(), Fahrenheit(-40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want.Unit(), tt.in.Unit())
			assert.InDelta(t, tt.want.Value(), tt.in.Value(), 1e-9)
		})
	}
}

func TestTemperatureConversionIdentity(t *testing.T) {
	c := Celsius(21.5)
	assert.Equal(t, c, c.AsCelsius())

	f := Fahrenheit(70.3)
	assert.Equal(t, f, f.AsFahrenheit())
	assert.Equal(t, f, f.In(UnitFahrenheit))

	k := Kelvin(290)
	assert.Equal(t, k, k.AsKelvin())
}

func TestTemperatureConversionGoesThroughCelsius(t *testing.T) {
	for _, v := range []float64{-50, -0.5, 0, 32, 77.7, 451} {
		f := Fahrenheit(v)
		assert.InDelta(t, f.AsCelsius().AsKelvin().Value(), f.AsKelvin().Value(), 1e-9)

		k := Kelvin(v + 300)
		assert.InDelta(t, k.AsCelsius().AsFahrenheit().Value(), k.AsFahrenheit().Value(), 1e-9)
	}
}

func TestTemperatureEqualAcrossUnits(t *testing.T) {
	assert.True(t, Celsius(100).Equal(Fahrenheit(212)))
	assert.True(t, Fahrenheit(212).Equal(Celsius(100)))
	assert.True(t, Kelvin(0).Equal(Celsius(-273.15)))
	assert.False(t, Celsius(1).Equal(Fahrenheit(1)))
}

func TestTemperatureOrdering(t *testing.T) {
	assert.True(t, Celsius(0).Less(Fahrenheit(100)))
	assert.False(t, Fahrenheit(100).Less(Celsius(0)))
	assert.Equal(t, -1, Celsius(0).Compare(Fahrenheit(100)))
	assert.Equal(t, 1, Kelvin(300).Compare(Celsius(0)))
	assert.Equal(t, 0, Celsius(100).Compare(Fahrenheit(212)))
}

func TestTemperatureClamp(t *testing.T) {
	tests := []struct {
		in   Temperature
		want float64
	}{
		{Celsius(500), 56.7},
		{Celsius(-500), -98},
		{Celsius(20), 20},
		{Fahrenheit(500), 134.1},
		{Fahrenheit(-500), -144},
		{Kelvin(500), 329.85},
		{Kelvin(0), 179},
	}
	for _, tt := range tests {
		got := tt.in.Clamp()
		assert.Equal(t, tt.in.Unit(), got.Unit())
		assert.Equal(t, tt.want, got.Value(), tt.in.String())
		assert.Equal(t, got, got.Clamp(), "clamp is idempotent")
	}
}

func TestTemperatureRound(t *testing.T) {
	assert.Equal(t, Celsius(3), Celsius(2.5).Round())
	assert.Equal(t, Celsius(-3), Celsius(-2.5).Round())
	assert.Equal(t, Fahrenheit(70), Fahrenheit(70.49).Round())
	assert.Equal(t, Kelvin(273), Kelvin(273.15).Round())
}

func TestParseTemperature(t *testing.T) {
	c, err := ParseCelsius(" 21.5 ")
	require.NoError(t, err)
	assert.Equal(t, Celsius(21.5), c)

	f, err := ParseFahrenheit("-3")
	require.NoError(t, err)
	assert.Equal(t, Fahrenheit(-3), f)

	_, err = ParseKelvin("warm")
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "warm", pe.Input)
	assert.Equal(t, "K", pe.Unit)

	_, err = ParseCelsius("")
	assert.Error(t, err)

	for _, in := range []string{"NaN", "nan", "inf", "+Inf", "-Infinity", "0x1p4", "-0X10", "1e999"} {
		_, err = ParseCelsius(in)
		require.True(t, errors.As(err, &pe), in)
		assert.Equal(t, "C", pe.Unit, in)
	}
	_, err = ParseFahrenheit("NaN")
	assert.ErrorIs(t, err, ErrNotDecimal)

	// Leading zeros are still plain decimals.
	c, err = ParseCelsius("007.5")
	require.NoError(t, err)
	assert.Equal(t, Celsius(7.5), c)
}

func TestTemperatureRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		from func(float64) Temperature
		to   TemperatureUnit
	}{
		{"C->F->C", Celsius, UnitFahrenheit},
		{"C->K->C", Celsius, UnitKelvin},
		{"F->C->F", Fahrenheit, UnitCelsius},
		{"F->K->F", Fahrenheit, UnitKelvin},
		{"K->C->K", Kelvin, UnitCelsius},
		{"K->F->K", Kelvin, UnitFahrenheit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range []float64{-98, -40, 0, 21.3, 56.7, 100, 273.15, 329.85} {
				orig := tt.from(v)
				back := orig.In(tt.to).In(orig.Unit())
				assert.Equal(t, orig.Unit(), back.Unit())
				assert.Equal(t, orig.Round(), back.Round(), "%v", v)
			}
		})
	}
}

func TestParseTemperatureUnit(t *testing.T) {
	for in, want := range map[string]TemperatureUnit{
		"C": UnitCelsius, "celsius": UnitCelsius, "°C": UnitCelsius,
		"f": UnitFahrenheit, "Fahrenheit": UnitFahrenheit,
		"K": UnitKelvin,
	} {
		got, err := ParseTemperatureUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTemperatureUnit("R")
	assert.Error(t, err)
}

func TestTemperatureString(t *testing.T) {
	assert.Equal(t, "21.5 °C", Celsius(21.5).String())
	assert.Equal(t, "-3 °F", Fahrenheit(-3).String())
	assert.Equal(t, "300 K", Kelvin(300).String())
	assert.Equal(t, "0 °C", Celsius(0).String())
}

func TestTemperatureJSON(t *testing.T) {
	data, err := json.Marshal(Fahrenheit(70))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":70,"unit":"F"}`, string(data))

	var got Temperature
	require.NoError(t, json.Unmarshal([]byte(`{"value":290.5,"unit":"K"}`), &got))
	assert.Equal(t, Kelvin(290.5), got)

	assert.Error(t, json.Unmarshal([]byte(`{"value":1,"unit":"X"}`), &got))
}
