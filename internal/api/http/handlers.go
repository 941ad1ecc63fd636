package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

type forecastFunc func(ctx context.Context, loc weather.Location, n int) (weather.Forecast, error)

// handleForecast serves both the daily and hourly forecasts; param names the
// count query parameter and limit its upper bound.
func handleForecast(c *fiber.Ctx, defaultUnits weather.Units, param string, limit int, fetch forecastFunc) error {
	locReq, err := parseLocationQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	units, err := parseUnits(c, defaultUnits)
	if err != nil {
		return err
	}

	n, err := strconv.Atoi(c.Query(param))
	if err == nil {
		err = validate.Var(n, fmt.Sprintf("gte=1,lte=%d", limit))
	}
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s must be between 1 and %d", param, limit))
	}

	loc := locReq.toLocation()
	forecast, err := fetch(c.UserContext(), loc, n)
	if err != nil {
		if errors.Is(err, weather.ErrNoData) {
			return fiber.NewError(fiber.StatusBadGateway, "no provider returned forecast data")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch forecast")
	}
	for i := range forecast {
		forecast[i] = forecast[i].In(units)
	}

	return c.JSON(fiber.Map{
		"location": loc,
		param:      n,
		"units":    units.Name,
		"forecast": forecast,
	})
}

type convertQuery struct {
	Value string `validate:"required"`
	From  string `validate:"required"`
	To    string `validate:"required"`
}

func bindConvert(c *fiber.Ctx) (convertQuery, error) {
	q := convertQuery{
		Value: c.Query("value"),
		From:  c.Query("from"),
		To:    c.Query("to"),
	}
	if err := validate.Struct(q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "value, from and to are required")
	}
	return q, nil
}

func handleConvertTemperature(c *fiber.Ctx) error {
	q, err := bindConvert(c)
	if err != nil {
		return err
	}
	from, err := weather.ParseTemperatureUnit(q.From)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	to, err := weather.ParseTemperatureUnit(q.To)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	in, err := weather.ParseTemperature(q.Value, from)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	out := in.In(to)
	if c.QueryBool("clamp") {
		out = out.Clamp()
	}
	if c.QueryBool("round") {
		out = out.Round()
	}

	return c.JSON(fiber.Map{
		"input":   in,
		"result":  out,
		"display": out.String(),
	})
}

func handleConvertWind(c *fiber.Ctx) error {
	q, err := bindConvert(c)
	if err != nil {
		return err
	}
	from, err := weather.ParseWindSpeedUnit(q.From)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	to, err := weather.ParseWindSpeedUnit(q.To)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	in, err := weather.ParseWindSpeed(q.Value, from)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	out := in.In(to)
	if c.QueryBool("round") {
		out = out.Round()
	}

	return c.JSON(fiber.Map{
		"input":   in,
		"result":  out,
		"display": out.String(),
	})
}

// handleCondition looks up a World Weather Online code.
func handleCondition(c *fiber.Ctx) error {
	code, err := strconv.Atoi(c.Params("code"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "code must be an integer")
	}
	cond, ok := weather.ConditionFromWWO(code)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no condition for code %d", code))
	}
	return c.JSON(fiber.Map{
		"code":        code,
		"condition":   cond,
		"description": cond.Description(),
		"symbol":      cond.Symbol(),
	})
}
