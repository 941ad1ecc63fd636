package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

const userAgent = "weather-data-aggregation/1.0"

// HTTPClientConfig bundles the HTTP client used for outbound provider calls.
type HTTPClientConfig struct {
	Client *http.Client
}

var (
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"provider": name,
				"from":     from.String(),
				"to":       to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
}

// doRequest executes a single attempt of the request behind the circuit
// breaker and classifies non-2xx answers. The caller closes the body.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if statusErr := classifyStatus(resp); statusErr != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, statusErr
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return weather.ErrBadAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		return &weather.RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())}
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
	}
	return nil
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if ts, err := http.ParseTime(v); err == nil && ts.After(now) {
		return ts.Sub(now)
	}
	return 0
}

// fieldDecoder turns provider text fields into quantities, collecting a
// warning for every malformed value instead of substituting a default.
type fieldDecoder struct {
	provider string
	warnings []string
}

func (d *fieldDecoder) warnf(format string, args ...interface{}) {
	d.warnings = append(d.warnings, d.provider+": "+fmt.Sprintf(format, args...))
}

func (d *fieldDecoder) temperature(field, s string, parse func(string) (weather.Temperature, error)) *weather.Temperature {
	if s == "" {
		return nil
	}
	t, err := parse(s)
	if err != nil {
		d.warnf("%s: %v", field, err)
		return nil
	}
	return &t
}

func (d *fieldDecoder) windSpeed(field, s string, parse func(string) (weather.WindSpeed, error)) *weather.WindSpeed {
	if s == "" {
		return nil
	}
	w, err := parse(s)
	if err != nil {
		d.warnf("%s: %v", field, err)
		return nil
	}
	return &w
}

// humidity converts a percentage to a fraction.
func (d *fieldDecoder) humidity(field, s string) *float64 {
	if s == "" {
		return nil
	}
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(pct) || math.IsInf(pct, 0) {
		d.warnf("%s: invalid humidity %q", field, s)
		return nil
	}
	return humidityFraction(pct)
}

func (d *fieldDecoder) wwoCondition(field, s string) *weather.Condition {
	if s == "" {
		return nil
	}
	c, ok := weather.ConditionFromWWOString(s)
	if !ok {
		d.warnf("%s: no condition for code %q", field, s)
		return nil
	}
	return &c
}

func (d *fieldDecoder) moonPhase(field, s string) *weather.MoonPhase {
	if s == "" {
		return nil
	}
	m, ok := weather.ParseMoonPhase(s)
	if !ok {
		d.warnf("%s: unknown moon phase %q", field, s)
		return nil
	}
	return &m
}

func humidityFraction(pct float64) *float64 {
	f := pct / 100
	return &f
}

// optHumidity converts an optional percentage.
func optHumidity(pct *float64) *float64 {
	if pct == nil {
		return nil
	}
	return humidityFraction(*pct)
}

// optTemperature tags an optional magnitude with a unit constructor such as
// weather.Celsius.
func optTemperature(v *float64, unit func(float64) weather.Temperature) *weather.Temperature {
	if v == nil {
		return nil
	}
	t := unit(*v)
	return &t
}

func optWindSpeed(v *float64, unit func(float64) weather.WindSpeed) *weather.WindSpeed {
	if v == nil {
		return nil
	}
	w := unit(*v)
	return &w
}

func conditionPtr(c weather.Condition, ok bool) *weather.Condition {
	if !ok {
		return nil
	}
	return &c
}
