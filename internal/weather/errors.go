package weather

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrBadAuth is returned when a provider rejects the configured credentials.
	ErrBadAuth = errors.New("provider rejected credentials")
	// ErrNoProviders is returned when the service has nothing to fetch from.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoData is returned when no provider produced a usable reading.
	ErrNoData = errors.New("no weather data available")
)

// ParseError reports provider text that is not a valid decimal magnitude.
type ParseError struct {
	Quantity string
	Unit     string
	Input    string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s in %s: %q", e.Quantity, e.Unit, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrNotDecimal is wrapped by a ParseError when the text parses as a float
// but is not a finite decimal number, such as "NaN", "inf" or "0x1p4".
var ErrNotDecimal = errors.New("not a finite decimal number")

// parseDecimal parses trimmed decimal text into a finite float64.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, ErrNotDecimal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotDecimal
	}
	return v, nil
}

// RateLimitedError is returned when a provider answers 429. RetryAfter is
// zero when the provider did not say.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}
