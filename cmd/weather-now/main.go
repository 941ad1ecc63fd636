// Command weather-now prints the current wttr.in conditions for one location,
// either as a one-line summary or as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/i474232898/weather-data-aggregation/internal/logging"
	"github.com/i474232898/weather-data-aggregation/internal/weather"
	"github.com/i474232898/weather-data-aggregation/internal/weather/providers"
)

func main() {
	var location = flag.StringP("location", "l", "", "location as City or City,Country")
	var units = flag.StringP("units", "u", "metric", "display units: metric, imperial or si")
	var asJSON = flag.Bool("json", false, "print the reading as JSON")
	var timeout = flag.Duration("timeout", 10*time.Second, "request timeout")
	var logLevel = flag.String("log-level", "warn", "log level")

	flag.Parse()

	log, err := logging.New(*logLevel, "text")
	if err != nil {
		logrus.Fatal(err)
	}

	if *location == "" {
		flag.Usage()
		log.Fatal("please specify a location")
	}

	u, err := weather.ParseUnits(*units)
	if err != nil {
		log.Fatal(err)
	}

	loc := parseLocation(*location)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	p := providers.NewWttrInProvider(&http.Client{Timeout: *timeout})
	reading, err := p.Fetch(ctx, loc)
	if err != nil {
		log.WithField(logging.FieldLocation, loc.Key()).WithError(err).Fatal("fetch failed")
	}
	for _, w := range reading.Warnings {
		log.WithField(logging.FieldProvider, p.Name()).Warn(w)
	}

	w := reading.Weather.In(u)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(w); err != nil {
			log.Fatal(err)
		}
		return
	}
	fmt.Println(w.Summary())
}

func parseLocation(s string) weather.Location {
	city, country, _ := strings.Cut(s, ",")
	return weather.Location{
		City:    strings.TrimSpace(city),
		Country: strings.TrimSpace(country),
	}
}
