// Package export pushes stored snapshots to external time-series databases.
package export

import (
	"context"
	"sort"
	"strings"
	"time"

	influx "github.com/influxdata/influxdb/client/v2"
	"github.com/pkg/errors"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// InfluxConfig describes the InfluxDB 1.x endpoint.
type InfluxConfig struct {
	Addr        string
	Username    string
	Password    string
	Database    string
	Measurement string
}

// InfluxSink writes one point per snapshot.
type InfluxSink struct {
	client      influx.Client
	database    string
	measurement string
}

// NewInfluxSink creates the HTTP client. No connection is made until the
// first write.
func NewInfluxSink(cfg InfluxConfig) (*InfluxSink, error) {
	c, err := influx.NewHTTPClient(influx.HTTPConfig{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create influx client")
	}

	measurement := cfg.Measurement
	if measurement == "" {
		measurement = "weather"
	}
	return &InfluxSink{client: c, database: cfg.Database, measurement: measurement}, nil
}

// Point converts a snapshot to an InfluxDB point. Temperatures are written
// in Celsius and wind in km/h whatever unit the snapshot holds.
func Point(measurement string, snap weather.Snapshot) (*influx.Point, error) {
	names := make([]string, 0, len(snap.Providers))
	for _, p := range snap.Providers {
		names = append(names, p.ProviderName)
	}
	sort.Strings(names)

	tags := map[string]string{
		"city":    snap.Location.City,
		"country": snap.Location.Country,
	}
	if len(names) > 0 {
		tags["providers"] = strings.Join(names, ",")
	}

	fields := make(map[string]interface{})
	if snap.Temperature != nil {
		fields["temperature_c"] = snap.Temperature.AsCelsius().Value()
	}
	if snap.FeelsLike != nil {
		fields["feels_like_c"] = snap.FeelsLike.AsCelsius().Value()
	}
	if snap.WindSpeed != nil {
		fields["wind_speed_kmh"] = snap.WindSpeed.AsKmh().Value()
	}
	if snap.Humidity != nil {
		fields["humidity"] = *snap.Humidity
	}
	if snap.Condition != nil {
		fields["condition"] = string(*snap.Condition)
	}
	if snap.MoonPhase != nil {
		fields["moon_phase"] = snap.MoonPhase.Name()
	}
	if len(fields) == 0 {
		return nil, errors.New("snapshot has no fields to export")
	}

	return influx.NewPoint(measurement, tags, fields, snap.Timestamp)
}

// Write implements weather.Sink.
func (s *InfluxSink) Write(ctx context.Context, snap weather.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bp, err := influx.NewBatchPoints(influx.BatchPointsConfig{
		Database:  s.database,
		Precision: "s",
	})
	if err != nil {
		return errors.Wrap(err, "create batch")
	}

	pt, err := Point(s.measurement, snap)
	if err != nil {
		return err
	}
	bp.AddPoint(pt)

	return errors.Wrap(s.client.Write(bp), "write influx batch")
}

// Close releases the client resources.
func (s *InfluxSink) Close() error {
	return s.client.Close()
}
