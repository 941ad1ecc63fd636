package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// SQLiteStore persists snapshots with the pure Go modernc.org/sqlite driver.
// Quantities are stored normalized to Celsius and km/h; absent fields are NULL.
type SQLiteStore struct {
	db     *sql.DB
	maxAge time.Duration
	now    func() time.Time
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	id             TEXT PRIMARY KEY,
	location_key   TEXT NOT NULL,
	city           TEXT NOT NULL,
	country        TEXT NOT NULL,
	lat            REAL,
	lon            REAL,
	ts             INTEGER NOT NULL,
	temperature_c  REAL,
	feels_like_c   REAL,
	condition      TEXT,
	humidity       REAL,
	moon_phase     INTEGER,
	wind_speed_kmh REAL,
	providers      TEXT
);
CREATE INDEX IF NOT EXISTS snapshots_location_ts ON snapshots(location_key, ts);`

// NewSQLite opens (or creates) the database at path. Snapshots older than
// maxAge are pruned on every save; zero keeps everything.
func NewSQLite(path string, maxAge time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		logrus.WithError(err).Warn("could not set sqlite WAL mode")
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply sqlite schema")
	}

	return &SQLiteStore{db: db, maxAge: maxAge, now: time.Now}, nil
}

func (s *SQLiteStore) SaveSnapshot(loc weather.Location, snap weather.Snapshot) error {
	providers, err := json.Marshal(snap.Providers)
	if err != nil {
		return errors.Wrap(err, "encode providers")
	}

	var (
		temp, feels, humidity, wind, lat, lon sql.NullFloat64
		cond                                  sql.NullString
		moon                                  sql.NullInt64
	)
	if snap.Temperature != nil {
		temp = sql.NullFloat64{Float64: snap.Temperature.AsCelsius().Value(), Valid: true}
	}
	if snap.FeelsLike != nil {
		feels = sql.NullFloat64{Float64: snap.FeelsLike.AsCelsius().Value(), Valid: true}
	}
	if snap.Humidity != nil {
		humidity = sql.NullFloat64{Float64: *snap.Humidity, Valid: true}
	}
	if snap.WindSpeed != nil {
		wind = sql.NullFloat64{Float64: snap.WindSpeed.AsKmh().Value(), Valid: true}
	}
	if snap.Condition != nil {
		cond = sql.NullString{String: string(*snap.Condition), Valid: true}
	}
	if snap.MoonPhase != nil {
		moon = sql.NullInt64{Int64: int64(*snap.MoonPhase), Valid: true}
	}
	if loc.Lat != nil && loc.Lon != nil {
		lat = sql.NullFloat64{Float64: *loc.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: *loc.Lon, Valid: true}
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO snapshots
		(id, location_key, city, country, lat, lon, ts, temperature_c, feels_like_c, condition, humidity, moon_phase, wind_speed_kmh, providers)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.ID, loc.Key(), loc.City, loc.Country, lat, lon, snap.Timestamp.UTC().UnixNano(),
		temp, feels, cond, humidity, moon, wind, string(providers))
	if err != nil {
		return errors.Wrap(err, "insert snapshot")
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge).UnixNano()
		if _, err := s.db.Exec(`DELETE FROM snapshots WHERE location_key = ? AND ts < ?
			AND id <> (SELECT id FROM snapshots WHERE location_key = ? ORDER BY ts DESC LIMIT 1)`,
			loc.Key(), cutoff, loc.Key()); err != nil {
			return errors.Wrap(err, "prune snapshots")
		}
	}
	return nil
}

const selectSnapshot = `SELECT id, city, country, lat, lon, ts, temperature_c, feels_like_c, condition, humidity, moon_phase, wind_speed_kmh, providers FROM snapshots`

func (s *SQLiteStore) GetLatest(loc weather.Location) (weather.Snapshot, error) {
	rows, err := s.db.Query(selectSnapshot+` WHERE location_key = ? ORDER BY ts DESC LIMIT 1`, loc.Key())
	if err != nil {
		return weather.Snapshot{}, errors.Wrap(err, "query latest snapshot")
	}
	snaps, err := scanSnapshots(rows)
	if err != nil {
		return weather.Snapshot{}, err
	}
	if len(snaps) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return snaps[0], nil
}

// GetRange returns all snapshots for a location between from and to (inclusive).
func (s *SQLiteStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Snapshot, error) {
	rows, err := s.db.Query(selectSnapshot+` WHERE location_key = ? AND ts >= ? AND ts <= ? ORDER BY ts`,
		loc.Key(), from.UTC().UnixNano(), to.UTC().UnixNano())
	if err != nil {
		return nil, errors.Wrap(err, "query snapshot range")
	}
	snaps, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	return snaps, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSnapshots(rows *sql.Rows) ([]weather.Snapshot, error) {
	defer rows.Close()

	var out []weather.Snapshot
	for rows.Next() {
		var (
			snap                                  weather.Snapshot
			ts                                    int64
			temp, feels, humidity, wind, lat, lon sql.NullFloat64
			cond, providers                       sql.NullString
			moon                                  sql.NullInt64
		)
		if err := rows.Scan(&snap.ID, &snap.Location.City, &snap.Location.Country, &lat, &lon, &ts,
			&temp, &feels, &cond, &humidity, &moon, &wind, &providers); err != nil {
			return nil, errors.Wrap(err, "scan snapshot")
		}

		snap.Timestamp = time.Unix(0, ts).UTC()
		if lat.Valid && lon.Valid {
			snap.Location.Lat, snap.Location.Lon = &lat.Float64, &lon.Float64
		}
		if temp.Valid {
			t := weather.Celsius(temp.Float64)
			snap.Temperature = &t
		}
		if feels.Valid {
			t := weather.Celsius(feels.Float64)
			snap.FeelsLike = &t
		}
		if cond.Valid {
			c := weather.Condition(cond.String)
			snap.Condition = &c
		}
		if humidity.Valid {
			snap.Humidity = &humidity.Float64
		}
		if moon.Valid {
			m := weather.MoonPhase(moon.Int64)
			snap.MoonPhase = &m
		}
		if wind.Valid {
			w := weather.Kmh(wind.Float64)
			snap.WindSpeed = &w
		}
		if providers.Valid && providers.String != "" {
			if err := json.Unmarshal([]byte(providers.String), &snap.Providers); err != nil {
				return nil, errors.Wrap(err, "decode providers")
			}
		}
		out = append(out, snap)
	}
	return out, errors.Wrap(rows.Err(), "iterate snapshots")
}
