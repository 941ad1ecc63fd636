package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/i474232898/weather-data-aggregation/internal/common"
	"github.com/i474232898/weather-data-aggregation/internal/weather"
)

// Provider names accepted in Providers.
const (
	ProviderWttrIn      = "wttrin"
	ProviderWeatherAPI  = "weatherapi"
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
)

type AppConfig struct {
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
	WeatherAPIKey     string `yaml:"weatherapi_api_key"`
	GeocoderAPIKey    string `yaml:"geocoder_api_key"`

	// Providers lists enabled providers in the order they are queried.
	Providers []string `yaml:"providers" default:"[\"wttrin\"]" validate:"min=1,dive,oneof=wttrin weatherapi openweather openmeteo"`

	// FetchInterval controls how often we fetch data for each location.
	FetchInterval time.Duration `yaml:"fetch_interval" default:"15m" validate:"gt=0"`
	HTTPTimeout   time.Duration `yaml:"http_timeout" default:"10s" validate:"gt=0"`
	// CacheTTL bounds how long a provider answer is reused; zero disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl" default:"5m" validate:"gte=0"`

	// Locations to track.
	Locations []weather.Location `yaml:"locations"`

	// In-memory store retention.
	StoreMaxHistory int           `yaml:"store_max_history" default:"96" validate:"gte=0"` // max snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration `yaml:"store_max_age" default:"24h" validate:"gte=0"`   // max age of snapshots (0 = unlimited)
	// SQLitePath switches to the persistent store when set.
	SQLitePath string `yaml:"sqlite_path"`

	Influx InfluxConfig `yaml:"influx"`

	Port      string `yaml:"port" default:"8080" validate:"numeric"`
	Units     string `yaml:"units" default:"metric" validate:"oneof=metric imperial si"`
	LogLevel  string `yaml:"log_level" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `yaml:"log_format" default:"text" validate:"oneof=text json"`
}

// InfluxConfig enables the InfluxDB exporter when Addr is set.
type InfluxConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"weather"`
}

// DisplayUnits resolves Units to a preset.
func (c *AppConfig) DisplayUnits() weather.Units {
	u, err := weather.ParseUnits(c.Units)
	if err != nil {
		return weather.UnitsMetric
	}
	return u
}

var validate = validator.New()

// Load builds the configuration from struct defaults, the optional YAML file
// at path, a .env file if present and finally the environment.
func Load(path string) (*AppConfig, error) {
	// A missing .env file is normal in production.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "apply config defaults")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	for i, loc := range cfg.Locations {
		if strings.TrimSpace(loc.City) == "" {
			return nil, fmt.Errorf("invalid config: location %d has no city", i)
		}
	}

	return cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	setString(&cfg.OpenWeatherAPIKey, "OPENWEATHER_API_KEY")
	setString(&cfg.WeatherAPIKey, "WEATHERAPI_API_KEY")
	setString(&cfg.GeocoderAPIKey, "GEOCODER_API_KEY")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Influx.Addr, "INFLUX_ADDR")
	setString(&cfg.Influx.User, "INFLUX_USER")
	setString(&cfg.Influx.Password, "INFLUX_PASSWORD")
	setString(&cfg.Influx.Database, "INFLUX_DB")
	setString(&cfg.Port, "PORT")
	setString(&cfg.Units, "UNITS")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	if v := os.Getenv("PROVIDERS"); v != "" {
		cfg.Providers = common.SplitList(v)
	}

	for key, dst := range map[string]*time.Duration{
		"FETCH_INTERVAL": &cfg.FetchInterval,
		"HTTP_TIMEOUT":   &cfg.HTTPTimeout,
		"CACHE_TTL":      &cfg.CacheTTL,
		"STORE_MAX_AGE":  &cfg.StoreMaxAge,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", cfg.StoreMaxHistory)

	locs, err := loadPrimaryLocation()
	if err != nil {
		return err
	}
	if len(locs) > 0 {
		cfg.Locations = locs
	}
	return nil
}

func loadPrimaryLocation() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	if city == "" {
		return nil, nil
	}
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	cities := common.SplitList(city)
	countries := common.SplitList(country)
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    cities[i],
			Country: countries[i],
		})
	}

	return locs, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
