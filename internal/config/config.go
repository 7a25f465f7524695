// Package config centralizes all application configuration into typed structs.
//
// Go Learning Note — Configuration Management:
// Defaults live in NewDefaultConfig as plain struct literals, and Load layers
// environment variables on top (after reading an optional .env file with
// "github.com/joho/godotenv"). Keeping the values in typed structs rather than
// scattered os.Getenv calls means every constant the bot depends on (home
// point, thresholds, region list, tokens) is passed explicitly into the
// services that need it. There are no package-level globals to mutate.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nearbot/internal/domain/entities"
	"nearbot/internal/geo"
)

// ConfigError represents one invalid or missing configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config is the top-level configuration container.
type Config struct {
	Server  ServerConfig
	Line    LineConfig
	Home    HomeConfig
	Garbage GarbageConfig
	Toilet  ToiletConfig
	Weather WeatherConfig
	Covid   CovidConfig
	Lottery LotteryConfig
	Store   StoreConfig
	Geocode GeocodeConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
//
// Go Learning Note — time.Duration:
// "10 * time.Second" is self-documenting, unlike a bare 10 that could mean
// seconds or milliseconds. RequestTimeout bounds the whole webhook delivery,
// including every upstream call made while answering it.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	AdminToken     string
}

// LineConfig holds the messaging channel credentials.
type LineConfig struct {
	ChannelSecret      string
	ChannelAccessToken string
	MaxMessages        int // per reply, LINE allows 5
}

// HomeConfig is the fixed reference point of the deployment.
type HomeConfig struct {
	City   string // district name as it appears in the realtime feed
	County string // region name used for weather lookups
	Point  entities.GeoPoint
}

// GarbageConfig controls the garbage-truck features. The realtime search uses
// Model/Threshold; the home-distance variant uses HomeModel/HomeThreshold.
type GarbageConfig struct {
	RealtimeURL   string
	Model         geo.DistanceModel
	Threshold     float64
	HomeModel     geo.DistanceModel
	HomeThreshold float64 // meters
	TopK          int
	FetchTimeout  time.Duration
}

// ToiletConfig controls the widening toilet search and the registry import.
type ToiletConfig struct {
	Model        geo.DistanceModel
	Widening     geo.Widening
	TopK         int
	Regions      []string
	RegistryURL  string
	RegistryKey  string
	FetchTimeout time.Duration
}

// WeatherConfig controls the forecast lookups.
type WeatherConfig struct {
	URL          string
	APIKey       string
	CacheSize    int
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

// CovidConfig points at the screening-count CSV.
type CovidConfig struct {
	URL          string
	FetchTimeout time.Duration
}

// LotteryConfig points at the results page.
type LotteryConfig struct {
	URL          string
	FetchTimeout time.Duration
}

// StoreConfig selects the key-value backend: "memory", "badger" or "postgres".
type StoreConfig struct {
	Driver    string
	BadgerDir string
	DSN       string
}

// GeocodeConfig enables reverse geocoding of location messages that arrive
// without an address.
type GeocodeConfig struct {
	GoogleMapsAPIKey string
	Language         string
	Timeout          time.Duration
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string
	Development bool
}

// NewDefaultConfig returns a Config populated with the values the bot was
// originally deployed with (home in 三重區, 500 unit truck radius, toilets
// widened from 100 m in 100 m steps up to 10 times).
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   45 * time.Second,
			RequestTimeout: 12 * time.Second,
		},
		Line: LineConfig{
			MaxMessages: 5,
		},
		Home: HomeConfig{
			City:   "三重區",
			County: "新北市",
			Point:  entities.NewGeoPoint(25.078088032882395, 121.49169181080875),
		},
		Garbage: GarbageConfig{
			Model:         geo.ModelPlanar,
			Threshold:     500,
			HomeModel:     geo.ModelGreatCircle,
			HomeThreshold: 500,
			TopK:          10,
			FetchTimeout:  5 * time.Second,
		},
		Toilet: ToiletConfig{
			Model: geo.ModelGreatCircle,
			Widening: geo.Widening{
				Base:        100,
				Increment:   100,
				MaxAttempts: 10,
			},
			TopK:         4,
			Regions:      append([]string(nil), geo.TaiwanRegions...),
			RegistryURL:  "https://data.moenv.gov.tw/api/v2/fac_p_07",
			FetchTimeout: 30 * time.Second,
		},
		Weather: WeatherConfig{
			URL:          "https://opendata.cwa.gov.tw/api/v1/rest/datastore/F-C0032-001",
			CacheSize:    64,
			CacheTTL:     10 * time.Minute,
			FetchTimeout: 5 * time.Second,
		},
		Covid: CovidConfig{
			URL:          "https://od.cdc.gov.tw/eic/covid19/covid19_tw_specimen.csv",
			FetchTimeout: 5 * time.Second,
		},
		Lottery: LotteryConfig{
			URL:          "https://www.taiwanlottery.com/lotto/result/super_lotto638",
			FetchTimeout: 5 * time.Second,
		},
		Store: StoreConfig{
			Driver:    "memory",
			BadgerDir: "./data/badger",
		},
		Geocode: GeocodeConfig{
			Language: "zh-TW",
			Timeout:  3 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns the default configuration overridden by environment
// variables. A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	// Missing .env is normal in production; real env vars still apply.
	_ = godotenv.Load()

	cfg := NewDefaultConfig()
	var errs []error

	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			errs = append(errs, &ConfigError{Field: "PORT", Message: "must be an integer between 1 and 65535"})
		} else {
			cfg.Server.Port = ":" + port
		}
	}
	cfg.Server.RequestTimeout = durationEnv("REQUEST_TIMEOUT", cfg.Server.RequestTimeout, &errs)
	cfg.Server.AdminToken = os.Getenv("ADMIN_TOKEN")

	cfg.Line.ChannelSecret = os.Getenv("CHANNEL_SECRET")
	cfg.Line.ChannelAccessToken = os.Getenv("CHANNEL_ACCESS_TOKEN")

	cfg.Home.City = stringEnv("HOME_CITY", cfg.Home.City)
	cfg.Home.County = stringEnv("HOME_COUNTY", cfg.Home.County)
	if lat, lng := os.Getenv("HOME_LAT"), os.Getenv("HOME_LNG"); lat != "" || lng != "" {
		p, err := entities.ParseGeoPoint(lat, lng)
		if err != nil {
			errs = append(errs, &ConfigError{Field: "HOME_LAT/HOME_LNG", Message: err.Error()})
		} else {
			cfg.Home.Point = p
		}
	}

	cfg.Garbage.RealtimeURL = os.Getenv("REALTIME_DATA_URL")
	cfg.Garbage.Model = geo.DistanceModel(stringEnv("GARBAGE_DISTANCE_MODEL", string(cfg.Garbage.Model)))
	cfg.Garbage.Threshold = floatEnv("GARBAGE_RANGE", cfg.Garbage.Threshold, &errs)
	cfg.Garbage.HomeThreshold = floatEnv("HOME_RANGE_METERS", cfg.Garbage.HomeThreshold, &errs)
	cfg.Garbage.TopK = intEnv("GARBAGE_TOP_K", cfg.Garbage.TopK, &errs)

	cfg.Toilet.Widening.Base = floatEnv("TOILET_BASE_RANGE", cfg.Toilet.Widening.Base, &errs)
	cfg.Toilet.Widening.Increment = floatEnv("TOILET_RANGE_INCREMENT", cfg.Toilet.Widening.Increment, &errs)
	cfg.Toilet.Widening.MaxAttempts = intEnv("TOILET_MAX_ATTEMPTS", cfg.Toilet.Widening.MaxAttempts, &errs)
	cfg.Toilet.TopK = intEnv("TOILET_TOP_K", cfg.Toilet.TopK, &errs)
	cfg.Toilet.RegistryURL = stringEnv("TOILET_REGISTRY_URL", cfg.Toilet.RegistryURL)
	cfg.Toilet.RegistryKey = os.Getenv("TOILET_REGISTRY_KEY")
	if regions := os.Getenv("TOILET_REGIONS"); regions != "" {
		cfg.Toilet.Regions = splitList(regions)
	}

	cfg.Weather.URL = stringEnv("WEATHER_URL", cfg.Weather.URL)
	cfg.Weather.APIKey = os.Getenv("CWA_API_KEY")
	cfg.Weather.CacheTTL = durationEnv("WEATHER_CACHE_TTL", cfg.Weather.CacheTTL, &errs)
	cfg.Covid.URL = stringEnv("COVID_URL", cfg.Covid.URL)
	cfg.Lottery.URL = stringEnv("LOTTERY_URL", cfg.Lottery.URL)

	cfg.Store.Driver = stringEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.BadgerDir = stringEnv("BADGER_DIR", cfg.Store.BadgerDir)
	cfg.Store.DSN = os.Getenv("DB_DSN")

	cfg.Geocode.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	cfg.Log.Level = stringEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Development = os.Getenv("LOG_DEVELOPMENT") == "true"

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate re-checks the fields that would otherwise fail at request time.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Garbage.Model.Func(); err != nil {
		errs = append(errs, &ConfigError{Field: "GARBAGE_DISTANCE_MODEL", Message: err.Error()})
	}
	if _, err := c.Garbage.HomeModel.Func(); err != nil {
		errs = append(errs, &ConfigError{Field: "Garbage.HomeModel", Message: err.Error()})
	}
	if _, err := c.Toilet.Model.Func(); err != nil {
		errs = append(errs, &ConfigError{Field: "Toilet.Model", Message: err.Error()})
	}
	if c.Toilet.Widening.MaxAttempts < 1 {
		errs = append(errs, &ConfigError{Field: "TOILET_MAX_ATTEMPTS", Message: "must be at least 1"})
	}
	if c.Toilet.Widening.Increment < 0 {
		errs = append(errs, &ConfigError{Field: "TOILET_RANGE_INCREMENT", Message: "must not be negative"})
	}
	if len(c.Toilet.Regions) == 0 {
		errs = append(errs, &ConfigError{Field: "TOILET_REGIONS", Message: "must list at least one region"})
	}
	// The admin import writes its report only after the registry download.
	if c.Server.WriteTimeout <= c.Toilet.FetchTimeout || c.Server.WriteTimeout <= c.Server.RequestTimeout {
		errs = append(errs, &ConfigError{Field: "Server.WriteTimeout", Message: "must exceed the request and registry fetch timeouts"})
	}
	if c.Line.MaxMessages < 1 {
		errs = append(errs, &ConfigError{Field: "Line.MaxMessages", Message: "must be at least 1"})
	}
	switch c.Store.Driver {
	case "memory", "badger":
	case "postgres":
		if c.Store.DSN == "" {
			errs = append(errs, &ConfigError{Field: "DB_DSN", Message: "required when STORE_DRIVER=postgres"})
		}
	default:
		errs = append(errs, &ConfigError{Field: "STORE_DRIVER", Message: "must be memory, badger or postgres"})
	}
	if err := c.Home.Point.Validate(); err != nil {
		errs = append(errs, &ConfigError{Field: "HOME_LAT/HOME_LNG", Message: err.Error()})
	}
	return errors.Join(errs...)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, &ConfigError{Field: key, Message: "must be a valid integer"})
		return def
	}
	return v
}

func floatEnv(key string, def float64, errs *[]error) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		*errs = append(*errs, &ConfigError{Field: key, Message: "must be a non-negative finite number"})
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, &ConfigError{Field: key, Message: "must be a Go duration such as 10s"})
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
