package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"go.uber.org/zap"

	"nearbot/internal/clients"
	"nearbot/internal/config"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
)

// ForecastSource fetches a county forecast.
type ForecastSource interface {
	Forecast(ctx context.Context, city string) (*clients.Forecast, error)
}

// WeatherService serves county forecasts through a small in-process LRU
// cache. The CWA dataset only changes a few times a day.
type WeatherService struct {
	source      ForecastSource
	cache       gcache.Cache
	defaultCity string
	logger      *zap.Logger
	metrics     *observability.Metrics
}

func NewWeatherService(
	source ForecastSource,
	cfg config.WeatherConfig,
	defaultCity string,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *WeatherService {
	size := cfg.CacheSize
	if size < 1 {
		size = 1
	}
	return &WeatherService{
		source: source,
		cache: gcache.New(size).
			LRU().
			Expiration(cfg.CacheTTL).
			Build(),
		defaultCity: NormalizeRegionName(defaultCity),
		logger:      logging.OrNop(logger).Named("weather"),
		metrics:     metrics,
	}
}

// Forecast returns the forecast for city, or for the default city when city
// is empty. 台 and 臺 spellings are treated alike.
func (s *WeatherService) Forecast(ctx context.Context, city string) (*clients.Forecast, error) {
	city = NormalizeRegionName(city)
	if city == "" {
		city = s.defaultCity
	}

	if cached, err := s.cache.Get(city); err == nil {
		s.metrics.ObserveCache("weather", true)
		return cached.(*clients.Forecast), nil
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		s.logger.Warn("weather cache read failed", zap.Error(err))
	}
	s.metrics.ObserveCache("weather", false)

	start := time.Now()
	forecast, err := s.source.Forecast(ctx, city)
	s.metrics.ObserveUpstream(sourceWeather, start, err)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", city, err)
	}

	if err := s.cache.Set(city, forecast); err != nil {
		s.logger.Warn("weather cache write failed", zap.Error(err))
	}
	return forecast, nil
}

// PoPEmoji picks an icon from the probability of precipitation.
func PoPEmoji(pop int) string {
	switch {
	case pop < 30:
		return "☀️"
	case pop < 70:
		return "⛅"
	default:
		return "🌧️"
	}
}

// FormatForecast renders every period of f as a short block.
func FormatForecast(f *clients.Forecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 天氣預報", f.City)
	for _, p := range f.Periods {
		fmt.Fprintf(&b, "\n\n%s ~ %s\n%s %s\n🌡️ %d°C - %d°C\n☔ 降雨機率 %d%%",
			shortTime(p.Start), shortTime(p.End),
			PoPEmoji(p.PoP), p.Wx,
			p.MinT, p.MaxT,
			p.PoP)
		if p.Comfort != "" {
			fmt.Fprintf(&b, "\n%s", p.Comfort)
		}
	}
	return b.String()
}

// shortTime trims "2026-10-19 18:00:00" to "10/19 18:00".
func shortTime(s string) string {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		return s
	}
	return t.Format("01/02 15:04")
}
