package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nearbot/internal/clients"
	"nearbot/internal/config"
	"nearbot/internal/domain/entities"
	"nearbot/internal/geo"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
)

// NoGarbageTruckText is the reply when no stop is within range.
const NoGarbageTruckText = "附近沒有垃圾車"

// RealtimeFeed supplies the raw garbage-truck rows.
type RealtimeFeed interface {
	Fetch(ctx context.Context) ([]clients.TruckRow, error)
}

// GarbageService answers "where is the garbage truck" around the configured
// home point. The feed is fetched fresh on every call.
type GarbageService struct {
	feed     RealtimeFeed
	home     config.HomeConfig
	cfg      config.GarbageConfig
	nearby   geo.DistanceFunc
	homeDist geo.DistanceFunc
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewGarbageService(
	feed RealtimeFeed,
	home config.HomeConfig,
	cfg config.GarbageConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*GarbageService, error) {
	nearby, err := cfg.Model.Func()
	if err != nil {
		return nil, fmt.Errorf("garbage model: %w", err)
	}
	homeDist, err := cfg.HomeModel.Func()
	if err != nil {
		return nil, fmt.Errorf("garbage home model: %w", err)
	}
	return &GarbageService{
		feed:     feed,
		home:     home,
		cfg:      cfg,
		nearby:   nearby,
		homeDist: homeDist,
		logger:   logging.OrNop(logger).Named("garbage"),
		metrics:  metrics,
	}, nil
}

// Nearby returns the stops within the realtime threshold of home, nearest
// first. An empty slice means nothing is close.
func (s *GarbageService) Nearby(ctx context.Context) ([]geo.Scored[entities.StopRecord], error) {
	return s.search(ctx, s.cfg.Threshold, s.nearby)
}

// HomeDistance is Nearby measured with the home model, in meters.
func (s *GarbageService) HomeDistance(ctx context.Context) ([]geo.Scored[entities.StopRecord], error) {
	return s.search(ctx, s.cfg.HomeThreshold, s.homeDist)
}

func (s *GarbageService) search(ctx context.Context, threshold float64, dist geo.DistanceFunc) ([]geo.Scored[entities.StopRecord], error) {
	stops, err := s.Stops(ctx)
	if err != nil {
		return nil, err
	}
	return geo.Nearest(s.home.Point, stops, threshold, s.cfg.TopK, dist), nil
}

// Stops fetches the feed and keeps the parsable rows of the home city.
func (s *GarbageService) Stops(ctx context.Context) ([]entities.StopRecord, error) {
	start := time.Now()
	rows, err := s.feed.Fetch(ctx)
	s.metrics.ObserveUpstream(sourceRealtime, start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch garbage trucks: %w", err)
	}

	stops := make([]entities.StopRecord, 0, len(rows))
	for _, row := range rows {
		if row.CityName != s.home.City {
			continue
		}
		p, err := entities.ParseGeoPoint(string(row.Latitude), string(row.Longitude))
		if err != nil {
			s.metrics.ObserveMalformed(sourceRealtime)
			s.logger.Warn("skipping malformed stop",
				zap.String("location", row.Location),
				zap.Error(err))
			continue
		}
		stops = append(stops, entities.StopRecord{LocationLabel: row.Location, Point: p})
	}

	s.logger.Debug("garbage feed filtered",
		zap.Int("rows", len(rows)),
		zap.Int("stops", len(stops)),
		zap.String("city", s.home.City))
	return stops, nil
}

// FormatStops renders one "label(distance)" line per stop, or the
// nothing-found text for an empty result.
func FormatStops(stops []geo.Scored[entities.StopRecord]) string {
	if len(stops) == 0 {
		return NoGarbageTruckText
	}
	lines := make([]string, len(stops))
	for i, s := range stops {
		lines[i] = fmt.Sprintf("%s(%.2f)", s.Candidate.LocationLabel, s.DistanceMeters)
	}
	return strings.Join(lines, "\n")
}
