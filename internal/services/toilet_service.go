package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nearbot/internal/config"
	"nearbot/internal/domain/entities"
	"nearbot/internal/geo"
	"nearbot/internal/geocode"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
	"nearbot/internal/repository"
)

// ToiletResult is the answer to one toilet search. When Status is
// StatusExhausted, Toilets is empty and Threshold is the last one tried.
type ToiletResult struct {
	Status    geo.SearchStatus                    `json:"status"`
	Partition string                              `json:"partition,omitempty"`
	Address   string                              `json:"address,omitempty"`
	Threshold float64                             `json:"threshold"`
	Attempts  int                                 `json:"attempts"`
	Toilets   []geo.Scored[entities.ToiletRecord] `json:"toilets"`
}

// Found reports whether any toilet was found.
func (r *ToiletResult) Found() bool { return r.Status == geo.StatusFound }

// ToiletService finds the nearest public toilets to a point. Records come
// from the partition store, one partition per administrative region.
//
// Go Learning Note — Optional Dependencies:
// geocoder may be nil. Go has no Optional type, so a nil interface value is
// the idiomatic "not configured" marker, checked once at the call site.
type ToiletService struct {
	store    repository.PartitionStore
	geocoder geocode.Reverse
	cfg      config.ToiletConfig
	dist     geo.DistanceFunc
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewToiletService(
	store repository.PartitionStore,
	geocoder geocode.Reverse,
	cfg config.ToiletConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*ToiletService, error) {
	dist, err := cfg.Model.Func()
	if err != nil {
		return nil, fmt.Errorf("toilet model: %w", err)
	}
	return &ToiletService{
		store:    store,
		geocoder: geocoder,
		cfg:      cfg,
		dist:     dist,
		logger:   logging.OrNop(logger).Named("toilet"),
		metrics:  metrics,
	}, nil
}

// Search looks for toilets around ref. addressHint narrows the search to a
// single region when it names one; otherwise every region is tried in order
// and the first region with a hit wins.
func (s *ToiletService) Search(ctx context.Context, ref entities.GeoPoint, addressHint string) (*ToiletResult, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	address := addressHint
	if address == "" && s.geocoder != nil {
		address = s.reverseGeocode(ctx, ref)
	}

	partitions := geo.LookupPartitions(NormalizeRegionName(address), s.cfg.Regions)
	result := &ToiletResult{
		Status:    geo.StatusExhausted,
		Address:   address,
		Threshold: s.cfg.Widening.Base,
		Toilets:   []geo.Scored[entities.ToiletRecord]{},
	}

	for _, partition := range partitions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := s.store.Lookup(ctx, partition)
		if err != nil {
			return nil, fmt.Errorf("toilet search: %w", err)
		}
		s.metrics.ObserveCache("toilet", len(records) > 0)

		outcome := geo.Widen(s.cfg.Widening, ref, records, s.dist)
		s.metrics.ObserveWidening(outcome.Attempts)
		result.Threshold = outcome.Threshold
		result.Attempts += outcome.Attempts

		if outcome.Found() {
			result.Status = geo.StatusFound
			result.Partition = partition
			result.Toilets = geo.TopK(outcome.Results, s.cfg.TopK)
			s.logger.Debug("toilets found",
				zap.String("partition", partition),
				zap.Float64("threshold", outcome.Threshold),
				zap.Int("count", len(result.Toilets)))
			return result, nil
		}
	}

	s.logger.Debug("no toilets in range",
		zap.Int("partitions", len(partitions)),
		zap.Float64("threshold", result.Threshold))
	return result, nil
}

func (s *ToiletService) reverseGeocode(ctx context.Context, ref entities.GeoPoint) string {
	start := time.Now()
	address, err := s.geocoder.ReverseGeocode(ctx, ref)
	s.metrics.ObserveUpstream(sourceGeocode, start, err)
	if err != nil {
		s.logger.Warn("reverse geocode failed, searching all regions", zap.Error(err))
		return ""
	}
	return address
}
