package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nearbot/internal/clients"
	"nearbot/internal/domain/entities"
	"nearbot/internal/geo"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
	"nearbot/internal/repository"
)

// RegistrySource downloads the full toilet registry.
type RegistrySource interface {
	Fetch(ctx context.Context) ([]clients.RegistryToilet, error)
}

// ImportReport summarizes one bulk import.
type ImportReport struct {
	Fetched    int            `json:"fetched"`
	Malformed  int            `json:"malformed"`
	Unassigned int            `json:"unassigned"`
	Partitions map[string]int `json:"partitions"`
}

// ImportService refreshes the per-region toilet partitions from the registry.
// It is the only writer of toilet data; the search path only reads.
type ImportService struct {
	source  RegistrySource
	store   repository.PartitionStore
	regions []string
	logger  *zap.Logger
	metrics *observability.Metrics
}

func NewImportService(
	source RegistrySource,
	store repository.PartitionStore,
	regions []string,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *ImportService {
	return &ImportService{
		source:  source,
		store:   store,
		regions: regions,
		logger:  logging.OrNop(logger).Named("import"),
		metrics: metrics,
	}
}

// Run fetches the registry and rewrites every configured region. Regions with
// no records are written as empty so stale data does not survive a refresh.
func (s *ImportService) Run(ctx context.Context) (*ImportReport, error) {
	start := time.Now()
	rows, err := s.source.Fetch(ctx)
	s.metrics.ObserveUpstream(sourceRegistry, start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch toilet registry: %w", err)
	}

	report := &ImportReport{
		Fetched:    len(rows),
		Partitions: make(map[string]int, len(s.regions)),
	}
	byRegion := make(map[string][]entities.ToiletRecord, len(s.regions))

	for _, row := range rows {
		p, err := entities.ParseGeoPoint(string(row.Latitude), string(row.Longitude))
		if err != nil {
			report.Malformed++
			s.metrics.ObserveMalformed(sourceRegistry)
			continue
		}
		region, ok := s.assign(row)
		if !ok {
			report.Unassigned++
			continue
		}
		byRegion[region] = append(byRegion[region], entities.ToiletRecord{
			Name:    strings.TrimSpace(row.Name),
			Address: strings.TrimSpace(row.Address),
			Grade:   strings.TrimSpace(row.Grade),
			Point:   p,
		})
	}

	for _, region := range s.regions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		records := byRegion[region]
		if err := s.store.Save(ctx, region, records); err != nil {
			return report, fmt.Errorf("import region %s: %w", region, err)
		}
		report.Partitions[region] = len(records)
	}

	s.logger.Info("toilet import finished",
		zap.Int("fetched", report.Fetched),
		zap.Int("malformed", report.Malformed),
		zap.Int("unassigned", report.Unassigned),
		zap.Duration("took", time.Since(start)))
	return report, nil
}

// assign picks the region for a record. The county field decides when it
// names a region; otherwise the first region, in list order, found in the
// county and address together wins.
func (s *ImportService) assign(row clients.RegistryToilet) (string, bool) {
	for _, text := range []string{row.County, row.County + row.Address} {
		text = NormalizeRegionName(text)
		parts := geo.LookupPartitions(text, s.regions)
		if len(parts) == 1 && strings.Contains(text, parts[0]) {
			return parts[0], true
		}
	}
	return "", false
}
