package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nearbot/internal/clients"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
)

// ScreeningSource returns the latest screening counts.
type ScreeningSource interface {
	Latest(ctx context.Context) (*clients.ScreeningDay, error)
}

type CovidService struct {
	source  ScreeningSource
	logger  *zap.Logger
	metrics *observability.Metrics
}

func NewCovidService(source ScreeningSource, logger *zap.Logger, metrics *observability.Metrics) *CovidService {
	return &CovidService{
		source:  source,
		logger:  logging.OrNop(logger).Named("covid"),
		metrics: metrics,
	}
}

// Latest returns the most recent day of screening counts.
func (s *CovidService) Latest(ctx context.Context) (*clients.ScreeningDay, error) {
	start := time.Now()
	day, err := s.source.Latest(ctx)
	s.metrics.ObserveUpstream(sourceCovid, start, err)
	if err != nil {
		return nil, fmt.Errorf("covid screening: %w", err)
	}
	s.logger.Debug("covid screening fetched", zap.String("date", day.Date), zap.Int("total", day.Total))
	return day, nil
}

// TotalEmoji buckets the daily total into a traffic light.
func TotalEmoji(total int) string {
	switch {
	case total < 1000:
		return "🟢"
	case total < 10000:
		return "🟡"
	default:
		return "🔴"
	}
}

func FormatScreening(d *clients.ScreeningDay) string {
	return fmt.Sprintf("%s 通報日 %s\n法定傳染病通報: %d\n居家檢疫送驗: %d\n擴大監測送驗: %d\n總計: %d",
		TotalEmoji(d.Total), d.Date,
		d.Reported, d.Quarantine, d.Surveillance, d.Total)
}
