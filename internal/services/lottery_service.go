package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nearbot/internal/domain/entities"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
	"nearbot/internal/repository"
)

var (
	// ErrDrawNotFound is returned when no draw was published on the asked date.
	ErrDrawNotFound = errors.New("no draw on that date")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid draw date")
)

// DrawSource scrapes the newest draws, newest first.
type DrawSource interface {
	Latest(ctx context.Context) ([]entities.LotteryDraw, error)
}

// LotteryService answers lottery queries from the KV store, scraping the
// results page only on a miss. Every scraped draw is written back under its
// game and date, and the first draw listed per date also fills that date's
// any-game slot.
type LotteryService struct {
	store   repository.LotteryStore
	source  DrawSource
	logger  *zap.Logger
	metrics *observability.Metrics
}

func NewLotteryService(store repository.LotteryStore, source DrawSource, logger *zap.Logger, metrics *observability.Metrics) *LotteryService {
	return &LotteryService{
		store:   store,
		source:  source,
		logger:  logging.OrNop(logger).Named("lottery"),
		metrics: metrics,
	}
}

// Latest returns game's draw published on date (YYYY-MM-DD). An empty game
// accepts any game; an empty date means the newest matching draw on the
// results page, which is always scraped.
func (s *LotteryService) Latest(ctx context.Context, game, date string) (*entities.LotteryDraw, error) {
	game = strings.TrimSpace(game)
	date = strings.ReplaceAll(strings.TrimSpace(date), "/", "-")
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		draw, err := s.store.GetDraw(ctx, game, date)
		switch {
		case err == nil:
			s.metrics.ObserveCache("lottery", true)
			return draw, nil
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("lottery store: %w", err)
		}
		s.metrics.ObserveCache("lottery", false)
	}

	draws, err := s.scrape(ctx)
	if err != nil {
		return nil, err
	}
	for i := range draws {
		if game != "" && draws[i].Game != game {
			continue
		}
		if date == "" || draws[i].Date == date {
			return &draws[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDrawNotFound, strings.TrimSpace(game+" "+date))
}

func (s *LotteryService) scrape(ctx context.Context) ([]entities.LotteryDraw, error) {
	start := time.Now()
	draws, err := s.source.Latest(ctx)
	s.metrics.ObserveUpstream(sourceLottery, start, err)
	if err != nil {
		return nil, fmt.Errorf("scrape lottery: %w", err)
	}
	if len(draws) == 0 {
		return nil, fmt.Errorf("scrape lottery: %w", ErrDrawNotFound)
	}

	// The page lists newest first; keep the first draw seen per key.
	saved := make(map[string]bool, 2*len(draws))
	for i := range draws {
		if draws[i].Date == "" {
			continue
		}
		for _, game := range []string{draws[i].Game, ""} {
			key := repository.LotteryKey(game, draws[i].Date)
			if saved[key] {
				continue
			}
			if err := s.store.SaveDraw(ctx, game, &draws[i]); err != nil {
				s.logger.Warn("failed to cache lottery draw",
					zap.String("game", game),
					zap.String("date", draws[i].Date),
					zap.Error(err))
				continue
			}
			saved[key] = true
		}
	}
	return draws, nil
}

func FormatDraw(d *entities.LotteryDraw) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎰 %s 第 %s 期 (%s)\n%s", d.Game, d.Period, d.Date, strings.Join(d.Numbers, " "))
	if d.Special != "" {
		fmt.Fprintf(&b, "\n特別號: %s", d.Special)
	}
	return b.String()
}
