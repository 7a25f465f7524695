package clients

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"nearbot/internal/domain/entities"
)

// Selectors for the results page. Each game is one block:
//
//	<div class="lottery-result" data-game="威力彩">
//	  <span class="period">113000085</span>
//	  <span class="date">2024/10/21</span>
//	  <ul class="numbers"><li class="ball">01</li>...</ul>
//	  <span class="special">05</span>
//	</div>
const (
	selResult  = "div.lottery-result"
	selPeriod  = ".period"
	selDate    = ".date"
	selBall    = ".numbers .ball"
	selSpecial = ".special"
)

// LotteryClient scrapes the latest draw of every game from the results page.
type LotteryClient struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

func NewLotteryClient(url string, timeout time.Duration) *LotteryClient {
	return &LotteryClient{
		url:        url,
		httpClient: newHTTPClient(timeout),
		now:        time.Now,
	}
}

// Latest returns one draw per game block found on the page, in page order.
func (c *LotteryClient) Latest(ctx context.Context) ([]entities.LotteryDraw, error) {
	if c.url == "" {
		return nil, fmt.Errorf("lottery: %w", ErrNotConfigured)
	}
	body, err := get(ctx, c.httpClient, c.url)
	if err != nil {
		return nil, fmt.Errorf("lottery: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("lottery: parse html: %w", err)
	}

	fetched := c.now()
	var draws []entities.LotteryDraw
	doc.Find(selResult).Each(func(_ int, s *goquery.Selection) {
		game, _ := s.Attr("data-game")
		draw := entities.LotteryDraw{
			Game:      strings.TrimSpace(game),
			Period:    text(s.Find(selPeriod)),
			Date:      normalizeDrawDate(text(s.Find(selDate))),
			Special:   text(s.Find(selSpecial)),
			FetchedAt: fetched,
		}
		s.Find(selBall).Each(func(_ int, ball *goquery.Selection) {
			if n := text(ball); n != "" {
				draw.Numbers = append(draw.Numbers, n)
			}
		})
		if draw.Game == "" || len(draw.Numbers) == 0 {
			return
		}
		draws = append(draws, draw)
	})
	if len(draws) == 0 {
		return nil, fmt.Errorf("lottery: %w", ErrEmptyDataset)
	}
	return draws, nil
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}

// normalizeDrawDate turns 2024/10/21 into 2024-10-21 so it can key the store.
func normalizeDrawDate(s string) string {
	return strings.ReplaceAll(s, "/", "-")
}
