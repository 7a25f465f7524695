package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"

	"nearbot/internal/clients"
	"nearbot/internal/domain/entities"
	"nearbot/internal/logging"
)

// Reply texts shown to users.
const (
	UnavailableText = "資料暫時無法取得，請稍後再試"
	DisabledText    = "此功能尚未開放"
	HelpText        = "可用指令:\n" +
		"go / 垃圾車 - 附近的垃圾車\n" +
		"回家 / home - 離家最近的垃圾車\n" +
		"天氣 [縣市] - 36 小時天氣預報\n" +
		"快篩 / covid - 最新篩檢數字\n" +
		"樂透 [YYYY-MM-DD] - 開獎結果\n" +
		"傳送位置 - 附近的公共廁所"
	maxCardText = 100
)

// LocationInput is the part of a location message the toilet search needs.
type LocationInput struct {
	Title   string
	Address string
	Point   entities.GeoPoint
}

// ReplyService turns one inbound message into the LINE messages to reply
// with. Any feature service may be nil, which disables that route.
type ReplyService struct {
	Garbage     *GarbageService
	Toilets     *ToiletService
	Weather     *WeatherService
	Covid       *CovidService
	Lottery     *LotteryService
	MaxMessages int
	logger      *zap.Logger
}

func NewReplyService(maxMessages int, logger *zap.Logger) *ReplyService {
	if maxMessages < 1 {
		maxMessages = 5
	}
	return &ReplyService{
		MaxMessages: maxMessages,
		logger:      logging.OrNop(logger).Named("reply"),
	}
}

// Text answers a text message. Unknown text yields no messages, so the bot
// stays silent in group chats. When a feature fails the returned messages
// still hold a short apology and err says why.
func (s *ReplyService) Text(ctx context.Context, text string) (Route, []messaging_api.MessageInterface, error) {
	cmd := ParseCommand(text)
	s.logger.Debug("text classified", zap.String("route", string(cmd.Route)), zap.String("arg", cmd.Arg))
	var (
		reply string
		err   error
	)

	switch cmd.Route {
	case RouteUnknown:
		return cmd.Route, nil, nil
	case RouteHelp:
		reply = HelpText
	case RouteRealtime, RouteHome:
		reply, err = s.garbage(ctx, cmd.Route)
	case RouteWeather:
		reply, err = s.weather(ctx, cmd.Arg)
	case RouteCovid:
		reply, err = s.covid(ctx)
	case RouteLottery:
		reply, err = s.lottery(ctx, cmd.Game, cmd.Arg)
	}

	if err != nil {
		return cmd.Route, textMessages(UnavailableText), err
	}
	return cmd.Route, textMessages(reply), nil
}

// Location answers a location message with nearby toilets: one header text
// followed by a location card per toilet.
func (s *ReplyService) Location(ctx context.Context, in LocationInput) ([]messaging_api.MessageInterface, error) {
	if s.Toilets == nil {
		return textMessages(DisabledText), nil
	}
	result, err := s.Toilets.Search(ctx, in.Point, in.Address)
	if err != nil {
		return textMessages(UnavailableText), err
	}
	return s.toiletMessages(result), nil
}

func (s *ReplyService) toiletMessages(result *ToiletResult) []messaging_api.MessageInterface {
	if !result.Found() {
		return textMessages(fmt.Sprintf("方圓 %.0f 公尺內找不到廁所", result.Threshold))
	}

	toilets := result.Toilets
	if len(toilets) > s.MaxMessages-1 {
		toilets = toilets[:s.MaxMessages-1]
	}
	messages := make([]messaging_api.MessageInterface, 0, len(toilets)+1)
	messages = append(messages, messaging_api.TextMessage{
		Text: fmt.Sprintf("附近 %.0f 公尺內的廁所", result.Threshold),
	})
	for _, t := range toilets {
		title := t.Candidate.Name
		if title == "" {
			title = "公共廁所"
		}
		if t.Candidate.Grade != "" {
			title = fmt.Sprintf("%s (%s)", title, t.Candidate.Grade)
		}
		address := fmt.Sprintf("%s (%.0fm)", t.Candidate.Address, t.DistanceMeters)
		messages = append(messages, messaging_api.LocationMessage{
			Title:     truncateRunes(title, maxCardText),
			Address:   truncateRunes(address, maxCardText),
			Latitude:  t.Candidate.Point.Latitude,
			Longitude: t.Candidate.Point.Longitude,
		})
	}
	return messages
}

func (s *ReplyService) garbage(ctx context.Context, route Route) (string, error) {
	if s.Garbage == nil {
		return DisabledText, nil
	}
	search := s.Garbage.Nearby
	if route == RouteHome {
		search = s.Garbage.HomeDistance
	}
	stops, err := search(ctx)
	if err != nil {
		return "", err
	}
	return FormatStops(stops), nil
}

func (s *ReplyService) weather(ctx context.Context, city string) (string, error) {
	if s.Weather == nil {
		return DisabledText, nil
	}
	forecast, err := s.Weather.Forecast(ctx, city)
	if errors.Is(err, clients.ErrUnknownLocation) {
		return fmt.Sprintf("找不到 %s 的天氣預報", city), nil
	}
	if err != nil {
		return "", err
	}
	return FormatForecast(forecast), nil
}

func (s *ReplyService) covid(ctx context.Context) (string, error) {
	if s.Covid == nil {
		return DisabledText, nil
	}
	day, err := s.Covid.Latest(ctx)
	if err != nil {
		return "", err
	}
	return FormatScreening(day), nil
}

func (s *ReplyService) lottery(ctx context.Context, game, date string) (string, error) {
	if s.Lottery == nil {
		return DisabledText, nil
	}
	draw, err := s.Lottery.Latest(ctx, game, date)
	switch {
	case errors.Is(err, ErrInvalidDate):
		return "日期格式請用 YYYY-MM-DD", nil
	case errors.Is(err, ErrDrawNotFound):
		return fmt.Sprintf("查無 %s 的開獎結果", strings.TrimSpace(game+" "+date)), nil
	case err != nil:
		return "", err
	}
	return FormatDraw(draw), nil
}

func textMessages(text string) []messaging_api.MessageInterface {
	return []messaging_api.MessageInterface{messaging_api.TextMessage{Text: text}}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
