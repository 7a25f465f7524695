package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"go.uber.org/zap"

	"nearbot/internal/api/middleware"
	"nearbot/internal/domain/entities"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
	"nearbot/internal/services"
)

// Replier sends reply messages. *messaging_api.MessagingApiAPI satisfies it.
type Replier interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// WebhookHandler receives LINE webhook deliveries. Events are handled
// synchronously, one after another, inside the request deadline.
type WebhookHandler struct {
	channelSecret string
	replies       *services.ReplyService
	replier       Replier
	logger        *zap.Logger
	metrics       *observability.Metrics
}

func NewWebhookHandler(
	channelSecret string,
	replies *services.ReplyService,
	replier Replier,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *WebhookHandler {
	return &WebhookHandler{
		channelSecret: channelSecret,
		replies:       replies,
		replier:       replier,
		logger:        logging.OrNop(logger).Named("webhook"),
		metrics:       metrics,
	}
}

// Hello handles GET / so uptime checks have something to hit.
func (h *WebhookHandler) Hello(c *gin.Context) {
	c.String(http.StatusOK, "Hello")
}

// Callback handles POST / and POST /callback.
func (h *WebhookHandler) Callback(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("invalid webhook signature")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		h.logger.Error("failed to parse webhook request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed webhook body"})
		return
	}

	log := h.logger.With(zap.String("request_id", middleware.GetRequestID(c)))
	ctx := c.Request.Context()
	for _, event := range cb.Events {
		if err := ctx.Err(); err != nil {
			log.Warn("deadline reached, dropping remaining events", zap.Error(err))
			break
		}
		h.handleEvent(ctx, event, log)
	}

	c.String(http.StatusOK, "OK")
}

func (h *WebhookHandler) handleEvent(ctx context.Context, event webhook.EventInterface, log *zap.Logger) {
	e, ok := event.(webhook.MessageEvent)
	if !ok {
		log.Debug("ignoring event", zap.String("event_type", fmt.Sprintf("%T", event)))
		return
	}

	var (
		route    services.Route
		messages []messaging_api.MessageInterface
		err      error
	)
	switch m := e.Message.(type) {
	case webhook.TextMessageContent:
		route, messages, err = h.replies.Text(ctx, m.Text)
	case webhook.LocationMessageContent:
		route = services.RouteLocation
		messages, err = h.replies.Location(ctx, services.LocationInput{
			Title:   m.Title,
			Address: m.Address,
			Point:   entities.NewGeoPoint(m.Latitude, m.Longitude),
		})
	default:
		log.Debug("ignoring message", zap.String("message_type", fmt.Sprintf("%T", e.Message)))
		return
	}

	log = log.With(zap.String("route", string(route)))
	status := "ok"
	if err != nil {
		status = "error"
		log.Error("failed to answer message", zap.Error(err))
	}

	if len(messages) == 0 {
		h.metrics.ObserveWebhook(string(route), "silent")
		return
	}
	if e.ReplyToken == "" {
		log.Debug("empty reply token, skipping reply")
		h.metrics.ObserveWebhook(string(route), status)
		return
	}
	if limit := h.replies.MaxMessages; len(messages) > limit {
		messages = messages[:limit]
	}

	if _, replyErr := h.replier.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: e.ReplyToken,
		Messages:   messages,
	}); replyErr != nil {
		log.Error("failed to send reply", zap.Error(replyErr))
		status = "reply_error"
	}
	h.metrics.ObserveWebhook(string(route), status)
}
