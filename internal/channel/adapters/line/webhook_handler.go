package line

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/memohai/imgkeeper/internal/channel"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// EventDispatcher accepts converted events without blocking on their processing.
type EventDispatcher interface {
	Dispatch(events []channel.Event) int
}

// WebhookHandler receives LINE webhook callbacks.
type WebhookHandler struct {
	logger     *slog.Logger
	secret     string
	dispatcher EventDispatcher
}

// NewWebhookHandler creates the public webhook handler. secret is the channel
// secret used to verify X-Line-Signature.
func NewWebhookHandler(log *slog.Logger, secret string, dispatcher EventDispatcher) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		logger:     log.With(slog.String("handler", "line_webhook")),
		secret:     secret,
		dispatcher: dispatcher,
	}
}

// Register registers webhook callback routes.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.GET("/webhook", h.HandleProbe)
	e.POST("/webhook", h.Handle)
}

// HandleProbe responds to health/probe requests on the webhook URL.
func (h *WebhookHandler) HandleProbe(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Handle verifies the signature, enqueues the batch and acknowledges at once.
func (h *WebhookHandler) Handle(c echo.Context) error {
	if h.dispatcher == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "line webhook dispatcher not configured")
	}
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, webhookMaxBodyBytes)

	cb, err := webhook.ParseRequest(h.secret, req)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, webhook.ErrInvalidSignature):
			h.logger.Warn("invalid webhook signature", slog.String("remote_ip", c.RealIP()))
			return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
		case errors.As(err, &tooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payload too large")
		default:
			h.logger.Warn("webhook parse failed", slog.Any("error", err))
			return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
		}
	}

	events := convertEvents(cb.Events)
	if len(events) > 0 {
		accepted := h.dispatcher.Dispatch(events)
		h.logger.Debug("webhook batch queued", slog.Int("events", len(events)), slog.Int("accepted", accepted))
	}
	return c.String(http.StatusOK, "OK")
}
