// Package notify sends best-effort text messages to the originating chat or
// the administrator. Errors are logged and never returned.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/memohai/imgkeeper/internal/channel"
	"github.com/memohai/imgkeeper/internal/metrics"
	"github.com/memohai/imgkeeper/internal/prune"
)

const defaultTimeout = 10 * time.Second

// Options configures a Notifier.
type Options struct {
	// AdminID is the user id that receives push notifications. Empty disables them.
	AdminID string
	// Timeout bounds one outbound call.
	Timeout time.Duration
}

// Notifier enforces the outbound policy: group and room conversations never
// receive messages; only private chats (by reply) and the admin (by push) do.
type Notifier struct {
	api     channel.MessagingAPI
	adminID string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Notifier.
func New(log *slog.Logger, api channel.MessagingAPI, opts Options) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Notifier{
		api:     api,
		adminID: strings.TrimSpace(opts.AdminID),
		timeout: opts.Timeout,
		logger:  log.With(slog.String("component", "notify")),
	}
}

// AdminConfigured reports whether admin notifications are possible.
func (n *Notifier) AdminConfigured() bool {
	return n.adminID != ""
}

// Reply answers a private-chat event through its reply token. Replies to
// group or room events are refused. It reports whether the message was sent.
func (n *Notifier) Reply(ctx context.Context, source channel.Source, replyToken, text string) bool {
	replyToken = strings.TrimSpace(replyToken)
	if replyToken == "" || n.api == nil {
		return false
	}
	if !source.IsPrivate() {
		metrics.Notifications.WithLabelValues("reply", "refused").Inc()
		n.logger.Warn("reply to non-private conversation refused",
			slog.String("source", source.Kind.String()),
			slog.String("id", source.ID()),
		)
		return false
	}
	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.api.ReplyText(callCtx, replyToken, prune.Text(text, prune.Config{})); err != nil {
		metrics.Notifications.WithLabelValues("reply", "error").Inc()
		n.logger.Warn("reply failed", slog.String("user_id", source.UserID), slog.Any("error", err))
		return false
	}
	metrics.Notifications.WithLabelValues("reply", "ok").Inc()
	return true
}

// Push sends text to a user id. Group and room ids are refused unless they
// equal the configured admin id.
func (n *Notifier) Push(ctx context.Context, to, text string) bool {
	to = strings.TrimSpace(to)
	if to == "" || n.api == nil {
		return false
	}
	if isConversationID(to) && to != n.adminID {
		metrics.Notifications.WithLabelValues("push", "refused").Inc()
		n.logger.Warn("push to group or room refused", slog.String("to", to))
		return false
	}
	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.api.PushText(callCtx, to, prune.Text(text, prune.Config{})); err != nil {
		metrics.Notifications.WithLabelValues("push", "error").Inc()
		n.logger.Warn("push failed", slog.String("to", to), slog.Any("error", err))
		return false
	}
	metrics.Notifications.WithLabelValues("push", "ok").Inc()
	return true
}

// NotifyAdmin pushes text to the admin. It is a no-op without an admin id.
func (n *Notifier) NotifyAdmin(ctx context.Context, text string) bool {
	if !n.AdminConfigured() {
		return false
	}
	return n.Push(ctx, n.adminID, text)
}

// isConversationID reports whether id names a group (C...) or room (R...).
func isConversationID(id string) bool {
	return strings.HasPrefix(id, "C") || strings.HasPrefix(id, "R")
}
