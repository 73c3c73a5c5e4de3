package inbound

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/imgkeeper/internal/channel"
	"github.com/memohai/imgkeeper/internal/media"
	"github.com/memohai/imgkeeper/internal/metrics"
)

// Handle runs the pipeline for one event synchronously. Unhandled event and
// source combinations are ignored.
func (d *Dispatcher) Handle(ctx context.Context, ev channel.Event) error {
	switch ev.Kind {
	case channel.EventFollow:
		d.handleFollow(ctx, ev)
		return nil
	case channel.EventJoin:
		d.handleJoin(ctx, ev)
		return nil
	case channel.EventMessage:
		switch ev.Message.Kind {
		case channel.MessageImage:
			return d.handleImage(ctx, ev)
		case channel.MessageText:
			d.handleText(ctx, ev)
			return nil
		}
	}
	return nil
}

func (d *Dispatcher) handleFollow(ctx context.Context, ev channel.Event) {
	if !ev.Source.IsPrivate() || !d.policy.ReplyOnPrivate {
		return
	}
	d.notifier.Reply(ctx, ev.Source, ev.ReplyToken, followText)
}

// handleJoin warms the name cache for the new conversation and tells the
// admin. The group itself receives nothing.
func (d *Dispatcher) handleJoin(ctx context.Context, ev channel.Event) {
	if !ev.Source.IsMultiPerson() {
		return
	}
	folder := d.resolver.Resolve(ctx, ev.Source)
	d.logger.Info("joined conversation", slog.String("source", ev.Source.Kind.String()), slog.String("folder", folder))
	if d.notifier.AdminConfigured() {
		d.notifier.NotifyAdmin(ctx, joinText(ev.Source, folder))
	}
}

func (d *Dispatcher) handleText(ctx context.Context, ev channel.Event) {
	if !ev.Source.IsPrivate() || !d.policy.ReplyOnPrivate {
		return
	}
	switch strings.ToLower(strings.TrimSpace(ev.Message.Text)) {
	case "/id":
		d.notifier.Reply(ctx, ev.Source, ev.ReplyToken, idText(ev.Source.UserID))
	case "/help":
		d.notifier.Reply(ctx, ev.Source, ev.ReplyToken, helpText)
	}
}

// handleImage saves the image, then notifies the admin and/or acknowledges
// the sender depending on the source and policy. Repeated message ids and
// externally hosted images are skipped.
func (d *Dispatcher) handleImage(ctx context.Context, ev channel.Event) error {
	messageID := strings.TrimSpace(ev.Message.ID)
	if ev.Message.ContentProvider == channel.ContentProviderExternal {
		// The platform holds no binary for these; the sender only shared a URL.
		metrics.EventsDropped.WithLabelValues("external_content").Inc()
		d.logger.Debug("external image skipped", slog.String("message_id", messageID))
		return nil
	}
	first, err := d.seen.MarkSeen(ctx, messageID)
	if err != nil {
		d.logger.Warn("dedup check failed", slog.String("message_id", messageID), slog.Any("error", err))
		first = true
	}
	if !first {
		metrics.EventsDropped.WithLabelValues("duplicate").Inc()
		d.logger.Info("duplicate image skipped", slog.String("message_id", messageID), slog.Bool("redelivery", ev.Redelivery))
		return nil
	}

	saved, err := d.saver.Save(ctx, messageID, ev.Source)
	if err != nil {
		// Release the id so a redelivery of this message can retry the save.
		if ferr := d.seen.Forget(context.WithoutCancel(ctx), messageID); ferr != nil {
			d.logger.Warn("dedup release failed", slog.String("message_id", messageID), slog.Any("error", ferr))
		}
		return fmt.Errorf("save image %s: %w", messageID, err)
	}
	metrics.ImagesSaved.WithLabelValues(ev.Source.Kind.String()).Inc()
	metrics.ImageBytes.Add(float64(saved.SizeBytes))

	switch {
	case ev.Source.IsMultiPerson():
		if d.notifier.AdminConfigured() {
			d.notifier.NotifyAdmin(ctx, savedAdminText(ev.Source, saved))
		}
	case ev.Source.IsPrivate():
		if d.policy.NotifyAdminAlways && d.notifier.AdminConfigured() {
			d.notifier.NotifyAdmin(ctx, savedAdminText(ev.Source, saved))
		}
		if d.policy.ReplyOnPrivate {
			d.notifier.Reply(ctx, ev.Source, ev.ReplyToken, savedReplyText)
		}
	default:
		if d.policy.NotifyAdminAlways && d.notifier.AdminConfigured() {
			d.notifier.NotifyAdmin(ctx, savedAdminText(ev.Source, saved))
		}
	}
	return nil
}

// compile-time check that media.Saver satisfies ImageSaver.
var _ ImageSaver = (*media.Saver)(nil)
