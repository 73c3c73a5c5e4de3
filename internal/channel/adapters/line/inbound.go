package line

import (
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/memohai/imgkeeper/internal/channel"
)

// convertEvents maps a webhook batch to channel events, preserving order.
func convertEvents(events []webhook.EventInterface) []channel.Event {
	out := make([]channel.Event, 0, len(events))
	for _, raw := range events {
		out = append(out, convertEvent(raw))
	}
	return out
}

func convertEvent(raw webhook.EventInterface) channel.Event {
	switch e := raw.(type) {
	case webhook.MessageEvent:
		ev := channel.Event{
			Kind:           channel.EventMessage,
			Source:         convertSource(e.Source),
			Timestamp:      millis(e.Timestamp),
			WebhookEventID: e.WebhookEventId,
			Redelivery:     isRedelivery(e.DeliveryContext),
			ReplyToken:     e.ReplyToken,
			Message:        convertMessage(e.Message),
		}
		return ev
	case webhook.FollowEvent:
		return channel.Event{
			Kind:           channel.EventFollow,
			Source:         convertSource(e.Source),
			Timestamp:      millis(e.Timestamp),
			WebhookEventID: e.WebhookEventId,
			Redelivery:     isRedelivery(e.DeliveryContext),
			ReplyToken:     e.ReplyToken,
		}
	case webhook.JoinEvent:
		return channel.Event{
			Kind:           channel.EventJoin,
			Source:         convertSource(e.Source),
			Timestamp:      millis(e.Timestamp),
			WebhookEventID: e.WebhookEventId,
			Redelivery:     isRedelivery(e.DeliveryContext),
			ReplyToken:     e.ReplyToken,
		}
	default:
		return channel.Event{Kind: channel.EventUnknown}
	}
}

func convertSource(raw webhook.SourceInterface) channel.Source {
	switch s := raw.(type) {
	case webhook.UserSource:
		return channel.Source{Kind: channel.SourceUser, UserID: s.UserId}
	case webhook.GroupSource:
		return channel.Source{Kind: channel.SourceGroup, GroupID: s.GroupId, UserID: s.UserId}
	case webhook.RoomSource:
		return channel.Source{Kind: channel.SourceRoom, RoomID: s.RoomId, UserID: s.UserId}
	default:
		return channel.Source{Kind: channel.SourceUnknown}
	}
}

func convertMessage(raw webhook.MessageContentInterface) channel.Message {
	switch m := raw.(type) {
	case webhook.TextMessageContent:
		return channel.Message{ID: m.Id, Kind: channel.MessageText, Text: m.Text}
	case webhook.ImageMessageContent:
		msg := channel.Message{ID: m.Id, Kind: channel.MessageImage}
		if m.ContentProvider != nil {
			msg.ContentProvider = strings.ToLower(string(m.ContentProvider.Type))
		}
		return msg
	default:
		return channel.Message{Kind: channel.MessageOther}
	}
}

func isRedelivery(dc *webhook.DeliveryContext) bool {
	return dc != nil && dc.IsRedelivery
}

func millis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
