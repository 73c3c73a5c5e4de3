// Package channel defines the platform-neutral event model consumed by the
// inbound pipeline and the interfaces platform adapters implement.
package channel

import (
	"strings"
	"time"
)

// EventKind identifies the top-level webhook event type.
type EventKind string

const (
	EventFollow  EventKind = "follow"
	EventJoin    EventKind = "join"
	EventMessage EventKind = "message"
	EventUnknown EventKind = "unknown"
)

// MessageKind identifies the content type of a message event.
type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageImage MessageKind = "image"
	MessageOther MessageKind = "other"
)

// SourceKind identifies the conversation an event originated from.
type SourceKind string

const (
	SourceUser    SourceKind = "user"
	SourceGroup   SourceKind = "group"
	SourceRoom    SourceKind = "room"
	SourceUnknown SourceKind = "unknown"
)

// String returns the source kind as a plain string.
func (k SourceKind) String() string {
	return string(k)
}

// Source describes the conversation of an event. UserID may be set for group
// and room sources when the platform exposes the sender.
type Source struct {
	Kind    SourceKind
	UserID  string
	GroupID string
	RoomID  string
}

// ID returns the conversation identifier: the user id for private chats,
// otherwise the group or room id.
func (s Source) ID() string {
	switch s.Kind {
	case SourceUser:
		return strings.TrimSpace(s.UserID)
	case SourceGroup:
		return strings.TrimSpace(s.GroupID)
	case SourceRoom:
		return strings.TrimSpace(s.RoomID)
	default:
		return ""
	}
}

// IsPrivate reports whether the source is a one-to-one chat.
func (s Source) IsPrivate() bool {
	return s.Kind == SourceUser
}

// IsMultiPerson reports whether the source is a group or room.
func (s Source) IsMultiPerson() bool {
	return s.Kind == SourceGroup || s.Kind == SourceRoom
}

// Content providers of image messages.
const (
	ContentProviderLine     = "line"
	ContentProviderExternal = "external"
)

// Message is the payload of a message event.
type Message struct {
	ID   string
	Kind MessageKind
	Text string
	// ContentProvider is "line" when the binary is hosted by the platform,
	// "external" when the sender supplied a URL.
	ContentProvider string
}

// Event is one entry of a webhook batch.
type Event struct {
	Kind           EventKind
	Source         Source
	Timestamp      time.Time
	WebhookEventID string
	Redelivery     bool
	// ReplyToken is single-use and expires shortly after delivery.
	ReplyToken string
	Message    Message
}

// IsImage reports whether the event carries an image message.
func (e Event) IsImage() bool {
	return e.Kind == EventMessage && e.Message.Kind == MessageImage
}
