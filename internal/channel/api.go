package channel

import (
	"context"
	"errors"
	"io"
)

// ErrSummaryUnsupported is returned by MetadataAPI implementations when the
// platform cannot describe the requested conversation kind.
var ErrSummaryUnsupported = errors.New("conversation summary not supported")

// Summary is the display metadata of a group or room.
type Summary struct {
	ID   string
	Name string
}

// MetadataAPI looks up conversation display names.
type MetadataAPI interface {
	GetGroupSummary(ctx context.Context, groupID string) (Summary, error)
	GetRoomSummary(ctx context.Context, roomID string) (Summary, error)
}

// Content is a fetched message binary. Caller must close Reader.
type Content struct {
	Reader      io.ReadCloser
	ContentType string
	// Size is -1 when unknown.
	Size int64
}

// ContentAPI fetches message binaries.
type ContentAPI interface {
	GetMessageContent(ctx context.Context, messageID string) (Content, error)
}

// MessagingAPI sends text messages.
type MessagingAPI interface {
	// ReplyText answers an event through its single-use reply token.
	ReplyText(ctx context.Context, replyToken string, texts ...string) error
	// PushText sends to a user, group or room id; it may be called any number of times.
	PushText(ctx context.Context, to string, texts ...string) error
}
