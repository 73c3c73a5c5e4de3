package line

import (
	"context"
	"errors"
	"testing"

	"github.com/memohai/imgkeeper/internal/channel"
)

func TestTextMessagesSkipsBlankAndCapsCount(t *testing.T) {
	got := textMessages([]string{"a", " ", "b", "c", "d", "e", "f"})
	if len(got) != maxMessagesPerRequest {
		t.Fatalf("expected %d messages, got %d", maxMessagesPerRequest, len(got))
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestRoomSummaryUnsupported(t *testing.T) {
	c, err := NewClient("token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.GetRoomSummary(context.Background(), "R1"); !errors.Is(err, channel.ErrSummaryUnsupported) {
		t.Fatalf("expected ErrSummaryUnsupported, got %v", err)
	}
}
