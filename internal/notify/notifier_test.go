package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/memohai/imgkeeper/internal/channel"
	"github.com/memohai/imgkeeper/internal/prune"
)

type sentMessage struct {
	kind   string
	target string
	text   string
}

type fakeMessaging struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeMessaging) ReplyText(_ context.Context, token string, texts ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, text := range texts {
		f.sent = append(f.sent, sentMessage{kind: "reply", target: token, text: text})
	}
	return nil
}

func (f *fakeMessaging) PushText(_ context.Context, to string, texts ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, text := range texts {
		f.sent = append(f.sent, sentMessage{kind: "push", target: to, text: text})
	}
	return nil
}

var privateSource = channel.Source{Kind: channel.SourceUser, UserID: "U1"}

func TestReply_Private(t *testing.T) {
	api := &fakeMessaging{}
	n := New(nil, api, Options{})

	assert.True(t, n.Reply(context.Background(), privateSource, "tok", "saved"))
	assert.Equal(t, []sentMessage{{kind: "reply", target: "tok", text: "saved"}}, api.sent)
}

func TestReply_RefusesGroupAndRoom(t *testing.T) {
	api := &fakeMessaging{}
	n := New(nil, api, Options{})

	assert.False(t, n.Reply(context.Background(), channel.Source{Kind: channel.SourceGroup, GroupID: "C1"}, "tok", "x"))
	assert.False(t, n.Reply(context.Background(), channel.Source{Kind: channel.SourceRoom, RoomID: "R1"}, "tok", "x"))
	assert.Empty(t, api.sent)
}

func TestReply_EmptyTokenIsNoop(t *testing.T) {
	api := &fakeMessaging{}
	n := New(nil, api, Options{})
	assert.False(t, n.Reply(context.Background(), privateSource, " ", "x"))
	assert.Empty(t, api.sent)
}

func TestPush_RefusesConversationIDs(t *testing.T) {
	api := &fakeMessaging{}
	n := New(nil, api, Options{AdminID: "Uadmin"})

	assert.False(t, n.Push(context.Background(), "C123", "x"))
	assert.False(t, n.Push(context.Background(), "R123", "x"))
	assert.True(t, n.Push(context.Background(), "U123", "x"))
	assert.Equal(t, []sentMessage{{kind: "push", target: "U123", text: "x"}}, api.sent)
}

func TestNotifyAdmin(t *testing.T) {
	api := &fakeMessaging{}
	n := New(nil, api, Options{AdminID: " Uadmin "})

	assert.True(t, n.AdminConfigured())
	assert.True(t, n.NotifyAdmin(context.Background(), "hello"))
	assert.Equal(t, []sentMessage{{kind: "push", target: "Uadmin", text: "hello"}}, api.sent)

	none := New(nil, api, Options{})
	assert.False(t, none.AdminConfigured())
	assert.False(t, none.NotifyAdmin(context.Background(), "ignored"))
	assert.Len(t, api.sent, 1)
}

func TestFailuresAreSwallowed(t *testing.T) {
	api := &fakeMessaging{err: errors.New("429 too many requests")}
	n := New(nil, api, Options{AdminID: "Uadmin"})

	assert.NotPanics(t, func() {
		assert.False(t, n.Reply(context.Background(), privateSource, "tok", "x"))
		assert.False(t, n.NotifyAdmin(context.Background(), "x"))
	})
}

func TestPush_TruncatesLongText(t *testing.T) {
	api := &fakeMessaging{}
	n := New(nil, api, Options{AdminID: "Uadmin"})

	long := strings.Repeat("x", prune.DefaultMaxUnits*2)
	assert.True(t, n.NotifyAdmin(context.Background(), long))
	if assert.Len(t, api.sent, 1) {
		assert.Equal(t, prune.DefaultMaxUnits, prune.CountUnits(api.sent[0].text))
		assert.True(t, strings.HasSuffix(api.sent[0].text, prune.DefaultMarker))
	}
}
