package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/imgkeeper/internal/channel"
)

const testSecret = "channel-secret"

type fakeDispatcher struct {
	batches [][]channel.Event
}

func (d *fakeDispatcher) Dispatch(events []channel.Event) int {
	d.batches = append(d.batches, events)
	return len(events)
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func serveWebhook(t *testing.T, h *WebhookHandler, body, signature string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("X-Line-Signature", signature)
	}
	rec := httptest.NewRecorder()
	return rec, h.Handle(e.NewContext(req, rec))
}

const batchBody = `{"destination":"Ubot","events":[` +
	`{"type":"message","mode":"active","timestamp":1705311000000,"webhookEventId":"01HEV1","deliveryContext":{"isRedelivery":false},` +
	`"source":{"type":"group","groupId":"Cabcdef123456","userId":"U1"},"replyToken":"rt1",` +
	`"message":{"type":"image","id":"m1","quoteToken":"q1","contentProvider":{"type":"line"}}},` +
	`{"type":"message","mode":"active","timestamp":1705311000500,"webhookEventId":"01HEV2","deliveryContext":{"isRedelivery":true},` +
	`"source":{"type":"user","userId":"U2"},"replyToken":"rt2",` +
	`"message":{"type":"text","id":"m2","quoteToken":"q2","text":"/id"}},` +
	`{"type":"follow","mode":"active","timestamp":1705311001000,"webhookEventId":"01HEV3","deliveryContext":{"isRedelivery":false},` +
	`"source":{"type":"user","userId":"U3"},"replyToken":"rt3","follow":{"isUnblocked":false}},` +
	`{"type":"join","mode":"active","timestamp":1705311002000,"webhookEventId":"01HEV4","deliveryContext":{"isRedelivery":false},` +
	`"source":{"type":"room","roomId":"Rroom42","userId":"U4"},"replyToken":"rt4"},` +
	`{"type":"unfollow","mode":"active","timestamp":1705311003000,"webhookEventId":"01HEV5","deliveryContext":{"isRedelivery":false},` +
	`"source":{"type":"user","userId":"U5"}}` +
	`]}`

func TestWebhookHandler_DispatchesConvertedBatch(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	h := NewWebhookHandler(nil, testSecret, dispatcher)

	rec, err := serveWebhook(t, h, batchBody, sign(batchBody))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, dispatcher.batches, 1)

	events := dispatcher.batches[0]
	require.Len(t, events, 5)

	img := events[0]
	assert.True(t, img.IsImage())
	assert.Equal(t, channel.Source{Kind: channel.SourceGroup, GroupID: "Cabcdef123456", UserID: "U1"}, img.Source)
	assert.Equal(t, "m1", img.Message.ID)
	assert.Equal(t, channel.ContentProviderLine, img.Message.ContentProvider)
	assert.Equal(t, "rt1", img.ReplyToken)
	assert.Equal(t, "01HEV1", img.WebhookEventID)
	assert.True(t, img.Timestamp.Equal(time.UnixMilli(1705311000000)))

	text := events[1]
	assert.Equal(t, channel.MessageText, text.Message.Kind)
	assert.Equal(t, "/id", text.Message.Text)
	assert.True(t, text.Redelivery)
	assert.True(t, text.Source.IsPrivate())

	assert.Equal(t, channel.EventFollow, events[2].Kind)
	assert.Equal(t, "U3", events[2].Source.UserID)

	assert.Equal(t, channel.EventJoin, events[3].Kind)
	assert.Equal(t, channel.Source{Kind: channel.SourceRoom, RoomID: "Rroom42", UserID: "U4"}, events[3].Source)

	assert.Equal(t, channel.EventUnknown, events[4].Kind)
}

func TestWebhookHandler_RejectsInvalidSignature(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	h := NewWebhookHandler(nil, testSecret, dispatcher)

	for name, signature := range map[string]string{
		"missing": "",
		"wrong":   base64.StdEncoding.EncodeToString([]byte("not-a-signature")),
	} {
		_, err := serveWebhook(t, h, batchBody, signature)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he, name)
		assert.Equal(t, http.StatusBadRequest, he.Code, name)
	}
	assert.Empty(t, dispatcher.batches)
}

func TestWebhookHandler_EmptyBatchAcknowledged(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	h := NewWebhookHandler(nil, testSecret, dispatcher)
	body := `{"destination":"Ubot","events":[]}`

	rec, err := serveWebhook(t, h, body, sign(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dispatcher.batches)
}

func TestWebhookHandler_Probe(t *testing.T) {
	t.Parallel()

	h := NewWebhookHandler(nil, testSecret, &fakeDispatcher{})
	e := echo.New()
	h.Register(e)
	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
