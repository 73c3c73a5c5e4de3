// Package line adapts the LINE Messaging API to the channel interfaces.
package line

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/memohai/imgkeeper/internal/channel"
)

// LINE accepts at most five messages per reply or push request.
const maxMessagesPerRequest = 5

// Client talks to the LINE Messaging API. It implements channel.MetadataAPI,
// channel.ContentAPI and channel.MessagingAPI.
type Client struct {
	api  *messaging_api.MessagingApiAPI
	blob *messaging_api.MessagingApiBlobAPI
}

// NewClient creates API clients authenticated with the channel access token.
func NewClient(channelAccessToken string) (*Client, error) {
	token := strings.TrimSpace(channelAccessToken)
	if token == "" {
		return nil, errors.New("line channel access token is required")
	}
	api, err := messaging_api.NewMessagingApiAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create messaging api client: %w", err)
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create blob api client: %w", err)
	}
	return &Client{api: api, blob: blob}, nil
}

func (c *Client) GetGroupSummary(ctx context.Context, groupID string) (channel.Summary, error) {
	resp, err := c.api.WithContext(ctx).GetGroupSummary(groupID)
	if err != nil {
		return channel.Summary{}, fmt.Errorf("get group summary: %w", err)
	}
	return channel.Summary{ID: resp.GroupId, Name: resp.GroupName}, nil
}

// GetRoomSummary always fails: LINE exposes no display name for rooms.
func (c *Client) GetRoomSummary(context.Context, string) (channel.Summary, error) {
	return channel.Summary{}, channel.ErrSummaryUnsupported
}

func (c *Client) GetMessageContent(ctx context.Context, messageID string) (channel.Content, error) {
	resp, err := c.blob.WithContext(ctx).GetMessageContent(messageID)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return channel.Content{}, fmt.Errorf("get message content: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return channel.Content{}, fmt.Errorf("get message content: unexpected status %d", resp.StatusCode)
	}
	return channel.Content{
		Reader:      resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

func (c *Client) ReplyText(ctx context.Context, replyToken string, texts ...string) error {
	messages := textMessages(texts)
	if len(messages) == 0 {
		return nil
	}
	_, err := c.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// PushText sends with a fresh retry key so the platform can discard
// duplicates of this request.
func (c *Client) PushText(ctx context.Context, to string, texts ...string) error {
	messages := textMessages(texts)
	if len(messages) == 0 {
		return nil
	}
	_, err := c.api.WithContext(ctx).PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: messages,
	}, uuid.NewString())
	if err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	return nil
}

func textMessages(texts []string) []messaging_api.MessageInterface {
	messages := make([]messaging_api.MessageInterface, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if len(messages) == maxMessagesPerRequest {
			break
		}
		messages = append(messages, messaging_api.TextMessage{Text: text})
	}
	return messages
}

var (
	_ channel.MetadataAPI  = (*Client)(nil)
	_ channel.ContentAPI   = (*Client)(nil)
	_ channel.MessagingAPI = (*Client)(nil)
)
