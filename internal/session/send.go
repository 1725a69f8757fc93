package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"hubchat/internal/api"
	"hubchat/internal/types"
)

// maxSendRetries is the number of additional attempts after the first
// failure of a network-classified chat request.
const maxSendRetries = 2

const networkErrText = "Network error - please check your connection"

// SendMessage runs one chat exchange against the active hub. The user
// message is appended optimistically; when no conversation is active one
// is created silently first. Network-classified failures are retried up
// to twice with fixed backoff, keeping the same user message and
// conversation. A permanent failure is recorded in the conversation as
// a synthetic assistant message so history stays coherent.
//
// The returned message is the assistant (or synthetic error) message,
// nil when the result was superseded by a hub or conversation change
// while the request was in flight.
func (c *Controller) SendMessage(ctx context.Context, text string) (*types.Message, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if c.selectedHub == "" {
		c.mu.Unlock()
		return nil, ErrNoHubSelected
	}
	if text == "" {
		c.mu.Unlock()
		return nil, ErrEmptyMessage
	}
	if c.sending {
		c.mu.Unlock()
		return nil, ErrSendInFlight
	}
	c.sending = true
	hub := c.selectedHub
	if c.currentID == "" {
		conv := newConversation()
		c.conversations = append([]types.Conversation{conv}, c.conversations...)
		c.currentID = conv.ID
		c.messages = nil
		if err := c.store.Save(hub, c.conversations); err != nil {
			c.logger.Warnf("failed to persist new conversation: %v", err)
		}
	}
	convID := c.currentID
	c.messages = append(c.messages, types.Message{
		ID:        uuid.NewString(),
		Role:      types.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := c.client.Chat(ctx, text, hub)
		if err == nil {
			c.markConnected()
			return c.appendResult(hub, convID, types.Message{
				ID:        uuid.NewString(),
				Role:      types.RoleAssistant,
				Content:   resp.Answer,
				Timestamp: time.Now(),
				Sources:   resp.Sources,
			}), nil
		}
		lastErr = err

		var apiErr *api.APIError
		serviceErr := errors.As(err, &apiErr)
		if !serviceErr {
			c.markDisconnected()
		}
		if !api.IsNetworkError(err) || attempt >= maxSendRetries {
			break
		}
		delay := c.retryDelay(serviceErr)
		c.logger.Infof("retrying chat request (attempt %d): %v", attempt+1, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			lastErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}

	msg := c.appendResult(hub, convID, types.Message{
		ID:        uuid.NewString(),
		Role:      types.RoleAssistant,
		Content:   "Error: " + errText(lastErr),
		Timestamp: time.Now(),
	})
	return msg, lastErr
}

func (c *Controller) retryDelay(serviceErr bool) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if serviceErr {
		return c.serviceRetryDelay
	}
	return c.transportRetryDelay
}

// appendResult attaches a response (or synthetic error) to the
// conversation the send started in. When the user has switched hubs or
// conversations in the meantime, the result is discarded rather than
// corrupting unrelated history.
func (c *Controller) appendResult(hub, convID string, msg types.Message) *types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedHub != hub || c.currentID != convID {
		c.logger.Debugf("discarding superseded chat result for %s/%s", hub, convID)
		return nil
	}
	c.messages = append(c.messages, msg)
	if err := c.persistActiveLocked(hub); err != nil {
		c.logger.Warnf("failed to persist conversation: %v", err)
	}
	return &msg
}

func errText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return networkErrText
}
