package session

import (
	"time"

	"hubchat/internal/types"
	"hubchat/internal/utils"
)

const titleLimit = 50

// deriveTitle turns a first user message into a conversation title,
// truncating to 50 runes with a trailing ellipsis marker when longer.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "..."
}

// NewConversation starts an empty conversation for the selected hub and
// makes it active.
func (c *Controller) NewConversation() (*types.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedHub == "" {
		return nil, ErrNoHubSelected
	}
	conv := newConversation()
	c.conversations = append([]types.Conversation{conv}, c.conversations...)
	c.currentID = conv.ID
	c.messages = nil
	if err := c.store.Save(c.selectedHub, c.conversations); err != nil {
		return nil, err
	}
	return &conv, nil
}

func newConversation() types.Conversation {
	now := time.Now()
	return types.Conversation{
		ID:        utils.NewToken(),
		Title:     types.DefaultTitle,
		Messages:  []types.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectConversation makes a stored conversation active and brings its
// messages into view.
func (c *Controller) SelectConversation(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conv := range c.conversations {
		if conv.ID == id {
			c.currentID = id
			c.messages = append([]types.Message(nil), conv.Messages...)
			return true
		}
	}
	return false
}

// DeleteConversation removes a conversation from memory and from the
// store. Deleting the active conversation clears the visible messages
// and leaves no conversation active.
func (c *Controller) DeleteConversation(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedHub == "" {
		return ErrNoHubSelected
	}
	kept := c.conversations[:0]
	for _, conv := range c.conversations {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	c.conversations = kept
	if c.currentID == id {
		c.currentID = ""
		c.messages = nil
	}
	return c.store.Save(c.selectedHub, c.conversations)
}

// ClearMessages empties the active conversation, both in view and in
// the store.
func (c *Controller) ClearMessages() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentID == "" {
		return nil
	}
	c.messages = nil
	return c.persistActiveLocked(c.selectedHub)
}

// persistActiveLocked folds the visible message list back into the
// active conversation and writes the full list under the given hub key.
// Title derivation happens here: the placeholder is replaced by the
// first user message exactly once and never recomputed.
func (c *Controller) persistActiveLocked(hub string) error {
	if hub == "" || c.currentID == "" {
		return nil
	}
	for i := range c.conversations {
		if c.conversations[i].ID != c.currentID {
			continue
		}
		conv := &c.conversations[i]
		if conv.Title == types.DefaultTitle {
			for _, msg := range c.messages {
				if msg.Role == types.RoleUser {
					conv.Title = deriveTitle(msg.Content)
					break
				}
			}
		}
		conv.Messages = append([]types.Message(nil), c.messages...)
		conv.UpdatedAt = time.Now()
		break
	}
	return c.store.Save(hub, c.conversations)
}
