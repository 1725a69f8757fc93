package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"hubchat/internal/session"
	"hubchat/internal/types"
)

type hubItem struct {
	data   types.Hub
	loaded bool
}

func (i hubItem) Title() string {
	if i.loaded {
		return i.data.HubName + " " + loadedStyle.Render("[loaded]")
	}
	return i.data.HubName
}

func (i hubItem) Description() string {
	return fmt.Sprintf("%d files - %s", i.data.FileCount, i.data.Status)
}

func (i hubItem) FilterValue() string { return i.data.HubName }

type conversationItem struct {
	data types.Conversation
}

func (i conversationItem) Title() string { return i.data.Title }

func (i conversationItem) Description() string {
	return fmt.Sprintf("%s - %d messages",
		i.data.UpdatedAt.Format("Jan 2 15:04"), len(i.data.Messages))
}

func (i conversationItem) FilterValue() string { return i.data.Title }

func buildHubItems(hubs []types.Hub, ctrl *session.Controller) []list.Item {
	items := make([]list.Item, 0, len(hubs))
	for _, hub := range hubs {
		items = append(items, hubItem{data: hub, loaded: ctrl.IsLoaded(hub.HubName)})
	}
	return items
}

func buildConversationItems(in []types.Conversation) []list.Item {
	items := make([]list.Item, 0, len(in))
	for _, conv := range in {
		items = append(items, conversationItem{data: conv})
	}
	return items
}

func previewText(text string, limit int) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
