package types

import "time"

// Hub is a named document collection on the server. A hub listed in the
// catalog is not necessarily resident in server memory; loadedness is
// tracked separately.
type Hub struct {
	HubName   string `json:"hub_name"`
	Status    string `json:"status"`
	FileCount int    `json:"file_count"`
}

// Source is an evidence excerpt attached to an assistant message.
type Source struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Message is a single exchange entry. Role is "user" or "assistant".
// Sources are only present on assistant messages carrying retrieval
// evidence.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []Source  `json:"sources,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTitle is the placeholder a conversation carries until its first
// user message arrives.
const DefaultTitle = "New Chat"

// Conversation is a titled, ordered message list owned by exactly one
// hub. Conversations never migrate between hubs.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConnectionStatus reports the last observed reachability of the remote
// service.
type ConnectionStatus string

const (
	StatusChecking     ConnectionStatus = "checking"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)
