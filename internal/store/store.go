// Package store persists per-hub conversation history as full JSON
// snapshots, one record per hub. Writes are atomic; reads default to an
// empty list when no record exists.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hubchat/internal/types"
	"hubchat/internal/utils"
)

// snapshot is the on-disk envelope. Version increments on every save so
// a concurrent writer is at least detectable; last writer still wins.
type snapshot struct {
	Version       int                  `json:"version"`
	Conversations []types.Conversation `json:"conversations"`
}

type ConversationStore struct {
	dataDir string
}

func NewConversationStore(dataDir string) (*ConversationStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory required")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &ConversationStore{dataDir: dataDir}, nil
}

func (s *ConversationStore) path(hub string) string {
	return filepath.Join(s.dataDir, "conversations_"+sanitizeHub(hub)+".json")
}

// Load reads the conversation list for a hub. A missing record yields an
// empty list, never an error. A malformed record is treated as empty
// rather than wedging the session.
func (s *ConversationStore) Load(hub string) ([]types.Conversation, error) {
	data, err := os.ReadFile(s.path(hub))
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Conversation{}, nil
		}
		return nil, fmt.Errorf("failed to read conversations for %q: %w", hub, err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return []types.Conversation{}, nil
	}
	if snap.Conversations == nil {
		snap.Conversations = []types.Conversation{}
	}
	return snap.Conversations, nil
}

// Save writes the full conversation list for a hub, replacing any prior
// record. Callers must supply the complete up-to-date list; this is a
// snapshot write, not an append.
func (s *ConversationStore) Save(hub string, conversations []types.Conversation) error {
	snap := snapshot{
		Version:       s.currentVersion(hub) + 1,
		Conversations: conversations,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversations for %q: %w", hub, err)
	}
	return utils.WriteFileAtomic(s.path(hub), data, 0644)
}

// Version reports the stored version counter for a hub, 0 when no
// record exists.
func (s *ConversationStore) Version(hub string) int {
	return s.currentVersion(hub)
}

func (s *ConversationStore) currentVersion(hub string) int {
	data, err := os.ReadFile(s.path(hub))
	if err != nil {
		return 0
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0
	}
	return snap.Version
}

// sanitizeHub keeps hub-derived filenames from escaping the data dir.
func sanitizeHub(hub string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, hub)
}
