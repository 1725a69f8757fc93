package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubchat/internal/types"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	s, err := NewConversationStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleConversations() []types.Conversation {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []types.Conversation{
		{
			ID:    "1700000000000",
			Title: "What was Q3 revenue?",
			Messages: []types.Message{
				{ID: "u1", Role: types.RoleUser, Content: "What was Q3 revenue?", Timestamp: now},
				{
					ID: "a1", Role: types.RoleAssistant, Content: "Q3 revenue was $42M.",
					Timestamp: now.Add(2 * time.Second),
					Sources: []types.Source{
						{Content: "Q3 report excerpt", Metadata: map[string]any{"page": float64(7)}},
						{Content: "Earnings call transcript"},
					},
				},
			},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Second),
		},
		{ID: "1700000000001", Title: types.DefaultTitle, Messages: []types.Message{}, CreatedAt: now, UpdatedAt: now},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := sampleConversations()
	require.NoError(t, s.Save("finance-docs", want))

	got, err := s.Load("finance-docs")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("conversations mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingHub(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Load("never-saved")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadMalformedRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConversationStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conversations_broken.json"), []byte("{not json"), 0644))

	got, err := s.Load("broken")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHubsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("finance-docs", sampleConversations()))

	got, err := s.Load("legal")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveReplacesSnapshot(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("finance-docs", sampleConversations()))
	require.NoError(t, s.Save("finance-docs", []types.Conversation{}))

	got, err := s.Load("finance-docs")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVersionIncrementsOnSave(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, 0, s.Version("finance-docs"))

	require.NoError(t, s.Save("finance-docs", nil))
	assert.Equal(t, 1, s.Version("finance-docs"))

	require.NoError(t, s.Save("finance-docs", sampleConversations()))
	assert.Equal(t, 2, s.Version("finance-docs"))
}

func TestHubNameSanitized(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConversationStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("../evil/hub", nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "conversations_.._evil_hub.json", entries[0].Name())
}
