package session

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubchat/internal/types"
)

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "short question", deriveTitle("short question"))

	exactly50 := strings.Repeat("a", 50)
	assert.Equal(t, exactly50, deriveTitle(exactly50))

	long := strings.Repeat("a", 51)
	assert.Equal(t, exactly50+"...", deriveTitle(long))

	// Rune-based truncation, not byte-based.
	wide := strings.Repeat("日", 60)
	assert.Equal(t, strings.Repeat("日", 50)+"...", deriveTitle(wide))
}

func TestTitleDerivedOnceAndKept(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.SwitchHub(ctx, "finance-docs")
	require.NoError(t, err)

	_, err = ctrl.SendMessage(ctx, "first question")
	require.NoError(t, err)
	_, err = ctrl.SendMessage(ctx, "second question")
	require.NoError(t, err)

	convs := ctrl.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "first question", convs[0].Title)
	assert.Len(t, convs[0].Messages, 4)
}

func TestNewConversationRequiresHub(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	_, err := ctrl.NewConversation()
	assert.ErrorIs(t, err, ErrNoHubSelected)
}

func TestNewConversationPrepends(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.SwitchHub(ctx, "finance-docs")
	require.NoError(t, err)

	first, err := ctrl.NewConversation()
	require.NoError(t, err)
	second, err := ctrl.NewConversation()
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	convs := ctrl.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, second.ID, convs[0].ID, "newest conversation comes first")
	assert.Equal(t, second.ID, ctrl.CurrentConversationID())
	assert.Equal(t, types.DefaultTitle, convs[0].Title)
}

func TestSelectConversation(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.SwitchHub(ctx, "finance-docs")
	require.NoError(t, err)
	_, err = ctrl.SendMessage(ctx, "a question")
	require.NoError(t, err)
	saved := ctrl.CurrentConversationID()

	_, err = ctrl.NewConversation()
	require.NoError(t, err)
	assert.Empty(t, ctrl.Messages())

	assert.True(t, ctrl.SelectConversation(saved))
	assert.Equal(t, saved, ctrl.CurrentConversationID())
	assert.Len(t, ctrl.Messages(), 2)

	assert.False(t, ctrl.SelectConversation("no-such-id"))
	assert.Equal(t, saved, ctrl.CurrentConversationID())
}

func TestDeleteConversation(t *testing.T) {
	ctrl, _, st := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.SwitchHub(ctx, "finance-docs")
	require.NoError(t, err)
	_, err = ctrl.SendMessage(ctx, "a question")
	require.NoError(t, err)
	active := ctrl.CurrentConversationID()

	require.NoError(t, ctrl.DeleteConversation(active))
	assert.Empty(t, ctrl.CurrentConversationID())
	assert.Empty(t, ctrl.Messages())
	assert.Empty(t, ctrl.Conversations())

	saved, err := st.Load("finance-docs")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestDeleteInactiveConversationKeepsView(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.SwitchHub(ctx, "finance-docs")
	require.NoError(t, err)
	_, err = ctrl.SendMessage(ctx, "a question")
	require.NoError(t, err)
	active := ctrl.CurrentConversationID()

	other, err := ctrl.NewConversation()
	require.NoError(t, err)
	require.True(t, ctrl.SelectConversation(active))

	require.NoError(t, ctrl.DeleteConversation(other.ID))
	assert.Equal(t, active, ctrl.CurrentConversationID())
	assert.Len(t, ctrl.Messages(), 2)
	assert.Len(t, ctrl.Conversations(), 1)
}

func TestClearMessages(t *testing.T) {
	ctrl, _, st := newTestController(t)
	ctx := context.Background()

	_, err := ctrl.SwitchHub(ctx, "finance-docs")
	require.NoError(t, err)
	_, err = ctrl.SendMessage(ctx, "a question")
	require.NoError(t, err)

	require.NoError(t, ctrl.ClearMessages())
	assert.Empty(t, ctrl.Messages())

	saved, err := st.Load("finance-docs")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Empty(t, saved[0].Messages)
}
