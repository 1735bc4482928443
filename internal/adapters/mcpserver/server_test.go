package mcpserver

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	def := &domain.ConversationDefinition{
		InitialStateID: "greeting",
		States: map[string]domain.StateDefinition{
			"greeting": {
				ID:     "greeting",
				Prompt: "Hi! Want to book a class?",
				Transitions: []domain.Transition{
					{Condition: "yes,sure,ok", TargetStateID: "schedule"},
				},
			},
			"schedule": {ID: "schedule", Prompt: "Which day suits you?", Terminal: true},
		},
	}

	eng, err := parley.New(def, nil)
	require.NoError(t, err)
	return NewServer(eng, session.NewManager(memory.NewStore()))
}

func TestStartConversation(t *testing.T) {
	s := newTestServer(t)

	out, err := s.handleStart(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "greeting", out.StateID)
	assert.Equal(t, "Hi! Want to book a class?", out.Prompt)

	// A generated session ID is a UUID.
	_, err = uuid.Parse(out.SessionID)
	assert.NoError(t, err)
}

func TestSendMessage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	started, err := s.handleStart(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "abc"})
	require.NoError(t, err)
	require.Equal(t, "abc", started.SessionID)

	turn, err := s.handleSend(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "abc",
		"message":    "yes please",
	})
	require.NoError(t, err)
	assert.Equal(t, "schedule", turn.StateID)
	assert.Equal(t, "Which day suits you?", turn.Response)

	// The advanced state was persisted for the next turn.
	sess, err := s.sessions.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "schedule", sess.CurrentStateID)
}

func TestSendMessageValidation(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSend(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"message": "hi",
	})
	assert.Error(t, err)
}

func TestSendMessageUnknownSession(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSend(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"session_id": "ghost",
		"message":    "hi",
	})
	assert.Error(t, err)
}
