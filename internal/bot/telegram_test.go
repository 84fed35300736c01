package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

// stubContext implements the slice of tele.Context the handlers touch.
// Unimplemented methods panic via the embedded nil interface.
type stubContext struct {
	tele.Context
	user  *tele.User
	text  string
	store map[string]any
	sent  []string
}

func newStubContext(userID int64, text string) *stubContext {
	return &stubContext{
		user:  &tele.User{ID: userID, Username: "tester"},
		text:  text,
		store: map[string]any{},
	}
}

func (s *stubContext) Sender() *tele.User  { return s.user }
func (s *stubContext) Chat() *tele.Chat    { return &tele.Chat{ID: s.user.ID} }
func (s *stubContext) Update() tele.Update { return tele.Update{ID: 1} }
func (s *stubContext) Text() string        { return s.text }
func (s *stubContext) Get(key string) any  { return s.store[key] }
func (s *stubContext) Set(key string, v any) {
	s.store[key] = v
}

func (s *stubContext) Send(what interface{}, _ ...interface{}) error {
	if text, ok := what.(string); ok {
		s.sent = append(s.sent, text)
	}
	return nil
}

func (s *stubContext) Respond(_ ...*tele.CallbackResponse) error { return nil }

func TestCommandsAbandonPendingEdit(t *testing.T) {
	// A registered command received while awaiting template text must
	// resolve the conversation, never leave it open.
	for _, command := range []string{"/start", "/stats", "/admin"} {
		svc, _, _ := newTestService(t)
		reg := BuildRegistry(svc)
		ctx := context.Background()

		_, err := svc.EditTextBegin(ctx, adminID)
		require.NoError(t, err)
		require.True(t, svc.InConversation(ctx, adminID))

		_, cmd, ok := reg.LookupCommand(command)
		require.True(t, ok, command)
		require.NoError(t, cmd.Handler(newStubContext(adminID, command)), command)

		assert.False(t, svc.InConversation(ctx, adminID),
			"%s must not leave the conversation awaiting", command)
	}
}

func TestCancelCommandResolvesPendingEdit(t *testing.T) {
	svc, _, _ := newTestService(t)
	reg := BuildRegistry(svc)
	ctx := context.Background()

	_, err := svc.EditTextBegin(ctx, adminID)
	require.NoError(t, err)

	_, cmd, ok := reg.LookupCommand("/cancel")
	require.True(t, ok)

	c := newStubContext(adminID, "/cancel")
	require.NoError(t, cmd.Handler(c))
	assert.False(t, svc.InConversation(ctx, adminID))
	require.Len(t, c.sent, 1)
	assert.Equal(t, msgEditCancelled, c.sent[0])
}

func TestCallbackAbandonsPendingEdit(t *testing.T) {
	svc, store, _ := newTestService(t)
	reg := BuildRegistry(svc)
	ctx := context.Background()

	_, err := svc.EditTextBegin(ctx, adminID)
	require.NoError(t, err)

	h, ok := reg.GetCallback(ActionRetry)
	require.True(t, ok)
	require.NoError(t, h(newStubContext(adminID, "")))

	assert.False(t, svc.InConversation(ctx, adminID))
	us, err := store.GetUserStats(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, 1, us.TestsCount)
}
