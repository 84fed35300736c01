package router

import (
	"testing"

	"percentbot/core/logger"
	tg "percentbot/core/telegram"
	"percentbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// textStubContext implements the slice of tele.Context the text route
// touches. Unimplemented methods panic via the embedded nil interface.
type textStubContext struct {
	tele.Context
	text  string
	store map[string]any
}

func newTextStubContext(text string) *textStubContext {
	return &textStubContext{text: text, store: map[string]any{}}
}

func (s *textStubContext) Sender() *tele.User    { return &tele.User{ID: 42} }
func (s *textStubContext) Chat() *tele.Chat      { return &tele.Chat{ID: 42} }
func (s *textStubContext) Update() tele.Update   { return tele.Update{ID: 1, Message: &tele.Message{Text: s.text}} }
func (s *textStubContext) Text() string          { return s.text }
func (s *textStubContext) Get(key string) any    { return s.store[key] }
func (s *textStubContext) Set(key string, v any) { s.store[key] = v }

func newTextTestRegistry(t *testing.T) *tg.Registry {
	t.Helper()
	if err := logger.InitLogger(nil); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return tg.NewRegistry()
}

func TestTextRouteRequiresSlashForCommands(t *testing.T) {
	// Bare words that happen to match a command name are free text and
	// must reach the fallback, not the command handler.
	reg := newTextTestRegistry(t)

	var commandCalls, fallbackCalls int
	reg.RegisterCommand("/start", commands.Command{
		Handler:     func(tele.Context) error { commandCalls++; return nil },
		Description: "Take the test",
	})
	reg.SetTextFallback(func(tele.Context) error { fallbackCalls++; return nil })

	route := TextRoute(nil, reg, TextOptions{})

	if err := route.Handler(newTextStubContext("start")); err != nil {
		t.Fatalf("bare text: %v", err)
	}
	if commandCalls != 0 || fallbackCalls != 1 {
		t.Fatalf("bare text: command=%d fallback=%d, want 0/1", commandCalls, fallbackCalls)
	}

	if err := route.Handler(newTextStubContext("/start")); err != nil {
		t.Fatalf("slash command: %v", err)
	}
	if commandCalls != 1 || fallbackCalls != 1 {
		t.Fatalf("slash command: command=%d fallback=%d, want 1/1", commandCalls, fallbackCalls)
	}
}

func TestTextRoutePrefersConversation(t *testing.T) {
	reg := newTextTestRegistry(t)

	var commandCalls, resolved int
	reg.RegisterCommand("/start", commands.Command{
		Handler:     func(tele.Context) error { commandCalls++; return nil },
		Description: "Take the test",
	})

	conv := &stubConversation{inProgress: true, onResolve: func() { resolved++ }}
	route := TextRoute(conv, reg, TextOptions{})

	if err := route.Handler(newTextStubContext("/start")); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != 1 || commandCalls != 0 {
		t.Fatalf("resolved=%d command=%d, want 1/0", resolved, commandCalls)
	}
}

type stubConversation struct {
	inProgress bool
	onResolve  func()
}

func (s *stubConversation) InProgress(tele.Context) bool { return s.inProgress }
func (s *stubConversation) Resolve(tele.Context) error {
	if s.onResolve != nil {
		s.onResolve()
	}
	return nil
}
