package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerLongpollDefaults(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll"})

	lp, ok := p.(*tele.LongPoller)
	if !ok {
		t.Fatalf("poller type = %T, want *tele.LongPoller", p)
	}
	if lp.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", lp.Timeout)
	}
	want := []string{"message", "callback_query", "inline_query"}
	if len(lp.AllowedUpdates) != len(want) {
		t.Fatalf("allowed updates = %v, want %v", lp.AllowedUpdates, want)
	}
	for i, kind := range want {
		if lp.AllowedUpdates[i] != kind {
			t.Errorf("allowed updates[%d] = %q, want %q", i, lp.AllowedUpdates[i], kind)
		}
	}
}

func TestBuildPollerWebhook(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode:        " Webhook ",
		AllowedUpdates: []string{"message"},
		Webhook:        WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example/hook"},
	})

	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("poller type = %T, want *tele.Webhook", p)
	}
	if wh.Listen != "0.0.0.0:8443" {
		t.Errorf("listen = %q", wh.Listen)
	}
	if len(wh.AllowedUpdates) != 1 || wh.AllowedUpdates[0] != "message" {
		t.Errorf("allowed updates = %v, want [message]", wh.AllowedUpdates)
	}
	if wh.Endpoint == nil || wh.Endpoint.PublicURL != "https://bot.example/hook" {
		t.Errorf("endpoint = %+v", wh.Endpoint)
	}
}
