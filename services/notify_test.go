package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNotifier(token, channel, apiURL string) *SlackNotifier {
	n := &SlackNotifier{
		token:   token,
		channel: channel,
		apiURL:  apiURL,
		client:  &http.Client{Timeout: time.Second},
		queue:   make(chan notification, 64),
		done:    make(chan struct{}),
		log:     zap.NewNop(),
	}
	go n.run()
	return n
}

func TestNotifyDeliversToSlack(t *testing.T) {
	var received map[string]string
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	n := newTestNotifier("xoxb-test", "#ops", server.URL)
	n.Notify(EventCompleted, "uuid-1", "2 possible crimes")
	n.Close()

	assert.Equal(t, "Bearer xoxb-test", authHeader)
	assert.Equal(t, "#ops", received["channel"])
	assert.Contains(t, received["text"], "completed")
	assert.Contains(t, received["text"], "uuid-1")
	assert.Contains(t, received["text"], "2 possible crimes")
}

func TestNotifySwallowsDeliveryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := newTestNotifier("xoxb-test", "#ops", server.URL)
	n.Notify(EventFailed, "uuid-2", "upstream_timeout")
	n.Close() // drains without panicking or surfacing the failure
}

func TestNotifySwallowsSlackLevelError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer server.Close()

	n := newTestNotifier("xoxb-test", "#nope", server.URL)
	n.Notify(EventReceived, "uuid-3", "story 42 chars")
	n.Close()
}

func TestNotifyUnconfiguredDiscardsEvents(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	n := newTestNotifier("", "", server.URL)
	n.Notify(EventReceived, "uuid-4", "dropped")
	n.Close()

	assert.Zero(t, hits)
}

func TestNotifyDoesNotBlock(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	n := newTestNotifier("xoxb-test", "#ops", server.URL)

	start := time.Now()
	n.Notify(EventReceived, "uuid-5", "slow delivery")
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(blocked)
	n.Close()
}
