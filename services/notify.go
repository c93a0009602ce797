package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type NotificationEvent string

const (
	EventReceived  NotificationEvent = "received"
	EventCompleted NotificationEvent = "completed"
	EventFailed    NotificationEvent = "failed"
)

const slackAPIURL = "https://slack.com/api/chat.postMessage"

type notification struct {
	Event       NotificationEvent
	RequestUUID string
	Detail      string
}

// SlackNotifier posts lifecycle events to a Slack channel from a single
// worker goroutine. Notify never blocks and delivery failures are only
// logged; nothing here can reach the request path.
type SlackNotifier struct {
	token   string
	channel string
	apiURL  string
	client  *http.Client
	queue   chan notification
	done    chan struct{}
	log     *zap.Logger
}

func NewSlackNotifier(token, channel string, log *zap.Logger) *SlackNotifier {
	n := &SlackNotifier{
		token:   token,
		channel: channel,
		apiURL:  slackAPIURL,
		client:  &http.Client{Timeout: 8 * time.Second},
		queue:   make(chan notification, 64),
		done:    make(chan struct{}),
		log:     log,
	}
	go n.run()
	return n
}

// Notify enqueues the event and returns immediately. A full queue drops the
// event; an unconfigured notifier discards everything.
func (n *SlackNotifier) Notify(event NotificationEvent, requestUUID, detail string) {
	if n.token == "" || n.channel == "" {
		return
	}
	select {
	case n.queue <- notification{Event: event, RequestUUID: requestUUID, Detail: detail}:
	default:
		n.log.Warn("notification queue full, dropping event",
			zap.String("event", string(event)),
			zap.String("request_uuid", requestUUID))
	}
}

// Close drains the queue and stops the worker. Notify must not be called
// after Close.
func (n *SlackNotifier) Close() {
	close(n.queue)
	<-n.done
}

func (n *SlackNotifier) run() {
	defer close(n.done)
	for msg := range n.queue {
		if err := n.post(msg); err != nil {
			n.log.Warn("notification delivery failed",
				zap.String("event", string(msg.Event)),
				zap.String("request_uuid", msg.RequestUUID),
				zap.Error(err))
		}
	}
}

func (n *SlackNotifier) post(msg notification) error {
	body, err := json.Marshal(map[string]string{
		"channel": n.channel,
		"text":    fmt.Sprintf("[ai-judge] %s request=%s %s", msg.Event, msg.RequestUUID, msg.Detail),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, n.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API status %d", resp.StatusCode)
	}
	var payload struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}
	if !payload.OK {
		return fmt.Errorf("slack API error: %s", payload.Error)
	}
	return nil
}
