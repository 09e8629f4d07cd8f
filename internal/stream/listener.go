// Package stream feeds server-pushed alert events into the store over the
// /ws/alerts websocket.
package stream

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/normalize"
	"github.com/jwalitptl/frontdesk/internal/store"
	"github.com/jwalitptl/frontdesk/pkg/logger"
)

const reconnectDelay = 5 * time.Second

// event is the broadcast envelope the server sends.
type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type alertPayload struct {
	ID            int64  `json:"id"`
	AppointmentID int64  `json:"appointment_id"`
	Severity      string `json:"severity"`
	Message       string `json:"message"`
	CreatedAt     string `json:"created_at"`
}

type Listener struct {
	url    string
	store  *store.Store
	logger *logger.Logger
	dialer *websocket.Dialer
}

// NewListener creates a listener for a ws:// or wss:// alerts URL.
func NewListener(url string, st *store.Store, log *logger.Logger) *Listener {
	return &Listener{
		url:    url,
		store:  st,
		logger: log.WithComponent("stream"),
		dialer: websocket.DefaultDialer,
	}
}

// Run connects and consumes alert events until the context is cancelled,
// reconnecting after a fixed delay on any failure.
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.consume(ctx); err != nil && ctx.Err() == nil {
			l.logger.Warn("alert stream disconnected", "error", err.Error())
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) consume(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadJSON when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	l.logger.Info("alert stream connected", "url", l.url)
	for {
		var ev event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		if ev.Type != "alert" {
			continue
		}
		l.handleAlert(ev.Payload)
	}
}

func (l *Listener) handleAlert(raw json.RawMessage) {
	var payload alertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		l.logger.Warn("dropping malformed alert event", "error", err.Error())
		return
	}

	l.store.AddAlert(model.Alert{
		ID:            strconv.FormatInt(payload.ID, 10),
		Type:          "insurance",
		Severity:      model.AlertSeverity(payload.Severity),
		Title:         "Insurance alert",
		Message:       payload.Message,
		AppointmentID: payload.AppointmentID,
		Timestamp:     normalize.Instant(payload.CreatedAt),
	})
}
