package settlement

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// confirmation is one settlement outcome pushed by the chain node.
type confirmation struct {
	IdempotencyKey string `json:"idempotency_key"`
	Ref            string `json:"ref"`
	Status         string `json:"status"` // CONFIRMED or REJECTED
	Reason         string `json:"reason,omitempty"`
}

// confirmListener receives settlement confirmations over the node's
// websocket stream and routes them to the submit call waiting on each
// idempotency key. Implements infra.WebSocketHandler; the reconnect loop
// belongs to the worker.
type confirmListener struct {
	url     string
	chainID string

	mu      sync.Mutex
	pending map[string]chan confirmation
}

func newConfirmListener(url, chainID string) *confirmListener {
	return &confirmListener{
		url:     url,
		chainID: chainID,
		pending: make(map[string]chan confirmation),
	}
}

// await registers interest in a key. The returned channel receives exactly
// one confirmation; cancel removes the registration.
func (l *confirmListener) await(key string) (<-chan confirmation, func()) {
	ch := make(chan confirmation, 1)
	l.mu.Lock()
	l.pending[key] = ch
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		delete(l.pending, key)
		l.mu.Unlock()
	}
	return ch, cancel
}

func (l *confirmListener) GetURL() string { return l.url }
func (l *confirmListener) ID() string     { return "settlement-confirm" }

// OnConnect subscribes to the confirmation topic for our chain.
func (l *confirmListener) OnConnect(_ context.Context, conn *websocket.Conn) error {
	sub, err := json.Marshal(map[string]string{
		"action":   "subscribe",
		"topic":    "settlements",
		"chain_id": l.chainID,
	})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, sub)
}

// OnMessage routes one confirmation to its waiter, if still registered.
func (l *confirmListener) OnMessage(_ context.Context, msg []byte) {
	var c confirmation
	if err := json.Unmarshal(msg, &c); err != nil {
		slog.Warn("Unparseable settlement message", slog.Any("error", err))
		return
	}
	if c.IdempotencyKey == "" {
		return // heartbeat or topic ack
	}

	l.mu.Lock()
	ch, ok := l.pending[c.IdempotencyKey]
	if ok {
		delete(l.pending, c.IdempotencyKey)
	}
	l.mu.Unlock()

	if !ok {
		slog.Debug("Confirmation for unknown key", slog.String("key", c.IdempotencyKey))
		return
	}
	ch <- c
}

func (l *confirmListener) OnPing(_ context.Context, conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}
