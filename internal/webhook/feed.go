package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const feedQueueSize = 16

// Feed pushes retained notifications to connected WebSocket clients so
// operators can watch unmatched webhook traffic live. A slow client drops
// messages rather than stalling the webhook path.
type Feed struct {
	mu   sync.Mutex
	subs map[string]chan Notification
}

// NewFeed creates a Feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{subs: make(map[string]chan Notification)}
}

// Publish fans n out to all subscribers without blocking.
func (f *Feed) Publish(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, ch := range f.subs {
		select {
		case ch <- n:
		default:
			slog.Debug("Dropping notification for slow feed subscriber", "subscriber", id)
		}
	}
}

func (f *Feed) subscribe() (string, chan Notification) {
	id := uuid.NewString()
	ch := make(chan Notification, feedQueueSize)

	f.mu.Lock()
	f.subs[id] = ch
	f.mu.Unlock()
	return id, ch
}

func (f *Feed) unsubscribe(id string) {
	f.mu.Lock()
	delete(f.subs, id)
	f.mu.Unlock()
}

// ServeHTTP upgrades the request to a WebSocket and streams notifications
// until the client disconnects.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "feed closed"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	id, ch := f.subscribe()
	defer f.unsubscribe(id)
	slog.Info("Notification feed subscriber connected", "subscriber", id, "ip", r.RemoteAddr)

	// No inbound messages are expected; CloseRead cancels the context when
	// the peer goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-ch:
			if err := f.write(ctx, conn, n); err != nil {
				slog.Debug("Feed write failed", "subscriber", id, "error", err)
				return
			}
		}
	}
}

func (f *Feed) write(ctx context.Context, conn *websocket.Conn, n Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}
