// Package webhook processes call lifecycle notifications and drives the
// conversational AI agent accordingly.
package webhook

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Event type codes delivered by the call notification service.
const (
	eventCallEstablished = 103
	eventCallTerminated  = 104
)

const (
	// channelMarker identifies bridge-originated channels by substring.
	channelMarker = "pstn"
	// expectedUID is the fixed bridge caller principal.
	expectedUID = 111
	// expectedProductID is the product code for voice calls.
	expectedProductID = 1

	maxTrackedIDs    = 1000
	maxRetained      = 50
	timestampLayout  = "2006-01-02 15:04:05 UTC"
	actionAnnotation = "convo_ai_action"
)

// AgentLifecycle is the controller surface the processor drives.
type AgentLifecycle interface {
	Active() bool
	Start(ctx context.Context, channelName string) error
	Stop(ctx context.Context) error
}

// Publisher receives notifications that were retained as unprocessed.
type Publisher interface {
	Publish(n Notification)
}

// Result is the processing outcome returned to the notification service.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Processor deduplicates inbound notifications, classifies them and starts or
// stops the agent session on qualifying call events. State is in-memory only.
type Processor struct {
	agents   AgentLifecycle
	feed     Publisher
	seen     *dedupSet
	retained *notificationLog
	now      func() time.Time
}

// NewProcessor creates a Processor. feed may be nil when no live subscribers
// are wanted.
func NewProcessor(agents AgentLifecycle, feed Publisher) *Processor {
	return &Processor{
		agents:   agents,
		feed:     feed,
		seen:     newDedupSet(maxTrackedIDs),
		retained: newNotificationLog(maxRetained),
		now:      time.Now,
	}
}

// Process handles one decoded webhook delivery.
//
// A duplicate noticeId is skipped outright. Otherwise the ID is marked seen
// before any action runs: a failed downstream action is not retried on
// redelivery (at-most-once bias). Notifications that trigger no successful
// action are retained for inspection.
func (p *Processor) Process(ctx context.Context, data map[string]any) Result {
	id := noticeKey(data["noticeId"])
	if p.seen.markSeen(id) {
		return Result{Status: "skipped", Message: "Duplicate notification"}
	}

	n := Notification{
		Timestamp: p.now().UTC().Format(timestampLayout),
		Data:      data,
	}

	eventType, hasType := intField(data, "eventType")
	if hasType && (eventType == eventCallEstablished || eventType == eventCallTerminated) && qualifies(data) {
		channel := channelName(data)
		switch {
		case eventType == eventCallEstablished && !p.agents.Active() && channel != "":
			if err := p.agents.Start(ctx, channel); err != nil {
				slog.Warn("Agent start failed", "notice_id", id, "channel", channel, "error", err)
			} else {
				n.Data[actionAnnotation] = "started"
				n.Processed = true
			}
		case eventType == eventCallTerminated && p.agents.Active():
			if err := p.agents.Stop(ctx); err != nil {
				slog.Warn("Agent stop failed", "notice_id", id, "error", err)
			} else {
				n.Data[actionAnnotation] = "stopped"
				n.Processed = true
			}
		}
	}

	if !n.Processed {
		p.retained.prepend(n)
		if p.feed != nil {
			p.feed.Publish(n)
		}
	}

	return Result{Status: "received", Message: "Webhook processed successfully"}
}

// Retained returns the unprocessed notifications on hand, newest first.
func (p *Processor) Retained() []Notification {
	return p.retained.snapshot()
}

// qualifies reports whether the notification describes the bridge call this
// relay manages: a pstn-marked channel, the fixed bridge caller uid and the
// voice product code.
func qualifies(data map[string]any) bool {
	if !strings.Contains(strings.ToLower(channelName(data)), channelMarker) {
		return false
	}
	uid, ok := intField(payload(data), "uid")
	if !ok || uid != expectedUID {
		return false
	}
	productID, ok := intField(data, "productId")
	return ok && productID == expectedProductID
}

func payload(data map[string]any) map[string]any {
	if p, ok := data["payload"].(map[string]any); ok {
		return p
	}
	return nil
}

func channelName(data map[string]any) string {
	if name, ok := payload(data)["channelName"].(string); ok {
		return name
	}
	return ""
}

// intField reads an integer out of decoded JSON, where numbers arrive as
// float64.
func intField(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
