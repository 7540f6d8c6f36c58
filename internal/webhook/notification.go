package webhook

import (
	"fmt"
	"sync"
)

// Notification is one inbound webhook delivery. Data holds the raw payload as
// received, plus the convo_ai_action annotation once an agent action ran.
// Only unprocessed notifications are retained, and never across restarts.
type Notification struct {
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
	Processed bool           `json:"processed"`
}

// noticeKey normalizes a noticeId for dedup membership. The notifier sends it
// as either a string or a number; both forms must collide.
func noticeKey(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return fmt.Sprintf("%d", int64(id))
		}
		return fmt.Sprintf("%v", id)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

// dedupSet tracks already-processed notice IDs. When the set outgrows its
// capacity it is reset wholesale, keeping only the triggering ID: bounded
// memory is favored over precise dedup under sustained volume.
type dedupSet struct {
	mu       sync.Mutex
	ids      map[string]struct{}
	capacity int
}

func newDedupSet(capacity int) *dedupSet {
	return &dedupSet{
		ids:      make(map[string]struct{}),
		capacity: capacity,
	}
}

// markSeen records id and reports whether it had been seen before.
func (s *dedupSet) markSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return true
	}
	s.ids[id] = struct{}{}
	if len(s.ids) > s.capacity {
		s.ids = map[string]struct{}{id: {}}
	}
	return false
}

func (s *dedupSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// notificationLog retains the most recent unmatched notifications, newest
// first, up to a fixed capacity. Oldest entries fall off on overflow.
type notificationLog struct {
	mu       sync.Mutex
	entries  []Notification
	capacity int
}

func newNotificationLog(capacity int) *notificationLog {
	return &notificationLog{capacity: capacity}
}

func (l *notificationLog) prepend(n Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Notification{n}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
}

// snapshot returns a copy of the retained entries, newest first.
func (l *notificationLog) snapshot() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Notification, len(l.entries))
	copy(out, l.entries)
	return out
}
