// Package events is the engine's structured event stream: a bounded
// in-memory history, live fan-out to WebSocket subscribers, and optional
// persistence to Postgres. Event names are closed-set; see registry.go.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hollowpine/StorylineEngine/internal/storage/postgres"
)

// Event is one emitted engine event.
type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Subscriber receives live events. Delivery is best-effort: a full channel
// drops events for that subscriber rather than stalling the emitter.
type Subscriber chan Event

// Log is an event sink: a fixed-size ring of recent events plus the live
// subscriber set. The zero value is not usable; construct with NewLog.
type Log struct {
	mu      sync.Mutex
	ring    []Event
	next    int
	wrapped bool
	subs    map[Subscriber]struct{}

	pg       *postgres.Client
	pgFailed bool
}

// NewLog returns a log retaining the last size events.
func NewLog(size int) *Log {
	if size <= 0 {
		size = 1
	}
	return &Log{
		ring: make([]Event, size),
		subs: make(map[Subscriber]struct{}),
	}
}

// Emit records an event, fans it out to subscribers, and appends it to
// Postgres when a client is attached. It returns the event's JSON encoding.
// Unknown event names are rejected.
func (l *Log) Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	l.mu.Lock()
	l.add(e)
	for sub := range l.subs {
		select {
		case sub <- e:
		default:
			// Slow subscriber; drop rather than block the engine.
		}
	}
	pg := l.pg
	l.mu.Unlock()

	if pg != nil {
		if err := pg.Append(ts, level, name, msg, fields, ""); err != nil {
			l.recordAppendFailure(err)
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return b, nil
}

// recordAppendFailure surfaces the first Postgres failure as a system.error
// in the ring. It writes the ring directly, not through Emit, so a
// persistently failing database cannot recurse or spam the history.
func (l *Log) recordAppendFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pgFailed {
		return
	}
	l.pgFailed = true
	l.add(Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     "error",
		Name:      "system.error",
		Message:   "postgres append failed",
		Fields:    map[string]interface{}{"error": err.Error()},
	})
}

// add stores an event in the ring. Caller holds l.mu.
func (l *Log) add(e Event) {
	l.ring[l.next] = e
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.wrapped = true
	}
}

// Snapshot returns the retained history, oldest first.
func (l *Log) Snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.wrapped {
		return append([]Event{}, l.ring[:l.next]...)
	}
	out := make([]Event, 0, len(l.ring))
	out = append(out, l.ring[l.next:]...)
	out = append(out, l.ring[:l.next]...)
	return out
}

// Recent returns the newest n retained events, oldest first. n <= 0 or
// larger than the history returns everything.
func (l *Log) Recent(n int) []Event {
	all := l.Snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Clear discards the retained history. Subscribers are unaffected.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring = make([]Event, len(l.ring))
	l.next = 0
	l.wrapped = false
}

// Subscribe registers a live event channel. The buffer absorbs bursts; a
// subscriber that falls further behind loses events.
func (l *Log) Subscribe() Subscriber {
	ch := make(Subscriber, 64)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (l *Log) Unsubscribe(sub Subscriber) {
	l.mu.Lock()
	delete(l.subs, sub)
	l.mu.Unlock()
	close(sub)
}

// SubscriberCount returns the number of live subscribers.
func (l *Log) SubscriberCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// SetPostgres attaches a persistence client. Passing nil detaches it and
// re-arms the one-shot failure report.
func (l *Log) SetPostgres(client *postgres.Client) {
	l.mu.Lock()
	l.pg = client
	l.pgFailed = false
	l.mu.Unlock()
}

// Postgres returns the attached persistence client, or nil.
func (l *Log) Postgres() *postgres.Client {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pg
}

// defaultLog backs the package-level functions the engine emits through.
var defaultLog = NewLog(256)

func Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	return defaultLog.Emit(level, name, msg, fields)
}

func Snapshot() []Event { return defaultLog.Snapshot() }

// RecentEvents returns the newest n events from the default log.
func RecentEvents(n int) []Event { return defaultLog.Recent(n) }

// Clear resets the default log's history. Used by tests.
func Clear() { defaultLog.Clear() }

func Subscribe() Subscriber { return defaultLog.Subscribe() }

func Unsubscribe(sub Subscriber) { defaultLog.Unsubscribe(sub) }

func SubscriberCount() int { return defaultLog.SubscriberCount() }

// SetPostgresClient attaches event persistence to the default log.
func SetPostgresClient(client *postgres.Client) { defaultLog.SetPostgres(client) }

// GetPostgresClient returns the default log's persistence client, if any.
func GetPostgresClient() *postgres.Client { return defaultLog.Postgres() }
