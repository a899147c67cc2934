package events

import (
	"testing"
	"time"
)

func TestEmitRejectsUnknownEventName(t *testing.T) {
	if _, err := Emit("info", "made.up.event", "", nil); err == nil {
		t.Error("expected unknown event name to be rejected")
	}
}

func TestValidateKnownNames(t *testing.T) {
	known := []string{
		"cutscene.started", "cutscene.completed", "cutscene.stopped",
		"cutscene.paused", "cutscene.resumed", "cutscene.skipped",
		"cutscene.killed", "action.started", "action.completed",
		"action.skipped", "registry.skip_all", "registry.blocked",
		"mode.changed", "save.created", "save.loaded", "save.dropped",
		"cue.sent", "signal.received", "asset.loaded",
		"command.received", "system.startup", "system.startup_restore",
	}
	for _, name := range known {
		if err := Validate(name); err != nil {
			t.Errorf("expected %s to be valid: %v", name, err)
		}
	}
	if err := Validate("cutscene.exploded"); err == nil {
		t.Error("expected unknown name to fail validation")
	}
}

func TestEmitAddsToHistory(t *testing.T) {
	l := NewLog(8)

	b, err := l.Emit("warning", "save.dropped", "malformed record", map[string]interface{}{"record": "x"})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if len(b) == 0 {
		t.Error("expected marshaled event bytes")
	}

	snap := l.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 buffered event, got %d", len(snap))
	}
	if snap[0].Level != "warning" || snap[0].Name != "save.dropped" {
		t.Errorf("unexpected event %+v", snap[0])
	}
}

func TestHistoryWrapsOldestFirst(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		if _, err := l.Emit("info", "action.started", string(rune('a'+i)), nil); err != nil {
			t.Fatalf("emit failed: %v", err)
		}
	}

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	if snap[0].Message != "c" || snap[2].Message != "e" {
		t.Errorf("expected oldest-first [c d e], got %v %v %v", snap[0].Message, snap[1].Message, snap[2].Message)
	}

	l.Clear()
	if len(l.Snapshot()) != 0 {
		t.Error("expected empty history after clear")
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	l := NewLog(8)

	sub1 := l.Subscribe()
	if l.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", l.SubscriberCount())
	}

	sub2 := l.Subscribe()
	if l.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", l.SubscriberCount())
	}

	l.Unsubscribe(sub1)
	l.Unsubscribe(sub2)
	if l.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", l.SubscriberCount())
	}
}

func TestBroadcastToSubscribers(t *testing.T) {
	l := NewLog(8)
	sub := l.Subscribe()
	defer l.Unsubscribe(sub)

	l.Emit("info", "cutscene.started", "", map[string]interface{}{"graph": "intro"})

	select {
	case e := <-sub:
		if e.Name != "cutscene.started" {
			t.Errorf("expected event name 'cutscene.started', got '%s'", e.Name)
		}
		if e.Fields["graph"] != "intro" {
			t.Errorf("expected graph 'intro', got '%v'", e.Fields["graph"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for broadcast event")
	}
}

func TestRecentReturnsNewestLast(t *testing.T) {
	l := NewLog(32)
	for i := 0; i < 10; i++ {
		l.Emit("info", "action.started", "", map[string]interface{}{"index": i})
	}

	recent := l.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 recent events, got %d", len(recent))
	}
	if recent[2].Fields["index"] != 9 {
		t.Errorf("expected newest event last, got %v", recent[2].Fields["index"])
	}

	if all := l.Recent(100); len(all) != 10 {
		t.Errorf("expected all 10 events, got %d", len(all))
	}
}

func TestLogsAreIndependent(t *testing.T) {
	a := NewLog(4)
	b := NewLog(4)

	a.Emit("info", "mode.changed", "", nil)
	if len(b.Snapshot()) != 0 {
		t.Error("emit on one log leaked into another")
	}
	if len(a.Snapshot()) != 1 {
		t.Error("expected the emitting log to retain its event")
	}
}

func TestDefaultLogBacksPackageFunctions(t *testing.T) {
	Clear()
	defer Clear()

	sub := Subscribe()
	defer Unsubscribe(sub)

	Emit("info", "system.startup", "", nil)
	if len(Snapshot()) != 1 {
		t.Fatalf("expected 1 event in default history, got %d", len(Snapshot()))
	}
	select {
	case e := <-sub:
		if e.Name != "system.startup" {
			t.Errorf("unexpected event %q", e.Name)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for default log broadcast")
	}
}
