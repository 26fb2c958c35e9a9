package events

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewAssignsDistinctRunIDs(t *testing.T) {
	a, b := New(10), New(10)
	if a.RunID() == "" || b.RunID() == "" {
		t.Fatal("RunID should be non-empty")
	}
	if a.RunID() == b.RunID() {
		t.Error("two independently created logs should not share a run id")
	}
}

func TestEmitAssignsSequenceAndRetains(t *testing.T) {
	log := New(10)
	log.Emit(Event{Tick: 1, Kind: KindBegin, Tx: "T1"})
	log.Emit(Event{Tick: 2, Kind: KindCommit, Tx: "T1"})

	recent := log.Recent(10)
	if len(recent) != 2 {
		t.Fatalf("Recent(10) = %d events, want 2", len(recent))
	}
	if recent[0].Seq != 1 || recent[1].Seq != 2 {
		t.Errorf("sequence numbers not assigned in order: %+v", recent)
	}
}

func TestRecentCapsRetention(t *testing.T) {
	log := New(2)
	for i := 0; i < 5; i++ {
		log.Emit(Event{Tick: i, Kind: KindBegin})
	}
	recent := log.Recent(10)
	if len(recent) != 2 {
		t.Fatalf("retention cap not enforced: got %d events", len(recent))
	}
	if recent[len(recent)-1].Tick != 4 {
		t.Errorf("expected the most recent events to survive, got %+v", recent)
	}
}

func TestSetSinkMirrorsJSONLines(t *testing.T) {
	log := New(0)
	var buf bytes.Buffer
	log.SetSink(&buf)
	log.Emit(Event{Tick: 1, Kind: KindRead, Tx: "T1", Var: 2, Value: 20})

	line := strings.TrimSpace(buf.String())
	var decoded Event
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("sink line is not valid JSON: %v", err)
	}
	if decoded.Tx != "T1" || decoded.Value != 20 {
		t.Errorf("decoded event mismatch: %+v", decoded)
	}
}

type recordingSubscriber struct {
	events []Event
}

func (r *recordingSubscriber) Notify(e Event) {
	r.events = append(r.events, e)
}

func TestSubscribeReceivesEvents(t *testing.T) {
	log := New(0)
	sub := &recordingSubscriber{}
	log.Subscribe(sub)
	log.Emit(Event{Tick: 1, Kind: KindFail, Site: 3})

	if len(sub.events) != 1 || sub.events[0].Site != 3 {
		t.Errorf("subscriber did not receive event: %+v", sub.events)
	}
}
