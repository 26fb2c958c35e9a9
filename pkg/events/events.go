// Package events is the structured audit trail alongside the engine's
// plain-text command output. It mirrors the teacher's JSON audit logger
// (pkg/audit/audit.go in the source this was adapted from), but the unit of
// work here is a tick/transaction event rather than a document operation,
// and the log lives in memory — the model has no durable storage — with an
// optional io.Writer sink for callers that want a JSON trail on disk.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/ssikv/ssikv/pkg/topology"
	"github.com/ssikv/ssikv/pkg/txn"
)

// Kind names the category of an audit event.
type Kind string

const (
	KindBegin    Kind = "begin"
	KindRead     Kind = "read"
	KindWrite    Kind = "write"
	KindCommit   Kind = "commit"
	KindAbort    Kind = "abort"
	KindWait     Kind = "wait"
	KindFail     Kind = "fail"
	KindRecover  Kind = "recover"
	KindDump     Kind = "dump"
	KindRejected Kind = "rejected" // malformed or illegal input line
)

// Event is one audit record.
type Event struct {
	Seq     uint64         `json:"seq"`
	Tick    int            `json:"tick"`
	Kind    Kind           `json:"kind"`
	Tx      txn.ID         `json:"tx,omitempty"`
	Var     topology.VarID `json:"var,omitempty"`
	Site    topology.SiteID `json:"site,omitempty"`
	Value   int            `json:"value,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Subscriber receives a copy of every emitted event; used by pkg/obs to
// fan events out over a websocket. Implementations must not block.
type Subscriber interface {
	Notify(Event)
}

// Log accumulates audit events in memory and optionally mirrors them as
// JSON lines to an external writer.
type Log struct {
	mu          sync.Mutex
	seq         uint64
	maxEntries  int
	entries     []Event
	sink        io.Writer
	subscribers []Subscriber
	runID       string
}

// New creates an audit log that retains at most maxEntries recent events
// in memory. maxEntries <= 0 means unbounded. Each Log is stamped with a
// random run identifier distinguishing one process's event stream from
// another.
func New(maxEntries int) *Log {
	return &Log{maxEntries: maxEntries, runID: uuid.NewString()}
}

// RunID identifies this process's run, stable for the Log's lifetime.
func (l *Log) RunID() string {
	return l.runID
}

// SetSink directs every future event to w as a stream of JSON lines, in
// addition to being retained in memory.
func (l *Log) SetSink(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = w
}

// Subscribe registers s to receive a copy of every future event.
func (l *Log) Subscribe(s Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, s)
}

// Emit records e, assigning it the next sequence number.
func (l *Log) Emit(e Event) {
	l.mu.Lock()
	l.seq++
	e.Seq = l.seq
	l.entries = append(l.entries, e)
	if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	sink := l.sink
	subs := append([]Subscriber(nil), l.subscribers...)
	l.mu.Unlock()

	if sink != nil {
		if data, err := json.Marshal(e); err == nil {
			fmt.Fprintln(sink, string(data))
		}
	}
	for _, s := range subs {
		s.Notify(e)
	}
}

// Recent returns a copy of the last n retained events (fewer if the log is
// shorter). n <= 0 returns every retained event.
func (l *Log) Recent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n >= len(l.entries) {
		out := make([]Event, len(l.entries))
		copy(out, l.entries)
		return out
	}
	out := make([]Event, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}
