package engine

import (
	"github.com/ssikv/ssikv/pkg/events"
	"github.com/ssikv/ssikv/pkg/sgraph"
	"github.com/ssikv/ssikv/pkg/site"
	"github.com/ssikv/ssikv/pkg/topology"
	"github.com/ssikv/ssikv/pkg/txn"
)

// ReadOutcome reports the result of a read attempt.
type ReadOutcome struct {
	Served  bool
	Value   int
	Waiting bool
	Aborted bool
	Reason  string // set when Aborted
}

// Read implements R(T, x) (spec 4.2). now is the current tick at which the
// attempt (original or retry) is being made.
func (e *Engine) Read(id txn.ID, v topology.VarID, now int) (ReadOutcome, error) {
	t, ok := e.txns[id]
	if !ok {
		return ReadOutcome{}, txn.ErrUnknownTx
	}
	if t.State != txn.Active {
		return ReadOutcome{}, txn.ErrNotActive
	}

	if val, ok := t.OwnWrite(v); ok {
		t.BlockedOn = 0
		e.emit(events.Event{Tick: now, Kind: events.KindRead, Tx: id, Var: v, Value: val})
		return ReadOutcome{Served: true, Value: val}, nil
	}

	if !topology.IsReplicated(v) {
		return e.readNonReplicated(t, v, now)
	}
	return e.readReplicated(t, v, now)
}

// readNonReplicated implements spec 4.2 step 2: no continuity rule, just
// liveness of the single home site.
func (e *Engine) readNonReplicated(t *txn.Transaction, v topology.VarID, now int) (ReadOutcome, error) {
	home := topology.HomeSite(v)
	s := e.sites[home]

	if s.Status() != site.Up {
		t.BlockedOn = v
		e.emit(events.Event{Tick: now, Kind: events.KindWait, Tx: t.ID, Var: v, Site: home, Reason: "home site down"})
		return ReadOutcome{Waiting: true}, nil
	}

	ver, ok := s.ReadLocal(v, t.StartTick)
	if !ok {
		// No version committed at or before the transaction's snapshot
		// tick exists yet; this can only self-correct if the home site is
		// lagging behind genesis, which cannot happen, so treat it the
		// same as a transient wait to stay conservative.
		t.BlockedOn = v
		e.emit(events.Event{Tick: now, Kind: events.KindWait, Tx: t.ID, Var: v, Site: home, Reason: "no visible version"})
		return ReadOutcome{Waiting: true}, nil
	}

	e.serve(t, v, home, ver, now)
	return ReadOutcome{Served: true, Value: ver.Value}, nil
}

// readReplicated implements spec 4.1's continuity rule and 4.2 step 3: try
// every holding site in ascending order, wait if some down site might
// still heal the read, and abort if no site can ever serve this snapshot.
func (e *Engine) readReplicated(t *txn.Transaction, v topology.VarID, now int) (ReadOutcome, error) {
	anyStaticallyEligible := false

	for _, id := range topology.Sites(v) {
		s := e.sites[id]
		if s.Status() == site.Up {
			if ver, ok := s.ReadCommitted(v, t.StartTick); ok {
				e.serve(t, v, id, ver, now)
				return ReadOutcome{Served: true, Value: ver.Value}, nil
			}
		}
		if s.StaticallyEligible(v, t.StartTick) {
			anyStaticallyEligible = true
		}
	}

	if anyStaticallyEligible {
		t.BlockedOn = v
		e.emit(events.Event{Tick: now, Kind: events.KindWait, Tx: t.ID, Var: v, Reason: "no replica currently satisfies continuity"})
		return ReadOutcome{Waiting: true}, nil
	}

	// Every site holding v failed at or before the transaction's snapshot
	// tick in a way continuity can never repair: no future event can make
	// this read possible.
	t.State = txn.Aborted
	t.StatusReason = "snapshot-unavailable"
	t.BlockedOn = 0
	e.graph.RemoveNode(t.ID)
	e.emit(events.Event{Tick: now, Kind: events.KindAbort, Tx: t.ID, Var: v, Reason: "snapshot-unavailable"})
	return ReadOutcome{Aborted: true, Reason: "snapshot-unavailable"}, nil
}

// serve finalizes a successful read: it records the read, clears any wait,
// materializes the WR edge from the version's writer, and — if a later
// write to v has already committed since this snapshot was taken — the RW
// anti-dependency edge from this transaction to that later committer.
func (e *Engine) serve(t *txn.Transaction, v topology.VarID, from topology.SiteID, ver site.Version, now int) {
	t.BlockedOn = 0
	t.RecordRead(txn.ReadRecord{Var: v, SourceSite: from, Value: ver.Value, ReadTick: now, Writer: ver.Writer})
	e.readerLog[v] = append(e.readerLog[v], readerRecord{reader: t.ID, observedTick: ver.CommitTick})
	if ver.Writer != site.GenesisWriter && ver.Writer != t.ID {
		e.graph.AddEdge(ver.Writer, t.ID, sgraph.WR, v)
	}
	for _, c := range e.varCommits[v] {
		if c.tick > ver.CommitTick && c.tx != t.ID {
			e.graph.AddEdge(t.ID, c.tx, sgraph.RW, v)
		}
	}
	e.emit(events.Event{Tick: now, Kind: events.KindRead, Tx: t.ID, Var: v, Site: from, Value: ver.Value})
}

// RetryWaits re-attempts the read for every transaction currently blocked
// on a variable, in begin order (spec 4.6, 5: suspension points). It is
// driven every tick, including blank lines, before the tick's own command
// (if any) executes.
func (e *Engine) RetryWaits(now int) {
	for _, id := range e.order {
		t, ok := e.txns[id]
		if !ok || !t.IsWaiting() {
			continue
		}
		v := t.BlockedOn
		if _, err := e.Read(id, v, now); err != nil {
			// Transaction vanished or is no longer active; nothing to retry.
			continue
		}
	}
}
