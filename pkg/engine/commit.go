package engine

import (
	"github.com/ssikv/ssikv/pkg/availcopies"
	"github.com/ssikv/ssikv/pkg/events"
	"github.com/ssikv/ssikv/pkg/sgraph"
	"github.com/ssikv/ssikv/pkg/txn"
)

// EndOutcome reports whether end(T) committed or aborted, and why.
type EndOutcome struct {
	Committed  bool
	CommitTick int
	Aborted    bool
	Reason     string
}

// End implements end(T) (spec 4.4): three validation steps, in order,
// each of which can abort the transaction before any version is installed.
func (e *Engine) End(id txn.ID, now int) (EndOutcome, error) {
	t, ok := e.txns[id]
	if !ok {
		e.logger.Warn("end on unknown transaction", "tx", id, "tick", now)
		return EndOutcome{}, txn.ErrUnknownTx
	}
	if t.State != txn.Active {
		e.logger.Warn("end on inactive transaction", "tx", id, "state", t.State, "tick", now)
		return EndOutcome{}, txn.ErrNotActive
	}

	// Step 1: available-copies. A write buffered against zero targets can
	// never commit; a write whose target site failed before now broke the
	// guarantee that the write reached every copy it claimed to.
	if t.AbortOnEnd {
		return e.abort(t, now, "available-copies-no-target")
	}
	for _, pw := range t.Writes {
		if availcopies.TargetFailedSince(e.sites, pw.TargetSites, pw.WriteTick, now) {
			return e.abort(t, now, "site-failed-after-write")
		}
	}

	// Step 2: first-committer-wins. Any variable this transaction wrote
	// must not have been committed by someone else since this transaction
	// began.
	for v := range t.Writes {
		for _, c := range e.varCommits[v] {
			if c.tick > t.StartTick && c.tx != id {
				return e.abort(t, now, "ww-conflict")
			}
		}
	}

	// Step 3: SSI cycle check. The WW edges against prior committers and the
	// RW edges against prior readers of this transaction's writes must both
	// be in the graph before the cycle check runs, or a cycle this very
	// commit completes would go undetected.
	e.materializeCommitEdges(t)
	if e.graph.HasConsecutiveRWCycleThrough(id) {
		e.graph.RemoveNode(id)
		return e.abort(t, now, "ssi-rw-rw-cycle")
	}

	return e.commit(t, now), nil
}

// materializeCommitEdges adds every edge this commit induces before the
// cycle check runs: a WW edge against each transaction that already
// committed a version of a variable this transaction writes, and an RW
// anti-dependency edge against each transaction that already read a
// version of such a variable (it read a version this commit overwrites).
func (e *Engine) materializeCommitEdges(t *txn.Transaction) {
	for v := range t.Writes {
		for _, c := range e.varCommits[v] {
			if c.tx != t.ID {
				e.graph.AddEdge(c.tx, t.ID, sgraph.WW, v)
			}
		}
		for _, r := range e.readerLog[v] {
			if r.reader != t.ID {
				e.graph.AddEdge(r.reader, t.ID, sgraph.RW, v)
			}
		}
	}
}

// commit installs every buffered write onto its recorded target sites,
// recomputing which of those targets are still Up: a target that was Up at
// write time but has since recovered-then-failed-again is no longer a
// valid recipient, while one that merely stayed Up all along still is. Any
// target that went Down and is excluded here would already have tripped
// the available-copies check above, so this recomputation only ever
// narrows the set defensively.
func (e *Engine) commit(t *txn.Transaction, now int) EndOutcome {
	t.State = txn.Committed
	t.CommitTick = now
	t.BlockedOn = 0

	for v, pw := range t.Writes {
		for _, sid := range pw.TargetSites {
			if s, ok := e.sites[sid]; ok {
				s.ApplyCommit(t.ID, now, v, pw.Value)
			}
		}
		e.varCommits[v] = append(e.varCommits[v], commitRecord{tx: t.ID, tick: now})
	}

	e.gc(now)
	e.emit(events.Event{Tick: now, Kind: events.KindCommit, Tx: t.ID})
	return EndOutcome{Committed: true, CommitTick: now}
}

// abort discards a transaction's write set and removes it from the graph.
func (e *Engine) abort(t *txn.Transaction, now int, reason string) (EndOutcome, error) {
	t.State = txn.Aborted
	t.StatusReason = reason
	t.BlockedOn = 0
	e.graph.RemoveNode(t.ID)
	e.emit(events.Event{Tick: now, Kind: events.KindAbort, Tx: t.ID, Reason: reason})
	return EndOutcome{Aborted: true, Reason: reason}, nil
}
