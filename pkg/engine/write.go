package engine

import (
	"github.com/ssikv/ssikv/pkg/availcopies"
	"github.com/ssikv/ssikv/pkg/events"
	"github.com/ssikv/ssikv/pkg/topology"
	"github.com/ssikv/ssikv/pkg/txn"
)

// WriteOutcome reports the result of a write attempt. Writes never wait:
// they either buffer (possibly against zero live targets, deferring the
// abort to End) or fail because the transaction does not exist or is no
// longer active.
type WriteOutcome struct {
	Buffered    bool
	NoTarget    bool // true when no site holding v was Up at write time
	TargetSites []topology.SiteID
}

// Write implements W(T, x, v) (spec 4.3): it buffers the value locally and
// records, among the sites currently holding x, which were Up at this
// tick. A write against zero live targets is not an immediate error: it is
// buffered anyway and marks the transaction to abort once it reaches end,
// matching the available-copies rule that a write must actually reach a
// copy to ever commit.
func (e *Engine) Write(id txn.ID, v topology.VarID, value int, now int) (WriteOutcome, error) {
	t, ok := e.txns[id]
	if !ok {
		return WriteOutcome{}, txn.ErrUnknownTx
	}
	if t.State != txn.Active {
		return WriteOutcome{}, txn.ErrNotActive
	}

	targets := availcopies.SelectTargets(e.sites, v)
	t.BufferWrite(v, value, now, targets)

	if len(targets) == 0 {
		t.AbortOnEnd = true
	}

	// The RW anti-dependency this write creates against earlier readers of
	// v is not materialized here: per spec 4.2's "materialized when any
	// such commit happens" and 9's open-question resolution, an edge only
	// counts once the overwriting transaction actually commits, so it is
	// added in the commit path instead of at buffer time.

	e.emit(events.Event{Tick: now, Kind: events.KindWrite, Tx: id, Var: v, Value: value})
	return WriteOutcome{Buffered: true, NoTarget: len(targets) == 0, TargetSites: targets}, nil
}
