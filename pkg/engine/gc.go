package engine

import "github.com/ssikv/ssikv/pkg/txn"

// gc drops committed transactions from the serialization graph once no
// active transaction's snapshot tick can still reach them: a committed
// transaction only matters to the graph as long as some active
// transaction started before it and could still race against it (spec
// 4.4.3's graph is only ever consulted relative to currently active
// transactions). It is called after every commit, since a commit is the
// only event that can make a previously load-bearing node collectible.
func (e *Engine) gc(now int) {
	minActiveStart := -1
	for _, id := range e.order {
		t, ok := e.txns[id]
		if !ok || t.State != txn.Active {
			continue
		}
		if minActiveStart == -1 || t.StartTick < minActiveStart {
			minActiveStart = t.StartTick
		}
	}

	for _, id := range e.order {
		t, ok := e.txns[id]
		if !ok || t.State != txn.Committed {
			continue
		}
		if minActiveStart == -1 || minActiveStart >= t.CommitTick {
			e.graph.RemoveNode(id)
		}
	}
}
