// Package engine implements the transaction manager: it owns every
// Transaction record and the serialization graph, routes reads and writes
// through the sites under the Available Copies protocol, and validates
// commits under Serializable Snapshot Isolation.
package engine

import (
	"log/slog"
	"sort"

	"github.com/ssikv/ssikv/pkg/events"
	"github.com/ssikv/ssikv/pkg/sgraph"
	"github.com/ssikv/ssikv/pkg/site"
	"github.com/ssikv/ssikv/pkg/topology"
	"github.com/ssikv/ssikv/pkg/txn"
)

// readerRecord remembers that a transaction observed a particular version
// of a variable, so that a later write overwriting it can materialize the
// RW (anti-dependency) edge required by spec 3's graph definition.
type readerRecord struct {
	reader       txn.ID
	observedTick int
}

// commitRecord remembers that a transaction committed a write to a
// variable at a given tick, the basis for both first-committer-wins and
// WW edge materialization.
type commitRecord struct {
	tx   txn.ID
	tick int
}

// Engine is the transaction manager. It is not safe for concurrent use:
// the model is single-threaded and tick-driven (spec 5), so the driver is
// the only caller and calls are never concurrent.
type Engine struct {
	sites map[topology.SiteID]*site.Site
	txns  map[txn.ID]*txn.Transaction
	order []txn.ID // insertion order, for deterministic iteration

	graph      *sgraph.Graph
	readerLog  map[topology.VarID][]readerRecord
	varCommits map[topology.VarID][]commitRecord

	log      *events.Log
	logger   *slog.Logger
	lastTick int
}

// New creates a transaction manager with all sites freshly initialized at
// their genesis versions.
func New(log *events.Log, opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Engine{
		sites:      make(map[topology.SiteID]*site.Site),
		txns:       make(map[txn.ID]*txn.Transaction),
		graph:      sgraph.New(),
		readerLog:  make(map[topology.VarID][]readerRecord),
		varCommits: make(map[topology.VarID][]commitRecord),
		log:        log,
		logger:     cfg.logger,
	}
	for id := topology.SiteID(1); id <= topology.NumSites; id++ {
		e.sites[id] = site.New(id)
	}
	return e
}

func (e *Engine) emit(ev events.Event) {
	if ev.Tick > e.lastTick {
		e.lastTick = ev.Tick
	}
	if e.log != nil {
		e.log.Emit(ev)
	}
}

// CurrentTick returns the most recent tick the engine has observed,
// useful for read-only callers (pkg/obs) that want to inspect state
// without driving the tick counter themselves.
func (e *Engine) CurrentTick() int {
	return e.lastTick
}

// TransactionIDs returns every transaction id the engine has ever seen,
// in begin order, regardless of state.
func (e *Engine) TransactionIDs() []txn.ID {
	out := make([]txn.ID, len(e.order))
	copy(out, e.order)
	return out
}

// Begin creates a new active transaction named id, starting at tick.
func (e *Engine) Begin(id txn.ID, tick int) error {
	if existing, ok := e.txns[id]; ok && existing.State == txn.Active {
		e.logger.Warn("begin on active transaction", "tx", id, "tick", tick)
		return txn.ErrAlreadyExists
	}
	e.txns[id] = txn.New(id, tick)
	e.order = append(e.order, id)
	e.emit(events.Event{Tick: tick, Kind: events.KindBegin, Tx: id})
	return nil
}

// Transaction exposes a transaction's record for read-only inspection
// (used by pkg/obs and tests); it returns ok=false for unknown ids.
func (e *Engine) Transaction(id txn.ID) (*txn.Transaction, bool) {
	t, ok := e.txns[id]
	return t, ok
}

// Site exposes a site for read-only inspection.
func (e *Engine) Site(id topology.SiteID) (*site.Site, bool) {
	s, ok := e.sites[id]
	return s, ok
}

// ActiveTransactionIDs returns, in begin order, the ids of every currently
// active transaction.
func (e *Engine) ActiveTransactionIDs() []txn.ID {
	var out []txn.ID
	for _, id := range e.order {
		if t, ok := e.txns[id]; ok && t.State == txn.Active {
			out = append(out, id)
		}
	}
	return out
}

// GraphEdges returns every serialization-graph edge touching id, for
// diagnostics.
func (e *Engine) GraphEdges(id txn.ID) []sgraph.Edge {
	return e.graph.Edges(id)
}

// SiteIDs returns every site id in ascending order.
func (e *Engine) SiteIDs() []topology.SiteID {
	ids := make([]topology.SiteID, 0, len(e.sites))
	for id := range e.sites {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
