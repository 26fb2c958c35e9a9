// Package txn holds the per-transaction record tracked by the transaction
// manager: its snapshot tick, its buffered writes, the reads it has served,
// and the sites its writes have touched.
package txn

import "github.com/ssikv/ssikv/pkg/topology"

// ID names a transaction, e.g. "T1".
type ID string

// State is the lifecycle state of a transaction.
type State int

const (
	// Active transactions may still read, write, wait, or attempt to end.
	Active State = iota
	// Committed transactions have a commit tick and installed versions.
	Committed
	// Aborted transactions have discarded their write set.
	Aborted
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// PendingWrite is a buffered, not-yet-committed write local to a transaction.
type PendingWrite struct {
	Value int
	// WriteTick is the tick at which the write was issued.
	WriteTick int
	// TargetSites is the set of sites that were Up (and so were recorded as
	// targets) at WriteTick for this variable.
	TargetSites []topology.SiteID
}

// ReadRecord is one read served to a transaction, kept on the record for
// inspection. The engine materializes WR/RW edges from its own reader log,
// not from these records.
type ReadRecord struct {
	Var        topology.VarID
	SourceSite topology.SiteID
	Value      int
	ReadTick   int
	Writer     ID // transaction that committed the version read
}

// Transaction is the transaction manager's record of one in-flight or
// recently concluded transaction.
type Transaction struct {
	ID           ID
	StartTick    int
	State        State
	CommitTick   int // valid only once State == Committed
	Writes       map[topology.VarID]*PendingWrite
	Reads        []ReadRecord
	SitesWritten map[topology.SiteID]struct{}

	// BlockedOn is the variable a waiting read is retrying, or 0 if the
	// transaction isn't waiting.
	BlockedOn topology.VarID
	// AbortOnEnd is set when a write could reach no target site; end(T)
	// must abort even though the write was buffered successfully.
	AbortOnEnd   bool
	StatusReason string
}

// New creates a fresh, active transaction starting at the given tick.
func New(id ID, startTick int) *Transaction {
	return &Transaction{
		ID:           id,
		StartTick:    startTick,
		State:        Active,
		Writes:       make(map[topology.VarID]*PendingWrite),
		SitesWritten: make(map[topology.SiteID]struct{}),
	}
}

// BufferWrite records (or overwrites) a pending write for v.
func (t *Transaction) BufferWrite(v topology.VarID, value int, tick int, targets []topology.SiteID) {
	t.Writes[v] = &PendingWrite{Value: value, WriteTick: tick, TargetSites: targets}
	for _, s := range targets {
		t.SitesWritten[s] = struct{}{}
	}
}

// OwnWrite returns the transaction's own pending write of v, if any.
func (t *Transaction) OwnWrite(v topology.VarID) (int, bool) {
	pw, ok := t.Writes[v]
	if !ok {
		return 0, false
	}
	return pw.Value, true
}

// RecordRead appends a served read to the transaction's read set.
func (t *Transaction) RecordRead(r ReadRecord) {
	t.Reads = append(t.Reads, r)
}

// IsWaiting reports whether the transaction is parked on a read.
func (t *Transaction) IsWaiting() bool {
	return t.State == Active && t.BlockedOn != 0
}
