// Package site implements each data manager: the per-variable version
// chains held at one site, its up/down state, and the continuity rule that
// gates reads of replicated variables after a recovery.
package site

import (
	"sort"

	"github.com/ssikv/ssikv/pkg/topology"
	"github.com/ssikv/ssikv/pkg/txn"
)

// Status is whether a site is accepting reads, writes, and commits.
type Status int

const (
	Up Status = iota
	Down
)

func (s Status) String() string {
	if s == Up {
		return "up"
	}
	return "down"
}

// FailInterval is one half-open [FailTick, RecoverTick) span during which
// the site was down. Open is true while the interval has no recover tick
// yet.
type FailInterval struct {
	FailTick    int
	RecoverTick int
	Open        bool
}

// intersects reports whether the interval overlaps the closed range
// [from, to].
func (f FailInterval) intersects(from, to int) bool {
	if f.FailTick > to {
		return false
	}
	if f.Open {
		return true
	}
	return f.RecoverTick > from
}

// Site is one data manager: the version chains for the variables it hosts,
// its liveness, and the readability flags that gate replicated reads after
// a recovery.
type Site struct {
	ID       topology.SiteID
	status   Status
	chains   map[topology.VarID]*chain
	readable map[topology.VarID]bool
	history  []FailInterval
}

// New creates a site preloaded with the tick-0 genesis version of every
// variable it hosts.
func New(id topology.SiteID) *Site {
	s := &Site{
		ID:       id,
		status:   Up,
		chains:   make(map[topology.VarID]*chain),
		readable: make(map[topology.VarID]bool),
	}
	for _, v := range topology.AllVars() {
		hosted := topology.IsReplicated(v) || topology.HomeSite(v) == id
		if !hosted {
			continue
		}
		c := &chain{}
		c.append(Version{Value: topology.Genesis(v), CommitTick: 0, Writer: GenesisWriter})
		s.chains[v] = c
		s.readable[v] = true
	}
	return s
}

// Holds reports whether this site carries a version chain for v.
func (s *Site) Holds(v topology.VarID) bool {
	_, ok := s.chains[v]
	return ok
}

// Status returns the site's current liveness.
func (s *Site) Status() Status { return s.status }

// Fail takes the site down, opening a new fail interval at tick.
func (s *Site) Fail(tick int) error {
	if s.status == Down {
		return ErrAlreadyDown
	}
	s.status = Down
	s.history = append(s.history, FailInterval{FailTick: tick, Open: true})
	for v := range s.chains {
		if topology.IsReplicated(v) {
			s.readable[v] = false
		}
	}
	return nil
}

// Recover brings the site back up, closing the open fail interval at tick.
// Replicated variables stay unreadable until a post-recovery commit lands;
// non-replicated variables are immediately readable again since no other
// copy ever diverged.
func (s *Site) Recover(tick int) error {
	if s.status == Up {
		return ErrNotDown
	}
	s.status = Up
	if n := len(s.history); n > 0 && s.history[n-1].Open {
		s.history[n-1].Open = false
		s.history[n-1].RecoverTick = tick
	}
	for v := range s.chains {
		if topology.IsReplicated(v) {
			s.readable[v] = false
		} else {
			s.readable[v] = true
		}
	}
	return nil
}

// continuouslyUp reports whether no fail interval overlapped [from, to].
func (s *Site) continuouslyUp(from, to int) bool {
	for _, f := range s.history {
		if f.intersects(from, to) {
			return false
		}
	}
	return true
}

// ReadCommitted implements the continuity rule (spec 4.1): it returns the
// latest version of v committed at or before asOfTick, provided the site
// has been continuously up from that version's commit tick through
// asOfTick, is up right now, and (for replicated variables) has been
// marked readable since its last recovery.
func (s *Site) ReadCommitted(v topology.VarID, asOfTick int) (Version, bool) {
	if s.status != Up {
		return Version{}, false
	}
	c, ok := s.chains[v]
	if !ok || !s.readable[v] {
		return Version{}, false
	}
	ver, ok := c.asOf(asOfTick)
	if !ok {
		return Version{}, false
	}
	if !s.continuouslyUp(ver.CommitTick, asOfTick) {
		return Version{}, false
	}
	return ver, true
}

// ReadLocal serves a non-replicated read (spec 4.2 step 2): it requires
// only that the site be up right now, with no continuity constraint, since
// a non-replicated variable has exactly one copy and so nothing to
// diverge from while its home site was down.
func (s *Site) ReadLocal(v topology.VarID, asOfTick int) (Version, bool) {
	if s.status != Up {
		return Version{}, false
	}
	c, ok := s.chains[v]
	if !ok {
		return Version{}, false
	}
	return c.asOf(asOfTick)
}

// StaticallyEligible reports whether this site holds a version of v that a
// transaction with snapshot tick S could ever legally read under the
// continuity rule, independent of the site's current up/down status. Once
// tick S has passed, every fail interval with FailTick <= S is permanent
// history and can never be revised by a future recovery, so this fact
// never changes once computed: either some future moment lets the site
// serve this read (eligible), or no moment ever can (a replicated read
// must abort as snapshot-unavailable rather than wait forever).
func (s *Site) StaticallyEligible(v topology.VarID, asOfTick int) bool {
	c, ok := s.chains[v]
	if !ok {
		return false
	}
	for _, ver := range c.versions {
		if ver.CommitTick <= asOfTick && s.continuouslyUp(ver.CommitTick, asOfTick) {
			return true
		}
	}
	return false
}

// ApplyCommit installs a newly committed version of v, if this site holds
// v and is currently up. It reports whether the version was applied.
func (s *Site) ApplyCommit(writer txn.ID, tick int, v topology.VarID, value int) bool {
	if s.status != Up {
		return false
	}
	c, ok := s.chains[v]
	if !ok {
		return false
	}
	c.append(Version{Value: value, CommitTick: tick, Writer: writer})
	s.readable[v] = true
	return true
}

// FailedDuring reports whether the site failed at any tick in [from, to],
// used by the available-copies abort rule (spec 4.4.1).
func (s *Site) FailedDuring(from, to int) bool {
	for _, f := range s.history {
		if f.FailTick >= from && f.FailTick <= to {
			return true
		}
	}
	return false
}

// DumpEntry is one (variable, value) pair in a site dump.
type DumpEntry struct {
	Var   topology.VarID
	Value int
}

// Dump returns the latest known committed value of every variable this
// site holds, sorted by variable index. Down sites still report their
// last-known chain heads: no write is ever applied while a site is down,
// so there is nothing fresher to report (spec 9, Open Questions).
func (s *Site) Dump() []DumpEntry {
	entries := make([]DumpEntry, 0, len(s.chains))
	for v, c := range s.chains {
		latest, ok := c.latest()
		if !ok {
			continue
		}
		entries = append(entries, DumpEntry{Var: v, Value: latest.Value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Var < entries[j].Var })
	return entries
}
