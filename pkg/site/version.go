package site

import "github.com/ssikv/ssikv/pkg/txn"

// Version is one immutable, committed value of a variable.
type Version struct {
	Value      int
	CommitTick int
	Writer     txn.ID
}

// GenesisWriter is the synthetic writer of the tick-0 initial versions.
const GenesisWriter txn.ID = "genesis"

// chain is the append-only, commit-tick-ordered history of a variable at
// one site. The teacher's version store links versions with a singly
// linked list; at this scale (tens of versions per run) a slice ordered by
// append time serves the same role with none of the pointer bookkeeping.
type chain struct {
	versions []Version
}

func (c *chain) append(v Version) {
	c.versions = append(c.versions, v)
}

// latest returns the most recently appended version, if any.
func (c *chain) latest() (Version, bool) {
	if len(c.versions) == 0 {
		return Version{}, false
	}
	return c.versions[len(c.versions)-1], true
}

// asOf returns the latest version with CommitTick <= tick.
func (c *chain) asOf(tick int) (Version, bool) {
	var best Version
	found := false
	for _, v := range c.versions {
		if v.CommitTick <= tick && (!found || v.CommitTick > best.CommitTick) {
			best = v
			found = true
		}
	}
	return best, found
}
