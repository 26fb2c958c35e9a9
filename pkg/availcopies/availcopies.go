// Package availcopies implements the Available Copies write-routing rule:
// a write targets every site that currently holds the variable and is Up;
// a write whose target site later fails before the owning transaction
// commits forces that transaction to abort.
//
// The teacher's two-phase-commit coordinator ran its phases over the
// network, in parallel, under a timeout (pkg/distributed/two_phase_commit.go
// in the source this was adapted from). This model has neither a network
// nor concurrency: one command executes per tick, so "preparing" a write
// and "voting" on it collapse into a single synchronous site scan.
package availcopies

import (
	"sort"

	"github.com/ssikv/ssikv/pkg/site"
	"github.com/ssikv/ssikv/pkg/topology"
)

// SelectTargets returns, in ascending order, every site holding v that is
// Up at the moment of the write. An empty result means the write could
// reach no copy at all.
func SelectTargets(sites map[topology.SiteID]*site.Site, v topology.VarID) []topology.SiteID {
	var targets []topology.SiteID
	for _, id := range topology.Sites(v) {
		if s, ok := sites[id]; ok && s.Status() == site.Up {
			targets = append(targets, id)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

// TargetFailedSince reports whether any site in targets went down at any
// tick in [writeTick, now] — the available-copies abort condition for
// writes (spec 4.4.1).
func TargetFailedSince(sites map[topology.SiteID]*site.Site, targets []topology.SiteID, writeTick, now int) bool {
	for _, id := range targets {
		s, ok := sites[id]
		if !ok {
			continue
		}
		if s.FailedDuring(writeTick, now) {
			return true
		}
	}
	return false
}
