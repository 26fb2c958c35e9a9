package engine

import (
	"github.com/ssikv/ssikv/pkg/events"
	"github.com/ssikv/ssikv/pkg/site"
	"github.com/ssikv/ssikv/pkg/topology"
)

// SiteDump is one site's reported state for dump() (spec 4.6). It carries
// structured data only; the driver owns all text formatting.
type SiteDump struct {
	ID      topology.SiteID
	Status  site.Status
	Entries []site.DumpEntry
}

// Dump returns every site's current state, in ascending site order.
func (e *Engine) Dump(now int) []SiteDump {
	ids := e.SiteIDs()
	out := make([]SiteDump, 0, len(ids))
	for _, id := range ids {
		s := e.sites[id]
		out = append(out, SiteDump{ID: id, Status: s.Status(), Entries: s.Dump()})
	}
	e.emit(events.Event{Tick: now, Kind: events.KindDump})
	return out
}

// VariableSummary is the across-the-cluster latest-value view of one
// variable, used by the dump(x) form (spec 4.6).
type VariableSummary struct {
	Var     topology.VarID
	PerSite map[topology.SiteID]int
}

// DumpVariable reports the latest known value of v at every site holding
// it, keyed by site id; the map itself carries no order.
func (e *Engine) DumpVariable(v topology.VarID, now int) VariableSummary {
	summary := VariableSummary{Var: v, PerSite: make(map[topology.SiteID]int)}
	for _, id := range topology.Sites(v) {
		s := e.sites[id]
		for _, entry := range s.Dump() {
			if entry.Var == v {
				summary.PerSite[id] = entry.Value
			}
		}
	}
	e.emit(events.Event{Tick: now, Kind: events.KindDump, Var: v})
	return summary
}
