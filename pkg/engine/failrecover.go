package engine

import (
	"github.com/ssikv/ssikv/pkg/events"
	"github.com/ssikv/ssikv/pkg/topology"
)

// Fail takes a site down at tick (spec 4.5). Replicated reads against it
// stop being servable until it recovers and a fresh commit re-establishes
// continuity.
func (e *Engine) Fail(id topology.SiteID, tick int) error {
	s, ok := e.sites[id]
	if !ok {
		return ErrUnknownSite
	}
	if err := s.Fail(tick); err != nil {
		e.logger.Warn("fail on already-down site", "site", id, "tick", tick)
		return ErrSiteAlreadyDown
	}
	e.emit(events.Event{Tick: tick, Kind: events.KindFail, Site: id})
	return nil
}

// Recover brings a site back up at tick (spec 4.5).
func (e *Engine) Recover(id topology.SiteID, tick int) error {
	s, ok := e.sites[id]
	if !ok {
		return ErrUnknownSite
	}
	if err := s.Recover(tick); err != nil {
		e.logger.Warn("recover on already-up site", "site", id, "tick", tick)
		return ErrSiteAlreadyUp
	}
	e.emit(events.Event{Tick: tick, Kind: events.KindRecover, Site: id})
	return nil
}
