package engine

import "errors"

var (
	// ErrUnknownSite is returned by Fail/Recover for an out-of-range site.
	ErrUnknownSite = errors.New("engine: unknown site")

	// ErrSiteAlreadyUp / ErrSiteAlreadyDown mirror the protocol-violation
	// rule in spec 7: fail() on a down site, or recover() on an up site,
	// is reported and ignored rather than mutating state.
	ErrSiteAlreadyUp   = errors.New("engine: site already up")
	ErrSiteAlreadyDown = errors.New("engine: site already down")
)
