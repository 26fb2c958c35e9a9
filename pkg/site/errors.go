package site

import "errors"

var (
	// ErrAlreadyDown is returned by Fail on a site that is already down.
	ErrAlreadyDown = errors.New("site: already down")

	// ErrNotDown is returned by Recover on a site that is already up.
	ErrNotDown = errors.New("site: not down")

	// ErrUnknownSite is returned when a command names a site ID outside
	// 1..topology.NumSites.
	ErrUnknownSite = errors.New("site: unknown site id")
)
