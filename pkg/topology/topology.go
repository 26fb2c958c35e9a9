// Package topology describes the fixed shape of the simulated cluster:
// how many sites and variables exist, and which sites hold which variable.
package topology

import "fmt"

// SiteID identifies one of the replicated sites, numbered 1..NumSites.
type SiteID int

// VarID identifies one of the store's variables, numbered 1..NumVars.
type VarID int

const (
	// NumSites is the number of data-manager sites in the cluster.
	NumSites = 10
	// NumVars is the number of variables x1..x20.
	NumVars = 20
)

// IsReplicated reports whether a variable is replicated on every site.
// Even-indexed variables are replicated; odd-indexed variables live on
// exactly one site.
func IsReplicated(v VarID) bool {
	return v%2 == 0
}

// HomeSite returns the single site that owns a non-replicated variable.
// It panics if called on a replicated variable.
func HomeSite(v VarID) SiteID {
	if IsReplicated(v) {
		panic(fmt.Sprintf("topology: x%d is replicated, has no single home site", v))
	}
	return SiteID(1 + (int(v) % NumSites))
}

// Sites returns, in ascending order, every site that holds variable v.
func Sites(v VarID) []SiteID {
	if !IsReplicated(v) {
		return []SiteID{HomeSite(v)}
	}
	sites := make([]SiteID, 0, NumSites)
	for s := SiteID(1); s <= NumSites; s++ {
		sites = append(sites, s)
	}
	return sites
}

// Genesis returns the initial value committed for variable v at tick 0.
func Genesis(v VarID) int {
	return 10 * int(v)
}

// AllVars returns every variable in ascending order.
func AllVars() []VarID {
	vars := make([]VarID, 0, NumVars)
	for i := VarID(1); i <= NumVars; i++ {
		vars = append(vars, i)
	}
	return vars
}

// Name renders a variable as "x<i>".
func (v VarID) Name() string {
	return fmt.Sprintf("x%d", int(v))
}

// ParseVar parses a "x<i>" token into a VarID.
func ParseVar(s string) (VarID, error) {
	var i int
	if _, err := fmt.Sscanf(s, "x%d", &i); err != nil {
		return 0, fmt.Errorf("topology: invalid variable %q: %w", s, err)
	}
	if i < 1 || i > NumVars {
		return 0, fmt.Errorf("topology: variable x%d out of range 1..%d", i, NumVars)
	}
	return VarID(i), nil
}
