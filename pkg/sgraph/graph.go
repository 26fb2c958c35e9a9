// Package sgraph implements the serialization graph used to detect the
// SSI abort condition: a cycle containing two consecutive RW
// (anti-dependency) edges.
package sgraph

import (
	"github.com/ssikv/ssikv/pkg/topology"
	"github.com/ssikv/ssikv/pkg/txn"
)

// Kind labels an edge of the serialization graph.
type Kind int

const (
	// WR: From wrote a version that To read.
	WR Kind = iota
	// WW: From committed a write on Var before To committed a write on Var.
	WW
	// RW: From read a version of Var that To later overwrote.
	RW
)

func (k Kind) String() string {
	switch k {
	case WR:
		return "WR"
	case WW:
		return "WW"
	case RW:
		return "RW"
	default:
		return "?"
	}
}

// Edge is one directed, typed dependency between two transactions.
type Edge struct {
	From, To txn.ID
	Kind     Kind
	Var      topology.VarID
}

// Graph is a directed multigraph over transaction nodes. Edges are kept as
// plain tuples rather than pointers into Transaction records, so the graph
// and the transaction manager never hold references into one another.
type Graph struct {
	edges    []Edge
	outgoing map[txn.ID][]int
	incoming map[txn.ID][]int
	hasRWOut map[txn.ID]bool
	hasRWIn  map[txn.ID]bool
}

// New creates an empty serialization graph.
func New() *Graph {
	return &Graph{
		outgoing: make(map[txn.ID][]int),
		incoming: make(map[txn.ID][]int),
		hasRWOut: make(map[txn.ID]bool),
		hasRWIn:  make(map[txn.ID]bool),
	}
}

// AddEdge records a dependency edge, deduplicating identical edges.
func (g *Graph) AddEdge(from, to txn.ID, kind Kind, v topology.VarID) {
	for _, idx := range g.outgoing[from] {
		e := g.edges[idx]
		if e.To == to && e.Kind == kind && e.Var == v {
			return
		}
	}
	idx := len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Kind: kind, Var: v})
	g.outgoing[from] = append(g.outgoing[from], idx)
	g.incoming[to] = append(g.incoming[to], idx)
	if kind == RW {
		g.hasRWOut[from] = true
		g.hasRWIn[to] = true
	}
}

// RemoveNode deletes a transaction and every edge touching it. Used both
// when a transaction aborts (it contributes no committed fact) and when a
// committed transaction is garbage collected because no active
// transaction's snapshot can still reference it.
func (g *Graph) RemoveNode(id txn.ID) {
	keep := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if e.From == id || e.To == id {
			continue
		}
		keep = append(keep, e)
	}
	g.edges = keep
	g.rebuildIndex()
}

func (g *Graph) rebuildIndex() {
	g.outgoing = make(map[txn.ID][]int)
	g.incoming = make(map[txn.ID][]int)
	g.hasRWOut = make(map[txn.ID]bool)
	g.hasRWIn = make(map[txn.ID]bool)
	for idx, e := range g.edges {
		g.outgoing[e.From] = append(g.outgoing[e.From], idx)
		g.incoming[e.To] = append(g.incoming[e.To], idx)
		if e.Kind == RW {
			g.hasRWOut[e.From] = true
			g.hasRWIn[e.To] = true
		}
	}
}

// Edges returns a copy of every edge touching id, for diagnostics.
func (g *Graph) Edges(id txn.ID) []Edge {
	var out []Edge
	for _, idx := range g.outgoing[id] {
		out = append(out, g.edges[idx])
	}
	for _, idx := range g.incoming[id] {
		out = append(out, g.edges[idx])
	}
	return out
}

// HasConsecutiveRWCycleThrough searches for a cycle through id that
// contains two consecutive RW edges with id as an endpoint of at least one
// of them (spec 4.4.3). The active transaction set is small, so a bounded
// DFS over simple paths back to id is cheap; per the design notes, if id
// itself has no RW edge in either direction it can never be an endpoint of
// an offending pair, so the search returns false without walking the graph.
func (g *Graph) HasConsecutiveRWCycleThrough(id txn.ID) bool {
	if !g.hasRWOut[id] && !g.hasRWIn[id] {
		return false
	}

	visited := map[txn.ID]bool{id: true}
	var path []Edge

	var dfs func(current txn.ID) bool
	dfs = func(current txn.ID) bool {
		for _, idx := range g.outgoing[current] {
			e := g.edges[idx]
			path = append(path, e)
			if e.To == id {
				if cycleHasOffendingRWAdjacency(path, id) {
					return true
				}
			} else if !visited[e.To] {
				visited[e.To] = true
				if dfs(e.To) {
					return true
				}
				visited[e.To] = false
			}
			path = path[:len(path)-1]
		}
		return false
	}

	return dfs(id)
}

// cycleHasOffendingRWAdjacency checks every adjacent pair of edges around
// the cycle (including the wraparound pair) for two consecutive RW edges
// where victim is an endpoint of at least one of them.
func cycleHasOffendingRWAdjacency(path []Edge, victim txn.ID) bool {
	n := len(path)
	if n < 2 {
		return false
	}
	touches := func(e Edge) bool { return e.From == victim || e.To == victim }
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if path[i].Kind == RW && path[j].Kind == RW && (touches(path[i]) || touches(path[j])) {
			return true
		}
	}
	return false
}
