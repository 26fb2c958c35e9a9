package sgraph

import "testing"

func TestAddEdgeDeduplicates(t *testing.T) {
	g := New()
	g.AddEdge("T1", "T2", WR, 2)
	g.AddEdge("T1", "T2", WR, 2)
	if len(g.Edges("T1")) != 1 {
		t.Errorf("duplicate edges should be deduplicated, got %v", g.Edges("T1"))
	}
}

func TestRemoveNode(t *testing.T) {
	g := New()
	g.AddEdge("T1", "T2", WR, 2)
	g.AddEdge("T2", "T3", RW, 4)
	g.RemoveNode("T2")

	if len(g.Edges("T1")) != 0 {
		t.Error("edges touching a removed node should be gone")
	}
	if len(g.Edges("T3")) != 0 {
		t.Error("edges touching a removed node should be gone")
	}
}

func TestNoCycleWithoutRW(t *testing.T) {
	g := New()
	g.AddEdge("T1", "T2", WW, 2)
	g.AddEdge("T2", "T1", WW, 4)
	if g.HasConsecutiveRWCycleThrough("T1") {
		t.Error("a cycle of only WW edges must not trigger an SSI abort")
	}
}

func TestSingleRWEdgeIsNotEnough(t *testing.T) {
	g := New()
	g.AddEdge("T1", "T2", RW, 2)
	g.AddEdge("T2", "T1", WW, 4)
	if g.HasConsecutiveRWCycleThrough("T1") {
		t.Error("one RW edge in a 2-cycle should not be an abort condition")
	}
}

// TestTwoConsecutiveRWEdgesFormCycle mirrors scenario S3: T1 reads x2 (RW to
// T2 via T2's later write), T2 reads x4 (RW to T1 via T1's later write).
func TestTwoConsecutiveRWEdgesFormCycle(t *testing.T) {
	g := New()
	g.AddEdge("T1", "T2", RW, 2)
	g.AddEdge("T2", "T1", RW, 4)

	if !g.HasConsecutiveRWCycleThrough("T1") {
		t.Error("two consecutive RW edges forming a 2-cycle should be detected")
	}
	if !g.HasConsecutiveRWCycleThrough("T2") {
		t.Error("the cycle touches T2 too")
	}
}

func TestThreeNodeMixedCycleNotOffending(t *testing.T) {
	g := New()
	// T1 -RW-> T2 -WW-> T3 -WR-> T1: only one RW edge total, never adjacent
	// to another RW edge.
	g.AddEdge("T1", "T2", RW, 2)
	g.AddEdge("T2", "T3", WW, 4)
	g.AddEdge("T3", "T1", WR, 6)

	if g.HasConsecutiveRWCycleThrough("T1") {
		t.Error("a cycle with only one RW edge must not trigger an abort")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{WR: "WR", WW: "WW", RW: "RW"}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
