package align

import (
	"testing"

	"github.com/mudesheng/vgalign/graph"
)

func TestNodeStartLongestPathFromSource(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: 1, Seq: []byte("AAAA")},
			{ID: 2, Seq: []byte("CC")},
			{ID: 3, Seq: []byte("GGGGGG")},
			{ID: 4, Seq: []byte("TT")},
		},
		Edges: []graph.Edge{
			{From: 1, To: 2}, {From: 1, To: 3},
			{From: 2, To: 4}, {From: 3, To: 4},
		},
	}
	dp := buildDP(t, g)
	starts := nodeStart(dp)
	if starts[1] != 0 {
		t.Errorf("starts[1] = %d, want 0 (source)", starts[1])
	}
	if starts[4] != 10 {
		t.Errorf("starts[4] = %d, want 10 (longest path through node 3's 6 bases)", starts[4])
	}
}

func TestBuildBandWidensWhenCollapsed(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{{ID: 1, Seq: []byte("AC")}}}
	dp := buildDP(t, g)
	band := buildBand(dp, 100, 10)
	lo, hi := band[1][0], band[1][1]
	if lo != 0 || hi != 100 {
		t.Errorf("band = [%d,%d], want the full [0,100] row once the estimate collapses below 2*padding", lo, hi)
	}
}

func TestBuildBandCentersOnEstimate(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: 1, Seq: make([]byte, 50)},
			{ID: 2, Seq: make([]byte, 50)},
		},
		Edges: []graph.Edge{{From: 1, To: 2}},
	}
	for i := range g.Nodes {
		for j := range g.Nodes[i].Seq {
			g.Nodes[i].Seq[j] = 'A'
		}
	}
	dp := buildDP(t, g)
	band := buildBand(dp, 100, 5)
	lo, hi := band[2][0], band[2][1]
	if lo != 45 || hi != 100 {
		t.Errorf("node 2 band = [%d,%d], want [45,100] (estimate 50 +/- 5, clamped to the row)", lo, hi)
	}
}
