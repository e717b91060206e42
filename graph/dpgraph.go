package graph

import "fmt"

// DPNode is one DP-graph node: a copy of a Node's sequence plus canonical
// ("tail-to-head, forward strand") adjacency, both directions, so the DP
// Engine can take maxima over incoming edges of a predecessor's last
// column (spec.md §4.3) without re-deriving orientation at fill time.
type DPNode struct {
	ID  uint32
	Seq []byte
	Out []uint32 // canonical successors
	In  []uint32 // canonical predecessors
}

// DPGraph is the DP Graph Builder's output (spec.md §4.1): one DPNode per
// input Node, edges rewritten into canonical forward orientation, plus the
// sink/source bookkeeping the Pinning Adapter needs.
type DPGraph struct {
	Nodes map[uint32]*DPNode
	Order []uint32 // node IDs, topologically sorted under canonical edges
}

// BuildDPGraph projects g into DP form. Every edge with flags (false,false)
// is copied as-is; every edge with flags (true,true) is inserted as
// to->from; any other flag combination is a fatal ErrReversingEdgeUnsupported.
func BuildDPGraph(g *Graph) (*DPGraph, error) {
	dp := &DPGraph{Nodes: make(map[uint32]*DPNode, len(g.Nodes))}
	order := make([]uint32, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		dp.Nodes[n.ID] = &DPNode{ID: n.ID, Seq: CleanSeq(n.Seq)}
		order = append(order, n.ID)
	}
	for _, e := range g.Edges {
		var from, to uint32
		switch {
		case !e.FromStart && !e.ToEnd:
			from, to = e.From, e.To
		case e.FromStart && e.ToEnd:
			from, to = e.To, e.From
		default:
			return nil, fmt.Errorf("graph: edge %d->%d (from_start=%v,to_end=%v): %w", e.From, e.To, e.FromStart, e.ToEnd, ErrReversingEdgeUnsupported)
		}
		fn, ok := dp.Nodes[from]
		if !ok {
			return nil, fmt.Errorf("graph: edge references unknown node %d", from)
		}
		tn, ok := dp.Nodes[to]
		if !ok {
			return nil, fmt.Errorf("graph: edge references unknown node %d", to)
		}
		fn.Out = append(fn.Out, to)
		tn.In = append(tn.In, from)
	}
	dp.Order = topoSort(dp, order)
	return dp, nil
}

// Sinks returns the IDs of nodes with no canonical outgoing edge, in
// DPGraph.Order order. Pinning appends the dummy node's edges from exactly
// this set.
func (dp *DPGraph) Sinks() []uint32 {
	var s []uint32
	for _, id := range dp.Order {
		if len(dp.Nodes[id].Out) == 0 {
			s = append(s, id)
		}
	}
	return s
}

// Sources returns the IDs of nodes with no canonical incoming edge, in
// DPGraph.Order order. Used to pick default right-pin traversal starts and
// to synthesize a soft-clip alignment when left-pinning yields a zero score.
func (dp *DPGraph) Sources() []uint32 {
	var s []uint32
	for _, id := range dp.Order {
		if len(dp.Nodes[id].In) == 0 {
			s = append(s, id)
		}
	}
	return s
}

// topoSort performs a Kahn's-algorithm topological sort over the canonical
// DP edges, preferring the caller-supplied node order to break ties so
// that an already-sorted input graph (the expected case per spec.md §3)
// passes through unchanged. Falls back to the caller order, appending any
// node that could not be reached (a cycle, which should not occur in a
// valid DAG but must not panic).
func topoSort(dp *DPGraph, callerOrder []uint32) []uint32 {
	indeg := make(map[uint32]int, len(dp.Nodes))
	for id, n := range dp.Nodes {
		indeg[id] = len(n.In)
	}
	ready := append([]uint32(nil), callerOrder...)
	filterReady := func() []uint32 {
		out := ready[:0]
		for _, id := range ready {
			if indeg[id] == 0 {
				out = append(out, id)
			}
		}
		return out
	}
	visited := make(map[uint32]bool, len(dp.Nodes))
	order := make([]uint32, 0, len(dp.Nodes))
	pending := filterReady()
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)
		for _, succ := range dp.Nodes[id].Out {
			indeg[succ]--
			if indeg[succ] == 0 {
				pending = append(pending, succ)
			}
		}
	}
	if len(order) != len(dp.Nodes) {
		for _, id := range callerOrder {
			if !visited[id] {
				order = append(order, id)
			}
		}
	}
	return order
}
