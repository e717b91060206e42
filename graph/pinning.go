package graph

import "math"

// DummyNodeID is the id of the synthetic sink node the Pinning Adapter
// appends (spec.md §4.2). No emitted Alignment may ever reference it
// (spec.md §8 invariant 7).
const DummyNodeID uint32 = math.MaxUint32

// DummySeq is the dummy node's single-base sequence.
var DummySeq = []byte{'N'}

// AppendDummySink returns a copy of dp with a terminal node (id
// DummyNodeID, sequence "N") appended, wired from every current sink.
// Called once per pinned alignment; the caller discards the result at the
// end of the call per spec.md §5's allocate-on-entry/free-on-exit model.
func AppendDummySink(dp *DPGraph) *DPGraph {
	out := &DPGraph{Nodes: make(map[uint32]*DPNode, len(dp.Nodes)+1)}
	for id, n := range dp.Nodes {
		cp := *n
		cp.Out = append([]uint32(nil), n.Out...)
		cp.In = append([]uint32(nil), n.In...)
		out.Nodes[id] = &cp
	}
	dummy := &DPNode{ID: DummyNodeID, Seq: append([]byte(nil), DummySeq...)}
	for _, sinkID := range dp.Sinks() {
		sn := out.Nodes[sinkID]
		sn.Out = append(sn.Out, DummyNodeID)
		dummy.In = append(dummy.In, sinkID)
	}
	out.Nodes[DummyNodeID] = dummy
	out.Order = append(append([]uint32(nil), dp.Order...), DummyNodeID)
	return out
}

// Reverse builds a reversed copy of dp: node sequences are reversed and
// every edge's endpoints (and direction) are swapped, as required before
// left-pinning (spec.md §4.2). The reversed graph's topological order is
// the exact reverse of dp's.
func Reverse(dp *DPGraph) *DPGraph {
	out := &DPGraph{Nodes: make(map[uint32]*DPNode, len(dp.Nodes))}
	for id, n := range dp.Nodes {
		out.Nodes[id] = &DPNode{ID: id, Seq: ReverseBytes(n.Seq)}
	}
	for id, n := range dp.Nodes {
		// forward edge id->succ becomes succ->id in the reversed graph.
		for _, succ := range n.Out {
			out.Nodes[succ].Out = append(out.Nodes[succ].Out, id)
			out.Nodes[id].In = append(out.Nodes[id].In, succ)
		}
	}
	out.Order = make([]uint32, len(dp.Order))
	for i, id := range dp.Order {
		out.Order[len(dp.Order)-1-i] = id
	}
	return out
}

// ReverseBytes returns a newly allocated reverse of b.
func ReverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
