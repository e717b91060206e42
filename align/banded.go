package align

import "github.com/mudesheng/vgalign/graph"

// nodeStart estimates each node's earliest possible read offset: the
// longest path length in bases from any source node. The Banded Global
// Aligner (spec.md §4.3) centers each node's column band on this estimate.
func nodeStart(dp *graph.DPGraph) map[uint32]int {
	start := make(map[uint32]int, len(dp.Nodes))
	for _, id := range dp.Order {
		n := dp.Nodes[id]
		best := 0
		for _, pred := range n.In {
			if s := start[pred] + len(dp.Nodes[pred].Seq); s > best {
				best = s
			}
		}
		start[id] = best
	}
	return start
}

// buildBand computes a [lo,hi] column range per node: bandPadding columns
// either side of the node's estimated diagonal, permissively widened to
// the full column range when the estimated band would be too narrow to
// plausibly hold a real alignment (spec.md §4.3's "permissive widening").
func buildBand(dp *graph.DPGraph, readLen, bandPadding int) map[uint32][2]int {
	starts := nodeStart(dp)
	band := make(map[uint32][2]int, len(dp.Nodes))
	for id, n := range dp.Nodes {
		cols := readLen + 1
		lo := starts[id] - bandPadding
		hi := starts[id] + len(n.Seq) + bandPadding
		if lo < 0 {
			lo = 0
		}
		if hi > cols-1 {
			hi = cols - 1
		}
		if hi-lo < 2*bandPadding {
			// Band collapsed (short node, or padding larger than the
			// remaining read); widen to the full row rather than risk
			// excluding the true path.
			lo, hi = 0, cols-1
		}
		band[id] = [2]int{lo, hi}
	}
	return band
}

// fillGraphBanded fills the DP grid restricted to buildBand's column
// ranges. Semantically identical to fillGraph outside the band; cells
// outside a node's band are left at their negInf/traceNone sentinel so a
// path can never be traced through them.
func fillGraphBanded(dp *graph.DPGraph, read []byte, p Params, opt fillOpts, bandPadding int) fillResult {
	opt.band = buildBand(dp, len(read), bandPadding)
	opt.local = false // banded alignment is always global (spec.md §4.3).
	return fillGraph(dp, read, p, opt)
}
