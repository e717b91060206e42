package align

import (
	"math"

	"github.com/mudesheng/vgalign/graph"
)

// traceDir records how a traceback cell was reached, so the backward pass
// can walk it without recomputing scores.
type traceDir uint8

const (
	traceNone  traceDir = iota // local-mode restart; stop here
	traceDiag                  // match/mismatch: (i-1,j-1)
	traceUp                    // deletion: ref consumed, read not: (i-1,j) within node, or cross-node carry
	traceLeft                  // insertion: read consumed, ref not: (i,j-1)
	traceCross                 // row-0 boundary carry from a specific predecessor node's last row
)

// cell is one DP grid entry under the Gotoh three-matrix recurrence: H is
// the best score ending here by any move, E ends in a read-gap
// (insertion, horizontal move), F ends in a ref-gap (deletion, vertical
// move).
type cell struct {
	H, E, F   int
	hDir      traceDir
	hFromNode uint32 // valid when hDir == traceCross: which predecessor row-0 carried from
	eFromH    bool   // true: this E opened fresh from H(i,j-1); false: extended from E(i,j-1)
	fFromH    bool   // true: this F opened fresh from H(i-1,j); false: extended from F(i-1,j)
}

// nodeDP is the filled DP grid for one DPNode: (len(Seq)+1) rows by
// (len(read)+1) columns, row-major.
type nodeDP struct {
	id   uint32
	rows int
	cols int
	grid []cell
}

func (n *nodeDP) at(i, j int) *cell { return &n.grid[i*n.cols+j] }

const negInf = math.MinInt32 / 2

// fillOpts configures one DP fill pass.
type fillOpts struct {
	local         bool // true: Smith-Waterman start/end anywhere; false: Needleman-Wunsch global
	quality       []byte
	qualityMatrix *[25][25]int8
	band          map[uint32][2]int // optional: id -> [lo,hi] inclusive column range (banded global mode)

	// freeNode, when hasFreeNode is set, names a node whose entry
	// transitions (diagonal and vertical/deletion) are scored as zero cost
	// rather than looked up in the substitution/gap tables. This is the
	// pinning dummy sink: its sequence is a bookkeeping "N" with no real
	// information, so passing through it must not tax or reward the real
	// alignment it terminates (spec.md §4.2/§4.3).
	hasFreeNode bool
	freeNode    uint32
}

// columnRange returns the inclusive [lo,hi] column bound for id: the full
// row unless opt.band restricts it.
func (opt fillOpts) columnRange(id uint32, cols int) (lo, hi int) {
	if opt.band == nil {
		return 0, cols - 1
	}
	b, ok := opt.band[id]
	if !ok {
		return 0, cols - 1
	}
	return b[0], b[1]
}

// fillResult is the output of one fillGraph pass: every node's filled
// grid, plus the single best-scoring cell found across all of them (used
// directly by local mode; pinned/banded modes locate their own target
// cell separately).
type fillResult struct {
	grids     map[uint32]*nodeDP
	bestNode  uint32
	bestI     int
	bestJ     int
	bestScore int
}

// fillGraph fills one nodeDP per node of dp, in topological order, using
// the Gotoh affine-gap recurrence generalized to a DAG: a node's row-0
// state is the max over its canonical predecessors' last row (spec.md
// §4.3's "maxima over incoming edges"). Cross-node carry only propagates H
// (not the gap-extension state E/F); a gap that crosses a node boundary
// always re-pays the gap-open cost on the far side — a deliberate
// simplification over the reference's pointer-chased gap-state carry,
// noted in DESIGN.md. opt.hasFreeNode exempts one node's entry transitions
// from scoring: the diagonal (match/mismatch into the dummy's synthetic
// "N") costs nothing, but the vertical/deletion entry costs exactly one
// unit so a clean alignment reaching the true terminus can never tie a
// deletion-through-the-dummy finish (see the free-node case in the main
// fill loop below).
func fillGraph(dp *graph.DPGraph, read []byte, p Params, opt fillOpts) fillResult {
	grids := make(map[uint32]*nodeDP, len(dp.Nodes))
	m := len(read)
	ntMatrix := NTMatrix(p)

	res := fillResult{grids: grids, bestI: -1, bestJ: -1, bestScore: negInf}

	for _, id := range dp.Order {
		n := dp.Nodes[id]
		rows := len(n.Seq) + 1
		cols := m + 1
		g := &nodeDP{id: id, rows: rows, cols: cols, grid: make([]cell, rows*cols)}
		for k := range g.grid {
			g.grid[k] = cell{H: negInf, E: negInf, F: negInf, hDir: traceNone}
		}
		grids[id] = g
		loJ, hiJ := opt.columnRange(id, cols)

		// Row 0: either this node is a source (no predecessors) or it
		// carries over the max of its predecessors' last rows.
		for j := loJ; j <= hiJ; j++ {
			c := g.at(0, j)
			switch {
			case len(n.In) == 0 && (opt.local || j == 0):
				c.H, c.E, c.F = 0, negInf, negInf
			case len(n.In) == 0:
				// global/pinned source: row0 beyond col0 is a read prefix
				// soft-clip paid for as a read-gap.
				c.F = negInf
				c.E = -p.GapOpen - (j-1)*p.GapExtension
				c.H, c.hDir = c.E, traceLeft
				c.eFromH = j == 1
			default:
				best, bestFrom := negInf, uint32(0)
				for _, pred := range n.In {
					pg := grids[pred]
					pc := pg.at(pg.rows-1, j)
					if pc.H > best {
						best, bestFrom = pc.H, pred
					}
				}
				c.H, c.hDir, c.hFromNode = best, traceCross, bestFrom
				c.E, c.F = negInf, negInf
				if opt.local && c.H < 0 {
					c.H, c.hDir = 0, traceNone
				}
			}
		}

		free := opt.hasFreeNode && id == opt.freeNode

		for i := 1; i < rows; i++ {
			refBase := n.Seq[i-1]

			// column 0: pure deletion column within this node (only
			// meaningful when column 0 is within this node's band).
			if loJ == 0 {
				top := g.at(i-1, 0)
				c0 := g.at(i, 0)
				switch {
				case free:
					// Strictly worse than the free diagonal below by one
					// unit: a clean match reaching the true terminus must
					// never tie a "finish via deletion through the dummy"
					// path, or the k-best tie-break (lowest column wins)
					// picks the deletion and hands translate.go a dummy
					// segment exciseDummyTail cannot absorb.
					f := top.H - 1
					c0.F, c0.H, c0.hDir, c0.fFromH = f, f, traceUp, true
					if opt.local && c0.H < 0 {
						c0.H, c0.hDir = 0, traceNone
					}
				case opt.local:
					c0.H, c0.F, c0.hDir = 0, negInf, traceNone
				default:
					fOpen := top.H - p.GapOpen - p.GapExtension
					fExt := top.F - p.GapExtension
					f := fOpen
					fFromH := true
					if fExt > f {
						f, fFromH = fExt, false
					}
					c0.F, c0.H, c0.hDir, c0.fFromH = f, f, traceUp, fFromH
				}
				c0.E = negInf
			}

			start := loJ
			if start < 1 {
				start = 1
			}
			for j := start; j <= hiJ; j++ {
				readBase := read[j-1]
				var sub int
				switch {
				case free:
					sub = 0
				case opt.quality != nil && opt.qualityMatrix != nil:
					sub = QualityScore(opt.qualityMatrix, opt.quality[j-1], refBase, readBase)
				default:
					sub = ntMatrix[baseIndex(refBase)][baseIndex(readBase)]
				}

				diagScore := g.at(i-1, j-1).H + sub

				left := g.at(i, j-1)
				eOpen := left.H - p.GapOpen - p.GapExtension
				eExt := left.E - p.GapExtension
				e, eFromH := eOpen, true
				if eExt > e {
					e, eFromH = eExt, false
				}

				up := g.at(i-1, j)
				var f int
				var fFromH bool
				if free {
					// One unit worse than the free diagonal's zero cost
					// (see the column-0 case above): ties must resolve to
					// the diagonal finish, never the deletion finish.
					f, fFromH = up.H-1, true
				} else {
					fOpen := up.H - p.GapOpen - p.GapExtension
					fExt := up.F - p.GapExtension
					f, fFromH = fOpen, true
					if fExt > f {
						f, fFromH = fExt, false
					}
				}

				h, dir := diagScore, traceDiag
				if e > h {
					h, dir = e, traceLeft
				}
				if f > h {
					h, dir = f, traceUp
				}
				if opt.local && h < 0 {
					h, dir = 0, traceNone
				}

				c := g.at(i, j)
				c.H, c.E, c.F, c.hDir = h, e, f, dir
				c.eFromH, c.fFromH = eFromH, fFromH

				if h > res.bestScore {
					res.bestScore, res.bestNode, res.bestI, res.bestJ = h, id, i, j
				}
			}
		}
	}
	return res
}
