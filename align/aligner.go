package align

import (
	"sort"

	"github.com/mudesheng/vgalign/cigar"
	"github.com/mudesheng/vgalign/graph"
)

// Aligner holds the scoring parameters for one scheme and exposes the §6
// external operations. It carries no mutable state beyond the immutable
// Params and precomputed scoring tables, so one Aligner may be shared
// across concurrently running align_* calls on distinct Read/Graph
// arguments (spec.md §5). Grounded on ga.go's subcommand-per-operation
// layering, flattened here into exported methods since this is a library,
// not a CLI.
type Aligner struct {
	Params Params

	ntMatrix      [5][5]int
	qualityMatrix [25][25]int8
}

// NewAligner precomputes the scoring tables for p once.
func NewAligner(p Params) *Aligner {
	a := &Aligner{Params: p, ntMatrix: NTMatrix(p)}
	if p.QualityAdjusted {
		a.qualityMatrix = QualityMatrix(p)
	}
	return a
}

func (a *Aligner) checkQuality(read *Read) error {
	if a.Params.QualityAdjusted && len(read.Quality) > 0 && len(read.Quality) != len(read.Sequence) {
		return ErrQualityLengthMismatch
	}
	return nil
}

func (a *Aligner) fillOptsFor(read *Read) fillOpts {
	opt := fillOpts{}
	if a.Params.QualityAdjusted && len(read.Quality) == len(read.Sequence) {
		opt.quality = read.Quality
		opt.qualityMatrix = &a.qualityMatrix
	}
	return opt
}

// Align runs local (Smith-Waterman) alignment of read against g, writing
// read.Path, read.Score and read.Identity (spec.md §6 align()).
func (a *Aligner) Align(read *Read, g *graph.Graph) error {
	if err := a.checkQuality(read); err != nil {
		return err
	}
	dp, err := graph.BuildDPGraph(g)
	if err != nil {
		return err
	}
	opt := a.fillOptsFor(read)
	opt.local = true
	res := fillGraph(dp, read.Sequence, a.Params, opt)
	if res.bestJ < 0 {
		read.Path, read.Score, read.Identity = nil, 0, 1.0
		return nil
	}
	segs, readStart, readEnd := traceback(res.grids, res.bestNode, res.bestI, res.bestJ)
	score := res.bestScore + a.fullLengthBonus(readStart, readEnd, len(read.Sequence))
	path, err := translate(dp, read.Sequence, segs, readStart, readEnd, false, false)
	if err != nil {
		return err
	}
	read.Path, read.Score, read.Identity = path, score, identity(path)
	return nil
}

// fullLengthBonus adds Params.FullLengthBonus once per read terminus the
// traceback actually reached (spec.md §4.3).
func (a *Aligner) fullLengthBonus(readStart, readEnd, readLen int) int {
	bonus := 0
	if readStart == 0 {
		bonus += a.Params.FullLengthBonus
	}
	if readEnd == readLen {
		bonus += a.Params.FullLengthBonus
	}
	return bonus
}

// AlignPinned runs pinned alignment (spec.md §6 align_pinned()): like local
// (Smith-Waterman) alignment, the start is free — H resets to 0 wherever it
// would go negative, including across node boundaries — but the traceback's
// end cell is fixed to the dummy sink node's last row instead of the
// best-scoring cell anywhere in the graph.
func (a *Aligner) AlignPinned(read *Read, g *graph.Graph, pinLeft bool) error {
	alts, err := a.AlignPinnedMulti(read, g, pinLeft, 1)
	if err != nil {
		return err
	}
	if len(alts) > 0 {
		*read = alts[0]
	}
	return nil
}

// AlignPinnedMulti runs pinned alignment and returns up to maxAltAlns
// alternates in score-descending order, primary at index 0 (spec.md §6
// align_pinned_multi(); per spec.md §9's "output-parameter -> return
// value" note, alternates is returned rather than passed by the caller,
// which removes ErrNonEmptyAltBuffer from this surface entirely).
func (a *Aligner) AlignPinnedMulti(read *Read, g *graph.Graph, pinLeft bool, maxAltAlns int) ([]Read, error) {
	if maxAltAlns < 1 {
		return nil, ErrMultiAltMismatch
	}
	if err := a.checkQuality(read); err != nil {
		return nil, err
	}

	dpOrig, err := graph.BuildDPGraph(g)
	if err != nil {
		return nil, err
	}

	dp := dpOrig
	seq, qual := read.Sequence, read.Quality
	if pinLeft {
		dp = graph.Reverse(dp)
		seq = graph.ReverseBytes(seq)
		if len(qual) > 0 {
			qual = graph.ReverseBytes(qual)
		}
	}

	dp = graph.AppendDummySink(dp)
	extSeq := append(append([]byte(nil), seq...), graph.DummySeq...)
	var extQual []byte
	if len(qual) > 0 {
		extQual = append(append([]byte(nil), qual...), 0)
	}

	opt := fillOpts{local: true, hasFreeNode: true, freeNode: graph.DummyNodeID}
	if a.Params.QualityAdjusted && len(extQual) == len(extSeq) {
		opt.quality = extQual
		opt.qualityMatrix = &a.qualityMatrix
	}
	res := fillGraph(dp, extSeq, a.Params, opt)

	dummy := dp.Nodes[graph.DummyNodeID]
	endRow := len(dummy.Seq)
	grid := res.grids[graph.DummyNodeID]

	candidates := kBestEndpoints(grid, endRow, maxAltAlns)
	realLen := len(read.Sequence)

	var out []Read
	for _, cand := range candidates {
		segs, readStart, readEnd := traceback(res.grids, graph.DummyNodeID, endRow, cand.j)

		if pinLeft {
			segs = unreverseSegs(segs, dpOrig)
			// Flip the [readStart,readEnd) window (spec.md §4.2 step 3),
			// then drop the leading slot that UNREVERSE puts the
			// synthetic read "N" into: extSeq = reverse(read)+"N", so
			// unreversed the "N" always lands at natural-frame index 0,
			// never part of the real read (it is fully excised above, or
			// a boundary artifact that must not leak as a soft clip).
			readStart, readEnd = len(extSeq)-readEnd-1, len(extSeq)-readStart-1
		}
		if readStart < 0 {
			readStart = 0
		}
		if readEnd > realLen {
			readEnd = realLen
		}
		if readEnd < readStart {
			readEnd = readStart
		}

		path, terr := translate(dpOrig, read.Sequence, segs, readStart, readEnd, true, pinLeft)
		if terr != nil {
			return nil, terr
		}

		score := cand.score + a.fullLengthBonus(readStart, readEnd, realLen)
		if score <= 0 {
			path, score = synthesizeZeroScore(dpOrig, read.Sequence, pinLeft)
		}

		r := *read
		r.Path, r.Score, r.Identity = path, score, identity(path)
		out = append(out, r)
	}
	return out, nil
}

// kBestCandidate is one candidate end-of-read column at the dummy node's
// last row, with the H score reached there.
type kBestCandidate struct {
	j     int
	score int
}

// kBestEndpoints returns up to k distinct traceback-start columns at the
// dummy sink's last row, in score-descending order: the single-cell
// analogue of a k-best traceback, since every pinned alignment's end cell
// is fixed (spec.md §4.3), only the column (read position reached) can
// vary across alternates. Ties are broken by column so the result is
// deterministic.
func kBestEndpoints(grid *nodeDP, row, k int) []kBestCandidate {
	cands := make([]kBestCandidate, 0, grid.cols)
	for j := 0; j < grid.cols; j++ {
		c := grid.at(row, j)
		if c.H <= negInf/2 {
			continue
		}
		cands = append(cands, kBestCandidate{j: j, score: c.H})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].j < cands[j].j
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands
}

// unreverseSegs restores a left-pinned traceback (computed over the
// reversed graph/read) back into the original coordinate frame: segment
// order flips, each segment's own CIGAR flips, and each offset is
// recomputed against the node's true (un-reversed) length — exactly
// spec.md §4.2 step 3's (b)/(c)/(d). dpOrig supplies true node lengths
// (the dummy node never reaches here: it is stripped by exciseDummy
// inside translate, which runs after this).
func unreverseSegs(segs []segment, dpOrig *graph.DPGraph) []segment {
	out := make([]segment, len(segs))
	for i, s := range segs {
		rev := make(cigar.List, len(s.ops))
		for k, op := range s.ops {
			rev[len(s.ops)-1-k] = op
		}
		offset := s.offset
		if n, ok := dpOrig.Nodes[s.node]; ok {
			offset = len(n.Seq) - (s.offset + s.ops.RefLen())
		}
		out[len(segs)-1-i] = segment{node: s.node, offset: offset, ops: rev}
	}
	return out
}

// synthesizeZeroScore implements spec.md §4.3's pinned-zero-score policy:
// when the best pinned traceback scored 0, emit a single-edit soft-clip
// alignment at an arbitrary terminus instead of an empty path — a source
// node for left-pinning, a sink node for right-pinning, matching the side
// the read was meant to anchor against.
func synthesizeZeroScore(dpOrig *graph.DPGraph, seq []byte, pinLeft bool) ([]Mapping, int) {
	var nodeID uint32
	if pinLeft {
		if srcs := dpOrig.Sources(); len(srcs) > 0 {
			nodeID = srcs[0]
		}
	} else if sinks := dpOrig.Sinks(); len(sinks) > 0 {
		nodeID = sinks[0]
	}
	return []Mapping{{
		NodeID: nodeID,
		Offset: 0,
		Rank:   1,
		Edits:  []Edit{{FromLen: 0, ToLen: len(seq), Seq: append([]byte(nil), seq...)}},
	}}, 0
}

// AlignGlobalBanded runs the Banded Global Aligner (spec.md §6
// align_global_banded()).
func (a *Aligner) AlignGlobalBanded(read *Read, g *graph.Graph, bandPadding int) error {
	alts, err := a.AlignGlobalBandedMulti(read, g, bandPadding, 1)
	if err != nil {
		return err
	}
	if len(alts) > 0 {
		*read = alts[0]
	}
	return nil
}

// AlignGlobalBandedMulti is AlignGlobalBanded's k-best sibling (spec.md §6
// align_global_banded_multi()). permissiveWidening always applies per
// buildBand's band-collapse fallback; a degenerate band never excludes the
// alignment entirely.
func (a *Aligner) AlignGlobalBandedMulti(read *Read, g *graph.Graph, bandPadding, maxAltAlns int) ([]Read, error) {
	if maxAltAlns < 1 {
		return nil, ErrMultiAltMismatch
	}
	if err := a.checkQuality(read); err != nil {
		return nil, err
	}
	dp, err := graph.BuildDPGraph(g)
	if err != nil {
		return nil, err
	}
	opt := a.fillOptsFor(read)
	res := fillGraphBanded(dp, read.Sequence, a.Params, opt, bandPadding)

	sinks := dp.Sinks()
	type end struct {
		node  uint32
		score int
	}
	var ends []end
	for _, id := range sinks {
		grid := res.grids[id]
		ends = append(ends, end{node: id, score: grid.at(grid.rows-1, grid.cols-1).H})
	}
	sort.Slice(ends, func(i, j int) bool { return ends[i].score > ends[j].score })
	if len(ends) > maxAltAlns {
		ends = ends[:maxAltAlns]
	}

	var out []Read
	for _, e := range ends {
		grid := res.grids[e.node]
		segs, readStart, readEnd := traceback(res.grids, e.node, grid.rows-1, grid.cols-1)
		path, terr := translate(dp, read.Sequence, segs, readStart, readEnd, false, false)
		if terr != nil {
			return nil, terr
		}
		score := e.score + a.fullLengthBonus(readStart, readEnd, len(read.Sequence))
		r := *read
		r.Path, r.Score, r.Identity = path, score, identity(path)
		out = append(out, r)
	}
	return out, nil
}

// ScoreExactMatch scores sequence as if it matched a node's sequence
// exactly end to end plus both full-length bonuses (spec.md §6
// score_exact_match()).
func (a *Aligner) ScoreExactMatch(sequence []byte) int {
	return len(sequence)*a.Params.Match + 2*a.Params.FullLengthBonus
}

// ScoreExactMatchQuality is ScoreExactMatch's quality-adjusted sibling,
// looking up each column's score in the 25x25 matrix against a perfect
// (self) match rather than using the flat per-base Match constant.
func (a *Aligner) ScoreExactMatchQuality(sequence, quality []byte) (int, error) {
	if len(quality) != len(sequence) {
		return 0, ErrQualityLengthMismatch
	}
	score := 2 * a.Params.FullLengthBonus
	for i, b := range sequence {
		score += QualityScore(&a.qualityMatrix, quality[i], b, b)
	}
	return score, nil
}
