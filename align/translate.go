package align

import (
	"github.com/biogo/hts/sam"
	"github.com/mudesheng/vgalign/cigar"
	"github.com/mudesheng/vgalign/graph"
)

// translate converts a traced path (segments in head-to-tail order, plus
// the read range the path actually covers) into the canonical edit-level
// Mapping list of spec.md §3/§4.4: dummy-node artefacts excised first (if
// pinned), then each node's CIGAR expanded into match/mismatch/indel
// edits, with leading/trailing soft clips for any read the path didn't
// cover.
func translate(dp *graph.DPGraph, read []byte, segs []segment, readStart, readEnd int, pinned, pinLeft bool) ([]Mapping, error) {
	if pinned {
		var err error
		segs, err = exciseDummy(segs, pinLeft)
		if err != nil {
			return nil, err
		}
	}

	var mappings []Mapping
	readPos := readStart

	for si, seg := range segs {
		var edits []Edit
		if si == 0 && readStart > 0 {
			edits = append(edits, Edit{FromLen: 0, ToLen: readStart, Seq: append([]byte(nil), read[:readStart]...)})
		}

		node := dp.Nodes[seg.node]
		nodeOff := seg.offset
		for _, op := range seg.ops {
			n := op.Len()
			switch op.Type() {
			case sam.CigarDeletion:
				edits = append(edits, Edit{FromLen: n, ToLen: 0})
				nodeOff += n
			case sam.CigarInsertion, sam.CigarSoftClipped:
				edits = append(edits, Edit{FromLen: 0, ToLen: n, Seq: append([]byte(nil), read[readPos:readPos+n]...)})
				readPos += n
			default: // M, X, N: iterate column by column, splitting match/mismatch runs.
				runStart := 0
				for k := 0; k < n; k++ {
					if node.Seq[nodeOff+k] != read[readPos+k] {
						if k > runStart {
							edits = append(edits, Edit{FromLen: k - runStart, ToLen: k - runStart})
						}
						edits = append(edits, Edit{FromLen: 1, ToLen: 1, Seq: []byte{read[readPos+k]}})
						runStart = k + 1
					}
				}
				if runStart < n {
					edits = append(edits, Edit{FromLen: n - runStart, ToLen: n - runStart})
				}
				nodeOff += n
				readPos += n
			}
		}

		if si == len(segs)-1 && readEnd < len(read) {
			edits = append(edits, Edit{FromLen: 0, ToLen: len(read) - readEnd, Seq: append([]byte(nil), read[readEnd:]...)})
		}

		if len(edits) == 0 {
			continue
		}
		mappings = append(mappings, Mapping{NodeID: seg.node, Offset: seg.offset, Edits: edits})
	}

	for i := range mappings {
		mappings[i].Rank = i + 1
	}
	return mappings, nil
}

// identity computes the matched-base fraction over a path: matched
// columns divided by total aligned (match+mismatch) columns. Returns 1.0
// for a path with no aligned columns at all (pure clip/indel), since
// there is nothing to call mismatched.
func identity(path []Mapping) float64 {
	var matched, total int
	for _, mp := range path {
		for _, e := range mp.Edits {
			if e.FromLen == e.ToLen && e.FromLen > 0 {
				total += e.FromLen
				if len(e.Seq) == 0 {
					matched += e.FromLen
				}
			}
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(matched) / float64(total)
}

// exciseDummy removes the artefactual dummy-node (graph.DummyNodeID)
// segment from segs, relocating any insertion/deletion it absorbed onto
// the adjacent real node per spec.md §4.4. For a left-pinned alignment
// the dummy segment is first; reducing that case to the right-pinned
// ("dummy last") algorithm by mirroring the segment list (and un-mirroring
// the result) avoids duplicating the excise rules.
func exciseDummy(segs []segment, pinLeft bool) ([]segment, error) {
	if len(segs) == 0 {
		return segs, nil
	}
	if pinLeft {
		mirrored := mirrorSegs(segs)
		out, err := exciseDummyTail(mirrored)
		if err != nil {
			return nil, err
		}
		return mirrorSegs(out), nil
	}
	return exciseDummyTail(segs)
}

func mirrorSegs(segs []segment) []segment {
	out := make([]segment, len(segs))
	for i, s := range segs {
		ops := make(cigar.List, len(s.ops))
		for k, op := range s.ops {
			ops[len(s.ops)-1-k] = op
		}
		out[len(segs)-1-i] = segment{node: s.node, offset: s.offset, ops: ops}
	}
	return out
}

// exciseDummyTail assumes the last element of segs is the dummy node's
// segment and strips it, grounded verbatim on gssw_aligner.cpp's
// right-pin branch of gssw_mapping_to_alignment.
func exciseDummyTail(segs []segment) ([]segment, error) {
	dummy := segs[len(segs)-1].ops
	real := append([]segment(nil), segs[:len(segs)-1]...)

	if len(dummy) > 0 && dummy[0].Type() == sam.CigarDeletion {
		if len(dummy) > 1 && dummy[len(dummy)-1].Type() == sam.CigarInsertion {
			last := dummy[len(dummy)-1]
			if last.Len() > 1 {
				dummy[len(dummy)-1] = sam.NewCigarOp(sam.CigarInsertion, last.Len()-1)
			} else {
				dummy = dummy[:len(dummy)-1]
			}
		} else {
			swapped := false
			for i := len(real) - 1; i >= 0 && !swapped; i-- {
				ops := real[i].ops
				for j := len(ops) - 1; j >= 0 && !swapped; j-- {
					t := ops[j].Type()
					if t != sam.CigarSkipped && t != sam.CigarInsertion {
						if t != sam.CigarDeletion {
							return nil, ErrCigarInvariantViolated
						}
						continue
					}
					switch {
					case j < len(ops)-1:
						ops[j+1] = sam.NewCigarOp(sam.CigarDeletion, ops[j+1].Len()+1)
						if ops[j].Len() > 1 {
							ops[j] = sam.NewCigarOp(t, ops[j].Len()-1)
						} else {
							ops = append(ops[:j], ops[j+1:]...)
						}
					case ops[j].Len() == 1 && t == sam.CigarSkipped:
						ops[j] = sam.NewCigarOp(sam.CigarDeletion, 1)
					case ops[j].Len() == 1 && t == sam.CigarInsertion:
						ops = append(ops[:j], ops[j+1:]...)
					default:
						ops[j] = sam.NewCigarOp(t, ops[j].Len()-1)
						ops = append(ops, sam.NewCigarOp(sam.CigarDeletion, 1))
					}
					real[i].ops = ops
					swapped = true
				}
			}
			if !swapped {
				return nil, ErrCigarInvariantViolated
			}
		}
	}

	if len(dummy) > 0 && dummy[len(dummy)-1].Type() == sam.CigarInsertion && len(real) > 0 {
		n := dummy[len(dummy)-1].Len()
		if n > 0 {
			last := &real[len(real)-1]
			last.ops = last.ops.Ins(n)
		}
	}
	return real, nil
}
