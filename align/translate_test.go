package align

import (
	"testing"

	"github.com/mudesheng/vgalign/cigar"
	"github.com/mudesheng/vgalign/graph"
)

func oneNodeDP(id uint32, seq string) *graph.DPGraph {
	return &graph.DPGraph{
		Nodes: map[uint32]*graph.DPNode{id: {ID: id, Seq: []byte(seq)}},
		Order: []uint32{id},
	}
}

func TestTranslateMatchOnly(t *testing.T) {
	dp := oneNodeDP(1, "ACGTACGT")
	var ops cigar.List
	ops = ops.Match(8)
	segs := []segment{{node: 1, offset: 0, ops: ops}}

	path, err := translate(dp, []byte("ACGTACGT"), segs, 0, 8, false, false)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if len(path) != 1 || len(path[0].Edits) != 1 {
		t.Fatalf("path = %+v, want one mapping with one match edit", path)
	}
	e := path[0].Edits[0]
	if !e.IsMatch() || e.FromLen != 8 {
		t.Errorf("edit = %+v, want an 8-column match", e)
	}
}

func TestTranslateSplitsMismatchRun(t *testing.T) {
	dp := oneNodeDP(1, "ACGTACGT")
	var ops cigar.List
	ops = ops.Match(8)
	segs := []segment{{node: 1, offset: 0, ops: ops}}

	// read differs from the node at index 3: T -> A.
	path, err := translate(dp, []byte("ACGAACGT"), segs, 0, 8, false, false)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	edits := path[0].Edits
	if len(edits) != 3 {
		t.Fatalf("edits = %+v, want 3 runs (match,mismatch,match)", edits)
	}
	if !edits[0].IsMatch() || edits[0].FromLen != 3 {
		t.Errorf("edits[0] = %+v, want a 3-column leading match", edits[0])
	}
	if !edits[1].IsMismatch() || string(edits[1].Seq) != "A" {
		t.Errorf("edits[1] = %+v, want a single-base mismatch to 'A'", edits[1])
	}
	if !edits[2].IsMatch() || edits[2].FromLen != 4 {
		t.Errorf("edits[2] = %+v, want a 4-column trailing match", edits[2])
	}
}

func TestTranslateSoftClips(t *testing.T) {
	dp := oneNodeDP(1, "ACGT")
	var ops cigar.List
	ops = ops.Match(4)
	segs := []segment{{node: 1, offset: 0, ops: ops}}

	// read has 2 unaligned leading bases and 3 unaligned trailing bases.
	read := []byte("TTACGTGGG")
	path, err := translate(dp, read, segs, 2, 6, false, false)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	edits := path[0].Edits
	if len(edits) != 3 {
		t.Fatalf("edits = %+v, want leading clip + match + trailing clip", edits)
	}
	if !edits[0].IsInsertion() || string(edits[0].Seq) != "TT" {
		t.Errorf("edits[0] = %+v, want leading soft clip %q", edits[0], "TT")
	}
	if !edits[2].IsInsertion() || string(edits[2].Seq) != "GGG" {
		t.Errorf("edits[2] = %+v, want trailing soft clip %q", edits[2], "GGG")
	}
	if total := edits[0].ToLen + edits[1].ToLen + edits[2].ToLen; total != len(read) {
		t.Errorf("sum of edit to_length = %d, want read length %d", total, len(read))
	}
}

func TestIdentity(t *testing.T) {
	path := []Mapping{{Edits: []Edit{
		{FromLen: 3, ToLen: 3},             // match
		{FromLen: 1, ToLen: 1, Seq: []byte{'A'}}, // mismatch
		{FromLen: 0, ToLen: 2, Seq: []byte("GG")}, // insertion, not counted
	}}}
	if got := identity(path); got != 0.75 { // 3 matched / 4 total aligned columns
		t.Errorf("identity() = %v, want 0.75", got)
	}
	if got := identity(nil); got != 1.0 {
		t.Errorf("identity(nil) = %v, want 1.0", got)
	}
}

func TestExciseDummyTailSimpleTrailingInsertion(t *testing.T) {
	var realOps cigar.List
	realOps = realOps.Match(4)
	var dummyOps cigar.List
	dummyOps = dummyOps.Ins(2)

	segs := []segment{
		{node: 1, offset: 0, ops: realOps},
		{node: graph.DummyNodeID, offset: 0, ops: dummyOps},
	}
	out, err := exciseDummy(segs, false)
	if err != nil {
		t.Fatalf("exciseDummy: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("out = %+v, want the dummy segment stripped", out)
	}
	if out[0].node != 1 {
		t.Errorf("out[0].node = %d, want 1", out[0].node)
	}
	last := out[0].ops[len(out[0].ops)-1]
	if last.Len() != 2 {
		t.Errorf("relocated insertion len = %d, want 2", last.Len())
	}
}

func TestExciseDummyTailLeadingDeletionCancelsSolitaryInsertion(t *testing.T) {
	var realOps cigar.List
	realOps = realOps.Match(2).Ins(1)
	var dummyOps cigar.List
	dummyOps = dummyOps.Del(1)

	segs := []segment{
		{node: 1, offset: 0, ops: realOps},
		{node: graph.DummyNodeID, offset: 0, ops: dummyOps},
	}
	out, err := exciseDummy(segs, false)
	if err != nil {
		t.Fatalf("exciseDummy: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("out = %+v", out)
	}
	for _, op := range out[0].ops {
		if op.Type().String() == "I" {
			t.Errorf("solitary insertion adjacent to the dummy's leading deletion should be cancelled, got ops=%v", out[0].ops)
		}
	}
}

func TestExciseDummyLeftPinMirrors(t *testing.T) {
	var dummyOps cigar.List
	dummyOps = dummyOps.Ins(2)
	var realOps cigar.List
	realOps = realOps.Match(4)

	segs := []segment{
		{node: graph.DummyNodeID, offset: 0, ops: dummyOps},
		{node: 1, offset: 0, ops: realOps},
	}
	out, err := exciseDummy(segs, true)
	if err != nil {
		t.Fatalf("exciseDummy: %v", err)
	}
	if len(out) != 1 || out[0].node != 1 {
		t.Fatalf("out = %+v, want only the real node 1 segment", out)
	}
}
