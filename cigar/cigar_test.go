package cigar

import (
	"testing"

	"github.com/biogo/hts/sam"
)

func TestAppendMergeCoalescesRuns(t *testing.T) {
	var l List
	l = l.Match(3)
	l = l.Match(2)
	l = l.Ins(1)
	l = l.Del(4)

	if len(l) != 3 {
		t.Fatalf("len(l) = %d, want 3 (adjacent M runs merge)", len(l))
	}
	if l[0].Type() != sam.CigarMatch || l[0].Len() != 5 {
		t.Errorf("l[0] = %v, want M5", l[0])
	}
	if l[1].Type() != sam.CigarInsertion || l[1].Len() != 1 {
		t.Errorf("l[1] = %v, want I1", l[1])
	}
	if l[2].Type() != sam.CigarDeletion || l[2].Len() != 4 {
		t.Errorf("l[2] = %v, want D4", l[2])
	}
}

func TestRefLenReadLen(t *testing.T) {
	var l List
	l = l.Match(3).Ins(2).Del(1).SoftClip(4)

	if got := l.RefLen(); got != 4 { // M3 + D1, I and S excluded
		t.Errorf("RefLen() = %d, want 4", got)
	}
	if got := l.ReadLen(); got != 9 { // M3 + I2 + S4, D excluded
		t.Errorf("ReadLen() = %d, want 9", got)
	}
}
