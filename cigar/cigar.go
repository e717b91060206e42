// Package cigar provides small helpers around biogo/hts/sam's CIGAR
// operator set, which the DP Engine and Alignment Translator share as the
// per-node edit representation (spec.md §4.3, §4.4). Grounded on bam.go's
// AccumulateCigar, which switches on exactly this operator set.
package cigar

import "github.com/biogo/hts/sam"

// List is one node's CIGAR: an ordered run-length list of operators.
type List []sam.CigarOp

// appendMerge appends n columns of op, merging into the trailing run when
// it already holds the same operator (traceback emits one column at a
// time; this keeps the list run-length-encoded as it grows).
func (l List) appendMerge(op sam.CigarOpType, n int) List {
	if len(l) > 0 && l[len(l)-1].Type() == op {
		l[len(l)-1] = sam.NewCigarOp(op, l[len(l)-1].Len()+n)
		return l
	}
	return append(l, sam.NewCigarOp(op, n))
}

// Match appends (or extends) an M run of length n (n>0).
func (l List) Match(n int) List { return l.appendMerge(sam.CigarMatch, n) }

// Ins appends (or extends) an I run of length n.
func (l List) Ins(n int) List { return l.appendMerge(sam.CigarInsertion, n) }

// Del appends (or extends) a D run of length n.
func (l List) Del(n int) List { return l.appendMerge(sam.CigarDeletion, n) }

// SoftClip appends (or extends) an S run of length n.
func (l List) SoftClip(n int) List { return l.appendMerge(sam.CigarSoftClipped, n) }

// RefLen is the number of reference (graph-node) columns the list consumes:
// every op except I and S is reference-consuming.
func (l List) RefLen() int {
	n := 0
	for _, op := range l {
		switch op.Type() {
		case sam.CigarInsertion, sam.CigarSoftClipped:
		default:
			n += op.Len()
		}
	}
	return n
}

// ReadLen is the number of read columns the list consumes: every op
// except D is read-consuming.
func (l List) ReadLen() int {
	n := 0
	for _, op := range l {
		if op.Type() != sam.CigarDeletion {
			n += op.Len()
		}
	}
	return n
}
