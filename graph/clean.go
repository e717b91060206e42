package graph

import "github.com/biogo/biogo/alphabet"

// CleanSeq upper-cases a DNA string and folds any letter outside
// alphabet.DNA's four canonical letters (A,C,G,T) to 'N', per spec.md §3's
// Node definition, matching the bnt.Base2Bnt lookup-table idiom used
// throughout the teacher's FASTA loading code, re-expressed against
// biogo's DNA alphabet since this module has no dependency on the
// teacher's unavailable bnt package. alphabet.DNA.IsValid is the sole
// gate: it accepts only A/C/G/T, so ambiguity codes, gaps, and anything
// else are folded to 'N' without a second, hand-rolled accept-set.
func CleanSeq(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		up := b
		if up >= 'a' && up <= 'z' {
			up -= 'a' - 'A'
		}
		if !alphabet.DNA.IsValid(alphabet.Letter(up)) {
			out[i] = 'N'
			continue
		}
		out[i] = up
	}
	return out
}
