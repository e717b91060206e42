package align

import "testing"

func TestNTMatrixDiagonalAndOffDiagonal(t *testing.T) {
	m := NTMatrix(Params{Match: 2, Mismatch: 5})
	for i := 0; i < 4; i++ {
		if m[i][i] != 2 {
			t.Errorf("m[%d][%d] = %d, want Match=2", i, i, m[i][i])
		}
	}
	if m[0][1] != -5 {
		t.Errorf("m[0][1] = %d, want -Mismatch=-5", m[0][1])
	}
	// N (index 4) always scores as a mismatch, even against itself.
	if m[4][4] != -5 {
		t.Errorf("m[4][4] = %d, want -Mismatch=-5 (N is never a match)", m[4][4])
	}
}

func TestBaseIndex(t *testing.T) {
	cases := map[byte]int{'A': 0, 'c': 1, 'G': 2, 't': 3, 'N': 4, 'X': 4}
	for b, want := range cases {
		if got := baseIndex(b); got != want {
			t.Errorf("baseIndex(%q) = %d, want %d", b, got, want)
		}
	}
}

func TestQualityMatrixHigherQualityIsMoreDecisive(t *testing.T) {
	p := Params{Match: 2, Mismatch: 5, GCContent: 0.5, MaxScaledScore: 100, MaxQualScore: 24}
	m := QualityMatrix(p)

	lowQMatch := QualityScore(&m, 2, 'A', 'A')
	highQMatch := QualityScore(&m, 24, 'A', 'A')
	if !(highQMatch > lowQMatch) {
		t.Errorf("high-quality match score %d should exceed low-quality match score %d", highQMatch, lowQMatch)
	}

	highQMismatch := QualityScore(&m, 24, 'A', 'C')
	if !(highQMismatch < 0) {
		t.Errorf("a mismatch should always score negative, got %d", highQMismatch)
	}
}

func TestQualityMatrixIsCachedByParams(t *testing.T) {
	p := Params{Match: 1, Mismatch: 3, GCContent: 0.4, MaxScaledScore: 50, MaxQualScore: 20}
	a := QualityMatrix(p)
	b := QualityMatrix(p)
	if a != b {
		t.Error("QualityMatrix should return identical tables for identical Params")
	}
}
