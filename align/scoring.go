package align

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash"
)

// baseOrder fixes the row/column order of the 5x5 nt matrix and the base
// axis of the 25x25 quality-scaled matrix.
var baseOrder = [5]byte{'A', 'C', 'G', 'T', 'N'}

func baseIndex(b byte) int {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	default:
		return 4 // N and anything CleanSeq didn't already fold
	}
}

// NTMatrix builds the 5x5 nt-vs-nt score matrix: +Match on the diagonal for
// the four real bases, -Mismatch everywhere else (N is always scored as a
// mismatch — there is no information to match on).
func NTMatrix(p Params) [5][5]int {
	var m [5][5]int
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if i == j && i != 4 {
				m[i][j] = p.Match
			} else {
				m[i][j] = -p.Mismatch
			}
		}
	}
	return m
}

// qualityMatrixCache memoizes QualityMatrix results, keyed by an xxhash of
// the calibration parameters (match, mismatch, gc_content, max_scaled_score,
// max_qual_score). Grounded on cuckoofilter.go's use of xxhash.Sum64 over a
// packed key. A package-level cache is safe under the concurrency model of
// spec.md §5: the table is pure function of its inputs and immutable once
// built, so concurrent Aligner instances may share entries.
var qualityMatrixCache sync.Map // map[uint64][25][25]int8

func qualityCacheKey(p Params) uint64 {
	var buf [28]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(p.Match)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(p.Mismatch)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(int32(p.MaxScaledScore)))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(int32(p.MaxQualScore)))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(p.GCContent))
	return xxhash.Sum64(buf[:24])
}

// QualityMatrix builds the 25x25 quality-adjusted score matrix: 25 quality
// levels (Phred 0..24, clamped) by 25 (ref-base,read-base) pairs (5x5
// flattened row-major via refIdx*5+readIdx). Entry [q][refIdx*5+readIdx] is
// the match/mismatch score at that base pair, scaled down as the modeled
// base-call error probability grows, clamped to +/-MaxScaledScore.
//
// The random-match floor uses gc_content: two independent draws from a
// genome with GC fraction g agree with probability g^2+(1-g)^2/... over 2
// (transition/transversion symmetry assumed), which bounds how much a
// low-quality "match" can be trusted.
func QualityMatrix(p Params) [25][25]int8 {
	key := qualityCacheKey(p)
	if v, ok := qualityMatrixCache.Load(key); ok {
		return v.([25][25]int8)
	}
	randomAgree := p.GCContent*p.GCContent + (1-p.GCContent)*(1-p.GCContent)
	randomAgree /= 2
	maxQ := p.MaxQualScore
	if maxQ <= 0 || maxQ > 24 {
		maxQ = 24
	}
	var m [25][25]int8
	for q := 0; q < 25; q++ {
		qc := q
		if qc > maxQ {
			qc = maxQ
		}
		errProb := math.Pow(10, -float64(qc)/10)
		confidence := 1 - errProb
		for ref := 0; ref < 5; ref++ {
			for read := 0; read < 5; read++ {
				var raw float64
				if ref == read && ref != 4 {
					raw = float64(p.Match) * confidence
					raw -= float64(p.Match) * randomAgree * errProb
				} else {
					raw = -float64(p.Mismatch) * confidence
				}
				scaled := int(math.Round(raw))
				max := p.MaxScaledScore
				if max <= 0 {
					max = 127
				}
				if scaled > max {
					scaled = max
				}
				if scaled < -max {
					scaled = -max
				}
				m[q][ref*5+read] = int8(scaled)
			}
		}
	}
	qualityMatrixCache.Store(key, m)
	return m
}

// QualityScore looks up the quality-adjusted score for aligning refBase
// against readBase at the given Phred quality.
func QualityScore(m *[25][25]int8, quality byte, refBase, readBase byte) int {
	q := int(quality)
	if q > 24 {
		q = 24
	}
	return int(m[q][baseIndex(refBase)*5+baseIndex(readBase)])
}
