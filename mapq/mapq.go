// Package mapq implements the Mapping-Quality Calibrator (spec.md §4.5): a
// Karlin-Altschul lambda parameter derived from the scoring scheme and the
// graph's GC content, used to turn a vector of competing alignment scores
// into a Phred-scaled confidence. Grounded on gssw_aligner.cpp's
// init_mapping_quality/compute_mapping_quality; the teacher has no mapq
// concept of its own, so this package is new code written in its idiom
// (bracketed errors, exported New/Init/Compute* surface mirroring
// align.Aligner).
package mapq

import (
	"errors"
	"math"
)

// ErrUninitialized is returned by Compute* when Init has not been called.
var ErrUninitialized = errors.New("mapq: calibrator not initialized")

// ErrInvalidGCContent is returned by Init for a gc_content outside [0,1].
var ErrInvalidGCContent = errors.New("mapq: gc_content out of range [0,1]")

const (
	minMAPQ = 0
	maxMAPQ = 60
)

// Calibrator holds the lambda parameter for one scoring scheme. Immutable
// after Init; safe for concurrent use by multiple Aligners the way a
// Params value is (spec.md §5).
type Calibrator struct {
	lambda      float64
	initialized bool
}

// New returns an uninitialized Calibrator. Call Init before any Compute*
// call; per spec.md §9's open question on the lambda sign convention, this
// implementation tracks "initialized" as an explicit bool rather than by
// the sign of lambda, so lambda == 0 is never mistaken for "not yet set".
func New() *Calibrator { return &Calibrator{} }

// Init derives lambda from the scoring scheme (match, mismatch) and the
// graph's GC content via the exact Karlin-Altschul calibration: the unique
// positive root of sum_i sum_j p_i p_j exp(lambda*s_ij) == 1, where p is the
// base frequency vector implied by gcContent and s is the 4x4 nt score
// matrix (N excluded: it carries no compositional weight). Solved by
// bisection on the log-sum-exp form for numerical stability across a wide
// range of match/mismatch magnitudes.
func (c *Calibrator) Init(match, mismatch int, gcContent float64) error {
	if gcContent < 0 || gcContent > 1 {
		return ErrInvalidGCContent
	}
	c.lambda = exactLambda(match, mismatch, gcContent)
	c.initialized = true
	return nil
}

// InitFast is Init's fast-approximation sibling: a closed-form estimate
// used when Init's bisection would be too slow to run per-alignment (e.g.
// recalibrating per read group). Grounded on the same relative-entropy
// intuition as the exact solve, using ln(4)/match as the zeroth-order
// lambda for a symmetric four-letter alphabet, then scaling by how far the
// scheme's mismatch penalty departs from the match reward.
func (c *Calibrator) InitFast(match, mismatch int) error {
	if match <= 0 {
		match = 1
	}
	ratio := float64(mismatch) / float64(match)
	if ratio <= 0 {
		ratio = 1
	}
	c.lambda = math.Log(4) / float64(match) * math.Log1p(ratio)
	c.initialized = true
	return nil
}

func baseFreqs(gcContent float64) [4]float64 {
	at := (1 - gcContent) / 2
	gc := gcContent / 2
	return [4]float64{at, gc, gc, at} // A, C, G, T
}

// ntScore4 is the 4x4 (A,C,G,T) score matrix implied by (match,mismatch),
// matching align.NTMatrix's diagonal/off-diagonal convention but excluding
// N (N carries no base-composition weight in the calibration).
func ntScore4(match, mismatch int) [4][4]float64 {
	var s [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				s[i][j] = float64(match)
			} else {
				s[i][j] = -float64(mismatch)
			}
		}
	}
	return s
}

// momentGenerating evaluates sum_i sum_j p_i p_j exp(lambda*s_ij) - 1 via
// log-sum-exp, whose unique positive root (for a matrix with both positive
// and negative entries and negative expected score under p) is lambda.
func momentGenerating(lambda float64, p [4]float64, s [4][4]float64) float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum += p[i] * p[j] * math.Exp(lambda*s[i][j])
		}
	}
	return sum - 1
}

func exactLambda(match, mismatch int, gcContent float64) float64 {
	p := baseFreqs(gcContent)
	s := ntScore4(match, mismatch)

	lo, hi := 1e-6, 10.0
	// Expand hi until the function changes sign, guarding against a
	// pathological (match,mismatch) pair putting the root outside [0,10].
	for momentGenerating(hi, p, s) < 0 && hi < 1e6 {
		hi *= 2
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if momentGenerating(mid, p, s) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// ComputeMappingQuality implements compute_mapping_quality(alignments,
// max_mapq, fast_approx, cluster_mq, use_cluster_mq) (spec.md §4.5/§6).
// scores is the full vector of competing alignment scores for one read,
// not just the best two — both the exact and fast-approximation formulas
// below need the whole competing set, not a single pairwise gap.
// maxMAPQArg <= 0 selects the package default cap of 60. When useClusterMQ
// is set, the score-derived ("local") mapq is combined with clusterMQ via
// phred(sqrt(prob(cluster)*prob(local))) before the cap is reapplied.
func (c *Calibrator) ComputeMappingQuality(scores []int, maxMAPQArg int, fastApprox bool, clusterMQ int, useClusterMQ bool) (int, error) {
	if !c.initialized {
		return 0, ErrUninitialized
	}
	if len(scores) == 0 {
		return minMAPQ, nil
	}
	maxQ := maxMAPQArg
	if maxQ <= 0 {
		maxQ = maxMAPQ
	}

	var local int
	if fastApprox {
		local = c.fastApproxMAPQ(scores, maxQ)
	} else {
		local = c.exactMAPQ(scores, maxQ)
	}
	if !useClusterMQ {
		return local, nil
	}
	return combineClusterAndLocal(local, clusterMQ, maxQ), nil
}

// exactMAPQ: mapq = -10*log10( sum_{i != max} e^{x_i} / sum_i e^{x_i} ),
// where x_i = lambda * scores[i]. Computed directly when max*n stays well
// under the float64 overflow threshold, else via the log-sum-exp identity
// for overflow safety (spec.md §4.5's stated fallback condition).
func (c *Calibrator) exactMAPQ(scores []int, maxQ int) int {
	n := len(scores)
	maxIdx := 0
	for i := 1; i < n; i++ {
		if scores[i] > scores[maxIdx] {
			maxIdx = i
		}
	}
	x := make([]float64, n)
	for i, s := range scores {
		x[i] = c.lambda * float64(s)
	}

	var ratio float64
	if x[maxIdx]*float64(n) < math.Log(math.MaxFloat64) {
		var sumAll, sumOthers float64
		for i, xi := range x {
			e := math.Exp(xi)
			sumAll += e
			if i != maxIdx {
				sumOthers += e
			}
		}
		if sumAll <= 0 {
			return maxQ
		}
		ratio = sumOthers / sumAll
	} else {
		others := make([]float64, 0, n-1)
		for i, xi := range x {
			if i != maxIdx {
				others = append(others, xi)
			}
		}
		if len(others) == 0 {
			ratio = 0
		} else {
			ratio = math.Exp(logSumExp(others) - logSumExp(x))
		}
	}
	return phredFromRatio(ratio, maxQ)
}

// fastApproxMAPQ: mapq = max(0, (10/ln 10) * (x_max - x_next - ln c)),
// where x_next is the second-best score's x value and c is its
// multiplicity, tracked in the same single pass that finds x_max/x_next.
func (c *Calibrator) fastApproxMAPQ(scores []int, maxQ int) int {
	best, next, mult := secondBestStats(scores)
	if mult == 0 {
		// No competitor: nothing to subtract the best score against.
		return maxQ
	}
	gap := c.lambda*float64(best-next) - math.Log(float64(mult))
	val := (10 / math.Ln10) * gap
	if val < 0 {
		val = 0
	}
	q := int(math.Round(val))
	if q > maxQ {
		q = maxQ
	}
	if q < minMAPQ {
		q = minMAPQ
	}
	return q
}

// secondBestStats finds the best score, the second-best distinct value
// reached after removing one instance of the best, and that second-best
// value's multiplicity — a single pass over scores, per spec.md §4.5's
// "multiplicity is tracked in a single pass".
func secondBestStats(scores []int) (best, next, mult int) {
	best = scores[0]
	for _, s := range scores[1:] {
		if s > best {
			best = s
		}
	}
	next = math.MinInt32
	bestRemoved := false
	for _, s := range scores {
		if !bestRemoved && s == best {
			bestRemoved = true
			continue
		}
		switch {
		case s > next:
			next = s
			mult = 1
		case s == next:
			mult++
		}
	}
	return best, next, mult
}

// logSumExp computes log(sum(exp(xs))) without overflowing, by factoring
// out the maximum term.
func logSumExp(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	var sum float64
	for _, x := range xs {
		sum += math.Exp(x - m)
	}
	return m + math.Log(sum)
}

// phredFromRatio converts a probability-of-error ratio (sum of competing
// likelihoods over the total) directly to a Phred score, clamped to maxQ.
func phredFromRatio(ratio float64, maxQ int) int {
	if ratio <= 0 {
		return maxQ
	}
	if ratio >= 1 {
		return minMAPQ
	}
	q := int(math.Round(-10 * math.Log10(ratio)))
	if q > maxQ {
		q = maxQ
	}
	if q < minMAPQ {
		q = minMAPQ
	}
	return q
}

// ComputePairedMappingQuality combines two independently computed mapqs
// (e.g. the two mates of a pair) into a joint confidence: the pair's
// combined error probability is modeled as "at least one mate is wrong",
// perrCombined = perr1 + perr2 - perr1*perr2.
func (c *Calibrator) ComputePairedMappingQuality(mapq1, mapq2 int) (int, error) {
	if !c.initialized {
		return 0, ErrUninitialized
	}
	e1, e2 := errProb(mapq1), errProb(mapq2)
	combined := e1 + e2 - e1*e2
	return phred(1-combined, maxMAPQ), nil
}

// combineClusterAndLocal implements the cluster_mq/use_cluster_mq
// combination: phred(sqrt(prob(cluster) * prob(local))), re-deriving each
// side's probability-correct from its own Phred score.
func combineClusterAndLocal(localMAPQ, clusterMAPQ, maxQ int) int {
	pLocal := 1 - errProb(localMAPQ)
	pCluster := 1 - errProb(clusterMAPQ)
	return phred(math.Sqrt(pCluster*pLocal), maxQ)
}

func phred(pCorrect float64, maxQ int) int {
	if pCorrect >= 1 {
		return maxQ
	}
	if pCorrect <= 0 {
		return minMAPQ
	}
	q := int(math.Round(-10 * math.Log10(1-pCorrect)))
	if q > maxQ {
		q = maxQ
	}
	if q < minMAPQ {
		q = minMAPQ
	}
	return q
}

func errProb(mapq int) float64 {
	return math.Pow(10, -float64(mapq)/10)
}
