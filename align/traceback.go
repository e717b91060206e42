package align

import "github.com/mudesheng/vgalign/cigar"

// segment is one node's contribution to a traced path, in head-to-tail
// (left-to-right) order: the slice of ops consumed on that node starting
// at Offset.
type segment struct {
	node   uint32
	offset int
	ops    cigar.List
}

type matState uint8

const (
	matH matState = iota
	matE
	matF
)

// traceback walks grids backward from (startNode,i,j) in matrix state H,
// producing path segments in head-to-tail order plus the half-open
// [readStart,readEnd) range of read columns the path actually consumed
// (the rest is an unaligned prefix/suffix for the caller to soft-clip).
func traceback(grids map[uint32]*nodeDP, startNode uint32, i, j int) (segs []segment, readStart, readEnd int) {
	readEnd = j
	node := startNode
	st := matH
	var cur cigar.List
	var rawSegs []segment

	flush := func(startOffset int) {
		if len(cur) == 0 {
			return
		}
		rev := make(cigar.List, len(cur))
		for k, op := range cur {
			rev[len(cur)-1-k] = op
		}
		rawSegs = append(rawSegs, segment{node: node, offset: startOffset, ops: rev})
		cur = nil
	}

stop:
	for {
		g := grids[node]
		c := g.at(i, j)
		switch st {
		case matH:
			switch c.hDir {
			case traceNone:
				flush(i)
				readStart = j
				break stop
			case traceDiag:
				cur = cur.Match(1)
				i--
				j--
			case traceLeft:
				st = matE
			case traceUp:
				st = matF
			case traceCross:
				flush(0)
				node = c.hFromNode
				i = grids[node].rows - 1
			}
		case matE:
			cur = cur.Ins(1)
			fromH := c.eFromH
			j--
			if fromH {
				st = matH
			}
		case matF:
			cur = cur.Del(1)
			fromH := c.fFromH
			i--
			if fromH {
				st = matH
			}
		}
		if i == 0 && j == 0 {
			flush(0)
			readStart = 0
			break stop
		}
	}

	segs = make([]segment, len(rawSegs))
	for k, s := range rawSegs {
		segs[len(rawSegs)-1-k] = s
	}
	return segs, readStart, readEnd
}
