package graph

import "errors"

// ErrReversingEdgeUnsupported is returned by BuildDPGraph when an edge's
// (FromStart,ToEnd) flags are neither (false,false) nor (true,true). The
// core does not attempt to handle strand-reversing edges by local
// flipping; the caller's graph-preparation pipeline must DAGify the graph
// first (spec.md §9).
var ErrReversingEdgeUnsupported = errors.New("graph: reversing edge unsupported, DAGify the graph before alignment")
