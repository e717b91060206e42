package graph

import (
	"strconv"

	"github.com/awalterschulze/gographviz"
)

// DotDump renders dp's node/edge topology (ids and sequence labels) to
// Graphviz DOT, for the "align -dot" CLI debug flag. It is a topology dump
// only: no DP scores and no dummy pinning node, since it is meant to run
// on the plain DPGraph built straight from the input graph, before
// AppendDummySink or any pinning logic ever touches it. Grounded on
// constructdbg.GraphvizDBGArr, which builds a gographviz.Graph
// node-by-node/edge-by-edge the same way.
func DotDump(dp *DPGraph) string {
	g := gographviz.NewGraph()
	g.SetName("G")
	g.SetDir(true)
	g.SetStrict(false)
	for _, id := range dp.Order {
		n := dp.Nodes[id]
		attr := map[string]string{
			"shape": "record",
			"label": "\"" + strconv.FormatUint(uint64(id), 10) + "|" + string(n.Seq) + "\"",
		}
		g.AddNode("G", strconv.FormatUint(uint64(id), 10), attr)
	}
	for _, id := range dp.Order {
		n := dp.Nodes[id]
		for _, succ := range n.Out {
			g.AddEdge(strconv.FormatUint(uint64(id), 10), strconv.FormatUint(uint64(succ), 10), true, nil)
		}
	}
	return g.String()
}
