package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/google/brotli/go/cbrotli"
	"github.com/klauspost/compress/zstd"

	"github.com/mudesheng/vgalign/align"
	"github.com/mudesheng/vgalign/graph"
)

// loadGraph reads the line-oriented graph format this CLI accepts:
//
//	N	<id>	<sequence>
//	E	<from>	<to>	<from_start 0|1>	<to_end 0|1>
//
// blank lines and '#'-prefixed lines are ignored. Grounded on
// constructdbg.go's own plain-text edge/node dump format, simplified to the
// node/edge fields spec.md §3 actually needs.
func loadGraph(path string) (*graph.Graph, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[loadGraph] %w", err)
	}
	defer fp.Close()

	var g graph.Graph
	sc := bufio.NewScanner(fp)
	sc.Buffer(make([]byte, 1<<20), 1<<24)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "N":
			if len(fields) != 3 {
				return nil, fmt.Errorf("[loadGraph] malformed node line: %q", line)
			}
			id, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("[loadGraph] node id: %w", err)
			}
			g.Nodes = append(g.Nodes, graph.Node{ID: uint32(id), Seq: []byte(fields[2])})
		case "E":
			if len(fields) != 5 {
				return nil, fmt.Errorf("[loadGraph] malformed edge line: %q", line)
			}
			from, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("[loadGraph] edge from: %w", err)
			}
			to, err := strconv.ParseUint(fields[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("[loadGraph] edge to: %w", err)
			}
			g.Edges = append(g.Edges, graph.Edge{
				From:      uint32(from),
				To:        uint32(to),
				FromStart: fields[3] == "1",
				ToEnd:     fields[4] == "1",
			})
		default:
			return nil, fmt.Errorf("[loadGraph] unrecognized record type %q", fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("[loadGraph] %w", err)
	}
	return &g, nil
}

// loadReads reads a FASTA file of query sequences into align.Read values
// (no quality). Grounded on mapDBG.go's fasta.NewReader/linear.Seq usage.
func loadReads(path string) ([]*align.Read, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[loadReads] %w", err)
	}
	defer fp.Close()

	r := fasta.NewReader(fp, linear.NewSeq("", nil, alphabet.DNA))
	var reads []*align.Read
	for {
		s, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[loadReads] %w", err)
		}
		l := s.(*linear.Seq)
		seq := make([]byte, len(l.Seq))
		for i, b := range l.Seq {
			seq[i] = byte(b)
		}
		reads = append(reads, &align.Read{Name: l.Name(), Sequence: seq})
	}
	return reads, nil
}

// writeAlignments serializes reads as one tab-separated record per mapping,
// zstd-compressed (constructcf.go's zstd.NewWriter settings: single-stream,
// CRC off, concurrency 1 — a CLI emits one shard per invocation, so
// parallel encoding buys nothing).
func writeAlignments(path string, reads []*align.Read) error {
	outfp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[writeAlignments] %w", err)
	}
	defer outfp.Close()

	zw, err := zstd.NewWriter(outfp, zstd.WithEncoderCRC(false), zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(1))
	if err != nil {
		return fmt.Errorf("[writeAlignments] %w", err)
	}
	defer zw.Close()

	w := bufio.NewWriter(zw)
	defer w.Flush()
	for _, r := range reads {
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%d\n", r.Name, r.Score, r.Identity, r.MappingQuality)
		for _, m := range r.Path {
			fmt.Fprintf(w, "\t%d\t%d\t%d", m.NodeID, m.Offset, m.Rank)
			for _, e := range m.Edits {
				fmt.Fprintf(w, "\t%d,%d,%s", e.FromLen, e.ToLen, e.Seq)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

// writeGraphDot renders dp's DOT debug form, brotli-compressed exactly as
// constructcf.go's debug dumps are (cbrotli.NewWriter, quality 1 — debug
// artifacts favor write speed over ratio).
func writeGraphDot(path string, dp *graph.DPGraph) error {
	outfp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[writeGraphDot] %w", err)
	}
	defer outfp.Close()

	bw := cbrotli.NewWriter(outfp, cbrotli.WriterOptions{Quality: 1})
	defer bw.Close()

	_, err = bw.Write([]byte(graph.DotDump(dp)))
	return err
}
