// Copyright 2026 The Seqpolish Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package poa builds a partial-order-alignment consensus graph for one
// window: a backbone seeds a chain of columns, each subsequent layer is
// aligned against the current heaviest symbols of the backbone columns it
// spans and folds its votes into
// the columns it touches (creating new columns for insertions), and the
// consensus is extracted as the heaviest weighted path through the
// resulting DAG — the same source/sink + topological-longest-path shape as
// hmmm42-DNA-Sequence-Alignments' anchor-chaining graph, with (column,
// symbol) pairs standing in for anchors.
package poa

import "github.com/seqpolish/polish/align"

// gapSymbol marks "this layer has no base at this column" in a column's
// vote tally; a column whose heaviest symbol is gapSymbol contributes
// nothing to the consensus.
const gapSymbol byte = 0

// column is one position in the graph's topological column order. backbone
// columns are seeded from the window's target slice; insertion columns are
// created on demand when a layer carries bases the backbone doesn't have.
type column struct {
	backbone    bool
	layerVotes  int // votes from real layers, excluding the backbone's own seed vote
	syms        map[byte]int
}

func newColumn(backbone bool) *column {
	return &column{backbone: backbone, syms: make(map[byte]int, 4)}
}

func (c *column) vote(sym byte, weight int) {
	c.syms[sym] += weight
}

// heaviest returns the column's winning symbol and its weight.
func (c *column) heaviest() (byte, int) {
	var bestSym byte = gapSymbol
	bestWeight := 0
	first := true
	for sym, w := range c.syms {
		if first || w > bestWeight || (w == bestWeight && sym < bestSym) {
			bestSym, bestWeight = sym, w
			first = false
		}
	}
	return bestSym, bestWeight
}

// gapSlots holds the insertion columns that have been created at one
// backbone gap (the position before the first backbone column, between two
// backbone columns, or after the last one).
type gapSlots struct {
	cols []*column
}

// pendingLayer is a layer add_layer has recorded but not yet folded into the
// graph's columns — folding (the actual alignment work) is deferred to
// Align, so it runs under whichever engine generate_consensus was handed
// rather than on the goroutine that called AddLayer.
type pendingLayer struct {
	bases, quality []byte
	start, end     int
}

// Graph is the consensus graph for a single window.
type Graph struct {
	backboneCols []*column  // one per backbone base, in backbone order
	gaps         []gapSlots // len(backboneCols)+1; gaps[i] precedes backboneCols[i]
	nLayers      int
	pending      []pendingLayer
}

// New seeds a graph with backbone as the initial single-path spine.
func New(backbone []byte) *Graph {
	g := &Graph{}
	g.backboneCols = make([]*column, len(backbone))
	g.gaps = make([]gapSlots, len(backbone)+1)
	for i, b := range backbone {
		c := newColumn(true)
		c.vote(b, 1) // the backbone's own implicit seed vote
		g.backboneCols[i] = c
	}
	return g
}

// spineRange returns the heaviest non-gap symbol of each backbone column in
// [start,end), one byte per column, so position k of the result is always
// backboneCols[start+k]. It is the target sequence a new layer covering that
// same range is aligned against; insertion columns are not part of it, and a
// layer's extra bases reach them through OpInsertion instead.
func (g *Graph) spineRange(start, end int) []byte {
	out := make([]byte, 0, end-start)
	for i := start; i < end; i++ {
		var best byte
		bestWeight := -1
		for sym, w := range g.backboneCols[i].syms {
			if sym != gapSymbol && (w > bestWeight || (w == bestWeight && sym < best)) {
				best, bestWeight = sym, w
			}
		}
		out = append(out, best)
	}
	return out
}

// AddLayer records a layer for this window. No alignment happens here;
// Align performs it later, under whichever engine generate_consensus was
// given. A layer's backbone_start/backbone_end come from the breaking
// points that placed it into this window. quality, if non-nil, is raw
// Phred+33 and is decoded to the [0,93] weight scale here, once, so every
// caller (window.Window.AddLayer included) can pass sequence quality
// straight through without separately remembering to decode it.
func (g *Graph) AddLayer(bases, quality []byte, start, end int) {
	if len(bases) == 0 || start >= end {
		return
	}
	g.pending = append(g.pending, pendingLayer{bases: bases, quality: DecodeQuality(quality), start: start, end: end})
}

// Align folds every layer recorded by AddLayer into the graph's columns,
// aligning each one (global, NW) against the graph's current spine over its
// own backbone range and creating insertion columns as needed. Graphs share
// no state across windows, so the same engine may be reused by every window
// a worker handles in turn.
func (g *Graph) Align(engine *align.Engine) {
	for _, l := range g.pending {
		g.foldLayer(engine, l.bases, l.quality, l.start, l.end)
	}
	g.pending = nil
}

func (g *Graph) foldLayer(engine *align.Engine, bases, quality []byte, start, end int) {
	spine := g.spineRange(start, end)
	aln := engine.Align(align.Global, spine, bases)

	weightAt := func(k int) int {
		if quality == nil {
			return 1
		}
		q := int(quality[k])
		if q < 1 {
			q = 1
		}
		return q
	}

	g.nLayers++
	colIdx := start // index into g.backboneCols for the next backbone column to consume
	queryIdx := 0   // index into bases/quality
	runLen := 0     // consecutive insertions seen at the current gap

	finalizeGap := func(gapIdx int) {
		slots := g.gaps[gapIdx].cols
		for i := runLen; i < len(slots); i++ {
			slots[i].vote(gapSymbol, 1)
		}
		runLen = 0
	}

	for _, op := range aln.Ops {
		switch op {
		case align.OpMatch, align.OpMismatch:
			finalizeGap(colIdx)
			g.backboneCols[colIdx].vote(bases[queryIdx], weightAt(queryIdx))
			g.backboneCols[colIdx].layerVotes++
			colIdx++
			queryIdx++
		case align.OpDeletion:
			// spine has a base here that this layer skips over.
			finalizeGap(colIdx)
			g.backboneCols[colIdx].vote(gapSymbol, 1)
			g.backboneCols[colIdx].layerVotes++
			colIdx++
		case align.OpInsertion:
			slots := g.gaps[colIdx].cols
			if runLen == len(slots) {
				slots = append(slots, newColumn(false))
				g.gaps[colIdx].cols = slots
			}
			slots[runLen].vote(bases[queryIdx], weightAt(queryIdx))
			runLen++
			queryIdx++
		}
	}
	finalizeGap(colIdx)
}

// Row is one entry of the flattened topological column order used for
// consensus extraction and for the summary/coder side tables.
type Row struct {
	Backbone   bool
	Symbol     byte
	Weight     int
	LayerVotes int            // only meaningful when Backbone is true
	Votes      map[byte]int   // the column's full symbol -> weight tally, including gapSymbol
}

// rows flattens the graph's gaps/backbone columns into topological order.
func (g *Graph) rows() []Row {
	var rows []Row
	appendSlots := func(gapIdx int) {
		for _, slot := range g.gaps[gapIdx].cols {
			sym, w := slot.heaviest()
			rows = append(rows, Row{Symbol: sym, Weight: w, Votes: slot.syms})
		}
	}
	for i, c := range g.backboneCols {
		appendSlots(i)
		sym, w := c.heaviest()
		rows = append(rows, Row{Backbone: true, Symbol: sym, Weight: w, LayerVotes: c.layerVotes, Votes: c.syms})
	}
	appendSlots(len(g.backboneCols))
	return rows
}

// Consensus extracts the heaviest path through the graph as a byte string,
// via the same virtual-source/sink + topological longest-path scheme used
// for anchor chains: each row is a node whose weight is that of its own
// winning symbol, and the best path through the chain is the one that
// simply keeps every row (the chain has no branches once each row has
// already resolved to its heaviest symbol) while skipping gap symbols.
// When trim is true and at least one layer was folded in, leading and
// trailing backbone columns nobody voted on are dropped first; a graph with
// no layers returns its whole backbone.
func (g *Graph) Consensus(trim bool) (seq []byte, polished bool) {
	rows := g.rows()

	lo, hi := 0, len(rows)
	if trim && g.nLayers > 0 {
		for lo < hi && rows[lo].Backbone && rows[lo].LayerVotes == 0 {
			lo++
		}
		for hi > lo && rows[hi-1].Backbone && rows[hi-1].LayerVotes == 0 {
			hi--
		}
	}

	for _, r := range rows[lo:hi] {
		if r.Symbol == gapSymbol {
			continue
		}
		seq = append(seq, r.Symbol)
	}
	return seq, g.nLayers > 0
}

// ConsensusVotes is Consensus plus, for every character it emits, the full
// vote tally of the column that produced it (including the gapSymbol vote
// count) — the margin-stitching merge step in window consults this to break
// substitution ties by vote weight rather than by realigning from scratch.
func (g *Graph) ConsensusVotes(trim bool) (seq []byte, votes []map[byte]int, polished bool) {
	rows := g.rows()

	lo, hi := 0, len(rows)
	if trim && g.nLayers > 0 {
		for lo < hi && rows[lo].Backbone && rows[lo].LayerVotes == 0 {
			lo++
		}
		for hi > lo && rows[hi-1].Backbone && rows[hi-1].LayerVotes == 0 {
			hi--
		}
	}

	for _, r := range rows[lo:hi] {
		if r.Symbol == gapSymbol {
			continue
		}
		seq = append(seq, r.Symbol)
		votes = append(votes, r.Votes)
	}
	return seq, votes, g.nLayers > 0
}

// Summary returns the per-column x per-symbol vote matrix and the symbol ->
// row index map the overlap-stitch merge step consults to break ties.
func (g *Graph) Summary() (summary [][]int, coder map[byte]int) {
	coder = make(map[byte]int)
	nextRow := 0
	rowFor := func(sym byte) int {
		if r, ok := coder[sym]; ok {
			return r
		}
		coder[sym] = nextRow
		nextRow++
		return nextRow - 1
	}

	columns := flattenColumns(g)
	perColumn := make([]map[int]int, len(columns))
	for i, c := range columns {
		counts := make(map[int]int, len(c.syms))
		for sym, w := range c.syms {
			counts[rowFor(sym)] = w
		}
		perColumn[i] = counts
	}

	summary = make([][]int, len(columns))
	for i, counts := range perColumn {
		col := make([]int, nextRow)
		for r, w := range counts {
			col[r] = w
		}
		summary[i] = col
	}
	return summary, coder
}

func flattenColumns(g *Graph) []*column {
	var cols []*column
	for i, c := range g.backboneCols {
		for _, slot := range g.gaps[i].cols {
			cols = append(cols, slot)
		}
		cols = append(cols, c)
	}
	for _, slot := range g.gaps[len(g.backboneCols)].cols {
		cols = append(cols, slot)
	}
	return cols
}
