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

package window

import (
	"fmt"

	"github.com/seqpolish/polish/align"
)

// Polished is one finished target sequence, ready for FASTA emission.
type Polished struct {
	Name string
	Data []byte
}

// tags renders the LN:i:/RC:i:/XC:f: suffix polish() attaches to every
// emitted record, with a leading "r" when leadingMarker is set (kF mode).
func tags(leadingMarker bool, length, coverage int, ratio float64) string {
	prefix := ""
	if leadingMarker {
		prefix = "r"
	}
	return fmt.Sprintf("%s LN:i:%d RC:i:%d XC:f:%.6f", prefix, length, coverage, ratio)
}

// StitchDefault implements the overlap_fraction == 0 path: concatenate every
// target's window consensuses verbatim. names[i] and coverage[i] are the
// target's display name and the retained-overlap count from Distribute.
// dropUnpolished suppresses a target whose polished_ratio is exactly 0.
func (g *Grid) StitchDefault(names []string, leadingMarker bool, dropUnpolished bool) []Polished {
	var out []Polished
	for i := range names {
		windows := g.TargetWindows(i)
		var data []byte
		numPolished := 0
		for _, w := range windows {
			data = append(data, w.Consensus()...)
			if w.Polished() {
				numPolished++
			}
		}
		ratio := float64(numPolished) / float64(len(windows))
		if dropUnpolished && ratio == 0 {
			continue
		}
		out = append(out, Polished{
			Name: names[i] + tags(leadingMarker, len(data), g.coverage[i], ratio),
			Data: data,
		})
	}
	return out
}

// overlapEngine aligns two windows' shared margins; SemiGlobal lets the
// right margin's suffix and the left margin's prefix go unpenalized, the
// same free-ends shape spoa's "overlap" alignment type gives the original.
func overlapEngine(scores align.Scores, capacity int) *align.Engine {
	return align.NewEngine(scores, capacity)
}

// StitchOverlap implements the overlap_fraction > 0 path: adjacent windows'
// shared margins (of length m = 2*overlap_fraction*|consensus|) are
// realigned and merged column by column, consulting each window's vote
// tally to resolve disagreements (gap wins ties, i.e. the shorter call is
// preferred when nothing outvotes it).
func (g *Grid) StitchOverlap(names []string, leadingMarker bool, dropUnpolished bool, scores align.Scores) []Polished {
	engine := overlapEngine(scores, 4*g.windowLength)
	totalOverlap := 2 * g.overlapFrac

	var out []Polished
	for i := range names {
		windows := g.TargetWindows(i)
		var data []byte
		numPolished := 0

		for r, w := range windows {
			if w.Polished() {
				numPolished++
			}
			consensus := w.Consensus()
			m := int(totalOverlap * float64(len(consensus)))

			if r == 0 {
				data = append(data, consensus[:len(consensus)-m]...)
				continue
			}
			left := windows[r-1]
			right := w
			isLast := r == len(windows)-1
			// left's own trailing margin was deliberately left off data when
			// left was appended (or produced by the previous merge): it only
			// exists disambiguated here, folded into merged.
			merged, rightTailStart := mergeMargins(engine, left, right, m, isLast)
			data = append(data, merged...)
			if isLast {
				// the final window merges its whole consensus against the
				// left margin to find the boundary, so its own trailing
				// margin (consumed as part of "right" above) still needs
				// appending once more as the sequence's actual tail.
				data = append(data, right.Consensus()[len(right.Consensus())-m:]...)
			} else {
				data = append(data, right.Consensus()[rightTailStart:len(right.Consensus())-m]...)
			}
		}

		ratio := float64(numPolished) / float64(len(windows))
		if dropUnpolished && ratio == 0 {
			continue
		}
		out = append(out, Polished{
			Name: names[i] + tags(leadingMarker, len(data), g.coverage[i], ratio),
			Data: data,
		})
	}
	return out
}

// mergeMargins aligns left's trailing margin (length m) against right's
// leading margin (the whole consensus when right is a target's final
// window) and scans the resulting two-row alignment: agreeing columns are
// copied through, a gap in either row just advances the other, and a
// substitution column is resolved by comparing each side's vote weight for
// its own symbol against the other side's gap vote, per the "gaps win
// ties" rule. rightTailStart is where the caller should resume copying
// right's own untouched consensus tail.
//
// The original's MSA-based merge singles out a leading/trailing run before
// its first agreeing column and after its last one, because a multi-
// sequence graph alignment of just two sequences can still leave ragged
// unanchored ends. A pairwise semi-global alignment has no such ends by
// construction — SemiGlobal already frees the skip of the left margin's
// prefix and the right margin's suffix — so the whole op sequence can be
// scanned uniformly without that special-cased boundary search.
func mergeMargins(engine *align.Engine, left, right *Window, m int, isLastWindow bool) (merged []byte, rightTailStart int) {
	lc, lv := left.Consensus(), left.Votes()
	rc, rv := right.Consensus(), right.Votes()

	lStart := len(lc) - m
	lMargin, lMarginVotes := lc[lStart:], lv[lStart:]

	rLen := m
	if isLastWindow {
		rLen = len(rc)
	}
	rMargin, rMarginVotes := rc[:rLen], rv[:rLen]

	aln := engine.Align(align.SemiGlobal, lMargin, rMargin)

	li, ri := 0, 0
	for _, op := range aln.Ops {
		switch op {
		case align.OpMatch:
			merged = append(merged, lMargin[li])
			li++
			ri++
		case align.OpMismatch:
			if sym, ok := resolveMismatch(lMargin[li], lMarginVotes[li], rMargin[ri], rMarginVotes[ri]); ok {
				merged = append(merged, sym)
			}
			li++
			ri++
		case align.OpDeletion:
			// right margin has a gap here: advance past the left-only base
			// without emitting it, per "if one is a gap, advance the other".
			li++
		case align.OpInsertion:
			ri++
		}
	}
	return merged, rLen
}

// resolveMismatch picks the higher-voted side's symbol for a substitution
// column, per "pick the symbol with higher count (ties: gap wins => skip)":
// when the gap vote is the (joint) maximum, the column contributes nothing.
func resolveMismatch(lSym byte, lVotes map[byte]int, rSym byte, rVotes map[byte]int) (sym byte, ok bool) {
	gaps := votesFor(lVotes, 0) + votesFor(rVotes, 0)
	l := votesFor(lVotes, lSym)
	r := votesFor(rVotes, rSym)
	if gaps >= l && gaps >= r {
		return 0, false
	}
	if l > r {
		return lSym, true
	}
	return rSym, true
}

func votesFor(votes map[byte]int, sym byte) int {
	if votes == nil {
		return 0
	}
	return votes[sym]
}
