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
	"gonum.org/v1/gonum/stat"

	"github.com/seqpolish/polish/ovlp"
	"github.com/seqpolish/polish/seqstore"
)

// minSpanFraction is the "target-side span < 2% of window length" rejection
// threshold from initialize() step 8.
const minSpanFraction = 0.02

// Grid is the full set of windows for every target, laid out the way
// Window grid is specified: windows[first[i]..first[i+1]) per target i.
type Grid struct {
	windowLength int
	overlapFrac  float64
	offset       int // window_length * overlap_fraction

	windows  []*Window
	first    []int // len(targets)+1
	coverage []int // per-target retained-overlap count
}

// Build allocates the window grid for targets: target i gets
// ceil(|target_i| / windowLength) windows, each non-first window's backbone
// extended on both sides by offset = windowLength*overlapFraction bases
// when overlapFraction > 0.
func Build(targets []*seqstore.Sequence, windowLength int, overlapFraction float64, wtype Type) *Grid {
	g := &Grid{
		windowLength: windowLength,
		overlapFrac:  overlapFraction,
		offset:       int(float64(windowLength) * overlapFraction),
		first:        make([]int, len(targets)+1),
		coverage:     make([]int, len(targets)),
	}

	for i, target := range targets {
		backbone := target.Bases(false)
		n := len(backbone)
		k := 0
		for j := 0; j < n; j += windowLength {
			start, expansion := j, g.offset
			if j > 0 {
				start -= g.offset
				expansion += g.offset
			}
			end := start + windowLength + expansion
			if end > n {
				end = n
			}
			w := newWindow(i, uint32(k), wtype, overlapFraction != 0, backbone[start:end])
			g.windows = append(g.windows, w)
			k++
		}
		g.first[i+1] = g.first[i] + k
	}
	return g
}

// Windows returns every window, in (target, rank) order.
func (g *Grid) Windows() []*Window { return g.windows }

// TargetWindows returns the windows belonging to target i.
func (g *Grid) TargetWindows(targetID int) []*Window {
	return g.windows[g.first[targetID]:g.first[targetID+1]]
}

// Coverage returns the per-target retained-overlap count accumulated by
// Distribute, exposed by polisher.Stats().
func (g *Grid) Coverage() []int { return g.coverage }

// Distribute walks every overlap's breaking-point pairs and appends the
// corresponding layer to the window it lands in, following
// initialize() step 8's rejection and window-id tie-break rules.
// queryOf resolves an overlap's q_id to its Sequence.
func (g *Grid) Distribute(overlaps []*ovlp.Overlap, queryOf func(qID int) *seqstore.Sequence, qualityThreshold float64) {
	for _, o := range overlaps {
		g.coverage[o.TID]++
		g.distributeOne(o, queryOf(o.QID), qualityThreshold)
	}
}

func (g *Grid) distributeOne(o *ovlp.Overlap, query *seqstore.Sequence, qualityThreshold float64) {
	bps := o.BreakingPoints()
	reverse := o.Strand == ovlp.StrandReverse
	quality := query.Quality(reverse)

	minSpan := int(minSpanFraction * float64(g.windowLength))
	firstWindowID := g.first[o.TID]
	lastWindowID := g.first[o.TID+1] - 1

	prevWindowID := -1

	nextWindowID := func(j int, bpw1, bpw2 int) int {
		id := firstWindowID + bpw1
		switch {
		case bpw2-bpw1 > 1:
			id++
		case id == prevWindowID:
			id++
		case bps[j].TargetPos < bpw1*g.windowLength+g.offset &&
			j+2 < len(bps) && bps[j].TargetPos == bps[j+2].TargetPos:
			id--
		}
		return id
	}

	for j := 0; j+1 < len(bps); j += 2 {
		begin, end := bps[j], bps[j+1]
		if end.TargetPos-begin.TargetPos < minSpan {
			continue
		}

		bpw1 := begin.TargetPos / g.windowLength
		bpw2 := end.TargetPos / g.windowLength

		if quality != nil {
			avg := stat.Mean(decodeQualitySpan(quality[begin.QueryPos:end.QueryPos]), nil)
			if avg < qualityThreshold {
				prevWindowID = nextWindowID(j, bpw1, bpw2)
				continue
			}
		}

		windowID := nextWindowID(j, bpw1, bpw2)
		prevWindowID = windowID
		if windowID < firstWindowID || windowID > lastWindowID {
			continue
		}

		windowStart := (windowID - firstWindowID) * g.windowLength
		if windowStart > 0 {
			windowStart -= g.offset
		}

		bases := query.Bases(reverse)[begin.QueryPos:end.QueryPos]
		var layerQuality []byte
		if quality != nil {
			layerQuality = quality[begin.QueryPos:end.QueryPos]
		}

		g.windows[windowID].AddLayer(bases, layerQuality, begin.TargetPos-windowStart, end.TargetPos-windowStart)
	}
}

// decodeQualitySpan converts a Phred+33 byte span to float64 values for
// gonum/stat.Mean, mirroring the -33 offset applied before the
// quality_threshold comparison.
func decodeQualitySpan(phred []byte) []float64 {
	out := make([]float64, len(phred))
	for i, b := range phred {
		out[i] = float64(int(b) - 33)
	}
	return out
}
