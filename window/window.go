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

// Package window builds the per-target window grid, distributes overlap
// layers into windows, drives each window's POA consensus, and stitches
// neighbouring windows' consensuses back into whole polished sequences —
// grounded on _examples/original_source/src/window.hpp and the window
// construction, layer-distribution, and stitching logic of
// _examples/original_source/src/polisher.cpp, reworked around this module's
// align/poa packages in place of spoa.
package window

import (
	"github.com/seqpolish/polish/align"
	"github.com/seqpolish/polish/poa"
)

// Type classifies a window grid's expected read length, set globally by the
// orchestrator from the mean query length. It is informational: it only
// parameterises the diagonal band width handed to each window's POA engine.
type Type int

const (
	// TypeNGS is the default: short, high-accuracy reads, no banding.
	TypeNGS Type = iota
	// TypeTGS marks long, noisy third-generation reads; windows built with
	// this type cap their POA alignments to a diagonal band.
	TypeTGS
)

// TGSBand is the diagonal half-width applied to TGS windows, mirroring the
// original's banded-POA width cap for long noisy reads.
const TGSBand = 32

// Window is one fixed-length region of a target's backbone: identity
// (target_id, rank), a POA graph seeded with the backbone slice, and the
// layers folded into it so far.
type Window struct {
	TargetID int
	Rank     uint32
	Type     Type
	Stitched bool // overlap_fraction != 0: window margins get realigned, so trim never runs per window

	graph *poa.Graph

	consensus []byte
	votes     []map[byte]int
	polished  bool
}

func newWindow(targetID int, rank uint32, wtype Type, stitched bool, backbone []byte) *Window {
	return &Window{
		TargetID: targetID,
		Rank:     rank,
		Type:     wtype,
		Stitched: stitched,
		graph:    poa.New(backbone),
	}
}

// AddLayer records a query-derived layer against the window's POA graph. No
// alignment happens here; it is deferred to GenerateConsensus, matching
// Window::add_layer's "no alignment is performed here". begin and end are
// already in window-local backbone coordinates. quality, if present, is raw
// Phred+33 straight from seqstore.Sequence.Quality; poa.Graph.AddLayer
// decodes it to the [0,93] weight scale before any vote is cast.
func (w *Window) AddLayer(bases, quality []byte, begin, end int) {
	w.graph.AddLayer(bases, quality, begin, end)
}

// GenerateConsensus aligns every layer recorded since the last call against
// the graph using engine, then runs the POA extraction. trim is forced
// false in overlap-stitch mode, since the stitcher needs every window's
// backbone-anchored ends intact to find the shared margin. Returns true iff
// at least one layer was folded in, matching Window::generate_consensus.
func (w *Window) GenerateConsensus(engine *align.Engine, trim bool) bool {
	w.graph.Align(engine)
	if w.Stitched {
		trim = false
	}
	w.consensus, w.votes, w.polished = w.graph.ConsensusVotes(trim)
	return w.polished
}

// Consensus returns the window's consensus bytes. Valid only after
// GenerateConsensus has run.
func (w *Window) Consensus() []byte { return w.consensus }

// Votes returns, for every byte of Consensus(), the full vote tally
// (including the gap vote) of the column that produced it.
func (w *Window) Votes() []map[byte]int { return w.votes }

// Polished reports whether at least one layer was folded into this window.
func (w *Window) Polished() bool { return w.polished }
