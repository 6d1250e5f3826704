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

// Package polisher is the orchestrator: it drives ingestion, filtering,
// windowing, scheduling, and stitching, wiring together seqstore, ioformats,
// ovlp, window, and wpool, in the Opts/DefaultOpts configuration idiom of
// pileup/snp.Opts and the errors.Once/traverse.Each orchestration style of
// encoding/converter/convert.go.
package polisher

import (
	"github.com/seqpolish/polish/align"
)

// Type selects the dedup behaviour applied to an overlap group sharing one
// q_id during ingestion.
type Type int

const (
	// TypeConsensus (kC) keeps only the longest overlap per query.
	TypeConsensus Type = iota
	// TypeFragment (kF) keeps every overlap and tags output names with a
	// leading "r" marker.
	TypeFragment
)

// Config is every knob §6 enumerates.
type Config struct {
	Type                    Type
	WindowLength            int
	OverlapPercentage       float64
	QualityThreshold        float64
	ErrorThreshold          float64
	Match, Mismatch, Gap    int
	Trim                    bool
	NumThreads              int
	DropUnpolishedSequences bool
}

// DefaultConfig mirrors the field-by-field defaults a production polishing
// run would ship with: NGS-scale window, no overlap-stitch, permissive
// quality/error thresholds, a simple +5/-4/-8 scoring scheme.
var DefaultConfig = Config{
	Type:                    TypeConsensus,
	WindowLength:            500,
	OverlapPercentage:       0,
	QualityThreshold:        10,
	ErrorThreshold:          0.3,
	Match:                   5,
	Mismatch:                -4,
	Gap:                     -8,
	Trim:                    true,
	NumThreads:              4,
	DropUnpolishedSequences: false,
}

func (c Config) scores() align.Scores {
	return align.Scores{Match: c.Match, Mismatch: c.Mismatch, Gap: c.Gap}
}
