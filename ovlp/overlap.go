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

// Package ovlp holds the normalised Overlap record and the breaking-point
// walk that turns a query/target alignment into per-window layer segments.
package ovlp

import (
	"github.com/pkg/errors"

	"github.com/seqpolish/polish/ioformats"
)

// Strand mirrors ioformats.Strand; kept distinct so this package does not
// leak the wire-format type into the rest of the engine.
type Strand int

const (
	StrandSame    Strand = 0
	StrandReverse Strand = 1
)

// DescriptorKind says how Overlap.Descriptor should be interpreted by
// FindBreakingPoints.
type DescriptorKind int

const (
	// DescriptorExact means Descriptor is a base-level alignment (a CIGAR
	// string or a match/mismatch string with one symbol per column) that can be
	// walked column by column.
	DescriptorExact DescriptorKind = iota
	// DescriptorApproximate means Descriptor carries no base-level
	// alignment (MHAP-style record); breaking points are interpolated
	// linearly across the overlap span instead of walked.
	DescriptorApproximate
)

// BreakingPoint is one (target_pos, query_pos) coordinate pair emitted by
// FindBreakingPoints. Pairs are emitted two at a time: (begin, end) bracket
// one contiguous layer segment that belongs to a single window.
type BreakingPoint struct {
	TargetPos int
	QueryPos  int
}

// Overlap is a normalised alignment between a query sequence and a target
// (reference) sequence, as read from MHAP/PAF/SAM input and reconciled
// against sequence ids.
type Overlap struct {
	QID, TID     int
	Strand       Strand
	QBegin, QEnd int
	TBegin, TEnd int
	QLen, TLen   int

	DescriptorKind DescriptorKind
	Descriptor     string
	// Identity is an approximate-alignment identity estimate in [0,1], only
	// meaningful when DescriptorKind == DescriptorApproximate.
	Identity float64

	breakingPoints []BreakingPoint
}

// FromRecord builds an Overlap from a parsed ioformats.OverlapRecord, with
// qID/tID already resolved by the caller's name reconciliation table.
func FromRecord(rec ioformats.OverlapRecord, qID, tID int) Overlap {
	strand := StrandSame
	if rec.Strand == ioformats.StrandReverse {
		strand = StrandReverse
	}
	kind := DescriptorExact
	if rec.DescriptorKind == ioformats.DescriptorApproximate {
		kind = DescriptorApproximate
	}
	return Overlap{
		QID: qID, TID: tID,
		Strand:         strand,
		QBegin:         rec.QBegin,
		QEnd:           rec.QEnd,
		TBegin:         rec.TBegin,
		TEnd:           rec.TEnd,
		QLen:           rec.QLen,
		TLen:           rec.TLen,
		DescriptorKind: kind,
		Descriptor:     rec.Descriptor,
		Identity:       rec.ApproximateIdentity,
	}
}

// Length is max(t_end-t_begin, q_end-q_begin).
func (o *Overlap) Length() int {
	ql := o.QEnd - o.QBegin
	tl := o.TEnd - o.TBegin
	if tl > ql {
		return tl
	}
	return ql
}

// IsValid checks the coordinate invariants required before an Overlap may
// be used to build breaking points or windows.
func (o *Overlap) IsValid() error {
	if o.QBegin < 0 || o.QBegin >= o.QEnd || o.QEnd > o.QLen {
		return errors.Errorf("ovlp: invalid query span [%d,%d) of %d", o.QBegin, o.QEnd, o.QLen)
	}
	if o.TBegin < 0 || o.TBegin >= o.TEnd || o.TEnd > o.TLen {
		return errors.Errorf("ovlp: invalid target span [%d,%d) of %d", o.TBegin, o.TEnd, o.TLen)
	}
	return nil
}

// BreakingPoints returns the coordinate pairs attached by FindBreakingPoints,
// or nil if it has not been called yet.
func (o *Overlap) BreakingPoints() []BreakingPoint {
	return o.breakingPoints
}

// Reset drops the breaking-point list and descriptor once an overlap's
// layers have all been distributed into windows, so the backing strings are
// free for garbage collection while the orchestrator still walks the slice.
func (o *Overlap) Reset() {
	o.breakingPoints = nil
	o.Descriptor = ""
}
