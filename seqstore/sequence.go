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

// Package seqstore owns target and query sequences for a polishing run: it
// assigns stable ids, reconciles query/target name aliasing, and lazily
// materialises reverse-strand data once the overlap set is known.
package seqstore

import (
	"github.com/pkg/errors"
)

// Role distinguishes the two ways a name can be looked up: as a target
// backbone, or as a query occurrence. A query whose name matches a target's
// aliases to the target's id rather than getting a fresh one.
type Role int

const (
	// RoleQuery tags a name->id lookup performed for a query occurrence.
	RoleQuery Role = 0
	// RoleTarget tags a name->id lookup performed for a target occurrence.
	RoleTarget Role = 1
)

// Sequence is a single named sequence, either a target backbone or a query
// read. Reverse-strand bases and quality are materialised lazily, and only
// kept if MarkNeeded records that some overlap actually references them.
type Sequence struct {
	name string
	id   int

	forwardBases   []byte
	forwardQuality []byte

	reverseBases   []byte
	reverseQuality []byte

	needForward        bool
	needReverse         bool
	needForwardQuality bool
	needReverseQuality bool
}

// NewSequence constructs a Sequence. quality may be nil; if non-nil it must
// have the same length as bases.
func NewSequence(id int, name string, bases, quality []byte) (*Sequence, error) {
	if len(quality) != 0 && len(quality) != len(bases) {
		return nil, errors.Errorf("seqstore: sequence %q has %d bases but %d quality values", name, len(bases), len(quality))
	}
	return &Sequence{
		id:             id,
		name:           name,
		forwardBases:   bases,
		forwardQuality: quality,
		needForward:    true,
	}, nil
}

// ID returns the sequence's stable integer id.
func (s *Sequence) ID() int { return s.id }

// Name returns the sequence's name.
func (s *Sequence) Name() string { return s.name }

// Len returns the number of bases in the sequence.
func (s *Sequence) Len() int { return len(s.forwardBases) }

// Bases returns the forward- or reverse-strand bases, materialising the
// reverse complement on first use.
func (s *Sequence) Bases(reverse bool) []byte {
	if !reverse {
		return s.forwardBases
	}
	if s.reverseBases == nil {
		s.reverseBases = reverseComplement(s.forwardBases)
	}
	return s.reverseBases
}

// Quality returns the forward- or reverse-strand quality string (Phred+33),
// or nil if no quality data is available. The reverse string is computed on
// first use.
func (s *Sequence) Quality(reverse bool) []byte {
	if !reverse {
		if len(s.forwardQuality) == 0 {
			return nil
		}
		return s.forwardQuality
	}
	if s.reverseQuality == nil && len(s.forwardQuality) != 0 {
		s.reverseQuality = reverseBytes(s.forwardQuality)
	}
	return s.reverseQuality
}

// MarkNeeded records that some retained overlap references this sequence on
// the given strand, so Transmute must not release the corresponding buffer.
func (s *Sequence) MarkNeeded(reverse bool) {
	if reverse {
		s.needReverse = true
		if len(s.forwardQuality) != 0 {
			s.needReverseQuality = true
		}
	} else {
		s.needForward = true
		if len(s.forwardQuality) != 0 {
			s.needForwardQuality = true
		}
	}
}

// Transmute releases strand buffers nobody asked for via MarkNeeded. Targets
// are always marked forward-needed by the store before this runs, since
// their forward bases seed every window's backbone.
func (s *Sequence) Transmute() {
	if s.needReverse {
		s.reverseBases = s.Bases(true)
		if s.needReverseQuality {
			s.reverseQuality = s.Quality(true)
		}
	} else {
		s.reverseBases = nil
		s.reverseQuality = nil
	}
	if !s.needForward {
		s.forwardBases = nil
		s.forwardQuality = nil
	} else if !s.needForwardQuality {
		s.forwardQuality = nil
	}
}
