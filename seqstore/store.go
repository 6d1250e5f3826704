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

package seqstore

import (
	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"

	"github.com/seqpolish/polish/ioformats"
)

// Store owns every sequence for a polishing run — targets and queries — and
// reconciles a query's name against a target's so the same physical
// backbone is never stored twice. Targets are always assigned the first
// |targets| ids, in input order, so Targets() is a cheap prefix slice.
type Store struct {
	sequences  []*Sequence
	nameToID   map[string]int // every known name (target or query) -> id
	numTargets int

	queryLengthSum int64 // accumulated over every streamed query record, including target-aliases
	queryCount     int
}

// New constructs an empty Store.
func New() *Store {
	return &Store{nameToID: make(map[string]int)}
}

// IngestTargets reads every record from r and assigns contiguous ids
// 0..T-1. Fails if the target set is empty or a name repeats.
func (s *Store) IngestTargets(r ioformats.SequenceReader) error {
	var recs []ioformats.SeqRecord
	for {
		more, err := r.Parse(&recs, -1)
		if err != nil {
			return errors.Wrap(err, "seqstore: reading targets")
		}
		if !more {
			break
		}
	}
	if len(recs) == 0 {
		return errors.New("seqstore: empty target set")
	}
	for _, rec := range recs {
		if _, dup := s.nameToID[rec.Name]; dup {
			return errors.Errorf("seqstore: duplicate target name %q", rec.Name)
		}
		if err := s.add(rec); err != nil {
			return err
		}
	}
	s.numTargets = len(s.sequences)
	return nil
}

// IngestQueries streams r in chunks of roughly chunkBytes. A query whose
// name matches a known target is discarded, but nameToID already resolves
// that name to the target's id, so later overlap lookups need no special
// casing. A query name seen twice (duplicate query, not aliasing a target)
// must carry identical length and quality-presence, or ingestion fails.
func (s *Store) IngestQueries(r ioformats.SequenceReader, chunkBytes int64) error {
	seenAny := false
	for {
		var recs []ioformats.SeqRecord
		more, err := r.Parse(&recs, chunkBytes)
		if err != nil {
			return errors.Wrap(err, "seqstore: reading queries")
		}
		for _, rec := range recs {
			seenAny = true
				s.queryLengthSum += int64(len(rec.Bases))
				s.queryCount++
			if err := s.reconcileQuery(rec); err != nil {
				return err
			}
		}
		if !more {
			break
		}
	}
	if !seenAny {
		return errors.New("seqstore: empty query set")
	}
	return nil
}

func (s *Store) reconcileQuery(rec ioformats.SeqRecord) error {
	if id, known := s.nameToID[rec.Name]; known {
		existing := s.sequences[id]
		if existing.Len() != len(rec.Bases) || (len(existing.Quality(false)) != 0) != (len(rec.Quality) != 0) {
			return errors.Errorf("seqstore: query %q duplicates a known sequence with inconsistent data", rec.Name)
		}
		return nil
	}
	return s.add(rec)
}

func (s *Store) add(rec ioformats.SeqRecord) error {
	id := len(s.sequences)
	seq, err := NewSequence(id, rec.Name, rec.Bases, rec.Quality)
	if err != nil {
		return err
	}
	s.sequences = append(s.sequences, seq)
	s.nameToID[rec.Name] = id
	return nil
}

// Resolve returns the id assigned to name, if any.
func (s *Store) Resolve(name string) (int, bool) {
	id, ok := s.nameToID[name]
	return id, ok
}

// Sequence returns the sequence with the given id.
func (s *Store) Sequence(id int) *Sequence { return s.sequences[id] }

// Targets returns every target sequence, in ingestion order.
func (s *Store) Targets() []*Sequence { return s.sequences[:s.numTargets] }

// NumTargets returns the number of target sequences.
func (s *Store) NumTargets() int { return s.numTargets }

// MeanQueryLength returns the average base length of every streamed query
// record, including ones later discarded as target-aliases, used by the
// orchestrator to classify the run as NGS or TGS. Returns 0 if no query was
// ingested.
func (s *Store) MeanQueryLength() float64 {
	if s.queryCount == 0 {
		return 0
	}
	return float64(s.queryLengthSum) / float64(s.queryCount)
}

// MaterialiseStrands asks every sequence to release strand buffers nobody
// marked as needed via Sequence.MarkNeeded, and to compute the ones that
// are. Targets always need their forward bases, since those seed every
// window's backbone.
func (s *Store) MaterialiseStrands() {
	_ = traverse.Each(len(s.sequences), func(i int) error {
		if i < s.numTargets {
			s.sequences[i].MarkNeeded(false)
		}
		s.sequences[i].Transmute()
		return nil
	})
}
