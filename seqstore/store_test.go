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
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seqpolish/polish/ioformats"
)

func openerForString(s string) func() (io.Reader, error) {
	return func() (io.Reader, error) { return strings.NewReader(s), nil }
}

func fastaReader(s string) ioformats.SequenceReader {
	return ioformats.NewFastaReader(openerForString(s))
}

func mustReset(t *testing.T, r ioformats.SequenceReader) {
	t.Helper()
	require.NoError(t, r.Reset())
}

func TestIngestTargetsAssignsContiguousIDs(t *testing.T) {
	s := New()
	r := fastaReader(">t0\nACGT\n>t1\nTTTT\n")
	mustReset(t, r)
	require.NoError(t, s.IngestTargets(r))

	require.Equal(t, 2, s.NumTargets())
	id0, ok := s.Resolve("t0")
	require.True(t, ok)
	require.Equal(t, 0, id0)
	id1, ok := s.Resolve("t1")
	require.True(t, ok)
	require.Equal(t, 1, id1)
}

func TestIngestTargetsRejectsEmptySet(t *testing.T) {
	s := New()
	r := fastaReader("")
	mustReset(t, r)
	require.Error(t, s.IngestTargets(r))
}

func TestIngestTargetsRejectsDuplicateName(t *testing.T) {
	s := New()
	r := fastaReader(">t0\nACGT\n>t0\nTTTT\n")
	mustReset(t, r)
	require.Error(t, s.IngestTargets(r))
}

func TestIngestQueriesAliasesKnownTargetName(t *testing.T) {
	s := New()
	tr := fastaReader(">t0\nACGT\n")
	mustReset(t, tr)
	require.NoError(t, s.IngestTargets(tr))

	qr := fastaReader(">t0\nACGT\n>q1\nTTTT\n")
	mustReset(t, qr)
	require.NoError(t, s.IngestQueries(qr, -1))

	id, ok := s.Resolve("t0")
	require.True(t, ok)
	require.Equal(t, 0, id) // still the target's id, no new sequence created
	require.Equal(t, 1, s.NumTargets())

	_, ok = s.Resolve("q1")
	require.True(t, ok)
}

func TestIngestQueriesRejectsEmptySet(t *testing.T) {
	s := New()
	tr := fastaReader(">t0\nACGT\n")
	mustReset(t, tr)
	require.NoError(t, s.IngestTargets(tr))

	qr := fastaReader("")
	mustReset(t, qr)
	require.Error(t, s.IngestQueries(qr, -1))
}

func TestIngestQueriesRejectsInconsistentDuplicateQuery(t *testing.T) {
	s := New()
	tr := fastaReader(">t0\nACGT\n")
	mustReset(t, tr)
	require.NoError(t, s.IngestTargets(tr))

	qr := fastaReader(">q0\nACGT\n>q0\nACGTAA\n")
	mustReset(t, qr)
	require.Error(t, s.IngestQueries(qr, -1))
}

func TestIngestQueriesAllowsConsistentDuplicateQuery(t *testing.T) {
	s := New()
	tr := fastaReader(">t0\nACGT\n")
	mustReset(t, tr)
	require.NoError(t, s.IngestTargets(tr))

	qr := fastaReader(">q0\nACGT\n>q0\nACGT\n")
	mustReset(t, qr)
	require.NoError(t, s.IngestQueries(qr, -1))
}

func TestMeanQueryLengthAveragesStreamedQueryRecords(t *testing.T) {
	s := New()
	tr := fastaReader(">t0\nACGTACGTAC\n") // 10 bases, must not count
	mustReset(t, tr)
	require.NoError(t, s.IngestTargets(tr))

	qr := fastaReader(">q0\nACGT\n>q1\nACGTACGT\n") // 4 and 8 bases
	mustReset(t, qr)
	require.NoError(t, s.IngestQueries(qr, -1))

	require.InDelta(t, 6.0, s.MeanQueryLength(), 1e-9)
}

func TestMeanQueryLengthIncludesTargetAliasedQueries(t *testing.T) {
	s := New()
	tr := fastaReader(">t0\nACGTACGTAC\n") // 10 bases
	mustReset(t, tr)
	require.NoError(t, s.IngestTargets(tr))

	// The t0 query aliases the target (same name, same length), is never appended
	// to s.sequences, but still streamed past and must count toward the mean.
	qr := fastaReader(">t0\nACGTACGTAC\n>q1\nACGT\n") // 10 and 4 bases
	mustReset(t, qr)
	require.NoError(t, s.IngestQueries(qr, -1))

	require.InDelta(t, 7.0, s.MeanQueryLength(), 1e-9)
}

func TestMeanQueryLengthZeroWithNoQueries(t *testing.T) {
	s := New()
	require.Equal(t, 0.0, s.MeanQueryLength())
}

func TestMaterialiseStrandsKeepsTargetForwardBases(t *testing.T) {
	s := New()
	tr := fastaReader(">t0\nACGT\n")
	mustReset(t, tr)
	require.NoError(t, s.IngestTargets(tr))

	qr := fastaReader(">q0\nTTTT\n")
	mustReset(t, qr)
	require.NoError(t, s.IngestQueries(qr, -1))

	s.MaterialiseStrands()
	require.Equal(t, []byte("ACGT"), s.Targets()[0].Bases(false))
}

func TestSequenceAndTargetsAccessors(t *testing.T) {
	s := New()
	tr := fastaReader(">t0\nACGT\n>t1\nTTTT\n")
	mustReset(t, tr)
	require.NoError(t, s.IngestTargets(tr))

	require.Len(t, s.Targets(), 2)
	require.Equal(t, "t0", s.Sequence(0).Name())
	require.Equal(t, "t1", s.Sequence(1).Name())
}
