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

package ioformats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMhapReaderParsesRecord(t *testing.T) {
	r := NewMhapReader(openerForString("q0 t0 0.1 50 0 10 10 0 10 10 0\n"))
	require.NoError(t, r.Reset())

	var recs []OverlapRecord
	more, err := r.Parse(&recs, -1)
	require.NoError(t, err)
	require.False(t, more)
	require.Len(t, recs, 1)
	require.Equal(t, "q0", recs[0].QName)
	require.Equal(t, "t0", recs[0].TName)
	require.Equal(t, DescriptorApproximate, recs[0].DescriptorKind)
	require.InDelta(t, 0.9, recs[0].ApproximateIdentity, 1e-9)
	require.Equal(t, StrandSame, recs[0].Strand)
	require.Equal(t, 10, recs[0].QLen)
	require.Equal(t, 10, recs[0].TLen)
}

func TestMhapReaderParsesReverseStrand(t *testing.T) {
	r := NewMhapReader(openerForString("q0 t0 0.1 50 0 10 10 0 10 10 1\n"))
	require.NoError(t, r.Reset())

	var recs []OverlapRecord
	_, err := r.Parse(&recs, -1)
	require.NoError(t, err)
	require.Equal(t, StrandReverse, recs[0].Strand)
}

func TestMhapReaderRejectsTooFewColumns(t *testing.T) {
	r := NewMhapReader(openerForString("q0 t0 0.1\n"))
	require.NoError(t, r.Reset())
	var recs []OverlapRecord
	_, err := r.Parse(&recs, -1)
	require.Error(t, err)
}

func TestMhapReaderRejectsNonNumericErrorRate(t *testing.T) {
	r := NewMhapReader(openerForString("q0 t0 bad 50 0 10 10 0 10 10 0\n"))
	require.NoError(t, r.Reset())
	var recs []OverlapRecord
	_, err := r.Parse(&recs, -1)
	require.Error(t, err)
}
