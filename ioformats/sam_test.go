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

func TestSamReaderParsesMappedRecordWithHeader(t *testing.T) {
	r := NewSamReader(openerForString(
		"@SQ\tSN:t0\tLN:100\n" +
			"q0\t0\tt0\t1\t60\t10M\t*\t0\t0\tACGTACGTAC\t**********\n"))
	require.NoError(t, r.Reset())

	var recs []OverlapRecord
	more, err := r.Parse(&recs, -1)
	require.NoError(t, err)
	require.False(t, more)
	require.Len(t, recs, 1)
	require.Equal(t, "q0", recs[0].QName)
	require.Equal(t, "t0", recs[0].TName)
	require.Equal(t, 0, recs[0].TBegin)
	require.Equal(t, 10, recs[0].TEnd)
	require.Equal(t, 100, recs[0].TLen)
	require.Equal(t, StrandSame, recs[0].Strand)
	require.Equal(t, DescriptorCIGAR, recs[0].DescriptorKind)
	require.Equal(t, "10M", recs[0].Descriptor)
}

func TestSamReaderFallsBackToTEndWhenNoHeader(t *testing.T) {
	r := NewSamReader(openerForString("q0\t0\tt0\t1\t60\t10M\t*\t0\t0\tACGTACGTAC\t**********\n"))
	require.NoError(t, r.Reset())

	var recs []OverlapRecord
	_, err := r.Parse(&recs, -1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 10, recs[0].TLen)
}

func TestSamReaderSkipsUnmappedAndStarRecords(t *testing.T) {
	r := NewSamReader(openerForString(
		"q0\t4\t*\t0\t0\t*\t*\t0\t0\t*\t*\n" +
			"q1\t0\tt0\t1\t60\t*\t*\t0\t0\t*\t*\n"))
	require.NoError(t, r.Reset())

	var recs []OverlapRecord
	_, err := r.Parse(&recs, -1)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestSamReaderSetsReverseStrandFlag(t *testing.T) {
	r := NewSamReader(openerForString("q0\t16\tt0\t1\t60\t10M\t*\t0\t0\tACGTACGTAC\t**********\n"))
	require.NoError(t, r.Reset())

	var recs []OverlapRecord
	_, err := r.Parse(&recs, -1)
	require.NoError(t, err)
	require.Equal(t, StrandReverse, recs[0].Strand)
}

func TestSamReaderComputesCIGARSpansWithIndels(t *testing.T) {
	r := NewSamReader(openerForString("q0\t0\tt0\t1\t60\t3M2D3M2I\t*\t0\t0\tAAAAAAAA\t********\n"))
	require.NoError(t, r.Reset())

	var recs []OverlapRecord
	_, err := r.Parse(&recs, -1)
	require.NoError(t, err)
	require.Equal(t, 0, recs[0].TBegin)
	require.Equal(t, 8, recs[0].TEnd) // 3M+2D+3M reference-consuming = 8
	require.Equal(t, 8, recs[0].QEnd) // 3M+3M+2I query-consuming = 8
}

func TestSamReaderRejectsTooFewColumns(t *testing.T) {
	r := NewSamReader(openerForString("q0\t0\tt0\t1\t60\n"))
	require.NoError(t, r.Reset())
	var recs []OverlapRecord
	_, err := r.Parse(&recs, -1)
	require.Error(t, err)
}
