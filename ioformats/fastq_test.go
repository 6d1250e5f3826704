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

func TestFastqReaderParsesRecords(t *testing.T) {
	r := NewFastqReader(openerForString("@q0\nACGT\n+\n!!!!\n@q1\nTTTT\n+ignored\nIIII\n"))
	require.NoError(t, r.Reset())

	var recs []SeqRecord
	more, err := r.Parse(&recs, -1)
	require.NoError(t, err)
	require.False(t, more)
	require.Len(t, recs, 2)
	require.Equal(t, "q0", recs[0].Name)
	require.Equal(t, []byte("ACGT"), recs[0].Bases)
	require.Equal(t, []byte("!!!!"), recs[0].Quality)
	require.Equal(t, "q1", recs[1].Name)
}

func TestFastqReaderRejectsMismatchedQualityLength(t *testing.T) {
	r := NewFastqReader(openerForString("@q0\nACGT\n+\n!!\n"))
	require.NoError(t, r.Reset())
	var recs []SeqRecord
	_, err := r.Parse(&recs, -1)
	require.Error(t, err)
}

func TestFastqReaderRejectsMissingPlusLine(t *testing.T) {
	r := NewFastqReader(openerForString("@q0\nACGT\n"))
	require.NoError(t, r.Reset())
	var recs []SeqRecord
	_, err := r.Parse(&recs, -1)
	require.Error(t, err)
}

func TestFastqReaderRejectsBadIDLine(t *testing.T) {
	r := NewFastqReader(openerForString("q0\nACGT\n+\n!!!!\n"))
	require.NoError(t, r.Reset())
	var recs []SeqRecord
	_, err := r.Parse(&recs, -1)
	require.Error(t, err)
}
