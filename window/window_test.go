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
	"testing"

	"github.com/seqpolish/polish/align"
)

func testScores() align.Scores { return align.Scores{Match: 2, Mismatch: -1, Gap: -2} }
func testEngine() *align.Engine { return align.NewEngine(testScores(), 32) }

func TestWindowNoLayersReturnsBackbone(t *testing.T) {
	w := newWindow(0, 0, TypeNGS, false, []byte("ACGTACGT"))
	polished := w.GenerateConsensus(testEngine(), false)
	if polished {
		t.Fatal("expected polished=false with no layers")
	}
	if string(w.Consensus()) != "ACGTACGT" {
		t.Fatalf("consensus = %q, want backbone", w.Consensus())
	}
}

func TestWindowAddLayerCorrectsConsensus(t *testing.T) {
	w := newWindow(0, 0, TypeNGS, false, []byte("ACGTACGT"))
	for i := 0; i < 3; i++ {
		w.AddLayer([]byte("ACGTCCGT"), nil, 0, 8)
	}
	if !w.GenerateConsensus(testEngine(), false) {
		t.Fatal("expected polished=true")
	}
	if w.Consensus()[4] != 'C' {
		t.Fatalf("consensus[4] = %q, want majority-voted C", w.Consensus()[4])
	}
}

func TestWindowVotesAlignWithConsensusLength(t *testing.T) {
	w := newWindow(0, 0, TypeNGS, false, []byte("ACGT"))
	w.AddLayer([]byte("ACGT"), nil, 0, 4)
	w.GenerateConsensus(testEngine(), false)
	if len(w.Votes()) != len(w.Consensus()) {
		t.Fatalf("votes len %d != consensus len %d", len(w.Votes()), len(w.Consensus()))
	}
}

func TestWindowStitchedModeForcesNoTrim(t *testing.T) {
	w := newWindow(0, 0, TypeNGS, true, []byte("AAACGTAAA"))
	w.AddLayer([]byte("CGT"), nil, 3, 6)
	w.GenerateConsensus(testEngine(), true) // trim requested, but Stitched should force it off
	if len(w.Consensus()) != 9 {
		t.Fatalf("consensus len = %d, want 9 (trim should be ignored in stitched mode)", len(w.Consensus()))
	}
}
