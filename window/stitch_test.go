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
	"strings"
	"testing"

	"github.com/seqpolish/polish/align"
	"github.com/seqpolish/polish/seqstore"
)

func TestStitchDefaultConcatenatesWindows(t *testing.T) {
	target := mustSeq(t, 0, "t0", []byte(strings.Repeat("A", 250)), nil)
	g := Build([]*seqstore.Sequence{target}, 100, 0, TypeNGS)
	var want int
	for _, w := range g.TargetWindows(0) {
		w.GenerateConsensus(testEngine(), false)
		want += len(w.Consensus())
	}
	out := g.StitchDefault([]string{"t0"}, false, false)
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1", len(out))
	}
	if len(out[0].Data) != want {
		t.Fatalf("stitched length = %d, want %d", len(out[0].Data), want)
	}
}

func TestStitchDefaultDropsUnpolishedWhenRequested(t *testing.T) {
	target := mustSeq(t, 0, "t0", []byte(strings.Repeat("A", 50)), nil)
	g := Build([]*seqstore.Sequence{target}, 100, 0, TypeNGS)
	g.TargetWindows(0)[0].GenerateConsensus(testEngine(), false) // no layers added: unpolished

	out := g.StitchDefault([]string{"t0"}, false, true)
	if len(out) != 0 {
		t.Fatalf("got %d records, want 0 (dropped unpolished)", len(out))
	}

	out = g.StitchDefault([]string{"t0"}, false, false)
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1 (kept when drop disabled)", len(out))
	}
}

func TestStitchDefaultTagOrdering(t *testing.T) {
	target := mustSeq(t, 0, "t0", []byte(strings.Repeat("A", 50)), nil)
	g := Build([]*seqstore.Sequence{target}, 100, 0, TypeNGS)
	g.TargetWindows(0)[0].AddLayer([]byte(strings.Repeat("A", 50)), nil, 0, 50)
	g.TargetWindows(0)[0].GenerateConsensus(testEngine(), false)

	out := g.StitchDefault([]string{"t0"}, true, false)
	name := out[0].Name
	if !strings.HasPrefix(name, "t0r LN:i:") {
		t.Fatalf("name = %q, want prefix %q", name, "t0r LN:i:")
	}
	if !strings.Contains(name, "RC:i:") || !strings.Contains(name, "XC:f:") {
		t.Fatalf("name = %q missing RC:i:/XC:f: tags", name)
	}
	lnIdx := strings.Index(name, "LN:i:")
	rcIdx := strings.Index(name, "RC:i:")
	xcIdx := strings.Index(name, "XC:f:")
	if !(lnIdx < rcIdx && rcIdx < xcIdx) {
		t.Fatalf("tag order wrong in %q", name)
	}
}

func TestStitchOverlapMergesSharedMargin(t *testing.T) {
	// A 20-base all-A target with window length 10 and overlap 0.2 gives two
	// windows whose margins overlap; stitching their unpolished consensuses
	// yields one non-empty record.
	target := mustSeq(t, 0, "t0", []byte(strings.Repeat("A", 20)), nil)
	g := Build([]*seqstore.Sequence{target}, 10, 0.2, TypeNGS)
	if len(g.TargetWindows(0)) < 2 {
		t.Skip("grid did not produce at least two windows for this target size")
	}
	windows := g.TargetWindows(0)
	for _, w := range windows {
		w.GenerateConsensus(testEngine(), false)
	}
	out := g.StitchOverlap([]string{"t0"}, false, false, align.Scores{Match: 2, Mismatch: -1, Gap: -2})
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1", len(out))
	}
	if len(out[0].Data) == 0 {
		t.Fatal("expected non-empty stitched output")
	}
}
