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

package wpool

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/seqpolish/polish/align"
)

func testScores() align.Scores { return align.Scores{Match: 2, Mismatch: -1, Gap: -2} }

func TestPoolRunsAllTasks(t *testing.T) {
	p := New(4, testScores(), 16, 0)
	defer p.Shutdown()

	const n = 50
	futures := make([]*Future, n)
	for i := 0; i < n; i++ {
		futures[i] = p.Submit(func(engine *align.Engine) (bool, error) {
			aln := engine.Align(align.Global, []byte("ACGT"), []byte("ACGT"))
			return aln.Score == 8, nil
		})
	}
	results, err := WaitAll(futures)
	if err != nil {
		t.Fatalf("WaitAll: %v", err)
	}
	for i, ok := range results {
		if !ok {
			t.Fatalf("task %d returned ok=false", i)
		}
	}
}

func TestPoolAggregatesFirstError(t *testing.T) {
	p := New(2, testScores(), 16, 0)
	defer p.Shutdown()

	want := errors.New("boom")
	futures := []*Future{
		p.Submit(func(engine *align.Engine) (bool, error) { return true, nil }),
		p.Submit(func(engine *align.Engine) (bool, error) { return false, want }),
	}
	_, err := WaitAll(futures)
	if err == nil {
		t.Fatal("expected an error from WaitAll")
	}
}

func TestPoolEnginesAreReusedNotShared(t *testing.T) {
	p := New(1, testScores(), 4, 0)
	defer p.Shutdown()

	// With a single worker, sequential tasks of growing size must not
	// corrupt each other's results even though they share one engine.
	f1 := p.Submit(func(engine *align.Engine) (bool, error) {
		aln := engine.Align(align.Global, []byte("AC"), []byte("AC"))
		return aln.Score == 4, nil
	})
	f2 := p.Submit(func(engine *align.Engine) (bool, error) {
		aln := engine.Align(align.Global, []byte("ACGTACGT"), []byte("ACGTACGT"))
		return aln.Score == 16, nil
	})
	if ok, err := f1.Wait(); err != nil || !ok {
		t.Fatalf("f1: ok=%v err=%v", ok, err)
	}
	if ok, err := f2.Wait(); err != nil || !ok {
		t.Fatalf("f2: ok=%v err=%v", ok, err)
	}
}
