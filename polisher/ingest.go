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

package polisher

import "github.com/seqpolish/polish/ovlp"

// ingestState names the states of §4.4.3's overlap ingestion state machine:
// Reading (a chunk just arrived), Grouping (accumulating one q_id run),
// Filtering (dedup/error-filter a group once its q_id run closes), and
// Compacting (the rejected slots are simply never appended to retained).
type ingestState int

const (
	stateReading ingestState = iota
	stateGrouping
	stateFiltering
	stateCompacting
)

// ingestor groups consecutive overlap records by q_id — the input is
// assumed pre-sorted, so a group boundary is just a q_id change — and
// filters each completed group as it closes.
type ingestor struct {
	cfg       Config
	state     ingestState
	group     []ovlp.Overlap
	groupQID  int
	haveGroup bool
	retained  []ovlp.Overlap
}

func newIngestor(cfg Config) *ingestor {
	return &ingestor{cfg: cfg, state: stateReading}
}

// push feeds one transmuted, already-valid overlap record into the current
// q_id group, flushing the previous group first if q_id changed.
func (ig *ingestor) push(o ovlp.Overlap) {
	ig.state = stateReading
	if ig.haveGroup && o.QID != ig.groupQID {
		ig.flush()
	}
	ig.state = stateGrouping
	ig.group = append(ig.group, o)
	ig.groupQID = o.QID
	ig.haveGroup = true
}

// flush filters the current group and appends the survivors to retained.
// Called on every q_id change and once more, by the caller, at parser EOF.
func (ig *ingestor) flush() {
	if !ig.haveGroup {
		return
	}
	ig.state = stateFiltering
	kept := filterGroup(ig.group, ig.cfg)
	ig.state = stateCompacting
	ig.retained = append(ig.retained, kept...)
	ig.group = ig.group[:0]
	ig.haveGroup = false
}

// filterGroup drops self-overlaps and overlaps whose error exceeds
// ErrorThreshold, then, in TypeConsensus mode, keeps only the longest
// survivor — a single linear max-pass rather than the original's O(n^2)
// pairwise dedup, since the spec only requires exactly one survivor.
func filterGroup(group []ovlp.Overlap, cfg Config) []ovlp.Overlap {
	var kept []ovlp.Overlap
	for _, o := range group {
		if o.QID == o.TID {
			continue
		}
		rate, err := ovlp.ErrorRate(&o)
		if err != nil || rate > cfg.ErrorThreshold {
			continue
		}
		kept = append(kept, o)
	}
	if cfg.Type == TypeConsensus && len(kept) > 1 {
		best := kept[0]
		for _, o := range kept[1:] {
			if o.Length() > best.Length() {
				best = o
			}
		}
		kept = []ovlp.Overlap{best}
	}
	return kept
}
