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

import (
	"context"

	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"

	"github.com/seqpolish/polish/align"
	"github.com/seqpolish/polish/ioformats"
	"github.com/seqpolish/polish/ovlp"
	"github.com/seqpolish/polish/seqstore"
	"github.com/seqpolish/polish/window"
	"github.com/seqpolish/polish/wpool"
)

// chunkBytes is the ~1 GiB streaming granularity §4.1/§4.4.1 specify for
// both query and overlap ingestion.
const chunkBytes = 1 << 30

// tgsMeanLengthThreshold is the mean-query-length cutoff (inclusive on the
// NGS side) that sets window_type, per §4.3.
const tgsMeanLengthThreshold = 1000

// Polisher drives initialize()/polish() against one target/query/overlap
// triple. Construct with New, call Initialize once, then Polish.
type Polisher struct {
	cfg   Config
	store *seqstore.Store

	overlaps []ovlp.Overlap
	grid     *window.Grid
	names    []string
	band     int
}

// New constructs a Polisher for cfg.
func New(cfg Config) *Polisher {
	return &Polisher{cfg: cfg, store: seqstore.New()}
}

// Initialize runs the ingest/filter/window procedure of §4.4.1: load
// targets, stream and dedup queries, stream and filter overlaps, compute
// breaking points, build the window grid, and distribute layers.
func (p *Polisher) Initialize(ctx context.Context, targetPath, queryPath, overlapPath string) error {
	if p.cfg.WindowLength <= 0 {
		return errors.New("polisher: window_length must be positive")
	}
	if p.cfg.OverlapPercentage < 0 || p.cfg.OverlapPercentage >= 0.5 {
		return errors.New("polisher: overlap_percentage must be in [0, 0.5)")
	}

	targetReader, err := ioformats.OpenSequenceReader(ctx, targetPath)
	if err != nil {
		return err
	}
	if err := targetReader.Reset(); err != nil {
		return err
	}
	if err := p.store.IngestTargets(targetReader); err != nil {
		return err
	}

	queryReader, err := ioformats.OpenSequenceReader(ctx, queryPath)
	if err != nil {
		return err
	}
	if err := queryReader.Reset(); err != nil {
		return err
	}
	if err := p.store.IngestQueries(queryReader, chunkBytes); err != nil {
		return err
	}

	wtype := window.TypeNGS
	if p.store.MeanQueryLength() > tgsMeanLengthThreshold {
		wtype = window.TypeTGS
	}
	p.band = 0
	if wtype == window.TypeTGS {
		p.band = window.TGSBand
	}

	if err := p.ingestOverlaps(ctx, overlapPath); err != nil {
		return err
	}

	for i := range p.overlaps {
		o := &p.overlaps[i]
		p.store.Sequence(o.QID).MarkNeeded(o.Strand == ovlp.StrandReverse)
	}
	p.store.MaterialiseStrands()

	if err := traverse.Each(len(p.overlaps), func(i int) error {
		return ovlp.FindBreakingPoints(&p.overlaps[i], p.cfg.WindowLength, p.cfg.OverlapPercentage)
	}); err != nil {
		return err
	}

	targets := p.store.Targets()
	p.names = make([]string, len(targets))
	for i, t := range targets {
		p.names[i] = t.Name()
	}
	p.grid = window.Build(targets, p.cfg.WindowLength, p.cfg.OverlapPercentage, wtype)

	ptrs := make([]*ovlp.Overlap, len(p.overlaps))
	for i := range p.overlaps {
		ptrs[i] = &p.overlaps[i]
	}
	p.grid.Distribute(ptrs, func(qID int) *seqstore.Sequence { return p.store.Sequence(qID) }, p.cfg.QualityThreshold)

	for i := range p.overlaps {
		p.overlaps[i].Reset()
	}
	return nil
}

// ingestOverlaps streams overlapPath in chunks, transmutes each record
// against the store's name table, drops invalid or unresolvable ones, and
// runs the remainder through the §4.4.3 grouping/filtering state machine.
// An overlap file with zero records at all is an input-semantics fatal
// error; an overlap file whose records are all later rejected by filtering
// is not — that is the ordinary "dropped for error" path §7 calls out as
// non-fatal.
func (p *Polisher) ingestOverlaps(ctx context.Context, overlapPath string) error {
	reader, err := ioformats.OpenOverlapReader(ctx, overlapPath)
	if err != nil {
		return err
	}
	if err := reader.Reset(); err != nil {
		return err
	}

	ig := newIngestor(p.cfg)
	sawAny := false
	for {
		var recs []ioformats.OverlapRecord
		more, err := reader.Parse(&recs, chunkBytes)
		if err != nil {
			return errors.Wrap(err, "polisher: reading overlaps")
		}
		for _, rec := range recs {
			sawAny = true
			qID, qOK := p.store.Resolve(rec.QName)
			tID, tOK := p.store.Resolve(rec.TName)
			if !qOK || !tOK {
				continue
			}
			o := ovlp.FromRecord(rec, qID, tID)
			if err := o.IsValid(); err != nil {
				continue
			}
			ig.push(o)
		}
		if !more {
			break
		}
	}
	ig.flush()
	if !sawAny {
		return errors.New("polisher: empty overlap set")
	}
	p.overlaps = ig.retained
	return nil
}

// engineCapacity sizes the worker pool's alignment engines for the widest
// backbone any window can have: the window length plus a margin on each
// side when overlap-stitch mode extends non-first windows.
func (p *Polisher) engineCapacity() int {
	margin := int(float64(p.cfg.WindowLength) * p.cfg.OverlapPercentage)
	return 2*(p.cfg.WindowLength+2*margin) + 16
}

// WindowCount returns the number of windows generate_consensus will run
// over, so a caller can size a progress indicator before calling Polish.
func (p *Polisher) WindowCount() int { return len(p.grid.Windows()) }

// Polish submits every window's generate_consensus to the work pool,
// consumes results in window order, and stitches each target's windows back
// together per §4.4.2, in default or overlap-stitch mode depending on
// overlap_percentage. onWindowDone, if non-nil, is called once per window as
// its consensus completes (in completion order, not window order) — the CLI
// uses it to drive an mpb progress bar; library callers may pass nil.
func (p *Polisher) Polish(dropUnpolished bool, onWindowDone func()) ([]window.Polished, error) {
	pool := wpool.New(p.cfg.NumThreads, p.cfg.scores(), p.engineCapacity(), p.band)
	defer pool.Shutdown()

	windows := p.grid.Windows()
	futures := make([]*wpool.Future, len(windows))
	for i, w := range windows {
		w := w
		futures[i] = pool.Submit(func(engine *align.Engine) (bool, error) {
			polished := w.GenerateConsensus(engine, p.cfg.Trim)
			if onWindowDone != nil {
				onWindowDone()
			}
			return polished, nil
		})
	}
	if _, err := wpool.WaitAll(futures); err != nil {
		return nil, err
	}

	if p.cfg.OverlapPercentage == 0 {
		return p.grid.StitchDefault(p.names, p.cfg.Type == TypeFragment, dropUnpolished), nil
	}
	return p.grid.StitchOverlap(p.names, p.cfg.Type == TypeFragment, dropUnpolished, p.cfg.scores()), nil
}

// Stats reports, for every target in input order, the count of retained
// overlaps whose t_id is that target (targets_coverage, per §4.4.1).
func (p *Polisher) Stats() []int { return p.grid.Coverage() }
