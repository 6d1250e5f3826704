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

// Package wpool is the fixed-size worker pool that runs every window's POA
// consensus. It is deliberately not grailbio/base/traverse.Each: each task
// needs a private, reusable align.Engine scratch buffer, and the pool's
// redesign (per spec §9 design notes) hands that buffer to a task through a
// channel-based checkout rather than through a thread-identifier lookup
// table, so there's no "thread identifier not present" failure mode at all.
package wpool

import (
	"sync"

	"github.com/grailbio/base/errors"

	"github.com/seqpolish/polish/align"
)

// Future is the result of one Submit call.
type Future struct {
	done chan struct{}
	err  error
	ok   bool
}

// Wait blocks until the task completes and returns whatever it returned.
func (f *Future) Wait() (bool, error) {
	<-f.done
	return f.ok, f.err
}

type job struct {
	fn  func(engine *align.Engine) (bool, error)
	fut *Future
}

// Pool is a fixed set of goroutines draining a shared task queue. Each task
// checks out one of numWorkers pre-allocated alignment engines for its
// duration, so at most numWorkers engines ever exist regardless of how many
// tasks are submitted.
type Pool struct {
	tasks   chan job
	engines chan *align.Engine
	wg      sync.WaitGroup
}

// New starts a pool of numWorkers goroutines, each with access to a shared
// bank of numWorkers align.Engines pre-allocated for capacity bases. band,
// when positive, caps every engine to a diagonal band of that half-width —
// the TGS pruning hint, set globally since window_type is decided once for
// the whole run.
func New(numWorkers int, scores align.Scores, capacity, band int) *Pool {
	p := &Pool{
		tasks:   make(chan job, numWorkers*4),
		engines: make(chan *align.Engine, numWorkers),
	}
	for i := 0; i < numWorkers; i++ {
		engine := align.NewEngine(scores, capacity)
		if band > 0 {
			engine.SetBand(band)
		}
		p.engines <- engine
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for j := range p.tasks {
		engine := <-p.engines
		ok, err := j.fn(engine)
		p.engines <- engine
		j.fut.ok, j.fut.err = ok, err
		close(j.fut.done)
	}
}

// Submit enqueues fn and returns a Future for its result. fn receives the
// engine checked out for its duration; it must not retain the pointer past
// its own return.
func (p *Pool) Submit(fn func(engine *align.Engine) (bool, error)) *Future {
	fut := &Future{done: make(chan struct{})}
	p.tasks <- job{fn: fn, fut: fut}
	return fut
}

// WaitAll blocks on every future in order and aggregates the first error
// encountered, in the idiom of errors.Once.
func WaitAll(futures []*Future) ([]bool, error) {
	results := make([]bool, len(futures))
	var once errors.Once
	for i, f := range futures {
		ok, err := f.Wait()
		results[i] = ok
		once.Set(err)
	}
	return results, once.Err()
}

// Shutdown closes the task queue and waits for every worker to drain it.
// No further Submit calls are valid afterward.
func (p *Pool) Shutdown() {
	close(p.tasks)
	p.wg.Wait()
}
