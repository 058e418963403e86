/*
	Copyright 2023 Google Inc.

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

		https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package batch answers many completion queries against one built trie.
//
// Queries are grouped into batches which travel through a pipeline: one
// producer slices the prefix list, a concurrent stage completes each batch,
// and a final stage records the results.  A built prefixtree.Trie is never
// mutated, so the completion stage needs no locking.
package batch

import (
	"fmt"
	"sort"

	"github.com/google/go-prefixtree/pkg/metrics"
	"github.com/google/go-prefixtree/pkg/pipeline"
	"github.com/google/go-prefixtree/prefixtree"
)

// Mode selects how queries are executed.
type Mode string

const (
	// Serial completes queries on the calling goroutine.
	Serial Mode = "serial"
	// Concurrent completes batches in parallel.
	Concurrent Mode = "concurrent"
)

// Options configures a batch run.
type Options struct {
	Mode            Mode
	Concurrency     uint
	BatchSize       int
	InputBufferSize uint
	// Metrics, if set, observes every query.
	Metrics *metrics.Metrics
}

// DefaultOptions returns concurrent execution with two workers.
func DefaultOptions() Options {
	return Options{
		Mode:            Concurrent,
		Concurrency:     2,
		BatchSize:       500,
		InputBufferSize: 1,
	}
}

func (o Options) validate() error {
	switch o.Mode {
	case Serial, Concurrent:
	default:
		return fmt.Errorf("unsupported mode %q", o.Mode)
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	return nil
}

// Result is the completion list of one query prefix.
type Result struct {
	// Index is the prefix's position in the input.
	Index  int      `json:"index" yaml:"index"`
	Prefix string   `json:"prefix" yaml:"prefix"`
	Found  bool     `json:"found" yaml:"found"`
	Words  []string `json:"words,omitempty" yaml:"words,omitempty"`
}

// work is a slice of the results being filled in.
type work struct {
	results []Result
}

// completeOne fills in r from t.  Words are sorted so output is stable.
func completeOne(t *prefixtree.Trie, r *Result, m *metrics.Metrics) {
	words, ok := t.CompleteWords(r.Prefix)
	sort.Strings(words)
	r.Found, r.Words = ok, words
	m.ObserveCompletion(len(words), ok)
}

// Complete runs every prefix against t and returns the results in input
// order.
func Complete(t *prefixtree.Trie, prefixes []string, opts Options) ([]Result, error) {
	results, _, err := run(t, prefixes, opts, false)
	return results, err
}

// Measure is like Complete in Concurrent mode, but also reports how long
// each pipeline stage spent working.
func Measure(t *prefixtree.Trie, prefixes []string, opts Options) ([]Result, *pipeline.Metrics, error) {
	opts.Mode = Concurrent
	return run(t, prefixes, opts, true)
}

func run(t *prefixtree.Trie, prefixes []string, opts Options, measure bool) ([]Result, *pipeline.Metrics, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("no trie to complete against")
	}
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	results := make([]Result, len(prefixes))
	for i, p := range prefixes {
		results[i] = Result{Index: i, Prefix: p}
	}
	if opts.Mode == Serial {
		for i := range results {
			completeOne(t, &results[i], opts.Metrics)
		}
		return results, nil, nil
	}

	concurrency := max(opts.Concurrency, 1)
	bufSize := max(opts.InputBufferSize, 1)
	producer := pipeline.NewProducer(func(put func(*work)) error {
		for i := 0; i < len(results); i += opts.BatchSize {
			end := min(i+opts.BatchSize, len(results))
			// Batches cover disjoint ranges of results, so stages may
			// write to them without synchronization.
			put(&work{results: results[i:end]})
		}
		return nil
	}, pipeline.Name("batch production"))
	completeStage := pipeline.NewStage(func(in *work) (*work, error) {
		for i := range in.results {
			completeOne(t, &in.results[i], opts.Metrics)
		}
		return in, nil
	}, pipeline.Name("complete"), pipeline.Concurrency(concurrency), pipeline.InputBufferSize(bufSize))
	done := 0
	countStage := pipeline.NewStage(func(in *work) (*work, error) {
		done += len(in.results)
		return in, nil
	}, pipeline.Name("count"), pipeline.InputBufferSize(bufSize))

	var pm *pipeline.Metrics
	var err error
	if measure {
		pm, err = pipeline.Measure(producer, completeStage, countStage)
	} else {
		err = pipeline.Do(producer, completeStage, countStage)
	}
	if err != nil {
		return nil, pm, err
	}
	if done != len(results) {
		return nil, pm, fmt.Errorf("completed %d of %d queries", done, len(results))
	}
	return results, pm, nil
}
