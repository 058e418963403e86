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

// Package pipeline runs linear, work-decomposed pipelines: a producer
// originates work items and each following stage works on them in turn.
//
// Stages may run several instances concurrently (Concurrency) and buffer
// their input (InputBufferSize).  Do runs a pipeline in parallel, Measure
// additionally reports how long each stage instance spent working, and
// SequentialDo runs every item through every stage on the calling goroutine.
//
// In this module the pipeline carries batches of completion queries against
// a built prefixtree.Trie, which is safe for concurrent reads.
package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var log = logrus.WithField("component", "pipeline")

// ProducerFn prepares work items and places them into the pipeline with
// put.  Production is complete when it returns; a non-nil error terminates
// the pipeline.
type ProducerFn[T any] func(put func(T)) error

// StageFn works on one item and returns it, or another T reflecting the
// work done.  A non-nil error terminates the pipeline.
type StageFn[T any] func(in T) (out T, err error)

// StageOptionFn configures a Producer or Stage.
type StageOptionFn func(so *stageOptions) error

type stageOptions struct {
	name            string
	concurrency     uint
	inputBufferSize uint
	clock           clock.Clock
}

// Name names a Producer or Stage in logs and metrics.  Defaults to
// "stage N", with the producer as stage 0.
func Name(name string) StageOptionFn {
	return func(so *stageOptions) error {
		so.name = name
		return nil
	}
}

// Concurrency sets the number of goroutines running a Stage.  Defaults to 1.
// Producers always run on a single goroutine.
func Concurrency(concurrency uint) StageOptionFn {
	return func(so *stageOptions) error {
		if concurrency == 0 {
			return fmt.Errorf("concurrency must be at least 1")
		}
		so.concurrency = concurrency
		return nil
	}
}

// InputBufferSize sets how many items may wait at a Stage's input.
// Defaults to 1; has no effect on Producers.
func InputBufferSize(size uint) StageOptionFn {
	return func(so *stageOptions) error {
		if size == 0 {
			return fmt.Errorf("input buffer size must be at least 1")
		}
		so.inputBufferSize = size
		return nil
	}
}

// WithClock sets the clock Measure reads.  Defaults to the wall clock.
func WithClock(c clock.Clock) StageOptionFn {
	return func(so *stageOptions) error {
		if c == nil {
			return fmt.Errorf("clock must not be nil")
		}
		so.clock = c
		return nil
	}
}

func buildStageOptions(index int, fns ...StageOptionFn) (*stageOptions, error) {
	so := &stageOptions{
		concurrency:     1,
		inputBufferSize: 1,
		clock:           clock.New(),
	}
	for _, fn := range fns {
		if err := fn(so); err != nil {
			return nil, err
		}
	}
	if so.name == "" {
		so.name = fmt.Sprintf("stage %d", index)
	}
	return so, nil
}

// Producer is a pipeline's initial stage.
type Producer[T any] struct {
	fn   ProducerFn[T]
	opts []StageOptionFn
}

// NewProducer defines the initial stage of a pipeline.
func NewProducer[T any](fn ProducerFn[T], opts ...StageOptionFn) Producer[T] {
	return Producer[T]{fn: fn, opts: opts}
}

// Stage is an intermediate or final stage of a pipeline.
type Stage[T any] struct {
	fn   StageFn[T]
	opts []StageOptionFn
}

// NewStage defines a stage working on items of type T.
func NewStage[T any](fn StageFn[T], opts ...StageOptionFn) Stage[T] {
	return Stage[T]{fn: fn, opts: opts}
}

// StageMetrics reports the work done by one instance of a stage.
// WorkDuration counts only time spent in the stage function; StageDuration
// also counts time blocked on the pipeline's channels.
type StageMetrics struct {
	StageName                   string
	StageInstance               uint
	Items                       uint
	WorkDuration, StageDuration time.Duration
}

func (sm *StageMetrics) label() string {
	return fmt.Sprintf("%s (%d)", sm.StageName, sm.StageInstance)
}

func (sm *StageMetrics) row(width int) string {
	if sm.Items == 0 {
		return fmt.Sprintf("%-*s: 0 items, total %s, work %s", width, sm.label(), sm.StageDuration, sm.WorkDuration)
	}
	n := time.Duration(sm.Items)
	return fmt.Sprintf("%-*s: %d items, total %s (%s/item), work %s (%s/item)",
		width, sm.label(), sm.Items,
		sm.StageDuration, sm.StageDuration/n,
		sm.WorkDuration, sm.WorkDuration/n)
}

// Metrics reports the work done by a whole pipeline.
type Metrics struct {
	WallDuration    time.Duration
	ProducerMetrics *StageMetrics
	StageMetrics    [][]*StageMetrics
}

func (m *Metrics) String() string {
	if m == nil {
		return ""
	}
	all := []*StageMetrics{m.ProducerMetrics}
	for _, sms := range m.StageMetrics {
		all = append(all, sms...)
	}
	width := 0
	for _, sm := range all {
		width = max(width, len(sm.label()))
	}
	lines := []string{fmt.Sprintf("Pipeline wall time: %s", m.WallDuration)}
	for _, sm := range all {
		lines = append(lines, "  "+sm.row(width))
	}
	return strings.Join(lines, "\n")
}

// worker is a resolved producer or stage, wired to its neighbours.
type worker[T any] struct {
	opts  *stageOptions
	stage StageFn[T]
	// produce is set only for the producer.
	produce ProducerFn[T]
	in      chan T
	// out is nil for the last stage.
	out chan<- T
}

func (w *worker[T]) send(item T) {
	if w.out != nil {
		w.out <- item
	}
}

// drain discards remaining input so upstream instances can exit.
func (w *worker[T]) drain() {
	if w.in == nil {
		return
	}
	for range w.in {
	}
}

// closer returns a function closing w's output once every instance of w
// has called it.
func (w *worker[T]) closer() func() {
	var mu sync.Mutex
	remaining := w.opts.concurrency
	return func() {
		mu.Lock()
		defer mu.Unlock()
		remaining--
		if remaining == 0 && w.out != nil {
			close(w.out)
		}
	}
}

// run processes input until it is exhausted or fn fails.
func (w *worker[T]) run(sm *StageMetrics) error {
	clk := w.opts.clock
	start := clk.Now()
	defer func() {
		if sm != nil {
			sm.StageDuration = clk.Since(start)
		}
	}()
	if w.produce != nil {
		return w.produce(func(item T) {
			if sm != nil {
				sm.Items++
			}
			w.send(item)
		})
	}
	for in := range w.in {
		workStart := clk.Now()
		out, err := w.stage(in)
		if sm != nil {
			sm.WorkDuration += clk.Since(workStart)
		}
		if err != nil {
			return err
		}
		if sm != nil {
			sm.Items++
		}
		w.send(out)
	}
	return nil
}

type pipeline[T any] struct {
	workers []*worker[T]
	clock   clock.Clock
}

func newPipeline[T any](p Producer[T], stages ...Stage[T]) (*pipeline[T], error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline must have a producer and at least one stage")
	}
	opts, err := buildStageOptions(0, p.opts...)
	if err != nil {
		return nil, err
	}
	opts.concurrency = 1
	ret := &pipeline[T]{
		workers: []*worker[T]{{opts: opts, produce: p.fn}},
		clock:   opts.clock,
	}
	for i, s := range stages {
		opts, err := buildStageOptions(i+1, s.opts...)
		if err != nil {
			return nil, err
		}
		w := &worker[T]{
			opts:  opts,
			stage: s.fn,
			in:    make(chan T, opts.inputBufferSize),
		}
		ret.workers[len(ret.workers)-1].out = w.in
		ret.workers = append(ret.workers, w)
	}
	return ret, nil
}

// start launches every instance of every worker on eg.  If metrics is
// true, the returned slices hold one StageMetrics per instance, and must
// not be read until eg.Wait returns.
func (p *pipeline[T]) start(eg *errgroup.Group, metrics bool) [][]*StageMetrics {
	ret := make([][]*StageMetrics, len(p.workers))
	for wi, w := range p.workers {
		closeOut := w.closer()
		ret[wi] = make([]*StageMetrics, w.opts.concurrency)
		for i := uint(0); i < w.opts.concurrency; i++ {
			var sm *StageMetrics
			if metrics {
				sm = &StageMetrics{StageName: w.opts.name, StageInstance: i}
				ret[wi][i] = sm
			}
			w := w
			eg.Go(func() error {
				err := w.run(sm)
				if err != nil {
					log.WithError(err).Debugf("%s failed", w.opts.name)
				}
				closeOut()
				w.drain()
				return err
			})
		}
	}
	return ret
}

// Do runs the pipeline defined by p and stages in parallel, returning the
// first error any of them yields.
func Do[T any](p Producer[T], stages ...Stage[T]) error {
	pl, err := newPipeline(p, stages...)
	if err != nil {
		return err
	}
	var eg errgroup.Group
	pl.start(&eg, false)
	return eg.Wait()
}

// Measure is like Do, but also reports per-instance metrics.  Metrics are
// returned even when the pipeline fails.
func Measure[T any](p Producer[T], stages ...Stage[T]) (*Metrics, error) {
	pl, err := newPipeline(p, stages...)
	if err != nil {
		return nil, err
	}
	start := pl.clock.Now()
	var eg errgroup.Group
	sms := pl.start(&eg, true)
	err = eg.Wait()
	return &Metrics{
		WallDuration:    pl.clock.Since(start),
		ProducerMetrics: sms[0][0],
		StageMetrics:    sms[1:],
	}, err
}

// SequentialDo is like Do, but runs each produced item through every stage
// on the calling goroutine.  Concurrency and buffering are ignored.
func SequentialDo[T any](p Producer[T], stages ...Stage[T]) error {
	pl, err := newPipeline(p, stages...)
	if err != nil {
		return err
	}
	var stageErr error
	prodErr := pl.workers[0].produce(func(item T) {
		if stageErr != nil {
			return
		}
		for _, w := range pl.workers[1:] {
			if item, stageErr = w.stage(item); stageErr != nil {
				return
			}
		}
	})
	if prodErr != nil {
		return prodErr
	}
	return stageErr
}
