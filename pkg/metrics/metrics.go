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

// Package metrics instruments trie builds and completion queries.
package metrics

import (
	"io"
	"time"

	"github.com/google/go-prefixtree/prefixtree"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "prefixtree"

// Metrics holds the collectors New registers.
type Metrics struct {
	BuildDuration  prometheus.Histogram
	WordsInserted  prometheus.Counter
	Splits         prometheus.Counter
	Nodes          *prometheus.GaugeVec
	Completions    *prometheus.CounterVec
	CompletionSize prometheus.Histogram
}

// New creates the collectors and registers them with reg.  A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent building a trie",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		WordsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_inserted_total",
			Help:      "Words inserted into built tries",
		}),
		Splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_splits_total",
			Help:      "Prefix nodes spliced above existing nodes during builds",
		}),
		Nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes in the most recently built trie, by kind",
		}, []string{"kind"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Completion queries, by result",
		}, []string{"result"}),
		CompletionSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_size",
			Help:      "Words returned by successful completion queries",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.BuildDuration, m.WordsInserted, m.Splits, m.Nodes, m.Completions, m.CompletionSize)
	}
	return m
}

// ObserveBuild records a finished build.
func (m *Metrics) ObserveBuild(st prefixtree.Stats, d time.Duration) {
	if m == nil {
		return
	}
	m.BuildDuration.Observe(d.Seconds())
	m.WordsInserted.Add(float64(st.Words))
	m.Splits.Add(float64(st.Splits))
	m.Nodes.WithLabelValues("prefix").Set(float64(st.PrefixNodes))
	m.Nodes.WithLabelValues("leaf").Set(float64(st.Leaves))
}

// ObserveCompletion records one completion query returning n words.
func (m *Metrics) ObserveCompletion(n int, found bool) {
	if m == nil {
		return
	}
	if !found {
		m.Completions.WithLabelValues("miss").Inc()
		return
	}
	m.Completions.WithLabelValues("hit").Inc()
	m.CompletionSize.Observe(float64(n))
}

// Dump writes everything g gathers to w in the text exposition format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Families returns the names of the metric families g gathers.
func Families(g prometheus.Gatherer) ([]string, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, err
	}
	return names(mfs), nil
}

func names(mfs []*dto.MetricFamily) []string {
	ret := make([]string, len(mfs))
	for i, mf := range mfs {
		ret[i] = mf.GetName()
	}
	return ret
}
