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

package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
)

type query struct {
	prefix string
	hits   []string
}

func QueryProducer(prefixes ...string) Producer[*query] {
	return NewProducer(func(put func(*query)) error {
		for _, p := range prefixes {
			put(&query{prefix: p})
		}
		return nil
	}, Name("queries"))
}

var dictionary = []string{"bear", "bell", "bull", "stock", "stop"}

// Scan is a stand-in for a trie lookup.
var Scan = NewStage(func(in *query) (*query, error) {
	for _, w := range dictionary {
		if strings.HasPrefix(w, in.prefix) {
			in.hits = append(in.hits, w)
		}
	}
	return in, nil
}, Name("scan"), Concurrency(3), InputBufferSize(4))

func Collect(mu *sync.Mutex, got map[string][]string) Stage[*query] {
	return NewStage(func(in *query) (*query, error) {
		mu.Lock()
		defer mu.Unlock()
		got[in.prefix] = in.hits
		return in, nil
	}, Name("collect"))
}

func FailOn(prefix string) Stage[*query] {
	return NewStage(func(in *query) (*query, error) {
		if in.prefix == prefix {
			return in, fmt.Errorf("no completions for %q", prefix)
		}
		return in, nil
	}, Name("fail"))
}

func TestPipeline(t *testing.T) {
	for _, test := range []struct {
		description string
		invoke      func(stages ...Stage[*query]) error
	}{{
		description: "Do()",
		invoke: func(stages ...Stage[*query]) error {
			return Do(QueryProducer("b", "be", "st", "x"), stages...)
		},
	}, {
		description: "Measure()",
		invoke: func(stages ...Stage[*query]) error {
			m, err := Measure(QueryProducer("b", "be", "st", "x"), stages...)
			if err != nil {
				return err
			}
			if m.ProducerMetrics.Items != 4 {
				return fmt.Errorf("%d items produced, expected 4", m.ProducerMetrics.Items)
			}
			for _, sms := range m.StageMetrics {
				var items uint
				for _, sm := range sms {
					items += sm.Items
				}
				if items != 4 {
					return fmt.Errorf("stage %s processed %d items, expected 4", sms[0].StageName, items)
				}
			}
			if len(m.StageMetrics[0]) != 3 {
				return fmt.Errorf("scan ran %d instances, expected 3", len(m.StageMetrics[0]))
			}
			return nil
		},
	}, {
		description: "SequentialDo()",
		invoke: func(stages ...Stage[*query]) error {
			return SequentialDo(QueryProducer("b", "be", "st", "x"), stages...)
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			var mu sync.Mutex
			got := map[string][]string{}
			if err := test.invoke(Scan, Collect(&mu, got)); err != nil {
				t.Fatalf("pipeline yielded %v, wanted nil", err)
			}
			for _, hits := range got {
				sort.Strings(hits)
			}
			want := map[string][]string{
				"b":  {"bear", "bell", "bull"},
				"be": {"bear", "bell"},
				"st": {"stock", "stop"},
				"x":  nil,
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("pipeline produced %v, diff (-want +got) %s", got, diff)
			}
		})
	}
}

func TestPipelineError(t *testing.T) {
	for _, test := range []struct {
		description string
		run         func(p Producer[*query], stages ...Stage[*query]) error
	}{
		{"Do()", Do[*query]},
		{"SequentialDo()", SequentialDo[*query]},
		{"Measure()", func(p Producer[*query], stages ...Stage[*query]) error {
			_, err := Measure(p, stages...)
			return err
		}},
	} {
		t.Run(test.description, func(t *testing.T) {
			after := 0
			err := test.run(
				QueryProducer("a", "b", "c", "d", "e"),
				FailOn("c"),
				NewStage(func(in *query) (*query, error) {
					after++
					return in, nil
				}))
			if err == nil {
				t.Errorf("pipeline yielded nil, wanted an error")
			}
			if after != 2 {
				t.Errorf("%d items passed the failing stage, wanted 2", after)
			}
		})
	}
}

func TestProducerError(t *testing.T) {
	m, err := Measure(
		NewProducer(func(put func(string)) error {
			put("be")
			put("bu")
			return fmt.Errorf("dictionary truncated")
		}),
		NewStage(func(in string) (string, error) { return in, nil }),
	)
	if err == nil {
		t.Errorf("Measure() yielded nil, wanted an error")
	}
	if m.ProducerMetrics.Items != 2 {
		t.Errorf("produced %d items, wanted 2", m.ProducerMetrics.Items)
	}
	if m.ProducerMetrics.StageName != "stage 0" || m.StageMetrics[0][0].StageName != "stage 1" {
		t.Errorf("default names are %q and %q", m.ProducerMetrics.StageName, m.StageMetrics[0][0].StageName)
	}
}

func TestMeasureWithClock(t *testing.T) {
	mock := clock.NewMock()
	m, err := Measure(
		NewProducer(func(put func(int)) error {
			for i := 0; i < 3; i++ {
				put(i)
			}
			return nil
		}, Name("numbers"), WithClock(mock)),
		NewStage(func(in int) (int, error) {
			mock.Add(time.Second)
			return in, nil
		}, Name("tick"), WithClock(mock)),
	)
	if err != nil {
		t.Fatalf("Measure() yielded %v, wanted nil", err)
	}
	tick := m.StageMetrics[0][0]
	if tick.Items != 3 || tick.WorkDuration != 3*time.Second {
		t.Errorf("tick stage did %d items in %s, wanted 3 in 3s", tick.Items, tick.WorkDuration)
	}
	if m.WallDuration != 3*time.Second {
		t.Errorf("wall time %s, wanted 3s", m.WallDuration)
	}
	report := m.String()
	for _, want := range []string{"Pipeline wall time: 3s", "numbers (0)", "tick (0)   : 3 items, total 3s (1s/item), work 3s (1s/item)"} {
		if !strings.Contains(report, want) {
			t.Errorf("report %q lacks %q", report, want)
		}
	}
}

func TestOptions(t *testing.T) {
	pass := NewStage(func(in int) (int, error) { return in, nil })
	for _, test := range []struct {
		description string
		opt         StageOptionFn
	}{
		{"zero concurrency", Concurrency(0)},
		{"zero buffer", InputBufferSize(0)},
		{"nil clock", WithClock(nil)},
	} {
		t.Run(test.description, func(t *testing.T) {
			err := Do(NewProducer(func(func(int)) error { return nil }), pass, NewStage(pass.fn, test.opt))
			if err == nil {
				t.Errorf("Do() yielded nil, wanted an error")
			}
		})
	}
	if err := Do(NewProducer(func(func(int)) error { return nil })); err == nil {
		t.Errorf("Do() without stages yielded nil, wanted an error")
	}
}
