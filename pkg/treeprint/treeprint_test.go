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

package treeprint

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-prefixtree/prefixtree"
)

func TestSprint(t *testing.T) {
	tr, err := prefixtree.Build([]string{"bear", "bull", "stock", "bell"})
	if err != nil {
		t.Fatalf("Build() yielded %v, wanted nil", err)
	}
	want := strings.Join([]string{
		"",
		"TRIE",
		"",
		" ---root",
		"     |",
		"          b",
		"     ---(0,0,0)",
		"         |",
		"              be",
		"         ---(0,1,1)",
		"             |",
		"                  bear",
		"             ---(0,2,3)",
		"             |",
		"                  bell",
		"             ---(3,2,3)",
		"         |",
		"              bull",
		"         ---(1,1,3)",
		"     |",
		"          stock",
		"     ---(2,0,4)",
		"",
	}, "\n")
	if diff := cmp.Diff(want, Sprint(tr.Root())); diff != "" {
		t.Errorf("Sprint() diff (-want +got) %s", diff)
	}
}

func TestSprintEmpty(t *testing.T) {
	tr, err := prefixtree.Build([]string{})
	if err != nil {
		t.Fatalf("Build() yielded %v, wanted nil", err)
	}
	if got, want := Sprint(tr.Root()), "\nTRIE\n\n ---root\n"; got != want {
		t.Errorf("Sprint() = %q, wanted %q", got, want)
	}
}

func TestSprintPrefixWord(t *testing.T) {
	tr, err := prefixtree.Build([]string{"be", "bear"})
	if err != nil {
		t.Fatalf("Build() yielded %v, wanted nil", err)
	}
	body := []string{
		"          be",
		"     ---(0,0,1)",
		"         |",
		"              be",
		"         ---(0,2,1)",
		"         |",
		"              bear",
		"         ---(1,2,3)",
		"",
	}
	want := strings.Join(append([]string{"", "TRIE", "", " ---root", "     |"}, body...), "\n")
	if diff := cmp.Diff(want, Sprint(tr.Root())); diff != "" {
		t.Errorf("Sprint() diff (-want +got) %s", diff)
	}

	// A subtree accumulates text from its own top node.
	be, _ := tr.Root().FirstChild()
	var sb strings.Builder
	if err := Fprint(&sb, be); err != nil {
		t.Fatalf("Fprint() yielded %v, wanted nil", err)
	}
	want = "\nTRIE\n\n      be\n ---(0,0,1)\n     |\n          be\n     ---(0,2,1)\n     |\n          bear\n     ---(1,2,3)\n"
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("Fprint() of subtree diff (-want +got) %s", diff)
	}
}
