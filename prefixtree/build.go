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

package prefixtree

import (
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "prefixtree")

// Build constructs a Trie by inserting words one at a time, first to last.
// Insertion order shapes the tree but not the result of any completion.
//
// words is borrowed, not copied, and must not be modified while the Trie is
// in use.  A nil slice yields ErrNoWords; an empty one yields a Trie whose
// root has no children.  Words must pass Validate.
func Build(words []string) (*Trie, error) {
	if words == nil {
		return nil, ErrNoWords
	}
	if err := Validate(words); err != nil {
		return nil, err
	}
	t := newTrie(words)
	for i := range words {
		t.insert(i)
	}
	log.Debugf("built trie over %d words: %d nodes, %d splits", len(words), len(t.nodes)-1, t.splits)
	return t, nil
}

// commonRun returns the number of characters a and b share starting at
// from, looking no further than limit characters.
func commonRun(a, b string, from, limit int) int {
	k := 0
	for k < limit && from+k < len(a) && from+k < len(b) && a[from+k] == b[from+k] {
		k++
	}
	return k
}

// insert adds words[wi] to the trie.
//
// The walk keeps the parent whose children list is being scanned and the
// node before the current one in that list, which together identify the
// slot that references the current node.
func (t *Trie) insert(wi int) {
	w := t.words[wi]
	parent, prev := rootIndex, none
	cur := t.nodes[rootIndex].firstChild
	// Every node in the list being scanned starts at boundary.
	boundary := 0
	for cur != none {
		n := &t.nodes[cur]
		k := commonRun(w, t.words[n.sub.Word], n.sub.Start, n.sub.Len())
		switch {
		case k == 0:
			// No shared first character; this covers a leaf whose common
			// run with w ends at its parent's boundary.
			prev, cur = cur, n.sibling
		case n.firstChild != none && k == n.sub.Len():
			parent, prev = cur, none
			boundary = n.sub.End + 1
			cur = n.firstChild
		default:
			t.split(parent, prev, cur, k, wi)
			return
		}
	}
	leaf := t.newNode(Substring{Word: wi, Start: boundary, End: len(w) - 1}, none, none, parent != rootIndex)
	if prev == none {
		t.nodes[parent].firstChild = leaf
	} else {
		t.nodes[prev].sibling = leaf
	}
	log.Tracef("appended %q as %s", w, t.nodes[leaf].sub)
}

// split inserts a prefix node covering the first k characters of cur's
// range into the slot that references cur.  cur becomes the new node's
// first child, shrunk to the remaining characters, and a leaf for
// words[wi] becomes cur's sibling.
func (t *Trie) split(parent, prev, cur, k, wi int) {
	old := t.nodes[cur]
	start := old.sub.Start + k
	leaf := t.newNode(Substring{Word: wi, Start: start, End: len(t.words[wi]) - 1}, none, none, true)
	p := t.newNode(Substring{Word: old.sub.Word, Start: old.sub.Start, End: start - 1}, cur, old.sibling, old.hasPrefix)

	if prev == none {
		t.nodes[parent].firstChild = p
	} else {
		t.nodes[prev].sibling = p
	}
	n := &t.nodes[cur]
	n.sibling = leaf
	n.sub.Start = start
	n.hasPrefix = true
	t.splits++
	log.Tracef("split %s at %d for %q", t.nodes[p].sub, start, t.words[wi])
}
