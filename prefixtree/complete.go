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

// Complete returns the completion list for prefix: every leaf whose word
// starts with prefix.  The order of the leaves is unspecified.  If no word
// starts with prefix, or prefix is empty, Complete returns false.
func (t *Trie) Complete(prefix string) ([]Node, bool) {
	if t == nil || prefix == "" {
		return nil, false
	}
	last := len(prefix) - 1
	cur := t.nodes[rootIndex].firstChild
	for cur != none {
		n := &t.nodes[cur]
		word := t.words[n.sub.Word]
		if n.firstChild != none {
			end := min(n.sub.End, last)
			// Ancestors already matched everything before Start.
			if word[n.sub.Start:end+1] != prefix[n.sub.Start:end+1] {
				cur = n.sibling
				continue
			}
			if n.sub.End >= last {
				return CollectLeaves(Node{trie: t, index: cur}), true
			}
			cur = n.firstChild
			continue
		}
		if len(prefix) <= len(word) && word[:len(prefix)] == prefix {
			return []Node{{trie: t, index: cur}}, true
		}
		// A word shorter than prefix can't complete it, but a sibling
		// still might.
		cur = n.sibling
	}
	return nil, false
}

// CompleteIndexes is like Complete, but returns the indexes of the
// matching words in the word list.
func (t *Trie) CompleteIndexes(prefix string) ([]int, bool) {
	leaves, ok := t.Complete(prefix)
	if !ok {
		return nil, false
	}
	ret := make([]int, len(leaves))
	for i, l := range leaves {
		ret[i] = l.WordIndex()
	}
	return ret, true
}

// CompleteWords is like Complete, but returns the matching words.
func (t *Trie) CompleteWords(prefix string) ([]string, bool) {
	leaves, ok := t.Complete(prefix)
	if !ok {
		return nil, false
	}
	ret := make([]string, len(leaves))
	for i, l := range leaves {
		ret[i] = l.Word()
	}
	return ret, true
}

// CollectLeaves returns every leaf beneath n, each exactly once.  A leaf
// has nothing beneath it, so CollectLeaves of a leaf is empty.
func CollectLeaves(n Node) []Node {
	if n.trie == nil {
		return nil
	}
	var ret []Node
	var collect func(i int)
	collect = func(i int) {
		for c := n.trie.nodes[i].firstChild; c != none; c = n.trie.nodes[c].sibling {
			if n.trie.nodes[c].firstChild == none {
				ret = append(ret, Node{trie: n.trie, index: c})
			} else {
				collect(c)
			}
		}
	}
	collect(n.index)
	return ret
}
