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

// Package prefixtree implements a compressed prefix tree for word
// completion.
//
// The tree is stored in first-child/next-sibling form.  Rather than holding
// characters, each node holds a Substring: a range of characters within one
// of the words the tree was built from.  The words themselves are never
// copied; a Trie borrows the slice passed to Build and resolves substrings
// against it.
//
// A node with children is a prefix node, and its Substring is the run of
// characters shared by every word beneath it.  A node without children is a
// leaf, and its Substring is the unique remainder of exactly one word.  The
// root is a sentinel with no Substring.
//
// Once Build returns, a Trie is never mutated again, so any number of
// goroutines may call Complete concurrently.
package prefixtree

import "fmt"

// Substring describes the inclusive character range [Start, End] of
// words[Word].  A leaf for a word that is a proper prefix of another word
// has an empty Substring, with Start == End+1.
type Substring struct {
	Word, Start, End int
}

// Len returns the number of characters in the range.
func (s Substring) Len() int {
	return s.End - s.Start + 1
}

func (s Substring) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.Word, s.Start, s.End)
}

// none marks an absent firstChild or sibling link.
const none = -1

const rootIndex = 0

// node is an arena slot.  Links are indexes into Trie.nodes, so splitting a
// node is a rewrite of the slot that referenced it.
type node struct {
	sub        Substring
	firstChild int
	sibling    int
	// hasPrefix is true iff the node's parent is a prefix node rather than
	// the root.
	hasPrefix bool
}

// Trie is a compressed prefix tree over a borrowed word list.
type Trie struct {
	words  []string
	nodes  []node
	splits int
}

func newTrie(words []string) *Trie {
	t := &Trie{
		words: words,
		// Each word adds at most one leaf and one prefix node.
		nodes: make([]node, 1, 1+2*len(words)),
	}
	t.nodes[rootIndex] = node{firstChild: none, sibling: none}
	return t
}

func (t *Trie) newNode(sub Substring, firstChild, sibling int, hasPrefix bool) int {
	t.nodes = append(t.nodes, node{
		sub:        sub,
		firstChild: firstChild,
		sibling:    sibling,
		hasPrefix:  hasPrefix,
	})
	return len(t.nodes) - 1
}

// text resolves a substring against the word list.
func (t *Trie) text(sub Substring) string {
	return t.words[sub.Word][sub.Start : sub.End+1]
}

// Root returns the sentinel root node.
func (t *Trie) Root() Node {
	return Node{trie: t, index: rootIndex}
}

// Words returns the word list the trie was built from.
func (t *Trie) Words() []string {
	return t.words
}

// Stats summarizes the shape of a Trie.
type Stats struct {
	Words       int
	Nodes       int
	PrefixNodes int
	Leaves      int
	Splits      int
}

// Stats counts the nodes of t.  The root is not included in Nodes.
func (t *Trie) Stats() Stats {
	st := Stats{
		Words:  len(t.words),
		Nodes:  len(t.nodes) - 1,
		Splits: t.splits,
	}
	for i := rootIndex + 1; i < len(t.nodes); i++ {
		if t.nodes[i].firstChild != none {
			st.PrefixNodes++
		} else {
			st.Leaves++
		}
	}
	return st
}

// Walk visits every node beneath the root in depth-first pre-order,
// reporting each node's depth (1 for children of the root).  If fn returns
// false, the node's children are skipped.
func (t *Trie) Walk(fn func(n Node, depth int) bool) {
	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		for c, ok := n.FirstChild(); ok; c, ok = c.Sibling() {
			if fn(c, depth) {
				walk(c, depth+1)
			}
		}
	}
	walk(t.Root(), 1)
}

// Node is a read-only handle on a node of a Trie.  The zero Node is not
// valid.
type Node struct {
	trie  *Trie
	index int
}

func (n Node) get() *node {
	return &n.trie.nodes[n.index]
}

// inner reports whether n is a node other than the root.  The zero Node
// belongs to no trie and is neither.
func (n Node) inner() bool {
	return n.trie != nil && n.index != rootIndex
}

// IsRoot reports whether n is the sentinel root.
func (n Node) IsRoot() bool {
	return n.trie != nil && n.index == rootIndex
}

// IsPrefix reports whether n has a first child.  The root is not a prefix
// node even when it has children.
func (n Node) IsPrefix() bool {
	return n.inner() && n.get().firstChild != none
}

// IsLeaf reports whether n is a word node.
func (n Node) IsLeaf() bool {
	return n.inner() && n.get().firstChild == none
}

// FirstChild returns the head of n's children list.
func (n Node) FirstChild() (Node, bool) {
	if n.trie == nil {
		return Node{}, false
	}
	return n.link(n.get().firstChild)
}

// Sibling returns the node following n in its parent's children list.
func (n Node) Sibling() (Node, bool) {
	if n.trie == nil {
		return Node{}, false
	}
	return n.link(n.get().sibling)
}

func (n Node) link(i int) (Node, bool) {
	if i == none {
		return Node{}, false
	}
	return Node{trie: n.trie, index: i}, true
}

// Substring returns n's character range.  The root has none.
func (n Node) Substring() (Substring, bool) {
	if !n.inner() {
		return Substring{}, false
	}
	return n.get().sub, true
}

// Text returns the characters n's Substring covers.
func (n Node) Text() string {
	if !n.inner() {
		return ""
	}
	return n.trie.text(n.get().sub)
}

// Prefix returns every character from the start of the word through the
// end of n's Substring.
func (n Node) Prefix() string {
	if !n.inner() {
		return ""
	}
	sub := n.get().sub
	return n.trie.words[sub.Word][:sub.End+1]
}

// WordIndex returns the index in the word list of the word n's Substring
// refers to.  For a prefix node this is one representative descendant.
func (n Node) WordIndex() int {
	if !n.inner() {
		return -1
	}
	return n.get().sub.Word
}

// Word returns the full word n's Substring refers to.
func (n Node) Word() string {
	if !n.inner() {
		return ""
	}
	return n.trie.words[n.get().sub.Word]
}

// HasPrefixAncestor reports whether n hangs below a prefix node rather than
// directly off the root.
func (n Node) HasPrefixAncestor() bool {
	return n.inner() && n.get().hasPrefix
}

func (n Node) String() string {
	if n.trie == nil {
		return "none"
	}
	if n.IsRoot() {
		return "root"
	}
	return n.get().sub.String()
}
