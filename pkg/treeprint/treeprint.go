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

// Package treeprint renders a prefixtree.Trie for debugging.
package treeprint

import (
	"bufio"
	"io"
	"strings"

	"github.com/google/go-prefixtree/prefixtree"
)

const indentUnit = "    "

// Fprint writes an indented dump of the tree below n to w.  Each node is
// shown as its Substring, preceded by the text of the path from n down to
// and including that node.
func Fprint(w io.Writer, n prefixtree.Node) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("\nTRIE\n\n")
	fprint(bw, n, "", 0)
	return bw.Flush()
}

// Sprint is like Fprint, but returns the dump as a string.
func Sprint(n prefixtree.Node) string {
	var sb strings.Builder
	Fprint(&sb, n)
	return sb.String()
}

func fprint(w *bufio.Writer, n prefixtree.Node, path string, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	sub, ok := n.Substring()
	if ok {
		path += n.Text()
		w.WriteString(indent + "      " + path + "\n")
	}
	w.WriteString(indent + " ---")
	if ok {
		w.WriteString(sub.String() + "\n")
	} else {
		w.WriteString("root\n")
	}
	for c, ok := n.FirstChild(); ok; c, ok = c.Sibling() {
		w.WriteString(indent + "     |\n")
		fprint(w, c, path, depth+1)
	}
}
