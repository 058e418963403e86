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

// Package dict loads word lists for building a prefixtree.Trie.
//
// Input is one word per line.  Blank lines and lines starting with '#' are
// ignored, as is surrounding whitespace.  Words can optionally be lowercased
// before they are checked; anything left that is not made only of the
// letters a through z is either skipped or rejected.  Repeated words are
// dropped, keeping the first occurrence, so the result always satisfies
// prefixtree.Validate.
package dict

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

var log = logrus.WithField("component", "dict")

// Options controls how a dictionary is read.
type Options struct {
	// Encoding of the input: "utf-8" (default) or "latin1".
	Encoding string
	// Lowercase folds words to lower case before validation.
	Lowercase bool
	// SkipInvalid drops words that aren't lowercase a-z instead of failing.
	SkipInvalid bool
}

// Dictionary is a loaded word list.
type Dictionary struct {
	Words []string
	// Skipped counts invalid words dropped under SkipInvalid.
	Skipped int
	// Duplicates counts repeated words dropped.
	Duplicates int
}

// LineError reports an invalid word.
type LineError struct {
	Line int
	Word string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q is not a lowercase a-z word", e.Line, e.Word)
}

func decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return unicode.UTF8.NewDecoder(), nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported dictionary encoding %q", name)
	}
}

func valid(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return w != ""
}

// Load reads a dictionary from r.
func Load(r io.Reader, opts Options) (*Dictionary, error) {
	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	lower := cases.Lower(language.Und)
	scanner := bufio.NewScanner(dec.Reader(r))
	scanner.Buffer(make([]byte, 1024), 1024*1024)

	d := &Dictionary{Words: []string{}}
	seen := map[string]bool{}
	line := 0
	for scanner.Scan() {
		line++
		w := strings.TrimSpace(scanner.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if opts.Lowercase {
			w = lower.String(w)
		}
		if !valid(w) {
			if !opts.SkipInvalid {
				return nil, &LineError{Line: line, Word: w}
			}
			log.Tracef("skipping %q at line %d", w, line)
			d.Skipped++
			continue
		}
		if seen[w] {
			d.Duplicates++
			continue
		}
		seen[w] = true
		d.Words = append(d.Words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	log.Debugf("loaded %d words (%d skipped, %d duplicates)", len(d.Words), d.Skipped, d.Duplicates)
	return d, nil
}

// LoadFile reads a dictionary from the named file.
func LoadFile(path string, opts Options) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ReadLines returns the trimmed, non-blank, non-comment lines of r, without
// any validation.  It is used for lists of query prefixes.
func ReadLines(r io.Reader) ([]string, error) {
	var ret []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		l := strings.TrimSpace(scanner.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		ret = append(ret, l)
	}
	return ret, scanner.Err()
}
