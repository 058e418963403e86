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
	"errors"
	"fmt"
)

var (
	// ErrNoWords is returned by Build when given a nil word list.
	ErrNoWords = errors.New("no word list")
	// ErrEmptyWord marks a zero-length word.
	ErrEmptyWord = errors.New("empty word")
	// ErrInvalidWord marks a word containing a byte outside 'a'-'z'.
	ErrInvalidWord = errors.New("word is not lowercase a-z")
	// ErrDuplicateWord marks a word that appears earlier in the list.
	ErrDuplicateWord = errors.New("duplicate word")
)

// WordError reports a word Build refused to insert.
type WordError struct {
	Index int
	Word  string
	Err   error
}

func (e *WordError) Error() string {
	return fmt.Sprintf("word %d (%q): %s", e.Index, e.Word, e.Err)
}

func (e *WordError) Unwrap() error {
	return e.Err
}

// Validate checks that every word is non-empty, made only of the letters
// a through z, and unique.  Build calls it before inserting anything.
func Validate(words []string) error {
	seen := make(map[string]int, len(words))
	for i, w := range words {
		if w == "" {
			return &WordError{Index: i, Word: w, Err: ErrEmptyWord}
		}
		for j := 0; j < len(w); j++ {
			if w[j] < 'a' || w[j] > 'z' {
				return &WordError{Index: i, Word: w, Err: ErrInvalidWord}
			}
		}
		if first, ok := seen[w]; ok {
			return &WordError{Index: i, Word: w, Err: fmt.Errorf("%w (first at %d)", ErrDuplicateWord, first)}
		}
		seen[w] = i
	}
	return nil
}
