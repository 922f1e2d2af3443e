// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sitecheck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// maxEditDistance bounds how far a suggestion may be from the unknown word
const maxEditDistance = 2

// Dictionary answers spelling lookups.
type Dictionary interface {
	// Known reports whether word (lowercase) is spelled correctly
	Known(word string) bool
	// Candidates returns at most n corrections, best first
	Candidates(word string, n int) []string
}

// WordList is an in-memory Dictionary. Words are stored lowercase together
// with an optional frequency used to rank suggestions.
type WordList struct {
	freq map[string]int
	// byLen indexes words by rune count so candidate search only scans
	// lengths within maxEditDistance of the input
	byLen map[int][]string
}

// NewWordList builds a WordList from words, all with frequency 0.
func NewWordList(words ...string) *WordList {
	w := &WordList{freq: make(map[string]int), byLen: make(map[int][]string)}
	for _, word := range words {
		w.add(word, 0)
	}
	return w
}

// LoadWordList reads one word per line. A second whitespace separated column,
// when present and numeric, is the word's frequency. Blank lines and lines
// starting with # are ignored.
func LoadWordList(r io.Reader) (*WordList, error) {
	w := NewWordList()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		freq := 0
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				freq = n
			}
		}
		w.add(fields[0], freq)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDictionary, err)
	}
	if w.Len() == 0 {
		return nil, fmt.Errorf("%w: word list is empty", ErrNoDictionary)
	}
	return w, nil
}

// LoadWordListFile opens path and reads it with LoadWordList.
func LoadWordListFile(path string) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDictionary, err)
	}
	defer f.Close()
	return LoadWordList(f)
}

func (w *WordList) add(word string, freq int) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	if old, ok := w.freq[word]; ok {
		w.freq[word] = max(old, freq)
		return
	}
	w.freq[word] = freq
	n := utf8.RuneCountInString(word)
	w.byLen[n] = append(w.byLen[n], word)
}

// Len returns the number of distinct words.
func (w *WordList) Len() int {
	return len(w.freq)
}

// Known reports whether word is in the list.
func (w *WordList) Known(word string) bool {
	_, ok := w.freq[strings.ToLower(word)]
	return ok
}

type candidate struct {
	word     string
	distance int
	freq     int
	sim      float64
}

// Candidates ranks words within edit distance 2 of word: by Damerau-Levenshtein
// distance, then frequency, then Jaro-Winkler similarity, then lexically.
func (w *WordList) Candidates(word string, n int) []string {
	word = strings.ToLower(word)
	if n <= 0 || word == "" {
		return []string{}
	}

	size := utf8.RuneCountInString(word)
	var found []candidate
	for l := size - maxEditDistance; l <= size+maxEditDistance; l++ {
		for _, known := range w.byLen[l] {
			if known == word {
				continue
			}
			d := matchr.DamerauLevenshtein(word, known)
			if d > maxEditDistance {
				continue
			}
			found = append(found, candidate{
				word:     known,
				distance: d,
				freq:     w.freq[known],
				sim:      matchr.JaroWinkler(word, known, false),
			})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.freq != b.freq {
			return a.freq > b.freq
		}
		if a.sim != b.sim {
			return a.sim > b.sim
		}
		return a.word < b.word
	})

	out := make([]string, 0, min(n, len(found)))
	for _, c := range found {
		if len(out) == n {
			break
		}
		out = append(out, c.word)
	}
	return out
}
