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
	"fmt"
	"regexp"

	"github.com/cespare/xxhash/v2"
)

// Patterns for text that changes between renders of the same page
var (
	timestampPatterns = []*regexp.Regexp{
		// ISO8601/RFC3339
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})`),
		// Common timestamp
		regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`),
		// US format with time
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}(?::\d{2})? (?:AM|PM)`),
		// Month DD, YYYY HH:MM
		regexp.MustCompile(`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},?\s+\d{4}\s+\d{1,2}:\d{2}`),
	}

	relativeTimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+\s+(?:second|minute|hour|day|week|month|year)s?\s+ago`),
		regexp.MustCompile(`(?:just\s+now|moments?\s+ago)`),
	}
)

// stripDynamicText masks timestamps and relative times
func stripDynamicText(text string) string {
	for _, pattern := range timestampPatterns {
		text = pattern.ReplaceAllString(text, "[TIMESTAMP]")
	}
	for _, pattern := range relativeTimePatterns {
		text = pattern.ReplaceAllString(text, "[RELATIVE_TIME]")
	}
	return normalizeWhitespace(text)
}

// ContentHash fingerprints the extracted text of a page. Two renders that
// differ only in timestamps hash the same. Empty text hashes to "".
func ContentHash(record PageRecord) string {
	text := stripDynamicText(record.Text)
	if text == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// DuplicateTracker remembers which page first produced each content hash.
// It is not safe for concurrent use.
type DuplicateTracker struct {
	seen map[string]string
}

// NewDuplicateTracker creates an empty tracker.
func NewDuplicateTracker() *DuplicateTracker {
	return &DuplicateTracker{seen: make(map[string]string)}
}

// Check records record and reports the URL of an earlier page with identical
// content, if any. Pages without text are never duplicates.
func (d *DuplicateTracker) Check(record PageRecord) (original string, duplicate bool) {
	hash := ContentHash(record)
	if hash == "" {
		return "", false
	}
	if first, ok := d.seen[hash]; ok && first != record.URL {
		return first, true
	}
	d.seen[hash] = record.URL
	return "", false
}
