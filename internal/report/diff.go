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

package report

import (
	"io"
	"strings"

	"github.com/agentberlin/sitecheck"
)

// Changes lists the findings that appeared or went away between two runs.
type Changes struct {
	New      []sitecheck.Finding `json:"new"`
	Resolved []sitecheck.Finding `json:"resolved"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.New) == 0 && len(c.Resolved) == 0
}

// Write lists the changes one per line, "+" for new findings and "-" for
// resolved ones. since names the run compared against.
func (c Changes) Write(w io.Writer, since string) error {
	tw := &textWriter{w: w}
	if c.Empty() {
		tw.printf("No changes since run %s\n", since)
		return tw.err
	}
	tw.printf("Changes since run %s:\n", since)
	for _, f := range c.New {
		tw.printf("+ %s %s %q\n", f.URL, f.Kind, f.Word)
	}
	for _, f := range c.Resolved {
		tw.printf("- %s %s %q\n", f.URL, f.Kind, f.Word)
	}
	return tw.err
}

func findingKey(f sitecheck.Finding) string {
	return strings.Join([]string{string(f.Kind), f.URL, strings.ToLower(f.Word), f.Rule}, "\x00")
}

func scannedPages(r *Report) map[string]sitecheck.PageReport {
	pages := make(map[string]sitecheck.PageReport, len(r.Pages))
	for _, p := range r.Pages {
		if p.Status == sitecheck.StatusOK {
			pages[p.URL] = p
		}
	}
	return pages
}

// Diff compares the findings of prev and curr. Only pages scanned in both
// runs are compared, so a page that failed to load resolves nothing.
func Diff(prev, curr *Report) Changes {
	before := scannedPages(prev)
	after := scannedPages(curr)
	changes := Changes{New: []sitecheck.Finding{}, Resolved: []sitecheck.Finding{}}

	for _, p := range curr.Pages {
		old, ok := before[p.URL]
		if !ok || p.Status != sitecheck.StatusOK {
			continue
		}
		changes.New = append(changes.New, missingFrom(p.Findings, old.Findings)...)
	}
	for _, p := range prev.Pages {
		cur, ok := after[p.URL]
		if !ok || p.Status != sitecheck.StatusOK {
			continue
		}
		changes.Resolved = append(changes.Resolved, missingFrom(p.Findings, cur.Findings)...)
	}
	return changes
}

// missingFrom returns the findings of a whose key does not occur in b.
func missingFrom(a, b []sitecheck.Finding) []sitecheck.Finding {
	keys := make(map[string]bool, len(b))
	for _, f := range b {
		keys[findingKey(f)] = true
	}
	var out []sitecheck.Finding
	for _, f := range a {
		if !keys[findingKey(f)] {
			out = append(out, f)
		}
	}
	return out
}
