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

// Package report renders the results of a site check run. Reports are
// advisory: writing one never turns content findings into an error.
package report

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kennygrant/sanitize"

	"github.com/agentberlin/sitecheck"
)

// DefaultLimit is the number of findings of each kind shown per page.
const DefaultLimit = 5

// Format is an output format for a report
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "txt":
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, markdown or json)", s)
}

// Ext returns the file extension used for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// Report collects everything one run produced.
type Report struct {
	RunID    string    `json:"runId"`
	BaseURL  string    `json:"baseUrl"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished,omitzero"`
	// Targets is how the scanned pages were found, nil when no scan ran
	Targets       *sitecheck.Outcome     `json:"targets,omitempty"`
	Pages         []sitecheck.PageReport `json:"pages"`
	Forms         []sitecheck.FormResult `json:"forms"`
	Accessibility []sitecheck.Outcome    `json:"accessibility"`
}

// New starts an empty report for a run.
func New(runID uuid.UUID, baseURL string, started time.Time) *Report {
	return &Report{
		RunID:         runID.String(),
		BaseURL:       baseURL,
		Started:       started,
		Pages:         []sitecheck.PageReport{},
		Forms:         []sitecheck.FormResult{},
		Accessibility: []sitecheck.Outcome{},
	}
}

// Summary holds the counts shown at the top of a report.
type Summary struct {
	Pages        int `json:"pages"`
	Scanned      int `json:"scanned"`
	SkippedPages int `json:"skippedPages"`
	Spelling     int `json:"spelling"`
	Grammar      int `json:"grammar"`
	FormsOK      int `json:"formsOk"`
	FormsSkipped int `json:"formsSkipped"`
	Failed       int `json:"failed"`
}

// Summary counts the report's results.
func (r *Report) Summary() Summary {
	var s Summary
	s.Pages = len(r.Pages)
	for _, p := range r.Pages {
		if p.Status == sitecheck.StatusOK {
			s.Scanned++
		} else {
			s.SkippedPages++
		}
		s.Spelling += len(p.Spelling())
		s.Grammar += len(p.Grammar())
	}
	for _, f := range r.Forms {
		switch f.Status {
		case sitecheck.StatusOK:
			s.FormsOK++
		case sitecheck.StatusFailed:
			s.Failed++
		default:
			s.FormsSkipped++
		}
	}
	for _, o := range r.Accessibility {
		if o.Status == sitecheck.StatusFailed {
			s.Failed++
		}
	}
	return s
}

// Failed reports whether a hard check failed. Spelling and grammar findings
// never count.
func (r *Report) Failed() bool {
	return r.Summary().Failed > 0
}

// Reporter writes a report in one format.
type Reporter interface {
	Write(w io.Writer, r *Report) error
}

// NewReporter returns the Reporter for format. limit caps the findings of
// each kind shown per page; 0 shows all of them. The JSON reporter always
// writes every finding.
func NewReporter(format Format, limit int) (Reporter, error) {
	switch format {
	case FormatText:
		return &TextReporter{Limit: limit}, nil
	case FormatMarkdown:
		return &MarkdownReporter{Limit: limit}, nil
	case FormatJSON:
		return &JSONReporter{Indent: "  "}, nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}

// FileName returns a file name for a report of baseURL written at t, such as
// "sitecheck-pnncle-com-20250102-150405.md".
func FileName(baseURL string, format Format, t time.Time) string {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	name := sanitize.BaseName(strings.ToLower(host))
	if name == "" {
		name = "site"
	}
	return fmt.Sprintf("sitecheck-%s-%s.%s", name, t.UTC().Format("20060102-150405"), format.Ext())
}

// limited returns at most limit findings; limit <= 0 returns all.
func limited(findings []sitecheck.Finding, limit int) []sitecheck.Finding {
	if limit > 0 && len(findings) > limit {
		return findings[:limit]
	}
	return findings
}

func pagesWith(pages []sitecheck.PageReport, kind sitecheck.FindingKind) []sitecheck.PageReport {
	var out []sitecheck.PageReport
	for _, p := range pages {
		for _, f := range p.Findings {
			if f.Kind == kind {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func skippedPages(pages []sitecheck.PageReport) []sitecheck.PageReport {
	var out []sitecheck.PageReport
	for _, p := range pages {
		if p.Status != sitecheck.StatusOK {
			out = append(out, p)
		}
	}
	return out
}

func roles(filled []sitecheck.FieldRole) string {
	if len(filled) == 0 {
		return "-"
	}
	parts := make([]string, len(filled))
	for i, r := range filled {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

func paragraph(n int) string {
	if n == 0 {
		return "?"
	}
	return fmt.Sprintf("%d", n)
}

// excerpt renders a finding with its surrounding context, the flagged span in brackets.
func excerpt(f sitecheck.Finding) string {
	if f.Before == "" && f.After == "" {
		return f.Word
	}
	return strings.TrimSpace(f.Before + "[" + f.Word + "]" + f.After)
}
