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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/sitecheck"
)

const base = "https://pnncle.com"

var runID = uuid.MustParse("7b0c3a52-58e4-4c1e-9f0a-3c2d6a1e9b11")

func spelling(url, word string, paragraph int, suggestions ...string) sitecheck.Finding {
	return sitecheck.Finding{
		Kind:        sitecheck.KindSpelling,
		URL:         url,
		Word:        word,
		Paragraph:   paragraph,
		Before:      "This is a ",
		After:       " of content",
		Suggestions: suggestions,
	}
}

func sampleReport() *Report {
	story := base + "/kingdom-stories/first-story/"
	r := New(runID, base, time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC))
	targets := sitecheck.OK(base + "/sitemap_index.xml")
	r.Targets = &targets
	r.Pages = []sitecheck.PageReport{
		{
			URL:     story,
			Outcome: sitecheck.OK(story),
			Findings: []sitecheck.Finding{
				spelling(story, "tset", 2, "test", "set", "tent", "text"),
				{
					Kind:        sitecheck.KindGrammar,
					URL:         story,
					Word:        "a apple",
					Message:     "Use \"an\" instead of \"a\"",
					Rule:        "EN_A_VS_AN",
					Paragraph:   3,
					Before:      "She ate ",
					After:       " today.",
					Suggestions: []string{"an apple"},
				},
			},
		},
		{
			URL:      base + "/",
			Outcome:  sitecheck.Skipped(base+"/", "only 120 characters of text"),
			Findings: []sitecheck.Finding{},
		},
	}
	r.Forms = []sitecheck.FormResult{
		{Page: base + "/contact/", Outcome: sitecheck.OK(base + "/contact/"), Filled: []sitecheck.FieldRole{sitecheck.RoleName, sitecheck.RoleEmail}},
		{Page: base + "/go/", Outcome: sitecheck.Skipped(base+"/go/", "no visible submit control"), Filled: []sitecheck.FieldRole{}},
	}
	r.Accessibility = []sitecheck.Outcome{
		sitecheck.OK(base + "/contact/ form 1"),
		sitecheck.Failed(base+"/go/ form 1", "form 1 on %s/go/ has no submit button", base),
	}
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{"text", FormatText, "txt"},
		{"txt", FormatText, "txt"},
		{"Markdown", FormatMarkdown, "md"},
		{"md", FormatMarkdown, "md"},
		{"json", FormatJSON, "json"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ext, got.Ext())
		})
	}

	_, err := ParseFormat("html")
	assert.Error(t, err)
}

func TestNewReporter(t *testing.T) {
	r, err := NewReporter(FormatText, 3)
	require.NoError(t, err)
	assert.Equal(t, &TextReporter{Limit: 3}, r)

	r, err = NewReporter(FormatMarkdown, 0)
	require.NoError(t, err)
	assert.IsType(t, &MarkdownReporter{}, r)

	r, err = NewReporter(FormatJSON, 3)
	require.NoError(t, err)
	assert.IsType(t, &JSONReporter{}, r)

	_, err = NewReporter("xml", 3)
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		name    string
		baseURL string
		format  Format
		want    string
	}{
		{"host", "https://pnncle.com", FormatMarkdown, "sitecheck-pnncle-com-20250102-150405.md"},
		{"port", "http://127.0.0.1:8080/", FormatJSON, "sitecheck-127-0-0-1-8080-20250102-150405.json"},
		{"upper case", "https://WWW.Pnncle.com", FormatText, "sitecheck-www-pnncle-com-20250102-150405.txt"},
		{"empty", "", FormatText, "sitecheck-site-20250102-150405.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.baseURL, tt.format, at))
		})
	}
}

func TestReport_Summary(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, Summary{
		Pages:        2,
		Scanned:      1,
		SkippedPages: 1,
		Spelling:     1,
		Grammar:      1,
		FormsOK:      1,
		FormsSkipped: 1,
		Failed:       1,
	}, r.Summary())
	assert.True(t, r.Failed())

	r.Accessibility = r.Accessibility[:1]
	assert.False(t, r.Failed(), "content findings never fail a run")
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	err := (&TextReporter{Limit: DefaultLimit, NoColor: true}).Write(&buf, sampleReport())
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "Site check "+runID.String()+" for "+base)
	assert.Contains(t, out, "Targets: ok: "+base+"/sitemap_index.xml")
	assert.Contains(t, out, "Spelling Errors Found:")
	assert.Contains(t, out, "URL: "+base+"/kingdom-stories/first-story/")
	assert.Contains(t, out, "tset")
	// three suggestions at most in the text table
	assert.Contains(t, out, "test, set, tent")
	assert.NotContains(t, out, "tent, text")
	assert.Contains(t, out, "Grammar Errors Found:")
	assert.Contains(t, out, "She ate [a apple] today.")
	assert.Contains(t, out, "only 120 characters of text")
	assert.Contains(t, out, "no visible submit control")
	assert.Contains(t, out, "✗ "+base+"/go/ form 1: form 1 on "+base+"/go/ has no submit button")
	assert.Contains(t, out, "Failed checks")
	assert.NotContains(t, out, "\x1b[", "colours disabled")
}

func TestTextReporter_NoFindings(t *testing.T) {
	r := New(runID, base, time.Now())
	r.Pages = []sitecheck.PageReport{{URL: base + "/about/", Outcome: sitecheck.OK(base + "/about/"), Findings: []sitecheck.Finding{}}}

	var buf bytes.Buffer
	require.NoError(t, (&TextReporter{NoColor: true}).Write(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "✓ No spelling errors found")
	assert.Contains(t, out, "✓ No grammar errors found")
	assert.NotContains(t, out, "\nSkipped pages:\n", "no skipped pages section")
	assert.NotContains(t, out, "Form structure:")
	assert.NotContains(t, out, "Forms OK", "no form rows without form checks")
	assert.Contains(t, out, "Skipped pages", "summary row")
	assert.Contains(t, out, "Failed checks")
}

func TestTextReporter_Limit(t *testing.T) {
	url := base + "/kingdom-stories/second-story/"
	r := New(runID, base, time.Now())
	page := sitecheck.PageReport{URL: url, Outcome: sitecheck.OK(url)}
	for i := range 8 {
		page.Findings = append(page.Findings, spelling(url, fmt.Sprintf("wrd%c", 'a'+i), 1))
	}
	r.Pages = append(r.Pages, page)

	var buf bytes.Buffer
	require.NoError(t, (&TextReporter{Limit: 5, NoColor: true}).Write(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "wrde")
	assert.NotContains(t, out, "wrdf")
	assert.Contains(t, out, "3 more not shown")

	buf.Reset()
	require.NoError(t, (&TextReporter{NoColor: true}).Write(&buf, r))
	assert.Contains(t, buf.String(), "wrdh")
}

func TestMarkdownReporter(t *testing.T) {
	r := sampleReport()
	r.Forms[1].Reason = "a | b"

	var buf bytes.Buffer
	require.NoError(t, (&MarkdownReporter{Limit: DefaultLimit}).Write(&buf, r))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Site check report"))
	assert.Contains(t, out, "| Run | `"+runID.String()+"` |")
	assert.Contains(t, out, "| Pages scanned | 1 of 2 |")
	assert.Contains(t, out, "## Spelling")
	assert.Contains(t, out, "### "+base+"/kingdom-stories/first-story/")
	assert.Contains(t, out, "| `tset` | 2 | This is a [tset] of content | test, set, tent, text |")
	assert.Contains(t, out, "## Grammar")
	assert.Contains(t, out, "She ate [a apple] today.")
	assert.Contains(t, out, "## Skipped pages")
	assert.Contains(t, out, "- "+base+"/: only 120 characters of text")
	assert.Contains(t, out, "❌ failed")
	assert.Contains(t, out, `a \| b`)
	assert.Contains(t, out, "[!CAUTION]")
}

func TestMarkdownReporter_NoFindings(t *testing.T) {
	r := New(runID, base, time.Now())
	r.Pages = []sitecheck.PageReport{{URL: base + "/about/", Outcome: sitecheck.OK(base + "/about/"), Findings: []sitecheck.Finding{}}}

	var buf bytes.Buffer
	require.NoError(t, (&MarkdownReporter{}).Write(&buf, r))

	assert.Contains(t, buf.String(), "✓ No spelling errors found")
	assert.Contains(t, buf.String(), "✓ No grammar errors found")
	assert.NotContains(t, buf.String(), "[!NOTE]")
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONReporter{Indent: "  "}).Write(&buf, sampleReport()))

	var doc struct {
		RunID   string `json:"runId"`
		BaseURL string `json:"baseUrl"`
		Targets struct {
			Status string `json:"status"`
		} `json:"targets"`
		Pages []struct {
			URL      string `json:"url"`
			Status   string `json:"status"`
			Reason   string `json:"reason"`
			Findings []struct {
				Kind        string   `json:"kind"`
				Word        string   `json:"word"`
				Suggestions []string `json:"suggestions"`
			} `json:"findings"`
		} `json:"pages"`
		Forms []struct {
			Page   string   `json:"page"`
			Status string   `json:"status"`
			Filled []string `json:"filled"`
		} `json:"forms"`
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, runID.String(), doc.RunID)
	assert.Equal(t, base, doc.BaseURL)
	assert.Equal(t, "ok", doc.Targets.Status)
	require.Len(t, doc.Pages, 2)
	require.Len(t, doc.Pages[0].Findings, 2)
	assert.Equal(t, "spelling", doc.Pages[0].Findings[0].Kind)
	assert.Len(t, doc.Pages[0].Findings[0].Suggestions, 4, "JSON output is never truncated")
	assert.Equal(t, "skipped", doc.Pages[1].Status)
	assert.Equal(t, []string{"name", "email"}, doc.Forms[0].Filled)
	assert.Equal(t, 1, doc.Summary.Failed)
}
