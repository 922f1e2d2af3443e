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
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/agentberlin/sitecheck"
)

// MarkdownReporter writes a report as a Markdown document, for sharing in
// issues and pull requests.
type MarkdownReporter struct {
	// Limit caps the findings of each kind shown per page, 0 for no cap
	Limit int
}

// Write renders r to w.
func (m *MarkdownReporter) Write(w io.Writer, r *Report) error {
	md := markdown.NewMarkdown(w)

	writeMarkdownHeader(md, r)
	if len(r.Pages) > 0 {
		m.writeFindings(md, r, sitecheck.KindSpelling)
		m.writeFindings(md, r, sitecheck.KindGrammar)
		writeMarkdownSkipped(md, r)
	}
	if len(r.Forms) > 0 {
		writeMarkdownForms(md, r)
	}
	if len(r.Accessibility) > 0 {
		writeMarkdownAccessibility(md, r)
	}

	return md.Build()
}

func writeMarkdownHeader(md *markdown.Markdown, r *Report) {
	s := r.Summary()
	md.H1("Site check report")
	md.PlainText("")

	rows := [][]string{
		{"Run", "`" + r.RunID + "`"},
		{"Site", r.BaseURL},
		{"Started", r.Started.Format("2006-01-02 15:04:05 MST")},
	}
	if r.Targets != nil {
		rows = append(rows, []string{"Targets", cell(r.Targets.String())})
	}
	rows = append(rows,
		[]string{"Pages scanned", strconv.Itoa(s.Scanned) + " of " + strconv.Itoa(s.Pages)},
		[]string{"Spelling findings", strconv.Itoa(s.Spelling)},
		[]string{"Grammar findings", strconv.Itoa(s.Grammar)},
		[]string{"Forms OK / skipped", strconv.Itoa(s.FormsOK) + " / " + strconv.Itoa(s.FormsSkipped)},
		[]string{"Failed checks", strconv.Itoa(s.Failed)},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case s.Failed > 0:
		md.Cautionf("%d structural check(s) failed.", s.Failed)
		md.PlainText("")
	case s.Spelling+s.Grammar > 0:
		md.Note("Spelling and grammar findings are advisory and may include false positives.")
		md.PlainText("")
	}
}

func (m *MarkdownReporter) writeFindings(md *markdown.Markdown, r *Report, kind sitecheck.FindingKind) {
	title, none := "Spelling", "✓ No spelling errors found"
	if kind == sitecheck.KindGrammar {
		title, none = "Grammar", "✓ No grammar errors found"
	}
	md.H2(title)
	md.PlainText("")

	pages := pagesWith(r.Pages, kind)
	if len(pages) == 0 {
		md.PlainText(none)
		md.PlainText("")
		return
	}

	for _, p := range pages {
		all := p.Spelling()
		if kind == sitecheck.KindGrammar {
			all = p.Grammar()
		}
		md.H3(p.URL)
		md.PlainText("")

		var rows [][]string
		for _, f := range limited(all, m.Limit) {
			first := "`" + f.Word + "`"
			if kind == sitecheck.KindGrammar {
				first = cell(f.Message)
			}
			rows = append(rows, []string{first, paragraph(f.Paragraph), cell(excerpt(f)), cell(suggestions(f.Suggestions, 0))})
		}
		header := []string{"Word", "Paragraph", "Context", "Suggestions"}
		if kind == sitecheck.KindGrammar {
			header[0] = "Message"
		}
		md.Table(markdown.TableSet{Header: header, Rows: rows})
		md.PlainText("")
		if m.Limit > 0 && len(all) > m.Limit {
			md.PlainText(markdown.Italic(strconv.Itoa(len(all)-m.Limit) + " more not shown"))
			md.PlainText("")
		}
	}
}

func writeMarkdownSkipped(md *markdown.Markdown, r *Report) {
	skipped := skippedPages(r.Pages)
	if len(skipped) == 0 {
		return
	}
	md.H2("Skipped pages")
	md.PlainText("")
	items := make([]string, 0, len(skipped))
	for _, p := range skipped {
		items = append(items, p.URL+": "+p.Reason)
	}
	md.BulletList(items...)
	md.PlainText("")
}

func writeMarkdownForms(md *markdown.Markdown, r *Report) {
	md.H2("Forms")
	md.PlainText("")
	rows := make([][]string, 0, len(r.Forms))
	for _, f := range r.Forms {
		rows = append(rows, []string{cell(f.Target), statusIcon(f.Status), roles(f.Filled), cell(f.Reason)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Target", "Status", "Filled", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeMarkdownAccessibility(md *markdown.Markdown, r *Report) {
	md.H2("Form structure")
	md.PlainText("")
	rows := make([][]string, 0, len(r.Accessibility))
	for _, o := range r.Accessibility {
		rows = append(rows, []string{cell(o.Target), statusIcon(o.Status), cell(o.Reason)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Target", "Status", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusIcon(s sitecheck.Status) string {
	switch s {
	case sitecheck.StatusOK:
		return "✅ ok"
	case sitecheck.StatusFailed:
		return "❌ failed"
	default:
		return "⚠️ skipped"
	}
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// cell makes s safe inside a table cell.
func cell(s string) string {
	return cellReplacer.Replace(s)
}
