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
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/agentberlin/sitecheck"
)

const contextWidth = 60

// TextReporter writes a terminal report with one table per page.
type TextReporter struct {
	// Limit caps the findings of each kind shown per page, 0 for no cap
	Limit int
	// NoColor disables ANSI colours on status lines
	NoColor bool
}

// Write renders r to w.
func (t *TextReporter) Write(w io.Writer, r *Report) error {
	tw := &textWriter{w: w, noColor: t.NoColor}

	tw.printf("Site check %s for %s\n", r.RunID, r.BaseURL)
	if r.Targets != nil {
		tw.status(r.Targets.Status, "Targets: %s", r.Targets)
	}

	if len(r.Pages) > 0 {
		t.writeSpelling(tw, r)
		t.writeGrammar(tw, r)
		writeSkipped(tw, r)
	}
	if len(r.Forms) > 0 {
		writeForms(tw, r)
	}
	if len(r.Accessibility) > 0 {
		writeAccessibility(tw, r)
	}
	writeSummary(tw, r)
	return tw.err
}

func (t *TextReporter) writeSpelling(tw *textWriter, r *Report) {
	pages := pagesWith(r.Pages, sitecheck.KindSpelling)
	if len(pages) == 0 {
		tw.status(sitecheck.StatusOK, "\n✓ No spelling errors found")
		return
	}
	tw.printf("\nSpelling Errors Found:\n")
	for _, p := range pages {
		all := p.Spelling()
		tbl := newTable()
		tbl.SetTitle("URL: %s", p.URL)
		tbl.AppendHeader(table.Row{"Word", "Paragraph", "Context", "Suggestions"})
		for _, f := range limited(all, t.Limit) {
			tbl.AppendRow(table.Row{f.Word, paragraph(f.Paragraph), excerpt(f), suggestions(f.Suggestions, 3)})
		}
		caption(tbl, len(all), t.Limit)
		tw.render(tbl)
	}
}

func (t *TextReporter) writeGrammar(tw *textWriter, r *Report) {
	pages := pagesWith(r.Pages, sitecheck.KindGrammar)
	if len(pages) == 0 {
		tw.status(sitecheck.StatusOK, "\n✓ No grammar errors found")
		return
	}
	tw.printf("\nGrammar Errors Found:\n")
	for _, p := range pages {
		all := p.Grammar()
		tbl := newTable()
		tbl.SetTitle("URL: %s", p.URL)
		tbl.AppendHeader(table.Row{"Message", "Paragraph", "Context", "Suggestions"})
		for _, f := range limited(all, t.Limit) {
			tbl.AppendRow(table.Row{f.Message, paragraph(f.Paragraph), excerpt(f), suggestions(f.Suggestions, 0)})
		}
		caption(tbl, len(all), t.Limit)
		tw.render(tbl)
	}
}

func writeSkipped(tw *textWriter, r *Report) {
	skipped := skippedPages(r.Pages)
	if len(skipped) == 0 {
		return
	}
	tw.printf("\nSkipped pages:\n")
	for _, p := range skipped {
		tw.status(p.Status, "  - %s: %s", p.URL, p.Reason)
	}
}

func writeForms(tw *textWriter, r *Report) {
	tbl := newTable()
	tbl.SetTitle("Forms")
	tbl.AppendHeader(table.Row{"Target", "Status", "Filled", "Reason"})
	for _, f := range r.Forms {
		tbl.AppendRow(table.Row{f.Target, f.Status, roles(f.Filled), f.Reason})
	}
	tw.printf("\n")
	tw.render(tbl)
}

func writeAccessibility(tw *textWriter, r *Report) {
	tw.printf("\nForm structure:\n")
	for _, o := range r.Accessibility {
		if o.Status == sitecheck.StatusOK {
			tw.status(o.Status, "  ✓ %s", o.Target)
			continue
		}
		tw.status(o.Status, "  ✗ %s: %s", o.Target, o.Reason)
	}
}

// writeSummary prints the run totals. Form rows appear only when the run
// checked forms.
func writeSummary(tw *textWriter, r *Report) {
	s := r.Summary()
	tbl := newTable()
	tbl.SetTitle("Summary")
	tbl.AppendRows([]table.Row{
		{"Pages", s.Pages},
		{"Scanned", s.Scanned},
		{"Skipped pages", s.SkippedPages},
		{"Spelling findings", s.Spelling},
		{"Grammar findings", s.Grammar},
	})
	if len(r.Forms) > 0 || len(r.Accessibility) > 0 {
		tbl.AppendRows([]table.Row{
			{"Forms OK", s.FormsOK},
			{"Forms skipped", s.FormsSkipped},
		})
	}
	tbl.AppendRow(table.Row{"Failed checks", s.Failed})
	tw.printf("\n")
	tw.render(tbl)
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Context", WidthMax: contextWidth},
		{Name: "Message", WidthMax: contextWidth},
		{Name: "Reason", WidthMax: contextWidth},
	})
	return tbl
}

func caption(tbl table.Writer, total, limit int) {
	if limit > 0 && total > limit {
		tbl.SetCaption("%d more not shown", total-limit)
	}
}

// suggestions joins at most n suggestions; n <= 0 joins all.
func suggestions(s []string, n int) string {
	if n > 0 && len(s) > n {
		s = s[:n]
	}
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}

// textWriter keeps the first write error so the render code stays linear.
type textWriter struct {
	w       io.Writer
	noColor bool
	err     error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func (tw *textWriter) render(tbl table.Writer) {
	tw.printf("%s\n", tbl.Render())
}

// status prints a line coloured by status.
func (tw *textWriter) status(s sitecheck.Status, format string, args ...any) {
	if tw.err != nil {
		return
	}
	c := color.New(statusColor(s))
	if tw.noColor {
		c.DisableColor()
	}
	_, tw.err = c.Fprintf(tw.w, format+"\n", args...)
}

func statusColor(s sitecheck.Status) color.Attribute {
	switch s {
	case sitecheck.StatusOK:
		return color.FgGreen
	case sitecheck.StatusFailed:
		return color.FgRed
	default:
		return color.FgYellow
	}
}
