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

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentberlin/sitecheck"
	"github.com/agentberlin/sitecheck/internal/report"
)

func newRun(r *report.Report) (*Run, error) {
	sum := r.Summary()
	run := &Run{
		RunID:        r.RunID,
		BaseURL:      r.BaseURL,
		StartedAt:    r.Started.UnixMilli(),
		PagesScanned: sum.Scanned,
		PagesSkipped: sum.SkippedPages,
		Spelling:     sum.Spelling,
		Grammar:      sum.Grammar,
		FormsOK:      sum.FormsOK,
		FormsSkipped: sum.FormsSkipped,
		Failed:       sum.Failed,
	}
	if !r.Finished.IsZero() {
		run.FinishedAt = r.Finished.UnixMilli()
	}
	if r.Targets != nil {
		run.Targets = *r.Targets
	}

	for i, p := range r.Pages {
		page := Page{Position: i, URL: p.URL, Outcome: p.Outcome}
		for j, f := range p.Findings {
			suggestions, err := json.Marshal(f.Suggestions)
			if err != nil {
				return nil, fmt.Errorf("encode suggestions: %w", err)
			}
			page.Findings = append(page.Findings, Finding{
				Position:      j,
				Kind:          f.Kind,
				Paragraph:     f.Paragraph,
				Word:          f.Word,
				Message:       f.Message,
				Rule:          f.Rule,
				Before:        f.Before,
				After:         f.After,
				ParagraphText: f.ParagraphText,
				Suggestions:   string(suggestions),
			})
		}
		run.Pages = append(run.Pages, page)
	}
	for i, f := range r.Forms {
		filled, err := json.Marshal(f.Filled)
		if err != nil {
			return nil, fmt.Errorf("encode filled roles: %w", err)
		}
		run.Checks = append(run.Checks, Check{
			Position: i,
			Kind:     CheckForm,
			Page:     f.Page,
			Outcome:  f.Outcome,
			Filled:   string(filled),
		})
	}
	for i, o := range r.Accessibility {
		run.Checks = append(run.Checks, Check{
			Position: len(r.Forms) + i,
			Kind:     CheckAccessibility,
			Outcome:  o,
		})
	}
	return run, nil
}

// Report rebuilds the report the run was recorded from. The run must have
// been loaded with Get or Previous.
func (r *Run) Report() (*report.Report, error) {
	rep := &report.Report{
		RunID:         r.RunID,
		BaseURL:       r.BaseURL,
		Started:       r.Started(),
		Pages:         make([]sitecheck.PageReport, 0, len(r.Pages)),
		Forms:         []sitecheck.FormResult{},
		Accessibility: []sitecheck.Outcome{},
	}
	if r.FinishedAt != 0 {
		rep.Finished = time.UnixMilli(r.FinishedAt).UTC()
	}
	if r.Targets.Status != "" {
		targets := r.Targets
		rep.Targets = &targets
	}

	for _, p := range r.Pages {
		page := sitecheck.PageReport{URL: p.URL, Outcome: p.Outcome, Findings: make([]sitecheck.Finding, 0, len(p.Findings))}
		for _, f := range p.Findings {
			suggestions := []string{}
			if err := decodeList(f.Suggestions, &suggestions); err != nil {
				return nil, fmt.Errorf("decode suggestions: %w", err)
			}
			page.Findings = append(page.Findings, sitecheck.Finding{
				Kind:          f.Kind,
				URL:           p.URL,
				Paragraph:     f.Paragraph,
				Word:          f.Word,
				Message:       f.Message,
				Rule:          f.Rule,
				Before:        f.Before,
				After:         f.After,
				ParagraphText: f.ParagraphText,
				Suggestions:   suggestions,
			})
		}
		rep.Pages = append(rep.Pages, page)
	}
	for _, c := range r.Checks {
		switch c.Kind {
		case CheckForm:
			filled := []sitecheck.FieldRole{}
			if err := decodeList(c.Filled, &filled); err != nil {
				return nil, fmt.Errorf("decode filled roles: %w", err)
			}
			rep.Forms = append(rep.Forms, sitecheck.FormResult{Page: c.Page, Outcome: c.Outcome, Filled: filled})
		case CheckAccessibility:
			rep.Accessibility = append(rep.Accessibility, c.Outcome)
		}
	}
	return rep, nil
}

// decodeList unmarshals a JSON array into v, leaving v untouched for an empty or null column.
func decodeList[T any](data string, v *[]T) error {
	if data == "" || data == "null" {
		return nil
	}
	var out []T
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return err
	}
	if out != nil {
		*v = out
	}
	return nil
}
