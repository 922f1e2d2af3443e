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
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]+\b`)

// FindingKind tells spelling findings from grammar findings
type FindingKind string

const (
	KindSpelling FindingKind = "spelling"
	KindGrammar  FindingKind = "grammar"
)

// Finding is one advisory spelling or grammar issue on a page.
type Finding struct {
	Kind FindingKind `json:"kind"`
	URL  string      `json:"url"`
	// Paragraph is the 1-based paragraph number, 0 when the word could not be located
	Paragraph int `json:"paragraph"`
	// Word is the misspelled token or the flagged grammar span
	Word          string   `json:"word"`
	Message       string   `json:"message,omitempty"`
	Rule          string   `json:"rule,omitempty"`
	Before        string   `json:"before"`
	After         string   `json:"after"`
	ParagraphText string   `json:"paragraph_text,omitempty"`
	Suggestions   []string `json:"suggestions"`
}

// ParagraphContext locates a word inside the paragraphs of a page.
type ParagraphContext struct {
	// Number is 0 when no paragraph contains the word
	Number int
	Before string
	After  string
	Text   string
}

// Checker runs spelling and grammar checks over extracted pages. Either
// engine may be nil, in which case that check reports nothing.
type Checker struct {
	dict   Dictionary
	engine GrammarEngine
	cfg    ContentConfig
	allow  map[string]bool
	logger logrus.FieldLogger
}

// NewChecker creates a Checker. cfg supplies the length thresholds, context
// sizes, suggestion caps and the brand allowlist.
func NewChecker(dict Dictionary, engine GrammarEngine, cfg ContentConfig, logger logrus.FieldLogger) *Checker {
	allow := make(map[string]bool, len(cfg.BrandAllowlist))
	for _, w := range cfg.BrandAllowlist {
		allow[strings.ToLower(w)] = true
	}
	return &Checker{
		dict:   dict,
		engine: engine,
		cfg:    cfg,
		allow:  allow,
		logger: orDiscard(logger),
	}
}

// HasDictionary reports whether spelling checks are enabled.
func (c *Checker) HasDictionary() bool { return c.dict != nil }

// HasGrammarEngine reports whether grammar checks are enabled.
func (c *Checker) HasGrammarEngine() bool { return c.engine != nil }

// CheckSpelling reports each distinct unknown word of text once, in the order
// first seen. Words shorter than the minimum length and allowlisted brand
// names are ignored.
func (c *Checker) CheckSpelling(url, text string, paragraphs []Paragraph) []Finding {
	findings := []Finding{}
	if c.dict == nil {
		return findings
	}

	seen := make(map[string]bool)
	for _, token := range wordPattern.FindAllString(text, -1) {
		word := strings.ToLower(token)
		if seen[word] {
			continue
		}
		seen[word] = true

		if len(word) < c.cfg.MinWordLength || c.allow[word] || c.dict.Known(word) {
			continue
		}

		loc := c.LocateParagraph(word, paragraphs)
		findings = append(findings, Finding{
			Kind:          KindSpelling,
			URL:           url,
			Paragraph:     loc.Number,
			Word:          word,
			Before:        loc.Before,
			After:         loc.After,
			ParagraphText: loc.Text,
			Suggestions:   c.dict.Candidates(word, c.cfg.MaxSpellingSuggestions),
		})
	}
	return findings
}

// CheckGrammar sends every paragraph of at least the minimum grammar length to
// the engine. A paragraph whose check fails is logged and skipped.
func (c *Checker) CheckGrammar(ctx context.Context, url string, paragraphs []Paragraph) []Finding {
	findings := []Finding{}
	if c.engine == nil {
		return findings
	}

	for _, p := range paragraphs {
		text := strings.TrimSpace(p.Text)
		if utf8.RuneCountInString(text) < c.cfg.MinGrammarLength {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		matches, err := c.engine.Check(ctx, p.Text)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"url":       url,
				"paragraph": p.Number,
			}).WithError(err).Warn("grammar check failed, skipping paragraph")
			continue
		}

		runes := []rune(p.Text)
		for _, m := range matches {
			start, end := utf16Span(runes, m.Offset, m.Length)
			before, after := contextAround(runes, start, end, c.cfg.GrammarContextChars)
			findings = append(findings, Finding{
				Kind:          KindGrammar,
				URL:           url,
				Paragraph:     p.Number,
				Word:          string(runes[start:end]),
				Message:       m.Message,
				Rule:          m.RuleID,
				Before:        before,
				After:         after,
				ParagraphText: p.Text,
				Suggestions:   firstN(m.Replacements, c.cfg.MaxGrammarSuggestions),
			})
		}
	}
	return findings
}

// LocateParagraph returns the first paragraph whose text contains word,
// ignoring case, with context on each side of the match. A word that appears
// in several paragraphs is attributed to the first.
func (c *Checker) LocateParagraph(word string, paragraphs []Paragraph) ParagraphContext {
	needle := strings.Map(unicode.ToLower, word)
	if needle == "" {
		return ParagraphContext{}
	}
	for _, p := range paragraphs {
		lower := strings.Map(unicode.ToLower, p.Text)
		i := strings.Index(lower, needle)
		if i < 0 {
			continue
		}
		start := utf8.RuneCountInString(lower[:i])
		end := start + utf8.RuneCountInString(needle)
		before, after := contextAround([]rune(p.Text), start, end, c.cfg.LocateContextChars)
		return ParagraphContext{Number: p.Number, Before: before, After: after, Text: p.Text}
	}
	return ParagraphContext{}
}

// utf16Span converts a UTF-16 offset and length into a clamped rune range.
func utf16Span(runes []rune, offset, length int) (start, end int) {
	units := 0
	start, end = len(runes), len(runes)
	for i, r := range runes {
		if units >= offset && start == len(runes) {
			start = i
		}
		if units >= offset+length {
			end = i
			break
		}
		units += utf16.RuneLen(r)
	}
	if end < start {
		end = start
	}
	return start, end
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		values = values[:n]
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
