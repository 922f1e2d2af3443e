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
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grammarFunc adapts a function to GrammarEngine
type grammarFunc func(ctx context.Context, text string) ([]GrammarMatch, error)

func (f grammarFunc) Check(ctx context.Context, text string) ([]GrammarMatch, error) {
	return f(ctx, text)
}

func newTestChecker(dict Dictionary, engine GrammarEngine) (*Checker, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return NewChecker(dict, engine, DefaultConfig().Content, logger), hook
}

func TestCheckSpelling_UnknownTokens(t *testing.T) {
	checker, _ := newTestChecker(NewWordList("is", "a"), nil)
	paragraphs := []Paragraph{{Number: 1, Text: "Ths is a tset"}}

	findings := checker.CheckSpelling("https://pnncle.com/x/", "Ths is a tset", paragraphs)

	require.Len(t, findings, 2)
	assert.Equal(t, "ths", findings[0].Word)
	assert.Equal(t, "tset", findings[1].Word)
	for _, f := range findings {
		assert.Equal(t, KindSpelling, f.Kind)
		assert.Equal(t, 1, f.Paragraph)
		assert.Equal(t, "https://pnncle.com/x/", f.URL)
		assert.Equal(t, "Ths is a tset", f.ParagraphText)
	}
	assert.Equal(t, "", findings[0].Before)
	assert.Equal(t, " is a tset", findings[0].After)
}

func TestCheckSpelling_Filters(t *testing.T) {
	dict := NewWordList("the", "site", "test", "welcome", "to")
	checker, _ := newTestChecker(dict, nil)
	text := "Welcome to PNNCLE and Pncle: the tset site, tset again, TSET, xq 42 numbers3"

	findings := checker.CheckSpelling("u", text, nil)

	words := make([]string, 0, len(findings))
	for _, f := range findings {
		words = append(words, f.Word)
		assert.Equal(t, 0, f.Paragraph)
		assert.Empty(t, f.Before)
		assert.Empty(t, f.After)
	}
	// one finding per word type, brand names and short tokens ignored
	assert.Equal(t, []string{"and", "tset", "again"}, words)
	require.NotEmpty(t, findings[1].Suggestions)
	assert.Equal(t, "test", findings[1].Suggestions[0])
}

func TestCheckSpelling_SuggestionCap(t *testing.T) {
	dict := NewWordList("bat", "cat", "eat", "fat", "hat", "mat", "pat", "rat")
	checker, _ := newTestChecker(dict, nil)

	findings := checker.CheckSpelling("u", "zat", nil)
	require.Len(t, findings, 1)
	assert.Len(t, findings[0].Suggestions, 5)
}

func TestCheckSpelling_NoDictionary(t *testing.T) {
	checker, _ := newTestChecker(nil, nil)
	findings := checker.CheckSpelling("u", "Ths is a tset", nil)
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
	assert.False(t, checker.HasDictionary())
}

func TestLocateParagraph(t *testing.T) {
	checker, _ := newTestChecker(nil, nil)

	tests := []struct {
		name       string
		word       string
		paragraphs []Paragraph
		expected   ParagraphContext
	}{
		{
			name:       "found",
			word:       "tset",
			paragraphs: []Paragraph{{Number: 1, Text: "This is a tset of content"}},
			expected: ParagraphContext{
				Number: 1,
				Before: "This is a ",
				After:  " of content",
				Text:   "This is a tset of content",
			},
		},
		{
			name: "case insensitive first match",
			word: "tset",
			paragraphs: []Paragraph{
				{Number: 1, Text: "Nothing here"},
				{Number: 2, Text: "A TSET here"},
				{Number: 3, Text: "another tset"},
			},
			expected: ParagraphContext{Number: 2, Before: "A ", After: " here", Text: "A TSET here"},
		},
		{
			name:       "substring of a longer word",
			word:       "tset",
			paragraphs: []Paragraph{{Number: 4, Text: "retsets"}},
			expected:   ParagraphContext{Number: 4, Before: "re", After: "s", Text: "retsets"},
		},
		{
			name:       "not found",
			word:       "tset",
			paragraphs: []Paragraph{{Number: 1, Text: "ts et split across elements"}},
			expected:   ParagraphContext{},
		},
		{
			name:       "no paragraphs",
			word:       "tset",
			paragraphs: nil,
			expected:   ParagraphContext{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.LocateParagraph(tt.word, tt.paragraphs))
		})
	}
}

func TestLocateParagraph_ContextBounded(t *testing.T) {
	checker, _ := newTestChecker(nil, nil)
	text := strings.Repeat("é", 150) + "tset" + strings.Repeat("x", 150)

	loc := checker.LocateParagraph("tset", []Paragraph{{Number: 1, Text: text}})

	assert.Equal(t, 1, loc.Number)
	assert.Equal(t, strings.Repeat("é", 100), loc.Before)
	assert.Equal(t, strings.Repeat("x", 100), loc.After)
}

func TestCheckGrammar_LanguageTool(t *testing.T) {
	lt := newTestLanguageTool(t)
	checker, _ := newTestChecker(nil, lt)

	// the emoji is two UTF-16 code units
	text := "Rocket 🚀 launch: she ate a apple before the meeting started."
	findings := checker.CheckGrammar(context.Background(), "u", []Paragraph{{Number: 3, Text: text}})

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, KindGrammar, f.Kind)
	assert.Equal(t, 3, f.Paragraph)
	assert.Equal(t, "a apple", f.Word)
	assert.Equal(t, "EN_A_VS_AN", f.Rule)
	assert.Equal(t, "Rocket 🚀 launch: she ate ", f.Before)
	assert.Equal(t, " before the meeting started.", f.After)
	assert.Equal(t, []string{"an apple", "an", "the apple"}, f.Suggestions)
	assert.Equal(t, text, f.ParagraphText)
}

func TestCheckGrammar_ContextAndLengthLimits(t *testing.T) {
	var checked []string
	engine := grammarFunc(func(_ context.Context, text string) ([]GrammarMatch, error) {
		checked = append(checked, text)
		return []GrammarMatch{{Message: "m", RuleID: "R", Offset: 60, Length: 4}}, nil
	})
	checker, _ := newTestChecker(nil, engine)

	long := strings.Repeat("a", 60) + "SPAN" + strings.Repeat("b", 60)
	paragraphs := []Paragraph{
		{Number: 1, Text: "   short text      "},
		{Number: 2, Text: "exactly twenty chars"},
		{Number: 3, Text: long},
	}

	findings := checker.CheckGrammar(context.Background(), "u", paragraphs)

	assert.Equal(t, []string{"exactly twenty chars", long}, checked)
	require.Len(t, findings, 2)
	assert.Equal(t, "SPAN", findings[1].Word)
	assert.Equal(t, strings.Repeat("a", 50), findings[1].Before)
	assert.Equal(t, strings.Repeat("b", 50), findings[1].After)
	// offset beyond a short paragraph clamps to an empty span
	assert.Equal(t, "", findings[0].Word)
}

func TestCheckGrammar_ParagraphFailureSkipped(t *testing.T) {
	engine := grammarFunc(func(_ context.Context, text string) ([]GrammarMatch, error) {
		if strings.HasPrefix(text, "broken") {
			return nil, errors.New("engine crashed")
		}
		return []GrammarMatch{{Message: "m", Offset: 0, Length: 5}}, nil
	})
	checker, hook := newTestChecker(nil, engine)

	findings := checker.CheckGrammar(context.Background(), "https://pnncle.com/p/", []Paragraph{
		{Number: 1, Text: "broken paragraph that is long enough"},
		{Number: 2, Text: "working paragraph that is long enough"},
	})

	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].Paragraph)
	assert.Equal(t, "worki", findings[0].Word)

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, 1, entries[0].Data["paragraph"])
	assert.Equal(t, "https://pnncle.com/p/", entries[0].Data["url"])
}

func TestCheckGrammar_NoEngine(t *testing.T) {
	checker, _ := newTestChecker(nil, nil)
	findings := checker.CheckGrammar(context.Background(), "u", []Paragraph{{Number: 1, Text: "a long enough paragraph of text"}})
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
	assert.False(t, checker.HasGrammarEngine())
}

func TestUTF16Span(t *testing.T) {
	runes := []rune("a😀bc")

	tests := []struct {
		name           string
		offset, length int
		start, end     int
	}{
		{"before surrogate pair", 0, 1, 0, 1},
		{"surrogate pair", 1, 2, 1, 2},
		{"after surrogate pair", 3, 2, 2, 4},
		{"past the end", 10, 2, 4, 4},
		{"length overruns", 3, 10, 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := utf16Span(runes, tt.offset, tt.length)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
