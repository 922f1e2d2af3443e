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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/sitecheck/testutil"
)

func paragraphTexts(record PageRecord) []string {
	texts := make([]string, 0, len(record.Paragraphs))
	for _, p := range record.Paragraphs {
		texts = append(texts, p.Text)
	}
	return texts
}

func TestExtract_NumberingAndFilter(t *testing.T) {
	html := `<html><body>
		<h1>Short title</h1>
		<p>This paragraph is comfortably longer than twenty characters.</p>
		<p>Exactly twenty chars</p>
		<p>Twenty-one characters</p>
		<ul><li>A list item with enough text to be kept.</li><li>tiny</li></ul>
	</body></html>`

	record := NewExtractor(20).Extract("https://pnncle.com/a/", html)

	require.Len(t, record.Paragraphs, 3)
	for i, p := range record.Paragraphs {
		assert.Equal(t, i+1, p.Number)
	}
	assert.Equal(t, []string{
		"This paragraph is comfortably longer than twenty characters.",
		"Twenty-one characters",
		"A list item with enough text to be kept.",
	}, paragraphTexts(record))
	assert.Equal(t, strings.Join(paragraphTexts(record), " "), record.Text)
	assert.Equal(t, "https://pnncle.com/a/", record.URL)
}

func TestExtract_RemovesNonContent(t *testing.T) {
	html := `<html><head><script>var misspeled = "nothing here at all";</script></head><body>
		<nav><p>Navigation paragraph that is long enough to count.</p></nav>
		<noscript><p>Please enable JavaScript to view this site properly.</p></noscript>
		<style>p { color: red; content: "long enough style text"; }</style>
		<main><p>The main content paragraph that should remain.</p></main>
		<footer><p>Footer paragraph that is long enough to count.</p></footer>
	</body></html>`

	record := NewExtractor(20).Extract("u", html)

	assert.Equal(t, []string{"The main content paragraph that should remain."}, paragraphTexts(record))
	assert.NotContains(t, record.Text, "misspeled")
}

func TestExtract_NestedBlocksCountedOnce(t *testing.T) {
	html := `<body>
		<blockquote><p>A quoted paragraph that is long enough to keep.</p></blockquote>
		<li>Outer item text that is long enough <p>and an inner paragraph here.</p></li>
		<div>Short <p>Inner paragraph kept on its own merits.</p></div>
	</body>`

	record := NewExtractor(20).Extract("u", html)

	assert.Equal(t, []string{
		"A quoted paragraph that is long enough to keep.",
		"Outer item text that is long enough and an inner paragraph here.",
		"Inner paragraph kept on its own merits.",
	}, paragraphTexts(record))
}

func TestExtract_InlineOnlyDivAndSpan(t *testing.T) {
	html := `<body>
		<div>A div with <strong>only inline</strong> content inside it.</div>
		<div><section>Section text that is not a text block.</section></div>
		<span>A standalone span with enough characters.</span>
	</body>`

	record := NewExtractor(20).Extract("u", html)

	assert.Equal(t, []string{
		"A div with only inline content inside it.",
		"Section text that is not a text block.",
		"A standalone span with enough characters.",
	}, paragraphTexts(record))
}

func TestExtract_InlineAndLooseText(t *testing.T) {
	html := `<body>
		<div><a href="/x">A rather long call to action link with a tpyo inside</a><p>Another paragraph that is long enough.</p></div>
		<section>Loose section text that has a misspeling in it<p>A section paragraph that is long enough.</p>and trailing loose text after it</section>
		<div>Hello <a href="/">world</a>! <strong>Bold</strong> words beside <ul><li>tiny</li></ul></div>
	</body>`

	record := NewExtractor(20).Extract("u", html)

	assert.Equal(t, []string{
		"A rather long call to action link with a tpyo inside",
		"Another paragraph that is long enough.",
		"Loose section text that has a misspeling in it",
		"A section paragraph that is long enough.",
		"and trailing loose text after it",
		"Hello world! Bold words beside",
	}, paragraphTexts(record))
	for i, p := range record.Paragraphs {
		assert.Equal(t, i+1, p.Number)
	}
	assert.Contains(t, record.Text, "tpyo")
	assert.Contains(t, record.Text, "misspeling")
	assert.Equal(t, `<a href="/x">A rather long call to action link with a tpyo inside</a>`, record.Paragraphs[0].HTML)
	assert.Equal(t, `Hello <a href="/">world</a>! <strong>Bold</strong> words beside`, record.Paragraphs[5].HTML)
}

func TestExtract_ShortInlineRunDropped(t *testing.T) {
	html := `<body><main><a href="/">Home</a> <a href="/about/">About</a><p>The only paragraph long enough to keep.</p></main></body>`

	record := NewExtractor(20).Extract("u", html)
	assert.Equal(t, []string{"The only paragraph long enough to keep."}, paragraphTexts(record))
}

func TestExtract_WhitespaceAndSpacing(t *testing.T) {
	html := `<body><p>Words   split
		across	lines<br>and a <em>line</em>-break, joined.</p>
		<td>cell</td></body>`

	record := NewExtractor(20).Extract("u", html)

	require.Len(t, record.Paragraphs, 1)
	assert.Equal(t, "Words split across lines and a line-break, joined.", record.Paragraphs[0].Text)
	assert.Contains(t, record.Paragraphs[0].HTML, "<em>line</em>")
}

func TestExtract_LengthInCharacters(t *testing.T) {
	// 20 runes but more than 20 bytes
	html := `<body><p>ééééééééééééééééééé!</p><p>éééééééééééééééééééé!</p></body>`

	record := NewExtractor(20).Extract("u", html)
	assert.Equal(t, []string{"éééééééééééééééééééé!"}, paragraphTexts(record))
}

func TestExtract_Empty(t *testing.T) {
	record := NewExtractor(20).Extract("u", "")
	assert.Empty(t, record.Paragraphs)
	assert.NotNil(t, record.Paragraphs)
	assert.Equal(t, "", record.Text)
}

func TestExtract_FixturePage(t *testing.T) {
	record := NewExtractor(20).Extract("first", testutil.FirstStoryHTML)

	assert.Equal(t, []string{
		"How one leader found a new calling",
		"This is a tset of content written for the kingdom stories section of the site.",
		"She ate a apple before every meeting with the leadership team in the city.",
		"Every week the group gathered to pray, plan and serve their neighbours together.",
		"Faithfulness in small things builds a foundation for great things.",
	}, paragraphTexts(record))
	assert.NotContains(t, record.Text, "Footer")
	assert.NotContains(t, record.Text, "navigation")
}
