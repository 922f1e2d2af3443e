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
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// nonContentSelector matches markup removed before text extraction
const nonContentSelector = "script, style, noscript, template, nav, footer"

// textBlockTags always start a candidate paragraph. A div qualifies only
// when it holds nothing but inline content.
var textBlockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "figcaption": true, "td": true, "th": true,
	"dt": true, "dd": true, "pre": true,
}

// Paragraph is one retained text block of a page.
type Paragraph struct {
	// Number is 1-based and follows document order
	Number int    `json:"number"`
	Text   string `json:"text"`
	// HTML is the source markup of the block
	HTML string `json:"html,omitempty"`
}

// PageRecord is the extracted content of one rendered page.
type PageRecord struct {
	URL string `json:"url"`
	// Text is the space-joined text of all paragraphs
	Text       string      `json:"text"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Extractor turns rendered HTML into numbered paragraphs.
type Extractor struct {
	minParagraphLength int
}

// NewExtractor creates an Extractor that retains blocks longer than
// minParagraphLength characters.
func NewExtractor(minParagraphLength int) *Extractor {
	return &Extractor{minParagraphLength: minParagraphLength}
}

// Extract strips non-content markup and walks the body in document order.
// Text-bearing blocks become paragraphs whole, so nested elements are never
// counted twice. Inline elements and loose text between blocks form a
// paragraph of their own. An unparsable document yields an empty record.
func (e *Extractor) Extract(url, body string) PageRecord {
	record := PageRecord{URL: url, Paragraphs: []Paragraph{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return record
	}
	doc.Find(nonContentSelector).Remove()

	w := &paragraphWalker{minLength: e.minParagraphLength}
	for _, n := range doc.Find("body").Nodes {
		w.walk(n)
		w.flush()
	}

	texts := make([]string, 0, len(w.paragraphs))
	for _, p := range w.paragraphs {
		texts = append(texts, p.Text)
	}
	if w.paragraphs != nil {
		record.Paragraphs = w.paragraphs
	}
	record.Text = strings.Join(texts, " ")
	return record
}

// paragraphWalker collects paragraphs from a node tree. run holds the
// sibling text and inline nodes seen since the last block boundary.
type paragraphWalker struct {
	minLength  int
	paragraphs []Paragraph
	run        []*html.Node
}

func (w *paragraphWalker) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			w.run = append(w.run, c)
		case c.Type != html.ElementNode:
		case inlineElements[c.Data] && inlineOnly(c):
			w.run = append(w.run, c)
		case isTextBlock(c):
			w.flush()
			if !w.emit([]*html.Node{c}) {
				w.walk(c)
				w.flush()
			}
		default:
			w.flush()
			w.walk(c)
			w.flush()
		}
	}
}

// flush turns the pending run into a paragraph when it is long enough.
func (w *paragraphWalker) flush() {
	if len(w.run) > 0 {
		w.emit(w.run)
	}
	w.run = nil
}

func (w *paragraphWalker) emit(nodes []*html.Node) bool {
	text := spacedText(nodes)
	if utf8.RuneCountInString(text) <= w.minLength {
		return false
	}
	var markup strings.Builder
	for _, n := range nodes {
		if err := html.Render(&markup, n); err != nil {
			break
		}
	}
	w.paragraphs = append(w.paragraphs, Paragraph{
		Number: len(w.paragraphs) + 1,
		Text:   text,
		HTML:   strings.TrimSpace(markup.String()),
	})
	return true
}

func isTextBlock(n *html.Node) bool {
	if textBlockTags[n.Data] {
		return true
	}
	return n.Data == "div" && inlineOnly(n)
}

// normalizeWhitespace collapses multiple consecutive whitespace characters
// (spaces, tabs, newlines) into a single space.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
