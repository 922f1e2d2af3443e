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

	"golang.org/x/net/html"
)

var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true,
	"br": true, "button": true, "cite": true, "code": true, "data": true,
	"dfn": true, "em": true, "i": true, "img": true, "input": true,
	"kbd": true, "label": true, "mark": true, "q": true, "s": true,
	"samp": true, "small": true, "span": true, "strong": true, "sub": true,
	"sup": true, "time": true, "u": true, "var": true, "wbr": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"details": true, "dialog": true, "dd": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hgroup": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "ul": true,
	"tr": true, "td": true, "th": true,
}

// inlineOnly reports whether every child of n is text, a comment or an
// inline element.
func inlineOnly(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !inlineElements[c.Data] {
			return false
		}
	}
	return true
}

// spacedText extracts the text of a run of sibling nodes. Inline markup is
// joined as rendered; block elements and <br> are separated by a space.
func spacedText(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeSpaced(&b, n)
	}
	return normalizeWhitespace(b.String())
}

func writeSpaced(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "script", "style":
		return
	case "br":
		b.WriteByte(' ')
		return
	}
	block := isBlockElement(n.Data)
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeSpaced(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

// isBlockElement checks if an HTML element is a block-level element.
func isBlockElement(nodeName string) bool {
	return blockElements[nodeName]
}

// contextAround returns up to n runes of text on each side of the rune span [start, end).
func contextAround(runes []rune, start, end, n int) (before, after string) {
	from := max(start-n, 0)
	to := min(end+n, len(runes))
	return string(runes[from:start]), string(runes[end:to])
}
