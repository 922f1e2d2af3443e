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
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// DefaultSkipPatterns are hrefs that never point at crawlable content.
func DefaultSkipPatterns() []string {
	return []string{
		"mailto:*",
		"tel:*",
		"#*",
		"javascript:*",
		"*.pdf",
		"*.jpg",
		"*.png",
		"*.gif",
	}
}

// SkipList matches hrefs against glob patterns. Matching is case-insensitive.
type SkipList struct {
	patterns []glob.Glob
}

// NewSkipList compiles the given glob patterns.
func NewSkipList(patterns []string) (*SkipList, error) {
	s := &SkipList{patterns: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("compile skip pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, g)
	}
	return s, nil
}

// Match reports whether any of the candidates matches a pattern.
func (s *SkipList) Match(candidates ...string) bool {
	for _, c := range candidates {
		c = strings.ToLower(c)
		for _, g := range s.patterns {
			if g.Match(c) {
				return true
			}
		}
	}
	return false
}

// NormalizeURL parses u and returns it without fragment and query.
func NormalizeURL(u string) (string, error) {
	parsed, err := urlParser.Parse(strings.TrimSpace(u))
	if err != nil {
		return "", err
	}
	return stripFragmentAndQuery(parsed.Href(true)), nil
}

// ResolveHref resolves href against the page it was found on and returns the
// normalised target. ok is false when the target does not contain baseURL or
// cannot be parsed.
func ResolveHref(pageURL, baseURL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	resolved, err := urlParser.ParseRef(pageURL, href)
	if err != nil {
		return "", false
	}
	target := stripFragmentAndQuery(resolved.Href(true))
	if !strings.Contains(target, strings.TrimSuffix(baseURL, "/")) {
		return "", false
	}
	return target, true
}
