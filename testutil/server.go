// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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

// Package testutil provides shared test fixtures for sitecheck tests: a small
// marketing site served over httptest and a fake LanguageTool server.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"unicode/utf16"
)

// Fixture pages. Relative links keep them valid under any httptest address.
var (
	HomeHTML = `<!DOCTYPE html>
<html>
<head>
<title>PNNCLE</title>
<script>var ignored = "scriptonlyword";</script>
<style>.hero { color: red; }</style>
</head>
<body>
<nav>
<a href="/about/">About</a>
<a href="/contact/">Contact</a>
</nav>
<main>
<h1>Welcome to PNNCLE and the kingdom community</h1>
<p>PNNCLE equips leaders to build kingdom stories that last for generations.</p>
<a href="/kingdom-stories/">Stories</a>
<a href="https://other.example/offsite/">Offsite</a>
<a href="mailto:hello@pnncle.com">Mail</a>
<a href="tel:8051234567">Call</a>
<a href="/brochure.pdf">Brochure</a>
<a href="/hero.JPG">Hero</a>
<a href="#top">Top</a>
<a href="javascript:void(0)">Menu</a>
<a href="/about/?utm_source=home#team">About the team</a>
</main>
<form class="newsletter" action="/subscribe" method="post">
<input type="email" name="email" placeholder="Email">
<button type="submit">Subscribe</button>
</form>
<footer><p>Copyright PNNCLE, all rights reserved worldwide.</p></footer>
</body>
</html>
`

	AboutHTML = `<!DOCTYPE html>
<html>
<head><title>About</title></head>
<body>
<main>
<h2>About our ministry and mission</h2>
<p>We partner with churches and business leaders across the country.</p>
<a href="/">Home</a>
<a href="/broken/">Old page</a>
</main>
</body>
</html>
`

	ContactHTML = `<!DOCTYPE html>
<html>
<head><title>Contact</title></head>
<body>
<main>
<h2>Get in touch with the PNNCLE team</h2>
<form id="contact" action="/contact/" method="post">
<input type="text" name="your-name">
<input type="email" name="your-email">
<textarea name="your-message"></textarea>
<button type="submit">Send</button>
</form>
</main>
</body>
</html>
`

	StoriesHTML = `<!DOCTYPE html>
<html>
<head><title>Kingdom Stories</title></head>
<body>
<main>
<h2>Kingdom Stories</h2>
<ul>
<li><a href="/kingdom-stories/first-story/">First</a></li>
<li><a href="/kingdom-stories/second-story/">Second</a></li>
</ul>
</main>
</body>
</html>
`

	FirstStoryHTML = `<!DOCTYPE html>
<html>
<head><title>First Story</title></head>
<body>
<nav><a href="/">Home navigation label for the site</a></nav>
<article>
<h1>How one leader found a new calling</h1>
<p>This is a tset of content written for the kingdom stories section of the site.</p>
<p>She ate a apple before every meeting with the leadership team in the city.</p>
<p>Every week the group gathered to pray, plan and serve their neighbours together.</p>
<blockquote>Faithfulness in small things builds a foundation for great things.</blockquote>
</article>
<footer>Footer content that should never be checked for spelling.</footer>
</body>
</html>
`

	SecondStoryHTML = `<!DOCTYPE html>
<html>
<head><title>Second Story</title></head>
<body>
<article>
<h1>A business that became a blessing to its town</h1>
<p>The owners decided early that profit would serve people rather than replace them.</p>
<p>Over ten years they hired and trained more than two hundred young apprentices.</p>
<p>Their story shows how ordinary work can carry extraordinary purpose for a community.</p>
</article>
</body>
</html>
`
)

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func writeXML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func origin(r *http.Request) string {
	return "http://" + r.Host
}

// NewSiteServer starts a fixture site with a sitemap index, two child
// sitemaps, one missing child sitemap and the pages above. /broken/ answers 500.
func NewSiteServer() *httptest.Server {
	mux := http.NewServeMux()

	pages := map[string]string{
		"/about/":                        AboutHTML,
		"/contact/":                      ContactHTML,
		"/kingdom-stories/":              StoriesHTML,
		"/kingdom-stories/first-story/":  FirstStoryHTML,
		"/kingdom-stories/second-story/": SecondStoryHTML,
	}
	for path, body := range pages {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			writeHTML(w, body)
		})
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeHTML(w, HomeHTML)
	})

	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<p>error</p>"))
	})

	mux.HandleFunc("/sitemap_index.xml", func(w http.ResponseWriter, r *http.Request) {
		o := origin(r)
		writeXML(w, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<sitemap><loc>%[1]s/post-sitemap.xml</loc></sitemap>
<sitemap><loc>%[1]s/page-sitemap.xml</loc></sitemap>
<sitemap><loc>%[1]s/missing-sitemap.xml</loc></sitemap>
</sitemapindex>`, o))
	})

	mux.HandleFunc("/post-sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		o := origin(r)
		writeXML(w, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>%[1]s/kingdom-stories/second-story/</loc></url>
<url><loc>%[1]s/kingdom-stories/first-story/?replytocom=4</loc></url>
<url><loc>%[1]s/kingdom-stories/first-story/</loc></url>
</urlset>`, o))
	})

	mux.HandleFunc("/page-sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		o := origin(r)
		writeXML(w, fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>%[1]s/</loc></url>
<url><loc>%[1]s/about/#team</loc></url>
<url><loc>%[1]s/kingdom-stories/</loc></url>
<url><loc>https://other.example/elsewhere/</loc></url>
</urlset>`, o))
	})

	return httptest.NewServer(mux)
}

// GrammarRule is one phrase the fake LanguageTool server flags.
type GrammarRule struct {
	Phrase       string
	RuleID       string
	Message      string
	Replacements []string
}

// DefaultGrammarRules flag the article error planted in FirstStoryHTML.
var DefaultGrammarRules = []GrammarRule{
	{
		Phrase:       "a apple",
		RuleID:       "EN_A_VS_AN",
		Message:      "Use \"an\" instead of \"a\" if the following word starts with a vowel sound.",
		Replacements: []string{"an apple", "an", "the apple", "apple"},
	},
}

// FailMarker makes the fake LanguageTool server answer 500 for any text containing it.
const FailMarker = "LANGUAGETOOL-FAIL"

type ltReplacement struct {
	Value string `json:"value"`
}

type ltRule struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type ltMatch struct {
	Message      string          `json:"message"`
	ShortMessage string          `json:"shortMessage"`
	Replacements []ltReplacement `json:"replacements"`
	Offset       int             `json:"offset"`
	Length       int             `json:"length"`
	Rule         ltRule          `json:"rule"`
}

// NewLanguageToolServer starts a server speaking the subset of the
// LanguageTool v2 API used by the grammar checker. Offsets and lengths are
// reported in UTF-16 code units, as the real server does.
func NewLanguageToolServer(rules []GrammarRule) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/v2/languages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"English (US)","code":"en","longCode":"en-US"}]`))
	})

	mux.HandleFunc("/v2/check", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		text := r.PostForm.Get("text")
		if strings.Contains(text, FailMarker) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Error: internal error"))
			return
		}

		matches := []ltMatch{}
		for _, rule := range rules {
			start := 0
			for {
				i := strings.Index(text[start:], rule.Phrase)
				if i < 0 {
					break
				}
				at := start + i
				m := ltMatch{
					Message: rule.Message,
					Offset:  utf16Len(text[:at]),
					Length:  utf16Len(rule.Phrase),
					Rule:    ltRule{ID: rule.RuleID, Description: rule.Message},
				}
				for _, v := range rule.Replacements {
					m.Replacements = append(m.Replacements, ltReplacement{Value: v})
				}
				matches = append(matches, m)
				start = at + len(rule.Phrase)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"matches": matches})
	})

	return httptest.NewServer(mux)
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
