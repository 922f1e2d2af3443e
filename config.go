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
	"time"
)

// DefaultBaseURL is the site checked when no configuration overrides it
const DefaultBaseURL = "https://pnncle.com"

// Config is the full configuration of a check run. Every field has a documented
// default in DefaultConfig; the YAML keys are what internal/config reads.
type Config struct {
	// BaseURL is the site root. URLs are considered on-site when they contain it as a substring.
	BaseURL string `yaml:"base_url"`
	// SitemapPath is appended to BaseURL to locate the sitemap index
	// Default: /sitemap_index.xml
	SitemapPath string `yaml:"sitemap_path"`
	// FallbackPaths are queued after the base URL when link discovery replaces the sitemap
	// Default: /equip/, /gift/, /partners/, /contact/, /go/, /kingdom-stories/
	FallbackPaths []string `yaml:"fallback_paths"`

	Fetch   FetchConfig   `yaml:"fetch"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	Browser BrowserConfig `yaml:"browser"`
	Content ContentConfig `yaml:"content"`
	Forms   FormsConfig   `yaml:"forms"`
	History HistoryConfig `yaml:"history"`
}

// FetchConfig controls plain HTTP requests (sitemaps, the HTTP renderer).
type FetchConfig struct {
	// Timeout bounds a single request
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
	// RetryCount is the number of extra attempts after a transport error
	// Default: 0
	RetryCount int `yaml:"retry_count"`
	// MaxBodySize limits response bodies in bytes; 0 means unlimited
	// Default: 10MB
	MaxBodySize int `yaml:"max_body_size"`
	// UserAgent is sent with every request
	UserAgent string `yaml:"user_agent"`
	// Concurrency is the number of child sitemaps fetched at once
	// Default: 4
	Concurrency int `yaml:"concurrency"`
}

// CrawlConfig bounds the link discovery fallback.
type CrawlConfig struct {
	// MaxPages is the hard cap on visited pages
	// Default: 50
	MaxPages int `yaml:"max_pages"`
	// MaxLinksPerPage caps the anchors enumerated on one page
	// Default: 100
	MaxLinksPerPage int `yaml:"max_links_per_page"`
	// SkipPatterns are glob patterns for hrefs that never enter the frontier
	SkipPatterns []string `yaml:"skip_patterns"`
}

// BrowserConfig controls the headless Chrome session.
type BrowserConfig struct {
	// Headless runs Chrome without a window
	// Default: true
	Headless bool `yaml:"headless"`
	// ExecPath overrides the Chrome binary lookup
	ExecPath string `yaml:"exec_path"`
	// ViewportWidth and ViewportHeight size every tab
	// Default: 1920x1080
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`
	// UserAgent is the browser User-Agent
	UserAgent string `yaml:"user_agent"`
	// NavigationTimeout bounds a navigation up to the load event
	// Default: 30s
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	// QuiescenceTimeout bounds the wait for network idle after load
	// Default: 30s
	QuiescenceTimeout time.Duration `yaml:"quiescence_timeout"`
}

// ContentConfig controls the spelling and grammar scan.
type ContentConfig struct {
	// DictionaryPath is a word list, one word per line with an optional frequency column
	// Default: /usr/share/dict/words
	DictionaryPath string `yaml:"dictionary_path"`
	// BrandAllowlist holds site-specific terms never reported as misspelled
	// Default: pnncle, pncle
	BrandAllowlist []string `yaml:"brand_allowlist"`
	// MinWordLength is the shortest token reported as misspelled
	// Default: 3
	MinWordLength int `yaml:"min_word_length"`
	// MaxSpellingSuggestions caps suggestions per spelling finding
	// Default: 5
	MaxSpellingSuggestions int `yaml:"max_spelling_suggestions"`
	// MaxGrammarSuggestions caps suggestions per grammar finding
	// Default: 3
	MaxGrammarSuggestions int `yaml:"max_grammar_suggestions"`
	// MinParagraphLength: extracted blocks must be longer than this to become paragraphs
	// Default: 20
	MinParagraphLength int `yaml:"min_paragraph_length"`
	// MinGrammarLength: paragraphs shorter than this are not sent to the grammar engine
	// Default: 20
	MinGrammarLength int `yaml:"min_grammar_length"`
	// GrammarContextChars is the context kept on each side of a grammar match
	// Default: 50
	GrammarContextChars int `yaml:"grammar_context_chars"`
	// LocateContextChars is the context kept on each side of a located spelling error
	// Default: 100
	LocateContextChars int `yaml:"locate_context_chars"`
	// MinPageTextLength: pages with less extracted text are treated as listing pages and skipped
	// Default: 200
	MinPageTextLength int `yaml:"min_page_text_length"`
	// MaxPages limits how many resolved URLs are scanned; 0 means all
	// Default: 0
	MaxPages int `yaml:"max_pages"`
	// PostListPaths are the listing pages searched for story and article links
	// Default: /, /kingdom-stories/
	PostListPaths []string `yaml:"post_list_paths"`
	// MaxPosts caps the story and article pages collected from PostListPaths
	// Default: 10
	MaxPosts int `yaml:"max_posts"`
	// GrammarServer is the LanguageTool server root
	// Default: http://localhost:8081
	GrammarServer string `yaml:"grammar_server"`
	// Language is the LanguageTool language code
	// Default: en-US
	Language string `yaml:"language"`
	// ReportLimit caps the findings printed per page
	// Default: 5
	ReportLimit int `yaml:"report_limit"`
	// UseBrowser renders pages with Chrome; when false pages are fetched over plain HTTP
	// Default: true
	UseBrowser bool `yaml:"use_browser"`
}

// FormsConfig controls the form flows.
type FormsConfig struct {
	// Pages lists the form pages and the field roles filled on each
	Pages []FormPageConfig `yaml:"pages"`
	// NewsletterPage hosts the newsletter signup forms
	// Default: /
	NewsletterPage string `yaml:"newsletter_page"`
	// AccessibilityPages are checked structurally
	// Default: every form page plus the home page
	AccessibilityPages []string `yaml:"accessibility_pages"`
	// SettleDelay is waited after clicking submit
	// Default: 3s
	SettleDelay time.Duration `yaml:"settle_delay"`
	// NewsletterSettleDelay is waited after a newsletter submit
	// Default: 2s
	NewsletterSettleDelay time.Duration `yaml:"newsletter_settle_delay"`
	// FeedbackTimeout bounds the wait for a success signal
	// Default: 5s
	FeedbackTimeout time.Duration `yaml:"feedback_timeout"`
	// PollInterval is the spacing of success-signal polls
	// Default: 250ms
	PollInterval time.Duration `yaml:"poll_interval"`
	// TestData is typed into located fields
	TestData TestData `yaml:"test_data"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	// Enabled records every content and forms run
	// Default: false
	Enabled bool `yaml:"enabled"`
	// Path is the SQLite database file; empty means ~/.sitecheck/history.db
	Path string `yaml:"path"`
	// Keep is the number of runs kept per base URL after recording; 0 keeps all
	// Default: 50
	Keep int `yaml:"keep"`
}

// FormPageConfig names a form page and the roles filled there.
type FormPageConfig struct {
	Path   string      `yaml:"path"`
	Fields []FieldRole `yaml:"fields"`
}

// TestData is the sample submission used by the form flows.
type TestData struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
	// Other fills organization, website and any remaining free text field
	Other string `yaml:"other"`
}

// DefaultTestData returns the sample submission used when none is configured.
func DefaultTestData() TestData {
	return TestData{
		Name:  "PNNCLE Automation",
		Email: "pnncle.automation@pnncle.com",
		Phone: "805-123-4567",
		Other: "PNNCLE Automation Test Scripts",
	}
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		SitemapPath:   "/sitemap_index.xml",
		FallbackPaths: []string{"/equip/", "/gift/", "/partners/", "/contact/", "/go/", "/kingdom-stories/"},
		Fetch: FetchConfig{
			Timeout:     30 * time.Second,
			MaxBodySize: 10 * 1024 * 1024,
			UserAgent:   "sitecheck/1.0",
			Concurrency: 4,
		},
		Crawl: CrawlConfig{
			MaxPages:        50,
			MaxLinksPerPage: 100,
			SkipPatterns:    DefaultSkipPatterns(),
		},
		Browser: BrowserConfig{
			Headless:          true,
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
			NavigationTimeout: 30 * time.Second,
			QuiescenceTimeout: 30 * time.Second,
		},
		Content: ContentConfig{
			DictionaryPath:         "/usr/share/dict/words",
			BrandAllowlist:         []string{"pnncle", "pncle"},
			MinWordLength:          3,
			MaxSpellingSuggestions: 5,
			MaxGrammarSuggestions:  3,
			MinParagraphLength:     20,
			MinGrammarLength:       20,
			GrammarContextChars:    50,
			LocateContextChars:     100,
			MinPageTextLength:      200,
			PostListPaths:          []string{"/", "/kingdom-stories/"},
			MaxPosts:               10,
			GrammarServer:          "http://localhost:8081",
			Language:               "en-US",
			ReportLimit:            5,
			UseBrowser:             true,
		},
		Forms: FormsConfig{
			Pages: []FormPageConfig{
				{Path: "/equip/", Fields: []FieldRole{RoleName, RoleEmail, RolePhone, RoleOther}},
				{Path: "/gift/", Fields: []FieldRole{RoleName, RoleEmail, RolePhone, RoleOther}},
				{Path: "/partners/", Fields: []FieldRole{RoleName, RoleEmail, RolePhone, RoleOther}},
				{Path: "/contact/", Fields: []FieldRole{RoleName, RoleEmail, RoleMessage}},
			},
			NewsletterPage:        "/",
			AccessibilityPages:    []string{"/equip/", "/gift/", "/partners/", "/contact/", "/"},
			SettleDelay:           3 * time.Second,
			NewsletterSettleDelay: 2 * time.Second,
			FeedbackTimeout:       5 * time.Second,
			PollInterval:          250 * time.Millisecond,
			TestData:              DefaultTestData(),
		},
		History: HistoryConfig{
			Keep: 50,
		},
	}
}

// URL joins a site path onto the base URL. A path of "/" yields the base URL itself.
func (c *Config) URL(path string) string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	if path == "" || path == "/" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// SitemapIndexURL returns the location of the sitemap index.
func (c *Config) SitemapIndexURL() string {
	return SitemapIndexURL(c.BaseURL, c.SitemapPath)
}
