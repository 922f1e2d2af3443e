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
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// TargetSource selects how the pages of a content scan are found
type TargetSource string

const (
	// SourceSitemap resolves the sitemap index and falls back to link discovery
	SourceSitemap TargetSource = "sitemap"
	// SourcePosts collects story and article links from the listing pages
	SourcePosts TargetSource = "posts"
	// SourceHome scans the home page only
	SourceHome TargetSource = "home"
)

// ParseTargetSource validates a source name.
func ParseTargetSource(s string) (TargetSource, error) {
	switch TargetSource(s) {
	case SourceSitemap, SourcePosts, SourceHome:
		return TargetSource(s), nil
	}
	return "", fmt.Errorf("unknown target source %q (want sitemap, posts or home)", s)
}

// PageReport is the result of scanning one page.
type PageReport struct {
	URL string `json:"url"`
	Outcome
	Findings []Finding `json:"findings"`
}

// Spelling returns the spelling findings of the report.
func (r PageReport) Spelling() []Finding { return r.byKind(KindSpelling) }

// Grammar returns the grammar findings of the report.
func (r PageReport) Grammar() []Finding { return r.byKind(KindGrammar) }

func (r PageReport) byKind(kind FindingKind) []Finding {
	out := []Finding{}
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Scanner ties target discovery, rendering, extraction and checking together.
type Scanner struct {
	cfg           *Config
	resolver      *Resolver
	crawler       *Crawler
	renderer      Renderer
	extractor     *Extractor
	checker       *Checker
	dups          *DuplicateTracker
	minTextLength int
	logger        logrus.FieldLogger
}

// NewScanner creates a Scanner. resolver may be nil, in which case targets
// always come from link discovery.
func NewScanner(cfg *Config, resolver *Resolver, renderer Renderer, checker *Checker, logger logrus.FieldLogger) (*Scanner, error) {
	logger = orDiscard(logger)
	crawler, err := NewCrawler(renderer, cfg.BaseURL, cfg.Crawl, logger)
	if err != nil {
		return nil, fmt.Errorf("create crawler: %w", err)
	}
	return &Scanner{
		cfg:           cfg,
		resolver:      resolver,
		crawler:       crawler,
		renderer:      renderer,
		extractor:     NewExtractor(cfg.Content.MinParagraphLength),
		checker:       checker,
		dups:          NewDuplicateTracker(),
		minTextLength: cfg.Content.MinPageTextLength,
		logger:        logger,
	}, nil
}

// SetMinTextLength overrides the listing-page threshold. 0 scans every page.
func (s *Scanner) SetMinTextLength(n int) {
	s.minTextLength = n
}

// Crawler exposes the link discovery used for the fallback.
func (s *Scanner) Crawler() *Crawler {
	return s.crawler
}

// Targets returns the pages to scan: every page listed by the sitemap index,
// or when the sitemap cannot be resolved or lists nothing, the pages found by
// link discovery from the base URL and the fixed fallback paths. The outcome
// is OK for the sitemap path and Skipped with the reason for the fallback.
func (s *Scanner) Targets(ctx context.Context) ([]string, Outcome) {
	indexURL := s.cfg.SitemapIndexURL()

	var reason string
	if s.resolver == nil {
		reason = "no sitemap resolver"
	} else {
		urls, err := s.resolver.ResolveAllURLs(ctx, indexURL, s.cfg.BaseURL)
		switch {
		case err != nil:
			reason = err.Error()
			s.logger.WithField("url", indexURL).WithError(err).Warn("Sitemap unavailable, falling back to link discovery")
		case len(urls) == 0:
			reason = "sitemap lists no pages"
			s.logger.WithField("url", indexURL).Warn("Sitemap lists no pages, falling back to link discovery")
		default:
			return urls, OK(indexURL)
		}
	}

	extra := make([]string, 0, len(s.cfg.FallbackPaths))
	for _, p := range s.cfg.FallbackPaths {
		extra = append(extra, s.cfg.URL(p))
	}
	found := s.crawler.Discover(ctx, s.cfg.URL("/"), extra...)
	return found, Skipped(indexURL, "%s; discovered %d pages by following links", reason, len(found))
}

// TargetsFrom returns the pages to scan for source.
func (s *Scanner) TargetsFrom(ctx context.Context, source TargetSource) ([]string, Outcome) {
	switch source {
	case SourcePosts:
		pages := make([]string, 0, len(s.cfg.Content.PostListPaths))
		for _, p := range s.cfg.Content.PostListPaths {
			pages = append(pages, s.cfg.URL(p))
		}
		posts := s.crawler.PostLinks(ctx, pages, s.cfg.Content.MaxPosts)
		if len(posts) == 0 {
			return posts, Skipped(s.cfg.BaseURL, "no story or article links found")
		}
		return posts, OK(s.cfg.BaseURL)
	case SourceHome:
		return []string{s.cfg.URL("/")}, OK(s.cfg.BaseURL)
	default:
		return s.Targets(ctx)
	}
}

// ScanPage renders url, extracts its paragraphs and runs the enabled checks.
// Pages that fail to load, listing pages with little text and pages whose
// content duplicates an already scanned page are Skipped.
func (s *Scanner) ScanPage(ctx context.Context, url string) PageReport {
	report := PageReport{URL: url, Findings: []Finding{}}
	logger := s.logger.WithField("url", url)

	body, err := s.renderer.Render(ctx, url)
	if err != nil {
		logger.WithError(err).Warn("Could not load page, skipping")
		report.Outcome = Skipped(url, "could not load page: %v", err)
		return report
	}

	record := s.extractor.Extract(url, body)
	if n := utf8.RuneCountInString(record.Text); n < s.minTextLength {
		report.Outcome = Skipped(url, "only %d characters of text", n)
		return report
	}
	if original, dup := s.dups.Check(record); dup {
		report.Outcome = Skipped(url, "same content as %s", original)
		return report
	}

	report.Findings = append(report.Findings, s.checker.CheckSpelling(url, record.Text, record.Paragraphs)...)
	report.Findings = append(report.Findings, s.checker.CheckGrammar(ctx, url, record.Paragraphs)...)
	report.Outcome = OK(url)

	logger.WithFields(logrus.Fields{
		"paragraphs": len(record.Paragraphs),
		"findings":   len(report.Findings),
	}).Debug("Page scanned")
	return report
}

// Scan scans urls in order, stopping after Content.MaxPages when it is set.
// A failing page never stops the scan.
func (s *Scanner) Scan(ctx context.Context, urls []string) []PageReport {
	if limit := s.cfg.Content.MaxPages; limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	reports := make([]PageReport, 0, len(urls))
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		reports = append(reports, s.ScanPage(ctx, u))
	}
	return reports
}
