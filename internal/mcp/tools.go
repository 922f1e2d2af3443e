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

package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/agentberlin/sitecheck"
	"github.com/agentberlin/sitecheck/internal/report"
	"github.com/agentberlin/sitecheck/internal/store"
)

// errNoHistory is returned by the history tools when no store is configured.
var errNoHistory = errors.New("run history is not enabled")

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_sitemap",
		Description: "Lists every on-site page URL in the sitemap index, sorted and deduplicated",
	}, s.resolveSitemap)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "discover_pages",
		Description: "Finds same-site pages by following links breadth-first from a seed page",
	}, s.discoverPages)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_page",
		Description: "Fetches one page, extracts its paragraphs and reports spelling and grammar findings",
	}, s.checkPage)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "Lists recorded site check runs, newest first",
	}, s.listRuns)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_run",
		Description: "Renders a recorded run as a text, markdown or JSON report",
	}, s.getRun)
}

// ResolveSitemapArgs is the input of resolve_sitemap.
type ResolveSitemapArgs struct {
	IndexURL string `json:"indexUrl,omitempty" jsonschema:"sitemap index URL, default is the configured index of the site"`
}

// URLList is the output of resolve_sitemap and discover_pages.
type URLList struct {
	URLs  []string `json:"urls"`
	Count int      `json:"count"`
}

func (s *Server) resolveSitemap(ctx context.Context, _ *mcp.CallToolRequest, args ResolveSitemapArgs) (*mcp.CallToolResult, URLList, error) {
	index := args.IndexURL
	if index == "" {
		index = s.cfg.SitemapIndexURL()
	}
	resolver := sitecheck.NewResolver(s.cfg.Fetch, s.opts.Transport, s.logger)
	urls, err := resolver.ResolveAllURLs(ctx, index, s.cfg.BaseURL)
	if err != nil {
		return nil, URLList{}, err
	}
	s.logger.WithFields(logrus.Fields{"tool": "resolve_sitemap", "urls": len(urls)}).Info("Tool called")
	return nil, URLList{URLs: urls, Count: len(urls)}, nil
}

// DiscoverPagesArgs is the input of discover_pages.
type DiscoverPagesArgs struct {
	Seed     string `json:"seed,omitempty" jsonschema:"page to start from, default is the site root"`
	MaxPages int    `json:"maxPages,omitempty" jsonschema:"maximum pages to visit, default from the config"`
}

func (s *Server) discoverPages(ctx context.Context, _ *mcp.CallToolRequest, args DiscoverPagesArgs) (*mcp.CallToolResult, URLList, error) {
	crawl := s.cfg.Crawl
	if args.MaxPages > 0 {
		crawl.MaxPages = args.MaxPages
	}
	crawler, err := sitecheck.NewCrawler(s.renderer(), s.cfg.BaseURL, crawl, s.logger)
	if err != nil {
		return nil, URLList{}, err
	}
	seed := args.Seed
	if seed == "" {
		seed = s.cfg.URL("/")
	}
	urls := crawler.Discover(ctx, seed)
	s.logger.WithFields(logrus.Fields{"tool": "discover_pages", "urls": len(urls)}).Info("Tool called")
	return nil, URLList{URLs: urls, Count: len(urls)}, nil
}

// CheckPageArgs is the input of check_page.
type CheckPageArgs struct {
	URL          string `json:"url" jsonschema:"absolute URL of the page to check"`
	SkipSpelling bool   `json:"skipSpelling,omitempty" jsonschema:"do not run the spelling check"`
	SkipGrammar  bool   `json:"skipGrammar,omitempty" jsonschema:"do not run the grammar check"`
}

// PageResult is the output of check_page.
type PageResult struct {
	URL      string          `json:"url"`
	Status   string          `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Spelling bool            `json:"spellingChecked"`
	Grammar  bool            `json:"grammarChecked"`
	Findings []FindingResult `json:"findings"`
}

// FindingResult is one spelling or grammar finding.
type FindingResult struct {
	Kind        string   `json:"kind"`
	Word        string   `json:"word"`
	Paragraph   int      `json:"paragraph"`
	Context     string   `json:"context"`
	Message     string   `json:"message,omitempty"`
	Suggestions []string `json:"suggestions"`
}

func (s *Server) checkPage(ctx context.Context, _ *mcp.CallToolRequest, args CheckPageArgs) (*mcp.CallToolResult, PageResult, error) {
	if args.URL == "" {
		return nil, PageResult{}, errors.New("url is required")
	}
	dict, engine, err := s.engines(ctx)
	if err != nil {
		return nil, PageResult{}, err
	}
	if args.SkipSpelling {
		dict = nil
	}
	if args.SkipGrammar {
		engine = nil
	}

	checker := sitecheck.NewChecker(dict, engine, s.cfg.Content, s.logger)
	scanner, err := sitecheck.NewScanner(s.cfg, nil, s.renderer(), checker, s.logger)
	if err != nil {
		return nil, PageResult{}, err
	}
	// a single page is checked whatever its length
	scanner.SetMinTextLength(0)
	page := scanner.ScanPage(ctx, args.URL)

	result := PageResult{
		URL:      page.URL,
		Status:   string(page.Status),
		Reason:   page.Reason,
		Spelling: checker.HasDictionary(),
		Grammar:  checker.HasGrammarEngine(),
		Findings: make([]FindingResult, 0, len(page.Findings)),
	}
	for _, f := range page.Findings {
		suggestions := f.Suggestions
		if suggestions == nil {
			suggestions = []string{}
		}
		result.Findings = append(result.Findings, FindingResult{
			Kind:        string(f.Kind),
			Word:        f.Word,
			Paragraph:   f.Paragraph,
			Context:     strings.TrimSpace(f.Before + " [" + f.Word + "] " + f.After),
			Message:     f.Message,
			Suggestions: suggestions,
		})
	}
	s.logger.WithFields(logrus.Fields{"tool": "check_page", "url": args.URL, "findings": len(result.Findings)}).Info("Tool called")
	return nil, result, nil
}

// ListRunsArgs is the input of list_runs.
type ListRunsArgs struct {
	Limit    int  `json:"limit,omitempty" jsonschema:"number of runs to list, default 20"`
	AllSites bool `json:"allSites,omitempty" jsonschema:"list runs of every site instead of the configured one"`
}

// RunSummary describes one recorded run.
type RunSummary struct {
	RunID        string `json:"runId"`
	BaseURL      string `json:"baseUrl"`
	Started      string `json:"started"`
	PagesScanned int    `json:"pagesScanned"`
	PagesSkipped int    `json:"pagesSkipped"`
	Spelling     int    `json:"spelling"`
	Grammar      int    `json:"grammar"`
	FormsOK      int    `json:"formsOk"`
	Failed       int    `json:"failed"`
}

// RunList is the output of list_runs.
type RunList struct {
	Runs []RunSummary `json:"runs"`
}

func (s *Server) listRuns(ctx context.Context, _ *mcp.CallToolRequest, args ListRunsArgs) (*mcp.CallToolResult, RunList, error) {
	if s.opts.Store == nil {
		return nil, RunList{}, errNoHistory
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	site := s.cfg.BaseURL
	if args.AllSites {
		site = ""
	}
	runs, err := s.opts.Store.Runs(site, limit)
	if err != nil {
		return nil, RunList{}, err
	}
	out := RunList{Runs: make([]RunSummary, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, RunSummary{
			RunID:        r.RunID,
			BaseURL:      r.BaseURL,
			Started:      r.Started().Format("2006-01-02T15:04:05Z"),
			PagesScanned: r.PagesScanned,
			PagesSkipped: r.PagesSkipped,
			Spelling:     r.Spelling,
			Grammar:      r.Grammar,
			FormsOK:      r.FormsOK,
			Failed:       r.Failed,
		})
	}
	return nil, out, nil
}

// GetRunArgs is the input of get_run.
type GetRunArgs struct {
	RunID  string `json:"runId" jsonschema:"run ID or a unique prefix of it"`
	Format string `json:"format,omitempty" jsonschema:"text, markdown or json; default markdown"`
	Diff   bool   `json:"diff,omitempty" jsonschema:"report changes since the previous run of the same site instead"`
}

// RunReport is the output of get_run.
type RunReport struct {
	RunID  string `json:"runId"`
	Report string `json:"report"`
}

func (s *Server) getRun(ctx context.Context, _ *mcp.CallToolRequest, args GetRunArgs) (*mcp.CallToolResult, RunReport, error) {
	if s.opts.Store == nil {
		return nil, RunReport{}, errNoHistory
	}
	format := report.FormatMarkdown
	if args.Format != "" {
		f, err := report.ParseFormat(args.Format)
		if err != nil {
			return nil, RunReport{}, err
		}
		format = f
	}

	run, err := s.opts.Store.Get(args.RunID)
	if err != nil {
		return nil, RunReport{}, err
	}
	r, err := run.Report()
	if err != nil {
		return nil, RunReport{}, err
	}

	var buf bytes.Buffer
	if args.Diff {
		if err := s.writeDiff(&buf, run, r); err != nil {
			return nil, RunReport{}, err
		}
		return nil, RunReport{RunID: run.RunID, Report: buf.String()}, nil
	}

	reporter, err := report.NewReporter(format, s.cfg.Content.ReportLimit)
	if err != nil {
		return nil, RunReport{}, err
	}
	if text, ok := reporter.(*report.TextReporter); ok {
		text.NoColor = true
	}
	if err := reporter.Write(&buf, r); err != nil {
		return nil, RunReport{}, err
	}
	return nil, RunReport{RunID: run.RunID, Report: buf.String()}, nil
}

func (s *Server) writeDiff(w io.Writer, run *store.Run, r *report.Report) error {
	prev, err := s.opts.Store.Previous(run)
	if err != nil {
		return fmt.Errorf("no run to compare with: %w", err)
	}
	pr, err := prev.Report()
	if err != nil {
		return err
	}
	return report.Diff(pr, r).Write(w, prev.RunID)
}
