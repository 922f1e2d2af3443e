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
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/sirupsen/logrus"
)

const (
	sitemapLocXPath = "//*[local-name()='sitemap']/*[local-name()='loc']"
	urlLocXPath     = "//*[local-name()='url']/*[local-name()='loc']"

	// maxSitemapFetches bounds nested index traversal
	maxSitemapFetches = 500
)

// Resolver turns a sitemap index into the list of content URLs of a site.
type Resolver struct {
	backend     *httpBackend
	concurrency int
	logger      logrus.FieldLogger
}

// NewResolver creates a Resolver. A nil transport uses http.DefaultTransport.
func NewResolver(cfg FetchConfig, transport http.RoundTripper, logger logrus.FieldLogger) *Resolver {
	logger = orDiscard(logger)
	return &Resolver{
		backend:     newHTTPBackend(cfg, transport, logger),
		concurrency: max(cfg.Concurrency, 1),
		logger:      logger,
	}
}

// SitemapIndexURL joins the sitemap path onto baseURL. An empty path means /sitemap_index.xml.
func SitemapIndexURL(baseURL, path string) string {
	if path == "" {
		path = "/sitemap_index.xml"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(baseURL, "/") + path
}

// FetchSitemap GETs a sitemap document. Non-2xx responses and transport
// errors are returned as *FetchError.
func (r *Resolver) FetchSitemap(ctx context.Context, u string) ([]byte, error) {
	resp, err := r.backend.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ParseSitemapURLs extracts the locations listed in a sitemap document.
//
// For a sitemap index the child sitemap locations are returned as they are.
// For a urlset only locations containing baseURL are kept, each stripped of its
// fragment and query, deduplicated in first-seen order. Documents that cannot be
// parsed even leniently yield an empty result.
func ParseSitemapURLs(data []byte, baseURL string) []string {
	doc, err := parseSitemapDocument(data)
	if err != nil {
		return []string{}
	}
	if children, ok := sitemapChildren(doc); ok {
		return children
	}
	return sitemapPageURLs(doc, baseURL)
}

// ResolveAllURLs fetches the index at indexURL and returns the sorted,
// deduplicated union of the page URLs of every child sitemap. A document that
// turns out to be a plain urlset is returned as ParseSitemapURLs would.
//
// Only a failure to fetch or parse the index itself is an error
// (*ResolutionError); failing children are logged and skipped.
func (r *Resolver) ResolveAllURLs(ctx context.Context, indexURL, baseURL string) ([]string, error) {
	data, err := r.FetchSitemap(ctx, indexURL)
	if err != nil {
		return nil, &ResolutionError{IndexURL: indexURL, Err: err}
	}
	doc, err := parseSitemapDocument(data)
	if err != nil {
		return nil, &ResolutionError{IndexURL: indexURL, Err: err}
	}

	children, isIndex := sitemapChildren(doc)
	if !isIndex {
		return sitemapPageURLs(doc, baseURL), nil
	}

	// children are fetched level by level; nested indexes feed the next level
	visited := map[string]bool{indexURL: true}
	seen := make(map[string]struct{})
	level := children
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, &ResolutionError{IndexURL: indexURL, Err: err}
		}
		batch := make([]string, 0, len(level))
		for _, child := range level {
			if visited[child] || len(visited) >= maxSitemapFetches {
				continue
			}
			visited[child] = true
			batch = append(batch, child)
		}
		level = nil
		for _, child := range r.fetchChildren(ctx, batch, baseURL) {
			level = append(level, child.nested...)
			for _, u := range child.urls {
				seen[u] = struct{}{}
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ResolutionError{IndexURL: indexURL, Err: err}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	r.logger.WithFields(logrus.Fields{
		"index":    indexURL,
		"sitemaps": len(visited) - 1,
		"urls":     len(urls),
	}).Debug("Resolved sitemap index")
	return urls, nil
}

type childSitemap struct {
	nested []string
	urls   []string
}

// fetchChildren fetches and parses sitemaps on a worker pool. Results keep
// the order of urls; failing children are logged and left empty.
func (r *Resolver) fetchChildren(ctx context.Context, urls []string, baseURL string) []childSitemap {
	results := make([]childSitemap, len(urls))
	if len(urls) == 0 {
		return results
	}
	pool := NewWorkerPool(ctx, min(r.concurrency, len(urls)), len(urls))
	for i, u := range urls {
		if err := pool.Submit(func() { results[i] = r.fetchChild(ctx, u, baseURL) }); err != nil {
			break
		}
	}
	pool.Close()
	return results
}

func (r *Resolver) fetchChild(ctx context.Context, u, baseURL string) childSitemap {
	log := r.logger.WithField("url", u)
	body, err := r.FetchSitemap(ctx, u)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch child sitemap, skipping")
		return childSitemap{}
	}
	doc, err := parseSitemapDocument(body)
	if err != nil {
		log.WithError(err).Warn("Failed to parse child sitemap, skipping")
		return childSitemap{}
	}
	if nested, ok := sitemapChildren(doc); ok {
		return childSitemap{nested: nested}
	}
	return childSitemap{urls: sitemapPageURLs(doc, baseURL)}
}

// parseSitemapDocument parses strictly first and retries leniently with HTML
// auto-close rules. ErrParse is returned when both fail.
func parseSitemapDocument(data []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err == nil {
		return doc, nil
	}
	doc, lenientErr := xmlquery.ParseWithOptions(bytes.NewReader(data), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict:    false,
			AutoClose: xml.HTMLAutoClose,
			Entity:    xml.HTMLEntity,
		},
	})
	if lenientErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

// sitemapChildren reports the <sitemap><loc> values of an index document.
func sitemapChildren(doc *xmlquery.Node) ([]string, bool) {
	nodes, err := xmlquery.QueryAll(doc, sitemapLocXPath)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	locs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs, true
}

func sitemapPageURLs(doc *xmlquery.Node, baseURL string) []string {
	nodes, err := xmlquery.QueryAll(doc, urlLocXPath)
	urls := []string{}
	if err != nil {
		return urls
	}
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		loc := strings.TrimSpace(n.InnerText())
		if loc == "" || !strings.Contains(loc, baseURL) {
			continue
		}
		loc = stripFragmentAndQuery(loc)
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}
		urls = append(urls, loc)
	}
	return urls
}

// stripFragmentAndQuery removes a "#..." suffix, then a "?..." suffix.
func stripFragmentAndQuery(u string) string {
	u, _, _ = strings.Cut(u, "#")
	u, _, _ = strings.Cut(u, "?")
	return u
}
