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
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// postLinkXPath selects anchors that look like story or article links
const postLinkXPath = `//a[@href][contains(@href,'blog') or contains(@href,'story') or contains(@href,'article') or contains(@href,'post') or contains(.,'Read') or contains(.,'Story') or contains(.,'Article')]`

// Renderer returns the HTML of a page once it has finished loading.
// Implementations wait for quiescence before returning.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// OnPageVisitedFunc is called after each dequeued URL has been rendered.
// err is non-nil when the page failed to load and was excluded from the result.
type OnPageVisitedFunc func(url string, err error)

// Crawler discovers site pages breadth-first when no sitemap is available.
type Crawler struct {
	renderer        Renderer
	baseURL         string
	maxPages        int
	maxLinksPerPage int
	skip            *SkipList
	logger          logrus.FieldLogger
	onPageVisited   OnPageVisitedFunc
}

// NewCrawler creates a Crawler limited to URLs containing baseURL.
func NewCrawler(renderer Renderer, baseURL string, cfg CrawlConfig, logger logrus.FieldLogger) (*Crawler, error) {
	skip, err := NewSkipList(cfg.SkipPatterns)
	if err != nil {
		return nil, err
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultConfig().Crawl.MaxPages
	}
	return &Crawler{
		renderer:        renderer,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		maxPages:        cfg.MaxPages,
		maxLinksPerPage: cfg.MaxLinksPerPage,
		skip:            skip,
		logger:          orDiscard(logger),
	}, nil
}

// SetOnPageVisited registers a progress callback.
func (c *Crawler) SetOnPageVisited(f OnPageVisitedFunc) {
	c.onPageVisited = f
}

// Discover walks same-site links from seed and returns the pages that loaded,
// in visit order. extraSeeds are queued right after seed. At most maxPages URLs
// are visited, failed loads included; a failed page is logged and left out of
// the result.
func (c *Crawler) Discover(ctx context.Context, seed string, extraSeeds ...string) []string {
	visited := make(map[string]bool)
	queued := make(map[string]bool)
	var frontier []string
	enqueue := func(u string) {
		if visited[u] || queued[u] {
			return
		}
		queued[u] = true
		frontier = append(frontier, u)
	}

	for _, s := range append([]string{seed}, extraSeeds...) {
		normalized, err := NormalizeURL(s)
		if err != nil {
			c.logger.WithField("url", s).WithError(err).Warn("Ignoring unparsable seed")
			continue
		}
		enqueue(normalized)
	}

	found := make([]string, 0)
	for len(frontier) > 0 && len(visited) < c.maxPages {
		if ctx.Err() != nil {
			break
		}
		current := frontier[0]
		frontier = frontier[1:]
		delete(queued, current)
		visited[current] = true

		body, err := c.renderer.Render(ctx, current)
		if c.onPageVisited != nil {
			c.onPageVisited(current, err)
		}
		if err != nil {
			c.logger.WithField("url", current).WithError(err).Warn("Failed to load page, skipping")
			continue
		}
		found = append(found, current)

		for _, link := range c.pageLinks(current, body, "//a[@href]") {
			enqueue(link)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"seed":    seed,
		"visited": len(visited),
		"found":   len(found),
	}).Debug("Link discovery finished")
	return found
}

// PostLinks renders each listing page and collects on-site story and article
// links, first seen first, up to limit (0 means no limit). Listing pages that
// fail to load are logged and skipped.
func (c *Crawler) PostLinks(ctx context.Context, listPages []string, limit int) []string {
	seen := make(map[string]bool)
	posts := make([]string, 0)
	for _, page := range listPages {
		if ctx.Err() != nil || (limit > 0 && len(posts) >= limit) {
			break
		}
		body, err := c.renderer.Render(ctx, page)
		if err != nil {
			c.logger.WithField("url", page).WithError(err).Warn("Failed to load listing page, skipping")
			continue
		}
		for _, link := range c.pageLinks(page, body, postLinkXPath) {
			if seen[link] {
				continue
			}
			seen[link] = true
			posts = append(posts, link)
		}
	}
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

// pageLinks enumerates up to maxLinksPerPage anchors matching expr and
// returns the on-site targets.
func (c *Crawler) pageLinks(pageURL, body, expr string) []string {
	doc, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		c.logger.WithField("url", pageURL).WithError(err).Warn("Failed to parse page for links")
		return nil
	}

	base := pageURL
	if baseNode := htmlquery.FindOne(doc, "//base[@href]"); baseNode != nil {
		if resolved, err := urlParser.ParseRef(pageURL, htmlquery.SelectAttr(baseNode, "href")); err == nil {
			base = resolved.Href(true)
		}
	}

	anchors := htmlquery.Find(doc, expr)
	if c.maxLinksPerPage > 0 && len(anchors) > c.maxLinksPerPage {
		anchors = anchors[:c.maxLinksPerPage]
	}

	links := make([]string, 0, len(anchors))
	for _, a := range anchors {
		if target, ok := c.resolveAnchor(base, a); ok {
			links = append(links, target)
		}
	}
	return links
}

func (c *Crawler) resolveAnchor(base string, a *html.Node) (string, bool) {
	href := strings.TrimSpace(htmlquery.SelectAttr(a, "href"))
	if href == "" || c.skip.Match(href) {
		return "", false
	}
	target, ok := ResolveHref(base, c.baseURL, href)
	if !ok || c.skip.Match(target) {
		return "", false
	}
	return target, true
}
