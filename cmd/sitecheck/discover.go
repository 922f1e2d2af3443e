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

package main

import (
	"github.com/spf13/cobra"

	"github.com/agentberlin/sitecheck"
)

func newDiscoverCmd(a *app) *cobra.Command {
	var (
		maxPages    int
		httpOnly    bool
		noFallbacks bool
	)

	cmd := &cobra.Command{
		Use:   "discover [seed]",
		Short: "Find pages by following links from the home page",
		Long: `Walk same-site links breadth first from the seed (the base URL by default)
and the configured fallback paths, printing every page that loaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxPages > 0 {
				a.cfg.Crawl.MaxPages = maxPages
			}
			if httpOnly {
				a.cfg.Content.UseBrowser = false
			}

			renderer, release, err := a.renderer()
			if err != nil {
				return err
			}
			defer release()

			crawler, err := sitecheck.NewCrawler(renderer, a.cfg.BaseURL, a.cfg.Crawl, a.logger)
			if err != nil {
				return err
			}
			crawler.SetOnPageVisited(func(url string, err error) {
				if err == nil {
					a.logger.WithField("url", url).Debug("Visited")
				}
			})

			seed := a.cfg.URL("/")
			if len(args) == 1 {
				seed = args[0]
			}
			var extra []string
			if !noFallbacks {
				for _, p := range a.cfg.FallbackPaths {
					extra = append(extra, a.cfg.URL(p))
				}
			}

			found := crawler.Discover(cmd.Context(), seed, extra...)
			a.logger.WithField("pages", len(found)).Info("Discovery finished")
			return printLines(cmd.OutOrStdout(), found)
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum pages to visit (default from config)")
	cmd.Flags().BoolVar(&httpOnly, "http", false, "fetch pages over plain HTTP instead of Chrome")
	cmd.Flags().BoolVar(&noFallbacks, "no-fallbacks", false, "do not queue the configured fallback paths")
	return cmd
}
