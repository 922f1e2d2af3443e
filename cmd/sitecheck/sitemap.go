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

func newSitemapCmd(a *app) *cobra.Command {
	var indexURL string

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Print every page listed by the sitemap index",
		Long: `Fetch the sitemap index and each child sitemap, and print the union of their
on-site page URLs, sorted and without duplicates. A child sitemap that cannot be
fetched is logged and skipped; failing to fetch the index itself is an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if indexURL == "" {
				indexURL = a.cfg.SitemapIndexURL()
			}
			resolver := sitecheck.NewResolver(a.cfg.Fetch, nil, a.logger)
			urls, err := resolver.ResolveAllURLs(cmd.Context(), indexURL, a.cfg.BaseURL)
			if err != nil {
				return err
			}
			a.logger.WithField("urls", len(urls)).Info("Sitemap resolved")
			return printLines(cmd.OutOrStdout(), urls)
		},
	}

	cmd.Flags().StringVar(&indexURL, "index", "", "sitemap index URL (default is the base URL plus the configured sitemap path)")
	return cmd
}
