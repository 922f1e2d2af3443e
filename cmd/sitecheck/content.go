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
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/agentberlin/sitecheck"
)

type contentFlags struct {
	source        string
	maxPages      int
	httpOnly      bool
	dictionary    string
	grammarServer string
	noSpelling    bool
	noGrammar     bool
}

func newContentCmd(a *app) *cobra.Command {
	var flags contentFlags

	cmd := &cobra.Command{
		Use:   "content",
		Short: "Scan pages for spelling and grammar errors",
		Long: `Render each target page, extract its paragraphs and report spelling and
grammar findings. Findings are advisory: the command succeeds whatever it finds.

Targets come from --source:
  sitemap  every page in the sitemap index, or link discovery when it is unavailable
  posts    story and article links found on the listing pages
  home     the home page only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContent(cmd, a, flags)
		},
	}

	cmd.Flags().StringVar(&flags.source, "source", string(sitecheck.SourceSitemap), "where targets come from: sitemap|posts|home")
	cmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "maximum pages to scan (default from config, 0 scans all)")
	cmd.Flags().BoolVar(&flags.httpOnly, "http", false, "fetch pages over plain HTTP instead of Chrome")
	cmd.Flags().StringVar(&flags.dictionary, "dictionary", "", "word list for the spelling check (default from config)")
	cmd.Flags().StringVar(&flags.grammarServer, "grammar-server", "", "LanguageTool server URL (default from config)")
	cmd.Flags().BoolVar(&flags.noSpelling, "no-spelling", false, "skip the spelling check")
	cmd.Flags().BoolVar(&flags.noGrammar, "no-grammar", false, "skip the grammar check")
	return cmd
}

func runContent(cmd *cobra.Command, a *app, flags contentFlags) error {
	ctx := cmd.Context()
	source, err := sitecheck.ParseTargetSource(flags.source)
	if err != nil {
		return err
	}
	if flags.maxPages > 0 {
		a.cfg.Content.MaxPages = flags.maxPages
	}
	if flags.httpOnly {
		a.cfg.Content.UseBrowser = false
	}
	if flags.dictionary != "" {
		a.cfg.Content.DictionaryPath = flags.dictionary
	}
	if flags.grammarServer != "" {
		a.cfg.Content.GrammarServer = flags.grammarServer
	}

	var dict sitecheck.Dictionary
	if !flags.noSpelling {
		if dict, err = loadDictionary(a); err != nil {
			return err
		}
	}
	var engine sitecheck.GrammarEngine
	if !flags.noGrammar {
		if engine, err = grammarEngine(ctx, a); err != nil {
			return err
		}
	}

	renderer, release, err := a.renderer()
	if err != nil {
		return err
	}
	defer release()

	checker := sitecheck.NewChecker(dict, engine, a.cfg.Content, a.logger)
	resolver := sitecheck.NewResolver(a.cfg.Fetch, nil, a.logger)
	scanner, err := sitecheck.NewScanner(a.cfg, resolver, renderer, checker, a.logger)
	if err != nil {
		return err
	}
	if source == sitecheck.SourceHome {
		// the home page is a listing page, scan it whatever its length
		scanner.SetMinTextLength(0)
	}

	targets, outcome := scanner.TargetsFrom(ctx, source)
	a.logger.WithField("pages", len(targets)).Info("Scanning " + string(source) + " targets")

	r := a.newReport()
	r.Targets = &outcome
	r.Pages = scanner.Scan(ctx, targets)
	if err := ctx.Err(); err != nil {
		a.logger.WithError(err).Warn("Scan interrupted, reporting partial results")
	}
	return a.writeReport(cmd, r)
}

// loadDictionary loads the configured word list. A missing list disables the
// spelling check instead of failing the run.
func loadDictionary(a *app) (sitecheck.Dictionary, error) {
	list, err := sitecheck.LoadWordListFile(a.cfg.Content.DictionaryPath)
	if errors.Is(err, sitecheck.ErrNoDictionary) {
		a.logger.WithField("path", a.cfg.Content.DictionaryPath).WithError(err).Warn("Spelling check disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.logger.WithField("words", list.Len()).Debug("Dictionary loaded")
	return list, nil
}

// grammarEngine connects to LanguageTool. An unreachable server disables the
// grammar check instead of failing the run.
func grammarEngine(ctx context.Context, a *app) (sitecheck.GrammarEngine, error) {
	lt, err := sitecheck.NewLanguageTool(ctx, sitecheck.LanguageToolOptions{
		Server:   a.cfg.Content.GrammarServer,
		Language: a.cfg.Content.Language,
		Timeout:  a.cfg.Fetch.Timeout,
	}, a.logger)
	if errors.Is(err, sitecheck.ErrEngineUnavailable) {
		a.logger.WithField("server", a.cfg.Content.GrammarServer).WithError(err).Warn("Grammar check disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lt, nil
}
